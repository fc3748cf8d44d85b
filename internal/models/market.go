package models

import (
	"time"

	"gorm.io/datatypes"
)

type Market struct {
	ID               string  `gorm:"primaryKey;type:text" json:"id"`
	EventID          *string `gorm:"type:text;index" json:"event_id,omitempty"`
	ExternalMarketID string  `gorm:"type:text;index;not null" json:"external_market_id"`
	Title            string  `gorm:"type:text;not null" json:"title"`
	Slug             *string `gorm:"type:text" json:"slug,omitempty"`
	Platform         string  `gorm:"type:text;index;not null" json:"platform"`
	IsActive         bool    `gorm:"not null;default:true;index" json:"is_active"`
	// Outcome labels with their parallel prices, as mirrored from the
	// exchange. Consumed by the flat search variant.
	Outcomes       datatypes.JSON `gorm:"type:jsonb" json:"outcomes,omitempty"`
	OutcomePrices  datatypes.JSON `gorm:"type:jsonb" json:"outcome_prices,omitempty"`
	PriceUpdatedAt *time.Time     `gorm:"type:timestamptz" json:"price_updated_at,omitempty"`
}

func (Market) TableName() string {
	return "markets"
}
