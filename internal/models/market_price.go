package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// MarketPrice is one point of an outcome's price history. Rows are
// append-only: the refresh job only ever inserts.
type MarketPrice struct {
	ID        uint64           `gorm:"primaryKey;autoIncrement" json:"id"`
	OutcomeID string           `gorm:"type:text;index;not null" json:"outcome_id"`
	Price     decimal.Decimal  `gorm:"type:numeric(12,6);not null" json:"price"`
	Bid       *decimal.Decimal `gorm:"type:numeric(12,6)" json:"bid,omitempty"`
	Ask       *decimal.Decimal `gorm:"type:numeric(12,6)" json:"ask,omitempty"`
	Liquidity *decimal.Decimal `gorm:"type:numeric(30,10)" json:"liquidity,omitempty"`
	PriceJSON datatypes.JSON   `gorm:"type:jsonb" json:"price_json,omitempty"`
	CreatedAt time.Time        `gorm:"type:timestamptz;not null;autoCreateTime;index" json:"created_at"`
}

func (MarketPrice) TableName() string {
	return "market_prices"
}
