package models

type Outcome struct {
	ID       string `gorm:"primaryKey;type:text" json:"id"`
	MarketID string `gorm:"type:text;index;not null" json:"market_id"`
	Label    string `gorm:"type:text;not null" json:"label"`
}

func (Outcome) TableName() string {
	return "market_outcomes"
}
