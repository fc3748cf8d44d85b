package models

type Event struct {
	ID           string  `gorm:"primaryKey;type:text" json:"id"`
	Title        string  `gorm:"type:text;not null" json:"title"`
	Subtitle     *string `gorm:"type:text" json:"subtitle,omitempty"`
	Description  *string `gorm:"type:text" json:"description,omitempty"`
	Category     *string `gorm:"type:text;index" json:"category,omitempty"`
	SeriesTicker *string `gorm:"type:text;index" json:"series_ticker,omitempty"`
	Region       *string `gorm:"type:text" json:"region,omitempty"`
	// Set once by the backfill job; never recomputed unless cleared.
	Embedding Vector `gorm:"type:vector(1536)" json:"-"`
}

func (Event) TableName() string {
	return "kalshi_events"
}
