package repository

import (
	"context"
	"encoding/json"
	"time"

	"gorm.io/datatypes"

	"marketsearch/internal/models"
)

// Repository is the persistence surface shared by the search providers,
// the batch jobs, and the read-only catalog API.
type Repository interface {
	// Embedding backfill.
	ListEventsMissingEmbedding(ctx context.Context, limit int) ([]models.Event, error)
	UpdateEventEmbedding(ctx context.Context, eventID string, embedding models.Vector) error

	// Price refresh.
	ListActiveMarkets(ctx context.Context, platform string, limit int) ([]models.Market, error)
	ListOutcomesByMarketIDs(ctx context.Context, marketIDs []string) ([]models.Outcome, error)
	InsertMarketPrices(ctx context.Context, rows []models.MarketPrice) error

	// Catalog reads.
	ListEvents(ctx context.Context, params ListEventsParams) ([]models.Event, error)
	CountEvents(ctx context.Context, params ListEventsParams) (int64, error)
	ListMarkets(ctx context.Context, params ListMarketsParams) ([]models.Market, error)
	CountMarkets(ctx context.Context, params ListMarketsParams) (int64, error)

	// Similarity search, delegated to database functions.
	SearchEventsWithMarkets(ctx context.Context, embedding models.Vector, matchCount, marketsPerEvent int) (json.RawMessage, error)
	MatchMarkets(ctx context.Context, embedding models.Vector, matchCount int) ([]MarketSearchRow, error)
}

type ListEventsParams struct {
	Limit    int
	Offset   int
	Category *string
}

type ListMarketsParams struct {
	Limit    int
	Offset   int
	Platform *string
	Active   *bool
	EventID  *string
}

// MarketSearchRow is one row returned by match_markets, ranked by
// similarity against the query embedding.
type MarketSearchRow struct {
	ID             string         `gorm:"column:id"`
	Title          string         `gorm:"column:title"`
	Ticker         *string        `gorm:"column:ticker"`
	Slug           *string        `gorm:"column:slug"`
	Outcomes       datatypes.JSON `gorm:"column:outcomes"`
	OutcomePrices  datatypes.JSON `gorm:"column:outcome_prices"`
	PriceUpdatedAt *time.Time     `gorm:"column:price_updated_at"`
	Similarity     *float64       `gorm:"column:similarity"`
}
