package gormrepository

import (
	"context"
	"encoding/json"
	"strings"

	"gorm.io/gorm"

	"marketsearch/internal/models"
	"marketsearch/internal/repository"
)

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// --- embedding backfill -----------------------------------------------------

func (s *Store) ListEventsMissingEmbedding(ctx context.Context, limit int) ([]models.Event, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	limit = normalizeLimit(limit, 64)
	var items []models.Event
	err := s.db.WithContext(ctx).
		Model(&models.Event{}).
		Select("id", "title", "subtitle", "description", "category", "series_ticker", "region").
		Where("embedding IS NULL").
		Limit(limit).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) UpdateEventEmbedding(ctx context.Context, eventID string, embedding models.Vector) error {
	if s == nil || s.db == nil {
		return nil
	}
	if strings.TrimSpace(eventID) == "" {
		return nil
	}
	return s.db.WithContext(ctx).
		Model(&models.Event{}).
		Where("id = ?", eventID).
		Update("embedding", embedding).Error
}

// --- price refresh ----------------------------------------------------------

func (s *Store) ListActiveMarkets(ctx context.Context, platform string, limit int) ([]models.Market, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	limit = normalizeLimit(limit, 500)
	var items []models.Market
	err := s.db.WithContext(ctx).
		Model(&models.Market{}).
		Select("id", "external_market_id").
		Where("platform = ?", platform).
		Where("is_active = ?", true).
		Limit(limit).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) ListOutcomesByMarketIDs(ctx context.Context, marketIDs []string) ([]models.Outcome, error) {
	if s == nil || s.db == nil || len(marketIDs) == 0 {
		return nil, nil
	}
	var items []models.Outcome
	err := s.db.WithContext(ctx).
		Model(&models.Outcome{}).
		Where("market_id IN ?", marketIDs).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// InsertMarketPrices appends price-history rows. Existing rows are never
// touched: the table is a write-once time series.
func (s *Store) InsertMarketPrices(ctx context.Context, rows []models.MarketPrice) error {
	if s == nil || s.db == nil || len(rows) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).CreateInBatches(rows, 500).Error
}

// --- catalog reads ----------------------------------------------------------

func (s *Store) ListEvents(ctx context.Context, params repository.ListEventsParams) ([]models.Event, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	query := s.eventQuery(ctx, params)
	limit := normalizeLimit(params.Limit, 200)
	offset := normalizeOffset(params.Offset)
	var items []models.Event
	if err := query.Order("id asc").Limit(limit).Offset(offset).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) CountEvents(ctx context.Context, params repository.ListEventsParams) (int64, error) {
	if s == nil || s.db == nil {
		return 0, nil
	}
	var total int64
	if err := s.eventQuery(ctx, params).Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

func (s *Store) eventQuery(ctx context.Context, params repository.ListEventsParams) *gorm.DB {
	query := s.db.WithContext(ctx).Model(&models.Event{})
	if params.Category != nil && strings.TrimSpace(*params.Category) != "" {
		query = query.Where("category = ?", strings.TrimSpace(*params.Category))
	}
	return query
}

func (s *Store) ListMarkets(ctx context.Context, params repository.ListMarketsParams) ([]models.Market, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	query := s.marketQuery(ctx, params)
	limit := normalizeLimit(params.Limit, 200)
	offset := normalizeOffset(params.Offset)
	var items []models.Market
	if err := query.Order("id asc").Limit(limit).Offset(offset).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) CountMarkets(ctx context.Context, params repository.ListMarketsParams) (int64, error) {
	if s == nil || s.db == nil {
		return 0, nil
	}
	var total int64
	if err := s.marketQuery(ctx, params).Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

func (s *Store) marketQuery(ctx context.Context, params repository.ListMarketsParams) *gorm.DB {
	query := s.db.WithContext(ctx).Model(&models.Market{})
	if params.Platform != nil && strings.TrimSpace(*params.Platform) != "" {
		query = query.Where("platform = ?", strings.TrimSpace(*params.Platform))
	}
	if params.Active != nil {
		query = query.Where("is_active = ?", *params.Active)
	}
	if params.EventID != nil && strings.TrimSpace(*params.EventID) != "" {
		query = query.Where("event_id = ?", strings.TrimSpace(*params.EventID))
	}
	return query
}

// --- similarity search ------------------------------------------------------

// SearchEventsWithMarkets invokes the grouped search function. The
// function returns one jsonb value shaped {"results": [...]}.
func (s *Store) SearchEventsWithMarkets(ctx context.Context, embedding models.Vector, matchCount, marketsPerEvent int) (json.RawMessage, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	row := s.db.WithContext(ctx).
		Raw("SELECT search_kalshi_events_with_markets(?::vector(1536), ?, ?)",
			embedding, matchCount, marketsPerEvent).
		Row()
	var payload []byte
	if err := row.Scan(&payload); err != nil {
		return nil, err
	}
	return json.RawMessage(payload), nil
}

// MatchMarkets invokes the flat search function, returning market rows
// ranked by similarity.
func (s *Store) MatchMarkets(ctx context.Context, embedding models.Vector, matchCount int) ([]repository.MarketSearchRow, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var rows []repository.MarketSearchRow
	err := s.db.WithContext(ctx).
		Raw("SELECT * FROM match_markets(?::vector(1536), ?)", embedding, matchCount).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func normalizeLimit(limit, def int) int {
	if limit <= 0 {
		return def
	}
	if limit > 1000 {
		return 1000
	}
	return limit
}

func normalizeOffset(offset int) int {
	if offset < 0 {
		return 0
	}
	return offset
}
