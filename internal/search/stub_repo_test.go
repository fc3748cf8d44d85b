package search

import (
	"context"
	"encoding/json"

	"marketsearch/internal/models"
	"marketsearch/internal/repository"
)

// stubRepo is a test-only in-memory repository. Only the search entry
// points carry behavior; the rest satisfy the interface.
type stubRepo struct {
	searchPayload json.RawMessage
	searchErr     error
	matchRows     []repository.MarketSearchRow
	matchErr      error

	lastMatchCount      int
	lastMarketsPerEvent int
}

func (s *stubRepo) ListEventsMissingEmbedding(ctx context.Context, limit int) ([]models.Event, error) {
	return nil, nil
}

func (s *stubRepo) UpdateEventEmbedding(ctx context.Context, eventID string, embedding models.Vector) error {
	return nil
}

func (s *stubRepo) ListActiveMarkets(ctx context.Context, platform string, limit int) ([]models.Market, error) {
	return nil, nil
}

func (s *stubRepo) ListOutcomesByMarketIDs(ctx context.Context, marketIDs []string) ([]models.Outcome, error) {
	return nil, nil
}

func (s *stubRepo) InsertMarketPrices(ctx context.Context, rows []models.MarketPrice) error {
	return nil
}

func (s *stubRepo) ListEvents(ctx context.Context, params repository.ListEventsParams) ([]models.Event, error) {
	return nil, nil
}

func (s *stubRepo) CountEvents(ctx context.Context, params repository.ListEventsParams) (int64, error) {
	return 0, nil
}

func (s *stubRepo) ListMarkets(ctx context.Context, params repository.ListMarketsParams) ([]models.Market, error) {
	return nil, nil
}

func (s *stubRepo) CountMarkets(ctx context.Context, params repository.ListMarketsParams) (int64, error) {
	return 0, nil
}

func (s *stubRepo) SearchEventsWithMarkets(ctx context.Context, embedding models.Vector, matchCount, marketsPerEvent int) (json.RawMessage, error) {
	s.lastMatchCount = matchCount
	s.lastMarketsPerEvent = marketsPerEvent
	return s.searchPayload, s.searchErr
}

func (s *stubRepo) MatchMarkets(ctx context.Context, embedding models.Vector, matchCount int) ([]repository.MarketSearchRow, error) {
	s.lastMatchCount = matchCount
	return s.matchRows, s.matchErr
}

var _ repository.Repository = (*stubRepo)(nil)
