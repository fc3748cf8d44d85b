package service

import (
	"context"
	"encoding/json"

	"marketsearch/internal/models"
	"marketsearch/internal/repository"
)

// stubRepo is a test-only in-memory repository for the batch jobs.
type stubRepo struct {
	pendingEvents []models.Event
	updates       map[string]models.Vector

	activeMarkets []models.Market
	outcomes      []models.Outcome
	inserted      []models.MarketPrice

	listErr   error
	insertErr error
}

func newStubRepo() *stubRepo {
	return &stubRepo{updates: map[string]models.Vector{}}
}

func (s *stubRepo) ListEventsMissingEmbedding(ctx context.Context, limit int) ([]models.Event, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	if limit > len(s.pendingEvents) {
		limit = len(s.pendingEvents)
	}
	return s.pendingEvents[:limit], nil
}

func (s *stubRepo) UpdateEventEmbedding(ctx context.Context, eventID string, embedding models.Vector) error {
	s.updates[eventID] = embedding
	remaining := make([]models.Event, 0, len(s.pendingEvents))
	for _, e := range s.pendingEvents {
		if e.ID != eventID {
			remaining = append(remaining, e)
		}
	}
	s.pendingEvents = remaining
	return nil
}

func (s *stubRepo) ListActiveMarkets(ctx context.Context, platform string, limit int) ([]models.Market, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	if limit > 0 && limit < len(s.activeMarkets) {
		return s.activeMarkets[:limit], nil
	}
	return s.activeMarkets, nil
}

func (s *stubRepo) ListOutcomesByMarketIDs(ctx context.Context, marketIDs []string) ([]models.Outcome, error) {
	return s.outcomes, nil
}

func (s *stubRepo) InsertMarketPrices(ctx context.Context, rows []models.MarketPrice) error {
	if s.insertErr != nil {
		return s.insertErr
	}
	s.inserted = append(s.inserted, rows...)
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
	return nil, nil
}

func (s *stubRepo) MatchMarkets(ctx context.Context, embedding models.Vector, matchCount int) ([]repository.MarketSearchRow, error) {
	return nil, nil
}

var _ repository.Repository = (*stubRepo)(nil)
