package search

import (
	"context"
	"encoding/json"

	"marketsearch/internal/models"
	"marketsearch/internal/repository"
)

// EventSearch is the pre-grouped variant: the database function returns
// a {"results": [...]} envelope with events and their nested markets,
// and surviving rows pass through unmodified.
type EventSearch struct {
	Repo repository.Repository
}

func (p *EventSearch) Defaults() Defaults {
	return Defaults{Limit: 5, MinSimilarity: 0.5, MarketsPerEvent: 3}
}

func (p *EventSearch) Search(ctx context.Context, req Request) ([]any, error) {
	payload, err := p.Repo.SearchEventsWithMarkets(ctx, models.Vector(req.Embedding), req.Limit, req.MarketsPerEvent)
	if err != nil {
		return nil, &RemoteError{Op: "search_kalshi_events_with_markets", Err: err}
	}

	var envelope struct {
		Results []map[string]any `json:"results"`
	}
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &envelope); err != nil {
			return nil, &RemoteError{Op: "decode search payload", Err: err}
		}
	}

	filtered := make([]any, 0, len(envelope.Results))
	for _, r := range envelope.Results {
		sim, ok := similarityOf(r["similarity"])
		if !ok || sim < req.MinSimilarity {
			continue
		}
		filtered = append(filtered, r)
	}
	return filtered, nil
}

// similarityOf extracts a numeric similarity from a decoded json value.
// Rows without one are excluded regardless of threshold.
func similarityOf(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}
