package search

import (
	"context"
	"encoding/json"
	"time"

	"marketsearch/internal/models"
	"marketsearch/internal/repository"
)

// MarketSearch is the flat variant: match_markets returns individual
// market rows ranked by similarity, and each surviving row is reshaped
// into a one-market event for the frontend.
type MarketSearch struct {
	Repo repository.Repository
}

type MarketResult struct {
	EventID    string         `json:"event_id"`
	EventTitle string         `json:"event_title"`
	Similarity float64        `json:"similarity"`
	Markets    []ResultMarket `json:"markets"`
}

type ResultMarket struct {
	MarketID         string          `json:"market_id"`
	MarketTitle      string          `json:"market_title"`
	ExternalMarketID *string         `json:"external_market_id"`
	Outcomes         []ResultOutcome `json:"outcomes"`
}

type ResultOutcome struct {
	Label       string       `json:"label"`
	LatestPrice *LatestPrice `json:"latest_price"`
}

type LatestPrice struct {
	Price float64    `json:"price"`
	TS    *time.Time `json:"ts"`
}

func (p *MarketSearch) Defaults() Defaults {
	return Defaults{Limit: 10, MinSimilarity: 0.2}
}

func (p *MarketSearch) Search(ctx context.Context, req Request) ([]any, error) {
	rows, err := p.Repo.MatchMarkets(ctx, models.Vector(req.Embedding), req.Limit)
	if err != nil {
		return nil, &RemoteError{Op: "match_markets", Err: err}
	}

	results := make([]any, 0, len(rows))
	for _, row := range rows {
		if row.Similarity == nil || *row.Similarity < req.MinSimilarity {
			continue
		}
		results = append(results, reshapeRow(row))
	}
	return results, nil
}

// reshapeRow synthesizes a single-market event from one matched market.
// The flat variant has no real event grouping, so the event fields alias
// the market's own id and title.
func reshapeRow(row repository.MarketSearchRow) MarketResult {
	externalID := row.Ticker
	if externalID == nil || *externalID == "" {
		externalID = row.Slug
	}

	return MarketResult{
		EventID:    row.ID,
		EventTitle: row.Title,
		Similarity: *row.Similarity,
		Markets: []ResultMarket{{
			MarketID:         row.ID,
			MarketTitle:      row.Title,
			ExternalMarketID: externalID,
			Outcomes:         zipOutcomes(row),
		}},
	}
}

// zipOutcomes pairs each outcome label with its price by position,
// truncating to the shorter of the two lists.
func zipOutcomes(row repository.MarketSearchRow) []ResultOutcome {
	labels := decodeLabels(row.Outcomes)
	prices := decodePrices(row.OutcomePrices)

	n := len(labels)
	if len(prices) < n {
		n = len(prices)
	}

	outcomes := make([]ResultOutcome, 0, n)
	for i := 0; i < n; i++ {
		var latest *LatestPrice
		if prices[i] != nil {
			latest = &LatestPrice{Price: *prices[i], TS: row.PriceUpdatedAt}
		}
		outcomes = append(outcomes, ResultOutcome{
			Label:       labels[i],
			LatestPrice: latest,
		})
	}
	return outcomes
}

func decodeLabels(raw []byte) []string {
	if len(raw) == 0 {
		return nil
	}
	var labels []string
	if err := json.Unmarshal(raw, &labels); err != nil {
		return nil
	}
	return labels
}

func decodePrices(raw []byte) []*float64 {
	if len(raw) == 0 {
		return nil
	}
	var prices []*float64
	if err := json.Unmarshal(raw, &prices); err != nil {
		return nil
	}
	return prices
}
