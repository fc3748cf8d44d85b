package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"marketsearch/internal/client/kalshi"
	"marketsearch/internal/config"
	"marketsearch/internal/models"
	"marketsearch/internal/repository"
)

// MarketSnapshotter fetches a live snapshot for one market ticker.
type MarketSnapshotter interface {
	GetMarket(ctx context.Context, ticker string) (*kalshi.Market, error)
}

// PriceRefreshService appends a price-history row per outcome side for
// every active market whose YES and NO outcomes resolve. One snapshot
// fetch per market, throttled; a single batch insert at the end.
type PriceRefreshService struct {
	Repo   repository.Repository
	Kalshi MarketSnapshotter
	Logger *zap.Logger
	Config config.PriceRefreshConfig
}

type RefreshResult struct {
	MarketsUpdated int
	RowsInserted   int
	MarketsSkipped int
}

type outcomeKey struct {
	MarketID string
	Label    string
}

type provenance struct {
	Source string `json:"source"`
	Ticker string `json:"ticker"`
}

const snapshotSource = "kalshi_market_endpoint"

func (s *PriceRefreshService) RunOnce(ctx context.Context) (RefreshResult, error) {
	var result RefreshResult
	if s == nil || s.Repo == nil || s.Kalshi == nil {
		return result, nil
	}

	platform := s.Config.Platform
	if platform == "" {
		platform = "kalshi"
	}
	limit := s.Config.MarketLimit
	if limit <= 0 {
		limit = 500
	}
	throttle := s.Config.Throttle
	if throttle <= 0 {
		throttle = 50 * time.Millisecond
	}

	markets, err := s.Repo.ListActiveMarkets(ctx, platform, limit)
	if err != nil {
		return result, fmt.Errorf("list active markets: %w", err)
	}
	if len(markets) == 0 {
		s.logInfo("no active markets found; seed events/markets first")
		return result, nil
	}

	marketIDs := make([]string, 0, len(markets))
	for _, m := range markets {
		marketIDs = append(marketIDs, m.ID)
	}
	outcomes, err := s.Repo.ListOutcomesByMarketIDs(ctx, marketIDs)
	if err != nil {
		return result, fmt.Errorf("list outcomes: %w", err)
	}

	lookup := make(map[outcomeKey]string, len(outcomes))
	for _, o := range outcomes {
		label := strings.ToUpper(strings.TrimSpace(o.Label))
		lookup[outcomeKey{MarketID: o.MarketID, Label: label}] = o.ID
	}

	var inserts []models.MarketPrice
	for i, m := range markets {
		yesID := lookup[outcomeKey{MarketID: m.ID, Label: "YES"}]
		noID := lookup[outcomeKey{MarketID: m.ID, Label: "NO"}]
		if yesID == "" || noID == "" {
			result.MarketsSkipped++
			continue
		}

		snap, err := s.Kalshi.GetMarket(ctx, m.ExternalMarketID)
		if err != nil {
			return result, fmt.Errorf("snapshot for %s: %w", m.ExternalMarketID, err)
		}

		inserts = append(inserts,
			buildPriceRow(yesID, m.ExternalMarketID, snap.YesBid, snap.YesAsk, snap.Liquidity),
			buildPriceRow(noID, m.ExternalMarketID, snap.NoBid, snap.NoAsk, snap.Liquidity),
		)
		result.MarketsUpdated++

		// Throttle between exchange calls; the API rate-limits bursts.
		if i < len(markets)-1 {
			if err := sleepCtx(ctx, throttle); err != nil {
				return result, err
			}
		}
	}

	if err := s.Repo.InsertMarketPrices(ctx, inserts); err != nil {
		return result, fmt.Errorf("insert price rows: %w", err)
	}
	result.RowsInserted = len(inserts)

	s.logInfo("price refresh complete",
		zap.Int("markets_updated", result.MarketsUpdated),
		zap.Int("rows_inserted", result.RowsInserted),
		zap.Int("markets_skipped", result.MarketsSkipped),
	)
	return result, nil
}

func buildPriceRow(outcomeID, ticker string, bidCents, askCents *int, liquidityCents *int64) models.MarketPrice {
	bid := centsToProb(bidCents)
	ask := centsToProb(askCents)

	var liquidity *decimal.Decimal
	if liquidityCents != nil {
		d := decimal.NewFromInt(*liquidityCents)
		liquidity = &d
	}

	raw, _ := json.Marshal(provenance{Source: snapshotSource, Ticker: ticker})

	return models.MarketPrice{
		OutcomeID: outcomeID,
		Price:     representativePrice(bid, ask),
		Bid:       bid,
		Ask:       ask,
		Liquidity: liquidity,
		PriceJSON: datatypes.JSON(raw),
	}
}

// centsToProb converts a cent-denominated binary price (0..100) to a
// 0.0-1.0 probability. A missing quote stays missing, not zero.
func centsToProb(cents *int) *decimal.Decimal {
	if cents == nil {
		return nil
	}
	d := decimal.New(int64(*cents), -2)
	return &d
}

func midpoint(bid, ask *decimal.Decimal) *decimal.Decimal {
	if bid == nil || ask == nil {
		return nil
	}
	m := bid.Add(*ask).Div(decimal.NewFromInt(2))
	return &m
}

// representativePrice is the stored "price" for a side: the bid/ask
// midpoint when both quotes exist, else ask, else bid, else zero.
func representativePrice(bid, ask *decimal.Decimal) decimal.Decimal {
	if m := midpoint(bid, ask); m != nil {
		return *m
	}
	if ask != nil {
		return *ask
	}
	if bid != nil {
		return *bid
	}
	return decimal.Zero
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (s *PriceRefreshService) logInfo(msg string, fields ...zap.Field) {
	if s.Logger != nil {
		s.Logger.Info(msg, fields...)
	}
}
