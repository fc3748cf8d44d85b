package service

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"marketsearch/internal/client/kalshi"
	"marketsearch/internal/config"
	"marketsearch/internal/models"
)

type stubSnapshotter struct {
	snapshots map[string]*kalshi.Market
	err       error
	calls     []string
}

func (s *stubSnapshotter) GetMarket(ctx context.Context, ticker string) (*kalshi.Market, error) {
	s.calls = append(s.calls, ticker)
	if s.err != nil {
		return nil, s.err
	}
	if snap, ok := s.snapshots[ticker]; ok {
		return snap, nil
	}
	return &kalshi.Market{Ticker: ticker}, nil
}

func intPtr(v int) *int       { return &v }
func int64Ptr(v int64) *int64 { return &v }

func decEq(t *testing.T, got decimal.Decimal, want string) {
	t.Helper()
	if !got.Equal(decimal.RequireFromString(want)) {
		t.Fatalf("got %s, want %s", got, want)
	}
}

func TestCentsToProb(t *testing.T) {
	if centsToProb(nil) != nil {
		t.Fatalf("nil cents should stay nil")
	}
	decEq(t, *centsToProb(intPtr(40)), "0.4")
	decEq(t, *centsToProb(intPtr(0)), "0")
	decEq(t, *centsToProb(intPtr(100)), "1")
}

func TestRepresentativePrice(t *testing.T) {
	bid := centsToProb(intPtr(40))
	ask := centsToProb(intPtr(60))

	decEq(t, representativePrice(bid, ask), "0.5")
	decEq(t, representativePrice(bid, nil), "0.4")
	decEq(t, representativePrice(nil, ask), "0.6")
	decEq(t, representativePrice(nil, nil), "0")
}

func TestBuildPriceRowNoQuotes(t *testing.T) {
	row := buildPriceRow("o1", "TICK", nil, nil, nil)
	decEq(t, row.Price, "0")
	if row.Bid != nil || row.Ask != nil {
		t.Fatalf("bid/ask should stay absent, got %v/%v", row.Bid, row.Ask)
	}
	if row.Liquidity != nil {
		t.Fatalf("liquidity should be absent")
	}
	if string(row.PriceJSON) != `{"source":"kalshi_market_endpoint","ticker":"TICK"}` {
		t.Fatalf("provenance: %s", row.PriceJSON)
	}
}

func refreshFixture() (*stubRepo, *stubSnapshotter) {
	repo := newStubRepo()
	repo.activeMarkets = []models.Market{
		{ID: "m1", ExternalMarketID: "TICK-1"},
		{ID: "m2", ExternalMarketID: "TICK-2"},
	}
	repo.outcomes = []models.Outcome{
		{ID: "o1y", MarketID: "m1", Label: "yes"},
		{ID: "o1n", MarketID: "m1", Label: " No "},
		// m2 has only one side; it must be skipped entirely.
		{ID: "o2y", MarketID: "m2", Label: "YES"},
	}
	snaps := &stubSnapshotter{snapshots: map[string]*kalshi.Market{
		"TICK-1": {
			Ticker:    "TICK-1",
			YesBid:    intPtr(40),
			YesAsk:    intPtr(60),
			NoBid:     intPtr(38),
			Liquidity: int64Ptr(125000),
		},
	}}
	return repo, snaps
}

func TestPriceRefreshRunOnce(t *testing.T) {
	repo, snaps := refreshFixture()
	svc := &PriceRefreshService{
		Repo:   repo,
		Kalshi: snaps,
		Config: config.PriceRefreshConfig{Throttle: 1},
	}

	result, err := svc.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if result.MarketsUpdated != 1 || result.MarketsSkipped != 1 || result.RowsInserted != 2 {
		t.Fatalf("result=%+v", result)
	}
	if len(snaps.calls) != 1 || snaps.calls[0] != "TICK-1" {
		t.Fatalf("snapshot calls=%v (skipped market must not be fetched)", snaps.calls)
	}
	if len(repo.inserted) != 2 {
		t.Fatalf("inserted=%d", len(repo.inserted))
	}

	yes := repo.inserted[0]
	if yes.OutcomeID != "o1y" {
		t.Fatalf("yes outcome=%q", yes.OutcomeID)
	}
	decEq(t, yes.Price, "0.5")
	decEq(t, *yes.Bid, "0.4")
	decEq(t, *yes.Ask, "0.6")
	decEq(t, *yes.Liquidity, "125000")

	no := repo.inserted[1]
	if no.OutcomeID != "o1n" {
		t.Fatalf("no outcome=%q", no.OutcomeID)
	}
	// Only the bid side is quoted: price falls back to bid.
	decEq(t, no.Price, "0.38")
	decEq(t, *no.Bid, "0.38")
	if no.Ask != nil {
		t.Fatalf("no ask should be absent")
	}
}

func TestPriceRefreshAbortsOnSnapshotError(t *testing.T) {
	repo, snaps := refreshFixture()
	snaps.err = errors.New("exchange unavailable")
	svc := &PriceRefreshService{
		Repo:   repo,
		Kalshi: snaps,
		Config: config.PriceRefreshConfig{Throttle: 1},
	}

	if _, err := svc.RunOnce(context.Background()); err == nil {
		t.Fatalf("expected error")
	}
	if len(repo.inserted) != 0 {
		t.Fatalf("nothing should be inserted after an aborted run")
	}
}

func TestPriceRefreshNoMarkets(t *testing.T) {
	svc := &PriceRefreshService{
		Repo:   newStubRepo(),
		Kalshi: &stubSnapshotter{},
	}
	result, err := svc.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if result != (RefreshResult{}) {
		t.Fatalf("result=%+v", result)
	}
}
