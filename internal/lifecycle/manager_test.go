package lifecycle

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/advaitm/stockpilot/internal/contracts"
	"github.com/advaitm/stockpilot/pkg/config"
	"github.com/advaitm/stockpilot/pkg/logger"
)

// ---------------------------------------------------------------------------
// In-memory fakes
// ---------------------------------------------------------------------------

type fakeWatch struct {
	entries map[int64]*contracts.WatchlistEntry
	nextID  int64
	recs    *fakeRecs
	checks  int
}

func newFakeWatch() *fakeWatch {
	return &fakeWatch{entries: map[int64]*contracts.WatchlistEntry{}, nextID: 1}
}

func (f *fakeWatch) GetAll(ctx context.Context) ([]*contracts.WatchlistEntry, error) {
	out := make([]*contracts.WatchlistEntry, 0, len(f.entries))
	for _, e := range f.entries {
		out = append(out, e)
	}
	return out, nil
}

func (f *fakeWatch) UpdateCheck(ctx context.Context, id int64, score float64, checkedAt time.Time) error {
	f.checks++
	e, ok := f.entries[id]
	if !ok {
		return contracts.ErrNotFound
	}
	e.LastScore = score
	e.LastCheckedAt = checkedAt
	return nil
}

func (f *fakeWatch) Remove(ctx context.Context, id int64) error {
	delete(f.entries, id)
	return nil
}

func (f *fakeWatch) Reenter(ctx context.Context, entryID int64, rec *contracts.Recommendation) (int64, error) {
	if _, ok := f.entries[entryID]; !ok {
		return 0, contracts.ErrNotFound
	}
	id, err := f.recs.Create(ctx, rec)
	if err != nil {
		return 0, err
	}
	delete(f.entries, entryID)
	return id, nil
}

func (f *fakeWatch) add(e *contracts.WatchlistEntry) *contracts.WatchlistEntry {
	e.ID = f.nextID
	f.nextID++
	f.entries[e.ID] = e
	return e
}

func (f *fakeWatch) bySymbol(symbol string) *contracts.WatchlistEntry {
	for _, e := range f.entries {
		if e.Symbol == symbol {
			return e
		}
	}
	return nil
}

type fakeRecs struct {
	recs   map[int64]*contracts.Recommendation
	nextID int64
	watch  *fakeWatch

	creates, checks, promotes, sells int
	lastSale                         contracts.Sale
}

func newFakeRecs(watch *fakeWatch) *fakeRecs {
	f := &fakeRecs{recs: map[int64]*contracts.Recommendation{}, nextID: 1, watch: watch}
	if watch != nil {
		watch.recs = f
	}
	return f
}

func (f *fakeRecs) Create(ctx context.Context, rec *contracts.Recommendation) (int64, error) {
	for _, r := range f.recs {
		if r.Symbol == rec.Symbol && r.Status == contracts.StatusActive {
			return 0, contracts.ErrValidation
		}
	}
	cp := *rec
	cp.ID = f.nextID
	f.nextID++
	f.recs[cp.ID] = &cp
	f.creates++
	return cp.ID, nil
}

func (f *fakeRecs) GetActive(ctx context.Context) ([]*contracts.Recommendation, error) {
	var out []*contracts.Recommendation
	for _, r := range f.recs {
		if r.Status == contracts.StatusActive {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRecs) GetActiveByTier(ctx context.Context, tier contracts.Tier) ([]*contracts.Recommendation, error) {
	var out []*contracts.Recommendation
	for _, r := range f.recs {
		if r.Status == contracts.StatusActive && r.Tier == tier {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRecs) GetActiveBySymbol(ctx context.Context, symbol string) (*contracts.Recommendation, error) {
	for _, r := range f.recs {
		if r.Symbol == symbol && r.Status == contracts.StatusActive {
			return r, nil
		}
	}
	return nil, contracts.ErrNotFound
}

func (f *fakeRecs) GetRecentlySold(ctx context.Context, since time.Time) ([]*contracts.Recommendation, error) {
	return nil, nil
}

func (f *fakeRecs) UpdateCheck(ctx context.Context, id int64, price, score float64, label string, checkedAt time.Time) error {
	r, ok := f.recs[id]
	if !ok {
		return contracts.ErrNotFound
	}
	r.CurrentPrice = price
	r.Score = score
	r.Label = label
	r.LastCheckedAt = checkedAt
	f.checks++
	return nil
}

func (f *fakeRecs) Promote(ctx context.Context, id int64, p contracts.Promotion) error {
	r, ok := f.recs[id]
	if !ok {
		return contracts.ErrNotFound
	}
	r.Tier = contracts.TierStrong
	r.EntryPrice = p.Price
	r.CurrentPrice = p.Price
	r.WeeklyRefPrice = p.Price
	r.Score = p.Score
	r.Label = p.Label
	r.TargetPrice = p.TargetPrice
	r.StopLoss = p.StopLoss
	at := p.PromotedAt
	r.PromotedAt = &at
	f.promotes++
	return nil
}

func (f *fakeRecs) Sell(ctx context.Context, id int64, s contracts.Sale) error {
	r, ok := f.recs[id]
	if !ok {
		return contracts.ErrNotFound
	}
	r.Status = contracts.StatusSold
	r.SellPrice = s.Price
	r.SellReason = s.Reason
	r.RealizedReturn = s.ReturnPct
	at := s.SoldAt
	r.SoldAt = &at
	if s.Watch != nil && f.watch != nil {
		f.watch.add(s.Watch)
	}
	f.sells++
	f.lastSale = s
	return nil
}

func (f *fakeRecs) UpdateWeeklyReference(ctx context.Context, id int64, price float64, asOf time.Time) error {
	r, ok := f.recs[id]
	if !ok {
		return contracts.ErrNotFound
	}
	r.WeeklyRefPrice = price
	return nil
}

type fakePerf struct {
	samples []*contracts.PerformanceSample
}

func (f *fakePerf) Add(ctx context.Context, s *contracts.PerformanceSample) error {
	f.samples = append(f.samples, s)
	return nil
}

func (f *fakePerf) GetByRecommendation(ctx context.Context, id int64, limit int) ([]*contracts.PerformanceSample, error) {
	return f.samples, nil
}

// fakeAnalyzer returns a scripted analysis per symbol
type fakeAnalyzer struct {
	results map[string]*contracts.Analysis
	err     error
	calls   int
}

func (f *fakeAnalyzer) Analyze(ctx context.Context, inst contracts.Instrument) (*contracts.Analysis, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	a, ok := f.results[inst.Symbol]
	if !ok {
		return nil, contracts.ErrDataUnavailable
	}
	return a, nil
}

// ---------------------------------------------------------------------------
// Harness
// ---------------------------------------------------------------------------

type fixture struct {
	mgr      *Manager
	recs     *fakeRecs
	perf     *fakePerf
	watch    *fakeWatch
	analyzer *fakeAnalyzer
	now      time.Time
}

func newFixture(t *testing.T, cfg Config) *fixture {
	t.Helper()
	watch := newFakeWatch()
	recs := newFakeRecs(watch)
	perf := &fakePerf{}
	analyzer := &fakeAnalyzer{results: map[string]*contracts.Analysis{}}
	log := logger.New(&config.Config{Env: "test", LogLevel: "error"})

	return &fixture{
		mgr:      NewManager(cfg, recs, perf, watch, analyzer, log),
		recs:     recs,
		perf:     perf,
		watch:    watch,
		analyzer: analyzer,
		now:      time.Date(2025, 6, 20, 16, 0, 0, 0, time.UTC),
	}
}

func (f *fixture) activeRec(t *testing.T, symbol string, tier contracts.Tier, entry float64, score float64, recommendedAt time.Time) *contracts.Recommendation {
	t.Helper()
	rec := &contracts.Recommendation{
		Symbol:         symbol,
		Name:           symbol,
		Tier:           tier,
		Status:         contracts.StatusActive,
		Score:          score,
		Label:          "BUY",
		EntryPrice:     entry,
		CurrentPrice:   entry,
		WeeklyRefPrice: entry,
		RecommendedAt:  recommendedAt,
	}
	id, err := f.recs.Create(context.Background(), rec)
	require.NoError(t, err)
	return f.recs.recs[id]
}

// ---------------------------------------------------------------------------
// RecordNew
// ---------------------------------------------------------------------------

func TestRecordNewSkipsSubActionable(t *testing.T) {
	f := newFixture(t, DefaultConfig())

	created, err := f.mgr.RecordNew(context.Background(),
		contracts.Instrument{Symbol: "IDEA"},
		&contracts.Analysis{Symbol: "IDEA", Score: 30, Price: 10},
		contracts.MinActionableScore, f.now)

	require.NoError(t, err)
	assert.False(t, created)
	assert.Zero(t, f.recs.creates)
}

func TestRecordNewHonorsLoweredMinimum(t *testing.T) {
	f := newFixture(t, DefaultConfig())

	created, err := f.mgr.RecordNew(context.Background(),
		contracts.Instrument{Symbol: "IDEA"},
		&contracts.Analysis{Symbol: "IDEA", Score: 30, Label: "HOLD", Price: 10},
		25, f.now)

	require.NoError(t, err)
	assert.True(t, created)

	rec, err := f.recs.GetActiveBySymbol(context.Background(), "IDEA")
	require.NoError(t, err)
	assert.Equal(t, contracts.TierHold, rec.Tier)
}

func TestRecordNewCreatesStrong(t *testing.T) {
	f := newFixture(t, DefaultConfig())

	created, err := f.mgr.RecordNew(context.Background(),
		contracts.Instrument{Symbol: "TCS", Name: "Tata Consultancy"},
		&contracts.Analysis{Symbol: "TCS", Score: 72, Label: "BUY", Price: 4000},
		contracts.MinActionableScore, f.now)

	require.NoError(t, err)
	assert.True(t, created)

	rec, err := f.recs.GetActiveBySymbol(context.Background(), "TCS")
	require.NoError(t, err)
	assert.Equal(t, contracts.TierStrong, rec.Tier)
	assert.InDelta(t, 4000*1.15, rec.TargetPrice, 1e-9)
	assert.InDelta(t, 4000*0.90, rec.StopLoss, 1e-9)
	assert.InDelta(t, 4000.0, rec.WeeklyRefPrice, 1e-9)
	assert.Equal(t, f.now, rec.RecommendedAt)
}

func TestRecordNewRefreshesExisting(t *testing.T) {
	f := newFixture(t, DefaultConfig())
	f.activeRec(t, "INFY", contracts.TierWeak, 1500, 55, f.now.AddDate(0, 0, -7))

	created, err := f.mgr.RecordNew(context.Background(),
		contracts.Instrument{Symbol: "INFY"},
		&contracts.Analysis{Symbol: "INFY", Score: 58, Label: "WEAK BUY", Price: 1520},
		contracts.MinActionableScore, f.now)

	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, 1, f.recs.creates)
	assert.Equal(t, 1, f.recs.checks)

	rec, _ := f.recs.GetActiveBySymbol(context.Background(), "INFY")
	assert.InDelta(t, 58.0, rec.Score, 1e-9)
	assert.InDelta(t, 1520.0, rec.CurrentPrice, 1e-9)
}

func TestRecordNewKeepsHigherStoredScore(t *testing.T) {
	f := newFixture(t, DefaultConfig())
	f.activeRec(t, "INFY", contracts.TierWeak, 1500, 64, f.now.AddDate(0, 0, -7))

	created, err := f.mgr.RecordNew(context.Background(),
		contracts.Instrument{Symbol: "INFY"},
		&contracts.Analysis{Symbol: "INFY", Score: 52, Label: "WEAK BUY", Price: 1480},
		contracts.MinActionableScore, f.now)

	require.NoError(t, err)
	assert.False(t, created)

	rec, _ := f.recs.GetActiveBySymbol(context.Background(), "INFY")
	assert.InDelta(t, 64.0, rec.Score, 1e-9)
	assert.InDelta(t, 1480.0, rec.CurrentPrice, 1e-9)
	assert.Equal(t, f.now, rec.LastCheckedAt)
}

// ---------------------------------------------------------------------------
// STRONG sell chain
// ---------------------------------------------------------------------------

func TestMonitorStrongHardScoreBeatsStopLoss(t *testing.T) {
	f := newFixture(t, DefaultConfig())
	rec := f.activeRec(t, "SBIN", contracts.TierStrong, 100, 78, f.now.AddDate(0, 0, -10))
	f.analyzer.results["SBIN"] = &contracts.Analysis{Symbol: "SBIN", Score: 40, Label: "WEAK BUY", Price: 90}

	// Both rules match; the score rule must win
	out, err := f.mgr.MonitorStrong(context.Background(), rec, 90, f.now)
	require.NoError(t, err)
	assert.True(t, out.Sold)
	assert.Equal(t, contracts.SellScoreDeterioration, out.Reason)

	entry := f.watch.bySymbol("SBIN")
	require.NotNil(t, entry)
	assert.InDelta(t, 78.0, entry.OriginalScore, 1e-9)
	assert.InDelta(t, 40.0, entry.LastScore, 1e-9)
}

func TestMonitorStrongStopLoss(t *testing.T) {
	f := newFixture(t, DefaultConfig())
	rec := f.activeRec(t, "ITC", contracts.TierStrong, 100, 75, f.now.AddDate(0, 0, -5))
	f.analyzer.results["ITC"] = &contracts.Analysis{Symbol: "ITC", Score: 60, Label: "BUY", Price: 93}

	out, err := f.mgr.MonitorStrong(context.Background(), rec, 93, f.now)
	require.NoError(t, err)
	assert.True(t, out.Sold)
	assert.Equal(t, contracts.SellStopLoss, out.Reason)
	assert.InDelta(t, -7.0, f.recs.lastSale.ReturnPct, 1e-9)
}

func TestMonitorStrongWeakIndicatorConfirmation(t *testing.T) {
	// Rule (c) can only fire when the hard score floor sits below the
	// weakness floor; thread an alternate config to exercise it.
	cfg := DefaultConfig()
	cfg.HardSellScore = 20
	f := newFixture(t, cfg)
	rec := f.activeRec(t, "DLF", contracts.TierStrong, 100, 72, f.now.AddDate(0, 0, -3))
	f.analyzer.results["DLF"] = &contracts.Analysis{Symbol: "DLF", Score: 30, Label: "HOLD", Price: 94.5}

	out, err := f.mgr.MonitorStrong(context.Background(), rec, 94.5, f.now)
	require.NoError(t, err)
	assert.True(t, out.Sold)
	assert.Equal(t, contracts.SellWeakWithLoss, out.Reason)
}

func TestMonitorStrongHealthyHolds(t *testing.T) {
	f := newFixture(t, DefaultConfig())
	rec := f.activeRec(t, "LT", contracts.TierStrong, 100, 80, f.now.AddDate(0, 0, -2))
	f.analyzer.results["LT"] = &contracts.Analysis{Symbol: "LT", Score: 76, Label: "STRONG BUY", Price: 105}

	out, err := f.mgr.MonitorStrong(context.Background(), rec, 105, f.now)
	require.NoError(t, err)
	assert.False(t, out.Sold)
	assert.Zero(t, f.recs.sells)
	assert.Equal(t, 1, f.recs.checks)
	assert.Nil(t, f.watch.bySymbol("LT"))
}

func TestMonitorStrongIdempotent(t *testing.T) {
	f := newFixture(t, DefaultConfig())
	rec := f.activeRec(t, "WIPRO", contracts.TierStrong, 100, 75, f.now.AddDate(0, 0, -2))
	f.analyzer.results["WIPRO"] = &contracts.Analysis{Symbol: "WIPRO", Score: 72, Label: "BUY", Price: 101}

	// Two identical passes with unchanged prices: no sell either time
	for i := 0; i < 2; i++ {
		out, err := f.mgr.MonitorStrong(context.Background(), rec, 101, f.now)
		require.NoError(t, err)
		assert.False(t, out.Sold)
	}
	assert.Zero(t, f.recs.sells)
}

// ---------------------------------------------------------------------------
// Promotion
// ---------------------------------------------------------------------------

func TestCheckPromotionRequiresBothConditions(t *testing.T) {
	f := newFixture(t, DefaultConfig())
	rec := f.activeRec(t, "HCLTECH", contracts.TierWeak, 100, 62, f.now.AddDate(0, 0, -4))
	f.analyzer.results["HCLTECH"] = &contracts.Analysis{Symbol: "HCLTECH", Score: 80, Label: "STRONG BUY", Price: 101.5}

	// +1.5% with re-score 80 must NOT promote; the gate never opens
	out, err := f.mgr.CheckPromotion(context.Background(), rec, 101.5, f.now)
	require.NoError(t, err)
	assert.False(t, out.Promoted)
	assert.Zero(t, f.analyzer.calls)
	assert.Zero(t, f.recs.promotes)
}

func TestCheckPromotionScoreTooLow(t *testing.T) {
	f := newFixture(t, DefaultConfig())
	rec := f.activeRec(t, "TITAN", contracts.TierWeak, 100, 60, f.now.AddDate(0, 0, -4))
	f.analyzer.results["TITAN"] = &contracts.Analysis{Symbol: "TITAN", Score: 65, Label: "BUY", Price: 103}

	out, err := f.mgr.CheckPromotion(context.Background(), rec, 103, f.now)
	require.NoError(t, err)
	assert.False(t, out.Promoted)
	assert.Equal(t, 1, f.analyzer.calls)
	assert.Zero(t, f.recs.promotes)
	// Check fields still refreshed
	assert.Equal(t, 1, f.recs.checks)
}

func TestPromotionRoundTrip(t *testing.T) {
	f := newFixture(t, DefaultConfig())

	// Created at score 68: WEAK
	created, err := f.mgr.RecordNew(context.Background(),
		contracts.Instrument{Symbol: "ASIANPAINT"},
		&contracts.Analysis{Symbol: "ASIANPAINT", Score: 68, Label: "BUY", Price: 100},
		contracts.MinActionableScore, f.now)
	require.NoError(t, err)
	require.True(t, created)

	rec, err := f.recs.GetActiveBySymbol(context.Background(), "ASIANPAINT")
	require.NoError(t, err)
	require.Equal(t, contracts.TierWeak, rec.Tier)
	weakTarget := rec.TargetPrice

	// A week later: +3% against the reference, fresh score 74
	later := f.now.AddDate(0, 0, 7)
	f.analyzer.results["ASIANPAINT"] = &contracts.Analysis{Symbol: "ASIANPAINT", Score: 74, Label: "BUY", Price: 103}

	out, err := f.mgr.CheckPromotion(context.Background(), rec, 103, later)
	require.NoError(t, err)
	assert.True(t, out.Promoted)

	rec, err = f.recs.GetActiveBySymbol(context.Background(), "ASIANPAINT")
	require.NoError(t, err)
	assert.Equal(t, contracts.TierStrong, rec.Tier)
	require.NotNil(t, rec.PromotedAt)
	assert.Equal(t, later, *rec.PromotedAt)
	// Entry reset to the promotion-time price
	assert.InDelta(t, 103.0, rec.EntryPrice, 1e-9)
	// Levels recomputed from the new entry, not carried over
	assert.NotEqual(t, weakTarget, rec.TargetPrice)
	assert.InDelta(t, 103*1.15, rec.TargetPrice, 1e-9)
	assert.InDelta(t, 103*0.90, rec.StopLoss, 1e-9)
}

func TestCheckPromotionIgnoresNonWeak(t *testing.T) {
	f := newFixture(t, DefaultConfig())
	rec := f.activeRec(t, "NTPC", contracts.TierHold, 100, 42, f.now.AddDate(0, 0, -4))

	out, err := f.mgr.CheckPromotion(context.Background(), rec, 110, f.now)
	require.NoError(t, err)
	assert.False(t, out.Promoted)
	assert.Zero(t, f.analyzer.calls)
}

// ---------------------------------------------------------------------------
// Weekly cleanup
// ---------------------------------------------------------------------------

func TestWeeklyCleanup(t *testing.T) {
	tests := []struct {
		name   string
		price  float64
		days   int
		reason string
	}{
		{"fast decline", 94, 8, contracts.SellFastDecline},
		{"slow decline", 96.5, 15, contracts.SellSlowDecline},
		{"stagnation", 101, 31, contracts.SellStagnant},
		{"healthy gain kept", 103, 31, ""},
		{"young loss kept", 95, 3, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, DefaultConfig())
			rec := f.activeRec(t, "M&M", contracts.TierStrong, 100, 74, f.now.AddDate(0, 0, -tt.days))

			reason, err := f.mgr.WeeklyCleanup(context.Background(), rec, tt.price, f.now)
			require.NoError(t, err)
			assert.Equal(t, tt.reason, reason)

			if tt.reason != "" {
				assert.Equal(t, 1, f.recs.sells)
				assert.NotNil(t, f.watch.bySymbol("M&M"))
			} else {
				assert.Zero(t, f.recs.sells)
			}
		})
	}
}

func TestWeeklyCleanupIgnoresNonStrong(t *testing.T) {
	f := newFixture(t, DefaultConfig())
	rec := f.activeRec(t, "PNB", contracts.TierWeak, 100, 55, f.now.AddDate(0, 0, -40))

	reason, err := f.mgr.WeeklyCleanup(context.Background(), rec, 80, f.now)
	require.NoError(t, err)
	assert.Empty(t, reason)
	assert.Zero(t, f.recs.sells)
}

// ---------------------------------------------------------------------------
// Watchlist re-entry
// ---------------------------------------------------------------------------

func TestCheckReentryCreatesNewStrong(t *testing.T) {
	f := newFixture(t, DefaultConfig())
	entry := f.watch.add(&contracts.WatchlistEntry{
		Symbol: "TATAMOTORS", Name: "Tata Motors",
		EntryPrice: 500, ExitPrice: 460, OriginalScore: 75,
	})
	f.analyzer.results["TATAMOTORS"] = &contracts.Analysis{
		Symbol: "TATAMOTORS", Score: 65, Label: "BUY", Price: 480,
	}

	reentered, err := f.mgr.CheckReentry(context.Background(), entry, f.now)
	require.NoError(t, err)
	assert.True(t, reentered)

	// Entry removed, fresh STRONG row created at the current price
	assert.Nil(t, f.watch.bySymbol("TATAMOTORS"))
	rec, err := f.recs.GetActiveBySymbol(context.Background(), "TATAMOTORS")
	require.NoError(t, err)
	assert.Equal(t, contracts.TierStrong, rec.Tier)
	assert.InDelta(t, 480.0, rec.EntryPrice, 1e-9)
}

func TestCheckReentryBelowThresholdKeepsEntry(t *testing.T) {
	f := newFixture(t, DefaultConfig())
	entry := f.watch.add(&contracts.WatchlistEntry{Symbol: "VEDL", Name: "Vedanta"})
	f.analyzer.results["VEDL"] = &contracts.Analysis{Symbol: "VEDL", Score: 55, Label: "WEAK BUY", Price: 300}

	reentered, err := f.mgr.CheckReentry(context.Background(), entry, f.now)
	require.NoError(t, err)
	assert.False(t, reentered)
	assert.NotNil(t, f.watch.bySymbol("VEDL"))
	assert.Equal(t, 1, f.watch.checks)
}

// ---------------------------------------------------------------------------
// Samples and reference refresh
// ---------------------------------------------------------------------------

func TestRecordSample(t *testing.T) {
	f := newFixture(t, DefaultConfig())
	rec := f.activeRec(t, "ONGC", contracts.TierWeak, 200, 55, f.now.AddDate(0, 0, -10))

	require.NoError(t, f.mgr.RecordSample(context.Background(), rec, 210, f.now))

	require.Len(t, f.perf.samples, 1)
	s := f.perf.samples[0]
	assert.InDelta(t, 5.0, s.ReturnPct, 1e-9)
	assert.Equal(t, 10, s.DaysHeld)
	assert.Equal(t, contracts.TierWeak, s.Tier)
}

func TestRefreshReference(t *testing.T) {
	f := newFixture(t, DefaultConfig())
	weak := f.activeRec(t, "COALINDIA", contracts.TierWeak, 100, 55, f.now.AddDate(0, 0, -10))
	strong := f.activeRec(t, "BHEL", contracts.TierStrong, 100, 75, f.now.AddDate(0, 0, -10))

	require.NoError(t, f.mgr.RefreshReference(context.Background(), weak, 108, f.now))
	require.NoError(t, f.mgr.RefreshReference(context.Background(), strong, 108, f.now))

	assert.InDelta(t, 108.0, weak.WeeklyRefPrice, 1e-9)
	// STRONG rows keep their reference
	assert.InDelta(t, 100.0, strong.WeeklyRefPrice, 1e-9)
}

// ---------------------------------------------------------------------------
// End-to-end scenario
// ---------------------------------------------------------------------------

func TestStopLossEndToEnd(t *testing.T) {
	f := newFixture(t, DefaultConfig())

	created, err := f.mgr.RecordNew(context.Background(),
		contracts.Instrument{Symbol: "X", Name: "Instrument X"},
		&contracts.Analysis{Symbol: "X", Score: 72, Label: "BUY", Price: 100},
		contracts.MinActionableScore, f.now)
	require.NoError(t, err)
	require.True(t, created)

	rec, err := f.recs.GetActiveBySymbol(context.Background(), "X")
	require.NoError(t, err)
	require.Equal(t, contracts.TierStrong, rec.Tier)

	// A week on: price 93 (-7%), re-score 60
	later := f.now.AddDate(0, 0, 7)
	f.analyzer.results["X"] = &contracts.Analysis{Symbol: "X", Score: 60, Label: "BUY", Price: 93}

	out, err := f.mgr.MonitorStrong(context.Background(), rec, 93, later)
	require.NoError(t, err)
	assert.True(t, out.Sold)
	assert.Equal(t, contracts.SellStopLoss, out.Reason)

	sold := f.recs.recs[rec.ID]
	assert.Equal(t, contracts.StatusSold, sold.Status)
	assert.InDelta(t, -7.0, sold.RealizedReturn, 1e-9)

	entry := f.watch.bySymbol("X")
	require.NotNil(t, entry)
	assert.InDelta(t, 72.0, entry.OriginalScore, 1e-9)
}
