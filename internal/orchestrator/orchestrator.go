package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/advaitm/stockpilot/internal/contracts"
	"github.com/advaitm/stockpilot/internal/lifecycle"
	"github.com/advaitm/stockpilot/pkg/config"
	"github.com/advaitm/stockpilot/pkg/logger"
)

// maxReportErrors caps the error strings carried in a cycle report
const maxReportErrors = 20

// Orchestrator drives the two analysis cycles. It sequences the
// lifecycle steps and keeps per-instrument failures from aborting a
// run; only an unreachable collaborator at cycle start is fatal.
type Orchestrator struct {
	cfg       *config.Config
	universe  contracts.UniverseProvider
	prices    contracts.PriceProvider
	analyzer  contracts.Analyzer
	manager   *lifecycle.Manager
	recs      contracts.RecommendationRepository
	watch     contracts.WatchlistRepository
	summaries contracts.SummaryRepository
	logger    *logger.Logger

	now func() time.Time
}

// New wires an Orchestrator
func New(
	cfg *config.Config,
	universe contracts.UniverseProvider,
	prices contracts.PriceProvider,
	analyzer contracts.Analyzer,
	manager *lifecycle.Manager,
	recs contracts.RecommendationRepository,
	watch contracts.WatchlistRepository,
	summaries contracts.SummaryRepository,
	log *logger.Logger,
) *Orchestrator {
	return &Orchestrator{
		cfg:       cfg,
		universe:  universe,
		prices:    prices,
		analyzer:  analyzer,
		manager:   manager,
		recs:      recs,
		watch:     watch,
		summaries: summaries,
		logger:    log,
		now:       time.Now,
	}
}

// Overrides tune a single manually triggered run. Nil fields keep
// the configured value. Only the end-of-week scan reads them.
type Overrides struct {
	MinScore  *float64
	BatchSize *int
}

// Run dispatches to the cycle for the given cadence
func (o *Orchestrator) Run(ctx context.Context, cadence contracts.Cadence) (*contracts.CycleReport, error) {
	return o.RunWith(ctx, cadence, Overrides{})
}

// RunWith dispatches to the cycle for the given cadence with
// per-run overrides applied.
func (o *Orchestrator) RunWith(ctx context.Context, cadence contracts.Cadence, ov Overrides) (*contracts.CycleReport, error) {
	switch cadence {
	case contracts.CadenceIntraWeek:
		return o.RunIntraWeek(ctx)
	case contracts.CadenceEndOfWeek:
		return o.RunEndOfWeekWith(ctx, ov)
	default:
		return nil, fmt.Errorf("unknown cadence %q: %w", cadence, contracts.ErrValidation)
	}
}

// RunIntraWeek is the daily monitoring cycle: sell checks for STRONG
// holdings, promotion checks for WEAK rows, watchlist re-entries and
// performance samples for everything still active.
func (o *Orchestrator) RunIntraWeek(ctx context.Context) (*contracts.CycleReport, error) {
	report := &contracts.CycleReport{
		Cadence:   contracts.CadenceIntraWeek,
		StartedAt: o.now(),
	}
	o.logger.Info("Intra-week cycle started")

	// The store must answer before any mutation happens
	strong, err := o.recs.GetActiveByTier(ctx, contracts.TierStrong)
	if err != nil {
		return o.abort(report, fmt.Errorf("load STRONG holdings: %v: %w",
			err, contracts.ErrCollaboratorUnreachable))
	}

	o.monitorStrong(ctx, report, strong)
	o.checkPromotions(ctx, report)
	o.checkReentries(ctx, report)
	o.sampleActives(ctx, report)

	return o.finish(report), nil
}

// RunEndOfWeek is the weekly cycle: cleanup over STRONG holdings,
// reference refresh, then the full-universe scan and summary.
func (o *Orchestrator) RunEndOfWeek(ctx context.Context) (*contracts.CycleReport, error) {
	return o.RunEndOfWeekWith(ctx, Overrides{})
}

// RunEndOfWeekWith runs the weekly cycle with per-run overrides
func (o *Orchestrator) RunEndOfWeekWith(ctx context.Context, ov Overrides) (*contracts.CycleReport, error) {
	report := &contracts.CycleReport{
		Cadence:   contracts.CadenceEndOfWeek,
		StartedAt: o.now(),
	}
	o.logger.Info("End-of-week cycle started")

	instruments, err := o.universe.Instruments(ctx)
	if err != nil {
		return o.abort(report, fmt.Errorf("load universe: %v: %w",
			err, contracts.ErrCollaboratorUnreachable))
	}
	report.UniverseSize = len(instruments)

	strong, err := o.recs.GetActiveByTier(ctx, contracts.TierStrong)
	if err != nil {
		return o.abort(report, fmt.Errorf("load STRONG holdings: %v: %w",
			err, contracts.ErrCollaboratorUnreachable))
	}

	o.weeklyCleanup(ctx, report, strong)
	o.refreshReferences(ctx, report)
	summary := o.scanUniverse(ctx, report, instruments, ov)

	summary.UniverseSize = report.UniverseSize
	summary.AnalysisDate = report.StartedAt
	summary.Duration = o.now().Sub(report.StartedAt).Seconds()
	if err := o.summaries.Add(ctx, summary); err != nil {
		o.fail(report, fmt.Errorf("save weekly summary: %w", err))
	}

	return o.finish(report), nil
}

// monitorStrong bulk-fetches quotes for the STRONG holdings and runs
// the sell chain on each. Holdings without a quote are skipped.
func (o *Orchestrator) monitorStrong(ctx context.Context, report *contracts.CycleReport, strong []*contracts.Recommendation) {
	if len(strong) == 0 {
		return
	}

	quotes, err := o.fetchQuotes(ctx, symbolsOf(strong))
	if err != nil {
		o.fail(report, fmt.Errorf("quote STRONG holdings: %w", err))
		return
	}

	now := o.now()
	for _, rec := range strong {
		quote, ok := quotes[rec.Symbol]
		if !ok {
			report.Skipped++
			continue
		}

		outcome, err := o.manager.MonitorStrong(ctx, rec, quote.Price, now)
		if err != nil {
			o.fail(report, err)
			continue
		}
		report.Processed++
		if outcome.Sold {
			report.Sells++
		}
	}
}

// checkPromotions runs the promotion check on WEAK rows that carry a
// valid weekly reference.
func (o *Orchestrator) checkPromotions(ctx context.Context, report *contracts.CycleReport) {
	weak, err := o.recs.GetActiveByTier(ctx, contracts.TierWeak)
	if err != nil {
		o.fail(report, fmt.Errorf("load WEAK holdings: %w", err))
		return
	}
	if len(weak) == 0 {
		return
	}

	quotes, err := o.fetchQuotes(ctx, symbolsOf(weak))
	if err != nil {
		o.fail(report, fmt.Errorf("quote WEAK holdings: %w", err))
		return
	}

	now := o.now()
	for _, rec := range weak {
		quote, ok := quotes[rec.Symbol]
		if !ok || rec.WeeklyRefPrice <= 0 {
			report.Skipped++
			continue
		}

		outcome, err := o.manager.CheckPromotion(ctx, rec, quote.Price, now)
		if err != nil {
			o.fail(report, err)
			continue
		}
		report.Processed++
		if outcome.Promoted {
			report.Promotions++
		}
	}
}

// checkReentries re-analyzes every watchlist entry
func (o *Orchestrator) checkReentries(ctx context.Context, report *contracts.CycleReport) {
	entries, err := o.watch.GetAll(ctx)
	if err != nil {
		o.fail(report, fmt.Errorf("load watchlist: %w", err))
		return
	}

	now := o.now()
	for _, entry := range entries {
		reentered, err := o.manager.CheckReentry(ctx, entry, now)
		if err != nil {
			o.fail(report, err)
			continue
		}
		if reentered {
			report.Reentries++
		}
	}
}

// sampleActives records one performance sample per remaining ACTIVE
// row and refreshes check fields on the rows the earlier steps did
// not touch.
func (o *Orchestrator) sampleActives(ctx context.Context, report *contracts.CycleReport) {
	actives, err := o.recs.GetActive(ctx)
	if err != nil {
		o.fail(report, fmt.Errorf("load active holdings: %w", err))
		return
	}
	if len(actives) == 0 {
		return
	}

	quotes, err := o.fetchQuotes(ctx, symbolsOf(actives))
	if err != nil {
		o.fail(report, fmt.Errorf("quote active holdings: %w", err))
		return
	}

	now := o.now()
	for _, rec := range actives {
		quote, ok := quotes[rec.Symbol]
		if !ok {
			report.Skipped++
			continue
		}

		// STRONG and WEAK rows already had their check refreshed above
		if rec.Tier == contracts.TierHold {
			if err := o.recs.UpdateCheck(ctx, rec.ID, quote.Price, rec.Score, rec.Label, now); err != nil {
				o.fail(report, err)
				continue
			}
		}

		if err := o.manager.RecordSample(ctx, rec, quote.Price, now); err != nil {
			o.fail(report, err)
			continue
		}
		report.Samples++
	}
}

// weeklyCleanup applies the weekly exit rules to STRONG holdings
func (o *Orchestrator) weeklyCleanup(ctx context.Context, report *contracts.CycleReport, strong []*contracts.Recommendation) {
	if len(strong) == 0 {
		return
	}

	quotes, err := o.fetchQuotes(ctx, symbolsOf(strong))
	if err != nil {
		o.fail(report, fmt.Errorf("quote STRONG holdings: %w", err))
		return
	}

	now := o.now()
	for _, rec := range strong {
		quote, ok := quotes[rec.Symbol]
		if !ok {
			report.Skipped++
			continue
		}

		reason, err := o.manager.WeeklyCleanup(ctx, rec, quote.Price, now)
		if err != nil {
			o.fail(report, err)
			continue
		}
		if reason != "" {
			report.Sells++
		}
	}
}

// refreshReferences stamps a fresh weekly reference close on every
// non-STRONG ACTIVE row.
func (o *Orchestrator) refreshReferences(ctx context.Context, report *contracts.CycleReport) {
	actives, err := o.recs.GetActive(ctx)
	if err != nil {
		o.fail(report, fmt.Errorf("load active holdings: %w", err))
		return
	}

	var pending []*contracts.Recommendation
	for _, rec := range actives {
		if rec.Tier != contracts.TierStrong {
			pending = append(pending, rec)
		}
	}
	if len(pending) == 0 {
		return
	}

	quotes, err := o.fetchQuotes(ctx, symbolsOf(pending))
	if err != nil {
		o.fail(report, fmt.Errorf("quote active holdings: %w", err))
		return
	}

	now := o.now()
	for _, rec := range pending {
		quote, ok := quotes[rec.Symbol]
		if !ok {
			report.Skipped++
			continue
		}
		if err := o.manager.RefreshReference(ctx, rec, quote.Price, now); err != nil {
			o.fail(report, err)
			continue
		}
		report.Refreshed++
	}
}

// fetchQuotes is the retrying bulk quote fetch. Retries with
// exponential backoff happen only here, never per instrument.
func (o *Orchestrator) fetchQuotes(ctx context.Context, symbols []string) (map[string]contracts.Quote, error) {
	var lastErr error
	backoff := o.cfg.Analysis.RetryBackoff

	for attempt := 0; attempt <= o.cfg.Analysis.MaxRetries; attempt++ {
		fctx, cancel := context.WithTimeout(ctx, o.cfg.Analysis.FetchTimeout)
		quotes, err := o.prices.Quotes(fctx, symbols)
		cancel()
		if err == nil {
			return quotes, nil
		}
		lastErr = err

		if attempt == o.cfg.Analysis.MaxRetries {
			break
		}
		o.logger.WithError(err).WithField("attempt", attempt+1).
			Warn("Bulk quote fetch failed, retrying")

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}

	return nil, fmt.Errorf("bulk quote fetch exhausted retries: %w", lastErr)
}

func (o *Orchestrator) abort(report *contracts.CycleReport, err error) (*contracts.CycleReport, error) {
	report.Aborted = true
	report.FinishedAt = o.now()
	report.Errors = append(report.Errors, err.Error())
	o.logger.WithError(err).WithField("cadence", report.Cadence).Error("Cycle aborted")
	return report, err
}

func (o *Orchestrator) fail(report *contracts.CycleReport, err error) {
	report.Failed++
	if len(report.Errors) < maxReportErrors {
		report.Errors = append(report.Errors, err.Error())
	}
	o.logger.WithError(err).Warn("Cycle step failed")
}

func (o *Orchestrator) finish(report *contracts.CycleReport) *contracts.CycleReport {
	report.FinishedAt = o.now()
	o.logger.WithFields(map[string]interface{}{
		"cadence":   report.Cadence,
		"duration":  report.Duration().String(),
		"processed": report.Processed,
		"skipped":   report.Skipped,
		"failed":    report.Failed,
		"new":       report.NewRecommendations,
		"sells":     report.Sells,
	}).Info("Cycle finished")
	return report
}

func symbolsOf(recs []*contracts.Recommendation) []string {
	out := make([]string, len(recs))
	for i, rec := range recs {
		out[i] = rec.Symbol
	}
	return out
}

// isSkippable classifies per-instrument analysis failures that are
// expected and should not count as errors.
func isSkippable(err error) bool {
	return errors.Is(err, contracts.ErrInsufficientData) ||
		errors.Is(err, contracts.ErrValidation)
}
