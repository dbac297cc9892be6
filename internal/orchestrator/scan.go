package orchestrator

import (
	"context"
	"sync"

	"github.com/advaitm/stockpilot/internal/contracts"
	"github.com/advaitm/stockpilot/internal/scoring"
)

// Worker pool bounds for the universe scan
const (
	minScanWorkers = 2
	maxScanWorkers = 5
)

// scanUniverse analyzes the full instrument universe in outer batches
// and returns the aggregate for the weekly summary. Each outer batch
// starts with one bulk quote fetch; instruments the quote call did
// not return are skipped without touching the chart API. Cancellation
// is honored between batches, a batch in flight always completes.
func (o *Orchestrator) scanUniverse(ctx context.Context, report *contracts.CycleReport, instruments []contracts.Instrument, ov Overrides) *contracts.WeeklySummary {
	summary := &contracts.WeeklySummary{}

	batchSize := o.cfg.Analysis.BatchSize
	if ov.BatchSize != nil && *ov.BatchSize > 0 {
		batchSize = *ov.BatchSize
	}
	minScore := o.cfg.Analysis.MinScore
	if ov.MinScore != nil {
		minScore = *ov.MinScore
	}

	for start := 0; start < len(instruments); start += batchSize {
		if ctx.Err() != nil {
			o.logger.WithField("remaining", len(instruments)-start).
				Warn("Universe scan cancelled between batches")
			report.Aborted = true
			break
		}

		end := start + batchSize
		if end > len(instruments) {
			end = len(instruments)
		}
		o.scanBatch(ctx, report, summary, instruments[start:end], minScore)
	}

	if summary.AnalyzedCount > 0 {
		summary.AvgScore /= float64(summary.AnalyzedCount)
	}
	return summary
}

// scanBatch bulk-quotes one outer batch and dispatches the quoted
// instruments to the worker pool in small groups.
func (o *Orchestrator) scanBatch(ctx context.Context, report *contracts.CycleReport, summary *contracts.WeeklySummary, batch []contracts.Instrument, minScore float64) {
	symbols := make([]string, len(batch))
	for i, inst := range batch {
		symbols[i] = inst.Symbol
	}

	quotes, err := o.fetchQuotes(ctx, symbols)
	if err != nil {
		o.fail(report, err)
		report.Skipped += len(batch)
		return
	}

	var quoted []contracts.Instrument
	for _, inst := range batch {
		if _, ok := quotes[inst.Symbol]; ok {
			quoted = append(quoted, inst)
		} else {
			report.Skipped++
		}
	}

	groups := groupInstruments(quoted, o.cfg.Analysis.GroupSize)

	workers := o.cfg.Analysis.Workers
	if workers < minScanWorkers {
		workers = minScanWorkers
	}
	if workers > maxScanWorkers {
		workers = maxScanWorkers
	}

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		jobs = make(chan []contracts.Instrument)
	)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for group := range jobs {
				for _, inst := range group {
					o.scanInstrument(ctx, report, summary, inst, minScore, &mu)
				}
			}
		}()
	}

	for _, group := range groups {
		jobs <- group
	}
	close(jobs)
	wg.Wait()
}

// scanInstrument analyzes one instrument and records it when the
// score is actionable. mu guards the shared report and summary.
func (o *Orchestrator) scanInstrument(ctx context.Context, report *contracts.CycleReport, summary *contracts.WeeklySummary, inst contracts.Instrument, minScore float64, mu *sync.Mutex) {
	analysis, err := o.analyzer.Analyze(ctx, inst)

	mu.Lock()
	defer mu.Unlock()

	if err != nil {
		if isSkippable(err) {
			report.Skipped++
		} else {
			o.fail(report, err)
		}
		return
	}

	report.Processed++
	summary.AnalyzedCount++
	summary.AvgScore += analysis.Score
	if analysis.Score > summary.BestScore {
		summary.BestScore = analysis.Score
		summary.BestSymbol = analysis.Symbol
	}

	switch analysis.Label {
	case scoring.LabelStrongBuy:
		summary.StrongBuyCount++
	case scoring.LabelBuy:
		summary.BuyCount++
	case scoring.LabelWeakBuy:
		summary.WeakBuyCount++
	case scoring.LabelHold:
		summary.HoldCount++
	}

	if analysis.Score < minScore {
		return
	}
	summary.ActionableCount++

	created, err := o.manager.RecordNew(ctx, inst, analysis, minScore, o.now())
	if err != nil {
		o.fail(report, err)
		return
	}
	if created {
		report.NewRecommendations++
	}
}

// groupInstruments splits instruments into groups of at most size
func groupInstruments(instruments []contracts.Instrument, size int) [][]contracts.Instrument {
	if size < 1 {
		size = 1
	}
	var groups [][]contracts.Instrument
	for start := 0; start < len(instruments); start += size {
		end := start + size
		if end > len(instruments) {
			end = len(instruments)
		}
		groups = append(groups, instruments[start:end])
	}
	return groups
}
