package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/advaitm/stockpilot/internal/contracts"
	"github.com/advaitm/stockpilot/internal/indicators"
	"github.com/advaitm/stockpilot/internal/scoring"
	"github.com/advaitm/stockpilot/pkg/config"
	"github.com/advaitm/stockpilot/pkg/logger"
)

// PipelineAnalyzer runs fetch, indicator computation and scoring for
// one instrument. Implements contracts.Analyzer. Stateless apart from
// its collaborators, safe for concurrent use.
type PipelineAnalyzer struct {
	prices       contracts.PriceProvider
	calc         *indicators.Calculator
	scorer       *scoring.Scorer
	lookbackDays int
	timeout      time.Duration
	logger       *logger.Logger
}

// NewAnalyzer wires a PipelineAnalyzer from config
func NewAnalyzer(cfg *config.Config, prices contracts.PriceProvider, log *logger.Logger) *PipelineAnalyzer {
	return &PipelineAnalyzer{
		prices:       prices,
		calc:         indicators.NewCalculator(),
		scorer:       scoring.NewScorer(scoring.DefaultConfig()),
		lookbackDays: cfg.Analysis.LookbackDays,
		timeout:      cfg.Analysis.ScoreTimeout,
		logger:       log,
	}
}

// Analyze fetches history, computes indicators and scores one
// instrument under the configured per-instrument timeout.
func (a *PipelineAnalyzer) Analyze(ctx context.Context, inst contracts.Instrument) (*contracts.Analysis, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	candles, err := a.prices.History(ctx, inst.Symbol, a.lookbackDays)
	if err != nil {
		return nil, fmt.Errorf("analyze %s: %w", inst.Symbol, err)
	}

	bundle, err := a.calc.Compute(inst.Symbol, candles)
	if err != nil {
		return nil, fmt.Errorf("analyze %s: %w", inst.Symbol, err)
	}

	result := a.scorer.Score(bundle)

	a.logger.WithFields(map[string]interface{}{
		"symbol": inst.Symbol,
		"score":  result.Total,
		"label":  result.Label,
	}).Debug("Instrument analyzed")

	return &contracts.Analysis{
		Symbol:     inst.Symbol,
		Price:      result.Price,
		Score:      result.Total,
		Label:      result.Label,
		Reasons:    result.ReasonSummary(),
		AnalyzedAt: time.Now(),
	}, nil
}
