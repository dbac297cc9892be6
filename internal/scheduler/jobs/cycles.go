package jobs

import (
	"context"
	"fmt"

	"github.com/advaitm/stockpilot/internal/contracts"
	"github.com/advaitm/stockpilot/internal/orchestrator"
	"github.com/advaitm/stockpilot/pkg/logger"
)

// IntraWeekJob runs the daily monitoring cycle on trading days.
// Scheduled after market close, Monday through Thursday. Friday runs
// the end-of-week cycle instead.
type IntraWeekJob struct {
	orch   *orchestrator.Orchestrator
	logger *logger.Logger
}

// NewIntraWeekJob creates the daily monitoring job
func NewIntraWeekJob(orch *orchestrator.Orchestrator, log *logger.Logger) *IntraWeekJob {
	return &IntraWeekJob{orch: orch, logger: log}
}

// Name returns the job name
func (j *IntraWeekJob) Name() string {
	return "intraweek_cycle"
}

// Schedule returns the cron schedule (6:30 PM Monday through Thursday)
func (j *IntraWeekJob) Schedule() string {
	return "0 30 18 * * 1-4"
}

// Run executes the intra-week cycle
func (j *IntraWeekJob) Run(ctx context.Context) error {
	report, err := j.orch.RunIntraWeek(ctx)
	if err != nil {
		return fmt.Errorf("intra-week cycle: %w", err)
	}
	logReport(j.logger, report)
	return nil
}

// EndOfWeekJob runs the weekly cycle: cleanup, reference refresh and
// the full-universe scan.
type EndOfWeekJob struct {
	orch   *orchestrator.Orchestrator
	logger *logger.Logger
}

// NewEndOfWeekJob creates the weekly scan job
func NewEndOfWeekJob(orch *orchestrator.Orchestrator, log *logger.Logger) *EndOfWeekJob {
	return &EndOfWeekJob{orch: orch, logger: log}
}

// Name returns the job name
func (j *EndOfWeekJob) Name() string {
	return "endofweek_cycle"
}

// Schedule returns the cron schedule (6:30 PM Friday)
func (j *EndOfWeekJob) Schedule() string {
	return "0 30 18 * * 5"
}

// Run executes the end-of-week cycle
func (j *EndOfWeekJob) Run(ctx context.Context) error {
	report, err := j.orch.RunEndOfWeek(ctx)
	if err != nil {
		return fmt.Errorf("end-of-week cycle: %w", err)
	}
	logReport(j.logger, report)
	return nil
}

func logReport(log *logger.Logger, report *contracts.CycleReport) {
	log.WithFields(map[string]interface{}{
		"cadence":   report.Cadence,
		"duration":  report.Duration().String(),
		"processed": report.Processed,
		"new":       report.NewRecommendations,
		"sells":     report.Sells,
		"failed":    report.Failed,
	}).Info("Scheduled cycle finished")
}
