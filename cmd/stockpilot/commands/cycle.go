package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/advaitm/stockpilot/internal/contracts"
	"github.com/advaitm/stockpilot/internal/orchestrator"
)

// cycleCmd runs one analysis cycle and exits
var cycleCmd = &cobra.Command{
	Use:   "cycle [intraweek|endofweek]",
	Short: "Run one analysis cycle",
	Long: `Runs a single analysis cycle and prints its report.

intraweek  - daily monitoring: STRONG sell checks, WEAK promotion
             checks, watchlist re-entries and performance samples
endofweek  - weekly run: cleanup, reference refresh, full-universe
             scan and weekly summary

Example:
  go run ./cmd/stockpilot cycle intraweek
  go run ./cmd/stockpilot cycle endofweek --min-score 50 --batch-size 50`,
	Args: cobra.ExactArgs(1),
	RunE: runCycle,
}

var (
	cycleMinScore  float64
	cycleBatchSize int
)

func init() {
	rootCmd.AddCommand(cycleCmd)

	cycleCmd.Flags().Float64Var(&cycleMinScore, "min-score", -1, "override the minimum actionable score for this run")
	cycleCmd.Flags().IntVar(&cycleBatchSize, "batch-size", 0, "override the scan batch size for this run")
}

func runCycle(cmd *cobra.Command, args []string) error {
	cadence := contracts.Cadence(args[0])
	if !cadence.Valid() {
		return fmt.Errorf("cadence must be intraweek or endofweek, got %q", args[0])
	}

	d, err := buildDeps()
	if err != nil {
		return err
	}
	defer d.close()

	var ov orchestrator.Overrides
	if cmd.Flags().Changed("min-score") {
		if cycleMinScore < 0 || cycleMinScore > 100 {
			return fmt.Errorf("min-score must be between 0 and 100")
		}
		ov.MinScore = &cycleMinScore
	}
	if cmd.Flags().Changed("batch-size") {
		if cycleBatchSize < 1 {
			return fmt.Errorf("batch-size must be positive")
		}
		ov.BatchSize = &cycleBatchSize
	}

	// Ctrl+C stops the scan between batches
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	report, err := d.orch.RunWith(ctx, cadence, ov)
	if err != nil {
		return fmt.Errorf("run cycle: %w", err)
	}

	printReport(report)
	return nil
}

func printReport(report *contracts.CycleReport) {
	fmt.Printf("\n=== Cycle Report (%s) ===\n", report.Cadence)
	fmt.Printf("Duration:            %s\n", report.Duration().Round(1e6))
	if report.UniverseSize > 0 {
		fmt.Printf("Universe:            %d\n", report.UniverseSize)
	}
	fmt.Printf("Processed:           %d\n", report.Processed)
	fmt.Printf("Skipped:             %d\n", report.Skipped)
	fmt.Printf("Failed:              %d\n", report.Failed)
	fmt.Printf("New recommendations: %d\n", report.NewRecommendations)
	fmt.Printf("Promotions:          %d\n", report.Promotions)
	fmt.Printf("Sells:               %d\n", report.Sells)
	fmt.Printf("Re-entries:          %d\n", report.Reentries)
	fmt.Printf("Refreshed refs:      %d\n", report.Refreshed)
	fmt.Printf("Samples:             %d\n", report.Samples)

	if report.Aborted {
		fmt.Println("\n⚠️  Cycle aborted early")
	}
	for _, e := range report.Errors {
		fmt.Printf("  error: %s\n", e)
	}
}
