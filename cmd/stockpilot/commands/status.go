package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/advaitm/stockpilot/internal/contracts"
)

// statusCmd prints a snapshot of the tracked book
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show active recommendations and the latest weekly summary",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	d, err := buildDeps()
	if err != nil {
		return err
	}
	defer d.close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if _, err := d.db.HealthCheck(ctx); err != nil {
		return fmt.Errorf("database health check: %w", err)
	}

	active, err := d.recs.GetActive(ctx)
	if err != nil {
		return fmt.Errorf("load active recommendations: %w", err)
	}
	entries, err := d.watch.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("load watchlist: %w", err)
	}

	byTier := map[contracts.Tier]int{}
	for _, rec := range active {
		byTier[rec.Tier]++
	}

	fmt.Println("\n=== stockpilot status ===")
	fmt.Printf("Active recommendations: %d (STRONG %d / WEAK %d / HOLD %d)\n",
		len(active), byTier[contracts.TierStrong], byTier[contracts.TierWeak], byTier[contracts.TierHold])
	fmt.Printf("Watchlist entries:      %d\n", len(entries))

	for _, rec := range active {
		if rec.Tier != contracts.TierStrong {
			continue
		}
		fmt.Printf("  %-12s %6.1f  entry %.2f  current %.2f  (%+.1f%%)\n",
			rec.Symbol, rec.Score, rec.EntryPrice, rec.CurrentPrice, rec.Return(rec.CurrentPrice))
	}

	summaries, err := d.summaries.GetRecent(ctx, 1)
	if err != nil {
		return fmt.Errorf("load summaries: %w", err)
	}
	if len(summaries) == 0 {
		fmt.Println("No weekly summary yet")
		return nil
	}

	s := summaries[0]
	fmt.Printf("\nLast weekly run %s: %d/%d analyzed, %d actionable, avg score %.1f",
		s.AnalysisDate.Format("2006-01-02"), s.AnalyzedCount, s.UniverseSize, s.ActionableCount, s.AvgScore)
	if s.BestSymbol != "" {
		fmt.Printf(", best %s (%.1f)", s.BestSymbol, s.BestScore)
	}
	fmt.Println()
	return nil
}
