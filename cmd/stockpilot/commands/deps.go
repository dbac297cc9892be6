package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/advaitm/stockpilot/internal/lifecycle"
	"github.com/advaitm/stockpilot/internal/orchestrator"
	"github.com/advaitm/stockpilot/internal/pricefeed"
	"github.com/advaitm/stockpilot/internal/store"
	"github.com/advaitm/stockpilot/internal/universe"
	"github.com/advaitm/stockpilot/pkg/config"
	"github.com/advaitm/stockpilot/pkg/database"
	"github.com/advaitm/stockpilot/pkg/httputil"
	"github.com/advaitm/stockpilot/pkg/logger"
)

// deps bundles the wired application graph shared by the commands
type deps struct {
	cfg *config.Config
	log *logger.Logger
	db  *database.DB

	recs      *store.RecommendationRepo
	perf      *store.PerformanceRepo
	watch     *store.WatchlistRepo
	summaries *store.SummaryRepo

	orch *orchestrator.Orchestrator
}

// buildDeps loads config, connects to the database, ensures the
// schema and wires the full pipeline.
func buildDeps() (*deps, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	log := logger.New(cfg)

	db, err := database.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := store.EnsureSchema(ctx, db.Pool); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	httpClient := httputil.New(cfg, log)

	recs := store.NewRecommendationRepo(db.Pool)
	perf := store.NewPerformanceRepo(db.Pool)
	watch := store.NewWatchlistRepo(db.Pool)
	summaries := store.NewSummaryRepo(db.Pool)
	instruments := store.NewInstrumentRepo(db.Pool)

	uni := universe.NewChain(log,
		universe.NewCSVProvider(cfg, httpClient, log),
		universe.NewScrapeProvider(cfg, httpClient, log),
		universe.NewCachedProvider(instruments),
		universe.NewStaticProvider(),
	).WithCache(instruments)

	feed := pricefeed.New(cfg, log)
	analyzer := orchestrator.NewAnalyzer(cfg, feed, log)

	manager := lifecycle.NewManager(lifecycle.DefaultConfig(), recs, perf, watch, analyzer, log)
	orch := orchestrator.New(cfg, uni, feed, analyzer, manager, recs, watch, summaries, log)

	return &deps{
		cfg:       cfg,
		log:       log,
		db:        db,
		recs:      recs,
		perf:      perf,
		watch:     watch,
		summaries: summaries,
		orch:      orch,
	}, nil
}

// close releases held resources
func (d *deps) close() {
	d.db.Close()
}
