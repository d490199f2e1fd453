package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Davleen14/movie-recommendation-system-RAG-LLM/internal/transport/tmdb"
	"github.com/Davleen14/movie-recommendation-system-RAG-LLM/internal/usecase/catalog"
)

var (
	seedPages      int
	seedResetIndex bool
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load popular movies from TMDB into the movie store",
	Long: `seed fetches the TMDB genre list and popular movies page by page, embeds
"title overview" for each movie and upserts the records by TMDB id.
It stops at the first empty page or after --pages pages.`,
	RunE: runSeed,
}

func init() {
	seedCmd.Flags().IntVar(&seedPages, "pages", 0, "max pages to fetch (default from config)")
	seedCmd.Flags().BoolVar(&seedResetIndex, "reset-index", false, "drop and recreate the movie index first")
}

func runSeed(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	cc := a.cfg.Catalog
	if cc.APIKey == "" {
		return fmt.Errorf("catalog.api_key is required for seeding")
	}
	pages := seedPages
	if pages <= 0 {
		pages = cc.Pages
	}

	source := tmdb.NewClient(&tmdb.Config{
		APIKey:     cc.APIKey,
		BaseURL:    cc.BaseURL,
		Language:   cc.Language,
		RatePerSec: cc.RatePerSec,
		Guard:      newGuard(a.cfg.Resilience, "tmdb", tmdb.IsTransient, a.logger),
		Logger:     a.logger,
	})

	seeder := catalog.New(source, a.embedder, a.movies, cc.Workers, a.logger)
	report, err := seeder.Run(ctx, catalog.Options{Pages: pages, ResetIndex: seedResetIndex})
	if err != nil {
		return fmt.Errorf("seed run %s: %w", report.RunID, err)
	}

	total, err := a.movies.Count(ctx)
	if err != nil {
		a.logger.Warn("count movies failed", zap.Error(err))
	}
	fmt.Fprintf(cmd.OutOrStdout(), "seeded %d movies from %d pages (run %s, index total %d)\n",
		report.Movies, report.Pages, report.RunID, total)
	return nil
}
