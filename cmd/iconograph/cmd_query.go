package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"iconograph/internal/generation"
	"iconograph/internal/stats"
	"iconograph/internal/survey"
)

var (
	queryTimeout time.Duration
	queryStatic  bool
)

var queryCmd = &cobra.Command{
	Use:   "query [text...]",
	Short: "Run one query through the pipeline and print the result as JSON",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		queryText := strings.Join(args, " ")

		ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
		defer cancel()

		client, err := generation.NewClientFromConfig(ctx, cfg.LLM, cfg.LLMTimeout())
		if err != nil {
			return err
		}

		store, err := stats.OpenStore(cfg.Stats.DatabasePath)
		if err != nil {
			return err
		}
		defer store.Close()
		tracker := stats.NewTracker(cfg.Stats.RecentLimit, store)

		noBrowser = queryStatic
		pipeline := survey.NewPipeline(client, sessionOpener(cfg), tracker)

		logger.Info("running query", zap.String("query", queryText))
		start := time.Now()

		result, err := pipeline.ProcessQuery(ctx, queryText)
		if err != nil {
			return fmt.Errorf("process query: %w", err)
		}

		logger.Info("query completed",
			zap.Duration("duration", time.Since(start)),
			zap.Int("artworks", len(result.Artworks.All)))

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	},
}

func init() {
	queryCmd.Flags().DurationVar(&queryTimeout, "timeout", 10*time.Minute, "overall query timeout")
	queryCmd.Flags().BoolVar(&queryStatic, "no-browser", false,
		"resolve images with plain HTTP instead of a headless browser")
}
