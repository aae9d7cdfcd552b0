package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"iconograph/internal/stats"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print persisted query statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		store, err := stats.OpenStore(cfg.Stats.DatabasePath)
		if err != nil {
			return err
		}
		defer store.Close()

		tracker := stats.NewTracker(cfg.Stats.RecentLimit, store)
		snap := tracker.Snapshot()

		fmt.Printf("Total interactions: %d\n", snap.TotalInteractions)

		fmt.Println("\nRecent queries (most recent first):")
		if len(snap.RecentQueries) == 0 {
			fmt.Println("  (none)")
		}
		for i, q := range snap.RecentQueries {
			fmt.Printf("  %2d. %s\n", i+1, q)
		}

		fmt.Println("\nTop queries:")
		top := tracker.TopQueries(10)
		if len(top) == 0 {
			fmt.Println("  (none)")
		}
		for i, qc := range top {
			fmt.Printf("  %2d. %s (%d)\n", i+1, qc.Query, qc.Count)
		}
		return nil
	},
}
