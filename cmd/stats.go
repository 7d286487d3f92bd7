package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show a summary of pipeline activity",
	Run: func(_ *cobra.Command, _ []string) {
		stats()
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func stats() {
	ctx := context.Background()

	a, err := newApp(ctx)
	if err != nil {
		log.Fatalf("starting %s: %s", app, err)
	}
	defer a.Close()

	s, err := a.Store.Stats(ctx)
	if err != nil {
		a.Logger.Fatal("computing stats", zap.Error(err))
	}

	fmt.Printf("postings:            %d\n", s.TotalJobs)
	fmt.Printf("analyzed:            %d\n", s.TotalMatchedJobs)
	fmt.Printf("high-score (80+):    %d\n", s.HighScoreMatches)
	fmt.Printf("applications:        %d\n", s.TotalApplications)
	fmt.Printf("  applied:           %d\n", s.AppliedCount)
	fmt.Printf("  awaiting approval: %d\n", s.PendingCount)
	fmt.Printf("new in last 7 days:  %d\n", s.RecentJobs)

	sources, err := a.Store.Sources(ctx)
	if err != nil {
		a.Logger.Fatal("listing sources", zap.Error(err))
	}
	if len(sources) > 0 {
		fmt.Printf("sources:             %v\n", sources)
	}
}
