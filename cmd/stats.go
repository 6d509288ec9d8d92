package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/healthyoda/intake/internal/config"
	"github.com/healthyoda/intake/internal/results"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show aggregate usage and evaluation statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runStats(cmd)
	},
}

func runStats(cmd *cobra.Command) error {
	// No LLM call happens here, so skip provider validation. A stats
	// query should not demand an API key.
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadUnvalidated(path)
	if err != nil {
		return err
	}

	dbPath, err := resolveDBPath(cmd, cfg)
	if err != nil {
		return err
	}

	store, err := results.Open(dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	sum, err := store.Summarize(cmd.Context())
	if err != nil {
		return err
	}

	fmt.Printf("Turns:            %d (%d evaluated, %d conversations)\n", sum.Turns, sum.EvaluatedTurns, sum.Conversations)
	fmt.Printf("Model requests:   %d (%d failed)\n", sum.ModelRequests, sum.FailedRequests)
	fmt.Printf("Mean latency:     %.0f ms\n", sum.MeanLatencyMs)
	fmt.Printf("Total tokens:     %d\n", sum.TotalTokens)
	fmt.Printf("Feedback:         %d up / %d down\n", sum.ThumbsUp, sum.ThumbsDown)
	return nil
}
