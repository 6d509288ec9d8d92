package cmd

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/healthyoda/intake/internal/questionbank"
)

var parseCmd = &cobra.Command{
	Use:   "parse <question-book>",
	Short: "Parse a question book and print a summary",
	Long:  "Parse a question book document (HTML or plain text) into structured records, print per-system counts, and optionally export the records as JSON.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runParse(cmd, args[0])
	},
}

func init() {
	parseCmd.Flags().StringP("output", "o", "", "Write parsed records as JSON to this file")
}

func runParse(cmd *cobra.Command, path string) error {
	records, err := questionbank.ParseFile(path)
	if err != nil {
		return err
	}

	bySystem := map[string]int{}
	withAnswers := 0
	for _, r := range records {
		bySystem[r.System]++
		if len(r.PossibleAnswers) > 0 {
			withAnswers++
		}
	}

	systems := make([]string, 0, len(bySystem))
	for s := range bySystem {
		systems = append(systems, s)
	}
	sort.Strings(systems)

	fmt.Printf("%d questions across %d systems\n", len(records), len(systems))
	for _, s := range systems {
		fmt.Printf("  %-20s %d\n", s, bySystem[s])
	}
	fmt.Printf("%d questions carry possible answers\n", withAnswers)

	if out, _ := cmd.Flags().GetString("output"); out != "" {
		data, err := questionbank.MarshalRecords(records)
		if err != nil {
			return err
		}
		if err := os.WriteFile(out, data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", out, err)
		}
		fmt.Printf("wrote %s\n", out)
	}
	return nil
}
