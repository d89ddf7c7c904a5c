package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/modaworks/curator/internal/classify"
	"github.com/modaworks/curator/internal/export"
	"github.com/spf13/cobra"
)

func newReportCmd() *cobra.Command {
	var resultsDir string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Summarize saved classification results as YAML",
		Long: `Reads the per-product classification JSON files written by the classify
command and writes a YAML run summary with per-category and per-color counts
and the selected slot assignments.`,
		Example: `  curator report
  curator report --results output/classifications`,
		RunE: func(cmd *cobra.Command, args []string) error {
			paths, err := filepath.Glob(filepath.Join(resultsDir, "*_classification.json"))
			if err != nil {
				return fmt.Errorf("failed to scan results directory: %w", err)
			}
			if len(paths) == 0 {
				return fmt.Errorf("no classification results found in %s", resultsDir)
			}

			var results []*classify.Result
			for _, path := range paths {
				result, err := export.LoadClassification(path)
				if err != nil {
					return err
				}
				results = append(results, result)
			}

			path, err := export.SaveSummaryYAML(results, resultsDir)
			if err != nil {
				return err
			}

			fmt.Printf("Summarized %d products\n", len(results))
			fmt.Printf("Report saved to: %s\n", path)
			return nil
		},
	}

	cmd.Flags().StringVar(&resultsDir, "results", "output/classifications", "Directory containing *_classification.json files")

	return cmd
}
