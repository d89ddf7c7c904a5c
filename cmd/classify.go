package cmd

import (
	"fmt"
	"sort"

	"github.com/modaworks/curator/internal/classify"
	"github.com/modaworks/curator/internal/export"
	"github.com/modaworks/curator/internal/gemini"
	"github.com/modaworks/curator/internal/images"
	"github.com/modaworks/curator/internal/pipeline"
	"github.com/spf13/cobra"
)

func newClassifyCmd() *cobra.Command {
	var (
		all         bool
		model       string
		concurrency int
		maxSide     int
		dedupe      bool
		outputDir   string
		selectedDir string
	)

	cmd := &cobra.Command{
		Use:   "classify <product-dir>",
		Short: "Classify product images and select the best per slot",
		Long: `Classifies every image of a product directory with a vision LLM, then runs
the selection algorithm to pick worn shots and product shots per color, a
representative color with its detail shots, and size/material info images.

Selected images are copied under the selected directory and the full
per-image classification is saved as JSON plus a Parquet audit log.`,
		Example: `  # Classify a single product directory
  curator classify output/images/54822073

  # Classify every product directory under output/images
  curator classify --all output/images

  # Lower the request fan-out and skip near-duplicate images
  curator classify --all output/images --concurrency 4 --dedupe`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			provider, err := gemini.New()
			if err != nil {
				return err
			}
			if model == "" {
				model = gemini.DefaultModel()
			}

			p := pipeline.New(provider, pipeline.Options{
				Model:       model,
				Concurrency: concurrency,
				MaxSide:     maxSide,
				Dedupe:      dedupe,
				OutputDir:   outputDir,
				SelectedDir: selectedDir,
			})

			if all {
				results, err := p.RunAll(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				for _, result := range results {
					printSummary(result)
				}
				if len(results) > 0 && outputDir != "" {
					path, err := export.SaveSummaryYAML(results, outputDir)
					if err != nil {
						return err
					}
					fmt.Printf("\nRun summary saved to: %s\n", path)
				}
				return nil
			}

			result, err := p.RunProduct(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printSummary(result)
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Treat the argument as a directory of product directories")
	cmd.Flags().StringVar(&model, "model", "", "Vision model to use (default: GEMINI_MODEL or gemini-2.5-flash)")
	cmd.Flags().IntVar(&concurrency, "concurrency", classify.DefaultConcurrency, "Max classification requests in flight per product")
	cmd.Flags().IntVar(&maxSide, "max-side", images.DefaultMaxSide, "Downscale images to this longest edge before upload (0 disables)")
	cmd.Flags().BoolVar(&dedupe, "dedupe", false, "Skip perceptually duplicate images before classification")
	cmd.Flags().StringVar(&outputDir, "output", "output/classifications", "Directory for classification JSON and audit logs")
	cmd.Flags().StringVar(&selectedDir, "selected-dir", "output/selected", "Directory selected images are copied to")

	return cmd
}

func printSummary(result *classify.Result) {
	summary := export.Summarize(result)

	fmt.Printf("\n========================================\n")
	fmt.Printf("Product %s: %d images, %d failed\n", summary.Sno, summary.TotalImages, summary.FailedImages)
	fmt.Printf("========================================\n")

	fmt.Println("\nImages per category:")
	for _, cat := range sortedCountKeys(summary.CategoryCounts) {
		fmt.Printf("  %-16s %d\n", cat, summary.CategoryCounts[cat])
	}

	if len(summary.ColorCounts) > 0 {
		fmt.Println("\nImages per color:")
		for _, color := range sortedCountKeys(summary.ColorCounts) {
			fmt.Printf("  %-16s %d\n", color, summary.ColorCounts[color])
		}
	}

	if summary.RepresentativeColor != "" {
		fmt.Printf("\nRepresentative color: %s\n", summary.RepresentativeColor)
	}

	if len(summary.SelectedFiles) > 0 {
		fmt.Println("\nSelected images:")
		slots := make([]string, 0, len(summary.SelectedFiles))
		for slot := range summary.SelectedFiles {
			slots = append(slots, slot)
		}
		sort.Strings(slots)
		for _, slot := range slots {
			fmt.Printf("  %-24s %s\n", slot, summary.SelectedFiles[slot])
		}
	}
}

// sortedCountKeys orders count-map keys by descending count, then name.
func sortedCountKeys(counts map[string]int) []string {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return keys[i] < keys[j]
	})
	return keys
}
