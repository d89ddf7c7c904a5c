package export

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/modaworks/curator/internal/classify"
	"gopkg.in/yaml.v3"
)

// ProductSummary condenses one product's run into counts and chosen slots.
type ProductSummary struct {
	Sno                 string            `yaml:"sno"`
	TotalImages         int               `yaml:"totalimages"`
	FailedImages        int               `yaml:"failedimages"`
	CategoryCounts      map[string]int    `yaml:"categorycounts"`
	ColorCounts         map[string]int    `yaml:"colorcounts,omitempty"`
	RepresentativeColor string            `yaml:"representativecolor,omitempty"`
	SelectedFiles       map[string]string `yaml:"selectedfiles"`
}

// RunSummary is the YAML report written across a set of classified products.
type RunSummary struct {
	Timestamp     string           `yaml:"timestamp"`
	TotalProducts int              `yaml:"totalproducts"`
	TotalImages   int              `yaml:"totalimages"`
	Products      []ProductSummary `yaml:"products"`
}

// Summarize builds the per-product summary from a run result.
func Summarize(result *classify.Result) ProductSummary {
	summary := ProductSummary{
		Sno:                 result.ProductSno,
		TotalImages:         result.TotalImages,
		CategoryCounts:      make(map[string]int),
		RepresentativeColor: result.Selected.RepresentativeColor,
		SelectedFiles:       make(map[string]string),
	}

	for _, ic := range result.Classifications {
		summary.CategoryCounts[string(ic.Category)]++
		if ic.Failed() {
			summary.FailedImages++
		}
		if ic.Color != "" {
			if summary.ColorCounts == nil {
				summary.ColorCounts = make(map[string]int)
			}
			summary.ColorCounts[ic.Color]++
		}
	}

	selected := result.Selected
	for color, item := range selected.WornShotsByColor {
		summary.SelectedFiles["worn:"+color] = item.FileName
	}
	for color, item := range selected.ProductShotsByColor {
		summary.SelectedFiles["product:"+color] = item.FileName
	}
	for cat, item := range selected.RepresentativeDetails {
		summary.SelectedFiles["detail:"+string(cat)] = item.FileName
	}
	for slot, item := range selected.InfoImages {
		summary.SelectedFiles["info:"+slot] = item.FileName
	}

	return summary
}

// SaveSummaryYAML writes the run report for a set of results to
// outputDir/summary-<timestamp>.yaml and returns the written path.
func SaveSummaryYAML(results []*classify.Result, outputDir string) (string, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	summary := RunSummary{
		Timestamp:     time.Now().Format("2006-01-02_15-04-05"),
		TotalProducts: len(results),
		Products:      make([]ProductSummary, 0, len(results)),
	}
	for _, result := range results {
		summary.TotalImages += result.TotalImages
		summary.Products = append(summary.Products, Summarize(result))
	}

	data, err := yaml.Marshal(&summary)
	if err != nil {
		return "", fmt.Errorf("failed to marshal YAML: %w", err)
	}

	path := filepath.Join(outputDir, fmt.Sprintf("summary-%s.yaml", summary.Timestamp))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write YAML file: %w", err)
	}
	return path, nil
}
