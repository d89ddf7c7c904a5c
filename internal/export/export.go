package export

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/modaworks/curator/internal/classify"
)

// detailFileNames maps representative-detail slots to export file stems.
var detailFileNames = map[classify.Category]string{
	classify.CategoryProductFront:   "detail_front",
	classify.CategoryProductBack:    "detail_back",
	classify.CategoryDetailNeckline: "detail_neckline",
	classify.CategoryDetailSleeve:   "detail_sleeve",
	classify.CategoryDetailHem:      "detail_hem",
}

// infoFileNames maps info-image slots to export file stems.
var infoFileNames = map[string]string{
	classify.InfoSlotSize:        "info_size",
	classify.InfoSlotComposition: "info_composition",
	classify.InfoSlotProductInfo: "info_product_info",
}

var unsafeFilenameChars = regexp.MustCompile(`[^0-9A-Za-z가-힣_-]+`)
var repeatedUnderscores = regexp.MustCompile(`_+`)

// safeFilenamePart normalizes a color or slot name for use in an export file
// name, keeping Hangul, ASCII alphanumerics, underscore and hyphen.
func safeFilenamePart(s string) string {
	s = strings.TrimSpace(s)
	for _, r := range []string{" ", "/", ","} {
		s = strings.ReplaceAll(s, r, "_")
	}
	s = unsafeFilenameChars.ReplaceAllString(s, "_")
	s = strings.Trim(repeatedUnderscores.ReplaceAllString(s, "_"), "_")
	if s == "" {
		return "unknown"
	}
	return s
}

// CopySelected copies every selected image into selectedDir/<sno>/ under a
// slot-derived name and returns the created file names. A file already
// claimed by an earlier slot is left alone, so product_front copied as a
// per-color shot is not duplicated as a representative detail.
func CopySelected(result *classify.Result, selectedDir string) ([]string, error) {
	productDir := filepath.Join(selectedDir, result.ProductSno)
	if err := os.MkdirAll(productDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create selected directory: %w", err)
	}

	var copied []string
	cp := func(item classify.ImageClassification, stem string) {
		dst := filepath.Join(productDir, stem+filepath.Ext(item.FilePath))
		if _, err := os.Stat(dst); err == nil {
			return
		}
		if err := copyFile(item.FilePath, dst); err != nil {
			slog.Warn("Failed to copy selected image", "src", item.FilePath, "error", err)
			return
		}
		copied = append(copied, filepath.Base(dst))
	}

	selected := result.Selected

	for _, color := range sortedKeys(selected.WornShotsByColor) {
		cp(selected.WornShotsByColor[color], "worn_"+safeFilenamePart(color))
	}
	for _, color := range sortedKeys(selected.ProductShotsByColor) {
		cp(selected.ProductShotsByColor[color], "product_"+safeFilenamePart(color))
	}
	for cat, stem := range detailFileNames {
		if item, ok := selected.RepresentativeDetails[cat]; ok {
			cp(item, stem)
		}
	}
	for slot, stem := range infoFileNames {
		if item, ok := selected.InfoImages[slot]; ok {
			cp(item, stem)
		}
	}

	sort.Strings(copied)
	return copied, nil
}

// SaveClassification writes the full run result as JSON for audit and later
// reporting, and returns the written path.
func SaveClassification(result *classify.Result, outputDir string) (string, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal classification result: %w", err)
	}

	path := filepath.Join(outputDir, result.ProductSno+"_classification.json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write classification result: %w", err)
	}
	return path, nil
}

// LoadClassification reads a previously saved run result.
func LoadClassification(path string) (*classify.Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read classification result: %w", err)
	}
	var result classify.Result
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("failed to parse classification result: %w", err)
	}
	return &result, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}

func sortedKeys(m map[string]classify.ImageClassification) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
