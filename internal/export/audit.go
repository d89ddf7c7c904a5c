package export

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/modaworks/curator/internal/classify"
	"github.com/parquet-go/parquet-go"
)

// AuditRow is one flat per-image record in the Parquet audit log.
type AuditRow struct {
	ProductSno           string  `parquet:"product_sno"`
	FileName             string  `parquet:"file_name"`
	FilePath             string  `parquet:"file_path"`
	Category             string  `parquet:"category"`
	Color                string  `parquet:"color,optional"`
	Confidence           float64 `parquet:"confidence"`
	QualityScore         float64 `parquet:"quality_score"`
	HasMultipleItems     bool    `parquet:"has_multiple_items"`
	ExtractedComposition string  `parquet:"extracted_composition,optional"`
	ExtractedMaterial    string  `parquet:"extracted_material,optional"`
	Error                string  `parquet:"error,optional"`
}

// AuditRows flattens a run result into audit rows, one per classified image.
func AuditRows(result *classify.Result) []AuditRow {
	rows := make([]AuditRow, 0, len(result.Classifications))
	for _, ic := range result.Classifications {
		row := AuditRow{
			ProductSno:       result.ProductSno,
			FileName:         ic.FileName,
			FilePath:         ic.FilePath,
			Category:         string(ic.Category),
			Color:            ic.Color,
			Confidence:       ic.Confidence,
			QualityScore:     ic.QualityScore,
			HasMultipleItems: ic.HasMultipleItems,
			Error:            ic.Error,
		}
		if ic.Extracted != nil {
			row.ExtractedComposition = ic.Extracted.Composition
			row.ExtractedMaterial = ic.Extracted.Material
		}
		rows = append(rows, row)
	}
	return rows
}

// WriteAudit writes the per-image audit log for one run as
// outputDir/<sno>_audit.parquet.
func WriteAudit(result *classify.Result, outputDir string) (string, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	path := filepath.Join(outputDir, result.ProductSno+"_audit.parquet")
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create audit file: %w", err)
	}
	defer f.Close()

	writer := parquet.NewGenericWriter[AuditRow](f)
	if _, err := writer.Write(AuditRows(result)); err != nil {
		return "", fmt.Errorf("failed to write audit rows: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize audit file: %w", err)
	}
	return path, nil
}
