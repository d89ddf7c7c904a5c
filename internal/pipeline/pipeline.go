package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/modaworks/curator/internal/classify"
	"github.com/modaworks/curator/internal/export"
	"github.com/modaworks/curator/internal/images"
	"github.com/modaworks/curator/internal/metadata"
	"github.com/modaworks/curator/internal/providers"
)

// Options configures a classification pipeline run.
type Options struct {
	Model       string
	Concurrency int
	MaxSide     int
	Dedupe      bool

	// OutputDir receives the classification JSON and Parquet audit log;
	// SelectedDir receives the copied best-in-slot images. Either may be
	// empty to skip that side effect.
	OutputDir   string
	SelectedDir string
}

// Pipeline runs the full classify-select-export flow for product image
// directories.
type Pipeline struct {
	orchestrator *classify.Orchestrator
	opts         Options
}

// New builds a pipeline around a vision provider.
func New(provider providers.Provider, opts Options) *Pipeline {
	loader := images.NewLoader(opts.MaxSide)
	return &Pipeline{
		orchestrator: classify.NewOrchestrator(provider, loader, opts.Model, opts.Concurrency),
		opts:         opts,
	}
}

// RunProduct classifies one product directory, selects best-in-slot images,
// and triggers the export and metadata-merge side effects.
func (p *Pipeline) RunProduct(ctx context.Context, productDir string) (*classify.Result, error) {
	meta, err := metadata.Load(productDir)
	if err != nil {
		slog.Warn("Ignoring unreadable product metadata", "dir", productDir, "error", err)
		meta = nil
	}

	refs, err := images.List(productDir)
	if err != nil {
		return nil, err
	}

	if p.opts.Dedupe {
		before := len(refs)
		refs = images.Dedupe(refs)
		if dropped := before - len(refs); dropped > 0 {
			slog.Info("Skipping near-duplicate images", "dir", productDir, "dropped", dropped)
		}
	}

	result, err := p.orchestrator.ClassifyProduct(ctx, productSno(meta, productDir), refs, meta)
	if err != nil {
		return nil, err
	}

	if p.opts.OutputDir != "" {
		if path, err := export.SaveClassification(result, p.opts.OutputDir); err != nil {
			slog.Warn("Failed to save classification result", "sno", result.ProductSno, "error", err)
		} else {
			slog.Info("Saved classification result", "path", path)
		}
		if _, err := export.WriteAudit(result, p.opts.OutputDir); err != nil {
			slog.Warn("Failed to write audit log", "sno", result.ProductSno, "error", err)
		}
	}

	if p.opts.SelectedDir != "" {
		copied, err := export.CopySelected(result, p.opts.SelectedDir)
		if err != nil {
			slog.Warn("Failed to copy selected images", "sno", result.ProductSno, "error", err)
		} else {
			slog.Info("Copied selected images", "sno", result.ProductSno, "files", len(copied))
		}
	}

	p.mergeExtracted(productDir, result)

	return result, nil
}

// RunAll processes every numeric product directory under imagesDir
// sequentially. A product that fails is logged and skipped; the batch
// continues.
func (p *Pipeline) RunAll(ctx context.Context, imagesDir string) ([]*classify.Result, error) {
	entries, err := os.ReadDir(imagesDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read images directory: %w", err)
	}

	var results []*classify.Result
	for _, entry := range entries {
		if !entry.IsDir() || !isNumeric(entry.Name()) {
			continue
		}
		if ctx.Err() != nil {
			return results, ctx.Err()
		}

		productDir := filepath.Join(imagesDir, entry.Name())
		result, err := p.RunProduct(ctx, productDir)
		if err != nil {
			slog.Error("Product classification failed", "dir", productDir, "error", err)
			continue
		}
		results = append(results, result)
	}
	return results, nil
}

// mergeExtracted hands the composition extraction, when present, to the
// metadata-merge collaborator.
func (p *Pipeline) mergeExtracted(productDir string, result *classify.Result) {
	comp, ok := result.Selected.InfoImages[classify.InfoSlotComposition]
	if !ok || comp.Extracted.Empty() {
		return
	}
	err := metadata.MergeExtracted(productDir, comp.Extracted.Composition, comp.Extracted.Material, metadata.ExtractedSource{
		FileName:   comp.FileName,
		FilePath:   comp.FilePath,
		Confidence: comp.Confidence,
	})
	if err != nil {
		slog.Warn("Failed to merge extracted composition", "sno", result.ProductSno, "error", err)
	}
}

func productSno(meta *metadata.Meta, productDir string) string {
	if meta != nil && meta.Sno.String() != "" {
		return meta.Sno.String()
	}
	return filepath.Base(productDir)
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	return strings.IndexFunc(s, func(r rune) bool { return r < '0' || r > '9' }) < 0
}
