package classify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/modaworks/curator/internal/metadata"
	"github.com/modaworks/curator/internal/providers"
)

// ErrNoImages is returned when a product has nothing to classify. It is the
// only whole-product failure; per-image failures are absorbed as
// error-category records.
var ErrNoImages = errors.New("no images supplied for product")

// ImageRef identifies one source image of a product.
type ImageRef struct {
	FileName string
	FilePath string
}

// Loader supplies the upload payload for an image reference. Implementations
// may downscale or transcode before upload.
type Loader interface {
	Load(ctx context.Context, ref ImageRef) (providers.Image, error)
}

const (
	// DefaultConcurrency caps in-flight classification requests per product.
	DefaultConcurrency = 10

	defaultTemperature = 0.1
)

// Orchestrator fans classification calls out across a product's images under
// a bounded concurrency limit, normalizes every response, and feeds the
// complete set to the selection engine.
type Orchestrator struct {
	provider    providers.Provider
	loader      Loader
	model       string
	temperature float64
	concurrency int
}

// NewOrchestrator wires a vision provider and an image loader into an
// orchestrator. A concurrency of zero or less falls back to
// DefaultConcurrency.
func NewOrchestrator(provider providers.Provider, loader Loader, model string, concurrency int) *Orchestrator {
	if concurrency < 1 {
		concurrency = DefaultConcurrency
	}
	return &Orchestrator{
		provider:    provider,
		loader:      loader,
		model:       model,
		temperature: defaultTemperature,
		concurrency: concurrency,
	}
}

// ClassifyProduct classifies every image of one product and selects the best
// image per slot. All tasks run to completion (success or normalized
// failure) before selection, since representative-color scoring needs the
// full coverage picture. The result is independent of completion order.
func (o *Orchestrator) ClassifyProduct(ctx context.Context, productSno string, images []ImageRef, meta *metadata.Meta) (*Result, error) {
	if len(images) == 0 {
		return nil, fmt.Errorf("%w: product %s", ErrNoImages, productSno)
	}

	config := providers.Config{
		Model:       o.model,
		Temperature: o.temperature,
		Prompt:      BuildPrompt(meta),
	}
	expectedColors := meta.ExpectedColors()

	slog.Info("Classifying product images", "sno", productSno, "images", len(images), "concurrency", o.concurrency)

	// One pre-allocated slot per image: each task writes only its own index,
	// so the collection needs no locking.
	results := make([]ImageClassification, len(images))

	var wg sync.WaitGroup
	semaphore := make(chan struct{}, o.concurrency)

	for i, ref := range images {
		wg.Add(1)
		go func(idx int, ref ImageRef) {
			defer wg.Done()
			semaphore <- struct{}{}        // Acquire
			defer func() { <-semaphore }() // Release

			results[idx] = o.classifyOne(ctx, config, ref, expectedColors)
		}(i, ref)
	}
	wg.Wait()

	// File-name order, not completion order: the selection engine's
	// first-seen tie-breaks rely on a reproducible input order.
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].FileName < results[j].FileName
	})

	return &Result{
		ProductSno:      productSno,
		TotalImages:     len(images),
		Classifications: results,
		Selected:        Select(results),
	}, nil
}

func (o *Orchestrator) classifyOne(ctx context.Context, config providers.Config, ref ImageRef, expectedColors []string) ImageClassification {
	image, err := o.loader.Load(ctx, ref)
	if err != nil {
		slog.Warn("Failed to load image", "file", ref.FileName, "error", err)
		return FailureRecord(ref.FileName, ref.FilePath, err)
	}

	text, err := o.provider.ClassifyImage(ctx, config, image)
	if err != nil {
		slog.Warn("Classification call failed", "file", ref.FileName, "error", err)
		return FailureRecord(ref.FileName, ref.FilePath, err)
	}

	var raw any
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		slog.Warn("Classifier returned invalid JSON", "file", ref.FileName, "error", err)
		return FailureRecord(ref.FileName, ref.FilePath, fmt.Errorf("%w: %v", ErrMalformedResponse, err))
	}

	ic, err := Normalize(raw, expectedColors)
	if err != nil {
		slog.Warn("Classifier response rejected", "file", ref.FileName, "error", err)
		return FailureRecord(ref.FileName, ref.FilePath, err)
	}

	ic.FileName = ref.FileName
	ic.FilePath = ref.FilePath
	slog.Debug("Classified image", "file", ref.FileName, "category", ic.Category, "color", ic.Color)
	return ic
}
