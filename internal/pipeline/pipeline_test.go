package pipeline

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/modaworks/curator/internal/providers"
)

// payloadProvider keys canned responses on the raw image bytes, which the
// loader passes through verbatim when downscaling is disabled.
type payloadProvider struct {
	responses map[string]string
}

func (p *payloadProvider) ClassifyImage(_ context.Context, _ providers.Config, image providers.Image) (string, error) {
	if resp, ok := p.responses[string(image.Data)]; ok {
		return resp, nil
	}
	return `{"category": "other", "confidence": 0.1}`, nil
}

func writeProductDir(t *testing.T, root, sno string) string {
	t.Helper()
	dir := filepath.Join(root, sno)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}

	meta := `{"sno": ` + sno + `, "name": "울 블렌드 니트", "option_colors": ["아이보리", "블랙"]}`
	if err := os.WriteFile(filepath.Join(dir, "meta.json"), []byte(meta), 0644); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"001.jpg", "002.jpg", "003.jpg"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(sno+"/"+name), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func testProvider(sno string) *payloadProvider {
	return &payloadProvider{responses: map[string]string{
		sno + "/001.jpg": `{"category": "worn_front", "color": "아이보리 컬러", "confidence": 0.9, "quality_score": 0.8}`,
		sno + "/002.jpg": `{"category": "product_front", "color": "아이보리", "confidence": 0.85, "quality_score": 0.7}`,
		sno + "/003.jpg": `{"category": "product_info", "confidence": 0.95, "extracted": {"composition": "울 70%, 나일론 30%"}}`,
	}}
}

func TestRunProduct(t *testing.T) {
	root := t.TempDir()
	outputDir := filepath.Join(root, "classifications")
	selectedDir := filepath.Join(root, "selected")
	productDir := writeProductDir(t, root, "54822073")

	p := New(testProvider("54822073"), Options{
		Model:       "test-model",
		Concurrency: 2,
		OutputDir:   outputDir,
		SelectedDir: selectedDir,
	})

	result, err := p.RunProduct(context.Background(), productDir)
	if err != nil {
		t.Fatalf("RunProduct failed: %v", err)
	}

	if result.ProductSno != "54822073" {
		t.Errorf("Expected sno from metadata, got %q", result.ProductSno)
	}
	if len(result.Classifications) != 3 {
		t.Fatalf("Expected 3 records, got %d", len(result.Classifications))
	}

	// Expected-color coercion: "아이보리 컬러" resolves to the option "아이보리".
	worn, ok := result.Selected.WornShotsByColor["아이보리"]
	if !ok {
		t.Fatalf("Expected worn shot under coerced color, got %v", result.Selected.WornShotsByColor)
	}
	if worn.FileName != "001.jpg" {
		t.Errorf("Unexpected worn shot %s", worn.FileName)
	}

	if _, err := os.Stat(filepath.Join(outputDir, "54822073_classification.json")); err != nil {
		t.Errorf("Expected classification JSON written: %v", err)
	}
	if _, err := os.Stat(filepath.Join(outputDir, "54822073_audit.parquet")); err != nil {
		t.Errorf("Expected audit log written: %v", err)
	}
	if _, err := os.Stat(filepath.Join(selectedDir, "54822073", "worn_아이보리.jpg")); err != nil {
		t.Errorf("Expected selected worn shot copied: %v", err)
	}

	// The composition extraction lands back in meta.json.
	data, err := os.ReadFile(filepath.Join(productDir, "meta.json"))
	if err != nil {
		t.Fatal(err)
	}
	var merged map[string]any
	if err := json.Unmarshal(data, &merged); err != nil {
		t.Fatalf("Merged meta.json invalid: %v", err)
	}
	if merged["extracted_composition"] != "울 70%, 나일론 30%" {
		t.Errorf("Expected composition merged into metadata, got %v", merged["extracted_composition"])
	}
}

func TestRunProductWithoutSideEffects(t *testing.T) {
	root := t.TempDir()
	productDir := writeProductDir(t, root, "7")

	p := New(testProvider("7"), Options{Model: "test-model"})

	result, err := p.RunProduct(context.Background(), productDir)
	if err != nil {
		t.Fatalf("RunProduct failed: %v", err)
	}
	if result.TotalImages != 3 {
		t.Errorf("Expected 3 images, got %d", result.TotalImages)
	}
}

func TestRunProductEmptyDirectory(t *testing.T) {
	root := t.TempDir()
	productDir := filepath.Join(root, "8")
	if err := os.MkdirAll(productDir, 0755); err != nil {
		t.Fatal(err)
	}

	p := New(&payloadProvider{}, Options{Model: "test-model"})

	_, err := p.RunProduct(context.Background(), productDir)
	if err == nil {
		t.Fatal("Expected error for product without images")
	}
}

func TestRunAll(t *testing.T) {
	root := t.TempDir()
	imagesDir := filepath.Join(root, "images")
	writeProductDir(t, imagesDir, "100")
	writeProductDir(t, imagesDir, "200")

	// Non-numeric and empty directories must be skipped without failing the batch.
	if err := os.MkdirAll(filepath.Join(imagesDir, "thumbnails"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(imagesDir, "300"), 0755); err != nil {
		t.Fatal(err)
	}

	provider := testProvider("100")
	for k, v := range testProvider("200").responses {
		provider.responses[k] = v
	}

	p := New(provider, Options{Model: "test-model"})

	results, err := p.RunAll(context.Background(), imagesDir)
	if err != nil {
		t.Fatalf("RunAll failed: %v", err)
	}

	if len(results) != 2 {
		t.Fatalf("Expected 2 products, got %d", len(results))
	}
	snos := map[string]bool{}
	for _, r := range results {
		snos[r.ProductSno] = true
	}
	if !snos["100"] || !snos["200"] {
		t.Errorf("Unexpected product set %v", snos)
	}
}

func TestRunAllHonorsCancellation(t *testing.T) {
	root := t.TempDir()
	imagesDir := filepath.Join(root, "images")
	writeProductDir(t, imagesDir, "100")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := New(&payloadProvider{}, Options{Model: "test-model"})
	_, err := p.RunAll(ctx, imagesDir)
	if err != context.Canceled {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestProductSnoFallsBackToDirectoryName(t *testing.T) {
	root := t.TempDir()
	productDir := filepath.Join(root, "99999")
	if err := os.MkdirAll(productDir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(productDir, "001.jpg"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	p := New(&payloadProvider{}, Options{Model: "test-model"})
	result, err := p.RunProduct(context.Background(), productDir)
	if err != nil {
		t.Fatalf("RunProduct failed: %v", err)
	}
	if result.ProductSno != "99999" {
		t.Errorf("Expected directory-name sno, got %q", result.ProductSno)
	}

	var found bool
	for _, ic := range result.Classifications {
		if ic.FileName == "001.jpg" {
			found = true
		}
	}
	if !found {
		t.Error("Expected record for the lone image")
	}
}
