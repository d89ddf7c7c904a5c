package metadata

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// Meta is the per-product metadata the crawler leaves next to the images as
// meta.json. Only the fields the classification pipeline consumes are typed;
// everything else round-trips untouched (see Merge).
type Meta struct {
	Sno               json.Number     `json:"sno"`
	Name              string          `json:"name"`
	Category          string          `json:"category"`
	MarketName        string          `json:"market_name"`
	URL               string          `json:"url,omitempty"`
	OptionColors      []string        `json:"option_colors,omitempty"`
	LegalNoticeColors string          `json:"legal_notice_colors,omitempty"`
	Colors            string          `json:"colors,omitempty"`
	Fabric            string          `json:"fabric,omitempty"`
	Country           string          `json:"country,omitempty"`
	PriceInfo         json.RawMessage `json:"price_info,omitempty"`
}

const metaFileName = "meta.json"

// Load reads meta.json from a product directory. A missing file is not an
// error: classification works without metadata, just with a weaker prompt.
func Load(productDir string) (*Meta, error) {
	data, err := os.ReadFile(filepath.Join(productDir, metaFileName))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read product metadata: %w", err)
	}

	var meta Meta
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("failed to parse product metadata: %w", err)
	}
	return &meta, nil
}

var colorSeparators = regexp.MustCompile(`[,/|]`)

// ExpectedColors resolves the known-valid color options for a product.
// Option-API colors win; the comma/slash/pipe joined legal-notice string is
// the fallback. Order is preserved and duplicates dropped, since the
// normalizer's substring matching is first-match-wins.
func (m *Meta) ExpectedColors() []string {
	if m == nil {
		return nil
	}

	if len(m.OptionColors) > 0 {
		return dedupeTrimmed(m.OptionColors)
	}

	raw := m.LegalNoticeColors
	if raw == "" {
		raw = m.Colors
	}
	if raw == "" {
		return nil
	}
	return dedupeTrimmed(colorSeparators.Split(raw, -1))
}

func dedupeTrimmed(values []string) []string {
	seen := make(map[string]bool, len(values))
	var out []string
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

// ExtractedSource identifies the image a composition/material extraction came
// from, for attribution in the merged metadata.
type ExtractedSource struct {
	FileName   string  `json:"file_name"`
	FilePath   string  `json:"file_path"`
	Confidence float64 `json:"confidence"`
}

// MergeExtracted persists image-extracted composition/material into the
// product's meta.json under dedicated keys, so it never clobbers the fabric
// fields the crawler recorded from the listing itself. The rest of the file
// is preserved as-is. A missing meta.json or empty extraction is a no-op.
func MergeExtracted(productDir, composition, material string, source ExtractedSource) error {
	if composition == "" && material == "" {
		return nil
	}

	metaPath := filepath.Join(productDir, metaFileName)
	data, err := os.ReadFile(metaPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read product metadata: %w", err)
	}

	var meta map[string]any
	if err := json.Unmarshal(data, &meta); err != nil {
		return fmt.Errorf("failed to parse product metadata: %w", err)
	}

	meta["extracted_composition"] = nullableString(composition)
	meta["extracted_material"] = nullableString(material)
	meta["extracted_composition_source"] = source

	out, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal product metadata: %w", err)
	}
	if err := os.WriteFile(metaPath, out, 0644); err != nil {
		return fmt.Errorf("failed to write product metadata: %w", err)
	}
	return nil
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
