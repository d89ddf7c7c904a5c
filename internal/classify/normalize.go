package classify

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedResponse indicates the classifier returned something that
// cannot be interpreted as a single JSON object. Callers treat it as a
// classification failure for that image, not a batch failure.
var ErrMalformedResponse = errors.New("malformed classifier response")

// Normalize coerces the classifier's untyped response into a strict
// ImageClassification. The raw value is decoded JSON of unknown shape: a
// valid object, an array whose first element is the object, or garbage.
// expectedColors, when non-empty, is the only set of colors the record may
// carry. File identity is attached by the caller.
func Normalize(raw any, expectedColors []string) (ImageClassification, error) {
	obj, err := asObject(raw)
	if err != nil {
		return ImageClassification{}, err
	}

	ic := ImageClassification{
		Category:         ParseCategory(asString(obj["category"])),
		Confidence:       clamp01(asFloat(obj["confidence"])),
		QualityScore:     clamp01(asFloat(obj["quality_score"])),
		HasMultipleItems: asBool(obj["has_multiple_items"]),
	}

	// Swatches compare multiple colorways and info tables are color
	// ambiguous; neither may carry a single color attribution, whatever
	// the model said.
	if ic.Category != CategoryColorSwatch && ic.Category != CategoryProductInfo {
		ic.Color = coerceColor(obj["color"], expectedColors)
	}

	if ex, ok := obj["extracted"].(map[string]any); ok {
		extracted := &Extracted{
			Composition: strings.TrimSpace(asString(ex["composition"])),
			Material:    strings.TrimSpace(asString(ex["material"])),
		}
		if !extracted.Empty() {
			ic.Extracted = extracted
		}
	}

	return ic, nil
}

// FailureRecord builds the synthetic record for an image whose classification
// call failed. The failure stays local to the image and never aborts
// siblings.
func FailureRecord(fileName, filePath string, err error) ImageClassification {
	return ImageClassification{
		FileName: fileName,
		FilePath: filePath,
		Category: CategoryError,
		Error:    err.Error(),
	}
}

// coerceColor forces a possibly list-valued or comma-joined color onto a
// single value. When expectedColors is non-empty, the resolved value must
// equal or contain one of the expected options as a substring; the first
// match in list order wins and anything else resolves to none.
func coerceColor(raw any, expectedColors []string) string {
	if list, ok := raw.([]any); ok {
		if len(list) == 0 {
			return ""
		}
		raw = list[0]
	}

	c, ok := raw.(string)
	if !ok {
		return ""
	}
	c = strings.TrimSpace(c)
	if c == "" {
		return ""
	}
	if i := strings.Index(c, ","); i >= 0 {
		c = strings.TrimSpace(c[:i])
	}

	if len(expectedColors) == 0 {
		return c
	}
	for _, opt := range expectedColors {
		if opt != "" && strings.Contains(c, opt) {
			return opt
		}
	}
	return ""
}

func asObject(raw any) (map[string]any, error) {
	switch v := raw.(type) {
	case map[string]any:
		return v, nil
	case []any:
		if len(v) > 0 {
			if obj, ok := v[0].(map[string]any); ok {
				return obj, nil
			}
		}
	}
	return nil, fmt.Errorf("%w: expected a JSON object, got %T", ErrMalformedResponse, raw)
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	}
	return 0
}

func asBool(v any) bool {
	b, _ := v.(bool)
	return b
}

func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
