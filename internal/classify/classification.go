package classify

// Extracted holds normalized text pulled from material/size adjacent images.
// Only composition and material are extracted; everything else stays on the
// image itself.
type Extracted struct {
	Composition string `json:"composition,omitempty"`
	Material    string `json:"material,omitempty"`
}

// Empty reports whether the extraction carries no usable text.
func (e *Extracted) Empty() bool {
	return e == nil || (e.Composition == "" && e.Material == "")
}

// ImageClassification is the strict per-image record produced by the
// normalizer. Every image submitted to a batch yields exactly one of these,
// keyed by FileName.
type ImageClassification struct {
	FileName         string     `json:"file_name"`
	FilePath         string     `json:"file_path"`
	Category         Category   `json:"category"`
	Color            string     `json:"color,omitempty"`
	Confidence       float64    `json:"confidence"`
	QualityScore     float64    `json:"quality_score"`
	HasMultipleItems bool       `json:"has_multiple_items"`
	Extracted        *Extracted `json:"extracted,omitempty"`
	Error            string     `json:"error,omitempty"`
}

// Failed reports whether the record represents a failed classification call.
func (ic ImageClassification) Failed() bool {
	return ic.Category == CategoryError
}

// SelectionResult is the per-product output of the selection engine. It is
// derived purely from a classification set; absent slots are encoded as
// missing keys, never placeholder values. RepresentativeColor and
// RepresentativeDetails are omitted entirely (nil) when no color-bearing
// image exists, so callers can tell "no colors found" apart from "colors
// found but zero detail coverage".
type SelectionResult struct {
	WornShotsByColor      map[string]ImageClassification   `json:"worn_shots_by_color"`
	ProductShotsByColor   map[string]ImageClassification   `json:"product_shots_by_color"`
	RepresentativeColor   string                           `json:"representative_color,omitempty"`
	RepresentativeDetails map[Category]ImageClassification `json:"representative_details,omitempty"`
	InfoImages            map[string]ImageClassification   `json:"info_images"`
}

// Info image slot keys.
const (
	InfoSlotSize        = "size"
	InfoSlotComposition = "composition"
	InfoSlotProductInfo = "product_info"
)

// Result bundles the full audit set with the derived selection for one
// product run.
type Result struct {
	ProductSno      string                `json:"product_sno"`
	TotalImages     int                   `json:"total_images"`
	Classifications []ImageClassification `json:"classifications"`
	Selected        SelectionResult       `json:"selected"`
}
