package classify

// Category is the closed set of semantic roles an apparel product image can
// be assigned. Values match the JSON vocabulary the vision model is prompted
// to answer with.
type Category string

const (
	CategoryWornFront      Category = "worn_front"
	CategoryWornSide       Category = "worn_side"
	CategoryWornBack       Category = "worn_back"
	CategoryProductFront   Category = "product_front"
	CategoryProductBack    Category = "product_back"
	CategoryDetailNeckline Category = "detail_neckline"
	CategoryDetailSleeve   Category = "detail_sleeve"
	CategoryDetailHem      Category = "detail_hem"
	CategoryDetailMaterial Category = "detail_material"
	CategoryDetailButton   Category = "detail_button"
	CategoryColorSwatch    Category = "color_swatch"
	CategorySizeChart      Category = "size_chart"
	CategoryProductInfo    Category = "product_info"
	CategoryMarketing      Category = "marketing"
	CategoryOther          Category = "other"
	CategoryError          Category = "error"
)

// categoryDescriptions drives both the classification prompt and human
// readable summaries.
var categoryDescriptions = map[Category]string{
	CategoryWornFront:      "worn shot, model facing the camera",
	CategoryWornSide:       "worn shot, side profile",
	CategoryWornBack:       "worn shot, from behind",
	CategoryProductFront:   "product-only shot, front (hanger/mannequin/flat lay)",
	CategoryProductBack:    "product-only shot, back",
	CategoryDetailNeckline: "close-up of the neckline",
	CategoryDetailSleeve:   "close-up of the sleeve",
	CategoryDetailHem:      "close-up of the hem",
	CategoryDetailMaterial: "close-up of the fabric/material",
	CategoryDetailButton:   "close-up of buttons/zippers",
	CategoryColorSwatch:    "color lineup comparing multiple colorways",
	CategorySizeChart:      "size chart / measurement table",
	CategoryProductInfo:    "product information table (size/material/blend/fit/care)",
	CategoryMarketing:      "marketing or text-only image",
	CategoryOther:          "anything that fits no other category",
}

// wornCategories are the candidates for the per-color worn-shot slot, in
// priority order (front outranks side and back).
var wornCategories = []Category{CategoryWornFront, CategoryWornSide, CategoryWornBack}

// detailCategories is the fixed set used for representative-color coverage
// scoring and the representative detail slots.
var detailCategories = []Category{
	CategoryProductFront,
	CategoryProductBack,
	CategoryDetailNeckline,
	CategoryDetailSleeve,
	CategoryDetailHem,
}

var validCategories = func() map[Category]bool {
	m := make(map[Category]bool, len(categoryDescriptions)+1)
	for c := range categoryDescriptions {
		m[c] = true
	}
	m[CategoryError] = true
	return m
}()

// ParseCategory maps a free-form string from the model onto the closed
// category set. Unknown values fall back to CategoryOther so downstream
// grouping never sees an open string.
func ParseCategory(s string) Category {
	c := Category(s)
	if validCategories[c] {
		return c
	}
	return CategoryOther
}

// IsWorn reports whether the category is one of the worn-shot roles.
func (c Category) IsWorn() bool {
	for _, w := range wornCategories {
		if c == w {
			return true
		}
	}
	return false
}

// IsInfo reports whether the category carries tabular/textual product
// information rather than a depiction of the garment.
func (c Category) IsInfo() bool {
	return c == CategorySizeChart || c == CategoryProductInfo
}
