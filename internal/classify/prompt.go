package classify

import (
	"fmt"
	"strings"

	"github.com/modaworks/curator/internal/metadata"
)

// promptCategoryOrder fixes the order categories are listed in the prompt.
var promptCategoryOrder = []Category{
	CategoryWornFront, CategoryWornSide, CategoryWornBack,
	CategoryProductFront, CategoryProductBack,
	CategoryDetailNeckline, CategoryDetailSleeve, CategoryDetailHem,
	CategoryDetailMaterial, CategoryDetailButton,
	CategoryColorSwatch, CategorySizeChart, CategoryProductInfo,
	CategoryMarketing, CategoryOther,
}

// BuildPrompt assembles the per-product classification prompt. Product
// metadata sharpens the judgment: the model is told which garment is the
// target and which color options exist, so it ignores styling items and
// background colors.
func BuildPrompt(meta *metadata.Meta) string {
	expectedColors := meta.ExpectedColors()

	var metaLines []string
	if meta != nil {
		if meta.Name != "" {
			metaLines = append(metaLines, "- Product name: "+meta.Name)
		}
		if meta.Category != "" {
			metaLines = append(metaLines, "- Category: "+meta.Category)
		}
		if meta.MarketName != "" {
			metaLines = append(metaLines, "- Seller: "+meta.MarketName)
		}
	}
	if len(expectedColors) > 0 {
		metaLines = append(metaLines, "- Known color options: "+strings.Join(expectedColors, ", "))
	}
	metaBlock := "- (no metadata available)"
	if len(metaLines) > 0 {
		metaBlock = strings.Join(metaLines, "\n")
	}

	var categoryLines []string
	for _, c := range promptCategoryOrder {
		categoryLines = append(categoryLines, fmt.Sprintf("   - %s: %s", c, categoryDescriptions[c]))
	}

	colorRule := `   - If you cannot determine the color with certainty, use null`
	if len(expectedColors) > 0 {
		colorRule = `   - Output ONLY one of the known color options listed above; never any other color
   - If you cannot determine the color with certainty, use null`
	}

	return fmt.Sprintf(`You are an expert at classifying apparel product images.

You are classifying images of the TARGET product below. Ignore the colors of
any other clothes, bags, accessories, or backgrounds the model wears or poses
with; judge only by the target garment itself.

Target product:
%s

Critical classification rules:
- If the same product appears in MULTIPLE colorways side by side (stacked
  vertically, several color-name labels), that is a color_swatch even though
  several garments are visible. A color_swatch ALWAYS has color = null.
- Table-style images with SIZE, PRODUCT CHECK, fabric blend, country of
  origin, fit, thickness/stretch/lining information are product_info.

Analyze this image and respond with ONLY a JSON object matching this schema:

1. category: one of
%s

2. color: the target product's color in this image (single value)
%s

3. confidence: how certain the classification is (0.0 - 1.0)

4. has_multiple_items: whether several products/colorways appear together
   (true/false; color lineups are usually true)

5. quality_score: image quality (0.0 - 1.0) judged on sharpness, lighting,
   and product visibility

6. extracted: normalized text extraction, ONLY for fabric blend/material
   - composition: fabric blend, e.g. "polyester 97%%, spandex 3%%"
   - material: material description, e.g. "wool 10%% acrylic 60%% poly 30%%"
   - leave everything else (sizes, fit, country) as null

Return ONLY the JSON object, no other text.`,
		metaBlock,
		strings.Join(categoryLines, "\n"),
		colorRule,
	)
}
