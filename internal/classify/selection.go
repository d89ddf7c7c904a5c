package classify

import "sort"

// Select runs the deterministic selection algorithm over a full, normalized
// classification set and returns the best-in-slot images for the product.
// It is a pure function: given the same records in the same order it always
// produces the same result. All sorts are stable, so ties fall back to input
// order; callers that need run-to-run stability sort the input by file name
// first (the orchestrator does).
func Select(classifications []ImageClassification) SelectionResult {
	selected := SelectionResult{
		WornShotsByColor:    make(map[string]ImageClassification),
		ProductShotsByColor: make(map[string]ImageClassification),
		InfoImages:          make(map[string]ImageClassification),
	}

	// Group color-bearing images by color, remembering first-seen order so
	// the representative-color tie-break is deterministic.
	byColor := make(map[string][]ImageClassification)
	var colorOrder []string
	for _, ic := range classifications {
		if ic.Color == "" {
			continue
		}
		if _, seen := byColor[ic.Color]; !seen {
			colorOrder = append(colorOrder, ic.Color)
		}
		byColor[ic.Color] = append(byColor[ic.Color], ic)
	}

	// Worn shot per color: front-facing always outranks side/back, then
	// confidence, then quality.
	for _, color := range colorOrder {
		worn := filterByCategory(byColor[color], Category.IsWorn)
		if len(worn) == 0 {
			continue
		}
		sort.SliceStable(worn, func(i, j int) bool {
			fi, fj := worn[i].Category == CategoryWornFront, worn[j].Category == CategoryWornFront
			if fi != fj {
				return fi
			}
			if worn[i].Confidence != worn[j].Confidence {
				return worn[i].Confidence > worn[j].Confidence
			}
			return worn[i].QualityScore > worn[j].QualityScore
		})
		selected.WornShotsByColor[color] = worn[0]
	}

	// Product-front shot per color.
	for _, color := range colorOrder {
		fronts := filterByCategory(byColor[color], func(c Category) bool { return c == CategoryProductFront })
		if best, ok := bestByConfidence(fronts); ok {
			selected.ProductShotsByColor[color] = best
		}
	}

	// Representative color and its detail slots. When no color group exists
	// both fields stay nil/empty so callers can tell the difference from
	// "colors found but nothing covered".
	if len(colorOrder) > 0 {
		repColor := colorOrder[0]
		repScore := detailCoverageScore(byColor[repColor])
		for _, color := range colorOrder[1:] {
			if score := detailCoverageScore(byColor[color]); score.greaterThan(repScore) {
				repColor, repScore = color, score
			}
		}
		selected.RepresentativeColor = repColor

		details := make(map[Category]ImageClassification)
		for _, cat := range detailCategories {
			items := filterByCategory(byColor[repColor], func(c Category) bool { return c == cat })
			if best, ok := bestByConfidence(items); ok {
				details[cat] = best
			}
		}
		selected.RepresentativeDetails = details
	}

	selectInfoImages(classifications, &selected)

	return selected
}

// coverageScore ranks a color group by how well it covers the fixed detail
// category set: full coverage first, then covered-category count, then the
// sum of each covered category's best confidence.
type coverageScore struct {
	complete bool
	covered  int
	confSum  float64
}

func (s coverageScore) greaterThan(o coverageScore) bool {
	if s.complete != o.complete {
		return s.complete
	}
	if s.covered != o.covered {
		return s.covered > o.covered
	}
	return s.confSum > o.confSum
}

func detailCoverageScore(items []ImageClassification) coverageScore {
	var score coverageScore
	for _, cat := range detailCategories {
		best := -1.0
		for _, ic := range items {
			if ic.Category == cat && ic.Confidence > best {
				best = ic.Confidence
			}
		}
		if best >= 0 {
			score.covered++
			score.confSum += best
		}
	}
	score.complete = score.covered == len(detailCategories)
	return score
}

// selectInfoImages fills the size/composition/product_info slots from the
// info-carrying images. The product_info slot is populated only when it
// differs from the image already chosen for size, so one file never occupies
// two info slots.
func selectInfoImages(classifications []ImageClassification, selected *SelectionResult) {
	var sizeCharts, productInfos, withComposition []ImageClassification
	for _, ic := range classifications {
		switch ic.Category {
		case CategorySizeChart:
			sizeCharts = append(sizeCharts, ic)
		case CategoryProductInfo:
			productInfos = append(productInfos, ic)
		default:
			continue
		}
		if !ic.Extracted.Empty() {
			withComposition = append(withComposition, ic)
		}
	}

	size, haveSize := bestByConfidence(sizeCharts)
	if !haveSize {
		size, haveSize = bestByConfidence(productInfos)
	}
	if haveSize {
		selected.InfoImages[InfoSlotSize] = size
	}

	if comp, ok := bestByConfidence(withComposition); ok {
		selected.InfoImages[InfoSlotComposition] = comp
	}

	if info, ok := bestByConfidence(productInfos); ok {
		if !haveSize || info.FilePath != size.FilePath {
			selected.InfoImages[InfoSlotProductInfo] = info
		}
	}
}

func filterByCategory(items []ImageClassification, match func(Category) bool) []ImageClassification {
	var out []ImageClassification
	for _, ic := range items {
		if match(ic.Category) {
			out = append(out, ic)
		}
	}
	return out
}

// bestByConfidence picks the highest-confidence item, breaking ties by
// quality score and then input order.
func bestByConfidence(items []ImageClassification) (ImageClassification, bool) {
	if len(items) == 0 {
		return ImageClassification{}, false
	}
	sorted := make([]ImageClassification, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Confidence != sorted[j].Confidence {
			return sorted[i].Confidence > sorted[j].Confidence
		}
		return sorted[i].QualityScore > sorted[j].QualityScore
	})
	return sorted[0], true
}
