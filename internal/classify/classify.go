// Package classify evaluates the indicator catalog against single pages and
// decides whether a page continues the preceding document. Both checks are
// pure functions of the page text; they never fail.
package classify

import (
	"sort"
	"strings"

	"github.com/tunde-oladipo/casefile-audit/constants"
	"github.com/tunde-oladipo/casefile-audit/internal/catalog"
)

// Detection is one (type, confidence) candidate for a page.
type Detection struct {
	Type       constants.DocType `json:"type"`
	Confidence float64           `json:"confidence"`
}

// Diagnostics is the verbatim per-page trace retained for audit, even when
// nothing was detected.
type Diagnostics struct {
	PageLength int               `json:"page_length"`
	OCRUsed    bool              `json:"ocr_used"`
	Indicators map[string][]bool `json:"indicators_checked"`
}

// Page classifies one page's text against the catalog. Detections come back
// sorted descending by confidence; ties keep catalog declaration order.
// An empty detection list is a valid, common result.
func Page(text string, ocrUsed bool) ([]Detection, Diagnostics) {
	lower := strings.ToLower(text)

	diag := Diagnostics{
		PageLength: len(text),
		OCRUsed:    ocrUsed,
		Indicators: make(map[string][]bool),
	}

	detected := make(map[constants.DocType]bool)
	var detections []Detection

	for _, entry := range catalog.Entries() {
		results := make([]bool, 0, len(entry.Detect)+len(entry.Extra))
		hit := entry.Mode == catalog.AllOf
		for _, ind := range entry.Detect {
			ok := ind(text, lower)
			results = append(results, ok)
			switch entry.Mode {
			case catalog.AnyOf:
				hit = hit || ok
			case catalog.AllOf:
				hit = hit && ok
			}
		}
		for _, ind := range entry.Extra {
			results = append(results, ind(text, lower))
		}
		diag.Indicators[string(entry.Type)] = results

		if !hit {
			continue
		}
		if entry.SuppressedBy != "" && detected[entry.SuppressedBy] {
			continue
		}

		conf := entry.Base
		if entry.Upgrade != nil && entry.Upgrade(text, lower) {
			conf = entry.Upgraded
		}
		detected[entry.Type] = true
		detections = append(detections, Detection{Type: entry.Type, Confidence: conf})
	}

	sort.SliceStable(detections, func(i, j int) bool {
		return detections[i].Confidence > detections[j].Confidence
	})
	return detections, diag
}
