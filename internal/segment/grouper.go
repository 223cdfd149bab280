// Package segment groups an ordered sequence of per-page analyses into
// contiguous document segments.
package segment

import (
	"strings"

	"github.com/tunde-oladipo/casefile-audit/constants"
	"github.com/tunde-oladipo/casefile-audit/internal/classify"
)

// PageAnalysis is the immutable first-pass record for one page.
type PageAnalysis struct {
	PageIndex    int                  `json:"page_num"`
	Text         string               `json:"-"`
	Detections   []classify.Detection `json:"detected_types"`
	Continuation bool                 `json:"is_continuation"`
	Diagnostics  classify.Diagnostics `json:"diagnostics"`
}

// Segment is a contiguous run of pages judged to belong to one physical
// sub-document.
type Segment struct {
	Pages      []int             `json:"pages"`
	DocType    constants.DocType `json:"document_type"`
	Confidence float64           `json:"confidence"`
	Text       string            `json:"-"`
}

// open is the accumulating segment the grouper carries between pages.
// A nil *open means no segment is currently accumulating.
type open struct {
	pages      []int
	docType    constants.DocType
	confidence float64
}

// Group runs the three-branch grouping state machine over pages in order.
// Every input page lands in exactly one output segment; continuation pages
// never change a segment's declared type or confidence.
func Group(pages []PageAnalysis) []Segment {
	var segments []Segment
	var cur *open

	emit := func() {
		if cur == nil || len(cur.pages) == 0 {
			cur = nil
			return
		}
		segments = append(segments, build(cur, pages))
		cur = nil
	}

	for _, pa := range pages {
		switch {
		case len(pa.Detections) == 0 && !pa.Continuation:
			// Unrecognizable page: close whatever is accumulating, then
			// emit it standalone so it merges into nothing.
			emit()
			segments = append(segments, build(&open{
				pages:      []int{pa.PageIndex},
				docType:    constants.DocTypeUnknown,
				confidence: constants.UnknownSegmentConfidence,
			}, pages))

		case len(pa.Detections) > 0 && !pa.Continuation:
			// New document starts at this page; the top detection wins.
			emit()
			cur = &open{
				pages:      []int{pa.PageIndex},
				docType:    pa.Detections[0].Type,
				confidence: pa.Detections[0].Confidence,
			}

		default:
			// Continuation, regardless of detections: grow the accumulator.
			if cur == nil {
				cur = &open{docType: constants.DocTypeUnknown, confidence: constants.UnknownSegmentConfidence}
			}
			cur.pages = append(cur.pages, pa.PageIndex)
		}
	}
	emit()

	return segments
}

func build(o *open, pages []PageAnalysis) Segment {
	var b strings.Builder
	for i, p := range o.pages {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(pages[p].Text)
	}
	return Segment{
		Pages:      o.pages,
		DocType:    o.docType,
		Confidence: o.confidence,
		Text:       strings.TrimSpace(b.String()),
	}
}
