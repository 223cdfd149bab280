// Package pipeline orchestrates the full run: page classification, segment
// grouping, field-extraction dispatch, identity consolidation, and the audit
// summary. The caller always receives a structurally valid Result.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tunde-oladipo/casefile-audit/constants"
	"github.com/tunde-oladipo/casefile-audit/internal/audit"
	"github.com/tunde-oladipo/casefile-audit/internal/classify"
	"github.com/tunde-oladipo/casefile-audit/internal/consolidate"
	"github.com/tunde-oladipo/casefile-audit/internal/dispatch"
	"github.com/tunde-oladipo/casefile-audit/internal/fields"
	"github.com/tunde-oladipo/casefile-audit/internal/ingest"
	"github.com/tunde-oladipo/casefile-audit/internal/segment"
)

// SegmentResult is the per-segment block of the produced contract.
type SegmentResult struct {
	Pages           []int                   `json:"pages"`
	DocumentType    constants.DocType       `json:"document_type"`
	Confidence      float64                 `json:"confidence"`
	ExtractedFields fields.Map              `json:"extracted_data"`
	Validation      fields.ValidationResult `json:"validation_results"`
	Notes           []string                `json:"processing_notes"`
}

// PageDiagnostic is the optional per-page trace carried on the result.
type PageDiagnostic struct {
	PageIndex   int                  `json:"page_num"`
	Detections  []classify.Detection `json:"detected_types"`
	Diagnostics classify.Diagnostics `json:"diagnostics"`
}

// Result is the single object the surrounding application consumes.
type Result struct {
	ProcessingID     string               `json:"processing_id"`
	SourceName       string               `json:"file_path"`
	ProcessedAt      time.Time            `json:"processed_at"`
	SegmentsFound    int                  `json:"segments_found"`
	Documents        []SegmentResult      `json:"documents_processed"`
	People           consolidate.Records  `json:"person_records"`
	ValidationErrors []string             `json:"validation_errors"`
	Summary          audit.Summary        `json:"processing_summary"`
	PageDiagnostics  []PageDiagnostic     `json:"page_diagnostics,omitempty"`
}

// Options tune one run.
type Options struct {
	ValidateFields         bool
	IncludePageDiagnostics bool
}

// DefaultOptions matches the service defaults.
func DefaultOptions() Options {
	return Options{ValidateFields: true}
}

// Processor runs the pipeline. Classification and dispatch fan out over a
// bounded worker pool; consolidation stays serial in segment order because
// the timeline sort and consistency checks are order-sensitive.
type Processor struct {
	Logger     *slog.Logger
	Dispatcher *dispatch.Dispatcher
	Workers    int
}

func NewProcessor(logger *slog.Logger, d *dispatch.Dispatcher, workers int) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	if workers <= 0 {
		workers = 4
	}
	return &Processor{Logger: logger, Dispatcher: d, Workers: workers}
}

// ProcessPages runs the full multi-document pipeline over ordered page texts.
func (p *Processor) ProcessPages(ctx context.Context, sourceName string, pages []ingest.Page, opts Options) *Result {
	res := &Result{
		ProcessingID:     uuid.New().String(),
		SourceName:       sourceName,
		ProcessedAt:      time.Now().UTC(),
		Documents:        []SegmentResult{},
		People:           consolidate.Records{},
		ValidationErrors: []string{},
	}

	defer func() {
		// A panic anywhere in a run must still hand the caller a
		// well-formed result.
		if r := recover(); r != nil {
			p.Logger.Error("pipeline.panic", "source", sourceName, "panic", r)
			res.ValidationErrors = append(res.ValidationErrors, fmt.Sprintf("Processing error: %v", r))
			res.Summary = audit.EmptySummary()
		}
	}()

	start := time.Now()

	analyses := p.analyzePages(pages)
	segments := segment.Group(analyses)
	res.SegmentsFound = len(segments)

	p.Logger.Info("pipeline.segmented",
		"source", sourceName,
		"pages", len(pages),
		"segments", len(segments),
	)

	if opts.IncludePageDiagnostics {
		res.PageDiagnostics = make([]PageDiagnostic, len(analyses))
		for i, a := range analyses {
			res.PageDiagnostics[i] = PageDiagnostic{
				PageIndex:   a.PageIndex,
				Detections:  a.Detections,
				Diagnostics: a.Diagnostics,
			}
		}
	}

	res.Documents = p.dispatchSegments(ctx, segments, opts)

	// Consolidation is serial and in segment order: the shared person map
	// and its timelines must not race.
	for _, doc := range res.Documents {
		res.People.Add(doc.DocumentType, doc.Pages, doc.ExtractedFields)
	}

	res.Summary = audit.BuildSummary(processedDocs(res.Documents), res.People)

	p.Logger.Info("pipeline.done",
		"source", sourceName,
		"segments", res.SegmentsFound,
		"people", len(res.People),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return res
}

// ProcessSingle treats the whole text as one segment of the declared type.
// docType "auto" classifies the text first and takes the top detection.
func (p *Processor) ProcessSingle(ctx context.Context, sourceName, text string, docType constants.DocType, opts Options) *Result {
	if docType == "" || docType == "auto" {
		detections, _ := classify.Page(text, false)
		if len(detections) > 0 {
			docType = detections[0].Type
		} else {
			docType = constants.DocTypeUnknown
		}
	}

	res := &Result{
		ProcessingID:     uuid.New().String(),
		SourceName:       sourceName,
		ProcessedAt:      time.Now().UTC(),
		SegmentsFound:    1,
		Documents:        []SegmentResult{},
		People:           consolidate.Records{},
		ValidationErrors: []string{},
	}

	seg := segment.Segment{
		Pages:      []int{0},
		DocType:    docType,
		Confidence: 0.8,
		Text:       text,
	}
	res.Documents = append(res.Documents, p.processSegment(ctx, seg, opts))
	res.People.Add(docType, seg.Pages, res.Documents[0].ExtractedFields)
	res.Summary = audit.BuildSummary(processedDocs(res.Documents), res.People)
	return res
}

// analyzePages classifies every page on the worker pool. Classification is a
// pure function of page text, so only the output order matters; results land
// at their page index.
func (p *Processor) analyzePages(pages []ingest.Page) []segment.PageAnalysis {
	analyses := make([]segment.PageAnalysis, len(pages))

	var wg sync.WaitGroup
	sem := make(chan struct{}, p.Workers)
	for i := range pages {
		wg.Add(1)
		sem <- struct{}{}
		go func(idx int) {
			defer wg.Done()
			defer func() { <-sem }()

			page := pages[idx]
			detections, diag := classify.Page(page.Text, page.OCRFallback())
			analyses[idx] = segment.PageAnalysis{
				PageIndex:    idx,
				Text:         page.Text,
				Detections:   detections,
				Continuation: classify.IsContinuation(page.Text),
				Diagnostics:  diag,
			}
		}(i)
	}
	wg.Wait()

	return analyses
}

// dispatchSegments runs field extraction for each segment concurrently; the
// external call dominates latency and segments are independent. Results keep
// segment order.
func (p *Processor) dispatchSegments(ctx context.Context, segments []segment.Segment, opts Options) []SegmentResult {
	results := make([]SegmentResult, len(segments))

	var wg sync.WaitGroup
	sem := make(chan struct{}, p.Workers)
	for i := range segments {
		wg.Add(1)
		sem <- struct{}{}
		go func(idx int) {
			defer wg.Done()
			defer func() { <-sem }()
			results[idx] = p.processSegment(ctx, segments[idx], opts)
		}(i)
	}
	wg.Wait()

	return results
}

func (p *Processor) processSegment(ctx context.Context, seg segment.Segment, opts Options) SegmentResult {
	extracted, notes := p.Dispatcher.Dispatch(ctx, seg)

	sr := SegmentResult{
		Pages:           seg.Pages,
		DocumentType:    seg.DocType,
		Confidence:      seg.Confidence,
		ExtractedFields: extracted,
		Notes:           notes,
	}
	if sr.Notes == nil {
		sr.Notes = []string{}
	}
	if opts.ValidateFields && !extracted.Failed() {
		sr.Validation = fields.ValidateSegment(extracted, seg.DocType)
	}
	return sr
}

func processedDocs(docs []SegmentResult) []audit.ProcessedDoc {
	out := make([]audit.ProcessedDoc, len(docs))
	for i, d := range docs {
		out[i] = audit.ProcessedDoc{Type: d.DocumentType, Pages: len(d.Pages)}
	}
	return out
}
