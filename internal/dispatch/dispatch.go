// Package dispatch routes a segment to the correct field-extraction call.
package dispatch

import (
	"context"
	"log/slog"
	"strings"

	"github.com/tunde-oladipo/casefile-audit/constants"
	"github.com/tunde-oladipo/casefile-audit/internal/fields"
	"github.com/tunde-oladipo/casefile-audit/internal/llm"
	"github.com/tunde-oladipo/casefile-audit/internal/segment"
)

// GenericExtractionNote is appended whenever a segment fell back to the
// generic prompt.
const GenericExtractionNote = "Unknown document type - used generic extraction"

type Dispatcher struct {
	Extractor llm.FieldExtractor
	Logger    *slog.Logger
}

func NewDispatcher(extractor llm.FieldExtractor, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{Extractor: extractor, Logger: logger}
}

// Dispatch resolves the prompt for seg's type and runs the extraction call.
// A failed call becomes an error-marker field map plus a processing note; it
// never propagates, so the rest of the run continues.
func (d *Dispatcher) Dispatch(ctx context.Context, seg segment.Segment) (fields.Map, []string) {
	key, notes := promptKeyFor(seg)

	out, _, err := d.Extractor.ExtractFields(ctx, llm.ExtractRequest{
		SegmentText: seg.Text,
		DocType:     seg.DocType,
		PromptKey:   key,
	})
	if err != nil {
		d.Logger.Error("dispatch.extract.failed",
			"doc_type", seg.DocType, "prompt_key", key, "error", err)
		return fields.FailureMap(err), append(notes, "Extraction error: "+err.Error())
	}

	d.Logger.Debug("dispatch.extract.ok",
		"doc_type", seg.DocType, "prompt_key", key, "fields", len(out))
	return out, notes
}

// promptKeyFor maps a segment type to a prompt selector, probing the segment
// text to split families that share detection indicators.
func promptKeyFor(seg segment.Segment) (string, []string) {
	lower := strings.ToLower(seg.Text)

	switch seg.DocType {
	case constants.DocTypeI797, constants.DocTypeI797C:
		if strings.Contains(lower, "receipt notice") || strings.Contains(lower, "i-797c") {
			return llm.PromptI797C, nil
		}
		return llm.PromptI797, nil

	case constants.DocTypeI129:
		return llm.PromptI129, nil

	case constants.DocTypePERM, constants.DocTypePWD:
		if strings.Contains(lower, "perm") || strings.Contains(seg.Text, "9089") {
			return llm.PromptPERM, nil
		}
		return llm.PromptPWD, nil

	case constants.DocTypeLCA:
		return llm.PromptLCA, nil

	case constants.DocTypeI94:
		return llm.PromptI94, nil

	case constants.DocTypeEAD:
		return llm.PromptEAD, nil

	case constants.DocTypeGreenCard:
		return llm.PromptGreenCard, nil

	case constants.DocTypeUSPassport, constants.DocTypeForeignPassport:
		if strings.Contains(lower, "united states") || strings.Contains(lower, "usa") {
			return llm.PromptUSPassport, nil
		}
		return llm.PromptForeignPassport, nil

	case constants.DocTypeVisaStamp:
		return llm.PromptVisaStamp, nil

	default:
		return llm.PromptGeneric, []string{GenericExtractionNote}
	}
}
