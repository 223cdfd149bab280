// Package llm defines the field-extraction collaborator boundary: the
// request/response contract, per-document-type prompts and schemas, and the
// tolerant parsing of model output.
package llm

import (
	"context"

	"github.com/tunde-oladipo/casefile-audit/constants"
	"github.com/tunde-oladipo/casefile-audit/internal/fields"
)

// ExtractRequest asks the collaborator for the structured fields of one
// segment. PromptKey selects the document-specific prompt and schema; the
// dispatcher resolves it before the call.
type ExtractRequest struct {
	SegmentText string
	DocType     constants.DocType
	PromptKey   string
}

// FieldExtractor is the interface the pipeline depends on. The raw bytes are
// the collaborator's literal response content, kept for audit.
type FieldExtractor interface {
	ExtractFields(ctx context.Context, req ExtractRequest) (fields.Map, []byte, error)
}
