// Package ingest loads the text-extraction collaborator's output: one text
// string per page, in page order.
package ingest

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/tunde-oladipo/casefile-audit/internal/common"
)

// Page is the per-page output of the upstream text-extraction collaborator.
type Page struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
	MethodUsed string  `json:"method_used"`
}

// OCRFallback reports whether the page text came from an OCR fallback
// rather than native text extraction.
func (p Page) OCRFallback() bool {
	return strings.Contains(strings.ToLower(p.MethodUsed), "ocr")
}

// FromJSONFile reads a JSON array of pages as produced by the extraction
// collaborator.
func FromJSONFile(path string) ([]Page, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, common.WrapError(err, "read pages file")
	}
	var pages []Page
	if err := json.Unmarshal(raw, &pages); err != nil {
		return nil, common.WrapError(err, "parse pages file")
	}
	return pages, nil
}

// FromTextDir reads a directory of per-page *.txt files, one page per file,
// ordered by filename.
func FromTextDir(dir string) ([]Page, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, common.WrapError(err, "read pages dir")
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".txt") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	pages := make([]Page, 0, len(names))
	for _, name := range names {
		raw, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, common.WrapError(err, "read page "+name)
		}
		pages = append(pages, Page{
			Text:       string(raw),
			Confidence: 1.0,
			MethodUsed: "pretext",
		})
	}
	return pages, nil
}
