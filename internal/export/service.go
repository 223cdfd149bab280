// Package export produces XLSX audit workbooks from pipeline results.
package export

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/tunde-oladipo/casefile-audit/internal/pipeline"
)

// Service renders a run into a multi-sheet audit workbook.
type Service struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

// AuditWorkbook returns the XLSX bytes for a run: Overview, Documents,
// People, Timeline, and RedFlags sheets.
func (s *Service) AuditWorkbook(res *pipeline.Result) ([]byte, error) {
	start := time.Now()
	f := excelize.NewFile()

	if err := s.writeOverview(f, res); err != nil {
		return nil, err
	}
	if err := s.writeDocuments(f, res); err != nil {
		return nil, err
	}
	if err := s.writePeople(f, res); err != nil {
		return nil, err
	}
	if err := s.writeTimeline(f, res); err != nil {
		return nil, err
	}
	if err := s.writeRedFlags(f, res); err != nil {
		return nil, err
	}

	// Drop the default sheet excelize creates.
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}

	s.logger.Info("export.workbook.ok",
		"run_id", res.ProcessingID,
		"bytes", buf.Len(),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func writeRows(f *excelize.File, sheet string, headers []string, rows [][]any) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
	}
	for r, row := range rows {
		for c, v := range row {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *Service) writeOverview(f *excelize.File, res *pipeline.Result) error {
	ov := res.Summary.FileOverview
	earliest, latest := "", ""
	if ov.DateRange.Earliest != nil {
		earliest = *ov.DateRange.Earliest
	}
	if ov.DateRange.Latest != nil {
		latest = *ov.DateRange.Latest
	}

	rows := [][]any{
		{"Processing ID", res.ProcessingID},
		{"Source", res.SourceName},
		{"Processed At", res.ProcessedAt.Format(time.RFC3339)},
		{"Segments Found", res.SegmentsFound},
		{"Total Pages", ov.TotalPages},
		{"People Identified", ov.PeopleIdentified},
		{"Earliest Date", earliest},
		{"Latest Date", latest},
	}
	for i, rec := range res.Summary.Recommendations {
		rows = append(rows, []any{fmt.Sprintf("Recommendation %d", i+1), rec})
	}
	return writeRows(f, "Overview", []string{"Field", "Value"}, rows)
}

func (s *Service) writeDocuments(f *excelize.File, res *pipeline.Result) error {
	var rows [][]any
	for _, doc := range res.Documents {
		pages := make([]string, len(doc.Pages))
		for i, p := range doc.Pages {
			pages[i] = fmt.Sprintf("%d", p+1)
		}
		rows = append(rows, []any{
			string(doc.DocumentType),
			strings.Join(pages, ", "),
			doc.Confidence,
			len(doc.ExtractedFields),
			strings.Join(doc.Notes, "; "),
		})
	}
	return writeRows(f, "Documents",
		[]string{"Document Type", "Pages", "Confidence", "Fields Extracted", "Notes"}, rows)
}

func (s *Service) writePeople(f *excelize.File, res *pipeline.Result) error {
	var rows [][]any
	for _, key := range res.People.SortedKeys() {
		person := res.People[key]
		completeness := res.Summary.CompletenessCheck[key]
		rows = append(rows, []any{
			key,
			person.Name,
			person.DateOfBirth,
			len(person.Documents),
			completeness.CompletenessScore,
			strings.Join(completeness.MissingDocuments, "; "),
		})
	}
	return writeRows(f, "People",
		[]string{"Person Key", "Name", "Date of Birth", "Documents", "Completeness", "Missing Documents"}, rows)
}

func (s *Service) writeTimeline(f *excelize.File, res *pipeline.Result) error {
	var rows [][]any
	for _, key := range res.People.SortedKeys() {
		for _, entry := range res.People[key].Timeline {
			rows = append(rows, []any{
				key,
				entry.ParsedDate.Format("2006-01-02"),
				entry.RawDate,
				string(entry.Document),
				entry.Event,
			})
		}
	}
	return writeRows(f, "Timeline",
		[]string{"Person Key", "Date", "Raw Date", "Document Type", "Event"}, rows)
}

func (s *Service) writeRedFlags(f *excelize.File, res *pipeline.Result) error {
	var rows [][]any
	for _, flag := range res.Summary.RedFlags {
		rows = append(rows, []any{flag})
	}
	return writeRows(f, "RedFlags", []string{"Red Flag"}, rows)
}
