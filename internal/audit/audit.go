// Package audit derives per-person completeness and the file-level summary
// from consolidated person records.
package audit

import (
	"sort"
	"strings"
	"time"

	"github.com/tunde-oladipo/casefile-audit/constants"
	"github.com/tunde-oladipo/casefile-audit/internal/consolidate"
)

// expectedCategories is the checklist size behind the completeness score:
// petition, labor cert, passport, visa, entry record, work auth.
const expectedCategories = 6

// Completeness is the per-person derived view; recomputed on demand, never
// persisted on its own.
type Completeness struct {
	HasPetition       bool     `json:"has_petition"`
	HasLaborCert      bool     `json:"has_labor_cert"`
	HasPassport       bool     `json:"has_passport"`
	HasVisa           bool     `json:"has_visa"`
	HasEntryRecord    bool     `json:"has_entry_record"`
	HasWorkAuth       bool     `json:"has_work_auth"`
	MissingDocuments  []string `json:"missing_documents"`
	CompletenessScore float64  `json:"completeness_score"`
}

// DateRange holds ISO dates or nulls when no timeline entry parsed.
type DateRange struct {
	Earliest *string `json:"earliest"`
	Latest   *string `json:"latest"`
}

// FileOverview aggregates counts across the whole file.
type FileOverview struct {
	TotalPages         int            `json:"total_pages"`
	DocumentTypesFound map[string]int `json:"document_types_found"`
	PeopleIdentified   int            `json:"people_identified"`
	DateRange          DateRange      `json:"date_range"`
}

// Summary is the audit block of the produced result contract.
type Summary struct {
	FileOverview      FileOverview            `json:"file_overview"`
	CompletenessCheck map[string]Completeness `json:"completeness_check"`
	RedFlags          []string                `json:"red_flags"`
	Recommendations   []string                `json:"recommendations"`
}

// ProcessedDoc is the per-segment slice of the result the summary needs.
type ProcessedDoc struct {
	Type  constants.DocType
	Pages int
}

// CheckCompleteness derives the six category flags and the conditional
// missing-document recommendations for one person.
func CheckCompleteness(p *consolidate.PersonRecord) Completeness {
	types := make(map[constants.DocType]bool, len(p.Documents))
	hasPassport := false
	for _, doc := range p.Documents {
		types[doc.Type] = true
		if constants.IsPassport(doc.Type) {
			hasPassport = true
		}
	}
	hasAny := func(group []constants.DocType) bool {
		for _, dt := range group {
			if types[dt] {
				return true
			}
		}
		return false
	}

	c := Completeness{
		HasPetition:    hasAny(constants.PetitionTypes),
		HasLaborCert:   hasAny(constants.LaborCertTypes),
		HasPassport:    hasPassport,
		HasVisa:        types[constants.DocTypeVisaStamp],
		HasEntryRecord: types[constants.DocTypeI94],
		HasWorkAuth:    hasAny(constants.WorkAuthTypes),
	}

	// Ordered conditional rules, not a plain flag inversion.
	if c.HasLaborCert && !c.HasPetition {
		c.MissingDocuments = append(c.MissingDocuments, "I-129 petition or I-797 approval notice")
	}
	if c.HasPetition && !c.HasEntryRecord {
		c.MissingDocuments = append(c.MissingDocuments, "I-94 entry record")
	}
	if !c.HasPassport {
		c.MissingDocuments = append(c.MissingDocuments, "Passport")
	}
	if !c.HasWorkAuth {
		c.MissingDocuments = append(c.MissingDocuments, "Work authorization (EAD or Green Card)")
	}

	present := 0
	for _, flag := range []bool{c.HasPetition, c.HasLaborCert, c.HasPassport, c.HasVisa, c.HasEntryRecord, c.HasWorkAuth} {
		if flag {
			present++
		}
	}
	c.CompletenessScore = float64(present) / float64(expectedCategories)
	return c
}

// BuildSummary assembles the full audit block. Person iteration is in
// sorted-key order so output is deterministic.
func BuildSummary(docs []ProcessedDoc, people consolidate.Records) Summary {
	s := Summary{
		FileOverview: FileOverview{
			DocumentTypesFound: make(map[string]int),
			PeopleIdentified:   len(people),
			DateRange:          dateRange(people),
		},
		CompletenessCheck: make(map[string]Completeness),
		RedFlags:          []string{},
		Recommendations:   []string{},
	}

	for _, doc := range docs {
		s.FileOverview.TotalPages += doc.Pages
		s.FileOverview.DocumentTypesFound[string(doc.Type)]++
	}

	keys := people.SortedKeys()
	for _, key := range keys {
		person := people[key]
		s.CompletenessCheck[key] = CheckCompleteness(person)
		for _, inconsistency := range person.Inconsistencies {
			s.RedFlags = append(s.RedFlags, key+": "+inconsistency)
		}
	}

	for _, key := range keys {
		if missing := s.CompletenessCheck[key].MissingDocuments; len(missing) > 0 {
			s.Recommendations = append(s.Recommendations,
				key+": Consider obtaining "+strings.Join(missing, ", "))
		}
	}
	if len(s.RedFlags) > 0 {
		s.Recommendations = append(s.Recommendations,
			"Review flagged data inconsistencies before proceeding")
	}

	return s
}

// EmptySummary is the well-formed zero summary the caller receives when
// processing fails outright.
func EmptySummary() Summary {
	return Summary{
		FileOverview: FileOverview{
			DocumentTypesFound: make(map[string]int),
		},
		CompletenessCheck: make(map[string]Completeness),
		RedFlags:          []string{},
		Recommendations:   []string{},
	}
}

// dateRange finds the global earliest/latest parsed timeline date across all
// people; entries lacking a parsed date were never inserted so every entry
// counts.
func dateRange(people consolidate.Records) DateRange {
	var all []time.Time
	for _, person := range people {
		for _, entry := range person.Timeline {
			all = append(all, entry.ParsedDate)
		}
	}
	if len(all) == 0 {
		return DateRange{}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Before(all[j]) })
	earliest := all[0].Format("2006-01-02")
	latest := all[len(all)-1].Format("2006-01-02")
	return DateRange{Earliest: &earliest, Latest: &latest}
}
