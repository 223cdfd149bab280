// Package consolidate merges per-segment extracted fields into per-person
// case records with ordered timelines and cross-document consistency flags.
package consolidate

import (
	"sort"
	"strings"
	"time"

	"github.com/tunde-oladipo/casefile-audit/constants"
	"github.com/tunde-oladipo/casefile-audit/internal/fields"
)

// TimelineEntry is one dated event on a person's timeline. Entries without a
// parseable date are never inserted.
type TimelineEntry struct {
	RawDate    string            `json:"date"`
	ParsedDate time.Time         `json:"parsed_date"`
	Document   constants.DocType `json:"document"`
	Event      string            `json:"event"`
}

// DocumentEntry records one segment attached to a person.
type DocumentEntry struct {
	Type   constants.DocType `json:"type"`
	Pages  []int             `json:"pages"`
	Fields fields.Map        `json:"data"`
}

// PersonRecord accumulates everything resolved for one identity key within a
// run. Records are never deleted once created.
type PersonRecord struct {
	Name            string          `json:"name"`
	DateOfBirth     string          `json:"date_of_birth,omitempty"`
	Documents       []DocumentEntry `json:"documents"`
	Timeline        []TimelineEntry `json:"timeline"`
	Inconsistencies []string        `json:"inconsistencies"`
}

// Records maps person key -> record. The key is the name alone, or
// name + "_" + dob when a DOB resolved. Identical (name, dob) pairs always
// land on the same record; a differing DOB for the same name creates a
// separate one.
type Records map[string]*PersonRecord

// dobFields are tried in order for every document type.
var dobFields = []string{"date_of_birth", "birth_date", "date_of_birth_mmddyyyy"}

// timelineDateFields are tried in order when placing a document on the
// timeline.
var timelineDateFields = []string{
	"notice_date", "issue_date", "received_date",
	"arrival_date", "arrivalissued_date", "expiration_date",
}

// Add resolves the person behind one segment's fields and merges the segment
// into the matching record. Segments whose name cannot be resolved are
// silently dropped; that is the accepted-loss policy, not a failure.
func (r Records) Add(docType constants.DocType, pages []int, fm fields.Map) {
	name := resolveName(docType, fm)
	if name == "" {
		return
	}
	dob, _ := fm.First(dobFields...)

	key := name
	if dob != "" {
		key = name + "_" + dob
	}

	rec, ok := r[key]
	if !ok {
		rec = &PersonRecord{Name: name, DateOfBirth: dob}
		r[key] = rec
	}

	rec.Documents = append(rec.Documents, DocumentEntry{
		Type:   docType,
		Pages:  pages,
		Fields: fm,
	})

	if raw, ok := fm.First(timelineDateFields...); ok {
		if parsed, ok := fields.ParseDate(raw); ok {
			rec.Timeline = append(rec.Timeline, TimelineEntry{
				RawDate:    raw,
				ParsedDate: parsed,
				Document:   docType,
				Event:      string(docType) + " processed",
			})
			// Stable, so equal dates keep insertion order.
			sort.SliceStable(rec.Timeline, func(i, j int) bool {
				return rec.Timeline[i].ParsedDate.Before(rec.Timeline[j].ParsedDate)
			})
		}
	}

	rec.checkConsistency()
}

// resolveName applies the type-specific field priority, then the generic
// cross-type fallback.
func resolveName(docType constants.DocType, fm fields.Map) string {
	var name string

	switch docType {
	case constants.DocTypeI94:
		first, _ := fm.First("first_name", "first_given_name", "given_name")
		last, _ := fm.First("last_name", "lastsurname", "surname")
		name = joinName(first, last)

	case constants.DocTypeI797, constants.DocTypeI797C:
		name = fm.Get("beneficiary")

	case constants.DocTypeI129:
		given, _ := fm.First("given_name", "given_name_first_name")
		family, _ := fm.First("family_name", "family_name_last_name")
		if given != "" && family != "" {
			name = given + " " + family
		}

	case constants.DocTypeEAD, constants.DocTypeGreenCard:
		name = fm.Get("full_name")

	case constants.DocTypeUSPassport, constants.DocTypeForeignPassport:
		name = fm.Get("holder_name")

	case constants.DocTypeVisaStamp:
		given := fm.Get("given_name")
		surname := fm.Get("surname")
		if given != "" && surname != "" {
			name = given + " " + surname
		}
	}

	if name != "" {
		return name
	}

	// Generic fallback, fixed cross-type priority.
	if v, ok := fm.First("beneficiary", "full_name", "holder_name"); ok {
		return v
	}
	if v := joinName(fm.Get("first_name"), fm.Get("last_name")); v != "" {
		return v
	}
	return joinName(fm.Get("given_name"), fm.Get("surname"))
}

func joinName(first, last string) string {
	switch {
	case first != "" && last != "":
		return first + " " + last
	case first != "":
		return first
	default:
		return last
	}
}

// consistency field groups checked across a person's documents.
var (
	consistencyNameFields    = []string{"beneficiary", "full_name", "holder_name"}
	consistencyDOBFields     = []string{"date_of_birth", "birth_date"}
	consistencyCountryFields = []string{"country_of_citizenship", "country_of_birth", "nationality"}
)

// checkConsistency recomputes the record's inconsistency list from scratch;
// stale entries from an earlier check are replaced, never appended to.
// It only applies once the person carries at least two documents.
func (p *PersonRecord) checkConsistency() {
	if len(p.Documents) < 2 {
		return
	}

	var inconsistencies []string
	if vals := p.distinctValues(consistencyNameFields); len(vals) > 1 {
		inconsistencies = append(inconsistencies, "Name variations: "+strings.Join(vals, ", "))
	}
	if vals := p.distinctValues(consistencyDOBFields); len(vals) > 1 {
		inconsistencies = append(inconsistencies, "DOB variations: "+strings.Join(vals, ", "))
	}
	if vals := p.distinctValues(consistencyCountryFields); len(vals) > 1 {
		inconsistencies = append(inconsistencies, "Country variations: "+strings.Join(vals, ", "))
	}
	p.Inconsistencies = inconsistencies
}

// distinctValues collects distinct non-empty values for a field group across
// all documents, in first-seen order.
func (p *PersonRecord) distinctValues(group []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, doc := range p.Documents {
		if v, ok := doc.Fields.First(group...); ok && !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}

// SortedKeys returns the person keys in lexical order for deterministic
// summaries and exports.
func (r Records) SortedKeys() []string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
