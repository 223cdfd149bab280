package consolidate

import (
	"reflect"
	"strings"
	"testing"

	"github.com/tunde-oladipo/casefile-audit/constants"
	"github.com/tunde-oladipo/casefile-audit/internal/fields"
)

func TestRecordsAddMergesSamePerson(t *testing.T) {
	r := make(Records)
	r.Add(constants.DocTypeI797, []int{0, 1}, fields.Map{
		"beneficiary":   "JANE DOE",
		"date_of_birth": "1990-05-01",
		"notice_date":   "2024-02-01",
	})
	r.Add(constants.DocTypeI94, []int{2}, fields.Map{
		"first_name":    "JANE",
		"last_name":     "DOE",
		"date_of_birth": "1990-05-01",
		"arrival_date":  "2023-11-15",
	})

	if len(r) != 1 {
		t.Fatalf("got %d records, want 1: keys %v", len(r), r.SortedKeys())
	}
	rec := r["JANE DOE_1990-05-01"]
	if rec == nil {
		t.Fatalf("expected key JANE DOE_1990-05-01, have %v", r.SortedKeys())
	}
	if len(rec.Documents) != 2 {
		t.Errorf("Documents = %d, want 2", len(rec.Documents))
	}
	if rec.DateOfBirth != "1990-05-01" {
		t.Errorf("DateOfBirth = %q", rec.DateOfBirth)
	}
	// Matching DOB across both documents is not a variation.
	for _, inc := range rec.Inconsistencies {
		if strings.HasPrefix(inc, "DOB variations") {
			t.Errorf("unexpected DOB flag: %q", inc)
		}
	}
}

func TestRecordsAddSeparatesByDOB(t *testing.T) {
	r := make(Records)
	r.Add(constants.DocTypeEAD, []int{0}, fields.Map{
		"full_name":     "JOHN SMITH",
		"date_of_birth": "1985-01-01",
	})
	r.Add(constants.DocTypeEAD, []int{1}, fields.Map{
		"full_name":     "JOHN SMITH",
		"date_of_birth": "1991-07-07",
	})
	r.Add(constants.DocTypePERM, []int{2}, fields.Map{
		"beneficiary": "JOHN SMITH",
	})

	want := []string{"JOHN SMITH", "JOHN SMITH_1985-01-01", "JOHN SMITH_1991-07-07"}
	if got := r.SortedKeys(); !reflect.DeepEqual(got, want) {
		t.Errorf("SortedKeys = %v, want %v", got, want)
	}
}

func TestRecordsAddDropsNamelessSegment(t *testing.T) {
	r := make(Records)
	r.Add(constants.DocTypeUnknown, []int{0}, fields.Map{"document_type": "mystery"})
	r.Add(constants.DocTypeI797, []int{1}, fields.Map{fields.ErrorKey: "extraction failed: boom"})

	if len(r) != 0 {
		t.Errorf("nameless segments should be dropped, got %v", r.SortedKeys())
	}
}

func TestResolveName(t *testing.T) {
	tests := []struct {
		name    string
		docType constants.DocType
		fm      fields.Map
		want    string
	}{
		{
			name:    "i94 joins first and last",
			docType: constants.DocTypeI94,
			fm:      fields.Map{"first_name": "JANE", "last_name": "DOE"},
			want:    "JANE DOE",
		},
		{
			name:    "i94 surname alias",
			docType: constants.DocTypeI94,
			fm:      fields.Map{"given_name": "JANE", "lastsurname": "DOE"},
			want:    "JANE DOE",
		},
		{
			name:    "notice uses beneficiary",
			docType: constants.DocTypeI797,
			fm:      fields.Map{"beneficiary": "JANE DOE", "full_name": "OTHER NAME"},
			want:    "JANE DOE",
		},
		{
			name:    "petition needs both name parts",
			docType: constants.DocTypeI129,
			fm:      fields.Map{"given_name": "JANE", "family_name": "DOE"},
			want:    "JANE DOE",
		},
		{
			name:    "passport holder name",
			docType: constants.DocTypeForeignPassport,
			fm:      fields.Map{"holder_name": "JANE DOE"},
			want:    "JANE DOE",
		},
		{
			name:    "visa stamp given plus surname",
			docType: constants.DocTypeVisaStamp,
			fm:      fields.Map{"given_name": "JANE", "surname": "DOE"},
			want:    "JANE DOE",
		},
		{
			name:    "unknown type falls back to generic priority",
			docType: constants.DocTypeUnknown,
			fm:      fields.Map{"full_name": "JANE DOE", "first_name": "IGNORED"},
			want:    "JANE DOE",
		},
		{
			name:    "typed miss falls back to generic",
			docType: constants.DocTypeEAD,
			fm:      fields.Map{"holder_name": "JANE DOE"},
			want:    "JANE DOE",
		},
		{
			name:    "nothing usable",
			docType: constants.DocTypeLCA,
			fm:      fields.Map{"employer": "ACME"},
			want:    "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := resolveName(tt.docType, tt.fm); got != tt.want {
				t.Errorf("resolveName = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTimelineOrdering(t *testing.T) {
	r := make(Records)
	// Inserted out of chronological order on purpose.
	r.Add(constants.DocTypeI797, []int{0}, fields.Map{
		"beneficiary": "JANE DOE",
		"notice_date": "2024-03-01",
	})
	r.Add(constants.DocTypeI94, []int{1}, fields.Map{
		"first_name":   "JANE",
		"last_name":    "DOE",
		"arrival_date": "2023-06-15",
	})
	r.Add(constants.DocTypeLCA, []int{2}, fields.Map{
		"beneficiary": "JANE DOE",
	})

	rec := r["JANE DOE"]
	if rec == nil {
		t.Fatalf("missing record, keys %v", r.SortedKeys())
	}
	// The LCA segment had no timeline date field, so only two entries exist.
	if len(rec.Timeline) != 2 {
		t.Fatalf("Timeline length = %d, want 2", len(rec.Timeline))
	}
	if rec.Timeline[0].Document != constants.DocTypeI94 {
		t.Errorf("first timeline entry = %s, want I94", rec.Timeline[0].Document)
	}
	if rec.Timeline[1].Event != "I797 processed" {
		t.Errorf("second timeline event = %q", rec.Timeline[1].Event)
	}
	if rec.Timeline[0].RawDate != "2023-06-15" {
		t.Errorf("RawDate = %q", rec.Timeline[0].RawDate)
	}
}

func TestConsistencyChecks(t *testing.T) {
	r := make(Records)
	r.Add(constants.DocTypeI797, []int{0}, fields.Map{
		"beneficiary":            "JANE DOE",
		"country_of_citizenship": "India",
	})

	rec := r["JANE DOE"]
	if len(rec.Inconsistencies) != 0 {
		t.Fatalf("single document should not flag: %v", rec.Inconsistencies)
	}

	r.Add(constants.DocTypeForeignPassport, []int{1}, fields.Map{
		"holder_name": "JANE DOE",
		"nationality": "Canada",
	})

	want := []string{"Country variations: India, Canada"}
	if !reflect.DeepEqual(rec.Inconsistencies, want) {
		t.Errorf("Inconsistencies = %v, want %v", rec.Inconsistencies, want)
	}

	// Re-checking replaces the list instead of appending duplicates.
	r.Add(constants.DocTypeEAD, []int{2}, fields.Map{
		"full_name":   "JANE DOE",
		"nationality": "Canada",
	})
	if !reflect.DeepEqual(rec.Inconsistencies, want) {
		t.Errorf("after third doc Inconsistencies = %v, want %v", rec.Inconsistencies, want)
	}
}

func TestConsistencyNameVariations(t *testing.T) {
	r := make(Records)
	r.Add(constants.DocTypeI797, []int{0}, fields.Map{"beneficiary": "JANE DOE"})
	r.Add(constants.DocTypeEAD, []int{1}, fields.Map{"full_name": "JANE A DOE", "beneficiary": ""})

	// Both segments resolve different display names, so they land on
	// different records and neither flags.
	if len(r) != 2 {
		t.Fatalf("got %d records, want 2", len(r))
	}

	// Same person key, diverging name fields across documents does flag.
	r2 := make(Records)
	r2.Add(constants.DocTypeI797, []int{0}, fields.Map{"beneficiary": "JANE DOE"})
	r2.Add(constants.DocTypeI94, []int{1}, fields.Map{
		"first_name": "JANE",
		"last_name":  "DOE",
		"full_name":  "JANE ANNE DOE",
	})

	rec := r2["JANE DOE"]
	if rec == nil {
		t.Fatalf("missing merged record, keys %v", r2.SortedKeys())
	}
	want := []string{"Name variations: JANE DOE, JANE ANNE DOE"}
	if !reflect.DeepEqual(rec.Inconsistencies, want) {
		t.Errorf("Inconsistencies = %v, want %v", rec.Inconsistencies, want)
	}
}
