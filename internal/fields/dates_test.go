package fields

import (
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		in   string
		want string // "2006-01-02", empty means not parseable
	}{
		{"2024-01-15", "2024-01-15"},
		{"12/25/2023", "2023-12-25"},
		{"1/2/2024", "2024-01-02"},
		{"3-15-2024", "2024-03-15"},
		{"19DEC1994", "1994-12-19"},
		{"19dec1994", "1994-12-19"},
		{"5-Mar-2021", "2021-03-05"},
		{"5 March 2021", "2021-03-05"},
		{"March 5 2021", "2021-03-05"},
		{"2021 March 5", "2021-03-05"},
		{"  2024-01-15  ", "2024-01-15"},
		{"Issued on 2024-06-30 by USCIS", "2024-06-30"},
		{"valid until 06/30/2024", "2024-06-30"},
		{"", ""},
		{"null", ""},
		{"N/A", ""},
		{"not a date", ""},
		{"13/45/2024", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseDate(tt.in)
			if tt.want == "" {
				if ok {
					t.Fatalf("ParseDate(%q) = %v, want not parseable", tt.in, got)
				}
				return
			}
			if !ok {
				t.Fatalf("ParseDate(%q) failed, want %s", tt.in, tt.want)
			}
			if got.Format("2006-01-02") != tt.want {
				t.Errorf("ParseDate(%q) = %s, want %s", tt.in, got.Format("2006-01-02"), tt.want)
			}
		})
	}
}

func TestParseDateAmbiguousIsMonthFirst(t *testing.T) {
	// 03/04/2024 reads as March 4th, US order, every time.
	got, ok := ParseDate("03/04/2024")
	if !ok {
		t.Fatal("expected a parse")
	}
	want := time.Date(2024, time.March, 4, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("got %v, want %v", got, want)
	}
}
