package fields

import (
	"testing"
	"time"

	"github.com/tunde-oladipo/casefile-audit/constants"
)

func TestValidReceiptNumber(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"WAC1234567890", true},
		{"IOE9876543210", true},
		{"msc1234567890", true}, // case-insensitive
		{"ABC1234567890", false},
		{"WAC123456789", false}, // nine digits
		{"WAC12345678901", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := ValidReceiptNumber(tt.in); got != tt.want {
			t.Errorf("ValidReceiptNumber(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestValidI94Number(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"12345678910", true},
		{"123 456789 10", true},
		{"123-456789-10", true},
		{"1234567891", false},
		{"1234567891A", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := ValidI94Number(tt.in); got != tt.want {
			t.Errorf("ValidI94Number(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestValidPassportNumber(t *testing.T) {
	tests := []struct {
		num     string
		country string
		want    bool
	}{
		{"123456789", "USA", true},
		{"A12345678", "usa", true},
		{"AB1234567", "USA", false},
		{"M1234567", "IND", true},
		{"ABC123", "", true},
		{"AB-123", "", false},
		{"TOOLONGPASSPORT99", "", false},
		{"", "USA", false},
	}
	for _, tt := range tests {
		if got := ValidPassportNumber(tt.num, tt.country); got != tt.want {
			t.Errorf("ValidPassportNumber(%q, %q) = %v, want %v", tt.num, tt.country, got, tt.want)
		}
	}
}

func TestReasonableDate(t *testing.T) {
	now := time.Now()
	if ReasonableDate(time.Date(1899, 12, 31, 0, 0, 0, 0, time.UTC)) {
		t.Error("pre-1900 should be unreasonable")
	}
	if !ReasonableDate(time.Date(1994, 12, 19, 0, 0, 0, 0, time.UTC)) {
		t.Error("1994 should be reasonable")
	}
	if !ReasonableDate(now.AddDate(9, 0, 0)) {
		t.Error("nine years out should be reasonable")
	}
	if ReasonableDate(now.AddDate(11, 0, 0)) {
		t.Error("eleven years out should be unreasonable")
	}
}

func TestValidateSegment(t *testing.T) {
	t.Run("uscis notice all valid", func(t *testing.T) {
		res := ValidateSegment(Map{
			"receipt_number": "WAC1234567890",
			"received_date":  "2024-01-10",
			"notice_date":    "2024-01-15",
		}, constants.DocTypeI797)

		if len(res.InvalidFields) != 0 {
			t.Errorf("InvalidFields = %v, want none", res.InvalidFields)
		}
		if len(res.Warnings) != 0 {
			t.Errorf("Warnings = %v, want none", res.Warnings)
		}
		if res.OverallScore != 1.0 {
			t.Errorf("OverallScore = %v, want 1.0", res.OverallScore)
		}
	})

	t.Run("notice before received warns", func(t *testing.T) {
		res := ValidateSegment(Map{
			"notice_date":   "2024-01-05",
			"received_date": "2024-01-10",
		}, constants.DocTypeI797C)

		if len(res.Warnings) != 1 || res.Warnings[0] != "Notice date is before received date" {
			t.Errorf("Warnings = %v", res.Warnings)
		}
	})

	t.Run("bad receipt number scores down", func(t *testing.T) {
		res := ValidateSegment(Map{
			"receipt_number": "XYZ123",
			"notice_date":    "2024-01-15",
		}, constants.DocTypeI797)

		if len(res.InvalidFields) != 1 || res.InvalidFields[0] != "receipt_number" {
			t.Errorf("InvalidFields = %v", res.InvalidFields)
		}
		if res.OverallScore != 0.5 {
			t.Errorf("OverallScore = %v, want 0.5", res.OverallScore)
		}
	})

	t.Run("i94 admission number", func(t *testing.T) {
		res := ValidateSegment(Map{"admission_record_number": "123 456789 10"}, constants.DocTypeI94)
		if len(res.ValidFields) != 1 || res.OverallScore != 1.0 {
			t.Errorf("result = %+v", res)
		}
	})

	t.Run("us passport defaults country", func(t *testing.T) {
		res := ValidateSegment(Map{"passport_number": "123456789"}, constants.DocTypeUSPassport)
		if len(res.ValidFields) != 1 || res.ValidFields[0] != "passport_number" {
			t.Errorf("result = %+v", res)
		}
	})

	t.Run("no applicable fields scores zero", func(t *testing.T) {
		res := ValidateSegment(Map{"other": "x"}, constants.DocTypePERM)
		if res.OverallScore != 0 || len(res.ValidFields) != 0 {
			t.Errorf("result = %+v", res)
		}
	})
}
