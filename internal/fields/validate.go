package fields

import (
	"regexp"
	"strings"
	"time"

	"github.com/tunde-oladipo/casefile-audit/constants"
)

// ValidationResult summarizes field-level validation for one segment.
type ValidationResult struct {
	ValidFields   []string `json:"valid_fields"`
	InvalidFields []string `json:"invalid_fields"`
	Warnings      []string `json:"warnings"`
	OverallScore  float64  `json:"overall_score"`
}

var (
	reReceiptNum = regexp.MustCompile(`(?i)^(MSC|NBC|EAC|WAC|IOE)\d{10}$`)
	reI94Num     = regexp.MustCompile(`^\d{11}$`)
	reUSPassNum  = regexp.MustCompile(`^[A-Z]?\d{8,9}$`)
	reGenPassNum = regexp.MustCompile(`^[A-Z0-9]{6,12}$`)
)

// ValidReceiptNumber reports whether s is a well-formed USCIS receipt number.
func ValidReceiptNumber(s string) bool {
	return s != "" && reReceiptNum.MatchString(s)
}

// ValidI94Number reports whether s is an 11-digit admission number, ignoring
// separators.
func ValidI94Number(s string) bool {
	if s == "" {
		return false
	}
	cleaned := strings.NewReplacer("-", "", " ", "").Replace(s)
	return reI94Num.MatchString(cleaned)
}

// ValidPassportNumber checks passport number shape; US passports are held to
// the stricter digit form.
func ValidPassportNumber(s, country string) bool {
	if s == "" {
		return false
	}
	upper := strings.ToUpper(s)
	if strings.EqualFold(country, "USA") {
		return reUSPassNum.MatchString(upper)
	}
	return reGenPassNum.MatchString(upper)
}

// ReasonableDate reports whether t falls in a plausible document window
// (1900 through ten years from now).
func ReasonableDate(t time.Time) bool {
	year := t.Year()
	return year >= 1900 && year <= time.Now().Year()+10
}

// ValidateSegment validates the extracted fields for one segment against the
// rules for its document type. Types with no rules score zero over zero.
func ValidateSegment(m Map, docType constants.DocType) ValidationResult {
	var res ValidationResult
	total, valid := 0, 0

	check := func(field string, ok bool) {
		total++
		if ok {
			res.ValidFields = append(res.ValidFields, field)
			valid++
		} else {
			res.InvalidFields = append(res.InvalidFields, field)
		}
	}

	switch docType {
	case constants.DocTypeI797, constants.DocTypeI797C, constants.DocTypeI129:
		if num := m.Get("receipt_number"); num != "" {
			check("receipt_number", ValidReceiptNumber(num))
		}

		noticeDate, gotNotice := ParseDate(m.Get("notice_date"))
		receivedDate, gotReceived := ParseDate(m.Get("received_date"))
		if gotNotice {
			check("notice_date", ReasonableDate(noticeDate))
		}
		if gotReceived {
			check("received_date", ReasonableDate(receivedDate))
		}
		if gotNotice && gotReceived && noticeDate.Before(receivedDate) {
			res.Warnings = append(res.Warnings, "Notice date is before received date")
		}

	case constants.DocTypeI94:
		if num, ok := m.First("admission_record_number", "admission_i94_record_number"); ok {
			check("admission_record_number", ValidI94Number(num))
		}

	case constants.DocTypeUSPassport, constants.DocTypeForeignPassport:
		if num := m.Get("passport_number"); num != "" {
			country := m.Get("issuing_country")
			if country == "" && docType == constants.DocTypeUSPassport {
				country = "USA"
			}
			check("passport_number", ValidPassportNumber(num, country))
		}

	case constants.DocTypeEAD:
		if num := m.Get("uscis_number"); num != "" {
			check("uscis_number", len(num) >= 8)
		}
	}

	if total > 0 {
		res.OverallScore = float64(valid) / float64(total)
	}
	return res
}
