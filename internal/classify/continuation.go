package classify

import (
	"regexp"
	"strings"
)

// shortPageThreshold is the trimmed length below which a page is presumed to
// be a continuation or exhibit rather than a new document header.
const shortPageThreshold = 200

var continuationPatterns = []*regexp.Regexp{
	regexp.MustCompile(`page \d+ of \d+`),
	regexp.MustCompile(`page \d+`),
	regexp.MustCompile(`continued`),
	regexp.MustCompile(`\(continued\)`),
	regexp.MustCompile(`attachment`),
	regexp.MustCompile(`exhibit`),
}

var headerKeywords = []string{"form", "department", "certificate", "notice"}

// IsContinuation decides whether a page extends the preceding document
// rather than starting a new one. The rules apply in order, first match wins:
// continuation phrase, short page, absence of header language.
func IsContinuation(text string) bool {
	lower := strings.ToLower(text)

	for _, re := range continuationPatterns {
		if re.MatchString(lower) {
			return true
		}
	}

	if len(strings.TrimSpace(text)) < shortPageThreshold {
		return true
	}

	for _, kw := range headerKeywords {
		if strings.Contains(lower, kw) {
			return false
		}
	}
	return true
}
