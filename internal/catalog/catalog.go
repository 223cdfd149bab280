// Package catalog holds the static table of known document types and the
// text-pattern indicators that detect them. The table is built once at init
// and never mutated.
package catalog

import (
	"regexp"
	"strings"

	"github.com/tunde-oladipo/casefile-audit/constants"
)

// Indicator is one boolean text-pattern test. It receives the raw page text
// and a lowercased copy so composite indicators can mix both.
type Indicator func(text, lower string) bool

// MatchMode decides how an entry's indicator set combines.
type MatchMode int

const (
	// AnyOf detects when at least one indicator is true.
	AnyOf MatchMode = iota
	// AllOf detects only when every indicator is true. Used by types that
	// would otherwise collide with a superset type (e.g. a standalone
	// petition must not also look like a notice).
	AllOf
)

// Entry describes one document type's detection rules.
type Entry struct {
	Type   constants.DocType
	Mode   MatchMode
	Detect []Indicator

	// Extra indicators are evaluated for diagnostics only; they never
	// contribute to detection.
	Extra []Indicator

	// Base confidence when detected; Upgraded applies when Upgrade is
	// non-nil and matches. Fixed constants, never computed from counts.
	Base     float64
	Upgrade  Indicator
	Upgraded float64

	// SuppressedBy names a type whose detection on the same page mutes
	// this one (US passport vs foreign passport).
	SuppressedBy constants.DocType
}

// Diagnostics returns the full ordered indicator set evaluated for the
// per-page trace: detection indicators first, then extras.
func (e Entry) Diagnostics() []Indicator {
	if len(e.Extra) == 0 {
		return e.Detect
	}
	out := make([]Indicator, 0, len(e.Detect)+len(e.Extra))
	out = append(out, e.Detect...)
	out = append(out, e.Extra...)
	return out
}

var (
	reReceiptNumber = regexp.MustCompile(`(?i)receipt number.*[A-Z]{3}\d{10}`)
	reUSCISNumber   = regexp.MustCompile(`(?i)uscis number.*[A-Z0-9]{9,}`)
	reUSCISLoose    = regexp.MustCompile(`(?i)uscis.*[A-Z0-9]{9,}`)
	reUSPassport    = regexp.MustCompile(`(?i)passport.*united states|type.*p\b`)
	reI94           = regexp.MustCompile(`i[-\s]?94`)
)

// phrase matches a case-insensitive substring.
func phrase(p string) Indicator {
	return func(_, lower string) bool { return strings.Contains(lower, p) }
}

// exact matches a case-sensitive substring.
func exact(s string) Indicator {
	return func(text, _ string) bool { return strings.Contains(text, s) }
}

// pattern matches a regexp against the raw page text.
func pattern(re *regexp.Regexp) Indicator {
	return func(text, _ string) bool { return re.MatchString(text) }
}

// patternLower matches a regexp against the lowercased page text.
func patternLower(re *regexp.Regexp) Indicator {
	return func(_, lower string) bool { return re.MatchString(lower) }
}

func anyPhrase(phrases ...string) Indicator {
	return func(_, lower string) bool {
		for _, p := range phrases {
			if strings.Contains(lower, p) {
				return true
			}
		}
		return false
	}
}

func notPhrase(p string) Indicator {
	return func(_, lower string) bool { return !strings.Contains(lower, p) }
}

func and(inds ...Indicator) Indicator {
	return func(text, lower string) bool {
		for _, ind := range inds {
			if !ind(text, lower) {
				return false
			}
		}
		return true
	}
}

// entries is the catalog in declaration order. Order matters: the classifier
// keeps it as the tie-break for equal confidence.
var entries = []Entry{
	{
		Type: constants.DocTypeI797,
		Mode: AnyOf,
		Detect: []Indicator{
			phrase("notice of action"),
			phrase("i-797"),
			phrase("1-797"),
			exact("I-797"),
			exact("1-797"),
			phrase("uscis"),
			phrase("department of homeland security"),
			phrase("u.s. citizenship and immigration services"),
			pattern(reReceiptNumber),
			and(phrase("approval notice"), anyPhrase("i-140", "i-129")),
		},
		Base:     0.9,
		Upgrade:  pattern(reReceiptNumber),
		Upgraded: 0.95,
	},
	{
		Type: constants.DocTypeI797C,
		Mode: AnyOf,
		Detect: []Indicator{
			anyPhrase("i-797c", "1-797c"),
			and(phrase("notice of action"), phrase("receipt")),
			phrase("receipt notice"),
			and(phrase("receipt number"), anyPhrase("i-140", "i-129"), notPhrase("approval")),
		},
		Base:     0.85,
		Upgrade:  pattern(reReceiptNumber),
		Upgraded: 0.9,
	},
	{
		Type: constants.DocTypeI129,
		Mode: AllOf,
		Detect: []Indicator{
			phrase("i-129"),
			phrase("petition for a nonimmigrant worker"),
			notPhrase("notice of action"),
		},
		Base: 0.85,
	},
	{
		Type:   constants.DocTypePERM,
		Mode:   AnyOf,
		Detect: []Indicator{phrase("labor certification"), phrase("form 9089"), phrase("perm")},
		Base:   0.9,
	},
	{
		Type:   constants.DocTypePWD,
		Mode:   AnyOf,
		Detect: []Indicator{phrase("prevailing wage"), phrase("form 9141"), phrase("pwd")},
		Base:   0.85,
	},
	{
		Type: constants.DocTypeLCA,
		Mode: AnyOf,
		Detect: []Indicator{
			phrase("eta-9035"),
			phrase("eta 9035"),
			phrase("labor condition application"),
			phrase("lca"),
			phrase("form 9035"),
		},
		Extra:    []Indicator{phrase("department of labor")},
		Base:     0.9,
		Upgrade:  phrase("department of labor"),
		Upgraded: 0.95,
	},
	{
		Type: constants.DocTypeI94,
		Mode: AnyOf,
		Detect: []Indicator{
			patternLower(reI94),
			anyPhrase("arrival departure", "admission number"),
		},
		Base: 0.8,
	},
	{
		Type: constants.DocTypeEAD,
		Mode: AnyOf,
		Detect: []Indicator{
			anyPhrase("employment authorization", "ead", "work permit", "i-766"),
		},
		Extra:    []Indicator{pattern(reUSCISNumber)},
		Base:     0.85,
		Upgrade:  pattern(reUSCISNumber),
		Upgraded: 0.9,
	},
	{
		Type: constants.DocTypeGreenCard,
		Mode: AnyOf,
		Detect: []Indicator{
			anyPhrase("permanent resident card", "green card", "i-551"),
		},
		Extra:    []Indicator{pattern(reUSCISLoose)},
		Base:     0.9,
		Upgrade:  pattern(reUSCISLoose),
		Upgraded: 0.95,
	},
	{
		Type:   constants.DocTypeUSPassport,
		Mode:   AnyOf,
		Detect: []Indicator{pattern(reUSPassport)},
		Base:   0.8,
	},
	{
		Type:         constants.DocTypeForeignPassport,
		Mode:         AnyOf,
		Detect:       []Indicator{phrase("passport")},
		Base:         0.7,
		SuppressedBy: constants.DocTypeUSPassport,
	},
	{
		Type: constants.DocTypeVisaStamp,
		Mode: AllOf,
		Detect: []Indicator{
			anyPhrase("visa", "embassy", "consulate"),
			anyPhrase("immigrant", "nonimmigrant"),
		},
		Base: 0.8,
	},
}

// Entries returns the catalog in declaration order. The returned slice must
// not be modified.
func Entries() []Entry {
	return entries
}
