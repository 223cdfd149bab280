package constants

import "strings"

// DocType is the canonical document type for a segment.
type DocType string

// Stable values (store these exact strings in results and the DB).
const (
	DocTypeI797            DocType = "I797"             // I-797 Notice of Action
	DocTypeI797C           DocType = "I797C"            // I-797C Receipt Notice
	DocTypeI129            DocType = "I129"             // I-129 Petition for a Nonimmigrant Worker
	DocTypePERM            DocType = "PERM"             // Labor Certification (ETA-9089)
	DocTypePWD             DocType = "PWD"              // Prevailing Wage Determination (ETA-9141)
	DocTypeLCA             DocType = "LCA"              // Labor Condition Application (ETA-9035)
	DocTypeI94             DocType = "I94"              // Arrival/Departure Record
	DocTypeEAD             DocType = "EAD"              // Employment Authorization Document (I-766)
	DocTypeGreenCard       DocType = "GREEN_CARD"       // Permanent Resident Card (I-551)
	DocTypeUSPassport      DocType = "US_PASSPORT"
	DocTypeForeignPassport DocType = "FOREIGN_PASSPORT"
	DocTypeVisaStamp       DocType = "VISA_STAMP"
	DocTypeUnknown         DocType = "UNKNOWN" // unrecognized page/segment
)

// UnknownSegmentConfidence is the fixed confidence assigned to one-page
// UNKNOWN segments emitted by the grouper.
const UnknownSegmentConfidence = 0.3

// Document groups consumed by the completeness check.
var (
	PetitionTypes  = []DocType{DocTypeI129, DocTypeI797, DocTypeI797C}
	LaborCertTypes = []DocType{DocTypePERM, DocTypeLCA}
	WorkAuthTypes  = []DocType{DocTypeEAD, DocTypeGreenCard}
)

// IsPassport reports whether dt names either passport variant.
func IsPassport(dt DocType) bool {
	return strings.Contains(string(dt), "PASSPORT")
}
