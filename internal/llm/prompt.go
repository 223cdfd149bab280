package llm

import (
	"strings"
	"unicode/utf8"
)

// Prompt selector keys. Most match a document type one-to-one; the
// dispatcher picks between family variants by probing the segment text.
const (
	PromptI797            = "I797"
	PromptI797C           = "I797C"
	PromptI129            = "I129"
	PromptPERM            = "PERM"
	PromptPWD             = "PWD"
	PromptLCA             = "LCA"
	PromptI94             = "I94"
	PromptEAD             = "EAD"
	PromptGreenCard       = "GREEN_CARD"
	PromptUSPassport      = "US_PASSPORT"
	PromptForeignPassport = "FOREIGN_PASSPORT"
	PromptVisaStamp       = "VISA_STAMP"
	PromptGeneric         = "GENERIC"
)

var prompts = map[string]string{
	PromptI797: `You are processing an I-797 USCIS Notice of Action (including I-140 and I-129 approvals). Extract key fields and return as JSON:
{
    "receipt_number": "string (e.g., IOE0926970247)",
    "received_date": "YYYY-MM-DD",
    "notice_date": "YYYY-MM-DD",
    "priority_date": "YYYY-MM-DD",
    "case_type": "string (e.g., I140 - IMMIGRANT PETITION FOR ALIEN WORKER)",
    "petitioner": "string (company name)",
    "beneficiary": "string (person name)",
    "notice_type": "string (e.g., Approval Notice)",
    "classification": "string (e.g., H1B, EB-1, EB-2)",
    "valid_from": "string (date range)",
    "valid_to": "string (date)",
    "i94_number": "string",
    "country_of_citizenship": "string"
}
Only include fields that are clearly present. Use null for missing fields.`,

	PromptI797C: `You are processing an I-797C Receipt Notice (including I-140 and I-129 receipt notices). Extract key fields and return as JSON:
{
    "receipt_number": "string (MSC/NBC/EAC/WAC + 10 digits)",
    "case_type": "string",
    "received_date": "YYYY-MM-DD",
    "notice_date": "YYYY-MM-DD",
    "petitioner": "string (company name)",
    "beneficiary": "string (person name)",
    "priority_date": "YYYY-MM-DD",
    "notice_type": "string (typically Receipt Notice)"
}
Only include fields that are clearly present. Use null for missing fields.`,

	PromptI129: `You are processing an I-129 Petition for Nonimmigrant Worker. Extract key fields and return as JSON:
{
    "family_name": "string (last name)",
    "given_name": "string (first name)",
    "date_of_birth": "YYYY-MM-DD",
    "country_of_birth": "string",
    "country_of_citizenship": "string",
    "passport_issue_date": "YYYY-MM-DD",
    "passport_expiry_date": "YYYY-MM-DD",
    "passport_country": "string",
    "street_address": "string",
    "city": "string",
    "state": "string",
    "zip_code": "string"
}
Only include fields that are clearly present. Use null for missing fields.`,

	PromptPERM: `You are processing a PERM Labor Certification (ETA-9089). Extract key fields and return as JSON:
{
    "expiration_date": "YYYY-MM-DD",
    "perm_case_number": "string",
    "case_status": "string",
    "determination_date": "YYYY-MM-DD"
}
Only include fields that are clearly present. Use null for missing fields.`,

	PromptPWD: `You are processing a Prevailing Wage Determination (ETA-9141). Extract key fields and return as JSON:
{
    "expiration_date": "YYYY-MM-DD",
    "pwd_case_number": "string",
    "case_status": "string",
    "validity_period": "string"
}
Only include fields that are clearly present. Use null for missing fields.`,

	PromptLCA: `You are processing a Labor Condition Application (ETA-9035). Extract key fields and return as JSON:
{
    "job_title": "string",
    "soc_code": "string",
    "soc_occupation_title": "string",
    "legal_business_name": "string",
    "wage_rate": "string",
    "case_number": "string",
    "case_status": "string",
    "period_of_employment": "string",
    "city": "string",
    "state": "string",
    "postal_code": "string"
}
Only include fields that are clearly present. Use null for missing fields.`,

	PromptI94: `You are processing an I-94 Arrival/Departure record. Extract key fields and return as JSON:
{
    "admission_record_number": "string (11 digits)",
    "arrival_date": "YYYY-MM-DD",
    "class_of_admission": "string (visa category)",
    "admit_until_date": "YYYY-MM-DD or 'D/S'",
    "last_name": "string",
    "first_name": "string",
    "birth_date": "YYYY-MM-DD",
    "document_number": "string",
    "country_of_citizenship": "string"
}
Only include fields that are clearly present. Use null for missing fields.`,

	PromptEAD: `You are processing an Employment Authorization Document (EAD/I-766). Extract key fields and return as JSON:
{
    "full_name": "string (person's full name)",
    "uscis_number": "string",
    "card_number": "string",
    "category": "string (work authorization category like C09, A05)",
    "country_of_birth": "string",
    "birth_date": "YYYY-MM-DD",
    "issue_date": "YYYY-MM-DD",
    "expiration_date": "YYYY-MM-DD"
}
Only include fields that are clearly present. Use null for missing fields.`,

	PromptGreenCard: `You are processing a Permanent Resident Card (Green Card/I-551). Extract key fields and return as JSON:
{
    "full_name": "string (person's full name)",
    "alien_number": "string (A-number like A123456789)",
    "uscis_number": "string",
    "birth_date": "YYYY-MM-DD",
    "country_of_birth": "string",
    "issue_date": "YYYY-MM-DD",
    "expiration_date": "YYYY-MM-DD",
    "resident_since": "YYYY-MM-DD",
    "category": "string (immigration category like IR1, F1)"
}
Only include fields that are clearly present. Use null for missing fields.`,

	PromptUSPassport: `You are processing a US passport. Extract key fields and return as JSON:
{
    "code": "string (country code)",
    "date_of_issue": "YYYY-MM-DD",
    "date_of_expiry": "YYYY-MM-DD",
    "passport_number": "string",
    "holder_name": "string",
    "birth_date": "YYYY-MM-DD",
    "birth_place": "string"
}
Only include fields that are clearly present. Use null for missing fields.`,

	PromptForeignPassport: `You are processing a foreign passport. Extract key fields and return as JSON:
{
    "code": "string (country code)",
    "date_of_issue": "YYYY-MM-DD",
    "date_of_expiry": "YYYY-MM-DD",
    "passport_number": "string",
    "holder_name": "string",
    "birth_date": "YYYY-MM-DD",
    "birth_place": "string",
    "issuing_country": "string"
}
Only include fields that are clearly present. Use null for missing fields.`,

	PromptVisaStamp: `You are processing a visa stamp. Extract key fields and return as JSON:
{
    "issuing_post_name": "string",
    "surname": "string",
    "given_name": "string",
    "passport_number": "string",
    "control_number": "string",
    "birth_date": "YYYY-MM-DD",
    "issue_date": "YYYY-MM-DD",
    "expiration_date": "YYYY-MM-DD",
    "visa_type": "string (e.g., H1B)",
    "nationality": "string"
}
Only include fields that are clearly present. Use null for missing fields.`,

	PromptGeneric: `You are processing an immigration-related document. Extract any key fields and return as JSON:
{
    "document_type": "string (best guess at document type)",
    "full_name": "string",
    "birth_date": "YYYY-MM-DD",
    "document_number": "string",
    "issue_date": "YYYY-MM-DD",
    "expiry_date": "YYYY-MM-DD",
    "issuing_authority": "string"
}
Only include fields that are clearly present. Use null for missing fields.`,
}

// PromptFor returns the document-specific system prompt; unknown keys fall
// back to the generic prompt.
func PromptFor(key string) string {
	if p, ok := prompts[key]; ok {
		return p
	}
	return prompts[PromptGeneric]
}

// maxSegmentChars caps how much segment text is sent per extraction call.
const maxSegmentChars = 4000

// BuildUserPrompt packages the segment text for the extraction call. Over-long
// text is cut at the last rune boundary at or below the cap so the tail is
// never a partial UTF-8 sequence.
func BuildUserPrompt(segmentText string) string {
	text := segmentText
	if len(text) > maxSegmentChars {
		cut := maxSegmentChars
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		text = text[:cut]
	}
	var b strings.Builder
	b.WriteString("Extract key fields from this text:\n\n")
	b.WriteString(text)
	return b.String()
}
