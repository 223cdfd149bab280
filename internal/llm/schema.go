package llm

// BuildFieldSchema returns a JSON-Schema (draft 2020-12 subset) as a generic
// map for a prompt key. Every field is optional and nullable because the
// collaborator omits what it cannot read; additionalProperties stays open so
// unknown keys survive as passthrough data. The schema constrains the shapes
// we later validate strictly (identifier patterns, ISO dates).
func BuildFieldSchema(key string) map[string]any {
	props := map[string]any{}

	str := func(names ...string) {
		for _, n := range names {
			props[n] = map[string]any{"type": []string{"string", "null"}}
		}
	}
	date := func(names ...string) {
		for _, n := range names {
			props[n] = map[string]any{
				"type":    []string{"string", "null"},
				"pattern": `^\d{4}-\d{2}-\d{2}$`,
			}
		}
	}

	switch key {
	case PromptI797, PromptI797C:
		props["receipt_number"] = map[string]any{
			"type":    []string{"string", "null"},
			"pattern": `^[A-Za-z]{3}\d{10}$`,
		}
		str("case_type", "petitioner", "beneficiary", "notice_type", "classification",
			"valid_from", "valid_to", "i94_number", "country_of_citizenship")
		date("received_date", "notice_date", "priority_date")
	case PromptI129:
		str("family_name", "given_name", "country_of_birth", "country_of_citizenship",
			"passport_country", "street_address", "city", "state", "zip_code")
		date("date_of_birth", "passport_issue_date", "passport_expiry_date")
	case PromptPERM:
		str("perm_case_number", "case_status")
		date("expiration_date", "determination_date")
	case PromptPWD:
		str("pwd_case_number", "case_status", "validity_period")
		date("expiration_date")
	case PromptLCA:
		str("job_title", "soc_code", "soc_occupation_title", "legal_business_name",
			"wage_rate", "case_number", "case_status", "period_of_employment",
			"city", "state", "postal_code")
	case PromptI94:
		props["admission_record_number"] = map[string]any{
			"type":    []string{"string", "null"},
			"pattern": `^[\d\- ]{11,13}$`,
		}
		str("class_of_admission", "admit_until_date", "last_name", "first_name",
			"document_number", "country_of_citizenship")
		date("arrival_date", "birth_date")
	case PromptEAD:
		str("full_name", "uscis_number", "card_number", "category", "country_of_birth")
		date("birth_date", "issue_date", "expiration_date")
	case PromptGreenCard:
		str("full_name", "alien_number", "uscis_number", "country_of_birth", "category")
		date("birth_date", "issue_date", "expiration_date", "resident_since")
	case PromptUSPassport, PromptForeignPassport:
		str("code", "passport_number", "holder_name", "birth_place", "issuing_country")
		date("date_of_issue", "date_of_expiry", "birth_date")
	case PromptVisaStamp:
		str("issuing_post_name", "surname", "given_name", "passport_number",
			"control_number", "visa_type", "nationality")
		date("birth_date", "issue_date", "expiration_date")
	default:
		str("document_type", "full_name", "document_number", "issuing_authority")
		date("birth_date", "issue_date", "expiry_date")
	}

	return map[string]any{
		"type":                 "object",
		"additionalProperties": true,
		"properties":           props,
	}
}
