package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ValidateJSONAgainstSchema checks an extractor response against the
// per-document-type field schema. Callers treat a mismatch as advisory, so
// the returned error carries the violation detail for logging.
func ValidateJSONAgainstSchema(schemaMap map[string]any, data []byte) error {
	raw, err := json.Marshal(schemaMap)
	if err != nil {
		return fmt.Errorf("encode field schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("fields.schema.json", strings.NewReader(string(raw))); err != nil {
		return fmt.Errorf("register field schema: %w", err)
	}
	schema, err := compiler.Compile("fields.schema.json")
	if err != nil {
		return fmt.Errorf("compile field schema: %w", err)
	}

	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("decode extractor output: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("extractor output violates field schema: %w", err)
	}
	return nil
}
