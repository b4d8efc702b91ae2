// Package validation checks inbound worker payloads against JSON schemas
// before they reach the engine, so malformed jobs fail fast with a coded
// error instead of producing a half-populated context.
package validation

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// Result carries the outcome of one schema validation pass.
type Result struct {
	Valid  bool         `json:"valid"`
	Errors []FieldError `json:"errors,omitempty"`
}

// FieldError pinpoints one offending field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ErrorSummary joins all field errors into one details string.
func (r *Result) ErrorSummary() string {
	if r.Valid {
		return ""
	}
	parts := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		parts = append(parts, fmt.Sprintf("%s: %s", e.Field, e.Message))
	}
	return strings.Join(parts, "; ")
}

// ValidateJSON validates a raw JSON document against a schema document.
func ValidateJSON(payload []byte, schema string) (*Result, error) {
	schemaLoader := gojsonschema.NewStringLoader(schema)
	documentLoader := gojsonschema.NewBytesLoader(payload)

	res, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return nil, fmt.Errorf("schema validation failed to run: %w", err)
	}

	out := &Result{Valid: res.Valid()}
	for _, desc := range res.Errors() {
		out.Errors = append(out.Errors, FieldError{
			Field:   desc.Field(),
			Message: desc.Description(),
		})
	}
	return out, nil
}
