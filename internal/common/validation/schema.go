// Package validation checks upstream payloads against JSON schemas before decoding.
package validation

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

// ValidatePayload validates a raw JSON payload against a schema document.
// A schema violation means the upstream returned a shape we cannot decode
// into the typed provider records.
func ValidatePayload(payload []byte, schema string) error {
	schemaLoader := gojsonschema.NewStringLoader(schema)
	documentLoader := gojsonschema.NewBytesLoader(payload)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("validation error: %w", err)
	}

	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		return fmt.Errorf("payload validation failed: %v", errs)
	}

	return nil
}
