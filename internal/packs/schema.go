// ABOUTME: JSON Schema compilation and argument validation for tool inputs
// ABOUTME: Uses santhosh-tekuri/jsonschema with json.Number-preserving decoding

package packs

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// ErrInvalidSchema indicates a tool declared an input schema that does not compile.
var ErrInvalidSchema = errors.New("invalid input schema")

// compileSchema compiles a tool's input schema.
func compileSchema(toolName, schemaJSON string) (*jsonschema.Schema, error) {
	if strings.TrimSpace(schemaJSON) == "" {
		schemaJSON = `{"type":"object"}`
	}

	// jsonschema.UnmarshalJSON keeps numbers as json.Number, which the
	// validator needs to tell integers from floats.
	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(schemaJSON))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidSchema, toolName, err)
	}

	url := toolName + ".schema.json"
	c := jsonschema.NewCompiler()
	if err := c.AddResource(url, doc); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidSchema, toolName, err)
	}
	schema, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidSchema, toolName, err)
	}
	return schema, nil
}

// validateArguments checks input against schema. Only declared types and
// required fields are enforced; value ranges are left to the handlers.
func validateArguments(schema *jsonschema.Schema, input []byte) error {
	parsed, err := jsonschema.UnmarshalJSON(bytes.NewReader(input))
	if err != nil {
		return fmt.Errorf("arguments are not valid JSON: %w", err)
	}
	if err := schema.Validate(parsed); err != nil {
		return err
	}
	return nil
}
