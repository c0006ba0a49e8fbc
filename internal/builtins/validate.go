// ABOUTME: Validate pack provides the phone-number validate tool.
// ABOUTME: Placeholder: the normalization rule is undecided and the tool returns "".

package builtins

import (
	"context"
	"encoding/json"

	"github.com/2389/remind-gateway/internal/auth"
	"github.com/2389/remind-gateway/internal/packs"
)

// ValidatePack creates the validate pack.
func ValidatePack() *packs.BuiltinPack {
	return &packs.BuiltinPack{
		ID: "builtin:validate",
		Tools: []*packs.BuiltinTool{
			{
				Definition: &packs.ToolDefinition{
					Name:        "validate",
					Description: "Normalizes a phone number with its country code into a single digit string. Not implemented; always returns an empty string.",
					InputSchema: `{"type":"object","properties":{"phone_number":{"type":"string","description":"Phone number without country code"},"country_code":{"type":"string","description":"Country calling code, e.g. +91"}}}`,
				},
				Handler: validatePhone,
			},
		},
	}
}

// TODO: implement once the digit normalization for country code plus number is agreed.
func validatePhone(_ context.Context, _ *auth.Grant, _ json.RawMessage) (string, error) {
	return "", nil
}
