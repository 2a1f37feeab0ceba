package tools

import (
	"fmt"
	"strings"
)

// RequiredString extracts a required string argument.
//
// Returns an error suitable for an ErrorResult when the argument is missing
// or empty.
func RequiredString(args map[string]interface{}, key string) (string, error) {
	v, ok := args[key].(string)
	if !ok || v == "" {
		return "", fmt.Errorf("%s parameter is required", key)
	}
	return v, nil
}

// OptionalString extracts an optional string argument with a default.
func OptionalString(args map[string]interface{}, key, defaultValue string) string {
	if v, ok := args[key].(string); ok && v != "" {
		return v
	}
	return defaultValue
}

// OptionalInt extracts an optional integer argument with a default.
// JSON numbers decode as float64, so that is the type to convert from.
func OptionalInt(args map[string]interface{}, key string, defaultValue int) int {
	if v, ok := args[key].(float64); ok {
		return int(v)
	}
	return defaultValue
}

// ValidateRelationship checks a relationship name against the allowlist
// for an object type. The error message mirrors the platform's own wording
// so the calling model can self-correct from the listed names.
func ValidateRelationship(name string, available []string) error {
	for _, rel := range available {
		if rel == name {
			return nil
		}
	}
	return fmt.Errorf("Relationship %s does not exist. Available relationships are: %s",
		name, strings.Join(available, ","))
}
