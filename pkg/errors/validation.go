package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// ValidatePath validates a user-supplied file path for safety.
// It prevents null bytes and control characters and ensures reasonable length.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	return nil
}

// highwayClassRegex matches OSM highway class tokens (e.g. "primary",
// "motorway_link", "living_street").
var highwayClassRegex = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// ValidateHighwayClass validates a single highway class token used in
// ingestion filter lists.
func ValidateHighwayClass(class string) error {
	if class == "" {
		return New(ErrCodeInvalidFilter, "highway class cannot be empty")
	}

	if strings.ToLower(class) != class {
		return New(ErrCodeInvalidFilter, "highway classes are lowercase: %q", class)
	}

	if !highwayClassRegex.MatchString(class) {
		return New(ErrCodeInvalidFilter, "invalid highway class: %q", class)
	}

	return nil
}
