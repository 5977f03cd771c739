package errors

import (
	"strings"
	"unicode"
)

// ValidateNodeName validates a graph node name before registration.
//
// Node names are regex-matched by link descriptors and used to derive
// output file names, so the rules are conservative:
//   - No empty names
//   - No control characters
//   - Maximum length of 256 characters
func ValidateNodeName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidShape, "node name cannot be empty")
	}

	if len(name) > 256 {
		return New(ErrCodeInvalidShape, "node name too long (max 256 characters)")
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidShape, "node name contains invalid control characters")
		}
	}

	return nil
}

// ValidateDiagramName validates a diagram name used as an output file stem.
// It ensures the name is a simple basename without path components.
func ValidateDiagramName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "diagram name cannot be empty")
	}

	if strings.ContainsAny(name, "/\\") {
		return New(ErrCodeInvalidInput, "diagram name cannot contain path separators: %q", name)
	}

	if strings.Contains(name, "..") {
		return New(ErrCodeInvalidInput, "diagram name cannot contain path traversal sequences (..)")
	}

	return nil
}

// ValidateURL validates a canonical URL string.
// It ensures the URL has an http or https scheme.
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	// Simple scheme validation without full URL parsing
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme: %q", rawURL)
	}

	return nil
}
