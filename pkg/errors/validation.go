package errors

import (
	"path/filepath"
	"strings"
	"unicode"
)

// MaxNodeIDLength bounds problem identifiers accepted from tables and the API.
const MaxNodeIDLength = 256

// ValidateNodeID validates a problem identifier.
//
// IDs are opaque strings, so only a few things are rejected:
//   - Empty IDs (after trimming surrounding whitespace)
//   - Control characters, including null bytes and newlines
//   - IDs longer than MaxNodeIDLength
func ValidateNodeID(id string) error {
	if strings.TrimSpace(id) == "" {
		return New(ErrCodeInvalidInput, "node ID cannot be empty")
	}

	if len(id) > MaxNodeIDLength {
		return New(ErrCodeInvalidInput, "node ID too long (max %d characters)", MaxNodeIDLength)
	}

	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "node ID %q contains control characters", id)
		}
	}

	return nil
}

// ValidateTableName validates the basename of an input or output table.
// It must be a plain file name with a .csv or .json extension.
func ValidateTableName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidPath, "table name cannot be empty")
	}

	if strings.ContainsAny(name, "/\\") {
		return New(ErrCodeInvalidPath, "table name cannot contain path separators")
	}

	if strings.HasPrefix(name, ".") {
		return New(ErrCodeInvalidPath, "table name cannot be a hidden file")
	}

	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv", ".json":
	default:
		return New(ErrCodeInvalidFormat, "table %q must be .csv or .json", name)
	}

	return nil
}

// ValidateURI checks that a backend connection string uses one of the
// allowed schemes, e.g. "redis" or "mongodb+srv".
func ValidateURI(uri string, schemes ...string) error {
	if uri == "" {
		return New(ErrCodeInvalidConfig, "URI cannot be empty")
	}

	for _, s := range schemes {
		if strings.HasPrefix(uri, s+"://") {
			return nil
		}
	}

	return New(ErrCodeInvalidConfig, "URI must use one of the schemes %v", schemes)
}
