package errors

import (
	"strings"
	"unicode"
)

// maxNameLength bounds material and object names. Generated node names append
// two indices and a suffix, so the limit leaves headroom under typical host limits.
const maxNameLength = 48

// ValidateMaterialName validates a material name before it is embedded in
// generated node names.
//
// The validation rules:
//   - No empty names
//   - No control characters
//   - No provisional marker (~), which is reserved for uncommitted nodes
//   - No path separators, since names are also used as store keys
//   - Maximum length of 48 characters
func ValidateMaterialName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidName, "material name cannot be empty")
	}
	if len(name) > maxNameLength {
		return New(ErrCodeInvalidName, "material name too long (max %d characters)", maxNameLength)
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidName, "material name contains invalid control characters")
		}
	}
	for _, pattern := range []string{"~", "/", "\\", ".."} {
		if strings.Contains(name, pattern) {
			return New(ErrCodeInvalidName, "material name contains invalid characters: %q", pattern)
		}
	}
	return nil
}
