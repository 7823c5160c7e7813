package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// tagNameRegex matches registrable wire tag names: dotted identifiers such as
// "int", "geom.Vector3" or "scene.Node".
var tagNameRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)*$`)

// ValidateTagName validates a wire tag before it is registered.
//
// Tag names must be dotted identifiers. Characters used by composite type
// expressions ("*", "[", "]") and the "$" prefix of reserved record keys are
// rejected so that every tag parses back unambiguously.
func ValidateTagName(tag string) error {
	if tag == "" {
		return New(ErrCodeInvalidTag, "wire tag cannot be empty")
	}
	if len(tag) > 256 {
		return New(ErrCodeInvalidTag, "wire tag too long (max 256 characters)")
	}
	if !tagNameRegex.MatchString(tag) {
		return New(ErrCodeInvalidTag, "invalid wire tag: %q", tag)
	}
	if tag == "map" {
		return New(ErrCodeInvalidTag, "wire tag %q is reserved", tag)
	}
	return nil
}

// ValidateSnapshotID validates a snapshot identifier for safety.
// Identifiers end up in file paths and database keys, so the rules are
// intentionally conservative:
//   - No empty identifiers
//   - Maximum length of 128 characters
//   - No control characters
//   - No path separators or traversal sequences
func ValidateSnapshotID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidID, "snapshot id cannot be empty")
	}

	if len(id) > 128 {
		return New(ErrCodeInvalidID, "snapshot id too long (max 128 characters)")
	}

	for _, r := range id {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeInvalidID, "snapshot id contains invalid characters")
		}
	}

	for _, pattern := range []string{"..", "/", "\\", "\x00"} {
		if strings.Contains(id, pattern) {
			return New(ErrCodeInvalidID, "snapshot id contains invalid characters: %q", pattern)
		}
	}

	return nil
}
