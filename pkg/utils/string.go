package utils

import (
	"strings"
	"unicode/utf8"
)

// StringHelper provides string utility functions.
type StringHelper struct{}

// NewStringHelper creates a new string helper.
func NewStringHelper() *StringHelper {
	return &StringHelper{}
}

// SanitizeFilename turns a page title into a safe file name component.
// Path separators and characters rejected by common filesystems become
// underscores; spaces and case are kept. An empty result becomes "untitled".
func (s *StringHelper) SanitizeFilename(str string) string {
	str = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}

		if r < 0x20 {
			return -1
		}

		return r
	}, str)

	str = strings.Trim(strings.TrimSpace(str), ".")
	if str == "" {
		return "untitled"
	}

	return str
}

// TruncateString truncates str to maxLength runes, appending "..." when cut.
// The cut never splits a multi-byte character.
func (s *StringHelper) TruncateString(str string, maxLength int) string {
	if utf8.RuneCountInString(str) <= maxLength {
		return str
	}

	runes := []rune(str)

	return string(runes[:max(maxLength, 0)]) + "..."
}
