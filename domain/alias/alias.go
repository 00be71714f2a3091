// Package alias derives tracking aliases from human-readable titles.
// This package has NO dependencies on I/O or external packages.
package alias

import (
	"regexp"
	"strings"
	"unicode"
)

// Suffix marks an alias as derived rather than hand-written.
const Suffix = "_alias"

// Fallback is used when a title normalizes to nothing.
const Fallback = "link"

var disallowed = regexp.MustCompile(`[^a-z0-9_]`)

// Build normalizes a title into an alias: lowercased, "&" spelled "and",
// quotes dropped, whitespace runs joined with "_", everything outside
// [a-z0-9_] removed, then Suffix appended.
func Build(title string) string {
	s := strings.ToLower(strings.TrimSpace(title))
	s = strings.ReplaceAll(s, "&", "and")
	s = strings.NewReplacer("'", "", `"`, "").Replace(s)
	s = strings.Join(strings.FieldsFunc(s, isSpace), "_")
	s = disallowed.ReplaceAllString(s, "")
	if s == "" {
		s = Fallback
	}
	return s + Suffix
}

// isSpace covers Unicode spaces plus the byte order mark.
func isSpace(r rune) bool {
	return unicode.IsSpace(r) || r == '\uFEFF'
}

// IsDerived returns true if the alias value may be overwritten by derivation.
func IsDerived(value string) bool {
	return value == "" || strings.HasSuffix(value, Suffix)
}

// Rules maps a title field to the alias fields derived from it.
type Rules map[string][]string

// Derive computes alias updates for a title change. It returns only the alias
// fields whose current value is empty or itself derived; hand-written aliases
// are left alone. values is not modified.
func Derive(rules Rules, field, title string, values map[string]string) map[string]string {
	targets := rules[field]
	if len(targets) == 0 {
		return nil
	}

	derived := Build(title)
	out := make(map[string]string, len(targets))
	for _, target := range targets {
		if IsDerived(values[target]) {
			out[target] = derived
		}
	}
	return out
}
