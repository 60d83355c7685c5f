package security

import (
	"regexp"
	"strings"
	"unicode"
)

var dataKeyPattern = regexp.MustCompile(`^[a-z][a-z0-9-]{0,47}$`)

// MaxDataValueLength bounds data-* attribute values.
const MaxDataValueLength = 1024

// SanitizeDataAttributes returns a new map containing only safe data-*
// attributes. Keys may be given with or without the data- prefix; returned
// keys always carry it. Keys that are not lowercase identifiers and values
// holding control characters or exceeding MaxDataValueLength are dropped.
func (p *Policy) SanitizeDataAttributes(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for key, value := range in {
		name := strings.TrimPrefix(strings.TrimSpace(key), "data-")
		if !dataKeyPattern.MatchString(name) {
			continue
		}
		if len(value) > MaxDataValueLength || strings.IndexFunc(value, isControl) >= 0 {
			continue
		}
		out["data-"+name] = value
	}
	return out
}

func isControl(r rune) bool {
	return unicode.IsControl(r) && r != '\t'
}
