package linkedin

import "strings"

// NormalizeAuthorURN maps raw operator input to a full author URN. Bare
// numeric ids become member URNs; anything already carrying a urn:li:
// prefix passes through; other opaque ids become person URNs, matching the
// id shape returned by the userinfo endpoint.
func NormalizeAuthorURN(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	if strings.HasPrefix(s, "urn:li:") {
		return s
	}
	if isDigits(s) {
		return "urn:li:member:" + s
	}
	return "urn:li:person:" + s
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}
