package normalize

import (
	"regexp"
	"strings"
)

var nonCodeChars = regexp.MustCompile(`[^A-Z0-9.]`)

// NormalizeCode trims, uppercases and strips everything but letters, digits
// and dots from a diagnosis code ("h25.1 " -> "H25.1"). Returns "" when nothing is left.
func NormalizeCode(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	return nonCodeChars.ReplaceAllString(s, "")
}

// CodeMatches reports whether code equals, or is a subcode of, any reference code.
// "H25.1" matches a reference "H25".
func CodeMatches(code string, reference []string) bool {
	code = NormalizeCode(code)
	if code == "" {
		return false
	}
	for _, ref := range reference {
		ref = NormalizeCode(ref)
		if ref == "" {
			continue
		}
		if code == ref || strings.HasPrefix(code, ref+".") {
			return true
		}
	}
	return false
}
