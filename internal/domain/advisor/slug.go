package advisor

import (
	"strings"
	"unicode"
)

// maxHandleLen caps handle length, matching the payload validation rule.
const maxHandleLen = 40

// Slugify derives a handle candidate from a display name: lowercase
// alphanumerics with single hyphens between words.
func Slugify(name string) string {
	var b strings.Builder
	lastHyphen := true // suppress a leading hyphen
	for _, r := range strings.ToLower(name) {
		switch {
		case unicode.IsLetter(r) && r < unicode.MaxASCII, unicode.IsDigit(r) && r < unicode.MaxASCII:
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}

	slug := strings.Trim(b.String(), "-")
	if slug == "" {
		return "advisor"
	}
	if len(slug) > maxHandleLen {
		slug = strings.Trim(slug[:maxHandleLen], "-")
	}
	return slug
}
