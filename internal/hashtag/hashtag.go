// Package hashtag normalises user typed hashtags before they are sent to
// the API.
package hashtag

import (
	"strings"

	"github.com/gosimple/unidecode"
	"golang.org/x/text/unicode/norm"
)

// MaxLength caps the length of a sanitised hashtag
const MaxLength = 64

// Sanitize transliterates the input to ASCII, lowercases it and drops every
// character that is not a letter or digit. Symbols are removed, not spelled
// out, so "h@e#l" gives "hel".
func Sanitize(input string) string {
	ascii := unidecode.Unidecode(norm.NFC.String(input))

	var b strings.Builder
	for _, r := range strings.ToLower(ascii) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
		if b.Len() >= MaxLength {
			break
		}
	}
	return b.String()
}
