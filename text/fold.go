package text

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// dStroke maps the Vietnamese d with stroke, which has no decomposition.
var dStroke = strings.NewReplacer("đ", "d", "Đ", "D")

// Fold removes diacritics from s: "PHẦN ĐÚNG SAI" becomes "PHAN DUNG SAI".
func Fold(s string) string {
	if s == "" {
		return ""
	}
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return dStroke.Replace(out)
}
