package text

import (
	"regexp"
	"strings"
)

// entityRe matches an entity that is already escaped; it is left alone so
// that EscapeHTML is idempotent.
var entityRe = regexp.MustCompile(`^&(?:amp|lt|gt|quot|apos|#[0-9]{1,7}|#[xX][0-9a-fA-F]{1,6});`)

// EscapeHTML escapes &, < and > in s while copying math spans verbatim.
func EscapeHTML(s string) string {
	if s == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(s))
	for _, sp := range SplitMath(s) {
		if sp.Math {
			b.WriteString(sp.Text)
			continue
		}
		escapeProse(&b, sp.Text)
	}
	return b.String()
}

func escapeProse(b *strings.Builder, s string) {
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '&':
			if m := entityRe.FindString(s[i:]); m != "" {
				b.WriteString(m)
				i += len(m) - 1
				continue
			}
			b.WriteString("&amp;")
		case '<':
			b.WriteString("&lt;")
		case '>':
			b.WriteString("&gt;")
		default:
			b.WriteByte(c)
		}
	}
}
