package text

import "strings"

// Span is a piece of text that is either prose or a delimited math span.
type Span struct {
	Text string

	// Math is true when Text is a complete $...$ or $$...$$ span,
	// delimiters included.
	Math bool

	// Display is true for $$...$$ spans.
	Display bool
}

// SplitMath splits s into prose and math spans. Double-dollar spans are
// recognized before single-dollar ones; an unterminated delimiter is treated
// as prose. Concatenating the Text of all spans yields s.
func SplitMath(s string) []Span {
	var spans []Span
	var prose strings.Builder

	flush := func() {
		if prose.Len() > 0 {
			spans = append(spans, Span{Text: prose.String()})
			prose.Reset()
		}
	}

	i := 0
	for i < len(s) {
		if s[i] != '$' {
			prose.WriteByte(s[i])
			i++
			continue
		}
		if strings.HasPrefix(s[i:], "$$") {
			if end := strings.Index(s[i+2:], "$$"); end >= 0 {
				flush()
				n := i + 2 + end + 2
				spans = append(spans, Span{Text: s[i:n], Math: true, Display: true})
				i = n
				continue
			}
			prose.WriteString("$$")
			i += 2
			continue
		}
		if end := strings.IndexByte(s[i+1:], '$'); end >= 0 {
			flush()
			n := i + 1 + end + 1
			spans = append(spans, Span{Text: s[i:n], Math: true})
			i = n
			continue
		}
		prose.WriteByte('$')
		i++
	}
	flush()

	return spans
}

// HasMath reports whether s contains at least one delimited math span.
func HasMath(s string) bool {
	for _, sp := range SplitMath(s) {
		if sp.Math {
			return true
		}
	}
	return false
}
