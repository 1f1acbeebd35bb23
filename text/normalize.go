package text

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	blockMathRe   = regexp.MustCompile(`(?s)\\\[(.*?)\\\]`)
	inlineMathRe  = regexp.MustCompile(`(?s)\\\((.*?)\\\)`)
	beginAlignRe  = regexp.MustCompile(`\\begin\{align\*?\}`)
	endAlignRe    = regexp.MustCompile(`\\end\{align\*?\}`)
	dollarRunRe   = regexp.MustCompile(`\${3,}`)
	horizontalRe  = regexp.MustCompile(`[ \t\x{00A0}\x{202F}\x{2007}]+`)
	aroundBreakRe = regexp.MustCompile(` ?\n ?`)
	blankLinesRe  = regexp.MustCompile(`\n{3,}`)
)

// Normalize returns s in Unicode NFC form with surrounding whitespace removed.
func Normalize(s string) string {
	if s == "" {
		return ""
	}
	return strings.TrimSpace(norm.NFC.String(s))
}

// NormalizeMath rewrites LaTeX math delimiters to the $ / $$ convention and
// align environments to aligned. It must run before whitespace collapsing.
func NormalizeMath(s string) string {
	if s == "" {
		return ""
	}
	s = blockMathRe.ReplaceAllString(s, "$$$$${1}$$$$")
	s = inlineMathRe.ReplaceAllString(s, "$$${1}$$")
	s = beginAlignRe.ReplaceAllString(s, `\begin{aligned}`)
	s = endAlignRe.ReplaceAllString(s, `\end{aligned}`)
	s = dollarRunRe.ReplaceAllString(s, "$$$$")
	return s
}

// CollapseWhitespace folds horizontal whitespace to single spaces, strips
// spaces next to line breaks and limits consecutive blank lines to one.
func CollapseWhitespace(s string) string {
	if s == "" {
		return ""
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = horizontalRe.ReplaceAllString(s, " ")
	s = aroundBreakRe.ReplaceAllString(s, "\n")
	s = blankLinesRe.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

// Clean applies Normalize, NormalizeMath and CollapseWhitespace in order.
func Clean(s string) string {
	return CollapseWhitespace(NormalizeMath(Normalize(s)))
}
