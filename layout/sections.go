package layout

import (
	"regexp"

	"github.com/tsawler/examdoc/model"
	"github.com/tsawler/examdoc/text"
)

// lead tolerates markdown emphasis and heading marks before a heading.
const lead = `(?i)^[\s*#_]*`

// tail allows only closing emphasis, punctuation and a parenthesized note
// such as "(3 điểm)" after a bare heading title, so a sentence that opens
// with the same words is not a heading.
const tail = `[\s*_.:]*(?:\([^)]*\)[\s*_.:]*)?$`

// numbered matches "PHẦN n" or "PART n" with an arabic or roman numeral.
func numbered(n string) []*regexp.Regexp {
	return []*regexp.Regexp{
		regexp.MustCompile(lead + `PHAN\s*` + n + `\b`),
		regexp.MustCompile(lead + `PART\s*` + n + `\b`),
	}
}

// titled matches a section title either after a roman numeral ("II. ĐÚNG
// SAI ...") or standing alone on its line ("Đúng sai").
func titled(roman, title string) []*regexp.Regexp {
	return []*regexp.Regexp{
		regexp.MustCompile(lead + roman + `\s*[.)]\s*` + title),
		regexp.MustCompile(lead + title + tail),
	}
}

var partPatterns = [3][]*regexp.Regexp{
	concat(
		numbered(`(?:1|I)`),
		titled(`I`, `TRAC\s*NGHIEM`),
		titled(`I`, `MULTIPLE[\s-]*CHOICE`),
	),
	concat(
		numbered(`(?:2|II)`),
		titled(`II`, `(?:TRAC\s*NGHIEM\s*)?DUNG\s*[-/]?\s*SAI`),
		titled(`II`, `TRUE\s*(?:/|OR|-)?\s*FALSE`),
	),
	concat(
		numbered(`(?:3|III)`),
		titled(`III`, `(?:TRAC\s*NGHIEM\s*)?TRA\s*LOI\s*NGAN`),
		[]*regexp.Regexp{regexp.MustCompile(lead + `III\s*[.)]\s*TRA\s*LOI`)},
		titled(`III`, `SHORT[\s-]*ANSWER`),
	),
}

func concat(sets ...[]*regexp.Regexp) []*regexp.Regexp {
	var out []*regexp.Regexp
	for _, s := range sets {
		out = append(out, s...)
	}
	return out
}

// Range is a half-open paragraph index range.
type Range struct {
	Start int
	End   int
}

// Len returns the number of paragraphs in the range.
func (r Range) Len() int {
	if r.End <= r.Start {
		return 0
	}
	return r.End - r.Start
}

// Empty reports whether the range holds no paragraphs.
func (r Range) Empty() bool {
	return r.Len() == 0
}

// Bounds holds the detected range of each part.
type Bounds struct {
	Part1 Range
	Part2 Range
	Part3 Range

	// Detected records which part headings were actually found.
	Detected [3]bool
}

// Part returns the range for part 1, 2 or 3.
func (b Bounds) Part(part int) Range {
	switch part {
	case 1:
		return b.Part1
	case 2:
		return b.Part2
	case 3:
		return b.Part3
	}
	return Range{}
}

// MatchPart returns the part (1-3) whose heading pattern matches s, or 0.
func MatchPart(s string) int {
	folded := text.Fold(s)
	for i, set := range partPatterns {
		if matchAny(set, folded) {
			return i + 1
		}
	}
	return 0
}

// IsHeading reports whether s looks like any part heading.
func IsHeading(s string) bool {
	return MatchPart(s) != 0
}

// matchesPart reports whether s matches one of the patterns for part.
func matchesPart(part int, folded string) bool {
	return matchAny(partPatterns[part-1], folded)
}

func matchAny(set []*regexp.Regexp, s string) bool {
	for _, re := range set {
		if re.MatchString(s) {
			return true
		}
	}
	return false
}

// DetectSections scans paragraphs for part headings and returns the range
// of each part.
func DetectSections(paragraphs []model.Paragraph) Bounds {
	n := len(paragraphs)
	start := [3]int{-1, -1, -1}

	for i, p := range paragraphs {
		folded := text.Fold(p.Text)

		if start[0] == -1 && matchesPart(1, folded) {
			start[0] = i
		}
		if start[1] == -1 && i > start[0] && matchesPart(2, folded) {
			start[1] = i
		}
		if start[2] == -1 && i > max(start[0], start[1]) && matchesPart(3, folded) {
			start[2] = i
		}
	}

	var b Bounds
	for i := range start {
		b.Detected[i] = start[i] != -1
	}
	if start[0] == -1 {
		start[0] = 0
	}
	if start[1] == -1 {
		start[1] = n
	}
	if start[2] == -1 {
		start[2] = n
	}

	b.Part1 = Range{Start: start[0], End: min(start[1], start[2])}
	b.Part2 = Range{Start: start[1], End: max(start[1], start[2])}
	b.Part3 = Range{Start: start[2], End: n}
	return b
}
