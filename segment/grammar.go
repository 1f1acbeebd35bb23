package segment

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/tsawler/examdoc/layout"
	"github.com/tsawler/examdoc/model"
)

// kind tags the result of classifying one paragraph.
type kind int

const (
	kindText kind = iota
	kindFigure
	kindHeading
	kindHeader
	kindSolution
	kindChoice
	kindOption
	kindAnswer
)

func (k kind) String() string {
	switch k {
	case kindText:
		return "text"
	case kindFigure:
		return "figure"
	case kindHeading:
		return "heading"
	case kindHeader:
		return "header"
	case kindSolution:
		return "solution"
	case kindChoice:
		return "choice"
	case kindOption:
		return "option"
	case kindAnswer:
		return "answer"
	}
	return "unknown"
}

// line is a classified paragraph.
type line struct {
	kind   kind
	number int
	letter string
	value  string
	para   model.Paragraph
}

// matcher recognizes one kind of line.
type matcher func(p model.Paragraph) (line, bool)

var (
	headerRe     = regexp.MustCompile(`(?is)^[*\s]*(?:câu|cau|question)\s*(\d+)\s*[.:]\**\s*(.*)$`)
	solutionRe   = regexp.MustCompile(`(?i)^[*\s]*(?:lời\s*giải|loi\s*giai|hướng\s*dẫn\s*giải|huong\s*dan\s*giai|solution)`)
	figureRe     = regexp.MustCompile(`(?i)^[*\s]*(?:hình|hinh|figure|fig\.?)\s*\d+`)
	choiceRe     = regexp.MustCompile(`(?i:chọn|chon|choose)\s*([A-D])\b`)
	optionRe     = regexp.MustCompile(`(?s)^\s*([A-D])\s*[.)]\s*(.*)$`)
	statementRe  = regexp.MustCompile(`(?s)^\s*([a-d])\s*[.)]\s*(.*)$`)
	answerViRe   = regexp.MustCompile(`(?is)^[*\s]*(?:đáp\s*án|dap\s*an)[:\s]*(.+)$`)
	answerEnRe   = regexp.MustCompile(`(?is)^[*\s]*answer\s*:\s*(.+)$`)
	bareLetterRe = regexp.MustCompile(`^[A-Da-d]$`)
)

func matchFigure(p model.Paragraph) (line, bool) {
	if figureRe.MatchString(p.Text) {
		return line{kind: kindFigure, para: p}, true
	}
	return line{}, false
}

func matchHeading(p model.Paragraph) (line, bool) {
	if layout.IsHeading(p.Text) {
		return line{kind: kindHeading, para: p}, true
	}
	return line{}, false
}

func matchHeader(p model.Paragraph) (line, bool) {
	m := headerRe.FindStringSubmatch(p.Text)
	if m == nil {
		return line{}, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return line{}, false
	}
	return line{kind: kindHeader, number: n, value: strings.TrimSpace(m[2]), para: p}, true
}

// matchSolution recognizes a solution heading. Text after a ':' or '.'
// separator is kept as the first solution line.
func matchSolution(p model.Paragraph) (line, bool) {
	loc := solutionRe.FindStringIndex(p.Text)
	if loc == nil {
		return line{}, false
	}
	rest := p.Text[loc[1]:]
	if r, _ := utf8.DecodeRuneInString(rest); unicode.IsLetter(r) {
		return line{}, false
	}
	rest = strings.TrimLeft(rest, "* \t")
	if strings.HasPrefix(rest, ":") || strings.HasPrefix(rest, ".") {
		rest = strings.TrimSpace(strings.Trim(rest[1:], "*"))
	} else {
		rest = ""
	}
	return line{kind: kindSolution, value: rest, para: p}, true
}

func matchChoice(p model.Paragraph) (line, bool) {
	m := choiceRe.FindStringSubmatch(p.Text)
	if m == nil {
		return line{}, false
	}
	return line{kind: kindChoice, letter: m[1], para: p}, true
}

func matchOption(p model.Paragraph) (line, bool) {
	return matchLettered(optionRe, p)
}

func matchStatement(p model.Paragraph) (line, bool) {
	return matchLettered(statementRe, p)
}

func matchLettered(re *regexp.Regexp, p model.Paragraph) (line, bool) {
	m := re.FindStringSubmatch(p.Text)
	if m == nil {
		return line{}, false
	}
	return line{kind: kindOption, letter: m[1], value: strings.TrimSpace(m[2]), para: p}, true
}

func matchAnswer(p model.Paragraph) (line, bool) {
	m := answerViRe.FindStringSubmatch(p.Text)
	if m == nil {
		m = answerEnRe.FindStringSubmatch(p.Text)
	}
	if m == nil {
		return line{}, false
	}
	v := strings.TrimSpace(strings.Trim(strings.TrimSpace(m[1]), "*"))
	if v == "" {
		return line{}, false
	}
	return line{kind: kindAnswer, value: v, para: p}, true
}

// grammar is the line grammar of one exam part.
type grammar struct {
	part     int
	matchers []matcher

	// stemEvidence records underlined stem segments as correctness evidence.
	stemEvidence bool

	// resolve derives a correct answer from underline evidence.
	resolve func(evidence []string) string
}

// classify runs the matchers in order; the first hit wins.
func (g grammar) classify(p model.Paragraph) line {
	for _, m := range g.matchers {
		if l, ok := m(p); ok {
			return l
		}
	}
	return line{kind: kindText, para: p}
}

var common = []matcher{matchFigure, matchHeading, matchHeader, matchSolution}

func withCommon(extra ...matcher) []matcher {
	out := make([]matcher, 0, len(common)+len(extra))
	out = append(out, common...)
	return append(out, extra...)
}

var grammars = map[int]grammar{
	model.PartMultipleChoice: {
		part:         model.PartMultipleChoice,
		matchers:     withCommon(matchChoice, matchOption),
		stemEvidence: true,
		resolve:      firstUnderlinedLetter,
	},
	model.PartTrueFalse: {
		part:     model.PartTrueFalse,
		matchers: withCommon(matchStatement),
		resolve:  underlinedStatements,
	},
	model.PartShortAnswer: {
		part:     model.PartShortAnswer,
		matchers: withCommon(matchAnswer),
		resolve:  func([]string) string { return "" },
	},
}

// firstUnderlinedLetter returns the first evidence item that is a bare
// option letter.
func firstUnderlinedLetter(evidence []string) string {
	for _, e := range evidence {
		if bareLetterRe.MatchString(e) {
			return strings.ToUpper(e)
		}
	}
	return ""
}

// underlinedStatements returns the sorted, comma-joined statement letters.
func underlinedStatements(evidence []string) string {
	seen := make(map[string]bool)
	var letters []string
	for _, e := range evidence {
		l := strings.ToLower(e)
		if !bareLetterRe.MatchString(l) || seen[l] {
			continue
		}
		seen[l] = true
		letters = append(letters, l)
	}
	sort.Strings(letters)
	return strings.Join(letters, ",")
}
