package segment

import (
	"sort"
	"strings"

	"github.com/tsawler/examdoc/model"
)

// RawQuestion is a question as scanned from its part, before numbering and
// escaping.
type RawQuestion struct {
	// Number is the question number as printed in the source.
	Number int
	Part   int

	Stem          string
	Options       []model.Option
	CorrectAnswer string
	Solution      string
}

// draft accumulates the question currently being scanned.
type draft struct {
	open       bool
	number     int
	stem       []string
	text       string
	options    []model.Option
	answer     string
	solution   []string
	inSolution bool
	evidence   []string
}

// settleStem fixes the stem text from the buffered lines.
func (d *draft) settleStem() {
	if d.text == "" && len(d.stem) > 0 {
		d.text = strings.TrimSpace(strings.Join(d.stem, " "))
		d.stem = nil
	}
}

// scanner is the state machine for one part.
type scanner struct {
	g   grammar
	cur draft
	out []RawQuestion
}

// Scan segments the paragraphs of one part (1, 2 or 3) into raw questions
// sorted by source number. Unknown parts yield nil.
func Scan(part int, paragraphs []model.Paragraph) []RawQuestion {
	g, ok := grammars[part]
	if !ok {
		return nil
	}

	s := &scanner{g: g}
	for _, p := range paragraphs {
		if p.Text == "" {
			continue
		}
		s.step(g.classify(p))
	}
	s.flush()

	sort.SliceStable(s.out, func(i, j int) bool {
		return s.out[i].Number < s.out[j].Number
	})
	return s.out
}

// MultipleChoice scans part 1 paragraphs.
func MultipleChoice(paragraphs []model.Paragraph) []RawQuestion {
	return Scan(model.PartMultipleChoice, paragraphs)
}

// TrueFalse scans part 2 paragraphs.
func TrueFalse(paragraphs []model.Paragraph) []RawQuestion {
	return Scan(model.PartTrueFalse, paragraphs)
}

// ShortAnswer scans part 3 paragraphs.
func ShortAnswer(paragraphs []model.Paragraph) []RawQuestion {
	return Scan(model.PartShortAnswer, paragraphs)
}

// step applies one classified line to the state machine.
func (s *scanner) step(l line) {
	switch l.kind {
	case kindFigure, kindHeading:
		return
	case kindHeader:
		s.flush()
		s.cur = draft{open: true, number: l.number}
		if l.value != "" {
			s.cur.stem = append(s.cur.stem, l.value)
		}
		s.stemEvidence(l.para)
		return
	}

	if !s.cur.open {
		return
	}
	d := &s.cur

	switch l.kind {
	case kindSolution:
		d.settleStem()
		d.inSolution = true
		if l.value != "" {
			d.solution = append(d.solution, l.value)
		}

	case kindChoice:
		d.answer = strings.ToUpper(l.letter)
		if d.inSolution {
			d.solution = append(d.solution, l.para.Text)
		}

	case kindAnswer:
		d.answer = l.value

	case kindOption:
		if d.inSolution {
			d.solution = append(d.solution, l.para.Text)
			return
		}
		if len(d.options) == 0 {
			d.settleStem()
		}
		d.options = append(d.options, model.Option{Letter: l.letter, Text: l.value})
		if l.para.HasUnderline {
			d.evidence = append(d.evidence, l.letter)
		}

	default:
		s.text(l.para)
	}
}

// text absorbs a line that matched no pattern into the current buffer.
func (s *scanner) text(p model.Paragraph) {
	d := &s.cur
	switch {
	case d.inSolution:
		d.solution = append(d.solution, p.Text)
	case len(d.options) > 0:
		last := &d.options[len(d.options)-1]
		last.Text = strings.TrimSpace(last.Text + " " + p.Text)
		if p.HasUnderline {
			d.evidence = append(d.evidence, last.Letter)
		}
	default:
		d.stem = append(d.stem, p.Text)
		s.stemEvidence(p)
	}
}

func (s *scanner) stemEvidence(p model.Paragraph) {
	if s.g.stemEvidence && p.HasUnderline {
		s.cur.evidence = append(s.cur.evidence, p.UnderlinedSegments...)
	}
}

// flush finalizes the current draft and resets the accumulator. Drafts
// without stem text are discarded.
func (s *scanner) flush() {
	d := s.cur
	s.cur = draft{}
	if !d.open {
		return
	}

	d.settleStem()
	if d.text == "" {
		return
	}

	answer := d.answer
	if answer == "" {
		answer = s.g.resolve(d.evidence)
	}

	s.out = append(s.out, RawQuestion{
		Number:        d.number,
		Part:          s.g.part,
		Stem:          d.text,
		Options:       d.options,
		CorrectAnswer: answer,
		Solution:      strings.TrimSpace(strings.Join(d.solution, " ")),
	})
}
