package assemble

import (
	"fmt"
	"strings"

	"github.com/tsawler/examdoc/model"
)

// Finding is one validation problem.
type Finding struct {
	// Number is the question number, or 0 for document-level findings.
	Number  int
	Message string
}

// String formats the finding for display.
func (f Finding) String() string {
	if f.Number == 0 {
		return f.Message
	}
	return fmt.Sprintf("question %d: %s", f.Number, f.Message)
}

// Counts aggregates questions per part and per answer presence.
type Counts struct {
	ByPart        map[int]int
	WithAnswer    int
	WithoutAnswer int
}

// Report is the result of validating a document.
type Report struct {
	Valid    bool
	Findings []Finding
	Counts   Counts
}

// Summary returns a one-line description of the counts.
func (r Report) Summary() string {
	return fmt.Sprintf("part 1=%d, part 2=%d, part 3=%d; answered=%d, unanswered=%d",
		r.Counts.ByPart[1], r.Counts.ByPart[2], r.Counts.ByPart[3],
		r.Counts.WithAnswer, r.Counts.WithoutAnswer)
}

// Validate checks document invariants. It never modifies the document.
func Validate(doc *model.ExamDocument) Report {
	r := Report{Counts: Counts{ByPart: make(map[int]int)}}

	if doc == nil || len(doc.Questions) == 0 {
		r.Findings = append(r.Findings, Finding{Message: "no questions found"})
		return r
	}

	seen := make(map[int]bool, len(doc.Questions))
	for _, q := range doc.Questions {
		if strings.TrimSpace(q.Text) == "" {
			r.Findings = append(r.Findings, Finding{Number: q.Number, Message: "empty question text"})
		}
		if seen[q.Number] {
			r.Findings = append(r.Findings, Finding{Number: q.Number, Message: "duplicate question number"})
		}
		seen[q.Number] = true

		switch {
		case q.Part < model.PartMultipleChoice || q.Part > model.PartShortAnswer:
			r.Findings = append(r.Findings, Finding{Number: q.Number, Message: "part outside 1-3"})
		case q.Number/100 != q.Part:
			r.Findings = append(r.Findings, Finding{Number: q.Number, Message: "source number does not fit its part"})
			r.Counts.ByPart[q.Part]++
		default:
			r.Counts.ByPart[q.Part]++
		}

		if q.HasAnswer() {
			r.Counts.WithAnswer++
		} else {
			r.Counts.WithoutAnswer++
		}
	}

	r.Valid = len(r.Findings) == 0
	return r
}
