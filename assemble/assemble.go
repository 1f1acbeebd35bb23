// Package assemble converts raw questions into the final exam document and
// checks the result.
package assemble

import (
	"strconv"

	"github.com/tsawler/examdoc/markers"
	"github.com/tsawler/examdoc/model"
	"github.com/tsawler/examdoc/segment"
	"github.com/tsawler/examdoc/text"
)

// Options controls document assembly.
type Options struct {
	Title     string
	TimeLimit int

	// IncludeTrueFalseAnswers also records part 2 answers in the document
	// answer map. Off by default: part 2 correctness is per statement.
	IncludeTrueFalseAnswers bool
}

// sectionInfo is the static metadata of a part.
type sectionInfo struct {
	name        string
	short       string
	description string
}

var sections = map[int]sectionInfo{
	model.PartMultipleChoice: {
		name:        "PHẦN 1. Trắc nghiệm nhiều lựa chọn",
		short:       "Trắc nghiệm nhiều lựa chọn",
		description: "Thí sinh chọn một phương án đúng A, B, C hoặc D",
	},
	model.PartTrueFalse: {
		name:        "PHẦN 2. Trắc nghiệm đúng sai",
		short:       "Trắc nghiệm đúng sai",
		description: "Thí sinh chọn Đúng hoặc Sai cho mỗi ý a), b), c), d)",
	},
	model.PartShortAnswer: {
		name:        "PHẦN 3. Trắc nghiệm trả lời ngắn",
		short:       "Trắc nghiệm trả lời ngắn",
		description: "Thí sinh điền đáp án số vào ô trống",
	},
}

// SectionName returns the display name of a part, or "".
func SectionName(part int) string {
	return sections[part].name
}

// Number returns the document-wide number of a question.
func Number(part, source int) int {
	return part*100 + source
}

// Question converts one raw question. Stem, options and solution are
// HTML-escaped with math spans preserved.
func Question(rq segment.RawQuestion) *model.Question {
	q := &model.Question{
		Number:        Number(rq.Part, rq.Number),
		SourceNumber:  rq.Number,
		Part:          rq.Part,
		Text:          text.EscapeHTML(rq.Stem),
		Type:          model.TypeForPart(rq.Part),
		CorrectAnswer: rq.CorrectAnswer,
		Solution:      text.EscapeHTML(rq.Solution),
		Section: model.SectionRef{
			Letter: strconv.Itoa(rq.Part),
			Name:   sections[rq.Part].short,
		},
	}

	refs := []string{rq.Stem}
	q.Options = make([]model.Option, len(rq.Options))
	for i, o := range rq.Options {
		q.Options[i] = model.Option{Letter: o.Letter, Text: text.EscapeHTML(o.Text)}
		refs = append(refs, o.Text)
	}
	refs = append(refs, rq.Solution)
	q.Images = markers.References(refs...)

	return q
}

// Build assembles the document from the raw questions of each part, given
// in part order. Sections without questions are omitted.
func Build(opts Options, images []model.ImageAsset, parts ...[]segment.RawQuestion) *model.ExamDocument {
	doc := model.NewExamDocument(opts.Title)
	if opts.TimeLimit > 0 {
		doc.TimeLimit = opts.TimeLimit
	}
	doc.Images = images

	for i, raws := range parts {
		if len(raws) == 0 {
			continue
		}
		part := raws[0].Part
		if part == 0 {
			part = i + 1
		}
		info := sections[part]

		s := &model.Section{
			Name:        info.name,
			Description: info.description,
			Type:        model.TypeForPart(part),
			Part:        part,
		}
		for _, rq := range raws {
			if rq.Part == 0 {
				rq.Part = part
			}
			q := Question(rq)
			s.Questions = append(s.Questions, q)
			if q.HasAnswer() && (part != model.PartTrueFalse || opts.IncludeTrueFalseAnswers) {
				doc.Answers[q.Number] = q.CorrectAnswer
			}
		}
		doc.AddSection(s)
	}

	return doc
}
