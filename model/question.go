package model

// QuestionType tags the grammar a question was parsed with.
type QuestionType string

const (
	MultipleChoice QuestionType = "multiple_choice"
	TrueFalse      QuestionType = "true_false"
	ShortAnswer    QuestionType = "short_answer"
)

// Part numbers of the three exam sections.
const (
	PartMultipleChoice = 1
	PartTrueFalse      = 2
	PartShortAnswer    = 3
)

// TypeForPart returns the question type of a part, or "" for unknown parts.
func TypeForPart(part int) QuestionType {
	switch part {
	case PartMultipleChoice:
		return MultipleChoice
	case PartTrueFalse:
		return TrueFalse
	case PartShortAnswer:
		return ShortAnswer
	}
	return ""
}

// Option is an answer option (part 1) or a statement (part 2).
type Option struct {
	Letter string
	Text   string
}

// SectionRef identifies the section a question belongs to.
type SectionRef struct {
	Letter string
	Name   string
}

// Question is a final, assembled question.
type Question struct {
	// Number is Part*100 + SourceNumber and unique within a document.
	Number       int
	SourceNumber int
	Part         int

	Text     string
	Type     QuestionType
	Options  []Option
	Solution string

	// CorrectAnswer is a letter for part 1, a comma-joined sorted letter
	// list for part 2 and the verbatim value for part 3. Empty if unknown.
	CorrectAnswer string

	Section SectionRef

	// Images lists local image ids referenced from the question's text,
	// options and solution, in order of first appearance.
	Images []string
}

// HasAnswer reports whether a correct answer was determined.
func (q *Question) HasAnswer() bool {
	return q.CorrectAnswer != ""
}

// Option returns the option with the given letter, if present.
func (q *Question) Option(letter string) (Option, bool) {
	for _, o := range q.Options {
		if o.Letter == letter {
			return o, true
		}
	}
	return Option{}, false
}
