// Package sheet converts exam documents into question-bank rows and reads
// and writes them as XLSX workbooks.
package sheet

import (
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/tsawler/examdoc/markers"
	"github.com/tsawler/examdoc/model"
)

// Header is the column layout of a question-bank sheet.
var Header = []string{
	"exam_id", "level", "question_type", "question_text", "image_id",
	"option_A", "option_B", "option_C", "option_D",
	"answer_key", "solution", "topic", "grade", "quiz_level",
}

// Question type labels used in the sheet.
const (
	LabelMultipleChoice = "Trắc nghiệm"
	LabelTrueFalse      = "Đúng sai"
	LabelShortAnswer    = "Trả lời ngắn"
)

// Row is one question in sheet form.
type Row struct {
	ExamID       string
	Level        string
	QuestionType string
	QuestionText string
	// ImageID stays empty: images are inline markers in the text columns.
	ImageID   string
	OptionA   string
	OptionB   string
	OptionC   string
	OptionD   string
	AnswerKey string
	Solution  string
	Topic     string
	Grade     int
	QuizLevel int
}

// Strings returns the row's cells in Header order.
func (r Row) Strings() []string {
	return []string{
		r.ExamID, r.Level, r.QuestionType, r.QuestionText, r.ImageID,
		r.OptionA, r.OptionB, r.OptionC, r.OptionD,
		r.AnswerKey, r.Solution, r.Topic,
		strconv.Itoa(r.Grade), strconv.Itoa(r.QuizLevel),
	}
}

// values returns the row's cells in Header order with numeric columns
// kept as numbers.
func (r Row) values() []any {
	s := r.Strings()
	out := make([]any, len(s))
	for i, v := range s {
		out[i] = v
	}
	out[12] = r.Grade
	out[13] = r.QuizLevel
	return out
}

// Options controls row generation.
type Options struct {
	// BatchID prefixes every exam_id. A UUIDv7 is generated when empty.
	BatchID   string
	Level     string
	Topic     string
	Grade     int
	QuizLevel int

	// DefaultChoice is the answer key for multiple-choice questions
	// without a detected answer.
	DefaultChoice string
}

// DefaultOptions returns the options used by the question bank.
func DefaultOptions() Options {
	return Options{
		Level:         "Thông hiểu",
		Grade:         12,
		QuizLevel:     1,
		DefaultChoice: "A",
	}
}

// Rows converts every question of doc, in document order. Image markers
// are substituted from t; markers without an entry are kept as they are.
func Rows(doc *model.ExamDocument, opts Options, t markers.Table) []Row {
	if doc == nil {
		return nil
	}
	batch := opts.BatchID
	if batch == "" {
		batch = uuid.Must(uuid.NewV7()).String()
	}

	rows := make([]Row, 0, len(doc.Questions))
	for i, q := range doc.Questions {
		r := Row{
			ExamID:       "Q" + batch + "_" + strconv.Itoa(i),
			Level:        opts.Level,
			QuestionType: TypeLabel(q.Type),
			QuestionText: markers.Replace(q.Text, t),
			AnswerKey:    AnswerKey(q, opts.DefaultChoice),
			Solution:     markers.Replace(q.Solution, t),
			Topic:        opts.Topic,
			Grade:        opts.Grade,
			QuizLevel:    opts.QuizLevel,
		}
		if q.Type != model.TrueFalse {
			for _, o := range q.Options {
				r.setOption(o.Letter, markers.Replace(o.Text, t))
			}
		} else {
			// statements a-d go in the option columns in order
			for j, o := range q.Options {
				if j < 4 {
					r.setOption(string(rune('A'+j)), markers.Replace(o.Text, t))
				}
			}
		}
		rows = append(rows, r)
	}
	return rows
}

func (r *Row) setOption(letter, text string) {
	switch strings.ToUpper(letter) {
	case "A":
		r.OptionA = text
	case "B":
		r.OptionB = text
	case "C":
		r.OptionC = text
	case "D":
		r.OptionD = text
	}
}

// TypeLabel returns the sheet label for a question type. Unknown types
// are labelled as multiple choice.
func TypeLabel(t model.QuestionType) string {
	switch t {
	case model.TrueFalse:
		return LabelTrueFalse
	case model.ShortAnswer:
		return LabelShortAnswer
	default:
		return LabelMultipleChoice
	}
}

// AnswerKey returns the sheet answer key of q. True/false answers are
// rendered one mark per statement, e.g. "a,c" over four statements becomes
// "Đ-S-Đ-S".
func AnswerKey(q *model.Question, defaultChoice string) string {
	answer := strings.TrimSpace(q.CorrectAnswer)
	switch q.Type {
	case model.TrueFalse:
		return TrueFalseKey(answer, len(q.Options))
	case model.ShortAnswer:
		return answer
	default:
		if answer == "" {
			return defaultChoice
		}
		return answer
	}
}

// TrueFalseKey renders a comma-separated list of true statement letters
// as Đ/S marks. At least four statements are assumed.
func TrueFalseKey(answer string, statements int) string {
	n := max(statements, 4)
	truth := make(map[int]bool)
	for _, part := range strings.Split(answer, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if len(part) == 1 && part[0] >= 'a' && int(part[0]-'a') < n {
			truth[int(part[0]-'a')] = true
		}
	}

	marks := make([]string, n)
	for i := range marks {
		if truth[i] {
			marks[i] = "Đ"
		} else {
			marks[i] = "S"
		}
	}
	return strings.Join(marks, "-")
}
