package model

// DefaultTimeLimit is the exam duration in minutes used when none is given.
const DefaultTimeLimit = 90

// Section groups the questions of one exam part.
type Section struct {
	Name        string
	Description string
	Type        QuestionType
	Part        int
	Questions   []*Question
}

// ExamDocument is the root aggregate of a parse.
type ExamDocument struct {
	Title     string
	TimeLimit int
	Sections  []*Section

	// Questions holds every question in insertion order.
	Questions []*Question

	// Answers maps question number to correct answer for the parts whose
	// correctness is a scalar value.
	Answers map[int]string

	Images []ImageAsset
}

// NewExamDocument creates an empty document.
func NewExamDocument(title string) *ExamDocument {
	return &ExamDocument{
		Title:     title,
		TimeLimit: DefaultTimeLimit,
		Answers:   make(map[int]string),
	}
}

// AddSection appends a section and its questions to the flat question list.
func (d *ExamDocument) AddSection(s *Section) {
	d.Sections = append(d.Sections, s)
	d.Questions = append(d.Questions, s.Questions...)
}

// Question returns the question with the given disambiguated number.
func (d *ExamDocument) Question(number int) *Question {
	for _, q := range d.Questions {
		if q.Number == number {
			return q
		}
	}
	return nil
}

// Section returns the section for a part, or nil if it has no questions.
func (d *ExamDocument) Section(part int) *Section {
	for _, s := range d.Sections {
		if s.Part == part {
			return s
		}
	}
	return nil
}

// Image returns the asset with the given local id.
func (d *ExamDocument) Image(id string) (ImageAsset, bool) {
	for _, img := range d.Images {
		if img.ID == id {
			return img, true
		}
	}
	return ImageAsset{}, false
}
