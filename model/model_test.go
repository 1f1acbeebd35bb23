package model

import "testing"

func TestTypeForPart(t *testing.T) {
	tests := []struct {
		part int
		want QuestionType
	}{
		{PartMultipleChoice, MultipleChoice},
		{PartTrueFalse, TrueFalse},
		{PartShortAnswer, ShortAnswer},
	}
	for _, tt := range tests {
		if got := TypeForPart(tt.part); got != tt.want {
			t.Errorf("TypeForPart(%d) = %q, want %q", tt.part, got, tt.want)
		}
	}
}

func TestExamDocument(t *testing.T) {
	doc := NewExamDocument("Đề")
	if doc.TimeLimit != DefaultTimeLimit || doc.Answers == nil {
		t.Fatalf("NewExamDocument() = %+v", doc)
	}

	q1 := &Question{Number: 101, Part: 1, Options: []Option{{Letter: "A", Text: "x"}}, CorrectAnswer: "A"}
	q2 := &Question{Number: 301, Part: 3}
	doc.AddSection(&Section{Part: 1, Questions: []*Question{q1}})
	doc.AddSection(&Section{Part: 3, Questions: []*Question{q2}})

	if len(doc.Questions) != 2 || doc.Questions[0] != q1 || doc.Questions[1] != q2 {
		t.Errorf("flat question list does not share section pointers")
	}
	if doc.Question(301) != q2 || doc.Question(999) != nil {
		t.Error("Question() lookup failed")
	}
	if doc.Section(3) == nil || doc.Section(2) != nil {
		t.Error("Section() lookup failed")
	}
	if !q1.HasAnswer() || q2.HasAnswer() {
		t.Error("HasAnswer() mismatch")
	}
	if o, ok := q1.Option("A"); !ok || o.Text != "x" {
		t.Errorf("Option(A) = %+v, %v", o, ok)
	}
	if _, ok := q1.Option("B"); ok {
		t.Error("Option(B) should be absent")
	}
}

func TestImageAsset(t *testing.T) {
	if LocalID(3) != "img_3" {
		t.Errorf("LocalID(3) = %q", LocalID(3))
	}

	a := ImageAsset{ID: "img_0", MIMEType: "image/png", Data: []byte("hi"), RelationshipID: "rId4"}
	if got := a.DataURL(); got != "data:image/png;base64,aGk=" {
		t.Errorf("DataURL() = %q", got)
	}
	if !a.Reachable() || !a.IsWebCompatible() {
		t.Error("expected reachable, web-compatible asset")
	}

	emf := ImageAsset{MIMEType: "image/x-emf"}
	if emf.Reachable() || emf.IsWebCompatible() || emf.DataURL() != "" {
		t.Error("unexpected properties for empty EMF asset")
	}

	doc := NewExamDocument("")
	doc.Images = []ImageAsset{a}
	if _, ok := doc.Image("img_0"); !ok {
		t.Error("Image(img_0) not found")
	}
	if _, ok := doc.Image("img_9"); ok {
		t.Error("Image(img_9) should be absent")
	}
}
