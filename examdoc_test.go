package examdoc

import (
	"archive/zip"
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/tsawler/examdoc/internal/docxtest"
	"github.com/tsawler/examdoc/model"
)

// fullExam builds a three-part exam with an image, underline answers and
// HTML-sensitive text.
func fullExam(t *testing.T) []byte {
	t.Helper()
	p := docxtest.Package{
		Body: strings.Join([]string{
			docxtest.P(docxtest.Run("ĐỀ THI THỬ TỐT NGHIỆP")),
			docxtest.P(docxtest.Run("PHẦN I. TRẮC NGHIỆM NHIỀU LỰA CHỌN")),
			docxtest.P(docxtest.Run("Câu 1: Tính 2+2."), docxtest.Image("rId5")),
			docxtest.P(docxtest.Run("A. 3")),
			docxtest.P(docxtest.Run("B. 4")),
			docxtest.P(docxtest.Run("C. 5")),
			docxtest.P(docxtest.Run("D. 6")),
			docxtest.P(docxtest.Run("Lời giải")),
			docxtest.P(docxtest.Run("Chọn B")),
			docxtest.P(docxtest.Run("Câu 2: Khi nào x < 1?")),
			docxtest.P(docxtest.U("A. x = 0")),
			docxtest.P(docxtest.Run("B. x = 2")),
			docxtest.P(docxtest.Run("PHẦN II. ĐÚNG SAI")),
			docxtest.P(docxtest.Run("Câu 1: Cho hàm số $y=x^2$.")),
			docxtest.P(docxtest.U("a) Hàm số chẵn.")),
			docxtest.P(docxtest.Run("b) Hàm số lẻ.")),
			docxtest.P(docxtest.U("c) Đồ thị qua gốc tọa độ.")),
			docxtest.P(docxtest.Run("d) Hàm số đồng biến trên R.")),
			docxtest.P(docxtest.Run("PHẦN III. TRẢ LỜI NGẮN")),
			docxtest.P(docxtest.Run("Câu 1: Giá trị của x?")),
			docxtest.P(docxtest.Run("Đáp án: 5")),
		}, ""),
		Images: map[string]string{"rId5": "image1.png"},
		Media:  map[string][]byte{"image1.png": docxtest.PNG(t, 4, 3)},
		Title:  "Đề thi thử",
	}
	return docxtest.Build(t, p)
}

func TestParse_FullExam(t *testing.T) {
	doc, warnings, err := FromBytes("de-thi.docx", fullExam(t)).Parse()
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(warnings) != 0 {
		t.Errorf("unexpected warnings: %s", FormatWarnings(warnings))
	}

	if doc.Title != "Đề thi thử" {
		t.Errorf("Title = %q, want core property title", doc.Title)
	}
	if doc.TimeLimit != model.DefaultTimeLimit {
		t.Errorf("TimeLimit = %d, want %d", doc.TimeLimit, model.DefaultTimeLimit)
	}
	if len(doc.Sections) != 3 {
		t.Fatalf("expected 3 sections, got %d", len(doc.Sections))
	}

	var numbers []int
	for _, q := range doc.Questions {
		numbers = append(numbers, q.Number)
	}
	if want := []int{101, 102, 201, 301}; !reflect.DeepEqual(numbers, want) {
		t.Fatalf("question numbers = %v, want %v", numbers, want)
	}

	q1 := doc.Question(101)
	if q1.CorrectAnswer != "B" {
		t.Errorf("101 answer = %q, want B", q1.CorrectAnswer)
	}
	if len(q1.Options) != 4 {
		t.Errorf("101 has %d options, want 4", len(q1.Options))
	}
	if !strings.Contains(q1.Text, "[IMAGE:img_0]") {
		t.Errorf("101 text %q lacks image marker", q1.Text)
	}
	if !reflect.DeepEqual(q1.Images, []string{"img_0"}) {
		t.Errorf("101 images = %v", q1.Images)
	}
	if q1.Solution != "Chọn B" {
		t.Errorf("101 solution = %q", q1.Solution)
	}

	q2 := doc.Question(102)
	if q2.CorrectAnswer != "A" {
		t.Errorf("102 answer = %q, want A from underline", q2.CorrectAnswer)
	}
	if !strings.Contains(q2.Text, "x &lt; 1") {
		t.Errorf("102 text %q not escaped", q2.Text)
	}

	tf := doc.Question(201)
	if tf.Type != model.TrueFalse || tf.CorrectAnswer != "a,c" {
		t.Errorf("201 = %s %q, want true_false a,c", tf.Type, tf.CorrectAnswer)
	}
	if !strings.Contains(tf.Text, "$y=x^2$") {
		t.Errorf("201 text %q lost math", tf.Text)
	}

	sa := doc.Question(301)
	if sa.CorrectAnswer != "5" || len(sa.Options) != 0 {
		t.Errorf("301 = %q with %d options", sa.CorrectAnswer, len(sa.Options))
	}

	wantAnswers := map[int]string{101: "B", 102: "A", 301: "5"}
	if !reflect.DeepEqual(doc.Answers, wantAnswers) {
		t.Errorf("Answers = %v, want %v", doc.Answers, wantAnswers)
	}

	if len(doc.Images) != 1 || doc.Images[0].Width != 4 || doc.Images[0].Height != 3 {
		t.Errorf("unexpected images: %+v", doc.Images)
	}
}

func TestParse_IncludeTrueFalseAnswers(t *testing.T) {
	doc, _, err := FromBytes("", fullExam(t)).IncludeTrueFalseAnswers().Parse()
	if err != nil {
		t.Fatal(err)
	}
	if doc.Answers[201] != "a,c" {
		t.Errorf("Answers[201] = %q, want a,c", doc.Answers[201])
	}
}

func TestParse_Deterministic(t *testing.T) {
	data := fullExam(t)
	a, _, err := FromBytes("x.docx", data).Parse()
	if err != nil {
		t.Fatal(err)
	}
	b, _, err := FromBytes("x.docx", data).Parse()
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Error("parsing the same input twice gave different documents")
	}
}

func TestParse_MultipleChoiceScenario(t *testing.T) {
	data := docxtest.Build(t, docxtest.Doc(
		"Question 1: Compute 2+2.", "A. 3", "B. 4", "C. 5", "D. 6", "Choose B",
	))

	doc, warnings, err := FromBytes("", data).Parse()
	if err != nil {
		t.Fatal(err)
	}
	if len(doc.Questions) != 1 {
		t.Fatalf("expected 1 question, got %d", len(doc.Questions))
	}
	q := doc.Questions[0]
	if q.Number != 101 || len(q.Options) != 4 || q.CorrectAnswer != "B" {
		t.Errorf("got number %d, %d options, answer %q", q.Number, len(q.Options), q.CorrectAnswer)
	}

	found := false
	for _, w := range warnings {
		if w.Type == WarningNoSections {
			found = true
		}
	}
	if !found {
		t.Error("expected a no-sections warning for a document without headings")
	}
}

func TestParse_MissingRelationship(t *testing.T) {
	data := docxtest.Build(t, docxtest.Package{
		Body: docxtest.P(docxtest.Run("Question 1: Look at the figure.")) +
			docxtest.P(docxtest.Run("See"), docxtest.Image("rIdX")) +
			docxtest.P(docxtest.Run("A. yes")) +
			docxtest.P(docxtest.Run("B. no")),
	})

	doc, warnings, err := FromBytes("", data).Parse()
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(doc.Questions) != 1 {
		t.Fatalf("expected 1 question, got %d", len(doc.Questions))
	}
	if !strings.Contains(doc.Questions[0].Text, "[IMAGE_RID:rIdX]") {
		t.Errorf("text %q lacks fallback marker", doc.Questions[0].Text)
	}

	found := false
	for _, w := range warnings {
		if w.Type == WarningUnresolvedImage {
			found = true
		}
	}
	if !found {
		t.Errorf("expected unresolved image warning, got %s", FormatWarnings(warnings))
	}
}

func TestParse_Errors(t *testing.T) {
	var noBody bytes.Buffer
	zw := zip.NewWriter(&noBody)
	w, _ := zw.Create("word/styles.xml")
	w.Write([]byte("<styles/>"))
	zw.Close()

	// A Word package whose word/ directory was stripped entirely.
	var noWordDir bytes.Buffer
	zw = zip.NewWriter(&noWordDir)
	w, _ = zw.Create("[Content_Types].xml")
	w.Write([]byte(`<Types><Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/></Types>`))
	zw.Close()

	tests := []struct {
		name string
		p    *Parser
		want error
	}{
		{"pdf", FromBytes("a.pdf", []byte("%PDF-1.4\n")), ErrUnsupportedFormat},
		{"legacy doc", FromBytes("a.doc", []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}), ErrUnsupportedFormat},
		{"garbage", FromBytes("a.docx", []byte("not a document")), ErrUnsupportedFormat},
		{"missing body", FromBytes("a.docx", noBody.Bytes()), ErrMissingDocumentBody},
		{"missing word directory", FromBytes("a.docx", noWordDir.Bytes()), ErrMissingDocumentBody},
		{"no input", Open(""), ErrNoInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := tt.p.Parse()
			if !errors.Is(err, tt.want) {
				t.Errorf("Parse() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestOpen_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Đề số 7.docx")
	data := docxtest.Build(t, docxtest.Doc("Câu 1: Một cộng một?", "Đáp án: 2"))
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	doc, _, err := Open(path).TimeLimit(45).Parse()
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if doc.Title != "Đề số 7" {
		t.Errorf("Title = %q, want file name without extension", doc.Title)
	}
	if doc.TimeLimit != 45 {
		t.Errorf("TimeLimit = %d, want 45", doc.TimeLimit)
	}

	if _, _, err := Open(filepath.Join(t.TempDir(), "missing.docx")).Parse(); err == nil {
		t.Error("expected error for non-existent file")
	}
}

func TestParser_Immutable(t *testing.T) {
	base := FromBytes("base.docx", docxtest.Build(t, docxtest.Doc("Câu 1: x?", "A. 1", "B. 2")))
	titled := base.Title("Custom")

	if base.options.title != "" {
		t.Error("Title() modified the original parser")
	}

	doc := MustParse(titled.Parse())
	if doc.Title != "Custom" {
		t.Errorf("Title = %q, want Custom", doc.Title)
	}
	doc = MustParse(base.Parse())
	if doc.Title != "base" {
		t.Errorf("Title = %q, want base", doc.Title)
	}
}

func TestParser_InvalidTimeLimit(t *testing.T) {
	_, _, err := FromBytes("", nil).TimeLimit(0).Parse()
	if err == nil || !strings.Contains(err.Error(), "time limit") {
		t.Errorf("expected time limit error, got %v", err)
	}
}

func TestParagraphs(t *testing.T) {
	data := docxtest.Build(t, docxtest.Doc("Câu 1:  a   b", "", "A. x"))
	paras := Must(FromBytes("", data).Paragraphs())
	if len(paras) != 2 {
		t.Fatalf("expected 2 paragraphs, got %d", len(paras))
	}
	if paras[0].Text != "Câu 1: a b" {
		t.Errorf("paragraph text = %q", paras[0].Text)
	}
}

func TestMustParse_Panics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	MustParse(FromBytes("", []byte("x")).Parse())
}

func TestFormatWarnings(t *testing.T) {
	if got := FormatWarnings(nil); got != "" {
		t.Errorf("FormatWarnings(nil) = %q", got)
	}
	got := FormatWarnings([]Warning{
		{Type: WarningNoSections, Message: "a"},
		{Type: WarningValidation, Message: "b"},
	})
	if got != "[no sections] a; [validation] b" {
		t.Errorf("FormatWarnings() = %q", got)
	}
}
