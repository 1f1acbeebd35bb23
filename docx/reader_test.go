package docx

import (
	"archive/zip"
	"bytes"
	"errors"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/tsawler/examdoc/markers"
)

const docHeader = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"
  xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships"
  xmlns:m="http://schemas.openxmlformats.org/officeDocument/2006/math"
  xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main"
  xmlns:wp="http://schemas.openxmlformats.org/drawingml/2006/wordprocessingDrawing"
  xmlns:pic="http://schemas.openxmlformats.org/drawingml/2006/picture"
  xmlns:v="urn:schemas-microsoft-com:vml"
  xmlns:o="urn:schemas-microsoft-com:office:office"
  xmlns:mc="http://schemas.openxmlformats.org/markup-compatibility/2006">
  <w:body>`

const docFooter = `</w:body>
</w:document>`

// testPackage describes the parts of a DOCX built in memory.
type testPackage struct {
	body    string
	rels    string
	media   map[string][]byte
	noDoc   bool
	rawDoc  string
	core    string
	ordered []string
}

func imageRel(id, target string) string {
	return `<Relationship Id="` + id + `" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/image" Target="` + target + `"/>`
}

func relsXML(rels ...string) string {
	return `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` + strings.Join(rels, "") + `</Relationships>`
}

// buildDOCX creates a DOCX package in memory.
func buildDOCX(t *testing.T, p testPackage) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	write := func(name string, data []byte) {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("creating %s: %v", name, err)
		}
		if _, err := w.Write(data); err != nil {
			t.Fatalf("writing %s: %v", name, err)
		}
	}

	write("[Content_Types].xml", []byte(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
  <Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
  <Default Extension="xml" ContentType="application/xml"/>
</Types>`))

	if !p.noDoc {
		doc := p.rawDoc
		if doc == "" {
			doc = docHeader + p.body + docFooter
		}
		write("word/document.xml", []byte(doc))
	}
	if p.rels != "" {
		write("word/_rels/document.xml.rels", []byte(p.rels))
	}
	if p.core != "" {
		write("docProps/core.xml", []byte(p.core))
	}

	names := p.ordered
	if names == nil {
		for name := range p.media {
			names = append(names, name)
		}
	}
	for _, name := range names {
		write("word/media/"+name, p.media[name])
	}

	if err := zw.Close(); err != nil {
		t.Fatalf("closing zip: %v", err)
	}
	return buf.Bytes()
}

func openTest(t *testing.T, p testPackage) *Reader {
	t.Helper()
	r, err := OpenBytes(buildDOCX(t, p))
	if err != nil {
		t.Fatalf("OpenBytes() error = %v", err)
	}
	return r
}

func drawing(rid string) string {
	return `<w:drawing><wp:inline><a:graphic><a:graphicData><pic:pic><pic:blipFill><a:blip r:embed="` + rid + `"/></pic:blipFill></pic:pic></a:graphicData></a:graphic></wp:inline></w:drawing>`
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))); err != nil {
		t.Fatalf("encoding png: %v", err)
	}
	return buf.Bytes()
}

func TestOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.docx")
	data := buildDOCX(t, testPackage{body: `<w:p><w:r><w:t>Hello World</w:t></w:r></w:p>`})
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	r, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer r.Close()

	if got := len(r.Paragraphs()); got != 1 {
		t.Fatalf("expected 1 paragraph, got %d", got)
	}
	if err := r.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if err := r.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
}

func TestOpen_NotFound(t *testing.T) {
	if _, err := Open("/nonexistent/file.docx"); err == nil {
		t.Error("Open() should return error for nonexistent file")
	}
}

func TestOpenBytes_InvalidZip(t *testing.T) {
	if _, err := OpenBytes([]byte("not a zip file")); err == nil {
		t.Error("OpenBytes() should return error for invalid ZIP")
	}
}

func TestOpenBytes_MissingDocument(t *testing.T) {
	_, err := OpenBytes(buildDOCX(t, testPackage{noDoc: true}))
	if !errors.Is(err, ErrMissingDocument) {
		t.Errorf("expected ErrMissingDocument, got %v", err)
	}
}

func TestParagraphs_Text(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		expected []string
	}{
		{
			name:     "simple paragraph",
			body:     `<w:p><w:r><w:t>Hello World</w:t></w:r></w:p>`,
			expected: []string{"Hello World"},
		},
		{
			name: "multiple runs",
			body: `<w:p>
  <w:r><w:t xml:space="preserve">Hello </w:t></w:r>
  <w:r><w:t>World</w:t></w:r>
</w:p>`,
			expected: []string{"Hello World"},
		},
		{
			name:     "line breaks",
			body:     `<w:p><w:r><w:t>one</w:t><w:br/><w:t>two</w:t></w:r></w:p>`,
			expected: []string{"one\ntwo"},
		},
		{
			name:     "tabs collapse",
			body:     `<w:p><w:r><w:t>A.</w:t><w:tab/><w:t>3</w:t></w:r></w:p>`,
			expected: []string{"A. 3"},
		},
		{
			name:     "empty paragraphs dropped",
			body:     `<w:p/><w:p><w:r><w:t>   </w:t></w:r></w:p><w:p><w:r><w:t>kept</w:t></w:r></w:p>`,
			expected: []string{"kept"},
		},
		{
			name:     "equation text",
			body:     `<w:p><w:r><w:t xml:space="preserve">x = </w:t></w:r><m:oMath><m:r><m:t>2</m:t></m:r></m:oMath></w:p>`,
			expected: []string{"x = 2"},
		},
		{
			name:     "field instruction",
			body:     `<w:p><w:r><w:instrText>EQ</w:instrText></w:r></w:p>`,
			expected: []string{"EQ"},
		},
		{
			name:     "hyperlink runs",
			body:     `<w:p><w:hyperlink><w:r><w:t>link</w:t></w:r></w:hyperlink></w:p>`,
			expected: []string{"link"},
		},
		{
			name:     "math delimiters",
			body:     `<w:p><w:r><w:t>\(x^2\)</w:t></w:r></w:p>`,
			expected: []string{"$x^2$"},
		},
		{
			name: "table cells are paragraphs",
			body: `<w:tbl><w:tr><w:tc><w:p><w:r><w:t>cell</w:t></w:r></w:p></w:tc></w:tr></w:tbl>`,
			expected: []string{"cell"},
		},
		{
			name:     "fallback skipped",
			body:     `<w:p><w:r><mc:AlternateContent><mc:Choice><w:t>choice</w:t></mc:Choice><mc:Fallback><w:t>fallback</w:t></mc:Fallback></mc:AlternateContent></w:r></w:p>`,
			expected: []string{"choice"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := openTest(t, testPackage{body: tt.body})
			paras := r.Paragraphs()
			if len(paras) != len(tt.expected) {
				t.Fatalf("expected %d paragraphs, got %d: %+v", len(tt.expected), len(paras), paras)
			}
			for i, want := range tt.expected {
				if paras[i].Text != want {
					t.Errorf("paragraph %d = %q, want %q", i, paras[i].Text, want)
				}
			}
		})
	}
}

func TestParagraphs_Underline(t *testing.T) {
	body := `<w:p>
  <w:r><w:rPr><w:u w:val="single"/></w:rPr><w:t>A.</w:t></w:r>
  <w:r><w:t xml:space="preserve"> 3</w:t></w:r>
</w:p>
<w:p><w:r><w:rPr><w:u w:val="none"/></w:rPr><w:t>B. 4</w:t></w:r></w:p>
<w:p><w:r><w:rPr><w:u/></w:rPr><w:t xml:space="preserve">   </w:t></w:r><w:r><w:t>C. 5</w:t></w:r></w:p>
<w:p><w:pPr><w:rPr><w:u w:val="single"/></w:rPr></w:pPr><w:r><w:t>D. 6</w:t></w:r></w:p>`

	paras := openTest(t, testPackage{body: body}).Paragraphs()
	if len(paras) != 4 {
		t.Fatalf("expected 4 paragraphs, got %d", len(paras))
	}

	if !paras[0].HasUnderline {
		t.Error("paragraph A should be underlined")
	}
	if len(paras[0].UnderlinedSegments) != 1 || paras[0].UnderlinedSegments[0] != "A." {
		t.Errorf("segments = %v, want [A.]", paras[0].UnderlinedSegments)
	}
	if paras[1].HasUnderline {
		t.Error("w:val=none should not count as underline")
	}
	if paras[2].HasUnderline {
		t.Error("underlined whitespace should not count")
	}
	if paras[3].HasUnderline {
		t.Error("paragraph mark properties should not count")
	}
}

func TestParagraphs_BracketUnderline(t *testing.T) {
	body := `<w:p><w:r><w:t>[B]{.underline}. 4</w:t></w:r></w:p>`
	paras := openTest(t, testPackage{body: body}).Paragraphs()
	if len(paras) != 1 {
		t.Fatalf("expected 1 paragraph, got %d", len(paras))
	}
	p := paras[0]
	if p.Text != "B. 4" {
		t.Errorf("text = %q, want %q", p.Text, "B. 4")
	}
	if !p.HasUnderline || len(p.UnderlinedSegments) != 1 || p.UnderlinedSegments[0] != "B" {
		t.Errorf("expected underline segment B, got %v (%v)", p.UnderlinedSegments, p.HasUnderline)
	}
}

func TestImages_Markers(t *testing.T) {
	body := `<w:p><w:r><w:t>Look</w:t></w:r><w:r>` + drawing("rId5") + drawing("rId5") + `</w:r><w:r><w:t>here</w:t></w:r></w:p>
<w:p><w:r><w:pict><v:shape><v:imagedata r:id="rId6" o:title=""/></v:shape></w:pict></w:r><w:r><w:t>legacy</w:t></w:r></w:p>
<w:p><w:r><w:t>missing</w:t>` + drawing("rIdX") + `</w:r></w:p>`

	r := openTest(t, testPackage{
		body: body,
		rels: relsXML(imageRel("rId5", "media/image1.png"), imageRel("rId6", "media/image2.jpeg")),
		media: map[string][]byte{
			"image1.png":  pngBytes(t, 4, 3),
			"image2.jpeg": []byte("not really a jpeg"),
		},
		ordered: []string{"image1.png", "image2.jpeg"},
	})

	paras := r.Paragraphs()
	if len(paras) != 3 {
		t.Fatalf("expected 3 paragraphs, got %d", len(paras))
	}

	if paras[0].Text != "Look [IMAGE:img_0] here" {
		t.Errorf("paragraph 0 = %q", paras[0].Text)
	}
	if strings.Count(paras[0].Text, "[IMAGE:img_0]") != 1 {
		t.Error("duplicate reference within a run should emit one marker")
	}
	if paras[1].Text != "[IMAGE:img_1] legacy" {
		t.Errorf("paragraph 1 = %q", paras[1].Text)
	}
	if paras[2].Text != "missing [IMAGE_RID:rIdX]" {
		t.Errorf("paragraph 2 = %q", paras[2].Text)
	}

	// The markers package must read back exactly what the walker wrote.
	wantKeys := []struct {
		kind markers.Kind
		key  string
	}{
		{markers.KindImage, "img_0"},
		{markers.KindImage, "img_1"},
		{markers.KindUnresolved, "rIdX"},
	}
	for i, want := range wantKeys {
		var got []markers.Segment
		for _, seg := range markers.Split(paras[i].Text) {
			if seg.Kind != markers.KindText {
				got = append(got, seg)
			}
		}
		if len(got) != 1 || got[0].Kind != want.kind || got[0].Key != want.key {
			t.Errorf("paragraph %d markers = %+v, want %v %q", i, got, want.kind, want.key)
		}
	}
	if refs := markers.References(paras[0].Text, paras[1].Text); !reflect.DeepEqual(refs, []string{"img_0", "img_1"}) {
		t.Errorf("References() = %v", refs)
	}

	images := r.Images()
	if len(images) != 2 {
		t.Fatalf("expected 2 images, got %d", len(images))
	}
	if images[0].ID != "img_0" || images[0].RelationshipID != "rId5" || images[0].MIMEType != "image/png" {
		t.Errorf("unexpected first image: %+v", images[0])
	}
	if images[0].Width != 4 || images[0].Height != 3 {
		t.Errorf("dimensions = %dx%d, want 4x3", images[0].Width, images[0].Height)
	}
	if images[1].MIMEType != "image/jpeg" || images[1].Width != 0 {
		t.Errorf("unexpected second image: %+v", images[1])
	}

	var unresolved int
	for _, iss := range r.Issues() {
		if iss.Kind == IssueUnresolvedImage {
			unresolved++
		}
	}
	if unresolved != 1 {
		t.Errorf("expected 1 unresolved image issue, got %d", unresolved)
	}
}

func TestImages_SameFileTwoRelationships(t *testing.T) {
	body := `<w:p><w:r>` + drawing("rId7") + `</w:r><w:r>` + drawing("rId8") + `</w:r></w:p>`
	r := openTest(t, testPackage{
		body:  body,
		rels:  relsXML(imageRel("rId7", "media/image1.png"), imageRel("rId8", "media/image1.png")),
		media: map[string][]byte{"image1.png": pngBytes(t, 1, 1)},
	})

	if got := r.Paragraphs()[0].Text; got != "[IMAGE:img_0] [IMAGE:img_0]" {
		t.Errorf("text = %q", got)
	}
	if id, ok := r.LocalID("rId8"); !ok || id != "img_0" {
		t.Errorf("LocalID(rId8) = %q, %v", id, ok)
	}
	if r.Images()[0].RelationshipID != "rId7" {
		t.Errorf("relationship id = %q, want first in table order", r.Images()[0].RelationshipID)
	}
}

func TestImages_MalformedRelationships(t *testing.T) {
	body := `<w:p><w:r><w:t>fig</w:t>` + drawing("rId5") + `</w:r></w:p>`
	r := openTest(t, testPackage{
		body:  body,
		rels:  `<Relationships><Relationship Id="rId5"`,
		media: map[string][]byte{"image1.png": pngBytes(t, 1, 1)},
	})

	if got := r.Paragraphs()[0].Text; got != "fig [IMAGE_RID:rId5]" {
		t.Errorf("text = %q", got)
	}
	images := r.Images()
	if len(images) != 1 || images[0].RelationshipID != "" {
		t.Fatalf("expected one unreachable image, got %+v", images)
	}

	var kinds []IssueKind
	for _, iss := range r.Issues() {
		kinds = append(kinds, iss.Kind)
	}
	want := map[IssueKind]bool{IssueRelationships: false, IssueUnreachableImage: false, IssueUnresolvedImage: false}
	for _, k := range kinds {
		want[k] = true
	}
	for k, seen := range want {
		if !seen {
			t.Errorf("expected issue %s, got %v", k, kinds)
		}
	}
}

func TestImages_UnknownExtension(t *testing.T) {
	r := openTest(t, testPackage{
		body:  `<w:p><w:r><w:t>x</w:t></w:r></w:p>`,
		rels:  relsXML(imageRel("rId1", "media/image1.xyz")),
		media: map[string][]byte{"image1.xyz": []byte{1, 2, 3}},
	})
	if mt := r.Images()[0].MIMEType; mt != "image/png" {
		t.Errorf("MIME type = %q, want image/png", mt)
	}
	found := false
	for _, iss := range r.Issues() {
		if iss.Kind == IssueImageType {
			found = true
		}
	}
	if !found {
		t.Error("expected an image type issue")
	}
}

func TestMIMEType(t *testing.T) {
	tests := []struct {
		name  string
		want  string
		known bool
	}{
		{"a.png", "image/png", true},
		{"a.JPG", "image/jpeg", true},
		{"a.jpeg", "image/jpeg", true},
		{"a.gif", "image/gif", true},
		{"a.svg", "image/svg+xml", true},
		{"a.emf", "image/x-emf", true},
		{"a.wmf", "image/x-wmf", true},
		{"a.dat", "image/png", false},
		{"noext", "image/png", false},
	}
	for _, tt := range tests {
		got, known := MIMEType(tt.name)
		if got != tt.want || known != tt.known {
			t.Errorf("MIMEType(%q) = %q, %v; want %q, %v", tt.name, got, known, tt.want, tt.known)
		}
	}
}

func TestTextBoxParagraphs(t *testing.T) {
	box := func(lines ...string) string {
		var b strings.Builder
		b.WriteString(`<w:txbxContent>`)
		for _, l := range lines {
			b.WriteString(`<w:p><w:r><w:t>` + l + `</w:t></w:r></w:p>`)
		}
		b.WriteString(`</w:txbxContent>`)
		return b.String()
	}

	tests := []struct {
		name     string
		body     string
		want     string
		segments []string
	}{
		{
			name: "box in its own run",
			body: `<w:p><w:r><w:t>outer</w:t></w:r><w:r>` + box("inner") + `</w:r></w:p>`,
			want: "outer\ninner",
		},
		{
			name: "box between text of the same run",
			body: `<w:p><w:r><w:t>before</w:t>` + box("inner") + `<w:t>after</w:t></w:r></w:p>`,
			want: "before\ninner\nafter",
		},
		{
			name: "several box lines",
			body: `<w:p><w:r><w:t>Cho bảng:</w:t>` + box("x = 1", "y = 2") + `</w:r></w:p>`,
			want: "Cho bảng:\nx = 1\ny = 2",
		},
		{
			name:     "underlined run split by a box",
			body:     `<w:p><w:r><w:rPr><w:u w:val="single"/></w:rPr><w:t>B</w:t>` + box("note") + `<w:t>.</w:t></w:r></w:p>`,
			want:     "B\nnote\n.",
			segments: []string{"B", "."},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			paras := openTest(t, testPackage{body: tt.body}).Paragraphs()
			if len(paras) != 1 {
				t.Fatalf("expected 1 paragraph, got %d", len(paras))
			}
			if paras[0].Text != tt.want {
				t.Errorf("text = %q, want %q", paras[0].Text, tt.want)
			}
			if tt.segments != nil && !reflect.DeepEqual(paras[0].UnderlinedSegments, tt.segments) {
				t.Errorf("segments = %q, want %q", paras[0].UnderlinedSegments, tt.segments)
			}
		})
	}
}

func TestMalformedDocumentKeepsParagraphs(t *testing.T) {
	raw := docHeader + `<w:p><w:r><w:t>first</w:t></w:r></w:p><w:p><w:r><w:t>second</w:r>`
	r := openTest(t, testPackage{rawDoc: raw})
	paras := r.Paragraphs()
	if len(paras) == 0 || paras[0].Text != "first" {
		t.Fatalf("expected first paragraph to survive, got %+v", paras)
	}
	found := false
	for _, iss := range r.Issues() {
		if iss.Kind == IssueMalformedDocument {
			found = true
		}
	}
	if !found {
		t.Error("expected malformed document issue")
	}
}

func TestTitle(t *testing.T) {
	core := `<?xml version="1.0" encoding="UTF-8"?>
<cp:coreProperties xmlns:cp="http://schemas.openxmlformats.org/package/2006/metadata/core-properties" xmlns:dc="http://purl.org/dc/elements/1.1/"><dc:title>Đề thi thử</dc:title></cp:coreProperties>`
	r := openTest(t, testPackage{body: `<w:p><w:r><w:t>x</w:t></w:r></w:p>`, core: core})
	if r.Title() != "Đề thi thử" {
		t.Errorf("Title() = %q", r.Title())
	}
}
