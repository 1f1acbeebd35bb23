// Package docxtest builds small DOCX packages in memory for tests.
package docxtest

import (
	"archive/zip"
	"bytes"
	"html"
	"image"
	"image/png"
	"maps"
	"slices"
	"strings"
	"testing"
)

const header = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"
  xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships"
  xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main"
  xmlns:wp="http://schemas.openxmlformats.org/drawingml/2006/wordprocessingDrawing"
  xmlns:pic="http://schemas.openxmlformats.org/drawingml/2006/picture">
  <w:body>`

const footer = `</w:body>
</w:document>`

// Package describes the parts of a document to build.
type Package struct {
	// Body is the inner XML of w:body; see P, U and Image.
	Body string
	// Images maps relationship ids to media file names under word/media/.
	Images map[string]string
	// Media holds media payloads by file name.
	Media map[string][]byte
	// Title, when set, is written to docProps/core.xml.
	Title string
}

// Doc returns a Package whose body holds one plain paragraph per line.
func Doc(lines ...string) Package {
	var b strings.Builder
	for _, l := range lines {
		b.WriteString(P(Run(l)))
	}
	return Package{Body: b.String()}
}

// P wraps runs in a paragraph.
func P(runs ...string) string {
	return "<w:p>" + strings.Join(runs, "") + "</w:p>"
}

// Run returns a plain text run.
func Run(s string) string {
	return `<w:r><w:t xml:space="preserve">` + html.EscapeString(s) + `</w:t></w:r>`
}

// U returns an underlined text run.
func U(s string) string {
	return `<w:r><w:rPr><w:u w:val="single"/></w:rPr><w:t xml:space="preserve">` + html.EscapeString(s) + `</w:t></w:r>`
}

// Image returns a run holding an inline picture for rid.
func Image(rid string) string {
	return `<w:r><w:drawing><wp:inline><a:graphic><a:graphicData><pic:pic><pic:blipFill><a:blip r:embed="` +
		rid + `"/></pic:blipFill></pic:pic></a:graphicData></a:graphic></wp:inline></w:drawing></w:r>`
}

// PNG returns an encoded blank PNG of the given size.
func PNG(tb testing.TB, w, h int) []byte {
	tb.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))); err != nil {
		tb.Fatalf("encoding png: %v", err)
	}
	return buf.Bytes()
}

// Build writes the package as DOCX bytes. Media files are written in
// lexical order so asset ids are stable.
func Build(tb testing.TB, p Package) []byte {
	tb.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	write := func(name, data string) {
		w, err := zw.Create(name)
		if err != nil {
			tb.Fatalf("creating %s: %v", name, err)
		}
		if _, err := w.Write([]byte(data)); err != nil {
			tb.Fatalf("writing %s: %v", name, err)
		}
	}

	write("[Content_Types].xml", `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
  <Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
  <Default Extension="xml" ContentType="application/xml"/>
  <Default Extension="png" ContentType="image/png"/>
</Types>`)
	write("word/document.xml", header+p.Body+footer)

	var rels strings.Builder
	rels.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">`)
	for _, rid := range sortedKeys(p.Images) {
		rels.WriteString(`<Relationship Id="` + rid +
			`" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/image" Target="media/` +
			p.Images[rid] + `"/>`)
	}
	rels.WriteString(`</Relationships>`)
	write("word/_rels/document.xml.rels", rels.String())

	if p.Title != "" {
		write("docProps/core.xml", `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<cp:coreProperties xmlns:cp="http://schemas.openxmlformats.org/package/2006/metadata/core-properties" xmlns:dc="http://purl.org/dc/elements/1.1/"><dc:title>`+
			html.EscapeString(p.Title)+`</dc:title></cp:coreProperties>`)
	}

	for _, name := range sortedKeys(p.Media) {
		write("word/media/"+name, string(p.Media[name]))
	}

	if err := zw.Close(); err != nil {
		tb.Fatalf("closing zip: %v", err)
	}
	return buf.Bytes()
}

func sortedKeys[V any](m map[string]V) []string {
	return slices.Sorted(maps.Keys(m))
}
