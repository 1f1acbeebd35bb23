// Package htmlview renders an exam document as a self-contained HTML
// preview page.
//
// Question text is parsed as HTML fragments so entities produced by the
// importer decode correctly. Math spans are kept verbatim inside
// <span class="math"> for a client-side renderer. Image markers become
// <img> elements: local asset ids are inlined as data URLs and remote ids
// go through Options.RemoteURL. The body is sanitized before it is
// written.
package htmlview

import (
	"bytes"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/tsawler/examdoc/markers"
	"github.com/tsawler/examdoc/model"
	"github.com/tsawler/examdoc/text"
)

// Options controls rendering.
type Options struct {
	// RemoteURL turns a remote image id into a URL; "{id}" is replaced by
	// the id. Remote images render as placeholders when empty.
	RemoteURL string

	// ShowAnswers adds the answer key to each question.
	ShowAnswers bool

	// ShowSolutions adds the solution text to each question.
	ShowSolutions bool
}

var localIDRe = regexp.MustCompile(`^img_\d+$`)

// policy is shared; bluemonday policies are safe for concurrent use once
// built.
var policy = newPolicy()

func newPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowDataURIImages()
	p.AllowElements("section", "header")
	p.AllowAttrs("class").Matching(regexp.MustCompile(`^[a-z][a-z0-9 -]*$`)).Globally()
	p.AllowDataAttributes()
	return p
}

// Render returns the preview page for doc.
func Render(doc *model.ExamDocument, opts Options) (string, error) {
	var buf bytes.Buffer
	if err := Write(&buf, doc, opts); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Write renders the preview page for doc to w.
func Write(w io.Writer, doc *model.ExamDocument, opts Options) error {
	if doc == nil {
		return fmt.Errorf("htmlview: nil document")
	}

	r := renderer{doc: doc, opts: opts}
	body := r.body()

	var raw bytes.Buffer
	for c := body.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&raw, c); err != nil {
			return fmt.Errorf("htmlview: render: %w", err)
		}
	}
	clean := policy.SanitizeBytes(raw.Bytes())

	var page bytes.Buffer
	page.WriteString("<!DOCTYPE html>\n<html lang=\"vi\">\n<head>\n<meta charset=\"utf-8\">\n<title>")
	page.WriteString(html.EscapeString(doc.Title))
	page.WriteString("</title>\n<style>")
	page.WriteString(stylesheet)
	page.WriteString("</style>\n</head>\n<body>\n")
	page.Write(clean)
	page.WriteString("\n</body>\n</html>\n")

	_, err := w.Write(page.Bytes())
	return err
}

const stylesheet = `body{font-family:sans-serif;max-width:50rem;margin:auto}` +
	`.question{margin:1rem 0}.options{list-style:none;padding-left:1rem}` +
	`.answer{color:#080}.solution{color:#555}.missing-image{color:#a00}`

type renderer struct {
	doc  *model.ExamDocument
	opts Options
}

func element(a atom.Atom, class string, children ...*html.Node) *html.Node {
	n := &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String()}
	if class != "" {
		n.Attr = append(n.Attr, html.Attribute{Key: "class", Val: class})
	}
	for _, c := range children {
		n.AppendChild(c)
	}
	return n
}

func textNode(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

func (r *renderer) body() *html.Node {
	body := element(atom.Body, "")

	head := element(atom.Header, "exam-header",
		element(atom.H1, "", textNode(r.doc.Title)),
		element(atom.P, "meta", textNode(fmt.Sprintf("Thời gian: %d phút · %d câu", r.doc.TimeLimit, len(r.doc.Questions)))),
	)
	body.AppendChild(head)

	for _, s := range r.doc.Sections {
		sec := element(atom.Section, "part part-"+strconv.Itoa(s.Part),
			element(atom.H2, "", textNode(s.Name)),
		)
		if s.Description != "" {
			sec.AppendChild(element(atom.P, "description", textNode(s.Description)))
		}
		for _, q := range s.Questions {
			sec.AppendChild(r.question(q))
		}
		body.AppendChild(sec)
	}
	return body
}

func (r *renderer) question(q *model.Question) *html.Node {
	div := element(atom.Div, "question "+strings.ReplaceAll(string(q.Type), "_", "-"))
	div.Attr = append(div.Attr, html.Attribute{Key: "data-number", Val: strconv.Itoa(q.Number)})

	stem := element(atom.Div, "stem", element(atom.Strong, "", textNode(fmt.Sprintf("Câu %d. ", q.SourceNumber))))
	r.appendRich(stem, q.Text)
	div.AppendChild(stem)

	if len(q.Options) > 0 {
		ul := element(atom.Ul, "options")
		for _, o := range q.Options {
			sep := ". "
			if q.Type == model.TrueFalse {
				sep = ") "
			}
			li := element(atom.Li, "option", element(atom.Strong, "", textNode(o.Letter+sep)))
			li.Attr = append(li.Attr, html.Attribute{Key: "data-letter", Val: o.Letter})
			r.appendRich(li, o.Text)
			ul.AppendChild(li)
		}
		div.AppendChild(ul)
	}

	if r.opts.ShowAnswers && q.HasAnswer() {
		div.AppendChild(element(atom.P, "answer", textNode("Đáp án: "+q.CorrectAnswer)))
	}
	if r.opts.ShowSolutions && q.Solution != "" {
		sol := element(atom.Div, "solution", element(atom.Em, "", textNode("Lời giải: ")))
		r.appendRich(sol, q.Solution)
		div.AppendChild(sol)
	}
	return div
}

// appendRich appends escaped question text with markers and math spans
// expanded.
func (r *renderer) appendRich(parent *html.Node, s string) {
	for _, seg := range markers.Split(s) {
		switch seg.Kind {
		case markers.KindText:
			for _, sp := range text.SplitMath(seg.Text) {
				if sp.Math {
					class := "math"
					if sp.Display {
						class = "math display"
					}
					parent.AppendChild(element(atom.Span, class, textNode(sp.Text)))
					continue
				}
				for _, n := range fragment(sp.Text) {
					parent.AppendChild(n)
				}
			}
		case markers.KindImage:
			parent.AppendChild(r.image(seg))
		default:
			parent.AppendChild(missing(seg.Text))
		}
	}
}

func (r *renderer) image(seg markers.Segment) *html.Node {
	var src, alt string
	if localIDRe.MatchString(seg.Key) {
		a, ok := r.doc.Image(seg.Key)
		if !ok || !a.IsWebCompatible() || len(a.Data) == 0 {
			return missing(seg.Text)
		}
		src, alt = a.DataURL(), a.Filename
	} else {
		if r.opts.RemoteURL == "" {
			return missing(seg.Text)
		}
		src, alt = strings.ReplaceAll(r.opts.RemoteURL, "{id}", seg.Key), seg.Key
	}

	img := element(atom.Img, "figure")
	img.Attr = append(img.Attr,
		html.Attribute{Key: "src", Val: src},
		html.Attribute{Key: "alt", Val: alt},
	)
	return img
}

func missing(marker string) *html.Node {
	return element(atom.Span, "missing-image", textNode(marker))
}

var bodyContext = &html.Node{Type: html.ElementNode, DataAtom: atom.Body, Data: "body"}

// fragment parses escaped prose, turning line breaks into <br>.
func fragment(s string) []*html.Node {
	s = strings.ReplaceAll(s, "\n", "<br>")
	nodes, err := html.ParseFragment(strings.NewReader(s), bodyContext)
	if err != nil {
		return []*html.Node{textNode(html.UnescapeString(s))}
	}
	return nodes
}
