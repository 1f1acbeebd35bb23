package docx

import (
	"encoding/xml"
	"io"
	"regexp"
	"strings"

	"github.com/tsawler/examdoc/markers"
	"github.com/tsawler/examdoc/model"
	"github.com/tsawler/examdoc/text"
)

// bracketUnderlineRe matches the "[B]{.underline}" convention left behind by
// markdown round trips of underlined option letters.
var bracketUnderlineRe = regexp.MustCompile(`\[([A-Da-d])\]\{\.underline\}`)

// runState accumulates one w:r or m:r element.
type runState struct {
	depth      int
	text       strings.Builder
	rids       []string
	seen       map[string]bool
	underlined bool
}

func (rs *runState) addRID(rid string) {
	if rid == "" || rs.seen[rid] {
		return
	}
	if rs.seen == nil {
		rs.seen = make(map[string]bool)
	}
	rs.seen[rid] = true
	rs.rids = append(rs.rids, rid)
}

// paraState accumulates one top-level w:p element.
type paraState struct {
	text         strings.Builder
	hasUnderline bool
	segments     []string
}

// lineBreak ends the current line unless it is empty or already ended.
func (ps *paraState) lineBreak() {
	s := ps.text.String()
	if s != "" && !strings.HasSuffix(s, "\n") {
		ps.text.WriteByte('\n')
	}
}

// walker streams word/document.xml and reconstructs paragraphs.
type walker struct {
	r        *Reader
	depth    int
	pDepth   int
	rPrDepth int
	para     *paraState
	runs     []*runState
	out      []model.Paragraph
}

func newWalker(r *Reader) *walker {
	return &walker{r: r}
}

func (w *walker) walk(rd io.Reader) ([]model.Paragraph, error) {
	d := xml.NewDecoder(rd)
	for {
		tok, err := d.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			w.abort()
			return w.out, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			w.depth++
			if err := w.start(d, t); err != nil {
				w.abort()
				return w.out, err
			}
		case xml.EndElement:
			w.end(t)
			w.depth--
		}
	}
	w.abort()
	return w.out, nil
}

func (w *walker) top() *runState {
	if len(w.runs) == 0 {
		return nil
	}
	return w.runs[len(w.runs)-1]
}

// start handles an opening tag. Handlers that consume the whole element
// (Skip, DecodeElement) also consume its end tag and so undo the depth.
func (w *walker) start(d *xml.Decoder, t xml.StartElement) error {
	run := w.top()

	switch {
	case is(t.Name, "mc", "Fallback"):
		w.depth--
		return d.Skip()

	case is(t.Name, "w", "p"):
		if w.para == nil {
			w.para = &paraState{}
		} else {
			// Text box content inside a run: what the enclosing runs hold so
			// far comes first, and the box starts on its own line.
			for _, open := range w.runs {
				w.flushText(open)
			}
			w.para.lineBreak()
		}
		w.pDepth++

	case is(t.Name, "w", "r"), is(t.Name, "m", "r"):
		if w.para != nil {
			w.runs = append(w.runs, &runState{depth: w.depth})
		}

	case is(t.Name, "w", "rPr"):
		if run != nil && w.depth == run.depth+1 {
			w.rPrDepth = w.depth
		}

	case is(t.Name, "w", "u"):
		if run != nil && w.rPrDepth != 0 && w.depth == w.rPrDepth+1 {
			run.underlined = attr(t, "w", "val") != "none"
		}

	case is(t.Name, "w", "t"), is(t.Name, "m", "t"), is(t.Name, "w", "instrText"):
		w.depth--
		var s string
		if err := d.DecodeElement(&s, &t); err != nil {
			return err
		}
		if run != nil {
			run.text.WriteString(s)
		}

	case is(t.Name, "w", "br"), is(t.Name, "w", "cr"):
		if run != nil {
			run.text.WriteByte('\n')
		}

	case is(t.Name, "w", "tab"):
		if run != nil && w.depth == run.depth+1 {
			run.text.WriteByte('\t')
		}

	case is(t.Name, "a", "blip"):
		if run != nil {
			run.addRID(attr(t, "r", "embed"))
		}

	case is(t.Name, "v", "imagedata"):
		if run != nil {
			rid := attr(t, "r", "id")
			if rid == "" {
				rid = attr(t, "o", "relid")
			}
			run.addRID(rid)
		}
	}

	return nil
}

func (w *walker) end(t xml.EndElement) {
	switch {
	case is(t.Name, "w", "rPr"):
		if w.rPrDepth == w.depth {
			w.rPrDepth = 0
		}

	case is(t.Name, "w", "r"), is(t.Name, "m", "r"):
		if run := w.top(); run != nil && run.depth == w.depth {
			w.runs = w.runs[:len(w.runs)-1]
			w.flushRun(run)
		}

	case is(t.Name, "w", "p"):
		if w.para == nil {
			return
		}
		w.pDepth--
		if w.pDepth > 0 {
			// Nested paragraph (text box content) ends a line.
			w.para.lineBreak()
			return
		}
		w.finishParagraph()
	}
}

// flushText moves the text buffered in run to the paragraph.
func (w *walker) flushText(run *runState) {
	s := run.text.String()
	run.text.Reset()

	if run.underlined {
		if seg := text.Normalize(s); seg != "" {
			w.para.hasUnderline = true
			w.para.segments = append(w.para.segments, seg)
		}
	}
	w.para.text.WriteString(s)
}

// flushRun appends the run text and its image markers to the paragraph.
func (w *walker) flushRun(run *runState) {
	if w.para == nil {
		return
	}
	w.flushText(run)
	for _, rid := range run.rids {
		if id, ok := w.r.media.ridToLocal[rid]; ok {
			w.para.text.WriteString(" " + markers.Image(id) + " ")
			continue
		}
		w.r.addIssue(IssueUnresolvedImage, partDoc, "image relationship "+rid+" has no media asset", "rid", rid)
		w.para.text.WriteString(" " + markers.Fallback(rid) + " ")
	}
}

// finishParagraph normalizes the accumulated text and emits a paragraph
// unless it is empty.
func (w *walker) finishParagraph() {
	p := w.para
	w.para = nil
	w.pDepth = 0
	w.rPrDepth = 0

	s := text.Clean(p.text.String())

	for _, m := range bracketUnderlineRe.FindAllStringSubmatch(s, -1) {
		p.hasUnderline = true
		p.segments = append(p.segments, m[1])
	}
	s = strings.TrimSpace(bracketUnderlineRe.ReplaceAllString(s, "$1"))

	if s == "" {
		return
	}
	w.out = append(w.out, model.Paragraph{
		Text:               s,
		HasUnderline:       p.hasUnderline,
		UnderlinedSegments: p.segments,
	})
}

// abort flushes whatever is open when the stream ends early.
func (w *walker) abort() {
	for len(w.runs) > 0 {
		run := w.top()
		w.runs = w.runs[:len(w.runs)-1]
		w.flushRun(run)
	}
	if w.para != nil {
		w.finishParagraph()
	}
}

// attr returns the value of the attribute prefix:local, or "".
func attr(t xml.StartElement, pfx, local string) string {
	for _, a := range t.Attr {
		if a.Name.Local == local && prefix(a.Name) == pfx {
			return a.Value
		}
	}
	return ""
}
