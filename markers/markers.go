// Package markers implements the inline image marker grammar.
//
// Two marker forms appear in question text:
//
//	[IMAGE:<token>]       token is a local asset id (img_N) or, after
//	                      upload, a remote storage id
//	[IMAGE_RID:<rid>]     relationship id that could not be mapped to an asset
//
// Replace substitutes both forms from a lookup table and leaves any marker
// whose key is missing untouched.
package markers

import (
	"regexp"
	"strings"

	"github.com/tsawler/examdoc/model"
)

var (
	imageRe    = regexp.MustCompile(`\[IMAGE:([^\[\]\s]+)\]`)
	fallbackRe = regexp.MustCompile(`\[IMAGE_RID:([^\[\]\s]+)\]`)

	// anyRe also accepts the legacy [IMG:id] alias when splitting text.
	anyRe   = regexp.MustCompile(`\[(IMAGE|IMAGE_RID|IMG):([^\[\]\s]+)\]`)
	localRe = regexp.MustCompile(`^img_\d+$`)
)

// Table maps marker keys to replacement tokens.
type Table struct {
	// ByLocalID maps local asset ids (img_N) to remote ids.
	ByLocalID map[string]string

	// ByRelationshipID maps relationship ids to remote ids.
	ByRelationshipID map[string]string
}

// Empty reports whether the table has no entries.
func (t Table) Empty() bool {
	return len(t.ByLocalID) == 0 && len(t.ByRelationshipID) == 0
}

// Image returns the marker for a token.
func Image(token string) string {
	return "[IMAGE:" + token + "]"
}

// Fallback returns the marker for an unresolved relationship id.
func Fallback(rid string) string {
	return "[IMAGE_RID:" + rid + "]"
}

// Replace substitutes every marker whose key is present in t.
func Replace(s string, t Table) string {
	if s == "" || t.Empty() {
		return s
	}
	s = imageRe.ReplaceAllStringFunc(s, func(m string) string {
		key := imageRe.FindStringSubmatch(m)[1]
		if v, ok := t.ByLocalID[key]; ok && v != "" {
			return Image(v)
		}
		return m
	})
	return fallbackRe.ReplaceAllStringFunc(s, func(m string) string {
		key := fallbackRe.FindStringSubmatch(m)[1]
		if v, ok := t.ByRelationshipID[key]; ok && v != "" {
			return Image(v)
		}
		return m
	})
}

// Substitute returns a deep copy of doc with markers replaced in every
// question's text, options and solution. doc is not modified.
func Substitute(doc *model.ExamDocument, t Table) *model.ExamDocument {
	if doc == nil {
		return nil
	}

	out := *doc
	out.Answers = make(map[int]string, len(doc.Answers))
	for k, v := range doc.Answers {
		out.Answers[k] = v
	}
	out.Images = append([]model.ImageAsset(nil), doc.Images...)

	copied := make(map[*model.Question]*model.Question, len(doc.Questions))
	clone := func(q *model.Question) *model.Question {
		if c, ok := copied[q]; ok {
			return c
		}
		c := *q
		c.Text = Replace(q.Text, t)
		c.Solution = Replace(q.Solution, t)
		c.Options = make([]model.Option, len(q.Options))
		for i, o := range q.Options {
			c.Options[i] = model.Option{Letter: o.Letter, Text: Replace(o.Text, t)}
		}
		c.Images = append([]string(nil), q.Images...)
		copied[q] = &c
		return &c
	}

	out.Questions = make([]*model.Question, len(doc.Questions))
	for i, q := range doc.Questions {
		out.Questions[i] = clone(q)
	}
	out.Sections = make([]*model.Section, len(doc.Sections))
	for i, s := range doc.Sections {
		sc := *s
		sc.Questions = make([]*model.Question, len(s.Questions))
		for j, q := range s.Questions {
			sc.Questions[j] = clone(q)
		}
		out.Sections[i] = &sc
	}
	return &out
}

// Kind classifies a piece of split text.
type Kind int

const (
	// KindText is plain text.
	KindText Kind = iota
	// KindImage is an [IMAGE:token] marker or the legacy [IMG:token] alias.
	KindImage
	// KindUnresolved is an [IMAGE_RID:rid] marker.
	KindUnresolved
)

// Segment is a piece of text or a marker.
type Segment struct {
	Kind Kind
	// Text holds the literal text for KindText segments and the raw marker
	// otherwise.
	Text string
	// Key is the token or relationship id of a marker.
	Key string
}

// Split breaks s into text and marker segments in order.
func Split(s string) []Segment {
	var out []Segment
	last := 0
	for _, loc := range anyRe.FindAllStringSubmatchIndex(s, -1) {
		if loc[0] > last {
			out = append(out, Segment{Kind: KindText, Text: s[last:loc[0]]})
		}
		k := KindImage
		if s[loc[2]:loc[3]] == "IMAGE_RID" {
			k = KindUnresolved
		}
		out = append(out, Segment{Kind: k, Text: s[loc[0]:loc[1]], Key: s[loc[4]:loc[5]]})
		last = loc[1]
	}
	if last < len(s) {
		out = append(out, Segment{Kind: KindText, Text: s[last:]})
	}
	return out
}

// References returns the local asset ids referenced by [IMAGE:img_N]
// markers in the given texts, in order of first appearance.
func References(texts ...string) []string {
	var ids []string
	seen := make(map[string]bool)
	for _, s := range texts {
		for _, m := range imageRe.FindAllStringSubmatch(s, -1) {
			id := m[1]
			if !localRe.MatchString(id) || seen[id] {
				continue
			}
			seen[id] = true
			ids = append(ids, id)
		}
	}
	return ids
}

// Strip removes all markers from s and collapses the whitespace left behind.
func Strip(s string) string {
	return strings.Join(strings.Fields(anyRe.ReplaceAllString(s, " ")), " ")
}
