// Package docx reads exam content from DOCX (Office Open XML) packages.
//
// A Reader resolves the package's media files into [model.ImageAsset]
// values and reconstructs every paragraph of word/document.xml into a
// [model.Paragraph], with inline image markers injected at the run where
// each image is referenced and run-level underline recorded.
package docx

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/tsawler/examdoc/model"
)

// ErrMissingDocument is returned when the package has no word/document.xml.
var ErrMissingDocument = errors.New("docx: missing word/document.xml")

type config struct {
	logger *slog.Logger
}

// Option configures a Reader.
type Option func(*config)

// WithLogger sets the logger used for degraded-extraction messages.
// The default discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

func newConfig(opts []Option) config {
	c := config{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// Reader provides access to the exam content of a DOCX package.
// All parsing happens when the Reader is opened.
type Reader struct {
	closer     io.Closer
	files      map[string]*zip.File
	order      []*zip.File
	logger     *slog.Logger
	rels       []relationshipXML
	media      mediaIndex
	images     []model.ImageAsset
	paragraphs []model.Paragraph
	issues     []Issue
	title      string
}

// Open opens a DOCX file for reading.
func Open(filename string, opts ...Option) (*Reader, error) {
	zr, err := zip.OpenReader(filename)
	if err != nil {
		return nil, fmt.Errorf("opening ZIP archive: %w", err)
	}

	r, err := newReader(&zr.Reader, newConfig(opts))
	if err != nil {
		zr.Close()
		return nil, err
	}
	r.closer = zr
	return r, nil
}

// OpenBytes reads a DOCX package held in memory.
func OpenBytes(data []byte, opts ...Option) (*Reader, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("opening ZIP archive: %w", err)
	}
	return newReader(zr, newConfig(opts))
}

func newReader(zr *zip.Reader, cfg config) (*Reader, error) {
	r := &Reader{
		files:  make(map[string]*zip.File, len(zr.File)),
		order:  zr.File,
		logger: cfg.logger,
	}
	for _, f := range zr.File {
		r.files[f.Name] = f
	}

	if _, ok := r.files[partDoc]; !ok {
		return nil, ErrMissingDocument
	}

	r.parseRelationships()
	r.extractImages()
	r.parseCoreProperties()

	if err := r.parseDocument(); err != nil {
		return nil, fmt.Errorf("parsing document: %w", err)
	}

	return r, nil
}

// Close releases resources associated with the Reader.
func (r *Reader) Close() error {
	if r.closer != nil {
		err := r.closer.Close()
		r.closer = nil
		return err
	}
	return nil
}

// Paragraphs returns the reconstructed, non-empty paragraphs in document order.
func (r *Reader) Paragraphs() []model.Paragraph {
	return r.paragraphs
}

// Images returns the media assets in container order.
func (r *Reader) Images() []model.ImageAsset {
	return r.images
}

// Issues returns the degraded-extraction issues found while reading.
func (r *Reader) Issues() []Issue {
	return r.issues
}

// Title returns the title from the core properties, if any.
func (r *Reader) Title() string {
	return r.title
}

// LocalID returns the local asset id a relationship id resolves to.
func (r *Reader) LocalID(rid string) (string, bool) {
	id, ok := r.media.ridToLocal[rid]
	return id, ok
}

func (r *Reader) addIssue(kind IssueKind, part, msg string, args ...any) {
	r.issues = append(r.issues, Issue{Kind: kind, Part: part, Message: msg})
	r.logger.Warn("docx: "+msg, append([]any{"kind", kind.String(), "part", part}, args...)...)
}

// readFile reads the content of a file from the ZIP archive.
func (r *Reader) readFile(name string) ([]byte, error) {
	f, ok := r.files[name]
	if !ok {
		return nil, fmt.Errorf("file not found: %s", name)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// parseRelationships loads the document relationship table. A missing or
// malformed table leaves every image relationship unresolved.
func (r *Reader) parseRelationships() {
	data, err := r.readFile(partRels)
	if err != nil {
		r.addIssue(IssueRelationships, partRels, "relationship table not found")
		return
	}

	var rels relationshipsXML
	if err := xml.Unmarshal(data, &rels); err != nil {
		r.addIssue(IssueRelationships, partRels, "relationship table is malformed", "error", err)
		return
	}
	r.rels = rels.Relationships
}

// parseCoreProperties reads the document title, if present.
func (r *Reader) parseCoreProperties() {
	data, err := r.readFile(partCore)
	if err != nil {
		return
	}
	var core corePropertiesXML
	if err := xml.Unmarshal(data, &core); err != nil {
		r.logger.Debug("docx: core properties unreadable", "error", err)
		return
	}
	r.title = core.Title
}

// parseDocument reconstructs the paragraphs of the main document part.
func (r *Reader) parseDocument() error {
	f := r.files[partDoc]
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	w := newWalker(r)
	paragraphs, err := w.walk(rc)
	if err != nil {
		r.addIssue(IssueMalformedDocument, partDoc, "document XML is malformed", "error", err, "paragraphs", len(paragraphs))
	}
	r.paragraphs = paragraphs
	return nil
}
