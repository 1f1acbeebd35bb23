package examdoc

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/tsawler/examdoc/assemble"
	"github.com/tsawler/examdoc/docx"
	"github.com/tsawler/examdoc/format"
	"github.com/tsawler/examdoc/layout"
	"github.com/tsawler/examdoc/model"
	"github.com/tsawler/examdoc/segment"
)

// Parser provides a fluent interface for importing an exam from a DOCX
// package. Each configuration method returns a new Parser, so a configured
// Parser can be shared and chained safely.
type Parser struct {
	// Source
	filename string
	data     []byte
	inMemory bool

	reader *docx.Reader

	// Lifecycle
	ownsReader   bool // true if we opened the reader and should close it
	readerOpened bool

	options parseOptions

	// Accumulated error (fail-fast)
	err error
}

// clone creates a shallow copy of the Parser with a copy of options.
func (p *Parser) clone() *Parser {
	return &Parser{
		filename:     p.filename,
		data:         p.data,
		inMemory:     p.inMemory,
		reader:       p.reader,
		ownsReader:   p.ownsReader,
		readerOpened: p.readerOpened,
		options:      p.options.clone(),
		err:          p.err,
	}
}

// ============================================================================
// Configuration Methods (return new Parser instance)
// ============================================================================

// Title sets the exam title. Without it the title comes from the document
// properties, then from the file name.
func (p *Parser) Title(title string) *Parser {
	np := p.clone()
	np.options.title = strings.TrimSpace(title)
	return np
}

// TimeLimit sets the exam duration in minutes. Values below 1 are rejected
// when a terminal operation runs.
func (p *Parser) TimeLimit(minutes int) *Parser {
	np := p.clone()
	if minutes < 1 && np.err == nil {
		np.err = fmt.Errorf("invalid time limit: %d minutes", minutes)
	}
	np.options.timeLimit = minutes
	return np
}

// IncludeTrueFalseAnswers records part 2 answer keys in the document
// answer map as well.
func (p *Parser) IncludeTrueFalseAnswers() *Parser {
	np := p.clone()
	np.options.includeTrueFalseAnswers = true
	return np
}

// Logger sets the logger for degraded-extraction and summary messages.
func (p *Parser) Logger(l *slog.Logger) *Parser {
	np := p.clone()
	if l != nil {
		np.options.logger = l
	}
	return np
}

// ============================================================================
// Lifecycle
// ============================================================================

// ensureReader opens the reader if not already open. Anything that is not
// a DOCX package is rejected with ErrUnsupportedFormat.
func (p *Parser) ensureReader() error {
	if p.readerOpened {
		return nil
	}

	data := p.data
	if !p.inMemory {
		if p.filename == "" {
			return ErrNoInput
		}
		b, err := os.ReadFile(p.filename)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", p.filename, err)
		}
		data = b
	}

	if f := format.DetectBytes(data); !f.Supported() {
		if hint := f.Hint(); hint != "" {
			return fmt.Errorf("%w: %s (%s)", ErrUnsupportedFormat, f, hint)
		}
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, f)
	}

	r, err := docx.OpenBytes(data, docx.WithLogger(p.options.logger))
	if err != nil {
		return fmt.Errorf("failed to open DOCX: %w", err)
	}
	p.reader = r
	p.ownsReader = true
	p.readerOpened = true
	return nil
}

// Close releases resources associated with the Parser.
// It is safe to call Close multiple times.
func (p *Parser) Close() error {
	if p.ownsReader && p.reader != nil {
		err := p.reader.Close()
		p.reader = nil
		p.ownsReader = false
		p.readerOpened = false
		return err
	}
	return nil
}

// ============================================================================
// Terminal Operations
// ============================================================================

// Paragraphs returns the reconstructed paragraphs of the document, with
// image markers and underline recorded. This is a terminal operation.
func (p *Parser) Paragraphs() ([]model.Paragraph, error) {
	if p.err != nil {
		return nil, p.err
	}
	if err := p.ensureReader(); err != nil {
		return nil, err
	}
	defer p.Close()

	return p.reader.Paragraphs(), nil
}

// Parse imports the exam. This is a terminal operation that closes the
// underlying reader.
//
// Returns the document, any warnings encountered, and an error only when
// the input could not be read as a DOCX package at all. Missing sections,
// unresolved images and validation findings are reported as warnings.
//
// Example:
//
//	doc, warnings, err := examdoc.Open("de-thi.docx").Parse()
//	if len(warnings) > 0 {
//	    log.Println("Warnings:", examdoc.FormatWarnings(warnings))
//	}
func (p *Parser) Parse() (*model.ExamDocument, []Warning, error) {
	if p.err != nil {
		return nil, nil, p.err
	}
	if err := p.ensureReader(); err != nil {
		return nil, nil, err
	}
	defer p.Close()

	log := p.options.logger
	var warnings []Warning
	for _, iss := range p.reader.Issues() {
		warnings = append(warnings, issueWarning(iss))
	}

	paras := p.reader.Paragraphs()
	bounds := layout.DetectSections(paras)
	if !bounds.Detected[0] && !bounds.Detected[1] && !bounds.Detected[2] && len(paras) > 0 {
		warnings = append(warnings, Warning{
			Type:    WarningNoSections,
			Message: "no part heading found; reading the whole document as multiple choice",
		})
	}

	parts := make([][]segment.RawQuestion, 0, 3)
	for part := model.PartMultipleChoice; part <= model.PartShortAnswer; part++ {
		rng := bounds.Part(part)
		var raws []segment.RawQuestion
		if !rng.Empty() {
			raws = segment.Scan(part, paras[rng.Start:rng.End])
		}
		log.Debug("section scanned", "part", part, "start", rng.Start, "end", rng.End, "questions", len(raws))
		parts = append(parts, raws)
	}

	doc := assemble.Build(assemble.Options{
		Title:                   p.title(),
		TimeLimit:               p.options.timeLimit,
		IncludeTrueFalseAnswers: p.options.includeTrueFalseAnswers,
	}, p.reader.Images(), parts...)

	report := assemble.Validate(doc)
	for _, f := range report.Findings {
		warnings = append(warnings, findingWarning(f))
	}
	log.Info("exam parsed",
		"title", doc.Title,
		"questions", len(doc.Questions),
		"images", len(doc.Images),
		"valid", report.Valid,
		"summary", report.Summary())

	return doc, warnings, nil
}

// title resolves the exam title: explicit option, then document
// properties, then the file name without extension.
func (p *Parser) title() string {
	if p.options.title != "" {
		return p.options.title
	}
	if p.reader != nil {
		if t := strings.TrimSpace(p.reader.Title()); t != "" {
			return t
		}
	}
	base := filepath.Base(p.filename)
	if base == "." || base == string(filepath.Separator) {
		return ""
	}
	return strings.TrimSuffix(base, filepath.Ext(base))
}
