// Package examdoc provides a fluent API for importing exams written in Word
// (.docx) documents.
//
// Basic usage:
//
//	doc, warnings, err := examdoc.Open("de-thi.docx").Parse()
//	if err != nil {
//	    // handle error
//	}
//	if len(warnings) > 0 {
//	    log.Println("Warnings:", examdoc.FormatWarnings(warnings))
//	}
//
// With options:
//
//	doc, _, err := examdoc.Open("de-thi.docx").
//	    Title("Đề thi thử THPT 2025").
//	    TimeLimit(50).
//	    Parse()
//
// The document holds three sections (multiple choice, true/false and short
// answer). Images are referenced from question text with [IMAGE:img_N]
// markers; see the markers package for substitution once they are uploaded.
package examdoc

import (
	"github.com/tsawler/examdoc/docx"
)

// Open returns a Parser for the named file. The file is read when a
// terminal operation such as Parse is called.
//
// Example:
//
//	doc, warnings, err := examdoc.Open("de-thi.docx").Parse()
func Open(filename string) *Parser {
	return &Parser{
		filename: filename,
		options:  defaultOptions(),
	}
}

// FromBytes returns a Parser for a document held in memory, such as an
// uploaded file. name is used for the title fallback and may be empty.
func FromBytes(name string, data []byte) *Parser {
	return &Parser{
		filename: name,
		data:     data,
		inMemory: true,
		options:  defaultOptions(),
	}
}

// FromReader returns a Parser over an already-opened docx.Reader.
// The caller is responsible for closing the reader.
//
// Example:
//
//	r, err := docx.Open("de-thi.docx")
//	if err != nil {
//	    // handle error
//	}
//	defer r.Close()
//	doc, warnings, err := examdoc.FromReader(r).Parse()
func FromReader(r *docx.Reader) *Parser {
	return &Parser{
		reader:       r,
		ownsReader:   false,
		readerOpened: true,
		options:      defaultOptions(),
	}
}

// Must is a helper that wraps a call to a function returning (T, error)
// and panics if the error is non-nil.
//
// Example:
//
//	paras := examdoc.Must(examdoc.Open("de-thi.docx").Paragraphs())
func Must[T any](val T, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}

// MustParse is a helper that wraps a call to Parse and panics if the error
// is non-nil. It discards warnings. It is intended for use in scripts or
// tests where error handling would be cumbersome.
//
// Example:
//
//	doc := examdoc.MustParse(examdoc.Open("de-thi.docx").Parse())
func MustParse[T any](val T, _ []Warning, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}
