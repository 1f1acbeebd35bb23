package examdoc

import (
	"errors"

	"github.com/tsawler/examdoc/docx"
)

var (
	// ErrUnsupportedFormat is returned when the input is not a DOCX package.
	ErrUnsupportedFormat = errors.New("examdoc: unsupported file format")

	// ErrMissingDocumentBody is returned when the package has no main
	// document part.
	ErrMissingDocumentBody = docx.ErrMissingDocument

	// ErrNoInput is returned when a Parser has neither a filename nor data.
	ErrNoInput = errors.New("examdoc: no input specified")
)
