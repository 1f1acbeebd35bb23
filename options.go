package examdoc

import (
	"io"
	"log/slog"
)

// parseOptions holds configuration for a Parser.
type parseOptions struct {
	// Exam metadata
	title     string
	timeLimit int

	// Assembly
	includeTrueFalseAnswers bool

	logger *slog.Logger
}

// defaultOptions returns the default parse options.
func defaultOptions() parseOptions {
	return parseOptions{
		title:                   "",
		timeLimit:               0, // 0 means model.DefaultTimeLimit
		includeTrueFalseAnswers: false,
		logger:                  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// clone creates a copy of parseOptions. The logger is shared.
func (o parseOptions) clone() parseOptions {
	return parseOptions{
		title:                   o.title,
		timeLimit:               o.timeLimit,
		includeTrueFalseAnswers: o.includeTrueFalseAnswers,
		logger:                  o.logger,
	}
}
