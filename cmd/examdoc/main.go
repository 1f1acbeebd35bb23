// Command examdoc imports exams written in Word documents.
//
// usage:
//
//	examdoc parse   [flags] <exam.docx>
//	examdoc sheet   [flags] <exam.docx>
//	examdoc preview [flags] <exam.docx>
//	examdoc import  [flags] <exam.docx>
//	examdoc list    [flags]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintf(os.Stderr, "examdoc: %v\n", err)
		}
		os.Exit(1)
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintf(w, `examdoc: import exams from Word documents

usage:
  examdoc parse   [flags] <exam.docx>   print the exam as JSON
  examdoc sheet   [flags] <exam.docx>   write question-bank rows (xlsx or csv)
  examdoc preview [flags] <exam.docx>   write an HTML preview
  examdoc import  [flags] <exam.docx>   upload images and store rows in the database
  examdoc list    [flags]               list stored imports

Run "examdoc <command> -h" for the flags of a command.
`)
}

// commands maps a command name to its implementation.
var commands = map[string]func(a *app, args []string) error{
	"parse":   (*app).cmdParse,
	"sheet":   (*app).cmdSheet,
	"preview": (*app).cmdPreview,
	"import":  (*app).cmdImport,
	"list":    (*app).cmdList,
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if len(args) < 1 {
		printUsage(stderr)
		return errors.New("missing command")
	}
	if args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		printUsage(stdout)
		return nil
	}

	cmd, ok := commands[args[0]]
	if !ok {
		printUsage(stderr)
		return fmt.Errorf("unknown command: %s", args[0])
	}

	a := &app{ctx: ctx, name: args[0], stdout: stdout, stderr: stderr}
	return cmd(a, args[1:])
}

// app carries what every command needs once flags are parsed.
type app struct {
	ctx    context.Context
	name   string
	stdout io.Writer
	stderr io.Writer

	cfg    *Config
	logger *slog.Logger
}

// commonFlags are accepted by every command.
type commonFlags struct {
	config    string
	logLevel  string
	title     string
	timeLimit int
	tfAnswers bool
	output    string
	db        string
	uploadURL string
}

func (a *app) flagSet(cf *commonFlags) *flag.FlagSet {
	fs := flag.NewFlagSet(a.name, flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	fs.StringVar(&cf.config, "config", "", "YAML config file")
	fs.StringVar(&cf.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	fs.StringVar(&cf.title, "title", "", "exam title")
	fs.IntVar(&cf.timeLimit, "time", 0, "time limit in minutes")
	fs.BoolVar(&cf.tfAnswers, "tf-answers", false, "record true/false answers in the answer map")
	fs.StringVar(&cf.output, "o", "", "output file (default stdout or derived from the input name)")
	fs.StringVar(&cf.db, "db", "", "import database path")
	fs.StringVar(&cf.uploadURL, "upload", "", "image upload endpoint URL")
	return fs
}

// setup loads the config, applies flag overrides and builds the logger.
func (a *app) setup(cf *commonFlags) error {
	cfg := DefaultConfig()
	if cf.config != "" {
		loaded, err := LoadConfig(cf.config)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	if cf.logLevel != "" {
		cfg.LogLevel = cf.logLevel
	}
	if cf.title != "" {
		cfg.Title = cf.title
	}
	if cf.timeLimit != 0 {
		cfg.TimeLimit = cf.timeLimit
	}
	if cf.tfAnswers {
		cfg.IncludeTrueFalseAnswers = true
	}
	if cf.db != "" {
		cfg.Store.DBPath = cf.db
	}
	if cf.uploadURL != "" {
		cfg.Upload.URL = cf.uploadURL
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	level, _ := cfg.Level()
	a.cfg = cfg
	a.logger = slog.New(slog.NewTextHandler(a.stderr, &slog.HandlerOptions{Level: level}))
	return nil
}
