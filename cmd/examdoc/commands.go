package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/tsawler/examdoc"
	"github.com/tsawler/examdoc/htmlview"
	"github.com/tsawler/examdoc/markers"
	"github.com/tsawler/examdoc/model"
	"github.com/tsawler/examdoc/sheet"
	"github.com/tsawler/examdoc/store"
	"github.com/tsawler/examdoc/upload"
)

// parseInput parses the single positional argument as an exam document.
func (a *app) parseInput(fs *flag.FlagSet) (*model.ExamDocument, string, error) {
	args := fs.Args()
	if len(args) != 1 {
		return nil, "", fmt.Errorf("%s requires exactly one .docx file", a.name)
	}
	path := args[0]

	p := examdoc.Open(path).
		TimeLimit(a.cfg.TimeLimit).
		Logger(a.logger)
	if a.cfg.Title != "" {
		p = p.Title(a.cfg.Title)
	}
	if a.cfg.IncludeTrueFalseAnswers {
		p = p.IncludeTrueFalseAnswers()
	}

	doc, warnings, err := p.Parse()
	if err != nil {
		return nil, "", err
	}
	for _, w := range warnings {
		a.logger.Warn(w.Message, "type", w.Type.String())
	}
	return doc, path, nil
}

// uploadImages uploads the document's images when an endpoint is
// configured and returns the substitution table.
func (a *app) uploadImages(doc *model.ExamDocument) (upload.Result, error) {
	if a.cfg.Upload.URL == "" || len(doc.Images) == 0 {
		return upload.Result{}, nil
	}
	u := upload.NewHTTPUploader(a.cfg.Upload.URL,
		upload.WithAction(a.cfg.Upload.Action),
		upload.WithRetries(a.cfg.Upload.Retries),
		upload.WithClient(&http.Client{Timeout: a.cfg.UploadTimeout()}),
		upload.WithLogger(a.logger),
	)
	res, err := upload.UploadAll(a.ctx, u, doc.Images, a.cfg.Upload.Concurrency, a.logger)
	if err != nil {
		return res, fmt.Errorf("uploading images: %w", err)
	}
	for _, f := range res.Failures {
		a.logger.Warn("image will keep its local marker", "image", f.String())
	}
	return res, nil
}

func (a *app) sheetOptions() sheet.Options {
	opts := sheet.DefaultOptions()
	opts.Level = a.cfg.Sheet.Level
	opts.Topic = a.cfg.Sheet.Topic
	opts.Grade = a.cfg.Sheet.Grade
	opts.QuizLevel = a.cfg.Sheet.QuizLevel
	opts.DefaultChoice = a.cfg.Sheet.DefaultChoice
	return opts
}

// output opens the -o file, or returns stdout when it is empty.
func (a *app) output(path string) (io.Writer, func() error, error) {
	if path == "" || path == "-" {
		return a.stdout, func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("creating %s: %w", path, err)
	}
	return f, f.Close, nil
}

func (a *app) cmdParse(args []string) error {
	var cf commonFlags
	fs := a.flagSet(&cf)
	withData := fs.Bool("image-data", false, "include base64 image payloads")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := a.setup(&cf); err != nil {
		return err
	}

	doc, _, err := a.parseInput(fs)
	if err != nil {
		return err
	}

	w, closeFn, err := a.output(cf.output)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(toJSON(doc, *withData)); err != nil {
		closeFn()
		return fmt.Errorf("encoding JSON: %w", err)
	}
	return closeFn()
}

func (a *app) cmdSheet(args []string) error {
	var cf commonFlags
	fs := a.flagSet(&cf)
	format := fs.String("format", "xlsx", "output format: xlsx or csv")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := a.setup(&cf); err != nil {
		return err
	}
	if *format != "xlsx" && *format != "csv" {
		return fmt.Errorf("unsupported format %q", *format)
	}

	doc, path, err := a.parseInput(fs)
	if err != nil {
		return err
	}
	res, err := a.uploadImages(doc)
	if err != nil {
		return err
	}
	rows := sheet.Rows(doc, a.sheetOptions(), res.Table())

	out := cf.output
	if out == "" && *format == "xlsx" {
		out = strings.TrimSuffix(path, filepath.Ext(path)) + ".xlsx"
	}
	w, closeFn, err := a.output(out)
	if err != nil {
		return err
	}
	if *format == "csv" {
		err = sheet.WriteCSV(w, rows, 0)
	} else {
		err = sheet.WriteXLSX(w, sheet.DefaultSheetName, rows)
	}
	if cerr := closeFn(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}
	a.logger.Info("sheet written", "rows", len(rows), "output", out)
	return nil
}

func (a *app) cmdPreview(args []string) error {
	var cf commonFlags
	fs := a.flagSet(&cf)
	answers := fs.Bool("answers", false, "show answer keys")
	solutions := fs.Bool("solutions", false, "show solutions")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := a.setup(&cf); err != nil {
		return err
	}

	doc, _, err := a.parseInput(fs)
	if err != nil {
		return err
	}
	w, closeFn, err := a.output(cf.output)
	if err != nil {
		return err
	}
	err = htmlview.Write(w, doc, htmlview.Options{
		RemoteURL:     a.cfg.Preview.RemoteURL,
		ShowAnswers:   *answers,
		ShowSolutions: *solutions,
	})
	if cerr := closeFn(); err == nil {
		err = cerr
	}
	return err
}

func (a *app) cmdImport(args []string) error {
	var cf commonFlags
	fs := a.flagSet(&cf)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := a.setup(&cf); err != nil {
		return err
	}

	doc, path, err := a.parseInput(fs)
	if err != nil {
		return err
	}
	res, err := a.uploadImages(doc)
	if err != nil {
		return err
	}
	rows := sheet.Rows(doc, a.sheetOptions(), res.Table())

	st, err := store.Open(a.cfg.Store.DBPath, store.WithMkdirAll())
	if err != nil {
		return err
	}
	defer st.Close()

	imp, err := st.SaveImport(a.ctx, filepath.Base(path), markers.Substitute(doc, res.Table()), rows, res.ByLocalID)
	if err != nil {
		return err
	}
	a.logger.Info("import stored", "id", imp.ID, "questions", imp.Questions, "images", imp.Images, "uploaded", res.Uploaded())
	fmt.Fprintln(a.stdout, imp.ID)
	return nil
}

func (a *app) cmdList(args []string) error {
	var cf commonFlags
	fs := a.flagSet(&cf)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := a.setup(&cf); err != nil {
		return err
	}
	if fs.NArg() != 0 {
		return errors.New("list takes no arguments")
	}

	st, err := store.Open(a.cfg.Store.DBPath)
	if err != nil {
		return err
	}
	defer st.Close()

	imports, err := st.Imports(a.ctx)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCREATED\tQUESTIONS\tIMAGES\tTITLE\tSOURCE")
	for _, imp := range imports {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%s\t%s\n",
			imp.ID, imp.CreatedAt.Format("2006-01-02 15:04"), imp.Questions, imp.Images, imp.Title, imp.Source)
	}
	return tw.Flush()
}
