package sheet

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// DefaultSheetName is the worksheet written by WriteXLSX.
const DefaultSheetName = "Questions"

// ErrNoHeader is returned by ReadXLSX when no worksheet has an exam_id
// column.
var ErrNoHeader = errors.New("sheet: no question sheet found")

// WriteXLSX writes rows to w as a workbook with a single worksheet.
func WriteXLSX(w io.Writer, sheetName string, rows []Row) error {
	if sheetName == "" {
		sheetName = DefaultSheetName
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}

	header := make([]any, len(Header))
	for i, h := range Header {
		header[i] = h
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		vals := r.values()
		if err := f.SetSheetRow(sheetName, cell, &vals); err != nil {
			return fmt.Errorf("writing row %d: %w", i+1, err)
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("creating style: %w", err)
	}
	last, _ := excelize.CoordinatesToCellName(len(Header), 1)
	if err := f.SetCellStyle(sheetName, "A1", last, bold); err != nil {
		return fmt.Errorf("styling header: %w", err)
	}
	if err := f.SetPanes(sheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("freezing header: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

// SaveXLSX writes rows to the named file.
func SaveXLSX(path string, rows []Row) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := WriteXLSX(f, DefaultSheetName, rows); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ReadXLSX reads rows back from a workbook. The first worksheet whose
// header row holds an exam_id column is used; columns are matched by name
// so their order does not matter.
func ReadXLSX(r io.Reader) ([]Row, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("opening XLSX: %w", err)
	}
	defer f.Close()

	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil || len(rows) == 0 {
			continue
		}
		cols := make(map[string]int)
		for i, h := range rows[0] {
			cols[strings.TrimSpace(h)] = i
		}
		if _, ok := cols["exam_id"]; !ok {
			continue
		}
		return decodeRows(cols, rows[1:])
	}
	return nil, ErrNoHeader
}

func decodeRows(cols map[string]int, cells [][]string) ([]Row, error) {
	get := func(row []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}
	num := func(row []string, name string, line int) (int, error) {
		s := strings.TrimSpace(get(row, name))
		if s == "" {
			return 0, nil
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			return 0, fmt.Errorf("row %d: %s: %w", line, name, err)
		}
		return n, nil
	}

	out := make([]Row, 0, len(cells))
	for i, row := range cells {
		if strings.TrimSpace(get(row, "exam_id")) == "" {
			continue
		}
		line := i + 2
		grade, err := num(row, "grade", line)
		if err != nil {
			return nil, err
		}
		level, err := num(row, "quiz_level", line)
		if err != nil {
			return nil, err
		}
		out = append(out, Row{
			ExamID:       get(row, "exam_id"),
			Level:        get(row, "level"),
			QuestionType: get(row, "question_type"),
			QuestionText: get(row, "question_text"),
			ImageID:      get(row, "image_id"),
			OptionA:      get(row, "option_A"),
			OptionB:      get(row, "option_B"),
			OptionC:      get(row, "option_C"),
			OptionD:      get(row, "option_D"),
			AnswerKey:    get(row, "answer_key"),
			Solution:     get(row, "solution"),
			Topic:        get(row, "topic"),
			Grade:        grade,
			QuizLevel:    level,
		})
	}
	return out, nil
}
