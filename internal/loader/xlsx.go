package loader

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/KaramelBytes/filmcorr-cli/internal/frame"
)

type xlsxLoader struct{}

func (xlsxLoader) CanLoad(path string) bool {
	return hasSuffix(path, ".xlsx")
}

func (xlsxLoader) Load(path string, opt Options) (*Result, error) {
	return LoadXLSX(path, opt)
}

// LoadXLSX reads the selected sheet of an .xlsx workbook; the first row is the
// header. Short rows are padded with nulls.
func LoadXLSX(path string, opt Options) (*Result, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, &frame.IOError{Path: path, Err: err}
	}
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, &frame.ParseError{Path: filepath.Base(path), Err: fmt.Errorf("open workbook: %w", err)}
	}
	defer f.Close()

	name := filepath.Base(path)
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, &frame.ParseError{Path: name, Err: errors.New("workbook has no sheets")}
	}
	sheet := sheets[0]
	if opt.Sheet != "" {
		sheet = ""
		for _, s := range sheets {
			if strings.EqualFold(s, opt.Sheet) {
				sheet = s
				break
			}
		}
		if sheet == "" {
			return nil, &frame.ParseError{Path: name, Err: fmt.Errorf("sheet %q not found (available: %s)", opt.Sheet, strings.Join(sheets, ", "))}
		}
	}

	raw, err := f.GetRows(sheet)
	if err != nil {
		return nil, &frame.ParseError{Path: name, Err: fmt.Errorf("read sheet %q: %w", sheet, err)}
	}
	if len(raw) == 0 || len(raw[0]) == 0 {
		return nil, &frame.ParseError{Path: name, Err: errors.New("missing header row")}
	}
	columns := normalizeHeader(raw[0])
	markers := opt.markers()

	var rows [][]frame.Value
	total := 0
	for i, rec := range raw[1:] {
		if len(rec) > len(columns) {
			return nil, &frame.ParseError{Path: name, Line: i + 2, Err: fmt.Errorf("row has %d cells, header has %d", len(rec), len(columns))}
		}
		total++
		if opt.MaxRows > 0 && len(rows) >= opt.MaxRows {
			continue
		}
		row := make([]frame.Value, len(columns))
		for j, cell := range rec {
			row[j] = frame.Parse(cell, markers)
		}
		rows = append(rows, row)
	}

	t, err := frame.New(columns, rows)
	if err != nil {
		return nil, &frame.ParseError{Path: name, Err: err}
	}
	return &Result{Table: t, Rows: total}, nil
}
