package loader

import (
	"encoding/csv"
	"errors"
	"io"
	"os"
	"path/filepath"

	"github.com/KaramelBytes/filmcorr-cli/internal/frame"
)

type csvLoader struct{}

func (csvLoader) CanLoad(path string) bool {
	return hasSuffix(path, ".csv", ".tsv", ".txt")
}

func (csvLoader) Load(path string, opt Options) (*Result, error) {
	return LoadCSV(path, opt)
}

// LoadCSV reads a CSV/TSV file with a header row.
func LoadCSV(path string, opt Options) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &frame.IOError{Path: path, Err: err}
	}
	defer f.Close()
	if opt.Delimiter == 0 {
		opt.Delimiter = sniffDelimiter(path)
	}
	return ReadCSV(f, filepath.Base(path), opt)
}

// ReadCSV parses CSV from r. name is used in error messages.
func ReadCSV(r io.Reader, name string, opt Options) (*Result, error) {
	cr := csv.NewReader(r)
	// 0 makes the header width binding for every record.
	cr.FieldsPerRecord = 0
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true
	if opt.Delimiter != 0 {
		cr.Comma = opt.Delimiter
	}

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &frame.ParseError{Path: name, Err: errors.New("missing header row")}
		}
		return nil, csvError(name, err)
	}
	columns := normalizeHeader(header)
	markers := opt.markers()

	var rows [][]frame.Value
	total := 0
	for {
		rec, err := cr.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, csvError(name, err)
		}
		total++
		if opt.MaxRows > 0 && len(rows) >= opt.MaxRows {
			continue
		}
		row := make([]frame.Value, len(rec))
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

func csvError(name string, err error) error {
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		return &frame.ParseError{Path: name, Line: pe.Line, Err: pe.Err}
	}
	return &frame.IOError{Path: name, Err: err}
}

func sniffDelimiter(path string) rune {
	if hasSuffix(path, ".tsv") {
		return '\t'
	}
	return ','
}
