// Package table loads, merges, and writes the delimited tables the research
// sheets travel in. Cells are strings; a key absent from a row is a null
// cell, which is not the same thing as present-and-empty.
package table

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

var (
	ErrNoData        = errors.New("no data rows")
	ErrMissingColumn = errors.New("required column missing")
)

// Table is an ordered set of columns plus one string map per row.
type Table struct {
	Columns []string
	Rows    []map[string]string
}

// HasColumn reports whether name is among the columns.
func (t *Table) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// RequireColumns returns ErrMissingColumn naming the first absent column.
func (t *Table) RequireColumns(names ...string) error {
	for _, n := range names {
		if !t.HasColumn(n) {
			return fmt.Errorf("%w: %q", ErrMissingColumn, n)
		}
	}
	return nil
}

// strategy is one way of reading path into header+records. Strategies are
// tried in order; the first success wins.
type strategy struct {
	name  string
	parse func(path string) ([][]string, error)
}

var strategies = []strategy{
	{"xlsx", parseXLSX},
	{"semicolon", parseSemicolon},
	{"comma", parseComma},
}

// Load reads path with the first parse strategy that succeeds:
//
//  1. an .xlsx workbook, first sheet (the Numbers/Excel export directly)
//  2. semicolon-delimited with the first line skipped (Numbers puts the
//     sheet name there when exporting CSV)
//  3. comma-delimited, nothing skipped
//
// Column names are whitespace-trimmed and entirely empty columns dropped.
func Load(path string) (*Table, error) {
	var firstErr error
	for _, s := range strategies {
		records, err := s.parse(path)
		if err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("%s: %w", s.name, err)
			}
			continue
		}
		return fromRecords(records)
	}
	return nil, fmt.Errorf("parse %s: %w", path, firstErr)
}

func parseXLSX(path string) ([][]string, error) {
	if ext := strings.ToLower(filepath.Ext(path)); ext != ".xlsx" {
		return nil, fmt.Errorf("not a workbook: %s", ext)
	}
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}
	return rows, nil
}

func parseSemicolon(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comma = ';'
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	// first line carries the sheet name, not data
	if _, err := r.Read(); err != nil {
		return nil, err
	}
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, ErrNoData
	}
	// a single-column header means the file was not semicolon-delimited
	if len(records[0]) < 2 {
		return nil, fmt.Errorf("header has %d field(s), not semicolon-delimited", len(records[0]))
	}
	return records, nil
}

func parseComma(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, ErrNoData
	}
	return records, nil
}

func fromRecords(records [][]string) (*Table, error) {
	if len(records) == 0 {
		return nil, ErrNoData
	}
	header := records[0]
	cols := make([]string, len(header))
	for i, h := range header {
		cols[i] = strings.TrimSpace(stripBOM(h))
	}

	t := &Table{}
	// drop entirely empty columns (e.g. a trailing delimiter artifact);
	// with no data rows there is nothing to judge, so keep named columns
	hasData := len(records) > 1
	keep := make([]int, 0, len(cols))
	for i, name := range cols {
		empty := true
		for _, rec := range records[1:] {
			if i < len(rec) && rec[i] != "" {
				empty = false
				break
			}
		}
		if hasData && empty {
			continue
		}
		if !hasData && name == "" {
			continue
		}
		keep = append(keep, i)
		t.Columns = append(t.Columns, name)
	}

	for _, rec := range records[1:] {
		row := make(map[string]string, len(keep))
		for j, i := range keep {
			v := ""
			if i < len(rec) {
				v = rec[i]
			}
			row[t.Columns[j]] = v
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

func stripBOM(s string) string {
	return strings.TrimPrefix(s, "\uFEFF")
}

// MergeColumn appends column name populated from values keyed by the key
// column. Rows whose key is absent from values keep a null cell rather than
// an empty one, so "not attempted" stays distinguishable from "attempted,
// nothing found". Row order is untouched.
func (t *Table) MergeColumn(key, name string, values map[string]string) {
	if !t.HasColumn(name) {
		t.Columns = append(t.Columns, name)
	}
	for _, row := range t.Rows {
		if v, ok := values[row[key]]; ok {
			row[name] = v
		}
	}
}

// WriteCSV writes the table comma-delimited as UTF-8 with a byte-order mark,
// the way the downstream spreadsheet tools expect it. Null cells render
// empty.
func (t *Table) WriteCSV(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	if err := writeCSV(f, t); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func writeCSV(w io.Writer, t *Table) error {
	if _, err := w.Write([]byte("\xef\xbb\xbf")); err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns); err != nil {
		return err
	}
	rec := make([]string, len(t.Columns))
	for _, row := range t.Rows {
		for i, c := range t.Columns {
			rec[i] = row[c]
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
