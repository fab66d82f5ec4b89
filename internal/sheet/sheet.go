// Package sheet reads and writes the tabular files the scorer works with:
// Excel workbooks (.xlsx) through excelize and delimited text (.csv, .tsv)
// through encoding/csv. Only the first worksheet of a workbook is used.
package sheet

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrUnsupportedFormat is returned for file extensions the package cannot
// read or write.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// Format identifies an on-disk table encoding.
type Format int

const (
	XLSX Format = iota
	CSV
	TSV
)

func (f Format) String() string {
	switch f {
	case XLSX:
		return "xlsx"
	case CSV:
		return "csv"
	case TSV:
		return "tsv"
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

// Table is a header row plus data rows. Rows may be shorter than Header.
type Table struct {
	Header []string
	Rows   [][]string
}

// Cell returns row[i], or "" when the row is too short or i is negative.
func Cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}

// FormatOf picks the encoding from the file extension.
func FormatOf(name string) (Format, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx", ".xlsm":
		return XLSX, nil
	case ".csv":
		return CSV, nil
	case ".tsv", ".tab":
		return TSV, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(name))
}

// Read loads the table stored at path, choosing the decoder from the
// extension of name (which may differ from path for uploaded temp files).
// Fully empty rows are dropped.
func Read(path, name string) (*Table, error) {
	format, err := FormatOf(name)
	if err != nil {
		return nil, err
	}
	var rows [][]string
	switch format {
	case XLSX:
		rows, err = readXLSX(path)
	default:
		rows, err = readDelimited(path, delimiter(format))
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filepath.Base(name), err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("read %s: empty file", filepath.Base(name))
	}
	header := make([]string, len(rows[0]))
	for i, cell := range rows[0] {
		header[i] = cleanHeader(cell)
	}
	t := &Table{Header: header, Rows: make([][]string, 0, len(rows)-1)}
	for _, row := range rows[1:] {
		if blankRow(row) {
			continue
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

// Write stores t at path in the format implied by its extension. The data is
// written to a temp file in the destination directory and renamed into
// place, so a failed write never clobbers an existing file.
func Write(path string, t *Table) error {
	format, err := FormatOf(path)
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		// no-op once the rename succeeded
		_ = os.Remove(tmpName)
	}()

	switch format {
	case XLSX:
		err = writeXLSX(tmp, t)
	default:
		err = writeDelimited(tmp, delimiter(format), t)
	}
	if err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync %s: %w", filepath.Base(path), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename %s: %w", filepath.Base(path), err)
	}
	return nil
}

func delimiter(f Format) rune {
	if f == TSV {
		return '\t'
	}
	return ','
}

func cleanHeader(v string) string {
	v = strings.TrimPrefix(v, "\ufeff")
	return strings.TrimSpace(v)
}

func blankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
