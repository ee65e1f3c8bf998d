package table

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ErrNoHeader is returned when the input has no header row.
var ErrNoHeader = errors.New("table has no header row")

// ReadOptions controls how a delimited file is read.
type ReadOptions struct {
	// Delimiter for the file. If 0, chosen from the file extension.
	Delimiter rune
	// MaxRows limits rows read; 0 means unlimited.
	MaxRows int
}

// ReadFile reads a CSV/TSV file into a Frame. Short rows are padded to the
// header width.
func ReadFile(path string, opt ReadOptions) (*Frame, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open table: %w", err)
	}
	defer f.Close()
	delim := opt.Delimiter
	if delim == 0 {
		delim = SniffDelimiter(path)
	}
	fr, err := Read(f, delim, opt.MaxRows)
	if err != nil {
		return nil, err
	}
	fr.Name = filepath.Base(path)
	return fr, nil
}

// Read parses delimited text from r.
func Read(r io.Reader, delim rune, maxRows int) (*Frame, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.Comma = delim

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrNoHeader
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	ncol := len(header)
	fr := &Frame{Delimiter: delim, Header: make([]string, ncol)}
	for i, h := range header {
		fr.Header[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}
	for {
		rec, err := cr.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("read row %d: %w", len(fr.Rows)+1, err)
		}
		if maxRows > 0 && len(fr.Rows) >= maxRows {
			break
		}
		row := make([]string, ncol)
		copy(row, rec)
		fr.Rows = append(fr.Rows, row)
	}
	return fr, nil
}

// SniffDelimiter picks a delimiter from the file name.
func SniffDelimiter(path string) rune {
	name := strings.ToLower(path)
	if strings.HasSuffix(name, ".tsv") {
		return '\t'
	}
	return ','
}

// ParseDelimiter maps a user-supplied delimiter name to a rune; "" yields 0 (auto).
func ParseDelimiter(s string) (rune, error) {
	switch s {
	case "":
		return 0, nil
	case ",", "comma":
		return ',', nil
	case "\t", "tab":
		return '\t', nil
	case ";", "semicolon":
		return ';', nil
	default:
		return 0, fmt.Errorf("unsupported delimiter: %q", s)
	}
}
