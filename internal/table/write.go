package table

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/KaramelBytes/staffclean-cli/internal/utils"
)

// WriteFile persists the table to path in its own delimiter, replacing any
// existing file.
func WriteFile(t *Table, path string) error {
	var buf bytes.Buffer
	if err := Write(&buf, t); err != nil {
		return err
	}
	if err := utils.SafeWriteFile(path, buf.Bytes()); err != nil {
		return fmt.Errorf("write table: %w", err)
	}
	return nil
}

// Write encodes the header and every record to w.
func Write(w io.Writer, t *Table) error {
	cw := csv.NewWriter(w)
	if t.Delimiter != 0 {
		cw.Comma = t.Delimiter
	}
	if err := cw.Write(t.Columns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	row := make([]string, len(t.Columns))
	for i := range t.Records {
		r := &t.Records[i]
		for j, col := range t.Columns {
			row[j] = FormatCell(r, col)
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush table: %w", err)
	}
	return nil
}

// FormatCell renders one cell of r in its persisted text form. Missing values
// are empty strings.
func FormatCell(r *Record, col string) string {
	switch col {
	case ColID:
		if r.ID == nil {
			return ""
		}
		return strconv.FormatInt(*r.ID, 10)
	case ColName:
		return r.Name
	case ColDepartment:
		return r.Department
	case ColSalary:
		if r.Salary == nil {
			return ""
		}
		return FormatFloat(*r.Salary)
	case ColDateOfBirth:
		if r.DateOfBirth == nil {
			return ""
		}
		return r.DateOfBirth.Format(DateLayout)
	default:
		return r.Extra[col]
	}
}

// FormatFloat uses the shortest representation that parses back to v.
func FormatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
