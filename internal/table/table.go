package table

import (
	"fmt"
	"math"
	"time"
)

// Known column names of the employee table.
const (
	ColID          = "ID"
	ColName        = "Name"
	ColDepartment  = "Department"
	ColSalary      = "Salary"
	ColDateOfBirth = "Date_of_Birth"
)

// DateLayout is the canonical calendar-date layout used for Date_of_Birth.
const DateLayout = "2006-01-02"

// Frame is a delimited file as read from disk: header plus raw string cells.
type Frame struct {
	Name      string
	Delimiter rune
	Header    []string
	Rows      [][]string
}

// Index returns the position of the named column in the header.
func (f *Frame) Index(col string) (int, bool) {
	for i, h := range f.Header {
		if h == col {
			return i, true
		}
	}
	return -1, false
}

// Cell returns the raw value at row i for the named column; ok is false when
// the column is absent.
func (f *Frame) Cell(i int, col string) (string, bool) {
	j, ok := f.Index(col)
	if !ok {
		return "", false
	}
	row := f.Rows[i]
	if j >= len(row) {
		return "", true
	}
	return row[j], true
}

// Record is one employee row. Nil pointers are missing values.
type Record struct {
	ID          *int64
	Name        string
	Department  string
	Salary      *float64
	DateOfBirth *time.Time
	// Extra holds columns outside the known schema, keyed by header name.
	Extra map[string]string
}

// Table is the typed, in-memory employee table.
type Table struct {
	Name      string
	Delimiter rune
	// Columns is the output column order (the input header).
	Columns []string
	Records []Record
	// IDWidth is the smallest integer width holding the ID range; set by imputation.
	IDWidth IntWidth
}

// Len returns the number of records.
func (t *Table) Len() int { return len(t.Records) }

// HasColumn reports whether the named column is part of the table.
func (t *Table) HasColumn(col string) bool {
	for _, c := range t.Columns {
		if c == col {
			return true
		}
	}
	return false
}

// Departments returns distinct departments in first-seen order.
func (t *Table) Departments() []string {
	seen := map[string]struct{}{}
	var out []string
	for _, r := range t.Records {
		if _, ok := seen[r.Department]; ok {
			continue
		}
		seen[r.Department] = struct{}{}
		out = append(out, r.Department)
	}
	return out
}

// IntWidth is a signed integer storage width.
type IntWidth int

const (
	WidthUnset IntWidth = 0
	Int8       IntWidth = 8
	Int16      IntWidth = 16
	Int32      IntWidth = 32
	Int64      IntWidth = 64
)

func (w IntWidth) String() string {
	if w == WidthUnset {
		return "unset"
	}
	return fmt.Sprintf("int%d", int(w))
}

// Holds reports whether v fits in the width.
func (w IntWidth) Holds(v int64) bool {
	switch w {
	case Int8:
		return v >= math.MinInt8 && v <= math.MaxInt8
	case Int16:
		return v >= math.MinInt16 && v <= math.MaxInt16
	case Int32:
		return v >= math.MinInt32 && v <= math.MaxInt32
	case Int64:
		return true
	default:
		return false
	}
}

// MinIntWidth returns the smallest width that holds every value in [lo, hi].
func MinIntWidth(lo, hi int64) IntWidth {
	for _, w := range []IntWidth{Int8, Int16, Int32} {
		if w.Holds(lo) && w.Holds(hi) {
			return w
		}
	}
	return Int64
}

// Int64Ptr and Float64Ptr are small helpers for building records.
func Int64Ptr(v int64) *int64       { return &v }
func Float64Ptr(v float64) *float64 { return &v }

// DatePtr parses s with DateLayout and panics on error; intended for fixtures.
func DatePtr(s string) *time.Time {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		panic(err)
	}
	return &t
}
