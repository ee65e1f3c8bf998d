package table

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestReadFilePadsShortRowsAndTrimsHeader(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "staff.csv")
	content := "ID, Name ,Department,Salary,Date_of_Birth\n" +
		"0,Ada,Engineering,85000,1990-01-02\n" +
		"1,Bob,HR\n"
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	fr, err := ReadFile(p, ReadOptions{})
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if fr.Name != "staff.csv" {
		t.Fatalf("name = %q", fr.Name)
	}
	if fr.Delimiter != ',' {
		t.Fatalf("delimiter = %q", fr.Delimiter)
	}
	if fr.Header[1] != "Name" {
		t.Fatalf("header[1] = %q, want trimmed Name", fr.Header[1])
	}
	if len(fr.Rows) != 2 || len(fr.Rows[1]) != 5 {
		t.Fatalf("rows = %#v", fr.Rows)
	}
	if v, ok := fr.Cell(1, ColSalary); !ok || v != "" {
		t.Fatalf("padded salary = %q (%v)", v, ok)
	}
	if _, ok := fr.Cell(0, "Bonus"); ok {
		t.Fatalf("absent column reported present")
	}
}

func TestReadFileTSVAndMaxRows(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "staff.tsv")
	content := "ID\tName\n0\tAda\n1\tBob\n2\tCy\n"
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	fr, err := ReadFile(p, ReadOptions{MaxRows: 2})
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if fr.Delimiter != '\t' {
		t.Fatalf("delimiter = %q, want tab", fr.Delimiter)
	}
	if len(fr.Rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(fr.Rows))
	}
}

func TestReadEmptyInput(t *testing.T) {
	_, err := Read(strings.NewReader(""), ',', 0)
	if !errors.Is(err, ErrNoHeader) {
		t.Fatalf("err = %v, want ErrNoHeader", err)
	}
}

func TestWriteFormatsTypedCells(t *testing.T) {
	tb := &Table{
		Delimiter: ',',
		Columns:   []string{ColID, ColName, ColDepartment, ColSalary, ColDateOfBirth, "Office"},
		Records: []Record{
			{ID: Int64Ptr(0), Name: "Ada", Department: "Engineering", Salary: Float64Ptr(61666.666666666664), DateOfBirth: DatePtr("1990-01-02"), Extra: map[string]string{"Office": "B2"}},
			{ID: Int64Ptr(1), Name: "Lee, Jr.", Department: "Unknown"},
		},
	}
	var buf bytes.Buffer
	if err := Write(&buf, tb); err != nil {
		t.Fatalf("Write: %v", err)
	}
	want := "ID,Name,Department,Salary,Date_of_Birth,Office\n" +
		"0,Ada,Engineering,61666.666666666664,1990-01-02,B2\n" +
		"1,\"Lee, Jr.\",Unknown,,,\n"
	if buf.String() != want {
		t.Fatalf("output =\n%s\nwant\n%s", buf.String(), want)
	}
}

func TestWriteFileReplacesExisting(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "out", "clean.tsv")
	tb := &Table{Delimiter: '\t', Columns: []string{ColName}, Records: []Record{{Name: "Ada"}}}
	if err := WriteFile(tb, p); err != nil {
		t.Fatalf("first write: %v", err)
	}
	tb.Records[0].Name = "Bob"
	if err := WriteFile(tb, p); err != nil {
		t.Fatalf("second write: %v", err)
	}
	b, err := os.ReadFile(p)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(b) != "Name\nBob\n" {
		t.Fatalf("content = %q", b)
	}
}

func TestMinIntWidth(t *testing.T) {
	cases := []struct {
		lo, hi int64
		want   IntWidth
	}{
		{0, 19, Int8},
		{-128, 127, Int8},
		{0, 128, Int16},
		{-40000, 10, Int32},
		{0, 1 << 40, Int64},
	}
	for _, c := range cases {
		if got := MinIntWidth(c.lo, c.hi); got != c.want {
			t.Fatalf("MinIntWidth(%d, %d) = %s, want %s", c.lo, c.hi, got, c.want)
		}
	}
	if Int8.String() != "int8" || WidthUnset.String() != "unset" {
		t.Fatalf("unexpected width names")
	}
}

func TestDepartmentsFirstSeenOrder(t *testing.T) {
	tb := &Table{Records: []Record{{Department: "HR"}, {Department: "Sales"}, {Department: "HR"}}}
	got := tb.Departments()
	if len(got) != 2 || got[0] != "HR" || got[1] != "Sales" {
		t.Fatalf("departments = %v", got)
	}
}

func TestParseDelimiter(t *testing.T) {
	if d, err := ParseDelimiter("tab"); err != nil || d != '\t' {
		t.Fatalf("tab = %q, %v", d, err)
	}
	if d, err := ParseDelimiter(""); err != nil || d != 0 {
		t.Fatalf("auto = %q, %v", d, err)
	}
	if _, err := ParseDelimiter("|"); err == nil {
		t.Fatalf("expected error for unsupported delimiter")
	}
}
