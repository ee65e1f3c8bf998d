package cleaner

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/KaramelBytes/staffclean-cli/internal/table"
)

// Normalize rewrites placeholder tokens, parses dates and coerces numeric
// columns, producing a typed Table. Unparseable values become missing and
// absent designated columns are reported as warnings; no row is dropped.
func Normalize(fr *table.Frame, opt Options) (*table.Table, []Operation, []string) {
	t := &table.Table{
		Name:      fr.Name,
		Delimiter: fr.Delimiter,
		Columns:   append([]string(nil), fr.Header...),
		Records:   make([]table.Record, len(fr.Rows)),
	}
	warnings := missingColumns(fr, opt)

	rules := map[string]PlaceholderRule{}
	for _, r := range opt.Placeholders {
		if _, ok := fr.Index(r.Column); ok {
			rules[r.Column] = r
		}
	}

	var ops []Operation
	layout := opt.dateLayout()
	for i, row := range fr.Rows {
		rec := &t.Records[i]
		for j, col := range fr.Header {
			raw := ""
			if j < len(row) {
				raw = row[j]
			}
			val := raw
			if rule, ok := rules[col]; ok && matchesToken(raw, rule.Tokens) {
				val = rule.Replacement
				ops = append(ops, Operation{Row: i, Column: col, Original: raw, New: val, Kind: OpPlaceholder, Reason: "placeholder_token"})
			}
			switch col {
			case table.ColID:
				rec.ID = coerceID(i, val, &ops)
			case table.ColName:
				rec.Name = val
			case table.ColDepartment:
				rec.Department = strings.TrimSpace(val)
				if rec.Department == "" {
					rec.Department = opt.unknownDepartment()
					ops = append(ops, Operation{Row: i, Column: col, Original: raw, New: rec.Department, Kind: OpPlaceholder, Reason: "missing_department"})
				}
			case table.ColSalary:
				rec.Salary = coerceSalary(i, val, opt.ThousandsSeparator, &ops)
			case table.ColDateOfBirth:
				rec.DateOfBirth = coerceDate(i, val, layout, &ops)
			default:
				if rec.Extra == nil {
					rec.Extra = map[string]string{}
				}
				rec.Extra[col] = val
			}
		}
	}
	return t, ops, warnings
}

// missingColumns reports designated columns that the frame lacks.
func missingColumns(fr *table.Frame, opt Options) []string {
	want := []string{table.ColID, table.ColDepartment, table.ColSalary, table.ColDateOfBirth}
	for _, r := range opt.Placeholders {
		want = append(want, r.Column)
	}
	seen := map[string]struct{}{}
	var out []string
	for _, col := range want {
		if _, dup := seen[col]; dup {
			continue
		}
		seen[col] = struct{}{}
		if _, ok := fr.Index(col); !ok {
			out = append(out, fmt.Sprintf("column %s is not in the provided table", col))
		}
	}
	return out
}

func matchesToken(raw string, tokens []string) bool {
	v := strings.TrimSpace(raw)
	for _, tok := range tokens {
		if v == tok {
			return true
		}
	}
	return false
}

func coerceID(row int, val string, ops *[]Operation) *int64 {
	v := strings.TrimSpace(val)
	if v == "" {
		return nil
	}
	if n, err := strconv.ParseInt(v, 10, 64); err == nil {
		return &n
	}
	// IDs written by tools that promote a column with gaps to float ("4.0").
	if f, err := strconv.ParseFloat(v, 64); err == nil && f == math.Trunc(f) && math.Abs(f) < 1<<62 {
		n := int64(f)
		return &n
	}
	*ops = append(*ops, Operation{Row: row, Column: table.ColID, Original: val, Kind: OpCoerceNull, Reason: "unparseable_integer"})
	return nil
}

func coerceSalary(row int, val string, thousands rune, ops *[]Operation) *float64 {
	v := strings.TrimSpace(val)
	if v == "" {
		return nil
	}
	if x, ok := parseNumeric(v, thousands); ok {
		return &x
	}
	*ops = append(*ops, Operation{Row: row, Column: table.ColSalary, Original: val, Kind: OpCoerceNull, Reason: "unparseable_number"})
	return nil
}

func coerceDate(row int, val, layout string, ops *[]Operation) *time.Time {
	v := strings.TrimSpace(val)
	if v == "" {
		return nil
	}
	d, err := time.Parse(layout, v)
	if err != nil && layout != table.DateLayout {
		// Cleaned output is always written in table.DateLayout.
		d, err = time.Parse(table.DateLayout, v)
	}
	if err != nil {
		*ops = append(*ops, Operation{Row: row, Column: table.ColDateOfBirth, Original: val, Kind: OpCoerceNull, Reason: "unparseable_date"})
		return nil
	}
	return &d
}

// parseNumeric parses a finite decimal number, optionally stripping a
// thousands separator first.
func parseNumeric(s string, thousands rune) (float64, bool) {
	raw := strings.ReplaceAll(s, "\u00a0", " ")
	raw = strings.TrimSpace(raw)
	if thousands != 0 {
		raw = strings.ReplaceAll(raw, string(thousands), "")
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
