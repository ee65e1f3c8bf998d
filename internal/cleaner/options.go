package cleaner

import (
	"fmt"
	"unicode"

	"github.com/KaramelBytes/staffclean-cli/internal/table"
)

// PlaceholderRule rewrites known "missing" tokens of one column to a
// canonical value before type coercion.
type PlaceholderRule struct {
	Column string
	// Tokens are matched case-sensitively against the trimmed cell.
	Tokens []string
	// Replacement is the canonical value; empty means missing.
	Replacement string
}

// Options controls the cleaning pipeline.
type Options struct {
	Placeholders []PlaceholderRule
	// DateLayout parses Date_of_Birth; defaults to table.DateLayout.
	DateLayout string
	// ThousandsSeparator is stripped from Salary before parsing; 0 disables.
	ThousandsSeparator rune
	// UnknownDepartment replaces blank departments.
	UnknownDepartment string
	// IDBase is the first value of the dense ID serial.
	IDBase int64
	// OutlierThreshold: salaries at or above it are capped in watched departments.
	OutlierThreshold float64
	WatchDepartments []string
}

// DefaultOptions returns the rules for the employee dataset.
func DefaultOptions() Options {
	return Options{
		Placeholders: []PlaceholderRule{
			{Column: table.ColSalary, Tokens: []string{"not_applicable", "not_available"}},
			{Column: table.ColDepartment, Tokens: []string{"not_specified"}, Replacement: "Unknown"},
		},
		DateLayout:        table.DateLayout,
		UnknownDepartment: "Unknown",
		IDBase:            0,
		OutlierThreshold:  1_000_000,
		WatchDepartments:  []string{"HR", "Engineering"},
	}
}

func (o Options) dateLayout() string {
	if o.DateLayout == "" {
		return table.DateLayout
	}
	return o.DateLayout
}

func (o Options) unknownDepartment() string {
	if o.UnknownDepartment == "" {
		return "Unknown"
	}
	return o.UnknownDepartment
}

// ValidateThousandsSeparator rejects separators that are part of a plain
// decimal number; stripping them would change the parsed value.
func ValidateThousandsSeparator(r rune) error {
	switch {
	case r == 0:
		return nil
	case r == '.' || r == '-' || r == '+' || r == 'e' || r == 'E' || unicode.IsDigit(r):
		return fmt.Errorf("thousands separator %q is part of a decimal number", r)
	}
	return nil
}
