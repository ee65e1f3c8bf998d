package cleaner

import (
	"math"

	"github.com/KaramelBytes/staffclean-cli/internal/table"
)

// CorrectSalaries replaces every Salary with its absolute value. Missing
// salaries stay missing; applying it twice equals applying it once.
func CorrectSalaries(t *table.Table) []Operation {
	var ops []Operation
	for i := range t.Records {
		s := t.Records[i].Salary
		if s == nil || !math.Signbit(*s) {
			continue
		}
		orig := *s
		*s = math.Abs(orig)
		if orig != 0 {
			ops = append(ops, Operation{
				Row: i, Column: table.ColSalary,
				Original: table.FormatFloat(orig), New: table.FormatFloat(*s),
				Kind: OpAbsolute, Reason: "negative_salary",
			})
		}
	}
	return ops
}
