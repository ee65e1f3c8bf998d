package cleaner

import (
	"errors"
	"fmt"
	"strconv"

	"gonum.org/v1/gonum/stat"

	"github.com/KaramelBytes/staffclean-cli/internal/table"
)

var (
	// ErrIDNotSerial means a present ID disagrees with the dense serial, so
	// gaps cannot be filled without rewriting known identifiers.
	ErrIDNotSerial = errors.New("ID column is not a dense serial")
	// ErrNoSalaryData means salaries are missing but none are known to average.
	ErrNoSalaryData = errors.New("no known salaries to impute from")
)

// Impute fills missing IDs and salaries. Date_of_Birth is left untouched.
// Columns absent from the table are skipped.
func Impute(t *table.Table, opt Options) ([]Operation, error) {
	var ops []Operation
	if t.HasColumn(table.ColID) {
		idOps, err := ImputeIDs(t, opt.IDBase)
		if err != nil {
			return nil, err
		}
		ops = append(ops, idOps...)
	}
	if t.HasColumn(table.ColSalary) {
		salOps, err := ImputeSalaries(t)
		if err != nil {
			return ops, err
		}
		ops = append(ops, salOps...)
	}
	return ops, nil
}

// ImputeIDs assigns base+i to each missing ID at row i and sets the table's
// ID width to the smallest integer width holding the resulting range. The
// table is not modified when a present ID breaks the serial.
func ImputeIDs(t *table.Table, base int64) ([]Operation, error) {
	for i, r := range t.Records {
		if r.ID != nil && *r.ID != base+int64(i) {
			return nil, fmt.Errorf("%w: row %d has ID %d, want %d", ErrIDNotSerial, i, *r.ID, base+int64(i))
		}
	}
	var ops []Operation
	for i := range t.Records {
		r := &t.Records[i]
		if r.ID != nil {
			continue
		}
		r.ID = table.Int64Ptr(base + int64(i))
		ops = append(ops, Operation{
			Row: i, Column: table.ColID,
			New:  strconv.FormatInt(*r.ID, 10),
			Kind: OpSerialFill, Reason: "missing_id",
		})
	}
	hi := base
	if n := len(t.Records); n > 0 {
		hi = base + int64(n-1)
	}
	t.IDWidth = table.MinIntWidth(base, hi)
	return ops, nil
}

// salaryStats holds means computed on known salaries before any fill.
type salaryStats struct {
	global float64
	byDept map[string]float64
}

func knownSalaryStats(t *table.Table) (salaryStats, bool) {
	var all []float64
	groups := map[string][]float64{}
	for _, r := range t.Records {
		if r.Salary == nil {
			continue
		}
		all = append(all, *r.Salary)
		groups[r.Department] = append(groups[r.Department], *r.Salary)
	}
	if len(all) == 0 {
		return salaryStats{}, false
	}
	st := salaryStats{global: stat.Mean(all, nil), byDept: make(map[string]float64, len(groups))}
	for d, xs := range groups {
		st.byDept[d] = stat.Mean(xs, nil)
	}
	return st, true
}

// ImputeSalaries fills each missing Salary with its department's mean of
// known salaries, or with the global mean when the department has none.
// Every mean is taken before the first fill, so no imputed value feeds
// another.
func ImputeSalaries(t *table.Table) ([]Operation, error) {
	missing := 0
	for _, r := range t.Records {
		if r.Salary == nil {
			missing++
		}
	}
	if missing == 0 {
		return nil, nil
	}
	st, ok := knownSalaryStats(t)
	if !ok {
		return nil, fmt.Errorf("%w: %d missing", ErrNoSalaryData, missing)
	}
	ops := make([]Operation, 0, missing)
	for i := range t.Records {
		r := &t.Records[i]
		if r.Salary != nil {
			continue
		}
		v, kind, reason := st.global, OpGlobalMeanFill, "department_without_salaries"
		if m, ok := st.byDept[r.Department]; ok {
			v, kind, reason = m, OpGroupMeanFill, "missing_salary"
		}
		r.Salary = table.Float64Ptr(v)
		ops = append(ops, Operation{
			Row: i, Column: table.ColSalary,
			New:  table.FormatFloat(v),
			Kind: kind, Reason: reason,
		})
	}
	return ops, nil
}
