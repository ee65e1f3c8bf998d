// Package query answers read-only questions about a cleaned employee table.
package query

import (
	"errors"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/KaramelBytes/staffclean-cli/internal/table"
)

// ErrNegativeN is returned by TopN for n < 0.
var ErrNegativeN = errors.New("n must be a non-negative integer")

// Employee is the public projection of a record.
type Employee struct {
	Name       string   `json:"Name"`
	Salary     *float64 `json:"Salary"`
	Department string   `json:"Department"`
}

// DepartmentCount is the result of CountByDepartment.
type DepartmentCount struct {
	Department    string `json:"department"`
	EmployeeCount int    `json:"employee_count"`
}

// DepartmentStats aggregates salaries of one department. Salary fields are
// zero when the department has no known salary.
type DepartmentStats struct {
	Department    string  `json:"department"`
	EmployeeCount int     `json:"employee_count"`
	AverageSalary float64 `json:"average_salary"`
	MinSalary     float64 `json:"min_salary"`
	MaxSalary     float64 `json:"max_salary"`
}

// TopN returns up to n employees by Salary, highest first. Ties keep table
// order and missing salaries sort last.
func TopN(t *table.Table, n int) ([]Employee, error) {
	if n < 0 {
		return nil, ErrNegativeN
	}
	idx := make([]int, len(t.Records))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		sa, sb := t.Records[idx[a]].Salary, t.Records[idx[b]].Salary
		if sa == nil || sb == nil {
			return sa != nil && sb == nil
		}
		return *sa > *sb
	})
	if n > len(idx) {
		n = len(idx)
	}
	out := make([]Employee, 0, n)
	for _, i := range idx[:n] {
		out = append(out, project(&t.Records[i]))
	}
	return out, nil
}

func project(r *table.Record) Employee {
	e := Employee{Name: r.Name, Department: r.Department}
	if r.Salary != nil {
		v := *r.Salary
		e.Salary = &v
	}
	return e
}

// CountByDepartment counts records whose Department equals dept exactly.
func CountByDepartment(t *table.Table, dept string) DepartmentCount {
	n := 0
	for _, r := range t.Records {
		if r.Department == dept {
			n++
		}
	}
	return DepartmentCount{Department: dept, EmployeeCount: n}
}

// Summarize returns per-department statistics sorted by department name.
func Summarize(t *table.Table) []DepartmentStats {
	counts := map[string]int{}
	sal := map[string][]float64{}
	for _, r := range t.Records {
		counts[r.Department]++
		if r.Salary != nil {
			sal[r.Department] = append(sal[r.Department], *r.Salary)
		}
	}
	out := make([]DepartmentStats, 0, len(counts))
	for d, n := range counts {
		s := DepartmentStats{Department: d, EmployeeCount: n}
		if xs := sal[d]; len(xs) > 0 {
			s.AverageSalary = stat.Mean(xs, nil)
			s.MinSalary = floats.Min(xs)
			s.MaxSalary = floats.Max(xs)
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Department < out[j].Department })
	return out
}
