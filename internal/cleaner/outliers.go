package cleaner

import (
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/KaramelBytes/staffclean-cli/internal/table"
)

// CapOutliers caps salaries at or above opt.OutlierThreshold in each watched
// department to that department's largest sub-threshold salary. A department
// with no sub-threshold salary is left unchanged and reported in the warnings.
func CapOutliers(t *table.Table, opt Options) ([]Operation, []string) {
	var ops []Operation
	var warnings []string
	thr := opt.OutlierThreshold
	for _, dept := range opt.WatchDepartments {
		var below []float64
		var outliers []int
		for i, r := range t.Records {
			if r.Department != dept || r.Salary == nil {
				continue
			}
			if *r.Salary >= thr {
				outliers = append(outliers, i)
			} else {
				below = append(below, *r.Salary)
			}
		}
		if len(outliers) == 0 {
			continue
		}
		if len(below) == 0 {
			warnings = append(warnings, fmt.Sprintf("department %s has no salary below %s; %d outlier(s) left uncapped", dept, table.FormatFloat(thr), len(outliers)))
			continue
		}
		capVal := floats.Max(below)
		for _, i := range outliers {
			s := t.Records[i].Salary
			orig := *s
			*s = capVal
			ops = append(ops, Operation{
				Row: i, Column: table.ColSalary,
				Original: table.FormatFloat(orig), New: table.FormatFloat(capVal),
				Kind: OpOutlierCap, Reason: "salary_at_or_above_threshold",
			})
		}
	}
	return ops, warnings
}
