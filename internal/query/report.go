package query

import (
	"fmt"
	"strings"

	"github.com/KaramelBytes/staffclean-cli/internal/table"
)

// Report bundles the aggregation views printed by the summary command.
type Report struct {
	Name        string            `json:"name,omitempty"`
	Rows        int               `json:"rows"`
	Departments []DepartmentStats `json:"departments"`
	TopEarners  []Employee        `json:"top_earners"`
}

// BuildReport summarizes t with the top earners limited to top.
func BuildReport(t *table.Table, top int) (*Report, error) {
	earners, err := TopN(t, top)
	if err != nil {
		return nil, err
	}
	return &Report{Name: t.Name, Rows: t.Len(), Departments: Summarize(t), TopEarners: earners}, nil
}

// Markdown renders the report as plain sections.
func (r *Report) Markdown() string {
	var b strings.Builder
	b.WriteString("[DEPARTMENT SUMMARY]\n")
	if r.Name != "" {
		b.WriteString(fmt.Sprintf("File: %s\n", r.Name))
	}
	b.WriteString(fmt.Sprintf("Rows: %d\n", r.Rows))
	b.WriteString(fmt.Sprintf("Departments: %d\n\n", len(r.Departments)))

	b.WriteString("[AVERAGE SALARY]\n")
	for _, d := range r.Departments {
		b.WriteString(fmt.Sprintf("- %s: avg %.2f, min %.2f, max %.2f\n", safeName(d.Department), d.AverageSalary, d.MinSalary, d.MaxSalary))
	}

	b.WriteString("\n[EMPLOYEE COUNT]\n")
	for _, d := range r.Departments {
		b.WriteString(fmt.Sprintf("- %s: %d\n", safeName(d.Department), d.EmployeeCount))
	}

	if len(r.TopEarners) > 0 {
		b.WriteString(fmt.Sprintf("\n[TOP %d EARNERS]\n", len(r.TopEarners)))
		for i, e := range r.TopEarners {
			sal := "n/a"
			if e.Salary != nil {
				sal = fmt.Sprintf("%.2f", *e.Salary)
			}
			b.WriteString(fmt.Sprintf("%d. %s (%s): %s\n", i+1, e.Name, safeName(e.Department), sal))
		}
	}
	return b.String()
}

func safeName(s string) string {
	if s == "" {
		return "(blank)"
	}
	return s
}
