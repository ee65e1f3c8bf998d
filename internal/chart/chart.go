// Package chart renders department statistics as standalone HTML charts.
package chart

import (
	"fmt"
	"io"
	"math"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/KaramelBytes/staffclean-cli/internal/query"
)

// Options tunes chart output. AssetsHost overrides the echarts script host.
type Options struct {
	Title      string
	Subtitle   string
	AssetsHost string
}

// DepartmentSalaries writes an HTML page with a bar chart of average and
// maximum salary per department.
func DepartmentSalaries(w io.Writer, stats []query.DepartmentStats, o Options) error {
	if o.Title == "" {
		o.Title = "Salary by Department"
	}
	x := make([]string, 0, len(stats))
	avg := make([]opts.BarData, 0, len(stats))
	maxes := make([]opts.BarData, 0, len(stats))
	for _, s := range stats {
		x = append(x, s.Department)
		avg = append(avg, opts.BarData{Value: round2(s.AverageSalary)})
		maxes = append(maxes, opts.BarData{Value: round2(s.MaxSalary)})
	}

	initOpts := opts.Initialization{PageTitle: o.Title, Width: "100%", Height: "600px"}
	if o.AssetsHost != "" {
		initOpts.AssetsHost = o.AssetsHost
	}
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(initOpts),
		charts.WithTitleOpts(opts.Title{Title: o.Title, Subtitle: o.Subtitle}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Right: "10%"}),
	)
	bar.SetXAxis(x).
		AddSeries("average", avg,
			charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "top"}),
		).
		AddSeries("max", maxes)

	page := components.NewPage()
	if o.AssetsHost != "" {
		page.SetAssetsHost(o.AssetsHost)
	}
	page.AddCharts(bar)
	if err := page.Render(w); err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	return nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
