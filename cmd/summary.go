package cmd

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/staffclean-cli/internal/chart"
	"github.com/KaramelBytes/staffclean-cli/internal/cleaner"
	"github.com/KaramelBytes/staffclean-cli/internal/query"
	"github.com/KaramelBytes/staffclean-cli/internal/table"
	"github.com/KaramelBytes/staffclean-cli/internal/utils"
)

var (
	sumJSON      bool
	sumChartPath string
	sumClean     bool
	sumTop       int
	sumOutput    string
	sumFlags     pipelineFlags
)

var summaryCmd = &cobra.Command{
	Use:   "summary [file]",
	Short: "Summarize salaries and headcount per department",
	Long: `Prints average/min/max salary and employee count per department plus the top earners.
The file is read as already cleaned; pass --clean to run the pipeline in memory first.
Without a file, the configured output of input_path is used.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := loadedConfig()
		if err != nil {
			return err
		}
		path := c.OutputFor(c.InputPath)
		if len(args) == 1 {
			path = args[0]
		}
		var t *table.Table
		if sumClean {
			res, _, err := cleanTable(c, sumFlags, path, "")
			if err != nil {
				return err
			}
			t = res.Table
		} else {
			opt, ro, err := sumFlags.options(c)
			if err != nil {
				return err
			}
			fr, err := table.ReadFile(path, ro)
			if err != nil {
				return err
			}
			var warns []string
			t, _, warns = cleaner.Normalize(fr, opt)
			for _, w := range warns {
				fmt.Fprintf(os.Stderr, "⚠ %s\n", w)
			}
		}

		rep, err := query.BuildReport(t, sumTop)
		if err != nil {
			return err
		}
		var out []byte
		if sumJSON {
			if out, err = utils.PrettyJSON(rep); err != nil {
				return err
			}
			out = append(out, '\n')
		} else {
			out = []byte(rep.Markdown())
		}
		if sumOutput != "" {
			if err := utils.SafeWriteFile(sumOutput, out); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			fmt.Printf("✓ Wrote summary to %s\n", sumOutput)
		} else {
			fmt.Print(string(out))
		}

		if sumChartPath != "" {
			var buf bytes.Buffer
			if err := chart.DepartmentSalaries(&buf, rep.Departments, chart.Options{Subtitle: t.Name}); err != nil {
				return err
			}
			if err := utils.SafeWriteFile(sumChartPath, buf.Bytes()); err != nil {
				return fmt.Errorf("write chart: %w", err)
			}
			fmt.Printf("✓ Wrote chart to %s\n", sumChartPath)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(summaryCmd)
	summaryCmd.Flags().BoolVar(&sumJSON, "json", false, "print JSON instead of text")
	summaryCmd.Flags().StringVar(&sumChartPath, "chart", "", "also write an HTML bar chart to this path")
	summaryCmd.Flags().BoolVar(&sumClean, "clean", false, "run the cleaning pipeline in memory first")
	summaryCmd.Flags().IntVar(&sumTop, "top", 3, "number of top earners to list")
	summaryCmd.Flags().StringVarP(&sumOutput, "output", "o", "", "write the summary to a file instead of stdout")
	summaryCmd.Flags().IntVar(&sumFlags.maxRows, "max-rows", 0, "read at most this many rows (0 = all)")
	summaryCmd.Flags().StringVar(&sumFlags.delimiter, "delimiter", "", "field delimiter: comma|tab|semicolon (default by extension)")
}
