package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/staffclean-cli/internal/cleaner"
)

var (
	cleanOutputPath string
	cleanFlags      pipelineFlags
	cleanVerbose    bool
	cleanCheck      bool
)

var cleanCmd = &cobra.Command{
	Use:   "clean [input]",
	Short: "Clean an employee CSV/TSV and write the result",
	Long: `Runs the cleaning pipeline (normalize, correct, impute, cap outliers) over the input
table and writes the cleaned table in the same format. The input defaults to input_path
from the configuration; the output defaults to <input>_cleaned.<ext>.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := loadedConfig()
		if err != nil {
			return err
		}
		input := c.InputPath
		if len(args) == 1 {
			input = args[0]
		}
		if input == "" {
			return fmt.Errorf("no input file: pass one or set input_path")
		}
		output := cleanOutputPath
		if output == "" {
			output = c.OutputFor(input)
		}
		if output == input {
			return fmt.Errorf("output path must differ from input: %s", input)
		}

		res, run, err := cleanTable(c, cleanFlags, input, output)
		if err != nil {
			return err
		}
		printResult(res, output, run)
		if cleanVerbose {
			for _, op := range res.Operations {
				fmt.Printf("  %s\n", op)
			}
		}
		if cleanCheck {
			opt, _, err := cleanFlags.options(c)
			if err != nil {
				return err
			}
			if v := cleaner.Check(res.Table, opt); len(v) > 0 {
				for _, s := range v {
					fmt.Printf("✗ %s\n", s)
				}
				return fmt.Errorf("%d invariant violation(s) in cleaned table", len(v))
			}
			fmt.Println("✓ Cleaned table passes all checks")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(cleanCmd)
	cleanCmd.Flags().StringVarP(&cleanOutputPath, "output", "o", "", "write the cleaned table to this path")
	cleanCmd.Flags().StringVar(&cleanFlags.delimiter, "delimiter", "", "field delimiter: comma|tab|semicolon (default by extension)")
	cleanCmd.Flags().Float64Var(&cleanFlags.threshold, "threshold", 0, "salary outlier threshold (overrides config)")
	cleanCmd.Flags().BoolVar(&cleanFlags.noJournal, "no-journal", false, "do not record this run in the journal")
	cleanCmd.Flags().BoolVarP(&cleanVerbose, "verbose", "v", false, "print every cell rewrite")
	cleanCmd.Flags().BoolVar(&cleanCheck, "check", false, "verify the cleaned table and fail on violations")
}
