package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/staffclean-cli/internal/cleaner"
	"github.com/KaramelBytes/staffclean-cli/internal/journal"
	"github.com/KaramelBytes/staffclean-cli/internal/utils"
)

var (
	histLimit int
	histRunID string
	histJSON  bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List journaled cleaning runs or the operations of one run",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := loadedConfig()
		if err != nil {
			return err
		}
		j, err := journal.Open(c.JournalPath, logger)
		if err != nil {
			return err
		}
		defer j.Close()
		ctx, cancel := context.WithTimeout(cmd.Context(), journalTimeout)
		defer cancel()

		if histRunID != "" {
			return showRun(ctx, j, histRunID)
		}
		runs, err := j.Runs(ctx, histLimit)
		if err != nil {
			return err
		}
		if histJSON {
			return printJSON(runs)
		}
		if len(runs) == 0 {
			fmt.Println("(no runs)")
			return nil
		}
		for _, r := range runs {
			fmt.Printf("- %s %s %s -> %s (rows %d, operations %d, id %s)\n",
				r.ID, r.StartedAt.Local().Format("2006-01-02 15:04:05"), r.InputPath, r.OutputPath, r.Rows, r.Operations, r.IDWidth)
		}
		return nil
	},
}

func showRun(ctx context.Context, j *journal.Journal, id string) error {
	run, err := j.Run(ctx, id)
	if err != nil {
		return err
	}
	ops, err := j.Operations(ctx, id)
	if err != nil {
		return err
	}
	if histJSON {
		return printJSON(struct {
			Run        journal.Run         `json:"run"`
			Operations []cleaner.Operation `json:"operations"`
		}{run, ops})
	}
	fmt.Printf("Run: %s\n", run.ID)
	fmt.Printf("Input: %s\nOutput: %s\n", run.InputPath, run.OutputPath)
	fmt.Printf("Rows: %d (ID width %s)\n", run.Rows, run.IDWidth)
	fmt.Printf("Started: %s\nFinished: %s\n", run.StartedAt.Local().Format("2006-01-02 15:04:05"), run.FinishedAt.Local().Format("2006-01-02 15:04:05"))
	for _, w := range run.Warnings {
		fmt.Printf("⚠ %s\n", w)
	}
	for _, kc := range cleaner.CountByKind(ops) {
		fmt.Printf("  %-18s %d\n", kc.Kind, kc.Count)
	}
	for _, op := range ops {
		fmt.Printf("  %s\n", op)
	}
	return nil
}

func printJSON(v any) error {
	b, err := utils.PrettyJSON(v)
	if err != nil {
		return err
	}
	fmt.Println(string(b))
	return nil
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntVarP(&histLimit, "limit", "n", 10, "number of runs to list (0 = all)")
	historyCmd.Flags().StringVar(&histRunID, "run", "", "show the operations of this run")
	historyCmd.Flags().BoolVar(&histJSON, "json", false, "print JSON")
}
