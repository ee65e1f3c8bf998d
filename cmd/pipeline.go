package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/KaramelBytes/staffclean-cli/internal/cleaner"
	cfgpkg "github.com/KaramelBytes/staffclean-cli/internal/config"
	"github.com/KaramelBytes/staffclean-cli/internal/journal"
	"github.com/KaramelBytes/staffclean-cli/internal/table"
)

const journalTimeout = 10 * time.Second

// errMaxRowsWrite guards persisted output against a truncated read.
var errMaxRowsWrite = errors.New("--max-rows cannot be combined with writing the cleaned table")

// pipelineFlags are overrides shared by the commands that run the pipeline.
type pipelineFlags struct {
	delimiter string
	maxRows   int // only for commands that do not persist
	threshold float64
	noJournal bool
}

func (f pipelineFlags) options(c *cfgpkg.Global) (cleaner.Options, table.ReadOptions, error) {
	opt, err := c.CleanerOptions()
	if err != nil {
		return cleaner.Options{}, table.ReadOptions{}, err
	}
	if f.threshold > 0 {
		opt.OutlierThreshold = f.threshold
	}
	ro, err := c.ReadOptions()
	if err != nil {
		return cleaner.Options{}, table.ReadOptions{}, err
	}
	if f.delimiter != "" {
		d, err := table.ParseDelimiter(f.delimiter)
		if err != nil {
			return cleaner.Options{}, table.ReadOptions{}, fmt.Errorf("unsupported --delimiter: %w", err)
		}
		ro.Delimiter = d
	}
	ro.MaxRows = f.maxRows
	return opt, ro, nil
}

// cleanTable runs the pipeline over input. When output is non-empty the
// cleaned table is written there and the run is journaled.
func cleanTable(c *cfgpkg.Global, f pipelineFlags, input, output string) (*cleaner.Result, *journal.Run, error) {
	if output != "" && f.maxRows > 0 {
		return nil, nil, errMaxRowsWrite
	}
	opt, ro, err := f.options(c)
	if err != nil {
		return nil, nil, err
	}
	p := cleaner.NewPipeline(opt, logger)
	run := journal.NewRun(input, output)

	var res *cleaner.Result
	if output == "" {
		fr, err := table.ReadFile(input, ro)
		if err != nil {
			return nil, nil, err
		}
		if res, err = p.Run(fr); err != nil {
			return nil, nil, err
		}
		return res, nil, nil
	}
	if res, err = p.CleanFile(input, output, ro); err != nil {
		return nil, nil, err
	}
	run.Finish(res)
	if c.JournalEnabled && !f.noJournal {
		if err := recordRun(c.JournalPath, run, res.Operations); err != nil {
			// The cleaned file is already written; a journal failure is not fatal.
			logger.Warn("journal write failed", zap.Error(err))
			fmt.Printf("⚠ Warning: journal not updated: %v\n", err)
			return res, nil, nil
		}
	}
	return res, &run, nil
}

func recordRun(path string, run journal.Run, ops []cleaner.Operation) error {
	j, err := journal.Open(path, logger)
	if err != nil {
		return err
	}
	defer j.Close()
	ctx, cancel := context.WithTimeout(context.Background(), journalTimeout)
	defer cancel()
	return j.RecordRun(ctx, run, ops)
}

func printResult(res *cleaner.Result, output string, run *journal.Run) {
	for _, w := range res.Warnings {
		fmt.Printf("⚠ %s\n", w)
	}
	if output != "" {
		fmt.Printf("✓ Cleaned %d rows (%d operations, %d warnings) -> %s\n", res.Table.Len(), len(res.Operations), len(res.Warnings), output)
	} else {
		fmt.Printf("✓ Cleaned %d rows (%d operations, %d warnings)\n", res.Table.Len(), len(res.Operations), len(res.Warnings))
	}
	for _, kc := range cleaner.CountByKind(res.Operations) {
		fmt.Printf("  %-18s %d\n", kc.Kind, kc.Count)
	}
	if run != nil {
		fmt.Printf("Run: %s\n", run.ID)
	}
}
