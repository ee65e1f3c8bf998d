package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/KaramelBytes/staffclean-cli/internal/api"
	"github.com/KaramelBytes/staffclean-cli/internal/cleaner"
	cfgpkg "github.com/KaramelBytes/staffclean-cli/internal/config"
	"github.com/KaramelBytes/staffclean-cli/internal/table"
)

const shutdownTimeout = 5 * time.Second

var (
	serveAddr    string
	serveCleaned bool
	serveNoWrite bool
	serveTopN    int
	serveFlags   pipelineFlags
)

var serveCmd = &cobra.Command{
	Use:   "serve [input]",
	Short: "Clean a table and serve read-only queries over HTTP",
	Long: `Cleans the input table (unless --cleaned is given), writes it unless --no-write, and
serves /top_n_employees, /employee_count, /department_summary and
/charts/department_salaries until interrupted.`,
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
		t, err := loadServeTable(c, input)
		if err != nil {
			return err
		}
		addr := c.ListenAddr
		if serveAddr != "" {
			addr = serveAddr
		}
		topN := c.DefaultTopN
		if serveTopN > 0 {
			topN = serveTopN
		}

		srv := &http.Server{
			Addr:              addr,
			Handler:           api.NewServer(t, topN, logger).Router(),
			ReadHeaderTimeout: 10 * time.Second,
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		errCh := make(chan error, 1)
		go func() {
			logger.Info("listening", zap.String("addr", addr), zap.Int("rows", t.Len()))
			errCh <- srv.ListenAndServe()
		}()
		fmt.Printf("✓ Serving %d rows on http://%s\n", t.Len(), addr)

		select {
		case err := <-errCh:
			if !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("serve: %w", err)
			}
			return nil
		case <-ctx.Done():
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		logger.Info("server stopped")
		return nil
	},
}

// loadServeTable returns the table to serve: read as already cleaned, or
// cleaned now and optionally persisted.
func loadServeTable(c *cfgpkg.Global, input string) (*table.Table, error) {
	if input == "" {
		return nil, fmt.Errorf("no input file: pass one or set input_path")
	}
	if serveCleaned {
		opt, ro, err := serveFlags.options(c)
		if err != nil {
			return nil, err
		}
		fr, err := table.ReadFile(input, ro)
		if err != nil {
			return nil, err
		}
		t, _, warns := cleaner.Normalize(fr, opt)
		for _, w := range warns {
			logger.Warn(w)
		}
		if v := cleaner.Check(t, opt); len(v) > 0 {
			logger.Warn("served table is not fully clean", zap.Int("violations", len(v)), zap.String("first", v[0]))
		}
		return t, nil
	}
	output := ""
	if !serveNoWrite {
		output = c.OutputFor(input)
	}
	res, run, err := cleanTable(c, serveFlags, input, output)
	if err != nil {
		return nil, err
	}
	printResult(res, output, run)
	return res.Table, nil
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides listen_addr)")
	serveCmd.Flags().BoolVar(&serveCleaned, "cleaned", false, "input is already cleaned; skip the pipeline")
	serveCmd.Flags().BoolVar(&serveNoWrite, "no-write", false, "do not write the cleaned table")
	serveCmd.Flags().IntVar(&serveTopN, "top-n", 0, "default n for /top_n_employees (overrides default_top_n)")
	serveCmd.Flags().StringVar(&serveFlags.delimiter, "delimiter", "", "field delimiter: comma|tab|semicolon (default by extension)")
	serveCmd.Flags().Float64Var(&serveFlags.threshold, "threshold", 0, "salary outlier threshold (overrides config)")
	serveCmd.Flags().BoolVar(&serveFlags.noJournal, "no-journal", false, "do not record the cleaning run in the journal")
}
