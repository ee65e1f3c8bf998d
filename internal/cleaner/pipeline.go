package cleaner

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/KaramelBytes/staffclean-cli/internal/table"
)

// Result is the outcome of one pipeline run.
type Result struct {
	Table      *table.Table
	Operations []Operation
	Warnings   []string
}

// Pipeline runs the cleaning stages in fixed order: normalize, correct,
// impute, cap.
type Pipeline struct {
	opt    Options
	logger *zap.Logger
}

// NewPipeline returns a pipeline using opt. A nil logger discards output.
func NewPipeline(opt Options, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{opt: opt, logger: logger}
}

// Run cleans the frame. The returned table satisfies the cleaned-table
// invariants except where a warning says otherwise.
func (p *Pipeline) Run(fr *table.Frame) (*Result, error) {
	res := &Result{}
	log := p.logger.With(zap.String("table", fr.Name), zap.Int("rows", len(fr.Rows)))

	start := time.Now()
	t, ops, warns := Normalize(fr, p.opt)
	res.Table = t
	p.stage(log, "normalize", start, ops, warns, res)

	start = time.Now()
	p.stage(log, "correct", start, CorrectSalaries(t), nil, res)

	start = time.Now()
	ops, err := Impute(t, p.opt)
	if err != nil {
		log.Error("stage failed", zap.String("stage", "impute"), zap.Error(err))
		return nil, fmt.Errorf("impute: %w", err)
	}
	p.stage(log, "impute", start, ops, nil, res)

	start = time.Now()
	ops, warns = CapOutliers(t, p.opt)
	p.stage(log, "cap_outliers", start, ops, warns, res)

	log.Info("pipeline complete",
		zap.Int("operations", len(res.Operations)),
		zap.Int("warnings", len(res.Warnings)),
		zap.String("id_width", t.IDWidth.String()))
	return res, nil
}

func (p *Pipeline) stage(log *zap.Logger, name string, start time.Time, ops []Operation, warns []string, res *Result) {
	for _, w := range warns {
		log.Warn(w, zap.String("stage", name))
	}
	for _, op := range ops {
		log.Debug("cell rewritten",
			zap.String("stage", name),
			zap.Int("row", op.Row),
			zap.String("column", op.Column),
			zap.String("original", op.Original),
			zap.String("new", op.New),
			zap.String("reason", op.Reason))
	}
	log.Info("stage done",
		zap.String("stage", name),
		zap.Int("operations", len(ops)),
		zap.Duration("elapsed", time.Since(start)))
	res.Operations = append(res.Operations, ops...)
	res.Warnings = append(res.Warnings, warns...)
}

// CleanFile reads in, runs the pipeline and writes the cleaned table to out.
func (p *Pipeline) CleanFile(in, out string, ro table.ReadOptions) (*Result, error) {
	fr, err := table.ReadFile(in, ro)
	if err != nil {
		return nil, err
	}
	res, err := p.Run(fr)
	if err != nil {
		return nil, err
	}
	if err := table.WriteFile(res.Table, out); err != nil {
		return nil, err
	}
	p.logger.Info("cleaned table written", zap.String("path", out), zap.Int("rows", res.Table.Len()))
	return res, nil
}

// Check lists violations of the cleaned-table invariants in t. Columns the
// table does not carry are not checked.
func Check(t *table.Table, opt Options) []string {
	var out []string
	watch := map[string]bool{}
	for _, d := range opt.WatchDepartments {
		watch[d] = true
	}
	hasID := t.HasColumn(table.ColID)
	hasSalary := t.HasColumn(table.ColSalary)
	for i, r := range t.Records {
		if hasID {
			switch {
			case r.ID == nil:
				out = append(out, fmt.Sprintf("row %d: missing ID", i))
			case *r.ID != opt.IDBase+int64(i):
				out = append(out, fmt.Sprintf("row %d: ID %d breaks serial", i, *r.ID))
			}
		}
		if hasSalary {
			switch {
			case r.Salary == nil:
				out = append(out, fmt.Sprintf("row %d: missing Salary", i))
			case *r.Salary < 0:
				out = append(out, fmt.Sprintf("row %d: negative Salary %s", i, table.FormatFloat(*r.Salary)))
			case watch[r.Department] && *r.Salary >= opt.OutlierThreshold:
				out = append(out, fmt.Sprintf("row %d: %s Salary %s at or above threshold", i, r.Department, table.FormatFloat(*r.Salary)))
			}
		}
		if r.Department == "" && t.HasColumn(table.ColDepartment) {
			out = append(out, fmt.Sprintf("row %d: blank Department", i))
		}
		for _, rule := range opt.Placeholders {
			if rule.Column == table.ColDepartment && matchesToken(r.Department, rule.Tokens) {
				out = append(out, fmt.Sprintf("row %d: placeholder Department %q", i, r.Department))
			}
		}
	}
	return out
}
