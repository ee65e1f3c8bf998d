package cleaner

import (
	"bytes"
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/KaramelBytes/staffclean-cli/internal/table"
)

var header = []string{table.ColID, table.ColName, table.ColDepartment, table.ColSalary, table.ColDateOfBirth}

func frame(rows ...[]string) *table.Frame {
	return &table.Frame{Name: "staff.csv", Delimiter: ',', Header: header, Rows: rows}
}

func sampleFrame() *table.Frame {
	return frame(
		[]string{"0", "Ada", "Engineering", "90000", "1990-01-01"},
		[]string{"", "Bob", "not_specified", "-50000", "1985-05-05"},
		[]string{"2", "Cy", "HR", "not_available", ""},
		[]string{"3", "Di", "HR", "40000", "bad"},
		[]string{"", "Ed", "Engineering", "2000000", "1970-01-01"},
	)
}

func salaries(t *table.Table) []float64 {
	out := make([]float64, len(t.Records))
	for i, r := range t.Records {
		if r.Salary != nil {
			out[i] = *r.Salary
		}
	}
	return out
}

func TestNormalizePlaceholdersAndCoercion(t *testing.T) {
	tb, ops, warns := Normalize(sampleFrame(), DefaultOptions())
	require.Empty(t, warns)
	require.Len(t, tb.Records, 5)

	assert.Nil(t, tb.Records[1].ID)
	assert.Equal(t, "Unknown", tb.Records[1].Department)
	require.NotNil(t, tb.Records[1].Salary)
	assert.Equal(t, -50000.0, *tb.Records[1].Salary)
	assert.Nil(t, tb.Records[2].Salary)
	assert.Nil(t, tb.Records[3].DateOfBirth)
	require.NotNil(t, tb.Records[0].DateOfBirth)
	assert.Equal(t, "1990-01-01", tb.Records[0].DateOfBirth.Format(table.DateLayout))

	kinds := map[string]int{}
	for _, op := range ops {
		kinds[op.Kind]++
	}
	assert.Equal(t, 2, kinds[OpPlaceholder])
	assert.Equal(t, 1, kinds[OpCoerceNull])
}

func TestNormalizeWarnsOnMissingColumn(t *testing.T) {
	fr := &table.Frame{
		Header: []string{table.ColID, table.ColName, table.ColDepartment, table.ColSalary},
		Rows:   [][]string{{"0", "Ada", "HR", "10"}},
	}
	tb, _, warns := Normalize(fr, DefaultOptions())
	require.Equal(t, []string{"column Date_of_Birth is not in the provided table"}, warns)
	assert.Len(t, tb.Records, 1)
	assert.False(t, tb.HasColumn(table.ColDateOfBirth))
}

func TestNormalizeIntegralFloatIDAndThousands(t *testing.T) {
	opt := DefaultOptions()
	opt.ThousandsSeparator = ','
	tb, _, _ := Normalize(frame([]string{"4.0", "Ada", "HR", "1,200.5", ""}), opt)
	require.NotNil(t, tb.Records[0].ID)
	assert.Equal(t, int64(4), *tb.Records[0].ID)
	require.NotNil(t, tb.Records[0].Salary)
	assert.Equal(t, 1200.5, *tb.Records[0].Salary)
}

func TestNormalizeBlankDepartmentBecomesUnknown(t *testing.T) {
	tb, _, _ := Normalize(frame([]string{"0", "Ada", "  ", "10", ""}), DefaultOptions())
	assert.Equal(t, "Unknown", tb.Records[0].Department)
}

func TestCorrectSalariesIdempotent(t *testing.T) {
	tb, _, _ := Normalize(sampleFrame(), DefaultOptions())
	ops := CorrectSalaries(tb)
	require.Len(t, ops, 1)
	assert.Equal(t, "-50000", ops[0].Original)
	once := salaries(tb)
	assert.Empty(t, CorrectSalaries(tb))
	assert.Equal(t, once, salaries(tb))
	for _, r := range tb.Records {
		if r.Salary != nil {
			assert.GreaterOrEqual(t, *r.Salary, 0.0)
		}
	}
	assert.Nil(t, tb.Records[2].Salary)
}

func TestImputeIDsDenseSerial(t *testing.T) {
	tb, _, _ := Normalize(sampleFrame(), DefaultOptions())
	ops, err := ImputeIDs(tb, 0)
	require.NoError(t, err)
	assert.Len(t, ops, 2)
	for i, r := range tb.Records {
		require.NotNil(t, r.ID)
		assert.Equal(t, int64(i), *r.ID)
	}
	assert.Equal(t, table.Int8, tb.IDWidth)
}

func TestImputeIDsRejectsNonSerial(t *testing.T) {
	tb, _, _ := Normalize(frame(
		[]string{"", "Ada", "HR", "1", ""},
		[]string{"7", "Bob", "HR", "1", ""},
	), DefaultOptions())
	_, err := ImputeIDs(tb, 0)
	require.True(t, errors.Is(err, ErrIDNotSerial), "err = %v", err)
	assert.Nil(t, tb.Records[0].ID)
	assert.Equal(t, table.WidthUnset, tb.IDWidth)
}

func TestImputeSalariesGroupMean(t *testing.T) {
	tb, _, _ := Normalize(frame(
		[]string{"0", "A", "HR", "100", ""},
		[]string{"1", "B", "HR", "", ""},
		[]string{"2", "C", "HR", "201", ""},
		[]string{"3", "D", "HR", "", ""},
		[]string{"4", "E", "Engineering", "1000", ""},
	), DefaultOptions())
	ops, err := ImputeSalaries(tb)
	require.NoError(t, err)
	require.Len(t, ops, 2)
	for _, op := range ops {
		assert.Equal(t, OpGroupMeanFill, op.Kind)
	}
	assert.InDelta(t, 150.5, *tb.Records[1].Salary, 1e-9)
	assert.InDelta(t, 150.5, *tb.Records[3].Salary, 1e-9)
}

func TestImputeSalariesGlobalFallback(t *testing.T) {
	tb, _, _ := Normalize(frame(
		[]string{"0", "A", "HR", "100", ""},
		[]string{"1", "B", "Engineering", "300", ""},
		[]string{"2", "C", "Sales", "", ""},
	), DefaultOptions())
	ops, err := ImputeSalaries(tb)
	require.NoError(t, err)
	require.Len(t, ops, 1)
	assert.Equal(t, OpGlobalMeanFill, ops[0].Kind)
	assert.InDelta(t, 200.0, *tb.Records[2].Salary, 1e-9)
}

func TestImputeSalariesNoData(t *testing.T) {
	tb, _, _ := Normalize(frame([]string{"0", "A", "HR", "", ""}), DefaultOptions())
	_, err := ImputeSalaries(tb)
	assert.ErrorIs(t, err, ErrNoSalaryData)
}

func TestImputeLeavesDateOfBirth(t *testing.T) {
	tb, _, _ := Normalize(sampleFrame(), DefaultOptions())
	_, err := Impute(tb, DefaultOptions())
	require.NoError(t, err)
	assert.Nil(t, tb.Records[2].DateOfBirth)
	assert.Nil(t, tb.Records[3].DateOfBirth)
}

func TestCapOutliersUsesSubThresholdMax(t *testing.T) {
	tb, _, _ := Normalize(frame(
		[]string{"0", "A", "Engineering", "90000", ""},
		[]string{"1", "B", "Engineering", "120000", ""},
		[]string{"2", "C", "Engineering", "5000000", ""},
		[]string{"3", "D", "Sales", "3000000", ""},
	), DefaultOptions())
	ops, warns := CapOutliers(tb, DefaultOptions())
	assert.Empty(t, warns)
	require.Len(t, ops, 1)
	assert.Equal(t, 120000.0, *tb.Records[2].Salary)
	assert.Equal(t, 3000000.0, *tb.Records[3].Salary, "unwatched department is not capped")
}

func TestCapOutliersUndefinedCapSkips(t *testing.T) {
	tb, _, _ := Normalize(frame(
		[]string{"0", "A", "HR", "2000000", ""},
		[]string{"1", "B", "HR", "1000000", ""},
	), DefaultOptions())
	ops, warns := CapOutliers(tb, DefaultOptions())
	assert.Empty(t, ops)
	require.Len(t, warns, 1)
	assert.Contains(t, warns[0], "HR")
	assert.Equal(t, []float64{2000000, 1000000}, salaries(tb))
}

func TestPipelineExampleScenario(t *testing.T) {
	res, err := NewPipeline(DefaultOptions(), zap.NewNop()).Run(sampleFrame())
	require.NoError(t, err)
	tb := res.Table

	bob := tb.Records[1]
	require.NotNil(t, bob.ID)
	assert.Equal(t, int64(1), *bob.ID)
	assert.Equal(t, 50000.0, *bob.Salary)
	assert.Equal(t, "Unknown", bob.Department)

	assert.Equal(t, []float64{90000, 50000, 40000, 40000, 90000}, salaries(tb))
	assert.Equal(t, table.Int8, tb.IDWidth)
	assert.Empty(t, res.Warnings)
	assert.Empty(t, Check(tb, DefaultOptions()))
}

func TestPipelineRoundTripIsNoOp(t *testing.T) {
	p := NewPipeline(DefaultOptions(), nil)
	res, err := p.Run(sampleFrame())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, table.Write(&buf, res.Table))
	fr, err := table.Read(&buf, ',', 0)
	require.NoError(t, err)

	again, ops, warns := Normalize(fr, DefaultOptions())
	assert.Empty(t, ops)
	assert.Empty(t, warns)
	if diff := cmp.Diff(res.Table.Records, again.Records); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, res.Table.Columns, again.Columns)
}

func TestCleanFileWritesOutput(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "staff.csv")
	out := filepath.Join(dir, "clean", "staff.csv")
	w := &table.Table{Delimiter: ',', Columns: header, Records: []table.Record{
		{Name: "Ada", Department: "HR", Salary: table.Float64Ptr(-10)},
		{Name: "Bob", Department: "HR"},
	}}
	require.NoError(t, table.WriteFile(w, in))

	res, err := NewPipeline(DefaultOptions(), nil).CleanFile(in, out, table.ReadOptions{})
	require.NoError(t, err)
	assert.Len(t, res.Operations, 4)

	fr, err := table.ReadFile(out, table.ReadOptions{})
	require.NoError(t, err)
	v, _ := fr.Cell(1, table.ColSalary)
	assert.Equal(t, "10", v)
	id, _ := fr.Cell(1, table.ColID)
	assert.Equal(t, "1", id)
}

func TestCountByKind(t *testing.T) {
	got := CountByKind([]Operation{{Kind: OpSerialFill}, {Kind: OpAbsolute}, {Kind: OpSerialFill}})
	want := []KindCount{{Kind: OpAbsolute, Count: 1}, {Kind: OpSerialFill, Count: 2}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("CountByKind mismatch (-want +got):\n%s", diff)
	}
}

func TestRoundTripWithCustomDateLayout(t *testing.T) {
	opt := DefaultOptions()
	opt.DateLayout = "02/01/2006"
	res, err := NewPipeline(opt, nil).Run(frame(
		[]string{"0", "Ada", "HR", "100", "05/06/1990"},
		[]string{"1", "Bob", "HR", "200", ""},
	))
	require.NoError(t, err)
	require.NotNil(t, res.Table.Records[0].DateOfBirth)

	var buf bytes.Buffer
	require.NoError(t, table.Write(&buf, res.Table))
	assert.Contains(t, buf.String(), ",1990-06-05\n")
	fr, err := table.Read(&buf, ',', 0)
	require.NoError(t, err)

	again, ops, _ := Normalize(fr, opt)
	assert.Empty(t, ops)
	if diff := cmp.Diff(res.Table.Records, again.Records); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestValidateThousandsSeparator(t *testing.T) {
	for _, r := range []rune{0, ',', ' ', '\'', '_'} {
		assert.NoError(t, ValidateThousandsSeparator(r), "%q", r)
	}
	for _, r := range []rune{'.', '-', '+', '0', '7', 'e'} {
		assert.Error(t, ValidateThousandsSeparator(r), "%q", r)
	}
}

func TestRoundTripWithThousandsSeparator(t *testing.T) {
	opt := DefaultOptions()
	opt.ThousandsSeparator = ','
	res, err := NewPipeline(opt, nil).Run(frame(
		[]string{"0", "Ada", "HR", "1,200", ""},
		[]string{"1", "Bob", "HR", "", ""},
		[]string{"2", "Cy", "HR", "1,201", ""},
	))
	require.NoError(t, err)
	assert.Equal(t, 1200.5, *res.Table.Records[1].Salary)

	var buf bytes.Buffer
	require.NoError(t, table.Write(&buf, res.Table))
	fr, err := table.Read(&buf, ',', 0)
	require.NoError(t, err)
	again, _, _ := Normalize(fr, opt)
	assert.Equal(t, salaries(res.Table), salaries(again))
}

func TestPipelineFillsEmptyDepartmentWithGlobalMean(t *testing.T) {
	res, err := NewPipeline(DefaultOptions(), zap.NewNop()).Run(frame(
		[]string{"0", "Ada", "Engineering", "90000", "1990-01-01"},
		[]string{"", "Bob", "not_specified", "-50000", "1985-05-05"},
		[]string{"2", "Cy", "HR", "40000", ""},
		[]string{"3", "Sam", "Sales", "", ""},
		[]string{"4", "Sue", "Sales", "not_applicable", ""},
	))
	require.NoError(t, err)
	tb := res.Table

	bob := tb.Records[1]
	require.NotNil(t, bob.ID)
	assert.Equal(t, int64(1), *bob.ID)
	assert.Equal(t, "Unknown", bob.Department)
	assert.Equal(t, 50000.0, *bob.Salary)

	// Global mean of the corrected known salaries: (90000 + 50000 + 40000) / 3.
	assert.InDelta(t, 60000.0, *tb.Records[3].Salary, 1e-9)
	assert.InDelta(t, 60000.0, *tb.Records[4].Salary, 1e-9)
	global := 0
	for _, op := range res.Operations {
		if op.Kind == OpGlobalMeanFill {
			global++
		}
	}
	assert.Equal(t, 2, global)
	assert.Empty(t, Check(tb, DefaultOptions()))
}
