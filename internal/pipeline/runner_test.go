package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/enrich-cli/internal/model"
	"github.com/sells-group/enrich-cli/internal/sheet"
)

func investorTable() *sheet.Table {
	return sheet.NewTable("Investors",
		[]string{"Name", "Country", "Favorite URL"},
		[][]string{
			{"Acme Ventures", "Jordan", "acme.vc"},
			{"", "Egypt", ""},
			{"Panic Capital", "Tunisia", ""},
			{"Beta Angels", "Lebanon", ""},
		},
	)
}

func stubOutcome(notePrefix string, org model.Organization, cls string) Outcome {
	rec := &model.ExtractionRecord{Name: org.Name, FundingClassification: cls}
	return Outcome{
		Org:     org,
		Record:  rec,
		Website: org.Website,
		Row: model.NormalizedRow{
			"Funding Classification": model.Str(cls),
			"Additional Info":        model.Str(notePrefix + " " + org.Name),
		},
	}
}

func TestRunner_IsolatesRowFailures(t *testing.T) {
	cfg := testConfig()
	dir := t.TempDir()
	rec := newMemRecorder()

	proc := processorFunc(func(_ context.Context, org model.Organization) Outcome {
		if strings.HasPrefix(org.Name, "Panic") {
			panic("boom")
		}
		return stubOutcome("note for", org, model.ClassInvestmentFirms)
	})

	table := investorTable()
	r := NewRunner(cfg, proc, rec, NewCheckpointer(dir, cfg.Excel.OutCols))
	sum := r.Run(context.Background(), table, []int{0, 1, 2, 3})

	assert.Equal(t, 4, sum.Total)
	assert.Equal(t, 2, sum.Succeeded)
	assert.Equal(t, 1, sum.Failed)
	assert.Equal(t, 1, sum.Skipped)
	assert.Equal(t, 1, sum.Checkpoints)
	assert.False(t, sum.Interrupted)

	assert.Equal(t, model.ClassInvestmentFirms, table.Get(0, "Funding Classification"))
	assert.Equal(t, "note for Acme Ventures", table.Get(0, "Additional Info"))
	assert.True(t, table.IsBlank(2, "Funding Classification"))
	assert.Equal(t, "note for Beta Angels", table.Get(3, "Additional Info"))
	for _, c := range cfg.Excel.OutCols.Names() {
		assert.True(t, table.HasColumn(c), c)
	}

	assert.Equal(t, []int{0, 2, 3}, rec.created)
	assert.Len(t, rec.complete, 2)
	require.Len(t, rec.failed, 1)
	for _, msg := range rec.failed {
		assert.Contains(t, msg, "panic on row 2")
	}

	_, err := os.Stat(filepath.Join(dir, "Investors (enriched).xlsx"))
	assert.NoError(t, err)

	csvTable, err := sheet.ReadCSV(filepath.Join(dir, CSVName))
	require.NoError(t, err)
	assert.Equal(t, 2, csvTable.Len())
	assert.Equal(t, "0", csvTable.Get(0, "index"))
	assert.Equal(t, "acme.vc", csvTable.Get(0, "website"))
	assert.Equal(t, "3", csvTable.Get(1, "index"))
	assert.Equal(t, model.ClassInvestmentFirms, csvTable.Get(1, "Funding Classification"))
}

func TestRunner_PeriodicCheckpoints(t *testing.T) {
	cfg := testConfig()
	cfg.Checkpoint.Every = 1

	proc := processorFunc(func(_ context.Context, org model.Organization) Outcome {
		return stubOutcome("n", org, model.ClassAccelerators)
	})

	r := NewRunner(cfg, proc, nil, NewCheckpointer(t.TempDir(), cfg.Excel.OutCols))
	sum := r.Run(context.Background(), investorTable(), []int{0, 3})

	assert.Equal(t, 2, sum.Succeeded)
	assert.Equal(t, 3, sum.Checkpoints)
}

func TestRunner_StopsOnCancel(t *testing.T) {
	cfg := testConfig()
	ctx, cancel := context.WithCancel(context.Background())

	var calls int
	proc := processorFunc(func(ctx context.Context, org model.Organization) Outcome {
		calls++
		cancel()
		out := stubOutcome("n", org, model.ClassAccelerators)
		out.Err = ctx.Err()
		return out
	})

	table := investorTable()
	sum := NewRunner(cfg, proc, newMemRecorder(), nil).Run(ctx, table, []int{0, 3})

	assert.True(t, sum.Interrupted)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 0, sum.Succeeded)
	assert.Equal(t, 0, sum.Failed)
	assert.True(t, table.IsBlank(0, "Funding Classification"))
}

func TestSelectRows(t *testing.T) {
	cfg := testConfig()
	cols := cfg.Excel.OutCols
	table := sheet.NewTable("S",
		[]string{"Name", cols.FundingClassification, cols.Note},
		[][]string{
			{"a", "", ""},
			{"b", "Accelerators", ""},
			{"c", "", "done"},
			{"d", "", ""},
			{"e", "", ""},
		},
	)

	assert.Equal(t, []int{0, 1, 2, 3, 4}, SelectRows(table, cols, SelectOptions{}))
	assert.Equal(t, []int{0, 3, 4}, SelectRows(table, cols, SelectOptions{OnlyMissing: true}))
	assert.Equal(t, []int{0, 1, 3, 4}, SelectRows(table, cols, SelectOptions{Resume: true}))
	assert.Equal(t, []int{3, 4}, SelectRows(table, cols, SelectOptions{OnlyMissing: true, Start: 1}))
	assert.Equal(t, []int{0, 3}, SelectRows(table, cols, SelectOptions{OnlyMissing: true, Limit: 2}))
	assert.Empty(t, SelectRows(table, cols, SelectOptions{Start: 10}))
}
