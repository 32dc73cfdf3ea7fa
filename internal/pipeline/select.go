package pipeline

import (
	"github.com/sells-group/enrich-cli/internal/config"
	"github.com/sells-group/enrich-cli/internal/sheet"
)

// SelectOptions filters the rows a run processes.
type SelectOptions struct {
	OnlyMissing bool // rows whose output columns are all blank
	Resume      bool // rows whose note column is blank
	Start       int  // rows with index >= Start
	Limit       int  // at most Limit rows; 0 means no limit
}

// SelectRows returns the row indices to process, applying the filters in
// the order only-missing, resume, start, limit.
func SelectRows(t *sheet.Table, cols config.OutputColumns, opts SelectOptions) []int {
	var out []int
	for i := 0; i < t.Len(); i++ {
		if opts.OnlyMissing && !allBlank(t, i, cols.Names()) {
			continue
		}
		if opts.Resume && !t.IsBlank(i, cols.Note) {
			continue
		}
		if opts.Start > 0 && i < opts.Start {
			continue
		}
		out = append(out, i)
	}
	if opts.Limit > 0 && len(out) > opts.Limit {
		out = out[:opts.Limit]
	}
	return out
}

func allBlank(t *sheet.Table, row int, cols []string) bool {
	for _, c := range cols {
		if !t.IsBlank(row, c) {
			return false
		}
	}
	return true
}
