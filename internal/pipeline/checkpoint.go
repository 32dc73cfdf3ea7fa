package pipeline

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/rotisserie/eris"

	"github.com/sells-group/enrich-cli/internal/config"
	"github.com/sells-group/enrich-cli/internal/sheet"
)

// CSVName is the flat snapshot of processed rows.
const CSVName = "enriched.csv"

// Checkpointer rewrites the run's output artifacts in the output directory.
type Checkpointer struct {
	dir     string
	outCols config.OutputColumns
}

// NewCheckpointer creates a Checkpointer writing into dir.
func NewCheckpointer(dir string, outCols config.OutputColumns) *Checkpointer {
	return &Checkpointer{dir: dir, outCols: outCols}
}

// WorkbookPath returns the enriched workbook path for a sheet.
func (c *Checkpointer) WorkbookPath(sheetName string) string {
	if sheetName == "" {
		sheetName = "Sheet1"
	}
	return filepath.Join(c.dir, sheetName+" (enriched).xlsx")
}

// CSVPath returns the processed-rows snapshot path.
func (c *Checkpointer) CSVPath() string {
	return filepath.Join(c.dir, CSVName)
}

// Write replaces both artifacts: the CSV of processed rows and the full
// enriched workbook.
func (c *Checkpointer) Write(table *sheet.Table, done []Outcome) error {
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return eris.Wrapf(err, "pipeline: create output dir %s", c.dir)
	}

	header := append([]string{"index", "name", "country", "website"}, c.outCols.Names()...)
	rows := make([][]string, 0, len(done))
	for _, o := range done {
		row := []string{strconv.Itoa(o.Index), o.Org.Name, o.Org.Country, o.Website}
		for _, col := range c.outCols.Names() {
			row = append(row, o.Row.Value(col))
		}
		rows = append(rows, row)
	}
	if err := sheet.WriteCSV(c.CSVPath(), header, rows); err != nil {
		return eris.Wrap(err, "pipeline: write checkpoint csv")
	}

	if err := table.WriteXLSX(c.WorkbookPath(table.Sheet)); err != nil {
		return eris.Wrap(err, "pipeline: write checkpoint workbook")
	}
	return nil
}
