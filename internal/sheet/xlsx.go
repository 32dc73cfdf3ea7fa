package sheet

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
)

// ReadXLSX loads one sheet of a workbook. The first row is the header. An
// empty sheet name selects the first sheet.
func ReadXLSX(path, sheetName string) (*Table, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "xlsx: open file")
	}

	sheet, err := getSheet(f, sheetName)
	if err != nil {
		return nil, err
	}

	var header []string
	var rows [][]string
	for i, row := range sheet.Rows {
		var cells []string
		if row != nil {
			cells = rowToStrings(row)
		}
		if i == 0 {
			header = cells
			continue
		}
		rows = append(rows, cells)
	}
	if len(header) == 0 {
		return nil, eris.Errorf("xlsx: sheet %q has no header row", sheet.Name)
	}

	return NewTable(sheet.Name, header, trimTrailingEmpty(rows)), nil
}

func getSheet(f *xlsx.File, name string) (*xlsx.Sheet, error) {
	if name != "" {
		sheet, ok := f.Sheet[name]
		if !ok {
			return nil, eris.Errorf("xlsx: sheet %q not found", name)
		}
		return sheet, nil
	}
	if len(f.Sheets) == 0 {
		return nil, eris.New("xlsx: workbook has no sheets")
	}
	return f.Sheets[0], nil
}

func rowToStrings(row *xlsx.Row) []string {
	cells := make([]string, len(row.Cells))
	for j, cell := range row.Cells {
		cells[j] = cell.String()
	}
	return cells
}

// trimTrailingEmpty drops blank rows at the end of a sheet, which
// spreadsheet tools often leave behind. Blank rows in between are kept so
// row positions survive a rewrite.
func trimTrailingEmpty(rows [][]string) [][]string {
	for len(rows) > 0 && isEmptyRow(rows[len(rows)-1]) {
		rows = rows[:len(rows)-1]
	}
	return rows
}

func isEmptyRow(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// WriteXLSX saves the table as a single-sheet workbook. The file is written
// next to path and renamed into place so a crash never leaves a partial
// workbook.
func (t *Table) WriteXLSX(path string) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet(SheetName(t.Sheet))
	if err != nil {
		return eris.Wrap(err, "xlsx: add sheet")
	}

	writeRow(sheet, t.header)
	for _, r := range t.rows {
		writeRow(sheet, r)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return eris.Wrap(err, "xlsx: create output dir")
	}
	tmp := path + ".tmp"
	if err := f.Save(tmp); err != nil {
		return eris.Wrap(err, "xlsx: save")
	}
	if err := os.Rename(tmp, path); err != nil {
		return eris.Wrap(err, "xlsx: rename")
	}
	return nil
}

// maxSheetName is Excel's limit on sheet name length, in characters.
const maxSheetName = 31

var sheetNameReplacer = strings.NewReplacer(
	":", "-", "\\", "-", "/", "-", "?", "", "*", "", "[", "(", "]", ")",
)

// SheetName makes name acceptable to Excel: forbidden characters are
// replaced, the result is cut to 31 characters, and an empty name becomes
// "Sheet1". CSV inputs take their sheet name from the file name, which
// often breaks these rules.
func SheetName(name string) string {
	name = strings.Trim(sheetNameReplacer.Replace(name), " '")
	if r := []rune(name); len(r) > maxSheetName {
		name = strings.TrimRight(string(r[:maxSheetName]), " '")
	}
	if name == "" {
		return "Sheet1"
	}
	return name
}

func writeRow(sheet *xlsx.Sheet, values []string) {
	row := sheet.AddRow()
	for _, v := range values {
		row.AddCell().SetString(v)
	}
}
