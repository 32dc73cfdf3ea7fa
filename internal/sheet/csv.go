package sheet

import (
	"bytes"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
)

// utf8BOM lets spreadsheet applications detect UTF-8 in CSV output.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ReadCSV loads a CSV file with a header row as a Table. A leading BOM is
// skipped.
func ReadCSV(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "csv: read file")
	}
	r := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, utf8BOM)))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	header, err := r.Read()
	if err == io.EOF {
		return nil, eris.New("csv: file has no header row")
	}
	if err != nil {
		return nil, eris.Wrap(err, "csv: read header")
	}

	var rows [][]string
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrap(err, "csv: read row")
		}
		rows = append(rows, rec)
	}

	name := filepath.Base(path)
	return NewTable(name[:len(name)-len(filepath.Ext(name))], header, trimTrailingEmpty(rows)), nil
}

// WriteCSV writes header and rows as UTF-8 CSV with a byte-order mark,
// replacing any existing file.
func WriteCSV(path string, header []string, rows [][]string) error {
	var buf bytes.Buffer
	buf.Write(utf8BOM)
	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		return eris.Wrap(err, "csv: write header")
	}
	if err := w.WriteAll(rows); err != nil {
		return eris.Wrap(err, "csv: write rows")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return eris.Wrap(err, "csv: create output dir")
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return eris.Wrap(err, "csv: write file")
	}
	return nil
}

// Read loads a table from an .xlsx or .csv file by extension. sheetName
// applies to workbooks only.
func Read(path, sheetName string) (*Table, error) {
	switch filepath.Ext(path) {
	case ".csv", ".CSV":
		return ReadCSV(path)
	default:
		return ReadXLSX(path, sheetName)
	}
}
