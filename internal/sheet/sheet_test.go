package sheet

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/enrich-cli/internal/config"
	"github.com/sells-group/enrich-cli/internal/model"
)

func createTestXLSX(t *testing.T, sheets map[string][][]string) string {
	t.Helper()
	f := xlsx.NewFile()
	for name, rows := range sheets {
		sheet, err := f.AddSheet(name)
		require.NoError(t, err)
		for _, rowData := range rows {
			row := sheet.AddRow()
			for _, cellData := range rowData {
				row.AddCell().SetString(cellData)
			}
		}
	}
	path := filepath.Join(t.TempDir(), "test.xlsx")
	require.NoError(t, f.Save(path))
	return path
}

var inputCols = config.InputColumns{Name: "Name", Country: "Country", Website: "Favorite URL"}

func TestReadXLSX(t *testing.T) {
	path := createTestXLSX(t, map[string][][]string{
		"Investors": {
			{"Name", "Country", "Favorite URL"},
			{"Acme Fund", "Jordan", "acme.org"},
			{"", "", ""},
			{"Beta Angels", " Egypt ", ""},
			{"", "", ""},
		},
		"Other": {{"x"}},
	})

	tbl, err := ReadXLSX(path, "Investors")
	require.NoError(t, err)
	assert.Equal(t, "Investors", tbl.Sheet)
	assert.Equal(t, []string{"Name", "Country", "Favorite URL"}, tbl.Header())
	require.Equal(t, 3, tbl.Len(), "interior blank row kept, trailing dropped")

	assert.Equal(t, model.Organization{Name: "Acme Fund", Country: "Jordan", Website: "acme.org"}, tbl.Organization(0, inputCols))
	assert.True(t, tbl.IsBlank(1, "Name"))
	assert.Equal(t, "Egypt", tbl.Get(2, "Country"))
}

func TestReadXLSX_SheetNotFound(t *testing.T) {
	path := createTestXLSX(t, map[string][][]string{"Sheet1": {{"Name"}}})

	_, err := ReadXLSX(path, "Missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `sheet "Missing" not found`)
}

func TestReadXLSX_MissingFile(t *testing.T) {
	_, err := ReadXLSX(filepath.Join(t.TempDir(), "nope.xlsx"), "")
	require.Error(t, err)
}

func TestTable_SetAndEnsureColumns(t *testing.T) {
	tbl := NewTable("S", []string{"Name", " Note "}, [][]string{{"Acme"}, {"Beta", "x", "extra"}})

	assert.Equal(t, []string{"Name", "Note", "Unnamed: 2"}, tbl.Header())
	assert.Equal(t, []string{"Acme", "", ""}, tbl.Row(0))

	tbl.EnsureColumns("Sector", "Note", "")
	assert.Equal(t, []string{"Name", "Note", "Unnamed: 2", "Sector"}, tbl.Header())
	assert.Len(t, tbl.Row(1), 4)

	v := "Health"
	tbl.Set(1, "Sector", &v)
	assert.Equal(t, "Health", tbl.Get(1, "Sector"))
	tbl.Set(1, "Sector", nil)
	assert.True(t, tbl.IsBlank(1, "Sector"))

	tbl.SetRow(0, model.NormalizedRow{"Angel Type": model.Str("network"), "Sector": nil})
	assert.Equal(t, "network", tbl.Get(0, "Angel Type"))
	assert.True(t, tbl.HasColumn("Angel Type"))

	tbl.Set(99, "Sector", &v)
	assert.Equal(t, "", tbl.Get(99, "Sector"))
	assert.Equal(t, "", tbl.Get(0, "Unknown"))
}

func TestWriteXLSX_RoundTrip(t *testing.T) {
	tbl := NewTable("Sheet1", []string{"Name", "Sector"}, [][]string{{"Acme", "ICT, Health"}, {"Beta", ""}})
	path := filepath.Join(t.TempDir(), "out", "Sheet1 (enriched).xlsx")

	require.NoError(t, tbl.WriteXLSX(path))
	_, err := os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))

	back, err := ReadXLSX(path, "Sheet1")
	require.NoError(t, err)
	assert.Equal(t, tbl.Header(), back.Header())
	require.Equal(t, 2, back.Len())
	assert.Equal(t, "ICT, Health", back.Get(0, "Sector"))
}

func TestSheetName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Investors", "Investors"},
		{"", "Sheet1"},
		{"Q1: Funds [draft]?", "Q1- Funds (draft)"},
		{"a/b\\c*", "a-b-c"},
		{"Master Investors List - MENA region 2025", "Master Investors List - MENA re"},
		{"قائمة المستثمرين في منطقة الشرق الأوسط", "قائمة المستثمرين في منطقة الشرق"},
		{"'quoted'", "quoted"},
		{"???", "Sheet1"},
	}
	for _, tt := range tests {
		got := SheetName(tt.in)
		assert.Equal(t, tt.want, got, tt.in)
		assert.LessOrEqual(t, len([]rune(got)), maxSheetName)
	}
}

func TestWriteXLSX_UnsafeSheetName(t *testing.T) {
	tbl := NewTable("Master Investors List: MENA [2025]", []string{"Name"}, [][]string{{"Acme"}})
	path := filepath.Join(t.TempDir(), "out.xlsx")

	require.NoError(t, tbl.WriteXLSX(path))

	back, err := ReadXLSX(path, "")
	require.NoError(t, err)
	assert.Equal(t, "Master Investors List- MENA (20", back.Sheet)
	assert.Equal(t, "Acme", back.Get(0, "Name"))
}

func TestWriteCSV_BOM(t *testing.T) {
	path := filepath.Join(t.TempDir(), "enriched.csv")
	require.NoError(t, WriteCSV(path, []string{"index", "name"}, [][]string{{"0", "Acme, Inc"}, {"3", "Café"}}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, utf8BOM))
	assert.Equal(t, "index,name\n0,\"Acme, Inc\"\n3,Café\n", string(data[len(utf8BOM):]))

	require.NoError(t, WriteCSV(path, []string{"index"}, nil))
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "index\n", string(data[len(utf8BOM):]), "rewritten, not appended")
}

func TestReadCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "investors.csv")
	require.NoError(t, WriteCSV(path, []string{"Name", "Country"}, [][]string{{"Acme", "Jordan"}, {"Beta"}}))

	tbl, err := Read(path, "ignored")
	require.NoError(t, err)
	assert.Equal(t, "investors", tbl.Sheet)
	assert.Equal(t, []string{"Name", "Country"}, tbl.Header(), "BOM stripped from first header")
	assert.Equal(t, 2, tbl.Len())
	assert.True(t, tbl.IsBlank(1, "Country"))
}
