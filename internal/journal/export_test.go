package journal

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/cleared-dev/farmledger/internal/model"
)

func finalAccounts() model.FinalAccounts {
	lines := cashLines()
	acct := model.Account{Name: "cash/checking", Lines: lines}
	return model.FinalAccounts{
		Tax:       model.CompositeAccount{Lines: lines, Accts: []model.Account{acct}},
		Mkt:       model.CompositeAccount{Lines: lines, Accts: []model.Account{acct}},
		Originals: []model.Account{acct},
	}
}

func TestNewExporter_Format(t *testing.T) {
	_, err := NewExporter(t.TempDir(), "ods")
	assert.Error(t, err)
}

func TestExport_CSV(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "exports")
	e, err := NewExporter(dir, FormatCSV)
	require.NoError(t, err)

	paths, err := e.Export(finalAccounts())
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "tax.csv"),
		filepath.Join(dir, "mkt.csv"),
		filepath.Join(dir, "accounts", "cash-checking.csv"),
	}, paths)

	f, err := os.Open(paths[2])
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "80.00", records[2][3])
}

func TestExport_XLSX(t *testing.T) {
	dir := t.TempDir()
	e, err := NewExporter(dir, FormatXLSX)
	require.NoError(t, err)

	paths, err := e.Export(finalAccounts())
	require.NoError(t, err)
	require.Equal(t, []string{filepath.Join(dir, WorkbookName)}, paths)

	f, err := excelize.OpenFile(paths[0])
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{"tax", "mkt", "cash-checking"}, f.GetSheetList())

	rows, err := f.GetRows("tax", excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "date", rows[0][0])
	assert.Equal(t, "-20", rows[2][2])
	assert.Equal(t, "fuel", rows[2][4])

	styleID, err := f.GetCellStyle("tax", "D2")
	require.NoError(t, err)
	style, err := f.GetStyle(styleID)
	require.NoError(t, err)
	require.NotNil(t, style.CustomNumFmt)
	assert.Equal(t, moneyFormat, *style.CustomNumFmt)
}

func TestSheetName(t *testing.T) {
	used := map[string]bool{}
	assert.Equal(t, "tax.tractor", SheetName("tax.tractor", used))
	assert.Equal(t, "TAX.tractor~2", SheetName("TAX.tractor", used))
	assert.Equal(t, "a-b-c", SheetName("a/b:c", used))
	long := SheetName("a-very-long-account-name-that-exceeds-the-limit", used)
	assert.Len(t, long, 31)
	assert.Equal(t, "sheet", SheetName("''", used))
}
