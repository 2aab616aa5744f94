package importer

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/cleared-dev/farmledger/internal/model"
)

const checkingCSV = `date,description,amount,balance,category
SETTINGS,accounttype: cash,,,
2021-01-01,START,,"$1,000.00",
2021-01-05,diesel,-20,980,fuel
2021-01-09,short row
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func writeWorkbook(t *testing.T, path string) {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	_, err := f.NewSheet("equipment")
	require.NoError(t, err)
	require.NoError(t, f.SetSheetRow("equipment", "A1", &[]any{"category", "purchaseDate", "purchaseValue", "taxCurrentValue"}))
	require.NoError(t, f.SetSheetRow("equipment", "A2", &[]any{"SETTINGS", "accounttype: asset, asOfDate: 2021-12-31"}))
	require.NoError(t, f.SetSheetRow("equipment", "A3", &[]any{"tractor", 44256, 5000, 4500.5}))

	_, err = f.NewSheet("grain")
	require.NoError(t, err)
	require.NoError(t, f.SetSheetRow("grain", "A1", &[]any{"date", "description", "amount"}))
	require.NoError(t, f.DeleteSheet("Sheet1"))
	require.NoError(t, f.SaveAs(path))
}

func TestCSVReader_Read(t *testing.T) {
	path := writeFile(t, t.TempDir(), "checking.csv", checkingCSV)

	accts, err := (&CSVReader{}).Read(path)
	require.NoError(t, err)
	require.Len(t, accts, 1)

	acct := accts[0]
	assert.Equal(t, "checking", acct.Name)
	assert.Equal(t, "checking.csv", acct.Filename)
	require.Len(t, acct.Lines, 4)
	assert.Equal(t, "SETTINGS", acct.Lines[0]["date"])
	assert.Equal(t, "$1,000.00", acct.Lines[1]["balance"])
	assert.Equal(t, "-20", acct.Lines[2]["amount"])
	assert.Equal(t, "", acct.Lines[3]["amount"], "short rows are padded")
}

func TestXLSXReader_Read(t *testing.T) {
	path := filepath.Join(t.TempDir(), "farm.xlsx")
	writeWorkbook(t, path)

	accts, err := (&XLSXReader{}).Read(path)
	require.NoError(t, err)
	require.Len(t, accts, 2)

	eq := accts[0]
	assert.Equal(t, "equipment", eq.Name)
	assert.Equal(t, "farm.xlsx", eq.Filename)
	require.Len(t, eq.Lines, 2)
	assert.Equal(t, "accounttype: asset, asOfDate: 2021-12-31", eq.Lines[0]["purchaseDate"])
	assert.Equal(t, "44256", eq.Lines[1]["purchaseDate"])
	assert.Equal(t, "4500.5", eq.Lines[1]["taxCurrentValue"])

	assert.Equal(t, "grain", accts[1].Name)
	assert.Empty(t, accts[1].Lines)
}

func TestScan(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.csv", checkingCSV)
	writeFile(t, dir, "a.CSV", checkingCSV)
	writeFile(t, dir, "notes.txt", "x")
	writeFile(t, dir, "~$farm.xlsx", "lock")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.csv"), 0o755))

	files, err := Scan(dir, []string{"csv", ".xlsx"})
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "a.CSV", files[0].Name)
	assert.Equal(t, "csv", files[0].Format)
	assert.Equal(t, "b.csv", files[1].Name)

	files, err = Scan(filepath.Join(dir, "missing"), []string{"csv"})
	require.NoError(t, err)
	assert.Nil(t, files)
}

func TestRegistry(t *testing.T) {
	r := DefaultRegistry()
	assert.NotNil(t, r.Get("CSV"))
	assert.NotNil(t, r.Get("xlsx"))
	assert.Nil(t, r.Get("ods"))
	assert.Panics(t, func() { r.Register(&CSVReader{}) })
}

func TestRegistry_ReadAll(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "checking.csv", checkingCSV)
	writeWorkbook(t, filepath.Join(dir, "farm.xlsx"))

	accts, err := DefaultRegistry().ReadAll(dir, []string{"csv", "xlsx"})
	require.NoError(t, err)
	var names []string
	for _, a := range accts {
		names = append(names, a.Name)
	}
	assert.Equal(t, []string{"checking", "equipment", "grain"}, names)
}

func TestRegistry_ReadAll_SkipsEmptyFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "checking.csv", checkingCSV)
	writeFile(t, dir, "empty.csv", "")
	writeFile(t, dir, "draft.xlsx", "")

	files, err := Scan(dir, []string{"csv", "xlsx"})
	require.NoError(t, err)
	require.Len(t, files, 3)
	assert.Equal(t, int64(0), files[1].Size)

	accts, err := DefaultRegistry().ReadAll(dir, []string{"csv", "xlsx"})
	require.NoError(t, err)
	require.Len(t, accts, 1)
	assert.Equal(t, "checking", accts[0].Name)
}

func TestRowsToAccount_BlankHeader(t *testing.T) {
	acct := rowsToAccount("x", "x.csv", [][]string{{"date", "", "amount"}, {"2021-01-01", "junk", "5"}})
	assert.Equal(t, []model.RawRow{{"date": "2021-01-01", "amount": "5"}}, acct.Lines)
}

func TestMatches(t *testing.T) {
	formats := []string{"csv", ".xlsx"}
	assert.True(t, Matches("/in/checking.csv", formats))
	assert.True(t, Matches("Farm.XLSX", formats))
	assert.False(t, Matches("notes.txt", formats))
	assert.False(t, Matches("~$farm.xlsx", formats))
	assert.False(t, Matches(".checking.csv", formats))
}

func TestWatch(t *testing.T) {
	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	calls := make(chan struct{}, 10)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, dir, []string{"csv"}, slog.New(slog.NewTextHandler(io.Discard, nil)), func() {
			calls <- struct{}{}
		})
	}()

	// Give the watcher time to register before writing.
	time.Sleep(100 * time.Millisecond)
	writeFile(t, dir, "ignored.txt", "x")
	writeFile(t, dir, "checking.csv", checkingCSV)
	writeFile(t, dir, "checking.csv", checkingCSV+"2021-01-10,more,1,981,\n")

	select {
	case <-calls:
	case <-time.After(5 * time.Second):
		t.Fatal("no change reported")
	}

	select {
	case <-calls:
		t.Fatal("burst of writes should be reported once")
	case <-time.After(2 * DebounceDelay):
	}

	cancel()
	require.NoError(t, <-done)
}

func TestWatch_MissingDir(t *testing.T) {
	err := Watch(context.Background(), filepath.Join(t.TempDir(), "missing"), []string{"csv"}, slog.Default(), func() {})
	assert.Error(t, err)
}
