package journal

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/cleared-dev/farmledger/internal/model"
)

// Export formats.
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

// WorkbookName is the file an XLSX export is written to.
const WorkbookName = "ledger.xlsx"

// Exporter writes final ledgers to an output directory.
type Exporter struct {
	dir    string
	format string
}

// NewExporter creates an Exporter for dir in the given format.
func NewExporter(dir, format string) (*Exporter, error) {
	switch format {
	case FormatCSV, FormatXLSX:
	default:
		return nil, fmt.Errorf("unsupported export format %q", format)
	}
	return &Exporter{dir: dir, format: format}, nil
}

// Sheets lays out the final accounts for export: the tax and market
// composites first, then every original account.
func Sheets(final model.FinalAccounts) []Sheet {
	sheets := []Sheet{
		{Name: "tax", Lines: final.Tax.Lines},
		{Name: "mkt", Lines: final.Mkt.Lines},
	}
	for _, a := range final.Originals {
		sheets = append(sheets, Sheet{Name: a.Name, Lines: a.Lines})
	}
	return sheets
}

// Export writes final and returns the paths written. CSV exports write the
// composites to the output dir and each account under accounts/; XLSX
// exports write a single workbook.
func (e *Exporter) Export(final model.FinalAccounts) ([]string, error) {
	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output dir: %w", err)
	}
	sheets := Sheets(final)

	if e.format == FormatXLSX {
		path := filepath.Join(e.dir, WorkbookName)
		if err := WriteWorkbook(path, sheets); err != nil {
			return nil, err
		}
		return []string{path}, nil
	}

	acctDir := filepath.Join(e.dir, "accounts")
	if err := os.MkdirAll(acctDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating accounts dir: %w", err)
	}
	used := make(map[string]bool)
	var paths []string
	for i, s := range sheets {
		dir := acctDir
		if i < 2 {
			dir = e.dir
		}
		path := filepath.Join(dir, SheetName(s.Name, used)+".csv")
		if err := writeCSVFile(path, s.Lines); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func writeCSVFile(path string, lines []model.Tx) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := WriteLines(f, lines); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}
