package importer

import (
	"fmt"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/cleared-dev/farmledger/internal/model"
)

// XLSXReader reads a workbook where every worksheet is one account named
// after the sheet. Cells are read raw, so dates arrive as Excel serial
// numbers and currency as plain numbers.
type XLSXReader struct{}

// Format returns the file extension this reader handles.
func (r *XLSXReader) Format() string { return "xlsx" }

// Read parses the workbook at path.
func (r *XLSXReader) Read(path string) ([]model.RawAccount, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening workbook: %w", err)
	}
	defer f.Close()

	base := filepath.Base(path)
	var accts []model.RawAccount
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, fmt.Errorf("reading sheet %s: %w", sheet, err)
		}
		if len(rows) == 0 {
			continue
		}
		accts = append(accts, rowsToAccount(sheet, base, rows))
	}
	return accts, nil
}
