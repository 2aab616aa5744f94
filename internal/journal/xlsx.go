package journal

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/cleared-dev/farmledger/internal/model"
)

const (
	moneyFormat   = `"$"#,##0.00;-"$"#,##0.00`
	dateFormat    = "yyyy-mm-dd"
	maxSheetName  = 31
	invalidSheetC = `[]:*?/\`
)

// Sheet is one worksheet of an exported workbook.
type Sheet struct {
	Name  string
	Lines []model.Tx
}

// WriteWorkbook writes one worksheet per sheet, one row per transaction
// below a header row. Money columns get a currency format and dates a date
// format.
func WriteWorkbook(path string, sheets []Sheet) error {
	f := excelize.NewFile()
	defer f.Close()

	moneyStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: strPtr(moneyFormat)})
	if err != nil {
		return fmt.Errorf("creating money style: %w", err)
	}
	dateStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: strPtr(dateFormat)})
	if err != nil {
		return fmt.Errorf("creating date style: %w", err)
	}
	styles := map[Kind]int{KindMoney: moneyStyle, KindDate: dateStyle}

	used := map[string]bool{"sheet1": true}
	for _, s := range sheets {
		name := SheetName(s.Name, used)
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("creating sheet %s: %w", name, err)
		}
		if err := writeSheet(f, name, s.Lines, styles); err != nil {
			return fmt.Errorf("writing sheet %s: %w", name, err)
		}
	}
	if len(sheets) > 0 {
		if err := f.DeleteSheet("Sheet1"); err != nil {
			return fmt.Errorf("removing default sheet: %w", err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving workbook: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, sheet string, lines []model.Tx, styles map[Kind]int) error {
	cols := Columns(lines)
	header := make([]any, len(cols))
	for i, c := range cols {
		header[i] = c.Name
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}

	for r, tx := range lines {
		for c, col := range cols {
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, cellValue(col.Value(tx))); err != nil {
				return err
			}
		}
	}

	if len(lines) == 0 {
		return nil
	}
	for c, col := range cols {
		style, ok := styles[col.Kind]
		if !ok {
			continue
		}
		top, _ := excelize.CoordinatesToCellName(c+1, 2)
		bottom, _ := excelize.CoordinatesToCellName(c+1, len(lines)+1)
		if err := f.SetCellStyle(sheet, top, bottom, style); err != nil {
			return err
		}
	}
	return nil
}

func cellValue(v any) any {
	switch x := v.(type) {
	case decimal.Decimal:
		return x.InexactFloat64()
	case time.Time:
		if x.IsZero() {
			return nil
		}
		return x
	case int:
		if x == 0 {
			return nil
		}
	case string:
		if x == "" {
			return nil
		}
	}
	return v
}

// SheetName makes name a valid, unused worksheet name and records it.
func SheetName(name string, used map[string]bool) string {
	clean := strings.Map(func(r rune) rune {
		if strings.ContainsRune(invalidSheetC, r) {
			return '-'
		}
		return r
	}, name)
	clean = strings.Trim(clean, "'")
	if clean == "" {
		clean = "sheet"
	}
	candidate := truncate(clean, maxSheetName)
	for i := 2; used[strings.ToLower(candidate)]; i++ {
		suffix := fmt.Sprintf("~%d", i)
		candidate = truncate(clean, maxSheetName-len(suffix)) + suffix
	}
	used[strings.ToLower(candidate)] = true
	return candidate
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func strPtr(s string) *string { return &s }
