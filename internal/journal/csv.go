package journal

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/farmledger/internal/model"
)

// WriteLines writes lines as CSV, header first.
func WriteLines(w io.Writer, lines []model.Tx) error {
	cols := Columns(lines)
	cw := csv.NewWriter(w)
	defer cw.Flush()

	header := make([]string, len(cols))
	for i, c := range cols {
		header[i] = c.Name
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, tx := range lines {
		if err := cw.Write(MarshalTx(cols, tx)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	return cw.Error()
}

// MarshalTx converts a transaction to a CSV row.
func MarshalTx(cols []Column, tx model.Tx) []string {
	row := make([]string, len(cols))
	for i, c := range cols {
		row[i] = formatCell(c.Kind, c.Value(tx))
	}
	return row
}

func formatCell(kind Kind, v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case int:
		if x == 0 {
			return ""
		}
		return strconv.Itoa(x)
	case time.Time:
		return model.FormatDate(x)
	case decimal.Decimal:
		if kind == KindMoney {
			return x.StringFixed(2)
		}
		return x.String()
	}
	return fmt.Sprint(v)
}
