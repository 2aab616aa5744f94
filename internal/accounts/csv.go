package accounts

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/cleared-dev/farmledger/internal/model"
)

// SummaryHeader is the header row written by WriteSummary.
var SummaryHeader = []string{"account", "type", "basis", "lines", "first_date", "last_date", "closing_balance", "errors"}

// WriteSummary writes one CSV row per account describing its shape.
func WriteSummary(w io.Writer, accounts []model.Account) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(SummaryHeader); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, acct := range accounts {
		if err := cw.Write(MarshalSummary(acct)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	return cw.Error()
}

// MarshalSummary converts an Account to a summary row.
func MarshalSummary(acct model.Account) []string {
	row := []string{acct.Name, string(acct.Type()), Basis(acct.Settings), strconv.Itoa(len(acct.Lines)), "", "", "", strconv.Itoa(len(acct.Errors))}
	if n := len(acct.Lines); n > 0 {
		row[4] = model.FormatDate(acct.Lines[0].Date)
		row[5] = model.FormatDate(acct.Lines[n-1].Date)
		row[6] = acct.Lines[n-1].Balance.StringFixed(2)
	}
	return row
}
