// Package schema implements the first pipeline stage: it parses SETTINGS
// rows into typed account settings, numbers every row, normalizes
// currency-formatted cells and checks each account has the columns and
// settings its type requires.
package schema

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/farmledger/internal/model"
	"github.com/cleared-dev/farmledger/internal/money"
	"github.com/cleared-dev/farmledger/internal/settings"
)

// Row markers recognized in any cell.
const (
	MarkerSettings = "SETTINGS"
	MarkerComment  = "COMMENT"
	MarkerIgnore   = "IGNORE"
)

// headerOffset converts a zero-based data index to a spreadsheet row number.
const headerOffset = 2

// textColumns are never converted to numbers.
var textColumns = map[string]bool{
	"description": true,
	"category":    true,
	"note":        true,
	"who":         true,
}

// Validate runs settings/column validation over every account. A failing
// account is marked invalid but never stops the others. The result is 1:1
// with raw.
func Validate(raw []model.RawAccount) []model.ValidatedRawAccount {
	out := make([]model.ValidatedRawAccount, len(raw))
	for i, ra := range raw {
		out[i] = validateAccount(ra)
	}
	return out
}

func validateAccount(ra model.RawAccount) model.ValidatedRawAccount {
	acct := model.ValidatedRawAccount{Name: ra.Name, Filename: ra.Filename}
	ref := acct.Ref()

	merged := make(map[string]any)
	for i, row := range ra.Lines {
		lineno := i + headerOffset
		if !hasMarker(row, MarkerSettings) {
			continue
		}
		for _, key := range sortedKeys(row) {
			s, ok := row[key].(string)
			if !ok || strings.TrimSpace(s) == "" || strings.TrimSpace(s) == MarkerSettings {
				continue
			}
			parsed, err := settings.Parse(s)
			if err != nil {
				acct.Errors = append(acct.Errors, fmt.Sprintf("line %d: invalid settings in column %s: %v", lineno, key, err))
				continue
			}
			settings.Merge(merged, parsed)
		}
	}

	for i, row := range ra.Lines {
		if isEmpty(row) || hasMarker(row, MarkerSettings) || hasMarker(row, MarkerComment) || hasMarker(row, MarkerIgnore) {
			continue
		}
		acct.Lines = append(acct.Lines, normalizeLine(row, i+headerOffset, ref))
	}

	s, errs := buildSettings(merged)
	acct.Errors = append(acct.Errors, errs...)
	if len(errs) == 0 {
		acct.Errors = append(acct.Errors, checkColumns(s, acct.Lines)...)
	}
	if len(acct.Errors) > 0 {
		s = model.Invalidate(s)
	}
	acct.Settings = s
	return acct
}

func normalizeLine(row model.RawRow, lineno int, ref model.AccountRef) model.ValidatedLine {
	line := model.ValidatedLine{Lineno: lineno, Acct: ref, Cells: make(model.Row, len(row))}
	for k, v := range row {
		if k == "lineno" {
			if d, ok := toDecimal(v); ok {
				line.StmtLineno = int(d.IntPart())
			}
			continue
		}
		line.Cells[k] = normalizeCell(k, v)
	}
	return line
}

func normalizeCell(key string, v any) any {
	switch x := v.(type) {
	case float64:
		return decimal.NewFromFloat(x)
	case int:
		return decimal.NewFromInt(int64(x))
	case int64:
		return decimal.NewFromInt(x)
	case string:
		if textColumns[key] || model.LooksLikeDate(x) {
			return x
		}
		if d, ok := money.ParseCurrency(x); ok {
			return d
		}
		return x
	}
	return v
}

func toDecimal(v any) (decimal.Decimal, bool) {
	switch x := normalizeCell("", v).(type) {
	case decimal.Decimal:
		return x, true
	}
	return decimal.Zero, false
}

func hasMarker(row model.RawRow, marker string) bool {
	for _, v := range row {
		if s, ok := v.(string); ok && strings.TrimSpace(s) == marker {
			return true
		}
	}
	return false
}

func isEmpty(row model.RawRow) bool {
	for _, v := range row {
		if v == nil {
			continue
		}
		if s, ok := v.(string); ok && strings.TrimSpace(s) == "" {
			continue
		}
		return false
	}
	return true
}

func sortedKeys(row model.RawRow) []string {
	keys := make([]string, 0, len(row))
	for k := range row {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
