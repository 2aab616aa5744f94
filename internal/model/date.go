package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DateFormat is the canonical ISO date layout.
const DateFormat = "2006-01-02"

var dateLayouts = []string{
	DateFormat,
	"2006-1-2",
	"1/2/2006",
	"01/02/2006",
	"1/2/06",
	time.RFC3339,
}

// excelEpoch is day zero of Excel's 1900 date system (accounting for the
// 1900 leap-year bug).
var excelEpoch = time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)

// Day returns a date at midnight UTC.
func Day(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// AddDays shifts a date by n days.
func AddDays(t time.Time, n int) time.Time {
	return t.AddDate(0, 0, n)
}

// FormatDate formats t as YYYY-MM-DD, or "" for the zero time.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateFormat)
}

// ParseDate converts a cell value to a date at midnight UTC. Strings in the
// accepted layouts and Excel serial day numbers are supported.
func ParseDate(v any) (time.Time, error) {
	switch x := v.(type) {
	case time.Time:
		return Day(x.Year(), x.Month(), x.Day()), nil
	case decimal.Decimal:
		return excelSerial(x.IntPart())
	case float64:
		return excelSerial(int64(x))
	case int:
		return excelSerial(int64(x))
	case int64:
		return excelSerial(x)
	case string:
		s := strings.TrimSpace(x)
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return Day(t.Year(), t.Month(), t.Day()), nil
			}
		}
		return time.Time{}, fmt.Errorf("invalid date %q", x)
	}
	return time.Time{}, fmt.Errorf("invalid date %v (%T)", v, v)
}

func excelSerial(n int64) (time.Time, error) {
	// Serials outside 1950..2100 are almost certainly amounts, not dates.
	if n < 18264 || n > 73051 {
		return time.Time{}, fmt.Errorf("invalid date serial %d", n)
	}
	return AddDays(excelEpoch, int(n)), nil
}

// LooksLikeDate reports whether s parses in one of the accepted layouts.
func LooksLikeDate(s string) bool {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if _, err := time.Parse(layout, s); err == nil {
			return true
		}
	}
	return false
}
