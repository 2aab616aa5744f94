// Package money holds the monetary helpers shared by every pipeline stage:
// epsilon comparison, currency-string parsing and dollar formatting.
package money

import (
	"regexp"
	"strings"

	gomoney "github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Epsilon is the default tolerance for balance comparisons.
var Epsilon = decimal.RequireFromString("0.01")

// Round2 rounds to cents.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// Equal reports whether a and b differ by less than eps.
func Equal(a, b, eps decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThan(eps)
}

// Clean rounds values whose magnitude is below eps to exactly zero so
// floating residue from spreadsheets does not propagate through a running
// balance.
func Clean(d, eps decimal.Decimal) decimal.Decimal {
	if d.Abs().LessThan(eps) {
		return decimal.Zero
	}
	return d
}

// Format renders d as US dollars, e.g. "$1,234.00" or "-$500.00".
func Format(d decimal.Decimal) string {
	cents := d.Shift(2).Round(0).IntPart()
	return gomoney.New(cents, gomoney.USD).Display()
}

// SameCents reports whether a and b format to the same dollar string. Split
// conservation uses this to absorb sub-cent residue.
func SameCents(a, b decimal.Decimal) bool {
	return Format(a) == Format(b)
}

var currencyRE = regexp.MustCompile(`^(-)?\(?\s*(-)?\s*\$?\s*(-)?\s*([0-9][0-9,]*(\.[0-9]+)?|\.[0-9]+)\s*\)?$`)

// excelZero covers the accounting-format renderings of zero dollars.
var excelZero = map[string]bool{"$-": true, "-$-": true, "$ -": true, "- $ -": true, "$  -": true}

// ParseCurrency interprets a currency-looking string such as "$1,234.00",
// "(500)" or Excel's "-$-". Date-shaped strings and identifiers with
// interior dashes are rejected.
func ParseCurrency(s string) (decimal.Decimal, bool) {
	t := strings.TrimSpace(s)
	if t == "" {
		return decimal.Zero, false
	}
	if excelZero[t] {
		return decimal.Zero, true
	}
	m := currencyRE.FindStringSubmatch(t)
	if m == nil {
		return decimal.Zero, false
	}
	paren := strings.HasPrefix(t, "(") || strings.HasPrefix(strings.TrimPrefix(t, "-"), "(")
	if paren && !strings.HasSuffix(t, ")") {
		return decimal.Zero, false
	}
	if !paren && strings.HasSuffix(t, ")") {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(m[4], ",", ""))
	if err != nil {
		return decimal.Zero, false
	}
	neg := paren
	for _, sign := range []string{m[1], m[2], m[3]} {
		if sign == "-" {
			neg = !neg
		}
	}
	if neg {
		d = d.Neg()
	}
	return d, true
}
