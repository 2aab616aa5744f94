package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Row is a validated row's cells. Values are string, bool,
// decimal.Decimal, time.Time or nil.
type Row map[string]any

// Clone returns a shallow copy; cell values are immutable.
func (r Row) Clone() Row {
	if r == nil {
		return nil
	}
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Has reports whether key holds a non-empty value.
func (r Row) Has(key string) bool {
	v, ok := r[key]
	if !ok || v == nil {
		return false
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s) != ""
	}
	return true
}

// Str returns the cell as trimmed text.
func (r Row) Str(key string) string {
	v, ok := r[key]
	if !ok || v == nil {
		return ""
	}
	switch x := v.(type) {
	case string:
		return strings.TrimSpace(x)
	case decimal.Decimal:
		return x.String()
	case time.Time:
		return FormatDate(x)
	}
	return strings.TrimSpace(fmt.Sprint(v))
}

// Decimal returns the cell as a number. Blank cells yield an invalid
// NullDecimal and no error.
func (r Row) Decimal(key string) (decimal.NullDecimal, error) {
	if !r.Has(key) {
		return decimal.NullDecimal{}, nil
	}
	switch x := r[key].(type) {
	case decimal.Decimal:
		return decimal.NewNullDecimal(x), nil
	case float64:
		return decimal.NewNullDecimal(decimal.NewFromFloat(x)), nil
	case int:
		return decimal.NewNullDecimal(decimal.NewFromInt(int64(x))), nil
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(x))
		if err != nil {
			return decimal.NullDecimal{}, fmt.Errorf("column %s: %q is not a number", key, x)
		}
		return decimal.NewNullDecimal(d), nil
	}
	return decimal.NullDecimal{}, fmt.Errorf("column %s: %v is not a number", key, r[key])
}

// DecimalOrZero returns the cell as a number, treating blank as zero.
func (r Row) DecimalOrZero(key string) (decimal.Decimal, error) {
	d, err := r.Decimal(key)
	if err != nil {
		return decimal.Zero, err
	}
	return d.Decimal, nil
}

// Date returns the cell as a date. Blank cells yield the zero time and no
// error.
func (r Row) Date(key string) (time.Time, error) {
	if !r.Has(key) {
		return time.Time{}, nil
	}
	t, err := ParseDate(r[key])
	if err != nil {
		return time.Time{}, fmt.Errorf("column %s: %w", key, err)
	}
	return t, nil
}

// Bool reports whether the cell is truthy: true, "true", "yes", "1" or a
// non-zero number.
func (r Row) Bool(key string) bool {
	return Truthy(r[key])
}

// Truthy interprets a settings or cell value as a boolean.
func Truthy(v any) bool {
	switch x := v.(type) {
	case bool:
		return x
	case string:
		switch strings.ToLower(strings.TrimSpace(x)) {
		case "true", "yes", "y", "1":
			return true
		}
	case decimal.Decimal:
		return !x.IsZero()
	case float64:
		return x != 0
	case int:
		return x != 0
	}
	return false
}

// HasAny reports whether any of keys holds a non-empty value.
func (r Row) HasAny(keys ...string) bool {
	for _, k := range keys {
		if r.Has(k) {
			return true
		}
	}
	return false
}
