package model

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		in   any
		want time.Time
	}{
		{"2021-01-05", Day(2021, 1, 5)},
		{"2021-1-5", Day(2021, 1, 5)},
		{"1/5/2021", Day(2021, 1, 5)},
		{"01/05/2021", Day(2021, 1, 5)},
		{" 2021-01-05 ", Day(2021, 1, 5)},
		{decimal.NewFromInt(44201), Day(2021, 1, 5)},
		{time.Date(2021, 1, 5, 13, 4, 0, 0, time.UTC), Day(2021, 1, 5)},
	}
	for _, tt := range tests {
		got, err := ParseDate(tt.in)
		require.NoError(t, err, "ParseDate(%v)", tt.in)
		assert.Equal(t, tt.want, got, "ParseDate(%v)", tt.in)
	}

	_, err := ParseDate("next tuesday")
	assert.Error(t, err)
	_, err = ParseDate(decimal.NewFromInt(300))
	assert.Error(t, err, "small numbers are not dates")
}

func TestRowAccessors(t *testing.T) {
	r := Row{
		"amount":  decimal.RequireFromString("12.50"),
		"text":    "  hello ",
		"blank":   "  ",
		"flag":    "yes",
		"date":    "2021-03-01",
		"garbage": "abc",
	}

	assert.True(t, r.Has("amount"))
	assert.False(t, r.Has("blank"))
	assert.False(t, r.Has("missing"))
	assert.Equal(t, "hello", r.Str("text"))
	assert.True(t, r.Bool("flag"))

	d, err := r.Decimal("amount")
	require.NoError(t, err)
	assert.True(t, d.Valid)
	assert.Equal(t, "12.50", d.Decimal.StringFixed(2))

	d, err = r.Decimal("blank")
	require.NoError(t, err)
	assert.False(t, d.Valid)

	_, err = r.Decimal("garbage")
	assert.Error(t, err)

	dt, err := r.Date("date")
	require.NoError(t, err)
	assert.Equal(t, Day(2021, 3, 1), dt)
}

func TestMultiError(t *testing.T) {
	var me *MultiError
	assert.NoError(t, me.ErrOrNil())

	first := &AccountError{Account: "cash.checking", Msg: "missing balance column"}
	me = me.Append(first)
	me = me.Append(&MultiError{Errs: []error{&LineError{Account: "tax.tractor", Lineno: 4, Msg: "bad date"}}})

	err := me.ErrOrNil()
	require.Error(t, err)
	assert.Equal(t, "cash.checking: missing balance column\ntax.tractor: line 4: bad date", err.Error())

	var ae *AccountError
	require.True(t, errors.As(err, &ae))
	assert.Same(t, first, ae)
	assert.Len(t, me.Messages(), 2)
}

func TestPromoteLineErrors(t *testing.T) {
	a := Account{
		Name: "checking",
		Lines: []Tx{
			{Lineno: 2},
			{Lineno: 3, Errors: []string{"bad amount"}},
		},
	}
	PromoteLineErrors(&a)
	PromoteLineErrors(&a)
	assert.Equal(t, []string{"line 3: bad amount"}, a.Errors)
	assert.True(t, a.HasErrors())
}

func TestFailures(t *testing.T) {
	a := Account{
		Name:   "checking",
		Errors: []string{"missing balance column"},
		Lines: []Tx{
			{Lineno: 2},
			{Lineno: 3, Errors: []string{"bad amount", "bad date"}},
		},
	}
	PromoteLineErrors(&a)

	errs := Failures(a)
	require.Len(t, errs, 3)
	assert.Equal(t, &AccountError{Account: "checking", Msg: "missing balance column"}, errs[0])
	assert.Equal(t, &LineError{Account: "checking", Lineno: 3, Msg: "bad amount"}, errs[1])
	assert.Equal(t, &LineError{Account: "checking", Lineno: 3, Msg: "bad date"}, errs[2])

	assert.Empty(t, Failures(Account{Name: "clean", Lines: []Tx{{Lineno: 2}}}))
}

func TestAccountCloneDoesNotAlias(t *testing.T) {
	a := Account{
		Name: "cattle",
		Lines: []Tx{{
			Amount:    decimal.NewFromInt(5),
			Inventory: &InventoryTx{Qty: decimal.NewFromInt(2)},
			Note:      Note{Fields: map[string]any{"aveValuePerWeight": "1.2"}},
		}},
	}
	c := a.Clone()
	c.Lines[0].Inventory.Qty = decimal.NewFromInt(9)
	c.Lines[0].Note.Fields["x"] = 1
	c.Lines[0].AddError("boom")

	assert.Equal(t, "2", a.Lines[0].Inventory.Qty.String())
	assert.False(t, a.Lines[0].Note.Has("x"))
	assert.Empty(t, a.Lines[0].Errors)
}

func TestWithBasis(t *testing.T) {
	s := &AssetSettings{BaseSettings: BaseSettings{Type: AccountTypeAsset}, AsOfDate: Day(2021, 12, 31)}
	tax := WithBasis(s, true)
	mkt := WithBasis(s, false)

	assert.True(t, tax.Base().TaxOnly)
	assert.False(t, tax.Base().MktOnly)
	assert.True(t, mkt.Base().MktOnly)
	assert.False(t, s.TaxOnly, "original settings must not change")
	assert.Equal(t, AccountTypeAsset, tax.AccountType())
}

func TestParseAccountType(t *testing.T) {
	at, ok := ParseAccountType("futures-cash")
	assert.True(t, ok)
	assert.Equal(t, AccountTypeFuturesCash, at)

	at, ok = ParseAccountType("checking")
	assert.False(t, ok)
	assert.Equal(t, AccountTypeInvalid, at)
}
