package settings

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_KeyValues(t *testing.T) {
	got, err := Parse("accounttype: asset, asOfDate: 2021-12-31, mktonly")
	require.NoError(t, err)
	assert.Equal(t, "asset", got["accounttype"])
	assert.Equal(t, "2021-12-31", got["asOfDate"])
	assert.Equal(t, true, got["mktonly"])
}

func TestParse_Numbers(t *testing.T) {
	got, err := Parse("startYear: 2020\nrog: 2.5")
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(2020).Equal(got["startYear"].(decimal.Decimal)))
	assert.True(t, decimal.RequireFromString("2.5").Equal(got["rog"].(decimal.Decimal)))
}

func TestParse_HjsonObject(t *testing.T) {
	got, err := Parse(`{accounttype: "inventory", outCategories: ["sales-grain", "feed"]}`)
	require.NoError(t, err)
	assert.Equal(t, "inventory", got["accounttype"])
	assert.Equal(t, []string{"sales-grain", "feed"}, Strings(got, "outCategories"))
}

func TestParse_BracketedValue(t *testing.T) {
	got, err := Parse(`outCategories: ["sales", "death"], qtyKey: head`)
	require.NoError(t, err)
	assert.Equal(t, []string{"sales", "death"}, Strings(got, "outCategories"))
	assert.Equal(t, "head", String(got, "qtyKey"))
}

func TestParse_QuotedValueKeepsCommas(t *testing.T) {
	got, err := Parse(`acctname: "Smith, John", taxonly: true`)
	require.NoError(t, err)
	assert.Equal(t, "Smith, John", got["acctname"])
	assert.Equal(t, true, got["taxonly"])
}

func TestParse_PlainTextIsNotSettings(t *testing.T) {
	_, err := Parse("paid the vet for the spring visit")
	assert.ErrorIs(t, err, ErrNotSettings)

	_, err = Parse("   ")
	assert.ErrorIs(t, err, ErrNotSettings)
}

func TestStrings_PipeSeparated(t *testing.T) {
	m := map[string]any{"outCategories": "sales-grain | feed"}
	assert.Equal(t, []string{"sales-grain", "feed"}, Strings(m, "outCategories"))
	assert.Nil(t, Strings(m, "missing"))
}

func TestMerge(t *testing.T) {
	dst := map[string]any{"a": 1, "b": 2}
	Merge(dst, map[string]any{"b": 3, "c": 4})
	assert.Equal(t, map[string]any{"a": 1, "b": 3, "c": 4}, dst)
}
