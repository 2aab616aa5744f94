package accounts

import (
	"bytes"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/farmledger/internal/model"
)

func cash(name string) model.Account {
	return model.Account{Name: name, Settings: &model.CashSettings{BaseSettings: model.BaseSettings{Type: model.AccountTypeCash}}}
}

func TestAddRejectsDuplicates(t *testing.T) {
	svc := NewService()
	_, err := svc.Add(cash("checking"))
	require.NoError(t, err)

	_, err = svc.Add(cash("checking"))
	assert.EqualError(t, err, `duplicate account name "checking"`)
	assert.Len(t, svc.All(), 1)
}

func TestFetchOrCreate(t *testing.T) {
	svc := NewService()
	calls := 0
	proto := func() model.Account {
		calls++
		return model.Account{Settings: &model.AssetSettings{BaseSettings: model.BaseSettings{Type: model.AccountTypeAsset, TaxOnly: true}}}
	}

	a := svc.FetchOrCreate("tax.tractor", proto)
	a.Origin = append(a.Origin, model.ValidatedLine{Lineno: 3})
	b := svc.FetchOrCreate("tax.tractor", proto)

	assert.Same(t, a, b)
	assert.Equal(t, 1, calls)
	assert.Len(t, b.Origin, 1)
	assert.Equal(t, "tax.tractor", b.Name)
	assert.Len(t, svc.All(), 1)
}

func TestByTypeAndOrder(t *testing.T) {
	svc := NewService()
	_, _ = svc.Add(cash("b-checking"))
	_, _ = svc.Add(model.Account{Name: "a-asset", Settings: &model.AssetSettings{BaseSettings: model.BaseSettings{Type: model.AccountTypeAsset}}})
	_, _ = svc.Add(cash("c-savings"))

	all := svc.All()
	require.Len(t, all, 3)
	assert.Equal(t, "b-checking", all[0].Name, "insertion order kept")

	cashAccts := svc.ByType(model.AccountTypeCash)
	require.Len(t, cashAccts, 2)
	assert.Equal(t, "c-savings", cashAccts[1].Name)
	assert.Empty(t, svc.ByType(model.AccountTypeInventory))
}

func TestBasis(t *testing.T) {
	assert.Equal(t, "tax+mkt", Basis(&model.CashSettings{}))
	assert.Equal(t, "tax", Basis(&model.AssetSettings{BaseSettings: model.BaseSettings{TaxOnly: true}}))
	assert.Equal(t, "mkt", Basis(&model.InventorySettings{BaseSettings: model.BaseSettings{MktOnly: true}}))
}

func TestWriteSummary(t *testing.T) {
	acct := cash("checking")
	acct.Lines = []model.Tx{
		{Date: model.Day(2021, 1, 1), Balance: decimal.NewFromInt(100), IsStart: true},
		{Date: model.Day(2021, 1, 5), Amount: decimal.NewFromInt(-20), Balance: decimal.NewFromInt(80)},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteSummary(&buf, []model.Account{acct}))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, strings.Join(SummaryHeader, ","), lines[0])
	assert.Equal(t, "checking,cash,tax+mkt,2,2021-01-01,2021-01-05,80.00,0", lines[1])
}
