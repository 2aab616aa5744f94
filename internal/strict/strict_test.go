package strict

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/farmledger/internal/model"
)

func cashAccount(name string, lines ...model.Tx) model.Account {
	a := model.Account{Name: name, Settings: &model.CashSettings{BaseSettings: model.BaseSettings{Type: model.AccountTypeCash}}}
	for i := range lines {
		lines[i].Acct = a.Ref()
		lines[i].Lineno = i + 2
	}
	a.Lines = lines
	return a
}

func startTx() model.Tx {
	return model.Tx{Date: model.Day(2021, 1, 1), IsStart: true, Category: model.CategoryStart}
}

func TestAssert_AcceptsClean(t *testing.T) {
	good := cashAccount("checking", startTx(), model.Tx{Date: model.Day(2021, 1, 2), Amount: decimal.NewFromInt(-5)})
	accepted, err := Assert([]model.Account{good})
	require.NoError(t, err)
	require.Len(t, accepted, 1)
	assert.Equal(t, good, accepted[0])
}

func TestAssert_ExcludesAndAggregates(t *testing.T) {
	good := cashAccount("checking", startTx())
	noStart := cashAccount("savings", model.Tx{Date: model.Day(2021, 1, 1)})
	lineErr := cashAccount("card", startTx(), model.Tx{Date: model.Day(2021, 1, 2), Errors: []string{"bad amount"}})
	invalid := model.Account{Name: "broken", Settings: model.Invalidate(nil), Errors: []string{"missing required column description"}}

	accepted, err := Assert([]model.Account{good, noStart, lineErr, invalid})
	require.Error(t, err)
	require.Len(t, accepted, 1)
	assert.Equal(t, "checking", accepted[0].Name)

	var merr *model.MultiError
	require.True(t, errors.As(err, &merr))
	assert.Equal(t, []string{
		"savings: line 2: first line must be a START line",
		"card: line 3: bad amount",
		"broken: missing required column description",
	}, merr.Messages())

	var aerr *model.AccountError
	require.True(t, errors.As(err, &aerr))
	assert.Equal(t, "savings", aerr.Account)

	var lerr *model.LineError
	require.True(t, errors.As(err, &lerr))
	assert.Equal(t, &model.LineError{Account: "card", Lineno: 3, Msg: "bad amount"}, lerr)
}

func TestAssert_PromotedLineErrorsReportedOnce(t *testing.T) {
	a := cashAccount("card", startTx(), model.Tx{Date: model.Day(2021, 1, 2), Errors: []string{"bad amount"}})
	model.PromoteLineErrors(&a)
	a.Errors = append(a.Errors, "statement is from another bank")

	_, err := Assert([]model.Account{a})
	var merr *model.MultiError
	require.True(t, errors.As(err, &merr))
	require.Len(t, merr.Errs, 2)
	assert.IsType(t, &model.AccountError{}, merr.Errs[0])
	assert.Equal(t, "card: statement is from another bank", merr.Errs[0].Error())
	assert.IsType(t, &model.LineError{}, merr.Errs[1])
	assert.Equal(t, "card: line 3: bad amount", merr.Errs[1].Error())
}

func TestAssert_NoTransactions(t *testing.T) {
	_, err := Assert([]model.Account{cashAccount("empty")})
	require.Error(t, err)
	assert.Equal(t, "empty: account has no transactions", err.Error())
}

func TestAssert_AssetPending(t *testing.T) {
	a := model.Account{Name: "tax.tractor", Settings: &model.AssetSettings{BaseSettings: model.BaseSettings{Type: model.AccountTypeAsset}}}
	a.Lines = []model.Tx{
		{Date: model.Day(2021, 1, 1), IsStart: true, Acct: a.Ref(), Lineno: 2, Asset: &model.AssetTx{Type: model.AssetTxStart}},
		{Date: model.Day(2021, 12, 31), Acct: a.Ref(), Lineno: 2, Asset: &model.AssetTx{Type: model.AssetTxAsOf, Pending: true}},
	}
	_, err := Assert([]model.Account{a})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AS-OF amount was never resolved")
}

func TestAssert_Livestock(t *testing.T) {
	settings := &model.InventorySettings{
		BaseSettings:  model.BaseSettings{Type: model.AccountTypeInventory},
		InventoryType: model.InventoryTypeLivestock,
	}
	line := func(note model.Note) model.Tx {
		return model.Tx{
			Date: model.Day(2021, 1, 1), IsStart: true, Acct: model.AccountRef{Name: "cattle"}, Lineno: 2, Note: note,
			Inventory: &model.InventoryTx{}, Livestock: &model.LivestockTx{},
		}
	}

	ok := model.Account{Name: "cattle", Settings: settings, Lines: []model.Tx{line(model.Note{Fields: map[string]any{NoteAveValuePerWeight: decimal.NewFromFloat(1.5)}})}}
	_, err := Assert([]model.Account{ok})
	require.NoError(t, err)

	missing := model.Account{Name: "cattle", Settings: settings, Lines: []model.Tx{line(model.Note{Text: "herd count"})}}
	_, err = Assert([]model.Account{missing})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "livestock opening line note needs aveValuePerWeight or priceWeightCurve")
}
