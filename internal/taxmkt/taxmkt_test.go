package taxmkt

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/farmledger/internal/model"
	"github.com/cleared-dev/farmledger/internal/money"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func account(name string, s model.Settings, lines ...model.Tx) model.Account {
	a := model.Account{Name: name, Settings: s}
	for i := range lines {
		lines[i].Acct = a.Ref()
		lines[i].Lineno = i + 2
	}
	a.Lines = lines
	return a
}

func line(date string, amount, balance string) model.Tx {
	dt, _ := model.ParseDate(date)
	return model.Tx{Date: dt, Amount: d(amount), Balance: d(balance)}
}

func opening(date, balance string) model.Tx {
	tx := line(date, "0", balance)
	tx.IsStart = true
	tx.Category = model.CategoryStart
	return tx
}

func cashSettings() model.Settings {
	return &model.CashSettings{BaseSettings: model.BaseSettings{Type: model.AccountTypeCash}}
}

func balances(lines []model.Tx) []string {
	var out []string
	for _, tx := range lines {
		out = append(out, tx.Balance.String())
	}
	return out
}

func owners(lines []model.Tx) []string {
	var out []string
	for _, tx := range lines {
		out = append(out, tx.Acct.Name)
	}
	return out
}

func TestSeparate_MergesByBasis(t *testing.T) {
	checking := account("cash.checking", cashSettings(),
		opening("2021-01-01", "1000"),
		line("2021-02-01", "-200", "800"),
		line("2021-04-01", "500", "1300"),
	)
	tractor := account("tax.tractor",
		&model.AssetSettings{BaseSettings: model.BaseSettings{Type: model.AccountTypeAsset, TaxOnly: true}},
		opening("2020-12-31", "10000"),
		line("2021-03-01", "0", "10000"),
	)

	final := Separate([]model.Account{checking, tractor}, money.Epsilon)

	assert.Equal(t,
		[]string{Tax, "tax.tractor", "cash.checking", "cash.checking", "tax.tractor", "cash.checking"},
		owners(final.Tax.Lines))
	assert.Equal(t, []string{"0", "10000", "11000", "10800", "10800", "11300"}, balances(final.Tax.Lines))
	assert.Equal(t, model.Day(2020, 12, 30), final.Tax.Lines[0].Date)
	assert.True(t, final.Tax.Lines[0].IsStart)
	assert.Len(t, final.Tax.Accts, 2)

	assert.Equal(t, []string{Mkt, "cash.checking", "cash.checking", "cash.checking"}, owners(final.Mkt.Lines))
	assert.Equal(t, []string{"0", "1000", "800", "1300"}, balances(final.Mkt.Lines))
	require.Len(t, final.Mkt.Accts, 1)

	require.Len(t, final.Originals, 2)
	assert.Equal(t, checking, final.Originals[0])
	assert.True(t, checking.Lines[0].Amount.IsZero(), "input is not modified")
}

func TestSeparate_ResortsAccountLines(t *testing.T) {
	a := account("checking", cashSettings(),
		opening("2021-01-01", "100"),
		line("2021-03-01", "-10", "90"),
		line("2021-02-01", "-5", "85"),
	)
	final := Separate([]model.Account{a}, money.Epsilon)
	assert.Equal(t, []string{"0", "100", "95", "85"}, balances(final.Mkt.Lines))
	assert.Equal(t, []string{"100", "95", "85"}, balances(final.Mkt.Accts[0].Lines))
}

func TestSeparate_LivestockTaxView(t *testing.T) {
	s := &model.InventorySettings{
		BaseSettings:  model.BaseSettings{Type: model.AccountTypeInventory},
		QtyKey:        "head",
		InventoryType: model.InventoryTypeLivestock,
	}
	start := opening("2021-01-01", "1000")
	start.Inventory = &model.InventoryTx{QtyBalance: d("10")}
	start.Livestock = &model.LivestockTx{WeightBalance: d("5000"), TaxBalance: d("800")}
	buy := line("2021-03-01", "600", "1600")
	buy.Inventory = &model.InventoryTx{Qty: d("5"), QtyBalance: d("15")}
	buy.Livestock = &model.LivestockTx{Weight: d("2500"), WeightBalance: d("7500"), TaxAmount: d("500"), TaxBalance: d("1300")}

	final := Separate([]model.Account{account("cattle", s, start, buy)}, money.Epsilon)

	require.Len(t, final.Tax.Lines, 3)
	taxBuy := final.Tax.Lines[2]
	assert.Equal(t, "500", taxBuy.Amount.String())
	assert.Equal(t, "1300", taxBuy.Balance.String())
	require.True(t, taxBuy.Livestock.MktAmount.Valid)
	assert.Equal(t, "600", taxBuy.Livestock.MktAmount.Decimal.String())
	assert.Equal(t, "1600", taxBuy.Livestock.MktBalance.Decimal.String())
	assert.Equal(t, "15", taxBuy.Inventory.QtyBalance.String())
	assert.Equal(t, "7500", taxBuy.Livestock.WeightBalance.String())

	mktBuy := final.Mkt.Lines[2]
	assert.Equal(t, "600", mktBuy.Amount.String())
	assert.Equal(t, "1600", mktBuy.Balance.String())
	assert.False(t, mktBuy.Livestock.MktAmount.Valid)
}

func TestRecompute_Idempotent(t *testing.T) {
	a := account("checking", cashSettings(),
		opening("2021-01-01", "100"),
		line("2021-01-02", "-33.333", "0"),
		line("2021-01-02", "-66.664", "0"),
		line("2021-01-03", "12.5", "0"),
	)
	openingAsAmount(&a)
	Recompute(a.Lines, money.Epsilon)
	once := model.CloneAccounts([]model.Account{a})[0]
	Recompute(a.Lines, money.Epsilon)
	assert.Equal(t, once.Lines, a.Lines)
	assert.Equal(t, "0", a.Lines[2].Balance.String(), "sub-cent residue is cleaned")
	assert.Equal(t, "12.5", a.Lines[3].Balance.String())
}

func TestComposite_Empty(t *testing.T) {
	c := Composite(Tax, nil, money.Epsilon)
	assert.Empty(t, c.Lines)
}

func TestSeparate_CarryOverStartKeepsBalance(t *testing.T) {
	checking := account("cash.checking", cashSettings(),
		opening("2020-01-01", "100"),
		line("2020-06-05", "-20", "80"),
		opening("2021-01-01", "80"),
		line("2021-01-05", "-10", "70"),
	)

	final := Separate([]model.Account{checking}, money.Epsilon)

	assert.Equal(t, []string{"0", "100", "80", "80", "70"}, balances(final.Tax.Lines))
	assert.Equal(t, []string{"0", "100", "80", "80", "70"}, balances(final.Mkt.Lines))
	assert.Equal(t, "0", final.Tax.Lines[3].Amount.String(), "a carry-over START adds nothing")
	assert.Equal(t, "0", final.Originals[0].Lines[0].Amount.String())
}
