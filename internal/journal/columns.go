package journal

import (
	"github.com/shopspring/decimal"

	"github.com/cleared-dev/farmledger/internal/model"
)

// Kind is how a column's values are rendered.
type Kind int

const (
	KindText Kind = iota
	KindDate
	KindMoney
	KindNumber
	KindInt
)

// Column is one exported field of a transaction.
type Column struct {
	Name  string
	Kind  Kind
	value func(model.Tx) any // string, time.Time, decimal.Decimal, int or nil
}

// Value extracts the column's value from tx. Nil means blank.
func (c Column) Value(tx model.Tx) any { return c.value(tx) }

var baseColumns = []Column{
	{"date", KindDate, func(t model.Tx) any { return t.Date }},
	{"description", KindText, func(t model.Tx) any { return t.Description }},
	{"amount", KindMoney, func(t model.Tx) any { return t.Amount }},
	{"balance", KindMoney, func(t model.Tx) any { return t.Balance }},
	{"category", KindText, func(t model.Tx) any { return t.Category }},
	{"note", KindText, func(t model.Tx) any { return t.Note.Text }},
	{"who", KindText, func(t model.Tx) any { return t.Who }},
	{"account", KindText, func(t model.Tx) any { return t.Acct.Name }},
	{"lineno", KindInt, func(t model.Tx) any { return t.Lineno }},
}

var inventoryColumns = []Column{
	{"qty", KindNumber, inv(func(i *model.InventoryTx) decimal.Decimal { return i.Qty })},
	{"qtyBalance", KindNumber, inv(func(i *model.InventoryTx) decimal.Decimal { return i.QtyBalance })},
	{"aveValuePerQty", KindMoney, inv(func(i *model.InventoryTx) decimal.Decimal { return i.AveValuePerQty })},
}

var livestockColumns = []Column{
	{"weight", KindNumber, stock(func(l *model.LivestockTx) any { return l.Weight })},
	{"weightBalance", KindNumber, stock(func(l *model.LivestockTx) any { return l.WeightBalance })},
	{"taxAmount", KindMoney, stock(func(l *model.LivestockTx) any { return l.TaxAmount })},
	{"taxBalance", KindMoney, stock(func(l *model.LivestockTx) any { return l.TaxBalance })},
	{"mktAmount", KindMoney, stock(func(l *model.LivestockTx) any { return nullable(l.MktAmount) })},
	{"mktBalance", KindMoney, stock(func(l *model.LivestockTx) any { return nullable(l.MktBalance) })},
}

var assetColumns = []Column{
	{"assetTxType", KindText, func(t model.Tx) any {
		if t.Asset == nil {
			return nil
		}
		return string(t.Asset.Type)
	}},
}

func inv(get func(*model.InventoryTx) decimal.Decimal) func(model.Tx) any {
	return func(t model.Tx) any {
		if t.Inventory == nil {
			return nil
		}
		return get(t.Inventory)
	}
}

func stock(get func(*model.LivestockTx) any) func(model.Tx) any {
	return func(t model.Tx) any {
		if t.Livestock == nil {
			return nil
		}
		return get(t.Livestock)
	}
}

func nullable(d decimal.NullDecimal) any {
	if !d.Valid {
		return nil
	}
	return d.Decimal
}

// Columns picks the columns lines need: the base set, plus the inventory,
// livestock and asset sets when any line carries them.
func Columns(lines []model.Tx) []Column {
	var hasInv, hasStock, hasAsset bool
	for _, t := range lines {
		hasInv = hasInv || t.Inventory != nil
		hasStock = hasStock || t.Livestock != nil
		hasAsset = hasAsset || t.Asset != nil
	}
	cols := append([]Column(nil), baseColumns...)
	if hasInv {
		cols = append(cols, inventoryColumns...)
	}
	if hasStock {
		cols = append(cols, livestockColumns...)
	}
	if hasAsset {
		cols = append(cols, assetColumns...)
	}
	return cols
}
