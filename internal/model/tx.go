package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// AssetTxType tags a transaction synthesized from an asset snapshot row.
type AssetTxType string

const (
	AssetTxStart    AssetTxType = "START"
	AssetTxPurchase AssetTxType = "PURCHASE"
	AssetTxInitial  AssetTxType = "INITIAL"
	AssetTxAsOf     AssetTxType = "AS-OF"
	AssetTxSale     AssetTxType = "SALE"
)

// CategoryStart marks an account's opening line.
const CategoryStart = "START"

// CategorySplit marks a split master row, and as a description a split child.
const CategorySplit = "SPLIT"

// Note is a parsed note cell.
type Note struct {
	Text   string
	Fields map[string]any
}

// Has reports whether the note carries a structured field.
func (n Note) Has(key string) bool {
	_, ok := n.Fields[key]
	return ok
}

// Tx is one ledger transaction. Inventory, livestock and asset accounts fill
// in the matching extension.
type Tx struct {
	Date        time.Time
	Description string
	Amount      decimal.Decimal
	Balance     decimal.Decimal
	Category    string
	Note        Note
	Acct        AccountRef
	Lineno      int
	StmtLineno  int
	IsStart     bool
	IsDebit     bool
	Who         string
	WrittenDate time.Time
	PostDate    time.Time
	SplitAmount decimal.NullDecimal
	Errors      []string

	Inventory *InventoryTx
	Livestock *LivestockTx
	Asset     *AssetTx
}

// InventoryTx carries quantity tracking.
type InventoryTx struct {
	Qty            decimal.Decimal
	QtyBalance     decimal.Decimal
	AveValuePerQty decimal.Decimal
}

// LivestockTx carries weight tracking and the separate tax basis. MktAmount
// and MktBalance are only set on the tax view after separation.
type LivestockTx struct {
	Weight        decimal.Decimal
	WeightBalance decimal.Decimal
	TaxAmount     decimal.Decimal
	TaxBalance    decimal.Decimal
	MktAmount     decimal.NullDecimal
	MktBalance    decimal.NullDecimal
}

// AssetTx carries the synthesis metadata of an asset transaction. Expected
// values are only used for cross-validation, never for balance computation.
type AssetTx struct {
	Type                 AssetTxType
	ExpectedPriorValue   decimal.NullDecimal
	ExpectedCurrentValue decimal.NullDecimal
	PriorDate            time.Time
	Pending              bool // amount still to be resolved against the prior balance
}

// Clone returns a deep copy of the transaction.
func (t Tx) Clone() Tx {
	t.Errors = cloneStrings(t.Errors)
	if t.Note.Fields != nil {
		f := make(map[string]any, len(t.Note.Fields))
		for k, v := range t.Note.Fields {
			f[k] = v
		}
		t.Note.Fields = f
	}
	if t.Inventory != nil {
		c := *t.Inventory
		t.Inventory = &c
	}
	if t.Livestock != nil {
		c := *t.Livestock
		t.Livestock = &c
	}
	if t.Asset != nil {
		c := *t.Asset
		t.Asset = &c
	}
	return t
}

// AddError appends a message to the line's errors.
func (t *Tx) AddError(msg string) {
	t.Errors = append(t.Errors, msg)
}
