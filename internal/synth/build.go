package synth

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/farmledger/internal/model"
	"github.com/cleared-dev/farmledger/internal/money"
)

// rank orders same-day synthetic transactions.
var rank = map[model.AssetTxType]int{
	model.AssetTxStart:    0,
	model.AssetTxPurchase: 1,
	model.AssetTxInitial:  1,
	model.AssetTxSale:     2,
	model.AssetTxAsOf:     3,
}

// builder turns a sub-account's origin rows into transactions.
type builder struct {
	acct      *model.Account
	tax       bool
	eps       decimal.Decimal
	purchases map[time.Time]decimal.Decimal
	sales     map[time.Time]decimal.Decimal
	txs       []model.Tx
}

func build(acct *model.Account, eps decimal.Decimal) {
	b := &builder{
		acct:      acct,
		tax:       acct.Settings.Base().TaxOnly,
		eps:       eps,
		purchases: make(map[time.Time]decimal.Decimal),
		sales:     make(map[time.Time]decimal.Decimal),
	}

	sort.SliceStable(acct.Origin, func(i, j int) bool {
		return acct.Origin[i].AsOfDate.Before(acct.Origin[j].AsOfDate)
	})
	for _, line := range acct.Origin {
		if err := b.row(line); err != nil {
			b.fail(line.Lineno, err.Error())
		}
	}

	sort.SliceStable(b.txs, func(i, j int) bool {
		if !b.txs[i].Date.Equal(b.txs[j].Date) {
			return b.txs[i].Date.Before(b.txs[j].Date)
		}
		return rank[b.txs[i].Asset.Type] < rank[b.txs[j].Asset.Type]
	})
	b.addStart()
	b.accumulate()
	b.validate()
	acct.Lines = b.txs
}

func (b *builder) fail(lineno int, msg string) {
	b.acct.Errors = append(b.acct.Errors, fmt.Sprintf("line %d: %s", lineno, msg))
}

// snapshot is one origin row with the columns of this builder's basis.
type snapshot struct {
	line          model.ValidatedLine
	desc          string
	category      string
	asOf          time.Time
	priorDate     time.Time
	prior         decimal.NullDecimal
	current       decimal.NullDecimal
	purchaseDate  time.Time
	purchaseValue decimal.NullDecimal
	initialDate   time.Time
	initialValue  decimal.NullDecimal
	saleDate      time.Time
	saleValue     decimal.NullDecimal
}

func (b *builder) readSnapshot(line model.ValidatedLine) (snapshot, error) {
	c := line.Cells
	s := snapshot{line: line, asOf: line.AsOfDate}
	var err error
	dates := []struct {
		key string
		dst *time.Time
	}{{"priorDate", &s.priorDate}, {"purchaseDate", &s.purchaseDate}, {"initialDate", &s.initialDate}, {"saleDate", &s.saleDate}}
	for _, d := range dates {
		if *d.dst, err = c.Date(d.key); err != nil {
			return s, err
		}
	}
	priorKey, currentKey := "mktPriorValue", "mktCurrentValue"
	if b.tax {
		priorKey, currentKey = "taxPriorValue", "taxCurrentValue"
	}
	values := []struct {
		key string
		dst *decimal.NullDecimal
	}{{priorKey, &s.prior}, {currentKey, &s.current}, {"purchaseValue", &s.purchaseValue}, {"mktInitialValue", &s.initialValue}, {"saleValue", &s.saleValue}}
	for _, v := range values {
		if *v.dst, err = c.Decimal(v.key); err != nil {
			return s, err
		}
	}

	if s.priorDate.IsZero() {
		switch st := b.acct.Settings.(type) {
		case *model.AssetSettings:
			s.priorDate = st.PriorDate
		case *model.FuturesAssetSettings:
			s.priorDate = st.PriorDate
		}
	}

	s.category = c.Str("category")
	if s.category == "" {
		s.category = b.acct.Name
	}
	s.desc = c.Str("description")
	if s.desc == "" {
		s.desc = s.category
	}
	if st, ok := b.acct.Settings.(*model.AssetSettings); ok && st.IDColumn != "" && c.Has(st.IDColumn) {
		s.desc = fmt.Sprintf("%s (%s)", s.desc, c.Str(st.IDColumn))
	}
	return s, nil
}

func (b *builder) tx(s snapshot, t model.AssetTxType, date time.Time) model.Tx {
	return model.Tx{
		Date:        date,
		Description: fmt.Sprintf("%s: %s", t, s.desc),
		Category:    s.category,
		Acct:        b.acct.Ref(),
		Lineno:      s.line.Lineno,
		StmtLineno:  s.line.StmtLineno,
		Asset:       &model.AssetTx{Type: t},
	}
}

// dedup reports whether a purchase/sale on date was already recorded. A
// second one with a different amount is an error.
func dedup(seen map[time.Time]decimal.Decimal, date time.Time, amount decimal.Decimal, what string) (bool, error) {
	prev, ok := seen[date]
	if !ok {
		seen[date] = amount
		return false, nil
	}
	if money.SameCents(prev, amount) {
		return true, nil
	}
	return true, fmt.Errorf("conflicting %s on %s: %s already recorded, found %s",
		what, model.FormatDate(date), money.Format(prev), money.Format(amount))
}

// row emits the PURCHASE/INITIAL, AS-OF and SALE transactions of one row.
func (b *builder) row(line model.ValidatedLine) error {
	s, err := b.readSnapshot(line)
	if err != nil {
		return err
	}

	var start time.Time // purchase or initial date, whichever was emitted
	var correction time.Time

	acquire := func(date time.Time, value decimal.NullDecimal, t model.AssetTxType, dateKey, valueKey string) error {
		if date.IsZero() && !value.Valid {
			return nil
		}
		if date.IsZero() || !value.Valid {
			return fmt.Errorf("%s and %s must be given together", dateKey, valueKey)
		}
		if !s.asOf.IsZero() && date.After(s.asOf) {
			return fmt.Errorf("%s %s is after asOfDate %s", dateKey, model.FormatDate(date), model.FormatDate(s.asOf))
		}
		dup, err := dedup(b.purchases, date, value.Decimal, "purchase")
		if err != nil || dup {
			return err
		}
		tx := b.tx(s, t, date)
		tx.Amount = value.Decimal
		tx.Asset.ExpectedPriorValue = decimal.NewNullDecimal(decimal.Zero)
		tx.Asset.PriorDate = model.AddDays(date, -1)
		b.txs = append(b.txs, tx)
		start = date

		// Bought before the ledger's history: jump to the declared prior value.
		if !s.priorDate.IsZero() && date.Before(s.priorDate) && s.prior.Valid {
			c := b.tx(s, model.AssetTxAsOf, s.priorDate)
			c.Asset.Pending = true
			c.Asset.ExpectedCurrentValue = s.prior
			b.txs = append(b.txs, c)
			correction = s.priorDate
		}
		return nil
	}
	if err := acquire(s.purchaseDate, s.purchaseValue, model.AssetTxPurchase, "purchaseDate", "purchaseValue"); err != nil {
		return err
	}
	if !b.tax && !s.initialDate.IsZero() {
		if err := acquire(s.initialDate, s.initialValue, model.AssetTxInitial, "initialDate", "mktInitialValue"); err != nil {
			return err
		}
	}

	var asOf *model.Tx
	if !s.asOf.IsZero() {
		tx := b.tx(s, model.AssetTxAsOf, s.asOf)
		tx.Asset.Pending = true
		tx.Asset.ExpectedCurrentValue = s.current
		if s.prior.Valid && !s.priorDate.IsZero() {
			tx.Asset.ExpectedPriorValue = s.prior
			tx.Asset.PriorDate = s.priorDate
		}
		asOf = &tx
	}

	if !b.tax && (!s.saleDate.IsZero() || s.saleValue.Valid) {
		if err := b.sale(s, start, correction, asOf); err != nil {
			return err
		}
	}

	if asOf != nil {
		b.txs = append(b.txs, *asOf)
	}
	return nil
}

func (b *builder) sale(s snapshot, start, correction time.Time, asOf *model.Tx) error {
	if s.saleDate.IsZero() || !s.saleValue.Valid {
		return fmt.Errorf("saleDate and saleValue must be given together")
	}
	if !start.IsZero() && !s.saleDate.After(start) {
		return fmt.Errorf("saleDate %s must be after the purchase on %s", model.FormatDate(s.saleDate), model.FormatDate(start))
	}
	if !correction.IsZero() && !s.saleDate.After(correction) {
		return fmt.Errorf("saleDate %s must be after priorDate %s", model.FormatDate(s.saleDate), model.FormatDate(correction))
	}
	if asOf != nil && !s.saleDate.Before(asOf.Date) {
		return fmt.Errorf("saleDate %s must be before asOfDate %s", model.FormatDate(s.saleDate), model.FormatDate(asOf.Date))
	}
	dup, err := dedup(b.sales, s.saleDate, s.saleValue.Decimal, "sale")
	if err != nil || dup {
		return err
	}

	tx := b.tx(s, model.AssetTxSale, s.saleDate)
	tx.Amount = s.saleValue.Decimal.Neg()

	if asOf != nil && (s.priorDate.IsZero() || s.saleDate.After(s.priorDate)) {
		if cur := asOf.Asset.ExpectedCurrentValue; cur.Valid && !cur.Decimal.IsZero() {
			return fmt.Errorf("asset sold on %s but expected value on %s is %s, not zero",
				model.FormatDate(s.saleDate), model.FormatDate(asOf.Date), money.Format(cur.Decimal))
		}
		tx.Asset.ExpectedPriorValue = asOf.Asset.ExpectedPriorValue
		tx.Asset.PriorDate = asOf.Asset.PriorDate
		asOf.Asset.ExpectedPriorValue = decimal.NullDecimal{}
		asOf.Asset.PriorDate = s.saleDate
	}
	b.txs = append(b.txs, tx)
	return nil
}

// addStart prepends an opening line when the first transaction is not one.
func (b *builder) addStart() {
	if len(b.txs) == 0 {
		b.acct.Errors = append(b.acct.Errors, "no transactions could be synthesized")
		return
	}
	first := b.txs[0]
	if first.Asset.Type == model.AssetTxStart {
		return
	}
	date := model.AddDays(first.Date, -1)
	balance := decimal.Zero
	switch {
	case first.Asset.ExpectedPriorValue.Valid && !first.Asset.PriorDate.IsZero() && first.Asset.PriorDate.Before(first.Date):
		date = first.Asset.PriorDate
		balance = first.Asset.ExpectedPriorValue.Decimal
	case !b.settingsPriorDate().IsZero() && b.settingsPriorDate().Before(first.Date):
		date = b.settingsPriorDate()
	}
	start := model.Tx{
		Date:        date,
		Description: string(model.AssetTxStart),
		Category:    model.CategoryStart,
		Balance:     balance,
		Acct:        b.acct.Ref(),
		Lineno:      first.Lineno,
		IsStart:     true,
		Asset:       &model.AssetTx{Type: model.AssetTxStart},
	}
	b.txs = append([]model.Tx{start}, b.txs...)
}

func (b *builder) settingsPriorDate() time.Time {
	switch st := b.acct.Settings.(type) {
	case *model.AssetSettings:
		return st.PriorDate
	case *model.FuturesAssetSettings:
		return st.PriorDate
	}
	return time.Time{}
}

// accumulate resolves AS-OF amounts and computes running balances.
func (b *builder) accumulate() {
	if len(b.txs) == 0 {
		return
	}
	balance := b.txs[0].Balance
	for i := 1; i < len(b.txs); i++ {
		tx := &b.txs[i]
		if tx.Asset.Pending {
			tx.Amount = decimal.Zero
			if cur := tx.Asset.ExpectedCurrentValue; cur.Valid {
				tx.Amount = cur.Decimal.Sub(balance)
			}
			tx.Asset.Pending = false
		}
		balance = balance.Add(tx.Amount)
		tx.Balance = balance
	}
}

// balanceAsOf is the balance after every transaction dated on or before d.
func (b *builder) balanceAsOf(d time.Time) decimal.Decimal {
	balance := decimal.Zero
	for _, tx := range b.txs {
		if tx.Date.After(d) {
			break
		}
		balance = tx.Balance
	}
	return balance
}

// validate compares balances against every declared expected value and
// records all mismatches.
func (b *builder) validate() {
	for _, tx := range b.txs {
		a := tx.Asset
		if a.Pending {
			b.fail(tx.Lineno, fmt.Sprintf("%s on %s has an unresolved amount", a.Type, model.FormatDate(tx.Date)))
			continue
		}
		if a.ExpectedPriorValue.Valid {
			got := b.balanceAsOf(a.PriorDate)
			if !money.Equal(got, a.ExpectedPriorValue.Decimal, b.eps) {
				b.fail(tx.Lineno, fmt.Sprintf("%s on %s: balance on %s is %s but expected prior value is %s",
					a.Type, model.FormatDate(tx.Date), model.FormatDate(a.PriorDate), money.Format(got), money.Format(a.ExpectedPriorValue.Decimal)))
			}
		}
		if a.ExpectedCurrentValue.Valid && !money.Equal(tx.Balance, a.ExpectedCurrentValue.Decimal, b.eps) {
			b.fail(tx.Lineno, fmt.Sprintf("%s on %s: balance is %s but expected current value is %s",
				a.Type, model.FormatDate(tx.Date), money.Format(tx.Balance), money.Format(a.ExpectedCurrentValue.Decimal)))
		}
	}
}
