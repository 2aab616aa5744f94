// Package standardize implements the third pipeline stage: validated cash,
// futures-cash and inventory rows become typed transactions with resolved
// amounts, balances, dates, notes and categories.
package standardize

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/farmledger/internal/model"
	"github.com/cleared-dev/farmledger/internal/settings"
)

// Accounts standardizes every account. Invalid accounts come through with
// no lines and their errors intact. Inputs are not modified.
func Accounts(vaccts []model.ValidatedRawAccount) []model.Account {
	out := make([]model.Account, 0, len(vaccts))
	for _, va := range vaccts {
		out = append(out, Account(va.Clone()))
	}
	return out
}

// Account standardizes one account. Row failures are attached to the row's
// transaction; the remaining rows are still processed.
func Account(va model.ValidatedRawAccount) model.Account {
	acct := model.Account{
		Name:     va.Name,
		Filename: va.Filename,
		Settings: va.Settings,
		Errors:   va.Errors,
	}
	if _, ok := va.Settings.(*model.InvalidSettings); ok || va.Settings == nil {
		acct.Settings = model.Invalidate(va.Settings)
		if len(acct.Errors) == 0 {
			acct.Errors = []string{"account settings are invalid"}
		}
		return acct
	}

	st := &state{settings: va.Settings}
	if inv, ok := va.Settings.(*model.InventorySettings); ok {
		st.inventory = inv
	}
	for _, line := range va.Lines {
		tx, keep := st.line(line)
		if keep {
			acct.Lines = append(acct.Lines, tx)
		}
	}
	model.PromoteLineErrors(&acct)
	return acct
}

// state carries running balances between rows of one account.
type state struct {
	settings  model.Settings
	inventory *model.InventorySettings
	prev      *model.Tx
}

func (st *state) line(line model.ValidatedLine) (model.Tx, bool) {
	tx := model.Tx{
		Acct:       line.Acct,
		Lineno:     line.Lineno,
		StmtLineno: line.StmtLineno,
		Errors:     append([]string(nil), line.Errors...),
	}
	if len(line.Errors) > 0 {
		return tx, true
	}
	keep, err := st.fill(&tx, line.Cells)
	if err != nil {
		tx.AddError(err.Error())
		return tx, true
	}
	if keep {
		st.prev = &tx
	}
	return tx, keep
}

// fill resolves every field of tx from cells. It reports false for rows that
// are dropped as carried history.
func (st *state) fill(tx *model.Tx, c model.Row) (bool, error) {
	base := st.settings.Base()
	tx.Description = c.Str("description")
	child := tx.Description == model.CategorySplit
	if child {
		c = inheritable(c)
	}
	tx.Category = c.Str("category")
	tx.Who = c.Str("who")
	master := tx.Category == model.CategorySplit
	tx.IsStart = tx.Description == model.CategoryStart || tx.Category == model.CategoryStart
	if tx.IsStart && tx.Category == "" {
		tx.Category = model.CategoryStart
	}

	var err error
	if tx.SplitAmount, err = c.Decimal("splitAmount"); err != nil {
		return true, err
	}
	amount, err := resolveAmount(c)
	if err != nil {
		return true, err
	}
	if !amount.Valid && !tx.IsStart && !child {
		return true, errors.New("missing required amount, debit or credit value")
	}
	tx.Amount = amount.Decimal
	if base.AmountType == model.Inverted {
		tx.Amount = tx.Amount.Neg()
		if tx.SplitAmount.Valid {
			tx.SplitAmount.Decimal = tx.SplitAmount.Decimal.Neg()
		}
	}

	sign := tx.Amount
	if (child || master) && tx.SplitAmount.Valid {
		sign = tx.SplitAmount.Decimal
	}
	tx.IsDebit = sign.IsNegative()

	if err := st.resolveDate(tx, c, child); err != nil {
		return true, err
	}

	balance, err := c.Decimal("balance")
	if err != nil {
		return true, err
	}
	switch {
	case balance.Valid:
		tx.Balance = balance.Decimal
		if base.BalanceType == model.Inverted {
			tx.Balance = tx.Balance.Neg()
		}
	case st.prev != nil:
		tx.Balance = st.prev.Balance.Add(tx.Amount)
	default:
		tx.Balance = tx.Amount
	}

	if c.Has("note") {
		tx.Note = parseNote(c.Str("note"))
	}

	if _, ok := st.settings.(*model.FuturesCashSettings); ok && tx.Category == "" {
		tx.Category = futuresCategory(c)
	}

	if st.inventory != nil {
		if !tx.IsStart && !tx.Date.IsZero() && tx.Date.Year() < st.inventory.StartYear {
			return false, nil
		}
		if err := st.fillInventory(tx, c); err != nil {
			return true, err
		}
	}
	return true, nil
}

// inheritable blanks the cells a split child marks with the literal SPLIT,
// so they are inherited from the split's base row later.
func inheritable(c model.Row) model.Row {
	c = c.Clone()
	for _, k := range []string{"date", "writtenDate", "postDate", "who"} {
		if c.Str(k) == model.CategorySplit {
			delete(c, k)
		}
	}
	return c
}

// resolveAmount reads amount, or credit minus debit. An invalid result means
// no amount column was filled.
func resolveAmount(c model.Row) (decimal.NullDecimal, error) {
	if c.Has("amount") {
		return c.Decimal("amount")
	}
	if !c.HasAny("debit", "credit") {
		return decimal.NullDecimal{}, nil
	}
	debit, err := c.DecimalOrZero("debit")
	if err != nil {
		return decimal.NullDecimal{}, err
	}
	credit, err := c.DecimalOrZero("credit")
	if err != nil {
		return decimal.NullDecimal{}, err
	}
	return decimal.NewNullDecimal(credit.Sub(debit.Abs())), nil
}

func (st *state) resolveDate(tx *model.Tx, c model.Row, child bool) error {
	var err error
	if tx.WrittenDate, err = c.Date("writtenDate"); err != nil {
		return err
	}
	if tx.PostDate, err = c.Date("postDate"); err != nil {
		return err
	}
	if tx.Date, err = c.Date("date"); err != nil {
		return err
	}
	if tx.Date.IsZero() {
		if tx.Date, err = DateFor(tx.WrittenDate, tx.PostDate, tx.IsDebit); err != nil {
			return err
		}
	} else if !tx.WrittenDate.IsZero() && !tx.PostDate.IsZero() && tx.PostDate.Before(tx.WrittenDate) {
		_, err = DateFor(tx.WrittenDate, tx.PostDate, tx.IsDebit)
		return err
	}
	if tx.Date.IsZero() && !child {
		return errors.New("missing date: one of date, writtenDate or postDate is required")
	}
	return nil
}

// parseNote keeps plain text as-is and turns key:value text into fields.
func parseNote(text string) model.Note {
	note := model.Note{Text: text}
	if !strings.HasPrefix(text, "{") && !strings.Contains(text, ":") {
		return note
	}
	if fields, err := settings.Parse(text); err == nil {
		note.Fields = fields
	}
	return note
}

// futuresCategory derives the category of a brokerage cash row.
func futuresCategory(c model.Row) string {
	if c.HasAny("transferFrom", "transferTo") {
		return fmt.Sprintf("transfer-from:%s,to:%s", c.Str("transferFrom"), c.Str("transferTo"))
	}
	if c.Has("commodity") && c.Has("month") {
		return strings.ToLower(fmt.Sprintf("futures-%s-%s", c.Str("commodity"), c.Str("month")))
	}
	return ""
}

func (st *state) fillInventory(tx *model.Tx, c model.Row) error {
	inv := st.inventory
	qty, err := c.DecimalOrZero(inv.QtyKey)
	if err != nil {
		return err
	}
	if inv.IsOutCategory(tx.Category) && qty.IsPositive() {
		qty = qty.Neg()
	}
	it := &model.InventoryTx{Qty: qty}

	balanceKey := inv.QtyKey + "Balance"
	if !c.Has(balanceKey) {
		balanceKey = "qtyBalance"
	}
	qb, err := c.Decimal(balanceKey)
	if err != nil {
		return err
	}
	switch {
	case qb.Valid:
		it.QtyBalance = qb.Decimal
	case st.prev != nil && st.prev.Inventory != nil:
		it.QtyBalance = st.prev.Inventory.QtyBalance.Add(qty)
	default:
		it.QtyBalance = qty
	}

	ave, err := c.Decimal("aveValuePerQty")
	if err != nil {
		return err
	}
	switch {
	case ave.Valid:
		it.AveValuePerQty = ave.Decimal
	case !it.QtyBalance.IsZero():
		it.AveValuePerQty = tx.Balance.DivRound(it.QtyBalance, 4)
	}
	tx.Inventory = it

	if inv.IsLivestock() {
		return st.fillLivestock(tx, c)
	}
	return nil
}

func (st *state) fillLivestock(tx *model.Tx, c model.Row) error {
	var prev *model.LivestockTx
	if st.prev != nil {
		prev = st.prev.Livestock
	}
	lt := &model.LivestockTx{}
	var err error
	if lt.Weight, err = c.DecimalOrZero("weight"); err != nil {
		return err
	}
	if st.inventory.IsOutCategory(tx.Category) && lt.Weight.IsPositive() {
		lt.Weight = lt.Weight.Neg()
	}
	if lt.TaxAmount, err = c.DecimalOrZero("taxAmount"); err != nil {
		return err
	}
	if lt.WeightBalance, err = runningValue(c, "weightBalance", lt.Weight, prev, func(p *model.LivestockTx) decimal.Decimal { return p.WeightBalance }); err != nil {
		return err
	}
	if lt.TaxBalance, err = runningValue(c, "taxBalance", lt.TaxAmount, prev, func(p *model.LivestockTx) decimal.Decimal { return p.TaxBalance }); err != nil {
		return err
	}
	tx.Livestock = lt
	return nil
}

// runningValue reads a balance column, or continues the previous row's
// balance by delta when blank.
func runningValue(c model.Row, key string, delta decimal.Decimal, prev *model.LivestockTx, get func(*model.LivestockTx) decimal.Decimal) (decimal.Decimal, error) {
	v, err := c.Decimal(key)
	if err != nil {
		return decimal.Zero, err
	}
	if v.Valid {
		return v.Decimal, nil
	}
	if prev != nil {
		return get(prev).Add(delta), nil
	}
	return delta, nil
}
