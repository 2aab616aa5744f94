// Package taxmkt implements the last pipeline stage: accounts are merged
// into one chronological ledger per basis, tax and market, each with a
// single global running balance.
package taxmkt

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/farmledger/internal/model"
	"github.com/cleared-dev/farmledger/internal/money"
)

// Composite account names.
const (
	Tax = "tax"
	Mkt = "mkt"
)

// Separate builds the tax and market composites. Accounts restricted to one
// basis appear only in that view; the rest appear in both. Inputs are not
// modified and come back unchanged as Originals.
func Separate(accts []model.Account, eps decimal.Decimal) model.FinalAccounts {
	final := model.FinalAccounts{Originals: model.CloneAccounts(accts)}

	var tax, mkt []model.Account
	for _, a := range accts {
		a = a.Clone()
		openingAsAmount(&a)
		Recompute(a.Lines, eps)

		b := a.Settings.Base()
		if !b.MktOnly {
			t := a.Clone()
			if model.IsLivestock(t.Settings) {
				swapTaxBasis(t.Lines)
			}
			tax = append(tax, t)
		}
		if !b.TaxOnly {
			mkt = append(mkt, a)
		}
	}
	final.Tax = Composite(Tax, tax, eps)
	final.Mkt = Composite(Mkt, mkt, eps)
	return final
}

// openingAsAmount turns the opening START line's balance into its amount,
// so a later re-sort and recompute keeps the opening value. Later START
// lines are carry-overs whose balance already follows from the lines before
// them; they keep their own amount.
func openingAsAmount(a *model.Account) {
	if len(a.Lines) == 0 || !a.Lines[0].IsStart {
		return
	}
	tx := &a.Lines[0]
	tx.Amount = tx.Balance
	if inv := tx.Inventory; inv != nil {
		inv.Qty = inv.QtyBalance
	}
	if lt := tx.Livestock; lt != nil {
		lt.Weight = lt.WeightBalance
		lt.TaxAmount = lt.TaxBalance
	}
}

// swapTaxBasis moves livestock tax figures into the primary amount and
// balance, keeping the market figures in MktAmount and MktBalance.
func swapTaxBasis(lines []model.Tx) {
	for i := range lines {
		tx := &lines[i]
		lt := tx.Livestock
		if lt == nil {
			continue
		}
		lt.MktAmount = decimal.NewNullDecimal(tx.Amount)
		lt.MktBalance = decimal.NewNullDecimal(tx.Balance)
		tx.Amount, lt.TaxAmount = lt.TaxAmount, tx.Amount
		tx.Balance, lt.TaxBalance = lt.TaxBalance, tx.Balance
	}
}

// Composite merges the lines of accts behind an aggregate START dated one
// day before the earliest transaction, then sorts and recomputes.
func Composite(name string, accts []model.Account, eps decimal.Decimal) model.CompositeAccount {
	c := model.CompositeAccount{Accts: accts}
	var earliest *model.Tx
	for _, a := range accts {
		for _, tx := range a.Lines {
			c.Lines = append(c.Lines, tx.Clone())
		}
	}
	for i := range c.Lines {
		if earliest == nil || c.Lines[i].Date.Before(earliest.Date) {
			earliest = &c.Lines[i]
		}
	}
	if earliest == nil {
		return c
	}
	start := model.Tx{
		Date:        model.AddDays(earliest.Date, -1),
		Description: model.CategoryStart,
		Category:    model.CategoryStart,
		Acct:        model.AccountRef{Name: name},
		IsStart:     true,
	}
	c.Lines = append([]model.Tx{start}, c.Lines...)
	Recompute(c.Lines, eps)
	return c
}

// Recompute stably sorts lines by date and rebuilds every running balance
// from zero, cleaning sub-epsilon residue. It is a no-op on lines that are
// already sorted with correct balances.
func Recompute(lines []model.Tx, eps decimal.Decimal) {
	sort.SliceStable(lines, func(i, j int) bool {
		return lines[i].Date.Before(lines[j].Date)
	})
	balance := decimal.Zero
	qty := map[string]decimal.Decimal{}
	weight := map[string]decimal.Decimal{}
	tax := map[string]decimal.Decimal{}
	for i := range lines {
		tx := &lines[i]
		balance = money.Clean(balance.Add(tx.Amount), eps)
		tx.Balance = balance
		acct := tx.Acct.Name
		if inv := tx.Inventory; inv != nil {
			qty[acct] = money.Clean(qty[acct].Add(inv.Qty), eps)
			inv.QtyBalance = qty[acct]
		}
		if lt := tx.Livestock; lt != nil {
			weight[acct] = money.Clean(weight[acct].Add(lt.Weight), eps)
			lt.WeightBalance = weight[acct]
			tax[acct] = money.Clean(tax[acct].Add(lt.TaxAmount), eps)
			lt.TaxBalance = tax[acct]
		}
	}
}
