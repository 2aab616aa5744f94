// Package split implements the fourth pipeline stage: a SPLIT base row is
// replaced by its child rows, which partition its amount.
package split

import (
	"fmt"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/farmledger/internal/model"
	"github.com/cleared-dev/farmledger/internal/money"
	"github.com/cleared-dev/farmledger/internal/standardize"
)

// Accounts expands the splits of every account. Inputs are not modified.
func Accounts(accts []model.Account) []model.Account {
	out := make([]model.Account, 0, len(accts))
	for _, a := range accts {
		out = append(out, Account(a.Clone()))
	}
	return out
}

// Account expands the splits of one account. A row whose category is SPLIT
// opens a split; following rows whose description is SPLIT are its
// children. The split closes at the next other row or the end of the
// account, and the children's amounts must add up to the base amount.
func Account(acct model.Account) model.Account {
	if acct.Type() == model.AccountTypeInvalid {
		return acct
	}
	e := &expander{}
	for _, tx := range acct.Lines {
		e.next(tx)
	}
	e.endSplit()
	acct.Lines = e.out
	model.PromoteLineErrors(&acct)
	return acct
}

type expander struct {
	out     []model.Tx
	base    *model.Tx
	baseIdx int
	sum     decimal.Decimal
	balance decimal.Decimal
}

func (e *expander) inSplit() bool { return e.base != nil }

func (e *expander) next(tx model.Tx) {
	switch {
	case len(tx.Errors) > 0:
		e.emit(tx)
	case tx.Category == model.CategorySplit:
		e.endSplit()
		e.startSplit(tx)
	case tx.Description == model.CategorySplit:
		if !e.inSplit() {
			tx.AddError("split line without a preceding SPLIT row")
			e.emit(tx)
			return
		}
		if err := e.child(&tx); err != nil {
			tx.AddError(err.Error())
		}
		e.emit(tx)
	default:
		e.endSplit()
		e.emit(tx)
	}
}

func (e *expander) emit(tx model.Tx) {
	e.out = append(e.out, tx)
	e.balance = tx.Balance
}

func (e *expander) startSplit(tx model.Tx) {
	base := tx
	e.base = &base
	e.baseIdx = len(e.out)
	e.sum = decimal.Zero
	if len(e.out) == 0 {
		e.balance = tx.Balance.Sub(tx.Amount)
	}
}

// child fills a child row from its own splitAmount and the base row.
func (e *expander) child(tx *model.Tx) error {
	base := e.base
	if tx.WrittenDate.IsZero() {
		tx.WrittenDate = base.WrittenDate
	}
	if tx.PostDate.IsZero() {
		tx.PostDate = base.PostDate
	}
	if tx.Who == "" {
		tx.Who = base.Who
	}

	amount := tx.SplitAmount
	if !amount.Valid {
		if tx.Amount.IsZero() {
			return fmt.Errorf("split line has no splitAmount")
		}
		amount = decimal.NewNullDecimal(tx.Amount)
	}
	tx.Amount = amount.Decimal
	tx.IsDebit = tx.Amount.IsNegative()
	e.sum = e.sum.Add(tx.Amount)
	tx.Balance = e.balance.Add(tx.Amount)
	tx.Description = fmt.Sprintf("%s: %s", model.CategorySplit, base.Description)

	if tx.Date.IsZero() {
		date, err := standardize.DateFor(tx.WrittenDate, tx.PostDate, tx.IsDebit)
		if err != nil {
			return err
		}
		if date.IsZero() {
			date = base.Date
		}
		tx.Date = date
	}
	return nil
}

// endSplit closes an open split. On a mismatch the base row is kept, at its
// original position, to carry the error.
func (e *expander) endSplit() {
	if e.base == nil {
		return
	}
	base := *e.base
	e.base = nil
	if money.SameCents(e.sum, base.Amount) {
		return
	}
	base.AddError(fmt.Sprintf("sum %s != base %s", money.Format(e.sum), money.Format(base.Amount)))
	e.out = slices.Insert(e.out, e.baseIdx, base)
}
