// Package strict implements the fifth pipeline stage: every account is
// re-checked against the full transaction contract of its type before any
// balances are trusted.
package strict

import (
	"fmt"

	"github.com/cleared-dev/farmledger/internal/model"
)

// Livestock opening lines must price their weight with one of these note
// fields.
const (
	NoteAveValuePerWeight = "aveValuePerWeight"
	NotePriceWeightCurve  = "priceWeightCurve"
)

// Assert returns the accounts that satisfy the contract. Every failure,
// whether found here or carried from an earlier stage, is reported in one
// *model.MultiError as a *model.LineError or *model.AccountError; failing
// accounts are left out of the accepted set.
func Assert(accts []model.Account) ([]model.Account, error) {
	var accepted []model.Account
	var merr *model.MultiError
	for _, a := range accts {
		a = a.Clone()
		check(&a)
		if failures := model.Failures(a); len(failures) > 0 {
			for _, err := range failures {
				merr = merr.Append(err)
			}
			continue
		}
		accepted = append(accepted, a)
	}
	return accepted, merr.ErrOrNil()
}

func check(a *model.Account) {
	if a.Settings == nil || a.Type() == model.AccountTypeInvalid {
		if len(a.Errors) == 0 {
			a.Errors = append(a.Errors, "account settings are invalid")
		}
		return
	}
	if len(a.Lines) == 0 {
		a.Errors = append(a.Errors, "account has no transactions")
		return
	}
	if !a.Lines[0].IsStart {
		a.Errors = append(a.Errors, fmt.Sprintf("line %d: first line must be a START line", a.Lines[0].Lineno))
	}

	for i := range a.Lines {
		tx := &a.Lines[i]
		if tx.Date.IsZero() {
			tx.AddError("transaction has no date")
		}
		if tx.Acct.Name != a.Name {
			tx.AddError(fmt.Sprintf("transaction belongs to account %q", tx.Acct.Name))
		}
		switch s := a.Settings.(type) {
		case *model.AssetSettings, *model.FuturesAssetSettings:
			switch {
			case tx.Asset == nil:
				tx.AddError("asset transaction has no asset details")
			case tx.Asset.Pending:
				tx.AddError(fmt.Sprintf("%s amount was never resolved", tx.Asset.Type))
			}
		case *model.InventorySettings:
			if tx.Inventory == nil {
				tx.AddError("inventory transaction has no quantity")
			}
			if s.IsLivestock() && tx.Livestock == nil {
				tx.AddError("livestock transaction has no weight or tax amount")
			}
		}
	}

	if model.IsLivestock(a.Settings) {
		first := a.Lines[0]
		if !first.Note.Has(NoteAveValuePerWeight) && !first.Note.Has(NotePriceWeightCurve) {
			a.Errors = append(a.Errors, fmt.Sprintf("line %d: livestock opening line note needs %s or %s",
				first.Lineno, NoteAveValuePerWeight, NotePriceWeightCurve))
		}
	}
}
