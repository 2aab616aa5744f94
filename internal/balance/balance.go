// Package balance implements the sixth pipeline stage: every stored running
// balance is replayed from the account's opening line.
package balance

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/farmledger/internal/model"
	"github.com/cleared-dev/farmledger/internal/money"
)

// Validate checks every account's balance chain. Checking an account stops
// at its first mismatch since every later balance depends on it. Accounts
// that pass are returned; the others are reported in one *model.MultiError.
func Validate(accts []model.Account, eps decimal.Decimal) ([]model.Account, error) {
	var valid []model.Account
	var merr *model.MultiError
	for _, a := range accts {
		if err := Check(a, eps); err != nil {
			merr = merr.Append(err)
			continue
		}
		valid = append(valid, a)
	}
	return valid, merr.ErrOrNil()
}

// chain is one running column checked along an account.
type chain struct {
	name    string
	delta   func(model.Tx) (decimal.Decimal, bool)
	balance func(model.Tx) decimal.Decimal
	money   bool
}

var (
	amountChain = chain{
		name:    "balance",
		delta:   func(t model.Tx) (decimal.Decimal, bool) { return t.Amount, true },
		balance: func(t model.Tx) decimal.Decimal { return t.Balance },
		money:   true,
	}
	qtyChain = chain{
		name: "qtyBalance",
		delta: func(t model.Tx) (decimal.Decimal, bool) {
			if t.Inventory == nil {
				return decimal.Zero, false
			}
			return t.Inventory.Qty, true
		},
		balance: func(t model.Tx) decimal.Decimal { return t.Inventory.QtyBalance },
	}
	weightChain = chain{
		name: "weightBalance",
		delta: func(t model.Tx) (decimal.Decimal, bool) {
			if t.Livestock == nil {
				return decimal.Zero, false
			}
			return t.Livestock.Weight, true
		},
		balance: func(t model.Tx) decimal.Decimal { return t.Livestock.WeightBalance },
	}
	taxChain = chain{
		name: "taxBalance",
		delta: func(t model.Tx) (decimal.Decimal, bool) {
			if t.Livestock == nil {
				return decimal.Zero, false
			}
			return t.Livestock.TaxAmount, true
		},
		balance: func(t model.Tx) decimal.Decimal { return t.Livestock.TaxBalance },
		money:   true,
	}
)

func chainsFor(s model.Settings) []chain {
	chains := []chain{amountChain}
	if inv, ok := s.(*model.InventorySettings); ok {
		chains = append(chains, qtyChain)
		if inv.IsLivestock() {
			chains = append(chains, weightChain, taxChain)
		}
	}
	return chains
}

// Check returns the first balance mismatch in a as a *model.LineError, or
// nil.
func Check(a model.Account, eps decimal.Decimal) *model.LineError {
	if len(a.Lines) == 0 {
		return nil
	}
	for i := 1; i < len(a.Lines); i++ {
		prev, tx := a.Lines[i-1], a.Lines[i]
		for _, c := range chainsFor(a.Settings) {
			delta, ok := c.delta(tx)
			if _, prevOK := c.delta(prev); !ok || !prevOK {
				return &model.LineError{Account: a.Name, Lineno: tx.Lineno, Msg: "missing " + c.name}
			}
			want := c.balance(prev).Add(delta)
			got := c.balance(tx)
			if money.Equal(got, want, eps) {
				continue
			}
			format := decimal.Decimal.String
			if c.money {
				format = money.Format
			}
			return &model.LineError{Account: a.Name, Lineno: tx.Lineno, Msg: fmt.Sprintf(
				"%s %s does not equal previous %s plus change %s = %s",
				c.name, format(got), format(c.balance(prev)), format(delta), format(want))}
		}
	}
	return nil
}
