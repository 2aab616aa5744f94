// Package synth implements the second pipeline stage. Snapshot rows of
// asset, futures-asset sheets (purchase, prior/current value, sale) become
// dated transactions in per-basis sub-accounts named "<basis>.<category>",
// with running balances cross-checked against the declared values.
package synth

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/farmledger/internal/accounts"
	"github.com/cleared-dev/farmledger/internal/model"
	"github.com/cleared-dev/farmledger/internal/money"
)

// Basis prefixes of synthesized sub-account names.
const (
	BasisTax = "tax"
	BasisMkt = "mkt"
)

// Result splits the stage output into accounts still awaiting
// standardization and fully synthesized sub-accounts.
type Result struct {
	Pending     []model.ValidatedRawAccount
	Synthesized []model.Account
}

// Synthesize converts every asset and futures-asset account into tax-only
// and market-only sub-accounts. Cash, futures-cash, inventory and invalid
// accounts pass through to Pending. Failures are recorded on the affected
// account; nothing aborts the batch.
func Synthesize(vaccts []model.ValidatedRawAccount, eps decimal.Decimal) Result {
	var res Result
	svc := accounts.NewService()
	var failed []model.Account

	for _, va := range vaccts {
		va = va.Clone()
		switch s := va.Settings.(type) {
		case *model.AssetSettings:
			if errs := distribute(svc, va, va.Lines, s.AsOfDate, assetBases(s.BaseSettings), s.AcctName); len(errs) > 0 {
				failed = append(failed, failedAccount(va, errs))
			}
		case *model.FuturesAssetSettings:
			lines, errs := groupFutures(va, s)
			errs = append(errs, distribute(svc, va, lines, s.AsOfDate, mktOnly, s.AcctName)...)
			if len(errs) > 0 {
				failed = append(failed, failedAccount(va, errs))
			}
		default:
			res.Pending = append(res.Pending, va)
		}
	}

	for _, a := range svc.All() {
		a := a
		build(&a, eps)
		res.Synthesized = append(res.Synthesized, a)
	}
	res.Synthesized = append(res.Synthesized, failed...)
	checkUnique(&res)
	return res
}

// basisFunc decides which bases a snapshot row contributes to.
type basisFunc func(cells model.Row) (tax, mkt bool)

func assetBases(b model.BaseSettings) basisFunc {
	return func(cells model.Row) (bool, bool) {
		switch {
		case b.TaxOnly:
			return true, false
		case b.MktOnly:
			return false, true
		}
		tax := cells.HasAny("taxPriorValue", "taxCurrentValue")
		mkt := cells.HasAny("mktPriorValue", "mktCurrentValue", "mktInitialValue", "saleDate", "saleValue")
		return tax, mkt
	}
}

func mktOnly(model.Row) (bool, bool) { return false, true }

// distribute appends every row to the sub-account of each basis it carries.
func distribute(svc *accounts.Service, va model.ValidatedRawAccount, lines []model.ValidatedLine, defaultAsOf time.Time, bases basisFunc, acctName string) []string {
	var errs []string
	for _, line := range lines {
		asOf, err := line.Cells.Date("asOfDate")
		if err != nil {
			errs = append(errs, fmt.Sprintf("line %d: %v", line.Lineno, err))
			continue
		}
		if asOf.IsZero() {
			asOf = defaultAsOf
		}
		line.AsOfDate = asOf

		name := acctName
		if name == "" {
			name = line.Cells.Str("category")
		}
		if name == "" {
			name = va.Name
		}

		tax, mkt := bases(line.Cells)
		if !tax && !mkt {
			errs = append(errs, fmt.Sprintf("line %d: row has neither tax nor market values", line.Lineno))
			continue
		}
		for _, basis := range []struct {
			on   bool
			tax  bool
			name string
		}{{tax, true, BasisTax}, {mkt, false, BasisMkt}} {
			if !basis.on {
				continue
			}
			isTax := basis.tax
			sub := svc.FetchOrCreate(basis.name+"."+name, func() model.Account {
				return model.Account{Filename: va.Filename, Settings: model.WithBasis(va.Settings, isTax)}
			})
			sub.Origin = append(sub.Origin, line.Clone())
		}
	}
	return errs
}

func failedAccount(va model.ValidatedRawAccount, errs []string) model.Account {
	return model.Account{
		Name:     va.Name,
		Filename: va.Filename,
		Settings: model.Invalidate(va.Settings),
		Origin:   va.Lines,
		Errors:   append(append([]string(nil), va.Errors...), errs...),
	}
}

// checkUnique flags every account whose name was already used.
func checkUnique(res *Result) {
	seen := make(map[string]bool)
	for i := range res.Pending {
		a := &res.Pending[i]
		if seen[a.Name] {
			a.Errors = append(a.Errors, fmt.Sprintf("duplicate account name %q", a.Name))
			a.Settings = model.Invalidate(a.Settings)
		}
		seen[a.Name] = true
	}
	for i := range res.Synthesized {
		a := &res.Synthesized[i]
		if seen[a.Name] {
			a.Errors = append(a.Errors, fmt.Sprintf("duplicate account name %q", a.Name))
		}
		seen[a.Name] = true
	}
}

// groupFutures merges futures positions that share an as-of date into one
// cumulative row. Per-contract fields are dropped.
func groupFutures(va model.ValidatedRawAccount, s *model.FuturesAssetSettings) ([]model.ValidatedLine, []string) {
	sums := []string{"mktCurrentValue", "mktInitialValue", "mktNetValueChange", "mktPriorValue"}
	var errs []string
	var out []model.ValidatedLine
	index := make(map[time.Time]int)
	counts := make(map[time.Time]int)

	for _, line := range va.Lines {
		asOf, err := line.Cells.Date("asOfDate")
		if err != nil {
			errs = append(errs, fmt.Sprintf("line %d: %v", line.Lineno, err))
			continue
		}
		if asOf.IsZero() {
			asOf = s.AsOfDate
		}
		i, ok := index[asOf]
		if !ok {
			i = len(out)
			index[asOf] = i
			cells := model.Row{"asOfDate": asOf}
			for _, k := range []string{"category", "priorDate"} {
				if line.Cells.Has(k) {
					cells[k] = line.Cells[k]
				}
			}
			out = append(out, model.ValidatedLine{Lineno: line.Lineno, Acct: line.Acct, Cells: cells})
		}
		counts[asOf]++
		agg := out[i].Cells
		for _, k := range sums {
			v, err := line.Cells.Decimal(k)
			if err != nil {
				errs = append(errs, fmt.Sprintf("line %d: %v", line.Lineno, err))
				continue
			}
			if !v.Valid {
				continue
			}
			prev, _ := agg.DecimalOrZero(k)
			agg[k] = prev.Add(v.Decimal)
		}
		if !agg.Has("category") && line.Cells.Has("category") {
			agg["category"] = line.Cells["category"]
		}
	}

	for i := range out {
		cells := out[i].Cells
		asOf, _ := cells.Date("asOfDate")
		cells["description"] = fmt.Sprintf("%d open futures positions", counts[asOf])
		if !cells.Has("mktCurrentValue") {
			cells["mktCurrentValue"] = decimal.Zero
		}
		if cells.Has("mktInitialValue") && cells.Has("mktNetValueChange") {
			init, _ := cells.DecimalOrZero("mktInitialValue")
			change, _ := cells.DecimalOrZero("mktNetValueChange")
			cur, _ := cells.DecimalOrZero("mktCurrentValue")
			if !money.SameCents(init.Add(change), cur) {
				errs = append(errs, fmt.Sprintf("line %d: positions as of %s: initial value %s plus net change %s does not equal current value %s",
					out[i].Lineno, model.FormatDate(asOf), money.Format(init), money.Format(change), money.Format(cur)))
			}
		}
	}
	return out, errs
}
