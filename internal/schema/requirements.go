package schema

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/farmledger/internal/model"
	"github.com/cleared-dev/farmledger/internal/settings"
)

// buildSettings turns merged SETTINGS values into the typed variant for the
// declared accounttype.
func buildSettings(raw map[string]any) (model.Settings, []string) {
	var errs []string
	base := model.BaseSettings{
		Type:        model.AccountTypeCash,
		AcctName:    settings.String(raw, "acctname"),
		TaxOnly:     model.Truthy(raw["taxonly"]),
		MktOnly:     model.Truthy(raw["mktonly"]),
		AmountType:  settings.String(raw, "amounttype"),
		BalanceType: settings.String(raw, "balancetype"),
		Raw:         raw,
	}
	if v := settings.String(raw, "accounttype"); v != "" {
		t, ok := model.ParseAccountType(v)
		if !ok {
			errs = append(errs, fmt.Sprintf("unrecognized accounttype %q", v))
		}
		base.Type = t
	}
	if base.TaxOnly && base.MktOnly {
		errs = append(errs, "taxonly and mktonly are mutually exclusive")
	}
	for _, k := range []string{"amounttype", "balancetype"} {
		if v := settings.String(raw, k); v != "" && v != model.Inverted {
			errs = append(errs, fmt.Sprintf("%s must be %q if set, got %q", k, model.Inverted, v))
		}
	}

	switch base.Type {
	case model.AccountTypeCash:
		return &model.CashSettings{BaseSettings: base}, errs
	case model.AccountTypeFuturesCash:
		return &model.FuturesCashSettings{BaseSettings: base}, errs
	case model.AccountTypeAsset:
		s := &model.AssetSettings{BaseSettings: base, IDColumn: settings.String(raw, "idcolumn")}
		s.AsOfDate, errs = settingDate(raw, "asOfDate", errs)
		s.PriorDate, errs = settingDate(raw, "priorDate", errs)
		return s, errs
	case model.AccountTypeFuturesAsset:
		s := &model.FuturesAssetSettings{BaseSettings: base}
		s.AsOfDate, errs = settingDate(raw, "asOfDate", errs)
		s.PriorDate, errs = settingDate(raw, "priorDate", errs)
		return s, errs
	case model.AccountTypeInventory:
		s := &model.InventorySettings{
			BaseSettings:  base,
			OutCategories: settings.Strings(raw, "outCategories"),
			QtyKey:        settings.String(raw, "qtyKey"),
			InventoryType: settings.String(raw, "inventorytype"),
		}
		if y, ok := raw["startYear"].(decimal.Decimal); ok {
			s.StartYear = int(y.IntPart())
		} else {
			errs = append(errs, "inventory account requires a numeric startYear setting")
		}
		if s.QtyKey == "" {
			errs = append(errs, "inventory account requires a qtyKey setting")
		}
		switch s.InventoryType {
		case "":
			if !s.MktOnly {
				errs = append(errs, "inventory account must be mktonly")
			}
		case model.InventoryTypeLivestock:
			rog, ok := raw["rog"].(decimal.Decimal)
			if !ok || !rog.IsPositive() {
				errs = append(errs, "livestock inventory requires a positive rog setting")
			}
			s.ROG = rog
		default:
			errs = append(errs, fmt.Sprintf("unrecognized inventorytype %q", s.InventoryType))
		}
		return s, errs
	}
	return &model.InvalidSettings{BaseSettings: base}, append(errs, "account is marked invalid")
}

func settingDate(raw map[string]any, key string, errs []string) (time.Time, []string) {
	v, ok := raw[key]
	if !ok || v == nil || v == "" {
		return time.Time{}, errs
	}
	t, err := model.ParseDate(v)
	if err != nil {
		return time.Time{}, append(errs, fmt.Sprintf("setting %s: %v", key, err))
	}
	return t, errs
}

// columnSet is every header that holds a value in at least one line.
type columnSet map[string]bool

func columnsOf(lines []model.ValidatedLine) columnSet {
	cols := make(columnSet)
	for _, l := range lines {
		for k := range l.Cells {
			if l.Cells.Has(k) {
				cols[k] = true
			}
		}
	}
	return cols
}

func (c columnSet) any(keys ...string) bool {
	for _, k := range keys {
		if c[k] {
			return true
		}
	}
	return false
}

func (c columnSet) require(errs []string, keys ...string) []string {
	if c.any(keys...) {
		return errs
	}
	if len(keys) == 1 {
		return append(errs, fmt.Sprintf("missing required column %s", keys[0]))
	}
	return append(errs, fmt.Sprintf("missing required column: one of %s", strings.Join(keys, ", ")))
}

// checkColumns verifies the columns the account type needs are present.
func checkColumns(s model.Settings, lines []model.ValidatedLine) []string {
	if len(lines) == 0 {
		return []string{"account has no data rows"}
	}
	cols := columnsOf(lines)
	var errs []string
	switch v := s.(type) {
	case *model.CashSettings, *model.FuturesCashSettings:
		errs = cols.require(errs, "description")
		errs = cols.require(errs, "amount", "debit", "credit")
		errs = cols.require(errs, "date", "writtenDate", "postDate")
	case *model.AssetSettings:
		if v.AsOfDate.IsZero() && !cols["asOfDate"] {
			errs = append(errs, "asset account requires an asOfDate setting")
		}
		if v.AcctName == "" {
			errs = cols.require(errs, "category")
		}
		errs = cols.require(errs, "purchaseValue", "taxCurrentValue", "mktCurrentValue", "taxPriorValue", "mktPriorValue")
		if v.IDColumn != "" {
			errs = cols.require(errs, v.IDColumn)
		}
	case *model.FuturesAssetSettings:
		if v.AsOfDate.IsZero() && !cols["asOfDate"] {
			errs = append(errs, "futures-asset account requires an asOfDate setting or column")
		}
		errs = cols.require(errs, "mktCurrentValue")
	case *model.InventorySettings:
		errs = cols.require(errs, "date")
		errs = cols.require(errs, "description")
		errs = cols.require(errs, "amount", "debit", "credit")
		if v.QtyKey != "" {
			errs = cols.require(errs, v.QtyKey)
		}
		if v.IsLivestock() {
			errs = cols.require(errs, "weight")
			errs = cols.require(errs, "taxAmount")
		}
	}
	return errs
}
