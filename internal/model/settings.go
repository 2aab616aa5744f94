package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// InventoryTypeLivestock marks an inventory account that also tracks weight
// and a separate tax basis.
const InventoryTypeLivestock = "livestock"

// Inverted is the amounttype/balancetype value that negates a column.
const Inverted = "inverted"

// Settings is the per-account configuration parsed from SETTINGS rows. The
// concrete type is one of the *Settings structs in this file.
type Settings interface {
	AccountType() AccountType
	Base() *BaseSettings
	isSettings()
}

// BaseSettings holds the fields every account type shares.
type BaseSettings struct {
	Type        AccountType
	AcctName    string // overrides the synthesized sub-account name
	TaxOnly     bool
	MktOnly     bool
	AmountType  string
	BalanceType string
	Raw         map[string]any
}

func (b *BaseSettings) AccountType() AccountType { return b.Type }
func (b *BaseSettings) Base() *BaseSettings      { return b }
func (b *BaseSettings) isSettings()              {}

// CashSettings configures an ordinary bank or credit account.
type CashSettings struct {
	BaseSettings
}

// FuturesCashSettings configures a brokerage cash account.
type FuturesCashSettings struct {
	BaseSettings
}

// AssetSettings configures a snapshot-style asset sheet.
type AssetSettings struct {
	BaseSettings
	AsOfDate  time.Time
	PriorDate time.Time // zero when not declared
	IDColumn  string
}

// FuturesAssetSettings configures a sheet of open futures positions.
type FuturesAssetSettings struct {
	BaseSettings
	AsOfDate  time.Time // zero when every row carries its own asOfDate
	PriorDate time.Time
}

// InventorySettings configures a quantity-tracked inventory account.
type InventorySettings struct {
	BaseSettings
	StartYear     int
	OutCategories []string
	QtyKey        string
	InventoryType string
	ROG           decimal.Decimal // livestock rate of gain, weight per day
}

// IsLivestock reports whether the inventory tracks weight and tax basis.
func (s *InventorySettings) IsLivestock() bool {
	return s.InventoryType == InventoryTypeLivestock
}

// IsOutCategory reports whether category removes inventory.
func (s *InventorySettings) IsOutCategory(category string) bool {
	for _, c := range s.OutCategories {
		if c == category {
			return true
		}
	}
	return false
}

// InvalidSettings marks an account that failed validation.
type InvalidSettings struct {
	BaseSettings
}

// IsLivestock reports whether s configures a livestock inventory.
func IsLivestock(s Settings) bool {
	inv, ok := s.(*InventorySettings)
	return ok && inv.IsLivestock()
}

// Invalidate returns InvalidSettings carrying the shared fields of s.
func Invalidate(s Settings) Settings {
	inv := &InvalidSettings{}
	if s != nil {
		inv.BaseSettings = *s.Base()
	}
	inv.Type = AccountTypeInvalid
	return inv
}

// WithBasis returns a copy of an asset-like settings value restricted to one
// basis. Other variants are returned unchanged.
func WithBasis(s Settings, tax bool) Settings {
	var out Settings
	switch v := s.(type) {
	case *AssetSettings:
		c := *v
		out = &c
	case *FuturesAssetSettings:
		c := *v
		out = &c
	case *InventorySettings:
		c := *v
		out = &c
	default:
		return s
	}
	b := out.Base()
	b.TaxOnly = tax
	b.MktOnly = !tax
	return out
}
