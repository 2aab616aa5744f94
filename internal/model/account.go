package model

import "time"

// AccountType classifies a sheet by the shape of its rows.
type AccountType string

const (
	AccountTypeCash         AccountType = "cash"
	AccountTypeAsset        AccountType = "asset"
	AccountTypeInventory    AccountType = "inventory"
	AccountTypeFuturesCash  AccountType = "futures-cash"
	AccountTypeFuturesAsset AccountType = "futures-asset"
	AccountTypeInvalid      AccountType = "invalid"
)

// ParseAccountType maps a settings value to an AccountType. Unknown values
// report false.
func ParseAccountType(s string) (AccountType, bool) {
	switch t := AccountType(s); t {
	case AccountTypeCash, AccountTypeAsset, AccountTypeInventory,
		AccountTypeFuturesCash, AccountTypeFuturesAsset, AccountTypeInvalid:
		return t, true
	}
	return AccountTypeInvalid, false
}

// AccountRef identifies the account that owns a line.
type AccountRef struct {
	Name     string
	Filename string
}

// RawRow is one un-typed spreadsheet row keyed by column header.
type RawRow map[string]any

// RawAccount is a sheet as produced by a spreadsheet reader.
type RawAccount struct {
	Name     string
	Filename string
	Lines    []RawRow
}

// ValidatedLine is a row after settings/column validation.
type ValidatedLine struct {
	Lineno     int
	StmtLineno int // original statement line for re-imported futures sheets, 0 if none
	Acct       AccountRef
	Cells      Row
	AsOfDate   time.Time // resolved as-of date, set on synthesized origin rows
	Errors     []string
}

// Clone returns a deep copy of the line.
func (l ValidatedLine) Clone() ValidatedLine {
	l.Cells = l.Cells.Clone()
	l.Errors = cloneStrings(l.Errors)
	return l
}

// ValidatedRawAccount is a RawAccount whose settings have been parsed and
// whose rows carry line numbers.
type ValidatedRawAccount struct {
	Name     string
	Filename string
	Settings Settings
	Lines    []ValidatedLine
	Errors   []string
}

// Ref returns the account's identity.
func (a ValidatedRawAccount) Ref() AccountRef {
	return AccountRef{Name: a.Name, Filename: a.Filename}
}

// Clone returns a deep copy of the account.
func (a ValidatedRawAccount) Clone() ValidatedRawAccount {
	lines := make([]ValidatedLine, len(a.Lines))
	for i, l := range a.Lines {
		lines[i] = l.Clone()
	}
	a.Lines = lines
	a.Errors = cloneStrings(a.Errors)
	return a
}

// Account is a fully typed account: settings plus transactions.
type Account struct {
	Name     string
	Filename string
	Settings Settings
	Lines    []Tx
	Origin   []ValidatedLine // snapshot rows an asset account was synthesized from
	Errors   []string
}

// Ref returns the account's identity.
func (a Account) Ref() AccountRef {
	return AccountRef{Name: a.Name, Filename: a.Filename}
}

// Type is shorthand for a.Settings.AccountType().
func (a Account) Type() AccountType {
	if a.Settings == nil {
		return AccountTypeInvalid
	}
	return a.Settings.AccountType()
}

// Clone returns a deep copy of the account.
func (a Account) Clone() Account {
	lines := make([]Tx, len(a.Lines))
	for i, l := range a.Lines {
		lines[i] = l.Clone()
	}
	a.Lines = lines
	if a.Origin != nil {
		origin := make([]ValidatedLine, len(a.Origin))
		for i, o := range a.Origin {
			origin[i] = o.Clone()
		}
		a.Origin = origin
	}
	a.Errors = cloneStrings(a.Errors)
	return a
}

// HasErrors reports whether the account or any of its lines has errors.
func (a Account) HasErrors() bool {
	if len(a.Errors) > 0 {
		return true
	}
	for _, l := range a.Lines {
		if len(l.Errors) > 0 {
			return true
		}
	}
	return false
}

// CloneAccounts deep-copies a slice of accounts.
func CloneAccounts(accts []Account) []Account {
	out := make([]Account, len(accts))
	for i, a := range accts {
		out[i] = a.Clone()
	}
	return out
}

// CompositeAccount is many accounts' transactions merged into one timeline.
type CompositeAccount struct {
	Lines []Tx
	Accts []Account
}

// FinalAccounts is the pipeline's terminal artifact.
type FinalAccounts struct {
	Tax       CompositeAccount
	Mkt       CompositeAccount
	Originals []Account
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s...)
}
