package accounts

import (
	"fmt"

	"github.com/cleared-dev/farmledger/internal/model"
)

// Service provides in-memory lookup over a set of accounts, keyed by name.
// Insertion order is preserved.
type Service struct {
	accounts []*model.Account
	byName   map[string]*model.Account
}

// NewService creates an empty Service.
func NewService() *Service {
	return &Service{byName: make(map[string]*model.Account)}
}

// Add registers an account. Names must be unique.
func (s *Service) Add(acct model.Account) (*model.Account, error) {
	if _, ok := s.byName[acct.Name]; ok {
		return nil, fmt.Errorf("duplicate account name %q", acct.Name)
	}
	a := &acct
	s.accounts = append(s.accounts, a)
	s.byName[a.Name] = a
	return a, nil
}

// FetchOrCreate returns the account called name, creating it from proto when
// it does not exist yet.
func (s *Service) FetchOrCreate(name string, proto func() model.Account) *model.Account {
	if a, ok := s.byName[name]; ok {
		return a
	}
	acct := proto()
	acct.Name = name
	a, _ := s.Add(acct)
	return a
}

// All returns copies of every account in insertion order.
func (s *Service) All() []model.Account {
	out := make([]model.Account, len(s.accounts))
	for i, a := range s.accounts {
		out[i] = *a
	}
	return out
}

// ByType returns all accounts of the given type.
func (s *Service) ByType(accountType model.AccountType) []model.Account {
	var result []model.Account
	for _, a := range s.accounts {
		if a.Type() == accountType {
			result = append(result, *a)
		}
	}
	return result
}

// Basis describes which views an account participates in.
func Basis(s model.Settings) string {
	if s == nil {
		return ""
	}
	b := s.Base()
	switch {
	case b.TaxOnly:
		return "tax"
	case b.MktOnly:
		return "mkt"
	}
	return "tax+mkt"
}
