package finbook

import (
	"fmt"

	"github.com/google/uuid"
)

// AccountType classifies an account in the tree.
type AccountType string

const (
	Asset      AccountType = "ASSET"
	Bank       AccountType = "BANK"
	Cash       AccountType = "CASH"
	Liability  AccountType = "LIABILITY"
	Credit     AccountType = "CREDIT"
	Equity     AccountType = "EQUITY"
	Income     AccountType = "INCOME"
	Expense    AccountType = "EXPENSE"
	Stock      AccountType = "STOCK"
	Mutual     AccountType = "MUTUAL"
	Investment AccountType = "INVESTMENT"
	Root       AccountType = "ROOT"
)

// ParseAccountType parses a string into an AccountType.
func ParseAccountType(s string) (AccountType, error) {
	switch t := AccountType(s); t {
	case Asset, Bank, Cash, Liability, Credit, Equity, Income, Expense,
		Stock, Mutual, Investment, Root:
		return t, nil
	default:
		return "", fmt.Errorf("unknown account type: %q", s)
	}
}

// Account is one node of the account tree. The core consumes accounts
// read-only: lifecycle and persistence belong to the surrounding
// application.
//
// The account type determines sign constraints on splits and whether the
// account's commodity is a tradable instrument rather than a currency.
type Account struct {
	ID        uuid.UUID
	Name      string
	Type      AccountType
	Commodity *Commodity
	Parent    *Account
}

// IsInvestment reports whether the account holds a tradable instrument.
func (a *Account) IsInvestment() bool {
	switch a.Type {
	case Stock, Mutual, Investment:
		return true
	}
	return false
}

// IsRoot reports whether the account is the tree root.
func (a *Account) IsRoot() bool { return a == nil || a.Type == Root }

func (a *Account) String() string {
	if a == nil {
		return "<nil account>"
	}
	return a.Name
}
