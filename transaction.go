package finbook

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Split is one leg of a double-entry transaction, tying a signed amount to
// one account.
//
// Value is the amount expressed in the transaction's currency. Quantity is
// the amount in the account's own commodity: when the transaction currency
// equals the account commodity the two are equal, otherwise Quantity is
// the account-commodity amount (shares of a stock, units of a foreign
// currency) and Value its equivalent at the transaction date.
type Split struct {
	Account  *Account
	Value    Money // in the transaction currency
	Quantity Money // in the account's commodity
}

// Transaction is a dated, ordered collection of splits denominated in a
// single currency. A transaction is only part of history once Validate
// has accepted it.
type Transaction struct {
	ID          uuid.UUID
	Currency    *Commodity
	Date        Date
	Description string
	Splits      []Split
}

// NewTransaction builds a transaction in the given currency.
func NewTransaction(currency *Commodity, on Date, description string, splits ...Split) *Transaction {
	return &Transaction{
		ID:          uuid.New(),
		Currency:    currency,
		Date:        on,
		Description: description,
		Splits:      splits,
	}
}

// NewSplit builds a split whose value and quantity coincide: the account
// commodity is the transaction currency.
func NewSplit(account *Account, value Money) Split {
	return Split{Account: account, Value: value, Quantity: value}
}

// NewCommoditySplit builds a split for an account whose commodity differs
// from the transaction currency.
func NewCommoditySplit(account *Account, value, quantity Money) Split {
	return Split{Account: account, Value: value, Quantity: quantity}
}

// Imbalance returns the sum of split values, which is zero for a balanced
// transaction.
func (t *Transaction) Imbalance() Money {
	sum := M(decimal.Zero, t.Currency.String())
	for _, s := range t.Splits {
		sum = sum.Add(s.Value)
	}
	return sum
}

// SplitFor returns the first split posting to the given account, if any.
func (t *Transaction) SplitFor(account *Account) (Split, bool) {
	for _, s := range t.Splits {
		if s.Account == account {
			return s, true
		}
	}
	return Split{}, false
}
