package finbook

import (
	"fmt"
	"maps"
	"slices"
	"sort"
)

// Book is the hydrated object graph the core consumes: resolved
// commodities, the account tree, validated transactions in chronological
// order and the price observations. The surrounding application owns
// persistence; the core only ever sees a Book that is already in memory.
type Book struct {
	commodities  map[string]*Commodity // by mnemonic
	accounts     map[string]*Account   // by name
	transactions []*Transaction        // chronological, same-date order preserved
	observations []*PriceObservation
}

// NewBook creates an empty book.
func NewBook() *Book {
	return &Book{
		commodities: make(map[string]*Commodity),
		accounts:    make(map[string]*Account),
	}
}

// AddCommodity registers a resolved commodity. Mnemonics are unique.
func (b *Book) AddCommodity(c *Commodity) error {
	if _, dup := b.commodities[c.Mnemonic]; dup {
		return fmt.Errorf("commodity %q already declared", c.Mnemonic)
	}
	b.commodities[c.Mnemonic] = c
	return nil
}

// Commodity returns the commodity declared with this mnemonic, or nil.
func (b *Book) Commodity(mnemonic string) *Commodity { return b.commodities[mnemonic] }

// Commodities returns all declared commodities, sorted by mnemonic.
func (b *Book) Commodities() []*Commodity {
	mnemonics := slices.Sorted(maps.Keys(b.commodities))
	out := make([]*Commodity, 0, len(mnemonics))
	for _, m := range mnemonics {
		out = append(out, b.commodities[m])
	}
	return out
}

// AddAccount registers an account. Names are unique within a book.
func (b *Book) AddAccount(a *Account) error {
	if _, dup := b.accounts[a.Name]; dup {
		return fmt.Errorf("account %q already declared", a.Name)
	}
	b.accounts[a.Name] = a
	return nil
}

// Account returns the account declared with this name, or nil.
func (b *Book) Account(name string) *Account { return b.accounts[name] }

// Accounts returns all declared accounts, sorted by name.
func (b *Book) Accounts() []*Account {
	names := slices.Sorted(maps.Keys(b.accounts))
	out := make([]*Account, 0, len(names))
	for _, n := range names {
		out = append(out, b.accounts[n])
	}
	return out
}

// Append validates transactions and commits them to history, maintaining
// chronological order. The sort is stable: transactions on the same day
// keep their insertion order. A validation failure rejects the whole
// append.
func (b *Book) Append(txs ...*Transaction) error {
	for _, tx := range txs {
		if err := Validate(tx); err != nil {
			return fmt.Errorf("invalid transaction on %s: %w", tx.Date, err)
		}
	}
	b.transactions = append(b.transactions, txs...)
	sort.SliceStable(b.transactions, func(i, j int) bool {
		return b.transactions[i].Date.Before(b.transactions[j].Date)
	})
	return nil
}

// Transactions returns the full history in chronological order.
func (b *Book) Transactions() []*Transaction { return b.transactions }

// AccountTransactions returns the chronological history of transactions
// with a split posting to the given account.
func (b *Book) AccountTransactions(account *Account) []*Transaction {
	var out []*Transaction
	for _, tx := range b.transactions {
		if _, ok := tx.SplitFor(account); ok {
			out = append(out, tx)
		}
	}
	return out
}

// AddObservation records a price observation.
func (b *Book) AddObservation(o *PriceObservation) { b.observations = append(b.observations, o) }

// Observations returns the recorded price observations.
func (b *Book) Observations() []*PriceObservation { return b.observations }

// PriceStore builds the price store from the book's observations.
func (b *Book) PriceStore() (*PriceStore, error) {
	return NewPriceStore(b.observations...)
}

// Position derives the investment position of a named account in the
// given reporting currency, as of today.
func (b *Book) Position(accountName, mainCurrency string) (*InvestmentPosition, error) {
	account := b.Account(accountName)
	if account == nil {
		return nil, fmt.Errorf("account %q not declared", accountName)
	}
	main := b.Commodity(mainCurrency)
	if main == nil {
		return nil, fmt.Errorf("currency %q not declared", mainCurrency)
	}
	store, err := b.PriceStore()
	if err != nil {
		return nil, err
	}
	return NewInvestmentPosition(account, b.AccountTransactions(account), store, main)
}
