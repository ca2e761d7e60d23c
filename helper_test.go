package finbook

import "github.com/shopspring/decimal"

// EUR is a helper for test to create euro money from const
func EUR(v float64) Money { return M(v, "EUR") }

// USD is a helper for test to create usd money from const
func USD(v float64) Money { return M(v, "USD") }

// dec parses a decimal literal, panicking on bad test data.
func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// obs is a helper for test to create a plain price observation.
func obs(commodity, currency *Commodity, on string, rate string) *PriceObservation {
	return &PriceObservation{
		Commodity: commodity,
		Currency:  currency,
		Date:      MustParseDate(on),
		Rate:      dec(rate),
	}
}

// quoted is a helper for test to create an instrument observation carrying
// quote metadata, as a live fetch would.
func quoted(instrument, currency *Commodity, on string, rate string) *PriceObservation {
	o := obs(instrument, currency, on, rate)
	o.Quote = &QuoteMetadata{Price: o.Rate, Currency: currency.Mnemonic}
	return o
}

// brokerage is a helper for test to create the account fixture used by the
// investment tests: a stock account holding an instrument, the broker cash
// account paying for it, and a dividend income account.
type brokerage struct {
	eur, usd *Commodity
	tick     *Commodity
	root     *Account
	stock    *Account
	broker   *Account
	income   *Account
}

func newBrokerage(brokerCurrency string) *brokerage {
	b := &brokerage{
		eur:  NewCurrency("EUR"),
		usd:  NewCurrency("USD"),
		tick: NewInstrument("TICK"),
	}
	cur := b.eur
	if brokerCurrency == "USD" {
		cur = b.usd
	}
	b.root = &Account{Name: "Root", Type: Root}
	b.stock = &Account{Name: "TICK shares", Type: Stock, Commodity: b.tick, Parent: b.root}
	b.broker = &Account{Name: "Broker", Type: Bank, Commodity: cur, Parent: b.root}
	b.income = &Account{Name: "Dividends", Type: Income, Commodity: b.eur, Parent: b.root}
	return b
}

// buy builds a balanced purchase of quantity units of the instrument for
// value units of the transaction currency.
func (b *brokerage) buy(on string, currency *Commodity, value, quantity float64) *Transaction {
	return NewTransaction(currency, MustParseDate(on), "buy",
		NewCommoditySplit(b.stock, M(value, currency.Mnemonic), M(quantity, "TICK")),
		NewSplit(b.broker, M(-value, currency.Mnemonic)),
	)
}

// sell builds a balanced sale, value and quantity given as positive numbers.
func (b *brokerage) sell(on string, currency *Commodity, value, quantity float64) *Transaction {
	return NewTransaction(currency, MustParseDate(on), "sell",
		NewCommoditySplit(b.stock, M(-value, currency.Mnemonic), M(-quantity, "TICK")),
		NewSplit(b.broker, M(value, currency.Mnemonic)),
	)
}
