package finbook

import (
	"fmt"
	"slices"

	"github.com/shopspring/decimal"
)

// DividendEvent records one dividend received by an investment account,
// in the paying broker account's own currency and in the reporting
// currency.
type DividendEvent struct {
	When       Date
	Amount     Money
	AmountMain Money
}

// InvestmentPosition is the derived state of one investment account: the
// quantity held, the cost paid for it, the profit locked in by sales and
// the dividends received, in the instrument's quote currency and in a
// reporting currency.
//
// A position is a pure function of (splits, price store, reporting
// currency, as-of date). It is recomputed from scratch whenever any input
// changes, never mutated incrementally, and never persisted. Multiple
// positions may be built concurrently from the same store and history.
type InvestmentPosition struct {
	Account      *Account
	MainCurrency *Commodity

	Quantity           Money // instrument units held
	CostBasis          Money // in the instrument's quote currency
	CostBasisMain      Money // in the reporting currency, at transaction-date rates
	RealizedProfit     Money
	RealizedProfitMain Money
	TotalBought        Money // gross cost of all buys, quote currency
	Dividends          []DividendEvent

	currency   *Commodity        // the instrument's quote currency
	todayPrice *PriceObservation // live quote, required at construction
	store      *PriceStore
}

// NewInvestmentPosition replays the account's full history as of today.
func NewInvestmentPosition(account *Account, history []*Transaction, store *PriceStore, mainCurrency *Commodity) (*InvestmentPosition, error) {
	return NewInvestmentPositionAsOf(account, history, store, mainCurrency, Today())
}

// NewInvestmentPositionAsOf replays the account's history up to and
// including a given date.
//
// Construction fails hard when the position cannot be derived soundly: a
// non-investment account, an unresolved commodity, a missing or
// metadata-less live quote, an unclassifiable transaction, or a dividend
// posted to an income account outside the reporting currency. There is no
// partially-valid position.
func NewInvestmentPositionAsOf(account *Account, history []*Transaction, store *PriceStore, mainCurrency *Commodity, asOf Date) (*InvestmentPosition, error) {
	if !account.IsInvestment() {
		return nil, fmt.Errorf("account %q (%s) is not an investment account", account.Name, account.Type)
	}
	if account.Commodity == nil {
		return nil, fmt.Errorf("account %q has an unresolved commodity", account.Name)
	}
	if mainCurrency == nil || !mainCurrency.IsCurrency() {
		return nil, fmt.Errorf("reporting currency is not a resolved currency")
	}

	today, err := store.InvestmentPriceToday(account.Commodity.Mnemonic)
	if err != nil {
		return nil, err
	}
	native := today.Currency

	p := &InvestmentPosition{
		Account:            account,
		MainCurrency:       mainCurrency,
		Quantity:           M(0, account.Commodity.Mnemonic),
		CostBasis:          M(0, native.Mnemonic),
		CostBasisMain:      M(0, mainCurrency.Mnemonic),
		RealizedProfit:     M(0, native.Mnemonic),
		RealizedProfitMain: M(0, mainCurrency.Mnemonic),
		TotalBought:        M(0, native.Mnemonic),
		currency:           native,
		todayPrice:         today,
		store:              store,
	}

	// Replay in non-decreasing date order. The sort is stable: swapping
	// same-date buys and sells changes intermediate average costs, so the
	// input's own order is the tie-break.
	ordered := make([]*Transaction, 0, len(history))
	for _, tx := range history {
		if tx.Date.After(asOf) {
			continue
		}
		if _, ok := tx.SplitFor(account); ok {
			ordered = append(ordered, tx)
		}
	}
	slices.SortStableFunc(ordered, func(a, b *Transaction) int { return a.Date.Compare(b.Date) })

	for _, tx := range ordered {
		if err := p.replay(tx); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// replay applies one transaction's investment split to the accumulators.
// The split is classified by (split count, sign of value, sign of
// quantity); a pattern outside the classification table is fatal, since
// skipping it would corrupt the cost basis for every later event.
func (p *InvestmentPosition) replay(tx *Transaction) error {
	split, _ := tx.SplitFor(p.Account)
	n := len(tx.Splits)
	value, quantity := split.Value, split.Quantity

	switch {
	case n >= 2 && value.IsPositive() && quantity.IsPositive():
		return p.buy(tx, value, quantity)
	case n >= 2 && value.IsNegative() && quantity.IsNegative():
		return p.sell(tx, value, quantity)
	case value.IsZero() && quantity.IsPositive():
		// A pure stock split (single split, no cash) and a scrip issue
		// (extra legs, still no cash on the investment side) are the same
		// event: more units, same cost basis.
		p.Quantity = p.Quantity.Add(quantity)
		return nil
	case n > 2 && value.IsZero() && quantity.IsZero():
		return p.dividend(tx)
	}
	return fmt.Errorf("cannot classify investment transaction %s", tx.ID)
}

// nativeValue expresses a split value, denominated in the transaction
// currency, in the instrument's quote currency at the transaction date.
func (p *InvestmentPosition) nativeValue(tx *Transaction, value Money) (Money, error) {
	if value.Currency() == p.currency.Mnemonic {
		return value, nil
	}
	rate := p.store.GetPrice(tx.Currency, p.currency, tx.Date)
	return value.Convert(p.currency.Mnemonic, rate.Rate)
}

func (p *InvestmentPosition) buy(tx *Transaction, value, quantity Money) error {
	cost, err := p.nativeValue(tx, value)
	if err != nil {
		return err
	}
	costMain, err := cost.Convert(p.MainCurrency.Mnemonic, p.store.GetPrice(p.currency, p.MainCurrency, tx.Date).Rate)
	if err != nil {
		return err
	}
	p.Quantity = p.Quantity.Add(quantity)
	p.CostBasis = p.CostBasis.Add(cost)
	p.CostBasisMain = p.CostBasisMain.Add(costMain)
	p.TotalBought = p.TotalBought.Add(cost)
	return nil
}

func (p *InvestmentPosition) sell(tx *Transaction, value, quantity Money) error {
	if p.Quantity.IsZero() {
		return fmt.Errorf("cannot classify investment transaction %s: sell with no holdings", tx.ID)
	}
	proceeds, err := p.nativeValue(tx, value.Abs())
	if err != nil {
		return err
	}
	sold := quantity.Abs()

	// Average-cost method: the cost of the sale is the held cost, pro
	// rata the quantity sold. Totals are kept exact; the average itself
	// is only ever derived on read.
	ratio := sold.Amount().Div(p.Quantity.Amount())
	costOfSale := p.CostBasis.Mul(ratio)
	costOfSaleMain := p.CostBasisMain.Mul(ratio)

	gain := proceeds.Sub(costOfSale)
	gainMain, err := gain.Convert(p.MainCurrency.Mnemonic, p.store.GetPrice(p.currency, p.MainCurrency, tx.Date).Rate)
	if err != nil {
		return err
	}

	p.RealizedProfit = p.RealizedProfit.Add(gain)
	p.RealizedProfitMain = p.RealizedProfitMain.Add(gainMain)
	p.CostBasis = p.CostBasis.Sub(costOfSale)
	p.CostBasisMain = p.CostBasisMain.Sub(costOfSaleMain)
	p.Quantity = p.Quantity.Sub(sold)
	return nil
}

func (p *InvestmentPosition) dividend(tx *Transaction) error {
	// The broker split is the leg receiving the cash.
	var broker *Split
	var income *Split
	for i := range tx.Splits {
		s := &tx.Splits[i]
		if s.Account == p.Account {
			continue
		}
		if broker == nil && s.Value.IsPositive() {
			broker = s
		}
		if income == nil && s.Account.Type == Income {
			income = s
		}
	}
	if broker == nil {
		return fmt.Errorf("cannot classify investment transaction %s: dividend without a broker split", tx.ID)
	}
	if broker.Account.Commodity == nil {
		return fmt.Errorf("split of transaction %s posts to account %q with an unresolved commodity", tx.ID, broker.Account.Name)
	}

	// The dividend amount is the broker leg's quantity: the cash received
	// in the broker account's own currency.
	amount := broker.Quantity

	var amountMain Money
	if income != nil {
		if income.Account.Commodity == nil || income.Account.Commodity.Mnemonic != p.MainCurrency.Mnemonic {
			return fmt.Errorf("transaction %s: dividends must post to income accounts in the reporting currency %s, account %q is in %s",
				tx.ID, p.MainCurrency, income.Account.Name, income.Account.Commodity)
		}
		// The income leg already carries the reporting-currency amount, no
		// rate lookup needed.
		amountMain = income.Quantity.Abs()
	} else {
		rate := p.store.GetPrice(broker.Account.Commodity, p.MainCurrency, tx.Date)
		converted, err := amount.Convert(p.MainCurrency.Mnemonic, rate.Rate)
		if err != nil {
			return err
		}
		amountMain = converted
	}

	p.Dividends = append(p.Dividends, DividendEvent{When: tx.Date, Amount: amount, AmountMain: amountMain})
	return nil
}

// --- derived getters, pure functions of the accumulated state ---

// Currency returns the instrument's quote currency, as carried by its
// live quote.
func (p *InvestmentPosition) Currency() *Commodity { return p.currency }

// AverageCost returns the weighted-average price paid per unit held, in
// the quote currency.
func (p *InvestmentPosition) AverageCost() decimal.Decimal {
	if p.Quantity.IsZero() {
		return decimal.Zero
	}
	return p.CostBasis.Amount().Div(p.Quantity.Amount())
}

// AverageCostInMainCurrency returns the weighted-average price paid per
// unit held, in the reporting currency at transaction-date rates.
func (p *InvestmentPosition) AverageCostInMainCurrency() decimal.Decimal {
	if p.Quantity.IsZero() {
		return decimal.Zero
	}
	return p.CostBasisMain.Amount().Div(p.Quantity.Amount())
}

// Cost returns the cost basis of the open position.
func (p *InvestmentPosition) Cost() Money { return p.CostBasis }

// CostInMainCurrency returns the cost basis in the reporting currency.
func (p *InvestmentPosition) CostInMainCurrency() Money { return p.CostBasisMain }

// Value returns the market value of the position at the live quote.
func (p *InvestmentPosition) Value() Money {
	return M(p.Quantity.Amount().Mul(p.todayPrice.Rate), p.currency.Mnemonic)
}

// ValueInMainCurrency returns the market value converted to the reporting
// currency at today's rate.
func (p *InvestmentPosition) ValueInMainCurrency() (Money, error) {
	rate := p.store.GetPrice(p.currency, p.MainCurrency, Date{})
	return p.Value().Convert(p.MainCurrency.Mnemonic, rate.Rate)
}

// UnrealizedProfit returns the paper profit: market value minus cost.
func (p *InvestmentPosition) UnrealizedProfit() Money {
	return p.Value().Sub(p.CostBasis)
}

// UnrealizedProfitPercent returns the paper profit relative to cost.
func (p *InvestmentPosition) UnrealizedProfitPercent() Percent {
	if p.CostBasis.IsZero() {
		return 0
	}
	ratio := p.UnrealizedProfit().Amount().Div(p.CostBasis.Amount())
	return Percent(ratio.InexactFloat64() * 100)
}

// UnrealizedProfitInMainCurrency returns the paper profit in the
// reporting currency: today's value at today's rate minus the cost basis
// at transaction-date rates.
func (p *InvestmentPosition) UnrealizedProfitInMainCurrency() (Money, error) {
	value, err := p.ValueInMainCurrency()
	if err != nil {
		return Money{}, err
	}
	return value.Sub(p.CostBasisMain), nil
}

// RealizedProfitPercent returns the locked-in profit relative to the
// total amount ever spent on buys.
func (p *InvestmentPosition) RealizedProfitPercent() Percent {
	if p.TotalBought.IsZero() {
		return 0
	}
	ratio := p.RealizedProfit.Amount().Div(p.TotalBought.Amount())
	return Percent(ratio.InexactFloat64() * 100)
}
