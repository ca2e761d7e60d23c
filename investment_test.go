package finbook

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestInvestmentPosition_AccumulatedBuys(t *testing.T) {
	b := newBrokerage("EUR")
	store, err := NewPriceStore(quoted(b.tick, b.eur, "2023-03-01", "8.00"))
	if err != nil {
		t.Fatalf("NewPriceStore() error = %v", err)
	}

	history := []*Transaction{
		b.buy("2023-01-10", b.eur, 1000, 122.8501),
		b.buy("2023-02-10", b.eur, 1700, 245.7002),
	}
	p, err := NewInvestmentPositionAsOf(b.stock, history, store, b.eur, MustParseDate("2023-12-31"))
	if err != nil {
		t.Fatalf("NewInvestmentPositionAsOf() error = %v", err)
	}

	if got, want := p.Quantity.String(), "368.55 TICK"; got != want {
		t.Errorf("Quantity = %q, want %q", got, want)
	}
	if got, want := p.Cost().String(), "2700.00 EUR"; got != want {
		t.Errorf("Cost() = %q, want %q", got, want)
	}
	if got, want := p.AverageCost().Truncate(3), dec("7.326"); !got.Equal(want) {
		t.Errorf("AverageCost() = %v, want %v", got, want)
	}
	if got, want := p.TotalBought.String(), "2700.00 EUR"; got != want {
		t.Errorf("TotalBought = %q, want %q", got, want)
	}
}

func TestInvestmentPosition_BuySellRoundTrip(t *testing.T) {
	b := newBrokerage("EUR")
	store, err := NewPriceStore(quoted(b.tick, b.eur, "2023-03-01", "7.00"))
	if err != nil {
		t.Fatalf("NewPriceStore() error = %v", err)
	}

	history := []*Transaction{
		b.buy("2023-01-10", b.eur, 700, 100),
		b.sell("2023-01-20", b.eur, 700, 100),
	}
	p, err := NewInvestmentPositionAsOf(b.stock, history, store, b.eur, MustParseDate("2023-12-31"))
	if err != nil {
		t.Fatalf("NewInvestmentPositionAsOf() error = %v", err)
	}

	if !p.RealizedProfit.IsZero() {
		t.Errorf("RealizedProfit = %v, want zero", p.RealizedProfit)
	}
	if !p.Quantity.IsZero() {
		t.Errorf("Quantity = %v, want zero", p.Quantity)
	}
	if !p.CostBasis.IsZero() {
		t.Errorf("CostBasis = %v, want zero", p.CostBasis)
	}
}

func TestInvestmentPosition_PartialSell(t *testing.T) {
	b := newBrokerage("EUR")
	store, err := NewPriceStore(quoted(b.tick, b.eur, "2023-03-01", "80.00"))
	if err != nil {
		t.Fatalf("NewPriceStore() error = %v", err)
	}

	history := []*Transaction{
		b.buy("2023-01-10", b.eur, 700, 10),
		b.sell("2023-02-10", b.eur, 400, 5),
	}
	p, err := NewInvestmentPositionAsOf(b.stock, history, store, b.eur, MustParseDate("2023-12-31"))
	if err != nil {
		t.Fatalf("NewInvestmentPositionAsOf() error = %v", err)
	}

	// Average cost 70: selling half releases 350 of basis, the 400 of
	// proceeds lock in 50 of profit.
	if got, want := p.RealizedProfit.String(), "50.00 EUR"; got != want {
		t.Errorf("RealizedProfit = %q, want %q", got, want)
	}
	if got, want := p.CostBasis.String(), "350.00 EUR"; got != want {
		t.Errorf("CostBasis = %q, want %q", got, want)
	}
	if got, want := p.Quantity.String(), "5.00 TICK"; got != want {
		t.Errorf("Quantity = %q, want %q", got, want)
	}
	if got := p.RealizedProfitPercent(); !got.Equal(Percent(7.1428)) {
		t.Errorf("RealizedProfitPercent() = %v, want ~7.14%%", got)
	}
}

func TestInvestmentPosition_SplitConservesCost(t *testing.T) {
	b := newBrokerage("EUR")
	store, err := NewPriceStore(quoted(b.tick, b.eur, "2023-03-01", "7.00"))
	if err != nil {
		t.Fatalf("NewPriceStore() error = %v", err)
	}

	split := NewTransaction(b.eur, MustParseDate("2023-02-01"), "2:1 split",
		NewCommoditySplit(b.stock, EUR(0), M(10, "TICK")))

	history := []*Transaction{
		b.buy("2023-01-10", b.eur, 700, 10),
		split,
	}
	p, err := NewInvestmentPositionAsOf(b.stock, history, store, b.eur, MustParseDate("2023-12-31"))
	if err != nil {
		t.Fatalf("NewInvestmentPositionAsOf() error = %v", err)
	}

	if got, want := p.Quantity.String(), "20.00 TICK"; got != want {
		t.Errorf("Quantity = %q, want %q", got, want)
	}
	if got, want := p.Cost().String(), "700.00 EUR"; got != want {
		t.Errorf("Cost() after split = %q, want %q (unchanged)", got, want)
	}
	// quantity x averageCost still equals the cost.
	product := p.Quantity.Amount().Mul(p.AverageCost())
	if diff := product.Sub(dec("700")).Abs(); diff.GreaterThan(dec("0.0001")) {
		t.Errorf("quantity x averageCost = %v, want 700 within tolerance", product)
	}
}

func TestInvestmentPosition_Dividends(t *testing.T) {
	b := newBrokerage("EUR")

	t.Run("income leg in the reporting currency", func(t *testing.T) {
		store, err := NewPriceStore(quoted(b.tick, b.eur, "2023-03-01", "7.00"))
		if err != nil {
			t.Fatalf("NewPriceStore() error = %v", err)
		}
		dividend := NewTransaction(b.eur, MustParseDate("2023-02-01"), "dividend",
			NewCommoditySplit(b.stock, EUR(0), M(0, "TICK")),
			NewSplit(b.broker, EUR(12.5)),
			NewSplit(b.income, EUR(-12.5)),
		)
		history := []*Transaction{b.buy("2023-01-10", b.eur, 700, 10), dividend}
		p, err := NewInvestmentPositionAsOf(b.stock, history, store, b.eur, MustParseDate("2023-12-31"))
		if err != nil {
			t.Fatalf("NewInvestmentPositionAsOf() error = %v", err)
		}

		want := []DividendEvent{{
			When:       MustParseDate("2023-02-01"),
			Amount:     EUR(12.5),
			AmountMain: EUR(12.5),
		}}
		if diff := cmp.Diff(want, p.Dividends, cmp.Comparer(Money.Equal), cmp.Comparer(func(a, b Date) bool { return a == b })); diff != "" {
			t.Errorf("Dividends mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("no income leg converts the broker amount", func(t *testing.T) {
		bu := newBrokerage("USD")
		other := &Account{Name: "Retained", Type: Equity, Commodity: bu.usd, Parent: bu.root}
		store, err := NewPriceStore(
			quoted(bu.tick, bu.usd, "2023-03-01", "7.00"),
			obs(bu.usd, bu.eur, "2023-02-01", "0.90"),
		)
		if err != nil {
			t.Fatalf("NewPriceStore() error = %v", err)
		}
		dividend := NewTransaction(bu.usd, MustParseDate("2023-02-01"), "dividend",
			NewCommoditySplit(bu.stock, USD(0), M(0, "TICK")),
			NewSplit(bu.broker, USD(10)),
			NewSplit(other, USD(-10)),
		)
		history := []*Transaction{bu.buy("2023-01-10", bu.usd, 700, 10), dividend}
		p, err := NewInvestmentPositionAsOf(bu.stock, history, store, bu.eur, MustParseDate("2023-12-31"))
		if err != nil {
			t.Fatalf("NewInvestmentPositionAsOf() error = %v", err)
		}

		if len(p.Dividends) != 1 {
			t.Fatalf("len(Dividends) = %d, want 1", len(p.Dividends))
		}
		got := p.Dividends[0]
		if want := USD(10); !got.Amount.Equal(want) {
			t.Errorf("Amount = %v, want %v", got.Amount, want)
		}
		if want := EUR(9); !got.AmountMain.Equal(want) {
			t.Errorf("AmountMain = %v, want %v", got.AmountMain, want)
		}
	})

	t.Run("income leg outside the reporting currency is fatal", func(t *testing.T) {
		bu := newBrokerage("USD")
		usIncome := &Account{Name: "US Dividends", Type: Income, Commodity: bu.usd, Parent: bu.root}
		store, err := NewPriceStore(quoted(bu.tick, bu.usd, "2023-03-01", "7.00"))
		if err != nil {
			t.Fatalf("NewPriceStore() error = %v", err)
		}
		dividend := NewTransaction(bu.usd, MustParseDate("2023-02-01"), "dividend",
			NewCommoditySplit(bu.stock, USD(0), M(0, "TICK")),
			NewSplit(bu.broker, USD(10)),
			NewSplit(usIncome, USD(-10)),
		)
		history := []*Transaction{bu.buy("2023-01-10", bu.usd, 700, 10), dividend}
		_, err = NewInvestmentPositionAsOf(bu.stock, history, store, bu.eur, MustParseDate("2023-12-31"))
		if err == nil {
			t.Fatal("NewInvestmentPositionAsOf() should fail")
		}
		if !strings.Contains(err.Error(), "dividends must post to income accounts in the reporting currency") {
			t.Errorf("error = %q, want the dividend currency restriction", err)
		}
	})
}

func TestInvestmentPosition_Unclassifiable(t *testing.T) {
	b := newBrokerage("EUR")
	store, err := NewPriceStore(quoted(b.tick, b.eur, "2023-03-01", "7.00"))
	if err != nil {
		t.Fatalf("NewPriceStore() error = %v", err)
	}

	// Positive cash but negative quantity matches no known pattern.
	weird := NewTransaction(b.eur, MustParseDate("2023-01-10"), "corrupt",
		NewCommoditySplit(b.stock, EUR(100), M(-10, "TICK")),
		NewSplit(b.broker, EUR(-100)),
	)
	_, err = NewInvestmentPositionAsOf(b.stock, []*Transaction{weird}, store, b.eur, MustParseDate("2023-12-31"))
	if err == nil {
		t.Fatal("NewInvestmentPositionAsOf() should fail")
	}
	want := "cannot classify investment transaction " + weird.ID.String()
	if err.Error() != want {
		t.Errorf("error = %q, want %q", err, want)
	}
}

func TestInvestmentPosition_ConstructionGuards(t *testing.T) {
	b := newBrokerage("EUR")

	t.Run("missing live quote", func(t *testing.T) {
		store, err := NewPriceStore()
		if err != nil {
			t.Fatalf("NewPriceStore() error = %v", err)
		}
		_, err = NewInvestmentPosition(b.stock, nil, store, b.eur)
		if err == nil {
			t.Fatal("NewInvestmentPosition() should fail without a live quote")
		}
		if want := "price TICK." + Today().String() + " not found"; err.Error() != want {
			t.Errorf("error = %q, want %q", err, want)
		}
	})

	t.Run("quote without metadata", func(t *testing.T) {
		store, err := NewPriceStore(obs(b.tick, b.eur, "2023-03-01", "7.00"))
		if err != nil {
			t.Fatalf("NewPriceStore() error = %v", err)
		}
		_, err = NewInvestmentPosition(b.stock, nil, store, b.eur)
		if err == nil {
			t.Fatal("NewInvestmentPosition() should fail on a metadata-less quote")
		}
	})

	t.Run("non-investment account", func(t *testing.T) {
		store, err := NewPriceStore(quoted(b.tick, b.eur, "2023-03-01", "7.00"))
		if err != nil {
			t.Fatalf("NewPriceStore() error = %v", err)
		}
		if _, err := NewInvestmentPosition(b.broker, nil, store, b.eur); err == nil {
			t.Fatal("NewInvestmentPosition() should reject a bank account")
		}
	})

	t.Run("sell before holding anything", func(t *testing.T) {
		store, err := NewPriceStore(quoted(b.tick, b.eur, "2023-03-01", "7.00"))
		if err != nil {
			t.Fatalf("NewPriceStore() error = %v", err)
		}
		history := []*Transaction{b.sell("2023-01-10", b.eur, 700, 100)}
		if _, err := NewInvestmentPositionAsOf(b.stock, history, store, b.eur, MustParseDate("2023-12-31")); err == nil {
			t.Fatal("NewInvestmentPositionAsOf() should fail on a sell with no holdings")
		}
	})
}

func TestInvestmentPosition_Valuation(t *testing.T) {
	b := newBrokerage("EUR")
	store, err := NewPriceStore(quoted(b.tick, b.eur, "2023-03-01", "8.00"))
	if err != nil {
		t.Fatalf("NewPriceStore() error = %v", err)
	}

	history := []*Transaction{b.buy("2023-01-10", b.eur, 70, 10)}
	p, err := NewInvestmentPositionAsOf(b.stock, history, store, b.eur, MustParseDate("2023-12-31"))
	if err != nil {
		t.Fatalf("NewInvestmentPositionAsOf() error = %v", err)
	}

	if got, want := p.Value().String(), "80.00 EUR"; got != want {
		t.Errorf("Value() = %q, want %q", got, want)
	}
	if got, want := p.UnrealizedProfit().String(), "10.00 EUR"; got != want {
		t.Errorf("UnrealizedProfit() = %q, want %q", got, want)
	}
	if got := p.UnrealizedProfitPercent(); !got.Equal(Percent(14.2857)) {
		t.Errorf("UnrealizedProfitPercent() = %v, want ~14.29%%", got)
	}
	value, err := p.ValueInMainCurrency()
	if err != nil {
		t.Fatalf("ValueInMainCurrency() error = %v", err)
	}
	if want := EUR(80); !value.Equal(want) {
		t.Errorf("ValueInMainCurrency() = %v, want %v", value, want)
	}
}

func TestInvestmentPosition_AsOfFiltersLaterTransactions(t *testing.T) {
	b := newBrokerage("EUR")
	store, err := NewPriceStore(quoted(b.tick, b.eur, "2023-03-01", "7.00"))
	if err != nil {
		t.Fatalf("NewPriceStore() error = %v", err)
	}

	history := []*Transaction{
		b.buy("2023-01-10", b.eur, 700, 10),
		b.buy("2023-06-10", b.eur, 700, 10),
	}
	p, err := NewInvestmentPositionAsOf(b.stock, history, store, b.eur, MustParseDate("2023-03-31"))
	if err != nil {
		t.Fatalf("NewInvestmentPositionAsOf() error = %v", err)
	}
	if got, want := p.Quantity.String(), "10.00 TICK"; got != want {
		t.Errorf("Quantity as of March = %q, want %q", got, want)
	}
}
