package finbook

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Convert expresses an amount of commodity `from` in commodity `to` using
// the price store's rates on a given date (zero date means today).
//
// When `from` is an instrument its quote is resolved first, yielding an
// intermediate rate and the instrument's own quote currency; when that
// currency still differs from the target the exchange rate is chained in.
// This two-hop composition is the only place an instrument and a currency
// conversion are combined, and it stays exact through both hops: the rates
// are multiplied first and applied once.
func Convert(amount Money, from, to *Commodity, store *PriceStore, when Date) (Money, error) {
	if from == nil || to == nil {
		return Money{}, fmt.Errorf("cannot convert %s: unresolved commodity", amount)
	}

	rate := decimal.NewFromInt(1)
	cur := from
	if !from.IsCurrency() {
		obs, ok := store.GetInvestmentPrice(from.Mnemonic, when)
		if !ok {
			return Money{}, fmt.Errorf("price %s.%s not found", from.Mnemonic, when)
		}
		rate = obs.Rate
		cur = obs.Currency
	}
	if cur.Mnemonic != to.Mnemonic {
		rate = rate.Mul(store.GetPrice(cur, to, when).Rate)
	}
	return amount.Convert(to.Mnemonic, rate)
}
