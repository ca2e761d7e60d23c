package finbook

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// QuoteMetadata is the structured description of a fetched market quote,
// stored alongside a price observation. Parsing and serialization happen
// at the persistence boundary; the core only reads it.
type QuoteMetadata struct {
	Price     decimal.Decimal `json:"price"`
	ChangePct float64         `json:"changePct"`
	ChangeAbs float64         `json:"changeAbs"`
	Currency  string          `json:"currency"`
}

// Quote is the shape a quote source returns for one ticker.
type Quote struct {
	Price     decimal.Decimal
	ChangePct float64
	ChangeAbs float64
	Currency  string
}

// QuoteFetcher is the interface to the remote quote service. The core
// never calls it; the surrounding ingestion layer does, then feeds the
// resulting observations into PriceStore construction.
type QuoteFetcher func(tickers []string) (map[string]Quote, error)

// Observations turns fetched quotes into price observations dated on a
// given day, one per instrument commodity with a quote. The quote's
// currency must resolve against the supplied commodities; an unknown
// currency is an ingestion defect.
func Observations(commodities []*Commodity, day Date, quotes map[string]Quote) ([]*PriceObservation, error) {
	currencies := make(map[string]*Commodity)
	for _, c := range commodities {
		if c.IsCurrency() {
			currencies[c.Mnemonic] = c
		}
	}

	var obs []*PriceObservation
	for _, c := range commodities {
		if c.IsCurrency() {
			continue
		}
		q, ok := quotes[c.Mnemonic]
		if !ok {
			continue
		}
		cur, ok := currencies[q.Currency]
		if !ok {
			return nil, fmt.Errorf("quote for %s is in unknown currency %q", c.Mnemonic, q.Currency)
		}
		obs = append(obs, &PriceObservation{
			Commodity: c,
			Currency:  cur,
			Date:      day,
			Rate:      q.Price,
			Quote: &QuoteMetadata{
				Price:     q.Price,
				ChangePct: q.ChangePct,
				ChangeAbs: q.ChangeAbs,
				Currency:  q.Currency,
			},
		})
	}
	return obs, nil
}
