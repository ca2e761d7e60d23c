package finbook

import (
	"fmt"
	"slices"

	"github.com/shopspring/decimal"
)

// PriceObservation records that 1 unit of Commodity was worth Rate units
// of Currency on Date. Observations are immutable once read into the core.
//
// Synthetic marks an observation fabricated by the store when no real data
// exists: a visibly wrong 1:1 rate that downstream consumers can detect,
// rather than silent data corruption.
type PriceObservation struct {
	Commodity *Commodity
	Currency  *Commodity
	Date      Date
	Rate      decimal.Decimal
	Quote     *QuoteMetadata // structured quote data, nil for manual or imported prices
	Synthetic bool
}

func (o *PriceObservation) String() string {
	return fmt.Sprintf("%s %s/%s %s", o.Date, o.Commodity, o.Currency, o.Rate)
}

// series is a date-ordered sequence of observations with at most one
// observation per date (last write wins, matching the persistence
// boundary's upsert semantics).
type series struct {
	days []Date
	obs  []*PriceObservation
}

func (s *series) insert(o *PriceObservation) {
	i, found := slices.BinarySearchFunc(s.days, o.Date, Date.Compare)
	if found {
		s.obs[i] = o
		return
	}
	s.days = slices.Insert(s.days, i, o.Date)
	s.obs = slices.Insert(s.obs, i, o)
}

// latest returns the most recent observation, or nil for an empty series.
func (s *series) latest() *PriceObservation {
	if len(s.obs) == 0 {
		return nil
	}
	return s.obs[len(s.obs)-1]
}

// lookup resolves a date against a sparse series: an exact match when one
// exists, else the nearest observation at or after the requested day, else
// the latest one available. The series is never interpolated.
func (s *series) lookup(when Date) *PriceObservation {
	if len(s.obs) == 0 {
		return nil
	}
	i, found := slices.BinarySearchFunc(s.days, when, Date.Compare)
	if found {
		return s.obs[i]
	}
	if i < len(s.obs) {
		return s.obs[i]
	}
	return s.obs[len(s.obs)-1]
}

// PriceStore indexes price observations two ways: by (commodity, currency)
// pair for exchange rates, and by commodity alone for instruments, whose
// quote currency is intrinsic to the stored observation.
//
// A PriceStore is read-only after construction and safe to share between
// concurrent readers.
type PriceStore struct {
	pairs       map[string]*series // keyed by "commodity.currency"
	instruments map[string]*series // keyed by the instrument mnemonic
}

func pairKey(commodity, currency string) string { return commodity + "." + currency }

// NewPriceStore builds a store from a sequence of observations.
// Every observation must reference fully resolved commodities: a
// partially-hydrated reference is a contract violation and fails
// construction.
func NewPriceStore(observations ...*PriceObservation) (*PriceStore, error) {
	store := &PriceStore{
		pairs:       make(map[string]*series),
		instruments: make(map[string]*series),
	}
	for _, o := range observations {
		if o.Commodity == nil || o.Currency == nil {
			return nil, fmt.Errorf("price observation on %s references an unresolved commodity", o.Date)
		}
		if o.Commodity.IsCurrency() {
			key := pairKey(o.Commodity.Mnemonic, o.Currency.Mnemonic)
			ser, ok := store.pairs[key]
			if !ok {
				ser = &series{}
				store.pairs[key] = ser
			}
			ser.insert(o)
		} else {
			ser, ok := store.instruments[o.Commodity.Mnemonic]
			if !ok {
				ser = &series{}
				store.instruments[o.Commodity.Mnemonic] = ser
			}
			ser.insert(o)
		}
	}
	return store, nil
}

// GetPrice resolves the exchange rate between two commodities. A zero
// `when` means the most recent observation.
//
// When from and to are the same commodity the identity rate is returned
// without consulting the index. When no series exists at all for the pair
// the store logs the miss and degrades to a Synthetic identity observation
// so reporting queries remain total; callers detect the degradation
// through the Synthetic marker.
func (ps *PriceStore) GetPrice(from, to *Commodity, when Date) *PriceObservation {
	on := when
	if on.IsZero() {
		on = Today()
	}
	if from.Mnemonic == to.Mnemonic {
		return &PriceObservation{Commodity: from, Currency: to, Date: on, Rate: decimal.NewFromInt(1)}
	}
	ser, ok := ps.pairs[pairKey(from.Mnemonic, to.Mnemonic)]
	if !ok || len(ser.obs) == 0 {
		logger.Warn().
			Str("commodity", from.Mnemonic).
			Str("currency", to.Mnemonic).
			Stringer("date", on).
			Msg("no price series, falling back to identity rate")
		return &PriceObservation{Commodity: from, Currency: to, Date: on, Rate: decimal.NewFromInt(1), Synthetic: true}
	}
	if when.IsZero() {
		return ser.latest()
	}
	return ser.lookup(when)
}

// GetInvestmentPrice resolves an instrument quote using the same
// nearest-date algorithm as GetPrice. The returned observation's own
// Currency says what the instrument is quoted in; callers must not assume
// a currency ahead of the call. The boolean is false when the store holds
// no quote at all for the instrument.
func (ps *PriceStore) GetInvestmentPrice(mnemonic string, when Date) (*PriceObservation, bool) {
	ser, ok := ps.instruments[mnemonic]
	if !ok || len(ser.obs) == 0 {
		return nil, false
	}
	if when.IsZero() {
		return ser.latest(), true
	}
	return ser.lookup(when), true
}

// InvestmentPriceToday is the strict variant used by the investment
// engine: a missing current price for an open position is a data-integrity
// defect, not a reporting edge case, so the miss is a hard error. The
// quote must also carry structured metadata to be usable.
func (ps *PriceStore) InvestmentPriceToday(mnemonic string) (*PriceObservation, error) {
	obs, ok := ps.GetInvestmentPrice(mnemonic, Date{})
	if !ok {
		return nil, fmt.Errorf("price %s.%s not found", mnemonic, Today())
	}
	if obs.Quote == nil {
		return nil, fmt.Errorf("price %s.%s has no quote metadata", mnemonic, obs.Date)
	}
	return obs, nil
}
