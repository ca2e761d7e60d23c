package finbook

import (
	"fmt"

	"github.com/google/uuid"
)

// CommodityKind discriminates between currencies and tradable instruments.
type CommodityKind string

const (
	// CurrencyKind is a fiat currency (EUR, USD, ...).
	CurrencyKind CommodityKind = "currency"
	// InstrumentKind is a tradable instrument (a stock or fund ticker)
	// quoted in some currency.
	InstrumentKind CommodityKind = "instrument"
)

// Commodity is the fully resolved identity of a currency or instrument.
//
// The core only ever deals in resolved commodities: a price observation or
// an account holding a bare mnemonic with no identity is a contract
// violation, not a recoverable state.
type Commodity struct {
	ID       uuid.UUID
	Mnemonic string
	Kind     CommodityKind
}

// NewCurrency returns a resolved currency commodity.
func NewCurrency(mnemonic string) *Commodity {
	return &Commodity{ID: uuid.New(), Mnemonic: mnemonic, Kind: CurrencyKind}
}

// NewInstrument returns a resolved instrument commodity.
func NewInstrument(mnemonic string) *Commodity {
	return &Commodity{ID: uuid.New(), Mnemonic: mnemonic, Kind: InstrumentKind}
}

// IsCurrency reports whether the commodity is a currency.
func (c *Commodity) IsCurrency() bool { return c != nil && c.Kind == CurrencyKind }

func (c *Commodity) String() string {
	if c == nil {
		return "<unresolved>"
	}
	return c.Mnemonic
}

// ParseCommodityKind parses a string into a CommodityKind.
func ParseCommodityKind(s string) (CommodityKind, error) {
	switch CommodityKind(s) {
	case CurrencyKind:
		return CurrencyKind, nil
	case InstrumentKind:
		return InstrumentKind, nil
	default:
		return "", fmt.Errorf("unknown commodity kind: %q", s)
	}
}
