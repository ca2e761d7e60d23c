package finbook

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// The book file is JSONL: one record per line, discriminated by a
// "record" field. Records reference commodities by mnemonic and accounts
// by name; decoding hydrates those references fully, so the in-memory
// Book never holds a dangling name.

type splitRecord struct {
	Account  string          `json:"account"`
	Value    decimal.Decimal `json:"value"`
	Quantity decimal.Decimal `json:"quantity"`
}

type bookRecord struct {
	Record string `json:"record"`

	// commodity
	Mnemonic string `json:"mnemonic,omitempty"`
	Kind     string `json:"kind,omitempty"`

	// account
	Name   string `json:"name,omitempty"`
	Type   string `json:"type,omitempty"`
	Parent string `json:"parent,omitempty"`

	// price
	Date      Date            `json:"date,omitzero"`
	Commodity string          `json:"commodity,omitempty"`
	Currency  string          `json:"currency,omitempty"`
	Rate      decimal.Decimal `json:"rate,omitempty"`
	Quote     *QuoteMetadata  `json:"quote,omitempty"`

	// transaction
	Description string        `json:"description,omitempty"`
	Splits      []splitRecord `json:"splits,omitempty"`
}

// DecodeBook reads a JSONL stream and returns the hydrated book.
// References must be declared before use; transactions are validated as
// they are appended, so a book that decodes without error is a book whose
// whole history passed the double-entry invariants.
func DecodeBook(r io.Reader) (*Book, error) {
	book := NewBook()
	scanner := bufio.NewScanner(r)
	line := 0

	for scanner.Scan() {
		line++
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}
		var rec bookRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			return nil, fmt.Errorf("line %d: could not decode record: %w", line, err)
		}

		var err error
		switch rec.Record {
		case "commodity":
			err = decodeCommodity(book, rec)
		case "account":
			err = decodeAccount(book, rec)
		case "price":
			err = decodePrice(book, rec)
		case "transaction":
			err = decodeTransaction(book, rec)
		default:
			err = fmt.Errorf("unknown record type %q", rec.Record)
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("could not read book: %w", err)
	}
	return book, nil
}

func decodeCommodity(book *Book, rec bookRecord) error {
	kind, err := ParseCommodityKind(rec.Kind)
	if err != nil {
		return err
	}
	c := NewCurrency(rec.Mnemonic)
	if kind == InstrumentKind {
		c = NewInstrument(rec.Mnemonic)
	}
	return book.AddCommodity(c)
}

func decodeAccount(book *Book, rec bookRecord) error {
	typ, err := ParseAccountType(rec.Type)
	if err != nil {
		return err
	}
	a := &Account{ID: uuid.New(), Name: rec.Name, Type: typ}
	if rec.Commodity != "" {
		if a.Commodity = book.Commodity(rec.Commodity); a.Commodity == nil {
			return fmt.Errorf("account %q references undeclared commodity %q", rec.Name, rec.Commodity)
		}
	}
	if rec.Parent != "" {
		if a.Parent = book.Account(rec.Parent); a.Parent == nil {
			return fmt.Errorf("account %q references undeclared parent %q", rec.Name, rec.Parent)
		}
	}
	return book.AddAccount(a)
}

func decodePrice(book *Book, rec bookRecord) error {
	commodity := book.Commodity(rec.Commodity)
	currency := book.Commodity(rec.Currency)
	if commodity == nil || currency == nil {
		return fmt.Errorf("price references undeclared commodity %q or currency %q", rec.Commodity, rec.Currency)
	}
	book.AddObservation(&PriceObservation{
		Commodity: commodity,
		Currency:  currency,
		Date:      rec.Date,
		Rate:      rec.Rate,
		Quote:     rec.Quote,
	})
	return nil
}

func decodeTransaction(book *Book, rec bookRecord) error {
	currency := book.Commodity(rec.Currency)
	if currency == nil {
		return fmt.Errorf("transaction references undeclared currency %q", rec.Currency)
	}
	splits := make([]Split, 0, len(rec.Splits))
	for _, s := range rec.Splits {
		account := book.Account(s.Account)
		if account == nil {
			return fmt.Errorf("split references undeclared account %q", s.Account)
		}
		commodity := currency.Mnemonic
		if account.Commodity != nil {
			commodity = account.Commodity.Mnemonic
		}
		splits = append(splits, Split{
			Account:  account,
			Value:    M(s.Value, currency.Mnemonic),
			Quantity: M(s.Quantity, commodity),
		})
	}
	return book.Append(NewTransaction(currency, rec.Date, rec.Description, splits...))
}

// Encode writes the book as JSONL, declarations first so the stream can
// be decoded in one pass.
func (b *Book) Encode(w io.Writer) error {
	writeLine := func(v json.Marshaler) error {
		data, err := v.MarshalJSON()
		if err != nil {
			return err
		}
		if _, err := w.Write(append(data, '\n')); err != nil {
			return err
		}
		return nil
	}

	for _, c := range b.Commodities() {
		var jw jsonObjectWriter
		jw.Append("record", "commodity")
		jw.Append("mnemonic", c.Mnemonic)
		jw.Append("kind", string(c.Kind))
		if err := writeLine(&jw); err != nil {
			return err
		}
	}

	// Parents are written before their children.
	written := make(map[*Account]bool)
	var writeAccount func(a *Account) error
	writeAccount = func(a *Account) error {
		if written[a] {
			return nil
		}
		if a.Parent != nil {
			if err := writeAccount(a.Parent); err != nil {
				return err
			}
		}
		written[a] = true
		var jw jsonObjectWriter
		jw.Append("record", "account")
		jw.Append("name", a.Name)
		jw.Append("type", string(a.Type))
		if a.Commodity != nil {
			jw.Append("commodity", a.Commodity.Mnemonic)
		}
		if a.Parent != nil {
			jw.Append("parent", a.Parent.Name)
		}
		return writeLine(&jw)
	}
	for _, a := range b.Accounts() {
		if err := writeAccount(a); err != nil {
			return err
		}
	}

	for _, o := range b.observations {
		var jw jsonObjectWriter
		jw.Append("record", "price")
		jw.Append("date", o.Date)
		jw.Append("commodity", o.Commodity.Mnemonic)
		jw.Append("currency", o.Currency.Mnemonic)
		jw.Append("rate", o.Rate)
		if o.Quote != nil {
			jw.Append("quote", o.Quote)
		}
		if err := writeLine(&jw); err != nil {
			return err
		}
	}

	for _, tx := range b.transactions {
		splits := make([]splitRecord, 0, len(tx.Splits))
		for _, s := range tx.Splits {
			splits = append(splits, splitRecord{
				Account:  s.Account.Name,
				Value:    s.Value.Amount(),
				Quantity: s.Quantity.Amount(),
			})
		}
		var jw jsonObjectWriter
		jw.Append("record", "transaction")
		jw.Append("date", tx.Date)
		jw.Append("currency", tx.Currency.Mnemonic)
		jw.Optional("description", tx.Description)
		jw.Append("splits", splits)
		if err := writeLine(&jw); err != nil {
			return err
		}
	}
	return nil
}
