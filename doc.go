// Package finbook implements the double-entry accounting core of a
// multi-currency personal-finance ledger.
//
// The package is organized around five components:
//
//   - Money: an exact, fixed-point monetary value tagged with a currency.
//   - PriceStore: a date-indexed store of exchange rates and instrument
//     quotes with nearest-date resolution.
//   - Validate: the double-entry invariants a Transaction must satisfy
//     before it is committed to history.
//   - InvestmentPosition: a replay engine that derives quantity, cost
//     basis, realized profit and dividend income from an investment
//     account's history.
//   - Convert: composition of PriceStore lookups to express an amount in
//     another commodity.
//
// The core is synchronous and side-effect free: it consumes already
// hydrated object graphs (accounts, transactions, price observations) and
// never performs I/O. Persistence, quote fetching and presentation belong
// to the surrounding application.
package finbook
