package finbook

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Validation rule identifiers, reported in validation errors.
const (
	RuleBalance     = "balance"
	RuleCardinality = "cardinality"
	RuleDuplicate   = "duplicate-account"
	RuleSign        = "sign"
	RuleCoherence   = "currency-coherence"
)

// balanceTolerance absorbs rational-rounding artifacts from scale
// conversions; it does not permit real imbalance.
var balanceTolerance = decimal.New(1, -4) // 4 decimal places

// ValidationError reports one failed transaction invariant. The Rule field
// identifies the invariant; for the balance rule Imbalance carries the
// computed residue so it can be surfaced for correction.
type ValidationError struct {
	Rule      string
	Imbalance Money
	msg       string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Rule, e.msg)
}

// Validate checks a transaction against the double-entry invariants before
// it is committed to history. All rules are independent and all must pass;
// every failing rule is reported, joined into a single error.
//
// Validation failures are recoverable by the caller (edit and retry). A
// split without an account is not: it is a data-integrity defect and is
// reported alone, immediately.
func Validate(tx *Transaction) error {
	for i, s := range tx.Splits {
		if s.Account == nil {
			return fmt.Errorf("split %d of transaction %s has no account", i, tx.ID)
		}
	}

	var errs error

	// Cardinality: at least 2 splits, except for corporate actions
	// (stock splits) that move no cash and post a single split to an
	// investment account.
	switch {
	case len(tx.Splits) == 0:
		errs = errors.Join(errs, &ValidationError{Rule: RuleCardinality,
			msg: "transaction has no splits"})
	case len(tx.Splits) == 1 && !tx.Splits[0].Account.IsInvestment():
		errs = errors.Join(errs, &ValidationError{Rule: RuleCardinality,
			msg: fmt.Sprintf("single-split transactions are only allowed on investment accounts, not %s account %q",
				tx.Splits[0].Account.Type, tx.Splits[0].Account.Name)})
	}

	// Balance: the values in the transaction currency must sum to zero.
	if len(tx.Splits) >= 2 {
		if imbalance := tx.Imbalance(); imbalance.Amount().Abs().GreaterThanOrEqual(balanceTolerance) {
			errs = errors.Join(errs, &ValidationError{Rule: RuleBalance, Imbalance: imbalance,
				msg: fmt.Sprintf("splits do not balance, off by %s", imbalance)})
		}
	}

	// No two splits may reference the same account.
	seen := make(map[*Account]struct{}, len(tx.Splits))
	for _, s := range tx.Splits {
		if _, dup := seen[s.Account]; dup {
			errs = errors.Join(errs, &ValidationError{Rule: RuleDuplicate,
				msg: fmt.Sprintf("account %q appears in more than one split", s.Account.Name)})
		}
		seen[s.Account] = struct{}{}
	}

	// Sign by account type: income is credited (negative value), expense
	// is debited (positive value).
	for _, s := range tx.Splits {
		switch s.Account.Type {
		case Income:
			if !s.Value.IsNegative() {
				errs = errors.Join(errs, &ValidationError{Rule: RuleSign,
					msg: fmt.Sprintf("income account %q requires a negative value, got %s", s.Account.Name, s.Value)})
			}
		case Expense:
			if !s.Value.IsPositive() {
				errs = errors.Join(errs, &ValidationError{Rule: RuleSign,
					msg: fmt.Sprintf("expense account %q requires a positive value, got %s", s.Account.Name, s.Value)})
			}
		}
	}

	// Currency coherence: an income/expense subtree reports in a single
	// currency, so a non-root-child account must share its parent's
	// commodity.
	for _, s := range tx.Splits {
		a := s.Account
		if a.Type != Income && a.Type != Expense {
			continue
		}
		if a.Parent.IsRoot() || a.Parent.Commodity == nil {
			continue
		}
		if a.Commodity != nil && a.Commodity.Mnemonic != a.Parent.Commodity.Mnemonic {
			errs = errors.Join(errs, &ValidationError{Rule: RuleCoherence,
				msg: fmt.Sprintf("account %q is in %s but its parent %q is in %s",
					a.Name, a.Commodity, a.Parent.Name, a.Parent.Commodity)})
		}
	}

	return errs
}
