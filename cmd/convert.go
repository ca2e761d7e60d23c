package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/clairet/finbook"
	"github.com/google/subcommands"
	"github.com/shopspring/decimal"
)

// convertCmd holds the flags for the 'convert' subcommand.
type convertCmd struct {
	date string
}

func (*convertCmd) Name() string     { return "convert" }
func (*convertCmd) Synopsis() string { return "express an amount of one commodity in another" }
func (*convertCmd) Usage() string {
	return `fbk convert [-d <date>] <amount> <from> <to>

  Converts an amount between two commodities declared in the book, using
  the book's prices on the given date. Instruments are priced through
  their quote currency first.
`
}

func (c *convertCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", "", "Date of the rates to use (defaults to the most recent)")
}

func (c *convertCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 3 {
		fmt.Fprintln(os.Stderr, "Error: expected <amount> <from> <to>")
		return subcommands.ExitUsageError
	}

	amount, err := decimal.NewFromString(f.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing amount: %v\n", err)
		return subcommands.ExitUsageError
	}
	var when finbook.Date
	if c.date != "" {
		if when, err = finbook.ParseDate(c.date); err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
			return subcommands.ExitUsageError
		}
	}

	book, err := DecodeBook()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading book: %v\n", err)
		return subcommands.ExitFailure
	}

	from := book.Commodity(f.Arg(1))
	to := book.Commodity(f.Arg(2))
	if from == nil || to == nil {
		fmt.Fprintf(os.Stderr, "Error: commodity %q or %q is not declared in the book\n", f.Arg(1), f.Arg(2))
		return subcommands.ExitFailure
	}

	store, err := book.PriceStore()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error building prices: %v\n", err)
		return subcommands.ExitFailure
	}

	got, err := finbook.Convert(finbook.M(amount, from.Mnemonic), from, to, store, when)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error converting: %v\n", err)
		return subcommands.ExitFailure
	}

	fmt.Printf("%s = %s\n", finbook.M(amount, from.Mnemonic), got)
	return subcommands.ExitSuccess
}
