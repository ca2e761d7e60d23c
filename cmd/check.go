package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
)

// checkCmd holds the flags for the 'check' subcommand.
type checkCmd struct{}

func (*checkCmd) Name() string     { return "check" }
func (*checkCmd) Synopsis() string { return "validate every transaction in the book" }
func (*checkCmd) Usage() string {
	return `fbk check

  Loads the book and reports whether its whole history satisfies the
  double-entry invariants. Decoding validates each transaction, so a book
  that loads is a book that checks out.
`
}

func (c *checkCmd) SetFlags(f *flag.FlagSet) {}

func (c *checkCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	book, err := DecodeBook()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading book: %v\n", err)
		return subcommands.ExitFailure
	}

	fmt.Printf("ok: %d commodities, %d accounts, %d transactions, %d prices\n",
		len(book.Commodities()), len(book.Accounts()), len(book.Transactions()), len(book.Observations()))
	return subcommands.ExitSuccess
}
