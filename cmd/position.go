package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
)

// positionCmd holds the flags for the 'position' subcommand.
type positionCmd struct {
	currency string
}

func (*positionCmd) Name() string     { return "position" }
func (*positionCmd) Synopsis() string { return "display the derived position of an investment account" }
func (*positionCmd) Usage() string {
	return `fbk position [-c <currency>] <account>

  Replays the account's history and displays the open position: quantity
  held, cost basis, realized and unrealized profit, and dividends.
`
}

func (c *positionCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.currency, "c", "EUR", "Reporting currency for the position")
}

func (c *positionCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: expected exactly one account name")
		return subcommands.ExitUsageError
	}

	book, err := DecodeBook()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading book: %v\n", err)
		return subcommands.ExitFailure
	}

	p, err := book.Position(f.Arg(0), c.currency)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error deriving position: %v\n", err)
		return subcommands.ExitFailure
	}

	value, err := p.ValueInMainCurrency()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error valuing position: %v\n", err)
		return subcommands.ExitFailure
	}
	unrealizedMain, err := p.UnrealizedProfitInMainCurrency()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error valuing position: %v\n", err)
		return subcommands.ExitFailure
	}

	fmt.Printf("%s (%s, quoted in %s)\n", p.Account.Name, p.Account.Commodity, p.Currency())
	fmt.Printf("  Quantity:          %s\n", p.Quantity.StringScale(p.Quantity.Scale()))
	fmt.Printf("  Cost:              %s (avg %s)\n", p.Cost(), p.AverageCost())
	fmt.Printf("  Value:             %s (%s)\n", p.Value(), value)
	fmt.Printf("  Unrealized profit: %s (%s, %s)\n", p.UnrealizedProfit().SignedString(), unrealizedMain.SignedString(), p.UnrealizedProfitPercent().SignedString())
	fmt.Printf("  Realized profit:   %s (%s)\n", p.RealizedProfit.SignedString(), p.RealizedProfitPercent().SignedString())
	for _, d := range p.Dividends {
		fmt.Printf("  Dividend %s:  %s (%s)\n", d.When, d.Amount, d.AmountMain)
	}
	return subcommands.ExitSuccess
}
