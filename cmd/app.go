// Package cmd implements the CLI application to inspect a book.
package cmd

import (
	"flag"
	"fmt"
	"os"

	"github.com/clairet/finbook"
	"github.com/google/subcommands"
	"github.com/rs/zerolog"
)

// Register the subcommands.
// A main package calls Register() to declare the subcommands, then Execute()
// on the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(&checkCmd{}, "book")

	c.Register(&positionCmd{}, "reports")
	c.Register(&convertCmd{}, "reports")
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to
// use global variables.

var bookFile = flag.String("book-file", "book.jsonl", "Path to the book file (JSONL format)")
var verbose = flag.Bool("v", false, "Log price fallbacks and other warnings to stderr")

// DecodeBook loads the book from the app book file.
func DecodeBook() (*finbook.Book, error) {
	if *verbose {
		finbook.SetLogger(zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger())
	}
	f, err := os.Open(*bookFile)
	if err != nil {
		return nil, fmt.Errorf("could not open book file %q: %w", *bookFile, err)
	}
	defer f.Close()
	return finbook.DecodeBook(f)
}
