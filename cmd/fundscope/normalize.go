package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/google/subcommands"
	"github.com/ternarybob/fundscope/internal/app"
	"github.com/ternarybob/fundscope/internal/market"
)

type normalizeCmd struct {
	config  configFlags
	verbose bool
}

func (*normalizeCmd) Name() string     { return "normalize" }
func (*normalizeCmd) Synopsis() string { return "resolve tickers to listed symbols" }
func (*normalizeCmd) Usage() string {
	return `fundscope normalize TICKER...

  Prints "input -> symbol" for each ticker. Bare tickers are tried as-is and
  then with each configured exchange suffix.
`
}

func (n *normalizeCmd) SetFlags(f *flag.FlagSet) {
	n.config.register(f)
	f.BoolVar(&n.verbose, "v", false, "Log upstream requests")
}

// tickerNormalizer is the part of market.Normalizer the command needs
type tickerNormalizer interface {
	Normalize(ctx context.Context, raw string) string
}

func (n *normalizeCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		f.Usage()
		return subcommands.ExitUsageError
	}

	config, err := n.config.load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	logger := quietLogger(config, n.verbose)

	gateway, err := app.NewGateway(config, logger)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	normalizer := market.NewNormalizer(gateway, config.Market.Suffixes, logger)
	printNormalized(ctx, os.Stdout, normalizer, f.Args())
	return subcommands.ExitSuccess
}

func printNormalized(ctx context.Context, w io.Writer, normalizer tickerNormalizer, tickers []string) {
	for _, raw := range tickers {
		symbol := normalizer.Normalize(ctx, raw)
		if symbol == "" {
			fmt.Fprintf(w, "%s -> (empty)\n", raw)
			continue
		}
		fmt.Fprintf(w, "%s -> %s\n", raw, symbol)
	}
}
