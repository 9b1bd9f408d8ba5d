package main

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/subcommands"
	"github.com/ternarybob/fundscope/internal/app"
	"github.com/ternarybob/fundscope/internal/market"
	"github.com/ternarybob/fundscope/internal/report"
)

type analyzeCmd struct {
	config  configFlags
	format  string
	output  string
	verbose bool
}

func (*analyzeCmd) Name() string     { return "analyze" }
func (*analyzeCmd) Synopsis() string { return "print a fundamental snapshot for one or more tickers" }
func (*analyzeCmd) Usage() string {
	return `fundscope analyze [-format text|markdown|json|yaml|pdf] [-o <file>] [TICKER...]

  Resolves each ticker to a listed symbol and prints price, market cap,
  key ratios and net income growth. Without a ticker argument the ticker
  is read from standard input.
`
}

func (a *analyzeCmd) SetFlags(f *flag.FlagSet) {
	a.config.register(f)
	f.StringVar(&a.format, "format", report.FormatText, "Output format: "+strings.Join(report.Formats(), ", "))
	f.StringVar(&a.output, "o", "", "Write the report to this file instead of standard output")
	f.BoolVar(&a.verbose, "v", false, "Log upstream requests")
}

// tickerAnalyzer is the part of market.Analyzer the command needs
type tickerAnalyzer interface {
	Analyze(ctx context.Context, rawTicker string) (*market.AnalysisResult, error)
}

func (a *analyzeCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	format := strings.ToLower(a.format)
	if format == report.FormatPDF && a.output == "" {
		fmt.Fprintln(os.Stderr, "pdf output requires -o <file>")
		return subcommands.ExitUsageError
	}

	tickers := f.Args()
	if len(tickers) == 0 {
		ticker, err := promptTicker(os.Stdin, os.Stdout)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return subcommands.ExitFailure
		}
		tickers = []string{ticker}
	}

	config, err := a.config.load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	logger := quietLogger(config, a.verbose)

	gateway, err := app.NewGateway(config, logger)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	analyzer := market.NewAnalyzer(gateway, config.Market, logger)

	results, err := analyzeAll(ctx, analyzer, tickers)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	if a.output != "" {
		if err := writeReportFile(a.output, format, results); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return subcommands.ExitFailure
		}
		fmt.Fprintf(os.Stderr, "report written to %s\n", a.output)
		return subcommands.ExitSuccess
	}

	if format == report.FormatMarkdown || format == "md" {
		var buf bytes.Buffer
		if err := report.Write(&buf, format, results...); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return subcommands.ExitFailure
		}
		printMarkdown(buf.String())
		return subcommands.ExitSuccess
	}

	if err := report.Write(os.Stdout, format, results...); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// promptTicker asks for a single ticker on in
func promptTicker(in io.Reader, out io.Writer) (string, error) {
	fmt.Fprint(out, "Enter a stock ticker (e.g. BBCA, BBRI, ANTM, AAPL, 7203.T): ")

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read ticker: %w", err)
	}
	ticker := strings.TrimSpace(line)
	if ticker == "" {
		return "", errors.New("empty ticker, nothing to analyze")
	}
	return ticker, nil
}

// analyzeAll runs every ticker in order and stops at the first failure
func analyzeAll(ctx context.Context, analyzer tickerAnalyzer, tickers []string) ([]*market.AnalysisResult, error) {
	results := make([]*market.AnalysisResult, 0, len(tickers))
	for _, ticker := range tickers {
		result, err := analyzer.Analyze(ctx, ticker)
		if err != nil {
			return nil, fmt.Errorf("failed to analyze %s: %w", ticker, err)
		}
		results = append(results, result)
	}
	return results, nil
}

func writeReportFile(path, format string, results []*market.AnalysisResult) error {
	var buf bytes.Buffer
	if err := report.Write(&buf, format, results...); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
