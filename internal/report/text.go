// Package report renders an analysis result for terminals, files and pages.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/ternarybob/fundscope/internal/market"
)

const ruleWidth = 60

var (
	heavyRule = strings.Repeat("=", ruleWidth)
	lightRule = strings.Repeat("-", ruleWidth)
)

// WriteText writes the fixed-width console report
func WriteText(w io.Writer, r *market.AnalysisResult) error {
	var b strings.Builder

	fmt.Fprintln(&b, heavyRule)
	fmt.Fprintf(&b, " Ticker     : %s\n", displayTicker(r))
	fmt.Fprintf(&b, " Fundamental Analysis: %s\n", r.Name)
	fmt.Fprintln(&b, heavyRule)
	fmt.Fprintf(&b, "Sector     : %s\n", orDash(r.Sector))
	fmt.Fprintf(&b, "Industry   : %s\n", orDash(r.Industry))
	fmt.Fprintf(&b, "Currency   : %s\n", orDash(r.Currency))
	fmt.Fprintf(&b, "Price      : %s\n", r.PriceStr)
	fmt.Fprintf(&b, "Market Cap : %s\n", r.MarketCapStr)
	fmt.Fprintf(&b, "Shares Out : %s\n", r.SharesOutStr)

	fmt.Fprintln(&b, lightRule)
	fmt.Fprintln(&b, " Key Ratios")
	fmt.Fprintln(&b, lightRule)
	for _, row := range ratioRows(r.Ratios) {
		fmt.Fprintf(&b, "%-20s: %s\n", row.label, market.OrNA(row.value))
	}

	fmt.Fprintln(&b, lightRule)
	fmt.Fprintln(&b, " Growth (Net Income)")
	fmt.Fprintln(&b, lightRule)
	if len(r.GrowthList) == 0 {
		fmt.Fprintln(&b, "Net income data unavailable.")
	} else {
		for _, g := range r.GrowthList {
			fmt.Fprintf(&b, "%s : %s\n", g.Period, g.ValueStr)
		}
		fmt.Fprintf(&b, "\nNet Income CAGR (approx) : %s\n", cagrLine(r.GrowthCAGRStr))
	}

	fmt.Fprintln(&b, heavyRule)
	fmt.Fprintln(&b, " NOTE:")
	fmt.Fprintln(&b, " - Figures depend on upstream data availability.")
	fmt.Fprintln(&b, " - Always combine with qualitative analysis and news.")
	fmt.Fprintln(&b, heavyRule)

	_, err := io.WriteString(w, b.String())
	return err
}

type ratioRow struct {
	label string
	value *string
}

func ratioRows(v market.RatioView) []ratioRow {
	return []ratioRow{
		{"PER", v.PERStr},
		{"PBV", v.PBVStr},
		{"ROE (%)", v.ROEStr},
		{"DER (Debt/Equity)", v.DERStr},
		{"Dividend Yield (%)", v.DividendYieldStr},
	}
}

func cagrLine(s *string) string {
	if s == nil {
		return "N/A"
	}
	return *s + "% per year"
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// displayTicker shows the ticker as entered, with the resolved symbol when normalization changed it
func displayTicker(r *market.AnalysisResult) string {
	input := strings.ToUpper(strings.TrimSpace(r.InputTicker))
	switch {
	case input == "":
		return r.UsedTicker
	case r.UsedTicker == "" || r.UsedTicker == input:
		return input
	default:
		return input + " (" + r.UsedTicker + ")"
	}
}
