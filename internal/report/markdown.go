package report

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ternarybob/fundscope/internal/market"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// Markdown renders the report as a markdown document
func Markdown(r *market.AnalysisResult) string {
	var b strings.Builder

	title := r.Name
	if title == "" {
		title = r.UsedTicker
	}
	fmt.Fprintf(&b, "# %s (%s)\n\n", escapeCell(title), r.UsedTicker)
	if r.InputTicker != "" && !strings.EqualFold(r.InputTicker, r.UsedTicker) {
		fmt.Fprintf(&b, "Resolved from input `%s`.\n\n", r.InputTicker)
	}

	b.WriteString("| Field | Value |\n|-------|-------|\n")
	for _, row := range [][2]string{
		{"Sector", orDash(r.Sector)},
		{"Industry", orDash(r.Industry)},
		{"Currency", orDash(r.Currency)},
		{"Price", r.PriceStr},
		{"Market Cap", r.MarketCapStr},
		{"Shares Out", r.SharesOutStr},
	} {
		fmt.Fprintf(&b, "| %s | %s |\n", row[0], escapeCell(row[1]))
	}

	b.WriteString("\n## Key Ratios\n\n| Ratio | Value |\n|-------|-------|\n")
	for _, row := range ratioRows(r.Ratios) {
		fmt.Fprintf(&b, "| %s | %s |\n", row.label, market.OrNA(row.value))
	}

	b.WriteString("\n## Growth (Net Income)\n\n")
	if len(r.GrowthList) == 0 {
		b.WriteString("Net income data unavailable.\n")
		return b.String()
	}

	b.WriteString("| Period | Net Income |\n|--------|------------|\n")
	for _, g := range r.GrowthList {
		fmt.Fprintf(&b, "| %s | %s |\n", g.Period, escapeCell(g.ValueStr))
	}
	fmt.Fprintf(&b, "\n**Net Income CAGR (approx):** %s\n", cagrLine(r.GrowthCAGRStr))

	return b.String()
}

// HTML renders the markdown report to an HTML fragment
func HTML(r *market.AnalysisResult) (string, error) {
	md := goldmark.New(goldmark.WithExtensions(extension.Table))

	var buf bytes.Buffer
	if err := md.Convert([]byte(Markdown(r)), &buf); err != nil {
		return "", fmt.Errorf("failed to render report html: %w", err)
	}
	return buf.String(), nil
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
