package report

import (
	"fmt"
	"html/template"
	"math"
	"strings"

	"github.com/ternarybob/fundscope/internal/models"
)

// Chart geometry in SVG user units
const (
	chartWidth   = 720.0
	chartHeight  = 280.0
	chartPadLeft = 64.0
	chartPadTop  = 28.0
	chartPadBot  = 32.0
	chartPadRite = 16.0
)

// PriceChartSVG renders closing prices as an inline SVG line chart.
// Returns "" when there are no points.
func PriceChartSVG(symbol string, points []models.PricePoint) template.HTML {
	if len(points) == 0 {
		return ""
	}

	lo, hi := points[0].Close, points[0].Close
	for _, p := range points[1:] {
		lo = math.Min(lo, p.Close)
		hi = math.Max(hi, p.Close)
	}
	if hi == lo {
		hi, lo = hi+1, lo-1
	}

	plotW := chartWidth - chartPadLeft - chartPadRite
	plotH := chartHeight - chartPadTop - chartPadBot

	x := func(i int) float64 {
		if len(points) == 1 {
			return chartPadLeft + plotW/2
		}
		return chartPadLeft + plotW*float64(i)/float64(len(points)-1)
	}
	y := func(v float64) float64 {
		return chartPadTop + plotH*(hi-v)/(hi-lo)
	}

	var path strings.Builder
	for i, p := range points {
		cmd := "L"
		if i == 0 {
			cmd = "M"
		}
		fmt.Fprintf(&path, "%s%.1f %.1f ", cmd, x(i), y(p.Close))
	}

	first, last := points[0], points[len(points)-1]
	title := template.HTMLEscapeString(fmt.Sprintf("%s price (%s to %s)",
		symbol, first.Date.Format("2006-01-02"), last.Date.Format("2006-01-02")))

	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" class="price-chart" viewBox="0 0 %.0f %.0f" role="img" aria-label="%s">`,
		chartWidth, chartHeight, title)
	fmt.Fprintf(&b, `<title>%s</title>`, title)
	fmt.Fprintf(&b, `<text x="%.1f" y="18" class="chart-title">%s</text>`, chartPadLeft, title)

	// Horizontal grid with price labels
	for i := 0; i <= 4; i++ {
		v := lo + (hi-lo)*float64(i)/4
		gy := y(v)
		fmt.Fprintf(&b, `<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" class="chart-grid"/>`,
			chartPadLeft, gy, chartWidth-chartPadRite, gy)
		fmt.Fprintf(&b, `<text x="%.1f" y="%.1f" class="chart-label" text-anchor="end">%s</text>`,
			chartPadLeft-6, gy+4, axisLabel(v))
	}

	fmt.Fprintf(&b, `<text x="%.1f" y="%.1f" class="chart-label">%s</text>`,
		chartPadLeft, chartHeight-10, first.Date.Format("Jan 2006"))
	fmt.Fprintf(&b, `<text x="%.1f" y="%.1f" class="chart-label" text-anchor="end">%s</text>`,
		chartWidth-chartPadRite, chartHeight-10, last.Date.Format("Jan 2006"))

	fmt.Fprintf(&b, `<path d="%s" class="chart-line" fill="none" stroke="currentColor" stroke-width="2"/>`,
		strings.TrimSpace(path.String()))
	b.WriteString(`</svg>`)

	// Every interpolated value is numeric or escaped above
	return template.HTML(b.String())
}

func axisLabel(v float64) string {
	switch {
	case math.Abs(v) >= 1000:
		return fmt.Sprintf("%.0f", v)
	case math.Abs(v) >= 10:
		return fmt.Sprintf("%.1f", v)
	default:
		return fmt.Sprintf("%.2f", v)
	}
}
