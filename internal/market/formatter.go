package market

import (
	"strconv"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

// CurrencyUSD is the code rendered with the $ short form
const CurrencyUSD = "USD"

type magnitude struct {
	min  decimal.Decimal
	unit string
}

// Largest threshold first
var magnitudes = []magnitude{
	{decimal.New(1, 12), "T"},
	{decimal.New(1, 9), "B"},
	{decimal.New(1, 6), "M"},
	{decimal.New(1, 3), "K"},
}

// Formatter renders monetary magnitudes in abbreviated form.
// Amounts in the local currency get a USD side conversion when a rate is known.
type Formatter struct {
	localCurrency string
	localPrefix   string
}

// NewFormatter creates a formatter for the given local currency code (e.g. "IDR").
// The prefix comes from the currency's grapheme ("Rp"), or the code when unknown.
func NewFormatter(localCurrency string) *Formatter {
	code := strings.ToUpper(strings.TrimSpace(localCurrency))
	prefix := code
	if cur := money.GetCurrency(code); cur != nil && cur.Grapheme != "" {
		prefix = cur.Grapheme
	}
	return &Formatter{localCurrency: code, localPrefix: prefix}
}

// LocalCurrency returns the configured local currency code
func (f *Formatter) LocalCurrency() string {
	return f.localCurrency
}

// FormatLocalShort renders x with the local prefix, e.g. "Rp 60.15T".
// Missing input renders as the zero value ("Rp 0").
func (f *Formatter) FormatLocalShort(x *float64) string {
	if x == nil || finite(*x) == nil {
		return f.localPrefix + " 0"
	}

	d := decimal.NewFromFloat(*x)
	if short, ok := abbreviate(d); ok {
		return f.localPrefix + " " + short
	}
	return f.localPrefix + " " + humanize.Comma(d.Round(0).IntPart())
}

// FormatUSDShort renders x as abbreviated USD with the sign outside the symbol, e.g. "-$2.50B".
// Missing input renders as "$0".
func FormatUSDShort(x *float64) string {
	if x == nil || finite(*x) == nil {
		return "$0"
	}
	return formatUSD(decimal.NewFromFloat(*x))
}

func formatUSD(d decimal.Decimal) string {
	sign := ""
	if d.IsNegative() {
		sign = "-"
	}
	abs := d.Abs()

	if short, ok := abbreviate(abs); ok {
		return sign + "$" + short
	}
	return sign + "$" + humanize.FormatFloat("#,###.##", abs.Round(2).InexactFloat64())
}

// FormatWithUSDSideConversion renders x in local short form and, when rate is known,
// appends x/rate in USD short form: "Rp 60.15T ($3.80B)".
func (f *Formatter) FormatWithUSDSideConversion(x, rate *float64) string {
	local := f.FormatLocalShort(x)
	if x == nil || finite(*x) == nil || rate == nil || finite(*rate) == nil || *rate == 0 {
		return local
	}

	usd := decimal.NewFromFloat(*x).Div(decimal.NewFromFloat(*rate))
	return local + " (" + formatUSD(usd) + ")"
}

// FormatAmount picks the rendering branch by instrument currency:
// local currency gets side conversion, USD gets the $ short form,
// anything else is the raw number followed by the currency code.
func (f *Formatter) FormatAmount(x *float64, currency string, rate *float64) string {
	switch strings.ToUpper(currency) {
	case f.localCurrency:
		return f.FormatWithUSDSideConversion(x, rate)
	case CurrencyUSD:
		return FormatUSDShort(x)
	default:
		return formatRaw(x, currency)
	}
}

func formatRaw(x *float64, currency string) string {
	value := "N/A"
	if x != nil && finite(*x) != nil {
		value = strconv.FormatFloat(*x, 'f', -1, 64)
	}
	return strings.TrimSpace(value + " " + currency)
}

// abbreviate scales d by the largest threshold its magnitude reaches
func abbreviate(d decimal.Decimal) (string, bool) {
	abs := d.Abs()
	for _, m := range magnitudes {
		if abs.GreaterThanOrEqual(m.min) {
			return d.Div(m.min).StringFixed(2) + m.unit, true
		}
	}
	return "", false
}
