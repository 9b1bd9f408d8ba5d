package market

import (
	"math"

	"github.com/ternarybob/fundscope/internal/models"
)

// RatioSet holds the fundamental ratios of one instrument.
// ROE and DividendYield are percentages. A nil field is undefined.
type RatioSet struct {
	PER           *float64
	PBV           *float64
	ROE           *float64
	DER           *float64
	DividendYield *float64
}

// finite returns v when it is a real finite number, else nil
func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// SafeDivide returns a/b, or nil when either operand is missing, non-finite or b is zero
func SafeDivide(a, b *float64) *float64 {
	if a == nil || b == nil || *b == 0 {
		return nil
	}
	if finite(*a) == nil || finite(*b) == nil {
		return nil
	}
	return finite(*a / *b)
}

// SafeScale returns a*k, or nil when a is missing or non-finite
func SafeScale(a *float64, k float64) *float64 {
	if a == nil || finite(*a) == nil {
		return nil
	}
	return finite(*a * k)
}

// ComputeRatios derives the ratio set from instrument info and the balance sheet.
// Each ratio is computed independently; balance may be nil.
func ComputeRatios(info *models.InstrumentInfo, balance *models.Statement) RatioSet {
	var ratios RatioSet
	if info != nil {
		price := info.Price()
		ratios.PER = SafeDivide(price, info.TrailingEPS)
		ratios.PBV = SafeDivide(price, info.BookValue)
		ratios.ROE = SafeScale(info.ReturnOnEquity, 100)
		ratios.DividendYield = SafeScale(info.DividendYield, 100)
	}

	latest := balance.Latest()
	ratios.DER = SafeDivide(
		latest.Value(models.LineTotalDebt),
		latest.Value(models.LineTotalStockholderEquity),
	)

	return ratios
}
