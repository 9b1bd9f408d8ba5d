package market

import "fmt"

// PeriodLayout is the date layout used for growth period labels
const PeriodLayout = "2006-01-02"

// AnalysisResult is the presentation-ready view of one analysis.
// It is consumed as JSON by the API and as template data by the dashboard.
type AnalysisResult struct {
	InputTicker string `json:"input_ticker" yaml:"input_ticker"`
	UsedTicker  string `json:"used_ticker" yaml:"used_ticker"`
	Name        string `json:"name" yaml:"name"`
	Sector      string `json:"sector" yaml:"sector"`
	Industry    string `json:"industry" yaml:"industry"`
	Currency    string `json:"currency" yaml:"currency"`

	PriceStr     string `json:"price_str" yaml:"price_str"`
	MarketCapStr string `json:"market_cap_str" yaml:"market_cap_str"`
	SharesOutStr string `json:"shares_out_str" yaml:"shares_out_str"`

	Ratios        RatioView     `json:"ratios" yaml:"ratios"`
	GrowthList    []GrowthEntry `json:"growth_list" yaml:"growth_list"`
	GrowthCAGRStr *string       `json:"growth_cagr_str" yaml:"growth_cagr_str"`
}

// RatioView carries each ratio raw and formatted to two decimals.
// Undefined ratios are null in both forms.
type RatioView struct {
	PER              *float64 `json:"PER" yaml:"per"`
	PERStr           *string  `json:"PER_str" yaml:"per_str"`
	PBV              *float64 `json:"PBV" yaml:"pbv"`
	PBVStr           *string  `json:"PBV_str" yaml:"pbv_str"`
	ROE              *float64 `json:"ROE" yaml:"roe"`
	ROEStr           *string  `json:"ROE_str" yaml:"roe_str"`
	DER              *float64 `json:"DER" yaml:"der"`
	DERStr           *string  `json:"DER_str" yaml:"der_str"`
	DividendYield    *float64 `json:"DividendYield_%" yaml:"dividend_yield_pct"`
	DividendYieldStr *string  `json:"DividendYield_str" yaml:"dividend_yield_str"`
}

// GrowthEntry is one formatted net income observation
type GrowthEntry struct {
	Period   string `json:"period" yaml:"period"`
	ValueStr string `json:"value_str" yaml:"value_str"`
}

// NewRatioView formats a ratio set
func NewRatioView(r RatioSet) RatioView {
	return RatioView{
		PER:              r.PER,
		PERStr:           fmt2(r.PER),
		PBV:              r.PBV,
		PBVStr:           fmt2(r.PBV),
		ROE:              r.ROE,
		ROEStr:           fmt2(r.ROE),
		DER:              r.DER,
		DERStr:           fmt2(r.DER),
		DividendYield:    r.DividendYield,
		DividendYieldStr: fmt2(r.DividendYield),
	}
}

func fmt2(v *float64) *string {
	if v == nil {
		return nil
	}
	s := fmt.Sprintf("%.2f", *v)
	return &s
}

// OrNA dereferences s, rendering nil as "N/A"
func OrNA(s *string) string {
	if s == nil {
		return "N/A"
	}
	return *s
}
