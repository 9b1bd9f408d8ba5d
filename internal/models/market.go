package models

import (
	"sort"
	"time"
)

// Statement line-item labels shared by every market data provider.
const (
	LineTotalDebt              = "Total Debt"
	LineTotalStockholderEquity = "Total Stockholder Equity"
	LineNetIncome              = "Net Income"
)

// InstrumentInfo is the per-symbol snapshot returned by a market data gateway.
// Numeric fields are nil when the provider did not report them.
type InstrumentInfo struct {
	Symbol    string `json:"symbol"`
	ShortName string `json:"short_name,omitempty"`
	LongName  string `json:"long_name,omitempty"`
	Sector    string `json:"sector,omitempty"`
	Industry  string `json:"industry,omitempty"`
	Currency  string `json:"currency,omitempty"`

	CurrentPrice       *float64 `json:"current_price"`
	RegularMarketPrice *float64 `json:"regular_market_price"`
	MarketCap          *float64 `json:"market_cap"`
	SharesOutstanding  *float64 `json:"shares_outstanding"`
	TrailingEPS        *float64 `json:"trailing_eps"`
	BookValue          *float64 `json:"book_value"`       // per share
	ReturnOnEquity     *float64 `json:"return_on_equity"` // fraction
	DividendYield      *float64 `json:"dividend_yield"`   // fraction
}

// Price returns the current price, falling back to the regular market price
// when the current price is missing or reported as zero.
func (i *InstrumentInfo) Price() *float64 {
	if i == nil {
		return nil
	}
	if i.CurrentPrice != nil && (*i.CurrentPrice != 0 || i.RegularMarketPrice == nil) {
		return i.CurrentPrice
	}
	return i.RegularMarketPrice
}

// DisplayName returns the long name, or the short name when the long one is missing.
func (i *InstrumentInfo) DisplayName() string {
	if i == nil {
		return ""
	}
	if i.LongName != "" {
		return i.LongName
	}
	return i.ShortName
}

// StatementColumn is one reporting period of a financial statement.
type StatementColumn struct {
	Period time.Time          `json:"period"`
	Items  map[string]float64 `json:"items"`
}

// Statement is a financial statement with columns ordered most-recent-first.
type Statement struct {
	Columns []StatementColumn `json:"columns"`
}

// PeriodValue is a single line-item observation.
type PeriodValue struct {
	Period time.Time `json:"period"`
	Value  float64   `json:"value"`
}

// SortColumns orders columns most-recent-first.
func (s *Statement) SortColumns() {
	sort.SliceStable(s.Columns, func(i, j int) bool {
		return s.Columns[i].Period.After(s.Columns[j].Period)
	})
}

// Latest returns the most recent column, or nil for an empty statement.
func (s *Statement) Latest() *StatementColumn {
	if s == nil || len(s.Columns) == 0 {
		return nil
	}
	return &s.Columns[0]
}

// Value returns a line item from a column, nil when absent.
func (c *StatementColumn) Value(label string) *float64 {
	if c == nil {
		return nil
	}
	v, ok := c.Items[label]
	if !ok {
		return nil
	}
	return &v
}

// Series returns every observation of a line item in chronological ascending order.
// Periods missing the line item are skipped.
func (s *Statement) Series(label string) []PeriodValue {
	if s == nil {
		return nil
	}

	var series []PeriodValue
	for _, col := range s.Columns {
		if v, ok := col.Items[label]; ok {
			series = append(series, PeriodValue{Period: col.Period, Value: v})
		}
	}

	sort.SliceStable(series, func(i, j int) bool {
		return series[i].Period.Before(series[j].Period)
	})
	return series
}

// PricePoint is a daily closing price.
type PricePoint struct {
	Date  time.Time `json:"date"`
	Close float64   `json:"close"`
}

// Float returns a pointer to v, for building optional fields.
func Float(v float64) *float64 {
	return &v
}
