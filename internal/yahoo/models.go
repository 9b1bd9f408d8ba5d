package yahoo

// RawValue is Yahoo's {"raw": 1.5, "fmt": "1.50"} number wrapper.
// An empty object decodes with a nil Raw.
type RawValue struct {
	Raw *float64 `json:"raw"`
	Fmt string   `json:"fmt,omitempty"`
}

// Float returns the raw number, nil when absent
func (v *RawValue) Float() *float64 {
	if v == nil {
		return nil
	}
	return v.Raw
}

// ErrorBody is the error object embedded in API envelopes
type ErrorBody struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// QuoteSummaryResponse is the /v10/finance/quoteSummary envelope
type QuoteSummaryResponse struct {
	QuoteSummary struct {
		Result []QuoteSummaryResult `json:"result"`
		Error  *ErrorBody           `json:"error"`
	} `json:"quoteSummary"`
}

// QuoteSummaryResult holds whichever modules were requested
type QuoteSummaryResult struct {
	Price                  *PriceModule            `json:"price,omitempty"`
	SummaryDetail          *SummaryDetail          `json:"summaryDetail,omitempty"`
	DefaultKeyStatistics   *KeyStatistics          `json:"defaultKeyStatistics,omitempty"`
	FinancialData          *FinancialData          `json:"financialData,omitempty"`
	AssetProfile           *AssetProfile           `json:"assetProfile,omitempty"`
	BalanceSheetHistory    *BalanceSheetHistory    `json:"balanceSheetHistory,omitempty"`
	IncomeStatementHistory *IncomeStatementHistory `json:"incomeStatementHistory,omitempty"`
}

type PriceModule struct {
	Symbol             string    `json:"symbol"`
	ShortName          string    `json:"shortName"`
	LongName           string    `json:"longName"`
	Currency           string    `json:"currency"`
	QuoteType          string    `json:"quoteType"`
	RegularMarketPrice *RawValue `json:"regularMarketPrice"`
	MarketCap          *RawValue `json:"marketCap"`
}

type SummaryDetail struct {
	Currency                    string    `json:"currency"`
	DividendYield               *RawValue `json:"dividendYield"`
	TrailingAnnualDividendYield *RawValue `json:"trailingAnnualDividendYield"`
	MarketCap                   *RawValue `json:"marketCap"`
	TrailingPE                  *RawValue `json:"trailingPE"`
}

type KeyStatistics struct {
	TrailingEps       *RawValue `json:"trailingEps"`
	BookValue         *RawValue `json:"bookValue"`
	SharesOutstanding *RawValue `json:"sharesOutstanding"`
	PriceToBook       *RawValue `json:"priceToBook"`
}

type FinancialData struct {
	CurrentPrice      *RawValue `json:"currentPrice"`
	ReturnOnEquity    *RawValue `json:"returnOnEquity"`
	TotalDebt         *RawValue `json:"totalDebt"`
	FinancialCurrency string    `json:"financialCurrency"`
}

type AssetProfile struct {
	Sector   string `json:"sector"`
	Industry string `json:"industry"`
	Country  string `json:"country"`
}

type BalanceSheetHistory struct {
	Statements []BalanceSheetEntry `json:"balanceSheetStatements"`
}

type BalanceSheetEntry struct {
	EndDate                *RawValue `json:"endDate"` // unix seconds
	TotalStockholderEquity *RawValue `json:"totalStockholderEquity"`
	TotalDebt              *RawValue `json:"totalDebt"`
	ShortLongTermDebt      *RawValue `json:"shortLongTermDebt"`
	LongTermDebt           *RawValue `json:"longTermDebt"`
	TotalAssets            *RawValue `json:"totalAssets"`
	TotalLiab              *RawValue `json:"totalLiab"`
}

type IncomeStatementHistory struct {
	Statements []IncomeStatementEntry `json:"incomeStatementHistory"`
}

type IncomeStatementEntry struct {
	EndDate      *RawValue `json:"endDate"` // unix seconds
	NetIncome    *RawValue `json:"netIncome"`
	TotalRevenue *RawValue `json:"totalRevenue"`
}

// ChartResponse is the /v8/finance/chart envelope
type ChartResponse struct {
	Chart struct {
		Result []ChartResult `json:"result"`
		Error  *ErrorBody    `json:"error"`
	} `json:"chart"`
}

type ChartResult struct {
	Meta       ChartMeta `json:"meta"`
	Timestamp  []int64   `json:"timestamp"`
	Indicators struct {
		Quote []struct {
			Close []*float64 `json:"close"`
		} `json:"quote"`
	} `json:"indicators"`
}

type ChartMeta struct {
	Currency           string   `json:"currency"`
	Symbol             string   `json:"symbol"`
	ExchangeName       string   `json:"exchangeName"`
	RegularMarketPrice *float64 `json:"regularMarketPrice"`
	Range              string   `json:"range"`
}
