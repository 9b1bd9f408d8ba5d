package eodhd

import (
	"time"
)

// DailyBar is one row of the /eod response.
type DailyBar struct {
	Date          time.Time `json:"-"`
	DateStr       string    `json:"date"`
	Open          float64   `json:"open"`
	High          float64   `json:"high"`
	Low           float64   `json:"low"`
	Close         float64   `json:"close"`
	AdjustedClose float64   `json:"adjusted_close"`
	Volume        int64     `json:"volume"`
}

// RealTimeQuote is the /real-time response. Fields are "NA" outside trading data.
type RealTimeQuote struct {
	Code          string `json:"code"`
	Timestamp     Amount `json:"timestamp"`
	Close         Amount `json:"close"`
	PreviousClose Amount `json:"previousClose"`
}

// FundamentalsResponse represents the fundamentals data used for analysis.
type FundamentalsResponse struct {
	General     *GeneralInfo `json:"General"`
	Highlights  *Highlights  `json:"Highlights"`
	SharesStats *SharesStats `json:"SharesStats"`
	Financials  *Financials  `json:"Financials"`
}

// GeneralInfo contains general company information.
type GeneralInfo struct {
	Code         string `json:"Code"`
	Type         string `json:"Type"`
	Name         string `json:"Name"`
	Exchange     string `json:"Exchange"`
	CurrencyCode string `json:"CurrencyCode"`
	CountryName  string `json:"CountryName"`
	Sector       string `json:"Sector"`
	Industry     string `json:"Industry"`
	GicSector    string `json:"GicSector"`
	GicIndustry  string `json:"GicIndustry"`
}

// Highlights contains key financial highlights. Ratios are fractions.
type Highlights struct {
	MarketCapitalization Amount `json:"MarketCapitalization"`
	BookValue            Amount `json:"BookValue"`
	DividendYield        Amount `json:"DividendYield"`
	EarningsShare        Amount `json:"EarningsShare"`
	DilutedEpsTTM        Amount `json:"DilutedEpsTTM"`
	ReturnOnEquityTTM    Amount `json:"ReturnOnEquityTTM"`
	PERatio              Amount `json:"PERatio"`
}

// SharesStats contains share counts.
type SharesStats struct {
	SharesOutstanding Amount `json:"SharesOutstanding"`
	SharesFloat       Amount `json:"SharesFloat"`
}

// Financials contains financial statements.
type Financials struct {
	BalanceSheet    *FinancialStatement `json:"Balance_Sheet"`
	IncomeStatement *FinancialStatement `json:"Income_Statement"`
}

// FinancialStatement represents a financial statement with quarterly and yearly data,
// keyed by period date ("2024-09-30") then by field name.
type FinancialStatement struct {
	Currency  string                            `json:"currency_symbol"`
	Quarterly map[string]map[string]interface{} `json:"quarterly"`
	Yearly    map[string]map[string]interface{} `json:"yearly"`
}

// EODHD statement field names
const (
	FieldTotalStockholderEquity = "totalStockholderEquity"
	FieldShortLongTermDebtTotal = "shortLongTermDebtTotal"
	FieldShortLongTermDebt      = "shortLongTermDebt"
	FieldLongTermDebt           = "longTermDebt"
	FieldNetIncome              = "netIncome"
)
