// Package yahoo provides a client for the Yahoo Finance quoteSummary and chart APIs,
// and a market gateway built on it.
package yahoo

import (
	"fmt"
	"time"
)

// APIError represents an error from the Yahoo Finance API.
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("Yahoo Finance API error: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

// RateLimitError represents a rate limit error.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("Yahoo Finance rate limit exceeded, retry after %v", e.RetryAfter)
}

// quoteSummary modules
const (
	ModulePrice                  = "price"
	ModuleSummaryDetail          = "summaryDetail"
	ModuleDefaultKeyStatistics   = "defaultKeyStatistics"
	ModuleFinancialData          = "financialData"
	ModuleAssetProfile           = "assetProfile"
	ModuleBalanceSheetHistory    = "balanceSheetHistory"
	ModuleIncomeStatementHistory = "incomeStatementHistory"
)

// InfoModules are the modules merged into an instrument snapshot
var InfoModules = []string{
	ModulePrice,
	ModuleSummaryDetail,
	ModuleDefaultKeyStatistics,
	ModuleFinancialData,
	ModuleAssetProfile,
}
