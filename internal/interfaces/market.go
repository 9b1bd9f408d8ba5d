package interfaces

import (
	"context"

	"github.com/ternarybob/fundscope/internal/models"
)

// MarketGateway - per-symbol lookups against an external market data provider.
// Symbols use the provider-neutral BASE[.SUFFIX] form.
type MarketGateway interface {
	// GetInfo returns the instrument snapshot. Any numeric field may be nil.
	GetInfo(ctx context.Context, symbol string) (*models.InstrumentInfo, error)

	// GetBalanceSheet returns balance-sheet columns, most recent first
	GetBalanceSheet(ctx context.Context, symbol string) (*models.Statement, error)

	// GetIncomeStatement returns income-statement columns, most recent first
	GetIncomeStatement(ctx context.Context, symbol string) (*models.Statement, error)

	// GetLatestClose returns the most recent close, nil when the provider has none
	GetLatestClose(ctx context.Context, symbol string) (*float64, error)

	// GetPriceHistory returns daily closes over a range such as "6mo", oldest first
	GetPriceHistory(ctx context.Context, symbol string, rangeName string) ([]models.PricePoint, error)
}

// RequestScoper is implemented by gateways that can reuse upstream documents
// across the lookups of one analysis. Scope returns a context carrying that reuse.
type RequestScoper interface {
	Scope(ctx context.Context) context.Context
}
