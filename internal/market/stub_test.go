package market

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/fundscope/internal/models"
)

var errUnknownSymbol = errors.New("unknown symbol")

// createTestLogger creates a logger for testing
func createTestLogger() arbor.ILogger {
	return arbor.NewLogger()
}

// stubGateway implements interfaces.MarketGateway from in-memory fixtures
type stubGateway struct {
	mu      sync.Mutex
	info    map[string]*models.InstrumentInfo
	balance map[string]*models.Statement
	income  map[string]*models.Statement
	closes  map[string]float64

	infoErr    error
	balanceErr error
	incomeErr  error
	closeErr   error

	calls []string
}

func newStubGateway() *stubGateway {
	return &stubGateway{
		info:    make(map[string]*models.InstrumentInfo),
		balance: make(map[string]*models.Statement),
		income:  make(map[string]*models.Statement),
		closes:  make(map[string]float64),
	}
}

func (g *stubGateway) record(call string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = append(g.calls, call)
}

func (g *stubGateway) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.calls)
}

func (g *stubGateway) GetInfo(ctx context.Context, symbol string) (*models.InstrumentInfo, error) {
	g.record("info:" + symbol)
	if g.infoErr != nil {
		return nil, g.infoErr
	}
	info, ok := g.info[symbol]
	if !ok {
		return nil, errUnknownSymbol
	}
	return info, nil
}

func (g *stubGateway) GetBalanceSheet(ctx context.Context, symbol string) (*models.Statement, error) {
	g.record("balance:" + symbol)
	if g.balanceErr != nil {
		return nil, g.balanceErr
	}
	if s, ok := g.balance[symbol]; ok {
		return s, nil
	}
	return &models.Statement{}, nil
}

func (g *stubGateway) GetIncomeStatement(ctx context.Context, symbol string) (*models.Statement, error) {
	g.record("income:" + symbol)
	if g.incomeErr != nil {
		return nil, g.incomeErr
	}
	if s, ok := g.income[symbol]; ok {
		return s, nil
	}
	return &models.Statement{}, nil
}

func (g *stubGateway) GetLatestClose(ctx context.Context, symbol string) (*float64, error) {
	g.record("close:" + symbol)
	if g.closeErr != nil {
		return nil, g.closeErr
	}
	v, ok := g.closes[symbol]
	if !ok {
		return nil, errUnknownSymbol
	}
	return &v, nil
}

func (g *stubGateway) GetPriceHistory(ctx context.Context, symbol string, rangeName string) ([]models.PricePoint, error) {
	g.record("history:" + symbol)
	return nil, nil
}

func year(y int) time.Time {
	return time.Date(y, time.December, 31, 0, 0, 0, 0, time.UTC)
}

func netIncome(values map[int]float64) *models.Statement {
	s := &models.Statement{}
	for y, v := range values {
		s.Columns = append(s.Columns, models.StatementColumn{
			Period: year(y),
			Items:  map[string]float64{models.LineNetIncome: v},
		})
	}
	s.SortColumns()
	return s
}
