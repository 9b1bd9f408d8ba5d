package eodhd

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/fundscope/internal/common"
	"github.com/ternarybob/fundscope/internal/interfaces"
	"github.com/ternarybob/fundscope/internal/models"
)

// Gateway implements interfaces.MarketGateway on top of the EODHD client.
// Symbols arrive in BASE[.SUFFIX] form and are mapped to EODHD exchange codes.
type Gateway struct {
	client *Client
	logger arbor.ILogger
	now    func() time.Time
}

var (
	_ interfaces.MarketGateway = (*Gateway)(nil)
	_ interfaces.RequestScoper = (*Gateway)(nil)
)

// NewGateway creates a market gateway backed by EODHD
func NewGateway(client *Client, logger arbor.ILogger) *Gateway {
	return &Gateway{client: client, logger: logger, now: time.Now}
}

type scopeKey struct{}

// fundamentalsScope holds the fundamentals documents fetched within one request
type fundamentalsScope struct {
	mu   sync.Mutex
	docs map[string]*FundamentalsResponse
}

// Scope returns a context in which each symbol's fundamentals are fetched once.
// GetInfo, GetBalanceSheet and GetIncomeStatement share the same document.
func (g *Gateway) Scope(ctx context.Context) context.Context {
	if _, ok := ctx.Value(scopeKey{}).(*fundamentalsScope); ok {
		return ctx
	}
	return context.WithValue(ctx, scopeKey{}, &fundamentalsScope{docs: make(map[string]*FundamentalsResponse)})
}

// fundamentals fetches code's fundamentals, reusing a document already fetched in ctx's scope.
// Failed fetches are not kept.
func (g *Gateway) fundamentals(ctx context.Context, code string) (*FundamentalsResponse, error) {
	scope, ok := ctx.Value(scopeKey{}).(*fundamentalsScope)
	if !ok {
		return g.client.GetFundamentals(ctx, code)
	}

	scope.mu.Lock()
	defer scope.mu.Unlock()

	if doc, found := scope.docs[code]; found {
		return doc, nil
	}
	doc, err := g.client.GetFundamentals(ctx, code)
	if err != nil {
		return nil, err
	}
	scope.docs[code] = doc
	return doc, nil
}

func toEODHD(symbol string) string {
	return common.ParseSymbol(symbol).EODHDSymbol()
}

// GetInfo combines fundamentals with the latest quote.
// A missing quote leaves the price unset rather than failing.
func (g *Gateway) GetInfo(ctx context.Context, symbol string) (*models.InstrumentInfo, error) {
	code := toEODHD(symbol)

	fundamentals, err := g.fundamentals(ctx, code)
	if err != nil {
		return nil, err
	}
	if fundamentals.General == nil || fundamentals.General.Code == "" {
		return nil, &APIError{StatusCode: 404, Message: "no fundamentals for " + code, Endpoint: "/fundamentals/" + code}
	}

	info := &models.InstrumentInfo{
		Symbol:    symbol,
		ShortName: fundamentals.General.Name,
		LongName:  fundamentals.General.Name,
		Sector:    fundamentals.General.Sector,
		Industry:  fundamentals.General.Industry,
		Currency:  fundamentals.General.CurrencyCode,
	}

	if h := fundamentals.Highlights; h != nil {
		info.MarketCap = h.MarketCapitalization.Float()
		info.TrailingEPS = h.EarningsShare.Float()
		if info.TrailingEPS == nil {
			info.TrailingEPS = h.DilutedEpsTTM.Float()
		}
		info.BookValue = h.BookValue.Float()
		info.ReturnOnEquity = h.ReturnOnEquityTTM.Float()
		info.DividendYield = h.DividendYield.Float()
	}
	if s := fundamentals.SharesStats; s != nil {
		info.SharesOutstanding = s.SharesOutstanding.Float()
	}

	if quote, err := g.client.GetRealTimeQuote(ctx, code); err != nil {
		g.logger.Debug().Err(err).Str("symbol", code).Msg("Real-time quote unavailable")
	} else {
		info.CurrentPrice = quote.Close.Float()
		if info.CurrentPrice == nil {
			info.RegularMarketPrice = quote.PreviousClose.Float()
		}
	}

	return info, nil
}

// GetBalanceSheet returns yearly balance sheets, most recent first
func (g *Gateway) GetBalanceSheet(ctx context.Context, symbol string) (*models.Statement, error) {
	fundamentals, err := g.fundamentals(ctx, toEODHD(symbol))
	if err != nil {
		return nil, err
	}
	if fundamentals.Financials == nil {
		return &models.Statement{}, nil
	}

	return toStatement(fundamentals.Financials.BalanceSheet, func(fields map[string]interface{}) map[string]float64 {
		items := make(map[string]float64)
		if v := ParseAmount(fields[FieldTotalStockholderEquity]); v != nil {
			items[models.LineTotalStockholderEquity] = *v
		}
		if v := balanceDebt(fields); v != nil {
			items[models.LineTotalDebt] = *v
		}
		return items
	}), nil
}

// balanceDebt prefers the reported total, falling back to short plus long term debt
func balanceDebt(fields map[string]interface{}) *float64 {
	if v := ParseAmount(fields[FieldShortLongTermDebtTotal]); v != nil {
		return v
	}

	short := ParseAmount(fields[FieldShortLongTermDebt])
	long := ParseAmount(fields[FieldLongTermDebt])
	if short == nil && long == nil {
		return nil
	}

	var sum float64
	if short != nil {
		sum += *short
	}
	if long != nil {
		sum += *long
	}
	return &sum
}

// GetIncomeStatement returns yearly income statements, most recent first
func (g *Gateway) GetIncomeStatement(ctx context.Context, symbol string) (*models.Statement, error) {
	fundamentals, err := g.fundamentals(ctx, toEODHD(symbol))
	if err != nil {
		return nil, err
	}
	if fundamentals.Financials == nil {
		return &models.Statement{}, nil
	}

	return toStatement(fundamentals.Financials.IncomeStatement, func(fields map[string]interface{}) map[string]float64 {
		items := make(map[string]float64)
		if v := ParseAmount(fields[FieldNetIncome]); v != nil {
			items[models.LineNetIncome] = *v
		}
		return items
	}), nil
}

func toStatement(fs *FinancialStatement, mapFields func(map[string]interface{}) map[string]float64) *models.Statement {
	statement := &models.Statement{}
	if fs == nil {
		return statement
	}

	for dateStr, fields := range fs.Yearly {
		period, err := time.Parse(dateLayout, dateStr)
		if err != nil {
			continue
		}
		statement.Columns = append(statement.Columns, models.StatementColumn{
			Period: period,
			Items:  mapFields(fields),
		})
	}

	statement.SortColumns()
	return statement
}

// GetLatestClose returns the latest quote close, falling back to the previous close
func (g *Gateway) GetLatestClose(ctx context.Context, symbol string) (*float64, error) {
	code := toEODHD(symbol)

	quote, err := g.client.GetRealTimeQuote(ctx, code)
	if err != nil {
		return nil, err
	}
	if v := quote.Close.Float(); v != nil {
		return v, nil
	}
	if v := quote.PreviousClose.Float(); v != nil {
		return v, nil
	}
	return nil, fmt.Errorf("no close for %s", code)
}

// GetPriceHistory returns daily closes over rangeName (e.g. "6mo"), oldest first
func (g *Gateway) GetPriceHistory(ctx context.Context, symbol string, rangeName string) ([]models.PricePoint, error) {
	now := g.now().UTC()
	from, err := RangeStart(now, rangeName)
	if err != nil {
		return nil, err
	}

	bars, err := g.client.GetDailyBars(ctx, toEODHD(symbol), from, now)
	if err != nil {
		return nil, err
	}

	points := make([]models.PricePoint, 0, len(bars))
	for _, bar := range bars {
		price := bar.AdjustedClose
		if price == 0 {
			price = bar.Close
		}
		points = append(points, models.PricePoint{Date: bar.Date, Close: price})
	}
	return points, nil
}

// RangeStart converts a chart range such as "5d", "6mo", "1y" or "ytd" to a start date
func RangeStart(now time.Time, rangeName string) (time.Time, error) {
	r := strings.ToLower(strings.TrimSpace(rangeName))
	if r == "ytd" {
		return time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location()), nil
	}

	for _, unit := range []string{"mo", "d", "y"} {
		if !strings.HasSuffix(r, unit) {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSuffix(r, unit))
		if err != nil || n <= 0 {
			break
		}
		switch unit {
		case "d":
			return now.AddDate(0, 0, -n), nil
		case "mo":
			return now.AddDate(0, -n, 0), nil
		default:
			return now.AddDate(-n, 0, 0), nil
		}
	}

	return time.Time{}, fmt.Errorf("unsupported range %q", rangeName)
}
