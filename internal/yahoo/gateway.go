package yahoo

import (
	"context"
	"fmt"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/fundscope/internal/interfaces"
	"github.com/ternarybob/fundscope/internal/models"
)

// latestClosePath selects every daily close of the first chart result
const latestClosePath = "$.chart.result[0].indicators.quote[0].close"

// marketPricePath is the fallback when no close is present
const marketPricePath = "$.chart.result[0].meta.regularMarketPrice"

// Gateway implements interfaces.MarketGateway on top of the Yahoo Finance client.
type Gateway struct {
	client *Client
	logger arbor.ILogger
}

var _ interfaces.MarketGateway = (*Gateway)(nil)

// NewGateway creates a market gateway backed by Yahoo Finance
func NewGateway(client *Client, logger arbor.ILogger) *Gateway {
	return &Gateway{client: client, logger: logger}
}

// GetInfo merges the price, statistics, financial data and profile modules
func (g *Gateway) GetInfo(ctx context.Context, symbol string) (*models.InstrumentInfo, error) {
	summary, err := g.client.GetQuoteSummary(ctx, symbol, InfoModules...)
	if err != nil {
		return nil, err
	}
	return toInstrumentInfo(symbol, summary), nil
}

func toInstrumentInfo(symbol string, s *QuoteSummaryResult) *models.InstrumentInfo {
	info := &models.InstrumentInfo{Symbol: symbol}

	if p := s.Price; p != nil {
		info.ShortName = p.ShortName
		info.LongName = p.LongName
		info.Currency = p.Currency
		info.RegularMarketPrice = p.RegularMarketPrice.Float()
		info.MarketCap = p.MarketCap.Float()
	}
	if d := s.SummaryDetail; d != nil {
		info.DividendYield = d.DividendYield.Float()
		if info.MarketCap == nil {
			info.MarketCap = d.MarketCap.Float()
		}
		if info.Currency == "" {
			info.Currency = d.Currency
		}
	}
	if k := s.DefaultKeyStatistics; k != nil {
		info.TrailingEPS = k.TrailingEps.Float()
		info.BookValue = k.BookValue.Float()
		info.SharesOutstanding = k.SharesOutstanding.Float()
	}
	if f := s.FinancialData; f != nil {
		info.CurrentPrice = f.CurrentPrice.Float()
		info.ReturnOnEquity = f.ReturnOnEquity.Float()
	}
	if a := s.AssetProfile; a != nil {
		info.Sector = a.Sector
		info.Industry = a.Industry
	}

	return info
}

// GetBalanceSheet returns annual balance sheets, most recent first.
// Total Debt falls back to short plus long term debt when not reported.
func (g *Gateway) GetBalanceSheet(ctx context.Context, symbol string) (*models.Statement, error) {
	summary, err := g.client.GetQuoteSummary(ctx, symbol, ModuleBalanceSheetHistory)
	if err != nil {
		return nil, err
	}

	statement := &models.Statement{}
	if summary.BalanceSheetHistory == nil {
		return statement, nil
	}

	for _, entry := range summary.BalanceSheetHistory.Statements {
		period, ok := epochDate(entry.EndDate)
		if !ok {
			continue
		}

		items := make(map[string]float64)
		if v := entry.TotalStockholderEquity.Float(); v != nil {
			items[models.LineTotalStockholderEquity] = *v
		}
		if v := totalDebt(entry); v != nil {
			items[models.LineTotalDebt] = *v
		}

		statement.Columns = append(statement.Columns, models.StatementColumn{Period: period, Items: items})
	}

	statement.SortColumns()
	return statement, nil
}

func totalDebt(entry BalanceSheetEntry) *float64 {
	if v := entry.TotalDebt.Float(); v != nil {
		return v
	}

	short := entry.ShortLongTermDebt.Float()
	long := entry.LongTermDebt.Float()
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

// GetIncomeStatement returns annual income statements, most recent first
func (g *Gateway) GetIncomeStatement(ctx context.Context, symbol string) (*models.Statement, error) {
	summary, err := g.client.GetQuoteSummary(ctx, symbol, ModuleIncomeStatementHistory)
	if err != nil {
		return nil, err
	}

	statement := &models.Statement{}
	if summary.IncomeStatementHistory == nil {
		return statement, nil
	}

	for _, entry := range summary.IncomeStatementHistory.Statements {
		period, ok := epochDate(entry.EndDate)
		if !ok {
			continue
		}

		items := make(map[string]float64)
		if v := entry.NetIncome.Float(); v != nil {
			items[models.LineNetIncome] = *v
		}

		statement.Columns = append(statement.Columns, models.StatementColumn{Period: period, Items: items})
	}

	statement.SortColumns()
	return statement, nil
}

// GetLatestClose returns the last non-null daily close over the past five days
func (g *Gateway) GetLatestClose(ctx context.Context, symbol string) (*float64, error) {
	doc, err := g.client.GetChartDocument(ctx, symbol, "5d", "1d")
	if err != nil {
		return nil, err
	}

	if closes, err := jsonpath.Get(latestClosePath, doc); err == nil {
		if list, ok := closes.([]any); ok {
			for i := len(list) - 1; i >= 0; i-- {
				if v, ok := list[i].(float64); ok {
					return &v, nil
				}
			}
		}
	}

	price, err := jsonpath.Get(marketPricePath, doc)
	if err != nil {
		return nil, fmt.Errorf("no close for %s: %w", symbol, err)
	}
	// jsonpath may wrap a single answer in a list
	if list, ok := price.([]any); ok && len(list) > 0 {
		price = list[0]
	}
	v, ok := price.(float64)
	if !ok {
		return nil, fmt.Errorf("no close for %s", symbol)
	}
	return &v, nil
}

// GetPriceHistory returns daily closes for the range, oldest first
func (g *Gateway) GetPriceHistory(ctx context.Context, symbol string, rangeName string) ([]models.PricePoint, error) {
	chart, err := g.client.GetChart(ctx, symbol, rangeName, "1d")
	if err != nil {
		return nil, err
	}

	if len(chart.Indicators.Quote) == 0 {
		return nil, nil
	}
	closes := chart.Indicators.Quote[0].Close

	points := make([]models.PricePoint, 0, len(chart.Timestamp))
	for i, ts := range chart.Timestamp {
		if i >= len(closes) || closes[i] == nil {
			continue
		}
		points = append(points, models.PricePoint{
			Date:  time.Unix(ts, 0).UTC(),
			Close: *closes[i],
		})
	}

	g.logger.Debug().
		Str("symbol", symbol).
		Str("range", rangeName).
		Int("points", len(points)).
		Msg("Loaded price history")

	return points, nil
}

func epochDate(v *RawValue) (time.Time, bool) {
	raw := v.Float()
	if raw == nil {
		return time.Time{}, false
	}
	return time.Unix(int64(*raw), 0).UTC(), true
}
