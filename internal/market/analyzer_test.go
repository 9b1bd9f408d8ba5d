package market

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/fundscope/internal/common"
	"github.com/ternarybob/fundscope/internal/models"
)

func newTestAnalyzer(gw *stubGateway) *Analyzer {
	return NewAnalyzer(gw, common.NewDefaultConfig().Market, createTestLogger())
}

func appleFixture(gw *stubGateway) {
	gw.info["AAPL"] = &models.InstrumentInfo{
		Symbol:         "AAPL",
		LongName:       "Apple Inc.",
		ShortName:      "Apple",
		Sector:         "Technology",
		Industry:       "Consumer Electronics",
		Currency:       "USD",
		CurrentPrice:   models.Float(150),
		TrailingEPS:    models.Float(5),
		BookValue:      models.Float(20),
		ReturnOnEquity: models.Float(0.25),
		DividendYield:  models.Float(0.02),
	}
}

func TestAnalyze_USDInstrument(t *testing.T) {
	gw := newStubGateway()
	appleFixture(gw)
	gw.income["AAPL"] = netIncome(map[int]float64{2022: 100, 2023: 100, 2024: 121})

	result, err := newTestAnalyzer(gw).Analyze(context.Background(), " aapl ")
	require.NoError(t, err)

	assert.Equal(t, "AAPL", result.InputTicker)
	assert.Equal(t, "AAPL", result.UsedTicker)
	assert.Equal(t, "Apple Inc.", result.Name)
	assert.Equal(t, "USD", result.Currency)
	assert.Equal(t, "$150.00", result.PriceStr)
	assert.Equal(t, "$0", result.MarketCapStr)

	assert.Equal(t, "30.00", OrNA(result.Ratios.PERStr))
	assert.Equal(t, "7.50", OrNA(result.Ratios.PBVStr))
	assert.Equal(t, "25.00", OrNA(result.Ratios.ROEStr))
	assert.Equal(t, "2.00", OrNA(result.Ratios.DividendYieldStr))
	assert.Nil(t, result.Ratios.DERStr)

	require.Len(t, result.GrowthList, 3)
	assert.Equal(t, "2022-12-31", result.GrowthList[0].Period)
	assert.Equal(t, "$100.00", result.GrowthList[0].ValueStr)
	assert.Equal(t, "10.00", OrNA(result.GrowthCAGRStr))

	for _, call := range gw.calls {
		assert.NotContains(t, call, "close:", "no FX lookup for USD instruments")
	}
}

func TestAnalyze_ZeroCurrentPriceFallsBackToRegularMarket(t *testing.T) {
	gw := newStubGateway()
	gw.info["AAPL"] = &models.InstrumentInfo{
		Symbol:             "AAPL",
		Currency:           "USD",
		CurrentPrice:       models.Float(0),
		RegularMarketPrice: models.Float(100),
		TrailingEPS:        models.Float(5),
	}

	result, err := newTestAnalyzer(gw).Analyze(context.Background(), "AAPL")
	require.NoError(t, err)

	assert.Equal(t, "$100.00", result.PriceStr)
	assert.Equal(t, "20.00", OrNA(result.Ratios.PERStr))
}

func TestAnalyze_LocalCurrencyUsesFXRate(t *testing.T) {
	gw := newStubGateway()
	gw.info["BBCA"] = &models.InstrumentInfo{Symbol: "BBCA"}
	gw.info["BBCA.JK"] = &models.InstrumentInfo{
		Symbol:       "BBCA.JK",
		ShortName:    "Bank Central Asia",
		Currency:     "IDR",
		CurrentPrice: models.Float(9_600),
		MarketCap:    models.Float(60_150_000_000_000),
	}
	gw.closes["USDIDR=X"] = 15820

	result, err := newTestAnalyzer(gw).Analyze(context.Background(), "bbca")
	require.NoError(t, err)

	assert.Equal(t, "BBCA", result.InputTicker)
	assert.Equal(t, "BBCA.JK", result.UsedTicker)
	assert.Equal(t, "Bank Central Asia", result.Name)
	assert.Equal(t, "Rp 60.15T ($3.80B)", result.MarketCapStr)
	assert.Contains(t, result.PriceStr, "Rp 9.60K (")
	assert.Empty(t, result.GrowthList)
	assert.Nil(t, result.GrowthCAGRStr)
}

func TestAnalyze_FXFailureDropsConversion(t *testing.T) {
	gw := newStubGateway()
	gw.info["TLKM.JK"] = &models.InstrumentInfo{
		Currency:     "IDR",
		CurrentPrice: models.Float(3_000),
	}
	gw.closeErr = errors.New("timeout")

	result, err := newTestAnalyzer(gw).Analyze(context.Background(), "TLKM.JK")
	require.NoError(t, err)
	assert.Equal(t, "Rp 3.00K", result.PriceStr)
}

func TestAnalyze_OtherCurrency(t *testing.T) {
	gw := newStubGateway()
	gw.info["SAP.DE"] = &models.InstrumentInfo{
		Currency:     "EUR",
		CurrentPrice: models.Float(150),
	}

	result, err := newTestAnalyzer(gw).Analyze(context.Background(), "sap.de")
	require.NoError(t, err)
	assert.Equal(t, "150 EUR", result.PriceStr)
	assert.Equal(t, "N/A EUR", result.MarketCapStr)
}

func TestAnalyze_EmptyInput(t *testing.T) {
	gw := newStubGateway()

	_, err := newTestAnalyzer(gw).Analyze(context.Background(), "  \t ")
	assert.ErrorIs(t, err, ErrEmptyInput)
	assert.Equal(t, 0, gw.callCount())
}

func TestAnalyze_UpstreamFailures(t *testing.T) {
	t.Run("info", func(t *testing.T) {
		gw := newStubGateway()
		_, err := newTestAnalyzer(gw).Analyze(context.Background(), "NOPE.JK")
		assert.ErrorIs(t, err, ErrUpstreamUnavailable)
		assert.ErrorIs(t, err, errUnknownSymbol)
	})

	t.Run("balance sheet", func(t *testing.T) {
		gw := newStubGateway()
		appleFixture(gw)
		gw.balanceErr = errors.New("502")
		_, err := newTestAnalyzer(gw).Analyze(context.Background(), "AAPL")
		assert.ErrorIs(t, err, ErrUpstreamUnavailable)
	})

	t.Run("income statement", func(t *testing.T) {
		gw := newStubGateway()
		appleFixture(gw)
		gw.incomeErr = errors.New("502")
		_, err := newTestAnalyzer(gw).Analyze(context.Background(), "AAPL")
		assert.ErrorIs(t, err, ErrUpstreamUnavailable)
	})
}

func TestAnalysisResult_JSONShape(t *testing.T) {
	gw := newStubGateway()
	appleFixture(gw)

	result, err := newTestAnalyzer(gw).Analyze(context.Background(), "AAPL")
	require.NoError(t, err)

	data, err := json.Marshal(result)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))

	for _, key := range []string{
		"input_ticker", "used_ticker", "name", "sector", "industry", "currency",
		"price_str", "market_cap_str", "shares_out_str", "ratios", "growth_list", "growth_cagr_str",
	} {
		assert.Contains(t, decoded, key)
	}

	ratios := decoded["ratios"].(map[string]any)
	assert.Equal(t, "30.00", ratios["PER_str"])
	assert.InDelta(t, 2.0, ratios["DividendYield_%"], 1e-9)
	assert.Nil(t, ratios["DER"])
	assert.Nil(t, ratios["DER_str"])
	assert.Equal(t, []any{}, decoded["growth_list"])
}

type scopeMarker struct{}

// scopingGateway records whether lookups run inside the gateway's request scope
type scopingGateway struct {
	*stubGateway
	scoped []bool
}

func (g *scopingGateway) Scope(ctx context.Context) context.Context {
	return context.WithValue(ctx, scopeMarker{}, true)
}

func (g *scopingGateway) GetInfo(ctx context.Context, symbol string) (*models.InstrumentInfo, error) {
	g.scoped = append(g.scoped, ctx.Value(scopeMarker{}) != nil)
	return g.stubGateway.GetInfo(ctx, symbol)
}

func (g *scopingGateway) GetIncomeStatement(ctx context.Context, symbol string) (*models.Statement, error) {
	g.scoped = append(g.scoped, ctx.Value(scopeMarker{}) != nil)
	return g.stubGateway.GetIncomeStatement(ctx, symbol)
}

func TestAnalyze_RunsInsideGatewayScope(t *testing.T) {
	gw := &scopingGateway{stubGateway: newStubGateway()}
	appleFixture(gw.stubGateway)

	analyzer := NewAnalyzer(gw, common.NewDefaultConfig().Market, createTestLogger())
	_, err := analyzer.Analyze(context.Background(), "AAPL")
	require.NoError(t, err)

	require.NotEmpty(t, gw.scoped)
	for _, scoped := range gw.scoped {
		assert.True(t, scoped)
	}
}
