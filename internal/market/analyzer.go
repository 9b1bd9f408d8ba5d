package market

import (
	"context"
	"fmt"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/fundscope/internal/common"
	"github.com/ternarybob/fundscope/internal/interfaces"
	"github.com/ternarybob/fundscope/internal/models"
)

// Analyzer runs the normalize -> fetch -> ratios/growth -> format pipeline.
// It holds no per-request state and is safe for concurrent use.
type Analyzer struct {
	gateway    interfaces.MarketGateway
	normalizer *Normalizer
	formatter  *Formatter
	fxPair     string
	logger     arbor.ILogger
}

// NewAnalyzer creates an analyzer from market configuration
func NewAnalyzer(gateway interfaces.MarketGateway, config common.MarketConfig, logger arbor.ILogger) *Analyzer {
	return &Analyzer{
		gateway:    gateway,
		normalizer: NewNormalizer(gateway, config.Suffixes, logger),
		formatter:  NewFormatter(config.LocalCurrency),
		fxPair:     config.FXPair,
		logger:     logger,
	}
}

// Normalizer returns the analyzer's ticker normalizer
func (a *Analyzer) Normalizer() *Normalizer {
	return a.normalizer
}

// Formatter returns the analyzer's currency formatter
func (a *Analyzer) Formatter() *Formatter {
	return a.formatter
}

// Analyze resolves rawTicker and builds the formatted analysis.
// Returns ErrEmptyInput before any gateway call for blank input, and an error
// wrapping ErrUpstreamUnavailable when info or statements cannot be fetched.
// Missing individual fields never fail the analysis.
func (a *Analyzer) Analyze(ctx context.Context, rawTicker string) (*AnalysisResult, error) {
	input := common.CleanSymbol(rawTicker)
	if input == "" {
		return nil, ErrEmptyInput
	}

	if scoper, ok := a.gateway.(interfaces.RequestScoper); ok {
		ctx = scoper.Scope(ctx)
	}

	used := a.normalizer.Normalize(ctx, input)

	a.logger.Debug().
		Str("input", input).
		Str("used", used).
		Msg("Analyzing ticker")

	info, err := a.gateway.GetInfo(ctx, used)
	if err != nil {
		return nil, fmt.Errorf("%w: info for %s: %w", ErrUpstreamUnavailable, used, err)
	}
	if info == nil {
		return nil, fmt.Errorf("%w: no info for %s", ErrUpstreamUnavailable, used)
	}

	balance, err := a.gateway.GetBalanceSheet(ctx, used)
	if err != nil {
		return nil, fmt.Errorf("%w: balance sheet for %s: %w", ErrUpstreamUnavailable, used, err)
	}

	income, err := a.gateway.GetIncomeStatement(ctx, used)
	if err != nil {
		return nil, fmt.Errorf("%w: income statement for %s: %w", ErrUpstreamUnavailable, used, err)
	}

	ratios := ComputeRatios(info, balance)
	growth := ComputeGrowth(income)

	currency := strings.ToUpper(info.Currency)
	var rate *float64
	if currency != "" && currency == a.formatter.LocalCurrency() {
		rate = FXRate(ctx, a.gateway, a.fxPair, a.logger)
	}

	result := &AnalysisResult{
		InputTicker:  input,
		UsedTicker:   used,
		Name:         info.DisplayName(),
		Sector:       info.Sector,
		Industry:     info.Industry,
		Currency:     info.Currency,
		PriceStr:     a.formatter.FormatAmount(info.Price(), currency, rate),
		MarketCapStr: a.formatter.FormatAmount(info.MarketCap, currency, rate),
		SharesOutStr: a.formatter.FormatAmount(info.SharesOutstanding, currency, rate),
		Ratios:       NewRatioView(ratios),
		GrowthList:   []GrowthEntry{},
	}

	if growth != nil {
		for _, p := range growth.Points {
			result.GrowthList = append(result.GrowthList, GrowthEntry{
				Period:   p.Period.Format(PeriodLayout),
				ValueStr: a.formatter.FormatAmount(models.Float(p.Value), currency, rate),
			})
		}
		result.GrowthCAGRStr = fmt2(growth.CAGR)
	}

	a.logger.Info().
		Str("input", input).
		Str("used", used).
		Str("currency", info.Currency).
		Int("growth_periods", len(result.GrowthList)).
		Bool("fx_rate", rate != nil).
		Msg("Analysis complete")

	return result, nil
}
