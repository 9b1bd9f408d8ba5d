package app

import (
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/fundscope/internal/common"
	"github.com/ternarybob/fundscope/internal/eodhd"
	"github.com/ternarybob/fundscope/internal/interfaces"
	"github.com/ternarybob/fundscope/internal/yahoo"
)

// NewGateway builds the market data gateway selected by [market] provider
func NewGateway(cfg *common.Config, logger arbor.ILogger) (interfaces.MarketGateway, error) {
	timeout := cfg.MarketTimeout()

	switch cfg.Market.Provider {
	case common.ProviderYahoo, "":
		opts := []yahoo.ClientOption{
			yahoo.WithLogger(logger),
			yahoo.WithTimeout(timeout),
			yahoo.WithRateLimit(cfg.Market.RateLimit),
		}
		if cfg.Yahoo.BaseURL != "" {
			opts = append(opts, yahoo.WithBaseURL(cfg.Yahoo.BaseURL))
		}
		if cfg.Yahoo.ChartURL != "" {
			opts = append(opts, yahoo.WithChartURL(cfg.Yahoo.ChartURL))
		}
		if cfg.Yahoo.UserAgent != "" {
			opts = append(opts, yahoo.WithUserAgent(cfg.Yahoo.UserAgent))
		}
		return yahoo.NewGateway(yahoo.NewClient(opts...), logger), nil

	case common.ProviderEODHD:
		if cfg.EODHD.APIKey == "" {
			return nil, fmt.Errorf("eodhd provider requires an api key")
		}
		opts := []eodhd.ClientOption{
			eodhd.WithLogger(logger),
			eodhd.WithTimeout(timeout),
			eodhd.WithRateLimit(cfg.Market.RateLimit),
		}
		if cfg.EODHD.BaseURL != "" {
			opts = append(opts, eodhd.WithBaseURL(cfg.EODHD.BaseURL))
		}
		return eodhd.NewGateway(eodhd.NewClient(cfg.EODHD.APIKey, opts...), logger), nil

	default:
		return nil, fmt.Errorf("unknown market provider %q", cfg.Market.Provider)
	}
}
