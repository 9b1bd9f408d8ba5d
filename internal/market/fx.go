package market

import (
	"context"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/fundscope/internal/interfaces"
)

// FXRate returns the latest close of the FX pair (local units per 1 USD).
// Any failure yields nil, meaning no conversion.
func FXRate(ctx context.Context, gateway interfaces.MarketGateway, pair string, logger arbor.ILogger) *float64 {
	if pair == "" {
		return nil
	}

	rate, err := gateway.GetLatestClose(ctx, pair)
	if err != nil {
		logger.Warn().Err(err).Str("pair", pair).Msg("FX rate unavailable, skipping USD conversion")
		return nil
	}
	if rate == nil || finite(*rate) == nil || *rate <= 0 {
		return nil
	}
	return rate
}
