package market

import (
	"context"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/fundscope/internal/common"
	"github.com/ternarybob/fundscope/internal/interfaces"
)

// Normalizer resolves raw user symbols to exchange-qualified symbols.
// The suffix list is copied at construction and never mutated.
type Normalizer struct {
	gateway  interfaces.MarketGateway
	suffixes []string
	logger   arbor.ILogger
}

// NewNormalizer creates a normalizer that tries suffixes in the given order
func NewNormalizer(gateway interfaces.MarketGateway, suffixes []string, logger arbor.ILogger) *Normalizer {
	return &Normalizer{
		gateway:  gateway,
		suffixes: append([]string(nil), suffixes...),
		logger:   logger,
	}
}

// Suffixes returns a copy of the configured suffix search order
func (n *Normalizer) Suffixes() []string {
	return append([]string(nil), n.suffixes...)
}

// Normalize returns the provider symbol for raw input.
//
//   - empty input returns ""
//   - input containing "." is returned as-is without validation
//   - a bare symbol that validates is returned as-is
//   - otherwise the first bare+suffix candidate that validates is returned
//   - when nothing validates the bare symbol is returned
//
// Lookup failures count as "not valid" and are never returned.
func (n *Normalizer) Normalize(ctx context.Context, raw string) string {
	symbol := common.CleanSymbol(raw)
	if symbol == "" || common.IsQualified(symbol) {
		return symbol
	}

	if n.isValid(ctx, symbol) {
		return symbol
	}

	for _, sfx := range n.suffixes {
		if ctx.Err() != nil {
			n.logger.Debug().Str("symbol", symbol).Msg("Normalization cancelled")
			return symbol
		}

		candidate := symbol + sfx
		if n.isValid(ctx, candidate) {
			n.logger.Debug().
				Str("input", symbol).
				Str("resolved", candidate).
				Msg("Resolved exchange suffix")
			return candidate
		}
	}

	n.logger.Debug().
		Str("symbol", symbol).
		Int("suffixes_tried", len(n.suffixes)).
		Msg("No exchange suffix validated, using bare symbol")
	return symbol
}

// isValid reports whether the gateway returns a price for the symbol
func (n *Normalizer) isValid(ctx context.Context, symbol string) bool {
	info, err := n.gateway.GetInfo(ctx, symbol)
	if err != nil {
		n.logger.Debug().Err(err).Str("candidate", symbol).Msg("Candidate lookup failed")
		return false
	}
	return info.Price() != nil
}
