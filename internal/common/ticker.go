// Package common provides shared utilities across the application.
package common

import (
	"strings"
)

// Symbol represents a provider-neutral ticker, optionally exchange-qualified.
// Format: BASE[.SUFFIX] (e.g., "AAPL", "BBCA.JK", "7203.T")
type Symbol struct {
	// Base is the listing code without exchange suffix (e.g., "BBCA")
	Base string
	// Suffix is the exchange suffix including the dot (e.g., ".JK"), empty for bare symbols
	Suffix string
	// Raw is the original input
	Raw string
}

// SuffixToEODHDExchange maps exchange suffixes to EODHD exchange codes.
var SuffixToEODHDExchange = map[string]string{
	".JK": "JK",  // Indonesia
	".NS": "NSE", // India NSE
	".BO": "BSE", // India BSE
	".TO": "TO",  // Toronto
	".V":  "V",   // TSX Venture
	".L":  "LSE", // London
	".SI": "SG",  // Singapore
	".AX": "AU",  // Australia
	".HK": "HK",  // Hong Kong
	".T":  "TSE", // Tokyo
	".KS": "KO",  // Korea KOSPI
	".KQ": "KQ",  // Korea KOSDAQ
	".SS": "SHG", // Shanghai
	".SZ": "SHE", // Shenzhen
	".TW": "TW",  // Taiwan
	".NZ": "NZ",  // New Zealand
	".MX": "MX",  // Mexico
}

// DefaultEODHDExchange is used for bare symbols (US listings).
const DefaultEODHDExchange = "US"

// fxSuffix marks currency pair instruments (e.g., "USDIDR=X").
const fxSuffix = "=X"

// CleanSymbol trims and uppercases raw user input.
func CleanSymbol(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}

// IsQualified reports whether the symbol already carries an exchange suffix.
func IsQualified(symbol string) bool {
	return strings.Contains(symbol, ".")
}

// ParseSymbol splits a symbol into base code and exchange suffix.
// The last dot separates the suffix, so "BRK.B" parses as Base="BRK", Suffix=".B".
func ParseSymbol(raw string) Symbol {
	s := CleanSymbol(raw)
	if s == "" {
		return Symbol{}
	}

	idx := strings.LastIndex(s, ".")
	if idx <= 0 || idx == len(s)-1 {
		return Symbol{Base: strings.TrimSuffix(s, "."), Raw: raw}
	}

	return Symbol{
		Base:   s[:idx],
		Suffix: s[idx:],
		Raw:    raw,
	}
}

// String returns the provider-neutral symbol.
func (s Symbol) String() string {
	return s.Base + s.Suffix
}

// IsFX reports whether the symbol names a currency pair.
func (s Symbol) IsFX() bool {
	return strings.HasSuffix(s.Base, fxSuffix)
}

// EODHDSymbol returns the EODHD API symbol format.
// Examples: "BBCA.JK" -> "BBCA.JK", "RELIANCE.NS" -> "RELIANCE.NSE", "AAPL" -> "AAPL.US",
// "USDIDR=X" -> "USDIDR.FOREX".
func (s Symbol) EODHDSymbol() string {
	if s.Base == "" {
		return ""
	}
	if s.IsFX() {
		return strings.TrimSuffix(s.Base, fxSuffix) + ".FOREX"
	}
	if s.Suffix == "" {
		return s.Base + "." + DefaultEODHDExchange
	}
	if exchange, ok := SuffixToEODHDExchange[s.Suffix]; ok {
		return s.Base + "." + exchange
	}
	// Unknown suffix: pass through unchanged
	return s.Base + s.Suffix
}
