package common

import (
	"strings"
)

// MaxTickersPerRun caps the number of symbols a single analysis run may cover.
const MaxTickersPerRun = 5

// NormalizeSymbol canonicalizes a ticker symbol: trimmed, uppercased, and with
// an optional exchange qualifier ("NASDAQ:AAPL", "NASDAQ.AAPL") reduced to the
// bare code expected by the analysis backend.
func NormalizeSymbol(symbol string) string {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	if s == "" {
		return ""
	}

	// Exchange-qualified forms keep the code portion only
	if idx := strings.LastIndexAny(s, ":."); idx >= 0 && idx < len(s)-1 {
		s = s[idx+1:]
	}

	return s
}

// NormalizeSymbols canonicalizes a ticker list: each symbol normalized,
// empties discarded, duplicates removed with the first occurrence winning,
// original order otherwise preserved.
func NormalizeSymbols(symbols []string) []string {
	out := make([]string, 0, len(symbols))
	seen := make(map[string]bool, len(symbols))

	for _, symbol := range symbols {
		s := NormalizeSymbol(symbol)
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}

	return out
}
