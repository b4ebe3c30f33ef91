package semantic

import (
	"regexp"
	"strings"
)

// Recommendation is the extracted trading stance
type Recommendation string

const (
	RecStrongBuy  Recommendation = "STRONG BUY"
	RecBuy        Recommendation = "BUY"
	RecHold       Recommendation = "HOLD"
	RecSell       Recommendation = "SELL"
	RecStrongSell Recommendation = "STRONG SELL"
)

// IsStrong reports whether the stance carries a strong qualifier
func (r Recommendation) IsStrong() bool {
	return r == RecStrongBuy || r == RecStrongSell
}

// explicit "Recommendation: BUY" style line emitted by the strategy agent
var recommendationLine = regexp.MustCompile(`(?im)recommendation:\s*(strong\s+buy|strong\s+sell|buy|hold|sell)`)

var whitespaceRun = regexp.MustCompile(`\s+`)

// ClassifyRecommendation extracts a trading stance from strategy-note prose.
// An explicit "recommendation:" line wins outright; otherwise the pattern
// groups are checked in fixed order (strong buy, buy, strong sell, sell,
// hold) and the first hit decides. Directional keywords immediately preceded
// by a negator do not count, nor does "buy" inside the phrase "hold or buy".
// The default stance is HOLD.
func ClassifyRecommendation(text string) Recommendation {
	if m := recommendationLine.FindStringSubmatch(text); m != nil {
		literal := whitespaceRun.ReplaceAllString(strings.ToUpper(strings.TrimSpace(m[1])), " ")
		return Recommendation(literal)
	}

	if lex.strongBuy.matches(text) {
		return RecStrongBuy
	}
	if hasDirectionalSignal(text, lex.buy, true) {
		return RecBuy
	}
	if lex.strongSell.matches(text) {
		return RecStrongSell
	}
	if hasDirectionalSignal(text, lex.sell, false) {
		return RecSell
	}
	if lex.hold.matches(text) {
		return RecHold
	}

	return RecHold
}

// hasDirectionalSignal reports whether a buy/sell keyword occurs without
// negation. For the buy direction, matches inside "hold or buy" are ignored.
func hasDirectionalSignal(text string, group patternGroup, buyDirection bool) bool {
	for _, idx := range group.indexes(text) {
		if isNegated(text, idx) {
			continue
		}
		if buyDirection && inHoldOrBuyPhrase(text, idx) {
			continue
		}
		return true
	}
	return false
}

// isNegated checks the few words immediately before a keyword occurrence for
// a negator ("don't", "not", "avoid", "shouldn't")
func isNegated(text string, idx int) bool {
	start := idx - 30
	if start < 0 {
		start = 0
	}

	words := strings.Fields(strings.ToLower(text[start:idx]))
	if len(words) > 3 {
		words = words[len(words)-3:]
	}

	for _, word := range words {
		word = strings.Trim(word, ".,;:!?()\"'")
		switch word {
		case "don't", "dont", "not", "avoid", "shouldn't", "shouldnt":
			return true
		}
	}
	return false
}

// inHoldOrBuyPhrase reports whether the keyword at idx is the "buy" of a
// "hold or buy" phrase, which signals indecision rather than a buy
func inHoldOrBuyPhrase(text string, idx int) bool {
	start := idx - 10
	if start < 0 {
		start = 0
	}
	window := strings.ToLower(text[start:min(idx+3, len(text))])
	return strings.Contains(whitespaceRun.ReplaceAllString(window, " "), "hold or buy")
}
