package semantic

import (
	"regexp"

	"github.com/finsight/stockpulse/internal/models"
)

// Confidence is the bucketed confidence level shown to the user
type Confidence string

const (
	ConfidenceHigh   Confidence = "High"
	ConfidenceMedium Confidence = "Medium"
	ConfidenceLow    Confidence = "Low"
)

const baseConfidenceScore = 65

// additive weights per lexicon occurrence
const (
	weightStrongPositive   = 8
	weightModeratePositive = 4
	weightStrongNegative   = -6
	weightModerateNegative = -3
	weightHighCertainty    = 4
	weightLowCertainty     = -2
	weightHighRisk         = -8
	weightLowRisk          = 6
	weightModerateRisk     = -2
	weightStrongAligned    = 8
	weightStrongShaky      = -5
	weightDecisive         = 5
	weightHedging          = -2
	maxHedgingOccurrences  = 5
	consensusSpan          = 15
	weightSectionCoverage  = 5
)

var (
	highRiskPhrase     = regexp.MustCompile(`(?i)\bhigh\s+risk\b`)
	lowRiskPhrase      = regexp.MustCompile(`(?i)\blow\s+risk\b`)
	moderateRiskPhrase = regexp.MustCompile(`(?i)\bmoderate\s+risk\b`)
	hedgingWords       = regexp.MustCompile(`(?i)\b(however|but|although|despite)\b`)
)

// ClassifyConfidence buckets the confidence score: >=70 High, >=50 Medium,
// otherwise Low.
func ClassifyConfidence(text string, rec Recommendation, report *models.CanonicalReport) Confidence {
	score := ConfidenceScore(text, rec, report)
	switch {
	case score >= 70:
		return ConfidenceHigh
	case score >= 50:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

// ConfidenceScore computes the 0-100 confidence score for a recommendation.
// The scan runs over the full report text when a report is available,
// otherwise over the supplied strategy text. Starts at 65 and applies the
// lexicon adjustments, the recommendation-strength bonus, hedging penalties,
// cross-section consensus and section coverage, then clamps to [0,100].
func ConfidenceScore(text string, rec Recommendation, report *models.CanonicalReport) float64 {
	scanText := text
	if full := report.FullText(); full != "" {
		scanText = full
	}

	score := float64(baseConfidenceScore)

	score += float64(lex.strongPositive.count(scanText) * weightStrongPositive)
	score += float64(lex.moderatePositive.count(scanText) * weightModeratePositive)
	score += float64(lex.strongNegative.count(scanText) * weightStrongNegative)
	score += float64(lex.moderateNegative.count(scanText) * weightModerateNegative)
	score += float64(lex.highCertainty.count(scanText) * weightHighCertainty)
	score += float64(lex.lowCertainty.count(scanText) * weightLowCertainty)

	score += float64(len(highRiskPhrase.FindAllStringIndex(scanText, -1)) * weightHighRisk)
	score += float64(len(lowRiskPhrase.FindAllStringIndex(scanText, -1)) * weightLowRisk)
	score += float64(len(moderateRiskPhrase.FindAllStringIndex(scanText, -1)) * weightModerateRisk)

	// A strong stance on top of an already-convincing report reinforces it;
	// a strong stance on weak evidence reads as overreach
	if rec.IsStrong() {
		if score > 70 {
			score += weightStrongAligned
		} else {
			score += weightStrongShaky
		}
	}
	if rec != RecHold {
		score += weightDecisive
	}

	hedges := len(hedgingWords.FindAllStringIndex(scanText, -1))
	if hedges > maxHedgingOccurrences {
		hedges = maxHedgingOccurrences
	}
	score += float64(hedges * weightHedging)

	score += consensusAdjustment(rec, report)

	if countPopulatedSections(report) >= 4 {
		score += weightSectionCoverage
	}

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return score
}

// consensusAdjustment measures agreement between the report's sections and
// the extracted stance. Each populated section votes +1 if it matches the
// stance's alignment terms and -1 if it matches the counter-stance terms;
// the average vote is scaled to +/-15.
func consensusAdjustment(rec Recommendation, report *models.CanonicalReport) float64 {
	if report == nil {
		return 0
	}

	aligned, counter := alignmentGroups(rec)

	votes := 0
	populated := 0
	for _, key := range models.SectionKeys {
		text := report.Sections[key]
		if text == "" || text == models.SectionSentinel(key) {
			continue
		}
		populated++
		if aligned.matches(text) {
			votes++
		}
		if counter.matches(text) {
			votes--
		}
	}

	if populated == 0 {
		return 0
	}
	return float64(votes) / float64(populated) * consensusSpan
}

// alignmentGroups returns the consensus term group matching a stance and the
// group that contradicts it. For HOLD, either directional conviction counts
// as contradiction.
func alignmentGroups(rec Recommendation) (aligned, counter patternGroup) {
	switch rec {
	case RecBuy, RecStrongBuy:
		return lex.consensusBuy, lex.consensusSell
	case RecSell, RecStrongSell:
		return lex.consensusSell, lex.consensusBuy
	default:
		both := patternGroup{patterns: append(append([]*regexp.Regexp{}, lex.consensusBuy.patterns...), lex.consensusSell.patterns...)}
		return lex.consensusHold, both
	}
}

// countPopulatedSections counts sections carrying real (non-sentinel) text
func countPopulatedSections(report *models.CanonicalReport) int {
	if report == nil {
		return 0
	}
	n := 0
	for _, key := range models.SectionKeys {
		text := report.Sections[key]
		if text != "" && text != models.SectionSentinel(key) {
			n++
		}
	}
	return n
}
