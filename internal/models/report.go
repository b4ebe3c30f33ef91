package models

import "time"

// Canonical report section keys. Every CanonicalReport carries exactly these
// five keys; absent data is filled with a sentinel string, never omitted.
const (
	SectionMarketAnalysis      = "market_analysis"
	SectionFundamentalAnalysis = "fundamental_analysis"
	SectionSentimentSnapshot   = "sentiment_snapshot"
	SectionRiskAssessment      = "risk_assessment"
	SectionStrategyNote        = "strategy_note"
)

// SectionKeys lists the canonical section keys in presentation order
var SectionKeys = []string{
	SectionMarketAnalysis,
	SectionFundamentalAnalysis,
	SectionSentimentSnapshot,
	SectionRiskAssessment,
	SectionStrategyNote,
}

// SectionNames maps canonical keys to their human-readable names, used for
// sentinel strings and UI labels
var SectionNames = map[string]string{
	SectionMarketAnalysis:      "Market analysis",
	SectionFundamentalAnalysis: "Fundamental analysis",
	SectionSentimentSnapshot:   "Sentiment snapshot",
	SectionRiskAssessment:      "Risk assessment",
	SectionStrategyNote:        "Strategy note",
}

// SectionSentinel returns the placeholder text for a section with no data
func SectionSentinel(key string) string {
	name, ok := SectionNames[key]
	if !ok {
		name = key
	}
	return name + " not available"
}

// ReportMeta carries report provenance
type ReportMeta struct {
	GeneratedAt time.Time `json:"generated_at"`
	Model       string    `json:"model,omitempty"`
	AgentsUsed  []string  `json:"agents_used,omitempty"`
	KeyLevels   string    `json:"key_levels,omitempty"`
}

// CanonicalReport is the normalized five-section report shape produced by the
// report normalizer. Immutable once produced. Sequence-valued source sections
// are joined into a single string with paragraph breaks, order preserved.
type CanonicalReport struct {
	Sections map[string]string `json:"sections"`
	Meta     ReportMeta        `json:"meta"`
}

// Section returns a section body, or its sentinel if the key is unknown
func (r *CanonicalReport) Section(key string) string {
	if r == nil || r.Sections == nil {
		return SectionSentinel(key)
	}
	if text, ok := r.Sections[key]; ok && text != "" {
		return text
	}
	return SectionSentinel(key)
}

// FullText concatenates all section bodies in canonical order, skipping
// sentinel placeholders. Used by the confidence scorer.
func (r *CanonicalReport) FullText() string {
	if r == nil {
		return ""
	}
	var out string
	for _, key := range SectionKeys {
		text := r.Sections[key]
		if text == "" || text == SectionSentinel(key) {
			continue
		}
		if out != "" {
			out += "\n\n"
		}
		out += text
	}
	return out
}
