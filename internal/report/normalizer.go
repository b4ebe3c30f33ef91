// Package report maps the analysis backend's heterogeneous payload shapes
// onto the canonical five-section report model. Normalization is total: any
// input, including nil or garbage, produces a report with exactly the five
// canonical section keys, sentinel-filled where data is missing.
package report

import (
	"strings"
	"time"

	"github.com/finsight/stockpulse/internal/models"
)

// sectionAliases maps backend field names onto canonical section keys. The
// agent pipeline emits "sentiment_analysis" and "investment_strategy"; older
// payloads already use the canonical names.
var sectionAliases = map[string]string{
	"market_analysis":      models.SectionMarketAnalysis,
	"fundamental_analysis": models.SectionFundamentalAnalysis,
	"sentiment_analysis":   models.SectionSentimentSnapshot,
	"sentiment_snapshot":   models.SectionSentimentSnapshot,
	"risk_assessment":      models.SectionRiskAssessment,
	"investment_strategy":  models.SectionStrategyNote,
	"strategy_note":        models.SectionStrategyNote,
}

// Normalize converts one ticker's raw backend payload into a CanonicalReport.
// Three shapes are recognized, first match wins:
//
//  1. payload.prediction holds the section scalars (current agent pipeline)
//  2. payload.sections holds them keyed canonically
//  3. the payload itself carries the canonical keys at top level
//
// Unknown fields are ignored everywhere.
func Normalize(payload map[string]any) *models.CanonicalReport {
	source := payload
	meta := models.ReportMeta{GeneratedAt: time.Now()}

	if payload != nil {
		if prediction, ok := asMap(payload["prediction"]); ok {
			source = prediction
			meta = extractMeta(prediction)
		} else if sections, ok := asMap(payload["sections"]); ok {
			source = sections
		} else {
			meta = extractMeta(payload)
		}
	}

	sections := make(map[string]string, len(models.SectionKeys))
	for field, key := range sectionAliases {
		if source == nil {
			break
		}
		text := asText(source[field])
		if text != "" && sections[key] == "" {
			sections[key] = text
		}
	}

	// Totality: every canonical key present, sentinel where empty
	for _, key := range models.SectionKeys {
		if sections[key] == "" {
			sections[key] = models.SectionSentinel(key)
		}
	}

	return &models.CanonicalReport{
		Sections: sections,
		Meta:     meta,
	}
}

// extractMeta pulls provenance fields out of a payload level
func extractMeta(source map[string]any) models.ReportMeta {
	meta := models.ReportMeta{GeneratedAt: time.Now()}

	if ts := asText(source["timestamp"]); ts != "" {
		if parsed, err := parseTimestamp(ts); err == nil {
			meta.GeneratedAt = parsed
		}
	}
	meta.Model = asText(source["model"])
	meta.KeyLevels = asText(source["key_levels"])

	if agents, ok := source["agents_used"].([]any); ok {
		for _, agent := range agents {
			if name, ok := agent.(string); ok {
				meta.AgentsUsed = append(meta.AgentsUsed, name)
			}
		}
	}

	return meta
}

// parseTimestamp accepts RFC3339 and the backend's zone-less ISO form
func parseTimestamp(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02T15:04:05.999999", value)
}

func asMap(value any) (map[string]any, bool) {
	m, ok := value.(map[string]any)
	if !ok || len(m) == 0 {
		return nil, false
	}
	return m, true
}

// asText coerces a payload value to a section body: strings pass through,
// string sequences are joined with paragraph breaks in order.
func asText(value any) string {
	switch v := value.(type) {
	case string:
		return strings.TrimSpace(v)
	case []any:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				if s = strings.TrimSpace(s); s != "" {
					parts = append(parts, s)
				}
			}
		}
		return strings.Join(parts, "\n\n")
	default:
		return ""
	}
}
