package report

import (
	"testing"
	"time"

	"github.com/finsight/stockpulse/internal/models"
)

func TestNormalizePredictionShape(t *testing.T) {
	payload := map[string]any{
		"prediction": map[string]any{
			"market_analysis":      "Markets are trending upward.",
			"fundamental_analysis": "Earnings grew 12% year over year.",
			"sentiment_analysis":   "Sentiment is broadly positive.",
			"risk_assessment":      "Volatility remains elevated.",
			"investment_strategy":  "Accumulate on dips.",
			"model":                "multi-agent-v2",
			"timestamp":            "2026-03-01T10:30:00.123456",
			"agents_used":          []any{"market", "fundamental", "sentiment"},
		},
		"status": "success",
	}

	report := Normalize(payload)

	if got := report.Section(models.SectionSentimentSnapshot); got != "Sentiment is broadly positive." {
		t.Errorf("sentiment_analysis alias not mapped, got %q", got)
	}
	if got := report.Section(models.SectionStrategyNote); got != "Accumulate on dips." {
		t.Errorf("investment_strategy alias not mapped, got %q", got)
	}
	if report.Meta.Model != "multi-agent-v2" {
		t.Errorf("Meta.Model = %q", report.Meta.Model)
	}
	if len(report.Meta.AgentsUsed) != 3 {
		t.Errorf("Meta.AgentsUsed = %v", report.Meta.AgentsUsed)
	}

	want := time.Date(2026, 3, 1, 10, 30, 0, 123456000, time.UTC)
	if !report.Meta.GeneratedAt.Equal(want) {
		t.Errorf("Meta.GeneratedAt = %v, want %v", report.Meta.GeneratedAt, want)
	}
}

func TestNormalizeSectionsShape(t *testing.T) {
	payload := map[string]any{
		"sections": map[string]any{
			"market_analysis": "Range-bound trading.",
			"risk_assessment": "Low liquidity risk.",
		},
	}

	report := Normalize(payload)

	if got := report.Section(models.SectionMarketAnalysis); got != "Range-bound trading." {
		t.Errorf("market_analysis = %q", got)
	}
	if got := report.Section(models.SectionFundamentalAnalysis); got != models.SectionSentinel(models.SectionFundamentalAnalysis) {
		t.Errorf("missing section should be sentinel, got %q", got)
	}
}

func TestNormalizeTopLevelShape(t *testing.T) {
	payload := map[string]any{
		"market_analysis":    "Flat.",
		"sentiment_snapshot": "Neutral.",
	}

	report := Normalize(payload)

	if got := report.Section(models.SectionMarketAnalysis); got != "Flat." {
		t.Errorf("market_analysis = %q", got)
	}
	if got := report.Section(models.SectionSentimentSnapshot); got != "Neutral." {
		t.Errorf("sentiment_snapshot = %q", got)
	}
}

func TestNormalizeSequenceValues(t *testing.T) {
	payload := map[string]any{
		"prediction": map[string]any{
			"risk_assessment": []any{"Market risk is high.", "Liquidity is thin."},
		},
	}

	report := Normalize(payload)

	want := "Market risk is high.\n\nLiquidity is thin."
	if got := report.Section(models.SectionRiskAssessment); got != want {
		t.Errorf("sequence join = %q, want %q", got, want)
	}
}

// Normalization is total: every input yields exactly the five canonical keys.
func TestNormalizeTotality(t *testing.T) {
	payloads := []map[string]any{
		nil,
		{},
		{"garbage": 42},
		{"prediction": map[string]any{"unrelated": true}},
		{"sections": map[string]any{}},
		{"market_analysis": 3.14}, // wrong type
	}

	for _, payload := range payloads {
		report := Normalize(payload)

		if len(report.Sections) != len(models.SectionKeys) {
			t.Fatalf("payload %v: got %d sections, want %d", payload, len(report.Sections), len(models.SectionKeys))
		}
		for _, key := range models.SectionKeys {
			text, ok := report.Sections[key]
			if !ok || text == "" {
				t.Errorf("payload %v: section %q missing or empty", payload, key)
			}
		}
	}
}
