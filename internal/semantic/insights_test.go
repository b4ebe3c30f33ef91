package semantic

import (
	"testing"

	"github.com/finsight/stockpulse/internal/models"
)

func reportWithSections(sections map[string]string) *models.CanonicalReport {
	full := make(map[string]string, len(models.SectionKeys))
	for _, key := range models.SectionKeys {
		if text, ok := sections[key]; ok {
			full[key] = text
		} else {
			full[key] = models.SectionSentinel(key)
		}
	}
	return &models.CanonicalReport{Sections: full}
}

func TestAnalyzeReportStanceFromStrategyNote(t *testing.T) {
	// Directional language in other sections must not override the stance
	// stated in the strategy note
	report := reportWithSections(map[string]string{
		models.SectionMarketAnalysis: "Bearish pressure is building across the sector.",
		models.SectionStrategyNote:   "Maintain current positions.",
	})

	insights := AnalyzeReport(report)
	if insights.Recommendation != RecHold {
		t.Errorf("recommendation = %s, want %s from the strategy note", insights.Recommendation, RecHold)
	}
}

func TestAnalyzeReportStanceFallsBackToFullText(t *testing.T) {
	// With no strategy note, the stance is read from the rest of the report
	report := reportWithSections(map[string]string{
		models.SectionMarketAnalysis: "Recommendation: SELL\nMomentum has broken down.",
	})

	insights := AnalyzeReport(report)
	if insights.Recommendation != RecSell {
		t.Errorf("recommendation = %s, want %s from the full text", insights.Recommendation, RecSell)
	}
}

func TestAnalyzeReportExplicitStrategyLine(t *testing.T) {
	report := reportWithSections(map[string]string{
		models.SectionMarketAnalysis: "Sentiment is bullish on strong earnings.",
		models.SectionStrategyNote:   "Recommendation: SELL\nTake profits into strength.",
	})

	insights := AnalyzeReport(report)
	if insights.Recommendation != RecSell {
		t.Errorf("recommendation = %s, want %s", insights.Recommendation, RecSell)
	}
}

func TestAnalyzeReportRiskFromRiskSectionOnly(t *testing.T) {
	report := reportWithSections(map[string]string{
		models.SectionRiskAssessment: "Overall Risk Level:\nHigh.",
		models.SectionStrategyNote:   "Hold.",
	})

	insights := AnalyzeReport(report)
	if got := insights.RiskSections[RiskOverall]; len(got) != 1 || got[0] != "High." {
		t.Errorf("overall risk = %v, want [High.]", got)
	}
}

func TestAnalyzeReportEmptyReport(t *testing.T) {
	insights := AnalyzeReport(reportWithSections(nil))

	if insights.Recommendation != RecHold {
		t.Errorf("recommendation = %s, want the %s default", insights.Recommendation, RecHold)
	}
	if insights.ConfidenceScore < 0 || insights.ConfidenceScore > 100 {
		t.Errorf("confidence score %v out of range", insights.ConfidenceScore)
	}
	for key, sentences := range insights.RiskSections {
		if len(sentences) != 0 {
			t.Errorf("risk bucket %s not empty for a sentinel report: %v", key, sentences)
		}
	}
}
