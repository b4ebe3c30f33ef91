package semantic

import (
	"github.com/finsight/stockpulse/internal/models"
)

// ReportInsights is the derived view of one canonical report: the extracted
// recommendation, the computed confidence, and the segmented risk prose. All
// three are pure functions of the report text, recomputed on render rather
// than stored with the run.
type ReportInsights struct {
	Recommendation  Recommendation      `json:"recommendation"`
	Confidence      Confidence          `json:"confidence"`
	ConfidenceScore float64             `json:"confidence_score"`
	RiskSections    map[string][]string `json:"risk_sections"`
}

// AnalyzeReport derives insights from one canonical report. The
// recommendation is read from the strategy note, which is where the agents
// state their stance; directional language elsewhere in the report must not
// override it. Confidence scoring runs over the full report text and risk
// segmentation over the risk assessment section alone.
func AnalyzeReport(report *models.CanonicalReport) ReportInsights {
	text := report.FullText()

	stanceText := report.Section(models.SectionStrategyNote)
	if stanceText == models.SectionSentinel(models.SectionStrategyNote) {
		stanceText = text
	}
	rec := ClassifyRecommendation(stanceText)

	riskText := report.Section(models.SectionRiskAssessment)
	if riskText == models.SectionSentinel(models.SectionRiskAssessment) {
		riskText = ""
	}

	return ReportInsights{
		Recommendation:  rec,
		Confidence:      ClassifyConfidence(text, rec, report),
		ConfidenceScore: ConfidenceScore(text, rec, report),
		RiskSections:    SegmentRiskAssessment(riskText),
	}
}
