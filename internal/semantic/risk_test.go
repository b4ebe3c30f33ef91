package semantic

import (
	"reflect"
	"testing"
)

func TestSegmentRiskAssessmentNumbered(t *testing.T) {
	input := "1. Company-Specific Risks: management turnover. 2. Overall Risk Level: Moderate."

	got := SegmentRiskAssessment(input)

	if want := []string{"management turnover."}; !reflect.DeepEqual(got[RiskCompanySpecific], want) {
		t.Errorf("company-specific = %v, want %v", got[RiskCompanySpecific], want)
	}
	if want := []string{"Moderate."}; !reflect.DeepEqual(got[RiskOverall], want) {
		t.Errorf("overall = %v, want %v", got[RiskOverall], want)
	}
	for _, key := range []string{RiskMarket, RiskVolatility, RiskMacroeconomic, RiskLiquidity} {
		if len(got[key]) != 0 {
			t.Errorf("%s should be empty, got %v", key, got[key])
		}
	}
}

func TestSegmentRiskAssessmentStructured(t *testing.T) {
	input := "Market Risk:\nBroader market weakness could weigh on the stock.\n" +
		"Volatility:\nPrice swings have widened recently.\n" +
		"Portfolio Allocation:\nKeep position sizes small.\n" +
		"Overall Risk Level:\nHigh."

	got := SegmentRiskAssessment(input)

	if len(got[RiskMarket]) != 1 {
		t.Errorf("market = %v", got[RiskMarket])
	}
	if len(got[RiskVolatility]) != 1 {
		t.Errorf("volatility = %v", got[RiskVolatility])
	}
	if want := []string{"High."}; !reflect.DeepEqual(got[RiskOverall], want) {
		t.Errorf("overall = %v, want %v", got[RiskOverall], want)
	}

	// Portfolio-allocation content is suppressed entirely
	for key, lines := range got {
		for _, line := range lines {
			if line == "Keep position sizes small." {
				t.Errorf("portfolio content leaked into %s", key)
			}
		}
	}
}

func TestSegmentRiskAssessmentProse(t *testing.T) {
	input := "Competition in the sector is intensifying. " +
		"Inflation and interest rates remain a concern. " +
		"There is some execution risk around the new product line."

	got := SegmentRiskAssessment(input)

	if len(got[RiskMarket]) != 1 {
		t.Errorf("market = %v", got[RiskMarket])
	}
	if len(got[RiskMacroeconomic]) != 1 {
		t.Errorf("macroeconomic = %v", got[RiskMacroeconomic])
	}
	if len(got[RiskCompanySpecific]) != 1 {
		t.Errorf("company-specific = %v", got[RiskCompanySpecific])
	}
}

func TestSegmentRiskAssessmentProseRiskFallback(t *testing.T) {
	input := "Nothing here matches a keyword set. This sentence mentions risk without a category."

	got := SegmentRiskAssessment(input)

	if want := []string{"This sentence mentions risk without a category."}; !reflect.DeepEqual(got[RiskCompanySpecific], want) {
		t.Errorf("company-specific fallback = %v, want %v", got[RiskCompanySpecific], want)
	}
}

func TestSegmentRiskAssessmentStripsMarkdown(t *testing.T) {
	input := "1. **Volatility**: price swings are extreme."

	got := SegmentRiskAssessment(input)

	if want := []string{"price swings are extreme."}; !reflect.DeepEqual(got[RiskVolatility], want) {
		t.Errorf("volatility = %v, want %v", got[RiskVolatility], want)
	}
}

// The returned mapping always has exactly the six fixed keys.
func TestSegmentRiskAssessmentTotality(t *testing.T) {
	inputs := []string{
		"",
		"   ",
		"No risk content at all, nothing to see.",
		"1. Market Risk: something.",
		"Overall Risk Level: Low.",
		"*** ••• ***",
	}

	for _, input := range inputs {
		got := SegmentRiskAssessment(input)
		if len(got) != len(RiskSectionKeys) {
			t.Fatalf("input %q: got %d keys, want %d", input, len(got), len(RiskSectionKeys))
		}
		for _, key := range RiskSectionKeys {
			if _, ok := got[key]; !ok {
				t.Errorf("input %q: missing key %q", input, key)
			}
		}
	}
}
