package semantic

import (
	"regexp"
	"strings"
)

// Fixed risk section keys, in assignment priority order
const (
	RiskCompanySpecific = "company-specific"
	RiskMarket          = "market"
	RiskVolatility      = "volatility"
	RiskMacroeconomic   = "macroeconomic"
	RiskLiquidity       = "liquidity"
	RiskOverall         = "overall"
)

// RiskSectionKeys lists the six fixed output keys
var RiskSectionKeys = []string{
	RiskCompanySpecific,
	RiskMarket,
	RiskVolatility,
	RiskMacroeconomic,
	RiskLiquidity,
	RiskOverall,
}

var (
	numberedHeader  = regexp.MustCompile(`^\d+\.\s+`)
	numberedElement = regexp.MustCompile(`\s+(\d+\.\s+\S)`)
	overallLevel    = regexp.MustCompile(`(?i)overall\s+risk\s+level:`)
	standaloneLevel = regexp.MustCompile(`(?i)^(very\s+)?(low|moderate|medium|high|elevated)\.?$`)
	portfolioLine   = regexp.MustCompile(`(?i)\bportfolio\b|\ballocation\b`)
	riskWord        = regexp.MustCompile(`(?i)\brisk`)
	overallRiskWord = regexp.MustCompile(`(?i)\boverall\s+risk\b`)
	markdownChars   = strings.NewReplacer("*", "", "•", "", "●", "", "▪", "")
)

// SegmentRiskAssessment splits risk-assessment prose into the six fixed
// sections. The result always contains exactly the six keys; sections with no
// matching content map to empty slices. Markdown asterisks and bullet
// characters are stripped before segmentation.
func SegmentRiskAssessment(text string) map[string][]string {
	sections := make(map[string][]string, len(RiskSectionKeys))
	for _, key := range RiskSectionKeys {
		sections[key] = []string{}
	}

	cleaned := strings.TrimSpace(markdownChars.Replace(text))
	if cleaned == "" {
		return sections
	}

	// Numbered headers can arrive run together on one line; break them apart
	// before deciding whether the text is structured
	cleaned = numberedElement.ReplaceAllString(cleaned, "\n$1")

	if isStructured(cleaned) {
		segmentStructured(cleaned, sections)
	} else {
		segmentProse(cleaned, sections)
	}

	return sections
}

// isStructured detects pre-sectioned text: numbered headers or an explicit
// overall risk level line
func isStructured(text string) bool {
	if overallLevel.MatchString(text) {
		return true
	}
	for _, line := range strings.Split(text, "\n") {
		if numberedHeader.MatchString(strings.TrimSpace(line)) {
			return true
		}
	}
	return false
}

// segmentStructured walks structured text line by line. Header lines open a
// section; following lines accumulate as its paragraphs. Portfolio-allocation
// sections are suppressed entirely.
func segmentStructured(text string, sections map[string][]string) {
	current := ""
	suppressed := false

	for i, rawLine := range strings.Split(text, "\n") {
		line := strings.TrimSpace(rawLine)
		if line == "" {
			continue
		}

		if key, remainder, ok := matchHeader(line); ok {
			current = key
			suppressed = false
			if remainder != "" {
				sections[current] = append(sections[current], remainder)
			}
			continue
		}

		if isPortfolioHeader(line) {
			current = ""
			suppressed = true
			continue
		}

		// A bare risk-level word after the first line belongs to overall
		if i > 0 && standaloneLevel.MatchString(line) {
			sections[RiskOverall] = append(sections[RiskOverall], line)
			continue
		}

		if suppressed || portfolioLine.MatchString(line) {
			continue
		}
		if current != "" {
			sections[current] = append(sections[current], line)
		}
	}
}

// matchHeader tests whether a line is a section header and returns the
// section key plus any content trailing the header on the same line.
// Recognized forms: "keyword: ...", "N. keyword ...", or a short line
// containing a section keyword.
func matchHeader(line string) (key, remainder string, ok bool) {
	headerPart := line
	trailing := ""
	if idx := strings.Index(line, ":"); idx >= 0 {
		headerPart = line[:idx]
		trailing = strings.TrimSpace(line[idx+1:])
	}

	numbered := numberedHeader.MatchString(line)
	hasColon := strings.Contains(line, ":")
	shortLine := len(line) < 60 && !strings.ContainsAny(line, ".!?") // bare heading without prose

	if !numbered && !hasColon && !shortLine {
		return "", "", false
	}
	if isPortfolioHeader(headerPart) {
		return "", "", false
	}

	for _, section := range lex.riskSections {
		if section.keywords.matches(headerPart) {
			return section.key, trailing, true
		}
	}
	return "", "", false
}

func isPortfolioHeader(line string) bool {
	return portfolioLine.MatchString(line) && (strings.Contains(line, ":") || numberedHeader.MatchString(line))
}

// segmentProse handles unstructured prose: each sentence is assigned to the
// first section whose keyword set it matches; unmatched sentences that still
// talk about risk default to company-specific.
func segmentProse(text string, sections map[string][]string) {
	for i, sentence := range splitSentences(text) {
		if portfolioLine.MatchString(sentence) {
			continue
		}

		if i > 0 && standaloneLevel.MatchString(sentence) {
			sections[RiskOverall] = append(sections[RiskOverall], sentence)
			continue
		}

		assigned := false
		for _, section := range lex.riskSections {
			if section.keywords.matches(sentence) {
				sections[section.key] = append(sections[section.key], sentence)
				assigned = true
				break
			}
		}
		if assigned {
			continue
		}

		if riskWord.MatchString(sentence) && !overallRiskWord.MatchString(sentence) {
			sections[RiskCompanySpecific] = append(sections[RiskCompanySpecific], sentence)
		}
	}
}

// splitSentences breaks prose on sentence-final punctuation followed by
// whitespace, keeping the punctuation with its sentence
func splitSentences(text string) []string {
	var out []string
	start := 0
	runes := []rune(text)

	for i := 0; i < len(runes); i++ {
		switch runes[i] {
		case '.', '!', '?':
			if i+1 >= len(runes) || runes[i+1] == ' ' || runes[i+1] == '\n' || runes[i+1] == '\t' {
				sentence := strings.TrimSpace(string(runes[start : i+1]))
				if sentence != "" {
					out = append(out, sentence)
				}
				start = i + 1
			}
		}
	}

	if tail := strings.TrimSpace(string(runes[start:])); tail != "" {
		out = append(out, tail)
	}
	return out
}
