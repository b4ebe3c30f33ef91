// Package semantic extracts structure from free-form analyst prose: a
// BUY/HOLD/SELL recommendation, a High/Medium/Low confidence level, and a
// sectioned breakdown of risk-assessment text. All functions are pure and
// synchronous; the pattern tables live in lexicons.yaml.
package semantic

import (
	_ "embed"
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed lexicons.yaml
var lexiconData []byte

type confidenceLexicon struct {
	StrongPositive   []string `yaml:"strong_positive"`
	ModeratePositive []string `yaml:"moderate_positive"`
	StrongNegative   []string `yaml:"strong_negative"`
	ModerateNegative []string `yaml:"moderate_negative"`
	HighCertainty    []string `yaml:"high_certainty"`
	LowCertainty     []string `yaml:"low_certainty"`
}

type recommendationLexicon struct {
	StrongBuy  []string `yaml:"strong_buy"`
	Buy        []string `yaml:"buy"`
	StrongSell []string `yaml:"strong_sell"`
	Sell       []string `yaml:"sell"`
	Hold       []string `yaml:"hold"`
	Negators   []string `yaml:"negators"`
}

type consensusLexicon struct {
	Buy  []string `yaml:"buy"`
	Sell []string `yaml:"sell"`
	Hold []string `yaml:"hold"`
}

type riskSectionDef struct {
	Key      string   `yaml:"key"`
	Keywords []string `yaml:"keywords"`
}

type lexicon struct {
	Confidence     confidenceLexicon     `yaml:"confidence"`
	Recommendation recommendationLexicon `yaml:"recommendation"`
	Consensus      consensusLexicon      `yaml:"consensus"`
	RiskSections   []riskSectionDef      `yaml:"risk_sections"`
}

// patternGroup is a compiled set of lexicon patterns
type patternGroup struct {
	patterns []*regexp.Regexp
}

// compileGroup builds case-insensitive word-bounded matchers for a pattern set
func compileGroup(patterns []string) patternGroup {
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		escaped := regexp.QuoteMeta(strings.ToLower(p))
		escaped = strings.ReplaceAll(escaped, ` `, `\s+`)
		compiled = append(compiled, regexp.MustCompile(`(?i)\b`+escaped+`\b`))
	}
	return patternGroup{patterns: compiled}
}

// count returns the total number of occurrences of any pattern in the group
func (g patternGroup) count(text string) int {
	total := 0
	for _, re := range g.patterns {
		total += len(re.FindAllStringIndex(text, -1))
	}
	return total
}

// matches reports whether any pattern occurs in the text
func (g patternGroup) matches(text string) bool {
	for _, re := range g.patterns {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

// indexes returns the start offsets of all pattern occurrences
func (g patternGroup) indexes(text string) []int {
	var out []int
	for _, re := range g.patterns {
		for _, loc := range re.FindAllStringIndex(text, -1) {
			out = append(out, loc[0])
		}
	}
	return out
}

// compiled lexicon, loaded once at init
var lex = mustLoadLexicon()

func mustLoadLexicon() *compiledLexicon {
	var raw lexicon
	if err := yaml.Unmarshal(lexiconData, &raw); err != nil {
		panic(fmt.Sprintf("semantic: invalid lexicons.yaml: %v", err))
	}

	c := &compiledLexicon{
		strongPositive:   compileGroup(raw.Confidence.StrongPositive),
		moderatePositive: compileGroup(raw.Confidence.ModeratePositive),
		strongNegative:   compileGroup(raw.Confidence.StrongNegative),
		moderateNegative: compileGroup(raw.Confidence.ModerateNegative),
		highCertainty:    compileGroup(raw.Confidence.HighCertainty),
		lowCertainty:     compileGroup(raw.Confidence.LowCertainty),

		strongBuy:  compileGroup(raw.Recommendation.StrongBuy),
		buy:        compileGroup(raw.Recommendation.Buy),
		strongSell: compileGroup(raw.Recommendation.StrongSell),
		sell:       compileGroup(raw.Recommendation.Sell),
		hold:       compileGroup(raw.Recommendation.Hold),
		negators:   compileGroup(raw.Recommendation.Negators),

		consensusBuy:  compileGroup(raw.Consensus.Buy),
		consensusSell: compileGroup(raw.Consensus.Sell),
		consensusHold: compileGroup(raw.Consensus.Hold),
	}

	for _, def := range raw.RiskSections {
		c.riskSections = append(c.riskSections, riskSection{
			key:      def.Key,
			keywords: compileGroup(def.Keywords),
		})
	}

	return c
}

type riskSection struct {
	key      string
	keywords patternGroup
}

type compiledLexicon struct {
	strongPositive   patternGroup
	moderatePositive patternGroup
	strongNegative   patternGroup
	moderateNegative patternGroup
	highCertainty    patternGroup
	lowCertainty     patternGroup

	strongBuy  patternGroup
	buy        patternGroup
	strongSell patternGroup
	sell       patternGroup
	hold       patternGroup
	negators   patternGroup

	consensusBuy  patternGroup
	consensusSell patternGroup
	consensusHold patternGroup

	riskSections []riskSection
}
