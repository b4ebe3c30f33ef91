package models

// RankingEntry is one row of a comparison ranking, best first
type RankingEntry struct {
	Rank   int    `json:"rank"`
	Symbol string `json:"symbol"`
	Reason string `json:"reason"` // May be empty when the backend supplies no justification
}

// ComparisonResult is the outcome of a compare-mode run. The per-ticker
// reports live in the owning run's Results map; this block carries only the
// cross-ticker verdict.
type ComparisonResult struct {
	Winner            string         `json:"winner"`
	Ranking           []RankingEntry `json:"ranking"`
	ComparisonSummary string         `json:"comparison_summary"`
}
