// Package scorer reduces a set of findings to a 0-100 compliance score.
package scorer

import "github.com/drishyascan/a11y-scanner/internal/db"

// Deduction per finding by severity. Fixed by the scoring model, not
// configurable.
const (
	HighWeight   = 5.0
	MediumWeight = 2.0
	LowWeight    = 0.5
)

// Score computes the weighted compliance score for a finding set. The result
// depends only on the severity counts, so it is deterministic, idempotent,
// and order-independent. An empty set scores exactly 100.
func Score(findings []db.Finding) float64 {
	score := 100.0
	for _, f := range findings {
		switch f.Severity {
		case db.SeverityHigh:
			score -= HighWeight
		case db.SeverityMedium:
			score -= MediumWeight
		case db.SeverityLow:
			score -= LowWeight
		}
	}

	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
