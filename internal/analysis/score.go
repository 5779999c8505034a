package analysis

import (
	"github.com/DexterHimZ/contract-intelligence-parser/internal/contract"
)

const (
	presenceWeight   = 0.6
	confidenceWeight = 0.4

	completenessBonus  = 10.0
	highGapPenalty     = 5.0
	mediumGapPenalty   = 2.0
	confidentThreshold = 0.6
)

type scoreCategory struct {
	maxPoints float64
	fields    []string
}

// Weighted completeness categories. late_fee_percentage lives under
// additional_fields when present, so the payment category counts it absent.
var scoreCategories = []scoreCategory{
	{30, []string{"contract_value", "total_amount", "currency", "payment_terms", "billing_frequency", "line_items"}},
	{25, []string{"party_1_name", "party_2_name"}},
	{20, []string{"payment_terms", "payment_net_days", "payment_methods", "late_fee_percentage", "billing_frequency", "notice_period"}},
	{15, []string{"sla_uptime", "support_hours", "liability_cap"}},
}

// Score converts the field map, gaps, and confidence summary into a 0-100
// completeness score: four weighted categories scored on presence and
// confidence, a general completeness bonus, then per-gap penalties.
func Score(fields map[string]contract.Field, gaps []contract.Gap, summary contract.ConfidenceSummary) float64 {
	var score float64
	for _, cat := range scoreCategories {
		score += categoryScore(fields, cat)
	}

	if summary.TotalFields > 0 {
		denom := float64(len(RequiredFields) + len(ImportantFields))
		ratio := float64(summary.HighConfidenceFields) / denom
		if ratio > 1 {
			ratio = 1
		}
		score += completenessBonus * ratio
	}

	for _, gap := range gaps {
		switch gap.Severity {
		case contract.SeverityHigh:
			score -= highGapPenalty
		case contract.SeverityMedium:
			score -= mediumGapPenalty
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

func categoryScore(fields map[string]contract.Field, cat scoreCategory) float64 {
	if len(cat.fields) == 0 {
		return 0
	}

	var present, confident int
	for _, name := range cat.fields {
		field, ok := fields[name]
		if !ok {
			continue
		}
		present++
		if field.Confidence >= confidentThreshold {
			confident++
		}
	}

	total := float64(len(cat.fields))
	ratio := presenceWeight*(float64(present)/total) + confidenceWeight*(float64(confident)/total)
	return cat.maxPoints * ratio
}
