// Package analysis derives quality signals from a final field map:
// confidence statistics, gaps against the required/important field lists,
// and the overall completeness score.
package analysis

import (
	"github.com/DexterHimZ/contract-intelligence-parser/internal/contract"
)

const (
	lowConfidenceThreshold = 0.6
	derivedThreshold       = 0.7
)

// RequiredFields must be present on every well-formed agreement.
var RequiredFields = []string{
	"party_1_name", "party_2_name", "effective_date",
	"contract_value", "payment_terms",
}

// ImportantFields are expected but their absence is survivable.
var ImportantFields = []string{
	"termination_date", "governing_law", "auto_renewal",
	"notice_period", "liability_cap", "line_items", "total_amount",
	"payment_net_days", "payment_methods",
}

// Summarize computes confidence statistics across the field map.
func Summarize(fields map[string]contract.Field) contract.ConfidenceSummary {
	if len(fields) == 0 {
		return contract.ConfidenceSummary{}
	}

	var sum float64
	var low, high int
	for _, f := range fields {
		sum += f.Confidence
		if f.Confidence < lowConfidenceThreshold {
			low++
		} else {
			high++
		}
	}
	return contract.ConfidenceSummary{
		Average:              sum / float64(len(fields)),
		LowCount:             low,
		HighConfidenceFields: high,
		TotalFields:          len(fields),
	}
}

// FindGaps flags required and important fields that are absent or below
// their confidence threshold. Fields marked "N/A" are deliberate
// non-values and are never flagged. Derived values must clear a higher
// threshold before being trusted.
func FindGaps(fields map[string]contract.Field) []contract.Gap {
	gaps := checkList(fields, RequiredFields, contract.SeverityHigh)
	return append(gaps, checkList(fields, ImportantFields, contract.SeverityMedium)...)
}

func checkList(fields map[string]contract.Field, names []string, severity contract.GapSeverity) []contract.Gap {
	var gaps []contract.Gap
	for _, name := range names {
		field, ok := fields[name]
		if !ok {
			gaps = append(gaps, contract.Gap{
				Field: name, Reason: contract.GapMissing, Severity: severity,
			})
			continue
		}
		if field.Value.IsNotApplicable() {
			continue
		}
		threshold := lowConfidenceThreshold
		if field.Evidence.Source == contract.SourceDerived {
			threshold = derivedThreshold
		}
		if field.Confidence < threshold {
			gaps = append(gaps, contract.Gap{
				Field: name, Reason: contract.GapLowConfidence, Severity: severity,
			})
		}
	}
	return gaps
}
