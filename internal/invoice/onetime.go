package invoice

import (
	"regexp"

	"github.com/DexterHimZ/contract-intelligence-parser/internal/contract"
)

const notApplicableConfidence = 0.95

// Fields that have no meaning for a single-transaction agreement.
var recurringOnlyFields = []string{
	"auto_renewal",
	"renewal_term",
	"notice_period",
	"termination_date",
	"billing_frequency",
}

var oneTimeIndicatorRes = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bone[-\s]?time\b`),
	regexp.MustCompile(`(?i)total\s+due\s*\(\s*one[-\s]?time\s*\)`),
	regexp.MustCompile(`(?im)(?:setup|migration|training)[^\n]*(?:[$€£₹¥]\s?\d|\d{1,3}(?:,\d{3})*(?:\.\d{2})?\s?(?:USD|EUR|GBP|INR|CAD))`),
}

// DetectOneTime reports whether the text reads like a one-time invoice
// rather than a recurring agreement: explicit one-time wording, or
// setup/migration/training charges with amounts attached.
func DetectOneTime(fullText string) bool {
	for _, re := range oneTimeIndicatorRes {
		if re.MatchString(fullText) {
			return true
		}
	}
	return false
}

// MarkOneTime fills recurring-only fields with "N/A" so downstream gap
// analysis does not penalize their absence on one-time agreements. Fields
// already present are left alone.
func MarkOneTime(fields map[string]contract.Field) {
	for _, name := range recurringOnlyFields {
		if _, ok := fields[name]; ok {
			continue
		}
		fields[name] = contract.Field{
			Value:      contract.StringValue(contract.NotApplicable),
			Confidence: notApplicableConfidence,
			Evidence: contract.Evidence{
				Page:    1,
				Snippet: "marked not applicable for one-time agreement",
				Source:  contract.SourceDerived,
			},
		}
	}
}
