package invoice

import (
	"github.com/DexterHimZ/contract-intelligence-parser/internal/contract"
)

const additionalFieldsConfidence = 0.8

// coreFields are invoice outputs that land directly in the main schema.
// Everything else the pipeline produces is folded under additional_fields.
var coreFields = map[string]bool{
	"line_items":       true,
	"total_amount":     true,
	"payment_net_days": true,
	"payment_methods":  true,
	"payment_terms":    true,
	"contract_value":   true,
	"currency":         true,
}

// Merge combines standard rule extraction with invoice pipeline output
// under a fixed precedence:
//
//  1. standard extraction wins for any field both paths produced;
//  2. invoice core fields fill the remaining slots, so invoice totals
//     reach contract_value/currency only when the catalog found neither;
//  3. total_due_amount, when present, overrides total_amount outright
//     since it is the most explicit statement of what is owed;
//  4. invoice-only extras are folded under a single additional_fields
//     entry instead of widening the schema.
func Merge(std, inv map[string]contract.Field) map[string]contract.Field {
	merged := make(map[string]contract.Field, len(std)+len(inv))
	for name, field := range std {
		merged[name] = field
	}

	extras := map[string]contract.Field{}
	for name, field := range inv {
		if !coreFields[name] {
			extras[name] = field
			continue
		}
		if _, taken := merged[name]; !taken {
			merged[name] = field
		}
	}

	if due, ok := inv["total_due_amount"]; ok {
		merged["total_amount"] = due
	}

	if len(extras) > 0 {
		merged["additional_fields"] = contract.Field{
			Value:      contract.MapValue(extras),
			Confidence: additionalFieldsConfidence,
			Evidence: contract.Evidence{
				Page:    1,
				Snippet: "supplementary invoice fields",
				Source:  contract.SourceRule,
			},
		}
	}
	return merged
}
