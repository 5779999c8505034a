package invoice

import (
	"regexp"
	"strings"

	"github.com/DexterHimZ/contract-intelligence-parser/internal/contract"
)

var paymentMethodLineRe = regexp.MustCompile(`(?im)payment\s+method\s*:\s*([^.\n]+)`)

// Keyword order matters: "wire transfer" must be checked before the bare
// "wire" so the canonical name is added once.
var methodKeywords = []struct {
	keyword   string
	canonical string
}{
	{"wire transfer", "Wire Transfer"},
	{"wire", "Wire Transfer"},
	{"ach", "ACH"},
	{"credit card", "Credit Card"},
	{"bank transfer", "Bank Transfer"},
	{"check", "Check"},
	{"cash", "Cash"},
}

// ExtractPaymentMethods reads the "Payment Method:" line and maps its
// contents onto the canonical method names.
func ExtractPaymentMethods(fullText string, pages []contract.Page) map[string]contract.Field {
	m := paymentMethodLineRe.FindStringSubmatch(fullText)
	if m == nil {
		return nil
	}

	lower := strings.ToLower(strings.TrimSpace(m[1]))
	var methods []string
	for _, mk := range methodKeywords {
		if strings.Contains(lower, mk.keyword) && !containsString(methods, mk.canonical) {
			methods = append(methods, mk.canonical)
		}
	}
	if len(methods) == 0 {
		return nil
	}

	return map[string]contract.Field{
		"payment_methods": {
			Value:      contract.ListValue(methods),
			Confidence: 0.9,
			Evidence: contract.Evidence{
				Page:    findPage(m[0], pages),
				Snippet: clipSnippet(m[0]),
				Source:  contract.SourceRule,
			},
		},
	}
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
