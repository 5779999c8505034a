// Package invoice extracts line items, totals, payment terms, and related
// billing facts from invoice-style document text. It runs as a staged
// pipeline; each stage degrades independently so a malformed table never
// blocks payment-terms extraction.
package invoice

import (
	"regexp"
	"strings"

	"github.com/DexterHimZ/contract-intelligence-parser/internal/contract"
	"github.com/DexterHimZ/contract-intelligence-parser/internal/extract"
)

// moneyRe accepts both prefix-symbol ("$1,000.00") and suffix-code
// ("1,000.00 USD") money forms. Groups: 1 symbol, 2 prefix amount,
// 3 suffix amount, 4 currency code.
var moneyRe = regexp.MustCompile(`(?:([$€£₹¥])\s?(\d{1,3}(?:[, \x{00A0}]\d{3})*(?:\.\d{1,2})?)|(\d{1,3}(?:[, \x{00A0}]\d{3})*(?:\.\d{1,2})?)\s?(USD|EUR|GBP|INR|CAD))`)

var currencySymbols = map[string]string{
	"$": "USD",
	"€": "EUR",
	"£": "GBP",
	"₹": "INR",
	"¥": "JPY",
}

// splitMoney resolves a moneyRe submatch into its currency token and amount
// string. ok=false when the match carries neither complete form.
func splitMoney(m []string) (currency, amount string, ok bool) {
	if m[1] != "" && m[2] != "" {
		return m[1], m[2], true
	}
	if m[3] != "" && m[4] != "" {
		return m[4], m[3], true
	}
	return "", "", false
}

// currencyCode maps a symbol to its 3-letter code; codes pass through.
func currencyCode(token string) string {
	if code, ok := currencySymbols[token]; ok {
		return code
	}
	return token
}

// parseMoney wraps the shared money parser for this package's callers.
func parseMoney(s string) (float64, bool) {
	return extract.ParseMoney(s)
}

// findPage locates the page whose text contains the snippet. Falls back to
// page 1 when the snippet spans pages or was synthesized.
func findPage(snippet string, pages []contract.Page) int {
	for _, p := range pages {
		if snippet != "" && strings.Contains(p.Text, snippet) {
			return p.Number
		}
	}
	return 1
}
