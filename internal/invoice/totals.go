package invoice

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/DexterHimZ/contract-intelligence-parser/internal/contract"
)

// moneyWindow is how far past a total keyword the amount may sit.
const moneyWindow = 120

const (
	computedTotalConfidence = 0.8
	mirroredValueConfidence = 0.9
	subtotalConfidence      = 0.8
)

// Keyword alternatives in priority order; first one with an amount wins.
var totalKeywordRes = []struct {
	re         *regexp.Regexp
	confidence float64
}{
	{regexp.MustCompile(`(?im)total\s+due\s*(?:\([^)]+\))?\s*:`), 0.95},
	{regexp.MustCompile(`(?im)amount\s+due\s*:`), 0.9},
	{regexp.MustCompile(`(?im)grand\s*total\s*:`), 0.9},
	{regexp.MustCompile(`(?im)total\s*:`), 0.85}, // "subtotal:" hits filtered below
}

var (
	contractValueKeyRe = regexp.MustCompile(`(?im)contract\s+value\s*:`)
	subtotalKeyRe      = regexp.MustCompile(`(?im)subtotal\s*:`)
)

// ExtractTotals resolves the document's total amount, explicit contract
// value, and subtotal. The total comes from the highest-priority keyword
// with a money amount within 120 chars, else from summing the line items.
// When a total exists but no explicit contract value does, the total is
// mirrored into contract_value/currency, which is the standing treatment
// for one-time agreements.
func ExtractTotals(fullText string, pages []contract.Page) map[string]contract.Field {
	fields := map[string]contract.Field{}

	var (
		totalAmount   float64
		totalFound    bool
		totalCurrency string
		totalEvidence contract.Evidence
	)

	for _, kw := range totalKeywordRes {
		loc := findKeyword(kw.re, fullText)
		if loc == nil || totalFound {
			continue
		}
		amount, currency, moneyText, ok := moneyAfter(fullText, loc[1])
		if !ok {
			continue
		}
		totalAmount = amount
		totalFound = true
		totalCurrency = currency
		keyword := fullText[loc[0]:loc[1]]
		totalEvidence = contract.Evidence{
			Page:    findPage(keyword, pages),
			Snippet: clipSnippet(keyword + " " + moneyText),
			Source:  contract.SourceRule,
		}
		fields["total_amount"] = contract.Field{
			Value:      contract.NumberValue(totalAmount),
			Confidence: kw.confidence,
			Evidence:   totalEvidence,
		}
		fields["total_amount_currency"] = contract.Field{
			Value:      contract.StringValue(totalCurrency),
			Confidence: kw.confidence,
			Evidence:   totalEvidence,
		}
		break
	}

	var contractValueFound bool
	if loc := contractValueKeyRe.FindStringIndex(fullText); loc != nil {
		if amount, currency, moneyText, ok := moneyAfter(fullText, loc[1]); ok {
			contractValueFound = true
			keyword := fullText[loc[0]:loc[1]]
			ev := contract.Evidence{
				Page:    findPage(keyword, pages),
				Snippet: clipSnippet(keyword + " " + moneyText),
				Source:  contract.SourceRule,
			}
			fields["contract_value_total"] = contract.Field{
				Value:      contract.NumberValue(amount),
				Confidence: mirroredValueConfidence,
				Evidence:   ev,
			}
			fields["contract_value_total_currency"] = contract.Field{
				Value:      contract.StringValue(currency),
				Confidence: mirroredValueConfidence,
				Evidence:   ev,
			}
		}
	}

	if !totalFound {
		if sum, currency, ok := sumLineItems(fullText, pages); ok {
			totalAmount = math.Round(sum*100) / 100
			totalFound = true
			totalCurrency = currency
			if totalCurrency == "" {
				totalCurrency = "USD"
			}
			fields["total_amount"] = contract.Field{
				Value:      contract.NumberValue(totalAmount),
				Confidence: computedTotalConfidence,
				Evidence: contract.Evidence{
					Page: 1, Snippet: "computed from line items", Source: contract.SourceRule,
				},
			}
			fields["total_amount_currency"] = contract.Field{
				Value:      contract.StringValue(totalCurrency),
				Confidence: computedTotalConfidence,
				Evidence: contract.Evidence{
					Page: 1, Snippet: "inferred from line items", Source: contract.SourceRule,
				},
			}
		}
	}

	if totalFound && !contractValueFound {
		page := 1
		if totalEvidence.Page > 0 {
			page = totalEvidence.Page
		}
		fields["contract_value"] = contract.Field{
			Value:      contract.NumberValue(totalAmount),
			Confidence: mirroredValueConfidence,
			Evidence: contract.Evidence{
				Page: page, Snippet: "derived from total amount for one-time contract", Source: contract.SourceRule,
			},
		}
		fields["currency"] = contract.Field{
			Value:      contract.StringValue(totalCurrency),
			Confidence: mirroredValueConfidence,
			Evidence: contract.Evidence{
				Page: page, Snippet: "derived from total currency for one-time contract", Source: contract.SourceRule,
			},
		}
	}

	if totalFound {
		conf := mirroredValueConfidence
		if f, ok := fields["total_amount"]; ok {
			conf = f.Confidence
		}
		dueEvidence := totalEvidence
		if dueEvidence.Snippet == "" {
			dueEvidence = contract.Evidence{Page: 1, Snippet: "total due amount extracted", Source: contract.SourceRule}
		}
		fields["total_due_amount"] = contract.Field{
			Value: contract.NumberValue(totalAmount), Confidence: conf, Evidence: dueEvidence,
		}

		curConf := mirroredValueConfidence
		if f, ok := fields["total_amount_currency"]; ok {
			curConf = f.Confidence
		}
		fields["total_due_currency"] = contract.Field{
			Value: contract.StringValue(totalCurrency), Confidence: curConf, Evidence: dueEvidence,
		}
	}

	if loc := subtotalKeyRe.FindStringIndex(fullText); loc != nil {
		if amount, _, moneyText, ok := moneyAfter(fullText, loc[1]); ok {
			keyword := fullText[loc[0]:loc[1]]
			fields["subtotal"] = contract.Field{
				Value:      contract.NumberValue(amount),
				Confidence: subtotalConfidence,
				Evidence: contract.Evidence{
					Page:    findPage(keyword, pages),
					Snippet: clipSnippet(keyword + " " + moneyText),
					Source:  contract.SourceRule,
				},
			}
		}
	}

	return ValidateTotals(fields)
}

// findKeyword returns the first match location, skipping "total:" hits that
// are really the tail of "subtotal:".
func findKeyword(re *regexp.Regexp, text string) []int {
	for _, loc := range re.FindAllStringIndex(text, -1) {
		if strings.HasPrefix(strings.ToLower(text[loc[0]:]), "total") &&
			loc[0] >= 3 && strings.EqualFold(text[loc[0]-3:loc[0]], "sub") {
			continue
		}
		return loc
	}
	return nil
}

// moneyAfter scans the window following a keyword for a money amount.
func moneyAfter(text string, from int) (amount float64, currency, matched string, ok bool) {
	end := from + moneyWindow
	if end > len(text) {
		end = len(text)
	}
	m := moneyRe.FindStringSubmatch(text[from:end])
	if m == nil {
		return 0, "", "", false
	}
	token, amountStr, ok := splitMoney(m)
	if !ok {
		return 0, "", "", false
	}
	amount, ok = parseMoney(amountStr)
	if !ok {
		return 0, "", "", false
	}
	return amount, currencyCode(token), m[0], true
}

// sumLineItems re-runs line item extraction and sums validated rows,
// preferring each row's total over quantity times price. The currency is
// taken from the first row that names one.
func sumLineItems(fullText string, pages []contract.Page) (float64, string, bool) {
	items, _, ok := ExtractLineItems(fullText, pages)
	if !ok {
		return 0, "", false
	}
	items = ValidateLineItems(items)

	var sum float64
	var currency string
	for _, item := range items {
		switch {
		case item.LineTotal > 0:
			sum += item.LineTotal
		case item.Quantity != "" && item.UnitPrice > 0:
			qty, err := strconv.ParseFloat(item.Quantity, 64)
			if err != nil {
				continue
			}
			sum += qty * item.UnitPrice
		default:
			continue
		}
		if currency == "" && item.Currency != "" {
			currency = item.Currency
		}
	}
	if sum <= 0 {
		return 0, "", false
	}
	return sum, currency, true
}

// ValidateTotals drops numeric totals outside [1, 1e8]; non-numeric fields
// such as currency codes pass through.
func ValidateTotals(fields map[string]contract.Field) map[string]contract.Field {
	validated := map[string]contract.Field{}
	for name, field := range fields {
		if amount, isNumber := field.Value.Number(); isNumber {
			if amount < 1 || amount > 100_000_000 {
				continue
			}
		}
		validated[name] = field
	}
	return validated
}

// clipSnippet caps a snippet at the evidence limit, cutting on a rune
// boundary so multibyte currency symbols survive intact.
func clipSnippet(s string) string {
	if len(s) <= contract.MaxSnippetLength {
		return s
	}
	cut := contract.MaxSnippetLength
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
