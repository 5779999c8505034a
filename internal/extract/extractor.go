package extract

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/DexterHimZ/contract-intelligence-parser/internal/contract"
)

const (
	contractValueRule = "contract_value"

	annualTotalConfidence  = 0.9
	genericValueConfidence = 0.85
	exactMatchBoost        = 0.1
	snippetContext         = 50
)

// finalValueRe recovers the computed total from composite statements like
// "Annual Contract Value: $10,000 + $2,000 = $12,000".
var finalValueRe = regexp.MustCompile(`=\s*\$?([\d,]+(?:\.\d{2})?)`)

// Match is a successful rule application against a page of text.
type Match struct {
	Value      contract.FieldValue
	Confidence float64
	Snippet    string
}

// ExtractField runs a rule against text. Alternatives are tried in order
// and the first match that survives its transform wins; a transform that
// rejects its match leaves the scan running. ok=false means no alternative
// produced a value anywhere in the text.
func ExtractField(text string, rule Rule) (Match, bool) {
	for _, re := range rule.compiled {
		for _, loc := range re.FindAllSubmatchIndex([]byte(text), -1) {
			whole := text[loc[0]:loc[1]]
			raw := whole
			if len(loc) > 2 {
				if loc[2] < 0 {
					continue
				}
				raw = text[loc[2]:loc[3]]
			}

			value, ok := applyTransform(rule.Transform, raw)
			if !ok {
				continue
			}

			confidence := rule.BaseConfidence
			if rule.Name == contractValueRule {
				value, confidence = adjustContractValue(value, whole)
			}
			if strings.TrimSpace(whole) == valueString(value) {
				confidence += exactMatchBoost
			}
			if confidence > 1.0 {
				confidence = 1.0
			}

			return Match{
				Value:      value,
				Confidence: confidence,
				Snippet:    Snippet(text, loc[0], loc[1]),
			}, true
		}
	}
	return Match{}, false
}

// adjustContractValue applies the value-specific corrections: composite
// "A + B = C" statements resolve to the final figure, monthly amounts are
// annualized, and confidence reflects how explicit the statement was.
func adjustContractValue(value contract.FieldValue, whole string) (contract.FieldValue, float64) {
	lower := strings.ToLower(whole)

	if strings.Contains(lower, "annual contract value") && strings.Contains(whole, "=") {
		if m := finalValueRe.FindStringSubmatch(whole); m != nil {
			if amount, ok := ParseMoney(m[1]); ok {
				value = contract.NumberValue(amount)
			}
		}
	} else if strings.Contains(lower, "monthly") {
		if amount, ok := value.Number(); ok {
			value = contract.NumberValue(amount * 12)
		}
	}

	if strings.Contains(lower, "annual") || strings.Contains(lower, "total") {
		return value, annualTotalConfidence
	}
	return value, genericValueConfidence
}

// Snippet returns the evidence window around a match: up to 50 bytes of
// context on each side, newlines flattened, capped at 200 bytes. Window
// edges land on rune boundaries so a symbol like € is never split.
func Snippet(text string, start, end int) string {
	s := start - snippetContext
	if s < 0 {
		s = 0
	}
	for s > 0 && !utf8.RuneStart(text[s]) {
		s--
	}
	e := end + snippetContext
	if e > len(text) {
		e = len(text)
	}
	for e < len(text) && !utf8.RuneStart(text[e]) {
		e++
	}
	snippet := strings.TrimSpace(strings.ReplaceAll(text[s:e], "\n", " "))
	if len(snippet) > contract.MaxSnippetLength {
		cut := contract.MaxSnippetLength
		for cut > 0 && !utf8.RuneStart(snippet[cut]) {
			cut--
		}
		snippet = snippet[:cut]
	}
	return snippet
}

// valueString renders a field value the way the exact-match boost compares
// it: the raw string for strings, minimal decimal form for numbers.
func valueString(v contract.FieldValue) string {
	if s, ok := v.String(); ok {
		return s
	}
	if n, ok := v.Number(); ok {
		return strconv.FormatFloat(n, 'f', -1, 64)
	}
	if b, ok := v.Bool(); ok {
		return strconv.FormatBool(b)
	}
	return ""
}
