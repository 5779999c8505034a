package extract

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/DexterHimZ/contract-intelligence-parser/internal/contract"
)

// Transform names the normalization applied to a rule's raw match. The set
// is closed so rule tables stay plain data.
type Transform int

const (
	TransformNone Transform = iota
	TransformDate
	TransformMoney
	TransformCurrency
	TransformBool
	TransformFloat
)

// currencyCodes maps symbols and spelled-out currency words to ISO 4217
// codes. Unrecognized tokens pass through uppercased.
var currencyCodes = map[string]string{
	"$":       "USD",
	"€":       "EUR",
	"£":       "GBP",
	"₹":       "INR",
	"¥":       "JPY",
	"dollars": "USD",
	"euros":   "EUR",
	"pounds":  "GBP",
	"rupees":  "INR",
}

// dateLayouts are tried in order by ParseDate.
var dateLayouts = []string{
	"January 2, 2006",
	"January 2 2006",
	"Jan 2, 2006",
	"Jan 2 2006",
	"2006-01-02",
	"01/02/2006",
	"1/2/2006",
	"01-02-2006",
	"1-2-2006",
	"01/02/06",
	"1/2/06",
	"January, 2006",
	"January 2006",
}

// applyTransform normalizes a raw matched substring. ok=false means the
// match does not yield a usable value and the caller should keep scanning.
func applyTransform(t Transform, raw string) (contract.FieldValue, bool) {
	switch t {
	case TransformNone:
		return contract.StringValue(raw), true
	case TransformDate:
		return contract.StringValue(ParseDate(raw)), true
	case TransformMoney:
		amount, ok := ParseMoney(raw)
		if !ok {
			return contract.FieldValue{}, false
		}
		return contract.NumberValue(amount), true
	case TransformCurrency:
		return contract.StringValue(NormalizeCurrency(raw)), true
	case TransformBool:
		return contract.BoolValue(strings.TrimSpace(raw) != ""), true
	case TransformFloat:
		f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return contract.FieldValue{}, false
		}
		return contract.NumberValue(f), true
	default:
		return contract.FieldValue{}, false
	}
}

// ParseDate normalizes a date string to ISO 8601 (YYYY-MM-DD) on a
// best-effort basis. Unparseable input is returned unchanged, mirroring the
// lenient behavior downstream consumers rely on.
func ParseDate(s string) string {
	cleaned := strings.TrimSpace(s)
	cleaned = strings.TrimRight(cleaned, ".,")
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, cleaned); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return s
}

// moneyStrip removes currency symbols, separators, and whitespace from a
// money string before numeric parsing.
var moneyStrip = strings.NewReplacer(
	",", "",
	"$", "",
	"£", "",
	"€", "",
	"₹", "",
	"¥", "",
	" ", "",
	" ", "",
	"\t", "",
)

// ParseMoney parses a money string ("$1,000.50", "€2,500") into a float
// amount. ok=false when the input is not numeric.
func ParseMoney(s string) (float64, bool) {
	cleaned := moneyStrip.Replace(strings.TrimSpace(s))
	if cleaned == "" {
		return 0, false
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return 0, false
	}
	f, _ := d.Float64()
	return f, true
}

// NormalizeCurrency maps a currency symbol or word to its 3-letter code.
func NormalizeCurrency(s string) string {
	if code, ok := currencyCodes[strings.ToLower(strings.TrimSpace(s))]; ok {
		return code
	}
	return strings.ToUpper(strings.TrimSpace(s))
}
