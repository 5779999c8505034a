package invoice

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/DexterHimZ/contract-intelligence-parser/internal/contract"
)

// tableWindow bounds how far past a detected header row parsing looks.
const tableWindow = 1500

const (
	singleLineTolerance = 0.05
	multiLineTolerance  = 0.01
)

var tableHeaderRes = []*regexp.Regexp{
	regexp.MustCompile(`(?im)(?:description|item)\s+(?:qty|quantity)\s+(?:unit\s+price|price)\s+(?:currency)?\s*(?:total|amount)`),
	regexp.MustCompile(`(?im)description\s+quantity\s+unit\s+price\s+currency\s+total`),
	regexp.MustCompile(`(?im)item\s+qty\s+price\s+total`),
}

// Row layouts tried in order against each line of the table window.
var singleLineRes = []*regexp.Regexp{
	// "System Setup 1 5,000.00 USD 5,000.00"
	regexp.MustCompile(`^(?P<desc>[A-Za-z][\w\s&(),.-]{3,50}?)\s+(?P<qty>\d+(?:\s*×\s*)?(?:\d+)?)\s+(?P<price>\d{1,3}(?:,\d{3})*(?:\.\d{2})?)\s+(?P<cur>[A-Z]{3})\s+(?P<total>\d{1,3}(?:,\d{3})*(?:\.\d{2})?)$`),
	// "Staff Training 2×$1,500 USD 3,000.00"
	regexp.MustCompile(`^(?P<desc>[A-Za-z][\w\s&(),.-]{3,50}?)\s+(?P<qty>\d+)×\$(?P<price>\d{1,3}(?:,\d{3})*(?:\.\d{2})?)\s+(?P<cur>[A-Z]{3})\s+(?P<total>\d{1,3}(?:,\d{3})*(?:\.\d{2})?)$`),
	// qty may carry a unit word, currency column optional
	regexp.MustCompile(`^(?P<desc>[A-Za-z][\w\s&(),.-]{3,50}?)\s+(?P<qty>\d+(?:\s+\w+)?)\s+(?P<price>\d{1,3}(?:,\d{3})*(?:\.\d{2})?)\s+(?P<cur>[A-Z]{3})?\s*(?P<total>\d{1,3}(?:,\d{3})*(?:\.\d{2})?)$`),
	// no currency column at all
	regexp.MustCompile(`^(?P<desc>[A-Za-z][\w\s&(),.-]{3,50}?)\s+(?P<qty>\d+(?:\s+\w+)?)\s+(?P<price>\d{1,3}(?:,\d{3})*(?:\.\d{2})?)\s+(?P<total>\d{1,3}(?:,\d{3})*(?:\.\d{2})?)$`),
	// currency symbols attached to the amounts
	regexp.MustCompile(`^(?P<desc>[A-Za-z][\w\s&(),.-]{3,50}?)\s+(?P<qty>\d+(?:\s+\w+)?)\s+[$€£₹]?(?P<price>\d{1,3}(?:,\d{3})*(?:\.\d{2})?)\s*(?P<cur>[A-Z]{3})?\s*[$€£₹]?(?P<total>\d{1,3}(?:,\d{3})*(?:\.\d{2})?)$`),
}

var fallbackLineRes = []*regexp.Regexp{
	regexp.MustCompile(`^([A-Za-z][\w\s&(),.-]{3,50})\s+(\d+)\s+(\d{1,3}(?:,\d{3})*(?:\.\d{2})?)\s+([A-Z]{3})\s+(\d{1,3}(?:,\d{3})*(?:\.\d{2})?)$`),
	regexp.MustCompile(`^([A-Za-z][\w\s&(),.-]{3,50})\s+(\d+)×\$(\d{1,3}(?:,\d{3})*(?:\.\d{2})?)\s+([A-Z]{3})\s+(\d{1,3}(?:,\d{3})*(?:\.\d{2})?)$`),
}

var (
	multiLineSkipRe  = regexp.MustCompile(`^(\d+|USD|EUR|GBP|[$€£])`)
	multiLineQtyRe   = regexp.MustCompile(`^(\d+)(?:\s+(\w+))?$`)
	multiLineNumRe   = regexp.MustCompile(`^\d{1,3}(?:,\d{3})*(?:\.\d{2})?$`)
	multiLineCurRe   = regexp.MustCompile(`^[A-Z]{3}$`)
	nonNumericQtyRe  = regexp.MustCompile(`[^\d.]`)
	headerCellTokens = []string{"description", "qty", "quantity", "price", "total", "currency"}
)

// ExtractLineItems finds invoice rows in the document text. With a detected
// table header it parses the following window using the single-line layouts
// first and the one-field-per-line layout second; without a header it scans
// every line with the stricter fallback layouts. ok=false when no valid
// rows survive.
func ExtractLineItems(fullText string, pages []contract.Page) ([]contract.LineItem, contract.Evidence, bool) {
	var headerEnd = -1
	for _, re := range tableHeaderRes {
		if loc := re.FindStringIndex(fullText); loc != nil {
			headerEnd = loc[1]
			break
		}
	}

	if headerEnd >= 0 {
		end := headerEnd + tableWindow
		if end > len(fullText) {
			end = len(fullText)
		}
		section := fullText[headerEnd:end]

		items := singleLineItems(section)
		if len(items) == 0 {
			items = multiLineItems(section)
		}
		if len(items) > 0 {
			probe := section
			if len(probe) > 100 {
				probe = probe[:100]
			}
			snippet := section
			if len(snippet) > contract.MaxSnippetLength {
				snippet = snippet[:contract.MaxSnippetLength]
			}
			ev := contract.Evidence{
				Page:    findPage(probe, pages),
				Snippet: snippet,
				Source:  contract.SourceRule,
			}
			return items, ev, true
		}
		return nil, contract.Evidence{}, false
	}

	items := fallbackLineItems(fullText)
	if len(items) == 0 {
		return nil, contract.Evidence{}, false
	}
	ev := contract.Evidence{
		Page:    1,
		Snippet: "line items extracted without headers",
		Source:  contract.SourceRule,
	}
	return items, ev, true
}

func singleLineItems(section string) []contract.LineItem {
	var items []contract.LineItem

	lines := strings.Split(section, "\n")
	if len(lines) > 20 {
		lines = lines[:20]
	}
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if len(line) < 10 {
			continue
		}
		for _, re := range singleLineRes {
			m := re.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			if item, ok := buildRowItem(re, m, line); ok {
				items = append(items, item)
			}
			break
		}
	}
	return items
}

// multiLineItems handles tables where each cell landed on its own line:
// description, quantity, price, currency, total in strict succession.
func multiLineItems(section string) []contract.LineItem {
	var items []contract.LineItem

	var lines []string
	for _, l := range strings.Split(section, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}

	i := 0
	for i < len(lines)-4 {
		if multiLineSkipRe.MatchString(lines[i]) || len(lines[i]) <= 5 || hasStopWord(lines[i]) {
			i++
			continue
		}
		if item, ok := multiLineSequence(lines, i); ok {
			items = append(items, item)
			i += 5
			continue
		}
		i++
	}
	return items
}

func hasStopWord(line string) bool {
	lower := strings.ToLower(line)
	for _, w := range []string{"total due", "payment", "terms"} {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}

func multiLineSequence(lines []string, start int) (contract.LineItem, bool) {
	qm := multiLineQtyRe.FindStringSubmatch(lines[start+1])
	if qm == nil {
		return contract.LineItem{}, false
	}
	if !multiLineNumRe.MatchString(lines[start+2]) {
		return contract.LineItem{}, false
	}
	if !multiLineCurRe.MatchString(lines[start+3]) {
		return contract.LineItem{}, false
	}
	if !multiLineNumRe.MatchString(lines[start+4]) {
		return contract.LineItem{}, false
	}

	unitPrice, ok := parseMoney(lines[start+2])
	if !ok {
		return contract.LineItem{}, false
	}
	lineTotal, ok := parseMoney(lines[start+4])
	if !ok {
		return contract.LineItem{}, false
	}
	qty, err := strconv.ParseFloat(qm[1], 64)
	if err != nil {
		return contract.LineItem{}, false
	}

	expected := qty * unitPrice
	if expected == 0 || abs(lineTotal-expected)/expected > multiLineTolerance {
		return contract.LineItem{}, false
	}

	return contract.LineItem{
		Description: strings.TrimSpace(lines[start]),
		Quantity:    qm[1],
		QtyUnit:     qm[2],
		UnitPrice:   unitPrice,
		Currency:    lines[start+3],
		LineTotal:   lineTotal,
	}, true
}

func fallbackLineItems(fullText string) []contract.LineItem {
	var items []contract.LineItem

	for _, line := range strings.Split(fullText, "\n") {
		line = strings.TrimSpace(line)
		if len(line) < 10 {
			continue
		}
		for _, re := range fallbackLineRes {
			m := re.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			unitPrice, okP := parseMoney(m[3])
			lineTotal, okT := parseMoney(m[5])
			if okP && okT {
				qty, err := strconv.ParseFloat(m[2], 64)
				if err == nil && divergence(lineTotal, qty*unitPrice) <= singleLineTolerance {
					items = append(items, contract.LineItem{
						Description: strings.TrimSpace(m[1]),
						Quantity:    m[2],
						UnitPrice:   unitPrice,
						Currency:    m[4],
						LineTotal:   lineTotal,
					})
				}
			}
			break
		}
	}
	return items
}

// buildRowItem turns a single-line row match into a line item, resolving
// the "2×$1,500" quantity form, filling in a currency when the row carried
// none, and cross-checking quantity×unit_price against the row total.
func buildRowItem(re *regexp.Regexp, m []string, line string) (contract.LineItem, bool) {
	group := func(name string) string {
		if idx := re.SubexpIndex(name); idx >= 0 && idx < len(m) {
			return m[idx]
		}
		return ""
	}

	description := group("desc")
	qty := group("qty")
	price := group("price")
	total := group("total")
	currency := group("cur")

	if currency == "" {
		if mm := moneyRe.FindStringSubmatch(line); mm != nil {
			if token, _, ok := splitMoney(mm); ok {
				currency = currencyCode(token)
			}
		}
		if currency == "" {
			currency = "USD"
		}
	}

	lowerDesc := strings.ToLower(description)
	for _, token := range headerCellTokens {
		if strings.Contains(lowerDesc, token) {
			return contract.LineItem{}, false
		}
	}

	var quantity, qtyUnit string
	if strings.Contains(qty, "×") {
		parts := strings.SplitN(qty, "×", 2)
		quantity = strings.TrimSpace(parts[0])
		embedded := strings.TrimSpace(parts[1])
		if strings.HasPrefix(embedded, "$") {
			price = embedded[1:]
		}
	} else {
		parts := strings.Fields(qty)
		if len(parts) > 0 {
			quantity = parts[0]
			qtyUnit = strings.Join(parts[1:], " ")
		} else {
			quantity = qty
		}
	}

	unitPrice, okP := parseMoney(price)
	lineTotal, okT := parseMoney(total)
	if !okP || !okT {
		return contract.LineItem{}, false
	}

	item := contract.LineItem{
		Description: strings.TrimSpace(description),
		Quantity:    quantity,
		QtyUnit:     qtyUnit,
		UnitPrice:   unitPrice,
		Currency:    currency,
		LineTotal:   lineTotal,
	}

	numericQty := nonNumericQtyRe.ReplaceAllString(quantity, "")
	if numericQty == "" {
		return item, true
	}
	qf, err := strconv.ParseFloat(numericQty, 64)
	if err != nil {
		return item, true
	}
	expected := qf * unitPrice
	if divergence(lineTotal, expected) <= singleLineTolerance {
		return item, true
	}
	return contract.LineItem{}, false
}

// ValidateLineItems drops rows with implausible figures: short or header
// descriptions, unit prices above 1e6, totals above 1e7, quantities above
// 1e4. Non-numeric quantities are kept as-is.
func ValidateLineItems(items []contract.LineItem) []contract.LineItem {
	var valid []contract.LineItem
	for _, item := range items {
		desc := strings.TrimSpace(item.Description)
		if len(desc) < 3 {
			continue
		}
		if item.UnitPrice < 0 || item.UnitPrice > 1_000_000 {
			continue
		}
		if item.LineTotal < 0 || item.LineTotal > 10_000_000 {
			continue
		}
		if qty, err := strconv.ParseFloat(item.Quantity, 64); err == nil {
			if qty < 0 || qty > 10_000 {
				continue
			}
		}
		item.Description = desc
		valid = append(valid, item)
	}
	return valid
}

func divergence(a, b float64) float64 {
	m := a
	if b > m {
		m = b
	}
	if m == 0 {
		return 0
	}
	return abs(a-b) / m
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
