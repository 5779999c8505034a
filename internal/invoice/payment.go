package invoice

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/DexterHimZ/contract-intelligence-parser/internal/contract"
)

var netDaysRes = []struct {
	re         *regexp.Regexp
	confidence float64
}{
	{regexp.MustCompile(`(?im)payment\s+due\s*:\s*net\s+(\d+)\s+days?`), 0.9},
	{regexp.MustCompile(`(?im)net\s+(\d+)\s+days?\s+from\s+invoice`), 0.9},
	{regexp.MustCompile(`(?im)net\s+(\d+)`), 0.8},
}

var lateFeeRateRes = []struct {
	re         *regexp.Regexp
	confidence float64
}{
	{regexp.MustCompile(`(?im)late\s+fee\s*:\s*(\d+(?:\.\d+)?)\s*%\s*per\s+month`), 0.9},
	{regexp.MustCompile(`(?im)(\d+(?:\.\d+)?)\s*%\s*per\s+month\s+(?:on\s+)?(?:overdue|late)`), 0.85},
}

var lateFeeAmountRe = regexp.MustCompile(`(?im)late\s+fee\s*:\s*\$?(\d{1,3}(?:,\d{3})*(?:\.\d{2})?)`)

// ExtractPaymentTerms pulls net-day terms and late fee details. A late
// fee's "per month" cadence is recorded as late_fee_cadence, never as
// billing_frequency; only explicit billing-schedule wording may set that
// field, and it is not this stage's to set.
func ExtractPaymentTerms(fullText string, pages []contract.Page) map[string]contract.Field {
	fields := map[string]contract.Field{}

	for _, np := range netDaysRes {
		m := np.re.FindStringSubmatch(fullText)
		if m == nil {
			continue
		}
		days, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		ev := contract.Evidence{
			Page:    findPage(m[0], pages),
			Snippet: clipSnippet(m[0]),
			Source:  contract.SourceRule,
		}
		fields["payment_net_days"] = contract.Field{
			Value: contract.NumberValue(float64(days)), Confidence: np.confidence, Evidence: ev,
		}
		fields["payment_due_terms"] = contract.Field{
			Value: contract.StringValue(fmt.Sprintf("Net %d days", days)), Confidence: np.confidence, Evidence: ev,
		}
		fields["payment_terms"] = contract.Field{
			Value: contract.StringValue(strings.TrimSpace(m[0])), Confidence: np.confidence, Evidence: ev,
		}
		break
	}

	for _, lf := range lateFeeRateRes {
		m := lf.re.FindStringSubmatch(fullText)
		if m == nil {
			continue
		}
		pct, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			continue
		}
		ev := contract.Evidence{
			Page:    findPage(m[0], pages),
			Snippet: clipSnippet(m[0]),
			Source:  contract.SourceRule,
		}
		fields["late_fee_rate"] = contract.Field{
			Value: contract.NumberValue(pct / 100.0), Confidence: lf.confidence, Evidence: ev,
		}
		fields["late_fee_cadence"] = contract.Field{
			Value: contract.StringValue("monthly"), Confidence: lf.confidence, Evidence: ev,
		}
		return fields
	}

	if m := lateFeeAmountRe.FindStringSubmatch(fullText); m != nil {
		if amount, ok := parseMoney(m[1]); ok {
			fields["late_fee_amount"] = contract.Field{
				Value:      contract.NumberValue(amount),
				Confidence: 0.8,
				Evidence: contract.Evidence{
					Page:    findPage(m[0], pages),
					Snippet: clipSnippet(m[0]),
					Source:  contract.SourceRule,
				},
			}
		}
	}

	return fields
}
