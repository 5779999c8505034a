package extract

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// derivedConfidence applies to every value computed from other fields
// rather than matched directly in the text.
const derivedConfidence = 0.75

var termRe = regexp.MustCompile(`(?i)(\d+)\s+(months?|years?)`)

// DeriveTerminationDate computes a termination date from an effective date
// and a contract term like "12 months" or "2 years". ok=false when either
// input is missing or unparseable; derivation failure is silent by
// contract, callers just keep the field absent.
func DeriveTerminationDate(effectiveDate, contractTerm string) (string, float64, bool) {
	if effectiveDate == "" || contractTerm == "" {
		return "", 0, false
	}

	m := termRe.FindStringSubmatch(contractTerm)
	if m == nil {
		return "", 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return "", 0, false
	}

	start, ok := parseAnyDate(effectiveDate)
	if !ok {
		return "", 0, false
	}

	var end time.Time
	switch {
	case strings.HasPrefix(strings.ToLower(m[2]), "month"):
		end = addMonths(start, n)
	case strings.HasPrefix(strings.ToLower(m[2]), "year"):
		end = addMonths(start, 12*n)
	default:
		return "", 0, false
	}

	return end.Format("2006-01-02"), derivedConfidence, true
}

// addMonths advances t by whole months, clamping day-of-month overflow to
// the last day of the target month (Jan 31 + 1 month = Feb 29, not Mar 2).
// time.AddDate normalizes the overflow instead, which is not calendar
// arithmetic for contract terms.
func addMonths(t time.Time, months int) time.Time {
	m := int(t.Month()) - 1 + months
	year := t.Year() + m/12
	m %= 12
	if m < 0 {
		m += 12
		year--
	}
	month := time.Month(m + 1)

	day := t.Day()
	if last := daysInMonth(year, month); day > last {
		day = last
	}
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}

// daysInMonth uses day-zero normalization of the following month.
func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func parseAnyDate(s string) (time.Time, bool) {
	cleaned := strings.TrimRight(strings.TrimSpace(s), ".,")
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, cleaned); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
