package invoice

import (
	"regexp"
	"strings"
)

var (
	unicodeSpaceRe = regexp.MustCompile(`[\x{00A0}\x{2000}-\x{200B}\x{2028}\x{2029}]`)
	unicodeDashRe  = regexp.MustCompile(`[\x{2013}\x{2014}]`)
	spaceRunRe     = regexp.MustCompile(`[\s\t]+`)

	splitCurrencyRes = []struct {
		re   *regexp.Regexp
		code string
	}{
		{regexp.MustCompile(`(?i)\bU\s+S\s+D\b`), "USD"},
		{regexp.MustCompile(`(?i)\bE\s+U\s+R\b`), "EUR"},
		{regexp.MustCompile(`(?i)\bG\s+B\s+P\b`), "GBP"},
		{regexp.MustCompile(`(?i)\bC\s+A\s+D\b`), "CAD"},
		{regexp.MustCompile(`(?i)\bI\s+N\s+R\b`), "INR"},
	}
)

// NormalizeText repairs common OCR artifacts line by line: unicode spaces
// and dashes become ASCII, letter-spaced currency codes ("U S D") are
// rejoined, and whitespace runs collapse to single spaces. Line boundaries
// are preserved.
func NormalizeText(text string) string {
	if text == "" {
		return text
	}

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		line = unicodeSpaceRe.ReplaceAllString(line, " ")
		line = unicodeDashRe.ReplaceAllString(line, "-")
		for _, sc := range splitCurrencyRes {
			line = sc.re.ReplaceAllString(line, sc.code)
		}
		line = spaceRunRe.ReplaceAllString(line, " ")
		lines[i] = strings.TrimSpace(line)
	}
	return strings.Join(lines, "\n")
}
