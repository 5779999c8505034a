package parser

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DexterHimZ/contract-intelligence-parser/internal/contract"
	"github.com/DexterHimZ/contract-intelligence-parser/internal/extract"
)

func testParser(t *testing.T, rules []extract.Rule) *Parser {
	t.Helper()
	catalog, err := extract.NewCatalog(rules)
	require.NoError(t, err)
	return &Parser{catalog: catalog, logger: slog.Default()}
}

func TestJoinPages(t *testing.T) {
	pages := []contract.Page{
		{Number: 1, Text: "first page"},
		{Number: 2, Text: "second page"},
	}
	assert.Equal(t, "first page\nsecond page", joinPages(pages))
	assert.Equal(t, "", joinPages(nil))
}

func TestPageOf(t *testing.T) {
	pages := []contract.Page{
		{Number: 1, Text: "Master Services Agreement between Acme and Initech"},
		{Number: 2, Text: "Governing Law: Delaware"},
	}
	assert.Equal(t, 2, pageOf("Governing Law: Delaware", pages))
	assert.Equal(t, 1, pageOf("between Acme", pages))
	assert.Equal(t, 1, pageOf("not on any page", pages))
	assert.Equal(t, 1, pageOf("", pages))
}

func TestExtractStandardFields(t *testing.T) {
	p := testParser(t, []extract.Rule{
		{
			Name:           "governing_law",
			Patterns:       []string{`(?i)governed\s+by\s+the\s+laws\s+of\s+(?:the\s+State\s+of\s+)?([A-Z][a-z]+)`},
			BaseConfidence: 0.75,
		},
		{
			Name:           "sla_uptime",
			Patterns:       []string{`(?i)uptime\s+of\s+(\d{2}(?:\.\d+)?)\s*%`},
			Transform:      extract.TransformFloat,
			BaseConfidence: 0.75,
		},
		{
			Name:           "never_matches",
			Patterns:       []string{`ZZZ_NOT_PRESENT`},
			BaseConfidence: 0.5,
		},
	})

	// Page 2 carries enough context on both sides of the match that the
	// evidence snippet stays inside the page.
	pages := []contract.Page{
		{Number: 1, Text: "This Agreement is governed by the laws of the State of Delaware."},
		{Number: 2, Text: "Service availability commitments are set out in this section. The Provider guarantees uptime of 99.9% for the hosted platform, measured monthly across the full term."},
	}
	fields := p.extractStandardFields(joinPages(pages), pages)

	require.Contains(t, fields, "governing_law")
	law, _ := fields["governing_law"].Value.String()
	assert.Equal(t, "Delaware", law)
	assert.Equal(t, 1, fields["governing_law"].Evidence.Page)
	assert.Equal(t, contract.SourceRule, fields["governing_law"].Evidence.Source)

	require.Contains(t, fields, "sla_uptime")
	uptime, _ := fields["sla_uptime"].Value.Number()
	assert.InDelta(t, 99.9, uptime, 0.0001)
	assert.Equal(t, 2, fields["sla_uptime"].Evidence.Page)

	assert.NotContains(t, fields, "never_matches")
}

func TestEvidenceSnippetSpanningPagesFallsBack(t *testing.T) {
	p := testParser(t, []extract.Rule{
		{
			Name:           "sla_uptime",
			Patterns:       []string{`(?i)uptime\s+of\s+(\d{2}(?:\.\d+)?)\s*%`},
			Transform:      extract.TransformFloat,
			BaseConfidence: 0.75,
		},
	})

	// The match sits near the top of page 2, so the snippet window reaches
	// back across the page join and cannot be located in any single page.
	pages := []contract.Page{
		{Number: 1, Text: "Exhibit B. Service Level Commitments follow on the next page."},
		{Number: 2, Text: "Uptime of 99.5% is guaranteed."},
	}
	fields := p.extractStandardFields(joinPages(pages), pages)

	require.Contains(t, fields, "sla_uptime")
	assert.Equal(t, 1, fields["sla_uptime"].Evidence.Page)
}

func TestDeriveTerminationDateFillsAbsent(t *testing.T) {
	p := testParser(t, nil)

	fields := map[string]contract.Field{
		"effective_date": {
			Value:      contract.StringValue("2024-01-15"),
			Confidence: 0.7,
			Evidence:   contract.Evidence{Page: 2},
		},
		"contract_term": {
			Value:      contract.StringValue("12 months"),
			Confidence: 0.7,
		},
	}
	p.deriveTerminationDate(fields)

	td, ok := fields["termination_date"]
	require.True(t, ok)
	v, _ := td.Value.String()
	assert.Equal(t, "2025-01-15", v)
	assert.InDelta(t, 0.75, td.Confidence, 0.0001)
	assert.Equal(t, contract.SourceDerived, td.Evidence.Source)
	assert.Equal(t, 2, td.Evidence.Page)
	assert.Contains(t, td.Evidence.Snippet, "2024-01-15")
	assert.Contains(t, td.Evidence.Snippet, "12 months")
}

func TestDeriveTerminationDateKeepsExisting(t *testing.T) {
	p := testParser(t, nil)

	fields := map[string]contract.Field{
		"termination_date": {Value: contract.StringValue("2026-06-30"), Confidence: 0.65},
		"effective_date":   {Value: contract.StringValue("2024-01-15"), Confidence: 0.7},
		"contract_term":    {Value: contract.StringValue("12 months"), Confidence: 0.7},
	}
	p.deriveTerminationDate(fields)

	v, _ := fields["termination_date"].Value.String()
	assert.Equal(t, "2026-06-30", v)
}

func TestDeriveTerminationDateRequiresBothInputs(t *testing.T) {
	p := testParser(t, nil)

	fields := map[string]contract.Field{
		"effective_date": {Value: contract.StringValue("2024-01-15"), Confidence: 0.7},
	}
	p.deriveTerminationDate(fields)
	assert.NotContains(t, fields, "termination_date")

	fields = map[string]contract.Field{
		"contract_term": {Value: contract.StringValue("12 months"), Confidence: 0.7},
	}
	p.deriveTerminationDate(fields)
	assert.NotContains(t, fields, "termination_date")
}

func TestDeriveTerminationDateSilentOnBadInput(t *testing.T) {
	p := testParser(t, nil)

	fields := map[string]contract.Field{
		"effective_date": {Value: contract.StringValue("sometime soon"), Confidence: 0.7},
		"contract_term":  {Value: contract.StringValue("perpetual"), Confidence: 0.7},
	}
	p.deriveTerminationDate(fields)
	assert.NotContains(t, fields, "termination_date")
}

func TestProgressReporting(t *testing.T) {
	var milestones []int
	p := testParser(t, nil)
	p.progress = func(percent int, label string) {
		milestones = append(milestones, percent)
		assert.NotEmpty(t, label)
	}

	p.report(20, "text acquired")
	p.report(80, "fields analyzed")
	p.report(100, "scoring complete")
	assert.Equal(t, []int{20, 80, 100}, milestones)

	// A nil callback is a no-op, not a panic.
	p.progress = nil
	p.report(50, "ignored")
}
