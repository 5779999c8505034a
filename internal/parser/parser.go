// Package parser wires acquisition, extraction, the invoice subsystem, and
// analysis into one end-to-end document processing call.
package parser

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/DexterHimZ/contract-intelligence-parser/internal/acquire"
	"github.com/DexterHimZ/contract-intelligence-parser/internal/analysis"
	"github.com/DexterHimZ/contract-intelligence-parser/internal/config"
	"github.com/DexterHimZ/contract-intelligence-parser/internal/contract"
	"github.com/DexterHimZ/contract-intelligence-parser/internal/extract"
	"github.com/DexterHimZ/contract-intelligence-parser/internal/invoice"
)

// ProgressFunc receives coarse progress milestones while a document is
// processed. The callback must be fast; it runs inline.
type ProgressFunc func(percent int, label string)

// Parser processes documents. The catalog is compiled once and shared;
// Process is safe for concurrent calls.
type Parser struct {
	acquirer *acquire.Acquirer
	catalog  *extract.Catalog
	logger   *slog.Logger
	progress ProgressFunc
}

// Option adjusts Parser construction.
type Option func(*Parser)

// WithProgress installs a progress callback.
func WithProgress(fn ProgressFunc) Option {
	return func(p *Parser) { p.progress = fn }
}

// WithCatalog replaces the default rule catalog.
func WithCatalog(c *extract.Catalog) Option {
	return func(p *Parser) { p.catalog = c }
}

// New builds a Parser from configuration.
func New(cfg *config.Config, logger *slog.Logger, opts ...Option) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Parser{
		acquirer: acquire.New(acquire.Config{
			Pdftoppm:      cfg.Pdftoppm,
			Tesseract:     cfg.Tesseract,
			TesseractLang: cfg.TesseractLang,
			DPI:           cfg.DPI,
			PSM:           cfg.PSM,
			MinTextLength: cfg.MinTextLength,
		}, logger),
		catalog: extract.DefaultCatalog(),
		logger:  logger,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Process runs the full pipeline over the PDF at path. Acquisition failure
// is fatal and returned with the duration and message recorded in the
// result's processing metadata; everything after acquisition degrades
// field by field instead of failing.
func (p *Parser) Process(ctx context.Context, path string) (*contract.Result, error) {
	start := time.Now()
	result := &contract.Result{ID: uuid.NewString()}

	pages, ocrUsed, err := p.acquirer.Acquire(ctx, path)
	result.Processing.OCRUsed = ocrUsed
	if err != nil {
		result.Processing.DurationMS = time.Since(start).Milliseconds()
		result.Processing.ErrorMessage = err.Error()
		p.logger.Error("acquisition failed", "path", path, "error", err)
		return result, err
	}
	result.Pages = pages
	p.report(20, "text acquired")

	fullText := joinPages(pages)

	fields := p.extractStandardFields(fullText, pages)

	invoiceFields, oneTime := invoice.Extract(pages, p.logger)
	fields = invoice.Merge(fields, invoiceFields)
	if oneTime {
		invoice.MarkOneTime(fields)
	}

	p.deriveTerminationDate(fields)
	p.report(80, "fields analyzed")

	result.Fields = fields
	result.ConfidenceSummary = analysis.Summarize(fields)
	result.Gaps = analysis.FindGaps(fields)
	result.OverallScore = analysis.Score(fields, result.Gaps, result.ConfidenceSummary)
	result.Processing.DurationMS = time.Since(start).Milliseconds()
	p.report(100, "scoring complete")

	return result, nil
}

func (p *Parser) report(percent int, label string) {
	if p.progress != nil {
		p.progress(percent, label)
	}
}

func joinPages(pages []contract.Page) string {
	texts := make([]string, len(pages))
	for i, pg := range pages {
		texts[i] = pg.Text
	}
	return strings.Join(texts, "\n")
}

// extractStandardFields runs every catalog rule over the full text.
func (p *Parser) extractStandardFields(fullText string, pages []contract.Page) map[string]contract.Field {
	fields := map[string]contract.Field{}
	for _, rule := range p.catalog.Rules() {
		match, ok := extract.ExtractField(fullText, rule)
		if !ok {
			continue
		}
		fields[rule.Name] = contract.Field{
			Value:      match.Value,
			Confidence: match.Confidence,
			Evidence: contract.Evidence{
				Page:    pageOf(match.Snippet, pages),
				Snippet: match.Snippet,
				Source:  contract.SourceRule,
			},
		}
	}
	return fields
}

// deriveTerminationDate fills termination_date from effective_date plus
// contract_term when direct extraction found nothing.
func (p *Parser) deriveTerminationDate(fields map[string]contract.Field) {
	if _, ok := fields["termination_date"]; ok {
		return
	}
	effective, ok := fields["effective_date"]
	if !ok {
		return
	}
	term, ok := fields["contract_term"]
	if !ok {
		return
	}

	effectiveStr, _ := effective.Value.String()
	termStr, _ := term.Value.String()

	derived, confidence, ok := extract.DeriveTerminationDate(effectiveStr, termStr)
	if !ok {
		p.logger.Debug("termination date derivation failed",
			"effective_date", effectiveStr, "contract_term", termStr)
		return
	}

	fields["termination_date"] = contract.Field{
		Value:      contract.StringValue(derived),
		Confidence: confidence,
		Evidence: contract.Evidence{
			Page:    effective.Evidence.Page,
			Snippet: "Derived from Effective Date: " + effectiveStr + " + Contract Term: " + termStr,
			Source:  contract.SourceDerived,
		},
	}
}

// pageOf resolves a snippet back to its page. Snippets that span a page
// boundary fall back to page 1.
func pageOf(snippet string, pages []contract.Page) int {
	for _, pg := range pages {
		if snippet != "" && strings.Contains(pg.Text, snippet) {
			return pg.Number
		}
	}
	return 1
}
