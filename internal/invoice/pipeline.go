package invoice

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/DexterHimZ/contract-intelligence-parser/internal/contract"
)

const lineItemsConfidence = 0.9

// Stage is one step of the invoice pipeline. A failing stage contributes
// nothing; the remaining stages still run.
type Stage struct {
	Name string
	Run  func(fullText string, pages []contract.Page) (map[string]contract.Field, error)
}

// Extract runs the invoice pipeline over the document pages and reports
// whether the document carries one-time indicators. Page text is
// normalized and concatenated with page markers before matching, so
// evidence page numbers resolve against the original page text.
func Extract(pages []contract.Page, logger *slog.Logger) (map[string]contract.Field, bool) {
	if logger == nil {
		logger = slog.Default()
	}
	if len(pages) == 0 {
		logger.Warn("no pages provided for invoice extraction")
		return nil, false
	}

	var parts []string
	for _, p := range pages {
		if p.Text != "" {
			parts = append(parts, fmt.Sprintf("PAGE %d:\n%s", p.Number, NormalizeText(p.Text)))
		}
	}
	fullText := strings.Join(parts, "\n")
	if strings.TrimSpace(fullText) == "" {
		logger.Warn("no text content found in pages")
		return nil, false
	}

	fields := map[string]contract.Field{}
	for _, stage := range stages() {
		stageFields, err := stage.Run(fullText, pages)
		if err != nil {
			logger.Error("invoice stage failed", "stage", stage.Name, "error", err)
			continue
		}
		for name, field := range stageFields {
			fields[name] = field
		}
	}

	return fields, DetectOneTime(fullText)
}

func stages() []Stage {
	return []Stage{
		{Name: "line_items", Run: lineItemsStage},
		{Name: "totals", Run: totalsStage},
		{Name: "payment_terms", Run: paymentTermsStage},
		{Name: "payment_methods", Run: paymentMethodsStage},
	}
}

func lineItemsStage(fullText string, pages []contract.Page) (map[string]contract.Field, error) {
	items, evidence, ok := ExtractLineItems(fullText, pages)
	if !ok {
		return nil, nil
	}
	valid := ValidateLineItems(items)
	if len(valid) == 0 {
		return nil, nil
	}
	return map[string]contract.Field{
		"line_items": {
			Value:      contract.ItemsValue(valid),
			Confidence: lineItemsConfidence,
			Evidence:   evidence,
		},
	}, nil
}

func totalsStage(fullText string, pages []contract.Page) (map[string]contract.Field, error) {
	return ExtractTotals(fullText, pages), nil
}

func paymentTermsStage(fullText string, pages []contract.Page) (map[string]contract.Field, error) {
	fields := ExtractPaymentTerms(fullText, pages)
	// The cadence of a late fee is not a billing schedule. Only the
	// standard catalog's explicit billing-keyword rule may set this field.
	delete(fields, "billing_frequency")
	return fields, nil
}

func paymentMethodsStage(fullText string, pages []contract.Page) (map[string]contract.Field, error) {
	return ExtractPaymentMethods(fullText, pages), nil
}
