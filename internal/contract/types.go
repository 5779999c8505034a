package contract

import (
	"encoding/json"
	"strings"
)

// Page holds the extracted text of a single document page. Pages are
// produced once during acquisition and never mutated afterwards; numbers
// start at 1 and are contiguous per document.
type Page struct {
	Number int    `json:"page"`
	Text   string `json:"content"`
}

// EvidenceSource indicates how a field value was obtained.
type EvidenceSource string

const (
	// SourceRule marks values produced by direct pattern matching.
	SourceRule EvidenceSource = "rule"
	// SourceDerived marks values inferred from other extracted fields.
	SourceDerived EvidenceSource = "derived"
)

// Evidence records where in the document a field value was found.
type Evidence struct {
	Page    int            `json:"page"`
	Snippet string         `json:"snippet"`
	Source  EvidenceSource `json:"source"`
}

// MaxSnippetLength caps evidence snippets.
const MaxSnippetLength = 200

// ValueKind enumerates the closed set of shapes a field value can take.
type ValueKind int

const (
	KindNone ValueKind = iota
	KindString
	KindNumber
	KindBool
	KindItems
	KindList
	KindMap
)

// NotApplicable is the sentinel value for fields that do not apply to a
// document (e.g. renewal terms on a one-time invoice).
const NotApplicable = "N/A"

// FieldValue is a tagged union over the value shapes extraction can
// produce: string, number, boolean, line-item list, string list, or a
// nested field map. Downstream gap/score code switches on Kind so every
// shape is handled explicitly.
type FieldValue struct {
	kind  ValueKind
	str   string
	num   float64
	b     bool
	items []LineItem
	list  []string
	m     map[string]Field
}

// StringValue wraps a string.
func StringValue(s string) FieldValue { return FieldValue{kind: KindString, str: s} }

// NumberValue wraps a numeric value.
func NumberValue(f float64) FieldValue { return FieldValue{kind: KindNumber, num: f} }

// BoolValue wraps a boolean.
func BoolValue(b bool) FieldValue { return FieldValue{kind: KindBool, b: b} }

// ItemsValue wraps a list of line items.
func ItemsValue(items []LineItem) FieldValue { return FieldValue{kind: KindItems, items: items} }

// ListValue wraps a list of strings.
func ListValue(list []string) FieldValue { return FieldValue{kind: KindList, list: list} }

// MapValue wraps a nested field map (used for additional_fields).
func MapValue(m map[string]Field) FieldValue { return FieldValue{kind: KindMap, m: m} }

// Kind reports which shape the value holds.
func (v FieldValue) Kind() ValueKind { return v.kind }

// IsZero reports whether the value is absent.
func (v FieldValue) IsZero() bool { return v.kind == KindNone }

// String returns the string payload, ok=false for other kinds.
func (v FieldValue) String() (string, bool) { return v.str, v.kind == KindString }

// Number returns the numeric payload, ok=false for other kinds.
func (v FieldValue) Number() (float64, bool) { return v.num, v.kind == KindNumber }

// Bool returns the boolean payload, ok=false for other kinds.
func (v FieldValue) Bool() (bool, bool) { return v.b, v.kind == KindBool }

// Items returns the line-item payload, ok=false for other kinds.
func (v FieldValue) Items() ([]LineItem, bool) { return v.items, v.kind == KindItems }

// List returns the string-list payload, ok=false for other kinds.
func (v FieldValue) List() ([]string, bool) { return v.list, v.kind == KindList }

// Map returns the nested field map, ok=false for other kinds.
func (v FieldValue) Map() (map[string]Field, bool) { return v.m, v.kind == KindMap }

// IsNotApplicable reports whether the value is the "N/A" marker.
func (v FieldValue) IsNotApplicable() bool {
	return v.kind == KindString && strings.EqualFold(v.str, NotApplicable)
}

// MarshalJSON emits the raw underlying value so the wire shape matches the
// loosely-typed result consumers expect.
func (v FieldValue) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindString:
		return json.Marshal(v.str)
	case KindNumber:
		return json.Marshal(v.num)
	case KindBool:
		return json.Marshal(v.b)
	case KindItems:
		return json.Marshal(v.items)
	case KindList:
		return json.Marshal(v.list)
	case KindMap:
		return json.Marshal(v.m)
	default:
		return []byte("null"), nil
	}
}

// Field is a single extracted value with its confidence and evidence.
type Field struct {
	Value      FieldValue `json:"value"`
	Confidence float64    `json:"confidence"`
	Evidence   Evidence   `json:"evidence"`
}

// LineItem is one row of a priced table extracted from an invoice-style
// section.
type LineItem struct {
	Description string  `json:"description"`
	Quantity    string  `json:"quantity"`
	QtyUnit     string  `json:"qty_unit,omitempty"`
	UnitPrice   float64 `json:"unit_price"`
	Currency    string  `json:"currency"`
	LineTotal   float64 `json:"line_total"`
}

// GapReason explains why a field was flagged.
type GapReason string

const (
	GapMissing       GapReason = "missing"
	GapLowConfidence GapReason = "low_confidence"
)

// GapSeverity ranks the impact of a gap.
type GapSeverity string

const (
	SeverityHigh   GapSeverity = "high"
	SeverityMedium GapSeverity = "medium"
	SeverityLow    GapSeverity = "low"
)

// Gap is a required or important field that is absent or below its
// confidence threshold.
type Gap struct {
	Field    string      `json:"field"`
	Reason   GapReason   `json:"reason"`
	Severity GapSeverity `json:"severity"`
}

// ConfidenceSummary aggregates confidence statistics over the final field
// map. The low-confidence threshold is fixed at 0.6.
type ConfidenceSummary struct {
	Average              float64 `json:"average"`
	LowCount             int     `json:"low_count"`
	HighConfidenceFields int     `json:"high_confidence_fields"`
	TotalFields          int     `json:"total_fields"`
}

// Processing carries metadata about a single pipeline run.
type Processing struct {
	OCRUsed      bool   `json:"ocr_used"`
	DurationMS   int64  `json:"duration_ms"`
	ErrorMessage string `json:"error_message,omitempty"`
}

// Result is the full per-document payload produced by one pipeline run.
type Result struct {
	ID                string            `json:"id"`
	Pages             []Page            `json:"pages"`
	Fields            map[string]Field  `json:"fields"`
	Gaps              []Gap             `json:"gaps"`
	ConfidenceSummary ConfidenceSummary `json:"confidence_summary"`
	OverallScore      float64           `json:"overall_score"`
	Processing        Processing        `json:"processing"`
}
