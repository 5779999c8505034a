package invoice

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DexterHimZ/contract-intelligence-parser/internal/contract"
)

const oneTimeAgreement = `PROFESSIONAL SERVICES AGREEMENT (ONE-TIME)

Description Quantity Unit Price Currency Total
System Setup 1 5,000.00 USD 5,000.00
Data Migration 1 3,000.00 USD 3,000.00
Staff Training 2 1,500.00 USD 3,000.00

Subtotal: 11,000.00 USD
Total Due (One-Time): 11,000.00 USD
Payment Due: Net 15 days
Late Fee: 2% per month on overdue amounts
Payment Method: Wire Transfer or ACH
`

func TestExtractOneTimeAgreement(t *testing.T) {
	pages := []contract.Page{{Number: 1, Text: oneTimeAgreement}}

	inv, oneTime := Extract(pages, slog.Default())
	require.True(t, oneTime)

	fields := Merge(map[string]contract.Field{}, inv)
	MarkOneTime(fields)

	total := fields["total_amount"]
	v, _ := total.Value.Number()
	assert.InDelta(t, 11000, v, 0.001)
	assert.InDelta(t, 0.95, total.Confidence, 0.0001)

	cv, _ := fields["contract_value"].Value.Number()
	assert.InDelta(t, 11000, cv, 0.001)
	currency, _ := fields["currency"].Value.String()
	assert.Equal(t, "USD", currency)

	netDays, _ := fields["payment_net_days"].Value.Number()
	assert.Equal(t, float64(15), netDays)

	items, isItems := fields["line_items"].Value.Items()
	require.True(t, isItems)
	require.Len(t, items, 3)
	assert.Equal(t, "System Setup", items[0].Description)
	assert.Equal(t, "Staff Training", items[2].Description)
	assert.InDelta(t, 1500, items[2].UnitPrice, 0.001)
	assert.InDelta(t, 3000, items[2].LineTotal, 0.001)

	methods, _ := fields["payment_methods"].Value.List()
	assert.Equal(t, []string{"Wire Transfer", "ACH"}, methods)

	extras, isMap := fields["additional_fields"].Value.Map()
	require.True(t, isMap)
	rate, _ := extras["late_fee_rate"].Value.Number()
	assert.InDelta(t, 0.02, rate, 0.0001)
	cadence, _ := extras["late_fee_cadence"].Value.String()
	assert.Equal(t, "monthly", cadence)
	sub, _ := extras["subtotal"].Value.Number()
	assert.InDelta(t, 11000, sub, 0.001)

	for _, name := range []string{"auto_renewal", "renewal_term", "notice_period", "termination_date", "billing_frequency"} {
		field, ok := fields[name]
		require.True(t, ok, name)
		assert.True(t, field.Value.IsNotApplicable(), name)
		assert.InDelta(t, 0.95, field.Confidence, 0.0001)
		assert.Equal(t, contract.SourceDerived, field.Evidence.Source)
	}
}

func TestExtractNoPages(t *testing.T) {
	fields, oneTime := Extract(nil, slog.Default())
	assert.Nil(t, fields)
	assert.False(t, oneTime)

	// A whitespace-only page still gets its page marker, so the pipeline
	// runs and yields no fields rather than short-circuiting.
	fields, oneTime = Extract([]contract.Page{{Number: 1, Text: "   "}}, slog.Default())
	assert.Empty(t, fields)
	assert.False(t, oneTime)
}

func TestMergeStandardWins(t *testing.T) {
	std := map[string]contract.Field{
		"contract_value": {Value: contract.NumberValue(50000), Confidence: 0.9},
	}
	inv := map[string]contract.Field{
		"contract_value": {Value: contract.NumberValue(11000), Confidence: 0.9},
		"currency":       {Value: contract.StringValue("EUR"), Confidence: 0.9},
	}

	merged := Merge(std, inv)

	v, _ := merged["contract_value"].Value.Number()
	assert.InDelta(t, 50000, v, 0.001)

	c, _ := merged["currency"].Value.String()
	assert.Equal(t, "EUR", c)
}

func TestMergeTotalDueOverrides(t *testing.T) {
	std := map[string]contract.Field{
		"total_amount": {Value: contract.NumberValue(9999), Confidence: 0.7},
	}
	inv := map[string]contract.Field{
		"total_due_amount": {Value: contract.NumberValue(11000), Confidence: 0.95},
	}

	merged := Merge(std, inv)

	v, _ := merged["total_amount"].Value.Number()
	assert.InDelta(t, 11000, v, 0.001)
	assert.InDelta(t, 0.95, merged["total_amount"].Confidence, 0.0001)
}

func TestMergeFoldsExtras(t *testing.T) {
	inv := map[string]contract.Field{
		"payment_net_days": {Value: contract.NumberValue(30), Confidence: 0.9},
		"late_fee_rate":    {Value: contract.NumberValue(0.015), Confidence: 0.85},
		"subtotal":         {Value: contract.NumberValue(5000), Confidence: 0.8},
	}

	merged := Merge(map[string]contract.Field{}, inv)

	_, topLevel := merged["late_fee_rate"]
	assert.False(t, topLevel)

	extras, ok := merged["additional_fields"].Value.Map()
	require.True(t, ok)
	assert.Contains(t, extras, "late_fee_rate")
	assert.Contains(t, extras, "subtotal")
	assert.NotContains(t, extras, "payment_net_days")
	assert.InDelta(t, 0.8, merged["additional_fields"].Confidence, 0.0001)
}

func TestMergeNoExtrasNoAdditionalFields(t *testing.T) {
	inv := map[string]contract.Field{
		"payment_net_days": {Value: contract.NumberValue(30), Confidence: 0.9},
	}
	merged := Merge(map[string]contract.Field{}, inv)
	_, ok := merged["additional_fields"]
	assert.False(t, ok)
}

func TestDetectOneTime(t *testing.T) {
	assert.True(t, DetectOneTime("This is a one-time engagement."))
	assert.True(t, DetectOneTime("Total Due (One-Time): 5,000.00 USD"))
	assert.True(t, DetectOneTime("System setup fee of $2,000 applies."))
	assert.False(t, DetectOneTime("This agreement renews annually with monthly billing."))
}

func TestMarkOneTimeLeavesPresentFields(t *testing.T) {
	fields := map[string]contract.Field{
		"notice_period": {Value: contract.StringValue("60"), Confidence: 0.7},
	}
	MarkOneTime(fields)

	np, _ := fields["notice_period"].Value.String()
	assert.Equal(t, "60", np)

	assert.True(t, fields["auto_renewal"].Value.IsNotApplicable())
	assert.True(t, fields["billing_frequency"].Value.IsNotApplicable())
}
