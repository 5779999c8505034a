package invoice

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractPaymentTermsNetDays(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		days       float64
		confidence float64
	}{
		{"labeled", "Payment Due: Net 15 days\n", 15, 0.9},
		{"from invoice", "All amounts net 30 days from invoice date.\n", 30, 0.9},
		{"bare", "Terms: Net 45.\n", 45, 0.8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields := ExtractPaymentTerms(tt.text, pagesOf(tt.text))

			nd, ok := fields["payment_net_days"]
			require.True(t, ok)
			v, isNum := nd.Value.Number()
			require.True(t, isNum)
			assert.Equal(t, tt.days, v)
			assert.InDelta(t, tt.confidence, nd.Confidence, 0.0001)

			due, _ := fields["payment_due_terms"].Value.String()
			assert.Contains(t, due, "Net")
			assert.Contains(t, due, "days")

			_, hasRaw := fields["payment_terms"]
			assert.True(t, hasRaw)
		})
	}
}

func TestExtractPaymentTermsLateFeeRate(t *testing.T) {
	text := "Payment Due: Net 15 days\nLate Fee: 2% per month on overdue amounts\n"
	fields := ExtractPaymentTerms(text, pagesOf(text))

	rate, ok := fields["late_fee_rate"]
	require.True(t, ok)
	v, _ := rate.Value.Number()
	assert.InDelta(t, 0.02, v, 0.0001)
	assert.InDelta(t, 0.9, rate.Confidence, 0.0001)

	cadence, ok := fields["late_fee_cadence"]
	require.True(t, ok)
	c, _ := cadence.Value.String()
	assert.Equal(t, "monthly", c)

	// The cadence must never leak into a billing schedule.
	_, hasBilling := fields["billing_frequency"]
	assert.False(t, hasBilling)
}

func TestExtractPaymentTermsUnlabeledRate(t *testing.T) {
	text := "Overdue balances accrue 1.5% per month on late invoices.\n"
	fields := ExtractPaymentTerms(text, pagesOf(text))

	rate := fields["late_fee_rate"]
	v, _ := rate.Value.Number()
	assert.InDelta(t, 0.015, v, 0.0001)
	assert.InDelta(t, 0.85, rate.Confidence, 0.0001)
}

func TestExtractPaymentTermsFlatLateFee(t *testing.T) {
	text := "Late Fee: $250.00 per occurrence\n"
	fields := ExtractPaymentTerms(text, pagesOf(text))

	_, hasRate := fields["late_fee_rate"]
	assert.False(t, hasRate)

	amount, ok := fields["late_fee_amount"]
	require.True(t, ok)
	v, _ := amount.Value.Number()
	assert.InDelta(t, 250, v, 0.001)
	assert.InDelta(t, 0.8, amount.Confidence, 0.0001)
}

func TestExtractPaymentTermsRateSuppressesFlatFee(t *testing.T) {
	// A percentage late fee takes priority; the flat amount path must not
	// also fire on the same sentence.
	text := "Late Fee: 2% per month\n"
	fields := ExtractPaymentTerms(text, pagesOf(text))

	_, hasRate := fields["late_fee_rate"]
	assert.True(t, hasRate)
	_, hasAmount := fields["late_fee_amount"]
	assert.False(t, hasAmount)
}

func TestExtractPaymentMethods(t *testing.T) {
	text := "Payment Method: Wire Transfer or ACH\n"
	fields := ExtractPaymentMethods(text, pagesOf(text))

	methods, ok := fields["payment_methods"]
	require.True(t, ok)
	list, isList := methods.Value.List()
	require.True(t, isList)
	assert.Equal(t, []string{"Wire Transfer", "ACH"}, list)
	assert.InDelta(t, 0.9, methods.Confidence, 0.0001)
}

func TestExtractPaymentMethodsDeduplicates(t *testing.T) {
	text := "Payment Method: wire transfer, credit card, Wire\n"
	fields := ExtractPaymentMethods(text, pagesOf(text))

	list, _ := fields["payment_methods"].Value.List()
	assert.Equal(t, []string{"Wire Transfer", "Credit Card"}, list)
}

func TestExtractPaymentMethodsAbsent(t *testing.T) {
	text := "No remittance instructions appear in this agreement.\n"
	fields := ExtractPaymentMethods(text, pagesOf(text))
	assert.Empty(t, fields)
}
