package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jumpingbeanltd/price-dashboard/pkg/reconcile"
)

func f(v float64) *float64 { return &v }

func merged(primary, secondary float64) reconcile.Merged {
	return reconcile.Merged{SKU: "A", PrimaryCost: primary, SecondaryCost: secondary}
}

func TestDeriveSecondaryConverted(t *testing.T) {
	got := Derive(merged(10, 12), SecondaryConverted(), f(1.2), 0)
	require.NotNil(t, got)
	assert.InDelta(t, 10.00, *got, 1e-9)
}

func TestDeriveMarkupPercent(t *testing.T) {
	got := Derive(merged(10, 12), MarkupPercent(20), f(1.2), 0)
	require.NotNil(t, got)
	assert.InDelta(t, 12.00, *got, 1e-9)
}

func TestDeriveMissingOrZeroRate(t *testing.T) {
	rules := []Rule{SecondaryConverted(), MarkupPercent(20)}
	for _, rule := range rules {
		assert.Nil(t, Derive(merged(10, 12), rule, nil, 0), rule.String())
		assert.Nil(t, Derive(merged(10, 12), rule, f(0), 0), rule.String())
	}
}

func TestDeriveIsPure(t *testing.T) {
	rec := merged(10, 12)
	first := Derive(rec, MarkupPercent(15), f(1.1), 0.5)
	second := Derive(rec, MarkupPercent(15), f(1.1), 0.5)
	require.NotNil(t, first)
	require.NotNil(t, second)
	assert.Equal(t, *first, *second)
}

func TestDeriveZeroCost(t *testing.T) {
	got := Derive(merged(10, 0), MarkupPercent(20), f(1.2), 0)
	require.NotNil(t, got)
	assert.Equal(t, 0.0, *got)
}

func TestRoundToIncrement(t *testing.T) {
	tests := []struct {
		name string
		v    float64
		inc  float64
		want float64
	}{
		{"round down", 10.23, 0.50, 10.00},
		{"round up", 10.26, 0.50, 10.50},
		{"no increment", 10.23, 0, 10.23},
		{"negative increment ignored", 10.23, -1, 10.23},
		{"increment larger than price", 3.20, 5, 5},
		{"half away from zero", 10.25, 0.50, 10.50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, RoundToIncrement(tt.v, tt.inc), 1e-9)
		})
	}
}

func TestRoundToIncrementIdempotent(t *testing.T) {
	for _, v := range []float64{10.23, 10.26, 0.01, 99.99} {
		once := RoundToIncrement(v, 0.5)
		twice := RoundToIncrement(once, 0.5)
		assert.Equal(t, once, twice)
	}
}

func TestDeriveWithRounding(t *testing.T) {
	// 12 / 1.2 * 1.2 = 12.00, rounded to 0.5 stays 12.00
	got := Derive(merged(10, 12), MarkupPercent(20), f(1.2), 0.5)
	require.NotNil(t, got)
	assert.InDelta(t, 12.00, *got, 1e-9)

	// 10.23 rounds down to 10.00 at a 0.50 increment
	got = Derive(merged(10, 10.23), SecondaryConverted(), f(1), 0.5)
	require.NotNil(t, got)
	assert.InDelta(t, 10.00, *got, 1e-9)
}

func TestConvert(t *testing.T) {
	assert.Nil(t, Convert(12, nil))
	assert.Nil(t, Convert(12, f(0)))

	got := Convert(12, f(1.2))
	require.NotNil(t, got)
	assert.InDelta(t, 10, *got, 1e-9)
}

func TestProfit(t *testing.T) {
	selling := f(12.0)

	got := Profit(selling, 10, f(1.25))
	require.NotNil(t, got)
	assert.InDelta(t, 4.0, *got, 1e-9) // 12 - 10/1.25

	assert.Nil(t, Profit(nil, 10, f(1.25)))
	assert.Nil(t, Profit(selling, 10, nil))
	assert.Nil(t, Profit(selling, 10, f(0)))
}

func TestDiagnose(t *testing.T) {
	d := Diagnose(merged(10, 12))
	assert.InDelta(t, 2.0, d.Diff, 1e-9)
	require.NotNil(t, d.MarkupPercent)
	assert.InDelta(t, 20.0, *d.MarkupPercent, 1e-9)
}

func TestDiagnoseNegativeMarkup(t *testing.T) {
	d := Diagnose(merged(10, 8))
	assert.InDelta(t, -2.0, d.Diff, 1e-9)
	require.NotNil(t, d.MarkupPercent)
	assert.InDelta(t, -20.0, *d.MarkupPercent, 1e-9)
}

func TestDiagnoseZeroPrimaryCost(t *testing.T) {
	d := Diagnose(merged(0, 12))
	assert.InDelta(t, 12.0, d.Diff, 1e-9)
	assert.Nil(t, d.MarkupPercent)
}

func TestRuleRoundTrip(t *testing.T) {
	for _, rule := range []Rule{SecondaryConverted(), MarkupPercent(20), MarkupPercent(12.5)} {
		parsed, err := ParseRule(rule.String())
		require.NoError(t, err)
		assert.Equal(t, rule, parsed)
	}
}

func TestParseRuleInvalid(t *testing.T) {
	_, err := ParseRule("bogus")
	assert.Error(t, err)

	_, err = ParseRule("markup_percent:abc")
	assert.Error(t, err)
}
