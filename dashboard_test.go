package pricedash

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jumpingbeanltd/price-dashboard/pkg/errors"
	"github.com/jumpingbeanltd/price-dashboard/pkg/pricing"
	"github.com/jumpingbeanltd/price-dashboard/pkg/sheet"
)

// stubGrids serves canned grids per range name.
type stubGrids struct {
	grids map[string]sheet.Grid
	errs  map[string]error
	calls []string
}

func (s *stubGrids) Values(_ context.Context, rangeName string) (sheet.Grid, error) {
	s.calls = append(s.calls, rangeName)
	if err, ok := s.errs[rangeName]; ok {
		return nil, err
	}
	return s.grids[rangeName], nil
}

type stubRates struct {
	rate float64
	err  error
}

func (s *stubRates) Rate(context.Context, string, string) (*RateQuote, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &RateQuote{Rate: s.rate, Date: "2026-08-28"}, nil
}

// stubInventory records every item written through a single session.
type stubInventory struct {
	sessionErr error
	sessions   int
	itemErrs   map[string]error
	written    []string
}

func (s *stubInventory) Session(context.Context) (InventorySession, error) {
	if s.sessionErr != nil {
		return nil, s.sessionErr
	}
	s.sessions++
	return &stubSession{sink: s}, nil
}

type stubSession struct {
	sink *stubInventory
}

func (s *stubSession) UpdateItem(_ context.Context, sku string, _, _ float64) error {
	if err, ok := s.sink.itemErrs[sku]; ok {
		return err
	}
	s.sink.written = append(s.sink.written, sku)
	return nil
}

type stubStorefront struct {
	stock        map[string]int
	descriptions map[string]string
}

func (s *stubStorefront) UpdateStock(_ context.Context, sku string, quantity int) error {
	if s.stock == nil {
		s.stock = map[string]int{}
	}
	s.stock[sku] = quantity
	return nil
}

func (s *stubStorefront) UpdateDescription(_ context.Context, sku, html, _, _ string) error {
	if s.descriptions == nil {
		s.descriptions = map[string]string{}
	}
	s.descriptions[sku] = html
	return nil
}

type stubGenerator struct {
	response string
	err      error
}

func (s *stubGenerator) Generate(context.Context, string) (string, error) {
	return s.response, s.err
}

func testGrids() *stubGrids {
	return &stubGrids{grids: map[string]sheet.Grid{
		"Master!A:Z": {
			{"Product ID", "Description", "Cost", "Quantity"},
			{"SKU-A", "Widget A", "10.00", "5"},
			{"SKU-B", "Widget B", "20.00", "3"},
			{"SKU-C", "Widget C", "30.00", ""},
		},
		"Trade!A:Z": {
			{"SKU", "Trade Price"},
			{"SKU-A", "12.00"},
			{"SKU-B", "24.00"},
			{"SKU-D", "48.00"},
		},
	}}
}

func newTestDashboard(t *testing.T, opts ...Option) *Dashboard {
	t.Helper()
	base := []Option{
		WithGridSource(testGrids()),
		WithRateSource(&stubRates{rate: 1.2}),
		WithRoundingIncrement(0.5),
	}
	d, err := New(append(base, opts...)...)
	require.NoError(t, err)
	require.NoError(t, d.Refresh(context.Background()))
	return d
}

func TestNewRequiresGridSource(t *testing.T) {
	_, err := New()
	require.Error(t, err)
}

func TestRefreshMergesBothSheets(t *testing.T) {
	d := newTestDashboard(t)

	records := d.Records()
	require.Len(t, records, 2)
	assert.Equal(t, "SKU-A", records[0].SKU)
	assert.Equal(t, 10.0, records[0].PrimaryCost)
	assert.Equal(t, 12.0, records[0].SecondaryCost)
	assert.Equal(t, "SKU-B", records[1].SKU)

	rate, date := d.FXRate()
	require.NotNil(t, rate)
	assert.Equal(t, 1.2, *rate)
	assert.Equal(t, "2026-08-28", date)
}

func TestRefreshFailsWhenEitherFetchFails(t *testing.T) {
	grids := testGrids()
	d := newTestDashboard(t, WithGridSource(grids))
	require.Len(t, d.Records(), 2)

	grids.errs = map[string]error{
		"Trade!A:Z": errors.NewAPIError("sheets", 500, "backend error"),
	}
	err := d.Refresh(context.Background())
	require.Error(t, err)

	// Previous records survive a failed refresh.
	assert.Len(t, d.Records(), 2)
}

func TestRefreshToleratesRateFailure(t *testing.T) {
	d := newTestDashboard(t, WithRateSource(&stubRates{err: errors.NewAPIError("fx", 503, "down")}))

	rate, _ := d.FXRate()
	assert.Nil(t, rate)

	quotes, err := d.Quotes()
	require.NoError(t, err)
	for _, q := range quotes {
		assert.Nil(t, q.Value)
	}
}

func TestQuotesUnderDefaultRule(t *testing.T) {
	d := newTestDashboard(t)

	quotes, err := d.Quotes()
	require.NoError(t, err)
	require.Len(t, quotes, 2)

	// 12.00 / 1.2 = 10.00, already on the 0.50 grid.
	require.NotNil(t, quotes[0].Value)
	assert.Equal(t, 10.0, *quotes[0].Value)
	assert.False(t, quotes[0].Overridden)

	// Profit against the converted primary cost: 10.00 - 10/1.2.
	require.NotNil(t, quotes[0].Profit)
	assert.InDelta(t, 10.0-10.0/1.2, *quotes[0].Profit, 1e-9)
}

func TestQuotesOverridePrecedence(t *testing.T) {
	d := newTestDashboard(t)

	require.NoError(t, d.SetOverride("SKU-A", 42.0))

	quotes, err := d.Quotes()
	require.NoError(t, err)
	require.NotNil(t, quotes[0].Value)
	assert.Equal(t, 42.0, *quotes[0].Value)
	assert.True(t, quotes[0].Overridden)
	assert.False(t, quotes[1].Overridden)
}

func TestQuotesZeroOverrideIsValid(t *testing.T) {
	d := newTestDashboard(t)

	require.NoError(t, d.SetOverride("SKU-A", 0))

	quotes, err := d.Quotes()
	require.NoError(t, err)
	require.NotNil(t, quotes[0].Value)
	assert.Equal(t, 0.0, *quotes[0].Value)
	assert.True(t, quotes[0].Overridden)
}

func TestClearOverrideRestoresDerivedPrice(t *testing.T) {
	d := newTestDashboard(t)

	require.NoError(t, d.SetOverride("SKU-A", 42.0))
	require.NoError(t, d.ClearOverride("SKU-A"))

	quotes, err := d.Quotes()
	require.NoError(t, err)
	require.NotNil(t, quotes[0].Value)
	assert.Equal(t, 10.0, *quotes[0].Value)
	assert.False(t, quotes[0].Overridden)
}

func TestSetRulePersistsSelection(t *testing.T) {
	d := newTestDashboard(t)

	assert.Equal(t, pricing.SecondaryConverted(), d.Rule())

	require.NoError(t, d.SetRule(pricing.MarkupPercent(20)))
	assert.Equal(t, pricing.MarkupPercent(20), d.Rule())

	quotes, err := d.Quotes()
	require.NoError(t, err)
	// 12.00 / 1.2 * 1.2 = 12.00.
	require.NotNil(t, quotes[0].Value)
	assert.Equal(t, 12.0, *quotes[0].Value)
}

func TestMarkupChangeClearsOverrides(t *testing.T) {
	d := newTestDashboard(t)

	require.NoError(t, d.SetRule(pricing.MarkupPercent(20)))
	require.NoError(t, d.SetOverride("SKU-A", 42.0))

	// Switching rule kind with no parameter change keeps the override.
	require.NoError(t, d.SetRule(pricing.SecondaryConverted()))
	require.NoError(t, d.SetRule(pricing.MarkupPercent(20)))
	quotes, err := d.Quotes()
	require.NoError(t, err)
	assert.True(t, quotes[0].Overridden)

	// Changing the percentage invalidates stored overrides.
	require.NoError(t, d.SetRule(pricing.MarkupPercent(25)))
	quotes, err = d.Quotes()
	require.NoError(t, err)
	assert.False(t, quotes[0].Overridden)
}

func TestPushPricesSingleSession(t *testing.T) {
	sink := &stubInventory{}
	d := newTestDashboard(t, WithInventorySink(sink))

	results, err := d.PushPrices(context.Background(), []string{"SKU-A", "SKU-B"})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.True(t, results[0].Success)
	assert.True(t, results[1].Success)

	assert.Equal(t, 1, sink.sessions)
	assert.Equal(t, []string{"SKU-A", "SKU-B"}, sink.written)
}

func TestPushPricesPerItemFailureContinues(t *testing.T) {
	sink := &stubInventory{itemErrs: map[string]error{
		"SKU-A": errors.NewAPIError("inventory", 500, "write failed"),
	}}
	d := newTestDashboard(t, WithInventorySink(sink))

	results, err := d.PushPrices(context.Background(), []string{"SKU-A", "SKU-B"})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.False(t, results[0].Success)
	assert.NotEmpty(t, results[0].Error)
	assert.True(t, results[1].Success)
	assert.Equal(t, []string{"SKU-B"}, sink.written)
}

func TestPushPricesSessionFailureAbortsBatch(t *testing.T) {
	sink := &stubInventory{
		sessionErr: errors.NewAuthenticationError("inventory", "oauth", "bad credentials", nil),
	}
	d := newTestDashboard(t, WithInventorySink(sink))

	results, err := d.PushPrices(context.Background(), []string{"SKU-A", "SKU-B"})
	require.Error(t, err)
	assert.True(t, errors.IsBatchAbort(err))
	assert.Nil(t, results)
	assert.Empty(t, sink.written)
}

func TestPushPricesUnknownSKUIsPerItemFailure(t *testing.T) {
	sink := &stubInventory{}
	d := newTestDashboard(t, WithInventorySink(sink))

	results, err := d.PushPrices(context.Background(), []string{"SKU-X", "SKU-A"})
	require.NoError(t, err)
	assert.False(t, results[0].Success)
	assert.True(t, results[1].Success)
}

func TestPushPricesEmptyBatchNeverContactsSink(t *testing.T) {
	sink := &stubInventory{
		sessionErr: errors.NewAuthenticationError("inventory", "oauth", "unreachable", nil),
	}
	d := newTestDashboard(t, WithInventorySink(sink))

	results, err := d.PushPrices(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestPushStock(t *testing.T) {
	sink := &stubStorefront{}
	d := newTestDashboard(t, WithStorefrontSink(sink))

	results, err := d.PushStock(context.Background(), []string{"SKU-A", "SKU-C"})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.True(t, results[0].Success)
	assert.Equal(t, 5, sink.stock["SKU-A"])

	// SKU-C never merged (no trade price), so it fails per-item.
	assert.False(t, results[1].Success)
}

func TestRewriteCopy(t *testing.T) {
	sink := &stubStorefront{}
	gen := &stubGenerator{response: "```json\n" +
		`{"rewrittenDescription":"<p>Better copy</p>","rewrittenProductUses":"<p>Uses</p>","htmlTitle":"Widget A","metaDescription":"A widget."}` +
		"\n```"}
	d := newTestDashboard(t, WithStorefrontSink(sink), WithGenerator(gen))

	results, err := d.RewriteCopy(context.Background(), []string{"SKU-A"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.True(t, results[0].Success)
	assert.Contains(t, sink.descriptions["SKU-A"], "Better copy")
}

func TestRewriteCopyEmptyGenerationIsPerItemFailure(t *testing.T) {
	sink := &stubStorefront{}
	d := newTestDashboard(t, WithStorefrontSink(sink), WithGenerator(&stubGenerator{response: ""}))

	results, err := d.RewriteCopy(context.Background(), []string{"SKU-A", "SKU-B"})
	require.NoError(t, err)
	assert.False(t, results[0].Success)
	assert.False(t, results[1].Success)
	assert.Empty(t, sink.descriptions)
}

func TestDiffReportsKeyPopulations(t *testing.T) {
	d := newTestDashboard(t)

	report := d.Diff()
	assert.Equal(t, []string{"SKU-C"}, report.OnlyInA)
	assert.Equal(t, []string{"SKU-D"}, report.OnlyInB)
	assert.Equal(t, 2, report.IntersectionCount)
}
