// Package pricedash reconciles product pricing and descriptions across a
// spreadsheet source of truth, an inventory API, and a storefront API. It
// joins the two source sheets by SKU, derives selling prices under a
// selectable pricing rule with manual-override precedence, and propagates
// the results in sequential batches with per-item failure tracking.
package pricedash

import (
	"context"
	"sync"

	"github.com/jumpingbeanltd/price-dashboard/pkg/batch"
	"github.com/jumpingbeanltd/price-dashboard/pkg/diff"
	"github.com/jumpingbeanltd/price-dashboard/pkg/errors"
	"github.com/jumpingbeanltd/price-dashboard/pkg/logging"
	"github.com/jumpingbeanltd/price-dashboard/pkg/pricing"
	"github.com/jumpingbeanltd/price-dashboard/pkg/reconcile"
	"github.com/jumpingbeanltd/price-dashboard/pkg/rewrite"
	"github.com/jumpingbeanltd/price-dashboard/pkg/sheet"
	"github.com/jumpingbeanltd/price-dashboard/pkg/store"
)

// ruleKey is the selection-store key holding the encoded pricing rule.
const ruleKey = "rule"

// Quote is the priced view of one reconciled record.
type Quote struct {
	SKU         string
	DisplayName string
	Value       *float64
	Overridden  bool
	Profit      *float64
	Diagnostics pricing.Diagnostics
}

// Dashboard is the orchestration layer over the pure reconciliation and
// pricing core. It owns the ephemeral record state and serializes batch
// operations so two batches never race over the same keys.
type Dashboard struct {
	mu        sync.RWMutex
	config    *config
	overrides *store.Overrides

	records       []reconcile.Merged
	primaryKeys   []string
	secondaryKeys []string
	fxRate        *float64
	fxDate        string

	// pushMu serializes user-triggered batch operations.
	pushMu sync.Mutex
}

// New creates a Dashboard with the given options.
func New(opts ...Option) (*Dashboard, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	if cfg.grids == nil {
		return nil, errors.NewConfigError("dashboard", "a grid source is required", nil)
	}

	return &Dashboard{
		config:    cfg,
		overrides: store.NewOverrides(cfg.selections),
	}, nil
}

// Refresh fetches both source sheets concurrently, parses them, and
// recomputes the merged records. The two fetches are independent reads
// joined afterwards: if either fails, Refresh fails and the previous
// records are kept. A rate-source failure does not fail the refresh; it
// leaves the rate unset so prices derive to nil.
func (d *Dashboard) Refresh(ctx context.Context) error {
	var (
		wg                       sync.WaitGroup
		primaryGrid              sheet.Grid
		secondaryGrid            sheet.Grid
		primaryErr, secondaryErr error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		primaryGrid, primaryErr = d.config.grids.Values(ctx, d.config.primaryRange)
	}()
	go func() {
		defer wg.Done()
		secondaryGrid, secondaryErr = d.config.grids.Values(ctx, d.config.secondaryRange)
	}()
	wg.Wait()

	if primaryErr != nil {
		return primaryErr
	}
	if secondaryErr != nil {
		return secondaryErr
	}

	primary := sheet.Parse(primaryGrid, sheet.PrimarySchema())
	secondary := sheet.Parse(secondaryGrid, sheet.SecondarySchema())
	merged := reconcile.Merge(primary, secondary)

	var (
		rate *float64
		date string
	)
	if d.config.rates != nil {
		quote, err := d.config.rates.Rate(ctx, d.config.rateFrom, d.config.rateTo)
		if err != nil {
			logging.Ctx(ctx).Warn().
				Err(err).
				Str("pair", d.config.rateFrom+"/"+d.config.rateTo).
				Msg("Rate fetch failed, prices will be unavailable")
		} else {
			rate = &quote.Rate
			date = quote.Date
		}
	}

	d.mu.Lock()
	d.records = merged
	d.primaryKeys = reconcile.Keys(primary)
	d.secondaryKeys = reconcile.Keys(secondary)
	d.fxRate = rate
	d.fxDate = date
	d.mu.Unlock()

	logging.Ctx(ctx).Info().
		Int("primary", len(primary)).
		Int("secondary", len(secondary)).
		Int("merged", len(merged)).
		Msg("Refreshed source records")

	return nil
}

// Records returns a copy of the current merged records.
func (d *Dashboard) Records() []reconcile.Merged {
	d.mu.RLock()
	defer d.mu.RUnlock()
	records := make([]reconcile.Merged, len(d.records))
	copy(records, d.records)
	return records
}

// FXRate returns the conversion rate from the last refresh and the date it
// was published, or nil when no rate is available.
func (d *Dashboard) FXRate() (*float64, string) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.fxRate, d.fxDate
}

// Rule returns the persisted pricing-rule selection, defaulting to the
// converted secondary cost.
func (d *Dashboard) Rule() pricing.Rule {
	raw, ok, err := d.config.selections.Get(ruleKey)
	if err != nil || !ok {
		return pricing.SecondaryConverted()
	}
	rule, err := pricing.ParseRule(raw)
	if err != nil {
		return pricing.SecondaryConverted()
	}
	return rule
}

// SetRule persists a new pricing-rule selection. Changing the markup
// percentage invalidates stored overrides and clears them; switching
// between rules with unchanged parameters keeps overrides intact.
func (d *Dashboard) SetRule(rule pricing.Rule) error {
	previous := d.Rule()

	if err := d.config.selections.Set(ruleKey, rule.String()); err != nil {
		return err
	}

	if previous.Kind == pricing.KindMarkupPercent &&
		rule.Kind == pricing.KindMarkupPercent &&
		previous.Percent != rule.Percent {
		logging.Info().
			Float64("from", previous.Percent).
			Float64("to", rule.Percent).
			Msg("Markup changed, clearing overrides")
		return d.overrides.ClearAll()
	}
	return nil
}

// SetOverride stores a manual price override for a SKU. Zero is a valid
// override value.
func (d *Dashboard) SetOverride(sku string, value float64) error {
	return d.overrides.Set(sku, value)
}

// ClearOverride removes the manual override for a SKU.
func (d *Dashboard) ClearOverride(sku string) error {
	return d.overrides.Clear(sku)
}

// Quotes derives a price for every merged record under the selected rule,
// with manual overrides taking precedence over computed values.
func (d *Dashboard) Quotes() ([]Quote, error) {
	d.mu.RLock()
	records := d.records
	rate := d.fxRate
	d.mu.RUnlock()

	rule := d.Rule()

	quotes := make([]Quote, 0, len(records))
	for _, rec := range records {
		q, err := d.quote(rec, rule, rate)
		if err != nil {
			return nil, err
		}
		quotes = append(quotes, q)
	}
	return quotes, nil
}

// quote prices one record, applying override precedence.
func (d *Dashboard) quote(rec reconcile.Merged, rule pricing.Rule, rate *float64) (Quote, error) {
	q := Quote{
		SKU:         rec.SKU,
		DisplayName: rec.DisplayName,
		Diagnostics: pricing.Diagnose(rec),
	}

	if override, ok, err := d.overrides.Get(rec.SKU); err != nil {
		return Quote{}, err
	} else if ok {
		q.Value = &override
		q.Overridden = true
	} else {
		q.Value = pricing.Derive(rec, rule, rate, d.config.roundingIncrement)
	}

	q.Profit = pricing.Profit(q.Value, rec.PrimaryCost, rate)
	return q, nil
}

// PushPrices propagates the derived cost and selling price for each
// requested SKU to the inventory sink, one item at a time. A session token
// is acquired once and reused for every item; failure to acquire it aborts
// the batch before any item is attempted.
func (d *Dashboard) PushPrices(ctx context.Context, skus []string) ([]batch.Result, error) {
	if d.config.inventory == nil {
		return nil, errors.NewConfigError("dashboard", "no inventory sink configured", nil)
	}

	d.pushMu.Lock()
	defer d.pushMu.Unlock()

	if len(skus) == 0 {
		return []batch.Result{}, nil
	}

	session, err := d.config.inventory.Session(ctx)
	if err != nil {
		return nil, errors.NewBatchError("inventory", "acquiring session", err)
	}

	byKey, rate := d.snapshot()
	rule := d.Rule()

	results := batch.Propagate(ctx, skus, identity, func(ctx context.Context, sku string) error {
		rec, ok := byKey[sku]
		if !ok {
			return errors.NewNotFoundError("record", sku)
		}

		q, err := d.quote(rec, rule, rate)
		if err != nil {
			return err
		}
		if q.Value == nil {
			return errors.NewValidationError("price", nil, "no derived price for "+sku)
		}

		cost := pricing.Convert(rec.PrimaryCost, rate)
		if cost == nil {
			return errors.NewValidationError("cost", nil, "no conversion rate for cost of "+sku)
		}

		return session.UpdateItem(ctx, sku, *cost, *q.Value)
	})

	ok, failed := batch.Tally(results)
	logging.Ctx(ctx).Info().
		Int("succeeded", ok).
		Int("failed", failed).
		Msg("Pushed prices to inventory")

	return results, nil
}

// PushStock propagates the primary sheet's stock quantity for each
// requested SKU to the storefront sink.
func (d *Dashboard) PushStock(ctx context.Context, skus []string) ([]batch.Result, error) {
	if d.config.storefront == nil {
		return nil, errors.NewConfigError("dashboard", "no storefront sink configured", nil)
	}

	d.pushMu.Lock()
	defer d.pushMu.Unlock()

	byKey, _ := d.snapshot()

	results := batch.Propagate(ctx, skus, identity, func(ctx context.Context, sku string) error {
		rec, ok := byKey[sku]
		if !ok {
			return errors.NewNotFoundError("record", sku)
		}
		if rec.Quantity == nil {
			return errors.NewValidationError("quantity", nil, "no stock quantity for "+sku)
		}
		return d.config.storefront.UpdateStock(ctx, sku, *rec.Quantity)
	})

	ok, failed := batch.Tally(results)
	logging.Ctx(ctx).Info().
		Int("succeeded", ok).
		Int("failed", failed).
		Msg("Pushed stock to storefront")

	return results, nil
}

// RewriteCopy rewrites the product copy for each requested SKU through the
// text-generation capability and writes the result to the storefront sink.
// Empty or unparseable generator output is a recoverable per-item failure.
func (d *Dashboard) RewriteCopy(ctx context.Context, skus []string) ([]batch.Result, error) {
	if d.config.storefront == nil {
		return nil, errors.NewConfigError("dashboard", "no storefront sink configured", nil)
	}
	if d.config.generator == nil {
		return nil, errors.NewConfigError("dashboard", "no text generator configured", nil)
	}

	d.pushMu.Lock()
	defer d.pushMu.Unlock()

	byKey, _ := d.snapshot()
	rewriter := rewrite.New(d.config.generator)

	results := batch.Propagate(ctx, skus, identity, func(ctx context.Context, sku string) error {
		rec, ok := byKey[sku]
		if !ok {
			return errors.NewNotFoundError("record", sku)
		}

		generated, err := rewriter.Rewrite(ctx, rec.DisplayName, rec.DisplayName)
		if err != nil {
			return err
		}
		return d.config.storefront.UpdateDescription(ctx, sku, generated.HTML(), generated.HTMLTitle, generated.MetaDescription)
	})

	ok, failed := batch.Tally(results)
	logging.Ctx(ctx).Info().
		Int("succeeded", ok).
		Int("failed", failed).
		Msg("Rewrote storefront copy")

	return results, nil
}

// Diff reports the key-population difference between the two sources from
// the last refresh. Diagnostic only; never on the write path.
func (d *Dashboard) Diff() *diff.Report {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return diff.Keys(d.primaryKeys, d.secondaryKeys)
}

// snapshot returns the current records indexed by SKU plus the rate, under
// a single read lock.
func (d *Dashboard) snapshot() (map[string]reconcile.Merged, *float64) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	byKey := make(map[string]reconcile.Merged, len(d.records))
	for _, rec := range d.records {
		byKey[rec.SKU] = rec
	}
	return byKey, d.fxRate
}

func identity(s string) string { return s }
