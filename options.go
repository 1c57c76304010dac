package pricedash

import (
	"github.com/jumpingbeanltd/price-dashboard/pkg/rewrite"
	"github.com/jumpingbeanltd/price-dashboard/pkg/store"
)

// Option is a function that configures a Dashboard instance.
type Option func(*config) error

// config holds the assembled collaborators and tunables.
type config struct {
	grids          GridSource
	primaryRange   string
	secondaryRange string

	rates    RateSource
	rateFrom string
	rateTo   string

	inventory  InventorySink
	storefront StorefrontSink
	generator  rewrite.Generator

	selections store.Store

	roundingIncrement float64
}

func defaultConfig() *config {
	return &config{
		primaryRange:   "Master!A:Z",
		secondaryRange: "Trade!A:Z",
		rateFrom:       "EUR",
		rateTo:         "GBP",
		selections:     store.NewMemory(),
	}
}

// WithGridSource configures the tabular data source for both sheets.
func WithGridSource(src GridSource) Option {
	return func(c *config) error {
		c.grids = src
		return nil
	}
}

// WithRanges configures the named ranges of the primary (supplier master)
// and secondary (trade price) sheets.
func WithRanges(primary, secondary string) Option {
	return func(c *config) error {
		c.primaryRange = primary
		c.secondaryRange = secondary
		return nil
	}
}

// WithRateSource configures the currency rate source.
func WithRateSource(src RateSource) Option {
	return func(c *config) error {
		c.rates = src
		return nil
	}
}

// WithRatePair configures the conversion pair, e.g. ("EUR", "GBP") for a
// rate meaning "GBP amount divided by rate yields EUR amount".
func WithRatePair(from, to string) Option {
	return func(c *config) error {
		c.rateFrom = from
		c.rateTo = to
		return nil
	}
}

// WithInventorySink configures the inventory write sink.
func WithInventorySink(sink InventorySink) Option {
	return func(c *config) error {
		c.inventory = sink
		return nil
	}
}

// WithStorefrontSink configures the storefront catalog write sink.
func WithStorefrontSink(sink StorefrontSink) Option {
	return func(c *config) error {
		c.storefront = sink
		return nil
	}
}

// WithGenerator configures the text-generation capability used for
// description rewriting.
func WithGenerator(gen rewrite.Generator) Option {
	return func(c *config) error {
		c.generator = gen
		return nil
	}
}

// WithStore configures the key-value store holding overrides and the
// pricing-rule selection. Defaults to an in-memory store.
func WithStore(s store.Store) Option {
	return func(c *config) error {
		c.selections = s
		return nil
	}
}

// WithRoundingIncrement configures the price rounding increment. Zero
// applies no rounding.
func WithRoundingIncrement(inc float64) Option {
	return func(c *config) error {
		c.roundingIncrement = inc
		return nil
	}
}
