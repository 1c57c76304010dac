package pricedash

import (
	"context"

	"github.com/jumpingbeanltd/price-dashboard/internal/sinks/inventory"
	"github.com/jumpingbeanltd/price-dashboard/internal/sources/fx"
	"github.com/jumpingbeanltd/price-dashboard/pkg/sheet"
)

// GridSource returns a 2-D grid of string cells for a named range.
type GridSource interface {
	Values(ctx context.Context, rangeName string) (sheet.Grid, error)
}

// RateQuote is one published conversion rate.
type RateQuote struct {
	Rate float64
	Date string
}

// RateSource returns the conversion rate for a currency pair.
type RateSource interface {
	Rate(ctx context.Context, from, to string) (*RateQuote, error)
}

// InventorySession is one authenticated inventory session, shared across a
// whole batch.
type InventorySession interface {
	UpdateItem(ctx context.Context, sku string, cost, selling float64) error
}

// InventorySink opens sessions against the inventory write sink.
type InventorySink interface {
	Session(ctx context.Context) (InventorySession, error)
}

// StorefrontSink writes stock and product copy to the storefront catalog.
type StorefrontSink interface {
	UpdateStock(ctx context.Context, sku string, quantity int) error
	UpdateDescription(ctx context.Context, sku, html, seoTitle, seoDescription string) error
}

// fxSource adapts the fx client to the RateSource interface.
type fxSource struct {
	client *fx.Client
}

// NewRateSource creates a RateSource backed by the currency rate service.
func NewRateSource(baseURL, apiKey string) RateSource {
	return &fxSource{client: fx.New(baseURL, apiKey)}
}

func (s *fxSource) Rate(ctx context.Context, from, to string) (*RateQuote, error) {
	quote, err := s.client.Rate(ctx, from, to)
	if err != nil {
		return nil, err
	}
	return &RateQuote{Rate: quote.Rate, Date: quote.Date}, nil
}

// inventorySink adapts the inventory client to the InventorySink interface.
type inventorySink struct {
	client *inventory.Client
}

// NewInventorySink creates an InventorySink backed by the inventory API.
func NewInventorySink(baseURL, clientID, clientSecret string) InventorySink {
	return &inventorySink{client: inventory.New(baseURL, clientID, clientSecret)}
}

func (s *inventorySink) Session(ctx context.Context) (InventorySession, error) {
	session, err := s.client.Session(ctx)
	if err != nil {
		return nil, err
	}
	return session, nil
}
