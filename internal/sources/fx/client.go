// Package fx fetches currency conversion rates. A rate quote is the
// source-per-target factor the pricing engine divides by, together with
// the date it was published.
package fx

import (
	"context"
	"fmt"
	"net/url"

	"github.com/jumpingbeanltd/price-dashboard/internal/transport"
	"github.com/jumpingbeanltd/price-dashboard/pkg/errors"
	"github.com/jumpingbeanltd/price-dashboard/pkg/logging"
)

// Quote is one published conversion rate.
type Quote struct {
	Rate float64 `json:"rate"`
	Date string  `json:"date"`
}

// Client fetches rates from the currency rate service.
type Client struct {
	http    *transport.Client
	baseURL string
}

// New creates a rate client.
func New(baseURL, apiKey string) *Client {
	return &Client{
		http:    transport.New("fx", &transport.HeaderAuth{Header: "X-Api-Key"}, apiKey),
		baseURL: baseURL,
	}
}

// Rate returns the quote for converting from one currency into another,
// e.g. Rate(ctx, "EUR", "GBP") for the EUR/GBP factor.
func (c *Client) Rate(ctx context.Context, from, to string) (*Quote, error) {
	endpoint := fmt.Sprintf("%s/rate?from=%s&to=%s",
		c.baseURL, url.QueryEscape(from), url.QueryEscape(to))

	var quote Quote
	if err := c.http.GetJSON(ctx, endpoint, &quote); err != nil {
		return nil, err
	}

	if quote.Rate == 0 {
		return nil, errors.NewValidationError("rate", quote.Rate, "rate service returned zero rate")
	}

	logging.Ctx(ctx).Debug().
		Str("pair", from+"/"+to).
		Float64("rate", quote.Rate).
		Str("date", quote.Date).
		Msg("Fetched conversion rate")

	return &quote, nil
}
