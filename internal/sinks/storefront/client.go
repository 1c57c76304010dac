// Package storefront writes stock quantities and rewritten product copy to
// the storefront catalog. Entities are matched by SKU; the storefront's own
// identifiers never leave this package.
package storefront

import (
	"context"
	"fmt"
	"net/url"

	"github.com/jumpingbeanltd/price-dashboard/internal/transport"
	"github.com/jumpingbeanltd/price-dashboard/pkg/errors"
	"github.com/jumpingbeanltd/price-dashboard/pkg/logging"
)

// Client writes to the storefront catalog API.
type Client struct {
	http    *transport.Client
	baseURL string
}

// New creates a storefront client.
func New(baseURL, apiKey string) *Client {
	return &Client{
		http:    transport.New("storefront", &transport.BearerAuth{}, apiKey),
		baseURL: baseURL,
	}
}

// product is the wire shape of a catalog product.
type product struct {
	ID  int    `json:"id"`
	SKU string `json:"sku"`
}

// findBySKU resolves a SKU to the storefront's product id.
func (c *Client) findBySKU(ctx context.Context, sku string) (int, error) {
	var found []product
	endpoint := fmt.Sprintf("%s/products?sku=%s", c.baseURL, url.QueryEscape(sku))
	if err := c.http.GetJSON(ctx, endpoint, &found); err != nil {
		return 0, err
	}
	if len(found) == 0 {
		return 0, errors.NewNotFoundError("product", sku)
	}
	return found[0].ID, nil
}

// UpdateStock sets the stock quantity for the product matching sku.
func (c *Client) UpdateStock(ctx context.Context, sku string, quantity int) error {
	id, err := c.findBySKU(ctx, sku)
	if err != nil {
		return err
	}

	body := map[string]any{
		"stock_quantity": quantity,
		"manage_stock":   true,
	}
	if err := c.http.PutJSON(ctx, fmt.Sprintf("%s/products/%d", c.baseURL, id), body, nil); err != nil {
		return err
	}

	logging.Ctx(ctx).Debug().
		Str("sku", sku).
		Int("quantity", quantity).
		Msg("Updated storefront stock")

	return nil
}

// UpdateDescription sets the rewritten description and SEO fields for the
// product matching sku.
func (c *Client) UpdateDescription(ctx context.Context, sku, html, seoTitle, seoDescription string) error {
	id, err := c.findBySKU(ctx, sku)
	if err != nil {
		return err
	}

	body := map[string]any{
		"description": html,
		"meta_data": []map[string]string{
			{"key": "seo_title", "value": seoTitle},
			{"key": "seo_description", "value": seoDescription},
		},
	}
	if err := c.http.PutJSON(ctx, fmt.Sprintf("%s/products/%d", c.baseURL, id), body, nil); err != nil {
		return err
	}

	logging.Ctx(ctx).Debug().
		Str("sku", sku).
		Msg("Updated storefront description")

	return nil
}
