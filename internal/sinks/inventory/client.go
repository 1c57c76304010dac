// Package inventory writes derived prices to the inventory system. The
// system authenticates with a short-lived session token; one token is
// acquired per batch and reused for every item, since the token outlives
// the batch and reacquiring per item is wasteful.
package inventory

import (
	"context"
	"fmt"
	"net/url"

	"github.com/jumpingbeanltd/price-dashboard/internal/transport"
	"github.com/jumpingbeanltd/price-dashboard/pkg/errors"
	"github.com/jumpingbeanltd/price-dashboard/pkg/logging"
)

// Client knows how to open sessions against the inventory API.
type Client struct {
	baseURL      string
	clientID     string
	clientSecret string
}

// New creates an inventory client.
func New(baseURL, clientID, clientSecret string) *Client {
	return &Client{
		baseURL:      baseURL,
		clientID:     clientID,
		clientSecret: clientSecret,
	}
}

// Session is one authenticated session, shared across a whole batch.
type Session struct {
	http    *transport.Client
	baseURL string
}

// tokenResponse is the wire shape of the token grant.
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

// Session acquires a session token. A failure here is systemic: no batch
// item can be attempted without it.
func (c *Client) Session(ctx context.Context) (*Session, error) {
	grant := transport.New("inventory", &transport.NoAuth{}, "")

	var tok tokenResponse
	body := map[string]string{
		"client_id":     c.clientID,
		"client_secret": c.clientSecret,
		"grant_type":    "client_credentials",
	}
	if err := grant.PostJSON(ctx, c.baseURL+"/oauth/token", body, &tok); err != nil {
		return nil, errors.NewAuthenticationError("inventory", "session_token", "acquiring session token", err)
	}
	if tok.AccessToken == "" {
		return nil, errors.NewAuthenticationError("inventory", "session_token", "empty token in grant response", nil)
	}

	logging.Ctx(ctx).Debug().Msg("Acquired inventory session token")

	return &Session{
		http:    transport.New("inventory", &transport.BearerAuth{}, tok.AccessToken),
		baseURL: c.baseURL,
	}, nil
}

// item is the wire shape of an inventory item.
type item struct {
	ItemID string `json:"item_id"`
	SKU    string `json:"sku"`
}

type itemsResponse struct {
	Items []item `json:"items"`
}

// UpdateItem finds the remote item by SKU and writes its cost and selling
// price fields. Returns a not-found error when no item carries the SKU.
func (s *Session) UpdateItem(ctx context.Context, sku string, cost, selling float64) error {
	var found itemsResponse
	endpoint := fmt.Sprintf("%s/items?sku=%s", s.baseURL, url.QueryEscape(sku))
	if err := s.http.GetJSON(ctx, endpoint, &found); err != nil {
		return err
	}
	if len(found.Items) == 0 {
		return errors.NewNotFoundError("item", sku)
	}

	update := map[string]float64{
		"purchase_rate": cost,
		"rate":          selling,
	}
	target := fmt.Sprintf("%s/items/%s", s.baseURL, url.PathEscape(found.Items[0].ItemID))
	if err := s.http.PutJSON(ctx, target, update, nil); err != nil {
		return err
	}

	logging.Ctx(ctx).Debug().
		Str("sku", sku).
		Float64("rate", selling).
		Msg("Updated inventory item")

	return nil
}
