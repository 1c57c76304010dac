// Package sheets fetches raw tabular grids from the spreadsheet service.
// The service returns a 2-D grid of string cells for a named range; all
// interpretation of the cells belongs to pkg/sheet.
package sheets

import (
	"context"
	"fmt"
	"net/url"

	"github.com/jumpingbeanltd/price-dashboard/internal/transport"
	"github.com/jumpingbeanltd/price-dashboard/pkg/logging"
	"github.com/jumpingbeanltd/price-dashboard/pkg/sheet"
)

// DefaultBaseURL is the spreadsheet values API root.
const DefaultBaseURL = "https://sheets.googleapis.com/v4/spreadsheets"

// Client reads named ranges from one spreadsheet.
type Client struct {
	http          *transport.Client
	baseURL       string
	spreadsheetID string
}

// New creates a sheets client for the given spreadsheet.
func New(spreadsheetID, apiKey string) *Client {
	return &Client{
		http:          transport.New("sheets", &transport.QueryAuth{Param: "key"}, apiKey),
		baseURL:       DefaultBaseURL,
		spreadsheetID: spreadsheetID,
	}
}

// WithBaseURL overrides the API root, for tests and self-hosted proxies.
func (c *Client) WithBaseURL(base string) *Client {
	c.baseURL = base
	return c
}

// valuesResponse is the wire shape of a values read.
type valuesResponse struct {
	Range  string     `json:"range"`
	Values [][]string `json:"values"`
}

// Values returns the grid for a named range. A range with no data returns
// an empty grid, not an error.
func (c *Client) Values(ctx context.Context, rangeName string) (sheet.Grid, error) {
	endpoint := fmt.Sprintf("%s/%s/values/%s",
		c.baseURL, url.PathEscape(c.spreadsheetID), url.PathEscape(rangeName))

	var resp valuesResponse
	if err := c.http.GetJSON(ctx, endpoint, &resp); err != nil {
		return nil, err
	}

	logging.Ctx(ctx).Debug().
		Str("range", rangeName).
		Int("rows", len(resp.Values)).
		Msg("Fetched sheet values")

	return sheet.Grid(resp.Values), nil
}
