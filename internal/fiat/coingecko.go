// Package fiat reads spot prices in USD from CoinGecko.
package fiat

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"lpmarket/internal/model"
)

// DefaultURL is the public CoinGecko API root.
const DefaultURL = "https://api.coingecko.com/api/v3"

// Client fetches USD prices of CoinGecko coin ids.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client; an empty baseURL selects DefaultURL.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Price returns the USD price of coinID.
func (c *Client) Price(ctx context.Context, coinID string) (decimal.Decimal, error) {
	query := url.Values{}
	query.Set("ids", coinID)
	query.Set("vs_currencies", "usd")
	endpoint := c.baseURL + "/simple/price?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return decimal.Zero, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return decimal.Zero, fmt.Errorf("coingecko: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return decimal.Zero, fmt.Errorf("coingecko: read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return decimal.Zero, fmt.Errorf("coingecko: status %d", resp.StatusCode)
	}

	var prices map[string]map[string]decimal.Decimal
	if err := json.Unmarshal(body, &prices); err != nil {
		return decimal.Zero, &model.ShapeError{Method: "simple/price", Field: "body", Err: err}
	}
	price, ok := prices[coinID]["usd"]
	if !ok {
		return decimal.Zero, &model.ShapeError{Method: "simple/price", Field: coinID + ".usd"}
	}
	return price, nil
}

// EthUSD returns the USD price of ether.
func (c *Client) EthUSD(ctx context.Context) (decimal.Decimal, error) {
	return c.Price(ctx, "ethereum")
}
