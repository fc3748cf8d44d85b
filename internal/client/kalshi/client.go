package kalshi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// BaseURL is the Kalshi trade API root. It is deliberately not
// configurable; deployments always talk to the production exchange.
const BaseURL = "https://api.elections.kalshi.com/trade-api/v2"

type Client struct {
	host       string
	httpClient *http.Client
}

type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("kalshi API error (%d): %s", e.Status, e.Body)
}

func NewClient(httpClient *http.Client) *Client {
	return NewClientWithHost(httpClient, BaseURL)
}

// NewClientWithHost exists for tests; production code uses NewClient.
func NewClientWithHost(httpClient *http.Client, host string) *Client {
	if host == "" {
		host = BaseURL
	}
	host = strings.TrimRight(host, "/")
	return &Client{
		host:       host,
		httpClient: httpClient,
	}
}

func (c *Client) doRequest(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.host+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{Status: resp.StatusCode, Body: string(body)}
	}
	return body, nil
}

// GetMarket fetches the live snapshot for one market ticker.
func (c *Client) GetMarket(ctx context.Context, ticker string) (*Market, error) {
	if ticker == "" {
		return nil, fmt.Errorf("ticker is required")
	}
	body, err := c.doRequest(ctx, "/markets/"+url.PathEscape(ticker))
	if err != nil {
		return nil, err
	}
	var resp marketResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode market response: %w", err)
	}
	return &resp.Market, nil
}
