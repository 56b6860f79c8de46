package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"eventscan/internal/config"
	"eventscan/internal/models"
)

// Client is the HTTP client for the external bar data service. The scanner
// only asks it for intraday history of watchlist symbols; daily history is
// already in the store.
type Client struct {
	HTTPClient *http.Client
	baseURL    string
}

// NewClient creates a new market data client instance.
func NewClient(cfg config.MarketDataConfig) *Client {
	timeout := time.Duration(cfg.Timeout) * time.Second
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		HTTPClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: strings.TrimSuffix(cfg.ServiceURL, "/"),
	}
}

// BaseURL returns the configured service URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

type barPayload struct {
	Timestamp time.Time       `json:"timestamp"`
	Open      decimal.Decimal `json:"open"`
	High      decimal.Decimal `json:"high"`
	Low       decimal.Decimal `json:"low"`
	Close     decimal.Decimal `json:"close"`
	Volume    decimal.Decimal `json:"volume"`
}

type barsResponse struct {
	Symbol   string       `json:"symbol"`
	Interval string       `json:"interval"`
	Bars     []barPayload `json:"bars"`
}

// GetIntradayBars fetches intraday bars for one symbol covering the trailing
// number of days.
func (c *Client) GetIntradayBars(ctx context.Context, symbol, interval string, days int) ([]models.IntradayBar, error) {
	path := fmt.Sprintf("/api/bars/%s?interval=%s&days=%s",
		url.PathEscape(symbol), url.QueryEscape(interval), strconv.Itoa(days))

	var response barsResponse
	if err := c.makeRequest(ctx, path, &response); err != nil {
		return nil, err
	}

	bars := make([]models.IntradayBar, len(response.Bars))
	for i, b := range response.Bars {
		bars[i] = models.IntradayBar{
			Symbol:    symbol,
			Timestamp: b.Timestamp,
			Interval:  interval,
			Open:      b.Open,
			High:      b.High,
			Low:       b.Low,
			Close:     b.Close,
			Volume:    b.Volume,
		}
	}
	return bars, nil
}

func (c *Client) makeRequest(ctx context.Context, path string, result interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("request to market data service failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("market data service returned status %d: %s", resp.StatusCode, string(body))
	}

	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
