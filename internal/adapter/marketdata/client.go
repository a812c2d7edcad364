// Package marketdata provides the REST client for the external daily quote
// API used to backfill price history.
package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"

	"github.com/foliotrack/foliotrack-backend/internal/domain"
	"github.com/foliotrack/foliotrack-backend/internal/usecase/backfill"
)

const requestTimeout = 30 * time.Second

// Client is a REST client for the quote API. Each Client owns its own
// http.Client and therefore its own connection pool; the backfill
// coordinator creates one Client per fetch task so concurrent fetches never
// share a connection.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a new quote API client.
//
// baseURL is the API root, e.g. "https://quotes.example.com".
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
	}
}

// NewSourceFactory returns a backfill.SourceFactory that hands out an
// independent Client per fetch task.
func NewSourceFactory(baseURL, apiKey string) backfill.SourceFactory {
	return func() (backfill.PriceSource, error) {
		return NewClient(baseURL, apiKey), nil
	}
}

// apiQuote mirrors one element of the quote API's daily series payload.
type apiQuote struct {
	Date  string `json:"date"`  // YYYY-MM-DD
	Close string `json:"close"` // decimal string
}

// DailyCloses returns the daily closing prices for a symbol within [from, to].
func (c *Client) DailyCloses(ctx context.Context, symbol string, from, to time.Time) ([]domain.Quote, error) {
	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("from", from.Format("2006-01-02"))
	params.Set("to", to.Format("2006-01-02"))

	body, err := c.doGet(ctx, "/v1/daily?"+params.Encode())
	if err != nil {
		return nil, fmt.Errorf("marketdata: daily closes for %s: %w", symbol, err)
	}

	var apiQuotes []apiQuote
	if err := json.Unmarshal(body, &apiQuotes); err != nil {
		return nil, fmt.Errorf("marketdata: decode daily closes: %w", err)
	}

	quotes := make([]domain.Quote, 0, len(apiQuotes))
	for _, q := range apiQuotes {
		date, err := time.ParseInLocation("2006-01-02", q.Date, time.UTC)
		if err != nil {
			return nil, fmt.Errorf("marketdata: bad quote date %q: %w", q.Date, err)
		}
		closePrice, err := decimal.NewFromString(q.Close)
		if err != nil {
			return nil, fmt.Errorf("marketdata: bad close price %q: %w", q.Close, err)
		}
		quotes = append(quotes, domain.Quote{Date: date, Close: closePrice})
	}

	return quotes, nil
}

// Close releases the client's idle connections.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

func (c *Client) doGet(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if c.apiKey != "" {
		req.Header.Set("X-Api-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}

	return body, nil
}
