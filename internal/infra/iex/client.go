package iex

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"pricestream/internal/domain"
)

const (
	// DefaultBaseURL is the public IEX TOPS API root
	DefaultBaseURL = "https://ws-api.iextrading.com/1.0"

	defaultTimeout = 5 * time.Second

	// maxErrorBody bounds how much of a vendor rejection body is kept
	// for the error and the warn log.
	maxErrorBody = 512

	// userAgent is a browser-like user agent string to avoid bot detection
	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

// topsLast represents one element of the TOPS last-trade response
type topsLast struct {
	Symbol string  `json:"symbol"`
	Price  float64 `json:"price"`
	Size   int64   `json:"size"`
	Time   int64   `json:"time"` // epoch milliseconds
}

// Client fetches last-trade quotes from the IEX TOPS endpoint. It issues
// one request per call and never retries; pacing is the caller's job.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient creates a TOPS client with default settings
func NewClient() *Client {
	return &Client{
		baseURL: DefaultBaseURL,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
	}
}

// NewClientWithConfig creates a client with custom configuration
func NewClientWithConfig(baseURL, token string, timeout time.Duration) *Client {
	client := NewClient()
	if baseURL != "" {
		client.baseURL = strings.TrimRight(baseURL, "/")
	}
	if token != "" {
		client.token = token
	}
	if timeout > 0 {
		client.httpClient.Timeout = timeout
	}
	return client
}

// LastTrade returns the vendor's most recent trade for symbol.
// domain.ErrNoQuote is returned when the vendor has no data for it, which
// is how unknown tickers surface.
func (c *Client) LastTrade(ctx context.Context, symbol string) (domain.Quote, error) {
	if symbol == "" {
		return domain.Quote{}, domain.ErrSymbolRequired
	}

	endpoint := c.baseURL + "/tops/last?symbols=" + url.QueryEscape(symbol)
	if c.token != "" {
		endpoint += "&token=" + url.QueryEscape(c.token)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return domain.Quote{}, &domain.VendorError{Op: "request", Err: err}
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.Quote{}, &domain.VendorError{Op: "request", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return domain.Quote{}, &domain.VendorError{
			Op:     "tops/last",
			Status: resp.StatusCode,
			Body:   strings.TrimSpace(string(snippet)),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.Quote{}, &domain.VendorError{Op: "read", Err: err}
	}

	var trades []topsLast
	if err := json.Unmarshal(body, &trades); err != nil {
		return domain.Quote{}, &domain.VendorError{Op: "decode", Err: err}
	}

	// The vendor answers unknown symbols with an empty array or a
	// zero-time stub; both mean there is nothing to plot.
	if len(trades) == 0 {
		return domain.Quote{}, domain.ErrNoQuote
	}

	t := trades[0]
	quote := domain.Quote{
		Symbol: t.Symbol,
		Price:  decimal.NewFromFloat(t.Price),
		Size:   t.Size,
	}
	if t.Time != 0 {
		quote.Time = time.UnixMilli(t.Time).UTC()
	}
	if quote.IsZero() {
		return domain.Quote{}, domain.ErrNoQuote
	}
	return quote, nil
}
