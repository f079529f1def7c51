package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// RestClientOptions configure the quote-API client.
type RestClientOptions struct {
	BaseURL string
	Timeout time.Duration
	Client  *http.Client
}

// RestClient fetches snapshots from a Yahoo-style quote REST endpoint.
type RestClient struct {
	client  *http.Client
	baseURL string
}

// NewRestClient creates a quote-API client with a bounded request timeout.
func NewRestClient(optFns ...func(o *RestClientOptions)) *RestClient {
	opts := RestClientOptions{
		BaseURL: "https://query1.finance.yahoo.com/v7/finance/quote",
		Timeout: 30 * time.Second,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
	}
	return &RestClient{client: client, baseURL: opts.BaseURL}
}

type quoteResponse struct {
	QuoteResponse struct {
		Result []struct {
			Symbol                     string  `json:"symbol"`
			LongName                   string  `json:"longName"`
			Sector                     string  `json:"sector"`
			Industry                   string  `json:"industry"`
			RegularMarketPrice         float64 `json:"regularMarketPrice"`
			RegularMarketChange        float64 `json:"regularMarketChange"`
			RegularMarketChangePercent float64 `json:"regularMarketChangePercent"`
			RegularMarketVolume        int64   `json:"regularMarketVolume"`
			AverageDailyVolume3Month   int64   `json:"averageDailyVolume3Month"`
			MarketCap                  int64   `json:"marketCap"`
			TrailingPE                 float64 `json:"trailingPE"`
			FiftyTwoWeekHigh           float64 `json:"fiftyTwoWeekHigh"`
			FiftyTwoWeekLow            float64 `json:"fiftyTwoWeekLow"`
			Beta                       float64 `json:"beta"`
		} `json:"result"`
		Error any `json:"error"`
	} `json:"quoteResponse"`
}

// Fetch implements Fetcher against the quote endpoint.
func (c *RestClient) Fetch(ctx context.Context, symbol string) (*Snapshot, error) {
	reqURL := fmt.Sprintf("%s?symbols=%s", c.baseURL, url.QueryEscape(symbol))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, &FetchError{Symbol: symbol, Err: fmt.Errorf("failed to create request: %w", err)}
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &FetchError{Symbol: symbol, Err: fmt.Errorf("failed to send request: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &FetchError{Symbol: symbol, Err: fmt.Errorf("unexpected status code: %d", resp.StatusCode)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{Symbol: symbol, Err: fmt.Errorf("failed to read response body: %w", err)}
	}

	var parsed quoteResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, &FetchError{Symbol: symbol, Err: fmt.Errorf("failed to parse response: %w", err)}
	}
	if parsed.QuoteResponse.Error != nil {
		return nil, &FetchError{Symbol: symbol, Err: fmt.Errorf("quote API error: %v", parsed.QuoteResponse.Error)}
	}
	if len(parsed.QuoteResponse.Result) == 0 {
		return nil, &FetchError{Symbol: symbol, Err: fmt.Errorf("no results for symbol")}
	}

	r := parsed.QuoteResponse.Result[0]
	return &Snapshot{
		Symbol:        r.Symbol,
		CompanyName:   r.LongName,
		Sector:        r.Sector,
		Industry:      r.Industry,
		CurrentPrice:  r.RegularMarketPrice,
		PriceChange:   r.RegularMarketChange,
		ChangePercent: r.RegularMarketChangePercent,
		Volume:        r.RegularMarketVolume,
		AvgVolume:     r.AverageDailyVolume3Month,
		MarketCap:     r.MarketCap,
		PERatio:       r.TrailingPE,
		WeekHigh52:    r.FiftyTwoWeekHigh,
		WeekLow52:     r.FiftyTwoWeekLow,
		Beta:          r.Beta,
	}, nil
}
