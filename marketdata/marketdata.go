// Package marketdata defines the domain-data fetcher boundary: a flat
// snapshot of market attributes for a symbol, plus clients that produce it.
// Fetch failures are typed so stages can downgrade them to warnings and
// proceed with partial or empty data.
package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
)

// Snapshot is the flat record of market attributes a stage embeds into its
// prompt. Zero values mean "unknown"; prompts render whatever is present.
type Snapshot struct {
	Symbol        string  `json:"symbol"`
	CompanyName   string  `json:"company_name,omitempty"`
	Sector        string  `json:"sector,omitempty"`
	Industry      string  `json:"industry,omitempty"`
	CurrentPrice  float64 `json:"current_price,omitempty"`
	PriceChange   float64 `json:"price_change_1d,omitempty"`
	ChangePercent float64 `json:"price_change_pct,omitempty"`
	Volume        int64   `json:"volume,omitempty"`
	AvgVolume     int64   `json:"avg_volume,omitempty"`
	MarketCap     int64   `json:"market_cap,omitempty"`
	PERatio       float64 `json:"pe_ratio,omitempty"`
	WeekHigh52    float64 `json:"52_week_high,omitempty"`
	WeekLow52     float64 `json:"52_week_low,omitempty"`
	Beta          float64 `json:"beta,omitempty"`
}

// JSON renders the snapshot as indented JSON for prompt embedding.
func (s *Snapshot) JSON() string {
	if s == nil {
		return "{}"
	}
	b, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(b)
}

// FetchError wraps any fetcher failure so stages can recognize and downgrade
// it. It never aborts a run.
type FetchError struct {
	Symbol string
	Err    error
}

// Error implements the error interface.
func (e *FetchError) Error() string {
	return fmt.Sprintf("market data fetch for %s failed: %v", e.Symbol, e.Err)
}

// Unwrap exposes the underlying cause.
func (e *FetchError) Unwrap() error { return e.Err }

// Fetcher retrieves market attributes for a symbol. Implementations must not
// block indefinitely and must surface failures as a *FetchError.
type Fetcher interface {
	Fetch(ctx context.Context, symbol string) (*Snapshot, error)
}

// StaticFetcher serves canned snapshots from memory. Useful for tests and
// for portfolio composite runs where no single ticker applies.
type StaticFetcher struct {
	snapshots map[string]*Snapshot
	err       error
}

// NewStaticFetcher constructs an empty static fetcher.
func NewStaticFetcher() *StaticFetcher {
	return &StaticFetcher{snapshots: make(map[string]*Snapshot)}
}

// Add registers a canned snapshot for a symbol.
func (f *StaticFetcher) Add(s *Snapshot) *StaticFetcher {
	f.snapshots[s.Symbol] = s
	return f
}

// FailWith makes every Fetch return the given error wrapped in a FetchError.
func (f *StaticFetcher) FailWith(err error) *StaticFetcher {
	f.err = err
	return f
}

// Fetch implements Fetcher.
func (f *StaticFetcher) Fetch(_ context.Context, symbol string) (*Snapshot, error) {
	if f.err != nil {
		return nil, &FetchError{Symbol: symbol, Err: f.err}
	}
	if s, ok := f.snapshots[symbol]; ok {
		return s, nil
	}
	return nil, &FetchError{Symbol: symbol, Err: fmt.Errorf("no snapshot for symbol")}
}
