package marketdata

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Interface compliance (compile-time assertion)
var _ Fetcher = (*RestClient)(nil)
var _ Fetcher = (*StaticFetcher)(nil)

const quoteBody = `{
  "quoteResponse": {
    "result": [
      {
        "symbol": "AAPL",
        "longName": "Apple Inc.",
        "regularMarketPrice": 187.32,
        "regularMarketChange": 1.24,
        "regularMarketChangePercent": 0.67,
        "regularMarketVolume": 52300000,
        "averageDailyVolume3Month": 58100000,
        "marketCap": 2900000000000,
        "trailingPE": 29.4,
        "fiftyTwoWeekHigh": 199.62,
        "fiftyTwoWeekLow": 164.08,
        "beta": 1.29
      }
    ],
    "error": null
  }
}`

func TestRestClient_Fetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "AAPL", r.URL.Query().Get("symbols"))
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(quoteBody))
	}))
	defer srv.Close()

	client := NewRestClient(func(o *RestClientOptions) {
		o.BaseURL = srv.URL
	})

	snap, err := client.Fetch(context.Background(), "AAPL")
	require.NoError(t, err)

	assert.Equal(t, "AAPL", snap.Symbol)
	assert.Equal(t, "Apple Inc.", snap.CompanyName)
	assert.Equal(t, 187.32, snap.CurrentPrice)
	assert.Equal(t, int64(2_900_000_000_000), snap.MarketCap)
	assert.Equal(t, 29.4, snap.PERatio)
	assert.Equal(t, 1.29, snap.Beta)
}

func TestRestClient_FetchBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := NewRestClient(func(o *RestClientOptions) {
		o.BaseURL = srv.URL
	})

	_, err := client.Fetch(context.Background(), "AAPL")
	require.Error(t, err)

	var fe *FetchError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "AAPL", fe.Symbol)
}

func TestRestClient_FetchNoResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"quoteResponse": {"result": [], "error": null}}`))
	}))
	defer srv.Close()

	client := NewRestClient(func(o *RestClientOptions) {
		o.BaseURL = srv.URL
	})

	_, err := client.Fetch(context.Background(), "NOPE")
	require.Error(t, err)

	var fe *FetchError
	assert.ErrorAs(t, err, &fe)
}

func TestRestClient_FetchCanceledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(quoteBody))
	}))
	defer srv.Close()

	client := NewRestClient(func(o *RestClientOptions) {
		o.BaseURL = srv.URL
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Fetch(ctx, "AAPL")
	require.Error(t, err)
}

func TestStaticFetcher(t *testing.T) {
	f := NewStaticFetcher().Add(&Snapshot{Symbol: "AAPL", CurrentPrice: 187.32})

	snap, err := f.Fetch(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, 187.32, snap.CurrentPrice)

	_, err = f.Fetch(context.Background(), "MSFT")
	require.Error(t, err)

	f.FailWith(errors.New("synthetic outage"))
	_, err = f.Fetch(context.Background(), "AAPL")
	require.Error(t, err)

	var fe *FetchError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "AAPL", fe.Symbol)
}

func TestSnapshot_JSON(t *testing.T) {
	var nilSnap *Snapshot
	assert.Equal(t, "{}", nilSnap.JSON())

	s := &Snapshot{Symbol: "AAPL", CurrentPrice: 187.32}
	out := s.JSON()
	assert.Contains(t, out, `"symbol": "AAPL"`)
	assert.Contains(t, out, `"current_price": 187.32`)
	assert.NotContains(t, out, "beta")
}
