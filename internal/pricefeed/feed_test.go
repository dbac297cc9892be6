package pricefeed

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/advaitm/stockpilot/internal/contracts"
	"github.com/advaitm/stockpilot/pkg/config"
	"github.com/advaitm/stockpilot/pkg/httputil"
	"github.com/advaitm/stockpilot/pkg/logger"
)

func feedFor(t *testing.T, srv *httptest.Server) *Feed {
	t.Helper()
	cfg := &config.Config{
		Env:      "test",
		LogLevel: "error",
		NSE:      config.NSEConfig{ChartBaseURL: srv.URL},
	}
	log := logger.New(cfg)
	client := httputil.New(cfg, log).DisableRetry()
	return NewWithClient(cfg, client, log)
}

func TestHistoryParsesChart(t *testing.T) {
	base := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	// Second bar has a null close and must be dropped
	body := fmt.Sprintf(`{"chart":{"result":[{
		"timestamp":[%d,%d,%d],
		"indicators":{"quote":[{
			"open":[100.0,null,102.0],
			"high":[105.0,null,107.0],
			"low":[99.0,null,101.0],
			"close":[104.0,null,106.0],
			"volume":[1000,null,1200]
		}]}
	}],"error":null}}`,
		base.Unix(), base.AddDate(0, 0, 1).Unix(), base.AddDate(0, 0, 2).Unix())

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v8/finance/chart/RELIANCE.NS", r.URL.Path)
		assert.Equal(t, "1d", r.URL.Query().Get("interval"))
		w.Write([]byte(body))
	}))
	defer srv.Close()

	candles, err := feedFor(t, srv).History(context.Background(), "RELIANCE", 730)
	require.NoError(t, err)
	require.Len(t, candles, 2)
	assert.Equal(t, base, candles[0].Date)
	assert.Equal(t, 104.0, candles[0].Close)
	assert.Equal(t, int64(1000), candles[0].Volume)
	assert.Equal(t, 106.0, candles[1].Close)
	assert.True(t, candles[0].Date.Before(candles[1].Date))
}

func TestHistoryAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found"}}}`))
	}))
	defer srv.Close()

	_, err := feedFor(t, srv).History(context.Background(), "NOSUCH", 730)
	assert.ErrorIs(t, err, contracts.ErrDataUnavailable)
}

func TestHistoryServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := feedFor(t, srv).History(context.Background(), "RELIANCE", 730)
	assert.ErrorIs(t, err, contracts.ErrDataUnavailable)
}

func TestQuotesBulk(t *testing.T) {
	now := time.Date(2024, 3, 6, 10, 0, 0, 0, time.UTC)
	body := fmt.Sprintf(`{"quoteResponse":{"result":[
		{"symbol":"RELIANCE.NS","regularMarketPrice":2950.5,"regularMarketTime":%d},
		{"symbol":"TCS.NS","regularMarketPrice":4100.0,"regularMarketTime":%d},
		{"symbol":"JUNK.NS","regularMarketPrice":0,"regularMarketTime":%d}
	]}}`, now.Unix(), now.Unix(), now.Unix())

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v7/finance/quote", r.URL.Path)
		assert.Equal(t, "RELIANCE.NS,TCS.NS,JUNK.NS", r.URL.Query().Get("symbols"))
		w.Write([]byte(body))
	}))
	defer srv.Close()

	quotes, err := feedFor(t, srv).Quotes(context.Background(), []string{"RELIANCE", "TCS", "JUNK"})
	require.NoError(t, err)

	// Zero-priced quotes are dropped
	require.Len(t, quotes, 2)
	assert.Equal(t, 2950.5, quotes["RELIANCE"].Price)
	assert.Equal(t, now, quotes["RELIANCE"].AsOf)
	assert.Equal(t, 4100.0, quotes["TCS"].Price)
}

func TestQuotesEmptyInput(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected for empty symbol list")
	}))
	defer srv.Close()

	quotes, err := feedFor(t, srv).Quotes(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, quotes)
}
