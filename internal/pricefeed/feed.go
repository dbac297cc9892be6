package pricefeed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/advaitm/stockpilot/internal/contracts"
	"github.com/advaitm/stockpilot/pkg/config"
	"github.com/advaitm/stockpilot/pkg/httputil"
	"github.com/advaitm/stockpilot/pkg/logger"
)

// symbolSuffix maps an NSE symbol to the chart API ticker
const symbolSuffix = ".NS"

// Feed fetches daily candles and bulk quotes from the chart API.
// Implements contracts.PriceProvider.
type Feed struct {
	client  *httputil.Client
	baseURL string
	logger  *logger.Logger
}

// New creates a Feed with its own rate-limited HTTP client
func New(cfg *config.Config, log *logger.Logger) *Feed {
	limiter := rate.NewLimiter(rate.Limit(cfg.NSE.RatePerSecond), cfg.NSE.RateBurst)
	client := httputil.NewWithTimeout(cfg, log, cfg.NSE.RequestTimeout).
		WithRateLimiter(limiter)
	return NewWithClient(cfg, client, log)
}

// NewWithClient creates a Feed using the given HTTP client
func NewWithClient(cfg *config.Config, client *httputil.Client, log *logger.Logger) *Feed {
	return &Feed{
		client:  client,
		baseURL: strings.TrimRight(cfg.NSE.ChartBaseURL, "/"),
		logger:  log,
	}
}

// chartResponse mirrors the chart endpoint payload
type chartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*int64   `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// quoteResponse mirrors the bulk quote endpoint payload
type quoteResponse struct {
	QuoteResponse struct {
		Result []struct {
			Symbol             string  `json:"symbol"`
			RegularMarketPrice float64 `json:"regularMarketPrice"`
			RegularMarketTime  int64   `json:"regularMarketTime"`
		} `json:"result"`
	} `json:"quoteResponse"`
}

// History returns daily candles in ascending date order. Bars with a
// missing close are dropped.
func (f *Feed) History(ctx context.Context, symbol string, lookbackDays int) ([]contracts.Candle, error) {
	endpoint := fmt.Sprintf("%s/v8/finance/chart/%s?range=%dd&interval=1d",
		f.baseURL, url.PathEscape(symbol+symbolSuffix), lookbackDays)

	var payload chartResponse
	if err := f.getJSON(ctx, endpoint, &payload); err != nil {
		return nil, fmt.Errorf("history fetch for %s: %w", symbol, err)
	}

	if payload.Chart.Error != nil {
		return nil, fmt.Errorf("history fetch for %s: %s: %w",
			symbol, payload.Chart.Error.Code, contracts.ErrDataUnavailable)
	}
	if len(payload.Chart.Result) == 0 || len(payload.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, fmt.Errorf("history fetch for %s: empty result: %w",
			symbol, contracts.ErrDataUnavailable)
	}

	result := payload.Chart.Result[0]
	quote := result.Indicators.Quote[0]

	candles := make([]contracts.Candle, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(quote.Close) || quote.Close[i] == nil {
			continue
		}
		c := contracts.Candle{
			Date:  time.Unix(ts, 0).UTC(),
			Close: *quote.Close[i],
		}
		if i < len(quote.Open) && quote.Open[i] != nil {
			c.Open = *quote.Open[i]
		}
		if i < len(quote.High) && quote.High[i] != nil {
			c.High = *quote.High[i]
		}
		if i < len(quote.Low) && quote.Low[i] != nil {
			c.Low = *quote.Low[i]
		}
		if i < len(quote.Volume) && quote.Volume[i] != nil {
			c.Volume = *quote.Volume[i]
		}
		candles = append(candles, c)
	}

	sort.Slice(candles, func(i, j int) bool {
		return candles[i].Date.Before(candles[j].Date)
	})
	return candles, nil
}

// Quotes returns the latest price for each symbol in one bulk call.
// Symbols the API did not return are absent from the map.
func (f *Feed) Quotes(ctx context.Context, symbols []string) (map[string]contracts.Quote, error) {
	if len(symbols) == 0 {
		return map[string]contracts.Quote{}, nil
	}

	tickers := make([]string, len(symbols))
	for i, s := range symbols {
		tickers[i] = s + symbolSuffix
	}
	endpoint := fmt.Sprintf("%s/v7/finance/quote?symbols=%s",
		f.baseURL, url.QueryEscape(strings.Join(tickers, ",")))

	var payload quoteResponse
	if err := f.getJSON(ctx, endpoint, &payload); err != nil {
		return nil, fmt.Errorf("bulk quote fetch: %w", err)
	}

	out := make(map[string]contracts.Quote, len(payload.QuoteResponse.Result))
	for _, q := range payload.QuoteResponse.Result {
		symbol := strings.TrimSuffix(q.Symbol, symbolSuffix)
		if q.RegularMarketPrice <= 0 {
			continue
		}
		out[symbol] = contracts.Quote{
			Symbol: symbol,
			Price:  q.RegularMarketPrice,
			AsOf:   time.Unix(q.RegularMarketTime, 0).UTC(),
		}
	}
	return out, nil
}

func (f *Feed) getJSON(ctx context.Context, endpoint string, v interface{}) error {
	resp, err := f.client.GetWithHeaders(ctx, endpoint, map[string]string{
		"Accept":     "application/json",
		"User-Agent": "Mozilla/5.0",
	})
	if err != nil {
		return fmt.Errorf("%v: %w", err, contracts.ErrDataUnavailable)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d: %w", resp.StatusCode, contracts.ErrDataUnavailable)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode failed: %v: %w", err, contracts.ErrDataUnavailable)
	}
	return nil
}
