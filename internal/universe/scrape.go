package universe

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/advaitm/stockpilot/internal/contracts"
	"github.com/advaitm/stockpilot/pkg/config"
	"github.com/advaitm/stockpilot/pkg/httputil"
	"github.com/advaitm/stockpilot/pkg/logger"
)

const equityTablePath = "/market-data/securities-available-for-trading"

// ScrapeProvider scrapes the listed-securities table from the NSE
// website. Used as a fallback when the archives CSV is unreachable.
type ScrapeProvider struct {
	client  *httputil.Client
	baseURL string
	enabled bool
	logger  *logger.Logger
}

// NewScrapeProvider creates a ScrapeProvider against cfg.NSE.BaseURL
func NewScrapeProvider(cfg *config.Config, client *httputil.Client, log *logger.Logger) *ScrapeProvider {
	return &ScrapeProvider{
		client:  client,
		baseURL: strings.TrimRight(cfg.NSE.BaseURL, "/"),
		enabled: cfg.NSE.ScrapeEnabled,
		logger:  log,
	}
}

// Source names the provider for logging
func (p *ScrapeProvider) Source() string { return "nse-web-scrape" }

// Instruments fetches and parses the securities table
func (p *ScrapeProvider) Instruments(ctx context.Context) ([]contracts.Instrument, error) {
	if !p.enabled {
		return nil, fmt.Errorf("scraping disabled: %w", contracts.ErrUniverseUnavailable)
	}

	url := p.baseURL + equityTablePath

	resp, err := p.client.GetWithHeaders(ctx, url, map[string]string{
		"Accept":     "text/html",
		"User-Agent": "Mozilla/5.0",
	})
	if err != nil {
		return nil, fmt.Errorf("securities page fetch failed: %w", contracts.ErrUniverseUnavailable)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("securities page returned status %d: %w",
			resp.StatusCode, contracts.ErrUniverseUnavailable)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("securities page parse failed: %w", contracts.ErrUniverseUnavailable)
	}

	var out []contracts.Instrument
	doc.Find("table tbody tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 3 {
			return
		}
		symbol := strings.TrimSpace(cells.Eq(0).Text())
		name := strings.TrimSpace(cells.Eq(1).Text())
		series := strings.TrimSpace(cells.Eq(2).Text())
		if symbol == "" || series != "EQ" {
			return
		}
		out = append(out, contracts.Instrument{
			Symbol: symbol,
			Name:   name,
			Series: series,
		})
	})

	if len(out) == 0 {
		return nil, fmt.Errorf("securities table has no EQ rows: %w", contracts.ErrUniverseUnavailable)
	}

	p.logger.WithField("count", len(out)).Debug("Scraped securities table")
	return out, nil
}
