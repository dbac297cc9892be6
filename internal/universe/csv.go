package universe

import (
	"context"
	"encoding/csv"
	"fmt"
	"net/http"
	"strings"

	"github.com/advaitm/stockpilot/internal/contracts"
	"github.com/advaitm/stockpilot/pkg/config"
	"github.com/advaitm/stockpilot/pkg/httputil"
	"github.com/advaitm/stockpilot/pkg/logger"
)

const equityListPath = "/content/equities/EQUITY_L.csv"

// CSVProvider loads the listed equity universe from the NSE archives
// bhavcopy CSV. This is the primary universe source.
type CSVProvider struct {
	client  *httputil.Client
	baseURL string
	logger  *logger.Logger
}

// NewCSVProvider creates a CSVProvider against cfg.NSE.ArchivesURL
func NewCSVProvider(cfg *config.Config, client *httputil.Client, log *logger.Logger) *CSVProvider {
	return &CSVProvider{
		client:  client,
		baseURL: strings.TrimRight(cfg.NSE.ArchivesURL, "/"),
		logger:  log,
	}
}

// Source names the provider for logging
func (p *CSVProvider) Source() string { return "nse-archives-csv" }

// Instruments downloads and parses the equity list. Only the EQ
// series is kept.
func (p *CSVProvider) Instruments(ctx context.Context) ([]contracts.Instrument, error) {
	url := p.baseURL + equityListPath

	resp, err := p.client.GetWithHeaders(ctx, url, map[string]string{
		"Accept":     "text/csv",
		"User-Agent": "Mozilla/5.0",
	})
	if err != nil {
		return nil, fmt.Errorf("equity list fetch failed: %w", contracts.ErrUniverseUnavailable)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("equity list returned status %d: %w",
			resp.StatusCode, contracts.ErrUniverseUnavailable)
	}

	return parseEquityCSV(resp)
}

// parseEquityCSV reads the EQUITY_L.csv format:
// SYMBOL,NAME OF COMPANY,SERIES,DATE OF LISTING,PAID UP VALUE,MARKET LOT,ISIN NUMBER,FACE VALUE
func parseEquityCSV(resp *http.Response) ([]contracts.Instrument, error) {
	reader := csv.NewReader(resp.Body)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("equity list parse failed: %w", contracts.ErrUniverseUnavailable)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("equity list empty: %w", contracts.ErrUniverseUnavailable)
	}

	var out []contracts.Instrument
	for _, rec := range records[1:] {
		if len(rec) < 7 {
			continue
		}
		series := strings.TrimSpace(rec[2])
		if series != "EQ" {
			continue
		}
		symbol := strings.TrimSpace(rec[0])
		if symbol == "" {
			continue
		}
		out = append(out, contracts.Instrument{
			Symbol: symbol,
			Name:   strings.TrimSpace(rec[1]),
			Series: series,
			ISIN:   strings.TrimSpace(rec[6]),
		})
	}

	if len(out) == 0 {
		return nil, fmt.Errorf("equity list has no EQ rows: %w", contracts.ErrUniverseUnavailable)
	}
	return out, nil
}
