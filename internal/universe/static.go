package universe

import (
	"context"

	"github.com/advaitm/stockpilot/internal/contracts"
)

// StaticProvider serves a curated large-cap list. Last-resort
// fallback so a cycle can still run when every remote source is down.
type StaticProvider struct{}

// NewStaticProvider creates a StaticProvider
func NewStaticProvider() *StaticProvider { return &StaticProvider{} }

// Source names the provider for logging
func (p *StaticProvider) Source() string { return "static-largecap" }

// Instruments returns the curated list
func (p *StaticProvider) Instruments(ctx context.Context) ([]contracts.Instrument, error) {
	out := make([]contracts.Instrument, len(largeCaps))
	copy(out, largeCaps)
	return out, nil
}

var largeCaps = []contracts.Instrument{
	{Symbol: "RELIANCE", Name: "Reliance Industries", Series: "EQ", Sector: "Energy"},
	{Symbol: "TCS", Name: "Tata Consultancy Services", Series: "EQ", Sector: "IT"},
	{Symbol: "HDFCBANK", Name: "HDFC Bank", Series: "EQ", Sector: "Financials"},
	{Symbol: "INFY", Name: "Infosys", Series: "EQ", Sector: "IT"},
	{Symbol: "ICICIBANK", Name: "ICICI Bank", Series: "EQ", Sector: "Financials"},
	{Symbol: "HINDUNILVR", Name: "Hindustan Unilever", Series: "EQ", Sector: "Consumer"},
	{Symbol: "ITC", Name: "ITC", Series: "EQ", Sector: "Consumer"},
	{Symbol: "SBIN", Name: "State Bank of India", Series: "EQ", Sector: "Financials"},
	{Symbol: "BHARTIARTL", Name: "Bharti Airtel", Series: "EQ", Sector: "Telecom"},
	{Symbol: "KOTAKBANK", Name: "Kotak Mahindra Bank", Series: "EQ", Sector: "Financials"},
	{Symbol: "LT", Name: "Larsen & Toubro", Series: "EQ", Sector: "Industrials"},
	{Symbol: "AXISBANK", Name: "Axis Bank", Series: "EQ", Sector: "Financials"},
	{Symbol: "ASIANPAINT", Name: "Asian Paints", Series: "EQ", Sector: "Consumer"},
	{Symbol: "MARUTI", Name: "Maruti Suzuki", Series: "EQ", Sector: "Auto"},
	{Symbol: "SUNPHARMA", Name: "Sun Pharmaceutical", Series: "EQ", Sector: "Pharma"},
	{Symbol: "TITAN", Name: "Titan Company", Series: "EQ", Sector: "Consumer"},
	{Symbol: "WIPRO", Name: "Wipro", Series: "EQ", Sector: "IT"},
	{Symbol: "ULTRACEMCO", Name: "UltraTech Cement", Series: "EQ", Sector: "Materials"},
	{Symbol: "NESTLEIND", Name: "Nestle India", Series: "EQ", Sector: "Consumer"},
	{Symbol: "TATAMOTORS", Name: "Tata Motors", Series: "EQ", Sector: "Auto"},
	{Symbol: "POWERGRID", Name: "Power Grid", Series: "EQ", Sector: "Utilities"},
	{Symbol: "NTPC", Name: "NTPC", Series: "EQ", Sector: "Utilities"},
	{Symbol: "TATASTEEL", Name: "Tata Steel", Series: "EQ", Sector: "Materials"},
	{Symbol: "BAJFINANCE", Name: "Bajaj Finance", Series: "EQ", Sector: "Financials"},
	{Symbol: "HCLTECH", Name: "HCL Technologies", Series: "EQ", Sector: "IT"},
}
