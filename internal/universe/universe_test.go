package universe

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/advaitm/stockpilot/internal/contracts"
	"github.com/advaitm/stockpilot/pkg/config"
	"github.com/advaitm/stockpilot/pkg/httputil"
	"github.com/advaitm/stockpilot/pkg/logger"
)

const equityCSV = `SYMBOL,NAME OF COMPANY,SERIES,DATE OF LISTING,PAID UP VALUE,MARKET LOT,ISIN NUMBER,FACE VALUE
RELIANCE,Reliance Industries Limited,EQ,29-NOV-1995,10,1,INE002A01018,10
SUZLON,Suzlon Energy Limited,BE,19-OCT-2005,2,1,INE040H01021,2
TCS,Tata Consultancy Services Limited,EQ,25-AUG-2004,1,1,INE467B01029,1
`

func testClient(t *testing.T) (*httputil.Client, *logger.Logger) {
	t.Helper()
	cfg := &config.Config{Env: "test", LogLevel: "error"}
	log := logger.New(cfg)
	return httputil.New(cfg, log).DisableRetry(), log
}

func csvProviderFor(t *testing.T, srv *httptest.Server) *CSVProvider {
	t.Helper()
	client, log := testClient(t)
	cfg := &config.Config{NSE: config.NSEConfig{ArchivesURL: srv.URL}}
	return NewCSVProvider(cfg, client, log)
}

func TestCSVProviderParsesEquityList(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, equityListPath, r.URL.Path)
		w.Write([]byte(equityCSV))
	}))
	defer srv.Close()

	instruments, err := csvProviderFor(t, srv).Instruments(context.Background())
	require.NoError(t, err)

	// The BE series row is filtered out
	require.Len(t, instruments, 2)
	assert.Equal(t, "RELIANCE", instruments[0].Symbol)
	assert.Equal(t, "Reliance Industries Limited", instruments[0].Name)
	assert.Equal(t, "INE002A01018", instruments[0].ISIN)
	assert.Equal(t, "TCS", instruments[1].Symbol)
}

func TestCSVProviderServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := csvProviderFor(t, srv).Instruments(context.Background())
	assert.ErrorIs(t, err, contracts.ErrUniverseUnavailable)
}

func TestCSVProviderNoEquityRows(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("SYMBOL,NAME OF COMPANY,SERIES\nSUZLON,Suzlon Energy,BE\n"))
	}))
	defer srv.Close()

	_, err := csvProviderFor(t, srv).Instruments(context.Background())
	assert.ErrorIs(t, err, contracts.ErrUniverseUnavailable)
}

func TestScrapeProviderParsesTable(t *testing.T) {
	const page = `<html><body><table><tbody>
		<tr><td>RELIANCE</td><td>Reliance Industries</td><td>EQ</td></tr>
		<tr><td>SUZLON</td><td>Suzlon Energy</td><td>BE</td></tr>
		<tr><td>INFY</td><td>Infosys</td><td>EQ</td></tr>
	</tbody></table></body></html>`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, equityTablePath, r.URL.Path)
		w.Write([]byte(page))
	}))
	defer srv.Close()

	client, log := testClient(t)
	cfg := &config.Config{NSE: config.NSEConfig{BaseURL: srv.URL, ScrapeEnabled: true}}
	p := NewScrapeProvider(cfg, client, log)

	instruments, err := p.Instruments(context.Background())
	require.NoError(t, err)
	require.Len(t, instruments, 2)
	assert.Equal(t, "RELIANCE", instruments[0].Symbol)
	assert.Equal(t, "INFY", instruments[1].Symbol)
}

func TestScrapeProviderDisabled(t *testing.T) {
	client, log := testClient(t)
	cfg := &config.Config{NSE: config.NSEConfig{BaseURL: "http://localhost", ScrapeEnabled: false}}
	p := NewScrapeProvider(cfg, client, log)

	_, err := p.Instruments(context.Background())
	assert.ErrorIs(t, err, contracts.ErrUniverseUnavailable)
}

func TestStaticProvider(t *testing.T) {
	instruments, err := NewStaticProvider().Instruments(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, instruments)
	for _, inst := range instruments {
		assert.NotEmpty(t, inst.Symbol)
		assert.Equal(t, "EQ", inst.Series)
	}
}

type stubProvider struct {
	name        string
	instruments []contracts.Instrument
	err         error
	calls       int
}

func (s *stubProvider) Source() string { return s.name }

func (s *stubProvider) Instruments(ctx context.Context) ([]contracts.Instrument, error) {
	s.calls++
	return s.instruments, s.err
}

func TestChainFallsThrough(t *testing.T) {
	_, log := testClient(t)

	failing := &stubProvider{name: "primary", err: errors.New("fetch failed")}
	working := &stubProvider{name: "fallback", instruments: []contracts.Instrument{{Symbol: "TCS"}}}

	chain := NewChain(log, failing, working)
	instruments, err := chain.Instruments(context.Background())
	require.NoError(t, err)
	assert.Len(t, instruments, 1)
	assert.Equal(t, 1, failing.calls)
	assert.Equal(t, "fallback", chain.Source())
}

type stubInstrumentRepo struct {
	cached   []contracts.Instrument
	replaces int
	err      error
}

func (s *stubInstrumentRepo) ReplaceAll(ctx context.Context, instruments []contracts.Instrument) error {
	s.replaces++
	if s.err != nil {
		return s.err
	}
	s.cached = instruments
	return nil
}

func (s *stubInstrumentRepo) GetAll(ctx context.Context) ([]contracts.Instrument, error) {
	if s.err != nil {
		return nil, s.err
	}
	if len(s.cached) == 0 {
		return nil, contracts.ErrNotFound
	}
	return s.cached, nil
}

func TestCachedProvider(t *testing.T) {
	repo := &stubInstrumentRepo{cached: []contracts.Instrument{{Symbol: "TCS"}}}

	instruments, err := NewCachedProvider(repo).Instruments(context.Background())
	require.NoError(t, err)
	assert.Len(t, instruments, 1)
}

func TestCachedProviderEmpty(t *testing.T) {
	_, err := NewCachedProvider(&stubInstrumentRepo{}).Instruments(context.Background())
	assert.ErrorIs(t, err, contracts.ErrUniverseUnavailable)
}

func TestChainWritesBackLiveFetch(t *testing.T) {
	_, log := testClient(t)
	repo := &stubInstrumentRepo{}

	live := &stubProvider{name: "live", instruments: []contracts.Instrument{{Symbol: "TCS"}, {Symbol: "INFY"}}}
	chain := NewChain(log, live, NewStaticProvider()).WithCache(repo)

	_, err := chain.Instruments(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, repo.replaces)
	assert.Len(t, repo.cached, 2)
}

func TestChainSkipsWriteBackFromCacheAndStatic(t *testing.T) {
	_, log := testClient(t)
	repo := &stubInstrumentRepo{cached: []contracts.Instrument{{Symbol: "TCS"}}}

	failing := &stubProvider{name: "live", err: errors.New("fetch failed")}
	chain := NewChain(log, failing, NewCachedProvider(repo), NewStaticProvider()).WithCache(repo)

	instruments, err := chain.Instruments(context.Background())
	require.NoError(t, err)
	assert.Len(t, instruments, 1)
	assert.Equal(t, "pg-cache", chain.Source())
	assert.Zero(t, repo.replaces)
}

func TestChainAllFail(t *testing.T) {
	_, log := testClient(t)

	chain := NewChain(log,
		&stubProvider{name: "a", err: contracts.ErrUniverseUnavailable},
		&stubProvider{name: "b", err: contracts.ErrUniverseUnavailable})

	_, err := chain.Instruments(context.Background())
	assert.ErrorIs(t, err, contracts.ErrUniverseUnavailable)
	assert.Equal(t, "none", chain.Source())
}
