package scraper

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"golang-stock-screener/internal/screener/config"
	"golang-stock-screener/internal/screener/repository"
	"golang-stock-screener/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const asxPage = `<html><body>
<table>
 <thead><tr><th class="text-center">Code</th><th>Company</th></tr></thead>
 <tbody>
  <tr><td class="text-center"><a href="/bhp">BHP</a></td><td>BHP Group</td></tr>
  <tr><td class="text-center"><a href="/cba"> CBA </a></td><td>Commonwealth Bank</td></tr>
  <tr><td class="text-center">no link</td><td><a href="/x">XYZ</a></td></tr>
 </tbody>
</table>
<table><tbody><tr><td class="text-center"><a>OTHER</a></td></tr></tbody></table>
</body></html>`

const sgxPriceList = `{"data":{"prices":[
 {"nc":"D05","type":"stocks"},
 {"nc":"A17U","type":"reits"},
 {"nc":"O39","type":"stocks"}
]}}`

const usHoldings = `<?xml version="1.0"?>
<ss:Workbook xmlns:ss="urn:schemas-microsoft-com:office:spreadsheet">
 <ss:Worksheet ss:Name="Holdings"><ss:Table>
  <ss:Row><ss:Cell><ss:Data ss:Type="String">AAPL</ss:Data></ss:Cell><ss:Cell><ss:Data ss:Type="String">APPLE INC</ss:Data></ss:Cell><ss:Cell><ss:Data ss:Type="String">IT</ss:Data></ss:Cell><ss:Cell><ss:Data ss:Type="String">Equity</ss:Data></ss:Cell></ss:Row>
  <ss:Row><ss:Cell><ss:Data ss:Type="String">--</ss:Data></ss:Cell><ss:Cell><ss:Data ss:Type="String">CASH</ss:Data></ss:Cell><ss:Cell><ss:Data ss:Type="String">Cash</ss:Data></ss:Cell><ss:Cell><ss:Data ss:Type="String">Equity</ss:Data></ss:Cell></ss:Row>
  <ss:Row><ss:Cell><ss:Data ss:Type="String">MSFT</ss:Data></ss:Cell><ss:Cell><ss:Data ss:Type="String">MICROSOFT</ss:Data></ss:Cell><ss:Cell><ss:Data ss:Type="String">IT</ss:Data></ss:Cell><ss:Cell><ss:Data ss:Type="String">Equity</ss:Data></ss:Cell></ss:Row>
  <ss:Row><ss:Cell><ss:Data ss:Type="String">USD</ss:Data></ss:Cell><ss:Cell><ss:Data ss:Type="String">DOLLAR</ss:Data></ss:Cell><ss:Cell><ss:Data ss:Type="String">Cash</ss:Data></ss:Cell><ss:Cell><ss:Data ss:Type="String">Money Market</ss:Data></ss:Cell></ss:Row>
 </ss:Table></ss:Worksheet>
</ss:Workbook>`

func hkexWorkbook(t *testing.T) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	rows := [][]interface{}{
		{"List of Securities"},
		{"Updated as at 15/10/2026"},
		{"Stock Code", "Name of Securities", "Category"},
		{"00005", "HSBC HOLDINGS", "Equity"},
		{"00823", "LINK REIT", "Real Estate Investment Trusts"},
		{"04338", "HKGB", "Debt Securities"},
		{"02800", "TRACKER FUND", "Exchange Traded Products"},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func serve(t *testing.T, body []byte) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		w.Write(body)
	}))
	t.Cleanup(srv.Close)
	return srv.URL
}

func newTestConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	cfg.Input.Directory = filepath.Join(t.TempDir(), "input")
	cfg.Scraper.Timeout = 5 * time.Second
	return cfg
}

func TestRefreshWritesReadableTickerFiles(t *testing.T) {
	tests := []struct {
		market string
		body   []byte
		want   []string
	}{
		{market: "asx", body: []byte(asxPage), want: []string{"BHP.AX", "CBA.AX"}},
		{market: "hkex", body: hkexWorkbook(t), want: []string{"0005.HK", "0823.HK"}},
		{market: "sgx", body: []byte(sgxPriceList), want: []string{"D05.SI", "O39.SI"}},
		{market: "us", body: []byte(usHoldings), want: []string{"AAPL", "MSFT"}},
	}
	for _, tt := range tests {
		t.Run(tt.market, func(t *testing.T) {
			cfg := newTestConfig(t)
			m := cfg.Markets[tt.market]
			m.SourceURL = serve(t, tt.body)
			cfg.Markets[tt.market] = m

			path, n, err := NewService(cfg, logger.NewNop()).Refresh(context.Background(), tt.market)
			require.NoError(t, err)
			assert.Equal(t, len(tt.want), n)
			assert.Equal(t, filepath.Join(cfg.Input.Directory, m.TickerFile), path)

			got, err := repository.NewTickerListRepository(cfg, logger.NewNop()).GetTickers(context.Background(), tt.market)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSGXStoresRawDocument(t *testing.T) {
	cfg := newTestConfig(t)
	m := cfg.Markets["sgx"]
	m.SourceURL = serve(t, []byte(sgxPriceList))
	cfg.Markets["sgx"] = m

	path, _, err := NewService(cfg, logger.NewNop()).Refresh(context.Background(), "sgx")
	require.NoError(t, err)
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, sgxPriceList, string(raw))
}

func TestSGXCountMatchesTickerList(t *testing.T) {
	const body = `{"data":{"prices":[
 {"nc":"D05","type":"stocks"},
 {"nc":5,"type":"stocks"},
 {"nc":null,"type":"stocks"},
 {"type":"stocks"},
 {"nc":"C6L.SI","type":"stocks"}
]}}`
	cfg := newTestConfig(t)
	m := cfg.Markets["sgx"]
	m.SourceURL = serve(t, []byte(body))
	cfg.Markets["sgx"] = m

	_, n, err := NewService(cfg, logger.NewNop()).Refresh(context.Background(), "sgx")
	require.NoError(t, err)

	got, err := repository.NewTickerListRepository(cfg, logger.NewNop()).GetTickers(context.Background(), "sgx")
	require.NoError(t, err)
	assert.Equal(t, []string{"D05.SI", "5.SI", "C6L.SI"}, got)
	assert.Equal(t, len(got), n)
}

func TestRefreshErrors(t *testing.T) {
	cfg := newTestConfig(t)
	svc := NewService(cfg, logger.NewNop())

	_, _, err := svc.Refresh(context.Background(), "nyse")
	assert.Error(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()
	m := cfg.Markets["asx"]
	m.SourceURL = srv.URL
	cfg.Markets["asx"] = m
	_, _, err = svc.Refresh(context.Background(), "asx")
	assert.ErrorContains(t, err, "status 403")

	m.SourceURL = serve(t, []byte("<html><body>nothing here</body></html>"))
	cfg.Markets["asx"] = m
	_, _, err = svc.Refresh(context.Background(), "asx")
	assert.ErrorContains(t, err, "no tickers")
	assert.NoFileExists(t, filepath.Join(cfg.Input.Directory, m.TickerFile))
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("disk full")
}

func TestWriteTickerCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tickers.csv")
	require.NoError(t, writeTickerCSV(path, "tickers", []string{"BHP.AX", "CBA.AX"}))
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "tickers\nBHP.AX\nCBA.AX\n", string(raw))

	assert.ErrorContains(t, writeTickers(failingWriter{}, "tickers", []string{"BHP.AX"}), "disk full")
	assert.Error(t, writeTickerCSV(filepath.Join(t.TempDir(), "missing", "tickers.csv"), "tickers", nil))
}

func TestNewScraper(t *testing.T) {
	client := &http.Client{}
	for _, kind := range []string{KindASX, KindHKEX, KindSGX, KindUS} {
		sc, err := NewScraper(config.Market{Scraper: kind, SourceURL: "http://example.com"}, config.Scraper{}, client)
		require.NoError(t, err)
		assert.Equal(t, kind, sc.GetName())
	}

	_, err := NewScraper(config.Market{Scraper: "lse", SourceURL: "http://example.com"}, config.Scraper{}, client)
	assert.Error(t, err)
	_, err = NewScraper(config.Market{Scraper: KindASX}, config.Scraper{}, client)
	assert.Error(t, err)
}

func TestSpreadsheetCellsMalformed(t *testing.T) {
	_, err := spreadsheetCells(strings.NewReader("<ss:Data>open"))
	assert.Error(t, err)
}
