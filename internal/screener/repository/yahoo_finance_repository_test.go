package repository

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"golang-stock-screener/internal/entity"
	"golang-stock-screener/internal/screener/config"
	"golang-stock-screener/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const yahooTimeseriesBody = `{"timeseries":{"result":[
 {"meta":{"symbol":["D05.SI"],"type":["annualPretaxIncome"]},"timestamp":[1,2],
  "annualPretaxIncome":[
   {"asOfDate":"2022-12-31","periodType":"12M","reportedValue":{"raw":90,"fmt":"90"}},
   {"asOfDate":"2023-12-31","periodType":"12M","reportedValue":{"raw":100,"fmt":"100"}}]},
 {"meta":{"symbol":["D05.SI"],"type":["annualInterestExpense"]},
  "annualInterestExpense":[null,{"asOfDate":"2023-12-31","reportedValue":{"raw":20}}]},
 {"meta":{"symbol":["D05.SI"],"type":["annualTotalAssets"]},
  "annualTotalAssets":[
   {"asOfDate":"2022-12-31","reportedValue":{"raw":900}},
   {"asOfDate":"2023-12-31","reportedValue":{"raw":1000}}]},
 {"meta":{"symbol":["D05.SI"],"type":["annualTotalDebt"]}},
 {"meta":{"symbol":["D05.SI"],"type":["annualSomethingElse"]},
  "annualSomethingElse":[{"asOfDate":"2023-12-31","reportedValue":{"raw":5}}]}
],"error":null}}`

const yahooQuoteSummaryBody = `{"quoteSummary":{"result":[{
 "price":{"longName":"DBS Group Holdings Ltd","marketCap":{"raw":98000000000,"fmt":"98B"}},
 "assetProfile":{"industry":"Banks - Regional"},
 "financialData":{"currentPrice":{"raw":35.5}},
 "defaultKeyStatistics":{"trailingEps":{"raw":3.55},"priceToBook":{}},
 "recommendationTrend":{"trend":[
  {"period":"0m","strongBuy":2,"buy":5,"hold":3,"sell":0,"strongSell":0},
  {"period":"-1m","strongBuy":1,"buy":5,"hold":4,"sell":1,"strongSell":1}]}
}],"error":null}}`

type yahooStub struct {
	crumbCalls    atomic.Int32
	summaryCalls  atomic.Int32
	failuresLeft  atomic.Int32
	rejectCrumbs  atomic.Int32
	summaryStatus int
}

func (s *yahooStub) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/cookie", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "A3", Value: "session", Path: "/"})
		w.WriteHeader(http.StatusNotFound)
	})
	mux.HandleFunc("/v1/test/getcrumb", func(w http.ResponseWriter, r *http.Request) {
		n := s.crumbCalls.Add(1)
		fmt.Fprintf(w, "crumb-%d", n)
	})
	mux.HandleFunc("/ws/fundamentals-timeseries/v1/finance/timeseries/", func(w http.ResponseWriter, r *http.Request) {
		if s.failuresLeft.Load() > 0 {
			s.failuresLeft.Add(-1)
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		if r.URL.Query().Get("symbol") != "D05.SI" {
			fmt.Fprint(w, `{"timeseries":{"result":[],"error":null}}`)
			return
		}
		assert.Contains(t, r.URL.Query().Get("type"), "annualPretaxIncome")
		fmt.Fprint(w, yahooTimeseriesBody)
	})
	mux.HandleFunc("/v10/finance/quoteSummary/", func(w http.ResponseWriter, r *http.Request) {
		s.summaryCalls.Add(1)
		if s.rejectCrumbs.Load() > 0 {
			s.rejectCrumbs.Add(-1)
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if s.summaryStatus != 0 {
			w.WriteHeader(s.summaryStatus)
			fmt.Fprint(w, `{"quoteSummary":{"result":null,"error":{"code":"Not Found"}}}`)
			return
		}
		assert.NotEmpty(t, r.URL.Query().Get("crumb"))
		fmt.Fprint(w, yahooQuoteSummaryBody)
	})
	return mux
}

func newYahooTestRepo(t *testing.T, stub *yahooStub) FundamentalsRepository {
	t.Helper()
	srv := httptest.NewServer(stub.handler(t))
	t.Cleanup(srv.Close)

	cfg := &config.Config{Provider: config.Provider{Yahoo: config.YahooFinance{
		BaseURL:             srv.URL,
		CookieURL:           srv.URL + "/cookie",
		Timeout:             5 * time.Second,
		MaxRequestPerMinute: 60000,
		MaxRetries:          2,
		RetryDelayBase:      time.Millisecond,
		CrumbTTL:            time.Hour,
		HistoryYears:        5,
	}}}
	repo, err := NewYahooFinanceRepository(cfg, logger.NewNop())
	require.NoError(t, err)
	return repo
}

func TestYahooGetFundamentals(t *testing.T) {
	stub := &yahooStub{}
	repo := newYahooTestRepo(t, stub)

	snap, err := repo.GetFundamentals(context.Background(), "D05.SI")
	require.NoError(t, err)

	require.Len(t, snap.IncomeStatement, 2)
	current := snap.IncomeStatement[0]
	assert.Equal(t, time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC), current.EndDate)
	assert.Equal(t, 100.0, current.Values[entity.LineItemPretaxIncome])
	assert.Equal(t, 20.0, current.Values[entity.LineItemInterestExpense])
	_, hasInterest := snap.IncomeStatement[1].Values[entity.LineItemInterestExpense]
	assert.False(t, hasInterest)

	require.Len(t, snap.BalanceSheet, 2)
	assert.Equal(t, 1000.0, snap.BalanceSheet[0].Values[entity.LineItemTotalAssets])
	_, hasDebt := snap.BalanceSheet[0].Values[entity.LineItemTotalDebt]
	assert.False(t, hasDebt)

	require.NotNil(t, snap.Info.Name)
	assert.Equal(t, "DBS Group Holdings Ltd", *snap.Info.Name)
	assert.Equal(t, "Banks - Regional", *snap.Info.Industry)
	assert.Equal(t, 98000000000.0, *snap.Info.MarketCap)
	assert.Equal(t, 35.5, *snap.Info.CurrentPrice)
	assert.Equal(t, 3.55, *snap.Info.TrailingEPS)
	assert.Nil(t, snap.Info.PriceToBook)
	require.Len(t, snap.Info.Recommendations, 2)
	assert.Equal(t, 10, snap.Info.Recommendations[0].Total())
	assert.Equal(t, 12, snap.Info.Recommendations[1].Total())
}

func TestYahooCrumbIsCached(t *testing.T) {
	stub := &yahooStub{}
	repo := newYahooTestRepo(t, stub)

	for i := 0; i < 3; i++ {
		_, err := repo.GetFundamentals(context.Background(), "D05.SI")
		require.NoError(t, err)
	}
	assert.Equal(t, int32(1), stub.crumbCalls.Load())
	assert.Equal(t, int32(3), stub.summaryCalls.Load())
}

func TestYahooRefreshesRejectedCrumb(t *testing.T) {
	stub := &yahooStub{}
	stub.rejectCrumbs.Store(1)
	repo := newYahooTestRepo(t, stub)

	snap, err := repo.GetFundamentals(context.Background(), "D05.SI")
	require.NoError(t, err)
	assert.NotNil(t, snap.Info.Name)
	assert.Equal(t, int32(2), stub.crumbCalls.Load())
}

func TestYahooRetriesServerErrors(t *testing.T) {
	stub := &yahooStub{}
	stub.failuresLeft.Store(2)
	repo := newYahooTestRepo(t, stub)

	snap, err := repo.GetFundamentals(context.Background(), "D05.SI")
	require.NoError(t, err)
	assert.Len(t, snap.IncomeStatement, 2)
}

func TestYahooGivesUpAfterMaxRetries(t *testing.T) {
	stub := &yahooStub{}
	stub.failuresLeft.Store(5)
	repo := newYahooTestRepo(t, stub)

	_, err := repo.GetFundamentals(context.Background(), "D05.SI")
	require.Error(t, err)
	assert.True(t, IsStatus(err, http.StatusServiceUnavailable))
}

func TestYahooUnknownTickerYieldsEmptySnapshot(t *testing.T) {
	stub := &yahooStub{}
	repo := newYahooTestRepo(t, stub)

	snap, err := repo.GetFundamentals(context.Background(), "NOPE.SI")
	require.NoError(t, err)
	assert.True(t, snap.IsEmpty())
	assert.Equal(t, int32(0), stub.summaryCalls.Load())
}

func TestYahooMissingQuoteSummaryKeepsStatements(t *testing.T) {
	stub := &yahooStub{summaryStatus: http.StatusNotFound}
	repo := newYahooTestRepo(t, stub)

	snap, err := repo.GetFundamentals(context.Background(), "D05.SI")
	require.NoError(t, err)
	assert.False(t, snap.IsEmpty())
	assert.Nil(t, snap.Info.Name)
}
