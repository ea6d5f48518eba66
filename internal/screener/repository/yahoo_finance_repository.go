package repository

import (
	"context"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sort"
	"strings"
	"time"

	"golang-stock-screener/internal/entity"
	"golang-stock-screener/internal/screener/config"
	"golang-stock-screener/pkg/common"
	"golang-stock-screener/pkg/logger"
	"golang-stock-screener/pkg/utils"

	"github.com/patrickmn/go-cache"
	"github.com/tidwall/gjson"
)

const (
	yahooCrumbCacheKey  = "yahoo_crumb"
	yahooSummaryModules = "price,assetProfile,defaultKeyStatistics,financialData,recommendationTrend"
)

// Annual timeseries types mapped to statement line items.
var (
	yahooIncomeTypes = map[string]string{
		"annualPretaxIncome":    entity.LineItemPretaxIncome,
		"annualInterestExpense": entity.LineItemInterestExpense,
		"annualTotalRevenue":    entity.LineItemTotalRevenue,
	}
	yahooBalanceTypes = map[string]string{
		"annualTotalAssets":        entity.LineItemTotalAssets,
		"annualTotalDebt":          entity.LineItemTotalDebt,
		"annualStockholdersEquity": entity.LineItemStockholderEquity,

		"annualCashCashEquivalentsAndShortTermInvestments": entity.LineItemCashAndShortTerm,
	}
)

type yahooFinanceRepository struct {
	cfg        config.YahooFinance
	log        *logger.Logger
	httpClient *http.Client
	fetcher    *httpFetcher
	crumbCache *cache.Cache
	now        func() time.Time
}

// NewYahooFinanceRepository creates a fundamentals provider backed by Yahoo Finance.
func NewYahooFinanceRepository(cfg *config.Config, log *logger.Logger) (FundamentalsRepository, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}
	yc := cfg.Provider.Yahoo
	client := &http.Client{Timeout: yc.Timeout, Jar: jar}
	return &yahooFinanceRepository{
		cfg:        yc,
		log:        log,
		httpClient: client,
		fetcher:    newHTTPFetcher(common.ProviderYahoo, client, yc.MaxRequestPerMinute, yc.MaxRetries, yc.RetryDelayBase, log),
		crumbCache: cache.New(yc.CrumbTTL, 2*yc.CrumbTTL),
		now:        time.Now,
	}, nil
}

func (r *yahooFinanceRepository) GetFundamentals(ctx context.Context, ticker string) (*entity.FundamentalsSnapshot, error) {
	snapshot := &entity.FundamentalsSnapshot{Ticker: ticker}

	income, balance, err := r.getStatements(ctx, ticker)
	if err != nil {
		return nil, err
	}
	snapshot.IncomeStatement = income
	snapshot.BalanceSheet = balance
	if snapshot.IsEmpty() {
		r.log.DebugContext(ctx, "Yahoo Finance returned no statements", logger.StringField("ticker", ticker))
		return snapshot, nil
	}

	info, err := r.getInfo(ctx, ticker)
	if err != nil {
		return nil, err
	}
	snapshot.Info = info
	return snapshot, nil
}

func (r *yahooFinanceRepository) getStatements(ctx context.Context, ticker string) ([]entity.StatementPeriod, []entity.StatementPeriod, error) {
	types := make([]string, 0, len(yahooIncomeTypes)+len(yahooBalanceTypes))
	for t := range yahooIncomeTypes {
		types = append(types, t)
	}
	for t := range yahooBalanceTypes {
		types = append(types, t)
	}
	sort.Strings(types)

	now := r.now()
	start := now.AddDate(-r.cfg.HistoryYears-1, 0, 0)
	u := fmt.Sprintf("%s/ws/fundamentals-timeseries/v1/finance/timeseries/%s?symbol=%s&type=%s&period1=%d&period2=%d",
		r.cfg.BaseURL, url.PathEscape(ticker), url.QueryEscape(ticker), strings.Join(types, ","), start.Unix(), now.Unix())

	body, err := r.fetcher.get(ctx, u)
	if err != nil {
		if IsStatus(err, http.StatusNotFound) {
			return nil, nil, nil
		}
		return nil, nil, fmt.Errorf("failed to fetch statements for %s: %w", ticker, err)
	}

	income := map[string]*entity.StatementPeriod{}
	balance := map[string]*entity.StatementPeriod{}
	gjson.GetBytes(body, "timeseries.result").ForEach(func(_, item gjson.Result) bool {
		typ := item.Get("meta.type.0").String()
		target, lineItem := income, yahooIncomeTypes[typ]
		if lineItem == "" {
			target, lineItem = balance, yahooBalanceTypes[typ]
		}
		if lineItem == "" {
			return true
		}
		item.Get(typ).ForEach(func(_, point gjson.Result) bool {
			raw := point.Get("reportedValue.raw")
			date := point.Get("asOfDate").String()
			if date == "" || raw.Type != gjson.Number {
				return true
			}
			p, ok := target[date]
			if !ok {
				end, _ := time.Parse("2006-01-02", date)
				p = &entity.StatementPeriod{EndDate: end, Values: map[string]float64{}}
				target[date] = p
			}
			p.Values[lineItem] = raw.Float()
			return true
		})
		return true
	})

	return periodsByDate(income), periodsByDate(balance), nil
}

// periodsByDate returns the periods newest first.
func periodsByDate(m map[string]*entity.StatementPeriod) []entity.StatementPeriod {
	dates := make([]string, 0, len(m))
	for d := range m {
		dates = append(dates, d)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(dates)))
	out := make([]entity.StatementPeriod, 0, len(dates))
	for _, d := range dates {
		out = append(out, *m[d])
	}
	return out
}

func (r *yahooFinanceRepository) getInfo(ctx context.Context, ticker string) (entity.SnapshotInfo, error) {
	body, err := r.getQuoteSummary(ctx, ticker)
	if IsStatus(err, http.StatusUnauthorized) {
		r.log.DebugContext(ctx, "Yahoo Finance crumb rejected, refreshing", logger.StringField("ticker", ticker))
		r.crumbCache.Delete(yahooCrumbCacheKey)
		body, err = r.getQuoteSummary(ctx, ticker)
	}
	if err != nil {
		if IsStatus(err, http.StatusNotFound) {
			return entity.SnapshotInfo{}, nil
		}
		return entity.SnapshotInfo{}, fmt.Errorf("failed to fetch quote summary for %s: %w", ticker, err)
	}

	result := gjson.GetBytes(body, "quoteSummary.result.0")
	info := entity.SnapshotInfo{
		Name:         optString(result.Get("price.longName")),
		Industry:     optString(result.Get("assetProfile.industry")),
		MarketCap:    optFloat(result.Get("price.marketCap.raw")),
		CurrentPrice: optFloat(result.Get("financialData.currentPrice.raw")),
		TrailingEPS:  optFloat(result.Get("defaultKeyStatistics.trailingEps.raw")),
		PriceToBook:  optFloat(result.Get("defaultKeyStatistics.priceToBook.raw")),
	}
	result.Get("recommendationTrend.trend").ForEach(func(_, trend gjson.Result) bool {
		info.Recommendations = append(info.Recommendations, entity.RecommendationPeriod{
			Period:     trend.Get("period").String(),
			StrongBuy:  int(trend.Get("strongBuy").Int()),
			Buy:        int(trend.Get("buy").Int()),
			Hold:       int(trend.Get("hold").Int()),
			Sell:       int(trend.Get("sell").Int()),
			StrongSell: int(trend.Get("strongSell").Int()),
		})
		return true
	})
	return info, nil
}

func (r *yahooFinanceRepository) getQuoteSummary(ctx context.Context, ticker string) ([]byte, error) {
	crumb, err := r.getCrumb(ctx)
	if err != nil {
		return nil, err
	}
	u := fmt.Sprintf("%s/v10/finance/quoteSummary/%s?modules=%s&crumb=%s",
		r.cfg.BaseURL, url.PathEscape(ticker), yahooSummaryModules, url.QueryEscape(crumb))
	return r.fetcher.get(ctx, u)
}

// getCrumb returns the session crumb, obtaining a session cookie first when
// the cached crumb has expired.
func (r *yahooFinanceRepository) getCrumb(ctx context.Context) (string, error) {
	if v, ok := r.crumbCache.Get(yahooCrumbCacheKey); ok {
		return v.(string), nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.cfg.CookieURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", common.BrowserUserAgent)
	resp, err := r.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to obtain yahoo session cookie: %w", err)
	}
	resp.Body.Close()

	body, err := r.fetcher.get(ctx, r.cfg.BaseURL+"/v1/test/getcrumb")
	if err != nil {
		return "", fmt.Errorf("failed to obtain yahoo crumb: %w", err)
	}
	crumb := strings.TrimSpace(string(body))
	if crumb == "" || strings.ContainsAny(crumb, "<{") {
		return "", fmt.Errorf("failed to obtain yahoo crumb: unexpected body %q", crumb)
	}

	r.crumbCache.Set(yahooCrumbCacheKey, crumb, cache.DefaultExpiration)
	r.log.DebugContext(ctx, "Yahoo Finance crumb refreshed")
	return crumb, nil
}

func optString(v gjson.Result) *string {
	if v.Type != gjson.String || strings.TrimSpace(v.String()) == "" {
		return nil
	}
	return utils.ToPointer(v.String())
}

func optFloat(v gjson.Result) *float64 {
	if v.Type != gjson.Number {
		return nil
	}
	return utils.ToPointer(v.Float())
}
