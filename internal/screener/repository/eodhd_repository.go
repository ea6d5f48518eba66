package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"golang-stock-screener/internal/entity"
	"golang-stock-screener/internal/screener/config"
	"golang-stock-screener/internal/screener/dto"
	"golang-stock-screener/pkg/common"
	"golang-stock-screener/pkg/logger"
)

var (
	eodhdIncomeFields = map[string]string{
		"incomeBeforeTax": entity.LineItemPretaxIncome,
		"interestExpense": entity.LineItemInterestExpense,
		"totalRevenue":    entity.LineItemTotalRevenue,
	}
	eodhdBalanceFields = map[string]string{
		"totalAssets":                 entity.LineItemTotalAssets,
		"shortLongTermDebtTotal":      entity.LineItemTotalDebt,
		"totalStockholderEquity":      entity.LineItemStockholderEquity,
		"cashAndShortTermInvestments": entity.LineItemCashAndShortTerm,
	}

	// Yahoo suffixes mapped to EODHD exchange codes.
	eodhdExchanges = map[string]string{
		".AX": ".AU",
		".SI": ".SG",
		".HK": ".HK",
	}
)

type eodhdRepository struct {
	cfg     config.EODHD
	log     *logger.Logger
	fetcher *httpFetcher
}

// NewEODHDRepository creates a fundamentals provider backed by the EODHD API.
func NewEODHDRepository(cfg *config.Config, log *logger.Logger) FundamentalsRepository {
	ec := cfg.Provider.EODHD
	return &eodhdRepository{
		cfg:     ec,
		log:     log,
		fetcher: newHTTPFetcher(common.ProviderEODHD, &http.Client{Timeout: ec.Timeout}, ec.MaxRequestPerMinute, ec.MaxRetries, ec.RetryDelayBase, log),
	}
}

// EODHDSymbol converts a Yahoo style ticker to an EODHD symbol.
func EODHDSymbol(ticker string) string {
	if i := strings.LastIndex(ticker, "."); i > 0 {
		if exchange, ok := eodhdExchanges[strings.ToUpper(ticker[i:])]; ok {
			return ticker[:i] + exchange
		}
		return ticker
	}
	return ticker + ".US"
}

func (r *eodhdRepository) GetFundamentals(ctx context.Context, ticker string) (*entity.FundamentalsSnapshot, error) {
	symbol := EODHDSymbol(ticker)
	snapshot := &entity.FundamentalsSnapshot{Ticker: ticker}

	u := fmt.Sprintf("%s/fundamentals/%s?api_token=%s&fmt=json", r.cfg.BaseURL, url.PathEscape(symbol), url.QueryEscape(r.cfg.APIKey))
	body, err := r.fetcher.get(ctx, u)
	if err != nil {
		if IsStatus(err, http.StatusNotFound) {
			return snapshot, nil
		}
		return nil, fmt.Errorf("failed to fetch eodhd fundamentals for %s: %w", symbol, err)
	}

	var resp dto.EODHDFundamentalsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		// Symbols without fundamentals come back as an empty JSON array.
		if strings.HasPrefix(strings.TrimSpace(string(body)), "[") {
			return snapshot, nil
		}
		return nil, fmt.Errorf("failed to decode eodhd fundamentals for %s: %w", symbol, err)
	}

	snapshot.IncomeStatement = eodhdPeriods(resp.Financials.IncomeStatement, eodhdIncomeFields, r.cfg.HistoryYears)
	snapshot.BalanceSheet = eodhdPeriods(resp.Financials.BalanceSheet, eodhdBalanceFields, r.cfg.HistoryYears)
	if snapshot.IsEmpty() {
		return snapshot, nil
	}

	snapshot.Info = entity.SnapshotInfo{
		MarketCap:   resp.Highlights.MarketCapitalization.Ptr(),
		TrailingEPS: resp.Highlights.EarningsShare.Ptr(),
		PriceToBook: resp.Valuation.PriceBookMRQ.Ptr(),
	}
	if name := strings.TrimSpace(resp.General.Name); name != "" {
		snapshot.Info.Name = &name
	}
	if industry := strings.TrimSpace(resp.General.Industry); industry != "" {
		snapshot.Info.Industry = &industry
	}
	if ratings := resp.AnalystRatings; ratings.StrongBuy.Valid || ratings.Buy.Valid || ratings.Hold.Valid || ratings.Sell.Valid || ratings.StrongSell.Valid {
		snapshot.Info.Recommendations = []entity.RecommendationPeriod{{
			Period:     "0m",
			StrongBuy:  int(ratings.StrongBuy.Value),
			Buy:        int(ratings.Buy.Value),
			Hold:       int(ratings.Hold.Value),
			Sell:       int(ratings.Sell.Value),
			StrongSell: int(ratings.StrongSell.Value),
		}}
	}

	price, err := r.getPrice(ctx, symbol)
	if err != nil {
		r.log.WarnContext(ctx, "Failed to fetch eodhd price, P/E will be missing",
			logger.StringField("symbol", symbol), logger.ErrorField(err))
	}
	snapshot.Info.CurrentPrice = price
	return snapshot, nil
}

func (r *eodhdRepository) getPrice(ctx context.Context, symbol string) (*float64, error) {
	u := fmt.Sprintf("%s/real-time/%s?api_token=%s&fmt=json", r.cfg.BaseURL, url.PathEscape(symbol), url.QueryEscape(r.cfg.APIKey))
	body, err := r.fetcher.get(ctx, u)
	if err != nil {
		return nil, err
	}
	var quote dto.EODHDRealTimeQuote
	if err := json.Unmarshal(body, &quote); err != nil {
		return nil, err
	}
	return quote.Close.Ptr(), nil
}

// eodhdPeriods converts a yearly statement to periods, newest first, keeping
// only the mapped fields that carry a number. Years with no such field are
// dropped and at most limit periods are kept; limit <= 0 keeps them all.
func eodhdPeriods(stmt dto.EODHDStatement, fields map[string]string, limit int) []entity.StatementPeriod {
	dates := make([]string, 0, len(stmt.Yearly))
	for d := range stmt.Yearly {
		dates = append(dates, d)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(dates)))

	periods := make([]entity.StatementPeriod, 0, len(dates))
	for _, d := range dates {
		if limit > 0 && len(periods) == limit {
			break
		}
		end, err := time.Parse("2006-01-02", d)
		if err != nil {
			continue
		}
		values := map[string]float64{}
		for field, lineItem := range fields {
			if v, ok := stmt.Yearly[d][field]; ok && v.Valid {
				values[lineItem] = v.Value
			}
		}
		if len(values) == 0 {
			continue
		}
		periods = append(periods, entity.StatementPeriod{EndDate: end, Values: values})
	}
	return periods
}
