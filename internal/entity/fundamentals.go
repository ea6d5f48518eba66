package entity

import (
	"time"
)

// Line item names as they appear in provider statements.
const (
	LineItemPretaxIncome      = "Pretax Income"
	LineItemInterestExpense   = "Interest Expense"
	LineItemTotalRevenue      = "Total Revenue"
	LineItemTotalAssets       = "Total Assets"
	LineItemTotalDebt         = "Total Debt"
	LineItemStockholderEquity = "Stockholders Equity"
	LineItemCashAndShortTerm  = "Cash Cash Equivalents And Short Term Investments"
)

// StatementPeriod is one reporting period of a financial statement. A line item
// that was not reported is absent from Values.
type StatementPeriod struct {
	EndDate time.Time          `json:"end_date"`
	Values  map[string]float64 `json:"values"`
}

// RecommendationPeriod holds analyst recommendation counts for one period.
type RecommendationPeriod struct {
	Period     string `json:"period"`
	StrongBuy  int    `json:"strong_buy"`
	Buy        int    `json:"buy"`
	Hold       int    `json:"hold"`
	Sell       int    `json:"sell"`
	StrongSell int    `json:"strong_sell"`
}

// Total is the number of analysts with a recommendation in the period.
func (r RecommendationPeriod) Total() int {
	return r.StrongBuy + r.Buy + r.Hold + r.Sell + r.StrongSell
}

// SnapshotInfo is the descriptive and market-data block of a snapshot.
// Nil pointers mean the provider did not report the value.
type SnapshotInfo struct {
	Name            *string                `json:"name,omitempty"`
	Industry        *string                `json:"industry,omitempty"`
	MarketCap       *float64               `json:"market_cap,omitempty"`
	CurrentPrice    *float64               `json:"current_price,omitempty"`
	TrailingEPS     *float64               `json:"trailing_eps,omitempty"`
	PriceToBook     *float64               `json:"price_to_book,omitempty"`
	Recommendations []RecommendationPeriod `json:"recommendations,omitempty"`
}

// FundamentalsSnapshot is everything a provider returned for one ticker.
type FundamentalsSnapshot struct {
	Ticker          string            `json:"ticker"`
	IncomeStatement []StatementPeriod `json:"income_statement"`
	BalanceSheet    []StatementPeriod `json:"balance_sheet"`
	Info            SnapshotInfo      `json:"info"`
}

// IsEmpty reports whether either statement has no periods.
func (s *FundamentalsSnapshot) IsEmpty() bool {
	return s == nil || len(s.IncomeStatement) == 0 || len(s.BalanceSheet) == 0
}
