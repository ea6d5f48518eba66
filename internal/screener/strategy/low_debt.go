package strategy

import (
	"golang-stock-screener/internal/entity"
)

// LowDebtStrategy matches companies whose current debt to equity ratio is at
// most the threshold. Negative ratios, from negative equity, also match.
type LowDebtStrategy struct {
	maxDebtEquity float64
}

func NewLowDebtStrategy(maxDebtEquity float64) *LowDebtStrategy {
	return &LowDebtStrategy{maxDebtEquity: maxDebtEquity}
}

func (s *LowDebtStrategy) GetName() string {
	return ScreenLowDebt
}

func (s *LowDebtStrategy) Match(rec *entity.StockMetrics) bool {
	return !entity.IsMissing(rec.DebtEquityCY) && rec.DebtEquityCY <= s.maxDebtEquity
}
