package strategy

import (
	"golang-stock-screener/internal/entity"
)

// NetNetStrategy matches companies with a low price-to-book ratio whose cash
// and short term investments make up a large share of total assets.
type NetNetStrategy struct {
	maxPB         float64
	minCashAssets float64
}

func NewNetNetStrategy(maxPB, minCashAssets float64) *NetNetStrategy {
	return &NetNetStrategy{maxPB: maxPB, minCashAssets: minCashAssets}
}

func (s *NetNetStrategy) GetName() string {
	return ScreenNetNet
}

func (s *NetNetStrategy) Match(rec *entity.StockMetrics) bool {
	return between(rec.PB, 0, s.maxPB) &&
		!entity.IsMissing(rec.CashAssets) &&
		rec.CashAssets >= s.minCashAssets
}
