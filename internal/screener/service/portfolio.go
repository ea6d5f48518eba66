package service

import (
	"sort"

	"golang-stock-screener/internal/entity"
)

// AssemblePortfolio orders a copy of records by current ROCE, highest first.
// Ties keep their input order and missing values sort by their sentinel value.
func AssemblePortfolio(market string, records []entity.StockMetrics) entity.Portfolio {
	sorted := append([]entity.StockMetrics(nil), records...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].ROCECY > sorted[j].ROCECY
	})
	return entity.Portfolio{Market: market, Records: sorted}
}
