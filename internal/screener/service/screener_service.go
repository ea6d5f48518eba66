package service

import (
	"golang-stock-screener/internal/entity"
	"golang-stock-screener/internal/screener/strategy"
)

// ScreenerService applies every configured screen to a portfolio.
type ScreenerService interface {
	// Screen returns one result per screen, in screen order. Each result keeps
	// the portfolio order and the portfolio itself is left untouched.
	Screen(portfolio entity.Portfolio) []entity.ScreenResult
	Screens() []string
}

type screenerService struct {
	strategies []strategy.ScreenStrategy
}

func NewScreenerService(strategies []strategy.ScreenStrategy) ScreenerService {
	return &screenerService{strategies: strategies}
}

func (s *screenerService) Screens() []string {
	names := make([]string, 0, len(s.strategies))
	for _, st := range s.strategies {
		names = append(names, st.GetName())
	}
	return names
}

func (s *screenerService) Screen(portfolio entity.Portfolio) []entity.ScreenResult {
	results := make([]entity.ScreenResult, 0, len(s.strategies))
	for _, st := range s.strategies {
		result := entity.ScreenResult{Screen: st.GetName(), Records: []entity.StockMetrics{}}
		for i := range portfolio.Records {
			if st.Match(&portfolio.Records[i]) {
				result.Records = append(result.Records, portfolio.Records[i])
			}
		}
		results = append(results, result)
	}
	return results
}
