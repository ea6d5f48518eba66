package strategy

import (
	"golang-stock-screener/internal/entity"
)

type allStrategy struct {
	name  string
	rules []ScreenStrategy
}

// All returns a screen named name that matches a record only when every rule
// matches it.
func All(name string, rules ...ScreenStrategy) ScreenStrategy {
	return &allStrategy{name: name, rules: rules}
}

func (s *allStrategy) GetName() string {
	return s.name
}

func (s *allStrategy) Match(rec *entity.StockMetrics) bool {
	for _, r := range s.rules {
		if !r.Match(rec) {
			return false
		}
	}
	return true
}
