package strategy

import (
	"strings"

	"golang-stock-screener/internal/entity"
)

// RealEstateLowPBStrategy matches real estate companies trading at a low
// price-to-book ratio.
type RealEstateLowPBStrategy struct {
	keywords []string
	maxPB    float64
}

func NewRealEstateLowPBStrategy(industries []string, maxPB float64) *RealEstateLowPBStrategy {
	keywords := make([]string, 0, len(industries))
	for _, k := range industries {
		if k = strings.ToLower(strings.TrimSpace(k)); k != "" {
			keywords = append(keywords, k)
		}
	}
	return &RealEstateLowPBStrategy{keywords: keywords, maxPB: maxPB}
}

func (s *RealEstateLowPBStrategy) GetName() string {
	return ScreenRealEstateLowPB
}

func (s *RealEstateLowPBStrategy) Match(rec *entity.StockMetrics) bool {
	return s.isRealEstate(rec.Industry) && between(rec.PB, 0, s.maxPB)
}

func (s *RealEstateLowPBStrategy) isRealEstate(industry string) bool {
	industry = strings.ToLower(industry)
	for _, k := range s.keywords {
		if strings.Contains(industry, k) {
			return true
		}
	}
	return false
}
