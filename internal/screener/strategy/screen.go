package strategy

import (
	"golang-stock-screener/internal/entity"
	"golang-stock-screener/internal/screener/config"
)

const (
	ScreenRealEstateLowPB = "real_estate_low_pb"
	ScreenNetNet          = "net_net"
	ScreenLowDebt         = "low_debt"
)

// ScreenStrategy is one named screening rule. A field holding the missing
// sentinel never satisfies a rule.
type ScreenStrategy interface {
	Match(rec *entity.StockMetrics) bool
	GetName() string
}

// NewScreenStrategies returns the enabled screens in report order, followed by
// the configured composites. Composite members naming an unknown screen are
// ignored; config validation rejects them.
func NewScreenStrategies(cfg config.Screens) []ScreenStrategy {
	rules := map[string]ScreenStrategy{
		ScreenRealEstateLowPB: NewRealEstateLowPBStrategy(cfg.RealEstateLowPB.Industries, cfg.RealEstateLowPB.MaxPB),
		ScreenNetNet:          NewNetNetStrategy(cfg.NetNet.MaxPB, cfg.NetNet.MinCashAssets),
		ScreenLowDebt:         NewLowDebtStrategy(cfg.LowDebt.MaxDebtEquity),
	}

	var strategies []ScreenStrategy
	if cfg.RealEstateLowPB.Enabled {
		strategies = append(strategies, rules[ScreenRealEstateLowPB])
	}
	if cfg.NetNet.Enabled {
		strategies = append(strategies, rules[ScreenNetNet])
	}
	if cfg.LowDebt.Enabled {
		strategies = append(strategies, rules[ScreenLowDebt])
	}

	for _, comp := range cfg.Composites {
		members := make([]ScreenStrategy, 0, len(comp.Screens))
		for _, name := range comp.Screens {
			if r, ok := rules[name]; ok {
				members = append(members, r)
			}
		}
		strategies = append(strategies, All(comp.Name, members...))
	}
	return strategies
}

// between reports whether v lies in [lo, hi] and is not the missing sentinel.
func between(v, lo, hi float64) bool {
	return !entity.IsMissing(v) && v >= lo && v <= hi
}
