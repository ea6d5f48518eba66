package service

import (
	"fmt"
	"math"
	"sort"

	"golang-stock-screener/internal/entity"
)

// series holds one value per period, current period first.
type series []float64

// statement is a financial statement reduced to one series per line item.
type statement struct {
	periods int
	items   map[string]series
}

func newStatement(periods []entity.StatementPeriod) statement {
	ordered := orderPeriods(periods)
	return statement{periods: len(ordered), items: fillMissingWithZero(ordered)}
}

// orderPeriods returns the periods newest first. Periods are stably sorted by
// end date descending; if any period has no end date the provider order is
// kept as is and taken to be newest first.
func orderPeriods(periods []entity.StatementPeriod) []entity.StatementPeriod {
	out := append([]entity.StatementPeriod(nil), periods...)
	for _, p := range out {
		if p.EndDate.IsZero() {
			return out
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].EndDate.After(out[j].EndDate)
	})
	return out
}

// fillMissingWithZero builds a series for every line item reported in at least
// one period, using 0 for the periods that did not report it. Downstream a zero
// filled cell is indistinguishable from a reported zero. Line items reported in
// no period are left out and surface as ErrFieldMissing.
func fillMissingWithZero(periods []entity.StatementPeriod) map[string]series {
	items := map[string]series{}
	for i, p := range periods {
		for name, v := range p.Values {
			s, ok := items[name]
			if !ok {
				s = make(series, len(periods))
				items[name] = s
			}
			s[i] = v
		}
	}
	return items
}

func (s statement) item(name string) (series, error) {
	v, ok := s.items[name]
	if !ok {
		return nil, fmt.Errorf("%q: %w", name, entity.ErrFieldMissing)
	}
	return v, nil
}

// sum adds line items period by period.
func (s statement) sum(names ...string) (series, error) {
	out := make(series, s.periods)
	for _, name := range names {
		v, err := s.item(name)
		if err != nil {
			return nil, err
		}
		for i := range out {
			out[i] += v[i]
		}
	}
	return out, nil
}

// currentRatio divides the current period values.
func currentRatio(num, den series) (float64, error) {
	if len(num) == 0 || len(den) == 0 {
		return 0, entity.ErrFieldMissing
	}
	return divide(num[0], den[0])
}

// meanRatio is the arithmetic mean of num/den over the periods both cover.
// A zero denominator in any of those periods fails the whole mean.
func meanRatio(num, den series) (float64, error) {
	n := min(len(num), len(den))
	if n == 0 {
		return 0, entity.ErrFieldMissing
	}
	var total float64
	for i := 0; i < n; i++ {
		r, err := divide(num[i], den[i])
		if err != nil {
			return 0, err
		}
		total += r
	}
	return finite(total / float64(n))
}

func divide(num, den float64) (float64, error) {
	if den == 0 {
		return 0, entity.ErrDivisionByZero
	}
	return finite(num / den)
}

func finite(v float64) (float64, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, entity.ErrDivisionByZero
	}
	return v, nil
}
