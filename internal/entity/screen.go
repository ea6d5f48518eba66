package entity

// Portfolio is one market's records ordered by ROCECY descending.
type Portfolio struct {
	Market  string
	Records []StockMetrics
}

// ScreenResult is the subset of a portfolio that passed one named screen,
// in portfolio order.
type ScreenResult struct {
	Screen  string
	Records []StockMetrics
}

// Tickers returns the tickers of the result in order.
func (r ScreenResult) Tickers() []string {
	out := make([]string, 0, len(r.Records))
	for _, rec := range r.Records {
		out = append(out, rec.Ticker)
	}
	return out
}
