package entity

// MarketRunSummary describes the outcome of one market run.
type MarketRunSummary struct {
	Market        string
	Tickers       int
	Records       int
	Skipped       int
	FetchErrors   int
	Screens       []ScreenResult
	OutputFiles   []string
	SourceMissing bool
}
