package common

const (
	// MissingValue marks a numeric field that could not be computed.
	MissingValue = -999

	DefaultName     = "NA"
	DefaultIndustry = "N/A"
)

const (
	ProviderYahoo = "yahoo"
	ProviderEODHD = "eodhd"
	ProviderFile  = "file"
)

const (
	FormatCSV  = "csv"
	FormatJSON = "json"
)

// ScreenAll names the full, unfiltered table in output file names.
const ScreenAll = "all"

const BrowserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"
