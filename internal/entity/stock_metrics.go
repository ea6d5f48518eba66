package entity

import (
	"golang-stock-screener/pkg/common"
)

// Report columns in output order.
const (
	ColumnTicker         = "ticker"
	ColumnName           = "name"
	ColumnIndustry       = "industry"
	ColumnMarketCap      = "mktcap (m)"
	ColumnPB             = "pb"
	ColumnPE             = "pe"
	ColumnROCECY         = "roce_cy"
	ColumnROCEAvg        = "roce_avg"
	ColumnEBITMargin     = "ebit_margin"
	ColumnInterestCovCY  = "interest_cov_cy"
	ColumnInterestCovAvg = "interest_cov_avg"
	ColumnDebtEquityCY   = "debt_equity_cy"
	ColumnDebtEquityAvg  = "debt_equity_avg"
	ColumnCashAssets     = "cash_assets"
	ColumnAnalysts       = "analysts"
)

// MetricsColumns is the fixed column order of every report.
var MetricsColumns = []string{
	ColumnTicker,
	ColumnName,
	ColumnIndustry,
	ColumnMarketCap,
	ColumnPB,
	ColumnPE,
	ColumnROCECY,
	ColumnROCEAvg,
	ColumnEBITMargin,
	ColumnInterestCovCY,
	ColumnInterestCovAvg,
	ColumnDebtEquityCY,
	ColumnDebtEquityAvg,
	ColumnCashAssets,
	ColumnAnalysts,
}

// FieldFallback records why a field was set to the missing sentinel.
type FieldFallback struct {
	Field  string
	Reason error
}

// StockMetrics is the computed row for one ticker. Numeric fields that could
// not be computed hold common.MissingValue.
type StockMetrics struct {
	Ticker         string
	Name           string
	Industry       string
	MarketCap      float64
	PB             float64
	PE             float64
	ROCECY         float64
	ROCEAvg        float64
	EBITMargin     float64
	InterestCovCY  float64
	InterestCovAvg float64
	DebtEquityCY   float64
	DebtEquityAvg  float64
	CashAssets     float64
	Analysts       float64

	// Fallbacks lists the fields that fell back to the sentinel. Not written to reports.
	Fallbacks []FieldFallback
}

// IsMissing reports whether v is the missing sentinel.
func IsMissing(v float64) bool {
	return v == common.MissingValue
}

// NumericFields returns the numeric columns keyed by column name.
func (m *StockMetrics) NumericFields() map[string]float64 {
	return map[string]float64{
		ColumnMarketCap:      m.MarketCap,
		ColumnPB:             m.PB,
		ColumnPE:             m.PE,
		ColumnROCECY:         m.ROCECY,
		ColumnROCEAvg:        m.ROCEAvg,
		ColumnEBITMargin:     m.EBITMargin,
		ColumnInterestCovCY:  m.InterestCovCY,
		ColumnInterestCovAvg: m.InterestCovAvg,
		ColumnDebtEquityCY:   m.DebtEquityCY,
		ColumnDebtEquityAvg:  m.DebtEquityAvg,
		ColumnCashAssets:     m.CashAssets,
		ColumnAnalysts:       m.Analysts,
	}
}

// SetNumericField assigns a numeric column by name. It returns false for
// unknown or non-numeric columns.
func (m *StockMetrics) SetNumericField(column string, v float64) bool {
	switch column {
	case ColumnMarketCap:
		m.MarketCap = v
	case ColumnPB:
		m.PB = v
	case ColumnPE:
		m.PE = v
	case ColumnROCECY:
		m.ROCECY = v
	case ColumnROCEAvg:
		m.ROCEAvg = v
	case ColumnEBITMargin:
		m.EBITMargin = v
	case ColumnInterestCovCY:
		m.InterestCovCY = v
	case ColumnInterestCovAvg:
		m.InterestCovAvg = v
	case ColumnDebtEquityCY:
		m.DebtEquityCY = v
	case ColumnDebtEquityAvg:
		m.DebtEquityAvg = v
	case ColumnCashAssets:
		m.CashAssets = v
	case ColumnAnalysts:
		m.Analysts = v
	default:
		return false
	}
	return true
}
