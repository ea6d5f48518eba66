package dto

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// FlexFloat decodes numbers that EODHD sends as JSON numbers, numeric strings,
// "NA" or null. Valid is false unless a number was present.
type FlexFloat struct {
	Value float64
	Valid bool
}

func (f *FlexFloat) UnmarshalJSON(b []byte) error {
	*f = FlexFloat{}
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return nil
		}
		f.Value, f.Valid = v, true
		return nil
	}
	v, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		return nil
	}
	f.Value, f.Valid = v, true
	return nil
}

// Ptr returns the value as a pointer, nil when not valid.
func (f FlexFloat) Ptr() *float64 {
	if !f.Valid {
		return nil
	}
	v := f.Value
	return &v
}

// EODHDStatement holds one statement keyed by period end date.
type EODHDStatement struct {
	Yearly map[string]map[string]FlexFloat `json:"yearly"`
}

// EODHDFundamentalsResponse is the subset of /fundamentals used by the screener.
type EODHDFundamentalsResponse struct {
	General struct {
		Code     string `json:"Code"`
		Name     string `json:"Name"`
		Industry string `json:"Industry"`
	} `json:"General"`
	Highlights struct {
		MarketCapitalization FlexFloat `json:"MarketCapitalization"`
		EarningsShare        FlexFloat `json:"EarningsShare"`
	} `json:"Highlights"`
	Valuation struct {
		PriceBookMRQ FlexFloat `json:"PriceBookMRQ"`
	} `json:"Valuation"`
	AnalystRatings struct {
		StrongBuy  FlexFloat `json:"StrongBuy"`
		Buy        FlexFloat `json:"Buy"`
		Hold       FlexFloat `json:"Hold"`
		Sell       FlexFloat `json:"Sell"`
		StrongSell FlexFloat `json:"StrongSell"`
	} `json:"AnalystRatings"`
	Financials struct {
		BalanceSheet    EODHDStatement `json:"Balance_Sheet"`
		IncomeStatement EODHDStatement `json:"Income_Statement"`
	} `json:"Financials"`
}

// EODHDRealTimeQuote is the /real-time response.
type EODHDRealTimeQuote struct {
	Code  string    `json:"code"`
	Close FlexFloat `json:"close"`
}
