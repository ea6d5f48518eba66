package dto

import (
	"fmt"
	"strings"

	"golang-stock-screener/pkg/utils"
)

// SGXPriceListResponse is the SGX securities price list. Entries are kept as
// maps so the identifier field can be chosen by configuration.
type SGXPriceListResponse struct {
	Data struct {
		Prices []map[string]interface{} `json:"prices"`
	} `json:"data"`
}

// Tickers returns the suffixed identifiers of the entries whose type equals
// typeFilter. Non-string values are compared and kept in their printed form.
func (r *SGXPriceListResponse) Tickers(typeFilter, idField, suffix string) []string {
	var tickers []string
	for _, p := range r.Data.Prices {
		if fmt.Sprint(p["type"]) != typeFilter {
			continue
		}
		id, ok := p[idField]
		if !ok || id == nil {
			continue
		}
		if t := utils.WithSuffix(strings.TrimSpace(fmt.Sprint(id)), suffix); t != "" {
			tickers = append(tickers, t)
		}
	}
	return tickers
}
