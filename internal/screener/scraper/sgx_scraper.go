package scraper

import (
	"context"
	"encoding/json"
	"fmt"

	"golang-stock-screener/internal/screener/dto"
)

// sgxScraper downloads the SGX price list. The document is stored unchanged;
// the ticker list repository filters it when a run reads it.
type sgxScraper struct {
	src        *source
	typeFilter string
	idField    string
	suffix     string
}

func (s *sgxScraper) GetName() string {
	return KindSGX
}

func (s *sgxScraper) Scrape(ctx context.Context) (*Result, error) {
	raw, err := s.src.read(ctx)
	if err != nil {
		return nil, err
	}

	var list dto.SGXPriceListResponse
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, fmt.Errorf("failed to decode price list: %w", err)
	}
	return &Result{Tickers: list.Tickers(s.typeFilter, s.idField, s.suffix), Raw: raw}, nil
}
