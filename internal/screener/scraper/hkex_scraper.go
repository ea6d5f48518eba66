package scraper

import (
	"context"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

const (
	hkexHeaderRow      = 2
	hkexCodeColumn     = "Stock Code"
	hkexCategoryColumn = "Category"
)

var hkexCategories = map[string]bool{
	"Equity":                        true,
	"Real Estate Investment Trusts": true,
}

// hkexScraper reads the HKEX list of securities workbook. The header is on the
// third row; codes are five digits and lose their leading zero.
type hkexScraper struct {
	src    *source
	suffix string
}

func (s *hkexScraper) GetName() string {
	return KindHKEX
}

func (s *hkexScraper) Scrape(ctx context.Context) (*Result, error) {
	body, err := s.src.open(ctx)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	book, err := excelize.OpenReader(body)
	if err != nil {
		return nil, fmt.Errorf("failed to open securities workbook: %w", err)
	}
	defer book.Close()

	sheets := book.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("securities workbook has no sheets")
	}
	rows, err := book.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheets[0], err)
	}
	if len(rows) <= hkexHeaderRow {
		return nil, fmt.Errorf("securities workbook has no header row")
	}

	codeIdx, categoryIdx := -1, -1
	for i, name := range rows[hkexHeaderRow] {
		switch strings.TrimSpace(name) {
		case hkexCodeColumn:
			codeIdx = i
		case hkexCategoryColumn:
			categoryIdx = i
		}
	}
	if codeIdx < 0 || categoryIdx < 0 {
		return nil, fmt.Errorf("securities workbook is missing %q or %q", hkexCodeColumn, hkexCategoryColumn)
	}

	var tickers []string
	for _, row := range rows[hkexHeaderRow+1:] {
		if codeIdx >= len(row) || categoryIdx >= len(row) {
			continue
		}
		if !hkexCategories[strings.TrimSpace(row[categoryIdx])] {
			continue
		}
		code := strings.TrimSpace(row[codeIdx])
		if len(code) < 2 {
			continue
		}
		tickers = append(tickers, code[1:]+s.suffix)
	}
	return &Result{Tickers: tickers}, nil
}
