package scraper

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

const (
	usEquityMarker = "Equity"
	usTickerOffset = 3
	usNoTicker     = "--"
)

// usScraper reads a holdings export in XML spreadsheet format. The ticker sits
// three cells before each "Equity" asset class cell.
type usScraper struct {
	src *source
}

func (s *usScraper) GetName() string {
	return KindUS
}

func (s *usScraper) Scrape(ctx context.Context) (*Result, error) {
	body, err := s.src.open(ctx)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	cells, err := spreadsheetCells(body)
	if err != nil {
		return nil, err
	}

	var tickers []string
	for i, v := range cells {
		if v != usEquityMarker || i < usTickerOffset {
			continue
		}
		if t := cells[i-usTickerOffset]; t != usNoTicker && t != "" {
			tickers = append(tickers, t)
		}
	}
	return &Result{Tickers: tickers}, nil
}

// spreadsheetCells returns the text of every Data element in document order.
func spreadsheetCells(r io.Reader) ([]string, error) {
	dec := xml.NewDecoder(r)

	var (
		cells  []string
		inData bool
		text   strings.Builder
	)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return cells, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse spreadsheet: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "Data" {
				inData = true
				text.Reset()
			}
		case xml.CharData:
			if inData {
				text.Write(t)
			}
		case xml.EndElement:
			if t.Name.Local == "Data" && inData {
				cells = append(cells, strings.TrimSpace(text.String()))
				inData = false
			}
		}
	}
}
