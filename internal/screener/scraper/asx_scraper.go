package scraper

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// asxScraper reads tickers from the first table body of an HTML constituents
// page. Each ticker is the link text of a centred cell.
type asxScraper struct {
	src    *source
	suffix string
}

func (s *asxScraper) GetName() string {
	return KindASX
}

func (s *asxScraper) Scrape(ctx context.Context) (*Result, error) {
	body, err := s.src.open(ctx)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse constituents page: %w", err)
	}

	var tickers []string
	doc.Find("tbody").First().Find("td.text-center").Each(func(_ int, cell *goquery.Selection) {
		link := cell.Find("a").First()
		if link.Length() == 0 {
			return
		}
		if code := strings.TrimSpace(link.Text()); code != "" {
			tickers = append(tickers, code+s.suffix)
		}
	})
	return &Result{Tickers: tickers}, nil
}
