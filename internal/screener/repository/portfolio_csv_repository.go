package repository

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"golang-stock-screener/internal/entity"
	"golang-stock-screener/pkg/common"
	"golang-stock-screener/pkg/logger"
)

// PortfolioRepository writes and reads metric tables as CSV with a header row
// and no index column.
type PortfolioRepository interface {
	Write(ctx context.Context, path string, records []entity.StockMetrics) error
	Read(ctx context.Context, path string) ([]entity.StockMetrics, error)
}

type portfolioCSVRepository struct {
	log *logger.Logger
}

func NewPortfolioCSVRepository(log *logger.Logger) PortfolioRepository {
	return &portfolioCSVRepository{log: log}
}

func (r *portfolioCSVRepository) Write(ctx context.Context, path string, records []entity.StockMetrics) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report %s: %w", path, err)
	}

	w := csv.NewWriter(f)
	if err := writeRecords(w, records); err != nil {
		f.Close()
		return fmt.Errorf("failed to write report %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close report %s: %w", path, err)
	}

	r.log.DebugContext(ctx, "Report written", logger.StringField("path", path), logger.IntField("rows", len(records)))
	return nil
}

func writeRecords(w *csv.Writer, records []entity.StockMetrics) error {
	if err := w.Write(entity.MetricsColumns); err != nil {
		return err
	}
	for i := range records {
		rec := &records[i]
		numeric := rec.NumericFields()
		row := make([]string, 0, len(entity.MetricsColumns))
		for _, col := range entity.MetricsColumns {
			switch col {
			case entity.ColumnTicker:
				row = append(row, rec.Ticker)
			case entity.ColumnName:
				row = append(row, rec.Name)
			case entity.ColumnIndustry:
				row = append(row, rec.Industry)
			default:
				row = append(row, formatFloat(numeric[col]))
			}
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// formatFloat uses the shortest representation that parses back to the same value.
func formatFloat(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		v = common.MissingValue
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Read parses a report written by Write. Numeric columns absent from the
// header, empty cells and unparsable cells read as the missing sentinel.
func (r *portfolioCSVRepository) Read(ctx context.Context, path string) ([]entity.StockMetrics, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", entity.ErrSourceUnavailable, path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: %s is empty", entity.ErrSourceUnavailable, path)
		}
		return nil, fmt.Errorf("failed to read report %s: %w", path, err)
	}

	index := make(map[string]int, len(header))
	for i, h := range header {
		index[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	if _, ok := index[entity.ColumnTicker]; !ok {
		return nil, fmt.Errorf("report %s has no %s column", path, entity.ColumnTicker)
	}

	cell := func(row []string, col string) (string, bool) {
		i, ok := index[col]
		if !ok || i >= len(row) {
			return "", false
		}
		return row[i], true
	}

	var records []entity.StockMetrics
	for line := 2; ; line++ {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read report %s line %d: %w", path, line, err)
		}

		var rec entity.StockMetrics
		rec.Ticker, _ = cell(row, entity.ColumnTicker)
		rec.Name, _ = cell(row, entity.ColumnName)
		rec.Industry, _ = cell(row, entity.ColumnIndustry)
		for _, col := range entity.MetricsColumns {
			if col == entity.ColumnTicker || col == entity.ColumnName || col == entity.ColumnIndustry {
				continue
			}
			v := float64(common.MissingValue)
			if s, ok := cell(row, col); ok {
				if parsed, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil && !math.IsNaN(parsed) && !math.IsInf(parsed, 0) {
					v = parsed
				}
			}
			rec.SetNumericField(col, v)
		}
		records = append(records, rec)
	}

	r.log.DebugContext(ctx, "Report read", logger.StringField("path", path), logger.IntField("rows", len(records)))
	return records, nil
}
