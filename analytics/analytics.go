// Package analytics reads persisted crawl corpora back from disk and
// aggregates them for reporting.
package analytics

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
)

// Record is the slice of a corpus row the brand report needs.
type Record struct {
	SKU          int
	Name         string
	Brand        string
	PriceNumeric float64
}

// ReadCorpus loads records from a corpus CSV written by the scraper.
// Columns are located by header name, so spec_* columns and column
// reordering between corpus versions are harmless.
func ReadCorpus(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open corpus: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read corpus header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[name] = i
	}
	for _, required := range []string{"sku", "product_name", "brand", "price_numeric"} {
		if _, ok := index[required]; !ok {
			return nil, fmt.Errorf("corpus is missing the %q column", required)
		}
	}

	var records []Record
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read corpus row: %w", err)
		}

		record := Record{
			Name:  row[index["product_name"]],
			Brand: row[index["brand"]],
		}
		if value, err := strconv.Atoi(row[index["sku"]]); err == nil {
			record.SKU = value
		}
		if value, err := strconv.ParseFloat(row[index["price_numeric"]], 64); err == nil {
			record.PriceNumeric = value
		}
		records = append(records, record)
	}
	return records, nil
}

// BrandSummary aggregates one brand's share of the corpus.
type BrandSummary struct {
	Brand        string
	ItemCount    int
	BasketCost   float64
	AvgItemPrice float64
}

// AggregateByBrand rolls the corpus up per brand: item count, the cost of
// buying one of everything, and the average item price. Records without a
// brand are excluded. Results are ordered by brand name.
func AggregateByBrand(records []Record) []BrandSummary {
	totals := make(map[string]*BrandSummary)
	for _, record := range records {
		if record.Brand == "" {
			continue
		}
		summary, ok := totals[record.Brand]
		if !ok {
			summary = &BrandSummary{Brand: record.Brand}
			totals[record.Brand] = summary
		}
		summary.ItemCount++
		summary.BasketCost += record.PriceNumeric
	}

	summaries := make([]BrandSummary, 0, len(totals))
	for _, summary := range totals {
		summary.AvgItemPrice = summary.BasketCost / float64(summary.ItemCount)
		summaries = append(summaries, *summary)
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].Brand < summaries[j].Brand
	})
	return summaries
}

// LatestCorpus returns the newest corpus CSV for prefix under dir. The
// embedded timestamp is fixed width, so lexicographic order is
// chronological order.
func LatestCorpus(dir, prefix string) (string, error) {
	pattern := filepath.Join(dir, prefix+"_products_*.csv")
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return "", fmt.Errorf("glob corpus files: %w", err)
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("no corpus files match %s", pattern)
	}
	sort.Strings(matches)
	return matches[len(matches)-1], nil
}

// WriteBrandReport persists the brand rollup as CSV.
func WriteBrandReport(path string, summaries []BrandSummary) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create brand report: %w", err)
	}
	defer f.Close()

	writer := csv.NewWriter(f)
	if err := writer.Write([]string{"brand", "item_count", "basket_cost", "avg_item_price"}); err != nil {
		return fmt.Errorf("write brand report header: %w", err)
	}
	for _, summary := range summaries {
		row := []string{
			summary.Brand,
			strconv.Itoa(summary.ItemCount),
			strconv.FormatFloat(summary.BasketCost, 'f', 2, 64),
			strconv.FormatFloat(summary.AvgItemPrice, 'f', 2, 64),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("write brand report row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush brand report: %w", err)
	}
	return nil
}
