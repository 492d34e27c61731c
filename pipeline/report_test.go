package pipeline

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/aluiziolira/go-scrape-market/models"
)

func reportProduct(sku int, brand, category, stock string, price float64) *models.Product {
	return &models.Product{
		SKU:          sku,
		Name:         fmt.Sprintf("Product %d", sku),
		PriceNumeric: price,
		Currency:     "KES",
		Brand:        brand,
		Category:     category,
		StockStatus:  stock,
	}
}

func TestBuildReport(t *testing.T) {
	result := &models.CrawlResult{
		Products: []*models.Product{
			reportProduct(1, "Acme", "Electronics > Sensors", "In Stock", 100),
			reportProduct(2, "Acme", "Electronics > Sensors", "In Stock", 200),
			reportProduct(3, "Globex", "Tools", "In Stock", 300),
			reportProduct(4, "", "Tools", "Out Of Stock", 400),
		},
		SuccessCount: 4,
		FailureCount: 2,
	}

	report := BuildReport(result, time.Date(2026, 1, 2, 10, 30, 0, 0, time.UTC))

	wantLines := []string{
		"ECOMMERCE MARKET ANALYSIS SUMMARY REPORT",
		strings.Repeat("=", 50),
		"Generated on: 2026-01-02 10:30:00",
		"Total products scraped: 4",
		"Successful scrapes: 4",
		"Failed scrapes: 2",
		"Average price: 250.00 KES",
		"Median price: 250.00 KES",
		"Price range: 100.00 - 400.00 KES",
		"Acme: 2 products",
		"Globex: 1 products",
		"Electronics > Sensors: 2 products",
		"In Stock: 3 products",
		"Out Of Stock: 1 products",
	}
	for _, line := range wantLines {
		if !strings.Contains(report, line) {
			t.Fatalf("report missing %q:\n%s", line, report)
		}
	}

	if strings.Index(report, "Acme: 2 products") > strings.Index(report, "Globex: 1 products") {
		t.Fatalf("brands should be ordered by count descending:\n%s", report)
	}
}

func TestBuildReportTopTenBrands(t *testing.T) {
	result := &models.CrawlResult{}
	for i := 1; i <= 12; i++ {
		brand := fmt.Sprintf("B%02d", i)
		result.Products = append(result.Products, reportProduct(i, brand, "Tools", "In Stock", float64(i)))
	}
	result.SuccessCount = len(result.Products)

	report := BuildReport(result, time.Now())

	if !strings.Contains(report, "B10: 1 products") {
		t.Fatalf("tenth brand should be listed:\n%s", report)
	}
	if strings.Contains(report, "B11: 1 products") || strings.Contains(report, "B12: 1 products") {
		t.Fatalf("distribution should keep only the top ten brands:\n%s", report)
	}
}

func TestBuildReportEmptyCorpus(t *testing.T) {
	report := BuildReport(&models.CrawlResult{FailureCount: 5}, time.Now())

	if !strings.Contains(report, "Total products scraped: 0") {
		t.Fatalf("report should carry zero counters:\n%s", report)
	}
	if strings.Contains(report, "PRICE ANALYSIS:") {
		t.Fatalf("empty corpus should not include price analysis:\n%s", report)
	}
}

func TestPriceStatistics(t *testing.T) {
	tests := []struct {
		name       string
		prices     []float64
		wantMean   float64
		wantMedian float64
	}{
		{name: "odd count", prices: []float64{100, 200, 400}, wantMean: 700.0 / 3, wantMedian: 200},
		{name: "even count", prices: []float64{100, 200, 300, 400}, wantMean: 250, wantMedian: 250},
		{name: "single", prices: []float64{42}, wantMean: 42, wantMedian: 42},
		{name: "empty", prices: nil, wantMean: 0, wantMedian: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := mean(tt.prices); got != tt.wantMean {
				t.Fatalf("mean = %v, want %v", got, tt.wantMean)
			}
			if got := median(tt.prices); got != tt.wantMedian {
				t.Fatalf("median = %v, want %v", got, tt.wantMedian)
			}
		})
	}
}
