package pipeline

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/aluiziolira/go-scrape-market/models"
)

// BuildReport renders the plain-text summary for a finished crawl: dataset
// counters, price statistics, and the brand, category and stock
// distributions. Distributions count every record, empty values included,
// ordered by count descending with ties broken alphabetically.
func BuildReport(result *models.CrawlResult, generatedAt time.Time) string {
	var b strings.Builder

	b.WriteString("ECOMMERCE MARKET ANALYSIS SUMMARY REPORT\n")
	b.WriteString(strings.Repeat("=", 50))
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "Generated on: %s\n\n", generatedAt.Format("2006-01-02 15:04:05"))

	b.WriteString("DATASET OVERVIEW:\n")
	fmt.Fprintf(&b, "Total products scraped: %d\n", len(result.Products))
	fmt.Fprintf(&b, "Successful scrapes: %d\n", result.SuccessCount)
	fmt.Fprintf(&b, "Failed scrapes: %d\n\n", result.FailureCount)

	if len(result.Products) == 0 {
		return b.String()
	}

	writePriceAnalysis(&b, result.Products)
	writeDistribution(&b, "BRAND DISTRIBUTION:", fieldValues(result.Products, func(p *models.Product) string { return p.Brand }), 10)
	writeDistribution(&b, "CATEGORY DISTRIBUTION:", fieldValues(result.Products, func(p *models.Product) string { return p.Category }), 10)
	writeDistribution(&b, "STOCK STATUS:", fieldValues(result.Products, func(p *models.Product) string { return p.StockStatus }), 0)

	return b.String()
}

func writePriceAnalysis(b *strings.Builder, products []*models.Product) {
	prices := make([]float64, 0, len(products))
	for _, product := range products {
		prices = append(prices, product.PriceNumeric)
	}
	sort.Float64s(prices)
	currency := products[0].Currency

	b.WriteString("PRICE ANALYSIS:\n")
	fmt.Fprintf(b, "Average price: %.2f %s\n", mean(prices), currency)
	fmt.Fprintf(b, "Median price: %.2f %s\n", median(prices), currency)
	fmt.Fprintf(b, "Price range: %.2f - %.2f %s\n\n", prices[0], prices[len(prices)-1], currency)
}

type distributionEntry struct {
	value string
	count int
}

// writeDistribution appends one "value: N products" line per distinct
// value. A positive limit keeps only the top entries.
func writeDistribution(b *strings.Builder, heading string, values []string, limit int) {
	counts := make(map[string]int)
	for _, value := range values {
		counts[value]++
	}

	entries := make([]distributionEntry, 0, len(counts))
	for value, count := range counts {
		entries = append(entries, distributionEntry{value: value, count: count})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].count != entries[j].count {
			return entries[i].count > entries[j].count
		}
		return entries[i].value < entries[j].value
	})
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}

	b.WriteString(heading)
	b.WriteString("\n")
	for _, entry := range entries {
		fmt.Fprintf(b, "%s: %d products\n", entry.value, entry.count)
	}
	b.WriteString("\n")
}

func fieldValues(products []*models.Product, field func(*models.Product) string) []string {
	values := make([]string, 0, len(products))
	for _, product := range products {
		values = append(values, field(product))
	}
	return values
}

func mean(prices []float64) float64 {
	if len(prices) == 0 {
		return 0
	}
	var sum float64
	for _, price := range prices {
		sum += price
	}
	return sum / float64(len(prices))
}

// median expects prices sorted ascending.
func median(prices []float64) float64 {
	n := len(prices)
	if n == 0 {
		return 0
	}
	if n%2 == 1 {
		return prices[n/2]
	}
	return (prices[n/2-1] + prices[n/2]) / 2
}
