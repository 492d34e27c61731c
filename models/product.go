// Package models defines data structures for the scraper.
package models

import "time"

// Spec is one "Key: Value" entry from a product page's specification list.
// Entries keep the order they appear in on the page.
type Spec struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Product represents a catalog item resolved from a SKU page.
type Product struct {
	SKU          int       `json:"sku"`
	Name         string    `json:"product_name"`
	Price        string    `json:"price"`
	PriceNumeric float64   `json:"price_numeric"`
	Currency     string    `json:"currency"`
	Description  string    `json:"product_description"`
	Features     string    `json:"product_features"`
	StockStatus  string    `json:"stock_status"`
	Model        string    `json:"model"`
	Brand        string    `json:"brand"`
	Manufacturer string    `json:"manufacturer"`
	Category     string    `json:"category"`
	Tags         string    `json:"tags"`
	Rating       int       `json:"rating"`
	ReviewCount  int       `json:"review_count"`
	ImageURLs    []string  `json:"image_urls"`
	Labels       string    `json:"product_labels"`
	Specs        []Spec    `json:"specifications,omitempty"`
	URL          string    `json:"url"`
	ScrapedAt    time.Time `json:"scraped_at"`
}

// MainImageURL returns the first image URL, which the page presents as the
// primary product image.
func (p *Product) MainImageURL() string {
	if len(p.ImageURLs) == 0 {
		return ""
	}
	return p.ImageURLs[0]
}

// CrawlResult holds the accumulated corpus and counters for one crawl session.
type CrawlResult struct {
	Products            []*Product
	StartTime           time.Time
	EndTime             time.Time
	SuccessCount        int
	FailureCount        int
	ProcessedCount      int
	ConsecutiveFailures int
	LastSKU             int
	Aborted             bool
	AbortReason         string
	ErrorsByType        map[string]int
}
