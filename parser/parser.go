package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/aluiziolira/go-scrape-market/models"
)

var (
	priceRe  = regexp.MustCompile(`[\d,]+\.?\d*`)
	reviewRe = regexp.MustCompile(`(?i)(\d+)\s+reviews?`)
)

// ValidateProduct ensures the extractor captured the required fields.
func ValidateProduct(p *models.Product) error {
	if p == nil {
		return fmt.Errorf("product is nil")
	}
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("product missing name for SKU %d", p.SKU)
	}
	if p.SKU < 0 {
		return fmt.Errorf("product %q has negative SKU", p.Name)
	}
	if p.PriceNumeric < 0 {
		return fmt.Errorf("product %q has negative price", p.Name)
	}
	return nil
}

// ParsePrice derives a numeric price from display text such as
// "KES 1,250.00". Thousands separators are stripped before matching the
// first digit run. Unparseable text yields 0.
func ParsePrice(text string) float64 {
	cleaned := strings.ReplaceAll(text, ",", "")
	match := priceRe.FindString(cleaned)
	if match == "" {
		return 0
	}
	value, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return 0
	}
	return value
}

// ParseReviewCount pulls the review total from text like "12 reviews".
// Missing or unmatchable text yields 0.
func ParseReviewCount(text string) int {
	match := reviewRe.FindStringSubmatch(text)
	if match == nil {
		return 0
	}
	count, err := strconv.Atoi(match[1])
	if err != nil {
		return 0
	}
	return count
}

// NormalizeSpecKey canonicalizes a specification key: trimmed, colon
// markers removed, lower-cased.
func NormalizeSpecKey(key string) string {
	key = strings.TrimSpace(key)
	key = strings.ReplaceAll(key, ":", "")
	return strings.ToLower(key)
}
