// Package pipeline turns a finished crawl into its on-disk artifacts: the
// flattened CSV corpus, an optional JSONL mirror, and the summary report.
package pipeline

import (
	"strconv"
	"strings"
	"time"

	"github.com/aluiziolira/go-scrape-market/models"
)

// priorityColumns fixes the order of the well-known corpus columns.
// Dynamic columns (joined image list, per-key specifications) follow.
var priorityColumns = []string{
	"sku",
	"product_name",
	"price",
	"price_numeric",
	"currency",
	"stock_status",
	"brand",
	"manufacturer",
	"category",
	"model",
	"rating",
	"review_count",
	"product_labels",
	"tags",
	"product_description",
	"product_features",
	"main_image_url",
	"url",
	"scraped_at",
}

// Flatten projects products onto a rectangular table. Specification keys
// become spec_* columns ordered by first appearance across the corpus;
// products missing a key carry an empty cell so every row has the full
// width of the header.
func Flatten(products []*models.Product) ([]string, [][]string) {
	var specColumns []string
	seen := make(map[string]struct{})
	for _, product := range products {
		for _, spec := range product.Specs {
			column := specColumnName(spec.Key)
			if _, ok := seen[column]; ok {
				continue
			}
			seen[column] = struct{}{}
			specColumns = append(specColumns, column)
		}
	}

	header := make([]string, 0, len(priorityColumns)+1+len(specColumns))
	header = append(header, priorityColumns...)
	header = append(header, "image_urls")
	header = append(header, specColumns...)

	rows := make([][]string, 0, len(products))
	for _, product := range products {
		rows = append(rows, flattenProduct(product, specColumns))
	}
	return header, rows
}

func flattenProduct(product *models.Product, specColumns []string) []string {
	row := make([]string, 0, len(priorityColumns)+1+len(specColumns))
	row = append(row,
		strconv.Itoa(product.SKU),
		product.Name,
		product.Price,
		strconv.FormatFloat(product.PriceNumeric, 'f', -1, 64),
		product.Currency,
		product.StockStatus,
		product.Brand,
		product.Manufacturer,
		product.Category,
		product.Model,
		strconv.Itoa(product.Rating),
		strconv.Itoa(product.ReviewCount),
		product.Labels,
		product.Tags,
		product.Description,
		product.Features,
		product.MainImageURL(),
		product.URL,
		product.ScrapedAt.Format(time.RFC3339),
	)
	row = append(row, strings.Join(product.ImageURLs, "|"))

	values := make(map[string]string, len(product.Specs))
	for _, spec := range product.Specs {
		values[specColumnName(spec.Key)] = spec.Value
	}
	for _, column := range specColumns {
		row = append(row, values[column])
	}
	return row
}

func specColumnName(key string) string {
	return "spec_" + strings.ReplaceAll(key, " ", "_")
}
