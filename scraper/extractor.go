package scraper

import (
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/aluiziolira/go-scrape-market/models"
	"github.com/aluiziolira/go-scrape-market/parser"
)

// defaultCurrency is the catalog's fixed price currency.
const defaultCurrency = "KES"

// Extract maps a product document into a Product record. Field
// extractions are independent: a missing node leaves its field at the
// zero default, and no single field ever aborts the rest of the record.
// Callers treat a record without a name as a failed scrape.
func Extract(sku int, pageURL string, doc *goquery.Document) *models.Product {
	product := &models.Product{
		SKU:       sku,
		URL:       pageURL,
		Currency:  defaultCurrency,
		ScrapedAt: time.Now(),
	}
	if doc == nil {
		return product
	}

	product.Name = strings.TrimSpace(doc.Find("h1.title.page-title").First().Text())

	extractPrice(doc, product)
	extractDescription(doc, product)

	product.StockStatus = strings.TrimSpace(doc.Find("li.product-stock span").First().Text())
	product.Model = strings.TrimSpace(doc.Find("li.product-model span").First().Text())

	if brand := strings.TrimSpace(doc.Find("div.brand-image.product-manufacturer a span").First().Text()); brand != "" {
		product.Brand = brand
		product.Manufacturer = brand
	}

	product.Category = extractCategory(doc)
	product.Tags = joinTexts(doc.Find("div.tags").First().Find("a"), ", ")

	extractRating(doc, product)

	product.ImageURLs = extractImages(doc, pageURL, product.Name)
	product.Labels = joinTexts(doc.Find("span.product-label"), ", ")
	product.Specs = extractSpecs(doc)

	return product
}

func extractPrice(doc *goquery.Document, product *models.Product) {
	price := doc.Find("div.product-price").First()
	if price.Length() == 0 {
		return
	}
	display := strings.TrimSpace(price.Text())
	product.Price = display
	product.PriceNumeric = parser.ParsePrice(display)
}

func extractDescription(doc *goquery.Document, product *models.Product) {
	tab := doc.Find("div[id*=product_tabs]").First()
	if tab.Length() == 0 {
		return
	}
	content := tab.Find("div.block-content").First()
	if content.Length() == 0 {
		return
	}

	product.Description = strippedText(content)

	var features []string
	content.Find("p").Each(func(_ int, p *goquery.Selection) {
		text := strings.TrimSpace(p.Text())
		if text == "" {
			return
		}
		if strings.Contains(text, "●") || strings.Contains(text, "Features:") {
			features = append(features, text)
		}
	})
	product.Features = strings.Join(features, " | ")
}

// extractCategory joins the breadcrumb path, skipping the leading home
// entry and dropping the trailing entry positionally (the page's own
// name). A depth-one breadcrumb therefore yields an empty category.
func extractCategory(doc *goquery.Document) string {
	items := doc.Find("ul.breadcrumb").First().Find("li")
	if items.Length() <= 1 {
		return ""
	}

	var crumbs []string
	items.Each(func(i int, li *goquery.Selection) {
		if i == 0 {
			return
		}
		crumbs = append(crumbs, strings.TrimSpace(li.Text()))
	})
	return strings.Join(crumbs[:len(crumbs)-1], " > ")
}

func extractRating(doc *goquery.Document, product *models.Product) {
	rating := doc.Find("div.rating.rating-page").First()
	if rating.Length() == 0 {
		return
	}
	product.Rating = rating.Find("i.fa-star").Length()
	product.ReviewCount = parser.ParseReviewCount(rating.Text())
}

// extractImages collects every image whose alt text equals the product
// name, resolved against the page URL. The first hit is the main image;
// later duplicates are dropped while preserving order.
func extractImages(doc *goquery.Document, pageURL, name string) []string {
	base, err := url.Parse(pageURL)
	if err != nil {
		base = nil
	}

	var urls []string
	seen := make(map[string]struct{})
	doc.Find("img").Each(func(_ int, img *goquery.Selection) {
		alt, ok := img.Attr("alt")
		if !ok || alt != name {
			return
		}
		src, ok := img.Attr("src")
		if !ok || src == "" {
			return
		}
		resolved := resolveURL(base, src)
		if _, dup := seen[resolved]; dup {
			return
		}
		seen[resolved] = struct{}{}
		urls = append(urls, resolved)
	})
	return urls
}

func resolveURL(base *url.URL, ref string) string {
	if base == nil {
		return ref
	}
	parsed, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return base.ResolveReference(parsed).String()
}

// extractSpecs reads the first unstyled list of "Key: Value" items. Keys
// are normalized; a repeated key overwrites its value in place so entry
// order tracks first appearance.
func extractSpecs(doc *goquery.Document) []models.Spec {
	list := doc.Find("ul.list-unstyled").First()
	if list.Length() == 0 {
		return nil
	}

	var specs []models.Spec
	index := make(map[string]int)
	list.Find("li").Each(func(_ int, li *goquery.Selection) {
		text := li.Text()
		if !strings.Contains(text, ":") {
			return
		}
		parts := strings.SplitN(text, ":", 2)
		key := parser.NormalizeSpecKey(parts[0])
		if key == "" {
			return
		}
		value := strings.TrimSpace(parts[1])
		if i, ok := index[key]; ok {
			specs[i].Value = value
			return
		}
		index[key] = len(specs)
		specs = append(specs, models.Spec{Key: key, Value: value})
	})
	return specs
}

func joinTexts(sel *goquery.Selection, sep string) string {
	var parts []string
	sel.Each(func(_ int, s *goquery.Selection) {
		parts = append(parts, strings.TrimSpace(s.Text()))
	})
	return strings.Join(parts, sep)
}

// strippedText collapses a selection to its text content with each text
// node trimmed, matching how the catalog renders description blocks.
func strippedText(sel *goquery.Selection) string {
	var b strings.Builder
	sel.Contents().Each(func(_ int, s *goquery.Selection) {
		if goquery.NodeName(s) == "#text" {
			b.WriteString(strings.TrimSpace(s.Text()))
			return
		}
		b.WriteString(strippedText(s))
	})
	return b.String()
}
