package scraper

import (
	"errors"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

// Outcome is the classifier's verdict for one fetched page.
type Outcome int

const (
	OutcomeValid Outcome = iota
	OutcomeNotProduct
	OutcomeNotFound
	OutcomeTransportError
)

// String returns the label used for metrics and logs.
func (o Outcome) String() string {
	switch o {
	case OutcomeValid:
		return "valid"
	case OutcomeNotProduct:
		return "not_a_product"
	case OutcomeNotFound:
		return "not_found"
	case OutcomeTransportError:
		return "transport_error"
	default:
		return "unknown"
	}
}

var errorMarkerRe = regexp.MustCompile(`(?i)404|not found|error`)

// Classify decides whether a fetched page holds extractable product data.
// A transport fault carried by the page propagates unchanged; otherwise
// the document must show a product heading and container, no error
// markers, and a heading longer than three characters. Classification is
// deterministic and never fails: an absent or unreadable document is
// simply not a product.
func Classify(page *Page) Outcome {
	if page == nil {
		return OutcomeNotProduct
	}
	if page.Fault != nil {
		var notFound ErrNotFound
		if errors.As(page.Fault, &notFound) {
			return OutcomeNotFound
		}
		return OutcomeTransportError
	}
	if page.Doc == nil {
		return OutcomeNotProduct
	}

	doc := page.Doc
	title := strings.TrimSpace(doc.Find("h1.title.page-title").First().Text())

	hasProductElements := doc.Find("h1.title.page-title").Length() > 0 &&
		doc.Find("div#product-product").Length() > 0

	hasErrorMarkers := doc.Find("div.error").Length() > 0 ||
		anyTextMatches(doc, "h1", errorMarkerRe) ||
		anyTextMatches(doc, "title", errorMarkerRe)

	hasMeaningfulTitle := utf8.RuneCountInString(title) > 3

	if hasProductElements && !hasErrorMarkers && hasMeaningfulTitle {
		return OutcomeValid
	}
	return OutcomeNotProduct
}

func anyTextMatches(doc *goquery.Document, selector string, re *regexp.Regexp) bool {
	matched := false
	doc.Find(selector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if re.MatchString(s.Text()) {
			matched = true
			return false
		}
		return true
	})
	return matched
}
