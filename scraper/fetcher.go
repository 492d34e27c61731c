package scraper

import (
	"bytes"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/aluiziolira/go-scrape-market/config"
	"github.com/gocolly/colly/v2"
)

// Page is the result of fetching one SKU: a parsed document when the
// response was usable, or a classified transport fault when it was not.
// A Page lives for exactly one crawl iteration.
type Page struct {
	SKU        int
	URL        string
	StatusCode int
	Doc        *goquery.Document
	Fault      error
}

// Fetcher resolves SKUs to catalog URLs and retrieves them one at a time.
// All fetches share a single collector transport and its connection pool.
type Fetcher struct {
	baseURL   string
	collector *colly.Collector
	metrics   *Metrics
}

// NewFetcher builds a fetcher configured from cfg.
func NewFetcher(cfg *config.Config, metrics *Metrics) (*Fetcher, error) {
	parsed, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if parsed.Host == "" {
		return nil, fmt.Errorf("base url must include a host")
	}

	collector := colly.NewCollector(
		colly.AllowedDomains(parsed.Host),
		colly.UserAgent(cfg.UserAgent),
		colly.AllowURLRevisit(),
	)

	collector.SetRequestTimeout(cfg.Timeout)
	collector.WithTransport(&http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   cfg.Timeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        100,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	})

	return &Fetcher{
		baseURL:   cfg.BaseURL,
		collector: collector,
		metrics:   metrics,
	}, nil
}

// WithTransport swaps the underlying HTTP transport. Tests install a mock
// transport through this.
func (f *Fetcher) WithTransport(rt http.RoundTripper) {
	f.collector.WithTransport(rt)
}

// Fetch performs a single GET for sku. One failed attempt is the final
// verdict for that SKU in this run; no retries happen at this layer. The
// shared collector is cloned so response callbacks stay local to the call.
func (f *Fetcher) Fetch(sku int) *Page {
	page := &Page{
		SKU: sku,
		URL: f.baseURL + strconv.Itoa(sku),
	}

	c := f.collector.Clone()
	c.OnRequest(func(r *colly.Request) {
		r.Headers.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8")
		r.Headers.Set("Accept-Language", "en-US,en;q=0.5")
	})
	c.OnResponse(func(r *colly.Response) {
		page.StatusCode = r.StatusCode
		doc, err := goquery.NewDocumentFromReader(bytes.NewReader(r.Body))
		if err != nil {
			slog.Debug("parse response body",
				slog.Int("sku", page.SKU),
				slog.Any("error", err),
			)
			return
		}
		page.Doc = doc
	})
	c.OnError(func(r *colly.Response, err error) {
		if r != nil {
			page.StatusCode = r.StatusCode
		}
		page.Fault = classifyError(err, page.StatusCode)
	})

	start := time.Now()
	if err := c.Visit(page.URL); err != nil && page.Fault == nil {
		page.Fault = classifyError(err, page.StatusCode)
	}
	f.metrics.ObserveFetchDuration(time.Since(start))

	return page
}
