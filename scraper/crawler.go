package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aluiziolira/go-scrape-market/config"
	"github.com/aluiziolira/go-scrape-market/models"
	"github.com/aluiziolira/go-scrape-market/parser"
)

// Persister receives the accumulated corpus exactly once when a crawl
// leaves its running state, however the run ended.
type Persister interface {
	Persist(result *models.CrawlResult) error
}

// Crawler walks the SKU range sequentially: one fetch, classification and
// extraction completes before the next SKU begins. It owns the
// rate-limiting schedule, the consecutive-failure circuit breaker, and
// the corpus for the lifetime of the session.
type Crawler struct {
	cfg       *config.Config
	fetcher   *Fetcher
	persister Persister
	metrics   *Metrics

	// pause is swappable so tests run without real delays.
	pause func(ctx context.Context, d time.Duration) error
}

// NewCrawler wires a crawler from its collaborators.
func NewCrawler(cfg *config.Config, fetcher *Fetcher, persister Persister, metrics *Metrics) *Crawler {
	return &Crawler{
		cfg:       cfg,
		fetcher:   fetcher,
		persister: persister,
		metrics:   metrics,
		pause:     sleepContext,
	}
}

// Run crawls SKUs from StartSKU through MaxSKU inclusive until the range
// is exhausted, the breaker trips, or ctx is cancelled. Cancellation is
// observed between iterations, never mid-fetch. Whatever corpus exists is
// handed to the persister on the single exit path, aborted runs included;
// only a persistence failure surfaces as an error.
func (c *Crawler) Run(ctx context.Context) (*models.CrawlResult, error) {
	result := &models.CrawlResult{
		StartTime:    time.Now(),
		LastSKU:      c.cfg.StartSKU - 1,
		ErrorsByType: make(map[string]int),
	}

	slog.Info("starting market analysis crawl",
		slog.Int("start_sku", c.cfg.StartSKU),
		slog.Int("max_sku", c.cfg.MaxSKU),
		slog.Int("max_consecutive_failures", c.cfg.MaxConsecutiveFailures),
	)

	for sku := c.cfg.StartSKU; sku <= c.cfg.MaxSKU; sku++ {
		if ctx.Err() != nil {
			c.abort(result, "interrupted")
			break
		}

		if result.ProcessedCount > 0 && result.ProcessedCount%c.cfg.BatchSize == 0 {
			slog.Info("batch pause",
				slog.Int("processed", result.ProcessedCount),
				slog.Duration("delay", c.cfg.BatchDelay),
			)
			if err := c.pause(ctx, c.cfg.BatchDelay); err != nil {
				c.abort(result, "interrupted")
				break
			}
		}

		c.step(sku, result)
		result.LastSKU = sku
		result.ProcessedCount++

		if result.ProcessedCount%c.cfg.ProgressInterval == 0 {
			slog.Info("crawl progress",
				slog.Int("processed", result.ProcessedCount),
				slog.Int("products", len(result.Products)),
			)
		}

		if result.ConsecutiveFailures >= c.cfg.MaxConsecutiveFailures {
			slog.Info("stopping crawl: consecutive failure threshold reached",
				slog.Int("consecutive_failures", result.ConsecutiveFailures),
				slog.Int("last_sku", sku),
			)
			c.abort(result, "consecutive_failures")
			break
		}

		if err := c.pause(ctx, c.cfg.RequestDelay); err != nil {
			c.abort(result, "interrupted")
			break
		}
	}

	result.EndTime = time.Now()

	if err := c.persister.Persist(result); err != nil {
		return result, fmt.Errorf("persist corpus: %w", err)
	}
	return result, nil
}

// step processes a single SKU: fetch, classify, and on a valid page
// extract. Success resets the consecutive-failure counter; every other
// outcome increments it by exactly one.
func (c *Crawler) step(sku int, result *models.CrawlResult) {
	page := c.fetcher.Fetch(sku)
	outcome := Classify(page)
	c.metrics.IncPage(outcome.String())

	switch outcome {
	case OutcomeValid:
		product := Extract(sku, page.URL, page.Doc)
		if err := parser.ValidateProduct(product); err != nil {
			slog.Warn("extracted record has no product name", slog.Int("sku", sku))
			c.fail(result, "empty_name")
			return
		}
		result.Products = append(result.Products, product)
		result.SuccessCount++
		result.ConsecutiveFailures = 0
		c.metrics.IncProducts()
		c.metrics.SetConsecutiveFailures(0)
		slog.Info("scraped product",
			slog.Int("sku", sku),
			slog.String("name", product.Name),
		)

	case OutcomeNotFound:
		slog.Debug("sku not found", slog.Int("sku", sku))
		c.fail(result, "not_found")

	case OutcomeNotProduct:
		slog.Debug("not a product page", slog.Int("sku", sku))
		c.fail(result, "not_a_product")

	case OutcomeTransportError:
		label := errorTypeLabel(page.Fault)
		if page.StatusCode == 0 {
			slog.Error("network error",
				slog.Int("sku", sku),
				slog.String("category", label),
				slog.Any("error", page.Fault),
			)
		} else {
			slog.Warn("unexpected http status",
				slog.Int("sku", sku),
				slog.Int("status", page.StatusCode),
				slog.String("category", label),
			)
		}
		c.metrics.IncError(label)
		c.fail(result, label)
	}
}

func (c *Crawler) fail(result *models.CrawlResult, category string) {
	result.FailureCount++
	result.ConsecutiveFailures++
	result.ErrorsByType[category]++
	c.metrics.SetConsecutiveFailures(result.ConsecutiveFailures)
}

func (c *Crawler) abort(result *models.CrawlResult, reason string) {
	result.Aborted = true
	result.AbortReason = reason
}

// sleepContext blocks for d or until ctx is cancelled, whichever comes
// first.
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
