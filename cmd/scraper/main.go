package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/aluiziolira/go-scrape-market/config"
	"github.com/aluiziolira/go-scrape-market/models"
	"github.com/aluiziolira/go-scrape-market/pipeline"
	"github.com/aluiziolira/go-scrape-market/scraper"
	"github.com/google/uuid"
	"github.com/lmittmann/tint"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	defaultCfg := config.DefaultConfig()
	startDefault := defaultCfg.StartSKU
	if value, ok, err := config.EnvInt("SCRAPER_START"); err != nil {
		fmt.Fprintf(os.Stderr, "invalid SCRAPER_START: %v\n", err)
		os.Exit(1)
	} else if ok {
		startDefault = value
	}
	maxDefault := defaultCfg.MaxSKU
	if value, ok, err := config.EnvInt("SCRAPER_MAX_SKU"); err != nil {
		fmt.Fprintf(os.Stderr, "invalid SCRAPER_MAX_SKU: %v\n", err)
		os.Exit(1)
	} else if ok {
		maxDefault = value
	}
	outputDirDefault := defaultCfg.OutputDir
	if value, ok := config.EnvString("SCRAPER_OUTPUT_DIR"); ok {
		outputDirDefault = value
	}
	metricsDefault := defaultCfg.MetricsAddr
	if value, ok := config.EnvString("SCRAPER_METRICS_ADDR"); ok {
		metricsDefault = value
	}

	baseURL := flag.String("base-url", defaultCfg.BaseURL, "SKU page URL prefix; the numeric SKU is appended")
	startSKU := flag.Int("start", startDefault, "First SKU to fetch")
	maxSKU := flag.Int("max-sku", maxDefault, "Last SKU to fetch (inclusive)")
	maxFailures := flag.Int("max-failures", defaultCfg.MaxConsecutiveFailures, "Consecutive failures before the crawl stops")
	timeoutMs := flag.Int("timeout", int(defaultCfg.Timeout/time.Millisecond), "Per-request timeout (milliseconds)")
	delayMs := flag.Int("delay", int(defaultCfg.RequestDelay/time.Millisecond), "Delay between requests (milliseconds)")
	batchDelayMs := flag.Int("batch-delay", int(defaultCfg.BatchDelay/time.Millisecond), "Extra pause after each batch (milliseconds)")
	batchSize := flag.Int("batch-size", defaultCfg.BatchSize, "SKUs per batch between long pauses")
	outputDir := flag.String("output-dir", outputDirDefault, "Directory for corpus, report, and log files")
	prefix := flag.String("prefix", defaultCfg.FilePrefix, "Output file name prefix")
	outputFormat := flag.String("format", defaultCfg.OutputFormat, "Output format: csv or dual (csv plus jsonl)")
	verbose := flag.Bool("v", false, "Enable verbose logging")
	metricsAddr := flag.String("metrics-addr", metricsDefault, "Prometheus metrics listen address (e.g. :9090)")

	flag.Parse()

	cfg := buildConfigFromFlags(*baseURL, *startSKU, *maxSKU, *maxFailures, *timeoutMs, *delayMs, *batchDelayMs, *batchSize, *outputDir, *prefix, *outputFormat, *verbose, *metricsAddr)

	logFile, err := openLogFile(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open log file: %v\n", err)
		os.Exit(1)
	}
	defer logFile.Close()

	logger, level := newLogger(cfg.Verbose, logFile)
	logger = logger.With(slog.String("run_id", uuid.NewString()))
	slog.SetDefault(logger)
	slog.SetLogLoggerLevel(level.Level())

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", slog.Any("error", err))
		os.Exit(1)
	}

	slog.Info("session log opened", slog.String("path", logFile.Name()))

	metrics := scraper.NewMetrics()
	fetcher, err := scraper.NewFetcher(cfg, metrics)
	if err != nil {
		slog.Error("initialising fetcher", slog.Any("error", err))
		os.Exit(1)
	}
	persister := pipeline.NewPersister(cfg)
	crawler := scraper.NewCrawler(cfg, fetcher, persister, metrics)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		slog.Info("shutdown signal received, finishing the current item and flushing the corpus")
	}()

	var metricsServer *http.Server
	if cfg.MetricsAddr != "" {
		metricsServer = &http.Server{
			Addr:    cfg.MetricsAddr,
			Handler: promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}),
		}
		go func() {
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("metrics server failed", slog.Any("error", err))
			}
		}()
		slog.Info("metrics server enabled", slog.String("addr", cfg.MetricsAddr))
	}

	startTime := time.Now()
	result, err := crawler.Run(ctx)
	if err != nil {
		slog.Error("crawl failed", slog.Any("error", err))
		os.Exit(1)
	}

	if metricsServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			slog.Error("metrics server shutdown failed", slog.Any("error", err))
		}
		cancel()
	}

	printSummary(result, time.Since(startTime))
}

func buildConfigFromFlags(baseURL string, startSKU, maxSKU, maxFailures, timeoutMs, delayMs, batchDelayMs, batchSize int, outputDir, prefix, outputFormat string, verbose bool, metricsAddr string) *config.Config {
	cfg := config.DefaultConfig()
	cfg.BaseURL = baseURL
	cfg.StartSKU = startSKU
	cfg.MaxSKU = maxSKU
	cfg.MaxConsecutiveFailures = maxFailures
	cfg.Timeout = time.Duration(timeoutMs) * time.Millisecond
	cfg.RequestDelay = time.Duration(delayMs) * time.Millisecond
	cfg.BatchDelay = time.Duration(batchDelayMs) * time.Millisecond
	cfg.BatchSize = batchSize
	cfg.OutputDir = outputDir
	cfg.FilePrefix = prefix
	cfg.OutputFormat = strings.ToLower(outputFormat)
	cfg.Verbose = verbose
	cfg.MetricsAddr = metricsAddr
	return cfg
}

// openLogFile creates the per-run log file next to the crawl's other
// artifacts.
func openLogFile(cfg *config.Config) (*os.File, error) {
	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}
	name := fmt.Sprintf("%s_scraping_%s.log", cfg.FilePrefix, time.Now().Format("20060102_150405"))
	return os.Create(filepath.Join(cfg.OutputDir, name))
}

func printSummary(result *models.CrawlResult, duration time.Duration) {
	separator := "--------------------------------------------------"
	fmt.Println("\n" + separator)
	fmt.Println("Crawl complete")

	fmt.Printf("  Products:      %d\n", len(result.Products))
	fmt.Printf("  Processed:     %d\n", result.ProcessedCount)
	successRate := 0.0
	if result.ProcessedCount > 0 {
		successRate = float64(result.SuccessCount) / float64(result.ProcessedCount) * 100
	}
	fmt.Printf("  Success rate:  %.2f%%\n", successRate)
	fmt.Printf("  Failures:      %d\n", result.FailureCount)
	if len(result.ErrorsByType) > 0 {
		fmt.Printf("  Error types:   %v\n", result.ErrorsByType)
	}
	fmt.Printf("  Last SKU:      %d\n", result.LastSKU)
	if result.Aborted {
		fmt.Printf("  Aborted:       %s\n", result.AbortReason)
	}
	fmt.Printf("  Duration:      %v\n", duration)
	itemsPerSec := 0.0
	if duration.Seconds() > 0 {
		itemsPerSec = float64(result.ProcessedCount) / duration.Seconds()
	}
	fmt.Printf("  SKUs/sec:      %.2f\n", itemsPerSec)
	fmt.Println(separator)
}

// newLogger builds the session logger: a tinted console stream plus a
// JSON copy of every record in the run's log file.
func newLogger(verbose bool, logFile *os.File) (*slog.Logger, *slog.LevelVar) {
	level := &slog.LevelVar{}
	if verbose {
		level.Set(slog.LevelDebug)
	} else {
		level.Set(slog.LevelInfo)
	}

	console := tint.NewHandler(os.Stdout, &tint.Options{
		Level:   level,
		NoColor: !isTerminal(os.Stdout),
	})
	file := slog.NewJSONHandler(logFile, &slog.HandlerOptions{Level: level})

	return slog.New(multiHandler{handlers: []slog.Handler{console, file}}), level
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}

// multiHandler fans each record out to every underlying handler.
type multiHandler struct {
	handlers []slog.Handler
}

func (h multiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, handler := range h.handlers {
		if handler.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (h multiHandler) Handle(ctx context.Context, record slog.Record) error {
	var errs []error
	for _, handler := range h.handlers {
		if handler.Enabled(ctx, record.Level) {
			if err := handler.Handle(ctx, record.Clone()); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

func (h multiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := make([]slog.Handler, len(h.handlers))
	for i, handler := range h.handlers {
		next[i] = handler.WithAttrs(attrs)
	}
	return multiHandler{handlers: next}
}

func (h multiHandler) WithGroup(name string) slog.Handler {
	next := make([]slog.Handler, len(h.handlers))
	for i, handler := range h.handlers {
		next[i] = handler.WithGroup(name)
	}
	return multiHandler{handlers: next}
}
