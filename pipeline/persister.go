package pipeline

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aluiziolira/go-scrape-market/config"
	"github.com/aluiziolira/go-scrape-market/models"
)

// Persister flushes a finished crawl to disk. It runs exactly once per
// session, on the crawl's single exit path, so file naming and the
// empty-corpus warning live here and nowhere else.
type Persister struct {
	outputDir string
	prefix    string
	format    string

	// now is swappable so tests get deterministic file names.
	now func() time.Time
}

// NewPersister builds a persister from output configuration.
func NewPersister(cfg *config.Config) *Persister {
	return &Persister{
		outputDir: cfg.OutputDir,
		prefix:    cfg.FilePrefix,
		format:    cfg.OutputFormat,
		now:       time.Now,
	}
}

// Persist writes the corpus CSV, the JSONL mirror when dual output is
// configured, and the summary report. An empty corpus writes nothing and
// logs a single warning; that is not an error.
func (p *Persister) Persist(result *models.CrawlResult) error {
	if result == nil || len(result.Products) == 0 {
		slog.Warn("no products scraped, skipping output")
		return nil
	}

	stamp := p.now().Format("20060102_150405")
	csvPath := filepath.Join(p.outputDir, fmt.Sprintf("%s_products_%s.csv", p.prefix, stamp))

	header, rows := Flatten(result.Products)
	if err := writeCSV(csvPath, header, rows); err != nil {
		return err
	}
	slog.Info("corpus written",
		slog.String("path", csvPath),
		slog.Int("products", len(result.Products)),
		slog.Int("columns", len(header)),
	)

	if p.format == "dual" {
		jsonPath := filepath.Join(p.outputDir, fmt.Sprintf("%s_products_%s.jsonl", p.prefix, stamp))
		if err := writeJSONL(jsonPath, result.Products); err != nil {
			return err
		}
		slog.Info("jsonl mirror written", slog.String("path", jsonPath))
	}

	reportPath := strings.TrimSuffix(csvPath, ".csv") + "_summary.txt"
	report := BuildReport(result, p.now())
	if err := os.WriteFile(reportPath, []byte(report), 0o644); err != nil {
		return fmt.Errorf("write summary report: %w", err)
	}
	slog.Info("summary report written", slog.String("path", reportPath))

	return nil
}

func writeCSV(path string, header []string, rows [][]string) error {
	writer, err := NewCSVWriter(path, header)
	if err != nil {
		return err
	}
	if err := writer.Write(rows); err != nil {
		writer.Close()
		return err
	}
	if err := writer.Validate(); err != nil {
		writer.Close()
		return err
	}
	return writer.Close()
}

func writeJSONL(path string, products []*models.Product) error {
	writer, err := NewJSONWriter(path)
	if err != nil {
		return err
	}
	if err := writer.Write(products); err != nil {
		writer.Close()
		return err
	}
	if err := writer.Validate(); err != nil {
		writer.Close()
		return err
	}
	return writer.Close()
}
