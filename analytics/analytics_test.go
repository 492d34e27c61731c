package analytics

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/aluiziolira/go-scrape-market/models"
	"github.com/aluiziolira/go-scrape-market/pipeline"
)

func TestAggregateByBrand(t *testing.T) {
	records := []Record{
		{SKU: 1, Name: "Board A", Brand: "Acme", PriceNumeric: 100},
		{SKU: 2, Name: "Board B", Brand: "Acme", PriceNumeric: 200},
		{SKU: 3, Name: "Cutter", Brand: "Globex", PriceNumeric: 50},
		{SKU: 4, Name: "Unbranded", Brand: "", PriceNumeric: 999},
	}

	got := AggregateByBrand(records)

	want := []BrandSummary{
		{Brand: "Acme", ItemCount: 2, BasketCost: 300, AvgItemPrice: 150},
		{Brand: "Globex", ItemCount: 1, BasketCost: 50, AvgItemPrice: 50},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("AggregateByBrand() = %+v, want %+v", got, want)
	}
}

func TestAggregateByBrandEmpty(t *testing.T) {
	if got := AggregateByBrand(nil); len(got) != 0 {
		t.Fatalf("AggregateByBrand(nil) = %+v, want empty", got)
	}
}

func TestReadCorpusRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "corpus.csv")

	products := []*models.Product{
		{
			SKU:          10,
			Name:         "USB Sensor Module",
			PriceNumeric: 1250,
			Currency:     "KES",
			Brand:        "Acme",
			ScrapedAt:    time.Date(2026, 1, 2, 10, 30, 0, 0, time.UTC),
			Specs:        []models.Spec{{Key: "weight", Value: "40 g"}},
		},
		{
			SKU:          11,
			Name:         "Relay Board",
			PriceNumeric: 430.5,
			Currency:     "KES",
			Brand:        "Globex",
			ScrapedAt:    time.Date(2026, 1, 2, 10, 31, 0, 0, time.UTC),
		},
	}

	header, rows := pipeline.Flatten(products)
	writer, err := pipeline.NewCSVWriter(path, header)
	if err != nil {
		t.Fatalf("create corpus: %v", err)
	}
	if err := writer.Write(rows); err != nil {
		t.Fatalf("write corpus: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close corpus: %v", err)
	}

	records, err := ReadCorpus(path)
	if err != nil {
		t.Fatalf("read corpus: %v", err)
	}

	want := []Record{
		{SKU: 10, Name: "USB Sensor Module", Brand: "Acme", PriceNumeric: 1250},
		{SKU: 11, Name: "Relay Board", Brand: "Globex", PriceNumeric: 430.5},
	}
	if !reflect.DeepEqual(records, want) {
		t.Fatalf("ReadCorpus() = %+v, want %+v", records, want)
	}
}

func TestReadCorpusMissingColumn(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "corpus.csv")
	if err := os.WriteFile(path, []byte("sku,product_name\n1,Board\n"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	if _, err := ReadCorpus(path); err == nil {
		t.Fatalf("expected error for corpus without brand column")
	}
}

func TestLatestCorpus(t *testing.T) {
	dir := t.TempDir()
	names := []string{
		"ecommerce_products_20260101_090000.csv",
		"ecommerce_products_20260102_103000.csv",
		"ecommerce_products_20251231_235959.csv",
		"other_file.csv",
	}
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("sku\n"), 0o644); err != nil {
			t.Fatalf("write fixture: %v", err)
		}
	}

	got, err := LatestCorpus(dir, "ecommerce")
	if err != nil {
		t.Fatalf("latest corpus: %v", err)
	}
	if want := filepath.Join(dir, "ecommerce_products_20260102_103000.csv"); got != want {
		t.Fatalf("LatestCorpus() = %q, want %q", got, want)
	}

	if _, err := LatestCorpus(dir, "missing"); err == nil {
		t.Fatalf("expected error when no corpus matches")
	}
}

func TestWriteBrandReport(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "brands.csv")

	summaries := []BrandSummary{
		{Brand: "Acme", ItemCount: 2, BasketCost: 300, AvgItemPrice: 150},
	}
	if err := WriteBrandReport(path, summaries); err != nil {
		t.Fatalf("write brand report: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read brand report: %v", err)
	}
	want := "brand,item_count,basket_cost,avg_item_price\nAcme,2,300.00,150.00\n"
	if string(data) != want {
		t.Fatalf("brand report = %q, want %q", string(data), want)
	}
}
