// Command brandreport aggregates a scraped corpus per brand: how many
// items each brand lists, what buying one of everything would cost, and
// the average item price.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/aluiziolira/go-scrape-market/analytics"
	"github.com/aluiziolira/go-scrape-market/config"
)

func main() {
	defaultCfg := config.DefaultConfig()

	input := flag.String("input", "", "Corpus CSV to aggregate (default: newest corpus in the output directory)")
	outputDir := flag.String("output-dir", defaultCfg.OutputDir, "Directory searched for corpus files")
	prefix := flag.String("prefix", defaultCfg.FilePrefix, "Corpus file name prefix")
	output := flag.String("output", "", "Write the rollup as CSV to this path as well")
	flag.Parse()

	path := *input
	if path == "" {
		latest, err := analytics.LatestCorpus(*outputDir, *prefix)
		if err != nil {
			fmt.Fprintf(os.Stderr, "locate corpus: %v\n", err)
			os.Exit(1)
		}
		path = latest
	}

	records, err := analytics.ReadCorpus(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read corpus: %v\n", err)
		os.Exit(1)
	}

	summaries := analytics.AggregateByBrand(records)
	printBrandTable(path, len(records), summaries)

	if *output != "" {
		if err := analytics.WriteBrandReport(*output, summaries); err != nil {
			fmt.Fprintf(os.Stderr, "write brand report: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("\nBrand report written to %s\n", *output)
	}
}

func printBrandTable(path string, recordCount int, summaries []analytics.BrandSummary) {
	fmt.Printf("Corpus: %s (%d records)\n\n", path, recordCount)
	fmt.Printf("%-24s %10s %14s %14s\n", "BRAND", "ITEMS", "BASKET COST", "AVG PRICE")
	for _, summary := range summaries {
		fmt.Printf("%-24s %10d %14.2f %14.2f\n", summary.Brand, summary.ItemCount, summary.BasketCost, summary.AvgItemPrice)
	}
	if len(summaries) == 0 {
		fmt.Println("(no branded records)")
	}
}
