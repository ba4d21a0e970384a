// Command extract runs the payslip extraction pipeline over a document and
// prints the reconciled result as JSON. It also exposes an interactive
// pay-code lookup mode over the abbreviation registry.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/FACorreiaa/payslip-extract/internal/domain/abbrev"
	"github.com/FACorreiaa/payslip-extract/internal/domain/format"
	"github.com/FACorreiaa/payslip-extract/internal/domain/parser"
	"github.com/FACorreiaa/payslip-extract/internal/domain/pattern"
	"github.com/FACorreiaa/payslip-extract/internal/domain/payslip"
	"github.com/FACorreiaa/payslip-extract/internal/domain/pipeline"
	"github.com/FACorreiaa/payslip-extract/internal/domain/reconcile"
	"github.com/FACorreiaa/payslip-extract/pkg/config"
	"github.com/FACorreiaa/payslip-extract/pkg/money"
)

func main() {
	lookup := flag.String("lookup", "", "look up a pay code instead of parsing a document")
	timeout := flag.Duration("timeout", 30*time.Second, "processing deadline")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] <document>\n", filepath.Base(os.Args[0]))
		flag.PrintDefaults()
	}
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.Logging)
	slog.SetDefault(logger)

	if err := run(cfg, logger, *lookup, *timeout, flag.Args()); err != nil {
		logger.Error("extract.failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger, lookup string, timeout time.Duration, args []string) error {
	registry, err := abbrev.NewDefaultRegistry()
	if err != nil {
		return fmt.Errorf("load abbreviation table: %w", err)
	}

	if lookup != "" {
		return runLookup(registry, lookup)
	}

	if len(args) != 1 {
		flag.Usage()
		return errors.New("expected exactly one document path")
	}
	path := args[0]

	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	promReg := prometheus.NewRegistry()
	if cfg.Metrics.Enabled {
		serveMetrics(cfg.Metrics.Port, promReg, logger)
	}

	engine := pattern.NewEngine(cfg.Extraction.CurrencyCode)
	patterns := pattern.NewCoreRepository()
	reconciler := reconcile.NewReconciler(logger)
	cache := format.NewResultCache(cfg.Cache.TTL, cfg.Cache.Capacity)
	metrics := pipeline.NewMetrics(promReg)

	parsers := []parser.LayoutParser{
		parser.NewPCDAParser(engine, patterns, registry, logger),
		parser.NewCorporateParser(engine, patterns, registry, logger),
	}

	p := pipeline.New(newProvider(path), parsers, reconciler, cache, metrics, logger, pipeline.Options{
		MinContentLength:   cfg.Extraction.MinContentLength,
		MinCacheConfidence: cfg.Cache.MinConfidence,
	})

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	draft, err := p.Process(ctx, &pipeline.RawDocument{Name: filepath.Base(path), Data: data})
	if err != nil {
		return describeFailure(err)
	}

	return printDraft(os.Stdout, draft, cfg.Extraction.CurrencyCode)
}

// newProvider picks the text provider by file extension. Anything that is
// not a PDF is treated as plain text with form-feed page breaks.
func newProvider(path string) pipeline.TextProvider {
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		return pipeline.NewPDFProvider()
	}
	return pipeline.NewPlainTextProvider()
}

// describeFailure maps taxonomy errors onto actionable one-liners.
func describeFailure(err error) error {
	switch {
	case errors.Is(err, pipeline.ErrPasswordProtected):
		return fmt.Errorf("document is password protected, decrypt it first: %w", err)
	case errors.Is(err, pipeline.ErrEmptyDocument):
		return fmt.Errorf("document is empty: %w", err)
	case errors.Is(err, pipeline.ErrNoSuitableParser), errors.Is(err, pipeline.ErrNotRecognized):
		return fmt.Errorf("document does not look like a supported payslip: %w", err)
	default:
		return err
	}
}

// result is the CLI's output shape: amounts formatted for display, plus the
// raw decimal strings for anything downstream that wants to compute.
type result struct {
	Name            string            `json:"name,omitempty"`
	Month           string            `json:"month,omitempty"`
	Year            int               `json:"year,omitempty"`
	AccountNumber   string            `json:"account_number,omitempty"`
	PANNumber       string            `json:"pan_number,omitempty"`
	Credits         map[string]string `json:"credits,omitempty"`
	Debits          map[string]string `json:"debits,omitempty"`
	GrossPay        string            `json:"gross_pay"`
	TotalDeductions string            `json:"total_deductions"`
	NetRemittance   string            `json:"net_remittance"`
	Confidence      float64           `json:"confidence"`
	Warnings        []string          `json:"warnings,omitempty"`
}

func printDraft(w *os.File, draft *payslip.Draft, currency string) error {
	out := result{
		Name:            draft.Name,
		Month:           draft.Month,
		Year:            draft.Year,
		AccountNumber:   draft.AccountNumber,
		PANNumber:       draft.PANNumber,
		Credits:         make(map[string]string, len(draft.Credits)),
		Debits:          make(map[string]string, len(draft.Debits)),
		GrossPay:        money.Format(draft.GrossPay, currency),
		TotalDeductions: money.Format(draft.TotalDeductions, currency),
		NetRemittance:   money.Format(draft.NetRemittance, currency),
		Confidence:      draft.Confidence,
		Warnings:        draft.Warnings,
	}
	for code, amt := range draft.Credits {
		out.Credits[code] = money.Format(amt, currency)
	}
	for code, amt := range draft.Debits {
		out.Debits[code] = money.Format(amt, currency)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// runLookup resolves a pay code: exact match first, then fuzzy, then ranked
// suggestions plus a description search so "provident" still finds DSOP.
func runLookup(registry *abbrev.Registry, code string) error {
	if entry, ok := registry.Lookup(code); ok {
		printEntry(entry, "exact")
		return nil
	}
	if entry, ok := registry.FuzzyLookup(code); ok {
		printEntry(entry, "fuzzy")
		return nil
	}

	found := false
	for _, entry := range registry.Suggest(code, 5) {
		printEntry(entry, "suggestion")
		found = true
	}

	index, err := abbrev.NewDescriptionIndex(registry)
	if err != nil {
		return err
	}
	defer index.Close()
	docs, err := index.Search(code, 5)
	if err != nil {
		return err
	}
	for _, doc := range docs {
		fmt.Printf("%-12s %-10s %s (description match)\n", doc.Code, doc.Category, doc.Description)
		found = true
	}

	if !found {
		return fmt.Errorf("no entry resembling %q", code)
	}
	return nil
}

func printEntry(entry abbrev.Entry, kind string) {
	polarity := "context-dependent"
	if entry.IsCredit != nil {
		if *entry.IsCredit {
			polarity = "credit"
		} else {
			polarity = "debit"
		}
	}
	fmt.Printf("%-12s %-10s %-18s %s (%s)\n", entry.Code, entry.Category, polarity, entry.Description, kind)
}

func serveMetrics(port int, reg *prometheus.Registry, logger *slog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	go func() {
		addr := fmt.Sprintf(":%d", port)
		logger.Info("metrics.listening", "addr", addr)
		if err := http.ListenAndServe(addr, mux); err != nil {
			logger.Error("metrics.server", "error", err)
		}
	}()
}

func newLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.JSON {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}
