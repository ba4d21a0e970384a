package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode"

	"github.com/FACorreiaa/payslip-extract/internal/domain/format"
	"github.com/FACorreiaa/payslip-extract/internal/domain/parser"
	"github.com/FACorreiaa/payslip-extract/internal/domain/payslip"
	"github.com/FACorreiaa/payslip-extract/internal/domain/reconcile"
)

// Options tune the pipeline without touching its collaborators.
type Options struct {
	// MinContentLength is the least printable text (all pages combined)
	// a document must yield to count as recognized.
	MinContentLength int
	// MinCacheConfidence gates caching: reconciled drafts scoring at or
	// below it are returned but never stored. The gate is strict because
	// a reconciliation warning caps the score at exactly this default;
	// warned results must parse fresh every run.
	MinCacheConfidence float64
}

const (
	DefaultMinContentLength   = 40
	DefaultMinCacheConfidence = 0.5
)

// Pipeline runs a document through validation, text extraction, format
// detection, layout parsing and reconciliation. Failures short-circuit;
// nothing downstream of a failed stage runs.
type Pipeline struct {
	provider   TextProvider
	detector   *format.Detector
	parsers    map[string]parser.LayoutParser
	reconciler *reconcile.Reconciler
	cache      *format.ResultCache
	metrics    *Metrics
	logger     *slog.Logger
	opts       Options
}

// New assembles a pipeline. Parsers are registered with the detector in
// slice order, which is also the detection tie-break order. A nil metrics
// or logger falls back to unregistered instruments and slog.Default().
func New(provider TextProvider, parsers []parser.LayoutParser, reconciler *reconcile.Reconciler, cache *format.ResultCache, metrics *Metrics, logger *slog.Logger, opts Options) *Pipeline {
	if metrics == nil {
		metrics = NewMetrics(nil)
	}
	if logger == nil {
		logger = slog.Default()
	}
	if opts.MinContentLength <= 0 {
		opts.MinContentLength = DefaultMinContentLength
	}
	if opts.MinCacheConfidence <= 0 {
		opts.MinCacheConfidence = DefaultMinCacheConfidence
	}

	detector := format.NewDetector()
	byName := make(map[string]parser.LayoutParser, len(parsers))
	for _, lp := range parsers {
		detector.Register(lp)
		byName[lp.Name()] = lp
	}

	return &Pipeline{
		provider:   provider,
		detector:   detector,
		parsers:    byName,
		reconciler: reconciler,
		cache:      cache,
		metrics:    metrics,
		logger:     logger,
		opts:       opts,
	}
}

// Process extracts a reconciled payslip draft from the document. The
// returned draft is the caller's to mutate; cached copies are never shared.
func (p *Pipeline) Process(ctx context.Context, doc *RawDocument) (*payslip.Draft, error) {
	draft, err := p.process(ctx, doc)
	if err != nil {
		outcome := "failed"
		var perr *PipelineError
		if errors.As(err, &perr) {
			outcome = string(perr.Stage)
		}
		p.metrics.ParsesTotal.WithLabelValues(outcome).Inc()
		p.logger.Warn("pipeline.failed", "document", doc.Name, "error", err)
		return nil, err
	}
	p.metrics.ParsesTotal.WithLabelValues("success").Inc()
	return draft, nil
}

func (p *Pipeline) process(ctx context.Context, doc *RawDocument) (*payslip.Draft, error) {
	pages, err := p.extractPages(ctx, doc)
	if err != nil {
		return nil, err
	}

	key := format.Fingerprint(pages)

	draft, hit, err := p.cache.GetOrCompute(key, func() (*payslip.Draft, bool, error) {
		p.metrics.CacheEvents.WithLabelValues(CacheEventMiss).Inc()

		out, err := p.parseAndReconcile(ctx, doc, pages)
		if err != nil {
			return nil, false, err
		}

		cacheable := out.Confidence > p.opts.MinCacheConfidence
		if cacheable {
			p.metrics.CacheEvents.WithLabelValues(CacheEventStore).Inc()
		} else {
			p.metrics.CacheEvents.WithLabelValues(CacheEventSkip).Inc()
			p.logger.Debug("pipeline.cache.skip",
				"document", doc.Name,
				"confidence", out.Confidence,
			)
		}
		return out, cacheable, nil
	})
	if err != nil {
		return nil, err
	}
	if hit {
		p.metrics.CacheEvents.WithLabelValues(CacheEventHit).Inc()
		p.logger.Debug("pipeline.cache.hit", "document", doc.Name)
	}
	return draft.Clone(), nil
}

// extractPages covers the validate and extract-text stages.
func (p *Pipeline) extractPages(ctx context.Context, doc *RawDocument) ([]string, error) {
	started := time.Now()
	if doc == nil || len(doc.Data) == 0 {
		return nil, failed(StageValidate, ErrEmptyDocument)
	}
	if sv, ok := p.provider.(StructureValidator); ok {
		if err := sv.ValidateStructure(ctx, doc); err != nil {
			return nil, failed(StageValidate, err)
		}
	}
	count, err := p.provider.PageCount(ctx, doc)
	if err != nil {
		return nil, failed(StageValidate, err)
	}
	if count == 0 {
		return nil, failed(StageValidate, ErrEmptyDocument)
	}
	p.observe(StageValidate, started)

	if err := ctx.Err(); err != nil {
		return nil, failed(StageExtractText, err)
	}

	started = time.Now()
	pages := make([]string, count)
	printable := 0
	for i := 0; i < count; i++ {
		text, err := p.provider.PageText(ctx, doc, i)
		if err != nil {
			if errors.Is(err, ErrTextExtractionFailed) {
				return nil, failed(StageExtractText, err)
			}
			return nil, failed(StageExtractText, fmt.Errorf("%w: %v", ErrTextExtractionFailed, err))
		}
		pages[i] = text
		printable += printableLen(text)
	}
	// Quality gate: count only printable characters, so a page of control
	// bytes or decode garbage does not pass as content.
	if printable < p.opts.MinContentLength {
		return nil, failed(StageExtractText, fmt.Errorf("%w: %d printable chars extracted", ErrNotRecognized, printable))
	}
	p.observe(StageExtractText, started)

	p.logger.Debug("pipeline.extracted",
		"document", doc.Name,
		"pages", count,
		"chars", printable,
	)
	return pages, nil
}

func printableLen(text string) int {
	n := 0
	for _, r := range text {
		if unicode.IsPrint(r) && r != unicode.ReplacementChar {
			n++
		}
	}
	return n
}

// parseAndReconcile covers the detect-format, parse and reconcile stages.
func (p *Pipeline) parseAndReconcile(ctx context.Context, doc *RawDocument, pages []string) (*payslip.Draft, error) {
	if err := ctx.Err(); err != nil {
		return nil, failed(StageDetectFormat, err)
	}

	started := time.Now()
	fullText := strings.Join(pages, "\n")
	handle, score, err := p.detector.Select(fullText)
	if err != nil {
		return nil, failed(StageDetectFormat, err)
	}
	lp := p.parsers[handle.Name()]
	p.observe(StageDetectFormat, started)

	p.logger.Info("pipeline.format",
		"document", doc.Name,
		"layout", lp.Name(),
		"score", score,
	)

	started = time.Now()
	raw, err := lp.Parse(ctx, pages)
	if err != nil {
		if errors.Is(err, parser.ErrNoFieldsExtracted) {
			err = &FieldError{Field: "components", Err: err}
		}
		return nil, failed(StageParse, err)
	}
	out := p.reconciler.Reconcile(raw)
	p.observe(StageParse, started)

	p.logger.Info("pipeline.parsed",
		"document", doc.Name,
		"layout", lp.Name(),
		"confidence", out.Confidence,
		"warnings", len(out.Warnings),
	)
	return out, nil
}

func (p *Pipeline) observe(stage Stage, started time.Time) {
	p.metrics.StageDuration.WithLabelValues(string(stage)).Observe(time.Since(started).Seconds())
}
