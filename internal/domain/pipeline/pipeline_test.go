package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/payslip-extract/internal/domain/abbrev"
	"github.com/FACorreiaa/payslip-extract/internal/domain/format"
	"github.com/FACorreiaa/payslip-extract/internal/domain/parser"
	"github.com/FACorreiaa/payslip-extract/internal/domain/pattern"
	"github.com/FACorreiaa/payslip-extract/internal/domain/payslip"
	"github.com/FACorreiaa/payslip-extract/internal/domain/reconcile"
)

const testStatement = `PRINCIPAL CONTROLLER OF DEFENCE ACCOUNTS
STATEMENT OF ACCOUNT
Name: Jane Smith
A/C No: 1234567890
Statement for JANUARY, YEAR 2024
PAY AND ALLOWANCES
BPAY  3000
DA  1500
DEDUCTIONS
ITAX  800`

func newTestPipeline(t *testing.T, parsers []parser.LayoutParser) *Pipeline {
	t.Helper()
	return New(
		NewPlainTextProvider(),
		parsers,
		reconcile.NewReconciler(nil),
		format.NewResultCache(time.Hour, 10),
		nil,
		nil,
		Options{},
	)
}

func realParsers(t *testing.T) []parser.LayoutParser {
	t.Helper()
	registry, err := abbrev.NewDefaultRegistry()
	require.NoError(t, err)
	engine := pattern.NewEngine("")
	patterns := pattern.NewCoreRepository()
	return []parser.LayoutParser{
		parser.NewPCDAParser(engine, patterns, registry, nil),
		parser.NewCorporateParser(engine, patterns, registry, nil),
	}
}

func TestPipeline_EndToEnd(t *testing.T) {
	p := newTestPipeline(t, realParsers(t))

	draft, err := p.Process(context.Background(), &RawDocument{Name: "jan.txt", Data: []byte(testStatement)})
	require.NoError(t, err)

	assert.Equal(t, "Jane Smith", draft.Name)
	assert.Equal(t, "1234567890", draft.AccountNumber)
	assert.Equal(t, "January", draft.Month)
	assert.Equal(t, 2024, draft.Year)
	assert.True(t, draft.GrossPay.Equal(decimal.NewFromInt(4500)), "gross derived from credits, got %s", draft.GrossPay)
	assert.True(t, draft.TotalDeductions.Equal(decimal.NewFromInt(800)))
	assert.True(t, draft.NetRemittance.Equal(decimal.NewFromInt(3700)))
	assert.Empty(t, draft.Warnings)
	assert.Greater(t, draft.Confidence, 0.5)
}

func TestPipeline_Failures(t *testing.T) {
	p := newTestPipeline(t, realParsers(t))

	t.Run("empty document fails before extraction", func(t *testing.T) {
		_, err := p.Process(context.Background(), &RawDocument{Name: "empty.txt"})
		assert.ErrorIs(t, err, ErrEmptyDocument)

		var perr *PipelineError
		require.ErrorAs(t, err, &perr)
		assert.Equal(t, StageValidate, perr.Stage)
	})

	t.Run("too little text is not recognized", func(t *testing.T) {
		_, err := p.Process(context.Background(), &RawDocument{Name: "tiny.txt", Data: []byte("hi")})
		assert.ErrorIs(t, err, ErrNotRecognized)

		var perr *PipelineError
		require.ErrorAs(t, err, &perr)
		assert.Equal(t, StageExtractText, perr.Stage)
	})

	t.Run("non-printable content is not recognized", func(t *testing.T) {
		garbage := strings.Repeat("\x01\x02", 100) + "ok"
		_, err := p.Process(context.Background(), &RawDocument{Name: "binary.txt", Data: []byte(garbage)})
		assert.ErrorIs(t, err, ErrNotRecognized)

		var perr *PipelineError
		require.ErrorAs(t, err, &perr)
		assert.Equal(t, StageExtractText, perr.Stage)
	})

	t.Run("no layout clears the selection floor", func(t *testing.T) {
		gibberish := "this document has plenty of text but resembles no known payslip layout at all"
		_, err := p.Process(context.Background(), &RawDocument{Name: "other.txt", Data: []byte(gibberish)})
		assert.ErrorIs(t, err, ErrNoSuitableParser)

		var perr *PipelineError
		require.ErrorAs(t, err, &perr)
		assert.Equal(t, StageDetectFormat, perr.Stage)
	})

	t.Run("canceled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := p.Process(ctx, &RawDocument{Name: "jan.txt", Data: []byte(testStatement)})
		assert.ErrorIs(t, err, context.Canceled)
	})
}

// stubParser counts Parse calls so cache behavior is observable.
type stubParser struct {
	draft  *payslip.Draft
	err    error
	parsed int
}

func (s *stubParser) Name() string         { return "stub" }
func (s *stubParser) Signatures() []string { return []string{"STUBBY"} }
func (s *stubParser) Parse(_ context.Context, _ []string) (*payslip.Draft, error) {
	s.parsed++
	if s.err != nil {
		return nil, s.err
	}
	return s.draft.Clone(), nil
}

func confidentDraft() *payslip.Draft {
	d := payslip.NewDraft()
	d.Name = "Jane Smith"
	d.Month = "January"
	d.Year = 2024
	d.AccountNumber = "1234567890"
	d.AddCredit("BPAY", decimal.NewFromInt(3000))
	d.AddDebit("ITAX", decimal.NewFromInt(800))
	return d
}

func stubDocument() *RawDocument {
	return &RawDocument{
		Name: "doc.txt",
		Data: []byte("STUBBY statement with enough text to pass the minimum content check"),
	}
}

func TestPipeline_Caching(t *testing.T) {
	t.Run("second run of same document hits the cache", func(t *testing.T) {
		stub := &stubParser{draft: confidentDraft()}
		p := newTestPipeline(t, []parser.LayoutParser{stub})

		first, err := p.Process(context.Background(), stubDocument())
		require.NoError(t, err)
		second, err := p.Process(context.Background(), stubDocument())
		require.NoError(t, err)

		assert.Equal(t, 1, stub.parsed, "identical fingerprint must parse once")
		assert.Equal(t, first.Name, second.Name)
	})

	t.Run("cached draft is not shared with callers", func(t *testing.T) {
		stub := &stubParser{draft: confidentDraft()}
		p := newTestPipeline(t, []parser.LayoutParser{stub})

		first, err := p.Process(context.Background(), stubDocument())
		require.NoError(t, err)
		first.Name = "mutated"
		first.Credits["INJECTED"] = decimal.NewFromInt(1)

		second, err := p.Process(context.Background(), stubDocument())
		require.NoError(t, err)
		assert.Equal(t, "Jane Smith", second.Name)
		assert.NotContains(t, second.Credits, "INJECTED")
	})

	t.Run("warned result is never cached", func(t *testing.T) {
		// Fully populated, but itemized credits exceed the stated gross:
		// reconciliation clamps the residual, warns, and caps confidence
		// at exactly the default gate. Must parse fresh every run.
		warned := confidentDraft()
		warned.AddCredit("DA", decimal.NewFromInt(1500))
		warned.GrossPay = decimal.NewFromInt(4000)
		stub := &stubParser{draft: warned}
		p := newTestPipeline(t, []parser.LayoutParser{stub})

		first, err := p.Process(context.Background(), stubDocument())
		require.NoError(t, err)
		assert.Contains(t, first.Warnings, reconcile.WarnEarningsExceedGross)
		assert.Equal(t, 0.5, first.Confidence)

		_, err = p.Process(context.Background(), stubDocument())
		require.NoError(t, err)
		assert.Equal(t, 2, stub.parsed, "warned result must not be served from cache")
	})

	t.Run("low confidence result is never cached", func(t *testing.T) {
		sparse := payslip.NewDraft()
		sparse.AddCredit("BPAY", decimal.NewFromInt(3000))
		stub := &stubParser{draft: sparse}
		p := newTestPipeline(t, []parser.LayoutParser{stub})

		_, err := p.Process(context.Background(), stubDocument())
		require.NoError(t, err)
		_, err = p.Process(context.Background(), stubDocument())
		require.NoError(t, err)

		assert.Equal(t, 2, stub.parsed)
	})

	t.Run("failed parses are not cached", func(t *testing.T) {
		stub := &stubParser{err: parser.ErrNoFieldsExtracted}
		p := newTestPipeline(t, []parser.LayoutParser{stub})

		_, err := p.Process(context.Background(), stubDocument())
		require.Error(t, err)
		_, err = p.Process(context.Background(), stubDocument())
		require.Error(t, err)

		assert.Equal(t, 2, stub.parsed)

		var ferr *FieldError
		assert.ErrorAs(t, err, &ferr)
		var perr *PipelineError
		require.ErrorAs(t, err, &perr)
		assert.Equal(t, StageParse, perr.Stage)
	})
}

func TestPipeline_Metrics(t *testing.T) {
	stub := &stubParser{draft: confidentDraft()}
	m := NewMetrics(prometheus.NewRegistry())
	p := New(
		NewPlainTextProvider(),
		[]parser.LayoutParser{stub},
		reconcile.NewReconciler(nil),
		format.NewResultCache(time.Hour, 10),
		m,
		nil,
		Options{},
	)

	_, err := p.Process(context.Background(), stubDocument())
	require.NoError(t, err)
	_, err = p.Process(context.Background(), stubDocument())
	require.NoError(t, err)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.ParsesTotal.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheEvents.WithLabelValues(CacheEventMiss)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheEvents.WithLabelValues(CacheEventStore)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheEvents.WithLabelValues(CacheEventHit)))

	_, err = p.Process(context.Background(), &RawDocument{Name: "empty.txt"})
	require.Error(t, err)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ParsesTotal.WithLabelValues(string(StageValidate))))
}

func TestPlainTextProvider(t *testing.T) {
	p := NewPlainTextProvider()
	ctx := context.Background()

	t.Run("form feed splits pages", func(t *testing.T) {
		doc := &RawDocument{Data: []byte("page one\fpage two\fpage three")}
		n, err := p.PageCount(ctx, doc)
		require.NoError(t, err)
		assert.Equal(t, 3, n)

		text, err := p.PageText(ctx, doc, 1)
		require.NoError(t, err)
		assert.Equal(t, "page two", text)
	})

	t.Run("no form feed is one page", func(t *testing.T) {
		doc := &RawDocument{Data: []byte("just one page")}
		n, err := p.PageCount(ctx, doc)
		require.NoError(t, err)
		assert.Equal(t, 1, n)
	})

	t.Run("empty data has zero pages", func(t *testing.T) {
		n, err := p.PageCount(ctx, &RawDocument{})
		require.NoError(t, err)
		assert.Zero(t, n)
	})

	t.Run("page out of range", func(t *testing.T) {
		doc := &RawDocument{Data: []byte("one")}
		_, err := p.PageText(ctx, doc, 5)
		assert.ErrorIs(t, err, ErrTextExtractionFailed)
	})
}

func TestErrorTaxonomy(t *testing.T) {
	t.Run("password protected is an invalid structure", func(t *testing.T) {
		assert.ErrorIs(t, ErrPasswordProtected, ErrInvalidStructure)
	})

	t.Run("pipeline error unwraps to its cause", func(t *testing.T) {
		err := failed(StageParse, ErrNotRecognized)
		assert.ErrorIs(t, err, ErrNotRecognized)
		assert.Contains(t, err.Error(), "parse")
	})

	t.Run("field error messages", func(t *testing.T) {
		assert.Contains(t, (&FieldError{Field: "grossPay"}).Error(), "extraction failed")
		assert.Contains(t, (&FieldError{Field: "year", RawValue: "20x4"}).Error(), `"20x4"`)
	})

	t.Run("field error unwraps", func(t *testing.T) {
		cause := errors.New("boom")
		assert.ErrorIs(t, &FieldError{Field: "f", Err: cause}, cause)
	})
}
