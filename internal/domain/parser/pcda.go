package parser

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/FACorreiaa/payslip-extract/internal/domain/abbrev"
	"github.com/FACorreiaa/payslip-extract/internal/domain/pattern"
	"github.com/FACorreiaa/payslip-extract/internal/domain/payslip"
)

// ErrNoFieldsExtracted is returned when a parser found neither personal
// fields nor a single pay component. The pipeline reports it as a field
// extraction failure rather than yielding an empty draft.
var ErrNoFieldsExtracted = errors.New("no extractable fields found")

// PCDAParser handles the fixed-column statement-of-account layout issued by
// the Principal Controller of Defence Accounts. The whole statement is one
// dense table, so it leans on the core patterns plus the tabular scan.
type PCDAParser struct {
	engine   *pattern.Engine
	patterns pattern.Repository
	registry *abbrev.Registry
	logger   *slog.Logger
}

// NewPCDAParser wires the parser's collaborators. A nil logger falls back
// to slog.Default().
func NewPCDAParser(engine *pattern.Engine, patterns pattern.Repository, registry *abbrev.Registry, logger *slog.Logger) *PCDAParser {
	if logger == nil {
		logger = slog.Default()
	}
	return &PCDAParser{engine: engine, patterns: patterns, registry: registry, logger: logger}
}

// Name identifies the layout family.
func (p *PCDAParser) Name() string { return "pcda" }

// Signatures are the tokens that identify this layout. "PCDA" is a
// substring of the full title, so a statement carrying the title scores on
// both.
func (p *PCDAParser) Signatures() []string {
	return []string{
		"PRINCIPAL CONTROLLER OF DEFENCE ACCOUNTS",
		"PCDA",
		"STATEMENT OF ACCOUNT",
		"PAY AND ALLOWANCES",
	}
}

// Parse runs every registered pattern over the full statement text, then
// sweeps the table rows for pay components the patterns did not name.
func (p *PCDAParser) Parse(ctx context.Context, pages []string) (*payslip.Draft, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	text := strings.Join(pages, "\n")
	draft := payslip.NewDraft()

	fields := p.engine.EvaluateAll(p.patterns.GetAllPatterns(), text)
	logRejections(p.logger, p.Name(), applyFields(draft, fields))

	components := ScanTable(text, p.registry, draft)

	if len(fields) == 0 && components == 0 {
		return nil, ErrNoFieldsExtracted
	}

	p.logger.Debug("parser.pcda.done",
		"fields", len(fields),
		"components", components,
	)
	return draft, nil
}

var _ LayoutParser = (*PCDAParser)(nil)
