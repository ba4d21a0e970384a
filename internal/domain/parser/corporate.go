package parser

import (
	"context"
	"log/slog"
	"strings"

	"github.com/FACorreiaa/payslip-extract/internal/domain/abbrev"
	"github.com/FACorreiaa/payslip-extract/internal/domain/pattern"
	"github.com/FACorreiaa/payslip-extract/internal/domain/payslip"
)

// CorporateParser handles page-segmented payslips: personal details,
// earnings/deductions table, net remittance, and tax details live on
// separately marked pages (or page regions). Each section's patterns run
// only against the first page tagged with that section.
type CorporateParser struct {
	engine   *pattern.Engine
	patterns pattern.Repository
	registry *abbrev.Registry
	logger   *slog.Logger
}

// NewCorporateParser wires the parser's collaborators. A nil logger falls
// back to slog.Default().
func NewCorporateParser(engine *pattern.Engine, patterns pattern.Repository, registry *abbrev.Registry, logger *slog.Logger) *CorporateParser {
	if logger == nil {
		logger = slog.Default()
	}
	return &CorporateParser{engine: engine, patterns: patterns, registry: registry, logger: logger}
}

// Name identifies the layout family.
func (p *CorporateParser) Name() string { return "corporate" }

// Signatures are the tokens that identify this layout.
func (p *CorporateParser) Signatures() []string {
	return []string{
		"PAYSLIP",
		"EMPLOYEE CODE",
		"EARNINGS",
		"DEDUCTIONS",
		"NET PAY",
	}
}

// Parse classifies pages into sections, then evaluates each category's
// patterns against the section that carries its data. Sections that were
// never tagged fall back to the full document text so a single-page payslip
// still parses.
func (p *CorporateParser) Parse(ctx context.Context, pages []string) (*payslip.Draft, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fullText := strings.Join(pages, "\n")
	tags := ClassifyPages(pages)
	draft := payslip.NewDraft()

	sectionOrFull := func(section Section) string {
		if text, ok := SectionText(pages, tags, section); ok {
			return text
		}
		return fullText
	}

	fields := make(map[string]string)
	merge := func(found map[string]string) {
		for k, v := range found {
			fields[k] = v
		}
	}

	merge(p.engine.EvaluateAll(p.patterns.GetPatternsForCategory(payslip.CategoryPersonal), sectionOrFull(SectionPersonal)))
	merge(p.engine.EvaluateAll(p.patterns.GetPatternsForCategory(payslip.CategoryBanking), sectionOrFull(SectionPersonal)))
	merge(p.engine.EvaluateAll(p.patterns.GetPatternsForCategory(payslip.CategoryTaxInfo), sectionOrFull(SectionTax)))
	merge(p.engine.EvaluateAll(p.patterns.GetPatternsForCategory(payslip.CategoryEarnings), sectionOrFull(SectionEarnings)))
	merge(p.engine.EvaluateAll(p.patterns.GetPatternsForCategory(payslip.CategoryDeductions), sectionOrFull(SectionEarnings)))

	// Net remittance is usually restated on its own page; prefer that copy.
	if netText, ok := SectionText(pages, tags, SectionNet); ok {
		merge(p.engine.EvaluateAll(p.patterns.GetPatternsForCategory(payslip.CategoryEarnings), netText))
	}

	logRejections(p.logger, p.Name(), applyFields(draft, fields))

	components := ScanTable(sectionOrFull(SectionEarnings), p.registry, draft)

	if len(fields) == 0 && components == 0 {
		return nil, ErrNoFieldsExtracted
	}

	p.logger.Debug("parser.corporate.done",
		"sections", len(tags),
		"fields", len(fields),
		"components", components,
	)
	return draft, nil
}

var _ LayoutParser = (*CorporateParser)(nil)
