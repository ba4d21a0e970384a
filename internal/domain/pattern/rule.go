// Package pattern implements the declarative extraction-rule engine.
// A rule describes how to pull one field's value out of page text: by
// regular expression, by keyword context, or by fixed line/column position.
// Rules carry ordered preprocessing steps (applied to the input text) and
// postprocessing steps (applied to the matched value).
package pattern

import (
	"github.com/google/uuid"

	"github.com/FACorreiaa/payslip-extract/internal/domain/payslip"
)

// Kind discriminates the rule union. Dispatch happens in a single switch in
// the engine so adding a kind surfaces every site that must handle it.
type Kind string

const (
	KindRegex    Kind = "regex"
	KindKeyword  Kind = "keyword"
	KindPosition Kind = "position"
)

// KeywordDelimiter separates the optional context-before, the keyword, and
// the optional context-after inside an encoded keyword pattern. Three pipes
// never occur in real payslip text.
const KeywordDelimiter = "|||"

// ExtractorRule is one tagged-union variant of the extraction rule set.
// Only the fields relevant to its Kind are consulted.
type ExtractorRule struct {
	Kind Kind `json:"kind"`

	// Pattern holds the regex source for KindRegex, or the encoded
	// before|||keyword|||after segments for KindKeyword.
	Pattern string `json:"pattern,omitempty"`

	// CaptureGroup selects a regex group; 0 means the whole match.
	CaptureGroup int `json:"capture_group,omitempty"`

	// LineOffset is added to the anchor line for KindPosition rules.
	LineOffset int `json:"line_offset,omitempty"`

	// StartCol/EndCol slice the target line; -1 leaves a bound open.
	StartCol int `json:"start_col,omitempty"`
	EndCol   int `json:"end_col,omitempty"`

	// Priority orders rules within a definition; higher runs first.
	Priority int `json:"priority"`

	Preprocess  []Step `json:"preprocess,omitempty"`
	Postprocess []Step `json:"postprocess,omitempty"`
}

// Definition binds a field key to an ordered rule list. Rules are evaluated
// highest-priority first; the first rule whose full chain yields a non-empty
// value wins.
type Definition struct {
	ID              uuid.UUID         `json:"id"`
	Name            string            `json:"name"`
	FieldKey        string            `json:"field_key"`
	Category        payslip.Category  `json:"category"`
	Rules           []ExtractorRule   `json:"rules"`
	IsSystemDefined bool              `json:"is_system_defined"`
}

// NewRegexRule builds a regex rule. Group 1 is returned when captureGroup
// is 1 and the pattern defines it; 0 returns the whole match.
func NewRegexRule(expr string, captureGroup, priority int) ExtractorRule {
	return ExtractorRule{
		Kind:         KindRegex,
		Pattern:      expr,
		CaptureGroup: captureGroup,
		Priority:     priority,
		StartCol:     -1,
		EndCol:       -1,
	}
}

// NewKeywordRule builds a keyword-context rule. Empty before/after leave
// that side of the capture window open.
func NewKeywordRule(before, keyword, after string, priority int) ExtractorRule {
	return ExtractorRule{
		Kind:     KindKeyword,
		Pattern:  before + KeywordDelimiter + keyword + KeywordDelimiter + after,
		Priority: priority,
		StartCol: -1,
		EndCol:   -1,
	}
}

// NewPositionRule builds a fixed-position rule. startCol/endCol of -1 leave
// the respective column bound open so the whole line is returned.
func NewPositionRule(lineOffset, startCol, endCol, priority int) ExtractorRule {
	return ExtractorRule{
		Kind:       KindPosition,
		LineOffset: lineOffset,
		StartCol:   startCol,
		EndCol:     endCol,
		Priority:   priority,
	}
}

// NewDefinition builds a pattern definition with a fresh ID.
func NewDefinition(name, fieldKey string, category payslip.Category, system bool, rules ...ExtractorRule) Definition {
	return Definition{
		ID:              uuid.New(),
		Name:            name,
		FieldKey:        fieldKey,
		Category:        category,
		Rules:           rules,
		IsSystemDefined: system,
	}
}
