package pattern

import (
	"regexp"
	"sort"
	"strings"

	"github.com/FACorreiaa/payslip-extract/pkg/money"
)

// Engine evaluates extraction rules against page text. It is stateless apart
// from the currency used by the format-as-currency postprocessing step, so a
// single instance is safe to share across concurrent pipeline runs.
type Engine struct {
	currencyCode string
}

// NewEngine creates a rule engine. An empty currency code falls back to INR,
// the currency of the pay statements this module was built around.
func NewEngine(currencyCode string) *Engine {
	if currencyCode == "" {
		currencyCode = money.INR
	}
	return &Engine{currencyCode: currencyCode}
}

// Apply evaluates one rule against text. Position rules are anchored at
// line 0; parsers that know a better anchor use ApplyAt.
// The boolean is false when the rule did not produce a value. A rule that
// fails to compile or match is a miss, never an error: the next rule in
// priority order simply gets its turn.
func (e *Engine) Apply(rule ExtractorRule, text string) (string, bool) {
	return e.ApplyAt(rule, text, 0)
}

// ApplyAt evaluates one rule against text with an explicit anchor line for
// position-based rules (e.g. "two lines below the section header").
func (e *Engine) ApplyAt(rule ExtractorRule, text string, baseLine int) (string, bool) {
	text = preprocess(text, rule.Preprocess)

	var (
		value string
		ok    bool
	)
	switch rule.Kind {
	case KindRegex:
		value, ok = applyRegex(rule, text)
	case KindKeyword:
		value, ok = applyKeyword(rule, text)
	case KindPosition:
		value, ok = applyPosition(rule, text, baseLine)
	default:
		return "", false
	}
	if !ok {
		return "", false
	}

	value = postprocess(value, rule.Postprocess, e.currencyCode)
	if value == "" {
		return "", false
	}
	return value, true
}

// Evaluate runs a definition's rules in priority-descending order and
// returns the first non-empty value. Selection is order-independent: the
// result equals picking the highest-priority rule among all that match.
func (e *Engine) Evaluate(def Definition, text string) (string, bool) {
	rules := append([]ExtractorRule(nil), def.Rules...)
	sort.SliceStable(rules, func(i, j int) bool {
		return rules[i].Priority > rules[j].Priority
	})
	for _, rule := range rules {
		if value, ok := e.Apply(rule, text); ok {
			return value, true
		}
	}
	return "", false
}

// EvaluateAll applies every definition against the text and returns the
// winning value per field key. Definitions that miss are absent from the
// result.
func (e *Engine) EvaluateAll(defs []Definition, text string) map[string]string {
	found := make(map[string]string)
	for _, def := range defs {
		if value, ok := e.Evaluate(def, text); ok {
			found[def.FieldKey] = value
		}
	}
	return found
}

func applyRegex(rule ExtractorRule, text string) (string, bool) {
	re, err := regexp.Compile(rule.Pattern)
	if err != nil {
		return "", false
	}
	groups := re.FindStringSubmatch(text)
	if groups == nil {
		return "", false
	}
	if rule.CaptureGroup > 0 && rule.CaptureGroup < len(groups) {
		return groups[rule.CaptureGroup], true
	}
	return groups[0], true
}

// applyKeyword finds the first case-insensitive keyword occurrence and
// carves a value window around it: from the end of the nearest preceding
// context-before occurrence (or the end of the keyword itself) to the start
// of the following context-after occurrence (or the end of the keyword's
// line). start >= end means no value.
func applyKeyword(rule ExtractorRule, text string) (string, bool) {
	before, keyword, after := decodeKeywordPattern(rule.Pattern)
	if keyword == "" {
		return "", false
	}

	lowerText := strings.ToLower(text)
	kwIdx := strings.Index(lowerText, strings.ToLower(keyword))
	if kwIdx < 0 {
		return "", false
	}
	kwEnd := kwIdx + len(keyword)

	start := kwEnd
	if before != "" {
		bIdx := strings.LastIndex(lowerText[:kwIdx], strings.ToLower(before))
		if bIdx < 0 {
			return "", false
		}
		start = bIdx + len(before)
	}

	end := len(text)
	if nl := strings.IndexByte(text[kwEnd:], '\n'); nl >= 0 {
		end = kwEnd + nl
	}
	if after != "" {
		aIdx := strings.Index(lowerText[kwEnd:], strings.ToLower(after))
		if aIdx < 0 {
			return "", false
		}
		end = kwEnd + aIdx
	}

	if start >= end {
		return "", false
	}
	return text[start:end], true
}

func applyPosition(rule ExtractorRule, text string, baseLine int) (string, bool) {
	lines := strings.Split(normalizeNewlines(text), "\n")
	target := baseLine + rule.LineOffset
	if target < 0 || target >= len(lines) {
		return "", false
	}
	line := lines[target]
	if rule.StartCol >= 0 && rule.EndCol > rule.StartCol && rule.EndCol <= len(line) {
		return line[rule.StartCol:rule.EndCol], true
	}
	return line, true
}

// decodeKeywordPattern splits the encoded before|||keyword|||after segments.
// A pattern without delimiters is treated as a bare keyword.
func decodeKeywordPattern(encoded string) (before, keyword, after string) {
	parts := strings.Split(encoded, KeywordDelimiter)
	switch len(parts) {
	case 1:
		return "", parts[0], ""
	case 2:
		return parts[0], parts[1], ""
	default:
		return parts[0], parts[1], parts[2]
	}
}
