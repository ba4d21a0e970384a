package pattern

import (
	"strings"

	"github.com/FACorreiaa/payslip-extract/pkg/money"
)

// Step names one text transformation. Preprocessing steps run against the
// whole input text before matching; postprocessing steps run against the
// matched value. Both run in declared order.
type Step string

const (
	// Preprocessing steps.
	StepNormalizeNewlines Step = "normalizeNewlines" // \r\n and \r become \n
	StepNormalizeCase     Step = "normalizeCase"     // lowercase everything
	StepRemoveWhitespace  Step = "removeWhitespace"  // strip all whitespace
	StepNormalizeSpaces   Step = "normalizeSpaces"   // collapse runs to one space
	StepTrimLines         Step = "trimLines"         // trim each line independently

	// Postprocessing steps.
	StepTrim            Step = "trim"
	StepFormatCurrency  Step = "formatCurrency" // parse and re-render with currency symbol
	StepStripNonNumeric Step = "stripNonNumeric"
	StepUppercase       Step = "uppercase"
	StepLowercase       Step = "lowercase"
)

// preprocess applies the rule's input-text steps in order. Unknown steps are
// skipped so a caller-authored pattern with a stale step name degrades to a
// plain match instead of failing the rule.
func preprocess(text string, steps []Step) string {
	for _, step := range steps {
		switch step {
		case StepNormalizeNewlines:
			text = normalizeNewlines(text)
		case StepNormalizeCase:
			text = strings.ToLower(text)
		case StepRemoveWhitespace:
			text = strings.Join(strings.Fields(text), "")
		case StepNormalizeSpaces:
			text = strings.Join(strings.Fields(text), " ")
		case StepTrimLines:
			lines := strings.Split(normalizeNewlines(text), "\n")
			for i, line := range lines {
				lines[i] = strings.TrimSpace(line)
			}
			text = strings.Join(lines, "\n")
		}
	}
	return text
}

// postprocess applies the rule's value steps in order. A currency render
// that fails to parse leaves the value unchanged.
func postprocess(value string, steps []Step, currencyCode string) string {
	for _, step := range steps {
		switch step {
		case StepTrim:
			value = strings.TrimSpace(value)
		case StepFormatCurrency:
			if amt, err := money.ParseAmount(value); err == nil {
				value = money.Format(amt, currencyCode)
			}
		case StepStripNonNumeric:
			value = keepDigits(value)
		case StepUppercase:
			value = strings.ToUpper(value)
		case StepLowercase:
			value = strings.ToLower(value)
		}
	}
	return value
}

func normalizeNewlines(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.ReplaceAll(text, "\r", "\n")
}

func keepDigits(value string) string {
	var sb strings.Builder
	for _, r := range value {
		if r >= '0' && r <= '9' {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
