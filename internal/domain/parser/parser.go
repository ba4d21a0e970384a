// Package parser holds the layout-specific parsers that turn extracted page
// text into a payslip draft. Each parser owns the signature tokens of its
// layout family; the format detector selects among them.
package parser

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/FACorreiaa/payslip-extract/internal/domain/pattern"
	"github.com/FACorreiaa/payslip-extract/internal/domain/payslip"
	"github.com/FACorreiaa/payslip-extract/pkg/money"
)

// LayoutParser converts page text of one known layout into a draft. Name and
// Signatures also satisfy the format detector's ParserHandle.
type LayoutParser interface {
	Name() string
	Signatures() []string
	Parse(ctx context.Context, pages []string) (*payslip.Draft, error)
}

// FieldError reports a field that could not be extracted, or whose raw
// value was rejected. RawValue is empty for pure extraction failures.
// Rejected summary fields degrade the parse rather than fail it: the field
// stays unset, the rejection is logged, and reconciliation derives or
// down-scores around the gap.
type FieldError struct {
	Field    string
	RawValue string
	Err      error
}

func (e *FieldError) Error() string {
	if e.RawValue != "" {
		return fmt.Sprintf("invalid value %q for field %s", e.RawValue, e.Field)
	}
	return fmt.Sprintf("extraction failed for field %s", e.Field)
}

func (e *FieldError) Unwrap() error { return e.Err }

// fieldCode maps pattern field keys for standard components onto pay codes
// and polarity, so pattern-extracted amounts land in the right bucket when
// the tabular scan missed them.
var fieldCodes = []struct {
	field  string
	code   string
	credit bool
}{
	{pattern.FieldBasicPay, "BPAY", true},
	{pattern.FieldDA, "DA", true},
	{pattern.FieldMSP, "MSP", true},
	{pattern.FieldDSOP, "DSOP", false},
	{pattern.FieldAGIF, "AGIF", false},
	{pattern.FieldITAX, "ITAX", false},
}

// applyFields copies winning pattern values into the draft. Personal fields
// are taken verbatim; numeric fields go through parsing and are dropped when
// rejected, each rejection reported back so callers can log the raw value.
func applyFields(draft *payslip.Draft, fields map[string]string) []*FieldError {
	var rejected []*FieldError
	reject := func(field, raw string, err error) {
		rejected = append(rejected, &FieldError{Field: field, RawValue: raw, Err: err})
	}

	if v, ok := fields[pattern.FieldName]; ok {
		draft.Name = strings.TrimSpace(v)
	}
	if v, ok := fields[pattern.FieldAccountNumber]; ok {
		draft.AccountNumber = strings.TrimSpace(v)
	}
	if v, ok := fields[pattern.FieldPANNumber]; ok {
		draft.PANNumber = strings.ToUpper(strings.TrimSpace(v))
	}
	if v, ok := fields[pattern.FieldMonth]; ok {
		draft.Month = capitalize(v)
	}
	if v, ok := fields[pattern.FieldYear]; ok {
		if year, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			draft.Year = year
		} else {
			reject(pattern.FieldYear, v, err)
		}
	}

	setAmount := func(key string, dst *decimal.Decimal) {
		v, ok := fields[key]
		if !ok {
			return
		}
		amt, err := money.ParseAmount(v)
		if err != nil {
			reject(key, v, err)
			return
		}
		*dst = amt
	}
	setAmount(pattern.FieldGrossPay, &draft.GrossPay)
	setAmount(pattern.FieldTotalDeductions, &draft.TotalDeductions)
	setAmount(pattern.FieldNetRemittance, &draft.NetRemittance)

	for _, fc := range fieldCodes {
		v, ok := fields[fc.field]
		if !ok {
			continue
		}
		amt, err := money.ParseAmount(v)
		if err != nil {
			reject(fc.field, v, err)
			continue
		}
		if fc.credit {
			if _, exists := draft.Credits[fc.code]; !exists {
				draft.AddCredit(fc.code, amt)
			}
		} else {
			if _, exists := draft.Debits[fc.code]; !exists {
				draft.AddDebit(fc.code, amt)
			}
		}
	}
	return rejected
}

// logRejections reports fields whose raw values failed parsing. The parse
// itself continues without them.
func logRejections(logger *slog.Logger, layout string, rejected []*FieldError) {
	for _, fe := range rejected {
		logger.Warn("parser.field.rejected",
			"layout", layout,
			"field", fe.Field,
			"raw", fe.RawValue,
		)
	}
}

func capitalize(s string) string {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
