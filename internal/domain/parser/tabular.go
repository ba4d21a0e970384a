package parser

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/FACorreiaa/payslip-extract/internal/domain/abbrev"
	"github.com/FACorreiaa/payslip-extract/internal/domain/payslip"
	"github.com/FACorreiaa/payslip-extract/pkg/money"
)

// rowPattern matches one CODE AMOUNT pair. Tabular statement rows often
// carry two pairs per line (credit column, debit column), so all matches on
// a line are taken.
var rowPattern = regexp.MustCompile(`([A-Z][A-Z0-9]+)\s+([0-9][0-9,]*(?:\.[0-9]+)?)`)

// minRowAmount rejects stray digits picked up next to a code; anything
// below it is noise, not a pay component.
var minRowAmount = decimal.NewFromInt(2)

// minRowLength rejects fragments too short to be a real table row.
const minRowLength = 6

// rowDenylist holds tokens that match the row shape but are never pay
// components: table furniture, headings, and identifiers.
var rowDenylist = map[string]struct{}{
	"TOTAL": {}, "GROSS": {}, "NET": {}, "PAGE": {}, "DATE": {},
	"PAN": {}, "NAME": {}, "RANK": {}, "YEAR": {}, "MONTH": {},
	"IFSC": {}, "MICR": {}, "CDA": {}, "PAO": {}, "UNIT": {},
	"NO": {}, "SL": {}, "RS": {}, "INR": {}, "BANK": {},
	"ACCOUNT": {}, "CHEQUE": {}, "STATEMENT": {}, "DETAILS": {},
	"FOR": {}, "FROM": {}, "THE": {}, "AND": {},
	// Month names followed by a year look exactly like CODE AMOUNT rows.
	"JANUARY": {}, "FEBRUARY": {}, "MARCH": {}, "APRIL": {}, "MAY": {},
	"JUNE": {}, "JULY": {}, "AUGUST": {}, "SEPTEMBER": {}, "OCTOBER": {},
	"NOVEMBER": {}, "DECEMBER": {},
}

// ScanTable scans each line for CODE AMOUNT rows and assigns the amounts
// into the draft's credits or debits. Codes are classified through the
// registry: exact, then fuzzy, then the context-based polarity default
// using the nearest preceding section header. Returns how many components
// were assigned.
func ScanTable(text string, registry *abbrev.Registry, draft *payslip.Draft) int {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")

	assigned := 0
	for lineIdx, line := range lines {
		trimmed := strings.TrimSpace(line)
		if len(trimmed) < minRowLength {
			continue
		}

		for _, match := range rowPattern.FindAllStringSubmatch(trimmed, -1) {
			code := match[1]
			if _, denied := rowDenylist[code]; denied {
				continue
			}

			amount, err := money.ParseAmount(match[2])
			if err != nil || amount.LessThan(minRowAmount) {
				continue
			}

			var entry *abbrev.Entry
			if e, ok := registry.Lookup(code); ok {
				entry = &e
			} else if e, ok := registry.FuzzyLookup(code); ok {
				entry = &e
			}

			header := abbrev.NearestSectionHeader(lines, lineIdx)
			if abbrev.ResolvePolarity(entry, code, header) {
				draft.AddCredit(code, amount)
			} else {
				draft.AddDebit(code, amount)
			}
			assigned++
		}
	}
	return assigned
}
