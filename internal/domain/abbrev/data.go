package abbrev

import (
	_ "embed"
	"fmt"
	"strconv"
	"strings"

	"github.com/gocarina/gocsv"

	"github.com/FACorreiaa/payslip-extract/internal/domain/payslip"
)

//go:embed abbreviations.csv
var abbreviationsCSV []byte

// csvEntry mirrors one CSV row. is_credit is tri-state: true, false, or
// empty for "infer from context".
type csvEntry struct {
	Code        string `csv:"code"`
	Description string `csv:"description"`
	Category    string `csv:"category"`
	IsCredit    string `csv:"is_credit"`
}

// LoadEntries parses the embedded reference table.
func LoadEntries() ([]Entry, error) {
	var rows []csvEntry
	if err := gocsv.UnmarshalBytes(abbreviationsCSV, &rows); err != nil {
		return nil, fmt.Errorf("failed to parse abbreviation table: %w", err)
	}

	entries := make([]Entry, 0, len(rows))
	for i, row := range rows {
		e := Entry{
			Code:        strings.ToUpper(strings.TrimSpace(row.Code)),
			Description: strings.TrimSpace(row.Description),
			Category:    payslip.Category(strings.TrimSpace(row.Category)),
		}
		if raw := strings.TrimSpace(row.IsCredit); raw != "" {
			credit, err := strconv.ParseBool(raw)
			if err != nil {
				return nil, fmt.Errorf("row %d: bad is_credit %q: %w", i+1, raw, err)
			}
			e.IsCredit = &credit
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// NewDefaultRegistry builds the registry from the embedded reference table.
func NewDefaultRegistry() (*Registry, error) {
	entries, err := LoadEntries()
	if err != nil {
		return nil, err
	}
	return NewRegistry(entries), nil
}
