package abbrev

import "strings"

// Section-header tokens that settle polarity when the table does not.
var (
	creditMarkers = []string{"ALLOWANCE", "CREDIT", "EARNING", "PAYMENT"}
	debitMarkers  = []string{"DEDUCTION", "DEBIT", "RECOVERY"}

	// Codes carrying these fragments are levies even when unregistered.
	debitCodeHints = []string{"TAX", "SURCH", "CESS"}
)

// ResolvePolarity reports whether a pay code is a credit. The fallback order
// is fixed; the dataset skews toward unknown codes being earnings:
//
//  1. the matched entry's own IsCredit, when set
//  2. the nearest preceding section header's marker tokens
//  3. tax-like fragments in the code itself (debit)
//  4. credit
//
// entry may be nil when no exact or fuzzy match was found.
func ResolvePolarity(entry *Entry, code, sectionHeader string) bool {
	if entry != nil && entry.IsCredit != nil {
		return *entry.IsCredit
	}

	header := strings.ToUpper(sectionHeader)
	if header != "" {
		for _, marker := range creditMarkers {
			if strings.Contains(header, marker) {
				return true
			}
		}
		for _, marker := range debitMarkers {
			if strings.Contains(header, marker) {
				return false
			}
		}
	}

	upperCode := strings.ToUpper(code)
	for _, hint := range debitCodeHints {
		if strings.Contains(upperCode, hint) {
			return false
		}
	}

	return true
}

// NearestSectionHeader returns the last line before lineIdx that carries any
// credit or debit marker, or "" when none precedes it. Parsers use this to
// supply section context for codes the table leaves unsettled.
func NearestSectionHeader(lines []string, lineIdx int) string {
	if lineIdx > len(lines) {
		lineIdx = len(lines)
	}
	for i := lineIdx - 1; i >= 0; i-- {
		upper := strings.ToUpper(lines[i])
		for _, marker := range creditMarkers {
			if strings.Contains(upper, marker) {
				return lines[i]
			}
		}
		for _, marker := range debitMarkers {
			if strings.Contains(upper, marker) {
				return lines[i]
			}
		}
	}
	return ""
}
