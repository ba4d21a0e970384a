package parser

import "strings"

// Section tags a page with the kind of data it carries. A page may carry
// several tags; a section's data always comes from the first page tagged
// with it, even when later pages (e.g. corrected reprints) repeat it.
type Section string

const (
	SectionPersonal    Section = "personal-details"
	SectionEarnings    Section = "earnings-deductions"
	SectionNet         Section = "net-remittance"
	SectionTax         Section = "tax-details"
	SectionFund        Section = "fund-details"
	SectionContact     Section = "contact-details"
)

// sectionMarkers lists each section's primary marker first, then the
// alternatives seen across layout revisions. Matching is case-insensitive
// substring containment.
var sectionMarkers = map[Section][]string{
	SectionPersonal: {"PERSONAL DETAILS", "EMPLOYEE DETAILS", "PARTICULARS OF OFFICER"},
	SectionEarnings: {"EARNINGS AND DEDUCTIONS", "PAY AND ALLOWANCES", "CREDITS", "ENTITLEMENTS"},
	SectionNet:      {"NET REMITTANCE", "NET AMOUNT PAYABLE", "AMOUNT REMITTED"},
	SectionTax:      {"INCOME TAX DETAILS", "TAX DETAILS", "TDS DETAILS"},
	SectionFund:     {"DSOP FUND", "FUND DETAILS", "PROVIDENT FUND"},
	SectionContact:  {"CONTACT US", "CONTACT DETAILS", "GRIEVANCE"},
}

// ClassifyPages tags each page against the known section markers and
// returns, per section, the index of the first page carrying it.
func ClassifyPages(pages []string) map[Section]int {
	firstPage := make(map[Section]int)
	for i, page := range pages {
		upper := strings.ToUpper(page)
		for section, markers := range sectionMarkers {
			if _, seen := firstPage[section]; seen {
				continue
			}
			for _, marker := range markers {
				if strings.Contains(upper, marker) {
					firstPage[section] = i
					break
				}
			}
		}
	}
	return firstPage
}

// SectionText returns the text of the page that first carried the section.
func SectionText(pages []string, tags map[Section]int, section Section) (string, bool) {
	idx, ok := tags[section]
	if !ok || idx < 0 || idx >= len(pages) {
		return "", false
	}
	return pages[idx], true
}
