package pattern

import (
	"github.com/FACorreiaa/payslip-extract/internal/domain/payslip"
)

// Field keys produced by the core patterns. Layout parsers and the
// reconciler address extracted values through these.
const (
	FieldName            = "name"
	FieldAccountNumber   = "accountNumber"
	FieldPANNumber       = "panNumber"
	FieldMonth           = "month"
	FieldYear            = "year"
	FieldLocation        = "location"
	FieldGrossPay        = "grossPay"
	FieldTotalDeductions = "totalDeductions"
	FieldNetRemittance   = "netRemittance"
	FieldBasicPay        = "basicPay"
	FieldDA              = "da"
	FieldMSP             = "msp"
	FieldDSOP            = "dsop"
	FieldAGIF            = "agif"
	FieldITAX            = "itax"
)

// CoreDefinitions returns the built-in system patterns. Per field the regex
// rule carries the higher priority; keyword rules are the looser fallback
// for layouts that label fields but vary their punctuation.
func CoreDefinitions() []Definition {
	trimmed := func(r ExtractorRule) ExtractorRule {
		r.Preprocess = []Step{StepNormalizeNewlines}
		r.Postprocess = []Step{StepTrim}
		return r
	}
	amount := func(r ExtractorRule) ExtractorRule {
		r.Preprocess = []Step{StepNormalizeNewlines, StepNormalizeSpaces}
		r.Postprocess = []Step{StepTrim}
		return r
	}

	return []Definition{
		NewDefinition("Name", FieldName, payslip.CategoryPersonal, true,
			trimmed(NewRegexRule(`(?i)name\s*[:\-]\s*([A-Za-z][A-Za-z .]+)`, 1, 20)),
			trimmed(NewKeywordRule("", "Name:", "", 10)),
		),
		NewDefinition("Account Number", FieldAccountNumber, payslip.CategoryBanking, true,
			trimmed(NewRegexRule(`(?i)a/?c(?:count)?\s*no\.?\s*[:\-]?\s*([0-9][0-9/\-A-Z]*)`, 1, 20)),
			trimmed(NewKeywordRule("", "A/C No", "", 10)),
		),
		NewDefinition("PAN Number", FieldPANNumber, payslip.CategoryTaxInfo, true,
			trimmed(NewRegexRule(`[A-Z]{5}[0-9]{4}[A-Z]`, 0, 20)),
			trimmed(NewKeywordRule("", "PAN", "", 10)),
		),
		NewDefinition("Statement Month", FieldMonth, payslip.CategoryPersonal, true,
			trimmed(NewRegexRule(`(?i)\b(january|february|march|april|may|june|july|august|september|october|november|december)\b`, 1, 20)),
		),
		NewDefinition("Statement Year", FieldYear, payslip.CategoryPersonal, true,
			trimmed(NewRegexRule(`\b(20\d{2})\b`, 1, 20)),
		),
		NewDefinition("Location", FieldLocation, payslip.CategoryPersonal, true,
			trimmed(NewKeywordRule("", "Location:", "", 10)),
		),

		NewDefinition("Gross Pay", FieldGrossPay, payslip.CategoryEarnings, true,
			amount(NewRegexRule(`(?i)gross\s*pay\s*[:\-]?\s*([0-9,.]+)`, 1, 30)),
			amount(NewRegexRule(`(?i)total\s*credits?\s*[:\-]?\s*([0-9,.]+)`, 1, 20)),
			amount(NewKeywordRule("", "Gross Pay", "", 10)),
		),
		NewDefinition("Total Deductions", FieldTotalDeductions, payslip.CategoryDeductions, true,
			amount(NewRegexRule(`(?i)total\s*deductions?\s*[:\-]?\s*([0-9,.]+)`, 1, 30)),
			amount(NewRegexRule(`(?i)total\s*debits?\s*[:\-]?\s*([0-9,.]+)`, 1, 20)),
			amount(NewKeywordRule("", "Total Deductions", "", 10)),
		),
		NewDefinition("Net Remittance", FieldNetRemittance, payslip.CategoryEarnings, true,
			amount(NewRegexRule(`(?i)net\s*(?:remittance|amount|pay)\s*[:\-]?\s*([0-9,.]+)`, 1, 30)),
			amount(NewKeywordRule("", "Net Remittance", "", 10)),
		),

		NewDefinition("Basic Pay", FieldBasicPay, payslip.CategoryEarnings, true,
			amount(NewRegexRule(`(?i)\b(?:BPAY|basic\s*pay)\b\s*[:\-]?\s*([0-9,.]+)`, 1, 20)),
		),
		NewDefinition("Dearness Allowance", FieldDA, payslip.CategoryEarnings, true,
			amount(NewRegexRule(`(?i)\b(?:DA|dearness\s*allowance)\b\s*[:\-]?\s*([0-9,.]+)`, 1, 20)),
		),
		NewDefinition("Military Service Pay", FieldMSP, payslip.CategoryEarnings, true,
			amount(NewRegexRule(`(?i)\b(?:MSP|military\s*service\s*pay)\b\s*[:\-]?\s*([0-9,.]+)`, 1, 20)),
		),
		NewDefinition("DSOP Fund", FieldDSOP, payslip.CategoryDeductions, true,
			amount(NewRegexRule(`(?i)\bDSOP\b\s*[:\-]?\s*([0-9,.]+)`, 1, 20)),
		),
		NewDefinition("AGIF", FieldAGIF, payslip.CategoryDeductions, true,
			amount(NewRegexRule(`(?i)\bAGIF\b\s*[:\-]?\s*([0-9,.]+)`, 1, 20)),
		),
		NewDefinition("Income Tax", FieldITAX, payslip.CategoryDeductions, true,
			amount(NewRegexRule(`(?i)\b(?:ITAX|income\s*tax)\b\s*[:\-]?\s*([0-9,.]+)`, 1, 20)),
		),
	}
}
