// Package payslip defines the value types shared by the extraction pipeline:
// the draft record being accumulated, extracted fields, and field categories.
package payslip

import (
	"github.com/shopspring/decimal"
)

// Category classifies what part of a payslip a field or pay code belongs to.
type Category string

const (
	CategoryPersonal   Category = "personal"
	CategoryEarnings   Category = "earnings"
	CategoryDeductions Category = "deductions"
	CategoryBanking    Category = "banking"
	CategoryTaxInfo    Category = "taxInfo"
	CategoryCustom     Category = "custom"
)

// ExtractedField is a single key/value pair produced by rule application.
// Keys are stable identifiers ("basicPay", "name", "dsop"). Within one
// extraction pass the last write for a key wins.
type ExtractedField struct {
	Key      string `json:"key"`
	RawValue string `json:"raw_value"`
}

// FieldSet accumulates extracted fields with last-write-wins semantics.
type FieldSet map[string]string

// Set records a value for a key, overwriting any earlier value.
func (fs FieldSet) Set(key, value string) {
	fs[key] = value
}

// Get returns the value for a key and whether it was ever written.
func (fs FieldSet) Get(key string) (string, bool) {
	v, ok := fs[key]
	return v, ok
}

// Draft is the mutable accumulator a layout parser fills in and the
// reconciler normalizes. It is created per pipeline run and converted to the
// caller's persisted record type outside this module.
type Draft struct {
	Name          string `json:"name"`
	AccountNumber string `json:"account_number"`
	PANNumber     string `json:"pan_number"`
	Month         string `json:"month"`
	Year          int    `json:"year"`

	// Itemized components keyed by pay code (e.g. "BPAY", "DSOP").
	Credits map[string]decimal.Decimal `json:"credits"`
	Debits  map[string]decimal.Decimal `json:"debits"`

	GrossPay        decimal.Decimal `json:"gross_pay"`
	TotalDeductions decimal.Decimal `json:"total_deductions"`
	NetRemittance   decimal.Decimal `json:"net_remittance"`

	// Confidence is a heuristic [0,1] reliability estimate, not a probability.
	Confidence float64 `json:"confidence"`

	// Warnings records reconciliation anomalies the caller may surface,
	// e.g. known components exceeding a stated total.
	Warnings []string `json:"warnings,omitempty"`
}

// NewDraft returns an empty draft with initialized component maps.
func NewDraft() *Draft {
	return &Draft{
		Credits: make(map[string]decimal.Decimal),
		Debits:  make(map[string]decimal.Decimal),
	}
}

// AddCredit records an earning component. A repeated code overwrites the
// earlier amount, mirroring last-write-wins field semantics.
func (d *Draft) AddCredit(code string, amount decimal.Decimal) {
	d.Credits[code] = amount
}

// AddDebit records a deduction component.
func (d *Draft) AddDebit(code string, amount decimal.Decimal) {
	d.Debits[code] = amount
}

// SumCredits returns the sum of all itemized earnings.
func (d *Draft) SumCredits() decimal.Decimal {
	total := decimal.Zero
	for _, amt := range d.Credits {
		total = total.Add(amt)
	}
	return total
}

// SumDebits returns the sum of all itemized deductions.
func (d *Draft) SumDebits() decimal.Decimal {
	total := decimal.Zero
	for _, amt := range d.Debits {
		total = total.Add(amt)
	}
	return total
}

// Clone returns a deep copy of the draft. The reconciler operates on a copy
// so a failed run never leaves a half-normalized draft behind.
func (d *Draft) Clone() *Draft {
	out := *d
	out.Credits = make(map[string]decimal.Decimal, len(d.Credits))
	for k, v := range d.Credits {
		out.Credits[k] = v
	}
	out.Debits = make(map[string]decimal.Decimal, len(d.Debits))
	for k, v := range d.Debits {
		out.Debits[k] = v
	}
	out.Warnings = append([]string(nil), d.Warnings...)
	return &out
}
