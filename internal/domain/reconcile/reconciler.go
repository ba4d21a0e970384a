// Package reconcile normalizes a parsed draft: bounds-checks the numbers,
// derives missing totals, computes residual miscellaneous buckets, and
// scores extraction confidence. Reconciliation is a total pass: it corrects
// or flags discrepancies, it never fails.
package reconcile

import (
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/FACorreiaa/payslip-extract/internal/domain/payslip"
)

// Amount sanity bounds: below the floor is line noise, above the ceiling is
// a runaway parse (digits glued together across columns).
var (
	minValidAmount = decimal.NewFromInt(2)
	maxValidAmount = decimal.NewFromInt(10_000_000)
)

// Residual buckets hold the gap between a stated total and the sum of
// individually identified standard components.
const (
	CodeOtherEarnings   = "OTHER_EARNINGS"
	CodeOtherDeductions = "OTHER_DEDUCTIONS"
)

// Known standard components for residual computation.
var (
	standardEarnings   = []string{"BPAY", "DA", "MSP"}
	standardDeductions = []string{"DSOP", "AGIF", "ITAX"}
)

// Warnings appended when a negative residual had to be clamped. The clamp
// itself is kept for parity with how callers have always displayed these
// records; the warning surfaces what the clamp would otherwise hide.
const (
	WarnEarningsExceedGross   = "itemized earnings exceed stated gross pay"
	WarnDeductionsExceedTotal = "itemized deductions exceed stated total deductions"
)

// Reconciler normalizes drafts. Stateless; safe for concurrent use.
type Reconciler struct {
	logger *slog.Logger
}

// NewReconciler creates a reconciler. A nil logger falls back to
// slog.Default().
func NewReconciler(logger *slog.Logger) *Reconciler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reconciler{logger: logger}
}

// Reconcile returns a normalized copy of the draft. Running it on its own
// output is a no-op: totals are only derived when absent and residuals are
// recomputed from the same inputs.
func (r *Reconciler) Reconcile(draft *payslip.Draft) *payslip.Draft {
	out := draft.Clone()

	r.dropInsaneAmounts(out)

	// Derive totals only where extraction found none.
	if !saneAmount(out.GrossPay) {
		out.GrossPay = decimal.Zero
	}
	if out.GrossPay.IsZero() {
		out.GrossPay = out.SumCredits()
	}
	if !saneAmount(out.TotalDeductions) {
		out.TotalDeductions = decimal.Zero
	}
	if out.TotalDeductions.IsZero() {
		out.TotalDeductions = out.SumDebits()
	}
	if !saneAmount(out.NetRemittance) {
		out.NetRemittance = decimal.Zero
	}
	if out.NetRemittance.IsZero() {
		out.NetRemittance = out.GrossPay.Sub(out.TotalDeductions)
	}

	r.computeResidual(out, out.GrossPay, standardEarnings, out.Credits,
		CodeOtherEarnings, WarnEarningsExceedGross)
	r.computeResidual(out, out.TotalDeductions, standardDeductions, out.Debits,
		CodeOtherDeductions, WarnDeductionsExceedTotal)

	out.Confidence = Score(out)

	r.logger.Debug("reconcile.done",
		"gross", out.GrossPay.String(),
		"deductions", out.TotalDeductions.String(),
		"net", out.NetRemittance.String(),
		"confidence", out.Confidence,
		"warnings", len(out.Warnings),
	)
	return out
}

// dropInsaneAmounts removes itemized components outside the sanity bounds
// before they can pollute derived totals.
func (r *Reconciler) dropInsaneAmounts(draft *payslip.Draft) {
	for code, amt := range draft.Credits {
		if !saneAmount(amt) {
			r.logger.Debug("reconcile.drop", "code", code, "amount", amt.String())
			delete(draft.Credits, code)
		}
	}
	for code, amt := range draft.Debits {
		if !saneAmount(amt) {
			r.logger.Debug("reconcile.drop", "code", code, "amount", amt.String())
			delete(draft.Debits, code)
		}
	}
}

// computeResidual assigns total − Σ(standard components) to the synthetic
// bucket. A negative residual is clamped to zero and flagged through a
// warning so the caller can still prompt for review.
func (r *Reconciler) computeResidual(draft *payslip.Draft, total decimal.Decimal, standard []string, components map[string]decimal.Decimal, bucket, warning string) {
	if total.IsZero() {
		return
	}

	known := decimal.Zero
	for _, code := range standard {
		if amt, ok := components[code]; ok {
			known = known.Add(amt)
		}
	}

	residual := total.Sub(known)
	if residual.IsNegative() {
		residual = decimal.Zero
		addWarning(draft, warning)
	}
	if residual.IsPositive() {
		components[bucket] = residual
	} else {
		delete(components, bucket)
	}
}

func saneAmount(amt decimal.Decimal) bool {
	return amt.GreaterThanOrEqual(minValidAmount) && amt.LessThanOrEqual(maxValidAmount)
}

// addWarning appends once; reconciling twice must not duplicate warnings.
func addWarning(draft *payslip.Draft, warning string) {
	for _, w := range draft.Warnings {
		if w == warning {
			return
		}
	}
	draft.Warnings = append(draft.Warnings, warning)
}
