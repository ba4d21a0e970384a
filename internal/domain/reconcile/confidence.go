package reconcile

import (
	"github.com/FACorreiaa/payslip-extract/internal/domain/payslip"
)

// Score derives a [0,1] confidence estimate from how many expected fields
// came out non-empty and within sane bounds. It is a display heuristic and
// a cache gate, not a probability; nothing inside the pipeline branches on
// it beyond the gate.
func Score(draft *payslip.Draft) float64 {
	checks := []bool{
		draft.Name != "",
		draft.Month != "",
		draft.Year > 0,
		draft.AccountNumber != "" || draft.PANNumber != "",
		len(draft.Credits) > 0,
		len(draft.Debits) > 0,
		saneAmount(draft.GrossPay),
		draft.NetRemittance.IsPositive() && !draft.NetRemittance.GreaterThan(draft.GrossPay),
	}

	passed := 0
	for _, ok := range checks {
		if ok {
			passed++
		}
	}

	score := float64(passed) / float64(len(checks))

	// A reconciliation warning means the numbers disagreed somewhere even
	// after normalization; the cap lands exactly on the default cache gate,
	// which is strict, so warned results are never served from cache.
	if len(draft.Warnings) > 0 && score > 0.5 {
		score = 0.5
	}
	return score
}
