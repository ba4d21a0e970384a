package abbrev

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/payslip-extract/internal/domain/payslip"
)

func boolPtr(b bool) *bool { return &b }

func testRegistry(t *testing.T) *Registry {
	t.Helper()
	return NewRegistry([]Entry{
		{Code: "BPAY", Description: "Basic Pay", Category: payslip.CategoryEarnings, IsCredit: boolPtr(true)},
		{Code: "DA", Description: "Dearness Allowance", Category: payslip.CategoryEarnings, IsCredit: boolPtr(true)},
		{Code: "DSOP", Description: "Defence Services Officers Provident Fund", Category: payslip.CategoryDeductions, IsCredit: boolPtr(false)},
		{Code: "ITAX", Description: "Income Tax", Category: payslip.CategoryDeductions, IsCredit: boolPtr(false)},
		{Code: "ARR", Description: "Arrears", Category: payslip.CategoryCustom},
	})
}

func TestRegistry_Lookup(t *testing.T) {
	r := testRegistry(t)

	t.Run("exact code", func(t *testing.T) {
		entry, ok := r.Lookup("DSOP")
		require.True(t, ok)
		assert.Equal(t, "Defence Services Officers Provident Fund", entry.Description)
	})

	t.Run("case and whitespace insensitive", func(t *testing.T) {
		entry, ok := r.Lookup("  dsop ")
		require.True(t, ok)
		assert.Equal(t, "DSOP", entry.Code)
	})

	t.Run("unknown code", func(t *testing.T) {
		_, ok := r.Lookup("UNKNOWN")
		assert.False(t, ok)
	})
}

func TestRegistry_FuzzyLookup(t *testing.T) {
	r := testRegistry(t)

	t.Run("one edit away", func(t *testing.T) {
		entry, ok := r.FuzzyLookup("DSOPP")
		require.True(t, ok)
		assert.Equal(t, "DSOP", entry.Code)
	})

	t.Run("two edits away", func(t *testing.T) {
		entry, ok := r.FuzzyLookup("DS0PP") // OCR zero plus a doubled letter
		require.True(t, ok)
		assert.Equal(t, "DSOP", entry.Code)
	})

	t.Run("three edits is too far", func(t *testing.T) {
		_, ok := r.FuzzyLookup("XYZQW")
		assert.False(t, ok)
	})

	t.Run("exact match wins at distance zero", func(t *testing.T) {
		entry, ok := r.FuzzyLookup("ITAX")
		require.True(t, ok)
		assert.Equal(t, "ITAX", entry.Code)
	})

	t.Run("ties break toward earlier registration", func(t *testing.T) {
		// "AA" is distance 1 from "DA" and distance 2 from "ARR"; the
		// closer entry must win regardless of order.
		entry, ok := r.FuzzyLookup("AA")
		require.True(t, ok)
		assert.Equal(t, "DA", entry.Code)

		// "DAX" is distance 1 from "DA" only; verify a genuine tie case:
		// register two codes equidistant from the query.
		tie := NewRegistry([]Entry{
			{Code: "ABC", Category: payslip.CategoryCustom},
			{Code: "ABD", Category: payslip.CategoryCustom},
		})
		entry, ok = tie.FuzzyLookup("ABX")
		require.True(t, ok)
		assert.Equal(t, "ABC", entry.Code)
	})

	t.Run("empty query", func(t *testing.T) {
		_, ok := r.FuzzyLookup("")
		assert.False(t, ok)
	})
}

func TestRegistry_PartialMatch(t *testing.T) {
	r := testRegistry(t)

	t.Run("codes embedded in text", func(t *testing.T) {
		matches := r.PartialMatch("line with BPAY and dsop and noise")
		codes := make([]string, len(matches))
		for i, m := range matches {
			codes[i] = m.Code
		}
		assert.Equal(t, []string{"BPAY", "DSOP"}, codes, "registration order, case insensitive")
	})

	t.Run("no match", func(t *testing.T) {
		assert.Empty(t, r.PartialMatch("nothing relevant here"))
	})

	t.Run("empty text", func(t *testing.T) {
		assert.Empty(t, r.PartialMatch(""))
	})
}

func TestRegistry_Suggest(t *testing.T) {
	r := testRegistry(t)

	t.Run("ranked suggestions", func(t *testing.T) {
		got := r.Suggest("DSO", 3)
		require.NotEmpty(t, got)
		assert.Equal(t, "DSOP", got[0].Code)
	})

	t.Run("limit respected", func(t *testing.T) {
		got := r.Suggest("A", 1)
		assert.LessOrEqual(t, len(got), 1)
	})

	t.Run("zero limit", func(t *testing.T) {
		assert.Empty(t, r.Suggest("DSOP", 0))
	})
}

func TestRegistry_DuplicatesAndNormalization(t *testing.T) {
	r := NewRegistry([]Entry{
		{Code: "bpay", Description: "first", Category: payslip.CategoryEarnings},
		{Code: "BPAY", Description: "second", Category: payslip.CategoryEarnings},
		{Code: "  ", Description: "blank", Category: payslip.CategoryCustom},
	})

	assert.Equal(t, 1, r.Len())
	entry, ok := r.Lookup("BPAY")
	require.True(t, ok)
	assert.Equal(t, "first", entry.Description, "duplicate codes keep the first registration")
}

func TestLevenshteinDistance(t *testing.T) {
	cases := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"DSOP", "", 4},
		{"", "DA", 2},
		{"DSOP", "DSOP", 0},
		{"DSOP", "DSOPP", 1},
		{"BPAY", "BPA", 1},
		{"ITAX", "ATAX", 1},
		{"MSP", "DSOP", 2},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, levenshteinDistance(tc.a, tc.b), "%s vs %s", tc.a, tc.b)
		assert.Equal(t, tc.want, levenshteinDistance(tc.b, tc.a), "distance must be symmetric")
	}
}

func TestDefaultRegistry(t *testing.T) {
	r, err := NewDefaultRegistry()
	require.NoError(t, err)
	assert.Greater(t, r.Len(), 30)

	t.Run("core codes present with polarity", func(t *testing.T) {
		for code, wantCredit := range map[string]bool{
			"BPAY": true, "DA": true, "MSP": true,
			"DSOP": false, "AGIF": false, "ITAX": false,
		} {
			entry, ok := r.Lookup(code)
			require.True(t, ok, code)
			require.NotNil(t, entry.IsCredit, code)
			assert.Equal(t, wantCredit, *entry.IsCredit, code)
		}
	})

	t.Run("context-dependent codes stay unsettled", func(t *testing.T) {
		entry, ok := r.Lookup("ARR")
		require.True(t, ok)
		assert.Nil(t, entry.IsCredit)
	})
}

func BenchmarkFuzzyLookup(b *testing.B) {
	r, err := NewDefaultRegistry()
	if err != nil {
		b.Fatal(err)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		r.FuzzyLookup("DSOPP")
	}
}
