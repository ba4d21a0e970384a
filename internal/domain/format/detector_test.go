package format

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeHandle struct {
	name string
	sigs []string
}

func (f *fakeHandle) Name() string         { return f.name }
func (f *fakeHandle) Signatures() []string { return f.sigs }

func TestDetector_Score(t *testing.T) {
	d := NewDetector()
	handle := &fakeHandle{name: "pcda", sigs: []string{"PCDA", "STATEMENT OF ACCOUNT", "PAY AND ALLOWANCES", "DEFENCE"}}
	d.Register(handle)

	t.Run("coverage ratio of distinct tokens", func(t *testing.T) {
		score := d.Score(handle, "statement of account issued by pcda")
		assert.InDelta(t, 0.5, score, 1e-9)
	})

	t.Run("repeated token counts once", func(t *testing.T) {
		score := d.Score(handle, "PCDA PCDA PCDA")
		assert.InDelta(t, 0.25, score, 1e-9)
	})

	t.Run("case insensitive", func(t *testing.T) {
		assert.Equal(t, d.Score(handle, "pcda"), d.Score(handle, "PCDA"))
	})

	t.Run("no tokens", func(t *testing.T) {
		assert.Zero(t, d.Score(handle, "completely unrelated text"))
	})

	t.Run("unregistered handle", func(t *testing.T) {
		assert.Zero(t, d.Score(&fakeHandle{name: "ghost", sigs: []string{"X"}}, "X"))
	})
}

func TestDetector_Select(t *testing.T) {
	t.Run("highest score wins", func(t *testing.T) {
		d := NewDetector()
		pcda := &fakeHandle{name: "pcda", sigs: []string{"PCDA", "DEFENCE"}}
		corp := &fakeHandle{name: "corporate", sigs: []string{"PAYSLIP", "EMPLOYEE"}}
		d.Register(pcda)
		d.Register(corp)

		handle, score, err := d.Select("PCDA DEFENCE statement with PAYSLIP mention")
		require.NoError(t, err)
		assert.Equal(t, "pcda", handle.Name())
		assert.InDelta(t, 1.0, score, 1e-9)
	})

	t.Run("score at the floor is not a candidate", func(t *testing.T) {
		d := NewDetector()
		// 1 of 5 tokens = 0.2 exactly, which must not qualify.
		d.Register(&fakeHandle{name: "five", sigs: []string{"AAA", "BBB", "CCC", "DDD", "EEE"}})
		_, _, err := d.Select("only AAA appears here")
		assert.ErrorIs(t, err, ErrNoSuitableParser)
	})

	t.Run("score just above the floor qualifies", func(t *testing.T) {
		d := NewDetector()
		// 1 of 4 tokens = 0.25.
		d.Register(&fakeHandle{name: "four", sigs: []string{"AAA", "BBB", "CCC", "DDD"}})
		handle, score, err := d.Select("only AAA appears here")
		require.NoError(t, err)
		assert.Equal(t, "four", handle.Name())
		assert.InDelta(t, 0.25, score, 1e-9)
	})

	t.Run("ties resolve to earliest registered", func(t *testing.T) {
		d := NewDetector()
		first := &fakeHandle{name: "first", sigs: []string{"TOKEN"}}
		second := &fakeHandle{name: "second", sigs: []string{"TOKEN"}}
		d.Register(first)
		d.Register(second)

		handle, _, err := d.Select("TOKEN present")
		require.NoError(t, err)
		assert.Equal(t, "first", handle.Name())
	})

	t.Run("empty text matches nothing", func(t *testing.T) {
		d := NewDetector()
		d.Register(&fakeHandle{name: "pcda", sigs: []string{"PCDA"}})
		_, _, err := d.Select("")
		assert.ErrorIs(t, err, ErrNoSuitableParser)
	})

	t.Run("no registered layouts", func(t *testing.T) {
		d := NewDetector()
		_, _, err := d.Select("anything")
		assert.ErrorIs(t, err, ErrNoSuitableParser)
	})

	t.Run("signatureless parser is never selected", func(t *testing.T) {
		d := NewDetector()
		d.Register(&fakeHandle{name: "blank"})
		_, _, err := d.Select("anything")
		assert.ErrorIs(t, err, ErrNoSuitableParser)
	})
}

func TestFingerprint(t *testing.T) {
	t.Run("deterministic for same pages", func(t *testing.T) {
		pages := []string{"  first page text", "middle", "last page"}
		assert.Equal(t, Fingerprint(pages), Fingerprint(pages))
	})

	t.Run("samples first middle last", func(t *testing.T) {
		pages := []string{"alpha", "beta", "gamma", "delta", "omega"}
		key := Fingerprint(pages)
		assert.Equal(t, "alpha::gamma::omega", key)
	})

	t.Run("single page repeats as all three samples", func(t *testing.T) {
		assert.Equal(t, "solo::solo::solo", Fingerprint([]string{"solo"}))
	})

	t.Run("long pages are truncated", func(t *testing.T) {
		long := make([]byte, 500)
		for i := range long {
			long[i] = 'x'
		}
		key := Fingerprint([]string{string(long)})
		// 3 samples of 50 plus two separators.
		assert.Len(t, key, 3*50+4)
	})

	t.Run("whitespace-only pages get a random key", func(t *testing.T) {
		a := Fingerprint([]string{"   ", "\n\t"})
		b := Fingerprint([]string{"   ", "\n\t"})
		assert.NotEqual(t, a, b)
	})

	t.Run("no pages get a random key", func(t *testing.T) {
		assert.NotEqual(t, Fingerprint(nil), Fingerprint(nil))
	})
}
