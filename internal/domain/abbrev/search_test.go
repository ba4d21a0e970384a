package abbrev

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDescriptionIndex_Search(t *testing.T) {
	registry, err := NewDefaultRegistry()
	require.NoError(t, err)

	index, err := NewDescriptionIndex(registry)
	require.NoError(t, err)
	defer index.Close()

	t.Run("finds code by description words", func(t *testing.T) {
		docs, err := index.Search("provident fund", 5)
		require.NoError(t, err)
		require.NotEmpty(t, docs)

		codes := make([]string, len(docs))
		for i, d := range docs {
			codes[i] = d.Code
		}
		assert.Contains(t, codes, "DSOP")
	})

	t.Run("tolerates a typo", func(t *testing.T) {
		exact, err := index.Search("dearness", 5)
		require.NoError(t, err)
		require.NotEmpty(t, exact)

		typo, err := index.Search("dearnes", 5)
		require.NoError(t, err)
		require.NotEmpty(t, typo)
		assert.Equal(t, exact[0].Code, typo[0].Code)
	})

	t.Run("no hits for unrelated query", func(t *testing.T) {
		docs, err := index.Search("zzzzqqqq", 5)
		require.NoError(t, err)
		assert.Empty(t, docs)
	})

	t.Run("limit caps results", func(t *testing.T) {
		docs, err := index.Search("pay", 2)
		require.NoError(t, err)
		assert.LessOrEqual(t, len(docs), 2)
	})
}
