package format

import (
	"strings"

	"github.com/google/uuid"
)

// sampleLength is how many characters of each sampled page feed the cache
// key. Long enough to distinguish statements, short enough to stay cheap.
const sampleLength = 50

// Fingerprint derives a cache key from the document's page text: the first,
// middle, and last pages each contribute their leading characters after
// whitespace trimming. Documents whose combined sample is empty get a
// random key, so degenerate inputs can never collide in the cache.
func Fingerprint(pages []string) string {
	if len(pages) == 0 {
		return uuid.NewString()
	}

	samples := []string{
		samplePage(pages[0]),
		samplePage(pages[len(pages)/2]),
		samplePage(pages[len(pages)-1]),
	}
	key := strings.Join(samples, "::")
	if strings.Trim(key, ":") == "" {
		return uuid.NewString()
	}
	return key
}

func samplePage(page string) string {
	trimmed := strings.TrimSpace(page)
	runes := []rune(trimmed)
	if len(runes) > sampleLength {
		runes = runes[:sampleLength]
	}
	return string(runes)
}
