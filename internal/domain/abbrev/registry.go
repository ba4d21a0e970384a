// Package abbrev implements the pay-code abbreviation registry: exact,
// fuzzy, and partial lookups over the static reference table, plus the
// credit/debit polarity rules for codes the table does not settle.
package abbrev

import (
	"sort"
	"strings"

	"github.com/cloudflare/ahocorasick"
	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/FACorreiaa/payslip-extract/internal/domain/payslip"
)

// Entry is one row of the reference table. IsCredit nil means polarity must
// be inferred from the surrounding section context.
type Entry struct {
	Code        string           `json:"code"`
	Description string           `json:"description"`
	Category    payslip.Category `json:"category"`
	IsCredit    *bool            `json:"is_credit,omitempty"`
}

// maxFuzzyDistance bounds how much OCR/typo damage a fuzzy lookup tolerates.
// Anything farther than 2 edits risks assigning the wrong category.
const maxFuzzyDistance = 2

// Registry is the immutable abbreviation table. Construct once, share by
// reference; it is never mutated at runtime.
type Registry struct {
	entries []Entry // registration order, ties in fuzzy lookup break on it
	byCode  map[string]int
	matcher *ahocorasick.Matcher // codes, for single-pass partial matching
}

// NewRegistry builds a registry from entries, preserving registration order.
// Codes are normalized to uppercase. A duplicate code keeps its first entry.
func NewRegistry(entries []Entry) *Registry {
	r := &Registry{
		byCode: make(map[string]int, len(entries)),
	}
	patterns := make([][]byte, 0, len(entries))
	for _, e := range entries {
		e.Code = strings.ToUpper(strings.TrimSpace(e.Code))
		if e.Code == "" {
			continue
		}
		if _, exists := r.byCode[e.Code]; exists {
			continue
		}
		r.byCode[e.Code] = len(r.entries)
		r.entries = append(r.entries, e)
		patterns = append(patterns, []byte(e.Code))
	}
	if len(patterns) > 0 {
		r.matcher = ahocorasick.NewMatcher(patterns)
	}
	return r
}

// Lookup returns the entry registered under the exact code.
func (r *Registry) Lookup(code string) (Entry, bool) {
	idx, ok := r.byCode[strings.ToUpper(strings.TrimSpace(code))]
	if !ok {
		return Entry{}, false
	}
	return r.entries[idx], true
}

// FuzzyLookup returns the minimum-edit-distance entry for a code, but only
// when that distance is at most 2. Ties break toward the entry registered
// first. Distance 0 is the exact entry.
func (r *Registry) FuzzyLookup(code string) (Entry, bool) {
	query := strings.ToUpper(strings.TrimSpace(code))
	if query == "" {
		return Entry{}, false
	}

	best := -1
	bestDistance := maxFuzzyDistance + 1
	for i, e := range r.entries {
		d := levenshteinDistance(query, e.Code)
		if d < bestDistance {
			bestDistance = d
			best = i
			if d == 0 {
				break
			}
		}
	}
	if best < 0 {
		return Entry{}, false
	}
	return r.entries[best], true
}

// PartialMatch returns every entry whose code occurs as a substring of the
// text, in registration order. A single Aho-Corasick pass keeps this
// independent of the table size.
func (r *Registry) PartialMatch(text string) []Entry {
	if r.matcher == nil || text == "" {
		return nil
	}
	hits := r.matcher.Match([]byte(strings.ToUpper(text)))
	if len(hits) == 0 {
		return nil
	}
	sort.Ints(hits)
	out := make([]Entry, 0, len(hits))
	for _, idx := range hits {
		if idx >= 0 && idx < len(r.entries) {
			out = append(out, r.entries[idx])
		}
	}
	return out
}

// Suggest ranks registered codes by similarity to a query for interactive
// lookup. It is looser than FuzzyLookup and never feeds categorization.
func (r *Registry) Suggest(query string, limit int) []Entry {
	query = strings.TrimSpace(query)
	if query == "" || limit <= 0 {
		return nil
	}
	codes := make([]string, len(r.entries))
	for i, e := range r.entries {
		codes[i] = e.Code
	}
	ranks := fuzzy.RankFindFold(query, codes)
	sort.Sort(ranks)
	out := make([]Entry, 0, limit)
	for _, rank := range ranks {
		if len(out) == limit {
			break
		}
		if idx, ok := r.byCode[rank.Target]; ok {
			out = append(out, r.entries[idx])
		}
	}
	return out
}

// Entries returns the table in registration order.
func (r *Registry) Entries() []Entry {
	return append([]Entry(nil), r.entries...)
}

// Len returns the number of registered codes.
func (r *Registry) Len() int {
	return len(r.entries)
}

// levenshteinDistance computes edit distance with a two-row matrix.
func levenshteinDistance(s1, s2 string) int {
	if len(s1) == 0 {
		return len(s2)
	}
	if len(s2) == 0 {
		return len(s1)
	}

	r1 := []rune(s1)
	r2 := []rune(s2)

	prev := make([]int, len(r2)+1)
	curr := make([]int, len(r2)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(r1); i++ {
		curr[0] = i
		for j := 1; j <= len(r2); j++ {
			cost := 1
			if r1[i-1] == r2[j-1] {
				cost = 0
			}
			curr[j] = min(
				prev[j]+1,      // deletion
				curr[j-1]+1,    // insertion
				prev[j-1]+cost, // substitution
			)
		}
		prev, curr = curr, prev
	}

	return prev[len(r2)]
}
