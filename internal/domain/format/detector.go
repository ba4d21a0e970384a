// Package format decides which registered layout parser should handle a
// document, and memoizes parse results behind a bounded TTL cache.
package format

import (
	"errors"
	"strings"

	"github.com/cloudflare/ahocorasick"
)

// ErrNoSuitableParser is returned when no registered layout clears the
// minimum-confidence floor. The pipeline must fail rather than guess.
var ErrNoSuitableParser = errors.New("no suitable parser for document")

// MinSelectionScore is the coverage floor a layout must strictly exceed to
// be a candidate.
const MinSelectionScore = 0.2

// ParserHandle is the minimal surface the detector needs from a layout
// parser: an identity and the signature tokens of its layout family.
type ParserHandle interface {
	Name() string
	Signatures() []string
}

type registeredLayout struct {
	handle     ParserHandle
	signatures []string // uppercased
	matcher    *ahocorasick.Matcher
}

// Detector scores registered layouts against extracted text and selects the
// best one. Registration order is the tie-break, so register the most
// specific layouts first.
type Detector struct {
	layouts []registeredLayout
}

// NewDetector creates an empty detector.
func NewDetector() *Detector {
	return &Detector{}
}

// Register adds a layout parser as a selection candidate. Parsers with no
// signature tokens are ignored: they could never score above zero.
func (d *Detector) Register(handle ParserHandle) {
	sigs := handle.Signatures()
	if len(sigs) == 0 {
		return
	}
	upper := make([]string, len(sigs))
	patterns := make([][]byte, len(sigs))
	for i, s := range sigs {
		upper[i] = strings.ToUpper(s)
		patterns[i] = []byte(upper[i])
	}
	d.layouts = append(d.layouts, registeredLayout{
		handle:     handle,
		signatures: upper,
		matcher:    ahocorasick.NewMatcher(patterns),
	})
}

// Score returns the coverage ratio for one registered layout against text:
// distinct signature tokens found / total signature tokens. It is a plain
// coverage ratio, unweighted by token rarity.
func (d *Detector) Score(handle ParserHandle, text string) float64 {
	for _, layout := range d.layouts {
		if layout.handle == handle {
			return layout.score(strings.ToUpper(text))
		}
	}
	return 0
}

// Select returns the best-scoring parser for the text along with its score.
// A parser is a candidate only when its score strictly exceeds
// MinSelectionScore; among candidates the highest score wins and ties
// resolve to the earliest registered.
func (d *Detector) Select(text string) (ParserHandle, float64, error) {
	upperText := strings.ToUpper(text)

	var (
		best      ParserHandle
		bestScore float64
	)
	for _, layout := range d.layouts {
		score := layout.score(upperText)
		if score <= MinSelectionScore {
			continue
		}
		if best == nil || score > bestScore {
			best = layout.handle
			bestScore = score
		}
	}
	if best == nil {
		return nil, 0, ErrNoSuitableParser
	}
	return best, bestScore, nil
}

func (l registeredLayout) score(upperText string) float64 {
	hits := l.matcher.Match([]byte(upperText))
	if len(hits) == 0 {
		return 0
	}
	distinct := make(map[int]struct{}, len(hits))
	for _, idx := range hits {
		distinct[idx] = struct{}{}
	}
	return float64(len(distinct)) / float64(len(l.signatures))
}
