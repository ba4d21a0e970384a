package pattern

import (
	"sync"

	"github.com/FACorreiaa/payslip-extract/internal/domain/payslip"
)

// Repository is the caller-facing pattern store contract. Persistence of
// user-authored patterns lives with the caller; SavePattern only has to make
// the definition visible to subsequent reads.
type Repository interface {
	GetAllPatterns() []Definition
	GetPatternsForCategory(category payslip.Category) []Definition
	SavePattern(def Definition)
}

// InMemoryRepository is a Repository holding the built-in core patterns plus
// any caller-supplied ones. Reads return copies so callers cannot mutate the
// stored definitions.
type InMemoryRepository struct {
	mu   sync.RWMutex
	defs []Definition
}

// NewInMemoryRepository creates a repository seeded with the given
// definitions, preserving order.
func NewInMemoryRepository(defs ...Definition) *InMemoryRepository {
	r := &InMemoryRepository{}
	r.defs = append(r.defs, defs...)
	return r
}

// NewCoreRepository creates a repository seeded with the system-defined
// core patterns for government/military pay statements.
func NewCoreRepository() *InMemoryRepository {
	return NewInMemoryRepository(CoreDefinitions()...)
}

// GetAllPatterns returns every stored definition in registration order.
func (r *InMemoryRepository) GetAllPatterns() []Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Definition(nil), r.defs...)
}

// GetPatternsForCategory returns the definitions tagged with the category,
// in registration order.
func (r *InMemoryRepository) GetPatternsForCategory(category payslip.Category) []Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Definition
	for _, def := range r.defs {
		if def.Category == category {
			out = append(out, def)
		}
	}
	return out
}

// SavePattern appends a caller-authored definition. A definition with a
// field key that already exists is stored alongside the original; evaluation
// order still resolves the winner by rule priority.
func (r *InMemoryRepository) SavePattern(def Definition) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.defs = append(r.defs, def)
}
