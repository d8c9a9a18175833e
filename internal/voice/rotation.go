package voice

import (
	"fmt"

	"github.com/indiandesillm/inference-core/internal/contract"
)

// Usage is one append-only rotation record: which variant was emitted on
// which emotional turn.
type Usage struct {
	VariantID int
	TurnIndex int
}

// RotationMemory holds the per-pool usage history for one session. Pools are
// independent; history is append-only and logically windowed on read. The
// type is not safe for concurrent use on its own — the session's exclusive
// lock serialises access.
type RotationMemory struct {
	pools map[contract.PoolKey][]Usage
}

// NewRotationMemory returns an empty rotation memory.
func NewRotationMemory() *RotationMemory {
	return &RotationMemory{pools: make(map[contract.PoolKey][]Usage)}
}

// Window returns the last size entries for key whose turn index does not
// exceed currentTurn. Malformed history (negative ids or turn indices)
// surfaces as [ErrState] so the caller can clear the pool and retry.
func (m *RotationMemory) Window(key contract.PoolKey, size, currentTurn int) ([]Usage, error) {
	history := m.pools[key]
	filtered := make([]Usage, 0, len(history))
	for _, u := range history {
		if u.VariantID < 0 || u.TurnIndex < 0 {
			return nil, fmt.Errorf("%w: malformed rotation entry %+v in pool %s", ErrState, u, key)
		}
		if u.TurnIndex <= currentTurn {
			filtered = append(filtered, u)
		}
	}
	if size > 0 && len(filtered) > size {
		filtered = filtered[len(filtered)-size:]
	}
	return filtered, nil
}

// Record appends one usage to the pool for key.
func (m *RotationMemory) Record(key contract.PoolKey, variantID, turnIndex int) {
	m.pools[key] = append(m.pools[key], Usage{VariantID: variantID, TurnIndex: turnIndex})
}

// Reset drops every pool.
func (m *RotationMemory) Reset() {
	m.pools = make(map[contract.PoolKey][]Usage)
}

// ResetPool drops the history for a single pool.
func (m *RotationMemory) ResetPool(key contract.PoolKey) {
	delete(m.pools, key)
}

// ResetWhere drops every pool whose key satisfies pred.
func (m *RotationMemory) ResetWhere(pred func(contract.PoolKey) bool) {
	for key := range m.pools {
		if pred(key) {
			delete(m.pools, key)
		}
	}
}

// Clone returns a deep copy. Turn staging works on a clone so a failed turn
// never leaves a partial write behind.
func (m *RotationMemory) Clone() *RotationMemory {
	c := &RotationMemory{pools: make(map[contract.PoolKey][]Usage, len(m.pools))}
	for key, history := range m.pools {
		cp := make([]Usage, len(history))
		copy(cp, history)
		c.pools[key] = cp
	}
	return c
}

// Len reports the total number of recorded usages across all pools.
func (m *RotationMemory) Len() int {
	n := 0
	for _, history := range m.pools {
		n += len(history)
	}
	return n
}
