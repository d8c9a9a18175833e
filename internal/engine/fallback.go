package engine

import (
	"github.com/indiandesillm/inference-core/internal/contract"
	"github.com/indiandesillm/inference-core/internal/voice"
)

// Fallback levels, tried strictly in order. Skeleton-local and english-safe
// commit state like a normal turn; absolute commits nothing.
const (
	LevelSkeletonLocal = "skeleton_local"
	LevelEnglishSafe   = "english_safe"
	LevelAbsolute      = "absolute"
)

// Fallback reasons recorded in the trace meta.
const (
	ReasonContractLoad  = "contract_load_failure"
	ReasonExhausted     = "selection_exhausted"
	ReasonRotationReset = "rotation_memory_reset"
	ReasonAssembly      = "assembly_failure"
)

// fallbackChoices builds the variant-0 section set for sk, first in lang,
// then in english. Picks are staged into rot exactly like regular selection.
// A nil map with LevelAbsolute means neither language could serve every
// section and the caller must emit the compiled-in string without touching
// state.
func fallbackChoices(store *contract.Store, sk contract.Skeleton, lang contract.Language, rot *voice.RotationMemory, turn int) (map[contract.Section]voice.Choice, string) {
	if store == nil {
		return nil, LevelAbsolute
	}
	if choices, ok := variantZero(store, sk, lang, rot, turn); ok {
		return choices, LevelSkeletonLocal
	}
	if lang != contract.LangEN {
		if choices, ok := variantZero(store, sk, contract.LangEN, rot, turn); ok {
			return choices, LevelEnglishSafe
		}
	}
	return nil, LevelAbsolute
}

func variantZero(store *contract.Store, sk contract.Skeleton, lang contract.Language, rot *voice.RotationMemory, turn int) (map[contract.Section]voice.Choice, bool) {
	choices := make(map[contract.Section]voice.Choice)
	for _, sec := range contract.SectionsFor(sk) {
		pool := store.Variants(sk, lang, sec)
		if len(pool) == 0 {
			return nil, false
		}
		var entry *contract.VariantEntry
		for i := range pool {
			if pool[i].ID == 0 {
				entry = &pool[i]
				break
			}
		}
		if entry == nil {
			return nil, false
		}
		choices[sec] = voice.Choice{VariantID: entry.ID, Text: entry.Text}
	}
	for sec, c := range choices {
		rot.Record(contract.PoolKey{Skeleton: sk, Language: lang, Section: sec}, c.VariantID, turn)
	}
	return choices, true
}
