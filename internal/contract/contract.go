// Package contract loads and indexes the frozen catalogue of pre-approved
// voice variants. The catalogue is parsed once at process start, validated
// against the structural rules of the voice contract, and then served as an
// immutable lookup structure. The Store never serves a partially loaded
// contract: any validation failure surfaces as [ErrLoad] and the process
// either falls back or refuses to start, depending on configuration.
package contract

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// ErrLoad is the sentinel for any contract load failure: missing file, parse
// error, version mismatch, or structural validation failure.
var ErrLoad = errors.New("contract: load failure")

// Skeleton identifies one of the four emotional response templates.
type Skeleton string

const (
	SkeletonA Skeleton = "A" // gentle acknowledgment
	SkeletonB Skeleton = "B" // grounded presence
	SkeletonC Skeleton = "C" // shared stillness (safety-critical)
	SkeletonD Skeleton = "D" // micro-action; the only skeleton allowed directive content
)

// Skeletons lists all skeletons in canonical order.
var Skeletons = []Skeleton{SkeletonA, SkeletonB, SkeletonC, SkeletonD}

// IsValid reports whether s is a recognised skeleton.
func (s Skeleton) IsValid() bool {
	switch s {
	case SkeletonA, SkeletonB, SkeletonC, SkeletonD:
		return true
	}
	return false
}

// Language identifies a voice language. Hinglish is internal-only: the public
// API accepts en and hi, and hinglish is selected by intent-detected language.
type Language string

const (
	LangEN       Language = "en"
	LangHinglish Language = "hinglish"
	LangHI       Language = "hi"
)

// Languages lists all contract languages in canonical order.
var Languages = []Language{LangEN, LangHinglish, LangHI}

// IsValid reports whether l is a recognised contract language.
func (l Language) IsValid() bool {
	switch l {
	case LangEN, LangHinglish, LangHI:
		return true
	}
	return false
}

// Section names one slot of a skeleton. The action section is legal only
// under skeleton D; validation is absent under D; closure is always present.
type Section string

const (
	SectionOpener     Section = "opener"
	SectionValidation Section = "validation"
	SectionClosure    Section = "closure"
	SectionAction     Section = "action"
)

// Variant entry tags recognised by the selector.
const (
	// TagFamilySafe marks an entry safe to emit under a latched family theme.
	TagFamilySafe = "family_safe"

	// TagExpansion marks an entry added via catalogue expansion; such entries
	// are dropped under skeleton C unless explicitly approved.
	TagExpansion = "added_via_expansion"

	// TagApproved marks an expansion entry cleared for skeleton C.
	TagApproved = "approved"

	// TagLight marks a low-intensity entry that must not be emitted once
	// escalation has latched.
	TagLight = "light"

	// TagHighActivity marks an entry with high lexical activity, suppressed
	// under skeleton C after the session has already been in C.
	TagHighActivity = "high_activity"
)

// VariantEntry is a single pre-approved string. ID is the stable zero-based
// index into the contract's ordered list for its pool.
type VariantEntry struct {
	ID   int
	Text string
	Tags []string
}

// HasTag reports whether the entry carries tag.
func (v VariantEntry) HasTag(tag string) bool {
	for _, t := range v.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// PoolKey addresses one rotation pool. Pools are fully independent.
type PoolKey struct {
	Skeleton Skeleton
	Language Language
	Section  Section
}

// String renders the key in the canonical "A|en|opener" form used in logs.
func (k PoolKey) String() string {
	return string(k.Skeleton) + "|" + string(k.Language) + "|" + string(k.Section)
}

// sectionsBySkeleton is the fixed section order per skeleton. Per-skeleton
// behaviour lives in tables keyed by the skeleton tag, not in conditional
// chains.
var sectionsBySkeleton = map[Skeleton][]Section{
	SkeletonA: {SectionOpener, SectionValidation, SectionClosure},
	SkeletonB: {SectionOpener, SectionValidation, SectionClosure},
	SkeletonC: {SectionOpener, SectionValidation, SectionClosure},
	SkeletonD: {SectionOpener, SectionAction, SectionClosure},
}

// SectionsFor returns the ordered sections legal for sk.
func SectionsFor(sk Skeleton) []Section {
	return sectionsBySkeleton[sk]
}

// advicePattern matches directive tokens forbidden in any variant text
// outside skeleton D. Anchored on word boundaries so words that merely
// contain a token ("pantry", "country") stay legal.
var advicePattern = regexp.MustCompile(`\b(should|try|best way)\b`)

// Store is the immutable indexed contract. Safe for concurrent reads; it is
// never mutated after Load returns.
type Store struct {
	version     string
	fingerprint string
	pools       map[PoolKey][]VariantEntry
}

// Version returns the contract_version declared by the document.
func (s *Store) Version() string { return s.version }

// Fingerprint returns "sha256:" + the hex digest of the canonical rendering
// of the loaded contract. Stable across loads of the same document.
func (s *Store) Fingerprint() string { return s.fingerprint }

// Variants returns the ordered variant list for (sk, lang, sec). The result
// is empty when the pool is absent. Callers must not modify the returned
// slice.
func (s *Store) Variants(sk Skeleton, lang Language, sec Section) []VariantEntry {
	return s.pools[PoolKey{sk, lang, sec}]
}

// Has reports whether a non-empty pool exists for (sk, lang, sec).
func (s *Store) Has(sk Skeleton, lang Language, sec Section) bool {
	return len(s.pools[PoolKey{sk, lang, sec}]) > 0
}

// validate enforces the load-time structural rules. All violations are
// collected and joined so a broken document reports everything at once.
func (s *Store) validate() error {
	var errs []error

	// Required: every skeleton has at least (skeleton, en, opener|closure).
	for _, sk := range Skeletons {
		if !s.Has(sk, LangEN, SectionOpener) {
			errs = append(errs, fmt.Errorf("missing required pool %s|en|opener", sk))
		}
		if !s.Has(sk, LangEN, SectionClosure) {
			errs = append(errs, fmt.Errorf("missing required pool %s|en|closure", sk))
		}
	}

	for key, entries := range s.pools {
		// Sections legal for the skeleton.
		if !sectionLegal(key.Skeleton, key.Section) {
			errs = append(errs, fmt.Errorf("pool %s: section %q is not legal under skeleton %s",
				key, key.Section, key.Skeleton))
			continue
		}

		// Cardinality limits.
		switch key.Section {
		case SectionOpener:
			if len(entries) > 3 {
				errs = append(errs, fmt.Errorf("pool %s: opener holds %d entries, limit 3", key, len(entries)))
			}
		case SectionValidation:
			if len(entries) > 4 {
				errs = append(errs, fmt.Errorf("pool %s: validation holds %d entries, limit 4", key, len(entries)))
			}
		case SectionClosure:
			if key.Skeleton != SkeletonB && len(entries) != 1 {
				errs = append(errs, fmt.Errorf("pool %s: closure holds %d entries, must hold exactly 1", key, len(entries)))
			}
		}

		// Advice tokens are forbidden everywhere outside D.
		if key.Skeleton != SkeletonD {
			for _, e := range entries {
				for _, tok := range advicePattern.FindAllString(strings.ToLower(e.Text), -1) {
					errs = append(errs, fmt.Errorf("pool %s: variant %d contains advice token %q", key, e.ID, tok))
				}
			}
		}
	}

	return errors.Join(errs...)
}

func sectionLegal(sk Skeleton, sec Section) bool {
	for _, s := range sectionsBySkeleton[sk] {
		if s == sec {
			return true
		}
	}
	return false
}

// computeFingerprint derives a stable digest over the indexed pools. The
// rendering sorts pool keys so the digest does not depend on map order.
func computeFingerprint(version string, pools map[PoolKey][]VariantEntry) string {
	keys := make([]string, 0, len(pools))
	byKey := make(map[string]PoolKey, len(pools))
	for k := range pools {
		s := k.String()
		keys = append(keys, s)
		byKey[s] = k
	}
	sort.Strings(keys)

	h := sha256.New()
	h.Write([]byte(version))
	h.Write([]byte{'\n'})
	for _, ks := range keys {
		h.Write([]byte(ks))
		h.Write([]byte{'\n'})
		for _, e := range pools[byKey[ks]] {
			h.Write([]byte(e.Text))
			h.Write([]byte{0})
			for _, t := range e.Tags {
				h.Write([]byte(t))
				h.Write([]byte{1})
			}
			h.Write([]byte{'\n'})
		}
	}
	return "sha256:" + hex.EncodeToString(h.Sum(nil))
}
