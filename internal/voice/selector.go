package voice

import (
	"fmt"

	"github.com/indiandesillm/inference-core/internal/contract"
	"github.com/indiandesillm/inference-core/internal/intent"
)

// TurnContext carries everything the selector is allowed to observe. The
// selector is a total function of this context, the contract, and the
// rotation window; it never reads the prompt.
type TurnContext struct {
	Skeleton contract.Skeleton
	Language contract.Language

	// PrevSkeleton is the committed skeleton of the previous emotional turn,
	// empty on the first one.
	PrevSkeleton contract.Skeleton

	Escalation   EscalationState
	LatchedTheme intent.Theme

	// TurnIndex is the emotional turn counter as observed before this turn
	// commits, so the first emotional turn selects at index 0.
	TurnIndex int
}

// Choice is one committed section pick.
type Choice struct {
	VariantID int
	Text      string

	// Exhausted reports that the hard constraints had to be relaxed to
	// produce this pick.
	Exhausted bool
}

// Selector runs the five-phase variant selection against an immutable
// contract store.
type Selector struct {
	store *contract.Store
}

// NewSelector returns a selector bound to store.
func NewSelector(store *contract.Store) *Selector {
	return &Selector{store: store}
}

// SelectAll picks one variant per section of the context's skeleton, staging
// every pick into rot. The caller owns rot (a turn clone) and commits or
// discards it whole. A missing pool or an empty eligibility set surfaces as
// [ErrSelection]; corrupt rotation history surfaces as [ErrState].
func (s *Selector) SelectAll(ctx TurnContext, rot *RotationMemory) (map[contract.Section]Choice, error) {
	choices := make(map[contract.Section]Choice)
	for _, sec := range contract.SectionsFor(ctx.Skeleton) {
		c, err := s.selectSection(ctx, rot, sec)
		if err != nil {
			return nil, err
		}
		choices[sec] = c
	}
	return choices, nil
}

func (s *Selector) selectSection(ctx TurnContext, rot *RotationMemory, sec contract.Section) (Choice, error) {
	key := contract.PoolKey{Skeleton: ctx.Skeleton, Language: ctx.Language, Section: sec}
	pool := s.store.Variants(ctx.Skeleton, ctx.Language, sec)
	if len(pool) == 0 {
		return Choice{}, fmt.Errorf("%w: no pool for %s", ErrSelection, key)
	}

	policy := PolicyFor(ctx.Skeleton)
	window, err := rot.Window(key, policy.WindowSize, ctx.TurnIndex)
	if err != nil {
		return Choice{}, err
	}

	// Single-entry pools commit immediately. The usage is still recorded so
	// the window reflects the real emission history.
	if len(pool) == 1 {
		rot.Record(key, pool[0].ID, ctx.TurnIndex)
		return Choice{VariantID: pool[0].ID, Text: pool[0].Text}, nil
	}

	// D openers are pinned to the first entry so the micro-action frame
	// always starts the same way.
	if ctx.Skeleton == contract.SkeletonD && sec == contract.SectionOpener {
		for _, e := range pool {
			if e.ID == 0 {
				rot.Record(key, e.ID, ctx.TurnIndex)
				return Choice{VariantID: e.ID, Text: e.Text}, nil
			}
		}
		return Choice{}, fmt.Errorf("%w: pool %s has no variant 0", ErrSelection, key)
	}

	// Phase 1: eligibility.
	eligible := s.eligibleCandidates(ctx, pool)
	if len(eligible) == 0 {
		return Choice{}, fmt.Errorf("%w: eligibility emptied pool %s", ErrSelection, key)
	}

	// Phase 2: hard constraints. Skeleton C tolerates immediate repetition;
	// stillness repeating itself is acceptable, advice repeating itself is
	// not.
	candidates := eligible
	exhausted := false
	if ctx.Skeleton != contract.SkeletonC {
		candidates = dropImmediateRepeat(eligible, window)
		if len(candidates) == 0 {
			candidates = eligible
			exhausted = true
		}
	}

	// Phases 3 and 4: usage scoring and deterministic tie-break.
	best := s.scoreAndPick(ctx, candidates, window, policy)

	// Phase 5: commit.
	rot.Record(key, best.ID, ctx.TurnIndex)
	return Choice{VariantID: best.ID, Text: best.Text, Exhausted: exhausted}, nil
}

// eligibleCandidates applies the tag-based filters for the turn.
func (s *Selector) eligibleCandidates(ctx TurnContext, pool []contract.VariantEntry) []contract.VariantEntry {
	out := make([]contract.VariantEntry, 0, len(pool))
	for _, e := range pool {
		if ctx.Skeleton == contract.SkeletonC &&
			e.HasTag(contract.TagExpansion) && !e.HasTag(contract.TagApproved) {
			continue
		}
		if ctx.Escalation == EscalationLatched && e.HasTag(contract.TagLight) {
			continue
		}
		if ctx.Skeleton == contract.SkeletonC && ctx.PrevSkeleton == contract.SkeletonC &&
			e.HasTag(contract.TagHighActivity) {
			continue
		}
		if ctx.LatchedTheme == intent.ThemeFamily && !e.HasTag(contract.TagFamilySafe) {
			continue
		}
		out = append(out, e)
	}
	return out
}

// dropImmediateRepeat removes the variant emitted on the most recent turn in
// this pool's window.
func dropImmediateRepeat(pool []contract.VariantEntry, window []Usage) []contract.VariantEntry {
	if len(window) == 0 {
		return pool
	}
	last := window[len(window)-1].VariantID
	out := make([]contract.VariantEntry, 0, len(pool))
	for _, e := range pool {
		if e.ID != last {
			out = append(out, e)
		}
	}
	return out
}

type scoredVariant struct {
	entry    contract.VariantEntry
	score    int
	lastSeen int
	uses     int
}

// scoreAndPick runs the recency-weighted usage scoring and the deterministic
// tie-break. Lower score wins; ties resolve to the longest-unused variant,
// then the least-used, then the lowest id, so identical histories always
// pick identically.
func (s *Selector) scoreAndPick(ctx TurnContext, candidates []contract.VariantEntry, window []Usage, policy Policy) contract.VariantEntry {
	scored := make([]scoredVariant, 0, len(candidates))
	for _, e := range candidates {
		sv := scoredVariant{entry: e, lastSeen: -1}
		for _, u := range window {
			if u.VariantID != e.ID {
				continue
			}
			sv.uses++
			if u.TurnIndex > sv.lastSeen {
				sv.lastSeen = u.TurnIndex
			}
			if p := policy.WindowSize - (ctx.TurnIndex - u.TurnIndex); p > 0 {
				sv.score += p
			}
		}

		// Over-use penalty: a variant filling more than half the window is
		// pushed hard to the back. Skeleton C is deliberately repetitive, so
		// its threshold sits at 80% and its penalties are halved.
		if len(window) > 0 {
			over := sv.uses*2 > len(window)
			if ctx.Skeleton == contract.SkeletonC {
				over = sv.uses*5 > 4*len(window)
			}
			if over {
				sv.score += 2 * policy.WindowSize
			}
		}
		if ctx.Skeleton == contract.SkeletonC {
			sv.score /= 2
		}

		// The very first emotional turn under A is a clean slate.
		if ctx.Skeleton == contract.SkeletonA && ctx.TurnIndex == 0 {
			sv.score = 0
		}
		scored = append(scored, sv)
	}

	best := scored[0]
	for _, sv := range scored[1:] {
		if betterPick(sv, best) {
			best = sv
		}
	}
	return best.entry
}

func betterPick(a, b scoredVariant) bool {
	if a.score != b.score {
		return a.score < b.score
	}
	if a.lastSeen != b.lastSeen {
		return a.lastSeen < b.lastSeen
	}
	if a.uses != b.uses {
		return a.uses < b.uses
	}
	return a.entry.ID < b.entry.ID
}
