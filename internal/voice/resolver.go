package voice

import (
	"github.com/indiandesillm/inference-core/internal/contract"
	"github.com/indiandesillm/inference-core/internal/intent"
)

// Resolution is the skeleton resolver output: the last semantic decision of
// a turn. Downstream stages never re-read user text.
type Resolution struct {
	// Skeleton is empty when the intent is non-emotional.
	Skeleton     contract.Skeleton
	Language     contract.Language
	Escalation   EscalationState
	LatchedTheme intent.Theme

	// HardReset reports that this turn fired the full session reset.
	HardReset bool
}

// ladder ranks the escalation skeletons. D sits outside the ladder: it is a
// micro-action shape, not an intensity level.
var ladder = map[contract.Skeleton]int{
	contract.SkeletonA: 1,
	contract.SkeletonB: 2,
	contract.SkeletonC: 3,
}

// Resolve chooses the skeleton and language for the turn and applies the
// reset rules to st. st must be the turn's staged clone: Resolve mutates
// rotation pools and latching directly, and the caller commits or discards
// the whole clone.
func Resolve(it intent.Intent, st *SessionVoiceState) Resolution {
	if it.Kind != intent.KindEmotional {
		// Emotional → non-emotional transition fires the hard reset. A
		// session that was never emotional has nothing to reset.
		res := Resolution{}
		if st.LastSkeleton != "" || st.EmotionalTurnIndex > 0 {
			st.Reset()
			res.HardReset = true
		}
		return res
	}

	lang := it.Language
	if !lang.IsValid() {
		lang = contract.LangEN
	}

	// Language switch clears the pools of the newly active language.
	if st.LastLanguage != "" && st.LastLanguage != lang {
		st.Rotation.ResetWhere(func(k contract.PoolKey) bool { return k.Language == lang })
	}

	base := baseSkeleton(it, st)
	sk, escalation, hardReset := applyLadder(base, it, st)

	if hardReset {
		st.Reset()
		st.Escalation = escalation
	} else {
		applyPartialResets(sk, it.Theme, st)
		st.Escalation = escalation
		if theme := latchable(it.Theme); theme != intent.ThemeNone {
			st.LatchedTheme = theme
		}
	}
	st.LastLanguage = lang

	return Resolution{
		Skeleton:     sk,
		Language:     lang,
		Escalation:   st.Escalation,
		LatchedTheme: st.LatchedTheme,
		HardReset:    hardReset,
	}
}

// baseSkeleton picks the skeleton the signals ask for, before the ladder.
func baseSkeleton(it intent.Intent, st *SessionVoiceState) contract.Skeleton {
	switch {
	case it.SelfHarm || it.Resignation:
		return contract.SkeletonC
	case it.FamilyTheme:
		// Family themes never resolve to A or D.
		return contract.SkeletonB
	case it.WantsAction:
		return contract.SkeletonD
	case it.Overwhelm || it.Guilt:
		return contract.SkeletonB
	}
	return contract.SkeletonA
}

// applyLadder enforces monotonic escalation: the resolver never moves down
// except via the full C→A reset path.
func applyLadder(base contract.Skeleton, it intent.Intent, st *SessionVoiceState) (contract.Skeleton, EscalationState, bool) {
	latched := st.Escalation == EscalationLatched || it.SelfHarm || it.Resignation

	// A latched session stays in C whatever the surface signals say,
	// including action requests.
	if latched {
		return contract.SkeletonC, EscalationLatched, false
	}

	prev := st.LastSkeleton

	// Escalation fully resolving (C→A without a latch) is a full reset.
	if prev == contract.SkeletonC && base == contract.SkeletonA {
		return contract.SkeletonA, EscalationNone, true
	}

	// D is only reachable when nothing holds the session on the ladder
	// above A and no family constraint applies.
	if base == contract.SkeletonD {
		if it.FamilyTheme || st.LatchedTheme == intent.ThemeFamily || ladder[prev] >= ladder[contract.SkeletonB] {
			base = contract.SkeletonB
		} else {
			return contract.SkeletonD, st.Escalation, false
		}
	}

	sk := base
	if ladder[prev] > ladder[sk] {
		sk = prev
	}

	escalation := st.Escalation
	if ladder[sk] > ladder[prev] && prev != "" {
		escalation = EscalationEscalating
	}
	if sk == contract.SkeletonA && escalation != EscalationLatched {
		escalation = EscalationNone
	}
	return sk, escalation, false
}

// applyPartialResets clears the pools invalidated by this turn's transition.
func applyPartialResets(sk contract.Skeleton, theme intent.Theme, st *SessionVoiceState) {
	// Escalating up clears the pools of the newly entered skeleton.
	if st.LastSkeleton != "" && ladder[sk] > ladder[st.LastSkeleton] {
		st.Rotation.ResetWhere(func(k contract.PoolKey) bool { return k.Skeleton == sk })
	}

	// A latched-theme change clears the pools of the skeletons that theme
	// constrains: family touches B and C, resignation touches C.
	newTheme := latchable(theme)
	if newTheme != intent.ThemeNone && newTheme != st.LatchedTheme {
		switch newTheme {
		case intent.ThemeFamily:
			st.Rotation.ResetWhere(func(k contract.PoolKey) bool {
				return k.Skeleton == contract.SkeletonB || k.Skeleton == contract.SkeletonC
			})
		case intent.ThemeResignation:
			st.Rotation.ResetWhere(func(k contract.PoolKey) bool {
				return k.Skeleton == contract.SkeletonC
			})
		}
	}
}

// latchable maps a detected theme onto the sticky value stored in state.
func latchable(t intent.Theme) intent.Theme {
	switch t {
	case intent.ThemeFamily, intent.ThemeResignation, intent.ThemeOther:
		return t
	}
	return intent.ThemeNone
}
