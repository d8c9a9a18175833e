package voice

import (
	"testing"

	"github.com/indiandesillm/inference-core/internal/contract"
	"github.com/indiandesillm/inference-core/internal/intent"
)

func emotionalIntent() intent.Intent {
	return intent.Intent{Kind: intent.KindEmotional, Language: contract.LangEN}
}

func TestResolve_PlainEmotionalIsSkeletonA(t *testing.T) {
	st := NewSessionVoiceState()
	res := Resolve(emotionalIntent(), st)

	if res.Skeleton != contract.SkeletonA {
		t.Errorf("skeleton = %s, want A", res.Skeleton)
	}
	if res.Escalation != EscalationNone {
		t.Errorf("escalation = %s, want none", res.Escalation)
	}
	if res.HardReset {
		t.Error("unexpected hard reset")
	}
}

func TestResolve_OverwhelmAndGuiltLandInB(t *testing.T) {
	for _, name := range []string{"overwhelm", "guilt"} {
		st := NewSessionVoiceState()
		it := emotionalIntent()
		if name == "overwhelm" {
			it.Overwhelm = true
		} else {
			it.Guilt = true
		}
		if res := Resolve(it, st); res.Skeleton != contract.SkeletonB {
			t.Errorf("%s: skeleton = %s, want B", name, res.Skeleton)
		}
	}
}

func TestResolve_SelfHarmLatchesC(t *testing.T) {
	st := NewSessionVoiceState()
	it := emotionalIntent()
	it.SelfHarm = true
	it.Resignation = true
	it.Theme = intent.ThemeResignation

	res := Resolve(it, st)
	if res.Skeleton != contract.SkeletonC {
		t.Errorf("skeleton = %s, want C", res.Skeleton)
	}
	if res.Escalation != EscalationLatched {
		t.Errorf("escalation = %s, want latched", res.Escalation)
	}
	if st.Escalation != EscalationLatched {
		t.Errorf("state escalation = %s, want latched", st.Escalation)
	}
}

func TestResolve_LatchedSessionIgnoresActionRequests(t *testing.T) {
	st := NewSessionVoiceState()
	st.Escalation = EscalationLatched
	st.LastSkeleton = contract.SkeletonC

	it := emotionalIntent()
	it.WantsAction = true

	if res := Resolve(it, st); res.Skeleton != contract.SkeletonC {
		t.Errorf("skeleton = %s, want C while latched", res.Skeleton)
	}
}

func TestResolve_FamilyThemeNeverAOrD(t *testing.T) {
	st := NewSessionVoiceState()
	it := emotionalIntent()
	it.FamilyTheme = true
	it.WantsAction = true
	it.Theme = intent.ThemeFamily

	res := Resolve(it, st)
	if res.Skeleton != contract.SkeletonB {
		t.Errorf("skeleton = %s, want B under family theme", res.Skeleton)
	}
	if res.LatchedTheme != intent.ThemeFamily {
		t.Errorf("latched theme = %q, want family", res.LatchedTheme)
	}
}

func TestResolve_ActionRequestReachesD(t *testing.T) {
	st := NewSessionVoiceState()
	it := emotionalIntent()
	it.WantsAction = true

	if res := Resolve(it, st); res.Skeleton != contract.SkeletonD {
		t.Errorf("skeleton = %s, want D", res.Skeleton)
	}
}

func TestResolve_ActionRequestGatedByPriorEscalation(t *testing.T) {
	st := NewSessionVoiceState()
	st.LastSkeleton = contract.SkeletonB

	it := emotionalIntent()
	it.WantsAction = true

	if res := Resolve(it, st); res.Skeleton != contract.SkeletonB {
		t.Errorf("skeleton = %s, want B (D gated above A)", res.Skeleton)
	}
}

func TestResolve_MonotonicLadderNeverStepsDown(t *testing.T) {
	st := NewSessionVoiceState()
	st.LastSkeleton = contract.SkeletonB

	res := Resolve(emotionalIntent(), st)
	if res.Skeleton != contract.SkeletonB {
		t.Errorf("skeleton = %s, want B (no de-escalation)", res.Skeleton)
	}
}

func TestResolve_CToAIsFullReset(t *testing.T) {
	st := NewSessionVoiceState()
	st.LastSkeleton = contract.SkeletonC
	st.EmotionalTurnIndex = 4
	st.Rotation.Record(rotKey, 0, 0)

	res := Resolve(emotionalIntent(), st)
	if res.Skeleton != contract.SkeletonA {
		t.Errorf("skeleton = %s, want A", res.Skeleton)
	}
	if !res.HardReset {
		t.Error("C to A without a latch must hard reset")
	}
	if st.EmotionalTurnIndex != 0 || st.Rotation.Len() != 0 {
		t.Errorf("state not reset: turn=%d rotation=%d", st.EmotionalTurnIndex, st.Rotation.Len())
	}
}

func TestResolve_NonEmotionalHardResetsOnlyWhenNeeded(t *testing.T) {
	// Fresh session: nothing to reset.
	st := NewSessionVoiceState()
	res := Resolve(intent.Intent{Kind: intent.KindFactual}, st)
	if res.HardReset {
		t.Error("fresh session must not report a hard reset")
	}
	if res.Skeleton != "" {
		t.Errorf("non-emotional skeleton = %q, want empty", res.Skeleton)
	}

	// After emotional history: full reset.
	st.LastSkeleton = contract.SkeletonB
	st.EmotionalTurnIndex = 2
	st.Rotation.Record(rotKey, 0, 0)

	res = Resolve(intent.Intent{Kind: intent.KindFactual}, st)
	if !res.HardReset {
		t.Error("emotional to non-emotional transition must hard reset")
	}
	if st.EmotionalTurnIndex != 0 || st.Rotation.Len() != 0 || st.LastSkeleton != "" {
		t.Error("state not fully reset after non-emotional turn")
	}
}

func TestResolve_EscalationUpClearsNewSkeletonPools(t *testing.T) {
	keyB := contract.PoolKey{Skeleton: contract.SkeletonB, Language: contract.LangEN, Section: contract.SectionOpener}

	st := NewSessionVoiceState()
	st.LastSkeleton = contract.SkeletonA
	st.LastLanguage = contract.LangEN
	st.EmotionalTurnIndex = 1
	st.Rotation.Record(rotKey, 0, 0)
	st.Rotation.Record(keyB, 0, 0)

	it := emotionalIntent()
	it.Overwhelm = true

	res := Resolve(it, st)
	if res.Skeleton != contract.SkeletonB {
		t.Fatalf("skeleton = %s, want B", res.Skeleton)
	}
	if res.Escalation != EscalationEscalating {
		t.Errorf("escalation = %s, want escalating", res.Escalation)
	}
	if w, _ := st.Rotation.Window(keyB, 8, 5); len(w) != 0 {
		t.Errorf("B pool survived escalation up: %v", w)
	}
	if w, _ := st.Rotation.Window(rotKey, 6, 5); len(w) != 1 {
		t.Errorf("A pool was cleared, want untouched: %v", w)
	}
}

func TestResolve_FamilyThemeChangeClearsBAndC(t *testing.T) {
	keyB := contract.PoolKey{Skeleton: contract.SkeletonB, Language: contract.LangEN, Section: contract.SectionOpener}
	keyC := contract.PoolKey{Skeleton: contract.SkeletonC, Language: contract.LangEN, Section: contract.SectionOpener}

	st := NewSessionVoiceState()
	st.LastSkeleton = contract.SkeletonB
	st.LastLanguage = contract.LangEN
	st.EmotionalTurnIndex = 2
	st.LatchedTheme = intent.ThemeOther
	st.Rotation.Record(rotKey, 0, 0)
	st.Rotation.Record(keyB, 0, 1)
	st.Rotation.Record(keyC, 0, 1)

	it := emotionalIntent()
	it.FamilyTheme = true
	it.Theme = intent.ThemeFamily

	Resolve(it, st)
	if w, _ := st.Rotation.Window(keyB, 8, 5); len(w) != 0 {
		t.Error("B pool survived family theme change")
	}
	if w, _ := st.Rotation.Window(keyC, 3, 5); len(w) != 0 {
		t.Error("C pool survived family theme change")
	}
	if w, _ := st.Rotation.Window(rotKey, 6, 5); len(w) != 1 {
		t.Error("A pool was cleared, want untouched")
	}
}

func TestResolve_LanguageSwitchClearsNewLanguagePools(t *testing.T) {
	keyHI := contract.PoolKey{Skeleton: contract.SkeletonA, Language: contract.LangHI, Section: contract.SectionOpener}

	st := NewSessionVoiceState()
	st.LastSkeleton = contract.SkeletonA
	st.LastLanguage = contract.LangEN
	st.EmotionalTurnIndex = 1
	st.Rotation.Record(rotKey, 0, 0)
	st.Rotation.Record(keyHI, 0, 0)

	it := emotionalIntent()
	it.Language = contract.LangHI

	res := Resolve(it, st)
	if res.Language != contract.LangHI {
		t.Fatalf("language = %s, want hi", res.Language)
	}
	if w, _ := st.Rotation.Window(keyHI, 6, 5); len(w) != 0 {
		t.Error("hi pool survived the language switch into hi")
	}
	if w, _ := st.Rotation.Window(rotKey, 6, 5); len(w) != 1 {
		t.Error("en pool was cleared, want untouched")
	}
}
