package voice

import (
	"github.com/indiandesillm/inference-core/internal/contract"
	"github.com/indiandesillm/inference-core/internal/intent"
)

// EscalationState tracks where the session sits on the A→B→C ladder.
type EscalationState string

const (
	EscalationNone       EscalationState = "none"
	EscalationEscalating EscalationState = "escalating"
	EscalationLatched    EscalationState = "latched"
)

// SessionVoiceState is the per-session mutable state of the voice pipeline.
// It is owned exclusively by its session: the engine clones it at the start
// of a turn, mutates the clone, and commits the clone back in one step on
// success. A discarded clone leaves the session untouched.
type SessionVoiceState struct {
	Rotation           *RotationMemory
	Escalation         EscalationState
	LatchedTheme       intent.Theme
	EmotionalTurnIndex int

	// LastSkeleton is empty until the first emotional turn commits.
	LastSkeleton contract.Skeleton

	// LastLanguage records the emotional language of the previous emotional
	// turn, so a language switch can clear that language's pools.
	LastLanguage contract.Language
}

// NewSessionVoiceState returns a fresh state as created on first session
// contact.
func NewSessionVoiceState() *SessionVoiceState {
	return &SessionVoiceState{
		Rotation:   NewRotationMemory(),
		Escalation: EscalationNone,
	}
}

// Reset performs the hard reset: rotation memory cleared, turn index zeroed,
// skeleton, theme, and language forgotten.
func (s *SessionVoiceState) Reset() {
	s.Rotation.Reset()
	s.Escalation = EscalationNone
	s.LatchedTheme = intent.ThemeNone
	s.EmotionalTurnIndex = 0
	s.LastSkeleton = ""
	s.LastLanguage = ""
}

// Clone returns a deep copy for turn staging.
func (s *SessionVoiceState) Clone() *SessionVoiceState {
	return &SessionVoiceState{
		Rotation:           s.Rotation.Clone(),
		Escalation:         s.Escalation,
		LatchedTheme:       s.LatchedTheme,
		EmotionalTurnIndex: s.EmotionalTurnIndex,
		LastSkeleton:       s.LastSkeleton,
		LastLanguage:       s.LastLanguage,
	}
}
