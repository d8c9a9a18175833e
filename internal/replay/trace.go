package replay

// GuardrailTrace reports the classifier outcome for the turn. Action is
// "override" when the guardrail replaced the assembled text, empty otherwise.
type GuardrailTrace struct {
	Category      string `json:"category"`
	Severity      string `json:"severity"`
	SchemaVersion string `json:"schema_version"`
	Action        string `json:"action,omitempty"`
}

// SelectionTrace holds the variant index chosen per section. Absent sections
// stay nil; a non-emotional turn carries an empty trace.
type SelectionTrace struct {
	Opener     *int `json:"opener,omitempty"`
	Validation *int `json:"validation,omitempty"`
	Action     *int `json:"action,omitempty"`
	Closure    *int `json:"closure,omitempty"`
}

// Meta carries fallback diagnostics. Present only when a fallback fired.
type Meta struct {
	FallbackReason string `json:"fallback_reason"`
	FallbackLevel  string `json:"fallback_level"`
}

// Trace is the full per-turn decision record returned alongside every
// response.
type Trace struct {
	Turn        int            `json:"turn"`
	Guardrail   GuardrailTrace `json:"guardrail"`
	Skeleton    *string        `json:"skeleton"`
	ToneProfile string         `json:"tone_profile,omitempty"`
	Selection   SelectionTrace `json:"selection"`
	Meta        *Meta          `json:"meta,omitempty"`
	ReplayHash  string         `json:"replay_hash"`
}

// TurnHash computes the canonical replay hash over the decisions of one
// turn. The payload shape is frozen; adding a field is a breaking change to
// replayability and must version the trace.
func TurnHash(prompt, emotionalLang string, g GuardrailTrace, skeleton *string, toneProfile string, sel SelectionTrace) (string, error) {
	selection := make(map[string]any)
	if sel.Opener != nil {
		selection["opener"] = *sel.Opener
	}
	if sel.Validation != nil {
		selection["validation"] = *sel.Validation
	}
	if sel.Action != nil {
		selection["action"] = *sel.Action
	}
	if sel.Closure != nil {
		selection["closure"] = *sel.Closure
	}

	var sk any
	if skeleton != nil {
		sk = *skeleton
	}
	var tone any
	if toneProfile != "" {
		tone = toneProfile
	}

	return Hash(map[string]any{
		"prompt":         prompt,
		"emotional_lang": emotionalLang,
		"guardrail": map[string]any{
			"category": g.Category,
			"severity": g.Severity,
		},
		"skeleton":     sk,
		"tone_profile": tone,
		"selection":    selection,
	})
}
