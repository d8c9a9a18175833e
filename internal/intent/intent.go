// Package intent maps raw user text to an intent tag, an optional emotional
// theme, and escalation signals. Classification is a pure function of the
// prompt and the static lexicons below: no session state, no contract
// access, no rotation memory, and no fuzzy matching. Every decision is an
// exact substring anchor so the same prompt always yields the same intent.
package intent

import (
	"strings"

	"github.com/indiandesillm/inference-core/internal/contract"
)

// Kind is the coarse intent of a prompt.
type Kind string

const (
	KindEmotional      Kind = "emotional"
	KindFactual        Kind = "factual"
	KindExplanatory    Kind = "explanatory"
	KindConversational Kind = "conversational"
)

// Theme is the latched contextual tag derived from the prompt. Only family
// and resignation constrain skeleton choice and variant eligibility; every
// other detected cluster latches as ThemeOther.
type Theme string

const (
	ThemeNone        Theme = ""
	ThemeFamily      Theme = "family"
	ThemeResignation Theme = "resignation"
	ThemeOther       Theme = "other"
)

// Intent is the classifier output consumed by the skeleton resolver. It is
// immutable once returned.
type Intent struct {
	Kind Kind

	// Language is the emotional language mode: the requested language, or
	// hinglish when romanised-Hindi markers appear in an en request.
	Language contract.Language

	// Theme is the latched contextual tag, ThemeNone when no cluster matched.
	Theme Theme

	// Signals feeding the skeleton resolver.
	WantsAction bool
	Overwhelm   bool
	Guilt       bool
	Resignation bool
	FamilyTheme bool
	SelfHarm    bool
}

var emotionalTriggers = []string{
	"feel", "feeling", "stress", "sad", "lonely", "anxious", "tired",
	"breakup", "depressed", "overwhelmed", "exhausted", "heavy",
	"end it all", "want to die", "kill myself", "suicide",
}

var explanatoryTriggers = []string{
	"explain", "samjhao", "samjha", "kaise", "kyon",
	"why", "how", "meaning", "difference between",
}

var factualTriggers = []string{
	"who is", "what is", "when did", "capital of", "stands for", "stand for",
	"प्रधानमंत्री", "राजधानी", "कौन है", "क्या है",
}

var overwhelmMarkers = []string{
	"spiral", "spiralling", "racing", "mind racing", "mind is racing",
	"can't switch off", "cant switch off", "panic", "overwhelmed",
	"doom scrolling", "doom-scrolling", "on edge", "too much", "loop",
	"overthinking", "tension is building", "noisy mind", "brain nonstop",
	"dimag nonstop",
}

var guiltMarkers = []string{
	"guilt", "guilty", "shame", "ashamed", "failure", "failing",
	"falling behind", "wasting time", "can't focus", "cant focus",
	"khud ko", "apne aap",
}

var resignationMarkers = []string{
	"nothing has changed", "nothing changed", "same feeling", "same problem",
	"pointless", "what's the use", "whats the use", "this is just how it is",
	"talking doesn't help", "talking doesnt help", "kya fayda",
	"kuch nahi badla", "baat karne se kya fayda",
	"कुछ नहीं बदला", "बात करने से क्या फायदा",
}

// selfHarmAnchors escalate severity to at least high on any match. The
// guardrail classifier carries the authoritative severity split; the intent
// layer only needs the boolean for skeleton forcing.
var selfHarmAnchors = []string{
	"kill myself", "suicide", "end my life", "end it all", "want to die",
	"don't want to live", "dont want to live", "no point in living",
	"life is pointless", "nothing matters",
}

var familyMarkers = []string{
	"parents", "parent", "family", "comparing", "compare", "comparison",
	"disappoint", "disappointing", "gharwale", "मां", "पिता", "माता",
}

// Theme clusters beyond family/resignation all latch as ThemeOther.
var otherThemeClusters = [][]string{
	{"lost", "direction", "confused", "unsure", "उलझन", "दिशा नहीं"},              // lost
	{"anxious", "worried", "tense", "panic", "scared", "nervous", "डर", "चिंता"},  // anxious
	{"drained", "exhausted", "tired", "burnt", "burnout", "empty", "thak gaya"},   // drained
	{"pressure", "overwhelmed", "burden", "heavy", "expectations", "दबाव", "भार"}, // pressured
}

var timeboxMarkers = []string{
	"tonight", "right now", "today", "this evening",
	"aaj", "abhi", "aaj raat", "abhi ke liye",
}

var actionRequestMarkers = []string{
	"cope", "handle", "calm down", "calm", "ground", "practical",
	"small step", "tiny step", "help me calm", "help me cope",
	"what should i do", "kya karun", "batao", "bataiye",
}

// hinglishMarkers are token-level checks; short ambiguous substrings are
// deliberately excluded.
var hinglishMarkers = []string{
	"yaar", "bhai", "arre", "kya karun", "nahi", "samajh",
	"dimag", "mann", "gharwale", "samajh nahi", "log kya kahenge",
}

func containsAny(text string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(text, m) {
			return true
		}
	}
	return false
}

// DetectScript returns LangHI when the text contains Devanagari codepoints,
// LangEN otherwise. Hinglish is decided separately from romanised markers.
func DetectScript(text string) contract.Language {
	for _, r := range text {
		if r >= 0x0900 && r <= 0x097F {
			return contract.LangHI
		}
	}
	return contract.LangEN
}

// Classify derives the Intent for prompt. requested is the caller-supplied
// emotional language (en or hi); the hinglish mode is only ever chosen here,
// never at the HTTP boundary.
func Classify(prompt string, requested contract.Language) Intent {
	lower := strings.ToLower(strings.TrimSpace(prompt))

	it := Intent{
		Kind:     classifyKind(lower),
		Language: languageMode(prompt, lower, requested),
	}

	it.SelfHarm = containsAny(lower, selfHarmAnchors)
	it.Resignation = it.SelfHarm || containsAny(lower, resignationMarkers)
	it.Overwhelm = containsAny(lower, overwhelmMarkers)
	it.Guilt = containsAny(lower, guiltMarkers)
	it.FamilyTheme = containsAny(lower, familyMarkers)
	it.WantsAction = wantsAction(lower)
	it.Theme = detectTheme(lower, it)

	// A self-harm anchor is always an emotional turn, whatever the surface
	// phrasing looked like.
	if it.SelfHarm {
		it.Kind = KindEmotional
	}
	return it
}

func classifyKind(lower string) Kind {
	if containsAny(lower, emotionalTriggers) {
		return KindEmotional
	}
	if containsAny(lower, explanatoryTriggers) {
		return KindExplanatory
	}
	if containsAny(lower, factualTriggers) {
		return KindFactual
	}
	return KindConversational
}

func languageMode(prompt, lower string, requested contract.Language) contract.Language {
	if requested == contract.LangHI || DetectScript(prompt) == contract.LangHI {
		return contract.LangHI
	}
	if containsAny(lower, hinglishMarkers) {
		return contract.LangHinglish
	}
	return contract.LangEN
}

// wantsAction requires both a timebox and an explicit action request, so a
// bare "help me calm down" stays in the acknowledgment skeletons.
func wantsAction(lower string) bool {
	return containsAny(lower, timeboxMarkers) && containsAny(lower, actionRequestMarkers)
}

func detectTheme(lower string, it Intent) Theme {
	if it.FamilyTheme {
		return ThemeFamily
	}
	if it.Resignation {
		return ThemeResignation
	}
	for _, cluster := range otherThemeClusters {
		if containsAny(lower, cluster) {
			return ThemeOther
		}
	}
	return ThemeNone
}
