// Package guardrail implements the deterministic safety layer: a
// phrase-anchored risk classifier, a fixed override strategy, the skeleton
// escalation mapping, and the tone calibration table. Everything here is a
// pure function of its inputs; the versions below surface in the trace so a
// replayed turn can be checked against the rules that produced it.
package guardrail

import (
	"strings"

	"github.com/indiandesillm/inference-core/internal/contract"
)

// SchemaVersion identifies the classifier rule set.
const SchemaVersion = "14.1"

// Category is a risk category produced by the classifier.
type Category string

const (
	Safe           Category = "SAFE"
	SelfHarmRisk   Category = "SELF_HARM_RISK"
	Abuse          Category = "ABUSE_HARASSMENT"
	SexualContent  Category = "SEXUAL_CONTENT"
	Extremism      Category = "EXTREMISM"
	Manipulation   Category = "MANIPULATION_ATTEMPT"
	Jailbreak      Category = "JAILBREAK_ATTEMPT"
	SystemProbe    Category = "SYSTEM_PROBE"
	DataExtraction Category = "DATA_EXTRACTION_ATTEMPT"
)

// Severity grades a classified risk.
type Severity string

const (
	SeverityNone     Severity = "NONE"
	SeverityLow      Severity = "LOW"
	SeverityMedium   Severity = "MEDIUM"
	SeverityHigh     Severity = "HIGH"
	SeverityCritical Severity = "CRITICAL"
)

// AtLeastHigh reports whether s is HIGH or CRITICAL.
func (s Severity) AtLeastHigh() bool {
	return s == SeverityHigh || s == SeverityCritical
}

// Result is the classifier verdict for one prompt.
type Result struct {
	SchemaVersion string
	Category      Category
	Severity      Severity
	Requires      bool
}

var selfHarmExplicit = []string{
	"kill myself", "suicide", "end my life", "end it all", "want to die",
	"don't want to live", "dont want to live",
}

var selfHarmPassiveDespair = []string{
	"life is pointless", "life feels pointless", "nothing matters",
	"no point in living", "no point living",
}

// Benign idioms that contain a death word but carry no risk.
var benignDiePhrases = []string{
	"die laughing", "die of laughter",
}

var jailbreakPhrases = []string{
	"ignore previous instructions", "act as system prompt", "disregard rules",
	"you are now in developer mode", "bypass your safety",
}

var systemProbePhrases = []string{
	"internal architecture", "system prompt", "hidden instructions",
	"how are you implemented", "your internal rules",
}

var dataExtractionPhrases = []string{
	"show your training data", "what data were you trained on",
	"export your memory", "dump your database",
}

var extremismAdvocacy = []string{
	"join isis", "join al-qaeda", "join al qaeda",
	"support violent jihad", "support isis",
}

var extremismOperational = []string{
	"how to join isis", "how to join al-qaeda", "how to join al qaeda",
	"plan a jihad attack", "carry out jihad attack",
}

var sexualExplicit = []string{
	"sexual act", "explicit sex", "describe sex", "pornographic",
}

var sexualGraphic = []string{
	"graphic sexual", "graphic porn", "explicitly graphic sex",
}

var abuseThreats = []string{
	"i will kill you", "i will hurt you", "i'll kill you",
}

var abuseHostility = []string{
	"you are an idiot", "you are stupid", "you are worthless",
}

var manipulationPhrases = []string{
	"pretend you're allowed", "pretend you are allowed",
	"hypothetically ignore rules", "just between us", "this is just a test",
}

func normalize(text string) string {
	return strings.Join(strings.Fields(strings.ToLower(text)), " ")
}

func containsAny(text string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(text, p) {
			return true
		}
	}
	return false
}

func result(cat Category, sev Severity, requires bool) Result {
	return Result{SchemaVersion: SchemaVersion, Category: cat, Severity: sev, Requires: requires}
}

// Classify grades the prompt against the closed phrase lexicons.
// Rule order is part of the contract: self-harm wins over everything,
// operational extremism over advocacy, graphic sexual content over explicit.
func Classify(text string) Result {
	normalized := normalize(text)

	if containsAny(normalized, selfHarmExplicit) && !containsAny(normalized, benignDiePhrases) {
		return result(SelfHarmRisk, SeverityCritical, true)
	}
	if containsAny(normalized, selfHarmPassiveDespair) {
		return result(SelfHarmRisk, SeverityHigh, true)
	}
	if containsAny(normalized, jailbreakPhrases) {
		return result(Jailbreak, SeverityHigh, true)
	}
	if containsAny(normalized, systemProbePhrases) {
		return result(SystemProbe, SeverityMedium, true)
	}
	if containsAny(normalized, dataExtractionPhrases) {
		return result(DataExtraction, SeverityHigh, true)
	}
	if containsAny(normalized, extremismOperational) {
		return result(Extremism, SeverityCritical, true)
	}
	if containsAny(normalized, extremismAdvocacy) {
		return result(Extremism, SeverityHigh, true)
	}
	if containsAny(normalized, sexualGraphic) {
		return result(SexualContent, SeverityCritical, true)
	}
	if containsAny(normalized, sexualExplicit) {
		return result(SexualContent, SeverityHigh, true)
	}
	if containsAny(normalized, abuseThreats) {
		return result(Abuse, SeverityHigh, true)
	}
	if containsAny(normalized, abuseHostility) {
		return result(Abuse, SeverityMedium, true)
	}
	if containsAny(normalized, manipulationPhrases) {
		return result(Manipulation, SeverityMedium, true)
	}

	return result(Safe, SeverityLow, false)
}

// forceACategories always land in the gentle acknowledgment skeleton: the
// engine must not mirror hostile or probing energy.
var forceACategories = map[Category]bool{
	Abuse:          true,
	Extremism:      true,
	SystemProbe:    true,
	DataExtraction: true,
	Jailbreak:      true,
}

// Escalate maps a classifier verdict onto the skeleton the turn must use.
// It is a pure mapping with no state access.
func Escalate(r Result, current contract.Skeleton) contract.Skeleton {
	switch {
	case r.Category == Safe:
		return current
	case r.Category == SelfHarmRisk:
		return contract.SkeletonC
	case forceACategories[r.Category]:
		return contract.SkeletonA
	case r.Category == Manipulation && r.Severity.AtLeastHigh():
		return contract.SkeletonA
	}
	return current
}
