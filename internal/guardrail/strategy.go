package guardrail

// StrategyVersion identifies the override strategy rule set.
const StrategyVersion = "14.2"

// Action is the strategy decision for a classified prompt. When Override is
// true and ResponseText is empty, the caller substitutes the contract-backed
// text for the escalated skeleton instead of a fixed boundary message.
type Action struct {
	StrategyVersion string
	Override        bool
	ResponseText    string
}

const (
	abuseDeEscalationMessage = "I want to keep this conversation respectful and safe. " +
		"I can help if we continue without threats or abuse."

	sexualBoundaryMessage = "I can't help with explicit sexual content. " +
		"I can help with safer, non-explicit information instead."

	extremismNonEndorsementMessage = "I can't support extremist or violent activity. " +
		"I can help with safe, lawful, and constructive alternatives."

	manipulationRefusalMessage = "I can't bypass my safety boundaries, " +
		"even hypothetically or as a test."

	systemProbeGenericMessage = "I can provide high-level information about how I work, " +
		"but I don't expose internal system details."

	dataExtractionPrivacyMessage = "I can't provide private training records, " +
		"memory dumps, or internal data exports."
)

func action(override bool, text string) Action {
	return Action{StrategyVersion: StrategyVersion, Override: override, ResponseText: text}
}

func atLeastMedium(s Severity) bool {
	return s == SeverityMedium || s.AtLeastHigh()
}

// Strategy decides whether the turn's text is overridden, and with what.
// Self-harm and abuse overrides carry no fixed text here: self-harm text is
// the contract-backed skeleton C constant resolved per language by the
// caller, and abuse/jailbreak fall through to the escalated skeleton output.
func Strategy(r Result) Action {
	switch r.Category {
	case Safe:
		return action(false, "")
	case SelfHarmRisk:
		if r.Severity.AtLeastHigh() {
			return action(true, "")
		}
	case Abuse:
		if atLeastMedium(r.Severity) {
			return action(true, abuseDeEscalationMessage)
		}
	case SexualContent:
		if atLeastMedium(r.Severity) {
			return action(true, sexualBoundaryMessage)
		}
	case Extremism:
		if r.Severity.AtLeastHigh() {
			return action(true, extremismNonEndorsementMessage)
		}
	case Manipulation:
		if r.Severity.AtLeastHigh() {
			return action(true, manipulationRefusalMessage)
		}
	case Jailbreak:
		return action(true, manipulationRefusalMessage)
	case SystemProbe:
		if atLeastMedium(r.Severity) {
			return action(true, systemProbeGenericMessage)
		}
	case DataExtraction:
		if r.Severity.AtLeastHigh() {
			return action(true, dataExtractionPrivacyMessage)
		}
	}
	return action(false, "")
}
