package guardrail

import "github.com/indiandesillm/inference-core/internal/contract"

// Tone profile names. The profile is derived from (skeleton, severity,
// category) by the fixed tables below and from nowhere else; it never comes
// from a runtime-variable source.
const (
	ToneNeutralFormal      = "neutral_formal"
	ToneWarmEngaged        = "warm_engaged"
	ToneEmpatheticSoft     = "empathetic_soft"
	ToneEmpatheticHigh     = "empathetic_high_intensity"
	ToneEmpatheticCrisis   = "empathetic_crisis_support"
	ToneGroundedCalm       = "grounded_calm"
	ToneGroundedCalmStrong = "grounded_calm_strong"
	ToneFirmBoundary       = "firm_boundary"
	ToneFirmBoundaryStrict = "firm_boundary_strict"
	ToneMeasuredNeutral    = "measured_neutral"
)

type skeletonSeverity struct {
	sk  contract.Skeleton
	sev Severity
}

var safeTones = map[skeletonSeverity]string{
	{contract.SkeletonA, SeverityLow}:      ToneNeutralFormal,
	{contract.SkeletonA, SeverityMedium}:   ToneWarmEngaged,
	{contract.SkeletonB, SeverityLow}:      ToneWarmEngaged,
	{contract.SkeletonB, SeverityMedium}:   ToneWarmEngaged,
	{contract.SkeletonB, SeverityHigh}:     ToneWarmEngaged,
	{contract.SkeletonB, SeverityCritical}: ToneWarmEngaged,
	{contract.SkeletonC, SeverityLow}:      ToneEmpatheticSoft,
	{contract.SkeletonC, SeverityMedium}:   ToneEmpatheticSoft,
	{contract.SkeletonC, SeverityHigh}:     ToneEmpatheticSoft,
	{contract.SkeletonC, SeverityCritical}: ToneEmpatheticSoft,
}

var selfHarmTones = map[Severity]string{
	SeverityLow:      ToneEmpatheticSoft,
	SeverityMedium:   ToneEmpatheticSoft,
	SeverityHigh:     ToneEmpatheticHigh,
	SeverityCritical: ToneEmpatheticCrisis,
}

var abuseTones = map[Severity]string{
	SeverityLow:      ToneGroundedCalm,
	SeverityMedium:   ToneGroundedCalm,
	SeverityHigh:     ToneGroundedCalmStrong,
	SeverityCritical: ToneGroundedCalmStrong,
}

var firmBoundaryTones = map[Severity]string{
	SeverityLow:      ToneFirmBoundary,
	SeverityMedium:   ToneFirmBoundary,
	SeverityHigh:     ToneFirmBoundaryStrict,
	SeverityCritical: ToneFirmBoundaryStrict,
}

var extremismTones = map[Severity]string{
	SeverityLow:      ToneMeasuredNeutral,
	SeverityMedium:   ToneMeasuredNeutral,
	SeverityHigh:     ToneFirmBoundaryStrict,
	SeverityCritical: ToneFirmBoundaryStrict,
}

// ToneProfile returns the calibrated tone for the turn, or false when no
// profile is defined for the combination (skeleton D and sexual-content
// turns carry no tone profile, matching the calibration table).
func ToneProfile(sk contract.Skeleton, sev Severity, cat Category) (string, bool) {
	switch cat {
	case Safe:
		tone, ok := safeTones[skeletonSeverity{sk, sev}]
		return tone, ok
	case SelfHarmRisk:
		tone, ok := selfHarmTones[sev]
		return tone, ok
	case Abuse, Manipulation:
		tone, ok := abuseTones[sev]
		return tone, ok
	case Extremism:
		tone, ok := extremismTones[sev]
		return tone, ok
	case Jailbreak, DataExtraction:
		tone, ok := firmBoundaryTones[sev]
		return tone, ok
	case SystemProbe:
		return ToneMeasuredNeutral, true
	}
	return "", false
}
