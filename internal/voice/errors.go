package voice

import "errors"

// Closed error taxonomy for the voice pipeline. Contract load failures carry
// their own sentinel in the contract package; everything else routes through
// these. The fallback engine keys its level choice off errors.Is matches.
var (
	// ErrSelection covers an empty candidate set after filtering, an invalid
	// variant id, or any other selector-stage failure.
	ErrSelection = errors.New("voice: selection failure")

	// ErrState covers corrupt rotation memory, an invalid skeleton
	// transition, or a missing session field.
	ErrState = errors.New("voice: state failure")

	// ErrAssembly covers a missing section text or an empty final string.
	ErrAssembly = errors.New("voice: assembly failure")
)
