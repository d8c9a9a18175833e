// Package voice implements the deterministic voice pipeline core: per-session
// rotation memory, the skeleton resolver, the five-phase variant selector,
// and the response assembler. Selection is a total function of its declared
// inputs; the only side effect anywhere in the package is the rotation
// append staged by the selector, and callers commit or discard that staging
// atomically at the end of a turn.
package voice

import "github.com/indiandesillm/inference-core/internal/contract"

// Policy holds the per-skeleton selection parameters. Skeleton behaviour is
// a closed table keyed by the tag, never ad-hoc conditionals.
type Policy struct {
	// WindowSize bounds how many rotation entries count on read.
	WindowSize int

	// AbsoluteFallback is the immutable compiled-in string emitted when the
	// contract is unavailable or assembly fails past recovery.
	AbsoluteFallback string
}

var policies = map[contract.Skeleton]Policy{
	contract.SkeletonA: {
		WindowSize:       6,
		AbsoluteFallback: "I hear you. If you want, you can tell me more.",
	},
	contract.SkeletonB: {
		WindowSize:       8,
		AbsoluteFallback: "That sounds like a lot to carry. I'm here with you.",
	},
	contract.SkeletonC: {
		WindowSize:       3,
		AbsoluteFallback: "That sounds exhausting. We can just stay here for a moment.",
	},
	contract.SkeletonD: {
		WindowSize:       4,
		AbsoluteFallback: "Let's keep this very small. That's enough for now.",
	},
}

// PolicyFor returns the selection policy for sk. Unknown skeletons take
// skeleton A's policy so the fallback path always has something safe.
func PolicyFor(sk contract.Skeleton) Policy {
	if p, ok := policies[sk]; ok {
		return p
	}
	return policies[contract.SkeletonA]
}

// AbsoluteFallback returns the compiled-in safe string for sk.
func AbsoluteFallback(sk contract.Skeleton) string {
	return PolicyFor(sk).AbsoluteFallback
}
