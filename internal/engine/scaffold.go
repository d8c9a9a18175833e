package engine

import "github.com/indiandesillm/inference-core/internal/contract"

// Non-emotional turns never touch the voice contract or the generative
// surface. Factual prompts go through the floor table; everything else
// receives the fixed learning scaffold for the language. Responses here are
// compiled-in constants, so determinism holds trivially.

const genericFallback = "I'm still learning and may not have a complete answer yet. " +
	"Could you try asking in a different way?"

const genericFallbackHI = "मैं अभी सीख रहा हूँ और शायद पूरा उत्तर न दे पाऊँ। " +
	"क्या आप दूसरे तरीके से पूछ सकते हैं?"

// nonEmotionalText resolves the response for a non-emotional turn.
func nonEmotionalText(prompt string, lang contract.Language) string {
	if text, _, ok := floorAnswer(prompt, lang); ok {
		return text
	}
	if lang == contract.LangHI {
		return genericFallbackHI
	}
	return genericFallback
}
