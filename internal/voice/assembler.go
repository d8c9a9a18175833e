package voice

import (
	"fmt"
	"strings"

	"github.com/indiandesillm/inference-core/internal/contract"
)

// Assemble joins the selected section texts in the skeleton's fixed order,
// separated by single spaces. Any missing or empty section is an assembly
// failure; Assemble never invents or pads text.
func Assemble(sk contract.Skeleton, choices map[contract.Section]Choice) (string, error) {
	sections := contract.SectionsFor(sk)
	if len(sections) == 0 {
		return "", fmt.Errorf("%w: unknown skeleton %q", ErrAssembly, sk)
	}

	parts := make([]string, 0, len(sections))
	for _, sec := range sections {
		c, ok := choices[sec]
		if !ok || strings.TrimSpace(c.Text) == "" {
			return "", fmt.Errorf("%w: section %s of skeleton %s has no text", ErrAssembly, sec, sk)
		}
		parts = append(parts, strings.TrimSpace(c.Text))
	}

	out := strings.Join(parts, " ")
	if strings.TrimSpace(out) == "" {
		return "", fmt.Errorf("%w: empty response for skeleton %s", ErrAssembly, sk)
	}
	return out, nil
}
