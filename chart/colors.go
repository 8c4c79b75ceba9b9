package chart

import (
	"fmt"
	"math/rand"
)

// ============================================================================
// COLOR GENERATION — injected entropy
// ============================================================================
// Colors are intentionally randomized per normalization call: re-normalizing
// the same input yields different colors. The generator is injected so tests
// can substitute a deterministic stub while production uses true randomness.
// ============================================================================

// ColorFunc produces a CSS rgba() color string at the given alpha.
type ColorFunc func(alpha float64) string

// RandomColor is the production ColorFunc: a random opaque-ish RGB at the
// requested alpha, in the same rgba(r, g, b, a) form the answering service
// emits.
func RandomColor(alpha float64) string {
	return fmt.Sprintf("rgba(%d, %d, %d, %g)",
		rand.Intn(256), rand.Intn(256), rand.Intn(256), alpha)
}
