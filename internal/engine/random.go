package engine

import (
	"math"
	"math/rand"
	"time"

	"github.com/stewythe1st/Stock-Cutting/internal/model"
)

// MutationDigits is the decimal precision of the mutation rate draw.
const MutationDigits = 4

// NewRand returns the generator for a search along with the seed it used.
func NewRand(mode model.SeedMode, seed int64) (*rand.Rand, int64) {
	if mode != model.SeedStatic {
		seed = time.Now().UnixMicro()
	}
	return rand.New(rand.NewSource(seed)), seed
}

// ScaledProb draws a value in [0, 1) quantized to the given number of
// decimal digits.
func ScaledProb(rng *rand.Rand, digits int) float64 {
	scale := int(math.Pow(10, float64(digits)))
	return float64(rng.Intn(scale)) / float64(scale)
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
