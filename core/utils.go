package core

import (
	"math/rand"
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
)

// GetSeed reads a seed value for random number generation from the
// METRICSPACE_SEED environment variable, falling back to the current
// time when it is unset or unparsable.
func GetSeed() int64 {
	seedStr := os.Getenv("METRICSPACE_SEED")
	if seedStr != "" {
		if seed, err := strconv.ParseInt(seedStr, 10, 64); err == nil {
			log.Info().Msgf("using seed from METRICSPACE_SEED: %d", seed)
			return seed
		}
		log.Warn().Msgf("failed to parse METRICSPACE_SEED value: %s", seedStr)
	}

	seed := time.Now().UnixNano()
	log.Info().Msgf("using current time as seed: %d", seed)
	return seed
}

// Rng is a per-selector random source. Each pivot selector owns one
// instead of sharing a package-level generator, so two selectors
// built with the same seed make the same choices regardless of what
// else has drawn from a global source (Open Question: selector
// seeding).
type Rng struct {
	r *rand.Rand
}

// NewRng builds an Rng seeded with the given value.
func NewRng(seed int64) *Rng {
	return &Rng{r: rand.New(rand.NewSource(seed))}
}

// Intn returns a pseudo-random int in [0, n).
func (g *Rng) Intn(n int) int { return g.r.Intn(n) }

// Float64 returns a pseudo-random float64 in [0, 1).
func (g *Rng) Float64() float64 { return g.r.Float64() }

// Perm returns a pseudo-random permutation of [0, n).
func (g *Rng) Perm(n int) []int { return g.r.Perm(n) }

// Shuffle pseudo-randomly permutes n elements via the swap callback,
// mirroring rand.Rand.Shuffle.
func (g *Rng) Shuffle(n int, swap func(i, j int)) { g.r.Shuffle(n, swap) }
