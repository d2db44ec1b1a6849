// Package workload generates synthetic key streams for driving a
// buckindex.Index from the command line, grounded in original_source's
// src/util.h benchmark driver (key generators plus a read/write ratio
// loop) behind the g_bulk_load / g_read_ratio config keys, per
// SPEC_FULL.md's SUPPLEMENTED FEATURES.
package workload

import (
	"math"
	"math/rand/v2"
	"sort"
)

// Uniform returns n distinct keys drawn uniformly from [1, spread] (spread
// is raised to n when smaller), sorted ascending, suitable for a
// bulk-load population.
func Uniform(rng *rand.Rand, n int, spread uint64) []uint64 {
	if n <= 0 {
		return nil
	}

	if spread < uint64(n) {
		spread = uint64(n)
	}

	seen := make(map[uint64]bool, n)
	keys := make([]uint64, 0, n)

	for len(keys) < n {
		k := rng.Uint64N(spread) + 1
		if seen[k] {
			continue
		}

		seen[k] = true
		keys = append(keys, k)
	}

	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	return keys
}

// Zipfian returns n keys (with repeats) drawn from a power-law
// distribution skewed toward [1, populationSize], modeling a skewed
// read workload. skew > 0 controls the skew strength; larger values
// concentrate draws more heavily on small keys.
func Zipfian(rng *rand.Rand, n int, populationSize uint64, skew float64) []uint64 {
	if n <= 0 || populationSize == 0 {
		return nil
	}

	if skew <= 0 {
		skew = 1
	}

	out := make([]uint64, n)

	for i := range out {
		u := rng.Float64()
		k := uint64(float64(populationSize)*math.Pow(u, skew)) + 1

		if k > populationSize {
			k = populationSize
		}

		out[i] = k
	}

	return out
}
