package ars

import (
	"math/rand"
	"sort"
)

// SelectionResult is the outcome of one data request's committee draw
// (spec.md §4.3).
type SelectionResult struct {
	Success bool
	// Chosen holds the committee on success, or the partial eligible set
	// from the final round on failure.
	Chosen []string
	// InsufficientCollateral holds every identity that was drawn eligible
	// in the final attempted round but could not post collateral.
	InsufficientCollateral []string
}

// SelectCommittee runs up to CommitRounds attempts to gather N witnesses
// for a data request, doubling the sampling intensity each round. On
// success it locks the chosen identities' collateral via MarkCollateral.
//
// rng is the single shared RNG (spec.md §5): callers are responsible for
// using the same *rand.Rand instance across an entire simulation run so
// replays reproduce bit-for-bit given a fixed seed.
func (a *ARS) SelectCommittee(rng *rand.Rand, eligibilities Eligibility, approximate bool, n int, epoch, collateral int64) SelectionResult {
	// Iterate identities in a fixed order so the sequence of RNG draws
	// (and thus the outcome) depends only on the seed, never on Go's
	// randomized map iteration (spec.md §4.3 "tie-break / ordering").
	names := make([]string, 0, len(eligibilities))
	for name := range eligibilities {
		names = append(names, name)
	}
	sort.Strings(names)

	var eligible, insufficient []string

	for round := 0; round < CommitRounds; round++ {
		intensity := n * (1 << uint(round))
		eligible = eligible[:0]
		insufficient = insufficient[:0]

		for _, name := range names {
			elig := eligibilities[name]
			var isEligible bool
			if approximate {
				isEligible = rng.Float64() < elig*float64(intensity)
			} else {
				minDraw := 1.0
				for i := 0; i < intensity; i++ {
					if d := rng.Float64(); d < minDraw {
						minDraw = d
					}
				}
				isEligible = minDraw < elig
			}
			if !isEligible {
				continue
			}
			if a.Identities[name].CanWitness(epoch, collateral) {
				eligible = append(eligible, name)
			} else {
				insufficient = append(insufficient, name)
			}
		}

		if len(eligible) >= n {
			chosen := sampleWithoutReplacement(rng, eligible, n)
			for _, name := range chosen {
				a.Identities[name].MarkCollateral(epoch, collateral, epoch+a.CollateralLocked)
			}
			return SelectionResult{Success: true, Chosen: chosen, InsufficientCollateral: insufficient}
		}
	}

	return SelectionResult{
		Success:                false,
		Chosen:                 append([]string(nil), eligible...),
		InsufficientCollateral: append([]string(nil), insufficient...),
	}
}

// sampleWithoutReplacement draws k distinct elements from pool uniformly
// at random using a Fisher-Yates partial shuffle, consuming exactly k
// draws from rng.
func sampleWithoutReplacement(rng *rand.Rand, pool []string, k int) []string {
	work := append([]string(nil), pool...)
	for i := 0; i < k; i++ {
		j := i + rng.Intn(len(work)-i)
		work[i], work[j] = work[j], work[i]
	}
	return append([]string(nil), work[:k]...)
}
