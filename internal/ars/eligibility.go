package ars

import (
	"math"
	"sort"
)

// Eligibility maps each identity name to its normalized selection weight.
// The values sum to 1.0 (within floating-point error) across every
// identity in the ARS, reputed or not (spec.md §4.2).
type Eligibility map[string]float64

// CalculateEligibilities computes the trapezoidal eligibility distribution
// for the current reputation snapshot. It is intentionally a pure function
// of the identity set so the Epoch Driver can call it exactly once per
// block and reuse the result across every data request in that block
// (spec.md §9 "eligibility recomputation frequency").
func (a *ARS) CalculateEligibilities() Eligibility {
	reputed, total := a.filterReputedIdentities()

	trapezoid := calculateTrapezoidalWeights(reputed, total)

	out := make(Eligibility, len(a.Identities))
	denom := float64(total) + float64(len(a.Identities))
	for name := range a.Identities {
		raw := trapezoid[name] // zero for non-reputed identities and absent keys
		out[name] = (float64(raw) + 1) / denom
	}
	return out
}

// filterReputedIdentities returns the identities with TotalReputation > 0,
// sorted by TotalReputation descending (ties broken by name, ascending, to
// keep the ranking deterministic regardless of Go's random map iteration
// order), plus the sum of TotalReputation across every identity (reputed
// or not — the zero-reputation identities contribute nothing to the sum).
func (a *ARS) filterReputedIdentities() ([]*Identity, int64) {
	var total int64
	reputed := make([]*Identity, 0, len(a.Identities))
	for _, id := range a.Identities {
		total += id.TotalReputation
		if id.TotalReputation > 0 {
			reputed = append(reputed, id)
		}
	}
	sort.Slice(reputed, func(i, j int) bool {
		if reputed[i].TotalReputation != reputed[j].TotalReputation {
			return reputed[i].TotalReputation > reputed[j].TotalReputation
		}
		return reputed[i].Name < reputed[j].Name
	})
	return reputed, total
}

// calculateTrapezoidalWeights computes each reputed identity's raw
// (pre-smoothing) trapezoid weight: a linearly decreasing "triangle" over
// reputation rank, lifted by a uniform rectangular offset so the whole
// trapezoid sums exactly to total (spec.md §4.2 steps 3-4).
func calculateTrapezoidalWeights(reputed []*Identity, total int64) map[string]int64 {
	n := int64(len(reputed))
	weights := make(map[string]int64, n)
	if n == 0 {
		return weights
	}

	avg := float64(total) / float64(n)
	minRep := float64(reputed[n-1].TotalReputation)

	var k, m float64
	if n == 1 {
		// spec.md §9: the n-1 denominator is undefined for a single
		// reputed identity; use slope 0 and k = 1.5*avg rather than
		// reproducing the source's divide-by-zero.
		k = 1.5 * avg
		m = 0
	} else {
		k = 1.5 * (avg - minRep)
		m = -k / float64(n-1)
	}

	triangle := make([]int64, n)
	var triangleTotal int64
	for i := int64(0); i < n; i++ {
		w := roundHalfAwayFromZero(m*float64(i) + k)
		if w < 0 {
			w = 0
		}
		triangle[i] = w
		triangleTotal += w
	}

	remainder := total - triangleTotal
	q := remainder / n
	r := remainder % n
	if r < 0 {
		// Go's % can return a negative remainder for a negative dividend;
		// normalize so "the first r identities get +1" is well defined.
		r += n
		q--
	}

	for i := int64(0); i < n; i++ {
		trap := triangle[i] + q
		if i < r {
			trap++
		}
		weights[reputed[i].Name] = trap
	}
	return weights
}

// roundHalfAwayFromZero implements spec.md §4.2's "round(·) uses
// banker-free half-away-from-zero" — which is exactly math.Round's
// behavior for float64.
func roundHalfAwayFromZero(x float64) int64 {
	return int64(math.Round(x))
}
