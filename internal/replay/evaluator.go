// Package replay evaluates how closely the approximate committee
// selector's outcomes track the exact order-statistic selector, without
// ever running the approximate selector against production and the exact
// selector only in a stub comparison: both run to completion here,
// against independent ARS states so neither's collateral side effects
// leak into the other, mirroring how two competing implementations would
// be "shadow" run for a time before trusting the cheaper one (spec.md
// §4.3, §9's "approximate vs exact" question).
package replay

import (
	"log"
	"math/rand"
	"sort"

	"github.com/rawblock/ars-simulator/internal/ars"
	"github.com/rawblock/ars-simulator/internal/metrics"
)

// Comparison captures the outcome of resolving the same data request
// against both selector modes.
type Comparison struct {
	Epoch         int64
	ExactSuccess  bool
	ApproxSuccess bool
	ExactChosen   []string
	ApproxChosen  []string
	// JaccardAgreement is |exact ∩ approx| / |exact ∪ approx|, 1.0 when
	// both modes picked exactly the same committee.
	JaccardAgreement float64
	// MembershipARI is the Adjusted Rand Index between the two modes'
	// chosen/not-chosen labeling of every identity either one drew from,
	// a stricter agreement score than Jaccard: it corrects for the
	// agreement two random committees of the same size would achieve by
	// chance alone (internal/metrics.AdjustedRandIndex, treating
	// "chosen" vs. "not chosen" as a 2-cluster partition).
	MembershipARI float64
	// MembershipVI is the Variation of Information between the same two
	// labelings (internal/metrics.VariationOfInformation): 0 when the two
	// modes agree completely, rising the less one mode's chosen/not-chosen
	// split tells you about the other's. A second, differently-shaped
	// fidelity signal alongside MembershipARI rather than a replacement
	// for it.
	MembershipVI float64
	Divergent    bool
}

// Evaluator runs an exact and an approximate selection against two
// parallel ARS states and reports how much they agree.
type Evaluator struct {
	// LogDivergence, when true, logs every comparison where the two
	// modes disagree on success or on committee membership.
	LogDivergence bool
}

// NewEvaluator builds an Evaluator with divergence logging enabled, the
// useful default for an exploratory run.
func NewEvaluator() *Evaluator {
	return &Evaluator{LogDivergence: true}
}

// Compare resolves one data request against exactARS using exact sampling
// and against approxARS using approximate sampling, each against its own
// ARS's current eligibility snapshot, and reports their agreement. The
// two eligibility maps are passed in separately rather than shared
// because the two ARS states are free to diverge block over block (a
// committee mismatch changes whose collateral gets locked and whose
// reputation grows, which feeds back into the next block's eligibility);
// Runner is what keeps them stepping in lockstep over a whole replay.
func (e *Evaluator) Compare(exactARS, approxARS *ars.ARS, rngExact, rngApprox *rand.Rand, exactElig, approxElig ars.Eligibility, witnesses int, epoch, collateral int64) Comparison {
	exact := exactARS.SelectCommittee(rngExact, exactElig, false, witnesses, epoch, collateral)
	approx := approxARS.SelectCommittee(rngApprox, approxElig, true, witnesses, epoch, collateral)

	result := Comparison{
		Epoch:         epoch,
		ExactSuccess:  exact.Success,
		ApproxSuccess: approx.Success,
		ExactChosen:   exact.Chosen,
		ApproxChosen:  approx.Chosen,
	}
	result.JaccardAgreement = jaccard(exact.Chosen, approx.Chosen)
	result.MembershipARI = membershipARI(exact.Chosen, approx.Chosen)
	result.MembershipVI = membershipVI(exact.Chosen, approx.Chosen)
	result.Divergent = exact.Success != approx.Success || result.JaccardAgreement < 1.0

	if e.LogDivergence && result.Divergent {
		log.Printf("[replay] DIVERGENCE @ epoch %d: exact success=%v chosen=%v, approx success=%v chosen=%v, agreement=%.2f",
			epoch, exact.Success, exact.Chosen, approx.Success, approx.Chosen, result.JaccardAgreement)
	}

	return result
}

// jaccard computes |a ∩ b| / |a ∪ b| over two string sets. Two empty sets
// are defined as fully agreeing (1.0).
func jaccard(a, b []string) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1.0
	}
	set := make(map[string]int, len(a))
	for _, v := range a {
		set[v]++
	}
	var intersection int
	for _, v := range b {
		if set[v] > 0 {
			intersection++
			set[v]--
		}
	}
	union := len(a) + len(b) - intersection
	if union == 0 {
		return 1.0
	}
	return float64(intersection) / float64(union)
}

// membershipLabels labels every identity in a ∪ b as chosen (1) or not (0)
// by each side, in a fixed (sorted) order, so the two label slices line up
// entry-for-entry for metrics.AdjustedRandIndex and
// metrics.VariationOfInformation alike.
func membershipLabels(a, b []string) ([]int, []int) {
	universe := make(map[string]struct{}, len(a)+len(b))
	for _, v := range a {
		universe[v] = struct{}{}
	}
	for _, v := range b {
		universe[v] = struct{}{}
	}
	names := make([]string, 0, len(universe))
	for name := range universe {
		names = append(names, name)
	}
	sort.Strings(names)

	aSet := make(map[string]struct{}, len(a))
	for _, v := range a {
		aSet[v] = struct{}{}
	}
	bSet := make(map[string]struct{}, len(b))
	for _, v := range b {
		bSet[v] = struct{}{}
	}

	labelsA := make([]int, len(names))
	labelsB := make([]int, len(names))
	for i, name := range names {
		if _, ok := aSet[name]; ok {
			labelsA[i] = 1
		}
		if _, ok := bSet[name]; ok {
			labelsB[i] = 1
		}
	}
	return labelsA, labelsB
}

// membershipARI labels every identity in a ∪ b as chosen/not-chosen by
// each side and scores the two labelings' agreement with
// metrics.AdjustedRandIndex. Two empty committees, or a universe too
// small to form a meaningful partition, are defined as fully agreeing.
func membershipARI(a, b []string) float64 {
	labelsA, labelsB := membershipLabels(a, b)
	if len(labelsA) < 2 {
		return 1.0
	}
	return metrics.AdjustedRandIndex(labelsA, labelsB)
}

// membershipVI scores the same chosen/not-chosen labeling with
// metrics.VariationOfInformation, the information-theoretic counterpart
// to membershipARI. A universe too small to form a meaningful partition
// is defined as 0 distance, matching membershipARI's "trivially
// agreeing" convention for the empty/near-empty case.
func membershipVI(a, b []string) float64 {
	labelsA, labelsB := membershipLabels(a, b)
	if len(labelsA) < 2 {
		return 0.0
	}
	return metrics.VariationOfInformation(labelsA, labelsB)
}

// DriftReport summarizes fidelity across every comparison a Runner has
// made so far.
type DriftReport struct {
	TotalComparisons int
	Divergences      int
	AvgAgreement     float64
}

// Summarize reduces a slice of Comparisons into a DriftReport.
func Summarize(comparisons []Comparison) DriftReport {
	report := DriftReport{TotalComparisons: len(comparisons)}
	if len(comparisons) == 0 {
		return report
	}
	var sum float64
	for _, c := range comparisons {
		if c.Divergent {
			report.Divergences++
		}
		sum += c.JaccardAgreement
	}
	report.AvgAgreement = sum / float64(len(comparisons))
	return report
}
