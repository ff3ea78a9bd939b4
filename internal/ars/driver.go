package ars

import "math/rand"

// RequestResult is the outcome of resolving one data request within an
// epoch.
type RequestResult struct {
	SelectionResult
}

// EpochResult summarizes one block's worth of work: the eligibility
// snapshot every request in the block was resolved against (computed once
// and reused across the whole block, spec.md §9) and the outcome of each
// request, plus the block-level reputation accounting.
type EpochResult struct {
	Epoch         int64
	Eligibilities Eligibility
	Requests      []RequestResult
	Created       int64
	Expired       int64
	Distributed   int64
	Leftover      int64
}

// Params bundles the per-run configuration the Epoch Driver needs to
// resolve a block when every request in it shares the same (witnesses,
// collateral) shape (spec.md §3's CLI-configurable parameters, used for
// synthetically generated blocks).
type Params struct {
	Witnesses   int
	Collateral  int64
	Approximate bool
}

// RequestSpec is one data request's (witnesses, collateral) requirement
// within a block — the general per-request shape spec.md §6 describes
// for a recorded data-request stream, where every request in a block can
// ask for a different committee size and collateral amount.
type RequestSpec struct {
	Witnesses  int
	Collateral int64
}

// ResolveEpoch runs the Epoch Driver for one block where every request
// shares the same (witnesses, collateral) shape — the synthetic-block
// path. It is a thin convenience wrapper over ResolveEpochRequests.
func (a *ARS) ResolveEpoch(rng *rand.Rand, epoch int64, numDataRequests int, p Params) *EpochResult {
	requests := make([]RequestSpec, numDataRequests)
	for i := range requests {
		requests[i] = RequestSpec{Witnesses: p.Witnesses, Collateral: p.Collateral}
	}
	return a.ResolveEpochRequests(rng, epoch, requests, p.Approximate)
}

// ResolveEpochRequests runs the Epoch Driver for one block (spec.md
// §4.5), where each request may ask for its own committee size and
// collateral amount (the recorded data-request stream path):
//
//  1. Take a single eligibility snapshot from the current (pre-block)
//     reputation state, reused for every request below.
//  2. Resolve each data request against that snapshot in order,
//     collecting every witnessing act (one entry per chosen identity per
//     successful request — an identity chosen twice in the same block
//     appears twice).
//  3. If the block produced any witnessing acts: mint up to one
//     reputation unit per act (capped by TotalReputation), expire stale
//     grants across the whole identity set, and distribute the resulting
//     pool — newly created, plus whatever leftover carried from the
//     previous block, plus what just expired — evenly across the acts.
//     Whatever doesn't divide evenly carries into the next block.
func (a *ARS) ResolveEpochRequests(rng *rand.Rand, epoch int64, requests []RequestSpec, approximate bool) *EpochResult {
	eligibilities := a.CalculateEligibilities()

	result := &EpochResult{
		Epoch:         epoch,
		Eligibilities: eligibilities,
		Requests:      make([]RequestResult, 0, len(requests)),
	}

	var witnessingActs []string
	for _, req := range requests {
		sel := a.SelectCommittee(rng, eligibilities, approximate, req.Witnesses, epoch, req.Collateral)
		result.Requests = append(result.Requests, RequestResult{SelectionResult: sel})
		if sel.Success {
			witnessingActs = append(witnessingActs, sel.Chosen...)
		} else {
			debugf("data request failed at epoch %d: wanted %d witnesses, got %d eligible with collateral", epoch, req.Witnesses, len(sel.Chosen))
		}
	}

	if len(witnessingActs) > 0 {
		result.Created = a.CreateReputation(int64(len(witnessingActs)))
		result.Expired = a.ExpireReputation(int64(len(witnessingActs)), epoch)
		pool := result.Created + a.LeftoverReputation + result.Expired
		a.LeftoverReputation = a.DistributeReputation(witnessingActs, pool, epoch)
		result.Distributed = pool - a.LeftoverReputation
		result.Leftover = a.LeftoverReputation
	}

	return result
}

// BlockFunc supplies the requests for one block at the given epoch — a
// recorded lookup for the data-request-file path, or a synthetic draw
// for the generated-block path (spec.md §6, §9).
type BlockFunc func(epoch int64) []RequestSpec

// Run drives numEpochs consecutive blocks starting at startEpoch, calling
// onEpoch with each block's result as it's produced. This is the two
// -phase loop the original simulator ran once for warmup and once for the
// measured run: cmd/simulate calls Run twice, clearing stats with
// ClearStats between the two calls rather than this method knowing
// anything about which phase it's in.
func (a *ARS) Run(rng *rand.Rand, startEpoch, numEpochs int64, approximate bool, block BlockFunc, onEpoch func(epoch int64, result *EpochResult)) {
	for i := int64(0); i < numEpochs; i++ {
		epoch := startEpoch + i
		requests := block(epoch)
		result := a.ResolveEpochRequests(rng, epoch, requests, approximate)
		if onEpoch != nil {
			onEpoch(epoch, result)
		}
	}
}
