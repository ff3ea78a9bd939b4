package replay

import (
	"math/rand"

	"github.com/rawblock/ars-simulator/internal/ars"
)

// Runner steps an exact-mode ARS and an approximate-mode ARS through the
// same block stream in lockstep, comparing every data request with an
// Evaluator and keeping each ARS's own reputation accounting current so
// divergence between the two is free to compound across blocks the way
// it would on the live network.
type Runner struct {
	Evaluator *Evaluator
	ExactARS  *ars.ARS
	ApproxARS *ars.ARS

	Witnesses  int
	Collateral int64

	History []Comparison
}

// NewRunner builds a Runner over two independently-seeded selector modes
// starting from the given ARS states, which should be deep enough copies
// that mutating one never touches the other (see (*ars.ARS).Clone).
func NewRunner(exactARS, approxARS *ars.ARS, witnesses int, collateral int64) *Runner {
	return &Runner{
		Evaluator:  NewEvaluator(),
		ExactARS:   exactARS,
		ApproxARS:  approxARS,
		Witnesses:  witnesses,
		Collateral: collateral,
	}
}

// RunBlock resolves numDataRequests data requests at epoch against both
// ARS states, records one Comparison per request, and runs each ARS's own
// block-level reputation accounting (mint, expire, distribute) exactly as
// the Epoch Driver would.
func (r *Runner) RunBlock(rngExact, rngApprox *rand.Rand, epoch int64, numDataRequests int) []Comparison {
	exactElig := r.ExactARS.CalculateEligibilities()
	approxElig := r.ApproxARS.CalculateEligibilities()

	comparisons := make([]Comparison, 0, numDataRequests)
	var exactActs, approxActs []string

	for i := 0; i < numDataRequests; i++ {
		cmp := r.Evaluator.Compare(r.ExactARS, r.ApproxARS, rngExact, rngApprox, exactElig, approxElig, r.Witnesses, epoch, r.Collateral)
		comparisons = append(comparisons, cmp)
		if cmp.ExactSuccess {
			exactActs = append(exactActs, cmp.ExactChosen...)
		}
		if cmp.ApproxSuccess {
			approxActs = append(approxActs, cmp.ApproxChosen...)
		}
	}

	settleBlock(r.ExactARS, exactActs, epoch)
	settleBlock(r.ApproxARS, approxActs, epoch)

	r.History = append(r.History, comparisons...)
	return comparisons
}

// settleBlock runs the same mint/expire/distribute sequence the Epoch
// Driver runs, for whichever witnessing acts one ARS side actually
// produced this block.
func settleBlock(a *ars.ARS, witnessingActs []string, epoch int64) {
	if len(witnessingActs) == 0 {
		return
	}
	created := a.CreateReputation(int64(len(witnessingActs)))
	expired := a.ExpireReputation(int64(len(witnessingActs)), epoch)
	pool := created + a.LeftoverReputation + expired
	a.LeftoverReputation = a.DistributeReputation(witnessingActs, pool, epoch)
}

// Report reduces every comparison made so far into a DriftReport.
func (r *Runner) Report() DriftReport {
	return Summarize(r.History)
}
