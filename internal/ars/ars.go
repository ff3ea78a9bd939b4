// Package ars implements the Active Reputation Set engine: the identity
// ledger, the trapezoidal eligibility distribution, the multi-round
// committee selector, the reputation accountant, and the per-block epoch
// driver that wires them together.
package ars

import "fmt"

// Consensus constants (spec.md §3).
const (
	// TotalReputation is the hard cap on reputation that can ever exist
	// across the whole ARS at once.
	TotalReputation int64 = 1 << 20

	// ReputationExpire is the age, in witnessing acts, at which a
	// reputation grant expires.
	ReputationExpire int64 = 20000

	// CommitRounds is the number of doubling-intensity rounds the
	// Committee Selector attempts before giving up on a data request.
	CommitRounds = 4
)

// ARS is the aggregate root: every identity plus the two global counters
// that drive reputation creation and expiry. It is mutated only by the
// Epoch Driver (internal/ars/driver.go); the identity ledger and
// collateral ledger within each Identity are mutated by the Selector and
// Accountant respectively, but never concurrently (spec.md §5).
type ARS struct {
	Identities map[string]*Identity

	// CurrentReputation is the total reputation minted and not yet
	// expired; always <= TotalReputation.
	CurrentReputation int64

	// CurrentWitnessingActs is the monotonically non-decreasing count of
	// every witnessing act ever performed.
	CurrentWitnessingActs int64

	// CollateralLocked is the number of epochs collateral stays locked
	// after being spent (configurable per spec.md §3).
	CollateralLocked int64

	// LeftoverReputation is the remainder from the last block's
	// reputation distribution that didn't divide evenly across its
	// witnesses. It carries forward into the next block's pool rather
	// than being discarded (spec.md §4.4).
	LeftoverReputation int64
}

// New creates an empty ARS with the given collateral lock duration. Use
// one of the Load* functions in init.go to populate Identities.
func New(collateralLocked int64) *ARS {
	return &ARS{
		Identities:       make(map[string]*Identity),
		CollateralLocked: collateralLocked,
	}
}

// CheckInvariants re-derives every quantified invariant in spec.md §8 and
// returns the first violation found, or nil. It is meant for tests and for
// an optional post-block sanity pass, not for the hot path.
func (a *ARS) CheckInvariants() error {
	for _, id := range a.Identities {
		var sum int64
		for i, g := range id.ReputationGains {
			sum += g.Amount
			if g.Amount <= 0 {
				return fmt.Errorf("identity %s: reputation_gains[%d] amount %d is not strictly positive", id.Name, i, g.Amount)
			}
			if i > 0 && id.ReputationGains[i-1].Time > g.Time {
				return fmt.Errorf("identity %s: reputation_gains not sorted non-decreasingly at index %d", id.Name, i)
			}
		}
		if sum != id.TotalReputation {
			return fmt.Errorf("identity %s: total_reputation %d != sum of reputation_gains %d", id.Name, id.TotalReputation, sum)
		}
		if len(id.ReputationGains) > 0 && id.ReputationGains[0].Time < a.CurrentWitnessingActs-ReputationExpire {
			return fmt.Errorf("identity %s: head reputation_gains time %d < %d-%d", id.Name, id.ReputationGains[0].Time, a.CurrentWitnessingActs, ReputationExpire)
		}
		for i, u := range id.AvailableCollateral {
			if u.Amount <= 0 {
				return fmt.Errorf("identity %s: available_collateral[%d] amount %d is not strictly positive", id.Name, i, u.Amount)
			}
		}
	}
	var liveSum int64
	for _, id := range a.Identities {
		liveSum += id.TotalReputation
	}
	if a.CurrentReputation != liveSum {
		return fmt.Errorf("current_reputation %d != sum of identities' total_reputation %d", a.CurrentReputation, liveSum)
	}
	if a.CurrentReputation > TotalReputation {
		return fmt.Errorf("current_reputation %d exceeds TotalReputation %d", a.CurrentReputation, TotalReputation)
	}
	return nil
}

// Clone returns a deep copy of the ARS: every Identity and its slices are
// copied independently, so mutating the clone (collateral spent,
// reputation granted) never touches the original. Used to fork two
// selector modes from the same starting state (internal/replay).
func (a *ARS) Clone() *ARS {
	out := &ARS{
		Identities:            make(map[string]*Identity, len(a.Identities)),
		CurrentReputation:     a.CurrentReputation,
		CurrentWitnessingActs: a.CurrentWitnessingActs,
		CollateralLocked:      a.CollateralLocked,
		LeftoverReputation:    a.LeftoverReputation,
	}
	for name, id := range a.Identities {
		out.Identities[name] = &Identity{
			Name:                 id.Name,
			TotalReputation:      id.TotalReputation,
			ReputationGains:      append([]ReputationGain(nil), id.ReputationGains...),
			AvailableCollateral:  append([]CollateralUTXO(nil), id.AvailableCollateral...),
			SolvedDataRequests:   id.SolvedDataRequests,
			EligibleNoCollateral: id.EligibleNoCollateral,
		}
	}
	return out
}

// ClearStats zeroes the statistical counters of every identity.
func (a *ARS) ClearStats() {
	for _, id := range a.Identities {
		id.ClearStats()
	}
}
