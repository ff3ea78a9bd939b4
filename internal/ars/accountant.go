package ars

import "sort"

// CreateReputation mints up to newWitnessingActs units of fresh
// reputation — one unit per witnessing act this block produced — capped
// so CurrentReputation never exceeds TotalReputation. It does not assign
// the new reputation to anyone; DistributeReputation does that once the
// block's full pool (created + carried-over leftover + expired) is known
// (spec.md §4.4).
func (a *ARS) CreateReputation(newWitnessingActs int64) int64 {
	headroom := TotalReputation - a.CurrentReputation
	if headroom < 0 {
		headroom = 0
	}
	created := newWitnessingActs
	if created > headroom {
		created = headroom
	}
	if created < 0 {
		created = 0
	}
	a.CurrentReputation += created
	return created
}

// ExpireReputation advances CurrentWitnessingActs by newWitnessingActs and
// removes every reputation grant that is now older than ReputationExpire
// acts, across every identity (sorted for determinism). The amount
// removed is subtracted from CurrentReputation and also returned so the
// caller can fold it back into the block's distribution pool — reputation
// expires off one identity's ledger only to be redistributed, not burned
// (spec.md §4.4).
func (a *ARS) ExpireReputation(newWitnessingActs, epoch int64) int64 {
	a.CurrentWitnessingActs += newWitnessingActs
	threshold := a.CurrentWitnessingActs - ReputationExpire

	names := make([]string, 0, len(a.Identities))
	for name := range a.Identities {
		names = append(names, name)
	}
	sort.Strings(names)

	var expired int64
	for _, name := range names {
		expired += a.Identities[name].GetExpiredReputation(threshold, epoch, a.CurrentWitnessingActs)
	}
	a.CurrentReputation -= expired
	return expired
}

// DistributeReputation splits pool evenly across witnesses — one entry
// per witnessing act, so an identity chosen for two data requests in the
// same block appears twice and is granted the gain twice — and returns
// whatever remainder doesn't divide evenly, to be carried into the next
// block's pool (spec.md §4.4's remainder-carry, mirroring the original
// simulator's leftover_reputation accumulator).
func (a *ARS) DistributeReputation(witnesses []string, pool, epoch int64) int64 {
	if len(witnesses) == 0 {
		return pool
	}
	n := int64(len(witnesses))
	gain := pool / n
	if gain > 0 {
		for _, name := range witnesses {
			a.Identities[name].UpdateReputation(ReputationExpire, a.CurrentWitnessingActs, gain, epoch)
		}
	}
	return pool - gain*n
}
