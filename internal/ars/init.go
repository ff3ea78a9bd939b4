package ars

import (
	"math/rand"
	"sort"
)

// RosterEntry is one line of a roster file: an identity's name and its
// starting reputation. Collateral balance is applied uniformly to every
// roster identity by the caller (spec.md §6).
type RosterEntry struct {
	Name       string
	Reputation int64
}

// randomPartition splits totalSum into `items` non-negative integer parts
// using random proportions, dropping any part that rounds to zero. It is
// the Identity Ledger's history generator: reputation (or collateral)
// that an identity holds in one lump sum is broken into several grants
// received "at different times" so the ledger looks like an identity that
// actually earned its standing gradually, rather than in one suspicious
// instant.
func randomPartition(rng *rand.Rand, items int, totalSum int64) []int64 {
	if items <= 0 || totalSum <= 0 {
		return nil
	}
	raw := make([]float64, items)
	var rawSum float64
	for i := range raw {
		raw[i] = rng.Float64()
		rawSum += raw[i]
	}
	parts := make([]int64, items)
	var partsSum int64
	for i := range raw {
		parts[i] = int64(raw[i] / rawSum * float64(totalSum))
		partsSum += parts[i]
	}
	remainder := int(totalSum - partsSum)
	for i := 0; i < remainder; i++ {
		parts[i%items]++
	}

	out := make([]int64, 0, items)
	for _, p := range parts {
		if p != 0 {
			out = append(out, p)
		}
	}
	return out
}

// randomSampleDistinct draws k distinct integers from [low, high) without
// replacement via a partial Fisher-Yates shuffle.
func randomSampleDistinct(rng *rand.Rand, low, high int64, k int) []int64 {
	pool := make([]int64, high-low)
	for i := range pool {
		pool[i] = low + int64(i)
	}
	if k > len(pool) {
		k = len(pool)
	}
	for i := 0; i < k; i++ {
		j := i + rng.Intn(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
	}
	return pool[:k]
}

// aged ReputationGain history: splits amount into several grants received
// at random points in the last ReputationExpire acts, as if the identity
// had been witnessing for a while already rather than having been handed
// its entire balance in a single act.
func agedReputationGains(rng *rand.Rand, bins int, amount int64) []ReputationGain {
	parts := randomPartition(rng, bins, amount)
	gains := make([]ReputationGain, len(parts))
	for i, amt := range parts {
		gains[i] = ReputationGain{Time: rng.Int63n(ReputationExpire + 1), Amount: amt}
	}
	sort.Slice(gains, func(i, j int) bool { return gains[i].Time < gains[j].Time })
	return gains
}

// agedCollateral splits balance into several UTXOs unlocking at random
// points within the next CollateralLocked epochs, mirroring an identity
// whose collateral has been recycled through past data requests rather
// than sitting untouched since epoch 0.
func agedCollateral(rng *rand.Rand, bins int, balance, collateralLocked int64) []CollateralUTXO {
	parts := randomPartition(rng, bins, balance)
	utxos := make([]CollateralUTXO, len(parts))
	for i, amt := range parts {
		utxos[i] = CollateralUTXO{UnlockEpoch: rng.Int63n(collateralLocked + 1), Amount: amt}
	}
	sort.Slice(utxos, func(i, j int) bool { return utxos[i].UnlockEpoch < utxos[j].UnlockEpoch })
	return utxos
}

// LoadRoster populates the ARS from a fixed list of (name, reputation)
// identities, each holding balance collateral in a single unlocked UTXO.
// Each identity's starting reputation is broken into several aged grants
// rather than one lump sum — the "from-roster-file" initialization mode
// (spec.md §6). Because the aged history still clusters inside one
// ReputationExpire window, a meaningful simulation run should include a
// warmup phase before collecting statistics (spec.md §9).
func (a *ARS) LoadRoster(rng *rand.Rand, entries []RosterEntry, balance int64) {
	for _, e := range entries {
		id := NewIdentity(e.Name, balance)
		if e.Reputation > 0 {
			bins := int(e.Reputation/10) + 1
			id.ReputationGains = agedReputationGains(rng, bins, e.Reputation)
			id.recomputeTotalReputation()
			a.CurrentReputation += id.TotalReputation
		}
		a.Identities[e.Name] = id
	}
}

// LoadZeroReputation populates the ARS with identities that start with no
// reputation at all, each holding balance collateral. This is the
// "zero-reputation" initialization mode used to study how a population
// bootstraps standing from scratch.
func (a *ARS) LoadZeroReputation(names []string, balance int64) {
	for _, name := range names {
		a.Identities[name] = NewIdentity(name, balance)
	}
}

// GenerateIdentityNames produces n freshly generated, distinct identity
// names.
func GenerateIdentityNames(n int) []string {
	names := make([]string, n)
	for i := range names {
		names[i] = GenerateIdentityName()
	}
	return names
}

// LoadRandom populates the ARS with n freshly generated identities whose
// reputation is shaped to sum exactly to TotalReputation: a
// zeroReputationRatio fraction start at zero, and the rest are assigned
// reputations sampled without replacement from [1, maxReputation) and
// then rescaled so they sum to TotalReputation exactly (spec.md §6, §9's
// "random" initialization mode). Each non-zero identity's reputation and
// collateral balance are both broken into an aged history via
// randomPartition, and CurrentWitnessingActs is advanced to 1.1x
// ReputationExpire so that a realistic amount of reputation is already
// eligible to expire on the very first resolved request — otherwise the
// whole population's earliest grants would expire in lockstep on the same
// block.
func (a *ARS) LoadRandom(rng *rand.Rand, n int, balance, maxReputation int64, zeroReputationRatio float64) {
	numZero := int(float64(n) * zeroReputationRatio)
	numNonZero := n - numZero

	reputations := make([]int64, n)
	if numNonZero > 0 {
		sampled := randomSampleDistinct(rng, 1, maxReputation, numNonZero)
		var sampledSum int64
		for _, r := range sampled {
			sampledSum += r
		}
		var rescaledSum int64
		for i, r := range sampled {
			reputations[i] = int64(float64(r) / float64(sampledSum) * float64(TotalReputation))
			rescaledSum += reputations[i]
		}
		for i := 0; i < int(TotalReputation-rescaledSum); i++ {
			reputations[i%numNonZero]++
		}
	}

	names := GenerateIdentityNames(n)
	for i, name := range names {
		rep := reputations[i]
		var id *Identity
		if rep > 0 {
			bins := int(rep/16) + 1
			id = &Identity{
				Name:                name,
				ReputationGains:     agedReputationGains(rng, bins, rep),
				AvailableCollateral: agedCollateral(rng, bins, balance, a.CollateralLocked),
			}
			id.recomputeTotalReputation()
			a.CurrentReputation += id.TotalReputation
		} else {
			id = NewIdentity(name, balance)
		}
		a.Identities[name] = id
	}

	a.CurrentWitnessingActs = int64(float64(ReputationExpire) * 1.1)
}
