package ars

import (
	"fmt"

	"github.com/btcsuite/btcd/btcutil/base58"
	"github.com/google/uuid"
)

// identityNamePrefix marks every generated identity name, mirroring the
// "wit1" bech32-style human-readable part the original simulator used.
const identityNamePrefix = "wit1"

// identityNameSuffixLen is the length of the random alphanumeric token
// that follows identityNamePrefix (spec.md §3).
const identityNameSuffixLen = 38

// ReputationGain is one (witnessing-act timestamp, amount) entry in an
// identity's reputation ledger. The ledger is kept sorted non-decreasingly
// by Time; amounts are always strictly positive.
type ReputationGain struct {
	Time   int64
	Amount int64
}

// CollateralUTXO is one indivisible unit of collateral, spendable once
// UnlockEpoch has passed. The ledger is kept ordered by unlock age so the
// selector can always spend the oldest-unlocked UTXO first.
type CollateralUTXO struct {
	UnlockEpoch int64
	Amount      int64
}

// Identity is a single ARS participant: its reputation-gain ledger,
// collateral-UTXO ledger, and the two per-run statistical counters.
type Identity struct {
	Name                 string
	TotalReputation      int64
	ReputationGains      []ReputationGain
	AvailableCollateral  []CollateralUTXO
	SolvedDataRequests   int64
	EligibleNoCollateral int64
}

// NewIdentity builds an identity with an empty ledger and a single
// collateral UTXO spendable from epoch 0 — the "zero-reputation" shape
// described in spec.md §6.
func NewIdentity(name string, balance int64) *Identity {
	return &Identity{
		Name:                name,
		AvailableCollateral: []CollateralUTXO{{UnlockEpoch: 0, Amount: balance}},
	}
}

// GenerateIdentityName produces a random, unique-with-overwhelming-probability
// identity label: the fixed "wit1" marker followed by a 38-character
// alphanumeric token. The entropy comes from two concatenated UUIDv4
// draws (32 bytes, comfortably more than the 16 a single UUID gives) run
// through Base58 so the result never contains the visually ambiguous
// characters a wallet address wouldn't either.
func GenerateIdentityName() string {
	a, b := uuid.New(), uuid.New()
	buf := make([]byte, 0, 32)
	buf = append(buf, a[:]...)
	buf = append(buf, b[:]...)
	token := base58.Encode(buf)
	if len(token) < identityNameSuffixLen {
		// Vanishingly unlikely for 32 random bytes, but pad deterministically
		// rather than emit a short name.
		pad := make([]byte, identityNameSuffixLen-len(token))
		for i := range pad {
			pad[i] = '1'
		}
		token += string(pad)
	}
	return identityNamePrefix + token[:identityNameSuffixLen]
}

// CanWitness reports whether the identity's spendable collateral at epoch
// (all UTXOs with UnlockEpoch <= epoch) covers required. On failure it
// increments EligibleNoCollateral (spec.md §4.1).
func (id *Identity) CanWitness(epoch, required int64) bool {
	var spendable int64
	for _, u := range id.AvailableCollateral {
		if u.UnlockEpoch <= epoch {
			spendable += u.Amount
		}
	}
	if spendable >= required {
		debugf("%s can witness at epoch %d", id.Name, epoch)
		return true
	}
	debugf("%s cannot witness at epoch %d: has %d, needs %d", id.Name, epoch, spendable, required)
	id.EligibleNoCollateral++
	return false
}

// MarkCollateral consumes required collateral, FIFO by unlock age, and
// locks it until usedUntil. Precondition: CanWitness(epoch, required) must
// currently hold — violating it is a logic bug, not a runtime condition,
// so it panics rather than returning an error (spec.md §7).
func (id *Identity) MarkCollateral(epoch, required, usedUntil int64) {
	if !id.CanWitness(epoch, required) {
		panic(fmt.Sprintf("ars: MarkCollateral precondition violated for %s: insufficient collateral at epoch %d", id.Name, epoch))
	}

	var sum int64
	consumed := 0
	for consumed < len(id.AvailableCollateral) {
		sum += id.AvailableCollateral[consumed].Amount
		lastAge := id.AvailableCollateral[consumed].UnlockEpoch
		consumed++
		if sum >= required {
			remaining := id.AvailableCollateral[consumed:]
			rest := make([]CollateralUTXO, 0, len(remaining)+2)
			if sum > required {
				// Re-insert the excess at the head, with the unlock age of
				// the last UTXO consumed to fund this request.
				rest = append(rest, CollateralUTXO{UnlockEpoch: lastAge, Amount: sum - required})
			}
			rest = append(rest, remaining...)
			rest = append(rest, CollateralUTXO{UnlockEpoch: usedUntil, Amount: required})
			id.AvailableCollateral = rest
			break
		}
	}

	id.SolvedDataRequests++
	debugf("%s marked %d collateral until epoch %d", id.Name, required, usedUntil)
}

// UpdateReputation appends a new reputation grant timestamped at
// currentWitnessActs. The head of the ledger must not already be stale —
// a stale grant surviving past expiry is an invariant violation.
func (id *Identity) UpdateReputation(expireWindow, currentWitnessActs, amount, epoch int64) {
	if len(id.ReputationGains) > 0 && id.ReputationGains[0].Time < currentWitnessActs-expireWindow {
		panic(fmt.Sprintf("ars: stale reputation grant survived expiry for %s: head time %d, threshold %d",
			id.Name, id.ReputationGains[0].Time, currentWitnessActs-expireWindow))
	}
	id.ReputationGains = append(id.ReputationGains, ReputationGain{Time: currentWitnessActs, Amount: amount})
	id.recomputeTotalReputation()
	debugf("%s gained %d reputation @ epoch %d (acts=%d), total now %d", id.Name, amount, epoch, currentWitnessActs, id.TotalReputation)
}

// GetExpiredReputation removes every reputation grant older than threshold
// from the head of the ledger (relying on the sorted-ascending invariant
// to stop at the first non-expired entry) and returns the sum removed.
func (id *Identity) GetExpiredReputation(threshold, epoch, totalWitnessActs int64) int64 {
	var expired int64
	cut := 0
	for cut < len(id.ReputationGains) && id.ReputationGains[cut].Time < threshold {
		expired += id.ReputationGains[cut].Amount
		cut++
	}
	if cut > 0 {
		id.ReputationGains = id.ReputationGains[cut:]
	}
	id.recomputeTotalReputation()
	if expired > 0 {
		debugf("%s had %d reputation expire @ epoch %d (acts=%d)", id.Name, expired, epoch, totalWitnessActs)
	}
	return expired
}

// ClearStats zeroes the per-run statistical counters without touching the
// reputation or collateral ledgers.
func (id *Identity) ClearStats() {
	id.SolvedDataRequests = 0
	id.EligibleNoCollateral = 0
}

func (id *Identity) recomputeTotalReputation() {
	var total int64
	for _, g := range id.ReputationGains {
		total += g.Amount
	}
	id.TotalReputation = total
}
