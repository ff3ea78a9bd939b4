package ars

import (
	"math/rand"
	"testing"
)

func TestLoadRoster_AppliesAgedReputationAndBalance(t *testing.T) {
	a := New(100)
	rng := rand.New(rand.NewSource(1))

	a.LoadRoster(rng, []RosterEntry{
		{Name: "wit1a", Reputation: 100},
		{Name: "wit1b", Reputation: 0},
	}, 500)

	if a.Identities["wit1a"].TotalReputation != 100 {
		t.Errorf("expected wit1a to start with 100 reputation, got %d", a.Identities["wit1a"].TotalReputation)
	}
	if len(a.Identities["wit1a"].ReputationGains) == 0 {
		t.Errorf("expected wit1a's reputation to be broken into aged grants, got none")
	}
	if a.Identities["wit1b"].TotalReputation != 0 {
		t.Errorf("expected wit1b to start with 0 reputation, got %d", a.Identities["wit1b"].TotalReputation)
	}
	if a.CurrentReputation != 100 {
		t.Errorf("expected CurrentReputation=100, got %d", a.CurrentReputation)
	}
	if a.Identities["wit1a"].AvailableCollateral[0].Amount != 500 {
		t.Errorf("expected wit1a's starting balance to be 500, got %d", a.Identities["wit1a"].AvailableCollateral[0].Amount)
	}
}

func TestLoadRoster_AgedGrantsAreSortedByTime(t *testing.T) {
	a := New(100)
	rng := rand.New(rand.NewSource(1))

	a.LoadRoster(rng, []RosterEntry{{Name: "wit1a", Reputation: 1000}}, 0)

	gains := a.Identities["wit1a"].ReputationGains
	for i := 1; i < len(gains); i++ {
		if gains[i-1].Time > gains[i].Time {
			t.Fatalf("expected gains sorted by time, got %+v", gains)
		}
	}
}

func TestLoadZeroReputation_EveryIdentityStartsAtZero(t *testing.T) {
	a := New(100)

	a.LoadZeroReputation([]string{"wit1a", "wit1b"}, 1000)

	if len(a.Identities) != 2 {
		t.Fatalf("expected 2 identities, got %d", len(a.Identities))
	}
	for _, id := range a.Identities {
		if id.TotalReputation != 0 {
			t.Errorf("expected %s to start with 0 reputation, got %d", id.Name, id.TotalReputation)
		}
	}
	if a.CurrentReputation != 0 {
		t.Errorf("expected CurrentReputation=0, got %d", a.CurrentReputation)
	}
}

func TestLoadRandom_RespectsZeroReputationRatio(t *testing.T) {
	a := New(100)
	rng := rand.New(rand.NewSource(1))

	a.LoadRandom(rng, 10, 1000, 500, 0.5)

	var zero, nonZero int
	for _, id := range a.Identities {
		if id.TotalReputation == 0 {
			zero++
		} else {
			nonZero++
		}
	}
	if zero != 5 || nonZero != 5 {
		t.Errorf("expected a 50/50 split of zero vs non-zero reputation, got zero=%d nonZero=%d", zero, nonZero)
	}
}

func TestLoadRandom_ReputationSumsToTotalReputation(t *testing.T) {
	a := New(100)
	rng := rand.New(rand.NewSource(1))

	a.LoadRandom(rng, 20, 1000, 500, 0)

	var sum int64
	for _, id := range a.Identities {
		sum += id.TotalReputation
	}
	if sum != TotalReputation {
		t.Errorf("expected total reputation to sum to %d, got %d", TotalReputation, sum)
	}
}

func TestLoadRandom_AdvancesWitnessingActsPastExpiryWindow(t *testing.T) {
	a := New(100)
	rng := rand.New(rand.NewSource(1))

	a.LoadRandom(rng, 5, 1000, 500, 0)

	if a.CurrentWitnessingActs <= ReputationExpire {
		t.Errorf("expected initial witnessing acts to sit past the expiry window, got %d", a.CurrentWitnessingActs)
	}
}

func TestGenerateIdentityNames_AllDistinct(t *testing.T) {
	names := GenerateIdentityNames(20)

	seen := make(map[string]bool)
	for _, name := range names {
		if seen[name] {
			t.Fatalf("duplicate generated name: %s", name)
		}
		seen[name] = true
	}
}

func TestRandomPartition_SumsToTotal(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	parts := randomPartition(rng, 7, 1000)

	var sum int64
	for _, p := range parts {
		sum += p
	}
	if sum != 1000 {
		t.Errorf("expected partition to sum to 1000, got %d", sum)
	}
}

func TestRandomSampleDistinct_NoDuplicates(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	sample := randomSampleDistinct(rng, 1, 100, 10)

	seen := make(map[int64]bool)
	for _, v := range sample {
		if seen[v] {
			t.Fatalf("duplicate sampled value: %d", v)
		}
		seen[v] = true
	}
}
