package ars

import "testing"

func TestCreateReputation_MintsOnePerWitnessingAct(t *testing.T) {
	a := New(100)

	created := a.CreateReputation(5)

	if created != 5 {
		t.Fatalf("expected 5 reputation created, got %d", created)
	}
	if a.CurrentReputation != 5 {
		t.Errorf("expected CurrentReputation=5, got %d", a.CurrentReputation)
	}
}

func TestCreateReputation_RespectsGlobalCap(t *testing.T) {
	a := New(100)
	a.CurrentReputation = TotalReputation - 3

	created := a.CreateReputation(10)

	if created != 3 {
		t.Fatalf("expected only 3 units of headroom created, got %d", created)
	}
	if a.CurrentReputation != TotalReputation {
		t.Errorf("expected CurrentReputation to land exactly on the cap, got %d", a.CurrentReputation)
	}
}

func TestCreateReputation_NoHeadroomCreatesNothing(t *testing.T) {
	a := New(100)
	a.CurrentReputation = TotalReputation

	if created := a.CreateReputation(10); created != 0 {
		t.Errorf("expected no reputation created at the cap, got %d", created)
	}
}

func TestExpireReputation_RemovesStaleGrantsAndAdvancesActs(t *testing.T) {
	a := New(100)
	a.LoadZeroReputation([]string{"wit1a", "wit1b"}, 0)
	a.Identities["wit1a"].ReputationGains = []ReputationGain{{Time: 0, Amount: 50}}
	a.Identities["wit1a"].TotalReputation = 50
	a.Identities["wit1b"].ReputationGains = []ReputationGain{{Time: 30000, Amount: 25}}
	a.Identities["wit1b"].TotalReputation = 25
	a.CurrentWitnessingActs = 19995

	expired := a.ExpireReputation(10, 5)

	if a.CurrentWitnessingActs != 20005 {
		t.Fatalf("expected CurrentWitnessingActs to advance to 20005, got %d", a.CurrentWitnessingActs)
	}
	if expired != 50 {
		t.Fatalf("expected 50 reputation expired (threshold %d), got %d", a.CurrentWitnessingActs-ReputationExpire, expired)
	}
	if a.Identities["wit1a"].TotalReputation != 0 {
		t.Errorf("expected wit1a's reputation to have fully expired, got %d", a.Identities["wit1a"].TotalReputation)
	}
	if a.Identities["wit1b"].TotalReputation != 25 {
		t.Errorf("expected wit1b's reputation to survive, got %d", a.Identities["wit1b"].TotalReputation)
	}
}

func TestExpireReputation_DecrementsCurrentReputation(t *testing.T) {
	a := New(100)
	a.LoadZeroReputation([]string{"wit1a"}, 0)
	a.Identities["wit1a"].ReputationGains = []ReputationGain{{Time: 5, Amount: 100}}
	a.Identities["wit1a"].TotalReputation = 100
	a.CurrentReputation = 100
	a.CurrentWitnessingActs = 20000

	expired := a.ExpireReputation(6, 1)

	if expired != 100 {
		t.Fatalf("expected 100 reputation to expire, got %d", expired)
	}
	if a.CurrentReputation != 0 {
		t.Errorf("expected current_reputation reduced by the expired amount to 0, got %d", a.CurrentReputation)
	}
	if err := a.CheckInvariants(); err != nil {
		t.Errorf("expected invariants to hold after expiry, got: %v", err)
	}
}

func TestDistributeReputation_SplitsEvenlyAndReturnsRemainder(t *testing.T) {
	a := New(100)
	a.LoadZeroReputation([]string{"wit1a", "wit1b", "wit1c"}, 0)

	leftover := a.DistributeReputation([]string{"wit1a", "wit1b", "wit1c"}, 10, 0)

	if leftover != 1 {
		t.Fatalf("expected remainder of 1 (10 / 3), got %d", leftover)
	}
	for _, name := range []string{"wit1a", "wit1b", "wit1c"} {
		if a.Identities[name].TotalReputation != 3 {
			t.Errorf("expected %s to receive 3, got %d", name, a.Identities[name].TotalReputation)
		}
	}
}

func TestDistributeReputation_DuplicateWitnessGetsGainTwice(t *testing.T) {
	a := New(100)
	a.LoadZeroReputation([]string{"wit1a", "wit1b"}, 0)

	a.DistributeReputation([]string{"wit1a", "wit1a", "wit1b"}, 30, 0)

	if a.Identities["wit1a"].TotalReputation != 20 {
		t.Errorf("expected wit1a (chosen twice) to receive 20, got %d", a.Identities["wit1a"].TotalReputation)
	}
	if a.Identities["wit1b"].TotalReputation != 10 {
		t.Errorf("expected wit1b (chosen once) to receive 10, got %d", a.Identities["wit1b"].TotalReputation)
	}
}

func TestDistributeReputation_EmptyWitnessesCarriesPoolForward(t *testing.T) {
	a := New(100)

	leftover := a.DistributeReputation(nil, 42, 0)

	if leftover != 42 {
		t.Errorf("expected the whole pool to carry forward with no witnesses, got %d", leftover)
	}
}
