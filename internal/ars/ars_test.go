package ars

import "testing"

func TestCheckInvariants_PassesForFreshARS(t *testing.T) {
	a := New(100)
	a.LoadZeroReputation([]string{"wit1a", "wit1b"}, 1000)

	if err := a.CheckInvariants(); err != nil {
		t.Errorf("expected no invariant violations, got: %v", err)
	}
}

func TestCheckInvariants_CatchesReputationMismatch(t *testing.T) {
	a := New(100)
	a.LoadZeroReputation([]string{"wit1a"}, 1000)
	a.Identities["wit1a"].TotalReputation = 50 // desynced from (empty) ReputationGains

	if err := a.CheckInvariants(); err == nil {
		t.Error("expected an invariant violation for desynced TotalReputation")
	}
}

func TestCheckInvariants_CatchesGlobalCapViolation(t *testing.T) {
	a := New(100)
	a.LoadZeroReputation([]string{"wit1a"}, 1000)
	a.Identities["wit1a"].ReputationGains = []ReputationGain{{Time: 0, Amount: TotalReputation + 1}}
	a.Identities["wit1a"].TotalReputation = TotalReputation + 1
	a.CurrentReputation = TotalReputation + 1

	if err := a.CheckInvariants(); err == nil {
		t.Error("expected an invariant violation for exceeding TotalReputation")
	}
}

func TestARS_Clone_IsIndependent(t *testing.T) {
	a := New(100)
	a.LoadZeroReputation([]string{"wit1a"}, 1000)
	a.Identities["wit1a"].TotalReputation = 50
	a.Identities["wit1a"].ReputationGains = []ReputationGain{{Time: 0, Amount: 50}}

	clone := a.Clone()
	clone.Identities["wit1a"].TotalReputation = 999
	clone.Identities["wit1a"].AvailableCollateral[0].Amount = 1

	if a.Identities["wit1a"].TotalReputation != 50 {
		t.Errorf("expected original untouched by clone mutation, got %d", a.Identities["wit1a"].TotalReputation)
	}
	if a.Identities["wit1a"].AvailableCollateral[0].Amount != 1000 {
		t.Errorf("expected original collateral untouched, got %d", a.Identities["wit1a"].AvailableCollateral[0].Amount)
	}
}

func TestARS_ClearStats(t *testing.T) {
	a := New(100)
	a.LoadZeroReputation([]string{"wit1a"}, 1000)
	a.Identities["wit1a"].SolvedDataRequests = 4

	a.ClearStats()

	if a.Identities["wit1a"].SolvedDataRequests != 0 {
		t.Errorf("expected stats cleared, got %d", a.Identities["wit1a"].SolvedDataRequests)
	}
}
