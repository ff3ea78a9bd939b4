package ingest

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/rawblock/ars-simulator/pkg/models"
)

func TestParseDataRequests_RebasesEpochToZero(t *testing.T) {
	requests, err := parseDataRequests(strings.NewReader(
		"1000,req-a,10,5000000000\n1001,req-b,5,1000000000\n",
	))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := requests[0]; !ok {
		t.Fatalf("expected the first recorded epoch to rebase to 0, got keys %v", keys(requests))
	}
	if _, ok := requests[1]; !ok {
		t.Fatalf("expected the second epoch to rebase to 1, got keys %v", keys(requests))
	}
}

func TestParseDataRequests_GroupsMultipleRequestsPerEpoch(t *testing.T) {
	requests, err := parseDataRequests(strings.NewReader(
		"5,req-a,10,1000000000\n5,req-b,5,2000000000\n",
	))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(requests[0]) != 2 {
		t.Fatalf("expected 2 requests in epoch 0, got %d", len(requests[0]))
	}
}

func TestParseDataRequests_PreservesCollateralAsNanoWits(t *testing.T) {
	requests, err := parseDataRequests(strings.NewReader("5,req-a,10,1000000000\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if requests[0][0].Collateral != 1_000_000_000 {
		t.Errorf("expected collateral to remain 1e9 nano-wits, got %d", requests[0][0].Collateral)
	}
}

func TestParseDataRequests_RejectsMalformedLine(t *testing.T) {
	if _, err := parseDataRequests(strings.NewReader("not,enough,fields\n")); err == nil {
		t.Fatal("expected an error for a malformed line")
	}
}

func TestSyntheticBlockSource_NeverNegative(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	src := NewSyntheticBlockSource(rng, 0, 0.001)

	for i := 0; i < 1000; i++ {
		if n := src.NextBlockSize(); n < 0 {
			t.Fatalf("expected non-negative block size, got %d", n)
		}
	}
}

func TestSyntheticBlockSource_AverageNearConfiguredMean(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	src := NewSyntheticBlockSource(rng, 10, 2)

	var sum int
	const trials = 5000
	for i := 0; i < trials; i++ {
		sum += src.NextBlockSize()
	}
	avg := float64(sum) / trials
	if avg < 8 || avg > 12 {
		t.Errorf("expected average block size near 10, got %f", avg)
	}
}

func keys(m map[int64][]models.DataRequest) []int64 {
	ks := make([]int64, 0, len(m))
	for k := range m {
		ks = append(ks, k)
	}
	return ks
}
