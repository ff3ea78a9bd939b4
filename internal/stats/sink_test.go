package stats

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rawblock/ars-simulator/internal/ars"
)

func TestGiniCoefficient_ZeroForEqualValues(t *testing.T) {
	g := GiniCoefficient([]float64{10, 10, 10, 10})
	if g != 0 {
		t.Errorf("expected Gini=0 for equal values, got %f", g)
	}
}

func TestGiniCoefficient_HighForConcentratedValues(t *testing.T) {
	g := GiniCoefficient([]float64{0, 0, 0, 100})
	if g < 0.5 {
		t.Errorf("expected a high Gini coefficient for concentrated values, got %f", g)
	}
}

func TestGiniCoefficient_SingleValueIsZero(t *testing.T) {
	if g := GiniCoefficient([]float64{42}); g != 0 {
		t.Errorf("expected Gini=0 for a single value, got %f", g)
	}
}

func TestNearestRankPercentile_Basic(t *testing.T) {
	sorted := []int64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	if got := nearestRankPercentile(sorted, 50); got != 5 {
		t.Errorf("expected median rank value 5, got %f", got)
	}
	if got := nearestRankPercentile(sorted, 100); got != 10 {
		t.Errorf("expected the max at p100, got %f", got)
	}
}

func TestCollect_ReportsPerIdentityAndAggregates(t *testing.T) {
	a := ars.New(100)
	a.LoadZeroReputation([]string{"wit1a", "wit1b", "wit1c"}, 1000)
	a.Identities["wit1a"].SolvedDataRequests = 5
	a.Identities["wit1a"].TotalReputation = 100
	a.Identities["wit1b"].SolvedDataRequests = 1
	a.Identities["wit1c"].EligibleNoCollateral = 2

	report := Collect(a)

	if len(report.Identities) != 3 {
		t.Fatalf("expected 3 identity entries, got %d", len(report.Identities))
	}
	if report.MaxSolvedDataRequests != 5 {
		t.Errorf("expected max solved=5, got %d", report.MaxSolvedDataRequests)
	}
	if report.MaxEligibleNoCollateral != 2 {
		t.Errorf("expected max eligible-no-collateral=2, got %d", report.MaxEligibleNoCollateral)
	}
	if report.AvgSolvedDataRequests != 3 {
		t.Errorf("expected avg solved (5+1)/2=3 over non-zero identities, got %f", report.AvgSolvedDataRequests)
	}
}

func TestOpenRotatedStatsFile_IncrementsCounter(t *testing.T) {
	dir := t.TempDir()

	f1, err := OpenRotatedStatsFile(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	f1.Close()

	f2, err := OpenRotatedStatsFile(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	f2.Close()

	if filepath.Base(f1.Name()) == filepath.Base(f2.Name()) {
		t.Fatalf("expected distinct rotated filenames, both were %s", filepath.Base(f1.Name()))
	}
	if _, err := os.Stat(filepath.Join(dir, "sim.stats.0")); err != nil {
		t.Errorf("expected sim.stats.0 to exist: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "sim.stats.1")); err != nil {
		t.Errorf("expected sim.stats.1 to exist: %v", err)
	}
}

func TestFprint_WritesReadableReport(t *testing.T) {
	a := ars.New(100)
	a.LoadZeroReputation([]string{"wit1a"}, 1000)
	a.Identities["wit1a"].SolvedDataRequests = 3

	report := Collect(a)

	dir := t.TempDir()
	f, err := os.Create(filepath.Join(dir, "out.txt"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer f.Close()

	if err := Fprint(f, report); err != nil {
		t.Fatalf("unexpected error writing report: %v", err)
	}
}
