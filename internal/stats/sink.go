// Package stats reports distributional statistics over a finished
// simulation run: per-identity data-request outcomes, reputation
// concentration, and the stats-file rotation the original simulator used
// to avoid overwriting previous runs (spec.md §6, §9).
package stats

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"

	"github.com/rawblock/ars-simulator/internal/ars"
)

// IdentityStats is one identity's per-run counters, reported alongside
// its final standing.
type IdentityStats struct {
	Name                 string
	TotalReputation      int64
	SolvedDataRequests   int64
	EligibleNoCollateral int64
}

// Report summarizes one finished (or warmed-up) simulation run.
type Report struct {
	Identities []IdentityStats

	MaxSolvedDataRequests     int64
	MaxEligibleNoCollateral   int64
	SolvedPercentiles         map[int]float64 // percentile -> value, over identities that solved >=1 request
	AvgSolvedDataRequests     float64
	NoCollateralPercentiles   map[int]float64 // over identities that either solved or were eligible at least once
	AvgEligibleNoCollateral   float64
	ReputationGiniCoefficient float64
}

// percentiles are reported at these points, matching the original
// simulator's 10%-step sweep.
var reportedPercentiles = []int{10, 20, 30, 40, 50, 60, 70, 80, 90}

// Collect builds a Report from the current state of the ARS (spec.md
// §4.4's collect_stats, reimplemented without a numpy dependency: nearest
// -rank percentiles over a sorted slice do the same job for this report's
// purposes).
func Collect(a *ars.ARS) Report {
	names := make([]string, 0, len(a.Identities))
	for name := range a.Identities {
		names = append(names, name)
	}
	// Reputation descending, ties broken by name.
	sort.Slice(names, func(i, j int) bool {
		ri, rj := a.Identities[names[i]].TotalReputation, a.Identities[names[j]].TotalReputation
		if ri != rj {
			return ri > rj
		}
		return names[i] < names[j]
	})

	report := Report{
		Identities: make([]IdentityStats, 0, len(names)),
	}

	var solved []int64
	var filteredNoCollateral []int64
	var reputations []float64

	for _, name := range names {
		id := a.Identities[name]
		report.Identities = append(report.Identities, IdentityStats{
			Name:                 id.Name,
			TotalReputation:      id.TotalReputation,
			SolvedDataRequests:   id.SolvedDataRequests,
			EligibleNoCollateral: id.EligibleNoCollateral,
		})

		if id.SolvedDataRequests > report.MaxSolvedDataRequests {
			report.MaxSolvedDataRequests = id.SolvedDataRequests
		}
		if id.EligibleNoCollateral > report.MaxEligibleNoCollateral {
			report.MaxEligibleNoCollateral = id.EligibleNoCollateral
		}
		if id.SolvedDataRequests != 0 {
			solved = append(solved, id.SolvedDataRequests)
		}
		if id.SolvedDataRequests > 0 || id.EligibleNoCollateral > 0 {
			filteredNoCollateral = append(filteredNoCollateral, id.EligibleNoCollateral)
		}
		reputations = append(reputations, float64(id.TotalReputation))
	}

	report.SolvedPercentiles, report.AvgSolvedDataRequests = percentileReport(solved)
	report.NoCollateralPercentiles, report.AvgEligibleNoCollateral = percentileReport(filteredNoCollateral)
	report.ReputationGiniCoefficient = GiniCoefficient(reputations)

	return report
}

// percentileReport computes the nearest-rank percentile at each point in
// reportedPercentiles plus the arithmetic mean, over a copy of values
// (sorted in place).
func percentileReport(values []int64) (map[int]float64, float64) {
	out := make(map[int]float64, len(reportedPercentiles))
	if len(values) == 0 {
		return out, 0
	}

	sorted := make([]int64, len(values))
	copy(sorted, values)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	for _, p := range reportedPercentiles {
		out[p] = nearestRankPercentile(sorted, p)
	}

	var sum float64
	for _, v := range values {
		sum += float64(v)
	}
	return out, sum / float64(len(values))
}

// nearestRankPercentile returns the value at percentile p (0-100) of a
// slice already sorted ascending, using the nearest-rank method: rank =
// ceil(p/100 * n), clamped into range.
func nearestRankPercentile(sorted []int64, p int) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	rank := int(math.Ceil(float64(p) / 100 * float64(n)))
	if rank < 1 {
		rank = 1
	}
	if rank > n {
		rank = n
	}
	return float64(sorted[rank-1])
}

// GiniCoefficient computes the Gini coefficient of a set of values (0 =
// perfectly equal, 1 = maximally concentrated), the same rank-weighted-sum
// formula the teacher's transaction-output concentration analysis used,
// applied here to the ARS's reputation distribution instead of a
// transaction's output values.
func GiniCoefficient(values []float64) float64 {
	n := len(values)
	if n <= 1 {
		return 0
	}

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	var total float64
	for _, v := range sorted {
		total += v
	}
	if total <= 0 {
		return 0
	}

	var weightedSum float64
	for i, v := range sorted {
		weightedSum += float64(i+1) * v
	}

	gini := (2*weightedSum)/(float64(n)*total) - float64(n+1)/float64(n)
	if gini < 0 {
		gini = 0
	}
	if gini > 1 {
		gini = 1
	}
	return gini
}

// Fprint writes a human-readable rendering of the report in the shape
// f_stats.write(...) produced in the original tool, minus the numpy
// dependency.
func Fprint(w *os.File, r Report) error {
	if _, err := fmt.Fprintf(w, "Maximum data requests solved by one identity: %d\n", r.MaxSolvedDataRequests); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Maximum data requests eligible but not solved: %d\n\n", r.MaxEligibleNoCollateral); err != nil {
		return err
	}
	for _, p := range reportedPercentiles {
		if _, err := fmt.Fprintf(w, "Data requests solved per identity (%d%%): %.2f\n", 100-p, r.SolvedPercentiles[p]); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(w, "Average data requests solved per identity: %.2f\n\n", r.AvgSolvedDataRequests); err != nil {
		return err
	}
	for _, p := range reportedPercentiles {
		if _, err := fmt.Fprintf(w, "Data requests eligible but not solved per identity (%d%%): %.2f\n", 100-p, r.NoCollateralPercentiles[p]); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(w, "Average data requests eligible but not solved per identity: %.2f\n\n", r.AvgEligibleNoCollateral); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Reputation Gini coefficient: %.4f\n", r.ReputationGiniCoefficient)
	return err
}

// OpenRotatedStatsFile opens the next sim.stats.N file in dir, where N is
// one past the highest counter already present — so repeated runs never
// clobber a previous report (spec.md §6, grounded in the original
// simulator's open_stats_file).
func OpenRotatedStatsFile(dir string) (*os.File, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("stats: create results dir: %w", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("stats: read results dir: %w", err)
	}

	const prefix = "sim.stats."
	count := 0
	for _, e := range entries {
		name := e.Name()
		if len(name) <= len(prefix) || name[:len(prefix)] != prefix {
			continue
		}
		var n int
		if _, err := fmt.Sscanf(name[len(prefix):], "%d", &n); err == nil && n+1 > count {
			count = n + 1
		}
	}

	path := filepath.Join(dir, fmt.Sprintf("%s%d", prefix, count))
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("stats: open %s: %w", path, err)
	}
	return f, nil
}
