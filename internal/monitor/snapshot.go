// Package monitor is an optional, off-by-default operational surface
// (cmd/simulate's --http flag) that exposes a running simulation's
// progress over HTTP and a websocket feed. It is the teacher's
// internal/api (router + bearer auth + rate limiter + websocket hub)
// repurposed from a CoinJoin alert feed to a simulation progress feed: it
// reads the ARS's in-memory state and never persists anything, so it
// stays within spec.md's non-goal on persistence of simulation state.
package monitor

import (
	"encoding/json"
	"sort"
	"sync"

	"github.com/rawblock/ars-simulator/internal/ars"
)

// IdentityView is the JSON-facing projection of one identity's current
// standing, sorted by reputation descending the way stats.Collect orders
// it.
type IdentityView struct {
	Name                 string `json:"name"`
	TotalReputation      int64  `json:"totalReputation"`
	SolvedDataRequests   int64  `json:"solvedDataRequests"`
	EligibleNoCollateral int64  `json:"eligibleNoCollateral"`
}

// Snapshot is the progress payload served by GET /api/v1/progress and
// pushed over /api/v1/stream after every resolved block.
type Snapshot struct {
	Epoch                 int64          `json:"epoch"`
	CurrentReputation     int64          `json:"currentReputation"`
	CurrentWitnessingActs int64          `json:"currentWitnessingActs"`
	LeftoverReputation    int64          `json:"leftoverReputation"`
	BlocksProcessed       int64          `json:"blocksProcessed"`
	RequestsResolved      int64          `json:"requestsResolved"`
	RequestsFailed        int64          `json:"requestsFailed"`
	IdentityCount         int            `json:"identityCount"`
	Identities            []IdentityView `json:"identities,omitempty"`
}

// Monitor holds the latest Snapshot published by the Epoch Driver loop
// and fans it out to HTTP pollers and websocket subscribers alike. All
// reads and writes go through mu: cmd/simulate publishes from the single
// simulation goroutine while an arbitrary number of HTTP handler
// goroutines read concurrently (spec.md §5's single-threaded engine
// discipline stops at the ARS itself; the monitor is deliberately the
// one place that is not single-threaded).
type Monitor struct {
	mu       sync.RWMutex
	snapshot Snapshot
	hub      *Hub
}

// New builds a Monitor with a running websocket hub. Call SetupRouter to get
// the gin.Engine to serve.
func New() *Monitor {
	m := &Monitor{hub: NewHub()}
	go m.hub.Run()
	return m
}

// Publish records the outcome of one resolved block and, if any
// websocket clients are connected, broadcasts it as JSON.
func (m *Monitor) Publish(a *ars.ARS, epoch *ars.EpochResult, blocksProcessed int64) {
	var resolved, failed int64
	for _, r := range epoch.Requests {
		if r.Success {
			resolved++
		} else {
			failed++
		}
	}

	snap := Snapshot{
		Epoch:                 epoch.Epoch,
		CurrentReputation:     a.CurrentReputation,
		CurrentWitnessingActs: a.CurrentWitnessingActs,
		LeftoverReputation:    a.LeftoverReputation,
		BlocksProcessed:       blocksProcessed,
		RequestsResolved:      resolved,
		RequestsFailed:        failed,
		IdentityCount:         len(a.Identities),
	}

	m.mu.Lock()
	m.snapshot = snap
	m.mu.Unlock()

	if payload, err := json.Marshal(snap); err == nil {
		m.hub.Broadcast(payload)
	}
}

// Snapshot returns the most recently published progress snapshot.
func (m *Monitor) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshot
}

// Identities returns a fresh projection of every identity's current
// standing, sorted by reputation descending then name (stats.Collect's
// ordering, without importing internal/stats to avoid a cyclical
// "who reports on whom" dependency between the two ambient packages).
func Identities(a *ars.ARS) []IdentityView {
	out := make([]IdentityView, 0, len(a.Identities))
	for _, id := range a.Identities {
		out = append(out, IdentityView{
			Name:                 id.Name,
			TotalReputation:      id.TotalReputation,
			SolvedDataRequests:   id.SolvedDataRequests,
			EligibleNoCollateral: id.EligibleNoCollateral,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalReputation != out[j].TotalReputation {
			return out[i].TotalReputation > out[j].TotalReputation
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// IdentityByName looks up a single identity's current standing, for the
// single-identity lookup route. The bool is false if name is not in the
// ARS.
func IdentityByName(a *ars.ARS, name string) (IdentityView, bool) {
	id, ok := a.Identities[name]
	if !ok {
		return IdentityView{}, false
	}
	return IdentityView{
		Name:                 id.Name,
		TotalReputation:      id.TotalReputation,
		SolvedDataRequests:   id.SolvedDataRequests,
		EligibleNoCollateral: id.EligibleNoCollateral,
	}, true
}
