// Package models holds plain data types for a simulation's inputs and
// results. internal/ingest and cmd/simulate import it; the ars, replay and
// monitor packages do not.
package models

// DataRequest is one witnessing task resolved within a block: a committee
// of Witnesses identities must be drawn to answer it, each posting
// Collateral until the request is settled.
type DataRequest struct {
	ID         string    `json:"id"`
	Epoch      int64     `json:"epoch"`
	Witnesses  int       `json:"witnesses"`
	Collateral WitAmount `json:"collateral"`
}

// BlockInput is one unit of the simulated chain: the epoch it occupies and
// the data requests that must be resolved within it.
type BlockInput struct {
	Epoch    int64         `json:"epoch"`
	Requests []DataRequest `json:"requests"`
}

// CommitteeResult is the externally observable outcome of resolving one
// DataRequest: who was chosen (or, on failure, who was eligible but
// couldn't post collateral) and how much reputation the committee earned.
type CommitteeResult struct {
	RequestID              string   `json:"requestId"`
	Epoch                  int64    `json:"epoch"`
	Success                bool     `json:"success"`
	Chosen                 []string `json:"chosen,omitempty"`
	InsufficientCollateral []string `json:"insufficientCollateral,omitempty"`
	Minted                 int64    `json:"minted"`
}
