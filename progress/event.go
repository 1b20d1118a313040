package progress

import "time"

// Event is the interface for all progress events flowing from the search
// worker to the consumer. Payload slices are owned by the receiver once
// delivered; producers must not retain references to them.
type Event interface {
	progressEvent() // marker method
}

// VisitedBatch is emitted after the engine expands a batch of nodes. Nodes
// appear in expansion order and never repeat across batches of one run.
type VisitedBatch struct {
	Nodes []int64
}

func (VisitedBatch) progressEvent() {}

// FrontierSnapshot is emitted periodically with the nodes currently waiting
// in the open set. Each snapshot supersedes the previous one.
type FrontierSnapshot struct {
	Nodes []int64
}

func (FrontierSnapshot) progressEvent() {}

// BestPathSoFar is emitted periodically with the reconstructed path to the
// most promising node expanded so far. Each snapshot supersedes the previous
// one.
type BestPathSoFar struct {
	Nodes []int64
}

func (BestPathSoFar) progressEvent() {}

// Progress is an informational completion estimate in [0, 100]. Estimates
// derive from the pacing model, not from ground truth, so they are neither
// monotonic nor exact.
type Progress struct {
	Percent float64
}

func (Progress) progressEvent() {}

// Stats summarizes one finished run. It is computed once and attached to
// Complete.
type Stats struct {
	// TotalCost is the final path cost under the weight attribute, 0 when no
	// path was found.
	TotalCost float64 `json:"total_cost"`
	// TotalDistance is the final path length under the distance attribute,
	// 0 when none was configured or no path was found.
	TotalDistance float64 `json:"total_distance"`
	// PathNodes is the node count of the final path.
	PathNodes int `json:"path_nodes"`
	// Expanded counts nodes popped and expanded.
	Expanded int `json:"expanded"`
	// Relaxed counts edge relaxations that improved a neighbor.
	Relaxed int `json:"relaxed"`
	// StaleSkipped counts superseded open-set entries discarded on pop.
	StaleSkipped int `json:"stale_skipped"`
	// Batches counts the VisitedBatch events emitted.
	Batches int `json:"batches"`
	// Runtime is the wall-clock duration of the run.
	Runtime time.Duration `json:"runtime_ns"`
	// SaveArtifact reports whether the producer asked for a run artifact to
	// be written; the matching SaveRequest follows the Complete event.
	SaveArtifact bool `json:"save_artifact"`
}

// Complete terminates the event sequence of a run. Path is empty when the
// goal was unreachable or the run was cancelled; Visited always holds the
// full expansion sequence, even for cancelled runs.
type Complete struct {
	Path    []int64
	Visited []int64
	Stats   Stats
}

func (Complete) progressEvent() {}

// SaveRequest asks the consumer to persist a run artifact under the given
// name. If present it is sent after Complete, and handling it must be
// idempotent.
type SaveRequest struct {
	Filename string
}

func (SaveRequest) progressEvent() {}
