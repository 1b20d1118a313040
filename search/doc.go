// Package search implements the paced A* engine: the producer half of a run.
//
// An Engine is bound to one graph and can execute many runs, concurrently or
// in sequence; per-run bookkeeping (the record table, the open set, neighbor
// buffers) is pooled and reset in O(1) between runs. Each run streams its
// expansion progress through a progress.Stream while a pace.Controller
// stretches the computation to a target wall-clock duration.
//
// The open set uses lazy deletion: improving a node re-pushes it with a
// fresh sequence number instead of decreasing the priority of the existing
// entry, and superseded entries are recognized and discarded when popped.
// Ties between equal priorities resolve to the earlier sequence, so runs are
// fully deterministic for a given graph and request.
package search
