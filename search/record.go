package search

// recordTable holds the per-node search records: cost from start, reporting
// distance, parent link, and the sequence number of the node's live open
// entry. Generation tokens make reset O(1), so tables can be pooled and
// reused across runs.
type recordTable struct {
	token  uint32
	gen    []uint32
	g      []float64
	dist   []float64
	parent []uint32
	seq    []uint64
	closed []bool
}

func newRecordTable(capacity int) *recordTable {
	r := &recordTable{}
	r.grow(capacity)
	r.token = 1

	return r
}

// reset prepares the table for a new run over capacity nodes by incrementing
// the generation token.
func (r *recordTable) reset(capacity int) {
	if capacity > len(r.gen) {
		r.grow(capacity)
	}

	r.token++
	if r.token == 0 {
		// Overflow, clear all (O(N))
		// This happens once every 4 billion runs per table.
		for i := range r.gen {
			r.gen[i] = 0
		}
		r.token = 1
	}
}

// seen returns true if the node has a record in the current run.
func (r *recordTable) seen(u uint32) bool {
	return r.gen[u] == r.token
}

// gScore returns the node's current cost from start. The second return is
// false when the node has no record yet.
func (r *recordTable) gScore(u uint32) (float64, bool) {
	if r.gen[u] != r.token {
		return 0, false
	}

	return r.g[u], true
}

// open records (or re-records) a node with its scores, parent, and the
// sequence number of its freshly pushed open entry. Any previous open entry
// for the node becomes stale.
func (r *recordTable) open(u uint32, g, dist float64, parent uint32, seq uint64) {
	r.gen[u] = r.token
	r.g[u] = g
	r.dist[u] = dist
	r.parent[u] = parent
	r.seq[u] = seq
	r.closed[u] = false
}

// close marks a node as expanded. Its scores become final.
func (r *recordTable) close(u uint32) {
	r.closed[u] = true
}

// isClosed returns true if the node was expanded in the current run.
func (r *recordTable) isClosed(u uint32) bool {
	return r.gen[u] == r.token && r.closed[u]
}

// live reports whether seq identifies the node's current open entry. A pop
// whose sequence does not match was superseded by a later re-insertion and
// must be discarded.
func (r *recordTable) live(u uint32, seq uint64) bool {
	return r.gen[u] == r.token && !r.closed[u] && r.seq[u] == seq
}

// distance returns the reporting distance accumulated along the node's
// current best path.
func (r *recordTable) distance(u uint32) float64 {
	return r.dist[u]
}

// appendPath appends the node sequence from the run's start node to end, in
// travel order, and returns the extended slice. The start node is the one
// whose parent link points to itself.
func (r *recordTable) appendPath(buf []uint32, end uint32) []uint32 {
	first := len(buf)

	u := end
	for {
		buf = append(buf, u)

		p := r.parent[u]
		if p == u {
			break
		}

		u = p
	}

	// Parents were walked goal to start; reverse into travel order.
	for i, j := first, len(buf)-1; i < j; i, j = i+1, j-1 {
		buf[i], buf[j] = buf[j], buf[i]
	}

	return buf
}

func (r *recordTable) grow(capacity int) {
	newCap := len(r.gen) * 2
	if newCap < capacity {
		newCap = capacity
	}

	gen := make([]uint32, newCap)
	copy(gen, r.gen)
	r.gen = gen

	g := make([]float64, newCap)
	copy(g, r.g)
	r.g = g

	dist := make([]float64, newCap)
	copy(dist, r.dist)
	r.dist = dist

	parent := make([]uint32, newCap)
	copy(parent, r.parent)
	r.parent = parent

	seq := make([]uint64, newCap)
	copy(seq, r.seq)
	r.seq = seq

	closed := make([]bool, newCap)
	copy(closed, r.closed)
	r.closed = closed
}
