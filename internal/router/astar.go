package router

import (
	"math"

	"github.com/azybler/tilerouter/internal/geo"
	"github.com/azybler/tilerouter/internal/graph"
)

const noNode = math.MaxUint32

// pqItem is a priority queue entry: node, its current best g-value, and
// the f-priority (g + heuristic) it was pushed with.
type pqItem struct {
	node uint32
	g    float64
	f    float64
}

// minHeap is a concrete-typed min-heap keyed by f-priority, avoiding the
// interface-boxing overhead of container/heap for the hot search loop.
type minHeap struct {
	items []pqItem
}

func (h *minHeap) Len() int { return len(h.items) }

func (h *minHeap) Push(node uint32, g, f float64) {
	h.items = append(h.items, pqItem{node: node, g: g, f: f})
	h.siftUp(len(h.items) - 1)
}

func (h *minHeap) Pop() pqItem {
	n := len(h.items)
	item := h.items[0]
	h.items[0] = h.items[n-1]
	h.items = h.items[:n-1]
	if len(h.items) > 0 {
		h.siftDown(0)
	}
	return item
}

func (h *minHeap) PeekF() float64 {
	if len(h.items) == 0 {
		return math.Inf(1)
	}
	return h.items[0].f
}

func (h *minHeap) siftUp(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if h.items[i].f >= h.items[parent].f {
			break
		}
		h.items[i], h.items[parent] = h.items[parent], h.items[i]
		i = parent
	}
}

func (h *minHeap) siftDown(i int) {
	n := len(h.items)
	for {
		smallest := i
		left := 2*i + 1
		right := 2*i + 2
		if left < n && h.items[left].f < h.items[smallest].f {
			smallest = left
		}
		if right < n && h.items[right].f < h.items[smallest].f {
			smallest = right
		}
		if smallest == i {
			break
		}
		h.items[i], h.items[smallest] = h.items[smallest], h.items[i]
		i = smallest
	}
}

// predEntry records how a node was reached, so path reconstruction can
// recover the exact traversed graph.Edge. In the forward labels, pos is
// the edge's position in the predecessor node's adjacency slice; in the
// backward labels, pos is the edge's position in the labelled node's own
// adjacency slice (the edge labelled→node, in its forward orientation).
type predEntry struct {
	node uint32
	pos  int
	has  bool
}

// queryState holds per-query A* labels. Sized to the fused graph's node
// count, which already includes the two virtual nodes by construction
// time — there is no separate "touched" fast-reset list because the
// graph (and this state) are discarded at query end, unlike the
// teacher's long-lived CH graph reused across queries.
type queryState struct {
	gF, gB       []float64
	predF, predB []predEntry
	fwdPQ, bwdPQ minHeap
}

func newQueryState(n int) *queryState {
	qs := &queryState{
		gF:    make([]float64, n),
		gB:    make([]float64, n),
		predF: make([]predEntry, n),
		predB: make([]predEntry, n),
	}
	for i := 0; i < n; i++ {
		qs.gF[i] = math.Inf(1)
		qs.gB[i] = math.Inf(1)
	}
	return qs
}

// heuristic returns haversine(u, target) / hSpeed, the distance-to-go
// estimate in seconds. It never over-estimates only while hSpeed is at
// least the speed of every edge in the graph.
func heuristic(g *graph.Graph, u uint32, targetLat, targetLon, hSpeed float64) float64 {
	return geo.Haversine(g.Lat[u], g.Lon[u], targetLat, targetLon) / hSpeed
}

// searchResult is the outcome of runBidirectionalAStar.
type searchResult struct {
	found    bool
	meetNode uint32
	mu       float64
}

// runBidirectionalAStar runs the alternating-pop bidirectional A* search
// described for the Router: forward frontier from source, backward
// frontier from target using reverse adjacency, terminating once both
// frontiers' best remaining priorities are no better than the best-known
// meeting cost.
func runBidirectionalAStar(g *graph.Graph, qs *queryState, source, target uint32, sourceLat, sourceLon, targetLat, targetLon, hSpeed float64) searchResult {
	mu := math.Inf(1)
	meetNode := uint32(noNode)
	found := false

	qs.gF[source] = 0
	qs.predF[source] = predEntry{has: false}
	qs.fwdPQ.Push(source, 0, heuristic(g, source, targetLat, targetLon, hSpeed))

	qs.gB[target] = 0
	qs.predB[target] = predEntry{has: false}
	qs.bwdPQ.Push(target, 0, heuristic(g, target, sourceLat, sourceLon, hSpeed))

	for qs.fwdPQ.Len() > 0 || qs.bwdPQ.Len() > 0 {
		if qs.fwdPQ.Len() > 0 && qs.fwdPQ.PeekF() < mu {
			item := qs.fwdPQ.Pop()
			u, d := item.node, item.g
			if d > qs.gF[u] {
				goto backwardStep // stale entry
			}
			if !math.IsInf(qs.gB[u], 1) {
				if candidate := d + qs.gB[u]; candidate < mu {
					mu = candidate
					meetNode = u
					found = true
				}
			}
			for pos, e := range g.Adj[u] {
				newG := d + e.WeightS
				if newG < qs.gF[e.To] {
					qs.gF[e.To] = newG
					qs.predF[e.To] = predEntry{node: u, pos: pos, has: true}
					qs.fwdPQ.Push(e.To, newG, newG+heuristic(g, e.To, targetLat, targetLon, hSpeed))
				}
			}
		}

	backwardStep:
		if qs.bwdPQ.Len() > 0 && qs.bwdPQ.PeekF() < mu {
			item := qs.bwdPQ.Pop()
			u, d := item.node, item.g
			if d > qs.gB[u] {
				continue // stale entry
			}
			if !math.IsInf(qs.gF[u], 1) {
				if candidate := qs.gF[u] + d; candidate < mu {
					mu = candidate
					meetNode = u
					found = true
				}
			}
			for _, ref := range g.In[u] {
				w := g.Adj[ref.From][ref.Pos].WeightS
				newG := d + w
				if newG < qs.gB[ref.From] {
					qs.gB[ref.From] = newG
					qs.predB[ref.From] = predEntry{node: u, pos: ref.Pos, has: true}
					qs.bwdPQ.Push(ref.From, newG, newG+heuristic(g, ref.From, sourceLat, sourceLon, hSpeed))
				}
			}
		}

		if qs.fwdPQ.PeekF() >= mu && qs.bwdPQ.PeekF() >= mu {
			break
		}
	}

	return searchResult{found: found, meetNode: meetNode, mu: mu}
}
