package planner

import "github.com/courierlab/gridcourier/pkg/types"

// Min-heap for the priority-driven strategies, in the lazy-decrease-key
// style: shorter routes push duplicate entries and stale ones are skipped on
// pop via the closed set.

type pqItem struct {
	pos      types.Position
	priority float64 // g for uniform-cost, g+h for A*
	h        float64 // secondary key: lower h wins among equal priorities
	seq      uint64  // insertion order, the final deterministic tie-break
	g        int
	depth    int64 // edges from the start, i.e. arrival-time offset
}

type minPQ []*pqItem

func (q minPQ) Len() int { return len(q) }

func (q minPQ) Less(i, j int) bool {
	if q[i].priority != q[j].priority {
		return q[i].priority < q[j].priority
	}
	if q[i].h != q[j].h {
		return q[i].h < q[j].h
	}
	return q[i].seq < q[j].seq
}

func (q minPQ) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *minPQ) Push(x any) { *q = append(*q, x.(*pqItem)) }

func (q *minPQ) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return item
}
