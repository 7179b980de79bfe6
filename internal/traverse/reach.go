package traverse

import (
	"container/heap"

	"github.com/vk/bundlegrid/internal/asset"
	"github.com/vk/bundlegrid/internal/ordering"
)

// Reach counts the distinct vertices reachable from v in g, v included.
func Reach(g *ordering.Graph, v *asset.Asset) int {
	if !g.Has(v) {
		return 0
	}
	seen := map[*asset.Asset]struct{}{v: {}}
	stack := []*asset.Asset{v}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, next := range g.Adjacent(cur) {
			if _, ok := seen[next]; ok {
				continue
			}
			seen[next] = struct{}{}
			stack = append(stack, next)
		}
	}
	return len(seen)
}

// Ranked is a source together with its reach on the transposed graph.
type Ranked struct {
	Vertex *asset.Asset
	Reach  int
	seq    int
}

// rankHeap is a max-heap by reach; equal reach keeps insertion order.
type rankHeap []Ranked

func (h rankHeap) Len() int { return len(h) }

func (h rankHeap) Less(i, j int) bool {
	if h[i].Reach != h[j].Reach {
		return h[i].Reach > h[j].Reach
	}
	return h[i].seq < h[j].seq
}

func (h rankHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *rankHeap) Push(x any) { *h = append(*h, x.(Ranked)) }

func (h *rankHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// Rank orders the sources of original by their reach on transpose, highest
// first.
func Rank(original, transpose *ordering.Graph) []Ranked {
	h := &rankHeap{}
	for i, src := range original.Sources() {
		heap.Push(h, Ranked{Vertex: src, Reach: Reach(transpose, src), seq: i})
	}

	ranked := make([]Ranked, 0, h.Len())
	for h.Len() > 0 {
		ranked = append(ranked, heap.Pop(h).(Ranked))
	}
	return ranked
}

// SourceQueue drains the ranking into the FIFO queue that seeds the walk.
func SourceQueue(original, transpose *ordering.Graph) []*asset.Asset {
	ranked := Rank(original, transpose)
	queue := make([]*asset.Asset, len(ranked))
	for i, r := range ranked {
		queue[i] = r.Vertex
	}
	return queue
}
