package traverse

import (
	"fmt"

	"github.com/vk/bundlegrid/internal/asset"
	"github.com/vk/bundlegrid/internal/ordering"
)

// State is the progress of a vertex in a depth-first walk.
type State uint8

const (
	Unvisited State = iota
	Visiting
	Visited
)

func (s State) String() string {
	switch s {
	case Unvisited:
		return "unvisited"
	case Visiting:
		return "visiting"
	case Visited:
		return "visited"
	default:
		return fmt.Sprintf("State(%d)", uint8(s))
	}
}

// Walker is handed to visitor callbacks. Visit starts a nested visit of an
// unvisited vertex; it is a no-op for any other vertex.
type Walker interface {
	Visit(v *asset.Asset)
	State(v *asset.Asset) State
	Graph() *ordering.Graph
}

// Visitor receives depth-first events. FinishVertex is called while v is
// still Visiting.
type Visitor interface {
	StartVertex(v *asset.Asset, w Walker)
	ExamineEdge(from, to *asset.Asset)
	BackEdge(from, to *asset.Asset)
	FinishVertex(v *asset.Asset, w Walker)
}

type walk struct {
	g       *ordering.Graph
	visitor Visitor
	state   map[*asset.Asset]State
}

func (w *walk) Graph() *ordering.Graph { return w.g }

func (w *walk) State(v *asset.Asset) State { return w.state[v] }

func (w *walk) Visit(v *asset.Asset) {
	if w.state[v] != Unvisited || !w.g.Has(v) {
		return
	}
	w.state[v] = Visiting
	w.visitor.StartVertex(v, w)

	for _, next := range w.g.Adjacent(v) {
		w.visitor.ExamineEdge(v, next)
		switch w.state[next] {
		case Unvisited:
			w.Visit(next)
		case Visiting:
			w.visitor.BackEdge(v, next)
		}
	}

	w.visitor.FinishVertex(v, w)
	w.state[v] = Visited
}

// DepthFirst walks g starting from each vertex of queue in order. Vertices
// not reached from the queue are walked afterwards in insertion order, so
// every vertex is visited exactly once.
func DepthFirst(g *ordering.Graph, visitor Visitor, queue []*asset.Asset) error {
	for _, v := range queue {
		if !g.Has(v) {
			return fmt.Errorf("traverse: queued vertex %s: %w", v, ordering.ErrInvalidVertex)
		}
	}

	w := &walk{
		g:       g,
		visitor: visitor,
		state:   make(map[*asset.Asset]State, g.Len()),
	}
	for _, v := range queue {
		w.Visit(v)
	}
	for _, v := range g.Vertices() {
		w.Visit(v)
	}
	return nil
}
