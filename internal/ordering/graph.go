package ordering

import (
	"slices"

	"github.com/vk/bundlegrid/internal/asset"
)

// Edge is a dependency edge by identity: From depends on To.
type Edge struct {
	From string
	To   string
}

// edgeSet keeps adjacency in insertion order so traversals are deterministic.
type edgeSet struct {
	order   []*asset.Asset
	members map[*asset.Asset]struct{}
}

func newEdgeSet() *edgeSet {
	return &edgeSet{members: make(map[*asset.Asset]struct{})}
}

func (s *edgeSet) add(v *asset.Asset) bool {
	if _, ok := s.members[v]; ok {
		return false
	}
	s.members[v] = struct{}{}
	s.order = append(s.order, v)
	return true
}

// Graph is the ordering graph over one working set.
type Graph struct {
	vertices  []*asset.Asset
	adjacency map[*asset.Asset]*edgeSet
	byID      map[string]*asset.Asset

	// predecessorWatch[id] lists vertices that declared id as a predecessor
	// before it was present; successorWatch likewise for successors.
	predecessorWatch map[string][]*asset.Asset
	successorWatch   map[string][]*asset.Asset

	process bool
}

// New returns an empty graph that turns ordering declarations into edges as
// vertices are added.
func New() *Graph {
	return newGraph(true)
}

func newGraph(process bool) *Graph {
	return &Graph{
		adjacency:        make(map[*asset.Asset]*edgeSet),
		byID:             make(map[string]*asset.Asset),
		predecessorWatch: make(map[string][]*asset.Asset),
		successorWatch:   make(map[string][]*asset.Asset),
		process:          process,
	}
}

// AddVertex adds a to the graph. Adding the same asset twice is a no-op.
// A nil asset, an empty identity or a second asset reusing a present identity
// is rejected.
func (g *Graph) AddVertex(a *asset.Asset) error {
	if a == nil {
		return graphErrorf(ErrInvalidVertex, "nil asset")
	}
	if a.ID == "" {
		return graphErrorf(ErrInvalidVertex, "asset has an empty identity")
	}
	if existing, ok := g.byID[a.ID]; ok {
		if existing == a {
			return nil
		}
		return graphErrorf(ErrDuplicateVertex, "identity %q is already taken", a.ID)
	}

	g.vertices = append(g.vertices, a)
	g.adjacency[a] = newEdgeSet()
	g.byID[a.ID] = a

	if g.process {
		g.processRelations(a)
	}
	return nil
}

func (g *Graph) processRelations(a *asset.Asset) {
	// Watches set by vertices that arrived earlier.
	if waiting, ok := g.predecessorWatch[a.ID]; ok {
		for _, w := range waiting {
			g.addEdge(w, a)
		}
		delete(g.predecessorWatch, a.ID)
	}
	if waiting, ok := g.successorWatch[a.ID]; ok {
		for _, w := range waiting {
			g.addEdge(a, w)
		}
		delete(g.successorWatch, a.ID)
	}

	for _, ref := range a.Predecessors() {
		id := ref.Key()
		if id == "" {
			continue
		}
		if p, ok := g.byID[id]; ok {
			g.addEdge(a, p)
			continue
		}
		g.predecessorWatch[id] = append(g.predecessorWatch[id], a)
	}

	for _, ref := range a.Successors() {
		id := ref.Key()
		if id == "" {
			continue
		}
		if s, ok := g.byID[id]; ok {
			g.addEdge(s, a)
			continue
		}
		g.successorWatch[id] = append(g.successorWatch[id], a)
	}
}

func (g *Graph) addEdge(from, to *asset.Asset) {
	g.adjacency[from].add(to)
}

// RemoveVertex is not supported: the watch bookkeeping tied to a removed
// identity cannot be unwound. It always returns ErrUnsupported.
func (g *Graph) RemoveVertex(a *asset.Asset) error {
	id := ""
	if a != nil {
		id = a.ID
	}
	return graphErrorf(ErrUnsupported, "vertices cannot be removed (asset %q)", id)
}

// Transpose returns a new graph with every edge reversed. Relation processing
// is disabled on the result; its edges come from g only.
func (g *Graph) Transpose() *Graph {
	t := newGraph(false)
	for _, v := range g.vertices {
		t.vertices = append(t.vertices, v)
		t.adjacency[v] = newEdgeSet()
		t.byID[v.ID] = v
	}
	for _, v := range g.vertices {
		for _, w := range g.adjacency[v].order {
			t.addEdge(w, v)
		}
	}
	return t
}

// Len returns the number of vertices.
func (g *Graph) Len() int { return len(g.vertices) }

// Vertices returns all vertices in insertion order.
func (g *Graph) Vertices() []*asset.Asset { return slices.Clone(g.vertices) }

// Vertex looks a vertex up by identity.
func (g *Graph) Vertex(id string) (*asset.Asset, bool) {
	v, ok := g.byID[id]
	return v, ok
}

// Has reports whether a is a vertex of g.
func (g *Graph) Has(a *asset.Asset) bool {
	_, ok := g.adjacency[a]
	return ok
}

// Adjacent returns the heads of v's outgoing edges in insertion order.
func (g *Graph) Adjacent(v *asset.Asset) []*asset.Asset {
	set, ok := g.adjacency[v]
	if !ok {
		return nil
	}
	return slices.Clone(set.order)
}

// OutDegree returns the number of edges leaving v.
func (g *Graph) OutDegree(v *asset.Asset) int {
	if set, ok := g.adjacency[v]; ok {
		return len(set.order)
	}
	return 0
}

// HasEdge reports whether the edge from -> to exists.
func (g *Graph) HasEdge(from, to *asset.Asset) bool {
	set, ok := g.adjacency[from]
	if !ok {
		return false
	}
	_, ok = set.members[to]
	return ok
}

// Edges returns every edge, grouped by tail in vertex insertion order.
func (g *Graph) Edges() []Edge {
	var edges []Edge
	for _, v := range g.vertices {
		for _, w := range g.adjacency[v].order {
			edges = append(edges, Edge{From: v.ID, To: w.ID})
		}
	}
	return edges
}

// Sources returns the vertices without outgoing edges, in insertion order. In
// the ordering graph these are the assets that depend on nothing.
func (g *Graph) Sources() []*asset.Asset {
	var sources []*asset.Asset
	for _, v := range g.vertices {
		if len(g.adjacency[v].order) == 0 {
			sources = append(sources, v)
		}
	}
	return sources
}

// Unresolved returns the identities still awaited by a watch, sorted. These
// are relative positions naming assets that never joined the working set.
func (g *Graph) Unresolved() []string {
	seen := make(map[string]struct{}, len(g.predecessorWatch)+len(g.successorWatch))
	for id := range g.predecessorWatch {
		seen[id] = struct{}{}
	}
	for id := range g.successorWatch {
		seen[id] = struct{}{}
	}
	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
