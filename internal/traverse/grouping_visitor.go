package traverse

import (
	"slices"

	"github.com/vk/bundlegrid/internal/asset"
	"github.com/vk/bundlegrid/internal/grouping"
)

// pending tracks the members of one group that have not been started yet.
type pending struct {
	order   []*asset.Asset
	members map[*asset.Asset]struct{}
}

func (p *pending) remove(v *asset.Asset) { delete(p.members, v) }

func (p *pending) has(v *asset.Asset) bool {
	_, ok := p.members[v]
	return ok
}

// snapshot returns the members still pending, in insertion order.
func (p *pending) snapshot() []*asset.Asset {
	out := make([]*asset.Asset, 0, len(p.members))
	for _, v := range p.order {
		if p.has(v) {
			out = append(out, v)
		}
	}
	return out
}

// GroupingVisitor records the finish order of a walk over the transposed
// ordering graph, pulling group-mates next to each other.
type GroupingVisitor struct {
	keys    map[*asset.Asset]grouping.Key
	pending map[grouping.Key]*pending
	order   []*asset.Asset
}

// NewGroupingVisitor builds the pending sets from keys. vertices fixes the
// order in which group-mates are pulled in.
func NewGroupingVisitor(vertices []*asset.Asset, keys map[*asset.Asset]grouping.Key) *GroupingVisitor {
	gv := &GroupingVisitor{
		keys:    keys,
		pending: make(map[grouping.Key]*pending),
		order:   make([]*asset.Asset, 0, len(vertices)),
	}
	for _, v := range vertices {
		key := keys[v]
		if !key.Grouped() {
			continue
		}
		p, ok := gv.pending[key]
		if !ok {
			p = &pending{members: make(map[*asset.Asset]struct{})}
			gv.pending[key] = p
		}
		p.order = append(p.order, v)
		p.members[v] = struct{}{}
	}
	return gv
}

// StartVertex detaches v from its group's pending set.
func (gv *GroupingVisitor) StartVertex(v *asset.Asset, _ Walker) {
	if p, ok := gv.pending[gv.keys[v]]; ok {
		p.remove(v)
	}
}

func (gv *GroupingVisitor) ExamineEdge(_, _ *asset.Asset) {}

// BackEdge is ignored; cycles are handled before the walk.
func (gv *GroupingVisitor) BackEdge(_, _ *asset.Asset) {}

// FinishVertex visits the still pending members of v's group, then records v.
func (gv *GroupingVisitor) FinishVertex(v *asset.Asset, w Walker) {
	if p, ok := gv.pending[gv.keys[v]]; ok {
		for _, mate := range p.snapshot() {
			// An earlier excursion may already have started it.
			if !p.has(mate) || w.State(mate) != Unvisited {
				continue
			}
			if reachesInProgress(mate, w) {
				continue
			}
			w.Visit(mate)
		}
	}
	gv.order = append(gv.order, v)
}

// Order returns the finish order recorded so far.
func (gv *GroupingVisitor) Order() []*asset.Asset {
	return slices.Clone(gv.order)
}

// reachesInProgress reports whether the walk from start would run into a
// vertex that is still Visiting. Finishing start before that vertex would
// put a dependent behind its prerequisite.
func reachesInProgress(start *asset.Asset, w Walker) bool {
	g := w.Graph()
	seen := map[*asset.Asset]struct{}{start: {}}
	stack := []*asset.Asset{start}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, next := range g.Adjacent(cur) {
			switch w.State(next) {
			case Visiting:
				return true
			case Visited:
				continue
			}
			if _, ok := seen[next]; ok {
				continue
			}
			seen[next] = struct{}{}
			stack = append(stack, next)
		}
	}
	return false
}
