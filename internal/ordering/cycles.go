package ordering

import (
	"errors"
	"fmt"

	graphlib "github.com/dominikbraun/graph"
	"github.com/vk/bundlegrid/internal/asset"
)

func vertexHash(a *asset.Asset) string { return a.ID }

// DetectCycles replays the graph into a cycle-preventing directed graph and
// reports the first edge that closes a cycle, including self references.
func (g *Graph) DetectCycles() error {
	dg := graphlib.New(vertexHash, graphlib.Directed(), graphlib.PreventCycles())
	for _, v := range g.vertices {
		if err := dg.AddVertex(v); err != nil {
			return fmt.Errorf("ordering: replay vertex %q: %w", v.ID, err)
		}
	}

	for _, v := range g.vertices {
		for _, w := range g.adjacency[v].order {
			err := dg.AddEdge(v.ID, w.ID)
			if err == nil {
				continue
			}
			if !errors.Is(err, graphlib.ErrEdgeCreatesCycle) {
				return fmt.Errorf("ordering: replay edge %s -> %s: %w", v.ID, w.ID, err)
			}
			if v == w {
				return cycleError([]string{v.ID, v.ID})
			}
			// w already reaches v, so v -> w closes the loop.
			path, pathErr := graphlib.ShortestPath(dg, w.ID, v.ID)
			if pathErr != nil {
				return cycleError([]string{v.ID, w.ID, v.ID})
			}
			return cycleError(append([]string{v.ID}, path...))
		}
	}
	return nil
}
