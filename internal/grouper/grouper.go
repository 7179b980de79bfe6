// Package grouper runs the complete grouping pipeline: classification,
// ordering graph, grouping-aware traversal and unit assembly.
//
// Every call to Group builds its own structures. A Grouper holds only its
// options and may be shared between goroutines.
package grouper

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/vk/bundlegrid/internal/asset"
	"github.com/vk/bundlegrid/internal/ctxlog"
	"github.com/vk/bundlegrid/internal/grouping"
	"github.com/vk/bundlegrid/internal/metrics"
	"github.com/vk/bundlegrid/internal/ordering"
	"github.com/vk/bundlegrid/internal/sequence"
	"github.com/vk/bundlegrid/internal/traverse"
)

// CyclePolicy decides what happens when the ordering declarations contain a
// cycle.
type CyclePolicy string

const (
	// CycleReject fails the run with ordering.ErrCycleFound.
	CycleReject CyclePolicy = "reject"
	// CycleIgnore drops back edges and still produces a complete order.
	CycleIgnore CyclePolicy = "ignore"
)

// ParseCyclePolicy accepts "reject", "ignore" or "" (reject).
func ParseCyclePolicy(raw string) (CyclePolicy, error) {
	switch CyclePolicy(raw) {
	case "", CycleReject:
		return CycleReject, nil
	case CycleIgnore:
		return CycleIgnore, nil
	default:
		return "", fmt.Errorf("unknown cycle policy %q (want %q or %q)", raw, CycleReject, CycleIgnore)
	}
}

// Options configures a Grouper.
type Options struct {
	Cycles  CyclePolicy
	Metrics *metrics.Recorder
}

// Grouper computes delivery plans.
type Grouper struct {
	opts Options
}

// New returns a Grouper; an empty cycle policy means CycleReject.
func New(opts Options) *Grouper {
	if opts.Cycles == "" {
		opts.Cycles = CycleReject
	}
	return &Grouper{opts: opts}
}

// Group runs the pipeline with default options.
func Group(ctx context.Context, assets []*asset.Asset) (*Plan, error) {
	return New(Options{}).Group(ctx, assets)
}

// Plan is the result of one run.
type Plan struct {
	// Traversal is the raw finish order: dependents before dependencies.
	Traversal []*asset.Asset
	// Order is the delivery order, the reverse of Traversal.
	Order []*asset.Asset
	Units []sequence.Unit
	Keys  map[*asset.Asset]grouping.Key
	// Unresolved lists relative positions naming assets outside the working
	// set. They are not errors.
	Unresolved []string
}

// Key returns the grouping key of a, None for assets outside the plan.
func (p *Plan) Key(a *asset.Asset) grouping.Key { return p.Keys[a] }

// Aggregates counts the aggregate units of the plan.
func (p *Plan) Aggregates() int { return sequence.Aggregates(p.Units) }

// Group computes the plan for assets. The assets are not modified.
func (g *Grouper) Group(ctx context.Context, assets []*asset.Asset) (*Plan, error) {
	start := time.Now()
	plan, err := g.group(ctx, assets)
	if err != nil {
		g.opts.Metrics.ObserveRun(outcome(err), time.Since(start), len(assets))
		return nil, err
	}
	g.opts.Metrics.ObserveRun(metrics.OutcomeSuccess, time.Since(start), len(assets))
	g.opts.Metrics.ObserveUnits(plan.Aggregates(), len(plan.Units)-plan.Aggregates())
	return plan, nil
}

func (g *Grouper) group(ctx context.Context, assets []*asset.Asset) (*Plan, error) {
	logger := ctxlog.FromContext(ctx)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	logger.Debug("Grouping started.", "assets", len(assets), "cycles", string(g.opts.Cycles))

	cache := grouping.NewCache()
	keys := make(map[*asset.Asset]grouping.Key, len(assets))
	for _, a := range assets {
		key, err := cache.Key(a)
		if err != nil {
			return nil, fmt.Errorf("failed to classify assets: %w", err)
		}
		keys[a] = key
	}

	graph := ordering.New()
	for _, a := range assets {
		if err := graph.AddVertex(a); err != nil {
			return nil, fmt.Errorf("failed to build ordering graph: %w", err)
		}
	}
	unresolved := graph.Unresolved()
	if len(unresolved) > 0 {
		logger.Warn("Relative positions name assets outside the working set.", "ids", unresolved)
	}
	logger.Debug("Ordering graph built.", "vertices", graph.Len(), "edges", len(graph.Edges()))

	if g.opts.Cycles == CycleReject {
		if err := graph.DetectCycles(); err != nil {
			return nil, err
		}
	}

	transpose := graph.Transpose()
	queue := traverse.SourceQueue(graph, transpose)
	visitor := traverse.NewGroupingVisitor(transpose.Vertices(), keys)
	if err := traverse.DepthFirst(transpose, visitor, queue); err != nil {
		return nil, fmt.Errorf("traversal failed: %w", err)
	}

	traversal := visitor.Order()
	order := slices.Clone(traversal)
	slices.Reverse(order)

	plan := &Plan{
		Traversal:  traversal,
		Order:      order,
		Keys:       keys,
		Unresolved: unresolved,
	}
	plan.Units = sequence.Assemble(order, plan.Key)

	logger.Info("Plan computed.", "assets", len(order), "units", len(plan.Units), "aggregates", plan.Aggregates())
	return plan, nil
}

func outcome(err error) string {
	switch {
	case errors.Is(err, ordering.ErrCycleFound):
		return metrics.OutcomeCycle
	case errors.Is(err, grouping.ErrUnknownKind),
		errors.Is(err, ordering.ErrInvalidVertex),
		errors.Is(err, ordering.ErrDuplicateVertex):
		return metrics.OutcomeInvalid
	default:
		return metrics.OutcomeError
	}
}
