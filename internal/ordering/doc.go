// Package ordering builds the directed ordering graph over a working set of
// assets.
//
// # Edge convention
//
// An edge u -> v means "u depends on v": v must be delivered before u. A
// declared predecessor p of a therefore yields a -> p, and a declared
// successor s of a yields s -> a. The transposed graph reverses every edge, so
// a depth-first finish order over the transpose lists dependents before the
// things they depend on; reversing that order yields the delivery order.
//
// # Deferred references
//
// Relative positions may name assets that are not in the graph yet. Such
// declarations are parked in a watch table keyed by the awaited identity and
// turned into edges the moment that identity is added. Adding A (after "B")
// and then B produces exactly the same edges as adding B first.
//
// A Graph is built and consumed by a single grouping run. It carries no
// locking and must not be shared between runs.
package ordering
