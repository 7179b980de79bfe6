// Package traverse computes the grouping-aware traversal of an ordering
// graph.
//
// The traversal runs on the transposed graph. Its roots are the assets that
// depend on nothing, ranked by how much of the graph each of them reaches.
// A depth-first walk records vertices in finish order, so dependents come out
// before the assets they depend on; callers reverse the result to obtain the
// delivery order.
//
// When a vertex finishes, GroupingVisitor pulls in the not yet visited
// members of its group so that equal-keyed assets end up next to each other.
// A member is only pulled in if that cannot break the dependency order.
package traverse
