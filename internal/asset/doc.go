// Package asset defines the asset record the grouping core operates on: a
// stylesheet or script with a stable identity, its merge-relevant attributes
// and its ordering declarations.
//
// Two independent ordering facilities exist:
//   - Relative position (After / Before): soft constraints that only apply if
//     the referenced asset is present in the working set.
//   - Hard dependencies (Requires): named bundles that must be present and
//     must precede the declaring asset. They are expanded into relative
//     positions by the library package before grouping runs.
package asset
