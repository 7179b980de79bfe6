// Package grouping classifies assets into optimal groups. Two assets may be
// merged into one aggregate if and only if their keys are equal and not None.
package grouping
