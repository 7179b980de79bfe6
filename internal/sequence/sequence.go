// Package sequence turns a delivery order into aggregate and standalone
// units.
package sequence

import (
	"github.com/vk/bundlegrid/internal/asset"
	"github.com/vk/bundlegrid/internal/grouping"
)

// Unit is one delivery unit: either an aggregate of equal-keyed assets or a
// single standalone asset.
type Unit struct {
	Key    grouping.Key
	Assets []*asset.Asset
}

// Aggregate reports whether the unit merges assets.
func (u Unit) Aggregate() bool { return u.Key.Grouped() }

// IDs lists the identities of the unit's assets.
func (u Unit) IDs() []string { return asset.IDs(u.Assets) }

// KeyFunc returns the grouping key of an asset.
type KeyFunc func(*asset.Asset) grouping.Key

// Assemble walks order once. A new aggregate starts whenever a grouped key
// differs from the key of the previous asset; ungrouped assets always form
// their own unit.
func Assemble(order []*asset.Asset, keyOf KeyFunc) []Unit {
	var units []Unit
	prev := grouping.None
	for _, a := range order {
		key := keyOf(a)
		switch {
		case !key.Grouped():
			units = append(units, Unit{Key: grouping.None, Assets: []*asset.Asset{a}})
		case key != prev || len(units) == 0:
			units = append(units, Unit{Key: key, Assets: []*asset.Asset{a}})
		default:
			last := &units[len(units)-1]
			last.Assets = append(last.Assets, a)
		}
		prev = key
	}
	return units
}

// Aggregates counts the aggregate units.
func Aggregates(units []Unit) int {
	n := 0
	for _, u := range units {
		if u.Aggregate() {
			n++
		}
	}
	return n
}
