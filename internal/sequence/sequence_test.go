package sequence

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/vk/bundlegrid/internal/asset"
	"github.com/vk/bundlegrid/internal/grouping"
)

type item struct {
	id  string
	key grouping.Key
}

func build(items ...item) ([]*asset.Asset, KeyFunc) {
	keys := make(map[*asset.Asset]grouping.Key, len(items))
	order := make([]*asset.Asset, 0, len(items))
	for _, it := range items {
		a := asset.New(it.id, asset.TypeScript)
		keys[a] = it.key
		order = append(order, a)
	}
	return order, func(a *asset.Asset) grouping.Key { return keys[a] }
}

func shape(units []Unit) [][]string {
	out := make([][]string, len(units))
	for i, u := range units {
		out[i] = u.IDs()
	}
	return out
}

func TestAssemble(t *testing.T) {
	testCases := []struct {
		name  string
		items []item
		want  [][]string
		aggs  int
	}{
		{
			name: "empty order",
			want: [][]string{},
		},
		{
			name:  "one group",
			items: []item{{"a", "k"}, {"b", "k"}, {"c", "k"}},
			want:  [][]string{{"a", "b", "c"}},
			aggs:  1,
		},
		{
			name:  "key change opens a new aggregate",
			items: []item{{"a", "k1"}, {"b", "k2"}, {"c", "k2"}},
			want:  [][]string{{"a"}, {"b", "c"}},
			aggs:  2,
		},
		{
			name:  "returning key opens another aggregate",
			items: []item{{"a", "k1"}, {"b", "k2"}, {"c", "k1"}},
			want:  [][]string{{"a"}, {"b"}, {"c"}},
			aggs:  3,
		},
		{
			name:  "ungrouped assets stand alone",
			items: []item{{"a", grouping.None}, {"b", grouping.None}},
			want:  [][]string{{"a"}, {"b"}},
		},
		{
			name:  "ungrouped asset splits a group",
			items: []item{{"a", "k"}, {"x", grouping.None}, {"b", "k"}},
			want:  [][]string{{"a"}, {"x"}, {"b"}},
			aggs:  2,
		},
		{
			name: "delivery order of the sample working set",
			items: []item{
				{"c", "g1"}, {"f", "g3"}, {"g", "g3"}, {"d", "g2"},
				{"e", "g2"}, {"b", "g1"}, {"a", "g1"}, {"h", grouping.None},
			},
			want: [][]string{{"c"}, {"f", "g"}, {"d", "e"}, {"b", "a"}, {"h"}},
			aggs: 4,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			order, keyOf := build(tc.items...)

			units := Assemble(order, keyOf)

			assert.Equal(t, tc.want, shape(units))
			assert.Equal(t, tc.aggs, Aggregates(units))
		})
	}
}

func TestAssemble_PreservesEveryAsset(t *testing.T) {
	order, keyOf := build(item{"a", "k"}, item{"b", grouping.None}, item{"c", "k"}, item{"d", "k"})

	var flat []*asset.Asset
	for _, u := range Assemble(order, keyOf) {
		flat = append(flat, u.Assets...)
	}
	assert.Equal(t, order, flat)
}

func TestUnit_Aggregate(t *testing.T) {
	assert.True(t, Unit{Key: "k"}.Aggregate())
	assert.False(t, Unit{Key: grouping.None}.Aggregate())
}
