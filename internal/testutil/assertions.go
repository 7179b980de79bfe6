package testutil

import (
	"encoding/json"
	"slices"
	"testing"

	"github.com/stretchr/testify/require"
)

// PlanOutput mirrors the JSON document printed by the app.
type PlanOutput struct {
	Order []string `json:"order"`
	Units []struct {
		Key       string   `json:"key"`
		Aggregate bool     `json:"aggregate"`
		Assets    []string `json:"assets"`
	} `json:"units"`
	Unresolved []string `json:"unresolved"`
}

// Groups returns the asset IDs of every unit, in delivery order.
func (p *PlanOutput) Groups() [][]string {
	out := make([][]string, len(p.Units))
	for i, u := range p.Units {
		out[i] = u.Assets
	}
	return out
}

// DecodePlan requires a successful run with json output and decodes it.
func DecodePlan(t *testing.T, result *HarnessResult) *PlanOutput {
	t.Helper()
	require.NoError(t, result.Err)

	var plan PlanOutput
	require.NoError(t, json.Unmarshal([]byte(result.Output), &plan), "output is not a json plan: %s", result.Output)
	return &plan
}

// AssertBefore checks that first is delivered before second.
func AssertBefore(t *testing.T, plan *PlanOutput, first, second string) {
	t.Helper()

	i := slices.Index(plan.Order, first)
	j := slices.Index(plan.Order, second)
	require.NotEqual(t, -1, i, "asset %q not in delivery order %v", first, plan.Order)
	require.NotEqual(t, -1, j, "asset %q not in delivery order %v", second, plan.Order)
	require.Less(t, i, j, "expected %q before %q in %v", first, second, plan.Order)
}

// AssertSameUnit checks that all ids share one aggregate.
func AssertSameUnit(t *testing.T, plan *PlanOutput, ids ...string) {
	t.Helper()

	for _, u := range plan.Units {
		if !slices.Contains(u.Assets, ids[0]) {
			continue
		}
		for _, id := range ids[1:] {
			require.Contains(t, u.Assets, id, "expected %v in one unit, got %v", ids, plan.Groups())
		}
		return
	}
	require.Failf(t, "asset not planned", "asset %q not in any unit", ids[0])
}
