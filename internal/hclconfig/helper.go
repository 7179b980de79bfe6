package hclconfig

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/vk/bundlegrid/internal/config"
	"github.com/vk/bundlegrid/internal/ctxlog"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// isExprDefined checks if an HCL expression was actually present in the
// source. The decoder fills omitted optional expressions with zero-width
// placeholders, so a nil check is not enough.
func isExprDefined(ctx context.Context, expr hcl.Expression, attrName string) bool {
	if expr == nil {
		return false
	}
	exprRange := expr.Range()
	isDefined := exprRange.End.Byte > exprRange.Start.Byte

	ctxlog.FromContext(ctx).Debug("Checking if HCL attribute was explicitly defined.",
		"attribute", attrName,
		"hcl_range", exprRange.String(),
		"is_defined", isDefined,
	)
	return isDefined
}

// origin renders where a block starts as "file:line".
func origin(body hcl.Body) string {
	if body == nil {
		return ""
	}
	r := body.MissingItemRange()
	if r.Filename == "" {
		return ""
	}
	return fmt.Sprintf("%s:%d", r.Filename, r.Start.Line)
}

// decodeBrowsers evaluates a browsers map. Values of any primitive type are
// converted to their string form, so `"!IE" = false` is accepted.
func decodeBrowsers(expr hcl.Expression) (map[string]string, error) {
	val, diags := expr.Value(nil)
	if diags.HasErrors() {
		return nil, fmt.Errorf("invalid browsers: %w", diags)
	}
	if val.IsNull() {
		return nil, nil
	}
	converted, err := convert.Convert(val, cty.Map(cty.String))
	if err != nil {
		return nil, fmt.Errorf("invalid browsers at %s: %w", expr.Range(), err)
	}
	if !converted.IsWhollyKnown() {
		return nil, fmt.Errorf("invalid browsers at %s: value is not known", expr.Range())
	}

	out := make(map[string]string, converted.LengthInt())
	for it := converted.ElementIterator(); it.Next(); {
		k, v := it.Element()
		if v.IsNull() {
			continue
		}
		out[k.AsString()] = v.AsString()
	}
	return out, nil
}

// decodeReferences reads an after/before attribute. It accepts a single
// element or a list; each element is a string identity or an asset
// reference.
func decodeReferences(expr hcl.Expression) ([]config.Reference, error) {
	elems, diags := hcl.ExprList(expr)
	if diags.HasErrors() {
		elems = []hcl.Expression{expr}
	}

	refs := make([]config.Reference, 0, len(elems))
	for _, e := range elems {
		ref, err := decodeReference(e)
		if err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}
	return refs, nil
}

func decodeReference(expr hcl.Expression) (config.Reference, error) {
	if traversal, diags := hcl.AbsTraversalForExpr(expr); !diags.HasErrors() {
		id, err := assetID(traversal)
		if err != nil {
			return config.Reference{}, err
		}
		return config.Reference{ID: id, Direct: true}, nil
	}

	val, diags := expr.Value(nil)
	if diags.HasErrors() {
		return config.Reference{}, fmt.Errorf("invalid reference: %w", diags)
	}
	str, err := convert.Convert(val, cty.String)
	if err != nil || str.IsNull() || !str.IsKnown() {
		return config.Reference{}, fmt.Errorf("invalid reference at %s: want a string or an asset reference", expr.Range())
	}
	return config.Reference{ID: str.AsString()}, nil
}

// assetID extracts <id> from asset.<id> or asset["<id>"].
func assetID(t hcl.Traversal) (string, error) {
	if len(t) == 2 && t.RootName() == "asset" {
		switch step := t[1].(type) {
		case hcl.TraverseAttr:
			return step.Name, nil
		case hcl.TraverseIndex:
			if step.Key.Type() == cty.String && step.Key.IsKnown() && !step.Key.IsNull() {
				return step.Key.AsString(), nil
			}
		}
	}
	return "", fmt.Errorf("unsupported reference %s at %s: want asset.<id>", traversalText(t), t.SourceRange())
}

func traversalText(t hcl.Traversal) string {
	return string(hclwrite.TokensForTraversal(t).Bytes())
}
