package hcl_adapter

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/texgraphgo/internal/ctxlog"
	"github.com/zclconf/go-cty/cty"
)

// isExprDefined checks if an HCL expression was actually present in the source
// code. The HCL decoder populates omitted optional fields with zero-width
// expression objects, so a nil check is insufficient.
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

// literalValue evaluates expr without variables or functions. It returns nil
// when the attribute was omitted or evaluates to null.
func literalValue(ctx context.Context, expr hcl.Expression, attrName string) (*cty.Value, error) {
	if !isExprDefined(ctx, expr, attrName) {
		return nil, nil
	}
	val, diags := expr.Value(nil)
	if diags.HasErrors() {
		return nil, fmt.Errorf("invalid value for '%s': %w", attrName, diags)
	}
	if val.IsNull() {
		return nil, nil
	}
	return &val, nil
}

// literalMap evaluates expr as an object or map literal.
func literalMap(ctx context.Context, expr hcl.Expression, attrName string) (map[string]cty.Value, error) {
	val, err := literalValue(ctx, expr, attrName)
	if err != nil || val == nil {
		return nil, err
	}
	ty := val.Type()
	if !ty.IsObjectType() && !ty.IsMapType() {
		return nil, fmt.Errorf("'%s' must be an object, got %s", attrName, ty.FriendlyName())
	}
	out := make(map[string]cty.Value, val.LengthInt())
	for it := val.ElementIterator(); it.Next(); {
		k, v := it.Element()
		out[k.AsString()] = v
	}
	return out, nil
}

// resolvePath makes p relative to the directory of the file that names it.
func resolvePath(file, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(filepath.Dir(file), p)
}
