// This file contains the logic for parsing attribute type expressions (e.g.
// `number`, `list(string)`) into attribute primitive types.

package memprt

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/specialistvlad/palladiogo/internal/attrmap"
	"github.com/specialistvlad/palladiogo/internal/ctxlog"
)

// typeExprToPrimitiveType converts an HCL type expression into a primitive
// type. Besides the HCL keywords `bool`, `number` and `string` the keyword
// `int` selects 32 bit integers.
func typeExprToPrimitiveType(ctx context.Context, expr hcl.Expression) (attrmap.PrimitiveType, error) {
	logger := ctxlog.FromContext(ctx)

	switch v := expr.(type) {
	case *hclsyntax.FunctionCallExpr:
		logger.Debug("Parsing type expression as a function call.", "call", v.Name)
		if v.Name != "list" {
			return attrmap.Undefined, fmt.Errorf("unknown type constructor function %q", v.Name)
		}
		if len(v.Args) != 1 {
			return attrmap.Undefined, fmt.Errorf("list requires exactly one argument, got %d", len(v.Args))
		}
		elem, err := typeExprToPrimitiveType(ctx, v.Args[0])
		if err != nil {
			return attrmap.Undefined, err
		}
		if elem.IsArray() {
			return attrmap.Undefined, fmt.Errorf("nested lists are not supported")
		}
		return elem - attrmap.Bool + attrmap.BoolArray, nil

	case *hclsyntax.ScopeTraversalExpr:
		if len(v.Traversal) != 1 {
			return attrmap.Undefined, fmt.Errorf("invalid type keyword: traversal path is not a single identifier")
		}
		rootName := v.Traversal.RootName()
		logger.Debug("Parsing type expression as a primitive.", "keyword", rootName)
		switch rootName {
		case "bool":
			return attrmap.Bool, nil
		case "int":
			return attrmap.Int, nil
		case "number":
			return attrmap.Float, nil
		case "string":
			return attrmap.String, nil
		default:
			return attrmap.Undefined, fmt.Errorf("unknown primitive type %q", rootName)
		}

	default:
		return attrmap.Undefined, fmt.Errorf("unsupported expression for type definition: %T", v)
	}
}

// isExprDefined reports whether an optional attribute was present in the
// source. gohcl fills omitted optional expressions with a zero-width
// placeholder.
func isExprDefined(ctx context.Context, expr hcl.Expression, attrName string) bool {
	if expr == nil {
		return false
	}
	rng := expr.Range()
	defined := rng.End.Byte > rng.Start.Byte
	ctxlog.FromContext(ctx).Debug("Checking if HCL attribute was explicitly defined.",
		"attribute", attrName,
		"hcl_range", rng.String(),
		"is_defined", defined,
	)
	return defined
}
