package hash

import (
	"github.com/lumenlang/lumen/ast"
	"github.com/lumenlang/lumen/types"
)

// EncodeExpr returns the canonical byte serialization of a normalized
// expression (§4.6), for use as a persistence payload.
func EncodeExpr(expr ast.Expr) []byte {
	e := &encoder{}
	e.serializeExpr(ast.Normalize(expr))
	return e.buf
}

// EncodeType returns the canonical byte serialization of a normalized
// semantic type, for use as a persistence payload.
func EncodeType(t *types.Type) []byte {
	e := &encoder{}
	e.serializeType(types.Normalize(t))
	return e.buf
}
