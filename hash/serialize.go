// Package hash implements the canonical serializer and content-addressing
// scheme of §4.6: a deterministic byte encoding of a normalized AST and its
// type, hashed with SHA-256 via opencontainers/go-digest.
package hash

import (
	"encoding/binary"
	"math"
	"sort"

	"github.com/lumenlang/lumen/ast"
	"github.com/lumenlang/lumen/types"
)

// tag bytes, one per constructor. Values are arbitrary but must stay stable
// once chosen, since changing one changes every existing hash.
const (
	tagLiteralInt byte = iota + 1
	tagLiteralFloat
	tagLiteralBool
	tagLiteralString
	tagIdent
	tagHole
	tagHashRef
	tagList
	tagLambda
	tagApply
	tagIf
	tagLet
	tagLetIn
	tagLetRec
	tagLetRecIn
	tagRec
	tagMatch
	tagConstructor
	tagTypeDef
	tagRecord
	tagAccess
	tagUpdate
	tagBlock
	tagPerform
	tagHandle

	tagPatternWildcard
	tagPatternVar
	tagPatternLiteral
	tagPatternList
	tagPatternConstructor

	tagTypePrim
	tagTypeVar
	tagTypeFun
	tagTypeList
	tagTypeUser
	tagTypeRecord
)

// encoder accumulates the canonical byte stream.
type encoder struct {
	buf []byte
}

func (e *encoder) byte(b byte) { e.buf = append(e.buf, b) }

func (e *encoder) int64(n int64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], uint64(n))
	e.buf = append(e.buf, b[:]...)
}

func (e *encoder) float64(f float64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], math.Float64bits(f))
	e.buf = append(e.buf, b[:]...)
}

func (e *encoder) bool(v bool) {
	if v {
		e.byte(1)
	} else {
		e.byte(0)
	}
}

func (e *encoder) string(s string) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], uint32(len(s)))
	e.buf = append(e.buf, b[:]...)
	e.buf = append(e.buf, s...)
}

// length writes a 4-byte little-endian count prefix for a variable-length
// child sequence.
func (e *encoder) length(n int) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], uint32(n))
	e.buf = append(e.buf, b[:]...)
}

// serializeExpr walks e (already ast.Normalize-d) emitting a tag byte per
// constructor followed by its length-prefixed children, per §4.6.
func (e *encoder) serializeExpr(expr ast.Expr) {
	switch n := expr.(type) {
	case *ast.LiteralExpr:
		e.serializeLiteral(n.Literal)

	case *ast.IdentExpr:
		e.byte(tagIdent)
		e.string(n.Name)

	case *ast.HoleExpr:
		e.byte(tagHole)
		e.string(n.Name)

	case *ast.HashRefExpr:
		e.byte(tagHashRef)
		e.string(n.Hash)

	case *ast.ListExpr:
		e.byte(tagList)
		e.length(len(n.Elems))
		for _, el := range n.Elems {
			e.serializeExpr(el)
		}

	case *ast.LambdaExpr:
		e.byte(tagLambda)
		e.serializeParams(n.Params)
		e.serializeExpr(n.Body)

	case *ast.ApplyExpr:
		e.byte(tagApply)
		e.serializeExpr(n.Func)
		e.length(len(n.Args))
		for _, a := range n.Args {
			e.serializeExpr(a)
		}

	case *ast.IfExpr:
		e.byte(tagIf)
		e.serializeExpr(n.Cond)
		e.serializeExpr(n.Then)
		e.serializeExpr(n.Else)

	case *ast.LetExpr:
		e.byte(tagLet)
		e.string(n.Name)
		e.serializeExpr(n.Value)

	case *ast.LetInExpr:
		e.byte(tagLetIn)
		e.string(n.Name)
		e.serializeExpr(n.Value)
		e.serializeExpr(n.Body)

	case *ast.LetRecExpr:
		e.byte(tagLetRec)
		e.string(n.Name)
		e.serializeExpr(n.Value)

	case *ast.LetRecInExpr:
		e.byte(tagLetRecIn)
		e.string(n.Name)
		e.serializeExpr(n.Value)
		e.serializeExpr(n.Body)

	case *ast.RecExpr:
		e.byte(tagRec)
		e.string(n.Name)
		e.serializeParams(n.Params)
		e.serializeExpr(n.Body)

	case *ast.MatchExpr:
		e.byte(tagMatch)
		e.serializeExpr(n.Scrutinee)
		e.length(len(n.Cases))
		for _, c := range n.Cases {
			e.serializePattern(c.Pattern)
			e.serializeExpr(c.Body)
		}

	case *ast.ConstructorExpr:
		e.byte(tagConstructor)
		e.string(n.Name)
		e.length(len(n.Args))
		for _, a := range n.Args {
			e.serializeExpr(a)
		}

	case *ast.TypeDefExpr:
		e.byte(tagTypeDef)
		e.string(n.Name)
		e.length(len(n.Params))
		for _, p := range n.Params {
			e.string(p)
		}
		e.length(len(n.Constructors))
		for _, c := range n.Constructors {
			e.string(c.Name)
			e.length(len(c.Fields))
			for _, f := range c.Fields {
				e.serializeTypeExpr(f)
			}
		}

	case *ast.RecordExpr:
		e.byte(tagRecord)
		e.serializeRecordFields(n.Fields)

	case *ast.AccessExpr:
		e.byte(tagAccess)
		e.serializeExpr(n.Record)
		e.string(n.Field)

	case *ast.UpdateExpr:
		e.byte(tagUpdate)
		e.serializeExpr(n.Record)
		e.serializeRecordFields(n.Fields)

	case *ast.BlockExpr:
		e.byte(tagBlock)
		e.length(len(n.Exprs))
		for _, sub := range n.Exprs {
			e.serializeExpr(sub)
		}

	case *ast.PerformExpr:
		e.byte(tagPerform)
		e.string(n.Effect)
		e.length(len(n.Args))
		for _, a := range n.Args {
			e.serializeExpr(a)
		}

	case *ast.HandleExpr:
		e.byte(tagHandle)
		e.serializeExpr(n.Body)
		e.length(len(n.Handlers))
		for _, h := range n.Handlers {
			e.string(h.Effect)
			e.length(len(h.Binders))
			for _, b := range h.Binders {
				e.string(b)
			}
			e.serializeExpr(h.Body)
		}
		e.bool(n.Return != nil)
		if n.Return != nil {
			e.string(n.Return.Binder)
			e.serializeExpr(n.Return.Body)
		}
	}
}

func (e *encoder) serializeLiteral(lit ast.Literal) {
	switch lit.Kind {
	case ast.IntLit:
		e.byte(tagLiteralInt)
		e.int64(lit.Int)
	case ast.FloatLit:
		e.byte(tagLiteralFloat)
		e.float64(lit.Float)
	case ast.BoolLit:
		e.byte(tagLiteralBool)
		e.bool(lit.Bool)
	case ast.StringLit:
		e.byte(tagLiteralString)
		e.string(lit.String)
	}
}

func (e *encoder) serializeParams(params []ast.Param) {
	e.length(len(params))
	for _, p := range params {
		e.string(p.Name)
		e.bool(p.Type != nil)
		if p.Type != nil {
			e.serializeTypeExpr(p.Type)
		}
	}
}

func (e *encoder) serializeRecordFields(fields []ast.RecordField) {
	sorted := append([]ast.RecordField(nil), fields...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })
	e.length(len(sorted))
	for _, f := range sorted {
		e.string(f.Name)
		e.serializeExpr(f.Value)
	}
}

func (e *encoder) serializePattern(p ast.Pattern) {
	switch n := p.(type) {
	case *ast.WildcardPattern:
		e.byte(tagPatternWildcard)
	case *ast.VarPattern:
		e.byte(tagPatternVar)
		e.string(n.Name)
	case *ast.LiteralPattern:
		e.byte(tagPatternLiteral)
		e.serializeLiteral(n.Literal)
	case *ast.ListPattern:
		e.byte(tagPatternList)
		e.length(len(n.Elems))
		for _, el := range n.Elems {
			e.serializePattern(el)
		}
	case *ast.ConstructorPattern:
		e.byte(tagPatternConstructor)
		e.string(n.Name)
		e.length(len(n.Args))
		for _, a := range n.Args {
			e.serializePattern(a)
		}
	}
}

// serializeTypeExpr serializes the surface-syntax type annotations that
// appear inside an expression (lambda param types, constructor field
// types); serializeType below handles the checker's resolved semantic
// types used for a definition's principal type.
func (e *encoder) serializeTypeExpr(t *ast.TypeExpr) {
	e.bool(t == nil)
	if t == nil {
		return
	}
	e.string(t.Name)
	e.length(len(t.Params))
	for _, p := range t.Params {
		e.serializeTypeExpr(p)
	}
	e.bool(t.List != nil)
	if t.List != nil {
		e.serializeTypeExpr(t.List)
	}
	sorted := append([]ast.RecordFieldType(nil), t.Record...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })
	e.length(len(sorted))
	for _, f := range sorted {
		e.string(f.Name)
		e.serializeTypeExpr(f.Type)
	}
	e.bool(t.Fun != nil)
	if t.Fun != nil {
		e.serializeTypeExpr(t.Fun.From)
		e.serializeTypeExpr(t.Fun.To)
		e.bool(t.Fun.Row != nil)
		if t.Fun.Row != nil {
			e.length(len(t.Fun.Row.Names))
			for _, n := range t.Fun.Row.Names {
				e.string(n)
			}
			e.bool(t.Fun.Row.Var != "")
			e.string(t.Fun.Row.Var)
		}
	}
}

// serializeType serializes a resolved semantic type (§3.3), used for a
// definition's principal type signature.
func (e *encoder) serializeType(t *types.Type) {
	if t == nil {
		e.byte(0)
		return
	}
	switch t.Kind {
	case types.KindPrim:
		e.byte(tagTypePrim)
		e.string(t.Name)
	case types.KindVar:
		e.byte(tagTypeVar)
		e.length(t.Var)
	case types.KindFun:
		e.byte(tagTypeFun)
		e.serializeType(t.From)
		e.serializeType(t.To)
		e.bool(t.Row != nil)
		if t.Row != nil {
			labels := append([]string(nil), t.Row.Labels...)
			sort.Strings(labels)
			e.length(len(labels))
			for _, l := range labels {
				e.string(l)
			}
			e.bool(t.Row.HasVar)
			if t.Row.HasVar {
				e.length(t.Row.Var)
			}
		}
	case types.KindList:
		e.byte(tagTypeList)
		e.serializeType(t.Elem)
	case types.KindUser:
		e.byte(tagTypeUser)
		e.string(t.Name)
		e.length(len(t.Params))
		for _, p := range t.Params {
			e.serializeType(p)
		}
	case types.KindRecord:
		e.byte(tagTypeRecord)
		sorted := append([]types.Field(nil), t.Fields...)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })
		e.length(len(sorted))
		for _, f := range sorted {
			e.string(f.Name)
			e.serializeType(f.Type)
		}
	}
}
