package ast

// Expr is implemented by every expression node in §3.4. Every node carries a
// span; behavior is dispatched by a type switch on the concrete type rather
// than by virtual methods (§9 "Dynamic dispatch").
type Expr interface {
	Node
	exprNode()
}

func (*LiteralExpr) exprNode()     {}
func (*IdentExpr) exprNode()       {}
func (*ListExpr) exprNode()        {}
func (*LambdaExpr) exprNode()      {}
func (*ApplyExpr) exprNode()       {}
func (*IfExpr) exprNode()          {}
func (*LetExpr) exprNode()         {}
func (*LetInExpr) exprNode()       {}
func (*LetRecExpr) exprNode()      {}
func (*LetRecInExpr) exprNode()    {}
func (*RecExpr) exprNode()         {}
func (*MatchExpr) exprNode()       {}
func (*ConstructorExpr) exprNode() {}
func (*TypeDefExpr) exprNode()     {}
func (*RecordExpr) exprNode()      {}
func (*AccessExpr) exprNode()      {}
func (*UpdateExpr) exprNode()      {}
func (*BlockExpr) exprNode()       {}
func (*PerformExpr) exprNode()     {}
func (*HandleExpr) exprNode()      {}
func (*HoleExpr) exprNode()        {}
func (*HashRefExpr) exprNode()     {}

type LiteralExpr struct {
	Base
	Literal Literal
}

type IdentExpr struct {
	Base
	Name string
}

type ListExpr struct {
	Base
	Elems []Expr
}

// Param is one lambda/rec parameter, with an optional annotation.
type Param struct {
	Name string
	Type *TypeExpr // nil when unannotated; checker assigns a fresh var.
}

type LambdaExpr struct {
	Base
	Params []Param
	Body   Expr
}

type ApplyExpr struct {
	Base
	Func Expr
	Args []Expr // arity >= 1, left-associative per §3.4.
}

type IfExpr struct {
	Base
	Cond, Then, Else Expr
}

// LetExpr is a top-level/REPL binding: `(let name [: type] value)`.
type LetExpr struct {
	Base
	Name  string
	Type  *TypeExpr
	Value Expr
}

// LetInExpr is a local binding with a scoped body: `(let name value in body)`
// in the informal grammar's nested equivalent.
type LetInExpr struct {
	Base
	Name  string
	Type  *TypeExpr
	Value Expr
	Body  Expr
}

type LetRecExpr struct {
	Base
	Name  string
	Type  *TypeExpr
	Value Expr
}

type LetRecInExpr struct {
	Base
	Name  string
	Type  *TypeExpr
	Value Expr
	Body  Expr
}

// RecExpr is sugar for a LetRecIn of a lambda: `(rec name (params) [: ret] body)`.
type RecExpr struct {
	Base
	Name    string
	Params  []Param
	RetType *TypeExpr
	Body    Expr
}

// Desugar rewrites Rec into its LetRecIn-of-Lambda form per §4.4.2.
func (r *RecExpr) Desugar(cont Expr) *LetRecInExpr {
	lam := &LambdaExpr{Base{Sp: r.Sp}, r.Params, r.Body}
	return &LetRecInExpr{
		Base:  r.Base,
		Name:  r.Name,
		Value: lam,
		Body:  cont,
	}
}

type MatchCase struct {
	Pattern Pattern
	Body    Expr
}

type MatchExpr struct {
	Base
	Scrutinee Expr
	Cases     []MatchCase
}

type ConstructorExpr struct {
	Base
	Name string
	Args []Expr
}

// ConstructorDef is one constructor clause in a `type` declaration.
type ConstructorDef struct {
	Name   string
	Fields []*TypeExpr
}

// TypeDefExpr introduces a user type and its constructors, per §4.4.2's
// `TypeDef` rule.
type TypeDefExpr struct {
	Base
	Name         string
	Params       []string
	Constructors []ConstructorDef
}

type RecordField struct {
	Name  string
	Value Expr
}

type RecordExpr struct {
	Base
	Fields []RecordField // sorted by name during normalization, not here.
}

type AccessExpr struct {
	Base
	Record Expr
	Field  string
}

type UpdateExpr struct {
	Base
	Record Expr
	Fields []RecordField
}

// BlockExpr is a sequence; its type is the type of the last expression.
type BlockExpr struct {
	Base
	Exprs []Expr
}

type PerformExpr struct {
	Base
	Effect string
	Args   []Expr
}

type HandlerCase struct {
	Effect  string
	Binders []string // operation arguments plus the trailing continuation name.
	Body    Expr
}

type HandleExpr struct {
	Base
	Body     Expr
	Handlers []HandlerCase
	Return   *HandlerReturn // optional `return x -> body` post-processing.
}

type HandlerReturn struct {
	Binder string
	Body   Expr
}

// HoleExpr is a typed placeholder for interactive fill-in, per §3.4.
type HoleExpr struct {
	Base
	Name     string // empty when anonymous.
	TypeHint *TypeExpr
}

// HashRefExpr is a direct reference to a hashed definition, bypassing the
// name index (e.g. `#a1b2c3d4`).
type HashRefExpr struct {
	Base
	Hash string // hex, full or short form (§6.5).
}

func NewLiteralExpr(span Span, lit Literal) *LiteralExpr { return &LiteralExpr{Base{Sp: span}, lit} }
func NewIdentExpr(span Span, name string) *IdentExpr      { return &IdentExpr{Base{Sp: span}, name} }
