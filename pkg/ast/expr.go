package ast

import "strings"

// ---------- Expressions ----------

// Identifier is a simple name, including `this`, `super` and the `*` of
// an on-demand import.
type Identifier struct {
	Extent
	Name string
}

func (*Identifier) node()      {}
func (*Identifier) exprNode()  {}
func (*Identifier) Kind() Kind { return KindIdentifier }

// MemberSelect is `X.Name`; also `Foo.class`, `Outer.this` and qualified
// type names.
type MemberSelect struct {
	Extent
	X       Expr
	Name    string
	NamePos int
}

func (*MemberSelect) node()      {}
func (*MemberSelect) exprNode()  {}
func (*MemberSelect) Kind() Kind { return KindMemberSelect }

// MethodInvocation is a call. Method is an Identifier or MemberSelect
// naming the method; explicit type arguments sit on the invocation.
type MethodInvocation struct {
	Extent
	Method   Expr
	TypeArgs []Expr
	Args     []Expr
}

func (*MethodInvocation) node()      {}
func (*MethodInvocation) exprNode()  {}
func (*MethodInvocation) Kind() Kind { return KindMethodInvocation }

// NewClass is an instance creation expression, possibly qualified and
// possibly with an anonymous class body.
type NewClass struct {
	Extent
	Outer    Expr // `outer.new Inner()`
	TypeArgs []Expr
	Type     Expr
	Args     []Expr
	Body     *ClassDecl
}

func (*NewClass) node()      {}
func (*NewClass) exprNode()  {}
func (*NewClass) Kind() Kind { return KindNewClass }

// NewArray is an array creation expression or a bare array initializer
// (Type == nil). Type is the element type, wrapped in ArrayType for each
// trailing `[]` without a dimension expression. DimAnnotations holds the
// annotations written before each dimension expression.
type NewArray struct {
	Extent
	Type           Expr
	Annotations    []*Annotation // on the first empty dimension of an initialized creation
	Dims           []Expr
	DimAnnotations [][]*Annotation
	HasInit        bool
	Init           []Expr
}

func (*NewArray) node()      {}
func (*NewArray) exprNode()  {}
func (*NewArray) Kind() Kind { return KindNewArray }

// ArrayAccess is `X[Index]`.
type ArrayAccess struct {
	Extent
	X     Expr
	Index Expr
}

func (*ArrayAccess) node()      {}
func (*ArrayAccess) exprNode()  {}
func (*ArrayAccess) Kind() Kind { return KindArrayAccess }

// Parens is `(X)`.
type Parens struct {
	Extent
	X Expr
}

func (*Parens) node()      {}
func (*Parens) exprNode()  {}
func (*Parens) Kind() Kind { return KindParenthesized }

// TypeCast is `(Type) X`.
type TypeCast struct {
	Extent
	Type Expr
	X    Expr
}

func (*TypeCast) node()      {}
func (*TypeCast) exprNode()  {}
func (*TypeCast) Kind() Kind { return KindTypeCast }

// InstanceOf is `X instanceof Type` or `X instanceof Type name`.
type InstanceOf struct {
	Extent
	X       Expr
	Type    Expr
	Pattern *BindingPattern
}

func (*InstanceOf) node()      {}
func (*InstanceOf) exprNode()  {}
func (*InstanceOf) Kind() Kind { return KindInstanceOf }

// BindingPattern is a type pattern introducing a variable.
type BindingPattern struct {
	Extent
	Var *VariableDecl
}

func (*BindingPattern) node()      {}
func (*BindingPattern) exprNode()  {}
func (*BindingPattern) Kind() Kind { return KindBindingPattern }

// DefaultLabel is the `default` in `case null, default`.
type DefaultLabel struct {
	Extent
}

func (*DefaultLabel) node()      {}
func (*DefaultLabel) exprNode()  {}
func (*DefaultLabel) Kind() Kind { return KindDefaultCaseLabel }

// Conditional is `Cond ? Then : Else`.
type Conditional struct {
	Extent
	Cond Expr
	Then Expr
	Else Expr
}

func (*Conditional) node()      {}
func (*Conditional) exprNode()  {}
func (*Conditional) Kind() Kind { return KindConditional }

// Lambda is a lambda expression. Body is an Expr or *Block.
type Lambda struct {
	Extent
	Params        []*VariableDecl
	Parenthesized bool
	Body          Node
}

func (*Lambda) node()      {}
func (*Lambda) exprNode()  {}
func (*Lambda) Kind() Kind { return KindLambda }

// HasExpressionBody reports whether the body is an expression.
func (l *Lambda) HasExpressionBody() bool {
	_, ok := l.Body.(*Block)
	return !ok
}

// MemberReference is `X::Name` or `X::new`.
type MemberReference struct {
	Extent
	X        Expr
	TypeArgs []Expr
	Name     string
}

func (*MemberReference) node()      {}
func (*MemberReference) exprNode()  {}
func (*MemberReference) Kind() Kind { return KindMemberReference }

// SwitchExpr is a switch used as an expression.
type SwitchExpr struct {
	Extent
	Selector Expr
	Cases    []*Case
}

func (*SwitchExpr) node()      {}
func (*SwitchExpr) exprNode()  {}
func (*SwitchExpr) Kind() Kind { return KindSwitchExpression }

// Assignment is `Var = Value`; also the key-value pairs of annotations.
type Assignment struct {
	Extent
	Var   Expr
	Value Expr
}

func (*Assignment) node()      {}
func (*Assignment) exprNode()  {}
func (*Assignment) Kind() Kind { return KindAssignment }

// CompoundAssignment is `Var op= Value`.
type CompoundAssignment struct {
	Extent
	Op    string
	Var   Expr
	Value Expr
}

func (*CompoundAssignment) node()     {}
func (*CompoundAssignment) exprNode() {}

// Kind implements Node.
func (c *CompoundAssignment) Kind() Kind {
	k, _ := CompoundKind(c.Op)
	return k
}

// Unary is a prefix or postfix unary expression.
type Unary struct {
	Extent
	Op      string
	Postfix bool
	X       Expr
}

func (*Unary) node()     {}
func (*Unary) exprNode() {}

// Kind implements Node.
func (u *Unary) Kind() Kind {
	switch u.Op {
	case "++":
		if u.Postfix {
			return KindPostfixIncrement
		}
		return KindPrefixIncrement
	case "--":
		if u.Postfix {
			return KindPostfixDecrement
		}
		return KindPrefixDecrement
	case "+":
		return KindUnaryPlus
	case "-":
		return KindUnaryMinus
	case "~":
		return KindBitwiseComplement
	}
	return KindLogicalComplement
}

// Binary is `X op Y`.
type Binary struct {
	Extent
	Op string
	X  Expr
	Y  Expr
}

func (*Binary) node()     {}
func (*Binary) exprNode() {}

// Kind implements Node.
func (b *Binary) Kind() Kind {
	k, _ := BinaryKind(b.Op)
	return k
}

// Literal is a literal token, kept verbatim.
type Literal struct {
	Extent
	LitKind Kind
	Value   string
}

func (*Literal) node()     {}
func (*Literal) exprNode() {}

// Kind implements Node.
func (l *Literal) Kind() Kind { return l.LitKind }

// IsTextBlock reports whether the literal is a `"""` text block.
func (l *Literal) IsTextBlock() bool {
	return l.LitKind == KindStringLiteral && strings.HasPrefix(l.Value, `"""`)
}

// ---------- Types ----------

// PrimitiveType is a primitive type keyword or `void`.
type PrimitiveType struct {
	Extent
	Name string
}

func (*PrimitiveType) node()      {}
func (*PrimitiveType) exprNode()  {}
func (*PrimitiveType) Kind() Kind { return KindPrimitiveType }

// ArrayType is one array dimension around Elem. Nested ArrayTypes follow
// source order: the outermost node is the first bracket pair written,
// whether it appears after the element type or after a declarator name.
// Annotations are those written before this bracket pair; Varargs marks a
// `...` dimension.
type ArrayType struct {
	Extent
	Elem        Expr
	Annotations []*Annotation
	Varargs     bool
}

func (*ArrayType) node()      {}
func (*ArrayType) exprNode()  {}
func (*ArrayType) Kind() Kind { return KindArrayType }

// ParameterizedType is `Type<Args>`; the diamond has no Args.
type ParameterizedType struct {
	Extent
	Type Expr
	Args []Expr
}

func (*ParameterizedType) node()      {}
func (*ParameterizedType) exprNode()  {}
func (*ParameterizedType) Kind() Kind { return KindParameterizedType }

// BoundKind is the bound of a wildcard.
type BoundKind int

// Wildcard bounds.
const (
	Unbounded BoundKind = iota
	ExtendsBound
	SuperBound
)

// Wildcard is `?`, `? extends T` or `? super T`.
type Wildcard struct {
	Extent
	BoundKind BoundKind
	Bound     Expr
}

func (*Wildcard) node()      {}
func (*Wildcard) exprNode()  {}
func (*Wildcard) Kind() Kind { return KindWildcard }

// UnionType is the `A | B` of a multi-catch.
type UnionType struct {
	Extent
	Alternatives []Expr
}

func (*UnionType) node()      {}
func (*UnionType) exprNode()  {}
func (*UnionType) Kind() Kind { return KindUnionType }

// IntersectionType is the `A & B` of a cast or type bound.
type IntersectionType struct {
	Extent
	Bounds []Expr
}

func (*IntersectionType) node()      {}
func (*IntersectionType) exprNode()  {}
func (*IntersectionType) Kind() Kind { return KindIntersectionType }

// AnnotatedType is a type preceded by type annotations, including the
// `pkg.@A Name` form where Underlying is a MemberSelect.
type AnnotatedType struct {
	Extent
	Annotations []*Annotation
	Underlying  Expr
}

func (*AnnotatedType) node()      {}
func (*AnnotatedType) exprNode()  {}
func (*AnnotatedType) Kind() Kind { return KindAnnotatedType }
