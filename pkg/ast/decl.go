package ast

import "github.com/leapstack-labs/leapfmt/pkg/token"

// ---------- Declarations ----------

// CompilationUnit is a whole source file.
type CompilationUnit struct {
	Extent
	Package *PackageDecl // nil when absent
	Imports []*ImportDecl
	Types   []*ClassDecl
	Module  *ModuleDecl // nil unless this is module-info.java
}

func (*CompilationUnit) node()      {}
func (*CompilationUnit) Kind() Kind { return KindCompilationUnit }

// PackageDecl is `package a.b;` with optional annotations.
type PackageDecl struct {
	Extent
	Annotations []*Annotation
	Name        Expr
}

func (*PackageDecl) node()      {}
func (*PackageDecl) Kind() Kind { return KindPackage }

// ImportDecl is a single-type, on-demand or static import. On-demand
// imports end in an Identifier named "*".
type ImportDecl struct {
	Extent
	Static bool
	Name   Expr
}

func (*ImportDecl) node()      {}
func (*ImportDecl) Kind() Kind { return KindImport }

// DeclKind distinguishes the flavours of type declaration.
type DeclKind int

// Type declaration flavours.
const (
	DeclClass DeclKind = iota
	DeclInterface
	DeclEnum
	DeclRecord
	DeclAnnotation
)

// ClassDecl is a class, interface, enum, record or annotation type. An
// anonymous class body is a ClassDecl with an empty Name.
type ClassDecl struct {
	Extent
	Modifiers        *Modifiers
	DeclKind         DeclKind
	Name             string
	TypeParams       []*TypeParameter
	Extends          Expr   // class superclass
	Implements       []Expr // implements list, or extends list of an interface
	Permits          []Expr
	RecordComponents []*VariableDecl
	EnumConstants    []*EnumConstant
	Members          []Node // *ClassDecl, *MethodDecl, *VariableDecl, *Block
}

func (*ClassDecl) node()     {}
func (*ClassDecl) stmtNode() {}

// Kind implements Node.
func (c *ClassDecl) Kind() Kind {
	switch c.DeclKind {
	case DeclInterface:
		return KindInterface
	case DeclEnum:
		return KindEnum
	case DeclRecord:
		return KindRecord
	case DeclAnnotation:
		return KindAnnotationType
	}
	return KindClass
}

// IsAnonymous reports whether the declaration is an anonymous class body.
func (c *ClassDecl) IsAnonymous() bool { return c.Name == "" }

// EnumConstant is one constant of an enum declaration.
type EnumConstant struct {
	Extent
	Modifiers *Modifiers
	Name      string
	HasArgs   bool
	Args      []Expr
	Body      *ClassDecl // nil unless the constant has a class body
}

func (*EnumConstant) node()      {}
func (*EnumConstant) Kind() Kind { return KindEnumConstant }

// MethodDecl is a method, constructor, compact record constructor or
// annotation type element.
type MethodDecl struct {
	Extent
	Modifiers     *Modifiers
	TypeParams    []*TypeParameter
	ReturnType    Expr // nil for constructors
	Name          string
	Compact       bool          // record compact constructor: no parameter list
	ReceiverParam *VariableDecl // `Foo this` receiver, if declared
	Params        []*VariableDecl
	Throws        []Expr
	DefaultValue  Expr   // annotation element default
	Body          *Block // nil for abstract and interface methods
}

func (*MethodDecl) node()      {}
func (*MethodDecl) Kind() Kind { return KindMethod }

// IsConstructor reports whether the method is a constructor.
func (m *MethodDecl) IsConstructor() bool { return m.ReturnType == nil }

// VariableDecl is a field, local variable, parameter, resource, record
// component or pattern variable. `int a, b[];` yields one VariableDecl per
// fragment; the fragments share Modifiers and start position.
type VariableDecl struct {
	Extent
	Modifiers *Modifiers
	Type      Expr // nil for implicitly typed lambda parameters
	Name      string
	NamePos   int
	Init      Expr
}

func (*VariableDecl) node()      {}
func (*VariableDecl) stmtNode()  {}
func (*VariableDecl) Kind() Kind { return KindVariable }

// Modifiers is the modifier keywords and annotations of a declaration, in
// source order. An empty Modifiers has From == To.
type Modifiers struct {
	Extent
	Keywords    []token.Token
	Annotations []*Annotation
}

func (*Modifiers) node()      {}
func (*Modifiers) Kind() Kind { return KindModifiers }

// Empty reports whether there are neither keywords nor annotations.
func (m *Modifiers) Empty() bool {
	return m == nil || (len(m.Keywords) == 0 && len(m.Annotations) == 0)
}

// Has reports whether the keyword appears among the modifiers.
func (m *Modifiers) Has(keyword string) bool {
	if m == nil {
		return false
	}
	for _, k := range m.Keywords {
		if k.Literal == keyword {
			return true
		}
	}
	return false
}

// Annotation is `@Name`, `@Name(value)` or `@Name(k = v, ...)`. Key-value
// arguments are Assignment nodes.
type Annotation struct {
	Extent
	Name      Expr
	HasParens bool
	Args      []Expr
}

func (*Annotation) node()      {}
func (*Annotation) exprNode()  {}
func (*Annotation) Kind() Kind { return KindAnnotation }

// TypeParameter is a type variable declaration with optional bounds.
type TypeParameter struct {
	Extent
	Annotations []*Annotation
	Name        string
	Bounds      []Expr
}

func (*TypeParameter) node()      {}
func (*TypeParameter) Kind() Kind { return KindTypeParameter }

// ---------- Modules ----------

// ModuleDecl is the declaration in module-info.java.
type ModuleDecl struct {
	Extent
	Annotations []*Annotation
	Open        bool
	Name        Expr
	Directives  []Node
}

func (*ModuleDecl) node()      {}
func (*ModuleDecl) Kind() Kind { return KindModule }

// RequiresDirective is `requires [transitive] [static] m;`.
type RequiresDirective struct {
	Extent
	Static     bool
	Transitive bool
	Module     Expr
}

func (*RequiresDirective) node()      {}
func (*RequiresDirective) Kind() Kind { return KindRequires }

// ExportsDirective is `exports p [to m, ...];`.
type ExportsDirective struct {
	Extent
	Package Expr
	To      []Expr
}

func (*ExportsDirective) node()      {}
func (*ExportsDirective) Kind() Kind { return KindExports }

// OpensDirective is `opens p [to m, ...];`.
type OpensDirective struct {
	Extent
	Package Expr
	To      []Expr
}

func (*OpensDirective) node()      {}
func (*OpensDirective) Kind() Kind { return KindOpens }

// UsesDirective is `uses S;`.
type UsesDirective struct {
	Extent
	Service Expr
}

func (*UsesDirective) node()      {}
func (*UsesDirective) Kind() Kind { return KindUses }

// ProvidesDirective is `provides S with I, ...;`.
type ProvidesDirective struct {
	Extent
	Service Expr
	With    []Expr
}

func (*ProvidesDirective) node()      {}
func (*ProvidesDirective) Kind() Kind { return KindProvides }
