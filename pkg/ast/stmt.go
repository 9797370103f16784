package ast

// ---------- Statements ----------

// Block is `{ ... }`. Class-body initializers are blocks with Static set
// for `static { ... }`.
type Block struct {
	Extent
	Static bool
	Stmts  []Stmt
}

func (*Block) node()      {}
func (*Block) stmtNode()  {}
func (*Block) Kind() Kind { return KindBlock }

// EmptyStmt is a lone `;`.
type EmptyStmt struct {
	Extent
}

func (*EmptyStmt) node()      {}
func (*EmptyStmt) stmtNode()  {}
func (*EmptyStmt) Kind() Kind { return KindEmptyStatement }

// ExprStmt is an expression used as a statement.
type ExprStmt struct {
	Extent
	X Expr
}

func (*ExprStmt) node()      {}
func (*ExprStmt) stmtNode()  {}
func (*ExprStmt) Kind() Kind { return KindExpressionStatement }

// IfStmt is `if (Cond) Then [else Else]`.
type IfStmt struct {
	Extent
	Cond Expr
	Then Stmt
	Else Stmt
}

func (*IfStmt) node()      {}
func (*IfStmt) stmtNode()  {}
func (*IfStmt) Kind() Kind { return KindIf }

// WhileStmt is `while (Cond) Body`.
type WhileStmt struct {
	Extent
	Cond Expr
	Body Stmt
}

func (*WhileStmt) node()      {}
func (*WhileStmt) stmtNode()  {}
func (*WhileStmt) Kind() Kind { return KindWhileLoop }

// DoWhileStmt is `do Body while (Cond);`.
type DoWhileStmt struct {
	Extent
	Body Stmt
	Cond Expr
}

func (*DoWhileStmt) node()      {}
func (*DoWhileStmt) stmtNode()  {}
func (*DoWhileStmt) Kind() Kind { return KindDoWhileLoop }

// ForStmt is the classic three-clause for loop. Init holds either
// variable declarations or expression statements.
type ForStmt struct {
	Extent
	Init   []Stmt
	Cond   Expr
	Update []*ExprStmt
	Body   Stmt
}

func (*ForStmt) node()      {}
func (*ForStmt) stmtNode()  {}
func (*ForStmt) Kind() Kind { return KindForLoop }

// ForEachStmt is `for (Var : X) Body`.
type ForEachStmt struct {
	Extent
	Var  *VariableDecl
	X    Expr
	Body Stmt
}

func (*ForEachStmt) node()      {}
func (*ForEachStmt) stmtNode()  {}
func (*ForEachStmt) Kind() Kind { return KindEnhancedForLoop }

// LabeledStmt is `Label: Body`.
type LabeledStmt struct {
	Extent
	Label string
	Body  Stmt
}

func (*LabeledStmt) node()      {}
func (*LabeledStmt) stmtNode()  {}
func (*LabeledStmt) Kind() Kind { return KindLabeledStatement }

// SwitchStmt is a switch statement.
type SwitchStmt struct {
	Extent
	Selector Expr
	Cases    []*Case
}

func (*SwitchStmt) node()      {}
func (*SwitchStmt) stmtNode()  {}
func (*SwitchStmt) Kind() Kind { return KindSwitch }

// Case is one arm of a switch. A `default` arm has IsDefault set and no
// labels; `case null, default` carries a DefaultLabel among its labels.
// Arrow arms keep their single body in Body; colon arms keep Stmts.
type Case struct {
	Extent
	IsDefault bool
	Labels    []Expr
	Guard     Expr
	Arrow     bool
	Body      Node // Expr, *Block or *ThrowStmt
	Stmts     []Stmt
}

func (*Case) node()      {}
func (*Case) Kind() Kind { return KindCase }

// TryStmt is a try statement with optional resources.
type TryStmt struct {
	Extent
	Resources []Node // *VariableDecl or Expr
	Body      *Block
	Catches   []*Catch
	Finally   *Block
}

func (*TryStmt) node()      {}
func (*TryStmt) stmtNode()  {}
func (*TryStmt) Kind() Kind { return KindTry }

// Catch is one catch clause; Param.Type is a UnionType for multi-catch.
type Catch struct {
	Extent
	Param *VariableDecl
	Body  *Block
}

func (*Catch) node()      {}
func (*Catch) Kind() Kind { return KindCatch }

// SynchronizedStmt is `synchronized (Lock) Body`.
type SynchronizedStmt struct {
	Extent
	Lock Expr
	Body *Block
}

func (*SynchronizedStmt) node()      {}
func (*SynchronizedStmt) stmtNode()  {}
func (*SynchronizedStmt) Kind() Kind { return KindSynchronized }

// ReturnStmt is `return [X];`.
type ReturnStmt struct {
	Extent
	X Expr
}

func (*ReturnStmt) node()      {}
func (*ReturnStmt) stmtNode()  {}
func (*ReturnStmt) Kind() Kind { return KindReturn }

// ThrowStmt is `throw X;`.
type ThrowStmt struct {
	Extent
	X Expr
}

func (*ThrowStmt) node()      {}
func (*ThrowStmt) stmtNode()  {}
func (*ThrowStmt) Kind() Kind { return KindThrow }

// BreakStmt is `break [Label];`.
type BreakStmt struct {
	Extent
	Label string
}

func (*BreakStmt) node()      {}
func (*BreakStmt) stmtNode()  {}
func (*BreakStmt) Kind() Kind { return KindBreak }

// ContinueStmt is `continue [Label];`.
type ContinueStmt struct {
	Extent
	Label string
}

func (*ContinueStmt) node()      {}
func (*ContinueStmt) stmtNode()  {}
func (*ContinueStmt) Kind() Kind { return KindContinue }

// YieldStmt is `yield X;`.
type YieldStmt struct {
	Extent
	X Expr
}

func (*YieldStmt) node()      {}
func (*YieldStmt) stmtNode()  {}
func (*YieldStmt) Kind() Kind { return KindYield }

// AssertStmt is `assert Cond [: Detail];`.
type AssertStmt struct {
	Extent
	Cond   Expr
	Detail Expr
}

func (*AssertStmt) node()      {}
func (*AssertStmt) stmtNode()  {}
func (*AssertStmt) Kind() Kind { return KindAssert }
