package format

import (
	"github.com/leapstack-labs/leapfmt/pkg/ast"
	"github.com/leapstack-labs/leapfmt/pkg/doc"
)

// visitBlock lays out a braced block. collapse allows an empty block to
// print as "{}"; lead and trail allow a preserved blank line after the
// opening and before the closing brace.
func (p *planner) visitBlock(n *ast.Block, collapse, lead, trail bool) {
	p.b.Sync(n.Pos())
	if n.Static {
		p.b.Token("static")
		p.b.Space()
	}
	if collapse && len(n.Stmts) == 0 {
		if p.b.Peek() == ";" {
			p.b.Token(";")
			return
		}
		p.openBrace()
		p.b.BlankLineWanted(doc.No)
		p.closeBrace()
		return
	}
	p.b.Open(doc.Zero)
	p.b.Open(p.plusTwo)
	p.openBrace()
	p.b.BlankLineWanted(allowBlank(lead))
	p.visitStatements(n.Stmts)
	p.b.Close()
	p.forcedBreak()
	p.b.Close()
	p.b.BlankLineWanted(allowBlank(trail))
	p.markForPartialFormat()
	p.closeBrace()
}

func allowBlank(ok bool) doc.BlankLineWanted {
	if ok {
		return doc.Preserve
	}
	return doc.No
}

// visitStatement lays out the body of a control statement: a block stays
// on the same line, anything else moves to the next line when it does not
// fit.
func (p *planner) visitStatement(s ast.Stmt, collapse, lead, trail bool) {
	p.b.Sync(s.Pos())
	if blk, ok := s.(*ast.Block); ok {
		p.b.Space()
		p.visitBlock(blk, collapse, lead, trail)
		return
	}
	p.b.Open(p.plusTwo)
	p.breakOp()
	p.scan(s)
	p.b.Close()
}

func (p *planner) visitStatements(stmts []ast.Stmt) {
	p.dropEmptyDeclarations()
	for i := 0; i < len(stmts); i++ {
		p.forcedBreak()
		if i > 0 {
			p.b.BlankLineWanted(doc.Preserve)
		}
		p.markForPartialFormat()
		if fragments := variableFragments(stmts, i); len(fragments) > 0 {
			i += len(fragments) - 1
			p.b.Sync(fragments[0].Pos())
			p.visitVariables(fragments, declNone, localDirection(fragments[0].Modifiers))
			continue
		}
		p.scan(stmts[i])
	}
}

// visitIf flattens an else-if chain so every branch sits at one level.
// Each else starts on a new line.
func (p *planner) visitIf(n *ast.IfStmt) {
	var conds []ast.Expr
	var thens []ast.Stmt
	last := n
	for {
		conds = append(conds, last.Cond)
		thens = append(thens, last.Then)
		next, ok := last.Else.(*ast.IfStmt)
		if !ok {
			break
		}
		last = next
	}
	p.b.Open(doc.Zero)
	for i := range conds {
		if i > 0 {
			p.forcedBreak()
			p.b.Token("else")
			p.b.Space()
		}
		p.b.Token("if")
		p.b.Space()
		p.b.Token("(")
		p.scan(conds[i])
		p.b.Token(")")
		onlyClause := len(conds) == 1 && last.Else == nil
		trailing := i < len(conds)-1 || last.Else != nil
		p.visitStatement(thens[i], onlyClause, true, trailing)
	}
	if last.Else != nil {
		p.forcedBreak()
		p.b.Token("else")
		p.visitStatement(last.Else, true, true, false)
	}
	p.b.Close()
}

func (p *planner) visitWhile(n *ast.WhileStmt) {
	p.b.Token("while")
	p.b.Space()
	p.b.Token("(")
	p.scan(n.Cond)
	p.b.Token(")")
	p.visitStatement(n.Body, true, true, false)
}

func (p *planner) visitDoWhile(n *ast.DoWhileStmt) {
	p.b.Token("do")
	p.visitStatement(n.Body, true, true, true)
	if _, ok := n.Body.(*ast.Block); ok {
		p.b.Space()
	} else {
		p.breakOp()
	}
	p.b.Token("while")
	p.b.Space()
	p.b.Token("(")
	p.scan(n.Cond)
	p.b.Token(")")
	p.b.Token(";")
}

func (p *planner) visitFor(n *ast.ForStmt) {
	p.b.Token("for")
	p.b.Space()
	p.b.Token("(")
	p.b.Open(p.plusFour)
	initIndent := doc.Zero
	if len(n.Init) > 1 && n.Init[0].Kind() == ast.KindExpressionStatement {
		initIndent = p.plusFour
	}
	p.b.Open(initIndent)
	switch {
	case len(n.Init) == 0:
		p.b.Token(";")
	case n.Init[0].Kind() == ast.KindVariable:
		fragments := variableFragments(n.Init, 0)
		p.b.Sync(fragments[0].Pos())
		p.visitVariables(fragments, declNone, horizontal)
	default:
		p.b.Open(doc.Zero)
		for i, s := range n.Init {
			if i > 0 {
				p.b.Token(",")
				p.breakOp()
			}
			p.scan(s.(*ast.ExprStmt).X)
		}
		p.b.Token(";")
		p.b.Close()
	}
	p.b.Close()
	p.breakOp()
	if n.Cond != nil {
		p.scan(n.Cond)
	}
	p.b.Token(";")
	if len(n.Update) > 0 {
		p.breakOp()
		indent := doc.Zero
		if len(n.Update) > 1 {
			indent = p.plusFour
		}
		p.b.Open(indent)
		for i, u := range n.Update {
			if i > 0 {
				p.b.Token(",")
				p.breakToFill()
			}
			p.scan(u.X)
		}
		p.b.GuessToken(";")
		p.b.Close()
	} else {
		p.b.Space()
	}
	p.b.Close()
	p.b.Token(")")
	p.visitStatement(n.Body, true, true, false)
}

func (p *planner) visitForEach(n *ast.ForEachStmt) {
	p.b.Open(doc.Zero)
	p.b.Token("for")
	p.b.Space()
	p.b.Token("(")
	p.b.Open(doc.Zero)
	p.b.Sync(n.Var.Pos())
	p.declareOne(declaration{
		kind:   declNone,
		dir:    horizontal,
		mods:   n.Var.Modifiers,
		name:   n.Var.Name,
		equals: ":",
		init:   n.X,
	}.withDims(n.Var.Type))
	p.b.Close()
	p.b.Token(")")
	p.b.Close()
	p.visitStatement(n.Body, true, true, false)
}

func (p *planner) visitLabeled(n *ast.LabeledStmt) {
	p.b.Open(doc.Zero)
	p.b.Token(n.Label)
	p.b.Token(":")
	p.forcedBreak()
	p.b.Close()
	p.scan(n.Body)
}

// visitSwitch lays out switch statements and expressions alike.
func (p *planner) visitSwitch(selector ast.Expr, cases []*ast.Case) {
	p.b.Token("switch")
	p.b.Space()
	p.b.Token("(")
	p.scan(selector)
	p.b.Token(")")
	p.b.Space()
	p.openBrace()
	p.b.BlankLineWanted(doc.No)
	p.b.Open(p.plusTwo)
	for i, c := range cases {
		if i > 0 {
			p.b.BlankLineWanted(doc.Preserve)
		}
		p.scan(c)
	}
	p.b.Close()
	p.forcedBreak()
	p.b.BlankLineWanted(doc.No)
	p.b.TokenCommentIndent("}", p.plusFour)
}

func (p *planner) visitCase(n *ast.Case) {
	p.markForPartialFormat()
	p.forcedBreak()
	indent := doc.Zero
	if n.Arrow {
		indent = p.plusFour
	}
	p.b.Open(indent)
	if n.IsDefault {
		p.b.Token("default")
	} else {
		p.b.Token("case")
		p.b.Open(doc.Zero)
		p.b.Space()
		for i, label := range n.Labels {
			if i > 0 {
				p.b.Token(",")
				p.breakOp()
			}
			p.scan(label)
		}
		p.b.Close()
	}
	if n.Guard != nil {
		p.breakToFill()
		p.b.Token("when")
		p.b.Space()
		p.scan(n.Guard)
	}

	if !n.Arrow {
		p.b.Token(":")
		p.b.Open(p.plusTwo)
		if blk, ok := soleBlock(n.Stmts); ok {
			// case X: { ... } keeps the brace on the label line.
			p.b.Space()
			p.b.Sync(blk.Pos())
			p.b.Token("{")
			if len(blk.Stmts) == 0 {
				p.b.BlankLineWanted(doc.No)
				p.b.Token("}")
			} else {
				p.b.Open(p.plusTwo)
				p.forcedBreak()
				p.b.BlankLineWanted(doc.Preserve)
				p.visitStatements(blk.Stmts)
				p.b.Close()
				p.forcedBreak()
				p.b.BlankLineWanted(doc.No)
				p.b.Token("}")
			}
		} else {
			p.visitStatements(n.Stmts)
		}
		p.b.Close()
		p.b.Close()
		return
	}

	p.b.Space()
	p.b.Token("-")
	p.b.Token(">")
	if blk, ok := n.Body.(*ast.Block); ok {
		p.b.Close()
		p.b.Space()
		p.visitBlock(blk, true, false, false)
	} else {
		p.breakOp()
		p.scan(n.Body)
		p.b.Close()
	}
	p.b.GuessToken(";")
}

func soleBlock(stmts []ast.Stmt) (*ast.Block, bool) {
	if len(stmts) != 1 {
		return nil, false
	}
	blk, ok := stmts[0].(*ast.Block)
	return blk, ok && !blk.Static
}

func (p *planner) visitSynchronized(n *ast.SynchronizedStmt) {
	p.b.Token("synchronized")
	p.b.Space()
	p.b.Token("(")
	p.b.Open(p.plusFour)
	p.b.BreakOp("")
	p.scan(n.Lock)
	p.b.Close()
	p.b.Token(")")
	p.b.Space()
	p.scan(n.Body)
}

// visitTry lays out try, try-with-resources, catch and finally. Each catch
// and finally starts on a new line.
func (p *planner) visitTry(n *ast.TryStmt) {
	p.b.Open(doc.Zero)
	p.b.Token("try")
	p.b.Space()
	if len(n.Resources) > 0 {
		p.b.Token("(")
		indent := doc.Zero
		if len(n.Resources) > 1 {
			indent = p.plusFour
		}
		p.b.Open(indent)
		for i, r := range n.Resources {
			if i > 0 {
				p.forcedBreak()
			}
			if v, ok := r.(*ast.VariableDecl); ok {
				p.b.Sync(v.Pos())
				p.declareOne(declaration{
					kind:   declParameter,
					dir:    vertical,
					mods:   v.Modifiers,
					typ:    v.Type,
					name:   v.Name,
					equals: "=",
					init:   v.Init,
				})
			} else {
				p.scan(r)
			}
			if p.b.Peek() == ";" {
				p.b.Token(";")
				p.b.Space()
			}
		}
		if p.b.Peek() == ";" {
			p.b.Token(";")
			p.b.Space()
		}
		p.b.Token(")")
		p.b.Close()
		p.b.Space()
	}
	trailing := len(n.Catches) > 0 || n.Finally != nil
	p.visitBlock(n.Body, !trailing, true, trailing)
	for i, c := range n.Catches {
		p.visitCatch(c, i < len(n.Catches)-1 || n.Finally != nil)
	}
	if n.Finally != nil {
		p.forcedBreak()
		p.b.Token("finally")
		p.b.Space()
		p.visitBlock(n.Finally, false, true, false)
	}
	p.b.Close()
}

// visitCatch lays out one catch clause. An empty catch body collapses.
func (p *planner) visitCatch(c *ast.Catch, trail bool) {
	p.b.Sync(c.Pos())
	p.forcedBreak()
	p.b.Token("catch")
	p.b.Space()
	p.b.Token("(")
	p.b.Open(p.plusFour)
	if union, ok := c.Param.Type.(*ast.UnionType); ok {
		p.b.Open(doc.Zero)
		p.visitUnionType(union, c.Param)
		p.b.Close()
	} else {
		p.b.BreakToFill("")
		p.b.Open(doc.Zero)
		p.scan(c.Param)
		p.b.Close()
	}
	p.b.Close()
	p.b.Token(")")
	p.b.Space()
	p.visitBlock(c.Body, true, true, trail)
}

// visitUnionType lays out a multi-catch parameter. Union types only occur
// there, so reaching one without its declaration is a fault.
func (p *planner) visitUnionType(n *ast.UnionType, decl *ast.VariableDecl) {
	if decl == nil {
		panic(manualDescent("union types"))
	}
	p.b.Open(doc.Zero)
	p.b.Sync(decl.Pos())
	p.visitAndBreakModifiers(decl.Modifiers, horizontal, 0)
	alts := n.Alternatives
	for i, alt := range alts[:len(alts)-1] {
		if i > 0 {
			p.breakOp()
			p.b.Token("|")
			p.b.Space()
		}
		p.scan(alt)
	}
	p.breakOp()
	p.b.Token("|")
	p.b.Space()
	p.declareOne(declaration{
		kind:   declNone,
		dir:    horizontal,
		typ:    alts[len(alts)-1],
		name:   decl.Name,
		equals: "=",
		init:   decl.Init,
	})
	p.b.Close()
}

type manualDescent string

func (m manualDescent) Error() string { return "expected manual descent into " + string(m) }

func (p *planner) visitReturn(n *ast.ReturnStmt) {
	p.b.Token("return")
	if n.X != nil {
		p.b.Space()
		p.scan(n.X)
	}
	p.b.Token(";")
}

func (p *planner) visitBreak(n *ast.BreakStmt) {
	p.b.Open(p.plusFour)
	p.b.Token("break")
	if n.Label != "" {
		p.breakOp()
		p.b.Token(n.Label)
	}
	p.b.Close()
	p.b.Token(";")
}

func (p *planner) visitContinue(n *ast.ContinueStmt) {
	p.b.Open(p.plusFour)
	p.b.Token("continue")
	if n.Label != "" {
		p.breakOp()
		p.b.Token(n.Label)
	}
	p.b.Token(";")
	p.b.Close()
}

func (p *planner) visitAssert(n *ast.AssertStmt) {
	p.b.Open(doc.Zero)
	p.b.Token("assert")
	p.b.Space()
	indent := doc.Zero
	if n.Detail != nil {
		indent = p.plusFour
	}
	p.b.Open(indent)
	p.scan(n.Cond)
	if n.Detail != nil {
		p.breakOp()
		p.b.Token(":")
		p.b.Space()
		p.scan(n.Detail)
	}
	p.b.Close()
	p.b.Close()
	p.b.Token(";")
}
