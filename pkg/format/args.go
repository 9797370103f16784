package format

import (
	"regexp"

	"github.com/leapstack-labs/leapfmt/pkg/ast"
	"github.com/leapstack-labs/leapfmt/pkg/doc"
)

func (p *planner) addTypeArguments(args []ast.Expr, indent doc.Indent) {
	if len(args) == 0 {
		return
	}
	p.b.Token("<")
	p.b.Open(indent)
	for i, arg := range args {
		if i > 0 {
			p.b.Token(",")
			p.breakToFill()
		}
		p.scan(arg)
	}
	p.b.Close()
	p.b.Token(">")
}

// addArguments writes a parenthesised argument list. Arguments laid out
// as key/value pairs in the source keep one pair per line, and a format
// string keeps its line with the values filled after it.
func (p *planner) addArguments(args []ast.Expr, indent doc.Indent) {
	p.b.Open(indent)
	p.b.Token("(")
	switch {
	case len(args) == 0:
	case len(args)%2 == 0 && p.argumentsAreTabular(args) == 2:
		p.forcedBreak()
		p.b.Open(doc.Zero)
		for i := 0; i+1 < len(args); i += 2 {
			if i > 0 {
				p.b.Token(",")
				p.forcedBreak()
			}
			p.b.Open(p.plusFour)
			p.scan(args[i])
			p.b.Token(",")
			p.breakOp()
			p.scan(args[i+1])
			p.b.Close()
		}
		p.b.Close()
	case isFormatMethod(args):
		p.b.BreakOp("")
		p.b.Open(doc.Zero)
		p.scan(args[0])
		p.b.Token(",")
		p.breakOp()
		p.b.Open(doc.Zero)
		p.argList(args[1:])
		p.b.Close()
		p.b.Close()
	default:
		p.b.BreakOp("")
		p.argList(args)
	}
	p.b.Token(")")
	p.b.Close()
}

func (p *planner) argList(args []ast.Expr) {
	p.b.Open(doc.Zero)
	fill := doc.Unified
	if p.hasOnlyShortItems(args) {
		fill = doc.Independent
	}
	for i, arg := range args {
		if i > 0 {
			p.b.Token(",")
			p.b.Break(fill, " ", doc.Zero, 0)
		}
		p.scan(arg)
	}
	p.b.Close()
}

var formatSpecifier = regexp.MustCompile(`%|\{[0-9]\}`)

// isFormatMethod reports whether the first of at least two arguments is a
// string literal, or a concatenation of them, holding a format specifier.
func isFormatMethod(args []ast.Expr) bool {
	if len(args) < 2 {
		return false
	}
	literalsOnly, specifier := true, false
	var walk func(x ast.Expr)
	walk = func(x ast.Expr) {
		switch x := x.(type) {
		case *ast.Literal:
			if x.LitKind != ast.KindStringLiteral {
				literalsOnly = false
				return
			}
			if formatSpecifier.MatchString(x.Value) {
				specifier = true
			}
		case *ast.Binary:
			if x.Op != "+" {
				literalsOnly = false
				return
			}
			walk(x.X)
			walk(x.Y)
		default:
			literalsOnly = false
		}
	}
	walk(args[0])
	return literalsOnly && specifier
}

// argumentsAreTabular returns the number of columns when the items were
// written as a grid in the source, or -1. Rows are found by the source
// column each item starts at.
func (p *planner) argumentsAreTabular(items []ast.Expr) int {
	if len(items) == 0 {
		return -1
	}
	column := func(x ast.Expr) int { return p.b.ActualStartColumn(x.Pos()) }

	var rows [][]ast.Expr
	start0 := column(items[0])
	i := 1
	for i < len(items) && column(items[i]) > start0 {
		i++
	}
	if i == len(items) || rowLength(items[:i]) <= 1 {
		return -1
	}
	rows = append(rows, items[:i])
	for i < len(items) {
		if column(items[i]) != start0 {
			return -1
		}
		j := i + 1
		for j < len(items) && column(items[j]) > start0 {
			j++
		}
		rows = append(rows, items[i:j])
		i = j
	}

	size0 := len(rows[0])
	if !expressionsAreParallel(rows, 0, len(rows)) {
		return -1
	}
	for c := 1; c < size0; c++ {
		if !expressionsAreParallel(rows, c, len(rows)/2+1) {
			return -1
		}
	}
	if len(rows) == 2 {
		if size0 == len(rows[1]) {
			return size0
		}
		return -1
	}
	for _, row := range rows[1 : len(rows)-1] {
		if len(row) != size0 {
			return -1
		}
	}
	// A short last row is allowed only for grids of three or more columns.
	last := len(rows[len(rows)-1])
	if last > size0 || (last < size0 && size0 < 3) {
		return -1
	}
	return size0
}

// rowLength counts the items of a row, looking inside nested array
// initializers.
func rowLength(row []ast.Expr) int {
	n := 0
	for _, x := range row {
		arr, ok := x.(*ast.NewArray)
		if !ok || !arr.HasInit {
			n++
			continue
		}
		n += rowLength(arr.Init)
	}
	return n
}

// expressionsAreParallel reports whether at least atLeast of the items in
// the given column share a kind. A unary expression counts as its operand,
// so -1 and 1 match.
func expressionsAreParallel(rows [][]ast.Expr, column, atLeast int) bool {
	counts := map[ast.Kind]int{}
	for _, row := range rows {
		if column >= len(row) {
			continue
		}
		x := row[column]
		if u, ok := x.(*ast.Unary); ok {
			counts[u.X.Kind()]++
		} else {
			counts[x.Kind()]++
		}
	}
	for _, n := range counts {
		if n >= atLeast {
			return true
		}
	}
	return false
}
