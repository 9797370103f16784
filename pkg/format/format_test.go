package format

import (
	"errors"
	"strings"
	"testing"

	"github.com/leapstack-labs/leapfmt/pkg/ast"
	"github.com/leapstack-labs/leapfmt/pkg/doc"
	"github.com/leapstack-labs/leapfmt/pkg/input"
	"github.com/leapstack-labs/leapfmt/pkg/parser"
	"github.com/leapstack-labs/leapfmt/pkg/style"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func googleStyle(t *testing.T) style.Options {
	t.Helper()
	opts, err := style.Lookup(string(style.Google))
	require.NoError(t, err)
	return opts
}

func mustFormat(t *testing.T, src string, opts style.Options) string {
	t.Helper()
	out, err := Source(src, opts)
	require.NoError(t, err)
	return out
}

func TestSource_Layout(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "method body",
			input: "class A{void f(){int x=1;}}",
			want:  "class A {\n  void f() {\n    int x = 1;\n  }\n}\n",
		},
		{
			name:  "else on its own line",
			input: "class A { void f() { if (a) { b(); } else { c(); } } }",
			want: `class A {
  void f() {
    if (a) {
      b();
    }
    else {
      c();
    }
  }
}
`,
		},
		{
			name:  "catch and finally on their own lines",
			input: "class A { void f() { try { a(); } catch (Exception e) {} finally { b(); } } }",
			want: `class A {
  void f() {
    try {
      a();
    }
    catch (Exception e) {}
    finally {
      b();
    }
  }
}
`,
		},
		{
			name:  "field annotations vertical",
			input: "class A { @Inject Foo foo; }",
			want:  "class A {\n  @Inject\n  Foo foo;\n}\n",
		},
		{
			name:  "enum constants one per line",
			input: "enum E { A, B }",
			want:  "enum E {\n  A,\n  B\n}\n",
		},
		{
			name:  "methods separated by a blank line",
			input: "class A { void f() {} void g() {} }",
			want:  "class A {\n  void f() {}\n\n  void g() {}\n}\n",
		},
		{
			name:  "short dot chain stays on one line",
			input: "class A { void f() { a.b().c(); } }",
			want:  "class A {\n  void f() {\n    a.b().c();\n  }\n}\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, mustFormat(t, tt.input, googleStyle(t)))
		})
	}
}

func TestSource_DotChainBreaksTogether(t *testing.T) {
	opts := style.NewProfile("narrow").MaxWidth(30).Build()
	got := mustFormat(t, "class A { void f() { longReceiver.one().two().three(); } }", opts)
	assert.Contains(t, got, "    longReceiver\n        .one()\n        .two()\n        .three();\n")
}

// Two calls after a plain receiver count as two invocations, so neither
// binds to the receiver and every dot breaks.
func TestSource_DotChainTwoCallsHasNoPrefix(t *testing.T) {
	opts := style.NewProfile("narrow").MaxWidth(20).Build()
	got := mustFormat(t, "class A { void f() { aaaaaa.bbbbbbbbbb().cccccccccc(); } }", opts)
	assert.Contains(t, got, "    aaaaaa\n        .bbbbbbbbbb()\n        .cccccccccc();\n")
}

func TestSource_ArrayDimensions(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "dimensions on each declarator",
			input: "class A{int x [ ],y[][];}",
			want:  "class A {\n  int x[], y[][];\n}\n",
		},
		{
			name:  "annotated dimensions on both sides of the name",
			input: "class A {\n  int @A [] x @B [] @C [];\n}\n",
			want:  "class A {\n  int @A [] x @B [] @C [];\n}\n",
		},
		{
			name:  "annotated varargs",
			input: "class A {\n  void f(String @D ... a) {}\n}\n",
			want:  "class A {\n  void f(String @D ... a) {}\n}\n",
		},
		{
			name:  "annotated return dimension",
			input: "class A {\n  int @E [] f() {\n    return null;\n  }\n}\n",
			want:  "class A {\n  int @E [] f() {\n    return null;\n  }\n}\n",
		},
		{
			name:  "annotated array creation",
			input: "class A {\n  Object[][] o = new Object @A [5] @B [];\n}\n",
			want:  "class A {\n  Object[][] o = new Object @A [5] @B [];\n}\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, mustFormat(t, tt.input, googleStyle(t)))
		})
	}
}

func TestSource_BlankLines(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "single blank kept",
			input: "class A {\n  int x;\n\n  int y;\n}\n",
			want:  "class A {\n  int x;\n\n  int y;\n}\n",
		},
		{
			name:  "runs collapse to one",
			input: "class A {\n  int x;\n\n\n\n  int y;\n}\n",
			want:  "class A {\n  int x;\n\n  int y;\n}\n",
		},
		{
			name:  "none added between fields",
			input: "class A {\n  int x;\n  int y;\n}\n",
			want:  "class A {\n  int x;\n  int y;\n}\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, mustFormat(t, tt.input, googleStyle(t)))
		})
	}
}

func TestSource_TypeUseAnnotations(t *testing.T) {
	tests := []struct {
		name  string
		imp   string
		field string
	}{
		{"registered import stays with the type", "org.jspecify.annotations.Nullable", "  @Nullable String s;\n"},
		{"unrelated import is a declaration annotation", "com.example.Nullable", "  @Nullable\n  String s;\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := "import " + tt.imp + ";\n\nclass A { @Nullable String s; }\n"
			assert.Contains(t, mustFormat(t, src, googleStyle(t)), tt.field)
		})
	}
}

var corpus = []string{
	"package p;\n\nimport java.util.List;\n\nclass A { List<String> xs = List.of(\"a\", \"b\"); }\n",
	"class A { int f(int a, int b) { return a + b * 2 - (a % b); } }",
	"interface I<T extends Comparable<T>> extends Runnable { default void run() {} }",
	"record R(int x, String y) implements I { R { assert x > 0 : \"x\"; } }",
	"class A { void f() { for (int i = 0; i < 10; i++) { g(i); } for (String s : xs) h(s); } }",
	"class A { int f(Object o) { return switch (o) { case String s -> 1; default -> { yield 2; } }; } }",
	"class A { Runnable r = () -> { g(); }; java.util.function.Function<A, String> f = A::toString; }",
	"class A { int[][] m = {{1, 2}, {3, 4}}; String[] s = new String[] {\"a\"}; }",
	"@interface Ann { int value() default 1; String[] names() default {}; }",
	"class A {\n  // leading\n  void f() { /* inside */ g(); } // trailing\n}\n",
	"class A { void f() throws Exception { synchronized (this) { do { x--; } while (x > 0); } } }",
	"class A { String s = \"\"\"\n    text\n    block\n    \"\"\"; }",
	"class A { int x[], y[][]; int @A [] z @B [] @C []; int @E [] f(String @D ... a) { return new int @A [5] @B []; } }",
}

func TestSource_Idempotent(t *testing.T) {
	opts := googleStyle(t)
	for _, src := range corpus {
		once := mustFormat(t, src, opts)
		twice := mustFormat(t, once, opts)
		assert.Equal(t, once, twice, "source: %s", src)
	}
}

func TestSource_Deterministic(t *testing.T) {
	for _, name := range style.List() {
		opts, err := style.Lookup(name)
		require.NoError(t, err)
		for _, src := range corpus {
			assert.Equal(t, mustFormat(t, src, opts), mustFormat(t, src, opts), "style %s", name)
		}
	}
}

func TestPlan_BalancedScopes(t *testing.T) {
	for _, src := range corpus {
		d, err := Plan(src, googleStyle(t))
		require.NoError(t, err)
		depth := 0
		for _, op := range d.Ops() {
			switch op.(type) {
			case doc.Open:
				depth++
			case doc.Close:
				depth--
			}
			require.GreaterOrEqual(t, depth, 0)
		}
		assert.Zero(t, depth, "source: %s", src)
	}
}

func TestPlan_PartialFormatMarks(t *testing.T) {
	src := "package p;\nimport a.B;\nclass A { int x = f(a, b); void g() { h(); } }\n"
	d, err := Plan(src, googleStyle(t))
	require.NoError(t, err)
	in := d.Input()

	chunks := d.Chunks()
	require.NotEmpty(t, chunks)
	starts := map[string]bool{}
	for _, c := range chunks {
		starts[in.Tokens[c.First].Text()] = true
	}
	for _, want := range []string{"package", "import", "class", "int", "void", "h"} {
		assert.True(t, starts[want], "no chunk starts at %q", want)
	}
	for _, inside := range []string{"f", "(", "a", ",", "b", ")"} {
		assert.False(t, starts[inside], "chunk starts inside an expression at %q", inside)
	}
	assert.Equal(t, len(in.Tokens)-1, chunks[len(chunks)-1].Last)
}

func TestRanges(t *testing.T) {
	src := "class A {\nint   x;\nint   y;\n}\n"
	got, err := Ranges(src, googleStyle(t), []LineRange{{First: 2, Last: 2}})
	require.NoError(t, err)
	assert.Equal(t, "class A {\n  int x;\nint   y;\n}\n", got)

	got, err = Ranges(src, googleStyle(t), nil)
	require.NoError(t, err)
	assert.Equal(t, src, got)
}

func TestSource_ByteOrderMarkKept(t *testing.T) {
	opts := googleStyle(t)
	got := mustFormat(t, "\ufeffclass A{void f(){int x=1;}}", opts)
	assert.Equal(t, "\ufeffclass A {\n  void f() {\n    int x = 1;\n  }\n}\n", got)

	got, err := Ranges("\ufeffclass A {\nint   x;\nint   y;\n}\n", opts, []LineRange{{First: 2, Last: 2}})
	require.NoError(t, err)
	assert.Equal(t, "\ufeffclass A {\n  int x;\nint   y;\n}\n", got)
}

func TestParseLineRange(t *testing.T) {
	tests := []struct {
		in      string
		want    LineRange
		wantErr bool
	}{
		{in: "3:7", want: LineRange{First: 3, Last: 7}},
		{in: "4", want: LineRange{First: 4, Last: 4}},
		{in: "7:3", wantErr: true},
		{in: "0:2", wantErr: true},
		{in: "a:b", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLineRange(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestOffsetRange(t *testing.T) {
	src := "a\nbb\nccc\n"
	got, err := OffsetRange(src, 2, 4)
	require.NoError(t, err)
	assert.Equal(t, LineRange{First: 2, Last: 3}, got)

	_, err = OffsetRange(src, 5, 100)
	assert.Error(t, err)
}

func TestSource_Faults(t *testing.T) {
	_, err := Source("class A { void f( }", googleStyle(t))
	var pe *parser.ParseError
	require.ErrorAs(t, err, &pe)
	assert.False(t, IsFault(err))

	_, err = Source("class A {}", style.Options{Style: "broken"})
	assert.Error(t, err)
}

func TestFaultConversion(t *testing.T) {
	src := "class A {}\nclass B {}\n"
	in := parsedInput(t, src)

	cf := consistencyFault(in, &doc.Fault{Offset: 17, Message: "did not generate token \"B\""})
	assert.Equal(t, 2, cf.Line)
	assert.Equal(t, 6, cf.Column)
	assert.True(t, IsFault(cf))

	err := recoverFault(in, errors.New("boom"), 11)
	var ff *FormattingFault
	require.ErrorAs(t, err, &ff)
	assert.Equal(t, 2, ff.Line)
	assert.Equal(t, "boom", ff.Message)
	assert.EqualError(t, ff.Unwrap(), "boom")
}

func TestScan_UnsupportedNodeIsFormattingFault(t *testing.T) {
	src := "class A {}\n"
	in := parsedInput(t, src)
	p := newPlanner(in, googleStyle(t))
	var err error
	func() {
		defer func() {
			if r := recover(); r != nil {
				err = recoverFault(in, r, 0)
			}
		}()
		p.scan(&ast.EnumConstant{Name: "X"})
	}()
	var ff *FormattingFault
	require.ErrorAs(t, err, &ff)
	assert.Contains(t, ff.Message, "no layout for")
}

func TestReorderModifiers(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"sorted", "class A { final static public int X = 1; }", "class A { public static final int X = 1; }"},
		{"annotations stay put", "class A { static @Deprecated public void f() {} }", "class A { static @Deprecated public void f() {} }"},
		{"non-sealed", "non-sealed public class A {}", "public non-sealed class A {}"},
		{"switch default untouched", "class A { void f() { switch (x) { default: static_(); } } }", "class A { void f() { switch (x) { default: static_(); } } }"},
		{"interface default method", "interface I { static default void f() {} }", "interface I { default static void f() {} }"},
		{"bad source unchanged", "class A { \"unterminated }", "class A { \"unterminated }"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, reorderModifiers(tt.in, nil))
		})
	}
}

func TestReorderModifiers_OnlyInRange(t *testing.T) {
	src := "class A {\n  final public int x;\n  final public int y;\n}\n"
	got := reorderModifiers(src, func(line int) bool { return line == 3 })
	assert.Equal(t, "class A {\n  final public int x;\n  public final int y;\n}\n", got)
}

func TestDecorate(t *testing.T) {
	opts := googleStyle(t)
	d, err := Plan("class A { // c\n}\n", opts)
	require.NoError(t, err)
	dump := Decorate(d, opts)
	assert.Equal(t, style.Google, dump.Style)
	assert.Equal(t, len(d.Ops()), len(dump.Ops))
	assert.NotEmpty(t, dump.Chunks)

	kinds := map[string]int{}
	for _, op := range dump.Ops {
		kinds[op.Kind]++
		assert.GreaterOrEqual(t, op.Depth, 0)
	}
	assert.Equal(t, kinds["open"], kinds["close"])
	assert.Positive(t, kinds["token"])
	assert.Equal(t, 1, kinds["comment"])
}

func parsedInput(t *testing.T, src string) *input.Input {
	t.Helper()
	file, err := parser.Parse(src)
	require.NoError(t, err)
	return input.New(src, file.Tokens, file.Comments)
}

func firstCallArgs(t *testing.T, src string) (*planner, []ast.Expr) {
	t.Helper()
	file, err := parser.Parse(src)
	require.NoError(t, err)
	in := input.New(src, file.Tokens, file.Comments)
	m := file.Unit.Types[0].Members[0].(*ast.MethodDecl)
	call := m.Body.Stmts[0].(*ast.ExprStmt).X.(*ast.MethodInvocation)
	return newPlanner(in, googleStyle(t)), call.Args
}

func TestArgumentsAreTabular(t *testing.T) {
	tests := []struct {
		name string
		rows string
		want int
	}{
		{"three rows of two", "\"a\", 1,\n        \"b\", 2,\n        \"c\", 3", 2},
		{"third row of three", "\"a\", 1,\n        \"b\", 2,\n        \"c\", 3, 4", -1},
		{"two columns with a short last row", "1, 2,\n        3, 4,\n        5", -1},
		{"three columns with a short last row", "\"a\", 1, 2,\n        \"b\", 3, 4,\n        \"c\", 5", 3},
		{"single row", "\"a\", 1, \"b\", 2", -1},
		{"mixed first column", "\"a\", 1,\n        x.y(), 2,\n        3, 3", -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := "class A {\n  void f() {\n    m(\n        " + tt.rows + ");\n  }\n}\n"
			p, args := firstCallArgs(t, src)
			assert.Equal(t, tt.want, p.argumentsAreTabular(args))
		})
	}
}

func TestIsFormatMethod(t *testing.T) {
	tests := []struct {
		call string
		want bool
	}{
		{"String.format(\"%d items\", n)", true},
		{"log(\"{0} of \" + \"{1}\", a, b)", true},
		{"foo(\"plain\", n)", false},
		{"foo(name, \"%s\")", false},
		{"foo(\"%s\")", false},
	}
	for _, tt := range tests {
		t.Run(tt.call, func(t *testing.T) {
			_, args := firstCallArgs(t, "class A { void f() { "+tt.call+"; } }")
			assert.Equal(t, tt.want, isFormatMethod(args))
		})
	}
}

func TestTypePrefixLength(t *testing.T) {
	tests := []struct {
		names  string
		want   int
		wantOK bool
	}{
		{"com.google.Foo.bar", 3, true},
		{"ImmutableList.builder", 1, true},
		{"Outer.Inner.CONST.x", 2, true},
		{"FOO.Bar", 1, true},
		{"FOO.bar", 0, false},
		{"foo.bar", 0, false},
		{"fooBar.Baz", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.names, func(t *testing.T) {
			got, ok := typePrefixLength(strings.Split(tt.names, "."))
			assert.Equal(t, tt.wantOK, ok)
			if ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestCaseFormatOf(t *testing.T) {
	tests := map[string]caseFormat{
		"foo_bar": lowercase,
		"FOO_BAR": uppercase,
		"A":       uppercase,
		"fooBar":  lowerCamel,
		"FooBar":  upperCamel,
	}
	for name, want := range tests {
		assert.Equal(t, want, caseFormatOf(name), name)
	}
}
