package ast

import (
	"testing"

	"github.com/cwbudde/tinybc/pkg/token"
)

func tok(tt token.Type, lit string) token.Token {
	return token.New(tt, lit, token.Position{Line: 1, Column: 1})
}

func TestProgram(t *testing.T) {
	empty := &Program{}
	if empty.TokenLiteral() != "" {
		t.Errorf("empty Program.TokenLiteral() = %q, want empty", empty.TokenLiteral())
	}
	if empty.Pos().Line != 1 || empty.Pos().Column != 1 {
		t.Errorf("empty Program.Pos() = %v, want {1,1} fallback", empty.Pos())
	}

	fn := &Function{Token: tok(token.IDENT, "main"), Name: "main"}
	prog := &Program{Globals: []string{"g"}, Functions: []*Function{fn}}
	if prog.TokenLiteral() != "main" {
		t.Errorf("TokenLiteral() = %q, want %q", prog.TokenLiteral(), "main")
	}
	if prog.Pos() != fn.Pos() {
		t.Errorf("Pos() = %v, want first function's Pos() %v", prog.Pos(), fn.Pos())
	}
	want := "g;\nmain() {\n}\n"
	if prog.String() != want {
		t.Errorf("String() = %q, want %q", prog.String(), want)
	}
}

func TestFunction(t *testing.T) {
	fn := &Function{
		Token: tok(token.IDENT, "main"),
		Name:  "main",
		Body: []Statement{
			&ReturnStmt{Token: tok(token.RETURN, "return")},
		},
	}
	if fn.TokenLiteral() != "main" {
		t.Errorf("TokenLiteral() = %q, want %q", fn.TokenLiteral(), "main")
	}
	want := "main() {\n  return;\n}"
	if fn.String() != want {
		t.Errorf("String() = %q, want %q", fn.String(), want)
	}
}

func TestIntegerLiteral(t *testing.T) {
	il := &IntegerLiteral{Token: tok(token.INT, "42"), Value: 42}
	if il.TokenLiteral() != "42" {
		t.Errorf("TokenLiteral() = %q, want %q", il.TokenLiteral(), "42")
	}
	if il.String() != "42" {
		t.Errorf("String() = %q, want %q", il.String(), "42")
	}
	if il.Pos() != il.Token.Pos {
		t.Errorf("Pos() = %v, want %v", il.Pos(), il.Token.Pos)
	}
}

func TestIdentifier(t *testing.T) {
	id := &Identifier{Token: tok(token.IDENT, "x"), Name: "x"}
	if id.TokenLiteral() != "x" {
		t.Errorf("TokenLiteral() = %q, want %q", id.TokenLiteral(), "x")
	}
	if id.String() != "x" {
		t.Errorf("String() = %q, want %q", id.String(), "x")
	}
}

func TestBinOp(t *testing.T) {
	b := &BinOp{
		Token: tok(token.PLUS, "+"),
		Op:    token.PLUS,
		Left:  &IntegerLiteral{Token: tok(token.INT, "1"), Value: 1},
		Right: &IntegerLiteral{Token: tok(token.INT, "2"), Value: 2},
	}
	if b.TokenLiteral() != "+" {
		t.Errorf("TokenLiteral() = %q, want %q", b.TokenLiteral(), "+")
	}
	want := "(1 " + token.PLUS.String() + " 2)"
	if b.String() != want {
		t.Errorf("String() = %q, want %q", b.String(), want)
	}
}

func TestAutoStmt(t *testing.T) {
	s := &AutoStmt{Token: tok(token.AUTO, "auto"), Names: []string{"x", "y"}}
	if s.TokenLiteral() != "auto" {
		t.Errorf("TokenLiteral() = %q, want %q", s.TokenLiteral(), "auto")
	}
	want := "auto x, y;"
	if s.String() != want {
		t.Errorf("String() = %q, want %q", s.String(), want)
	}
}

func TestExternStmt(t *testing.T) {
	s := &ExternStmt{Token: tok(token.EXTERN, "extern"), Names: []string{"flush"}}
	want := "extern flush;"
	if s.String() != want {
		t.Errorf("String() = %q, want %q", s.String(), want)
	}
}

func TestAssignStmt(t *testing.T) {
	s := &AssignStmt{
		Token: tok(token.IDENT, "x"),
		Name:  "x",
		Expr:  &IntegerLiteral{Token: tok(token.INT, "3"), Value: 3},
	}
	want := "x = 3;"
	if s.String() != want {
		t.Errorf("String() = %q, want %q", s.String(), want)
	}
	if s.Pos() != s.Token.Pos {
		t.Errorf("Pos() = %v, want %v", s.Pos(), s.Token.Pos)
	}
}

func TestFuncCallStmt(t *testing.T) {
	withArg := &FuncCallStmt{Token: tok(token.IDENT, "exit"), Name: "exit", Arg: &Identifier{Token: tok(token.IDENT, "x"), Name: "x"}}
	if withArg.String() != "exit(x);" {
		t.Errorf("String() = %q, want %q", withArg.String(), "exit(x);")
	}

	noArg := &FuncCallStmt{Token: tok(token.IDENT, "flush"), Name: "flush"}
	if noArg.String() != "flush();" {
		t.Errorf("String() = %q, want %q", noArg.String(), "flush();")
	}
}

func TestIfStmt(t *testing.T) {
	cond := &Identifier{Token: tok(token.IDENT, "x"), Name: "x"}
	then := &ReturnStmt{Token: tok(token.RETURN, "return")}

	noElse := &IfStmt{Token: tok(token.IF, "if"), Cond: cond, Then: then}
	want := "if (x) return;"
	if noElse.String() != want {
		t.Errorf("String() = %q, want %q", noElse.String(), want)
	}

	withElse := &IfStmt{Token: tok(token.IF, "if"), Cond: cond, Then: then, Else: then}
	want = "if (x) return; else return;"
	if withElse.String() != want {
		t.Errorf("String() = %q, want %q", withElse.String(), want)
	}
}

func TestWhileStmt(t *testing.T) {
	s := &WhileStmt{
		Token: tok(token.WHILE, "while"),
		Cond:  &Identifier{Token: tok(token.IDENT, "x"), Name: "x"},
		Body:  &ReturnStmt{Token: tok(token.RETURN, "return")},
	}
	want := "while (x) return;"
	if s.String() != want {
		t.Errorf("String() = %q, want %q", s.String(), want)
	}
}

func TestReturnStmt(t *testing.T) {
	bare := &ReturnStmt{Token: tok(token.RETURN, "return")}
	if bare.String() != "return;" {
		t.Errorf("String() = %q, want %q", bare.String(), "return;")
	}

	withExpr := &ReturnStmt{Token: tok(token.RETURN, "return"), Expr: &IntegerLiteral{Token: tok(token.INT, "0"), Value: 0}}
	if withExpr.String() != "return 0;" {
		t.Errorf("String() = %q, want %q", withExpr.String(), "return 0;")
	}
}

func TestBlockStmt(t *testing.T) {
	b := &BlockStmt{
		Token: tok(token.LBRACE, "{"),
		Stmts: []Statement{&ReturnStmt{Token: tok(token.RETURN, "return")}},
	}
	want := "{\n  return;\n}"
	if b.String() != want {
		t.Errorf("String() = %q, want %q", b.String(), want)
	}
	if b.Pos() != b.Token.Pos {
		t.Errorf("Pos() = %v, want %v", b.Pos(), b.Token.Pos)
	}
}

// TestNodeInterfacesAreSatisfied is a compile-time-flavored check that every
// expression and statement kind actually implements the marker interfaces;
// a missing expressionNode()/statementNode() method would otherwise only
// surface as a parser or lowering compile error far from this package.
func TestNodeInterfacesAreSatisfied(t *testing.T) {
	var exprs = []Expression{
		&IntegerLiteral{},
		&Identifier{},
		&BinOp{},
	}
	var stmts = []Statement{
		&AutoStmt{},
		&ExternStmt{},
		&AssignStmt{},
		&FuncCallStmt{},
		&IfStmt{},
		&WhileStmt{},
		&ReturnStmt{},
		&BlockStmt{},
	}
	for _, e := range exprs {
		if e == nil {
			t.Fatal("nil expression in table")
		}
	}
	for _, s := range stmts {
		if s == nil {
			t.Fatal("nil statement in table")
		}
	}
}
