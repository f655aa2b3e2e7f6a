package ir

import (
	"fmt"
	"strconv"

	"github.com/cwbudde/tinybc/internal/ast"
	"github.com/cwbudde/tinybc/pkg/token"
)

// Diagnostic is a semantic diagnostic raised during lowering (spec.md §7.3):
// assigning to an extern, or passing one as a call argument. Lowering skips
// the offending statement and continues — it never aborts the pass.
type Diagnostic struct {
	Pos     token.Position
	Message string
}

// Lowerer turns an *ast.Program into an ir.Program, one function at a time.
//
// Per spec.md §4.3, each function gets three name tables — locals, globals
// (pre-populated from the program header) and an extern set — plus a
// monotonic temp counter starting at 1000 so compiler-introduced
// temporaries never collide with user locals.
type Lowerer struct {
	globals map[string]int
	diags   []Diagnostic
}

// NewLowerer creates a Lowerer. globalNames is the program's ordered list
// of global variable names (ast.Program.Globals).
func NewLowerer(globalNames []string) *Lowerer {
	idx := make(map[string]int, len(globalNames))
	for i, name := range globalNames {
		idx[name] = i
	}
	return &Lowerer{globals: idx}
}

// Diagnostics returns the semantic diagnostics accumulated while lowering.
func (lw *Lowerer) Diagnostics() []Diagnostic { return lw.diags }

func (lw *Lowerer) diagf(pos token.Position, format string, args ...any) {
	lw.diags = append(lw.diags, Diagnostic{Pos: pos, Message: fmt.Sprintf(format, args...)})
}

// Lower lowers an entire program: the globals preamble (if any) followed by
// each function in source order.
func (lw *Lowerer) Lower(prog *ast.Program) *Program {
	out := &Program{GlobalCount: len(lw.globals)}
	if out.GlobalCount > 0 {
		out.Preamble = []Instruction{GlobalVar(out.GlobalCount)}
	}
	for _, fn := range prog.Functions {
		out.Functions = append(out.Functions, lw.lowerFunction(fn))
	}
	return out
}

// funcLowerer carries the per-function state spec.md §4.3 describes:
// the locals table, the extern set, the temp counter, and the accumulated
// code. A fresh funcLowerer is used for every function.
type funcLowerer struct {
	parent *Lowerer

	locals   map[string]int
	nextLocal int
	externs  map[string]bool
	nextTemp int

	code []Instruction
}

func (lw *Lowerer) lowerFunction(fn *ast.Function) Function {
	fl := &funcLowerer{
		parent:   lw,
		locals:   map[string]int{},
		externs:  map[string]bool{},
		nextTemp: 1000,
	}

	// Declaration pass: Auto/Extern statements allocate indices and emit
	// their declaration instructions before any other statement lowers,
	// per spec.md §4.3.
	fl.declarePass(fn.Body)

	for _, stmt := range fn.Body {
		fl.lowerStmt(stmt)
	}

	return Function{Name: fn.Name, Code: fl.code}
}

// declarePass walks the top-level statements of a function body (and the
// bodies of any nested blocks/if/while, since auto/extern can appear
// anywhere a statement can) allocating local/extern indices in source
// order and emitting one AutoVar(1)/ExternVar per declared name.
func (fl *funcLowerer) declarePass(stmts []ast.Statement) {
	for _, stmt := range stmts {
		switch s := stmt.(type) {
		case *ast.AutoStmt:
			for _, name := range s.Names {
				idx := fl.nextLocal
				fl.nextLocal++
				fl.locals[name] = idx
				fl.code = append(fl.code, AutoVar(1))
			}
		case *ast.ExternStmt:
			for _, name := range s.Names {
				fl.externs[name] = true
				fl.code = append(fl.code, ExternVar(name))
			}
		case *ast.BlockStmt:
			fl.declarePass(s.Stmts)
		case *ast.IfStmt:
			fl.declarePass([]ast.Statement{s.Then})
			if s.Else != nil {
				fl.declarePass([]ast.Statement{s.Else})
			}
		case *ast.WhileStmt:
			fl.declarePass([]ast.Statement{s.Body})
		}
	}
}

func (fl *funcLowerer) freshTemp() int {
	t := fl.nextTemp
	fl.nextTemp++
	return t
}

// resolveName classifies an identifier per spec.md §4.3: global if it is
// in the program's global table, else a local reference. Extern use at an
// expression site is detected by the caller (assign/call), not here.
func (fl *funcLowerer) resolveName(name string) Arg {
	if idx, ok := fl.parent.globals[name]; ok {
		return Global(idx)
	}
	return Var(fl.locals[name])
}

// lowerExpr lowers an expression to an Arg, appending any instructions
// needed to compute it. Left is always lowered before Right for a BinOp
// (spec.md §4.3).
func (fl *funcLowerer) lowerExpr(expr ast.Expression) Arg {
	switch e := expr.(type) {
	case *ast.IntegerLiteral:
		return Literal(e.Value)

	case *ast.Identifier:
		return fl.resolveName(e.Name)

	case *ast.BinOp:
		left := fl.lowerExpr(e.Left)
		right := fl.lowerExpr(e.Right)
		dest := fl.freshTemp()
		fl.code = append(fl.code, BinOp(dest, left, right, tokenToOp(e.Op)))
		return Var(dest)

	default:
		return Literal(0)
	}
}

func (fl *funcLowerer) lowerStmt(stmt ast.Statement) {
	switch s := stmt.(type) {
	case *ast.AutoStmt, *ast.ExternStmt:
		// Already handled by declarePass.

	case *ast.AssignStmt:
		fl.lowerAssign(s)

	case *ast.FuncCallStmt:
		fl.lowerFuncCall(s)

	case *ast.IfStmt:
		fl.lowerIf(s)

	case *ast.WhileStmt:
		fl.lowerWhile(s)

	case *ast.ReturnStmt:
		var argPtr *Arg
		if s.Expr != nil {
			arg := fl.lowerExpr(s.Expr)
			argPtr = &arg
		}
		fl.code = append(fl.code, Ret(argPtr))

	case *ast.BlockStmt:
		for _, st := range s.Stmts {
			fl.lowerStmt(st)
		}
	}
}

func (fl *funcLowerer) lowerAssign(s *ast.AssignStmt) {
	if fl.externs[s.Name] {
		fl.parent.diagf(s.Pos(), "cannot assign to extern %q", s.Name)
		return
	}

	rhs := fl.lowerExpr(s.Expr)

	if idx, ok := fl.parent.globals[s.Name]; ok {
		fl.code = append(fl.code, GlobalAssign(idx, rhs))
		return
	}
	fl.code = append(fl.code, AutoAssign(fl.locals[s.Name], rhs))
}

func (fl *funcLowerer) lowerFuncCall(s *ast.FuncCallStmt) {
	var argPtr *Arg
	if s.Arg != nil {
		if id, ok := s.Arg.(*ast.Identifier); ok && fl.externs[id.Name] {
			fl.parent.diagf(s.Pos(), "extern %q cannot be passed as a call argument", id.Name)
			return
		}
		arg := fl.lowerExpr(s.Arg)
		argPtr = &arg
	}
	fl.code = append(fl.code, FunCall(s.Name, argPtr))
}

// lowerIf follows spec.md §4.3's numbering exactly: two label ids are
// always allocated (via the temp counter) even when there is no else
// branch, so label suffixes stay deterministic across programs.
func (fl *funcLowerer) lowerIf(s *ast.IfStmt) {
	elseID := fl.freshTemp()
	endID := fl.freshTemp()

	cond := fl.lowerExpr(s.Cond)

	if s.Else != nil {
		elseLabel := "if_else_" + strconv.Itoa(elseID)
		endLabel := "if_end_" + strconv.Itoa(endID)

		fl.code = append(fl.code, JumpIfFalse(elseLabel, cond))
		fl.lowerStmt(s.Then)
		fl.code = append(fl.code, Jump(endLabel))
		fl.code = append(fl.code, Label(elseLabel))
		fl.lowerStmt(s.Else)
		fl.code = append(fl.code, Label(endLabel))
		return
	}

	endLabel := "if_end_" + strconv.Itoa(endID)
	fl.code = append(fl.code, JumpIfFalse(endLabel, cond))
	fl.lowerStmt(s.Then)
	fl.code = append(fl.code, Label(endLabel))
}

func (fl *funcLowerer) lowerWhile(s *ast.WhileStmt) {
	startID := fl.freshTemp()
	endID := fl.freshTemp()
	startLabel := "while_start_" + strconv.Itoa(startID)
	endLabel := "while_end_" + strconv.Itoa(endID)

	fl.code = append(fl.code, Label(startLabel))
	cond := fl.lowerExpr(s.Cond)
	fl.code = append(fl.code, JumpIfFalse(endLabel, cond))
	fl.lowerStmt(s.Body)
	fl.code = append(fl.code, Jump(startLabel))
	fl.code = append(fl.code, Label(endLabel))
}

func tokenToOp(tt token.Type) Op {
	switch tt {
	case token.PLUS:
		return Add
	case token.MINUS:
		return Sub
	case token.STAR:
		return Mul
	case token.SLASH:
		return Div
	case token.PERCENT:
		return Mod
	case token.EQ:
		return Eq
	case token.NOT_EQ:
		return Ne
	case token.LT:
		return Lt
	case token.LT_EQ:
		return Le
	case token.GT:
		return Gt
	case token.GT_EQ:
		return Ge
	case token.AND_AND:
		return And
	case token.OR_OR:
		return Or
	case token.SHL:
		return Shl
	case token.SHR:
		return Shr
	default:
		return Add
	}
}
