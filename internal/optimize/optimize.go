// Package optimize implements the constant-propagation/folding pass that
// runs over lowered IR before it reaches a backend. It never changes the
// shape of control flow — it rewrites operands of AutoAssign, BinOp, FunCall
// and JumpIfFalse, and turns fully constant BinOps into AutoAssigns — so it
// can run as a simple fixed-point loop over the flat instruction vector.
package optimize

import (
	"strings"

	"github.com/cwbudde/tinybc/internal/ir"
)

// MaxPasses bounds the fixed-point iteration (spec.md §4.4): ten passes is
// enough for any chain of straight-line propagation this language's
// programs can produce, and the pass is idempotent once it converges.
const MaxPasses = 10

// loopSpan is one while-loop's start index (its while_start_ label) together
// with the set of local indices any AutoAssign between that label and the
// matching while_end_ label, both included, ever writes.
// Spans are computed once per function, before the fixed-point loop starts,
// and never change across passes.
type loopSpan struct {
	start    int
	modified map[int]bool
}

// findLoopSpans pairs while_start_/while_end_ labels by nesting order, the
// same way matched brackets nest, and records each span's written locals.
func findLoopSpans(code []ir.Instruction) []loopSpan {
	type open struct{ start int }
	var stack []open
	var spans []loopSpan

	for i, inst := range code {
		if inst.Kind != ir.KindLabel {
			continue
		}
		switch {
		case strings.HasPrefix(inst.Name, "while_start_"):
			stack = append(stack, open{start: i})
		case strings.HasPrefix(inst.Name, "while_end_"):
			if len(stack) == 0 {
				continue
			}
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			spans = append(spans, loopSpan{start: top.start, modified: collectAssigned(code, top.start, i)})
		}
	}
	return spans
}

func collectAssigned(code []ir.Instruction, start, end int) map[int]bool {
	modified := map[int]bool{}
	for j := start; j <= end; j++ {
		if code[j].Kind == ir.KindAutoAssign {
			modified[code[j].Dest] = true
		}
	}
	return modified
}

// dirty reports whether local is dirty at position pos: some loop whose
// start is at or before pos writes it. Per spec.md §4.4 the span has no
// upper bound here — once a loop has started, any local it touches stays
// dirty for the rest of the function, matching the source's conservative,
// scope-free tracking.
func dirty(spans []loopSpan, pos, local int) bool {
	for _, s := range spans {
		if s.start <= pos && s.modified[local] {
			return true
		}
	}
	return false
}

// constTable is the per-pass HAS_CONST/CONST_VALS pair, reset at the start
// of every pass.
type constTable struct {
	has map[int]bool
	val map[int]int64
}

func newConstTable() *constTable {
	return &constTable{has: map[int]bool{}, val: map[int]int64{}}
}

func (c *constTable) resolve(a ir.Arg, spans []loopSpan, pos int) ir.Arg {
	if a.Kind != ir.ArgVar {
		return a
	}
	if c.has[a.Index] && !dirty(spans, pos, a.Index) {
		return ir.Literal(c.val[a.Index])
	}
	return a
}

func (c *constTable) publish(dest int, arg ir.Arg, spans []loopSpan, pos int) {
	if dirty(spans, pos, dest) {
		return
	}
	if arg.IsLiteral() {
		c.has[dest] = true
		c.val[dest] = arg.Literal
		return
	}
	delete(c.has, dest)
}

// Program runs the fixed-point pass over every function in prog, in place,
// for MaxPasses iterations.
func Program(prog *ir.Program) { ProgramN(prog, MaxPasses) }

// ProgramN is Program with an explicit pass count, for callers honoring a
// configured optimizer pass count (internal/config) rather than the default.
func ProgramN(prog *ir.Program, passes int) {
	for i := range prog.Functions {
		FunctionN(prog.Functions[i].Code, passes)
	}
}

// Function runs the fixed-point pass over one function's instruction
// vector, in place, for up to MaxPasses iterations.
func Function(code []ir.Instruction) { FunctionN(code, MaxPasses) }

// FunctionN is Function with an explicit pass count.
func FunctionN(code []ir.Instruction, passes int) {
	spans := findLoopSpans(code)
	for pass := 0; pass < passes; pass++ {
		runPass(code, spans)
	}
}

func runPass(code []ir.Instruction, spans []loopSpan) {
	consts := newConstTable()
	for i := range code {
		foldInstruction(code, i, spans, consts)
	}
}

func foldInstruction(code []ir.Instruction, i int, spans []loopSpan, consts *constTable) {
	inst := &code[i]
	switch inst.Kind {
	case ir.KindAutoAssign:
		inst.Arg = consts.resolve(inst.Arg, spans, i)
		consts.publish(inst.Dest, inst.Arg, spans, i)

	case ir.KindBinOp:
		left := consts.resolve(inst.Left, spans, i)
		right := consts.resolve(inst.Right, spans, i)
		inst.Left, inst.Right = left, right
		if left.IsLiteral() && right.IsLiteral() {
			result := evalOp(inst.Op, left.Literal, right.Literal)
			*inst = ir.AutoAssign(inst.Dest, ir.Literal(result))
			consts.publish(inst.Dest, inst.Arg, spans, i)
		}

	case ir.KindFunCall:
		if inst.HasArg {
			inst.Arg = consts.resolve(inst.Arg, spans, i)
		}

	case ir.KindJumpIfFalse:
		inst.Arg = consts.resolve(inst.Arg, spans, i)
	}
}

func evalOp(op ir.Op, l, r int64) int64 {
	switch op {
	case ir.Add:
		return l + r
	case ir.Sub:
		return l - r
	case ir.Mul:
		return l * r
	case ir.Div:
		if r == 0 {
			return 0
		}
		return l / r
	case ir.Mod:
		if r == 0 {
			return 0
		}
		return l % r
	case ir.Eq:
		return boolToInt(l == r)
	case ir.Ne:
		return boolToInt(l != r)
	case ir.Lt:
		return boolToInt(l < r)
	case ir.Le:
		return boolToInt(l <= r)
	case ir.Gt:
		return boolToInt(l > r)
	case ir.Ge:
		return boolToInt(l >= r)
	case ir.And:
		return boolToInt(l != 0 && r != 0)
	case ir.Or:
		return boolToInt(l != 0 || r != 0)
	case ir.Shl:
		return l << uint64(r)
	case ir.Shr:
		return l >> uint64(r)
	default:
		return 0
	}
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
