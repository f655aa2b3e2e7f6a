package optimize

import (
	"testing"

	"github.com/cwbudde/tinybc/internal/ir"
	"github.com/cwbudde/tinybc/internal/lexer"
	"github.com/cwbudde/tinybc/internal/parser"
)

func compile(t *testing.T, src string) *ir.Program {
	t.Helper()
	p := parser.New(lexer.New(src))
	prog := p.ParseProgram()
	if len(p.Errors()) > 0 {
		t.Fatalf("unexpected parse errors: %v", p.Errors())
	}
	lw := ir.NewLowerer(prog.Globals)
	return lw.Lower(prog)
}

// Scenario 1 from spec.md §8: arithmetic folds entirely away. Binary
// operators share one precedence level and fold left, so 2+3*4 is
// (2+3)*4 = 20; x's folded value is then propagated into the exit call.
func TestFoldsArithmeticChain(t *testing.T) {
	prog := compile(t, "main(){auto x; x=2+3*4; exit(x);}")
	Program(prog)
	fn := prog.Functions[0]

	for _, inst := range fn.Code {
		if inst.Kind == ir.KindBinOp {
			t.Fatalf("expected no surviving BinOp, got %#v", inst)
		}
	}

	var sawAssign, sawCall bool
	for _, inst := range fn.Code {
		if inst.Kind == ir.KindAutoAssign && inst.Dest == 0 {
			if inst.Arg != ir.Literal(20) {
				t.Fatalf("assign arg = %v, want Literal(20)", inst.Arg)
			}
			sawAssign = true
		}
		if inst.Kind == ir.KindFunCall && inst.Name == "exit" {
			if inst.Arg != ir.Literal(20) {
				t.Fatalf("exit arg = %v, want Literal(20)", inst.Arg)
			}
			sawCall = true
		}
	}
	if !sawAssign || !sawCall {
		t.Fatalf("code = %s", ir.Dump(fn.Code))
	}
}

// Scenario 2: a local written inside a loop must not have its pre-loop
// constant value propagated into the loop's own condition check.
func TestLoopCarriedLocalNotPropagatedIntoCondition(t *testing.T) {
	prog := compile(t, "main(){auto x; x=1; while(x){x=x;}}")
	Program(prog)
	fn := prog.Functions[0]

	for _, inst := range fn.Code {
		if inst.Kind == ir.KindJumpIfFalse {
			if inst.Arg.IsLiteral() {
				t.Fatalf("loop condition got folded to a literal: %#v", inst)
			}
		}
	}
}

// Scenario 3: a straight-line chain of assignments folds end to end.
func TestChainedAssignmentsFold(t *testing.T) {
	prog := compile(t, "main(){auto a,b; a=5; b=a+1; exit(b);}")
	Program(prog)
	fn := prog.Functions[0]

	for _, inst := range fn.Code {
		if inst.Kind == ir.KindFunCall && inst.Name == "exit" {
			if inst.Arg != ir.Literal(6) {
				t.Fatalf("exit arg = %v, want Literal(6)", inst.Arg)
			}
		}
	}
}

// Scenario: division by a literal zero folds to 0 without panicking.
func TestDivisionByZeroFoldsToZero(t *testing.T) {
	prog := compile(t, "main(){auto x; x=1/0;}")
	Program(prog)
	fn := prog.Functions[0]
	found := false
	for _, inst := range fn.Code {
		if inst.Kind == ir.KindAutoAssign && inst.Dest == 0 {
			if inst.Arg != ir.Literal(0) {
				t.Fatalf("1/0 folded to %v, want Literal(0)", inst.Arg)
			}
			found = true
		}
	}
	if !found {
		t.Fatalf("code = %s", ir.Dump(fn.Code))
	}
}

// The optimizer must be idempotent from pass 2 onward: running it twice
// (20 total passes) must not change already-converged IR.
func TestIdempotentAcrossRepeatedRuns(t *testing.T) {
	prog := compile(t, "main(){auto a,b,c; a=1; b=2; c=a+b; exit(c);}")
	Program(prog)
	first := ir.Dump(prog.Functions[0].Code)
	Program(prog)
	second := ir.Dump(prog.Functions[0].Code)
	if first != second {
		t.Fatalf("not idempotent:\nfirst:\n%s\nsecond:\n%s", first, second)
	}
}

func TestGlobalAssignIsNotFolded(t *testing.T) {
	prog := compile(t, "g;\nmain(){g=7;}")
	Program(prog)
	fn := prog.Functions[0]
	if fn.Code[0].Kind != ir.KindGlobalAssign || fn.Code[0].Arg != ir.Literal(7) {
		t.Fatalf("code = %s", ir.Dump(fn.Code))
	}
}
