package ir

import (
	"fmt"
	"strings"
)

// Dump renders a flat instruction vector in the one-line-per-instruction
// text format `-print-ir` emits (spec.md §6): a kind prefix followed by
// its operands, arguments rendered as `v(i)`, `g(i)` or a bare literal,
// and binary operators rendered as a named call like `add(v(0), 3)`.
func Dump(code []Instruction) string {
	var b strings.Builder
	for _, inst := range code {
		b.WriteString(dumpOne(inst))
		b.WriteByte('\n')
	}
	return b.String()
}

func dumpOne(inst Instruction) string {
	switch inst.Kind {
	case KindAutoVar:
		return fmt.Sprintf("Autovar(%d)", inst.Count)
	case KindGlobalVar:
		return fmt.Sprintf("Globalvar(%d)", inst.Count)
	case KindExternVar:
		return fmt.Sprintf("Externvar(%s)", inst.Name)
	case KindAutoAssign:
		return fmt.Sprintf("Autoassign(%d, %s)", inst.Dest, inst.Arg)
	case KindGlobalAssign:
		return fmt.Sprintf("Globalassign(%d, %s)", inst.Dest, inst.Arg)
	case KindBinOp:
		return fmt.Sprintf("Binop(%d, %s(%s, %s))", inst.Dest, inst.Op, inst.Left, inst.Right)
	case KindFunCall:
		if inst.HasArg {
			return fmt.Sprintf("Funcall(%s, %s)", inst.Name, inst.Arg)
		}
		return fmt.Sprintf("Funcall(%s)", inst.Name)
	case KindLabel:
		return fmt.Sprintf("Label(%s)", inst.Name)
	case KindJump:
		return fmt.Sprintf("Jump(%s)", inst.Name)
	case KindJumpIfFalse:
		return fmt.Sprintf("JumpIfFalse(%s, %s)", inst.Name, inst.Arg)
	case KindRet:
		if inst.HasArg {
			return fmt.Sprintf("Return(%s)", inst.Arg)
		}
		return "Return()"
	default:
		return "?"
	}
}

// DumpProgram renders the whole program in source order: the globals
// preamble, then each function prefixed by a `Func(name)` marker line so
// the boundary between lowered functions stays visible in the dump even
// though spec.md's wire format has no dedicated instruction kind for it.
func DumpProgram(prog *Program) string {
	var b strings.Builder
	if len(prog.Preamble) > 0 {
		b.WriteString(Dump(prog.Preamble))
	}
	for _, fn := range prog.Functions {
		fmt.Fprintf(&b, "Func(%s)\n", fn.Name)
		b.WriteString(Dump(fn.Code))
	}
	return b.String()
}
