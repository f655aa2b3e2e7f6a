// Package aarch64 emits GAS-syntax assembly text for the AArch64 target.
// Output is assembled with `as -64` and linked against libc with gcc.
package aarch64

import (
	"fmt"
	"os/exec"
	"strings"

	"github.com/cwbudde/tinybc/internal/ir"
	"github.com/cwbudde/tinybc/internal/target"
	"github.com/cwbudde/tinybc/internal/target/layout"
)

func init() {
	target.Register(func() target.Backend { return &Backend{} },
		"aarch64", "arm64", "aarch64-linux")
}

// Backend is the AArch64/GAS target.
type Backend struct{}

func (b *Backend) Name() string      { return "aarch64" }
func (b *Backend) Extension() string { return "s" }

func (b *Backend) AssembleCmd(asmPath, objPath string) string {
	return fmt.Sprintf("as -64 %s -o %s", asmPath, objPath)
}

func (b *Backend) LinkCmd(objPath, exePath string) string {
	return fmt.Sprintf("gcc %s -o %s", objPath, exePath)
}

func (b *Backend) Available() bool {
	_, asErr := exec.LookPath("as")
	_, gccErr := exec.LookPath("gcc")
	return asErr == nil && gccErr == nil
}

func (b *Backend) Generate(prog *ir.Program) (string, error) {
	var g generator

	g.writeln(".text")
	g.writeln(".global main")
	g.writeln("")

	for _, fn := range prog.Functions {
		if err := g.emitFunction(fn); err != nil {
			return "", err
		}
	}

	if prog.GlobalCount > 0 {
		g.writeln("")
		g.writeln(".bss")
		g.writeln(".align 3")
		g.writeln("globals:")
		g.writefln("    .skip %d", prog.GlobalCount*8)
	}

	return g.sb.String(), nil
}

type generator struct {
	sb strings.Builder
}

func (g *generator) writeln(s string)                   { g.sb.WriteString(s); g.sb.WriteByte('\n') }
func (g *generator) writefln(format string, args ...any) { g.writeln(fmt.Sprintf(format, args...)) }

func (g *generator) emitFunction(fn ir.Function) error {
	frame := layout.Assign(fn.Code)
	size := layout.AlignTo16(frame.Size + 16) // +16 for saved fp/lr

	g.writefln("%s:", fn.Name)
	g.writefln("    sub sp, sp, #%d", size)
	g.writefln("    stp x29, x30, [sp, #%d]", size-16)
	g.writefln("    add x29, sp, #%d", size-16)

	for _, inst := range fn.Code {
		if err := g.emitInstruction(inst, frame); err != nil {
			return err
		}
	}

	g.writefln("    ldp x29, x30, [sp, #%d]", size-16)
	g.writefln("    add sp, sp, #%d", size)
	g.writeln("    mov x0, #0")
	g.writeln("    bl exit")
	return nil
}

// loadOperand loads the value of a into reg, since AArch64 has no memory
// operand form for most ALU instructions.
func (g *generator) loadOperand(reg string, a ir.Arg, frame layout.Frame) {
	switch a.Kind {
	case ir.ArgLiteral:
		g.writefln("    mov %s, #%d", reg, a.Literal)
	case ir.ArgVar:
		g.writefln("    ldr %s, [x29, #-%d]", reg, frame.Offsets[a.Index])
	case ir.ArgGlobal:
		g.writeln("    adrp x9, globals")
		g.writeln("    add x9, x9, :lo12:globals")
		if a.Index != 0 {
			g.writefln("    ldr %s, [x9, #%d]", reg, a.Index*8)
		} else {
			g.writefln("    ldr %s, [x9]", reg)
		}
	}
}

func (g *generator) storeDest(dest int, frame layout.Frame, reg string) {
	g.writefln("    str %s, [x29, #-%d]", reg, frame.Offsets[dest])
}

func (g *generator) emitInstruction(inst ir.Instruction, frame layout.Frame) error {
	switch inst.Kind {
	case ir.KindAutoVar, ir.KindGlobalVar, ir.KindExternVar:
		// Declarations only.

	case ir.KindAutoAssign:
		g.loadOperand("x0", inst.Arg, frame)
		g.storeDest(inst.Dest, frame, "x0")

	case ir.KindGlobalAssign:
		g.loadOperand("x0", inst.Arg, frame)
		g.writeln("    adrp x9, globals")
		g.writeln("    add x9, x9, :lo12:globals")
		if inst.Dest != 0 {
			g.writefln("    str x0, [x9, #%d]", inst.Dest*8)
		} else {
			g.writeln("    str x0, [x9]")
		}

	case ir.KindBinOp:
		g.emitBinOp(inst, frame)

	case ir.KindFunCall:
		if inst.HasArg {
			g.loadOperand("x0", inst.Arg, frame)
		}
		g.writefln("    bl %s", inst.Name)

	case ir.KindLabel:
		g.writefln("%s:", inst.Name)

	case ir.KindJump:
		g.writefln("    b %s", inst.Name)

	case ir.KindJumpIfFalse:
		g.loadOperand("x0", inst.Arg, frame)
		g.writeln("    cmp x0, #0")
		g.writefln("    b.eq %s", inst.Name)

	case ir.KindRet:
		if inst.HasArg {
			g.loadOperand("x0", inst.Arg, frame)
		} else {
			g.writeln("    mov x0, #0")
		}
		g.writeln("    bl exit")

	default:
		return fmt.Errorf("aarch64: unhandled instruction kind %v", inst.Kind)
	}
	return nil
}

func (g *generator) emitBinOp(inst ir.Instruction, frame layout.Frame) {
	g.loadOperand("x0", inst.Left, frame)
	g.loadOperand("x1", inst.Right, frame)

	switch inst.Op {
	case ir.Add:
		g.writeln("    add x0, x0, x1")
	case ir.Sub:
		g.writeln("    sub x0, x0, x1")
	case ir.Mul:
		g.writeln("    mul x0, x0, x1")
	case ir.Div:
		g.writeln("    sdiv x0, x0, x1")
	case ir.Mod:
		g.writeln("    sdiv x2, x0, x1")
		g.writeln("    msub x0, x2, x1, x0")
	case ir.Eq, ir.Ne, ir.Lt, ir.Le, ir.Gt, ir.Ge:
		g.writeln("    cmp x0, x1")
		g.writefln("    cset x0, %s", condCode(inst.Op))
	case ir.And:
		label := fmt.Sprintf("and_%d", inst.Dest)
		g.writeln("    cmp x0, #0")
		g.writefln("    b.eq .%s_false", label)
		g.writeln("    cmp x1, #0")
		g.writefln("    b.eq .%s_false", label)
		g.writeln("    mov x0, #1")
		g.writefln("    b .%s_end", label)
		g.writefln(".%s_false:", label)
		g.writeln("    mov x0, #0")
		g.writefln(".%s_end:", label)
	case ir.Or:
		label := fmt.Sprintf("or_%d", inst.Dest)
		g.writeln("    cmp x0, #0")
		g.writefln("    b.ne .%s_true", label)
		g.writeln("    cmp x1, #0")
		g.writefln("    b.ne .%s_true", label)
		g.writeln("    mov x0, #0")
		g.writefln("    b .%s_end", label)
		g.writefln(".%s_true:", label)
		g.writeln("    mov x0, #1")
		g.writefln(".%s_end:", label)
	case ir.Shl:
		g.writeln("    lsl x0, x0, x1")
	case ir.Shr:
		g.writeln("    lsr x0, x0, x1")
	}

	g.storeDest(inst.Dest, frame, "x0")
}

func condCode(op ir.Op) string {
	switch op {
	case ir.Eq:
		return "eq"
	case ir.Ne:
		return "ne"
	case ir.Lt:
		return "lt"
	case ir.Le:
		return "le"
	case ir.Gt:
		return "gt"
	case ir.Ge:
		return "ge"
	default:
		return "eq"
	}
}
