// Package x86_64 emits FASM-syntax ELF64 object text for the x86-64 target.
// The emitted file is assembled with fasm and linked against libc with
// gcc -no-pie so extern symbols (starting with exit) resolve normally.
package x86_64

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
		"x86_64", "x86_64-linux")
}

// Backend is the x86-64/FASM target.
type Backend struct{}

func (b *Backend) Name() string      { return "x86_64" }
func (b *Backend) Extension() string { return "asm" }

func (b *Backend) AssembleCmd(asmPath, objPath string) string {
	return fmt.Sprintf("fasm %s %s", asmPath, objPath)
}

func (b *Backend) LinkCmd(objPath, exePath string) string {
	return fmt.Sprintf("gcc -no-pie %s -o %s", objPath, exePath)
}

func (b *Backend) Available() bool {
	_, fasmErr := exec.LookPath("fasm")
	_, gccErr := exec.LookPath("gcc")
	return fasmErr == nil && gccErr == nil
}

// Generate emits one FASM module covering every function in prog, with a
// shared .bss segment sized from prog.GlobalCount.
func (b *Backend) Generate(prog *ir.Program) (string, error) {
	var g generator
	g.writeln("format ELF64")
	g.writeln("")
	g.writeln("public main")

	externs := map[string]bool{}
	for _, fn := range prog.Functions {
		for _, name := range layout.Externs(fn.Code) {
			externs[name] = true
		}
	}
	for name := range externs {
		g.writeln("extrn " + name)
	}
	g.writeln("")

	g.writeln("section '.text' executable")
	for _, fn := range prog.Functions {
		if err := g.emitFunction(fn); err != nil {
			return "", err
		}
	}

	g.writeln("")
	g.writeln("section '.bss' writeable")
	if prog.GlobalCount > 0 {
		g.writefln("globals rb %d", prog.GlobalCount*8)
	}

	return g.sb.String(), nil
}

type generator struct {
	sb strings.Builder
}

func (g *generator) writeln(s string)                      { g.sb.WriteString(s); g.sb.WriteByte('\n') }
func (g *generator) writefln(format string, args ...any)    { g.writeln(fmt.Sprintf(format, args...)) }

func (g *generator) emitFunction(fn ir.Function) error {
	frame := layout.Assign(fn.Code)

	g.writefln("%s:", fn.Name)
	g.writeln("    push rbp")
	g.writeln("    mov rbp, rsp")
	if frame.Size > 0 {
		g.writefln("    sub rsp, %d", frame.Size)
	}

	for _, inst := range fn.Code {
		if err := g.emitInstruction(inst, frame); err != nil {
			return err
		}
	}

	g.writeln("    mov rsp, rbp")
	g.writeln("    pop rbp")
	g.writeln("    mov edi, 0")
	g.writeln("    call exit")
	return nil
}

func (g *generator) operand(a ir.Arg, frame layout.Frame) string {
	switch a.Kind {
	case ir.ArgLiteral:
		return fmt.Sprintf("%d", a.Literal)
	case ir.ArgVar:
		return fmt.Sprintf("[rbp-%d]", frame.Offsets[a.Index])
	case ir.ArgGlobal:
		return fmt.Sprintf("[globals+%d]", a.Index*8)
	default:
		return "0"
	}
}

func (g *generator) storeDest(dest int, frame layout.Frame, reg string) {
	g.writefln("    mov [rbp-%d], %s", frame.Offsets[dest], reg)
}

func (g *generator) emitInstruction(inst ir.Instruction, frame layout.Frame) error {
	switch inst.Kind {
	case ir.KindAutoVar, ir.KindGlobalVar, ir.KindExternVar:
		// Declarations only; no code to emit.

	case ir.KindAutoAssign:
		g.writefln("    mov rax, %s", g.operand(inst.Arg, frame))
		g.storeDest(inst.Dest, frame, "rax")

	case ir.KindGlobalAssign:
		g.writefln("    mov rax, %s", g.operand(inst.Arg, frame))
		g.writefln("    mov [globals+%d], rax", inst.Dest*8)

	case ir.KindBinOp:
		g.emitBinOp(inst, frame)

	case ir.KindFunCall:
		if inst.HasArg {
			g.writefln("    mov rdi, %s", g.operand(inst.Arg, frame))
		}
		g.writefln("    call %s", inst.Name)

	case ir.KindLabel:
		g.writefln("%s:", inst.Name)

	case ir.KindJump:
		g.writefln("    jmp %s", inst.Name)

	case ir.KindJumpIfFalse:
		g.writefln("    mov rax, %s", g.operand(inst.Arg, frame))
		g.writeln("    test rax, rax")
		g.writefln("    jz %s", inst.Name)

	case ir.KindRet:
		if inst.HasArg {
			g.writefln("    mov rdi, %s", g.operand(inst.Arg, frame))
		} else {
			g.writeln("    mov rdi, 0")
		}
		g.writeln("    call exit")

	default:
		return fmt.Errorf("x86_64: unhandled instruction kind %v", inst.Kind)
	}
	return nil
}

func (g *generator) emitBinOp(inst ir.Instruction, frame layout.Frame) {
	g.writefln("    mov rax, %s", g.operand(inst.Left, frame))
	g.writefln("    mov rbx, %s", g.operand(inst.Right, frame))

	switch inst.Op {
	case ir.Add:
		g.writeln("    add rax, rbx")
	case ir.Sub:
		g.writeln("    sub rax, rbx")
	case ir.Mul:
		g.writeln("    imul rax, rbx")
	case ir.Div:
		g.writeln("    cqo")
		g.writeln("    idiv rbx")
	case ir.Mod:
		g.writeln("    cqo")
		g.writeln("    idiv rbx")
		g.writeln("    mov rax, rdx")
	case ir.Eq, ir.Ne, ir.Lt, ir.Le, ir.Gt, ir.Ge:
		g.writeln("    cmp rax, rbx")
		g.writefln("    %s al", setCC(inst.Op))
		g.writeln("    movzx rax, al")
	case ir.And:
		label := fmt.Sprintf("and_%d", inst.Dest)
		g.writeln("    cmp rax, 0")
		g.writefln("    je .%s_false", label)
		g.writeln("    cmp rbx, 0")
		g.writefln("    je .%s_false", label)
		g.writeln("    mov rax, 1")
		g.writefln("    jmp .%s_end", label)
		g.writefln(".%s_false:", label)
		g.writeln("    mov rax, 0")
		g.writefln(".%s_end:", label)
	case ir.Or:
		label := fmt.Sprintf("or_%d", inst.Dest)
		g.writeln("    cmp rax, 0")
		g.writefln("    jne .%s_true", label)
		g.writeln("    cmp rbx, 0")
		g.writefln("    jne .%s_true", label)
		g.writeln("    mov rax, 0")
		g.writefln("    jmp .%s_end", label)
		g.writefln(".%s_true:", label)
		g.writeln("    mov rax, 1")
		g.writefln(".%s_end:", label)
	case ir.Shl:
		g.writeln("    mov cl, bl")
		g.writeln("    shl rax, cl")
	case ir.Shr:
		g.writeln("    mov cl, bl")
		g.writeln("    shr rax, cl")
	}

	g.storeDest(inst.Dest, frame, "rax")
}

func setCC(op ir.Op) string {
	switch op {
	case ir.Eq:
		return "sete"
	case ir.Ne:
		return "setne"
	case ir.Lt:
		return "setl"
	case ir.Le:
		return "setle"
	case ir.Gt:
		return "setg"
	case ir.Ge:
		return "setge"
	default:
		return "sete"
	}
}
