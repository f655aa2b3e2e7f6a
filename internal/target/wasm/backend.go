// Package wasm emits a WebAssembly text (WAT) module for the wasm target.
// WAT has no arbitrary jumps, so this backend only reconstructs structured
// control flow for while loops, using the label-name convention IR
// lowering establishes; every other label/jump degrades to a comment, per
// the original compiler's documented limitation.
package wasm

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
		"wasm", "wasm32", "wasmtime")
}

// Backend is the WebAssembly-text target.
type Backend struct{}

func (b *Backend) Name() string      { return "wasm" }
func (b *Backend) Extension() string { return "wat" }

func (b *Backend) AssembleCmd(asmPath, objPath string) string {
	return fmt.Sprintf("wat2wasm %s -o %s", asmPath, objPath)
}

func (b *Backend) LinkCmd(objPath, exePath string) string {
	return fmt.Sprintf("cp %s %s", objPath, exePath)
}

func (b *Backend) Available() bool {
	_, err := exec.LookPath("wat2wasm")
	return err == nil
}

// loopMatch is one while-loop's pairing found by the pre-pass: the
// JumpIfFalse instruction that tests the loop condition, and the
// start/end label names it bridges.
type loopMatch struct {
	startLabel string
	endLabel   string
	jifIdx     int
}

// findLoopMatches implements the pre-pass spec.md §4.5 describes: for each
// while_start_N label, the first subsequent JumpIfFalse targeting a
// while_end_ label is its match.
func findLoopMatches(code []ir.Instruction) []loopMatch {
	var matches []loopMatch
	for i, inst := range code {
		if inst.Kind != ir.KindLabel || !strings.HasPrefix(inst.Name, "while_start_") {
			continue
		}
		for j := i + 1; j < len(code); j++ {
			if code[j].Kind == ir.KindJumpIfFalse && strings.HasPrefix(code[j].Name, "while_end_") {
				matches = append(matches, loopMatch{startLabel: inst.Name, endLabel: code[j].Name, jifIdx: j})
				break
			}
		}
	}
	return matches
}

// externArity reports, for every extern name FunCall references in code,
// whether it is ever called with an argument.
func externArity(code []ir.Instruction) map[string]bool {
	hasArg := map[string]bool{}
	for _, inst := range code {
		if inst.Kind != ir.KindFunCall {
			continue
		}
		hasArg[inst.Name] = hasArg[inst.Name] || inst.HasArg
	}
	return hasArg
}

// Generate emits one WAT module covering every function in prog. Non-goals
// restrict the source language to a single-entry main, so in practice
// there is exactly one function; the loop below still handles more than
// one defensively.
func (b *Backend) Generate(prog *ir.Program) (string, error) {
	var sb strings.Builder
	sb.WriteString("(module\n")
	sb.WriteString("  (import \"wasi_snapshot_preview1\" \"proc_exit\" (func $exit (param i32)))\n")

	arity := map[string]bool{}
	for _, fn := range prog.Functions {
		for name, hasArg := range externArity(fn.Code) {
			if name == "exit" {
				continue
			}
			arity[name] = arity[name] || hasArg
		}
	}
	for name, hasArg := range arity {
		if hasArg {
			fmt.Fprintf(&sb, "  (import \"env\" \"%s\" (func $%s (param i64)))\n", name, name)
		} else {
			fmt.Fprintf(&sb, "  (import \"env\" \"%s\" (func $%s))\n", name, name)
		}
	}

	for i := 0; i < prog.GlobalCount; i++ {
		fmt.Fprintf(&sb, "  (global $g%d (mut i64) (i64.const 0))\n", i)
	}

	for _, fn := range prog.Functions {
		body, err := generateFunction(fn)
		if err != nil {
			return "", err
		}
		sb.WriteString(body)
	}

	sb.WriteString(")\n")
	return sb.String(), nil
}

func generateFunction(fn ir.Function) (string, error) {
	frame := layout.Assign(fn.Code)
	matches := findLoopMatches(fn.Code)

	matchedJif := map[int]loopMatch{}
	for _, m := range matches {
		matchedJif[m.jifIdx] = m
	}
	isLoopStart := map[string]bool{}
	for _, m := range matches {
		isLoopStart[m.startLabel] = true
	}
	endIsLoop := map[string]bool{}
	for _, m := range matches {
		endIsLoop[m.endLabel] = true
	}

	var header strings.Builder
	if fn.Name == "main" {
		header.WriteString("  (func $main (export \"_start\")\n")
	} else {
		fmt.Fprintf(&header, "  (func $%s\n", fn.Name)
	}
	for idx := range frame.Offsets {
		fmt.Fprintf(&header, "    (local $l%d i64)\n", idx)
	}

	var body strings.Builder
	for i, inst := range fn.Code {
		if err := emitInstruction(&body, inst, i, matchedJif, isLoopStart, endIsLoop); err != nil {
			return "", err
		}
	}

	header.WriteString(body.String())
	header.WriteString("  )\n")
	return header.String(), nil
}

func pushArg(w *strings.Builder, a ir.Arg) {
	switch a.Kind {
	case ir.ArgLiteral:
		fmt.Fprintf(w, "    i64.const %d\n", a.Literal)
	case ir.ArgVar:
		fmt.Fprintf(w, "    local.get $l%d\n", a.Index)
	case ir.ArgGlobal:
		fmt.Fprintf(w, "    global.get $g%d\n", a.Index)
	}
}

func emitInstruction(
	w *strings.Builder,
	inst ir.Instruction,
	pos int,
	matchedJif map[int]loopMatch,
	isLoopStart, endIsLoop map[string]bool,
) error {
	switch inst.Kind {
	case ir.KindAutoVar, ir.KindGlobalVar, ir.KindExternVar:
		// Declarations only.

	case ir.KindAutoAssign:
		pushArg(w, inst.Arg)
		fmt.Fprintf(w, "    local.set $l%d\n", inst.Dest)

	case ir.KindGlobalAssign:
		pushArg(w, inst.Arg)
		fmt.Fprintf(w, "    global.set $g%d\n", inst.Dest)

	case ir.KindBinOp:
		emitBinOp(w, inst)

	case ir.KindFunCall:
		if inst.HasArg {
			pushArg(w, inst.Arg)
		}
		fmt.Fprintf(w, "    call $%s\n", inst.Name)

	case ir.KindLabel:
		switch {
		case isLoopStart[inst.Name]:
			endLabel := loopEndFor(matchedJif, inst.Name)
			fmt.Fprintf(w, "    (block $%s\n", endLabel)
			fmt.Fprintf(w, "    (loop $%s\n", inst.Name)
		case endIsLoop[inst.Name]:
			w.WriteString("    ) ;; end loop\n")
			w.WriteString("    ) ;; end block\n")
		default:
			fmt.Fprintf(w, "    ;; label %s\n", inst.Name)
		}

	case ir.KindJump:
		if isLoopStart[inst.Name] {
			fmt.Fprintf(w, "    br $%s\n", inst.Name)
		} else {
			fmt.Fprintf(w, "    ;; jump %s\n", inst.Name)
		}

	case ir.KindJumpIfFalse:
		if _, ok := matchedJif[pos]; ok {
			pushArg(w, inst.Arg)
			w.WriteString("    i64.eqz\n")
			fmt.Fprintf(w, "    br_if $%s\n", inst.Name)
		} else {
			fmt.Fprintf(w, "    ;; jump_if_false %s\n", inst.Name)
		}

	case ir.KindRet:
		if inst.HasArg {
			pushArg(w, inst.Arg)
		} else {
			w.WriteString("    i64.const 0\n")
		}
		w.WriteString("    i32.wrap_i64\n")
		w.WriteString("    call $exit\n")

	default:
		return fmt.Errorf("wasm: unhandled instruction kind %v", inst.Kind)
	}
	return nil
}

func loopEndFor(matchedJif map[int]loopMatch, startLabel string) string {
	for _, m := range matchedJif {
		if m.startLabel == startLabel {
			return m.endLabel
		}
	}
	return "unmatched"
}

func emitBinOp(w *strings.Builder, inst ir.Instruction) {
	switch inst.Op {
	case ir.Add, ir.Sub, ir.Mul, ir.Div, ir.Mod, ir.Shl, ir.Shr:
		pushArg(w, inst.Left)
		pushArg(w, inst.Right)
		w.WriteString("    " + arithOp(inst.Op) + "\n")

	case ir.Eq, ir.Ne, ir.Lt, ir.Le, ir.Gt, ir.Ge:
		pushArg(w, inst.Left)
		pushArg(w, inst.Right)
		w.WriteString("    " + compareOp(inst.Op) + "\n")
		w.WriteString("    i64.extend_i32_u\n")

	case ir.And, ir.Or:
		pushArg(w, inst.Left)
		w.WriteString("    i64.const 0\n")
		w.WriteString("    i64.ne\n")
		pushArg(w, inst.Right)
		w.WriteString("    i64.const 0\n")
		w.WriteString("    i64.ne\n")
		if inst.Op == ir.And {
			w.WriteString("    i32.and\n")
		} else {
			w.WriteString("    i32.or\n")
		}
		w.WriteString("    i64.extend_i32_u\n")
	}
	fmt.Fprintf(w, "    local.set $l%d\n", inst.Dest)
}

func arithOp(op ir.Op) string {
	switch op {
	case ir.Add:
		return "i64.add"
	case ir.Sub:
		return "i64.sub"
	case ir.Mul:
		return "i64.mul"
	case ir.Div:
		return "i64.div_s"
	case ir.Mod:
		return "i64.rem_s"
	case ir.Shl:
		return "i64.shl"
	case ir.Shr:
		return "i64.shr_s"
	default:
		return "i64.add"
	}
}

func compareOp(op ir.Op) string {
	switch op {
	case ir.Eq:
		return "i64.eq"
	case ir.Ne:
		return "i64.ne"
	case ir.Lt:
		return "i64.lt_s"
	case ir.Le:
		return "i64.le_s"
	case ir.Gt:
		return "i64.gt_s"
	case ir.Ge:
		return "i64.ge_s"
	default:
		return "i64.eq"
	}
}
