// Package pipeline wires the compiler stages (lex, parse, lower, optimize,
// generate, assemble, link) into the single batch operation the CLI drives,
// grounded on go-dws's cmd/dwscript/cmd/compile.go shape: read source,
// run each stage, accumulate and format diagnostics, return a plain error
// on the first fatal one.
package pipeline

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/cwbudde/tinybc/internal/errors"
	"github.com/cwbudde/tinybc/internal/ir"
	"github.com/cwbudde/tinybc/internal/lexer"
	"github.com/cwbudde/tinybc/internal/optimize"
	"github.com/cwbudde/tinybc/internal/parser"
	"github.com/cwbudde/tinybc/internal/target"
)

// Options configures one compile invocation. It mirrors the CLI flags in
// spec.md §6 one-to-one so cmd/tinybc can stay a thin cobra wrapper.
type Options struct {
	InputFile      string
	OutputStem     string // defaults to InputFile's stem when empty
	TargetName     string
	OptimizePasses int // values <= 0 mean optimize.MaxPasses, larger values are capped at it; the -optimize flag itself stays inert per spec.md §6
	PrintIR        bool
	AsmOnly        bool
	Stdout         *os.File
	Stderr         *os.File
}

// Result reports what a successful Run produced, for callers (and tests)
// that want to inspect output without reopening files.
type Result struct {
	AsmPath string
	ObjPath string
	ExePath string
	Asm     string
}

// Run executes one full compilation: source file to assembly, and (unless
// AsmOnly) through the assembler and linker to an executable.
func Run(opts Options) (*Result, error) {
	source, err := os.ReadFile(opts.InputFile)
	if err != nil {
		return nil, fmt.Errorf("I/O error: read %s: %w", opts.InputFile, err)
	}
	src := string(source)

	backend, err := target.Lookup(opts.TargetName)
	if err != nil {
		return nil, fmt.Errorf("target error: %w", err)
	}

	l := lexer.New(src)
	p := parser.New(l)
	program := p.ParseProgram()

	if lexErr := p.LexError(); lexErr != nil {
		return nil, fmt.Errorf("lexical error: %w", lexErr)
	}
	if len(p.Errors()) > 0 {
		return nil, fmt.Errorf("syntax error(s):\n%s", formatParseErrors(p.Errors(), src, opts.InputFile))
	}

	lw := ir.NewLowerer(program.Globals)
	lowered := lw.Lower(program)
	if len(lw.Diagnostics()) > 0 {
		fmt.Fprint(stderrOf(opts), formatLowerDiagnostics(lw.Diagnostics(), src, opts.InputFile))
	}

	optimize.ProgramN(lowered, clampPasses(opts.OptimizePasses))

	if opts.PrintIR {
		fmt.Fprintln(stdoutOf(opts), ir.DumpProgram(lowered))
	}

	asm, err := backend.Generate(lowered)
	if err != nil {
		return nil, fmt.Errorf("target error: %w", err)
	}

	if opts.AsmOnly {
		fmt.Fprintln(stdoutOf(opts), asm)
		return &Result{Asm: asm}, nil
	}

	stem := opts.OutputStem
	if stem == "" {
		stem = stemOf(opts.InputFile)
	}

	if !backend.Available() {
		return nil, fmt.Errorf("target error: target %q is unavailable (required external tools not found)", opts.TargetName)
	}

	asmPath := stem + "." + backend.Extension()
	if err := os.WriteFile(asmPath, []byte(asm), 0o644); err != nil {
		return nil, fmt.Errorf("I/O error: write %s: %w", asmPath, err)
	}

	objPath := stem + ".o"
	exePath := stem

	if err := runShell(backend.AssembleCmd(asmPath, objPath)); err != nil {
		return nil, fmt.Errorf("target error: assemble: %w", err)
	}
	if err := runShell(backend.LinkCmd(objPath, exePath)); err != nil {
		return nil, fmt.Errorf("target error: link: %w", err)
	}

	return &Result{AsmPath: asmPath, ObjPath: objPath, ExePath: exePath, Asm: asm}, nil
}

func clampPasses(n int) int {
	if n <= 0 {
		return optimize.MaxPasses
	}
	if n > optimize.MaxPasses {
		return optimize.MaxPasses
	}
	return n
}

func stemOf(path string) string {
	if idx := strings.LastIndexByte(path, '.'); idx > strings.LastIndexByte(path, '/') {
		return path[:idx]
	}
	return path
}

func runShell(cmdline string) error {
	if cmdline == "" {
		return nil
	}
	cmd := exec.Command("sh", "-c", cmdline)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

func formatParseErrors(perrs []parser.ParseError, src, file string) string {
	cerrs := make([]*errors.CompilerError, len(perrs))
	for i, pe := range perrs {
		cerrs[i] = errors.New(errors.Syntax, pe.Pos, pe.Message, src, file)
	}
	return errors.FormatAll(cerrs)
}

func formatLowerDiagnostics(diags []ir.Diagnostic, src, file string) string {
	cerrs := make([]*errors.CompilerError, len(diags))
	for i, d := range diags {
		cerrs[i] = errors.New(errors.Semantic, d.Pos, d.Message, src, file)
	}
	return errors.FormatAll(cerrs)
}

func stdoutOf(opts Options) *os.File {
	if opts.Stdout != nil {
		return opts.Stdout
	}
	return os.Stdout
}

func stderrOf(opts Options) *os.File {
	if opts.Stderr != nil {
		return opts.Stderr
	}
	return os.Stderr
}
