package aarch64_test

import (
	"testing"

	"github.com/cwbudde/tinybc/internal/ir"
	"github.com/cwbudde/tinybc/internal/lexer"
	"github.com/cwbudde/tinybc/internal/optimize"
	"github.com/cwbudde/tinybc/internal/parser"
	"github.com/cwbudde/tinybc/internal/target/aarch64"
	"github.com/gkampitakis/go-snaps/snaps"
)

func compile(t *testing.T, src string) *ir.Program {
	t.Helper()
	p := parser.New(lexer.New(src))
	prog := p.ParseProgram()
	if len(p.Errors()) > 0 {
		t.Fatalf("unexpected parse errors: %v", p.Errors())
	}
	lw := ir.NewLowerer(prog.Globals)
	out := lw.Lower(prog)
	optimize.Program(out)
	return out
}

func TestGenerateSnapshot(t *testing.T) {
	prog := compile(t, "g;\nmain(){auto i; i=0; while(i<3){g=i; i=i+1;} exit(g);}")
	asm, err := (&aarch64.Backend{}).Generate(prog)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	snaps.MatchSnapshot(t, "while_and_global", asm)
}
