package layout

import (
	"testing"

	"github.com/cwbudde/tinybc/internal/ir"
)

func TestExternsAlwaysIncludesExit(t *testing.T) {
	got := Externs(nil)
	if len(got) != 1 || got[0] != "exit" {
		t.Fatalf("Externs(nil) = %v, want [exit]", got)
	}
}

func TestExternsIncludesDeclaredNamesInOrder(t *testing.T) {
	code := []ir.Instruction{
		ir.ExternVar("flush"),
		ir.ExternVar("beep"),
	}
	got := Externs(code)
	want := []string{"exit", "flush", "beep"}
	if len(got) != len(want) {
		t.Fatalf("Externs = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Externs[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestAssignGivesAutoVarsSequentialOffsets(t *testing.T) {
	code := []ir.Instruction{ir.AutoVar(3)}
	frame := Assign(code)
	if frame.Offsets[0] != 8 || frame.Offsets[1] != 16 || frame.Offsets[2] != 24 {
		t.Fatalf("Offsets = %v, want {0:8, 1:16, 2:24}", frame.Offsets)
	}
	if frame.Size != 24 {
		t.Fatalf("Size = %d, want 24", frame.Size)
	}
}

func TestAssignAppendsBinOpTempsAfterAutoVars(t *testing.T) {
	code := []ir.Instruction{
		ir.AutoVar(1),
		ir.BinOp(1000, ir.Literal(1), ir.Literal(2), ir.Add),
	}
	frame := Assign(code)
	if frame.Offsets[0] != 8 {
		t.Fatalf("Offsets[0] = %d, want 8", frame.Offsets[0])
	}
	if frame.Offsets[1000] != 16 {
		t.Fatalf("Offsets[1000] = %d, want 16", frame.Offsets[1000])
	}
	if frame.Size != 16 {
		t.Fatalf("Size = %d, want 16", frame.Size)
	}
}

func TestAssignReusesOffsetWhenTempIsAssignedAfterBinOp(t *testing.T) {
	code := []ir.Instruction{
		ir.BinOp(1000, ir.Literal(1), ir.Literal(2), ir.Add),
		ir.AutoAssign(1000, ir.Literal(5)),
	}
	frame := Assign(code)
	if len(frame.Offsets) != 1 {
		t.Fatalf("Offsets = %v, want exactly one slot for index 1000", frame.Offsets)
	}
}

func TestAlignTo16(t *testing.T) {
	cases := map[int]int{0: 0, 1: 16, 16: 16, 17: 32, 24: 32}
	for in, want := range cases {
		if got := AlignTo16(in); got != want {
			t.Fatalf("AlignTo16(%d) = %d, want %d", in, got, want)
		}
	}
}
