// Package layout holds the IR-scanning helpers the native backends
// (x86_64, aarch64) share: extern discovery and stack-slot assignment.
// Both backends need the same answers to "what local indices exist and
// in what order were they first seen" before they can emit a prologue,
// so the scan lives here once instead of twice.
package layout

import "github.com/cwbudde/tinybc/internal/ir"

// Externs returns the set of extern symbol names a function declares, in
// declaration order. "exit" is always included even if the source never
// declares it explicitly, per spec.md §4.5 ("exit is always in the extern
// set").
func Externs(code []ir.Instruction) []string {
	seen := map[string]bool{"exit": true}
	names := []string{"exit"}
	for _, inst := range code {
		if inst.Kind == ir.KindExternVar && !seen[inst.Name] {
			seen[inst.Name] = true
			names = append(names, inst.Name)
		}
	}
	return names
}

// Frame is the stack-slot assignment for one function's locals, built by
// Assign per spec.md §4.5: AutoVar-declared locals get sequential 8-byte
// slots starting at offset 8 in declaration order; indices that first
// appear only as a BinOp destination (compiler temporaries) are appended
// afterward, in first-seen order.
type Frame struct {
	Offsets map[int]int // local index -> byte offset from the frame pointer
	Size    int         // total bytes of local storage, unpadded
}

// Assign scans code once and builds its Frame.
func Assign(code []ir.Instruction) Frame {
	offsets := map[int]int{}
	nextOffset := 8
	nextAutoIndex := 0

	for _, inst := range code {
		if inst.Kind == ir.KindAutoVar {
			for n := 0; n < inst.Count; n++ {
				offsets[nextAutoIndex] = nextOffset
				nextAutoIndex++
				nextOffset += 8
			}
		}
	}

	for _, inst := range code {
		if inst.Kind == ir.KindBinOp {
			if _, ok := offsets[inst.Dest]; !ok {
				offsets[inst.Dest] = nextOffset
				nextOffset += 8
			}
		}
	}

	return Frame{Offsets: offsets, Size: nextOffset - 8}
}

// AlignTo16 rounds n up to the next multiple of 16, as AArch64's stack
// discipline requires (spec.md §4.5).
func AlignTo16(n int) int {
	if n%16 == 0 {
		return n
	}
	return n + (16 - n%16)
}
