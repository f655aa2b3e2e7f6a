// Package wasmedge composes the wasm backend's code generation with a
// different toolchain: wat2wasm produces the .wasm module, then a WasmEdge
// AOT compile step optimizes and registers WASI host bindings, matching
// spec.md §4.5's "WasmEdge backend delegates to WAT, composes commands".
package wasmedge

import (
	"fmt"
	"os/exec"

	"github.com/cwbudde/tinybc/internal/ir"
	"github.com/cwbudde/tinybc/internal/target"
	"github.com/cwbudde/tinybc/internal/target/wasm"
)

func init() {
	target.Register(func() target.Backend { return &Backend{} },
		"wasmedge")
}

// Backend wraps the wasm target's code generator with WasmEdge's
// ahead-of-time compilation pipeline instead of a plain wat2wasm+cp.
type Backend struct {
	wat wasm.Backend
}

func (b *Backend) Name() string      { return "wasmedge" }
func (b *Backend) Extension() string { return b.wat.Extension() }

func (b *Backend) Generate(prog *ir.Program) (string, error) {
	return b.wat.Generate(prog)
}

func (b *Backend) AssembleCmd(asmPath, objPath string) string {
	return fmt.Sprintf("wat2wasm %s -o %s", asmPath, objPath)
}

// LinkCmd invokes the WasmEdge AOT compiler at optimization level O3 with
// WASI host registrations enabled, producing a `.aot` artifact at exePath.
func (b *Backend) LinkCmd(objPath, exePath string) string {
	return fmt.Sprintf("wasmedgec --optimize O3 --enable-all-statistics --wasi %s %s", objPath, exePath)
}

func (b *Backend) Available() bool {
	_, wat2wasmErr := exec.LookPath("wat2wasm")
	_, wasmedgecErr := exec.LookPath("wasmedgec")
	return wat2wasmErr == nil && wasmedgecErr == nil
}
