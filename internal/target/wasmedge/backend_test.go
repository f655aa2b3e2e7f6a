package wasmedge

import (
	"strings"
	"testing"

	"github.com/cwbudde/tinybc/internal/target"
)

func TestRegisteredUnderCanonicalName(t *testing.T) {
	b, err := target.Lookup("wasmedge")
	if err != nil {
		t.Fatalf("Lookup(\"wasmedge\") failed: %v", err)
	}
	if _, ok := b.(*Backend); !ok {
		t.Fatalf("Lookup(\"wasmedge\") = %T, want *wasmedge.Backend", b)
	}
}

func TestWasmtimeIsNotRegisteredHere(t *testing.T) {
	// wasmtime runs plain WAT, not the WasmEdge AOT pipeline, so it belongs
	// to the wasm backend, not this one.
	b, err := target.Lookup("wasmtime")
	if err != nil {
		t.Fatalf("Lookup(\"wasmtime\") failed: %v", err)
	}
	if _, ok := b.(*Backend); ok {
		t.Fatalf("Lookup(\"wasmtime\") resolved to *wasmedge.Backend, want the plain wasm backend")
	}
}

func TestLinkCmdInvokesWasmedgeAOT(t *testing.T) {
	b := &Backend{}
	cmd := b.LinkCmd("out.wasm", "out.aot")
	if !strings.Contains(cmd, "wasmedgec") || !strings.Contains(cmd, "O3") {
		t.Fatalf("LinkCmd = %q, want a wasmedgec -O3 invocation", cmd)
	}
}

func TestExtensionMatchesWatBackend(t *testing.T) {
	if (&Backend{}).Extension() != "wat" {
		t.Fatalf("Extension = %q, want wat", (&Backend{}).Extension())
	}
}
