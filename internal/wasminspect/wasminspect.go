// Package wasminspect implements the `-parse` CLI utility: a standalone
// sniff of a .wasm or .wat file, unrelated to compilation. spec.md §1
// scopes this out of the compiler's core, so it stays deliberately small
// and stdlib-only.
package wasminspect

import (
	"bytes"
	"fmt"
	"os"
	"strings"
)

// wasmMagic is the four-byte header every binary WebAssembly module starts
// with, followed by a four-byte version.
var wasmMagic = []byte{0x00, 0x61, 0x73, 0x6d}

// Kind is what Inspect determined the file to be.
type Kind int

const (
	Unknown Kind = iota
	BinaryModule
	TextModule
)

func (k Kind) String() string {
	switch k {
	case BinaryModule:
		return "binary wasm module"
	case TextModule:
		return "wasm text module"
	default:
		return "unrecognized"
	}
}

// Result is what Inspect reports about a file.
type Result struct {
	Kind    Kind
	Version uint32 // meaningful only for BinaryModule
}

// Inspect reads path and classifies it by magic bytes (binary) or a
// leading "(module" token (text), per spec.md §6.
func Inspect(path string) (Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Result{}, fmt.Errorf("read %s: %w", path, err)
	}
	return InspectBytes(data), nil
}

// InspectBytes classifies raw file content without touching the filesystem.
func InspectBytes(data []byte) Result {
	if len(data) >= 8 && bytes.Equal(data[:4], wasmMagic) {
		version := uint32(data[4]) | uint32(data[5])<<8 | uint32(data[6])<<16 | uint32(data[7])<<24
		return Result{Kind: BinaryModule, Version: version}
	}

	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "(module") {
		return Result{Kind: TextModule}
	}

	return Result{Kind: Unknown}
}

// Describe renders a Result as the one-line human summary the `-parse`
// flag prints.
func Describe(path string, r Result) string {
	if r.Kind == BinaryModule {
		return fmt.Sprintf("%s: %s (version %d)", path, r.Kind, r.Version)
	}
	return fmt.Sprintf("%s: %s", path, r.Kind)
}
