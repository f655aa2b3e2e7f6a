// Package target defines the backend contract every code-generation target
// implements and the lazily-initialized registry that maps target names
// (and their aliases) to a concrete Backend.
package target

import (
	"fmt"
	"sync"

	"github.com/cwbudde/tinybc/internal/ir"
)

// Backend is a concrete code generator for one machine or runtime target.
// Per spec.md §4.5 it exposes a name, an output file extension, a
// code-generation function, the shell commands needed to assemble and link
// its output, and an availability predicate (whether the external tools it
// depends on are present).
type Backend interface {
	// Name is the canonical, human-readable target name.
	Name() string

	// Extension is the assembly-file extension this backend emits, without
	// the leading dot ("asm", "s", "wat").
	Extension() string

	// Generate lowers an optimized IR program to this target's assembly text.
	Generate(prog *ir.Program) (string, error)

	// AssembleCmd builds the shell command that turns asmPath into objPath.
	AssembleCmd(asmPath, objPath string) string

	// LinkCmd builds the shell command that turns objPath into exePath.
	LinkCmd(objPath, exePath string) string

	// Available reports whether the external tools this backend shells out
	// to (assembler, linker, wat2wasm, ...) can be found.
	Available() bool
}

// Factory builds a fresh Backend instance. A registered factory is invoked
// at most once per registered name, on that name's first lookup, and the
// result is cached under that name; aliases therefore get separate instances.
type Factory func() Backend

var (
	once         sync.Once
	mu           sync.Mutex
	factories    map[string]Factory
	instances    map[string]Backend
)

// registerDefaults creates the empty factory and instance maps. It registers
// no names itself; the target subpackages' init() functions populate the
// registry by calling Register.
func registerDefaults() {
	factories = map[string]Factory{}
	instances = map[string]Backend{}
}

// Register associates one or more names (a canonical name plus any
// aliases) with a Factory. Called from each backend subpackage's init().
func Register(factory Factory, names ...string) {
	mu.Lock()
	defer mu.Unlock()
	once.Do(registerDefaults)
	for _, name := range names {
		factories[name] = factory
	}
}

// Lookup resolves a target name (or alias) to a Backend, constructing and
// caching it on first use. The registry is lazily initialized: nothing is
// built until the first Lookup call, matching spec.md §4.5's "lazily
// initializes on first lookup".
func Lookup(name string) (Backend, error) {
	mu.Lock()
	defer mu.Unlock()
	once.Do(registerDefaults)

	if b, ok := instances[name]; ok {
		return b, nil
	}
	factory, ok := factories[name]
	if !ok {
		return nil, fmt.Errorf("unknown target %q", name)
	}
	b := factory()
	instances[name] = b
	return b, nil
}

// Names returns every registered target name and alias, for `-list-targets`.
func Names() []string {
	mu.Lock()
	defer mu.Unlock()
	once.Do(registerDefaults)

	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	return names
}
