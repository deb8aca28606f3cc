package shaderir

import (
	"fmt"

	"github.com/gogpu/naga"
)

// Module is the opaque, deserialized form of a compiled GCN shader's
// resource and instruction description. Its contents are produced and
// consumed entirely by the Frontend implementation; the cache and
// shaderres packages only ever hold one to pass back to Frontend calls.
type Module struct {
	naga *naga.Module
}

// Frontend turns a guest shader binary into a Module the evaluator can
// walk. Deserializing the GCN instruction stream into resource
// expressions, and converting a Module onward into a host shader
// representation (SPIR-V or otherwise) for the pipeline the command-ring
// executor builds, are both deliberately left to the Frontend
// implementation: the cache only depends on this interface, never on a
// concrete shader compiler.
type Frontend interface {
	// Compile parses source and lowers it to a Module.
	Compile(source string) (*Module, error)
}

// NagaFrontend is the Frontend implementation backed by naga: source is
// WGSL text describing the host-side translation of a GCN shader's
// resource layout (emitted upstream by the guest shader recompiler),
// which naga parses and lowers to its intermediate representation.
type NagaFrontend struct{}

// Compile implements Frontend.
func (NagaFrontend) Compile(source string) (*Module, error) {
	ast, err := naga.Parse(source)
	if err != nil {
		return nil, fmt.Errorf("shaderir: parse: %w", err)
	}

	module, err := naga.Lower(ast)
	if err != nil {
		return nil, fmt.Errorf("shaderir: lower: %w", err)
	}

	return &Module{naga: module}, nil
}
