// Package shaderres evaluates a shader's declared resource descriptors
// (buffers, textures, samplers, and raw pointer ranges) from the small
// symbolic IR in package shaderir down to concrete GNM descriptor
// records and guest address ranges, and builds the GPU-visible memory
// tables the compiled shader indexes at runtime.
package shaderres

import (
	"fmt"

	"github.com/gogpu/gfxcache/gnm"
	"github.com/gogpu/gfxcache/ident/track"
	"github.com/gogpu/gfxcache/shaderir"
)

// Pointer is a raw address range a shader reads directly, without going
// through a V#/T#/S# descriptor: [base+offset, base+offset+size).
type Pointer struct {
	ResourceSlot int
	Size         uint64
	BaseExpr     *shaderir.Node
	OffsetExpr   *shaderir.Node
}

// BufferRes is a shader's symbolic description of a V# (vertex/typed
// buffer) descriptor: one IR expression per 32-bit word of the packed
// record.
type BufferRes struct {
	ResourceSlot int
	Access       track.Access
	Words        [4]*shaderir.Node
}

// TextureRes is a shader's symbolic description of a T# (texture)
// descriptor. Words holds 4 entries for formats whose extended T# words
// are not read (e.g. 1D/2D without sparse/array extras) or 8 for the
// full record.
type TextureRes struct {
	ResourceSlot int
	Access       track.Access
	Words        []*shaderir.Node
}

// SamplerRes is a shader's symbolic description of an S# (sampler)
// descriptor.
type SamplerRes struct {
	ResourceSlot int
	Words        [4]*shaderir.Node
}

// Resources is the full set of resource descriptors a compiled shader
// declares.
type Resources struct {
	Pointers []Pointer
	Buffers  []BufferRes
	Textures []TextureRes
	Samplers []SamplerRes
}

// EvaluatedBuffer is a BufferRes reduced to a concrete V# record.
type EvaluatedBuffer struct {
	ResourceSlot int
	Access       track.Access
	VBuffer      gnm.VBuffer
}

// EvaluatedTexture is a TextureRes reduced to a concrete T# record.
type EvaluatedTexture struct {
	ResourceSlot int
	Access       track.Access
	TBuffer      gnm.TBuffer
}

// EvaluatedSampler is a SamplerRes reduced to a concrete S# record.
type EvaluatedSampler struct {
	ResourceSlot int
	SSampler     gnm.SSampler
}

// EvaluatedPointer is a Pointer reduced to a concrete guest address
// range.
type EvaluatedPointer struct {
	ResourceSlot int
	Base         uint64
	Size         uint64
}

func evalWord(node *shaderir.Node, env shaderir.Env, label string, slot int) (uint32, error) {
	v, err := shaderir.Eval(node, env)
	if err != nil {
		return 0, fmt.Errorf("shaderres: resource slot %d: %s: %w", slot, label, err)
	}
	return uint32(v), nil
}

func evalBuffer(b BufferRes, env shaderir.Env) (EvaluatedBuffer, error) {
	var vb gnm.VBuffer
	words := make([]uint32, 4)
	for i, w := range b.Words {
		v, err := evalWord(w, env, "buffer word", b.ResourceSlot)
		if err != nil {
			return EvaluatedBuffer{}, err
		}
		words[i] = v
	}
	vb[0] = uint64(words[0]) | uint64(words[1])<<32
	vb[1] = uint64(words[2]) | uint64(words[3])<<32

	return EvaluatedBuffer{ResourceSlot: b.ResourceSlot, Access: b.Access, VBuffer: vb}, nil
}

func evalTexture(t TextureRes, env shaderir.Env) (EvaluatedTexture, error) {
	if len(t.Words) != 4 && len(t.Words) != 8 {
		return EvaluatedTexture{}, fmt.Errorf("shaderres: resource slot %d: texture has %d words, want 4 or 8", t.ResourceSlot, len(t.Words))
	}

	words := make([]uint32, 8)
	for i, w := range t.Words {
		v, err := evalWord(w, env, "texture word", t.ResourceSlot)
		if err != nil {
			return EvaluatedTexture{}, err
		}
		words[i] = v
	}

	var tb gnm.TBuffer
	for i := 0; i < 4; i++ {
		tb[i] = uint64(words[2*i]) | uint64(words[2*i+1])<<32
	}

	return EvaluatedTexture{ResourceSlot: t.ResourceSlot, Access: t.Access, TBuffer: tb}, nil
}

func evalSampler(s SamplerRes, env shaderir.Env) (EvaluatedSampler, error) {
	var ss gnm.SSampler
	for i, w := range s.Words {
		v, err := evalWord(w, env, "sampler word", s.ResourceSlot)
		if err != nil {
			return EvaluatedSampler{}, err
		}
		ss[i] = v
	}
	return EvaluatedSampler{ResourceSlot: s.ResourceSlot, SSampler: ss}, nil
}

func evalPointer(p Pointer, env shaderir.Env) (EvaluatedPointer, error) {
	base, err := shaderir.Eval(p.BaseExpr, env)
	if err != nil {
		return EvaluatedPointer{}, fmt.Errorf("shaderres: resource slot %d: pointer base: %w", p.ResourceSlot, err)
	}
	offset, err := shaderir.Eval(p.OffsetExpr, env)
	if err != nil {
		return EvaluatedPointer{}, fmt.Errorf("shaderres: resource slot %d: pointer offset: %w", p.ResourceSlot, err)
	}
	return EvaluatedPointer{ResourceSlot: p.ResourceSlot, Base: base + offset, Size: p.Size}, nil
}
