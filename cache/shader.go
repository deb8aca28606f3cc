package cache

import (
	"fmt"

	"github.com/gogpu/gfxcache/addrrange"
	"github.com/gogpu/gfxcache/ident"
	"github.com/gogpu/gfxcache/ident/track"
	"github.com/gogpu/gfxcache/shaderir"
	"github.com/gogpu/gfxcache/vkh"
)

// ShaderStage selects which pipeline stage a shader cache entry was
// compiled for.
type ShaderStage int

const (
	ShaderStageVertex ShaderStage = iota
	ShaderStageFragment
	ShaderStageCompute
	ShaderStageGeometry
)

// ShaderKey identifies a cached compile of a guest shader program: its
// guest address, the stage it was bound at, and a hash of the
// environment (bound resource descriptors, user-sgpr values) it was
// compiled against, since the same bytecode compiled under a different
// environment can produce different resource bindings.
type ShaderKey struct {
	Address     uint64
	Stage       ShaderStage
	Environment uint64

	// DependedKey names a second shader this one's compile depended on —
	// a vertex shader's fetch shader, or a compute shader's indirect
	// dispatch program. nil when the shader stands alone.
	DependedKey *ShaderKey
}

// cacheKey renders key as a string singleflight.Group can dedup on,
// folding in DependedKey's own encoding so two keys differing only by
// their dependency don't collide.
func (key ShaderKey) cacheKey() string {
	if key.DependedKey == nil {
		return fmt.Sprintf("%d:%d:%d", key.Address, key.Stage, key.Environment)
	}
	return fmt.Sprintf("%d:%d:%d>%s", key.Address, key.Stage, key.Environment, key.DependedKey.cacheKey())
}

// ShaderInfo is the decoded header the cache hit-tests a lookup against
// before trusting a cached Module: even when the address/stage/
// environment key matches, a stale guest overwrite that changed the
// bytecode without changing its address still needs to be detected.
type ShaderInfo struct {
	Magic          uint64
	RequiredSgprs  uint32
	UsedMemorySize uint64
}

// Matches reports whether info still describes the same compiled
// program. This is a size-and-hash check, not a bytewise comparison of
// the guest bytecode: Magic is a caller-computed hash of the program
// bytes, and UsedMemorySize is compared for equality rather than walked
// byte-by-byte. The caller's Magic is therefore load-bearing — it must
// fold in every byte an overwrite could touch, since an overwrite past
// byte UsedMemorySize that preserves both the size and an under-folded
// Magic would false-hit here.
func (info ShaderInfo) Matches(other ShaderInfo) bool {
	return info.Magic == other.Magic &&
		info.RequiredSgprs == other.RequiredSgprs &&
		info.UsedMemorySize == other.UsedMemorySize
}

// Shader is the cache entry for one compiled guest shader program.
type Shader struct {
	entryBase

	id       ident.ShaderID
	tracking *track.TrackingData
	key      ShaderKey
	info     ShaderInfo
	module   *shaderir.Module
	pipeline vkh.ShaderModule

	// fallback marks an entry built from the red-fill fallback program
	// (§7: "failed draw renders nothing/red-fallback") rather than a
	// successful compile of the guest's bytecode.
	fallback bool
}

// NewShader creates a Shader entry for key, already compiled to module
// and lowered to pipeline.
func NewShader(id ident.ShaderID, tracking *track.TrackingData, rng addrrange.Range, key ShaderKey, info ShaderInfo, module *shaderir.Module, pipeline vkh.ShaderModule) *Shader {
	return &Shader{
		entryBase: newEntryBase(EntryShader, rng),
		id:        id,
		tracking:  tracking,
		key:       key,
		info:      info,
		module:    module,
		pipeline:  pipeline,
	}
}

// NewFallbackShader creates a Shader entry marked as the red-fill
// fallback program substituted for guest bytecode that failed
// compilation or validation.
func NewFallbackShader(id ident.ShaderID, tracking *track.TrackingData, rng addrrange.Range, key ShaderKey, pipeline vkh.ShaderModule) *Shader {
	return &Shader{
		entryBase: newEntryBase(EntryShader, rng),
		id:        id,
		tracking:  tracking,
		key:       key,
		pipeline:  pipeline,
		fallback:  true,
	}
}

func (s *Shader) ID() ident.ShaderID      { return s.id }
func (s *Shader) Key() ShaderKey          { return s.key }
func (s *Shader) Info() ShaderInfo        { return s.info }
func (s *Shader) Module() *shaderir.Module { return s.module }
func (s *Shader) Handle() vkh.ShaderModule { return s.pipeline }
func (s *Shader) IsFallback() bool         { return s.fallback }

// HitTest reports whether this entry can service a lookup for key under
// the freshly-decoded info, without recompiling: the key must match
// exactly, and (unless this entry is already the fallback) info must
// describe the same program this entry was compiled from.
func (s *Shader) HitTest(key ShaderKey, info ShaderInfo) bool {
	if s.key != key {
		return false
	}
	if s.fallback {
		return true
	}
	return s.info.Matches(info)
}
