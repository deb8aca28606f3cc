package cache

import (
	"github.com/gogpu/gfxcache/addrrange"
	"github.com/gogpu/gfxcache/gnm"
	"github.com/gogpu/gfxcache/ident"
	"github.com/gogpu/gfxcache/ident/track"
	"github.com/gogpu/gfxcache/vkh"
)

// SamplerKey is the hashable form of a guest S# descriptor's fields:
// unlike every other entry kind, a Sampler carries no guest address at
// all (§4.2.7) — it is a pure value type, so two draws whose S#
// descriptors happen to contain the same bit pattern share one cached
// entry regardless of where in guest memory that S# was read from.
type SamplerKey gnm.SSampler

// Sampler is the cache entry for a deduplicated sampler value.
type Sampler struct {
	entryBase

	id       ident.SamplerID
	tracking *track.TrackingData
	key      SamplerKey
	vkSampler vkh.Sampler
}

// NewSampler creates a Sampler entry for key backed by vkSampler. rng is
// a degenerate zero-length range at no particular address: Sampler
// entries are looked up by key, not by address, but embedding entryBase
// keeps the acquire/release protocol uniform across entry kinds.
func NewSampler(id ident.SamplerID, tracking *track.TrackingData, key SamplerKey, vkSampler vkh.Sampler) *Sampler {
	return &Sampler{
		entryBase: newEntryBase(EntrySampler, addrrange.Range{}),
		id:        id,
		tracking:  tracking,
		key:       key,
		vkSampler: vkSampler,
	}
}

func (s *Sampler) ID() ident.SamplerID  { return s.id }
func (s *Sampler) Key() SamplerKey      { return s.key }
func (s *Sampler) Handle() vkh.Sampler  { return s.vkSampler }
