package shaderres

import (
	"fmt"

	"github.com/gogpu/gfxcache/addrrange"
	"github.com/gogpu/gfxcache/gnm"
	"github.com/gogpu/gfxcache/ident/track"
	"github.com/gogpu/gfxcache/shaderir"
)

// ImageKey identifies a distinct texture extent within the image memory
// table: two TextureRes resources that alias the same guest bytes but
// differ in format or dimension still need separate ImageBuffer
// entries, so the table is keyed on more than address alone.
type ImageKey struct {
	Address    uint64
	DataFormat uint32
	Width      uint32
	Height     uint32
}

// ImageAccess is the payload the image memory table's interval map
// carries: which key the interval belongs to, and the access mode it
// requires.
type ImageAccess struct {
	Key    ImageKey
	Access track.Access
}

// LoadResult is the output of LoadResources: every resource reduced to
// its concrete form, plus the merged access-interval tables the cache
// acquires entries against.
type LoadResult struct {
	BufferMemoryTable *addrrange.TableWithPayload[track.Access]
	ImageMemoryTable  *addrrange.TableWithPayload[ImageAccess]

	ResourceSlotToAddress map[int]uint64
	// ResourceSlotIsImage marks which resource slots were declared by a
	// Texture (and so resolve against the image memory table rather than
	// the buffer memory table once BuildImageMemoryTable runs).
	ResourceSlotIsImage map[int]bool
	ImageResourcesByDim map[int][]EvaluatedTexture
	SamplerResources    []EvaluatedSampler

	// SlotResources maps a resource slot to its index inside the built
	// MemoryTable (buffer or image, per ResourceSlotIsImage). It starts
	// empty; BuildMemoryTable/BuildImageMemoryTable fill it in after the
	// caller has acquired backing storage for every merged interval.
	SlotResources map[int]int
}

func textureDim(t EvaluatedTexture) int {
	switch t.TBuffer.Type() {
	case gnm.TextureTypeDim1D, gnm.TextureTypeArray1D:
		return 1
	case gnm.TextureTypeDim3D:
		return 3
	default: // Dim2D, Cube, Array2D, Msaa2D, MsaaArray2D
		return 2
	}
}

// LoadResources reduces every declared resource against env and builds
// the merged access-interval tables and per-dimension grouping the
// cache's acquire step consumes. It returns an error describing the
// first resource that failed to reduce — per the descriptor contract, a
// shader whose resource expressions do not resolve to constants cannot
// have its draw submitted.
func LoadResources(res Resources, env shaderir.Env) (*LoadResult, error) {
	result := &LoadResult{
		BufferMemoryTable:     addrrange.NewTableWithPayload[track.Access](nil),
		ImageMemoryTable:      addrrange.NewTableWithPayload[ImageAccess](nil),
		ResourceSlotToAddress: make(map[int]uint64),
		ResourceSlotIsImage:   make(map[int]bool),
		ImageResourcesByDim:   make(map[int][]EvaluatedTexture),
		SlotResources:         make(map[int]int),
	}

	for _, p := range res.Pointers {
		ep, err := evalPointer(p, env)
		if err != nil {
			return nil, err
		}
		result.ResourceSlotToAddress[ep.ResourceSlot] = ep.Base
		result.BufferMemoryTable.Map(ep.Base, ep.Base+ep.Size, track.AccessRead, true)
	}

	for _, b := range res.Buffers {
		eb, err := evalBuffer(b, env)
		if err != nil {
			return nil, err
		}
		addr := eb.VBuffer.Address()
		size := eb.VBuffer.Size()
		if size == 0 {
			continue
		}
		result.ResourceSlotToAddress[eb.ResourceSlot] = addr
		result.BufferMemoryTable.Map(addr, addr+size, eb.Access, true)
	}

	for _, tex := range res.Textures {
		et, err := evalTexture(tex, env)
		if err != nil {
			return nil, err
		}
		addr := et.TBuffer.Address()
		key := ImageKey{
			Address:    addr,
			DataFormat: uint32(et.TBuffer.DataFormat()),
			Width:      et.TBuffer.Width() + 1,
			Height:     et.TBuffer.Height() + 1,
		}
		result.ResourceSlotToAddress[et.ResourceSlot] = addr
		result.ResourceSlotIsImage[et.ResourceSlot] = true
		result.ImageResourcesByDim[textureDim(et)] = append(result.ImageResourcesByDim[textureDim(et)], et)

		// A texture's byte extent is derived by the tiler (package
		// tiler) from its TileMode and dimensions; LoadResources only
		// records the access requirement at the descriptor's base
		// address, leaving the caller (cache) to extend the interval
		// once it has resolved the surface's tiling layout.
		result.ImageMemoryTable.Map(addr, addr+1, ImageAccess{Key: key, Access: et.Access}, false)
	}

	for _, s := range res.Samplers {
		es, err := evalSampler(s, env)
		if err != nil {
			return nil, err
		}
		result.SamplerResources = append(result.SamplerResources, es)
	}

	return result, nil
}

// ExtendImageInterval widens the image memory table's entry for key to
// its full byte extent once the cache has computed it via the tiler.
// Must be called before BuildImageMemoryTable.
func (r *LoadResult) ExtendImageInterval(key ImageKey, access track.Access, size uint64) error {
	if size == 0 {
		return fmt.Errorf("shaderres: cannot extend image interval for key %+v to zero size", key)
	}
	r.ImageMemoryTable.Map(key.Address, key.Address+size, ImageAccess{Key: key, Access: access}, true)
	return nil
}
