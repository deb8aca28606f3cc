package cache

import (
	"encoding/binary"

	"github.com/gogpu/gfxcache/addrrange"
	"github.com/gogpu/gfxcache/ident"
	"github.com/gogpu/gfxcache/ident/track"
)

// PrimType selects the guest primitive topology an IndexBuffer entry was
// built from. Most topologies map straight onto a host equivalent; quad
// topologies do not exist on the host API and must be expanded into
// triangles before the entry's backing Buffer is usable as a host index
// buffer (§4.2.5).
type PrimType int

const (
	PrimTypePassthrough PrimType = iota // already host-native: triangles, lines, strips, fans
	PrimTypeQuadList
	PrimTypeQuadStrip
)

// quadListPattern expands one quad's 4 source indices (a,b,c,d) into two
// triangles (a,b,c) and (c,d,a).
var quadListPattern = [6]int{0, 1, 2, 2, 3, 0}

// quadStripPattern expands one quad of a strip into two triangles using
// the strip's shared-edge vertex order.
var quadStripPattern = [6]int{0, 1, 3, 0, 3, 2}

// IndexType selects the element width of an IndexBuffer's backing data.
type IndexType int

const (
	IndexTypeUint16 IndexType = iota
	IndexTypeUint32
)

// NeedsWidening reports whether indexCount source indices can no longer
// be addressed by a 16-bit index: a quad expansion (or a plain large
// mesh) that grows past 65535 indices must widen to 32-bit, since a
// 16-bit index cannot reference a draw call with more than 65536
// distinct positions.
func NeedsWidening(indexCount int) bool {
	return indexCount >= 65536
}

// ExpandQuadList expands 16-bit quad-list indices (4 source indices per
// quad, non-overlapping) into 16-bit triangle-list indices via
// quadListPattern.
func ExpandQuadList(src []uint16) []uint16 {
	out := make([]uint16, 0, (len(src)/4)*6)
	for i := 0; i+3 < len(src); i += 4 {
		quad := src[i : i+4]
		for _, p := range quadListPattern {
			out = append(out, quad[p])
		}
	}
	return out
}

// ExpandQuadStrip expands 16-bit quad-strip indices (each quad sharing
// its trailing edge with the next) into 16-bit triangle-list indices via
// quadStripPattern.
func ExpandQuadStrip(src []uint16) []uint16 {
	out := make([]uint16, 0, (len(src)/2)*6)
	for i := 0; i+3 < len(src); i += 2 {
		quad := src[i : i+4]
		for _, p := range quadStripPattern {
			out = append(out, quad[p])
		}
	}
	return out
}

// Widen16To32 reinterprets 16-bit indices as 32-bit indices, needed once
// NeedsWidening reports true for the expanded count.
func Widen16To32(src []uint16) []uint32 {
	out := make([]uint32, len(src))
	for i, v := range src {
		out[i] = uint32(v)
	}
	return out
}

// ExpandIndices produces the host-ready index bytes and element type for
// a guest index buffer of the given primitive kind and source indices.
// It performs quad expansion (if prim requires it) and then widens to
// 32-bit if the resulting count can no longer fit 16 bits.
func ExpandIndices(prim PrimType, src []uint16) ([]byte, IndexType) {
	expanded := src
	switch prim {
	case PrimTypeQuadList:
		expanded = ExpandQuadList(src)
	case PrimTypeQuadStrip:
		expanded = ExpandQuadStrip(src)
	}

	if NeedsWidening(len(expanded)) {
		wide := Widen16To32(expanded)
		buf := make([]byte, len(wide)*4)
		for i, v := range wide {
			binary.LittleEndian.PutUint32(buf[i*4:], v)
		}
		return buf, IndexTypeUint32
	}

	buf := make([]byte, len(expanded)*2)
	for i, v := range expanded {
		binary.LittleEndian.PutUint16(buf[i*2:], v)
	}
	return buf, IndexTypeUint16
}

// IndexBuffer is the cache entry for a guest index buffer, holding the
// expanded/widened host-ready form in its backing Buffer.
type IndexBuffer struct {
	entryBase

	id        ident.IndexBufferID
	tracking  *track.TrackingData
	buffer    *Buffer
	indexType IndexType
	count     int
}

// NewIndexBuffer creates an IndexBuffer entry backed by buffer, whose
// contents are already in host-ready indexType form holding count
// indices.
func NewIndexBuffer(id ident.IndexBufferID, tracking *track.TrackingData, rng addrrange.Range, buffer *Buffer, indexType IndexType, count int) *IndexBuffer {
	return &IndexBuffer{
		entryBase: newEntryBase(EntryIndexBuffer, rng),
		id:        id,
		tracking:  tracking,
		buffer:    buffer,
		indexType: indexType,
		count:     count,
	}
}

func (ib *IndexBuffer) ID() ident.IndexBufferID { return ib.id }
func (ib *IndexBuffer) Buffer() *Buffer         { return ib.buffer }
func (ib *IndexBuffer) IndexType() IndexType    { return ib.indexType }
func (ib *IndexBuffer) Count() int              { return ib.count }
