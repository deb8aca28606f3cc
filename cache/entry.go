package cache

import (
	"sync"

	"github.com/gogpu/gfxcache/addrrange"
	"github.com/gogpu/gfxcache/ident/track"
)

// EntryKind selects which of the seven cache-entry variants an Entry is.
// The cache does not use a polymorphic base class the way the original
// implementation did; instead each variant is its own struct embedding
// entryBase, and callers that need variant-specific behavior (Update,
// Write, flush) type-switch on Kind or on the variant's concrete type
// rather than calling through one do-everything virtual method table.
type EntryKind int

const (
	EntryBuffer EntryKind = iota
	EntryImageBuffer
	EntryImage
	EntryImageView
	EntryIndexBuffer
	EntryShader
	EntrySampler
)

func (k EntryKind) String() string {
	switch k {
	case EntryBuffer:
		return "Buffer"
	case EntryImageBuffer:
		return "ImageBuffer"
	case EntryImage:
		return "Image"
	case EntryImageView:
		return "ImageView"
	case EntryIndexBuffer:
		return "IndexBuffer"
	case EntryShader:
		return "Shader"
	case EntrySampler:
		return "Sampler"
	default:
		return "Unknown"
	}
}

// Entry is the common surface every cache-entry variant satisfies: the
// address range it occupies, and the acquire/release half of the tag
// protocol (§4.3). Variant-specific update/write/flush behavior lives on
// each concrete type, not on this interface.
type Entry interface {
	Kind() EntryKind
	AddressRange() addrrange.Range
	Acquire(tag TagId, access track.Access)
	Release(access track.Access)
	HasDelayedFlush() bool
	SetDelayedFlush(bool)
}

// entryBase holds the fields and acquire/release machinery common to
// every cache-entry variant. It renders the original's atomic
// acquiredAccess flag plus producer/consumer futex wait as a mutex and
// condition variable: contended acquires block on cond.Wait instead of
// spinning, and release broadcasts so every waiter re-checks
// compatibility.
type entryBase struct {
	kind         EntryKind
	addressRange addrrange.Range

	mu      sync.Mutex
	cond    *sync.Cond
	access  track.Access
	readers int

	acquiredTagStorage TagId
	hasDelayedFlush    bool
}

func newEntryBase(kind EntryKind, rng addrrange.Range) entryBase {
	b := entryBase{kind: kind, addressRange: rng}
	b.cond = sync.NewCond(&b.mu)
	return b
}

func (b *entryBase) Kind() EntryKind { return b.kind }

func (b *entryBase) AddressRange() addrrange.Range { return b.addressRange }

// Acquire blocks until access is compatible with whatever access the
// entry currently holds (read-only accesses never block each other;
// anything touching write waits for exclusivity), then records it.
// track.Access.IsCompatible is deliberately not reused here: it treats
// two identical accesses as compatible so a single AccessScope can
// re-acquire the same index without conflict, but that is the wrong
// rule for two distinct tags — two concurrent writers must still
// exclude each other even though their requested access is equal.
func (b *entryBase) Acquire(tag TagId, access track.Access) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for !b.access.IsEmpty() && (!b.access.IsReadOnly() || !access.IsReadOnly()) {
		b.cond.Wait()
	}

	b.access |= access
	b.acquiredTagStorage = tag
	if access.IsReadOnly() {
		b.readers++
	}
}

// Release drops access previously granted by Acquire and wakes any
// blocked acquirer. A write access always clears the entry back to
// unacquired; a read access only does so once every concurrent reader
// has released.
func (b *entryBase) Release(access track.Access) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if access.IsReadOnly() {
		if b.readers > 0 {
			b.readers--
		}
		if b.readers == 0 {
			b.access &^= track.AccessRead
		}
	} else {
		b.access = track.AccessNone
		b.readers = 0
	}

	b.cond.Broadcast()
}

func (b *entryBase) HasDelayedFlush() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.hasDelayedFlush
}

func (b *entryBase) SetDelayedFlush(v bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.hasDelayedFlush = v
}

// AcquiredBy reports the TagId that last acquired the entry, and whether
// the entry is currently held by anyone. Used by the sync engine to
// decide whether a collision on eviction must wait for a release first.
func (b *entryBase) AcquiredBy() (TagId, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.acquiredTagStorage, !b.access.IsEmpty()
}
