// Package addrrange tracks committed GPU address ranges and the coverage
// intervals the cache associates with cache entries.
//
// It is a Go-idiomatic rendering of the boundary-point interval map used
// by the emulator's memory table (rx::MemoryAreaTable /
// rx::MemoryTableWithPayload): rather than a map of open/close boundary
// points, ranges are kept as a sorted, non-overlapping slice, which is
// easier to reason about and test while preserving the same external
// contract — map coalesces the new range with adjacent and overlapping
// ranges, unmap cuts the removed interval out of (shrinking or splitting)
// the ranges it touches, and the caller is told about any existing range
// boundary a mutation erases.
package addrrange

import "sort"

// Range is a half-open address interval [Begin, End).
type Range struct {
	Begin uint64
	End   uint64
}

// Size returns the number of bytes the range covers.
func (r Range) Size() uint64 {
	return r.End - r.Begin
}

// Overlaps reports whether r and other share any address.
func (r Range) Overlaps(other Range) bool {
	return r.Begin < other.End && other.Begin < r.End
}

// Contains reports whether address falls within [Begin, End).
func (r Range) Contains(address uint64) bool {
	return address >= r.Begin && address < r.End
}

// InvalidationHandler is notified when Map or Unmap erases an existing
// range boundary, so a caller tracking host-side shadow state (a staging
// copy, a mapped view) can invalidate it.
type InvalidationHandler interface {
	HandleInvalidation(address uint64)
}

// NoInvalidation is an InvalidationHandler that discards every
// notification.
type NoInvalidation struct{}

func (NoInvalidation) HandleInvalidation(uint64) {}

// Table tracks a set of disjoint, merged address ranges: the regions of
// GPU address space currently backed by committed memory.
type Table struct {
	ranges []Range
	invalidation InvalidationHandler
}

// NewTable creates an empty Table. A nil handler discards invalidation
// notifications.
func NewTable(handler InvalidationHandler) *Table {
	if handler == nil {
		handler = NoInvalidation{}
	}
	return &Table{invalidation: handler}
}

// Clear removes every tracked range.
func (t *Table) Clear() {
	t.ranges = t.ranges[:0]
}

// Ranges returns the table's disjoint ranges in ascending order. The
// returned slice must not be modified.
func (t *Table) Ranges() []Range {
	return t.ranges
}

// TotalMemory returns the sum of every tracked range's size.
func (t *Table) TotalMemory() uint64 {
	var total uint64
	for _, r := range t.ranges {
		total += r.Size()
	}
	return total
}

// QueryArea returns the maximal range containing address, and reports
// whether one exists.
func (t *Table) QueryArea(address uint64) (Range, bool) {
	i := sort.Search(len(t.ranges), func(i int) bool {
		return t.ranges[i].End > address
	})
	if i == len(t.ranges) || !t.ranges[i].Contains(address) {
		return Range{}, false
	}
	return t.ranges[i], true
}

// Map marks [beginAddress, endAddress) as backed, merging it with any
// overlapping or adjacent existing range. Every existing range boundary
// swallowed by the merge is reported to the table's InvalidationHandler.
func (t *Table) Map(beginAddress, endAddress uint64) {
	if beginAddress >= endAddress {
		return
	}

	lo := sort.Search(len(t.ranges), func(i int) bool {
		return t.ranges[i].End >= beginAddress
	})
	hi := sort.Search(len(t.ranges), func(i int) bool {
		return t.ranges[i].Begin > endAddress
	})

	merged := Range{Begin: beginAddress, End: endAddress}
	for i := lo; i < hi; i++ {
		if t.ranges[i].Begin < merged.Begin {
			merged.Begin = t.ranges[i].Begin
		}
		if t.ranges[i].End > merged.End {
			merged.End = t.ranges[i].End
		}
		t.invalidation.HandleInvalidation(t.ranges[i].End)
	}

	tail := append([]Range{}, t.ranges[hi:]...)
	t.ranges = append(t.ranges[:lo], merged)
	t.ranges = append(t.ranges, tail...)
}

// Unmap marks [beginAddress, endAddress) as no longer backed, splitting
// or shrinking any range it overlaps. Every existing range boundary it
// erases is reported to the table's InvalidationHandler.
func (t *Table) Unmap(beginAddress, endAddress uint64) {
	if beginAddress >= endAddress {
		return
	}

	var kept []Range
	for _, r := range t.ranges {
		if !r.Overlaps(Range{beginAddress, endAddress}) {
			kept = append(kept, r)
			continue
		}

		t.invalidation.HandleInvalidation(r.End)

		if r.Begin < beginAddress {
			kept = append(kept, Range{r.Begin, beginAddress})
		}
		if r.End > endAddress {
			kept = append(kept, Range{endAddress, r.End})
		}
	}
	t.ranges = kept
}
