package addrrange

import "sort"

// Area is a range of address space carrying a payload value — the
// cache's binding table entries (see package cache) are tracked this
// way, with the payload identifying which resource currently backs the
// range.
type Area[P any] struct {
	Range
	Payload P
}

// TableWithPayload tracks a set of disjoint address ranges, each
// carrying a payload value, merging adjacent ranges whose payloads
// compare equal.
type TableWithPayload[P comparable] struct {
	areas        []Area[P]
	invalidation InvalidationHandler
}

// NewTableWithPayload creates an empty TableWithPayload. A nil handler
// discards invalidation notifications.
func NewTableWithPayload[P comparable](handler InvalidationHandler) *TableWithPayload[P] {
	if handler == nil {
		handler = NoInvalidation{}
	}
	return &TableWithPayload[P]{invalidation: handler}
}

// Clear removes every tracked area.
func (t *TableWithPayload[P]) Clear() {
	t.areas = t.areas[:0]
}

// Areas returns the table's disjoint areas in ascending address order.
// The returned slice must not be modified.
func (t *TableWithPayload[P]) Areas() []Area[P] {
	return t.areas
}

// QueryArea returns the area containing address, and reports whether one
// exists.
func (t *TableWithPayload[P]) QueryArea(address uint64) (Area[P], bool) {
	i := sort.Search(len(t.areas), func(i int) bool {
		return t.areas[i].End > address
	})
	if i == len(t.areas) || !t.areas[i].Contains(address) {
		return Area[P]{}, false
	}
	return t.areas[i], true
}

// LowerBound returns the index of the first area whose End is greater
// than address, i.e. the first area that could contain or follow it.
func (t *TableWithPayload[P]) LowerBound(address uint64) int {
	return sort.Search(len(t.areas), func(i int) bool {
		return t.areas[i].End > address
	})
}

// Map marks [beginAddress, endAddress) as backed by payload, replacing
// any existing coverage in that span. When merge is true, the inserted
// area is coalesced with an immediately adjacent area carrying an equal
// payload. Every overwritten area's end boundary is reported to the
// table's InvalidationHandler.
func (t *TableWithPayload[P]) Map(beginAddress, endAddress uint64, payload P, merge bool) {
	if beginAddress >= endAddress {
		return
	}

	lo := sort.Search(len(t.areas), func(i int) bool {
		return t.areas[i].End > beginAddress
	})
	hi := sort.Search(len(t.areas), func(i int) bool {
		return t.areas[i].Begin >= endAddress
	})

	var before, after []Area[P]
	if lo < len(t.areas) && t.areas[lo].Begin < beginAddress {
		before = []Area[P]{{Range{t.areas[lo].Begin, beginAddress}, t.areas[lo].Payload}}
	}
	if hi > 0 && hi-1 < len(t.areas) && t.areas[hi-1].End > endAddress {
		after = []Area[P]{{Range{endAddress, t.areas[hi-1].End}, t.areas[hi-1].Payload}}
	}

	for i := lo; i < hi; i++ {
		t.invalidation.HandleInvalidation(t.areas[i].End)
	}

	inserted := Area[P]{Range{beginAddress, endAddress}, payload}
	rebuilt := make([]Area[P], 0, len(t.areas)-(hi-lo)+3)
	rebuilt = append(rebuilt, t.areas[:lo]...)
	rebuilt = append(rebuilt, before...)
	rebuilt = append(rebuilt, inserted)
	rebuilt = append(rebuilt, after...)
	rebuilt = append(rebuilt, t.areas[hi:]...)
	t.areas = rebuilt

	if merge {
		t.mergeAdjacent()
	}
}

// mergeAdjacent coalesces neighboring areas that touch and carry an
// equal payload.
func (t *TableWithPayload[P]) mergeAdjacent() {
	if len(t.areas) < 2 {
		return
	}
	merged := t.areas[:1]
	for _, a := range t.areas[1:] {
		last := &merged[len(merged)-1]
		if last.End == a.Begin && last.Payload == a.Payload {
			last.End = a.End
			continue
		}
		merged = append(merged, a)
	}
	t.areas = merged
}

// Unmap removes coverage in [beginAddress, endAddress), splitting or
// shrinking any area it overlaps. Every overwritten area's end boundary
// is reported to the table's InvalidationHandler.
func (t *TableWithPayload[P]) Unmap(beginAddress, endAddress uint64) {
	if beginAddress >= endAddress {
		return
	}

	var kept []Area[P]
	for _, a := range t.areas {
		if !a.Overlaps(Range{beginAddress, endAddress}) {
			kept = append(kept, a)
			continue
		}

		t.invalidation.HandleInvalidation(a.End)

		if a.Begin < beginAddress {
			kept = append(kept, Area[P]{Range{a.Begin, beginAddress}, a.Payload})
		}
		if a.End > endAddress {
			kept = append(kept, Area[P]{Range{endAddress, a.End}, a.Payload})
		}
	}
	t.areas = kept
}
