package track

// Access is the acquired-access bitflag shared by every cache-entry kind:
// Tags acquire entries for Read, Write, or Both, and an unacquired entry is
// None. It is more granular than a plain bool because Buffer/ImageBuffer/
// Image entries can be held by multiple readers at once but need exclusive
// access to write.
type Access uint32

// Access flags for entry-acquisition tracking.
const (
	AccessNone  Access = 0
	AccessRead  Access = 1 << 0
	AccessWrite Access = 1 << 1
	AccessBoth  Access = AccessRead | AccessWrite
)

// IsReadOnly returns true if the access contains no write flag.
func (a Access) IsReadOnly() bool {
	return a&AccessWrite == 0
}

// IsEmpty returns true if no access flags are set.
func (a Access) IsEmpty() bool {
	return a == AccessNone
}

// Contains returns true if all flags in other are present in a.
func (a Access) Contains(other Access) bool {
	return a&other == other
}

// IsCompatible returns true if two accesses can coexist without blocking.
// Read-only accesses are compatible with each other, and two identical
// accesses (e.g. Write and Write) are compatible; any other pairing that
// involves a write is not.
func (a Access) IsCompatible(other Access) bool {
	if a.IsEmpty() || other.IsEmpty() {
		return true
	}
	if a.IsReadOnly() && other.IsReadOnly() {
		return true
	}
	return a == other
}

// EntryState holds the tracked access state for a single cache entry.
type EntryState struct {
	access Access
}

// Access returns the current access.
func (s EntryState) Access() Access {
	return s.access
}

// EntryTracker tracks acquired-access state for cache entries addressed by
// TrackerIndex, independent of which entry kind they are.
type EntryTracker struct {
	states   []EntryState
	metadata ResourceMetadata
}

// NewEntryTracker creates a new entry tracker.
func NewEntryTracker() *EntryTracker {
	return &EntryTracker{
		states:   make([]EntryState, 0, 64),
		metadata: NewResourceMetadata(),
	}
}

// InsertSingle tracks a new entry with initial access.
func (t *EntryTracker) InsertSingle(index TrackerIndex, access Access) {
	t.ensureSize(int(index) + 1)
	t.states[index] = EntryState{access: access}
	t.metadata.SetOwned(index, true)
}

// Remove stops tracking an entry.
func (t *EntryTracker) Remove(index TrackerIndex) {
	if int(index) < len(t.states) {
		t.states[index] = EntryState{}
		t.metadata.SetOwned(index, false)
	}
}

// GetAccess returns the current access of an entry.
func (t *EntryTracker) GetAccess(index TrackerIndex) Access {
	if int(index) < len(t.states) && t.metadata.IsOwned(index) {
		return t.states[index].access
	}
	return AccessNone
}

// SetAccess updates the access of a tracked entry.
func (t *EntryTracker) SetAccess(index TrackerIndex, access Access) {
	if int(index) < len(t.states) && t.metadata.IsOwned(index) {
		t.states[index].access = access
	}
}

// IsTracked returns true if the entry is being tracked.
func (t *EntryTracker) IsTracked(index TrackerIndex) bool {
	return int(index) < len(t.states) && t.metadata.IsOwned(index)
}

// Size returns the number of tracked entries.
func (t *EntryTracker) Size() int {
	return t.metadata.Count()
}

func (t *EntryTracker) ensureSize(size int) {
	for len(t.states) < size {
		t.states = append(t.states, EntryState{})
	}
}

// Merge merges access from scope into the tracker, returning the
// transitions that require a barrier. This mirrors what happens when a
// Tag releases and its acquired entries fold back into the coherency
// engine's view of who last touched each entry.
func (t *EntryTracker) Merge(scope *AccessScope) []PendingTransition {
	var transitions []PendingTransition

	for i := range scope.states {
		if i < 0 || i > int(^TrackerIndex(0)-1) {
			continue
		}
		index := TrackerIndex(i)
		if !scope.metadata.IsOwned(index) {
			continue
		}

		newAccess := scope.states[i].access
		oldAccess := t.GetAccess(index)

		if !t.IsTracked(index) {
			t.InsertSingle(index, newAccess)
			continue
		}

		if !oldAccess.IsCompatible(newAccess) || oldAccess != newAccess {
			transitions = append(transitions, PendingTransition{
				Index: index,
				Usage: StateTransition{
					From: oldAccess,
					To:   newAccess,
				},
			})
			t.states[index].access = newAccess
		}
	}

	return transitions
}

// AccessScope tracks entry access within a single Tag's acquisition set.
// It is merged into the device-wide EntryTracker when the Tag releases.
type AccessScope struct {
	states   []EntryState
	metadata ResourceMetadata
}

// NewAccessScope creates a new access scope.
func NewAccessScope() *AccessScope {
	return &AccessScope{
		states:   make([]EntryState, 0, 32),
		metadata: NewResourceMetadata(),
	}
}

// SetAccess sets the access for an entry in this scope.
// Returns an error if the entry already has an incompatible access.
func (s *AccessScope) SetAccess(index TrackerIndex, access Access) error {
	s.ensureSize(int(index) + 1)

	if s.metadata.IsOwned(index) {
		existing := s.states[index].access
		if !existing.IsCompatible(access) {
			return &UsageConflictError{
				Index:    index,
				Existing: existing,
				New:      access,
			}
		}
		s.states[index].access = existing | access
	} else {
		s.states[index] = EntryState{access: access}
		s.metadata.SetOwned(index, true)
	}

	return nil
}

// GetAccess returns the current access in this scope.
func (s *AccessScope) GetAccess(index TrackerIndex) Access {
	if int(index) < len(s.states) && s.metadata.IsOwned(index) {
		return s.states[index].access
	}
	return AccessNone
}

// IsUsed returns true if the entry is used in this scope.
func (s *AccessScope) IsUsed(index TrackerIndex) bool {
	return int(index) < len(s.states) && s.metadata.IsOwned(index)
}

// Clear resets the scope for reuse.
func (s *AccessScope) Clear() {
	s.states = s.states[:0]
	s.metadata.Clear()
}

func (s *AccessScope) ensureSize(size int) {
	for len(s.states) < size {
		s.states = append(s.states, EntryState{})
	}
}

// PendingTransition represents an access transition that needs a barrier.
type PendingTransition struct {
	Index TrackerIndex
	Usage StateTransition
}

// StateTransition represents a from→to access change.
type StateTransition struct {
	From Access
	To   Access
}

// NeedsBarrier returns true if this transition requires a barrier.
func (t StateTransition) NeedsBarrier() bool {
	if t.From == t.To {
		return false
	}
	if t.From.IsReadOnly() && t.To.IsReadOnly() {
		return false
	}
	return true
}

// UsageConflictError is returned when incompatible accesses are detected
// within the same scope.
type UsageConflictError struct {
	Index    TrackerIndex
	Existing Access
	New      Access
}

// Error implements the error interface.
func (e *UsageConflictError) Error() string {
	return "entry access conflict: incompatible accesses in same scope"
}

// ResourceMetadata tracks which resources are owned/present.
type ResourceMetadata struct {
	owned []bool
	count int
}

// NewResourceMetadata creates new metadata.
func NewResourceMetadata() ResourceMetadata {
	return ResourceMetadata{
		owned: make([]bool, 0, 64),
		count: 0,
	}
}

// SetOwned marks a resource as owned/not owned.
func (m *ResourceMetadata) SetOwned(index TrackerIndex, owned bool) {
	for int(index) >= len(m.owned) {
		m.owned = append(m.owned, false)
	}

	wasOwned := m.owned[index]
	m.owned[index] = owned

	if owned && !wasOwned {
		m.count++
	} else if !owned && wasOwned {
		m.count--
	}
}

// IsOwned returns true if the resource is owned.
func (m *ResourceMetadata) IsOwned(index TrackerIndex) bool {
	if int(index) >= len(m.owned) {
		return false
	}
	return m.owned[index]
}

// Count returns the number of owned resources.
func (m *ResourceMetadata) Count() int {
	return m.count
}

// Clear resets the metadata.
func (m *ResourceMetadata) Clear() {
	for i := range m.owned {
		m.owned[i] = false
	}
	m.count = 0
}
