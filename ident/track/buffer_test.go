package track

import (
	"errors"
	"testing"
)

func TestAccess_IsReadOnly(t *testing.T) {
	tests := []struct {
		name   string
		access Access
		want   bool
	}{
		{"none is read-only", AccessNone, true},
		{"read is read-only", AccessRead, true},
		{"write is write", AccessWrite, false},
		{"both is write", AccessBoth, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.access.IsReadOnly(); got != tt.want {
				t.Errorf("Access(%d).IsReadOnly() = %v, want %v", tt.access, got, tt.want)
			}
		})
	}
}

func TestAccess_IsEmpty(t *testing.T) {
	if !AccessNone.IsEmpty() {
		t.Error("AccessNone should be empty")
	}
	if AccessRead.IsEmpty() {
		t.Error("AccessRead should not be empty")
	}
}

func TestAccess_Contains(t *testing.T) {
	if !AccessBoth.Contains(AccessRead) {
		t.Error("Both should contain Read")
	}
	if !AccessBoth.Contains(AccessWrite) {
		t.Error("Both should contain Write")
	}
	if AccessRead.Contains(AccessWrite) {
		t.Error("Read should not contain Write")
	}
}

func TestAccess_IsCompatible(t *testing.T) {
	tests := []struct {
		name string
		a    Access
		b    Access
		want bool
	}{
		{"empty with empty", AccessNone, AccessNone, true},
		{"empty with read", AccessNone, AccessRead, true},
		{"empty with write", AccessNone, AccessWrite, true},
		{"read with read", AccessRead, AccessRead, true},
		{"write with same write", AccessWrite, AccessWrite, true},
		{"write with different access", AccessWrite, AccessBoth, false},
		{"read with write", AccessRead, AccessWrite, false},
		{"write with read", AccessWrite, AccessRead, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.IsCompatible(tt.b); got != tt.want {
				t.Errorf("Access(%d).IsCompatible(%d) = %v, want %v",
					tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestEntryTracker_InsertSingle(t *testing.T) {
	tracker := NewEntryTracker()

	tracker.InsertSingle(TrackerIndex(0), AccessRead)
	tracker.InsertSingle(TrackerIndex(5), AccessWrite)

	if tracker.GetAccess(TrackerIndex(0)) != AccessRead {
		t.Error("Index 0 should have Read access")
	}
	if tracker.GetAccess(TrackerIndex(5)) != AccessWrite {
		t.Error("Index 5 should have Write access")
	}
	if tracker.Size() != 2 {
		t.Errorf("Size = %d, want 2", tracker.Size())
	}
}

func TestEntryTracker_Remove(t *testing.T) {
	tracker := NewEntryTracker()

	tracker.InsertSingle(TrackerIndex(0), AccessRead)
	tracker.InsertSingle(TrackerIndex(1), AccessWrite)

	if tracker.Size() != 2 {
		t.Errorf("Initial size = %d, want 2", tracker.Size())
	}

	tracker.Remove(TrackerIndex(0))

	if tracker.IsTracked(TrackerIndex(0)) {
		t.Error("Index 0 should not be tracked after remove")
	}
	if !tracker.IsTracked(TrackerIndex(1)) {
		t.Error("Index 1 should still be tracked")
	}
	if tracker.Size() != 1 {
		t.Errorf("Size after remove = %d, want 1", tracker.Size())
	}

	tracker.Remove(TrackerIndex(100))
}

func TestEntryTracker_GetAccess(t *testing.T) {
	tracker := NewEntryTracker()

	if tracker.GetAccess(TrackerIndex(0)) != AccessNone {
		t.Error("Untracked entry should return None")
	}

	tracker.InsertSingle(TrackerIndex(0), AccessRead)
	if tracker.GetAccess(TrackerIndex(0)) != AccessRead {
		t.Error("Tracked entry should return its access")
	}
}

func TestEntryTracker_SetAccess(t *testing.T) {
	tracker := NewEntryTracker()

	tracker.InsertSingle(TrackerIndex(0), AccessRead)
	tracker.SetAccess(TrackerIndex(0), AccessWrite)

	if tracker.GetAccess(TrackerIndex(0)) != AccessWrite {
		t.Error("Access should be updated")
	}

	tracker.SetAccess(TrackerIndex(100), AccessRead)
}

func TestAccessScope_SetAccess(t *testing.T) {
	scope := NewAccessScope()

	err := scope.SetAccess(TrackerIndex(0), AccessRead)
	if err != nil {
		t.Fatalf("First SetAccess failed: %v", err)
	}
	if scope.GetAccess(TrackerIndex(0)) != AccessRead {
		t.Error("Access not set correctly")
	}

	// Same access merges (read+read stays read).
	err = scope.SetAccess(TrackerIndex(0), AccessRead)
	if err != nil {
		t.Fatalf("Compatible SetAccess failed: %v", err)
	}
	if scope.GetAccess(TrackerIndex(0)) != AccessRead {
		t.Errorf("Access = %d, want %d", scope.GetAccess(TrackerIndex(0)), AccessRead)
	}

	// Incompatible access should fail.
	err = scope.SetAccess(TrackerIndex(0), AccessWrite)
	if err == nil {
		t.Error("Incompatible access should return error")
	}
	var uce *UsageConflictError
	if !errors.As(err, &uce) {
		t.Errorf("Error should be UsageConflictError, got %T", err)
	}
}

func TestAccessScope_Clear(t *testing.T) {
	scope := NewAccessScope()

	_ = scope.SetAccess(TrackerIndex(0), AccessRead)
	_ = scope.SetAccess(TrackerIndex(1), AccessWrite)

	scope.Clear()

	if scope.IsUsed(TrackerIndex(0)) {
		t.Error("Index 0 should not be used after clear")
	}
	if scope.IsUsed(TrackerIndex(1)) {
		t.Error("Index 1 should not be used after clear")
	}
}

func TestEntryTracker_Merge(t *testing.T) {
	tracker := NewEntryTracker()
	scope := NewAccessScope()

	tracker.InsertSingle(TrackerIndex(0), AccessRead)
	_ = scope.SetAccess(TrackerIndex(0), AccessWrite)

	transitions := tracker.Merge(scope)

	if len(transitions) != 1 {
		t.Fatalf("Expected 1 transition, got %d", len(transitions))
	}

	trans := transitions[0]
	if trans.Index != TrackerIndex(0) {
		t.Errorf("Transition index = %d, want 0", trans.Index)
	}
	if trans.Usage.From != AccessRead {
		t.Errorf("From = %d, want %d", trans.Usage.From, AccessRead)
	}
	if trans.Usage.To != AccessWrite {
		t.Errorf("To = %d, want %d", trans.Usage.To, AccessWrite)
	}

	if tracker.GetAccess(TrackerIndex(0)) != AccessWrite {
		t.Error("Tracker access should be updated after merge")
	}
}

func TestEntryTracker_Merge_NewEntry(t *testing.T) {
	tracker := NewEntryTracker()
	scope := NewAccessScope()

	_ = scope.SetAccess(TrackerIndex(5), AccessRead)

	transitions := tracker.Merge(scope)

	if len(transitions) != 0 {
		t.Errorf("Expected 0 transitions for new entry, got %d", len(transitions))
	}

	if !tracker.IsTracked(TrackerIndex(5)) {
		t.Error("New entry should be tracked after merge")
	}
	if tracker.GetAccess(TrackerIndex(5)) != AccessRead {
		t.Error("New entry should have scope's access")
	}
}

func TestEntryTracker_Merge_NoTransitionIfSame(t *testing.T) {
	tracker := NewEntryTracker()
	scope := NewAccessScope()

	tracker.InsertSingle(TrackerIndex(0), AccessRead)
	_ = scope.SetAccess(TrackerIndex(0), AccessRead)

	transitions := tracker.Merge(scope)

	if len(transitions) != 0 {
		t.Errorf("Expected 0 transitions for same access, got %d", len(transitions))
	}
}

func TestStateTransition_NeedsBarrier(t *testing.T) {
	tests := []struct {
		name string
		from Access
		to   Access
		want bool
	}{
		{"same access", AccessRead, AccessRead, false},
		{"read to read", AccessRead, AccessRead, false},
		{"read to write", AccessRead, AccessWrite, true},
		{"write to read", AccessWrite, AccessRead, true},
		{"write to both", AccessWrite, AccessBoth, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			trans := StateTransition{From: tt.from, To: tt.to}
			if got := trans.NeedsBarrier(); got != tt.want {
				t.Errorf("NeedsBarrier() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestResourceMetadata(t *testing.T) {
	m := NewResourceMetadata()

	if m.Count() != 0 {
		t.Errorf("Initial count = %d, want 0", m.Count())
	}

	m.SetOwned(TrackerIndex(0), true)
	m.SetOwned(TrackerIndex(5), true)

	if m.Count() != 2 {
		t.Errorf("Count after 2 adds = %d, want 2", m.Count())
	}
	if !m.IsOwned(TrackerIndex(0)) {
		t.Error("Index 0 should be owned")
	}
	if !m.IsOwned(TrackerIndex(5)) {
		t.Error("Index 5 should be owned")
	}
	if m.IsOwned(TrackerIndex(3)) {
		t.Error("Index 3 should not be owned")
	}

	m.SetOwned(TrackerIndex(0), false)
	if m.Count() != 1 {
		t.Errorf("Count after remove = %d, want 1", m.Count())
	}

	m.Clear()
	if m.Count() != 0 {
		t.Errorf("Count after clear = %d, want 0", m.Count())
	}
}

func TestUsageConflictError(t *testing.T) {
	err := &UsageConflictError{
		Index:    TrackerIndex(5),
		Existing: AccessRead,
		New:      AccessWrite,
	}

	msg := err.Error()
	if msg == "" {
		t.Error("Error message should not be empty")
	}
}

func BenchmarkEntryTracker_InsertRemove(b *testing.B) {
	tracker := NewEntryTracker()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		idx := TrackerIndex(i % 1000)
		tracker.InsertSingle(idx, AccessRead)
		tracker.Remove(idx)
	}
}

func BenchmarkAccessScope_SetAccess(b *testing.B) {
	scope := NewAccessScope()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		idx := TrackerIndex(i % 100)
		_ = scope.SetAccess(idx, AccessRead)
	}
}

func BenchmarkEntryTracker_Merge(b *testing.B) {
	tracker := NewEntryTracker()
	scope := NewAccessScope()

	for i := 0; i < 100; i++ {
		tracker.InsertSingle(TrackerIndex(i), AccessRead)
		_ = scope.SetAccess(TrackerIndex(i), AccessWrite)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = tracker.Merge(scope)
	}
}
