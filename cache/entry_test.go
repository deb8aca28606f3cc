package cache

import (
	"sync"
	"testing"
	"time"

	"github.com/gogpu/gfxcache/addrrange"
	"github.com/gogpu/gfxcache/ident/track"
)

func TestEntryBaseAcquireReadsDoNotBlockEachOther(t *testing.T) {
	b := newEntryBase(EntryBuffer, addrrange.Range{Begin: 0, End: 0x1000})

	done := make(chan struct{})
	go func() {
		b.Acquire(2, track.AccessRead)
		close(done)
	}()

	b.Acquire(4, track.AccessRead)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("concurrent read acquires deadlocked")
	}
}

func TestEntryBaseAcquireWriteBlocksUntilRelease(t *testing.T) {
	b := newEntryBase(EntryBuffer, addrrange.Range{Begin: 0, End: 0x1000})
	b.Acquire(2, track.AccessWrite)

	var mu sync.Mutex
	acquired := false
	go func() {
		b.Acquire(4, track.AccessWrite)
		mu.Lock()
		acquired = true
		mu.Unlock()
	}()

	time.Sleep(20 * time.Millisecond)
	mu.Lock()
	if acquired {
		mu.Unlock()
		t.Fatal("second writer acquired before first released")
	}
	mu.Unlock()

	b.Release(track.AccessWrite)

	deadline := time.After(time.Second)
	for {
		mu.Lock()
		got := acquired
		mu.Unlock()
		if got {
			return
		}
		select {
		case <-deadline:
			t.Fatal("second writer never acquired after release")
		default:
			time.Sleep(time.Millisecond)
		}
	}
}

func TestEntryBaseReadersCountedUntilAllRelease(t *testing.T) {
	b := newEntryBase(EntryBuffer, addrrange.Range{Begin: 0, End: 0x1000})
	b.Acquire(2, track.AccessRead)
	b.Acquire(2, track.AccessRead)

	if tag, held := b.AcquiredBy(); !held || tag != 2 {
		t.Fatalf("AcquiredBy() = (%d,%v), want (2,true)", tag, held)
	}

	b.Release(track.AccessRead)
	if _, held := b.AcquiredBy(); !held {
		t.Fatal("entry should still be held after one of two readers released")
	}

	b.Release(track.AccessRead)
	if _, held := b.AcquiredBy(); held {
		t.Fatal("entry should be free after both readers released")
	}
}

func TestEntryBaseDelayedFlushFlag(t *testing.T) {
	b := newEntryBase(EntryImage, addrrange.Range{})
	if b.HasDelayedFlush() {
		t.Fatal("new entry should not start with a delayed flush pending")
	}
	b.SetDelayedFlush(true)
	if !b.HasDelayedFlush() {
		t.Fatal("SetDelayedFlush(true) did not stick")
	}
}
