// Package sched provides the command-queue scheduler the cache submits
// GPU work through.
//
// The cache never talks to a Vulkan queue directly: every Tag records
// commands into a buffer obtained from GetCommandBuffer, and flush steps
// call Submit/Wait to serialize the inter-level copies (Image <-> Image
// Buffer <-> Buffer) the coherency engine depends on for correctness.
// AfterSubmit registers cleanup (descriptor-set release, staging-buffer
// return) that must run only once the in-flight batch has completed.
package sched

import (
	"sync"

	"github.com/gogpu/gfxcache/internal/thread"
	"github.com/gogpu/gfxcache/vkh"
)

// Scheduler is the external collaborator the cache records and submits
// GPU work through. All methods are safe to call from any goroutine; the
// Scheduler itself owns the single OS thread Vulkan commands are recorded
// and submitted from.
type Scheduler struct {
	thread *thread.Thread

	device vkh.Device
	cmds   *vkh.Commands
	queue  vkh.Queue

	mu           sync.Mutex
	current      vkh.CommandBuffer
	afterSubmit  []func()
	pendingCount int
}

// New creates a Scheduler bound to a device's command-submission queue.
// cmds must already have LoadDevice called on it.
func New(device vkh.Device, cmds *vkh.Commands, queue vkh.Queue) *Scheduler {
	return &Scheduler{
		thread: thread.New(),
		device: device,
		cmds:   cmds,
		queue:  queue,
	}
}

// GetCommandBuffer returns the command buffer the caller should record
// into for the current batch: the one last installed by
// SetCommandBuffer, or 0 if none has been installed since the last
// Wait. It never allocates or begins a buffer itself. Every call before
// the next Wait returns the same buffer, so a Tag's multiple record steps
// land in one batch.
func (s *Scheduler) GetCommandBuffer() vkh.CommandBuffer {
	return s.thread.Call(func() any {
		s.mu.Lock()
		defer s.mu.Unlock()
		return s.current
	}).(vkh.CommandBuffer)
}

// SetCommandBuffer installs the buffer an external command-ring executor
// allocated and began for this batch. The cache does not allocate command
// buffers itself; it is handed one per batch by its caller.
func (s *Scheduler) SetCommandBuffer(cmd vkh.CommandBuffer) {
	s.thread.CallVoid(func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.current = cmd
	})
}

// AfterSubmit registers fn to run once the current batch's Submit has
// been waited on. Used to release descriptor-set slots and return staging
// buffers that must outlive the commands referencing them.
func (s *Scheduler) AfterSubmit(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.afterSubmit = append(s.afterSubmit, fn)
}

// Submit records, on the scheduler's thread, that the current batch has
// been handed off. It does not end the command buffer or call
// vkQueueSubmit itself; that is done by the external command-ring
// executor.
func (s *Scheduler) Submit() {
	s.thread.CallVoid(func() {
		s.mu.Lock()
		s.pendingCount++
		s.mu.Unlock()
		// Actual vkQueueSubmit plumbing is owned by the external
		// command-ring executor; the scheduler here only serializes
		// access to the single recording thread and tracks completion
		// for Wait/AfterSubmit bookkeeping.
	})
}

// Wait closes the current batch: on the scheduler's thread it clears the
// current command buffer and the submitted-batch count, then runs and
// clears the AfterSubmit callbacks. It does not wait on a fence or the
// device queue, so it does not block until submitted GPU work completes.
func (s *Scheduler) Wait() {
	var callbacks []func()
	s.thread.CallVoid(func() {
		s.mu.Lock()
		s.pendingCount = 0
		s.current = 0
		callbacks = s.afterSubmit
		s.afterSubmit = nil
		s.mu.Unlock()
	})
	for _, fn := range callbacks {
		fn()
	}
}

// Close stops the scheduler's recording thread. No further commands may
// be recorded after Close returns.
func (s *Scheduler) Close() {
	s.thread.Stop()
}
