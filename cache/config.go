package cache

// Config holds the tunables that the original implementation kept in a
// single process-wide global. Every Cache takes its own Config rather
// than reading shared mutable state, so multiple caches (and tests) can
// run with different settings side by side.
type Config struct {
	// DisableGpuCache forces every Buffer/ImageBuffer entry to treat its
	// host-side copy as always-dirty, falling back to a direct
	// guest-memory read on every getData() call. Set when host memory
	// cannot be trusted to stay coherent with guest writes (see
	// Buffer.expensive in buffer.go).
	DisableGpuCache bool

	// PageSize records the guest page size. No code in this module reads
	// it: memwatch tracks pages at its own fixed memwatch.PageSize.
	PageSize uint64

	// DescriptorSetPoolSize records a descriptor-set pool size. No code in
	// this module reads it: a DescriptorPool holds exactly the sets passed
	// to NewDescriptorPool.
	DescriptorSetPoolSize int
}

// DefaultConfig returns the configuration a Cache uses when none is
// supplied: GPU caching enabled, a 4KiB guest page size, and a
// descriptor-set pool sized for moderate frame overlap.
func DefaultConfig() Config {
	return Config{
		DisableGpuCache:       false,
		PageSize:              4096,
		DescriptorSetPoolSize: 64,
	}
}
