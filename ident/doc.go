// Package ident provides type-safe resource identifiers and lifecycle
// tracking shared by every cache-entry kind.
//
// It handles:
//
//   - Type-safe resource identifiers (ID system)
//   - Resource lifecycle management (IdentityManager, Storage)
//   - Safe deferred destruction (Snatchable)
//   - Error handling with detailed messages
//
// ID System:
//
// Resources are identified by type-safe IDs that combine an index and epoch:
//
//	type BufferID = ID[bufferMarker]
//	id := NewID[bufferMarker](index, epoch)
//	index, epoch := id.Unzip()
//
// The epoch prevents use-after-free bugs by invalidating old IDs when slots
// are recycled, which matters here because cache entries are evicted and
// their slots reused far more often than ordinary GPU resources are.
//
// Storage Pattern:
//
// IDs are allocated by a typed IdentityManager, and resources are stored
// in a typed Storage that checks the epoch on every access:
//
//	ids := NewIdentityManager[entryMarker]()
//	storage := NewStorage[Entry, entryMarker](0)
//	id := ids.Alloc()
//	storage.Insert(id, entry)
//	entry, ok := storage.Get(id)
//	storage.Remove(id)
//	ids.Release(id)
//
// Thread Safety:
//
// All types in this package are safe for concurrent use unless explicitly
// documented otherwise.
package ident
