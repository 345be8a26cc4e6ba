// Package registry implements the global, mutex-protected tables spec.md
// §3/§4.F/§5 describe: threads_in_order, thread_spawns, barriers, and the
// per-thread stats handoff a torn-down ThreadContext leaves behind. It is
// grounded on the teacher's stackdepot package (internal/race/stackdepot),
// which plays the same "one coarse-locked, process-lifetime table" role
// for interned stack traces.
package registry

import (
	"sync"

	"github.com/kolkov/stgen/internal/stgen/stid"
	"github.com/kolkov/stgen/internal/stgen/threadctx"
)

// ThreadSpawn is one thread_spawns entry: current_tid, spawnee_addr at the
// moment a SYNC_CREATE primitive was observed.
type ThreadSpawn struct {
	SpawnerTID  stid.TID
	SpawneeAddr stid.Addr
}

// Barrier is one barriers entry: the barrier address and the set of TIDs
// observed passing through it, in first-sight order.
type Barrier struct {
	Addr         stid.Addr
	Participants []stid.TID
}

// ThreadRecord is the final snapshot a torn-down ThreadContext hands to the
// registry: its cumulative stats and its closed barrier windows.
type ThreadRecord struct {
	TID     stid.TID
	Stats   threadctx.Stats
	Windows []threadctx.BarrierPeriod
}

// Registry is the process-lifetime set of global tables, all behind one
// coarse mutex (spec.md §5: "write-rare... acquired by Create, Barrier,
// first-sight thread registration, and finalizer"). The zero value is not
// usable; construct with New.
type Registry struct {
	mu sync.Mutex

	threadsInOrder []stid.TID
	seen           map[stid.TID]bool

	spawns []ThreadSpawn

	barriers     []Barrier
	barrierIndex map[stid.Addr]int

	records []ThreadRecord
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		seen:         make(map[stid.TID]bool),
		barrierIndex: make(map[stid.Addr]int),
	}
}

// RegisterThreadFirstSight records tid's first appearance in
// threads_in_order. Subsequent calls for an already-seen tid are no-ops.
// Reports true if this call was the one that registered it.
func (r *Registry) RegisterThreadFirstSight(tid stid.TID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.seen[tid] {
		return false
	}
	r.seen[tid] = true
	r.threadsInOrder = append(r.threadsInOrder, tid)
	return true
}

// RecordSpawn appends a thread_spawns entry. Called on SYNC_CREATE, before
// the Sync primitive is translated and flushed (spec.md §4.F).
func (r *Registry) RecordSpawn(spawnerTID stid.TID, spawneeAddr stid.Addr) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.spawns = append(r.spawns, ThreadSpawn{SpawnerTID: spawnerTID, SpawneeAddr: spawneeAddr})
}

// RecordBarrierParticipant unions tid into the participant set of the
// barrier at addr, appending a fresh entry on first sight of addr (spec.md
// §4.F). The entry is found through an addr-to-index map rather than a
// linear scan; entries stay in first-sight order of their addresses.
func (r *Registry) RecordBarrierParticipant(addr stid.Addr, tid stid.TID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx, ok := r.barrierIndex[addr]
	if !ok {
		idx = len(r.barriers)
		r.barrierIndex[addr] = idx
		r.barriers = append(r.barriers, Barrier{Addr: addr})
	}
	b := &r.barriers[idx]
	for _, p := range b.Participants {
		if p == tid {
			return
		}
	}
	b.Participants = append(b.Participants, tid)
}

// RecordThreadTeardown hands off a context's final stats snapshot at
// destruction, the source's EventHandlers::~EventHandlers behavior
// (SUPPLEMENTED FEATURES §2): the registry does not recompute a thread's
// totals, it only ever receives them once, from the dispatcher.
func (r *Registry) RecordThreadTeardown(rec ThreadRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, rec)
}

// ThreadsInOrder returns the first-sight thread order.
func (r *Registry) ThreadsInOrder() []stid.TID {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]stid.TID, len(r.threadsInOrder))
	copy(out, r.threadsInOrder)
	return out
}

// Spawns returns the thread_spawns table.
func (r *Registry) Spawns() []ThreadSpawn {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]ThreadSpawn, len(r.spawns))
	copy(out, r.spawns)
	return out
}

// Barriers returns the barriers table.
func (r *Registry) Barriers() []Barrier {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Barrier, len(r.barriers))
	copy(out, r.barriers)
	return out
}

// ThreadRecords returns the per-thread stats/barrier-window snapshots
// handed off at teardown, in teardown order.
func (r *Registry) ThreadRecords() []ThreadRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]ThreadRecord, len(r.records))
	copy(out, r.records)
	return out
}
