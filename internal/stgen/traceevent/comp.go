package traceevent

import (
	"github.com/kolkov/stgen/internal/stgen/addrset"
	"github.com/kolkov/stgen/internal/stgen/diag"
	"github.com/kolkov/stgen/internal/stgen/stid"
)

// Comp accumulates local-compute activity for one thread between
// communication or synchronization boundaries: instruction counts and the
// unique byte ranges the thread has read or written locally. It is grounded
// on STCompEvent in
// _examples/original_source/src/Backends/SynchroTraceGen/STEvent.cpp.
type Comp struct {
	IOPs, FLOPs   uint64
	Reads, Writes uint64

	uniqueReads  addrset.Set
	uniqueWrites addrset.Set
}

// IsActive reports whether any of the IOP, FLOP, read or write counters is
// non-zero since the last Reset. A Comp with only address-set activity but
// zero counters does not occur: ThreadContext pairs every UpdateReads/
// UpdateWrites with an IncReads/IncWrites for the owning memory operation.
func (c *Comp) IsActive() bool {
	return c.IOPs != 0 || c.FLOPs != 0 || c.Reads != 0 || c.Writes != 0
}

// Reset clears the accumulator for reuse.
func (c *Comp) Reset() {
	c.IOPs, c.FLOPs, c.Reads, c.Writes = 0, 0, 0, 0
	c.uniqueReads.Clear()
	c.uniqueWrites.Clear()
}

// IncIOP records one integer operation.
func (c *Comp) IncIOP() { c.IOPs++ }

// IncFLOP records one floating-point operation.
func (c *Comp) IncFLOP() { c.FLOPs++ }

// IncReads records one local-read memory operation. It is a distinct call
// from UpdateReads: Reads counts memory operations classified local (the
// compression-bound counter checkCompFlushLimit watches), while
// UpdateReads only grows the unique-address-range set. A single read
// operation calls IncReads once and UpdateReads once per touched byte —
// mirroring STCompEvent's separate incReads()/updateReads() in the source.
func (c *Comp) IncReads() { c.Reads++ }

// IncWrites records one local-write memory operation, the write-side
// counterpart of IncReads.
func (c *Comp) IncWrites() { c.Writes++ }

// UpdateReads merges [addr, addr+n) into the unique-read-address set
// without touching the Reads operation counter.
func (c *Comp) UpdateReads(addr stid.Addr, n uint) {
	if n == 0 {
		return
	}
	c.uniqueReads.Insert(stid.Range{Start: addr, End: addr + stid.Addr(n) - 1})
}

// UpdateWrites merges [addr, addr+n) into the unique-write-address set
// without touching the Writes operation counter.
func (c *Comp) UpdateWrites(addr stid.Addr, n uint) {
	if n == 0 {
		return
	}
	c.uniqueWrites.Insert(stid.Range{Start: addr, End: addr + stid.Addr(n) - 1})
}

// UniqueReadRanges returns the compressed set of locally read byte ranges.
func (c *Comp) UniqueReadRanges() []stid.Range { return c.uniqueReads.Ranges() }

// UniqueWriteRanges returns the compressed set of locally written byte
// ranges.
func (c *Comp) UniqueWriteRanges() []stid.Range { return c.uniqueWrites.Ranges() }

// Flush emits the accumulated event through logger and advances *eid, unless
// the accumulator is inactive (a no-op flush, per spec.md §4.C). Reset is
// called after the logger has consumed c's contents. EID overflow is fatal:
// there is no defined trace representation beyond stid.MaxEID.
func (c *Comp) Flush(logger Logger, eid *stid.EID, tid stid.TID) {
	if !c.IsActive() {
		return
	}
	logger.FlushComp(c, *eid, tid)
	c.Reset()
	if eid.Incr() {
		diag.Fatal("eid overflow for tid %d", tid)
	}
}
