// Package threadctx implements ThreadContext, the per-thread state machine
// that drives shadow memory, the Comp/Comm accumulators, and the logger
// from a stream of primitive events (spec.md §4.D). It is grounded on the
// teacher's goroutine.Context (internal/race/goroutine), which plays the
// same "one state object per logical thread, swapped in by the dispatcher"
// role, though FastTrack's vector-clock bookkeeping has no counterpart
// here — spec.md's Non-goals exclude happens-before reconstruction.
package threadctx

import (
	"errors"

	"github.com/kolkov/stgen/internal/stgen/diag"
	"github.com/kolkov/stgen/internal/stgen/shadow"
	"github.com/kolkov/stgen/internal/stgen/stid"
	"github.com/kolkov/stgen/internal/stgen/traceevent"
)

// instrMarkerPeriod is the instruction milestone spec.md §4.D fixes: a
// marker fires every 2^12 instructions and carries that same constant.
const instrMarkerPeriod = 1 << 12

// Stats are the cumulative per-thread counters the finalizer writes to
// sigil.stats.out.
type Stats struct {
	IOP, FLOP, Read, Write, Instr uint64
}

// BarrierPeriod is one window of activity between two barrier events (or
// between context creation and the first barrier): the IOP/FLOP/memory
// access/instruction/lock counts accumulated since the previous barrier,
// matching the original's PerBarrierStats/AllBarriersStats shape.
type BarrierPeriod struct {
	Addr                          stid.Addr
	IOP, FLOP, Read, Write, Instr uint64
	Locks                         uint64
}

// Context is the per-thread state machine. It owns one Comp accumulator,
// one Comm accumulator, a logger, and the thread's running eid and stats.
// The zero value is not usable; construct with New.
type Context struct {
	tid          stid.TID
	primsPerComp uint

	shadow *shadow.Memory
	logger traceevent.Logger

	comp traceevent.Comp
	comm traceevent.Comm

	eid   stid.EID
	stats Stats

	curBarrier BarrierPeriod
	barrierLog []BarrierPeriod
}

// New constructs a context for tid. primsPerComp is the compression bound
// (spec.md §6's -c flag); mem is the shared shadow memory table; logger is
// the already-selected backend for this thread's output sink.
func New(tid stid.TID, primsPerComp uint, mem *shadow.Memory, logger traceevent.Logger) *Context {
	return &Context{
		tid:          tid,
		primsPerComp: primsPerComp,
		shadow:       mem,
		logger:       logger,
		eid:          1,
	}
}

// TID returns the thread id this context was created for.
func (c *Context) TID() stid.TID { return c.tid }

// EID returns the next event id that will be assigned by this context.
func (c *Context) EID() stid.EID { return c.eid }

// Stats returns the cumulative counters recorded so far.
func (c *Context) Stats() Stats { return c.stats }

// BarrierPeriods returns the closed barrier windows, plus the still-open
// current window if it has recorded any activity.
func (c *Context) BarrierPeriods() []BarrierPeriod {
	out := make([]BarrierPeriod, len(c.barrierLog), len(c.barrierLog)+1)
	copy(out, c.barrierLog)
	if c.curBarrier != (BarrierPeriod{}) {
		out = append(out, c.curBarrier)
	}
	return out
}

// compFlushIfActive flushes stComp if it is active; a no-op otherwise.
func (c *Context) compFlushIfActive() {
	c.comp.Flush(c.logger, &c.eid, c.tid)
}

// commFlushIfActive flushes stComm if it is active; a no-op otherwise.
func (c *Context) commFlushIfActive() {
	c.comm.Flush(c.logger, &c.eid, c.tid)
}

// FlushBoundary flushes Comp then Comm, whichever is active. The
// dispatcher calls this on a thread swap; ThreadContext calls it on entry
// to OnSync and at Close.
func (c *Context) FlushBoundary() {
	c.compFlushIfActive()
	c.commFlushIfActive()
}

// checkCompFlushLimit enforces the compression bound (spec.md §4.D): once
// either counter reaches primsPerComp, the Comp event is flushed so the
// next accumulation starts clean.
func (c *Context) checkCompFlushLimit() {
	if c.comp.Writes >= uint64(c.primsPerComp) || c.comp.Reads >= uint64(c.primsPerComp) {
		c.compFlushIfActive()
	}
}

// OnRead handles a load of n bytes starting at start. Comm/Comp
// exclusivity (spec.md §8 invariant 3) is enforced by flushing whichever
// accumulator the byte loop's outcome does not belong to.
func (c *Context) OnRead(start stid.Addr, n uint) {
	sawCommEdge := false
	localAddrs := make([]stid.Addr, 0, n)

	for i := stid.Addr(0); i < stid.Addr(n); i++ {
		addr := start + i

		writer, err := c.shadow.GetWriterTID(addr)
		if err != nil {
			diag.Warn("shadow read at 0x%x out of range, treating as local: %v", uint64(addr), err)
			localAddrs = append(localAddrs, addr)
			continue
		}
		isSelfReader, err := c.shadow.IsReaderTID(addr, c.tid)
		if errors.Is(err, shadow.ErrTIDCapacity) {
			diag.Fatal("tid %d: %v", c.tid, err)
		}
		if err != nil {
			diag.Warn("shadow reader check at 0x%x out of range, treating as local: %v", uint64(addr), err)
			localAddrs = append(localAddrs, addr)
			continue
		}

		if !isSelfReader {
			if err := c.shadow.UpdateReader(addr, 1, c.tid); err != nil {
				diag.Warn("shadow updateReader at 0x%x failed, treating as local: %v", uint64(addr), err)
				localAddrs = append(localAddrs, addr)
				continue
			}
		}

		if !isSelfReader && writer != c.tid && writer != stid.Undef {
			writerEID, err := c.shadow.GetWriterEID(addr)
			if err != nil {
				diag.Warn("shadow writer-eid lookup at 0x%x out of range, treating as local: %v", uint64(addr), err)
				localAddrs = append(localAddrs, addr)
				continue
			}
			c.comm.AddEdge(writer, writerEID, addr)
			sawCommEdge = true
			continue
		}

		localAddrs = append(localAddrs, addr)
	}

	// A memory op that mixes local and communication bytes is classified
	// as communication in full (spec.md §8 scenario S3): the candidate
	// local bytes collected above are only committed to stComp — as a
	// single read operation plus their address ranges — when no edge was
	// seen anywhere in this operation. If an edge was seen, they are
	// discarded: stComp gains nothing from this operation and is flushed.
	if sawCommEdge {
		c.compFlushIfActive()
	} else {
		if len(localAddrs) > 0 {
			c.comp.IncReads()
			for _, addr := range localAddrs {
				c.comp.UpdateReads(addr, 1)
			}
		}
		c.commFlushIfActive()
	}

	c.checkCompFlushLimit()
	c.stats.Read += uint64(n)
	c.curBarrier.Read += uint64(n)
}

// OnWrite handles a store of n bytes starting at start.
func (c *Context) OnWrite(start stid.Addr, n uint) {
	// Writing only ever activates stComp, never stComm, but exclusivity
	// (spec.md §8 invariant 3) must hold after every public operation —
	// so if a prior read left stComm active, it is flushed first.
	c.commFlushIfActive()

	c.comp.IncWrites()
	c.comp.UpdateWrites(start, n)
	if err := c.shadow.UpdateWriter(start, n, c.tid, c.eid); err != nil {
		diag.Warn("shadow updateWriter at 0x%x failed: %v", uint64(start), err)
	}
	c.checkCompFlushLimit()
	c.stats.Write += uint64(n)
	c.curBarrier.Write += uint64(n)
}

// OnIop handles an integer-operation primitive.
func (c *Context) OnIop() {
	c.commFlushIfActive()
	c.comp.IncIOP()
	c.stats.IOP++
	c.curBarrier.IOP++
}

// OnFlop handles a floating-point-operation primitive.
func (c *Context) OnFlop() {
	c.commFlushIfActive()
	c.comp.IncFLOP()
	c.stats.FLOP++
	c.curBarrier.FLOP++
}

// OnSync handles a synchronization primitive. Both accumulators are
// flushed, in Comp-then-Comm order, before the sync event itself is
// emitted; sync emission consumes an eid.
func (c *Context) OnSync(kind stid.SyncKind, addr stid.Addr) {
	c.FlushBoundary()

	switch kind {
	case stid.SyncLock:
		c.curBarrier.Locks++
	case stid.SyncBarrier:
		c.curBarrier.Addr = addr
		c.barrierLog = append(c.barrierLog, c.curBarrier)
		c.curBarrier = BarrierPeriod{}
	}

	c.logger.FlushSync(kind, addr, c.eid, c.tid)
	if c.eid.Incr() {
		diag.Fatal("eid overflow for tid %d", c.tid)
	}
}

// OnInstr handles one instruction-boundary primitive.
func (c *Context) OnInstr() {
	c.stats.Instr++
	c.curBarrier.Instr++
	if c.stats.Instr&(instrMarkerPeriod-1) == 0 {
		c.logger.InstrMarker(instrMarkerPeriod)
	}
}

// Close flushes any still-active Comp/Comm accumulator. It must be called
// once, when the context is retired at process exit (spec.md §3
// Lifecycles).
func (c *Context) Close() {
	c.FlushBoundary()
}
