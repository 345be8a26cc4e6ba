package traceevent

import (
	"github.com/kolkov/stgen/internal/stgen/addrset"
	"github.com/kolkov/stgen/internal/stgen/diag"
	"github.com/kolkov/stgen/internal/stgen/stid"
)

// Edge is one producer-thread's contribution to a Comm event: the
// producer's tid/eid pair and the byte ranges this thread read from it.
type Edge struct {
	ProducerTID stid.TID
	ProducerEID stid.EID
	Addrs       []stid.Range
}

// Comm accumulates communication edges observed by one thread since the
// last flush: reads that a shadow-memory lookup attributed to some other
// thread's prior write. It is grounded on STCommEvent in
// _examples/original_source/src/Backends/SynchroTraceGen/STEvent.cpp, which
// keyed edges by (producer tid, producer eid) and merged same-producer
// touches into one AddrSet.
type Comm struct {
	edges []edge
}

type edge struct {
	producerTID stid.TID
	producerEID stid.EID
	addrs       addrset.Set
}

// IsActive reports whether any edge has been recorded since the last Reset.
func (c *Comm) IsActive() bool { return len(c.edges) > 0 }

// Reset clears the accumulator for reuse.
func (c *Comm) Reset() { c.edges = c.edges[:0] }

// AddEdge records that the calling thread read addr, and that addr's last
// writer was (producerTID, producerEID). Touches sharing a producer merge
// into that producer's address set instead of creating a new edge.
func (c *Comm) AddEdge(producerTID stid.TID, producerEID stid.EID, addr stid.Addr) {
	for i := range c.edges {
		if c.edges[i].producerTID == producerTID && c.edges[i].producerEID == producerEID {
			c.edges[i].addrs.Insert(stid.Range{Start: addr, End: addr})
			return
		}
	}
	var e edge
	e.producerTID = producerTID
	e.producerEID = producerEID
	e.addrs.Insert(stid.Range{Start: addr, End: addr})
	c.edges = append(c.edges, e)
}

// Edges returns a snapshot of the accumulated edges.
func (c *Comm) Edges() []Edge {
	out := make([]Edge, len(c.edges))
	for i, e := range c.edges {
		out[i] = Edge{
			ProducerTID: e.producerTID,
			ProducerEID: e.producerEID,
			Addrs:       e.addrs.Ranges(),
		}
	}
	return out
}

// Flush emits the accumulated edges through logger and advances *eid,
// unless the accumulator is inactive. See Comp.Flush for the shared
// no-op/overflow contract.
func (c *Comm) Flush(logger Logger, eid *stid.EID, tid stid.TID) {
	if !c.IsActive() {
		return
	}
	logger.FlushComm(c, *eid, tid)
	c.Reset()
	if eid.Incr() {
		diag.Fatal("eid overflow for tid %d", tid)
	}
}
