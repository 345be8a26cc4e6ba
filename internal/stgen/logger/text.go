package logger

import (
	"fmt"

	"github.com/kolkov/stgen/internal/stgen/stid"
	"github.com/kolkov/stgen/internal/stgen/traceevent"
)

// Text is the line-oriented logger backend (spec.md §4.E).
type Text struct {
	sink *sink
}

// FlushComp writes "<eid>,<tid>,<iops>,<flops>,<reads>,<writes>" followed
// by a " $ start end" token per write range and a " * start end" token per
// read range.
func (t *Text) FlushComp(c *traceevent.Comp, eid stid.EID, tid stid.TID) {
	fmt.Fprintf(t.sink, "%d,%d,%d,%d,%d,%d", eid, tid, c.IOPs, c.FLOPs, c.Reads, c.Writes)
	for _, r := range c.UniqueWriteRanges() {
		fmt.Fprintf(t.sink, " $ %s", r)
	}
	for _, r := range c.UniqueReadRanges() {
		fmt.Fprintf(t.sink, " * %s", r)
	}
	fmt.Fprintln(t.sink)
}

// FlushComm writes "<eid>,<tid>" followed by a " # prod_tid prod_eid start
// end" token per address range in each edge.
func (t *Text) FlushComm(c *traceevent.Comm, eid stid.EID, tid stid.TID) {
	fmt.Fprintf(t.sink, "%d,%d", eid, tid)
	for _, e := range c.Edges() {
		for _, r := range e.Addrs {
			fmt.Fprintf(t.sink, " # %d %d %s", e.ProducerTID, e.ProducerEID, r)
		}
	}
	fmt.Fprintln(t.sink)
}

// FlushSync writes "<eid>,<tid>,pth_ty:<type>^<hex_addr>".
func (t *Text) FlushSync(kind stid.SyncKind, addr stid.Addr, eid stid.EID, tid stid.TID) {
	fmt.Fprintf(t.sink, "%d,%d,pth_ty:%d^0x%x\n", eid, tid, uint8(kind), uint64(addr))
}

// InstrMarker writes "! <hex_count> " inline; callers may batch several
// markers onto one line before the next flush starts a new one.
func (t *Text) InstrMarker(count uint32) {
	fmt.Fprintf(t.sink, "! 0x%x ", count)
}
