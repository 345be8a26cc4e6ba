// Package traceevent implements the trace-event accumulators of spec.md
// §4.C: Comp, Comm, Sync, and the instruction marker. Comp and Comm share
// the "is_active / reset / flush" contract spec.md describes; Sync and the
// marker carry no accumulator state and are emitted immediately by
// ThreadContext without going through this package.
package traceevent

import "github.com/kolkov/stgen/internal/stgen/stid"

// Logger is the capability set spec.md §4.E requires of every logger
// backend. It is declared here, next to the types it serializes, rather
// than in package logger, so that traceevent has no dependency on any
// concrete backend — logger.Text/Packed/Null each implement it.
type Logger interface {
	FlushComp(c *Comp, eid stid.EID, tid stid.TID)
	FlushComm(c *Comm, eid stid.EID, tid stid.TID)
	FlushSync(kind stid.SyncKind, addr stid.Addr, eid stid.EID, tid stid.TID)
	InstrMarker(count uint32)
}
