package logger

import (
	"github.com/kolkov/stgen/internal/stgen/stid"
	"github.com/kolkov/stgen/internal/stgen/traceevent"
)

// Null discards all input; used for measurement runs where trace output
// itself is not wanted (spec.md §4.E).
type Null struct{}

func (Null) FlushComp(*traceevent.Comp, stid.EID, stid.TID)         {}
func (Null) FlushComm(*traceevent.Comm, stid.EID, stid.TID)         {}
func (Null) FlushSync(stid.SyncKind, stid.Addr, stid.EID, stid.TID) {}
func (Null) InstrMarker(uint32)                                     {}
