// Package primitive defines the tagged union of primitive events the
// instrumentation front-end feeds to the dispatcher (spec.md §6): Mem,
// Comp, Sync, and Cxt. Design Note "Observers as sum types" (spec.md §9)
// asks for a small tagged variant here rather than an untyped observer
// list — this is that variant.
package primitive

import "github.com/kolkov/stgen/internal/stgen/stid"

// Kind discriminates the primitive union.
type Kind uint8

const (
	KindMem Kind = iota + 1
	KindComp
	KindSync
	KindCxt
)

// MemOp distinguishes a load from a store.
type MemOp uint8

const (
	MemLoad MemOp = iota + 1
	MemStore
)

// CompOp distinguishes an integer op from a floating-point op.
type CompOp uint8

const (
	CompIOP CompOp = iota + 1
	CompFLOP
)

// CxtOp is the context-event subtype. Instr is the only one the core acts
// on; anything else is dropped silently by the dispatcher.
type CxtOp uint8

const (
	CxtInstr CxtOp = iota + 1
)

// swapSyncKind is not a spec.md §4.E wire sync type: it is the dispatcher's
// internal thread-swap signal (spec.md §4.F), carried on a Sync-shaped
// primitive whose Kind never reaches ThreadContext.OnSync.
const swapSyncKind stid.SyncKind = 0

// Event is one primitive record. Only the fields relevant to Kind are
// meaningful; the others are zero.
type Event struct {
	Kind Kind

	// Mem
	MemOp MemOp
	Start stid.Addr
	Size  uint

	// Comp
	CompOp CompOp

	// Sync (and thread-swap, see IsSwap)
	SyncKind stid.SyncKind
	SyncID   stid.Addr

	// Cxt
	CxtOp CxtOp
	CxtID uint64
}

// Swap builds the dispatcher's internal thread-swap primitive: a Sync-kind
// event carrying the new TID as its id, which the dispatcher intercepts
// before any ThreadContext ever sees it (spec.md §4.F).
func Swap(newTID stid.TID) Event {
	return Event{Kind: KindSync, SyncKind: swapSyncKind, SyncID: stid.Addr(newTID)}
}

// IsSwap reports whether e is the dispatcher's internal thread-swap signal
// rather than a wire sync type.
func (e Event) IsSwap() bool {
	return e.Kind == KindSync && e.SyncKind == swapSyncKind
}
