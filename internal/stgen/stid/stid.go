// Package stid defines the scalar identifier types shared by every
// SynchroTrace component: thread ids, per-thread event ids, and addresses.
//
// Keeping these as distinct named types (rather than bare uint64s) mirrors
// the teacher's epoch package, which never lets a raw integer stand in for
// a thread id or a clock value.
package stid

import "fmt"

// TID is a thread identifier. Valid TIDs are >= 1; the zero value is
// reserved for "no writer" (see Undef).
type TID uint32

// Undef is the shadow-memory sentinel for "never written".
const Undef TID = 0

// EID is a monotonically increasing per-thread event id. It overflows at
// MaxEID, which is fatal per spec.md §7.
type EID uint64

// MaxEID is the largest representable EID; incrementing past it is a fatal
// overflow condition (spec.md §3, §8 invariant 4).
const MaxEID EID = 1<<64 - 1

// Incr advances eid by one, reporting whether doing so would overflow.
// Callers treat a true return as fatal, matching the original's
// __builtin_add_overflow-based INCR_EID_OVERFLOW macro.
func (e *EID) Incr() (overflowed bool) {
	if *e == MaxEID {
		return true
	}
	*e++
	return false
}

// Addr is a byte address in the traced program's address space.
type Addr uint64

// Range is an inclusive address range [Start, End].
type Range struct {
	Start Addr
	End   Addr
}

// String renders a range as "0xSTART 0xEND", the layout used by the text
// logger for write/read/comm address ranges.
func (r Range) String() string {
	return fmt.Sprintf("0x%x 0x%x", uint64(r.Start), uint64(r.End))
}

// SyncKind is the SynchroTrace synchronization primitive type, using the
// wire values fixed by the SynchroTraceSim consumer (spec.md §4.E).
type SyncKind uint8

const (
	SyncLock          SyncKind = 1
	SyncUnlock        SyncKind = 2
	SyncCreate        SyncKind = 3
	SyncJoin          SyncKind = 4
	SyncBarrier       SyncKind = 5
	SyncCondWait      SyncKind = 6
	SyncCondSignal    SyncKind = 7
	SyncCondBroadcast SyncKind = 8
	SyncSpinLock      SyncKind = 9
	SyncSpinUnlock    SyncKind = 10
)

// Valid reports whether k is one of the ten SynchroTrace-recognized sync
// kinds. Anything else (semaphore primitives, SWAP) is not a wire sync type.
func (k SyncKind) Valid() bool {
	return k >= SyncLock && k <= SyncSpinUnlock
}

func (k SyncKind) String() string {
	switch k {
	case SyncLock:
		return "LOCK"
	case SyncUnlock:
		return "UNLOCK"
	case SyncCreate:
		return "CREATE"
	case SyncJoin:
		return "JOIN"
	case SyncBarrier:
		return "BARRIER"
	case SyncCondWait:
		return "COND_WAIT"
	case SyncCondSignal:
		return "COND_SIGNAL"
	case SyncCondBroadcast:
		return "COND_BROADCAST"
	case SyncSpinLock:
		return "SPIN_LOCK"
	case SyncSpinUnlock:
		return "SPIN_UNLOCK"
	default:
		return fmt.Sprintf("SyncKind(%d)", uint8(k))
	}
}
