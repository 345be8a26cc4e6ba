// Package shadow implements ShadowMemory, the byte-granular ownership table
// that backs communication-edge detection (spec.md §4.B).
//
// The representation follows spec.md's recommended layout: a top-level
// index selects a lazily allocated second-level page, and each page holds
// one cell per byte address. This mirrors the "get or allocate" pattern in
// the teacher's shadowmem.ShadowMemory.GetOrCreate — the difference is that
// the teacher backs its top level with a sync.Map because any goroutine may
// touch any address concurrently, whereas spec.md §5 guarantees shadow
// memory is only ever touched by the single currently-active ThreadContext
// at a time. That guarantee lets the top level here be a plain Go map with
// no synchronization, matching the concurrency model instead of paying for
// one it doesn't need.
package shadow

import (
	"errors"
	"fmt"

	"github.com/kolkov/stgen/internal/stgen/stid"
)

const (
	// pageBits sizes each second-level page at 1<<pageBits byte cells
	// (65536, i.e. one page covers a 64KiB span of address space).
	pageBits = 16
	pageSize = 1 << pageBits
	pageMask = pageSize - 1

	// topBits sizes the representable address space at
	// 1<<(topBits+pageBits) bytes (64GiB), matching spec.md §4.B's
	// recommended "top index 20 bits, page index 16 bits" layout.
	topBits    = 20
	addrBits   = topBits + pageBits
	addrLimit  = stid.Addr(1) << addrBits
	maxTopPage = 1 << topBits

	// maxConcurrentTIDs bounds the reader bitset. The original
	// ThreadContext constructor asserts tid <= 128; this keeps the same
	// bound (spec.md §9's open question on the tunable is resolved here).
	maxConcurrentTIDs = 128
	bitsetWords       = (maxConcurrentTIDs + 63) / 64
)

// ErrOutOfRange reports a shadow-memory access above the representable
// address space. Per spec.md §7 this is recoverable: the caller degrades
// the access to local-compute treatment and leaves shadow state untouched.
var ErrOutOfRange = errors.New("shadow: address out of representable range")

// ErrTIDCapacity reports a thread id beyond maxConcurrentTIDs. Unlike
// ErrOutOfRange this is a configuration/scale problem, not a per-access
// condition, so callers treat it as fatal (spec.md §7 shadow allocation
// failure).
var ErrTIDCapacity = fmt.Errorf("shadow: thread id exceeds the %d-thread limit", maxConcurrentTIDs)

type readerSet [bitsetWords]uint64

func (r *readerSet) set(tid stid.TID) {
	i := int(tid) - 1
	r[i/64] |= 1 << uint(i%64)
}

func (r *readerSet) has(tid stid.TID) bool {
	i := int(tid) - 1
	return r[i/64]&(1<<uint(i%64)) != 0
}

func (r *readerSet) clear() {
	*r = readerSet{}
}

// cell is the per-address shadow entry: the last writer and the set of
// threads that have read since that write.
type cell struct {
	writerTID stid.TID
	writerEID stid.EID
	readers   readerSet
}

type page [pageSize]cell

// Memory is the process-lifetime shadow memory table shared by every
// ThreadContext. The zero value is ready to use.
type Memory struct {
	top map[uint32]*page
}

// New creates an empty shadow memory table.
func New() *Memory {
	return &Memory{top: make(map[uint32]*page)}
}

func splitAddr(addr stid.Addr) (top uint32, off uint32, ok bool) {
	if addr >= addrLimit {
		return 0, 0, false
	}
	return uint32(addr >> pageBits), uint32(addr) & pageMask, true
}

func (m *Memory) cellFor(addr stid.Addr, create bool) (*cell, error) {
	top, off, ok := splitAddr(addr)
	if !ok {
		return nil, fmt.Errorf("%w: 0x%x", ErrOutOfRange, uint64(addr))
	}
	p, exists := m.top[top]
	if !exists {
		if !create {
			return nil, nil
		}
		if m.top == nil {
			m.top = make(map[uint32]*page)
		}
		p = &page{}
		m.top[top] = p
	}
	return &p[off], nil
}

// UpdateWriter records tid/eid as the writer of the bytes bytes..bytes+n-1
// starting at start, clearing the reader set for each byte. Addresses
// outside the representable range are skipped with ErrOutOfRange; the
// caller (ThreadContext) is responsible for warning and treating the byte
// as local.
func (m *Memory) UpdateWriter(start stid.Addr, n uint, tid stid.TID, eid stid.EID) error {
	var firstErr error
	for i := stid.Addr(0); i < stid.Addr(n); i++ {
		c, err := m.cellFor(start+i, true)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		c.writerTID = tid
		c.writerEID = eid
		c.readers.clear()
	}
	return firstErr
}

// UpdateReader adds tid to the reader set of the bytes start..start+n-1.
func (m *Memory) UpdateReader(start stid.Addr, n uint, tid stid.TID) error {
	if int(tid) < 1 || int(tid) > maxConcurrentTIDs {
		return ErrTIDCapacity
	}
	var firstErr error
	for i := stid.Addr(0); i < stid.Addr(n); i++ {
		c, err := m.cellFor(start+i, true)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		c.readers.set(tid)
	}
	return firstErr
}

// GetWriterTID returns the last writer of addr, or stid.Undef if the byte
// has never been written (or lies outside the representable range).
func (m *Memory) GetWriterTID(addr stid.Addr) (stid.TID, error) {
	c, err := m.cellFor(addr, false)
	if err != nil {
		return stid.Undef, err
	}
	if c == nil {
		return stid.Undef, nil
	}
	return c.writerTID, nil
}

// GetWriterEID returns the EID of addr's last writer. The result is only
// meaningful when GetWriterTID reports a writer other than stid.Undef.
func (m *Memory) GetWriterEID(addr stid.Addr) (stid.EID, error) {
	c, err := m.cellFor(addr, false)
	if err != nil {
		return 0, err
	}
	if c == nil {
		return 0, nil
	}
	return c.writerEID, nil
}

// IsReaderTID reports whether tid has been recorded as a reader of addr
// since its last write.
func (m *Memory) IsReaderTID(addr stid.Addr, tid stid.TID) (bool, error) {
	if int(tid) < 1 || int(tid) > maxConcurrentTIDs {
		return false, ErrTIDCapacity
	}
	c, err := m.cellFor(addr, false)
	if err != nil {
		return false, err
	}
	if c == nil {
		return false, nil
	}
	return c.readers.has(tid), nil
}
