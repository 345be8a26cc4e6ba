package shadow

import (
	"errors"
	"testing"

	"github.com/kolkov/stgen/internal/stgen/stid"
)

func TestWriterRoundTrip(t *testing.T) {
	m := New()
	const addr = stid.Addr(0x1000)

	if err := m.UpdateWriter(addr, 1, 7, 42); err != nil {
		t.Fatalf("UpdateWriter: %v", err)
	}

	tid, err := m.GetWriterTID(addr)
	if err != nil || tid != 7 {
		t.Fatalf("GetWriterTID = %v, %v; want 7, nil", tid, err)
	}
	eid, err := m.GetWriterEID(addr)
	if err != nil || eid != 42 {
		t.Fatalf("GetWriterEID = %v, %v; want 42, nil", eid, err)
	}
	isReader, err := m.IsReaderTID(addr, 7)
	if err != nil || isReader {
		t.Fatalf("IsReaderTID = %v, %v; want false, nil (readers cleared on write)", isReader, err)
	}
}

func TestUndefBeforeFirstWrite(t *testing.T) {
	m := New()
	tid, err := m.GetWriterTID(0x9999)
	if err != nil {
		t.Fatalf("GetWriterTID: %v", err)
	}
	if tid != stid.Undef {
		t.Errorf("GetWriterTID on untouched addr = %v, want Undef", tid)
	}
}

func TestWriteClearsPriorReaders(t *testing.T) {
	m := New()
	const addr = stid.Addr(0x2000)

	if err := m.UpdateReader(addr, 1, 3); err != nil {
		t.Fatalf("UpdateReader: %v", err)
	}
	if ok, _ := m.IsReaderTID(addr, 3); !ok {
		t.Fatalf("expected tid 3 to be a reader before rewrite")
	}

	if err := m.UpdateWriter(addr, 1, 1, 1); err != nil {
		t.Fatalf("UpdateWriter: %v", err)
	}
	if ok, _ := m.IsReaderTID(addr, 3); ok {
		t.Errorf("reader set not cleared by UpdateWriter")
	}
}

func TestOutOfRangeIsRecoverable(t *testing.T) {
	m := New()
	bad := addrLimit + 1

	_, err := m.GetWriterTID(bad)
	if !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("GetWriterTID(out-of-range) err = %v, want ErrOutOfRange", err)
	}

	if err := m.UpdateWriter(bad, 1, 1, 1); !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("UpdateWriter(out-of-range) err = %v, want ErrOutOfRange", err)
	}
}

func TestRangeWriteSpansMultiplePages(t *testing.T) {
	m := New()
	start := stid.Addr(pageSize - 4) // straddles a page boundary
	if err := m.UpdateWriter(start, 8, 5, 9); err != nil {
		t.Fatalf("UpdateWriter: %v", err)
	}
	for i := stid.Addr(0); i < 8; i++ {
		tid, err := m.GetWriterTID(start + i)
		if err != nil || tid != 5 {
			t.Errorf("byte %d: GetWriterTID = %v, %v; want 5, nil", i, tid, err)
		}
	}
}

func TestTIDCapacity(t *testing.T) {
	m := New()
	if err := m.UpdateReader(0x1, 1, maxConcurrentTIDs); err != nil {
		t.Fatalf("UpdateReader at capacity boundary: %v", err)
	}
	if err := m.UpdateReader(0x1, 1, maxConcurrentTIDs+1); !errors.Is(err, ErrTIDCapacity) {
		t.Fatalf("UpdateReader beyond capacity err = %v, want ErrTIDCapacity", err)
	}
}
