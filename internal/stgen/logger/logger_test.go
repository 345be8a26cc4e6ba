package logger

import (
	"bytes"
	"compress/gzip"
	"io"
	"os"
	"testing"

	"github.com/kolkov/stgen/internal/stgen/stid"
	"github.com/kolkov/stgen/internal/stgen/traceevent"
)

func readGunzipped(t *testing.T, path string) []byte {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer f.Close()
	gz, err := gzip.NewReader(f)
	if err != nil {
		t.Fatalf("gzip.NewReader: %v", err)
	}
	defer gz.Close()
	data, err := io.ReadAll(gz)
	if err != nil {
		t.Fatalf("reading gzip stream: %v", err)
	}
	return data
}

func TestTextLoggerWritesExpectedLines(t *testing.T) {
	dir := t.TempDir()
	l := New(BackendText, dir, 1)

	var comp traceevent.Comp
	comp.IncIOP()
	comp.IncFLOP()
	comp.IncWrites()
	comp.UpdateWrites(0x100, 4)
	comp.IncReads()
	comp.UpdateReads(0x200, 2)
	l.FlushComp(&comp, 0, 1)

	var comm traceevent.Comm
	comm.AddEdge(2, 9, 0x300)
	l.FlushComm(&comm, 1, 1)

	l.FlushSync(stid.SyncBarrier, 0xBEEF, 2, 1)
	l.InstrMarker(4096)

	if err := Close(l); err != nil {
		t.Fatalf("Close: %v", err)
	}

	got := string(readGunzipped(t, dir+"/sigil.events.out-1.gz"))
	want := "0,1,1,1,1,1 $ 0x100 0x103 * 0x200 0x201\n" +
		"1,1 # 2 9 0x300 0x300\n" +
		"2,1,pth_ty:5^0xbeef\n" +
		"! 0x1000 "
	if got != want {
		t.Errorf("text output = %q, want %q", got, want)
	}
}

func TestPackedLoggerFramesOneMessage(t *testing.T) {
	dir := t.TempDir()
	l := New(BackendPacked, dir, 2)

	l.InstrMarker(4096)

	if err := Close(l); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data := readGunzipped(t, dir+"/sigil.events.out-2.capn.bin.gz")
	// header: uvarint(1 event); body: tagMarker, uvarint(4096)
	if len(data) == 0 {
		t.Fatal("packed output is empty")
	}
	if data[0] != 1 {
		t.Fatalf("event-count header = %d, want 1", data[0])
	}
	if data[1] != tagMarker {
		t.Fatalf("tag = %d, want tagMarker(%d)", data[1], tagMarker)
	}
}

func TestNullLoggerDiscardsEverything(t *testing.T) {
	l := New(BackendNull, t.TempDir(), 1)
	var comp traceevent.Comp
	comp.IncIOP()
	l.FlushComp(&comp, 0, 1) // must not panic
	if err := Close(l); err != nil {
		t.Fatalf("Close on Null: %v", err)
	}
}

func TestAppendRangesPrefixesRangeCount(t *testing.T) {
	buf := appendRanges(nil, []stid.Range{{Start: 1, End: 2}, {Start: 5, End: 9}})
	if !bytes.Equal(buf[:1], []byte{2}) {
		t.Fatalf("range-count prefix = %v, want [2]", buf[:1])
	}
}
