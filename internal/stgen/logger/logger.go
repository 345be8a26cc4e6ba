// Package logger implements the LoggerStrategy backends of spec.md §4.E:
// Text, Packed, and Null. Text and Packed each own a gzip-compressed byte
// sink keyed by TID; Null owns no sink. The capability-set interface they satisfy, traceevent.Logger, is
// declared alongside the event types it serializes.
package logger

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kolkov/stgen/internal/stgen/diag"
	"github.com/kolkov/stgen/internal/stgen/stid"
	"github.com/kolkov/stgen/internal/stgen/traceevent"
)

// Backend names accepted by the -l CLI flag (spec.md §6).
const (
	BackendText   = "text"
	BackendPacked = "capnp"
	BackendNull   = "null"
)

// sink is the gzip-compressed byte sink a non-null logger owns for its TID.
// Writes are buffered ahead of gzip the way the teacher buffers its own
// report output, rather than syscalling per Fprintf.
type sink struct {
	file *os.File
	gz   *gzip.Writer
	buf  *bufio.Writer
}

func newSink(dir string, tid stid.TID, suffix string) (*sink, error) {
	path := filepath.Join(dir, fmt.Sprintf("sigil.events.out-%d.%s", tid, suffix))
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("logger: opening %s: %w", path, err)
	}
	gz := gzip.NewWriter(f)
	return &sink{file: f, gz: gz, buf: bufio.NewWriter(gz)}, nil
}

func (s *sink) Write(p []byte) (int, error) { return s.buf.Write(p) }

func (s *sink) close() error {
	if err := s.buf.Flush(); err != nil {
		return err
	}
	if err := s.gz.Close(); err != nil {
		return err
	}
	return s.file.Close()
}

// New constructs a logger for tid using the named backend. Sink-open
// failure is fatal (spec.md §7): there is no degraded path for a backend
// that cannot produce its output file.
func New(backend, dir string, tid stid.TID) traceevent.Logger {
	switch backend {
	case BackendText:
		s, err := newSink(dir, tid, "gz")
		if err != nil {
			diag.Fatal("%v", err)
		}
		return &Text{sink: s}
	case BackendPacked:
		s, err := newSink(dir, tid, "capn.bin.gz")
		if err != nil {
			diag.Fatal("%v", err)
		}
		return &Packed{sink: s, eventsPerMessage: defaultEventsPerMessage}
	case BackendNull:
		return Null{}
	default:
		diag.Fatal("unknown logger backend %q", backend)
		return nil
	}
}

// Close releases any sink l owns. Backends without a sink (Null) report
// nil. Packed flushes its trailing partial message first.
func Close(l traceevent.Logger) error {
	switch v := l.(type) {
	case *Text:
		return v.sink.close()
	case *Packed:
		v.flushMessage()
		return v.sink.close()
	default:
		return nil
	}
}
