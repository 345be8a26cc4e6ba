package logger

import (
	"encoding/binary"

	"github.com/kolkov/stgen/internal/stgen/stid"
	"github.com/kolkov/stgen/internal/stgen/traceevent"
)

// defaultEventsPerMessage matches the order of magnitude the original
// CapnLogger batched per capnproto message.
const defaultEventsPerMessage = 100000

// Packed event tags for the union in spec.md §6's schema.
const (
	tagComp uint8 = iota + 1
	tagComm
	tagSync
	tagMarker
)

// Packed is the length-prefixed binary logger backend. Every Event in the
// schema is framed as a tag byte followed by uvarint-encoded fields, the
// same shape golang.org/x/exp/trace's raw.Writer uses for its own typed
// event stream, in place of a generated schema-compiler binding. Events
// accumulate in buf and are written to the gzip sink as one message,
// prefixed with its uvarint event count, every eventsPerMessage events.
type Packed struct {
	sink             *sink
	eventsPerMessage int

	buf    []byte
	events int
}

func appendRanges(buf []byte, ranges []stid.Range) []byte {
	buf = binary.AppendUvarint(buf, uint64(len(ranges)))
	for _, r := range ranges {
		buf = binary.AppendUvarint(buf, uint64(r.Start))
		buf = binary.AppendUvarint(buf, uint64(r.End))
	}
	return buf
}

func (p *Packed) appendEvent(encode func([]byte) []byte) {
	p.buf = encode(p.buf)
	p.events++
	if p.events >= p.eventsPerMessage {
		p.flushMessage()
	}
}

// FlushComp appends a Comp record: iops, flops, reads, writes, then the
// write-range list and, separately, the read-range list — each set
// serialized from its own accumulator, unlike the original CapnLogger
// which serialized both from uniqueWriteAddrs.
func (p *Packed) FlushComp(c *traceevent.Comp, eid stid.EID, tid stid.TID) {
	p.appendEvent(func(buf []byte) []byte {
		buf = append(buf, tagComp)
		buf = binary.AppendUvarint(buf, c.IOPs)
		buf = binary.AppendUvarint(buf, c.FLOPs)
		buf = binary.AppendUvarint(buf, c.Reads)
		buf = binary.AppendUvarint(buf, c.Writes)
		buf = appendRanges(buf, c.UniqueWriteRanges())
		buf = appendRanges(buf, c.UniqueReadRanges())
		return buf
	})
}

// FlushComm appends a Comm record: the edge count, then per edge the
// producer tid/eid and its address ranges.
func (p *Packed) FlushComm(c *traceevent.Comm, eid stid.EID, tid stid.TID) {
	p.appendEvent(func(buf []byte) []byte {
		edges := c.Edges()
		buf = append(buf, tagComm)
		buf = binary.AppendUvarint(buf, uint64(len(edges)))
		for _, e := range edges {
			buf = binary.AppendUvarint(buf, uint64(e.ProducerTID))
			buf = binary.AppendUvarint(buf, uint64(e.ProducerEID))
			buf = appendRanges(buf, e.Addrs)
		}
		return buf
	})
}

// FlushSync appends a Sync record: the wire sync type and id.
func (p *Packed) FlushSync(kind stid.SyncKind, addr stid.Addr, eid stid.EID, tid stid.TID) {
	p.appendEvent(func(buf []byte) []byte {
		buf = append(buf, tagSync)
		buf = append(buf, uint8(kind))
		buf = binary.AppendUvarint(buf, uint64(addr))
		return buf
	})
}

// InstrMarker appends a Marker record carrying count.
func (p *Packed) InstrMarker(count uint32) {
	p.appendEvent(func(buf []byte) []byte {
		buf = append(buf, tagMarker)
		buf = binary.AppendUvarint(buf, uint64(count))
		return buf
	})
}

// flushMessage frames the buffered events as one message prefixed with the
// uvarint count of events it holds and writes it to the gzip sink. A no-op when nothing is
// buffered, so Close can call it unconditionally.
func (p *Packed) flushMessage() {
	if p.events == 0 {
		return
	}
	header := binary.AppendUvarint(nil, uint64(p.events))
	p.sink.Write(header)
	p.sink.Write(p.buf)
	p.buf = p.buf[:0]
	p.events = 0
}
