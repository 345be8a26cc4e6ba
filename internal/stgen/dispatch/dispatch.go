// Package dispatch implements the Dispatcher/EventManager of spec.md §4.F:
// it buffers tagged primitive events, drives the thread-swap protocol, and
// routes each primitive to the currently active ThreadContext. It is
// grounded on the teacher's detector.Detector (internal/race/detector),
// which plays the same "single consumer routing tagged events to per-thread
// state" role, adapted from FastTrack's access-event handling to
// SynchroTrace's Comp/Comm/Sync/Instr routing.
package dispatch

import (
	"fmt"

	"github.com/kolkov/stgen/internal/stgen/diag"
	"github.com/kolkov/stgen/internal/stgen/logger"
	"github.com/kolkov/stgen/internal/stgen/primitive"
	"github.com/kolkov/stgen/internal/stgen/registry"
	"github.com/kolkov/stgen/internal/stgen/shadow"
	"github.com/kolkov/stgen/internal/stgen/stid"
	"github.com/kolkov/stgen/internal/stgen/threadctx"
	"github.com/kolkov/stgen/internal/stgen/traceevent"

	"golang.org/x/sync/errgroup"
)

// bufferCapacity sizes the dispatcher's buffered-primitives ring (spec.md
// §4.F: "the dispatcher owns a fixed-capacity ring/array of tagged
// events"). Sized generously enough that flushEvents is an amortized cost,
// not a per-event one.
const bufferCapacity = 4096

// Config bundles the run-time settings a Dispatcher needs to construct
// per-thread contexts and loggers (spec.md §6's CLI flags).
type Config struct {
	OutputDir    string
	PrimsPerComp uint
	Backend      string
}

// Dispatcher is the single consumer of the primitive event stream. It is
// not safe for concurrent Submit calls: spec.md §5 fixes a single consumer
// thread.
type Dispatcher struct {
	cfg Config
	mem *shadow.Memory
	reg *registry.Registry

	contexts map[stid.TID]*threadctx.Context
	loggers  map[stid.TID]traceevent.Logger
	current  *threadctx.Context

	buf []primitive.Event
}

// New constructs a Dispatcher. mem is the shared shadow memory table
// (spec.md §9: "model it as a single owned value held in the dispatcher").
func New(cfg Config, mem *shadow.Memory, reg *registry.Registry) *Dispatcher {
	return &Dispatcher{
		cfg:      cfg,
		mem:      mem,
		reg:      reg,
		contexts: make(map[stid.TID]*threadctx.Context),
		loggers:  make(map[stid.TID]traceevent.Logger),
		buf:      make([]primitive.Event, 0, bufferCapacity),
	}
}

// Submit buffers one primitive event, flushing the buffer to its observers
// once it reaches capacity.
func (d *Dispatcher) Submit(ev primitive.Event) {
	d.buf = append(d.buf, ev)
	if len(d.buf) == cap(d.buf) {
		d.flushEvents()
	}
}

// flushEvents routes each buffered event to its observer in insertion
// order, then resets the buffer.
func (d *Dispatcher) flushEvents() {
	for _, ev := range d.buf {
		d.route(ev)
	}
	d.buf = d.buf[:0]
}

func (d *Dispatcher) route(ev primitive.Event) {
	switch ev.Kind {
	case primitive.KindSync:
		if ev.IsSwap() {
			d.handleSwap(stid.TID(ev.SyncID))
			return
		}
		d.handleSync(ev)
	case primitive.KindMem:
		d.handleMem(ev)
	case primitive.KindComp:
		d.handleComp(ev)
	case primitive.KindCxt:
		d.handleCxt(ev)
	}
}

// handleSwap implements the thread-swap protocol (spec.md §4.F): construct
// the context on first sight, flush the outgoing context's boundary, and
// switch the cached current context.
func (d *Dispatcher) handleSwap(newTID stid.TID) {
	ctx, ok := d.contexts[newTID]
	if !ok {
		if d.reg.RegisterThreadFirstSight(newTID) {
			l := logger.New(d.cfg.Backend, d.cfg.OutputDir, newTID)
			d.loggers[newTID] = l
			ctx = threadctx.New(newTID, d.cfg.PrimsPerComp, d.mem, l)
			d.contexts[newTID] = ctx
		}
	}

	if d.current != nil {
		d.current.FlushBoundary()
	}
	d.current = ctx
}

func (d *Dispatcher) handleMem(ev primitive.Event) {
	if d.current == nil {
		diag.Warn("memory primitive before any thread swap, dropped")
		return
	}
	switch ev.MemOp {
	case primitive.MemLoad:
		d.current.OnRead(ev.Start, ev.Size)
	case primitive.MemStore:
		d.current.OnWrite(ev.Start, ev.Size)
	}
}

func (d *Dispatcher) handleComp(ev primitive.Event) {
	if d.current == nil {
		diag.Warn("compute primitive before any thread swap, dropped")
		return
	}
	switch ev.CompOp {
	case primitive.CompIOP:
		d.current.OnIop()
	case primitive.CompFLOP:
		d.current.OnFlop()
	}
}

// handleSync applies CREATE/BARRIER bookkeeping under the registry's global
// mutex before translating the sync into the current context (spec.md
// §4.F). Sync kinds outside the ten wire types are dropped silently, the
// way the translator in front of onSync does.
func (d *Dispatcher) handleSync(ev primitive.Event) {
	if !ev.SyncKind.Valid() {
		return
	}
	if d.current == nil {
		diag.Warn("sync primitive before any thread swap, dropped")
		return
	}

	switch ev.SyncKind {
	case stid.SyncCreate:
		d.reg.RecordSpawn(d.current.TID(), ev.SyncID)
	case stid.SyncBarrier:
		d.reg.RecordBarrierParticipant(ev.SyncID, d.current.TID())
	}

	d.current.OnSync(ev.SyncKind, ev.SyncID)
}

func (d *Dispatcher) handleCxt(ev primitive.Event) {
	if ev.CxtOp != primitive.CxtInstr {
		return
	}
	if d.current == nil {
		diag.Warn("instruction primitive before any thread swap, dropped")
		return
	}
	d.current.OnInstr()
}

// Finish flushes any buffered remainder, closes every context (flushing
// its final Comp/Comm boundary and handing its stats to the registry), and
// closes every logger sink concurrently — each close is an independent
// gzip-flush-and-close, exactly what errgroup.Group fans out over.
func (d *Dispatcher) Finish() error {
	d.flushEvents()

	for _, tid := range d.reg.ThreadsInOrder() {
		ctx, ok := d.contexts[tid]
		if !ok {
			continue
		}
		ctx.Close()
		d.reg.RecordThreadTeardown(registry.ThreadRecord{
			TID:     tid,
			Stats:   ctx.Stats(),
			Windows: ctx.BarrierPeriods(),
		})
	}

	var g errgroup.Group
	for tid, l := range d.loggers {
		l := l
		tid := tid
		g.Go(func() error {
			if err := logger.Close(l); err != nil {
				return fmt.Errorf("dispatch: closing logger for tid %d: %w", tid, err)
			}
			return nil
		})
	}
	return g.Wait()
}
