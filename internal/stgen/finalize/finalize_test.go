package finalize

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kolkov/stgen/internal/stgen/registry"
	"github.com/kolkov/stgen/internal/stgen/stid"
	"github.com/kolkov/stgen/internal/stgen/threadctx"
)

func TestWritePthreadOrdersSectionsPerSpec(t *testing.T) {
	dir := t.TempDir()
	reg := registry.New()
	reg.RegisterThreadFirstSight(1)
	reg.RegisterThreadFirstSight(3)
	reg.RecordSpawn(1, 0xA)
	reg.RecordSpawn(1, 0xB)
	reg.RecordSpawn(3, 0xC)
	reg.RecordBarrierParticipant(0xB1, 1)
	reg.RecordBarrierParticipant(0xB1, 2)
	reg.RecordBarrierParticipant(0xB2, 1)

	Write(dir, reg)

	data, err := os.ReadFile(filepath.Join(dir, "sigil.pthread.out"))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	want := []string{
		"1 3",
		"1 0xa",
		"1 0xb",
		"3 0xc",
		"0xb1 1 2",
		"0xb2 1",
	}
	if len(lines) != len(want) {
		t.Fatalf("lines = %v, want %v", lines, want)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, lines[i], want[i])
		}
	}
}

func TestWriteStatsIncludesBarrierWindows(t *testing.T) {
	dir := t.TempDir()
	reg := registry.New()
	reg.RecordThreadTeardown(registry.ThreadRecord{
		TID:   1,
		Stats: threadctx.Stats{IOP: 3, FLOP: 2, Read: 4, Write: 8, Instr: 10},
		Windows: []threadctx.BarrierPeriod{
			{Addr: stid.Addr(0xBEEF), IOP: 1, Locks: 2},
		},
	})

	Write(dir, reg)

	data, err := os.ReadFile(filepath.Join(dir, "sigil.stats.out"))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	got := string(data)
	if !strings.Contains(got, "thread 1 iop:3 flop:2 read:4 write:8 instr:10\n") {
		t.Errorf("stats.out missing thread summary line, got %q", got)
	}
	if !strings.Contains(got, "  barrier 0xbeef iop:1 flop:0 read:0 write:0 instr:0 locks:2\n") {
		t.Errorf("stats.out missing barrier line, got %q", got)
	}
}
