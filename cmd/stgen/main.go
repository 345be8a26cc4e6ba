// Command stgen reads a primitive event stream on stdin and writes the
// compressed SynchroTrace event files, sigil.pthread.out, and
// sigil.stats.out spec.md §6 describes. The primitive-event producer
// itself (an instrumented binary or simulator) is an out-of-scope external
// collaborator (spec.md §1); this line-oriented decoder exists only so the
// core is runnable end to end for manual and demo use, the same role the
// teacher's cmd/racedetector/main.go plays as a thin CLI shell around the
// packages that do the real work.
package main

import (
	"bufio"
	"fmt"
	"os"

	"github.com/kolkov/stgen/internal/stgen/config"
	"github.com/kolkov/stgen/internal/stgen/diag"
	"github.com/kolkov/stgen/internal/stgen/dispatch"
	"github.com/kolkov/stgen/internal/stgen/finalize"
	"github.com/kolkov/stgen/internal/stgen/registry"
	"github.com/kolkov/stgen/internal/stgen/shadow"
)

func main() {
	cfg := config.Parse(os.Args[1:])

	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		diag.Fatal("creating output directory %s: %v", cfg.OutputDir, err)
	}

	mem := shadow.New()
	reg := registry.New()
	d := dispatch.New(dispatch.Config{
		OutputDir:    cfg.OutputDir,
		PrimsPerComp: cfg.PrimsPerComp,
		Backend:      cfg.Backend,
	}, mem, reg)

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	line := 0
	for scanner.Scan() {
		line++
		ev, ok, err := decodeLine(scanner.Text())
		if err != nil {
			diag.Fatal("stdin line %d: %v", line, err)
		}
		if !ok {
			continue
		}
		d.Submit(ev)
	}
	if err := scanner.Err(); err != nil {
		diag.Fatal("reading stdin: %v", err)
	}

	if err := d.Finish(); err != nil {
		diag.Fatal("%v", err)
	}
	finalize.Write(cfg.OutputDir, reg)
	fmt.Fprintf(os.Stderr, "stgen: wrote trace output to %s\n", cfg.OutputDir)
}
