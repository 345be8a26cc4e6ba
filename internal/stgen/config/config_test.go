package config

import (
	"testing"

	"github.com/kolkov/stgen/internal/stgen/logger"
)

func TestParseDefaults(t *testing.T) {
	cfg := Parse(nil)
	if cfg.OutputDir != "." || cfg.PrimsPerComp != 100 || cfg.Backend != logger.BackendText {
		t.Errorf("Parse(nil) = %+v, want {. 100 text}", cfg)
	}
}

func TestParseSeparateValueForm(t *testing.T) {
	cfg := Parse([]string{"-o", "/tmp/out", "-c", "42", "-l", "capnp"})
	if cfg.OutputDir != "/tmp/out" || cfg.PrimsPerComp != 42 || cfg.Backend != logger.BackendPacked {
		t.Errorf("Parse() = %+v, want {/tmp/out 42 capnp}", cfg)
	}
}

func TestParseAttachedValueForm(t *testing.T) {
	cfg := Parse([]string{"-o/tmp/out", "-c7", "-lnull"})
	if cfg.OutputDir != "/tmp/out" || cfg.PrimsPerComp != 7 || cfg.Backend != logger.BackendNull {
		t.Errorf("Parse() = %+v, want {/tmp/out 7 null}", cfg)
	}
}

func TestParseLoggerNameCaseInsensitive(t *testing.T) {
	for _, name := range []string{"TEXT", "Text", "tExT"} {
		cfg := Parse([]string{"-l", name})
		if cfg.Backend != logger.BackendText {
			t.Errorf("Parse(-l %s) backend = %q, want %q", name, cfg.Backend, logger.BackendText)
		}
	}
}

func TestParseBoundaryPrimsPerComp(t *testing.T) {
	if cfg := Parse([]string{"-c", "1"}); cfg.PrimsPerComp != 1 {
		t.Errorf("-c 1 -> PrimsPerComp = %d, want 1", cfg.PrimsPerComp)
	}
	if cfg := Parse([]string{"-c", "100"}); cfg.PrimsPerComp != 100 {
		t.Errorf("-c 100 -> PrimsPerComp = %d, want 100", cfg.PrimsPerComp)
	}
}
