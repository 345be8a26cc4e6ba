// Package config parses the stgen CLI flags of spec.md §6: a short-option
// loop in the style of the original C++ EventHandlers.cpp's onParse and the
// teacher's cmd/racedetector/run.go parseRunArgs, rather than a flag-parsing
// library — none appears anywhere in the retrieved corpus.
package config

import (
	"strconv"
	"strings"

	"github.com/kolkov/stgen/internal/stgen/diag"
	"github.com/kolkov/stgen/internal/stgen/logger"
)

// minPrimsPerComp and maxPrimsPerComp bound the -c flag (spec.md §6).
const (
	minPrimsPerComp = 1
	maxPrimsPerComp = 100

	defaultPrimsPerComp = 100
	defaultOutputDir    = "."
	defaultBackend      = logger.BackendText
)

// Config holds the validated, resolved settings a run of stgen needs.
type Config struct {
	OutputDir    string
	PrimsPerComp uint
	Backend      string
}

// loggerNames maps the CLI's accepted spellings (case-folded) to the
// backend constants logger.New expects.
var loggerNames = map[string]string{
	"text":  logger.BackendText,
	"capnp": logger.BackendPacked,
	"null":  logger.BackendNull,
}

// Parse reads args (as in os.Args[1:]) and returns a validated Config.
// Every failure mode spec.md §7 lists for CLI parsing — an unrecognized
// flag, a compression bound outside [1,100], or an unknown logger name —
// is fatal: Parse never returns a Go error for a caller to handle.
func Parse(args []string) Config {
	cfg := Config{
		OutputDir:    defaultOutputDir,
		PrimsPerComp: defaultPrimsPerComp,
		Backend:      defaultBackend,
	}

	i := 0
	for i < len(args) {
		arg := args[i]
		if len(arg) < 2 || arg[0] != '-' {
			diag.Fatal("unrecognized argument %q", arg)
		}

		opt := arg[1]
		var value string
		if len(arg) > 2 {
			value = arg[2:]
		} else {
			i++
			if i >= len(args) {
				diag.Fatal("flag -%c requires a value", opt)
			}
			value = args[i]
		}
		i++

		switch opt {
		case 'o':
			cfg.OutputDir = value
		case 'c':
			n, err := strconv.Atoi(value)
			if err != nil || n < minPrimsPerComp || n > maxPrimsPerComp {
				diag.Fatal("-c value %q must be an integer in [%d, %d]", value, minPrimsPerComp, maxPrimsPerComp)
			}
			cfg.PrimsPerComp = uint(n)
		case 'l':
			// Case-insensitive per original_source's onParse, which lower-cases
			// the value with std::transform before matching it.
			backend, ok := loggerNames[strings.ToLower(value)]
			if !ok {
				diag.Fatal("unknown logger backend %q, want text|capnp|null", value)
			}
			cfg.Backend = backend
		default:
			diag.Fatal("unrecognized flag -%c", opt)
		}
	}

	return cfg
}
