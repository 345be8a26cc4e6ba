// Package diag provides the two diagnostic severities the SynchroTrace
// generator uses everywhere else in the module: a fatal abort and a
// best-effort warning. Neither wraps a logging library — the teacher repo's
// own cmd/racedetector tool reports every error the same way, with
// fmt.Fprintf to os.Stderr followed by os.Exit for the fatal case.
package diag

import (
	"fmt"
	"os"
)

// exit is overridden in tests so Fatal doesn't tear down the test binary.
var exit = os.Exit

// Fatal reports a fatal error and terminates the process. Per spec.md §7,
// fatal conditions (sink write failure, EID overflow, CLI parse error,
// malformed sync type, shadow allocation failure) always abort — they are
// never surfaced as a recoverable Go error for a caller to swallow.
func Fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "stgen: fatal: "+format+"\n", args...)
	exit(1)
}

// Warn reports a recoverable condition and continues. Per spec.md §7, the
// recoverable trace condition is a shadow-memory access outside the
// representable address range; the dispatcher also warns when it drops a
// primitive that arrives before the first thread swap.
func Warn(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "stgen: warn: "+format+"\n", args...)
}
