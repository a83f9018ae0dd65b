package gcc

import (
	"time"
)

// Config holds the configuration for gcc-based execution.
type Config struct {
	// Path is the compiler binary to invoke. Resolved via $PATH when it
	// contains no separator, e.g. "gcc" or "cc".
	Path string
	// Flags are passed to every compile, after the source path so that
	// linker flags like -lm resolve against it.
	Flags []string
	// CompileTimeout is the wall-clock limit on one gcc invocation.
	CompileTimeout time.Duration
	// PollWindow is how long a freshly started program gets to finish before
	// it is either declared waiting-for-input (interactive program, stdin
	// still open) or killed as a runaway (stdin already closed).
	//
	// This is a heuristic, not blocking-read detection: a CPU-bound program
	// that needs longer than the window to finish is treated the same as one
	// blocked on scanf. That matches the behaviour this replaces.
	PollWindow time.Duration
	// ResumeTimeout is the wall-clock limit on the single resume round.
	ResumeTimeout time.Duration
	// WorkDir is where per-request scratch directories are created.
	// Empty means the system temp directory.
	WorkDir string
}

// DefaultConfig provides sensible defaults for compiling user C programs.
func DefaultConfig() Config {
	return Config{
		Path: "gcc",
		// -Wall/-Wextra so warnings reach the diagnostics panel,
		// C99, and libm linked so math.h programs work out of the box.
		Flags:          []string{"-Wall", "-Wextra", "-std=c99", "-lm"},
		CompileTimeout: 10 * time.Second,
		PollWindow:     2 * time.Second,
		ResumeTimeout:  5 * time.Second,
	}
}
