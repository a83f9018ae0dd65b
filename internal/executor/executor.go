// Package executor defines the contract between the HTTP layer and the
// execution backend that compiles and runs user-submitted C programs.
//
// The service layer depends only on these types — never on the gcc package
// directly. That keeps the backend swappable (a mock in tests, a different
// toolchain later) and mirrors how the repository layer is consumed through
// an interface rather than a concrete DB type.
package executor

import (
	"context"
	"time"
)

// Category classifies a failed (or warned) run for display purposes.
// The values are derived from gcc's diagnostic text, not from any real
// understanding of the program — see the gcc package for the patterns.
type Category string

const (
	// CategorySyntax — gcc reported a grammar violation ("expected ...",
	// "syntax error").
	CategorySyntax Category = "syntax"
	// CategoryLinker — an "undefined reference" at link time.
	CategoryLinker Category = "linker"
	// CategoryImplicitDecl — a function used without a declaration.
	CategoryImplicitDecl Category = "implicit_declaration"
	// CategorySystem — the toolchain itself failed: gcc missing, temp files
	// could not be created, or a process had to be killed on timeout.
	CategorySystem Category = "system"
	// CategoryWarning — compilation succeeded (exit 0) but gcc still had
	// something to say. Success stays true; the text is surfaced for display.
	CategoryWarning Category = "warning"
)

// Request is one compile-and-run submission.
type Request struct {
	// Source is the C program text. Must be non-empty.
	Source string `json:"source"`
	// Stdin is input supplied up front. When present it is written to the
	// program and the input stream is closed — no interactive round follows.
	Stdin string `json:"stdin,omitempty"`
}

// Result is the uniform outcome of a run or a resume.
//
// Invariant: exactly one of Output (with Success) or Error (with !Success)
// carries the payload, and RequiresInput is true only when Success is true
// and the program is still alive waiting on stdin. The one exception is
// CategoryWarning, where Success is true and Error carries the diagnostics.
type Result struct {
	Success       bool          `json:"success"`
	Output        string        `json:"output"`
	Error         string        `json:"error"`
	Category      Category      `json:"category,omitempty"`
	RequiresInput bool          `json:"requiresInput"`
	Duration      time.Duration `json:"duration"`
}

// Process is a live program that stopped mid-run to wait for input.
// It is returned by Execute alongside a Result with RequiresInput set, and
// is owned by whoever stored it (the session table) until Resume or Kill.
type Process interface {
	// Resume delivers one line of input and waits for the program to finish.
	// Exactly one round is supported: if the program still hasn't terminated
	// after the wait window, it is forcibly killed and the result reports a
	// system-category timeout with whatever output accumulated.
	Resume(ctx context.Context, line string) (*Result, error)

	// Kill terminates the program and releases its resources. Safe to call
	// after Resume or more than once.
	Kill()
}

// Executor compiles and runs a C program.
//
// The returned Process is non-nil if and only if Result.RequiresInput is
// true. The error return is reserved for request-level failures (canceled
// context); anything the user can cause — bad code, runaway loops, a broken
// toolchain — comes back inside the Result.
type Executor interface {
	Execute(ctx context.Context, req Request) (*Result, Process, error)
}
