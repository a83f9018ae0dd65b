// Package gcc implements the executor.Executor interface by invoking the
// system gcc binary and running the produced program as a child process.
//
// LIFECYCLE OF ONE REQUEST:
//  1. Write the source to a fresh scratch directory (unique per request,
//     so concurrent requests can never collide).
//  2. Invoke gcc with a hard wall-clock timeout. Nonzero exit → categorized
//     compile failure, scratch dir removed, done.
//  3. Start the binary with its stdin connected. The scratch dir is removed
//     as soon as the process has started — on Linux the running process
//     keeps the unlinked binary alive, so no files outlive the request.
//  4. Wait up to a short poll window. Programs that finish return their
//     output; interactive programs that don't are handed back as a live
//     Process for a later resume; anything else is killed as a runaway.
//
// No path leaks a temp file or a process: every return either reaped the
// child or handed it to the caller, who must Resume or Kill it.
package gcc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/sakif/c-playground/internal/executor"
)

// Executor implements the executor.Executor interface using the system gcc.
type Executor struct {
	config Config
	logger *slog.Logger
}

var _ executor.Executor = (*Executor)(nil)

// New creates a gcc Executor. A missing compiler is NOT a startup error:
// the server must stay operational and report it per request as a
// system-category failure, so New only logs the situation.
func New(cfg Config, logger *slog.Logger) *Executor {
	if _, err := exec.LookPath(cfg.Path); err != nil {
		logger.Warn("compiler not found — runs will fail with a system error",
			slog.String("path", cfg.Path),
			slog.String("error", err.Error()),
		)
	}
	return &Executor{
		config: cfg,
		logger: logger,
	}
}

// Execute compiles req.Source and runs the result.
//
// The returned Process is non-nil exactly when the Result has RequiresInput
// set; ownership of the live child passes to the caller in that case.
func (e *Executor) Execute(ctx context.Context, req executor.Request) (*executor.Result, executor.Process, error) {
	start := time.Now()

	// Per-request scratch directory. The unique suffix from MkdirTemp is
	// what keeps concurrent requests from ever sharing paths.
	dir, err := os.MkdirTemp(e.config.WorkDir, "crun-")
	if err != nil {
		e.logger.Error("failed to create scratch directory", slog.String("error", err.Error()))
		return systemResult("could not allocate scratch space for this run", start), nil, nil
	}
	// Removing the directory is safe on every path: after a compile failure
	// it holds only the source, and once the binary has been started the
	// process keeps the unlinked file alive until it exits.
	defer os.RemoveAll(dir)

	srcPath := filepath.Join(dir, "main.c")
	binPath := filepath.Join(dir, "main")

	if err := os.WriteFile(srcPath, []byte(req.Source), 0o600); err != nil {
		e.logger.Error("failed to write source file", slog.String("error", err.Error()))
		return systemResult("could not write the source file for this run", start), nil, nil
	}

	diagnostics, err := e.compile(ctx, srcPath, binPath)
	if err != nil {
		return e.compileFailure(err, diagnostics, start), nil, nil
	}

	// Exit 0 with nonempty diagnostics = warnings. The run proceeds; the
	// text is still surfaced so the client can display it.
	var warnCategory executor.Category
	if diagnostics != "" {
		warnCategory = executor.CategoryWarning
	}

	// Leave stdin open only when nothing was supplied AND the source looks
	// like it reads input. Everything else gets its input (possibly none)
	// and an immediate EOF.
	interactive := req.Stdin == "" && readsStdin(req.Source)

	proc, err := startProcess(binPath, req.Stdin, interactive, e.config.ResumeTimeout, e.logger)
	if err != nil {
		e.logger.Error("failed to start compiled program", slog.String("error", err.Error()))
		return systemResult("the compiled program could not be started", start), nil, nil
	}

	select {
	case waitErr := <-proc.done:
		res := proc.finished(waitErr, start)
		if res.Success && warnCategory != "" {
			res.Category = warnCategory
			res.Error = diagnostics
		}
		return res, nil, nil

	case <-time.After(e.config.PollWindow):
		if interactive {
			// Presumed blocked on a read. Hand the live process back with
			// whatever it printed so far (usually a prompt).
			res := &executor.Result{
				Success:       true,
				Output:        proc.output(),
				RequiresInput: true,
				Duration:      time.Since(start),
			}
			proc.markWaiting()
			return res, proc, nil
		}

		// Not waiting on us — a runaway. Kill it and report the timeout.
		proc.Kill()
		e.logger.Warn("program killed after poll window",
			slog.Duration("window", e.config.PollWindow),
		)
		res := systemResult(
			fmt.Sprintf("program did not finish within %s — possible infinite loop", e.config.PollWindow),
			start,
		)
		res.Output = ""
		return res, nil, nil

	case <-ctx.Done():
		proc.Kill()
		return nil, nil, ctx.Err()
	}
}

// compile invokes gcc and returns its diagnostic text. A nil error with
// nonempty diagnostics means "compiled with warnings".
func (e *Executor) compile(ctx context.Context, srcPath, binPath string) (string, error) {
	cctx, cancel := context.WithTimeout(ctx, e.config.CompileTimeout)
	defer cancel()

	// Source before flags so -lm stays after the objects it must resolve.
	args := append([]string{"-o", binPath, srcPath}, e.config.Flags...)

	cmd := exec.CommandContext(cctx, e.config.Path, args...)
	// gcc writes everything we care about to stderr, but collect stdout too
	// so nothing is silently dropped.
	out, err := cmd.CombinedOutput()
	diagnostics := strings.TrimSpace(string(out))

	if cctx.Err() == context.DeadlineExceeded {
		return diagnostics, cctx.Err()
	}
	return diagnostics, err
}

// compileFailure turns a gcc invocation error into a categorized Result.
func (e *Executor) compileFailure(err error, diagnostics string, start time.Time) *executor.Result {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return systemResult(
			fmt.Sprintf("compilation exceeded %s and was aborted", e.config.CompileTimeout),
			start,
		)
	case errors.Is(err, exec.ErrNotFound):
		return systemResult(
			fmt.Sprintf("compiler %q not found — install gcc and make sure it is on PATH", e.config.Path),
			start,
		)
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		category, hint := categorize(diagnostics)
		msg := diagnostics
		if hint != "" {
			msg += "\n\nhint: " + hint
		}
		return &executor.Result{
			Success:  false,
			Error:    msg,
			Category: category,
			Duration: time.Since(start),
		}
	}

	// Anything else is an environment problem, not the user's code.
	e.logger.Error("compiler invocation failed", slog.String("error", err.Error()))
	return systemResult("the compiler could not be invoked — check the toolchain", start)
}

// systemResult builds a failure Result for toolchain/environment problems.
func systemResult(msg string, start time.Time) *executor.Result {
	return &executor.Result{
		Success:  false,
		Error:    msg,
		Category: executor.CategorySystem,
		Duration: time.Since(start),
	}
}
