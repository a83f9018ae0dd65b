package gcc

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"sync"
	"time"

	"github.com/sakif/c-playground/internal/executor"
)

// state tracks where a spawned program is in its lifecycle.
//
//	running → waitingInput → terminated
//	   ↘            ↘
//	  killed       killed
//
// The terminal states (terminated, killed) always mean the child has been
// reaped and its pipes closed — nothing is left to leak.
type state int

const (
	stateRunning state = iota
	stateWaitingInput
	stateTerminated
	stateKilled
)

// process is a spawned user program. It implements executor.Process for the
// interactive case, where it outlives the Execute call that created it.
type process struct {
	cmd           *exec.Cmd
	stdin         io.WriteCloser
	stdout        *lockedBuffer
	stderr        *lockedBuffer
	done          chan error // receives cmd.Wait's result exactly once
	resumeTimeout time.Duration
	logger        *slog.Logger

	mu sync.Mutex
	st state
}

var _ executor.Process = (*process)(nil)

// startProcess spawns the compiled binary. If stdinData is nonempty it is
// written to the child and the pipe is closed (EOF). If interactive, the
// pipe stays open for a later Resume. Otherwise the pipe is closed
// immediately so a stray read sees EOF instead of blocking forever.
func startProcess(binPath, stdinData string, interactive bool, resumeTimeout time.Duration, logger *slog.Logger) (*process, error) {
	cmd := exec.Command(binPath)

	p := &process{
		cmd:           cmd,
		stdout:        &lockedBuffer{},
		stderr:        &lockedBuffer{},
		done:          make(chan error, 1),
		resumeTimeout: resumeTimeout,
		logger:        logger,
		st:            stateRunning,
	}
	cmd.Stdout = p.stdout
	cmd.Stderr = p.stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("gcc: opening stdin pipe: %w", err)
	}
	p.stdin = stdin

	if err := cmd.Start(); err != nil {
		stdin.Close()
		return nil, fmt.Errorf("gcc: starting program: %w", err)
	}

	// Feed supplied input in the background — a program that never reads
	// must not be able to block us on a full pipe.
	if stdinData != "" {
		go func() {
			io.WriteString(stdin, stdinData)
			stdin.Close()
		}()
	} else if !interactive {
		stdin.Close()
	}

	go func() {
		p.done <- cmd.Wait()
	}()

	return p, nil
}

// markWaiting records that the poll window elapsed with stdin still open.
// From here only Resume or Kill move the process forward.
func (p *process) markWaiting() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.st == stateRunning {
		p.st = stateWaitingInput
	}
}

// Resume delivers one input line and waits for termination. This is the
// single supported round: if the program is still alive after the wait
// window it is killed and the result reports a system-category timeout.
func (p *process) Resume(ctx context.Context, line string) (*executor.Result, error) {
	p.mu.Lock()
	if p.st != stateWaitingInput {
		st := p.st
		p.mu.Unlock()
		return nil, fmt.Errorf("gcc: resume on a process in state %d", st)
	}
	p.st = stateRunning
	p.mu.Unlock()

	start := time.Now()

	// Write errors are deliberately ignored: the program may have exited
	// between the poll window and now, which the wait below will report.
	io.WriteString(p.stdin, line+"\n")
	// Closing stdin is what enforces the one-round limit — a second read
	// gets EOF, not another pause.
	p.stdin.Close()

	select {
	case waitErr := <-p.done:
		return p.finished(waitErr, start), nil

	case <-time.After(p.resumeTimeout):
		p.Kill()
		p.logger.Warn("program killed after resume window",
			slog.Duration("window", p.resumeTimeout),
		)
		res := systemResult(
			fmt.Sprintf("program did not finish within %s of receiving input", p.resumeTimeout),
			start,
		)
		res.Output = p.stdout.String()
		return res, nil

	case <-ctx.Done():
		p.Kill()
		return nil, ctx.Err()
	}
}

// Kill forcibly terminates the program and reaps it. Safe to call in any
// state and more than once.
func (p *process) Kill() {
	p.mu.Lock()
	if p.st == stateTerminated || p.st == stateKilled {
		p.mu.Unlock()
		return
	}
	p.st = stateKilled
	p.mu.Unlock()

	p.stdin.Close()
	if err := p.cmd.Process.Kill(); err != nil {
		p.logger.Error("failed to kill program", slog.String("error", err.Error()))
	}
	// Reap — Wait returns promptly once the process is dead.
	<-p.done
}

// finished converts cmd.Wait's outcome into a Result and moves the process
// to its terminal state.
func (p *process) finished(waitErr error, start time.Time) *executor.Result {
	p.mu.Lock()
	p.st = stateTerminated
	p.mu.Unlock()
	p.stdin.Close()

	res := &executor.Result{
		Output:   p.stdout.String(),
		Duration: time.Since(start),
	}

	if waitErr == nil {
		res.Success = true
		return res
	}

	// Nonzero exit (or a signal). Runtime failures carry the program's
	// stderr verbatim; there is no category for them — they are the
	// program's own doing, not a toolchain problem.
	res.Success = false
	msg := p.stderr.String()
	if msg == "" {
		msg = waitErr.Error()
	} else {
		msg += "\n" + waitErr.Error()
	}
	res.Error = msg
	return res
}

// output returns everything the program has printed so far. Used for the
// partial output in a waiting-for-input response.
func (p *process) output() string {
	return p.stdout.String()
}

// lockedBuffer is a bytes.Buffer safe for concurrent Write/String. The
// child's output arrives on goroutines owned by os/exec while we may be
// reading the partial contents for a waiting response.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
