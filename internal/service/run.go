// Package service contains the business logic layer: validation,
// permissions, and orchestration between the HTTP handlers and the
// executor/repository underneath. Services accept primitives and return
// domain errors; they know nothing about HTTP.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/c-playground/internal/apperror"
	"github.com/sakif/c-playground/internal/executor"
	"github.com/sakif/c-playground/internal/session"
)

// MaxSourceLength bounds submitted programs to ~100KB. Anything bigger
// is not a playground snippet.
const MaxSourceLength = 100000

// RunService orchestrates a compile-and-run round trip. It owns the
// relationship between the executor and the session store: when a run
// pauses for input, the live process handle is parked in the store and
// only the opaque session ID crosses the wire.
type RunService struct {
	exec     executor.Executor
	sessions *session.Store
	logger   *slog.Logger
}

// NewRunService creates a RunService.
func NewRunService(exec executor.Executor, sessions *session.Store, logger *slog.Logger) *RunService {
	return &RunService{
		exec:     exec,
		sessions: sessions,
		logger:   logger,
	}
}

// RunResponse is an execution result plus, when the program paused for
// input, the session ID to resume it with.
type RunResponse struct {
	executor.Result
	SessionID string `json:"sessionId,omitempty"`
}

// CompileAndRun compiles source and executes it with stdin attached.
// Compile failures and runtime errors come back as a failed Result, not
// as a Go error — the error return is reserved for faults in the
// service itself.
//
// If the program stops to wait for input, the returned response carries
// RequiresInput=true, the output produced so far, and a SessionID. The
// process stays alive, parked in the session store, until Resume is
// called or the store's TTL kills it.
func (s *RunService) CompileAndRun(ctx context.Context, source, stdin string) (*RunResponse, error) {
	if strings.TrimSpace(source) == "" {
		return nil, apperror.ValidationFailed("source", "source code is required")
	}
	if len(source) > MaxSourceLength {
		return nil, apperror.ValidationFailed("source",
			fmt.Sprintf("source must be %d characters or less", MaxSourceLength))
	}

	result, proc, err := s.exec.Execute(ctx, executor.Request{Source: source, Stdin: stdin})
	if err != nil {
		s.logger.Error("execution failed", slog.String("error", err.Error()))
		return nil, fmt.Errorf("running program: %w", err)
	}

	resp := &RunResponse{Result: *result}

	if result.RequiresInput && proc != nil {
		resp.SessionID = s.sessions.Put(proc)
		s.logger.Info("run paused for input",
			slog.String("sessionID", resp.SessionID),
			slog.Duration("elapsed", result.Duration),
		)
		return resp, nil
	}

	s.logger.Info("run finished",
		slog.Bool("success", result.Success),
		slog.String("category", string(result.Category)),
		slog.Duration("duration", result.Duration),
	)
	return resp, nil
}

// Resume feeds one line of input to a paused run and returns its final
// result. The session is consumed whatever happens: the ID is removed
// from the store before the process is touched, so a second resume for
// the same ID gets apperror.ErrNotFound. Expired or unknown IDs look
// identical to the caller — by the time they ask, the process is gone
// either way.
func (s *RunService) Resume(ctx context.Context, sessionID, input string) (*RunResponse, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, apperror.ValidationFailed("sessionId", "session id is required")
	}

	proc, ok := s.sessions.Take(sessionID)
	if !ok {
		return nil, apperror.NotFound("session", sessionID)
	}

	result, err := proc.Resume(ctx, input)
	if err != nil {
		// The process may still be running; don't leak it.
		proc.Kill()
		s.logger.Error("resume failed",
			slog.String("sessionID", sessionID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("resuming session %s: %w", sessionID, err)
	}

	s.logger.Info("run resumed and finished",
		slog.String("sessionID", sessionID),
		slog.Bool("success", result.Success),
	)
	return &RunResponse{Result: *result}, nil
}
