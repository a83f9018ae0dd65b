package service

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/sakif/c-playground/internal/apperror"
	"github.com/sakif/c-playground/internal/executor"
	"github.com/sakif/c-playground/internal/session"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// mockProcess stands in for a paused program. Resume returns a canned
// result; Kill records that it happened.
type mockProcess struct {
	resumeResult *executor.Result
	resumeErr    error
	killed       bool
	resumedWith  string
}

func (m *mockProcess) Resume(_ context.Context, input string) (*executor.Result, error) {
	m.resumedWith = input
	if m.resumeErr != nil {
		return nil, m.resumeErr
	}
	return m.resumeResult, nil
}

func (m *mockProcess) Kill() {
	m.killed = true
}

// mockExecutor returns whatever it's configured with, recording the
// request it saw.
type mockExecutor struct {
	result  *executor.Result
	proc    executor.Process
	err     error
	lastReq executor.Request
}

func (m *mockExecutor) Execute(_ context.Context, req executor.Request) (*executor.Result, executor.Process, error) {
	m.lastReq = req
	return m.result, m.proc, m.err
}

func newRunService(t *testing.T, exec executor.Executor) (*RunService, *session.Store) {
	t.Helper()
	store := session.NewStore(time.Minute, testLogger())
	t.Cleanup(store.Stop)
	return NewRunService(exec, store, testLogger()), store
}

func TestCompileAndRun_EmptySource(t *testing.T) {
	svc, _ := newRunService(t, &mockExecutor{})

	_, err := svc.CompileAndRun(context.Background(), "   \n", "")
	if !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("CompileAndRun() error = %v, want ErrValidation", err)
	}
}

func TestCompileAndRun_SourceTooLong(t *testing.T) {
	svc, _ := newRunService(t, &mockExecutor{})

	_, err := svc.CompileAndRun(context.Background(), strings.Repeat("x", MaxSourceLength+1), "")
	if !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("CompileAndRun() error = %v, want ErrValidation", err)
	}
}

func TestCompileAndRun_CompletedRun(t *testing.T) {
	exec := &mockExecutor{
		result: &executor.Result{Success: true, Output: "hello\n"},
	}
	svc, store := newRunService(t, exec)

	resp, err := svc.CompileAndRun(context.Background(), "int main(void){}", "in\n")
	if err != nil {
		t.Fatalf("CompileAndRun() error = %v", err)
	}

	if !resp.Success || resp.Output != "hello\n" {
		t.Errorf("resp = %+v, want success with output", resp)
	}
	if resp.SessionID != "" {
		t.Errorf("SessionID = %q, want empty for a completed run", resp.SessionID)
	}
	if store.Len() != 0 {
		t.Errorf("store.Len() = %d, want 0", store.Len())
	}
	if exec.lastReq.Stdin != "in\n" {
		t.Errorf("executor saw stdin %q, want %q", exec.lastReq.Stdin, "in\n")
	}
}

func TestCompileAndRun_PausedRunParksProcess(t *testing.T) {
	proc := &mockProcess{}
	exec := &mockExecutor{
		result: &executor.Result{Output: "Enter a number: ", RequiresInput: true},
		proc:   proc,
	}
	svc, store := newRunService(t, exec)

	resp, err := svc.CompileAndRun(context.Background(), "int main(void){/*...*/}", "")
	if err != nil {
		t.Fatalf("CompileAndRun() error = %v", err)
	}

	if !resp.RequiresInput {
		t.Error("RequiresInput = false, want true")
	}
	if resp.SessionID == "" {
		t.Fatal("SessionID is empty, want a parked session")
	}
	if store.Len() != 1 {
		t.Errorf("store.Len() = %d, want 1", store.Len())
	}
}

func TestResume_RoundTrip(t *testing.T) {
	proc := &mockProcess{
		resumeResult: &executor.Result{Success: true, Output: "Enter a number: got 7\n"},
	}
	exec := &mockExecutor{
		result: &executor.Result{Output: "Enter a number: ", RequiresInput: true},
		proc:   proc,
	}
	svc, store := newRunService(t, exec)

	first, err := svc.CompileAndRun(context.Background(), "int main(void){/*...*/}", "")
	if err != nil {
		t.Fatalf("CompileAndRun() error = %v", err)
	}

	final, err := svc.Resume(context.Background(), first.SessionID, "7")
	if err != nil {
		t.Fatalf("Resume() error = %v", err)
	}

	if proc.resumedWith != "7" {
		t.Errorf("process resumed with %q, want %q", proc.resumedWith, "7")
	}
	if !final.Success {
		t.Error("final.Success = false, want true")
	}
	if final.SessionID != "" {
		t.Errorf("final.SessionID = %q, want empty", final.SessionID)
	}
	if store.Len() != 0 {
		t.Errorf("store.Len() = %d after resume, want 0", store.Len())
	}
}

func TestResume_UnknownSession(t *testing.T) {
	svc, _ := newRunService(t, &mockExecutor{})

	_, err := svc.Resume(context.Background(), "no-such-session", "x")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Resume() error = %v, want ErrNotFound", err)
	}
}

func TestResume_SecondResumeFails(t *testing.T) {
	proc := &mockProcess{resumeResult: &executor.Result{Success: true}}
	exec := &mockExecutor{
		result: &executor.Result{RequiresInput: true},
		proc:   proc,
	}
	svc, _ := newRunService(t, exec)

	first, _ := svc.CompileAndRun(context.Background(), "int main(void){}", "")
	if _, err := svc.Resume(context.Background(), first.SessionID, "a"); err != nil {
		t.Fatalf("first Resume() error = %v", err)
	}

	_, err := svc.Resume(context.Background(), first.SessionID, "b")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("second Resume() error = %v, want ErrNotFound", err)
	}
}

func TestResume_ProcessErrorKillsProcess(t *testing.T) {
	proc := &mockProcess{resumeErr: errors.New("write on closed pipe")}
	exec := &mockExecutor{
		result: &executor.Result{RequiresInput: true},
		proc:   proc,
	}
	svc, _ := newRunService(t, exec)

	first, _ := svc.CompileAndRun(context.Background(), "int main(void){}", "")
	if _, err := svc.Resume(context.Background(), first.SessionID, "x"); err == nil {
		t.Fatal("Resume() should propagate the process error")
	}
	if !proc.killed {
		t.Error("process was not killed after a failed resume")
	}
}

func TestCompileAndRun_ExecutorError(t *testing.T) {
	exec := &mockExecutor{err: errors.New("boom")}
	svc, _ := newRunService(t, exec)

	if _, err := svc.CompileAndRun(context.Background(), "int main(void){}", ""); err == nil {
		t.Fatal("CompileAndRun() should propagate executor errors")
	}
}
