// Package session holds the server-side table of paused interactive runs.
//
// When a program stops to wait for input, its live process handle is parked
// here under a fresh opaque ID that the client echoes back on resume. The
// table is the ONLY shared mutable state in the request path, so it gets
// the full treatment: a mutex around the map, atomic take-on-resume so two
// resumes for one ID can never both get the process, and a janitor that
// kills anything the client abandoned.
package session

import (
	"log/slog"
	"sync"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/c-playground/internal/executor"
)

// DefaultTTL is how long a paused run waits for its resume call before the
// janitor kills it. Generous enough for a human to type one line.
const DefaultTTL = 2 * time.Minute

// entry pairs a parked process with its deadline.
type entry struct {
	proc    executor.Process
	expires time.Time
}

// Store maps session IDs to paused processes.
//
// LOCKING DISCIPLINE:
// The mutex guards only the map. Process operations (Resume, Kill) are
// never called under the lock — they block for seconds, and holding the
// lock across them would serialize unrelated sessions. Take removes the
// entry first, then the caller operates on the process it now owns.
type Store struct {
	mu      sync.Mutex
	entries map[string]entry

	ttl    time.Duration
	logger *slog.Logger

	done      chan struct{}
	wg        sync.WaitGroup
	startOnce sync.Once
	stopOnce  sync.Once
}

// NewStore creates a Store and starts its eviction janitor.
// ttl <= 0 selects DefaultTTL.
func NewStore(ttl time.Duration, logger *slog.Logger) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	s := &Store{
		entries: make(map[string]entry),
		ttl:     ttl,
		logger:  logger,
		done:    make(chan struct{}),
	}
	s.startOnce.Do(func() {
		s.wg.Add(1)
		go s.janitor()
	})
	return s
}

// Put parks a paused process and returns the ID the client must present to
// resume it.
func (s *Store) Put(proc executor.Process) string {
	id := xid.New().String()

	s.mu.Lock()
	s.entries[id] = entry{
		proc:    proc,
		expires: time.Now().Add(s.ttl),
	}
	s.mu.Unlock()

	s.logger.Debug("session parked", slog.String("id", id))
	return id
}

// Take removes and returns the process for id. The removal is atomic with
// the lookup: of two concurrent Take calls for the same ID, exactly one
// gets the process and the other gets ok=false. The caller owns the
// returned process and must Resume or Kill it.
func (s *Store) Take(id string) (executor.Process, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id]
	if !ok {
		return nil, false
	}
	delete(s.entries, id)
	return e.proc, true
}

// Len reports how many runs are currently parked.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Stop shuts down the janitor and kills every process still parked.
// Called during graceful shutdown so no child outlives the server.
func (s *Store) Stop() {
	s.stopOnce.Do(func() {
		close(s.done)
		s.wg.Wait()

		s.mu.Lock()
		orphans := make([]executor.Process, 0, len(s.entries))
		for id, e := range s.entries {
			orphans = append(orphans, e.proc)
			delete(s.entries, id)
		}
		s.mu.Unlock()

		for _, proc := range orphans {
			proc.Kill()
		}
		if len(orphans) > 0 {
			s.logger.Info("killed parked sessions on shutdown", slog.Int("count", len(orphans)))
		}
	})
}

// janitor periodically sweeps expired entries and kills their processes.
// Kills happen outside the lock, same as everywhere else.
func (s *Store) janitor() {
	defer s.wg.Done()

	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case now := <-ticker.C:
			var expired []executor.Process

			s.mu.Lock()
			for id, e := range s.entries {
				if now.After(e.expires) {
					expired = append(expired, e.proc)
					delete(s.entries, id)
					s.logger.Info("session expired", slog.String("id", id))
				}
			}
			s.mu.Unlock()

			for _, proc := range expired {
				proc.Kill()
			}
		}
	}
}
