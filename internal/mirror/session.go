// Package mirror keeps an optional copy of the question collection in a directory on
// disk. Mirror writes are best-effort and never block the canonical store.
package mirror

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// State is the lifecycle state of a Session.
type State string

const (
	StateUnattached State = "unattached"
	StateAttached   State = "attached"
	StateReleased   State = "released"
)

var (
	// ErrSyncWrite marks a failed mirror write. It is logged, never surfaced.
	ErrSyncWrite = errors.New("mirror write failed")

	// ErrReleased is returned when acquiring a released session.
	ErrReleased = errors.New("mirror session released")

	// ErrInvalidDirectory is returned when a directory cannot be used for mirroring.
	ErrInvalidDirectory = errors.New("mirror directory is not usable")
)

// Session tracks which directory, if any, the collection is mirrored to.
type Session struct {
	mu    sync.RWMutex
	state State
	dir   string
}

// NewSession creates an unattached session.
func NewSession() *Session {
	return &Session{state: StateUnattached}
}

// Acquire attaches the session to dir, creating it when missing.
func (s *Session) Acquire(dir string) error {
	if dir == "" {
		return fmt.Errorf("%w: empty path", ErrInvalidDirectory)
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDirectory, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateReleased {
		return ErrReleased
	}

	if err := os.MkdirAll(abs, 0o755); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDirectory, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDirectory, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", ErrInvalidDirectory, abs)
	}

	s.dir = abs
	s.state = StateAttached
	return nil
}

// Detach stops mirroring but remembers the last directory.
func (s *Session) Detach() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateAttached {
		s.state = StateUnattached
	}
}

// Release ends the session. It cannot be reattached.
func (s *Session) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StateReleased
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Dir returns the attached or last attached directory.
func (s *Session) Dir() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dir
}

// Target returns the directory to write to and whether the session is attached.
func (s *Session) Target() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dir, s.state == StateAttached
}

// Status is the JSON view of a session.
type Status struct {
	State     State  `json:"state"`
	Directory string `json:"directory,omitempty"`
}

// Status returns a snapshot of the session.
func (s *Session) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Status{State: s.state, Directory: s.dir}
}
