// Package distrostate implements the mocking of the state of the distro
// (i.e. running or stopped) as driven by interactive sessions.
package distrostate

import (
	"errors"
	"sync"
)

// DistroState tracks whether a distro is active or not.
type DistroState struct {
	// active is the number of interactive sessions currently running.
	active uint

	// sessions is the number of interactive sessions ever started.
	sessions uint

	// flag to avoid races where a session starts after the distro has been uninstalled.
	uninstalled bool

	mu sync.RWMutex
}

// New creates a new distro state with state Stopped.
func New() *DistroState {
	return &DistroState{}
}

// IsRunning returns whether the distro is running this moment.
func (t *DistroState) IsRunning() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return t.active != 0
}

// Sessions returns how many interactive sessions were started.
func (t *DistroState) Sessions() uint {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return t.sessions
}

// StartSession wakes up the distro for one interactive session. Call the
// returned function when the session is over.
func (t *DistroState) StartSession() (end func(), err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.uninstalled {
		return nil, errors.New("distro unregistered")
	}

	t.active++
	t.sessions++

	var once sync.Once
	return func() {
		once.Do(func() {
			t.mu.Lock()
			defer t.mu.Unlock()
			t.active--
		})
	}, nil
}

// MarkUninstalled stops the distro and marks it as uninstalled.
func (t *DistroState) MarkUninstalled() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.uninstalled {
		return errors.New("distro unregistered")
	}

	t.active = 0
	t.uninstalled = true

	return nil
}
