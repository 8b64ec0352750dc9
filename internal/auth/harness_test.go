package auth

import (
	"context"
	"sync"
	"time"

	"github.com/avela-io/authserv/internal/clients/directory"
	"github.com/avela-io/authserv/internal/models"
)

// memDirectory is an in-memory DirectoryClient. It hands out copies of its
// records, the way the HTTP gateway decodes fresh structs, so callers cannot
// mutate stored state without calling Update.
type memDirectory struct {
	mu          sync.Mutex
	users       map[string]*models.DirectoryUser
	findCalls   int
	updateCalls int
	findErr     error
	updateErr   error
}

func newMemDirectory(users ...*models.DirectoryUser) *memDirectory {
	d := &memDirectory{users: make(map[string]*models.DirectoryUser)}
	for _, u := range users {
		d.users[u.Username] = copyUser(u)
	}
	return d
}

func copyUser(u *models.DirectoryUser) *models.DirectoryUser {
	cp := *u
	if u.FailedAttempts != nil {
		n := *u.FailedAttempts
		cp.FailedAttempts = &n
	}
	cp.Roles = append([]string(nil), u.Roles...)
	return &cp
}

func (d *memDirectory) FindByUsername(_ context.Context, username string) (*models.DirectoryUser, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.findCalls++
	if d.findErr != nil {
		return nil, d.findErr
	}
	u, ok := d.users[username]
	if !ok {
		return nil, directory.ErrUserNotFound
	}
	return copyUser(u), nil
}

func (d *memDirectory) Update(_ context.Context, user *models.DirectoryUser) (*models.DirectoryUser, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.updateCalls++
	if d.updateErr != nil {
		return nil, d.updateErr
	}
	d.users[user.Username] = copyUser(user)
	return copyUser(user), nil
}

func (d *memDirectory) stored(username string) *models.DirectoryUser {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.users[username]
}

// recordingTracker captures outcomes without touching any directory.
type recordingTracker struct {
	mu       sync.Mutex
	outcomes []models.AuthenticationOutcome
}

func (t *recordingTracker) OnOutcome(_ context.Context, outcome models.AuthenticationOutcome) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.outcomes = append(t.outcomes, outcome)
}

func (t *recordingTracker) last() *models.AuthenticationOutcome {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.outcomes) == 0 {
		return nil
	}
	o := t.outcomes[len(t.outcomes)-1]
	return &o
}

func (t *recordingTracker) count() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.outcomes)
}

// memAudit collects auth events in memory.
type memAudit struct {
	mu     sync.Mutex
	events []*models.AuthEvent
	err    error
}

func (a *memAudit) Append(_ context.Context, event *models.AuthEvent) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.err != nil {
		return a.err
	}
	a.events = append(a.events, event)
	return nil
}

func (a *memAudit) ListByUsername(_ context.Context, username string, limit int) ([]*models.AuthEvent, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	var out []*models.AuthEvent
	for i := len(a.events) - 1; i >= 0; i-- {
		if a.events[i].Username == username {
			out = append(out, a.events[i])
		}
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (a *memAudit) Purge(_ context.Context, olderThan time.Time) (int, error) {
	return 0, nil
}

func (a *memAudit) Close() error { return nil }

func (a *memAudit) count() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.events)
}
