package interfaces

import (
	"context"
	"time"

	"github.com/avela-io/authserv/internal/models"
)

// AuditStore persists authentication events.
type AuditStore interface {
	// Append stores one authentication event
	Append(ctx context.Context, event *models.AuthEvent) error

	// ListByUsername returns events for a username, newest first, up to limit
	ListByUsername(ctx context.Context, username string, limit int) ([]*models.AuthEvent, error)

	// Purge deletes events older than the cutoff and returns the count removed
	Purge(ctx context.Context, olderThan time.Time) (int, error)

	// Close shuts down the store
	Close() error
}
