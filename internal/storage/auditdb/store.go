// Package auditdb implements AuditStore using BadgerHold.
// It keeps an append-only log of authentication events keyed by event ID.
package auditdb

import (
	"context"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/timshannon/badgerhold/v4"

	"github.com/avela-io/authserv/internal/common"
	"github.com/avela-io/authserv/internal/interfaces"
	"github.com/avela-io/authserv/internal/models"
)

// Store implements interfaces.AuditStore using BadgerHold.
type Store struct {
	db     *badgerhold.Store
	logger *common.Logger
}

// NewStore creates a new AuditStore backed by BadgerHold.
func NewStore(logger *common.Logger, path string) (*Store, error) {
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, fmt.Errorf("failed to create auditdb path %s: %w", path, err)
	}
	opts := badgerhold.DefaultOptions
	opts.Dir = path
	opts.ValueDir = path
	opts.Logger = nil
	db, err := badgerhold.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open auditdb at %s: %w", path, err)
	}
	logger.Info().Str("path", path).Msg("AuditDB opened")
	return &Store{db: db, logger: logger}, nil
}

// Append stores one authentication event.
func (s *Store) Append(_ context.Context, event *models.AuthEvent) error {
	if event.ID == "" {
		return fmt.Errorf("auth event requires an id")
	}
	if err := s.db.Insert(event.ID, event); err != nil {
		return fmt.Errorf("failed to append auth event '%s': %w", event.ID, err)
	}
	return nil
}

// ListByUsername returns events for a username, newest first, up to limit.
func (s *Store) ListByUsername(_ context.Context, username string, limit int) ([]*models.AuthEvent, error) {
	var all []models.AuthEvent
	if err := s.db.Find(&all, nil); err != nil {
		return nil, fmt.Errorf("failed to list auth events: %w", err)
	}

	var result []*models.AuthEvent
	for i := range all {
		if all[i].Username == username {
			ev := all[i]
			result = append(result, &ev)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].At.After(result[j].At)
	})

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}

	return result, nil
}

// Purge deletes events older than the cutoff and returns the count removed.
func (s *Store) Purge(_ context.Context, olderThan time.Time) (int, error) {
	var all []models.AuthEvent
	if err := s.db.Find(&all, nil); err != nil {
		return 0, fmt.Errorf("failed to find auth events: %w", err)
	}

	count := 0
	for _, ev := range all {
		if ev.At.Before(olderThan) {
			if err := s.db.Delete(ev.ID, models.AuthEvent{}); err == nil {
				count++
			}
		}
	}
	if count > 0 {
		s.logger.Debug().Int("purged", count).Msg("Purged old auth events")
	}
	return count, nil
}

// Close shuts down the BadgerHold database.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Ensure Store implements AuditStore
var _ interfaces.AuditStore = (*Store)(nil)
