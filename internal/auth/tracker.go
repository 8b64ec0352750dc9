package auth

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/avela-io/authserv/internal/clients/directory"
	"github.com/avela-io/authserv/internal/common"
	"github.com/avela-io/authserv/internal/interfaces"
	"github.com/avela-io/authserv/internal/models"
)

// maxFailedAttempts is the lockout threshold. Fixed policy, together with
// the reset-to-zero on success; neither is configurable.
const maxFailedAttempts = 3

// LoginAttemptTracker consumes authentication outcomes and maintains the
// failure counter and enabled flag on the directory record. It is purely
// side-effecting: a directory fault here is logged and swallowed, because
// the authentication decision has already been made.
type LoginAttemptTracker struct {
	directory interfaces.DirectoryClient
	audit     interfaces.AuditStore
	logger    *common.Logger
}

// NewLoginAttemptTracker creates a tracker. audit may be nil, in which case
// outcomes are not persisted to the audit log.
func NewLoginAttemptTracker(dir interfaces.DirectoryClient, audit interfaces.AuditStore, logger *common.Logger) *LoginAttemptTracker {
	return &LoginAttemptTracker{
		directory: dir,
		audit:     audit,
		logger:    logger,
	}
}

// OnOutcome processes one authentication outcome.
func (t *LoginAttemptTracker) OnOutcome(ctx context.Context, outcome models.AuthenticationOutcome) {
	t.recordEvent(ctx, outcome)

	if outcome.Success {
		t.onSuccess(ctx, outcome.Principal)
		return
	}
	t.onFailure(ctx, outcome)
}

// onSuccess resets a nonzero failure counter to exactly 0. A counter already
// at 0 (or absent) writes nothing.
func (t *LoginAttemptTracker) onSuccess(ctx context.Context, principal *models.DirectoryUser) {
	if principal == nil || principal.AttemptCount() == 0 {
		return
	}

	principal.SetAttemptCount(0)
	if _, err := t.directory.Update(ctx, principal); err != nil {
		t.logger.Error().Err(err).Str("username", principal.Username).Msg("Failed to reset attempt counter")
		return
	}
	t.logger.Info().Str("username", principal.Username).Msg("Attempt counter reset")
}

// onFailure increments the failure counter and disables the account once it
// reaches the threshold. The counter read-modify-write is not atomic across
// concurrent logins; the directory owns the record and lost updates are an
// accepted limitation.
func (t *LoginAttemptTracker) onFailure(ctx context.Context, outcome models.AuthenticationOutcome) {
	if outcome.Reason == models.ReasonUnknownUser {
		// Nothing to update for a username the directory doesn't know.
		t.logger.Error().Str("username", outcome.AttemptedUsername).Msg("Login attempt for unknown user")
		return
	}

	user, err := t.directory.FindByUsername(ctx, outcome.AttemptedUsername)
	if err != nil {
		if errors.Is(err, directory.ErrUserNotFound) {
			t.logger.Error().Str("username", outcome.AttemptedUsername).Msg("User vanished from directory before lockout update")
			return
		}
		t.logger.Error().Err(err).Str("username", outcome.AttemptedUsername).Msg("Failed to fetch user for lockout update")
		return
	}

	attempts := user.AttemptCount() + 1
	user.SetAttemptCount(attempts)
	t.logger.Info().Str("username", user.Username).Int("attempts", attempts).Msg("Failed login attempt recorded")

	if attempts >= maxFailedAttempts {
		user.Enabled = false
		t.logger.Warn().Str("username", user.Username).Int("attempts", attempts).Msg("User disabled after too many failed attempts")
	}

	if _, err := t.directory.Update(ctx, user); err != nil {
		t.logger.Error().Err(err).Str("username", user.Username).Msg("Failed to push lockout update")
	}
}

// recordEvent appends the outcome to the audit store. Failures are logged
// and swallowed like every other side effect here.
func (t *LoginAttemptTracker) recordEvent(ctx context.Context, outcome models.AuthenticationOutcome) {
	if t.audit == nil {
		return
	}

	event := &models.AuthEvent{
		ID:       uuid.New().String(),
		Username: outcome.Username(),
		ClientID: outcome.ClientID,
		Success:  outcome.Success,
		Reason:   string(outcome.Reason),
		At:       time.Now(),
	}
	if err := t.audit.Append(ctx, event); err != nil {
		t.logger.Error().Err(err).Str("username", event.Username).Msg("Failed to record auth event")
	}
}

// Ensure LoginAttemptTracker implements AttemptTracker
var _ interfaces.AttemptTracker = (*LoginAttemptTracker)(nil)
