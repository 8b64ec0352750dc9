// Package interfaces defines service contracts for authserv
package interfaces

import (
	"context"

	"github.com/avela-io/authserv/internal/models"
)

// DirectoryClient provides access to the external user directory service.
// Implementations must distinguish a missing user from a transport fault:
// FindByUsername returns an error matching directory.ErrUserNotFound when the
// username does not exist, and a *directory.UnavailableError when the service
// cannot be reached or answers with a server error.
type DirectoryClient interface {
	// FindByUsername retrieves the stored record for a username
	FindByUsername(ctx context.Context, username string) (*models.DirectoryUser, error)

	// Update pushes a full updated record back to the directory
	Update(ctx context.Context, user *models.DirectoryUser) (*models.DirectoryUser, error)
}
