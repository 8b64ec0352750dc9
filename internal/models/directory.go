package models

// DirectoryUser is a user record owned by the external user directory
// service. The record is referenced here, never persisted directly; all
// mutations go back through the directory gateway.
type DirectoryUser struct {
	ID             string   `json:"id"`
	Username       string   `json:"username"`
	PasswordHash   string   `json:"password"`
	Enabled        bool     `json:"enabled"`
	FailedAttempts *int     `json:"failed_attempts"`
	Roles          []string `json:"roles"`
}

// AttemptCount returns the failed-attempt counter, treating nil as 0.
func (u *DirectoryUser) AttemptCount() int {
	if u.FailedAttempts == nil {
		return 0
	}
	return *u.FailedAttempts
}

// SetAttemptCount sets the failed-attempt counter.
func (u *DirectoryUser) SetAttemptCount(n int) {
	u.FailedAttempts = &n
}
