package models

import "time"

// AuthEvent is the persisted audit record of one authentication outcome.
type AuthEvent struct {
	ID       string    `json:"id"`
	Username string    `json:"username"`
	ClientID string    `json:"client_id"`
	Success  bool      `json:"success"`
	Reason   string    `json:"reason,omitempty"`
	At       time.Time `json:"at"`
}
