package model

import (
	"encoding/json"
	"time"
)

// ActivityEntry is one row of the per-user activity log (logins, logouts).
// Details holds action-specific context, e.g. the user agent for a login.
type ActivityEntry struct {
	ID        string          `json:"id"`
	UserID    string          `json:"userId"`
	Action    string          `json:"action"`
	Details   json.RawMessage `json:"details,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
}

// Activity log actions.
const (
	ActivityLogin  = "login"
	ActivityLogout = "logout"
)
