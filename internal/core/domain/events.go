package domain

import "time"

// AccountRegisteredEvent represents the payload for iam.account.registered messages.
type AccountRegisteredEvent struct {
	EventID      string
	AccountID    int64
	Username     string
	Email        string
	Role         Role
	RegisteredAt time.Time
	Metadata     map[string]any
}

// RoleChangedEvent represents the payload for iam.account.role.changed messages.
type RoleChangedEvent struct {
	EventID      string
	AccountID    int64
	PreviousRole Role
	NewRole      Role
	ChangedBy    int64
	ChangedAt    time.Time
	Metadata     map[string]any
}
