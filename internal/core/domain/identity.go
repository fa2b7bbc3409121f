package domain

import "time"

// Account is a registered identity. The id is assigned by the credential
// store on creation and never reused or mutated afterwards.
type Account struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// RoleAssignment binds exactly one role to an account. The account id doubles
// as the primary key, so an account can never hold more than one role.
type RoleAssignment struct {
	AccountID  int64
	Role       Role
	AssignedAt time.Time
}

// Identity is the fixed-shape payload a verified access token asserts.
// It is produced only by token verification and never constructed ad hoc
// elsewhere; the role is a snapshot taken at issuance time and does not
// track later role changes within the token's lifetime.
type Identity struct {
	AccountID int64
	Role      Role
}
