package admin

import "time"

// ClaimKey is the custom claim that marks an account as administrator.
const ClaimKey = "admin"

// GrantRequest asks for ClaimKey=true on the account registered under Email.
// With Merge the existing custom claims are kept; otherwise they are
// replaced, which is how Firebase treats SetCustomUserClaims.
type GrantRequest struct {
	Email string `json:"email"`
	Merge bool   `json:"merge,omitempty"`
}

// Grant describes the claims that were written for a user.
type Grant struct {
	UID    string         `json:"uid"`
	Email  string         `json:"email"`
	Claims map[string]any `json:"claims"`
	Merged bool           `json:"merged"`
	At     time.Time      `json:"at"`
}

// Status is a read-only view of a user's custom claims.
type Status struct {
	UID     string         `json:"uid"`
	Email   string         `json:"email"`
	Claims  map[string]any `json:"claims,omitempty"`
	IsAdmin bool           `json:"isAdmin"`
}

// User is the part of an identity record this package needs.
type User struct {
	UID          string
	Email        string
	CustomClaims map[string]any
}
