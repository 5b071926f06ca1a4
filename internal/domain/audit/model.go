package audit

import "time"

const (
	ActionGrant  = "admin.grant"
	ActionRevoke = "admin.revoke"
)

// Event is one change to a user's admin claim.
type Event struct {
	Action string         `firestore:"action" json:"action"`
	UID    string         `firestore:"uid" json:"uid"`
	Email  string         `firestore:"email,omitempty" json:"email,omitempty"`
	Actor  string         `firestore:"actor,omitempty" json:"actor,omitempty"` // uid or "cli"
	Claims map[string]any `firestore:"claims" json:"claims"`
	Merged bool           `firestore:"merged" json:"merged"`
	At     time.Time      `firestore:"at" json:"at"`
}
