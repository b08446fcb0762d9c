package domain

import (
	"errors"
	"fmt"
)

// GuestIdentity is shared by every caller without a session, so all guests
// count as one identity for the donation lock.
const GuestIdentity = "guest"

// ErrAlreadyDonated 同一身份已经发布过捐献
var ErrAlreadyDonated = errors.New("already-donated")

// Actor 调用者身份（自声明，未验证）
type Actor struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email,omitempty"`
	Role         string `json:"role"`
	Organization string `json:"organization,omitempty"`
	Contact      string `json:"contact,omitempty"`
}

// IdentityOf resolves the lock identity for a possibly nil actor.
func IdentityOf(a *Actor) string {
	if a == nil || a.ID == "" {
		return GuestIdentity
	}
	return a.ID
}

// Attribution renders "<name> (<role>)" or "Guest".
func (a *Actor) Attribution() string {
	if a == nil {
		return "Guest"
	}
	return fmt.Sprintf("%s (%s)", a.Name, a.Role)
}

// FirstNonEmpty returns the first non-empty string.
func FirstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// DisplayOrg is the actor's organization, falling back to its name.
func (a *Actor) DisplayOrg() string {
	if a == nil {
		return ""
	}
	return FirstNonEmpty(a.Organization, a.Name)
}

// EmailOrEmpty tolerates a nil actor.
func (a *Actor) EmailOrEmpty() string {
	if a == nil {
		return ""
	}
	return a.Email
}
