package user

import (
	"context"
	"time"
)

// User is the locally provisioned profile for an identity-provider account.
// The identifier is the opaque subject supplied by the identity layer; it is
// trusted as-is and never re-verified here.
type User struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Country     string    `json:"country"`
	Currency    string    `json:"currency"`
	PhoneNumber string    `json:"phone_number,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Repository provides read access to user profiles. Profiles are provisioned
// by the identity layer; this service only reads them for email delivery.
type Repository interface {
	GetByID(ctx context.Context, id string) (*User, error)
}

// ErrUserNotFound indicates a missing user profile
type ErrUserNotFound struct {
	ID string
}

func (e ErrUserNotFound) Error() string {
	return "user not found: " + e.ID
}

// Is implements errors.Is; a target with an empty ID matches any ErrUserNotFound.
func (e ErrUserNotFound) Is(target error) bool {
	t, ok := target.(ErrUserNotFound)
	if !ok {
		return false
	}
	return t.ID == "" || e.ID == t.ID
}
