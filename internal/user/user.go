// Package user holds application user profiles. Credentials live with the
// auth provider; only the profile row is stored here.
package user

import (
	"context"
	"time"

	"github.com/goevery/orderrelay/internal/presence"
)

type Profile struct {
	Id        string        `json:"id"`
	Email     string        `json:"email"`
	Name      string        `json:"name"`
	Role      presence.Role `json:"role"`
	CreatedAt time.Time     `json:"created_at"`
}

type NewProfile struct {
	// Id is the identifier issued by the auth provider for this user.
	Id    string
	Email string
	Name  string
	Role  presence.Role
}

type Store interface {
	Create(ctx context.Context, profile NewProfile) (Profile, error)
}
