package domain

import (
	"context"
	"time"
)

// User is an account that can authenticate against the API.
// PasswordHash is the self-describing argon2id string; a user without one
// cannot log in by password (e.g. accounts provisioned externally).
type User struct {
	ID           string    `bson:"_id,omitempty" json:"id"`
	Identity     string    `bson:"identity" json:"identity"` // login identity (email)
	Name         string    `bson:"name" json:"name"`
	PasswordHash string    `bson:"password_hash,omitempty" json:"-"`
	CreatedAt    time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at" json:"updated_at"`
}

// UserRepository defines operations for managing users.
// The auth core only reads; Create exists for seeding and tests.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByIdentity(ctx context.Context, identity string) (*User, error)
}
