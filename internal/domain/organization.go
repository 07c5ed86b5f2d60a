package domain

import (
	"context"
	"time"
)

// Organization is a tenant. Every session token is scoped to exactly one.
type Organization struct {
	ID          string    `bson:"_id,omitempty" json:"id"`
	Name        string    `bson:"name" json:"name"`
	Description string    `bson:"description,omitempty" json:"description,omitempty"`
	CreatedAt   time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time `bson:"updated_at" json:"updated_at"`
}

// Membership links a user to an organization with a per-organization role set.
// The same user can be ADMIN in one organization and USER in another.
type Membership struct {
	ID             string    `bson:"_id,omitempty" json:"id"`
	UserID         string    `bson:"user_id" json:"user_id"`
	OrganizationID string    `bson:"organization_id" json:"organization_id"`
	Roles          []string  `bson:"roles" json:"roles"`
	CreatedAt      time.Time `bson:"created_at" json:"created_at"`
}

// MembershipView is a membership joined with its organization's display data,
// as rendered in login and org-selection responses.
type MembershipView struct {
	OrganizationID string   `json:"id"`
	Name           string   `json:"name"`
	Description    string   `json:"description,omitempty"`
	Roles          []string `json:"roles"`
}

// Role constants
const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

// OrganizationRepository defines the read surface the auth core needs from the
// store, plus Create/AddMember for seeding and tests.
type OrganizationRepository interface {
	Create(ctx context.Context, org *Organization) error
	GetByID(ctx context.Context, id string) (*Organization, error)
	AddMember(ctx context.Context, m *Membership) error
	// ListForUser returns the user's memberships joined with organization
	// display data, ordered by organization name.
	ListForUser(ctx context.Context, userID string) ([]*MembershipView, error)
	FindMembership(ctx context.Context, userID, orgID string) (*Membership, error)
}
