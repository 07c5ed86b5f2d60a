package domain

import (
	"github.com/golang-jwt/jwt/v5"
)

// SessionClaims is the payload of a full session token: one user, one
// organization, and the role snapshot taken at issuance. OrganizationID and
// Roles are required; both token shapes are signed with the same key, so the
// strict shape check is what keeps a follow-on token from passing as a session.
type SessionClaims struct {
	UserID         string   `json:"user_id"`
	Identity       string   `json:"identity"`
	OrganizationID string   `json:"organization_id"`
	Roles          []string `json:"roles"`
	jwt.RegisteredClaims
}

// FollowOnClaims is the payload of a short-lived follow-on token. It proves
// only that the primary credential check passed; it carries no organization
// and no roles and is redeemable solely via organization selection.
type FollowOnClaims struct {
	UserID   string `json:"user_id"`
	Identity string `json:"identity"`
	jwt.RegisteredClaims
}
