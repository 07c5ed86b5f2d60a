package domain

// AuthContext is the request-scoped identity derived from a validated session
// token. It is built fresh per request by the auth middleware and carried as a
// value, never as process-wide state. The zero value is unauthenticated.
type AuthContext struct {
	UserID         string
	Identity       string
	OrganizationID string
	Roles          []string
	Authenticated  bool
}

// Unauthenticated returns the context used when no bearer token was presented.
func Unauthenticated() AuthContext {
	return AuthContext{}
}

// FromSessionClaims builds an authenticated context from decoded claims.
func FromSessionClaims(claims *SessionClaims) AuthContext {
	return AuthContext{
		UserID:         claims.UserID,
		Identity:       claims.Identity,
		OrganizationID: claims.OrganizationID,
		Roles:          claims.Roles,
		Authenticated:  true,
	}
}

func (a AuthContext) IsAuthenticated() bool {
	return a.Authenticated
}

// HasOrgAccess reports whether the token is scoped to the given organization.
// Exact match: a token carries one organization, never a set.
func (a AuthContext) HasOrgAccess(orgID string) bool {
	return a.Authenticated && a.OrganizationID == orgID
}

// HasRole checks the role snapshot taken at token issuance.
func (a AuthContext) HasRole(role string) bool {
	if !a.Authenticated {
		return false
	}
	for _, r := range a.Roles {
		if r == role {
			return true
		}
	}
	return false
}

func (a AuthContext) IsAdmin() bool {
	return a.HasRole(RoleAdmin)
}
