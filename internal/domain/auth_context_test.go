package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAuthContextFromClaims(t *testing.T) {
	claims := &SessionClaims{
		UserID:         "u1",
		Identity:       "alice@example.com",
		OrganizationID: "o1",
		Roles:          []string{RoleUser, RoleAdmin},
	}
	ctx := FromSessionClaims(claims)

	assert.True(t, ctx.IsAuthenticated())
	assert.True(t, ctx.HasOrgAccess("o1"))
	assert.False(t, ctx.HasOrgAccess("o2"))
	assert.True(t, ctx.HasRole(RoleUser))
	assert.True(t, ctx.HasRole(RoleAdmin))
	assert.False(t, ctx.HasRole("SUPERUSER"))
	assert.True(t, ctx.IsAdmin())
}

func TestUnauthenticatedContext(t *testing.T) {
	ctx := Unauthenticated()

	assert.False(t, ctx.IsAuthenticated())
	assert.False(t, ctx.HasOrgAccess("o1"))
	assert.False(t, ctx.HasOrgAccess(""))
	assert.False(t, ctx.HasRole(RoleUser))
	assert.False(t, ctx.IsAdmin())
}
