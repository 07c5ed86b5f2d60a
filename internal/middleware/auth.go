package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/vostuff/vostuff/internal/domain"
	"github.com/vostuff/vostuff/internal/service"
)

// AuthContextKey is the Locals key holding the request's domain.AuthContext.
const AuthContextKey = "authContext"

// AuthContext validates the bearer token (if any) and stores the resulting
// context in request scope before any handler runs. A missing header is not
// an error -- the context is simply unauthenticated and each endpoint decides
// whether it cares. A header that is present but invalid ends the request
// with 401 right here.
func AuthContext(tokens *service.TokenService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := extractToken(c.Get("Authorization"))
		if token == "" {
			c.Locals(AuthContextKey, domain.Unauthenticated())
			return c.Next()
		}

		claims, err := tokens.ValidateSession(token)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error":   "unauthorized",
				"message": "Invalid or expired token",
			})
		}

		c.Locals(AuthContextKey, domain.FromSessionClaims(claims))
		return c.Next()
	}
}

// extractToken accepts both "Bearer <token>" and a raw token value.
func extractToken(header string) string {
	if header == "" {
		return ""
	}
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return header
}

// GetAuthContext returns the context stored by AuthContext, or an
// unauthenticated one if the middleware did not run.
func GetAuthContext(c *fiber.Ctx) domain.AuthContext {
	if auth, ok := c.Locals(AuthContextKey).(domain.AuthContext); ok {
		return auth
	}
	return domain.Unauthenticated()
}

// RequireAuth rejects unauthenticated requests with 401.
func RequireAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !GetAuthContext(c).IsAuthenticated() {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error":   "unauthorized",
				"message": "Authentication required",
			})
		}
		return c.Next()
	}
}

// RequireRole rejects requests whose token carries none of the given roles.
func RequireRole(allowedRoles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		auth := GetAuthContext(c)
		if !auth.IsAuthenticated() {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error":   "unauthorized",
				"message": "Authentication required",
			})
		}
		for _, role := range allowedRoles {
			if auth.HasRole(role) {
				return c.Next()
			}
		}
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error":   "forbidden",
			"message": "Insufficient permissions",
		})
	}
}

// RequireOrgAccess rejects requests targeting an organization other than the
// one the token is scoped to. The target org is read from the named route
// parameter; the match is exact since a token carries exactly one org.
func RequireOrgAccess(param string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		auth := GetAuthContext(c)
		if !auth.IsAuthenticated() {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error":   "unauthorized",
				"message": "Authentication required",
			})
		}
		if !auth.HasOrgAccess(c.Params(param)) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error":   "forbidden",
				"message": "Token is not scoped to this organization",
			})
		}
		return c.Next()
	}
}
