package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/vostuff/vostuff/internal/domain"
	"github.com/vostuff/vostuff/internal/middleware"
	"github.com/vostuff/vostuff/internal/service"
)

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	authService *service.AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

type loginRequest struct {
	Identity       string `json:"identity"`
	Password       string `json:"password"`
	OrganizationID string `json:"organization_id,omitempty"`
}

type selectOrgRequest struct {
	FollowOnToken  string `json:"follow_on_token"`
	OrganizationID string `json:"organization_id"`
}

// Login handles POST /v1/auth/login.
//
// Three outcomes: a session token (organization resolved), an organization
// choice plus follow-on token (several memberships, none picked), or an
// error. Every authentication failure renders the exact same 401 body no
// matter which check failed, so the endpoint cannot confirm which identities
// exist.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidCredentials(c)
	}

	result, err := h.authService.Login(c.Context(), req.Identity, req.Password, req.OrganizationID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidCredentials):
			return invalidCredentials(c)
		case errors.Is(err, domain.ErrNoOrganization):
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error":   "no_organization",
				"message": "User is not a member of any organization",
			})
		case errors.Is(err, domain.ErrInvalidOrganization):
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error":   "invalid_organization",
				"message": "User is not a member of the specified organization",
			})
		default:
			return internalError(c, err)
		}
	}

	if result.OrgChoice != nil {
		return c.JSON(fiber.Map{
			"organizations":   result.OrgChoice.Organizations,
			"follow_on_token": result.OrgChoice.FollowOnToken,
		})
	}
	return c.JSON(sessionResponse(result.Session))
}

// SelectOrganization handles POST /v1/auth/select-org: redeems a follow-on
// token for a session token scoped to the chosen organization.
func (h *AuthHandler) SelectOrganization(c *fiber.Ctx) error {
	var req selectOrgRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error":   "invalid_token",
			"message": "Invalid or expired follow-on token",
		})
	}

	session, err := h.authService.SelectOrganization(c.Context(), req.FollowOnToken, req.OrganizationID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidToken):
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error":   "invalid_token",
				"message": "Invalid or expired follow-on token",
			})
		case errors.Is(err, domain.ErrNotFound):
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error":   "user_not_found",
				"message": "User not found",
			})
		case errors.Is(err, domain.ErrNotMember):
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error":   "not_member",
				"message": "User is not a member of the specified organization",
			})
		default:
			return internalError(c, err)
		}
	}

	return c.JSON(sessionResponse(session))
}

// Me handles GET /v1/auth/me: the profile carried by the presented token.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	auth := middleware.GetAuthContext(c)
	return c.JSON(fiber.Map{
		"id":              auth.UserID,
		"identity":        auth.Identity,
		"organization_id": auth.OrganizationID,
		"roles":           auth.Roles,
	})
}

func sessionResponse(s *service.SessionResult) fiber.Map {
	return fiber.Map{
		"token":      s.Token,
		"expires_in": s.ExpiresIn,
		"user": fiber.Map{
			"id":       s.UserID,
			"name":     s.Name,
			"identity": s.Identity,
			"organization": fiber.Map{
				"id":          s.Organization.OrganizationID,
				"name":        s.Organization.Name,
				"description": s.Organization.Description,
			},
			"roles": s.Organization.Roles,
		},
	}
}

// invalidCredentials is the single authentication-failure response. Always
// the same status and body regardless of cause.
func invalidCredentials(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"error":   "unauthorized",
		"message": "Invalid credentials",
	})
}

func internalError(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error":   "internal_error",
		"message": err.Error(),
	})
}
