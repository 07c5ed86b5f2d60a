package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/vostuff/vostuff/internal/domain"
)

// OrgHandler serves organization display reads. The routes are tenancy-gated:
// the token must be scoped to the requested organization.
type OrgHandler struct {
	orgRepo domain.OrganizationRepository
}

// NewOrgHandler creates a new organization handler
func NewOrgHandler(orgRepo domain.OrganizationRepository) *OrgHandler {
	return &OrgHandler{orgRepo: orgRepo}
}

// Get handles GET /v1/orgs/:id
func (h *OrgHandler) Get(c *fiber.Ctx) error {
	org, err := h.orgRepo.GetByID(c.Context(), c.Params("id"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error":   "not_found",
				"message": "Organization not found",
			})
		}
		return internalError(c, err)
	}

	return c.JSON(fiber.Map{
		"id":          org.ID,
		"name":        org.Name,
		"description": org.Description,
	})
}
