package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/clinic-dashboard/internal/api/dto"
	"github.com/spec-kit/clinic-dashboard/internal/auth"
	apperrors "github.com/spec-kit/clinic-dashboard/pkg/util/errorutil"
)

// AgendaHandler exposes the agenda auto-filter policy.
type AgendaHandler struct{}

// NewAgendaHandler constructs handler.
func NewAgendaHandler() *AgendaHandler {
	return &AgendaHandler{}
}

// Scope handles GET /api/agenda/scope.
func (h *AgendaHandler) Scope(c *fiber.Ctx) error {
	claims, ok := auth.ClaimsFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized(auth.ErrUnauthenticated.Error())
	}
	employeeID, restricted := auth.AgendaScope(claims)
	return c.JSON(fiber.Map{"data": dto.AgendaScopeResponse{Restricted: restricted, EmployeeID: employeeID}})
}
