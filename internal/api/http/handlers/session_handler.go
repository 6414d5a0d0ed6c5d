package handlers

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/clinic-dashboard/internal/api/dto"
	"github.com/spec-kit/clinic-dashboard/internal/auth"
	"github.com/spec-kit/clinic-dashboard/internal/domain"
	"github.com/spec-kit/clinic-dashboard/internal/session"
	apperrors "github.com/spec-kit/clinic-dashboard/pkg/util/errorutil"
)

// SessionHandler exposes sign-in, sign-out and session inspection.
type SessionHandler struct {
	guard      *auth.Guard
	sessions   session.Provider
	validate   *validator.Validate
	logger     *zap.Logger
	signInPath string
}

// NewSessionHandler constructs handler.
func NewSessionHandler(guard *auth.Guard, sessions session.Provider, signInPath string, logger *zap.Logger) *SessionHandler {
	return &SessionHandler{
		guard:      guard,
		sessions:   sessions,
		validate:   validator.New(),
		logger:     logger,
		signInPath: signInPath,
	}
}

// SignInPage handles GET /signin.
func (h *SessionHandler) SignInPage(c *fiber.Ctx) error {
	c.Set(fiber.HeaderCacheControl, "no-store")
	return c.JSON(fiber.Map{"data": fiber.Map{"view": "signin"}})
}

// AccessDenied handles GET /access-denied.
func (h *SessionHandler) AccessDenied(c *fiber.Ctx) error {
	c.Set(fiber.HeaderCacheControl, "no-store")
	return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"data": fiber.Map{
		"view":    "access-denied",
		"message": "your profile cannot open this page",
	}})
}

// SignIn handles POST /signin. The token is stored only when it decodes and has
// not expired.
func (h *SessionHandler) SignIn(c *fiber.Ctx) error {
	var req dto.SignInRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := h.validate.Struct(req); err != nil {
		details := map[string]any{}
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			for _, fieldErr := range fieldErrs {
				details[fieldErr.Field()] = fieldErr.Tag()
			}
		}
		return apperrors.NewValidationError("invalid sign-in request", details)
	}

	verdict := h.guard.Inspect(req.Token)
	if !verdict.State.Authenticated() {
		h.logger.Info("sign-in rejected", zap.String("state", string(verdict.State)))
		return apperrors.NewUnauthorized(auth.ErrUnauthenticated.Error())
	}

	store := h.sessions.StoreFor(c)
	if err := store.Set(c.UserContext(), req.Token); err != nil {
		return apperrors.NewInternalError(err)
	}

	c.Set(fiber.HeaderCacheControl, "no-store")
	return c.JSON(fiber.Map{"data": dto.NewSessionResponse(verdict.State, verdict.Claims)})
}

// SignOut handles POST /signout.
func (h *SessionHandler) SignOut(c *fiber.Ctx) error {
	store := h.sessions.StoreFor(c)
	if err := store.Clear(c.UserContext()); err != nil {
		return apperrors.NewInternalError(err)
	}
	c.Set(fiber.HeaderCacheControl, "no-store")
	return c.Redirect(h.signInPath, fiber.StatusSeeOther)
}

// Current handles GET /api/session. It runs the guard, so a stale token is
// evicted by this call as well.
func (h *SessionHandler) Current(c *fiber.Ctx) error {
	store := h.sessions.StoreFor(c)
	verdict, err := h.guard.Evaluate(c.UserContext(), store)
	if err != nil {
		h.logger.Warn("session evaluation failed", zap.Error(err))
		verdict = auth.Verdict{State: domain.SessionNoToken}
	}
	c.Set(fiber.HeaderCacheControl, "no-store")
	return c.JSON(fiber.Map{"data": dto.NewSessionResponse(verdict.State, verdict.Claims)})
}
