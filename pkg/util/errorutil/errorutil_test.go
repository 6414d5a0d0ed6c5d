package errorutil

import (
	"errors"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
)

func TestToDomainError(t *testing.T) {
	assert.Nil(t, ToDomainError(nil))

	forbidden := NewForbidden("insufficient role")
	assert.Same(t, forbidden, ToDomainError(forbidden))

	wrapped := ToDomainError(errors.Join(errors.New("context"), NewUnauthorized("authentication required")))
	assert.Equal(t, "UNAUTHORIZED", wrapped.Code)
	assert.Equal(t, http.StatusUnauthorized, wrapped.HTTPStatus)

	fromFiber := ToDomainError(fiber.NewError(fiber.StatusNotFound, "Cannot GET /x"))
	assert.Equal(t, "NOT_FOUND", fromFiber.Code)
	assert.Equal(t, "Cannot GET /x", fromFiber.Message)
	assert.Equal(t, http.StatusNotFound, fromFiber.HTTPStatus)

	cause := errors.New("redis down")
	internal := ToDomainError(cause)
	assert.Equal(t, "INTERNAL_ERROR", internal.Code)
	assert.ErrorIs(t, internal, cause)
}

func TestConstructors(t *testing.T) {
	var de *DomainError

	err := NewNotFound("route", nil)
	assert.ErrorAs(t, err, &de)
	assert.Equal(t, "route not found", de.Message)
	assert.NotNil(t, de.Details)

	err = NewValidationError("invalid sign-in request", map[string]any{"Token": "jwt"})
	assert.ErrorAs(t, err, &de)
	assert.Equal(t, http.StatusBadRequest, de.HTTPStatus)
	assert.Equal(t, "jwt", de.Details["Token"])

	err = NewInternalError(errors.New("boom"))
	assert.EqualError(t, err, "internal server error: boom")
}
