package util

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
)

func TestToDomainErrorKeepsDomainErrors(t *testing.T) {
	wrapped := fmt.Errorf("load gallery: %w", NewNotFound("gallery image", nil))

	domainErr := ToDomainError(wrapped)
	assert.Equal(t, CodeNotFound, domainErr.Code)
	assert.Equal(t, http.StatusNotFound, domainErr.HTTPStatus)
	assert.Equal(t, "gallery image not found", domainErr.Message)
}

func TestToDomainErrorHidesUnknownCauses(t *testing.T) {
	domainErr := ToDomainError(errors.New("dial tcp 10.0.0.3:5432: connection refused"))
	assert.Equal(t, CodeInternal, domainErr.Code)
	assert.Equal(t, "internal server error", domainErr.Message)
	assert.Equal(t, http.StatusInternalServerError, domainErr.HTTPStatus)
}

func TestBackendErrorMessageIsGeneric(t *testing.T) {
	cause := errors.New("bucket quota exceeded")
	err := NewBackendError("delete file", cause)

	domainErr := ToDomainError(err)
	assert.Equal(t, CodeBackend, domainErr.Code)
	assert.Equal(t, "backend request failed", domainErr.Message)
	assert.ErrorIs(t, err, cause)
	assert.True(t, IsCode(err, CodeBackend))
	assert.False(t, IsCode(err, CodeNotFound))
}

func TestFiberErrorsMapToCodes(t *testing.T) {
	assert.Equal(t, CodeNotFound, ToDomainError(fiber.ErrNotFound).Code)
	assert.Equal(t, CodeValidation, ToDomainError(fiber.ErrRequestEntityTooLarge).Code)
	assert.Equal(t, "internal server error", ToDomainError(fiber.ErrBadGateway).Message)
}
