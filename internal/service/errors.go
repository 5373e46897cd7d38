package service

import (
	"errors"
	"sort"

	"github.com/devsanbid/bravo-test-sub001/internal/repository"
	apperrors "github.com/devsanbid/bravo-test-sub001/pkg/util"
)

// backendError wraps a failed backend call unless it already carries a domain error.
func backendError(op string, err error) error {
	var domainErr *apperrors.DomainError
	if errors.As(err, &domainErr) {
		return err
	}
	return apperrors.NewBackendError(op, err)
}

// lookupError maps a missing document to NotFound and anything else to BackendError.
func lookupError(op, resource, id string, err error) error {
	if errors.Is(err, repository.ErrDocumentNotFound) {
		return apperrors.NewNotFound(resource, map[string]any{"id": id})
	}
	return backendError(op, err)
}

func uploadError(op string, err error) error {
	if errors.Is(err, repository.ErrFileTooLarge) {
		return apperrors.NewValidationError("file exceeds upload limit", nil)
	}
	return backendError(op, err)
}

// missingFields returns a validation error naming every empty required field.
func missingFields(fields map[string]string) error {
	var missing []string
	for name, value := range fields {
		if value == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	sort.Strings(missing)
	return apperrors.NewValidationError("missing required fields", map[string]any{"fields": missing})
}
