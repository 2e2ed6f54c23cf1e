package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates that a requested record does not exist in the tenant.
	ErrNotFound = errors.New("resource not found")
	// ErrAccessDenied indicates the caller may not act on the tenant.
	ErrAccessDenied = errors.New("access denied")
	// ErrDuplicateEntry indicates a unique constraint violation.
	ErrDuplicateEntry = errors.New("duplicate entry")
	ErrValidation     = errors.New("validation failed")

	ErrImportHashRequired = errors.New("importHash is required")
	ErrImportHashExists   = errors.New("importHash already imported")

	// ErrCampaignAlreadySent rejects a second send of the same campaign.
	ErrCampaignAlreadySent = errors.New("campaign has already been sent")
)

// RequiredFieldError reports a missing field and unwraps to ErrValidation.
type RequiredFieldError struct {
	Field string
}

func (e *RequiredFieldError) Error() string {
	return fmt.Sprintf("%s is required", e.Field)
}

func (e *RequiredFieldError) Unwrap() error { return ErrValidation }
