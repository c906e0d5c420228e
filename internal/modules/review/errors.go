package review

import "errors"

var (
	ErrValidation       = errors.New("validation error")
	ErrNotFound         = errors.New("review not found")
	ErrListingNotFound  = errors.New("listing not found")
	ErrForbidden        = errors.New("forbidden")
	ErrReviewNotAllowed = errors.New("only renters of the listing can review it")
	ErrAlreadyReviewed  = errors.New("listing already reviewed")
)

// ValidationError carries the failed field tags.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string { return "validation error" }

func (e *ValidationError) Unwrap() error { return ErrValidation }
