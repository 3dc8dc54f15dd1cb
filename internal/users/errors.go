package users

import "errors"

var (
	ErrNotFound             = errors.New("user not found")
	ErrEmailTaken           = errors.New("email already registered")
	ErrInvalidInput         = errors.New("invalid input")
	ErrPasswordMismatch     = errors.New("passwords do not match")
	ErrTermsNotAccepted     = errors.New("terms and conditions not accepted")
	ErrOrganizationNotFound = errors.New("organization not found")
)
