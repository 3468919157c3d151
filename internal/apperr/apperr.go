package apperr

import "errors"

var (
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token expired")
	ErrUnauthorized       = errors.New("not authenticated")
	ErrForbidden          = errors.New("not enough rights")
	ErrUserDoesNotExist   = errors.New("user does not exist")
	ErrNoUserData         = errors.New("user id or username is required")

	ErrPatientNotFound = errors.New("patient not found")
	ErrRecordNotFound  = errors.New("patient record not found")

	ErrInvalidField          = errors.New("invalid filter field")
	ErrInvalidRule           = errors.New("invalid filter rule")
	ErrInvalidValueFormat    = errors.New("invalid filter value format")
	ErrUnsupportedGlobalRule = errors.New("unsupported global rule, use 'every' or 'some'")

	ErrUnexpectedRole = errors.New("unexpected user role")
)
