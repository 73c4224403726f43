package impl

import "errors"

var (
	ErrEmptyPassword  = errors.New("empty password")
	ErrEmptyEmail     = errors.New("empty email")
	ErrPasswordLength = errors.New("password too short")
	ErrInvalidToken   = errors.New("invalid token")
)
