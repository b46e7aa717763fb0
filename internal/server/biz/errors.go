package biz

import "errors"

var (
	ErrInvalidJWT      = errors.New("invalid jwt token")
	ErrInvalidPassword = errors.New("invalid password")
	ErrEmailTaken      = errors.New("email already registered")
	ErrUserDisabled    = errors.New("user account is disabled")
	ErrInvalidRole     = errors.New("invalid role")
	ErrInternal        = errors.New("server internal error, please try again later")
)
