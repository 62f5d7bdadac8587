package domain

import "errors"

var ErrNotFound = errors.New("record not found")
var ErrForbidden = errors.New("access forbidden")
var ErrInvalidCredentials = errors.New("invalid credentials")
var ErrUserExists = errors.New("user already registered")
var ErrUserNotFound = errors.New("user not found")
var ErrTokenRevoked = errors.New("token revoked")
var ErrStreamClosed = errors.New("comment stream closed")
