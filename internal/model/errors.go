package model

import "errors"

var (
	ErrInvalidFingerprint  = errors.New("invalid fingerprint for refresh token provided")
	ErrRefreshTokenExpired = errors.New("refresh token expired")
)
