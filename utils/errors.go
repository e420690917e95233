package utils

import "errors"

var (
	ErrNoPermission    = errors.New("you do not have permission to perform this action")
	ErrNotHostelMember = errors.New("no role binding for this hostel")
	ErrInvalidToken    = errors.New("invalid or expired token")
)
