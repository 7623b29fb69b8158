package storage

import "errors"

var (
	ErrUserExists   = errors.New("user already exists")
	ErrAdminExists  = errors.New("admin already exists")
	ErrUserNotFound = errors.New("user not found")
)

