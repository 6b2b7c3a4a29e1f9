package repository

import "errors"

// Кастомные ошибки репозитория.
var (
	ErrUserNotFound  = errors.New("user not found")
	ErrUsernameTaken = errors.New("username already exists")
	ErrEmailTaken    = errors.New("email already registered")
)
