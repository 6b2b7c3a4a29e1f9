package repository

import (
	"context"

	"github.com/jmoiron/sqlx"
)

// SetGooseUp подменяет запуск goose и возвращает функцию восстановления.
func SetGooseUp(fn func(ctx context.Context, db *sqlx.DB) error) func() {
	prev := gooseUp
	gooseUp = fn
	return func() { gooseUp = prev }
}
