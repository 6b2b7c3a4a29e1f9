package repository

import (
	"context"
	"embed"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // Драйвер PostgreSQL, импортируем для регистрации
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const migrationsDir = "migrations"

// PoolConfig - параметры пула соединений.
type PoolConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// NewPostgresDB создает и возвращает новое подключение к PostgreSQL.
func NewPostgresDB(dsn string, pool PoolConfig, logger *zap.Logger) (*sqlx.DB, error) {
	logger.Info("Подключение к PostgreSQL...")

	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("ошибка подключения к БД: %w", err)
	}

	// Проверка соединения
	if err = db.Ping(); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			logger.Warn("Ошибка закрытия соединения с БД после неудачного пинга", zap.Error(closeErr))
		}
		return nil, fmt.Errorf("ошибка проверки соединения с БД (ping): %w", err)
	}

	db.SetMaxOpenConns(pool.MaxOpenConns)
	db.SetMaxIdleConns(pool.MaxIdleConns)
	db.SetConnMaxLifetime(pool.ConnMaxLifetime)
	db.SetConnMaxIdleTime(pool.ConnMaxLifetime)

	logger.Info("Подключение к PostgreSQL успешно установлено")
	return db, nil
}

// gooseUp - шов для подмены goose в тестах.
var gooseUp = func(ctx context.Context, db *sqlx.DB) error {
	goose.SetBaseFS(migrationsFS)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	return goose.UpContext(ctx, db.DB, migrationsDir)
}

// RunMigrations применяет встроенные SQL-миграции схемы.
func RunMigrations(ctx context.Context, db *sqlx.DB, logger *zap.Logger) error {
	if err := gooseUp(ctx, db); err != nil {
		return fmt.Errorf("ошибка применения миграций: %w", err)
	}
	logger.Info("Миграции БД успешно применены")
	return nil
}
