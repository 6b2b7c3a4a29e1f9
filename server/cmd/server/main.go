package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/QiPanTanYi/banyan/server/internal/config"
	"github.com/QiPanTanYi/banyan/server/internal/handlers"
	"github.com/QiPanTanYi/banyan/server/internal/logging"
	"github.com/QiPanTanYi/banyan/server/internal/repository"
	"github.com/QiPanTanYi/banyan/server/internal/services"
)

// Швы для подмены в тестах.
var (
	newPostgresDB = repository.NewPostgresDB
	runMigrations = repository.RunMigrations
)

// dependencies - собранные зависимости сервера.
type dependencies struct {
	db     *sqlx.DB // nil для драйвера memory
	router http.Handler
}

// main - точка входа. Вызывает run и обрабатывает ошибку.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:]); err != nil {
		log.Printf("Ошибка выполнения сервера: %v", err)
		os.Exit(1) //nolint:gocritic // stop вызывать уже не нужно
	}
}

// run содержит основную логику запуска сервера и возвращает ошибку.
func run(ctx context.Context, args []string) error {
	opts, err := parseFlags(args, os.LookupEnv)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Запуск сервера Banyan ERP...",
		zap.String("config", opts.ConfigPath),
		zap.String("driver", cfg.Database.Driver))

	deps, err := setupDependencies(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("ошибка инициализации зависимостей: %w", err)
	}
	defer func() {
		if deps.db != nil {
			if closeErr := deps.db.Close(); closeErr != nil {
				logger.Warn("Ошибка закрытия соединения с БД", zap.Error(closeErr))
			}
		}
	}()

	server := &http.Server{
		Addr:         net.JoinHostPort("", cfg.Server.Port),
		Handler:      deps.router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return serve(ctx, server, cfg.Server.ShutdownTimeout, logger)
}

// loadConfig читает конфигурацию и применяет поверх нее флаги.
func loadConfig(opts *options) (*config.Config, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	opts.apply(cfg)
	if err = cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setupDependencies собирает хранилище, сервисы и роутер в порядке зависимостей.
func setupDependencies(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*dependencies, error) {
	deps := &dependencies{}

	// 1. Хранилище пользователей
	var userRepo repository.UserRepository
	switch cfg.Database.Driver {
	case config.DriverMemory:
		logger.Warn("Используется хранилище в памяти, данные не сохраняются между запусками")
		userRepo = repository.NewMemoryUserRepository()
	default:
		db, err := newPostgresDB(cfg.Database.DSN, repository.PoolConfig{
			MaxOpenConns:    cfg.Database.MaxOpenConns,
			MaxIdleConns:    cfg.Database.MaxIdleConns,
			ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("ошибка инициализации БД: %w", err)
		}
		if cfg.Database.Migrate {
			if err = runMigrations(ctx, db, logger); err != nil {
				_ = db.Close()
				return nil, err
			}
		}
		deps.db = db
		userRepo = repository.NewPostgresUserRepository(db, logger)
	}

	// 2. Сервисы
	tokens := services.NewTokenService(services.TokenConfig{
		AccessSecret:  cfg.JWT.Secret,
		AccessTTL:     cfg.JWT.ExpiresIn,
		RefreshSecret: cfg.JWT.RefreshSecret,
		RefreshTTL:    cfg.JWT.RefreshExpiresIn,
		Issuer:        cfg.JWT.Issuer,
	})
	authService := services.NewAuthService(userRepo, tokens, logger)

	// 3. Обработчики и роутер
	deps.router = handlers.NewRouter(handlers.RouterDeps{
		Auth:        handlers.NewAuthHandler(authService, logger),
		Credentials: authService,
		Tokens:      tokens,
		Logger:      logger,
	})
	return deps, nil
}

// serve запускает сервер и корректно останавливает его при отмене ctx.
func serve(ctx context.Context, server *http.Server, shutdownTimeout time.Duration, logger *zap.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP-сервер запущен", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("ошибка запуска HTTP-сервера: %w", err)
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Получен сигнал остановки, завершаем работу...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("ошибка остановки HTTP-сервера: %w", err)
	}
	logger.Info("Сервер остановлен")
	return <-errCh
}
