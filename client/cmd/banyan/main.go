package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/QiPanTanYi/banyan/client/internal/api"
	"github.com/QiPanTanYi/banyan/client/internal/session"
	"github.com/QiPanTanYi/banyan/client/internal/tui"
)

// Переменные для версии и даты сборки, устанавливаются через ldflags.
//
//nolint:gochecknoglobals // Устанавливается через ldflags при сборке
var (
	version    = "dev"
	buildDate  = "unknown"
	commitHash = "N/A"
)

// startTUI подменяется в тестах.
//
//nolint:gochecknoglobals // Шов для тестов
var startTUI = tui.Start

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], environMap(os.Environ()), os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, environ map[string]string, stdout io.Writer) error {
	cfg, err := loadConfig(args, environ)
	if err != nil {
		return err
	}
	if cfg.Version {
		fmt.Fprintf(stdout, "Banyan ERP Client\nVersion: %s\nBuild Date: %s\nCommit Hash: %s\n",
			version, buildDate, commitHash)
		return nil
	}

	logger, err := newLogger(cfg.LogFile, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	var store session.Storage = &session.MemoryStorage{}
	if !cfg.NoPersist {
		store = session.NewFileStorage(cfg.SessionFile)
	}

	logger.Info("Запуск клиента Banyan ERP",
		zap.String("version", version),
		zap.String("server_url", cfg.ServerURL),
		zap.String("session_file", cfg.SessionFile),
		zap.Bool("persist", !cfg.NoPersist),
	)

	sess := session.New(api.NewHTTPClient(cfg.ServerURL), store, logger)
	if err = startTUI(ctx, sess, logger); err != nil {
		return err
	}
	logger.Info("Клиент завершил работу")
	return nil
}

// newLogger создает логгер, пишущий JSON в файл path. Терминал занят TUI,
// поэтому в stdout логи не выводятся.
func newLogger(path, level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(strings.ToLower(level))
	if err != nil {
		return nil, fmt.Errorf("неизвестный уровень логирования %q: %w", level, err)
	}
	if err = os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("не удалось создать каталог для логов: %w", err)
	}

	zapCfg := zap.NewProductionConfig()
	zapCfg.Level = zap.NewAtomicLevelAt(lvl)
	zapCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zapCfg.OutputPaths = []string{path}
	zapCfg.ErrorOutputPaths = []string{path}

	logger, err := zapCfg.Build()
	if err != nil {
		return nil, fmt.Errorf("ошибка создания логгера: %w", err)
	}
	return logger.With(zap.String("service", "banyan-client")), nil
}
