package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
)

const (
	defaultServerURL   = "http://localhost:3001"
	sessionDirName     = "banyan"
	sessionFileName    = "session.json"
	fallbackSessionDir = ".banyan"
)

// clientConfig - настройки клиента. Флаги переопределяют переменные окружения.
type clientConfig struct {
	ServerURL   string `env:"BANYAN_SERVER_URL" envDefault:"http://localhost:3001"`
	SessionFile string `env:"BANYAN_SESSION_FILE"`
	NoPersist   bool   `env:"BANYAN_NO_PERSIST"`
	LogFile     string `env:"BANYAN_CLIENT_LOG" envDefault:"logs/client.log"`
	LogLevel    string `env:"BANYAN_CLIENT_LOG_LEVEL" envDefault:"info"`
	Version     bool   `env:"-"`
}

// loadConfig собирает настройки из окружения environ и аргументов args.
func loadConfig(args []string, environ map[string]string) (*clientConfig, error) {
	if environ == nil {
		environ = map[string]string{}
	}
	cfg := &clientConfig{}
	if err := env.ParseWithOptions(cfg, env.Options{Environment: environ}); err != nil {
		return nil, fmt.Errorf("ошибка чтения переменных окружения: %w", err)
	}

	fs := flag.NewFlagSet("banyan", flag.ContinueOnError)
	fs.StringVar(&cfg.ServerURL, "server-url", cfg.ServerURL, "URL сервера Banyan ERP (env: BANYAN_SERVER_URL)")
	fs.StringVar(&cfg.SessionFile, "session-file", cfg.SessionFile, "Файл сохраненной сессии (env: BANYAN_SESSION_FILE)")
	fs.BoolVar(&cfg.NoPersist, "no-persist", cfg.NoPersist, "Не сохранять сессию на диск")
	fs.StringVar(&cfg.LogFile, "log-file", cfg.LogFile, "Файл журнала клиента")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Уровень журнала: debug, info, warn, error")
	fs.BoolVar(&cfg.Version, "version", false, "Показать версию и дату сборки")
	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("ошибка разбора флагов: %w", err)
	}

	if cfg.ServerURL == "" {
		cfg.ServerURL = defaultServerURL
	}
	if cfg.SessionFile == "" {
		cfg.SessionFile = defaultSessionFile()
	}
	return cfg, nil
}

// defaultSessionFile возвращает путь в пользовательском каталоге настроек.
func defaultSessionFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(fallbackSessionDir, sessionFileName)
	}
	return filepath.Join(dir, sessionDirName, sessionFileName)
}

// environMap преобразует os.Environ() в карту для env.Options.
func environMap(environ []string) map[string]string {
	return env.ToMap(environ)
}
