package main

import (
	"flag"
	"fmt"

	"github.com/QiPanTanYi/banyan/server/internal/config"
)

const (
	defaultConfigPath = "config.yaml"
	envConfigPath     = "BANYAN_CONFIG"
)

// options - параметры командной строки. Непустые значения переопределяют
// файл конфигурации и переменные окружения.
type options struct {
	ConfigPath  string
	Port        string
	DatabaseDSN string
}

// parseFlags разбирает аргументы командной строки (без имени программы).
func parseFlags(args []string, lookupEnv func(string) (string, bool)) (*options, error) {
	opts := &options{}
	fs := flag.NewFlagSet("banyan-server", flag.ContinueOnError)

	fs.StringVar(&opts.ConfigPath, "config", "",
		fmt.Sprintf("Путь к YAML-файлу конфигурации (env: %s, default: %s)", envConfigPath, defaultConfigPath))
	fs.StringVar(&opts.Port, "port", "", "Порт HTTP-сервера (переопределяет server.port)")
	fs.StringVar(&opts.DatabaseDSN, "database-dsn", "", "Строка подключения к БД (переопределяет database.dsn)")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("ошибка разбора флагов: %w", err)
	}

	if opts.ConfigPath == "" {
		if value, ok := lookupEnv(envConfigPath); ok && value != "" {
			opts.ConfigPath = value
		} else {
			opts.ConfigPath = defaultConfigPath
		}
	}
	return opts, nil
}

// apply переносит заданные флаги в конфигурацию.
func (o *options) apply(cfg *config.Config) {
	if o.Port != "" {
		cfg.Server.Port = o.Port
	}
	if o.DatabaseDSN != "" {
		cfg.Database.DSN = o.DatabaseDSN
	}
}
