// Package logging создает zap-логгер сервера по секции logging конфигурации.
package logging

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/QiPanTanYi/banyan/server/internal/config"
)

// New создает логгер. Формат console включает человекочитаемый вывод для разработки,
// любой другой формат - JSON.
func New(cfg config.LoggingConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		return nil, fmt.Errorf("неизвестный уровень логирования %q: %w", cfg.Level, err)
	}

	var zapCfg zap.Config
	if strings.EqualFold(cfg.Format, "console") {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
		zapCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return nil, fmt.Errorf("ошибка создания логгера: %w", err)
	}
	return logger.With(zap.String("service", "banyan-server")), nil
}
