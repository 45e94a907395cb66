package config

import (
	"errors"
	"fmt"
	"github.com/spf13/viper"
)

type logLevel string

const (
	LevelInfo    logLevel = "INFO"
	LevelDebug   logLevel = "DEBUG"
	LevelWarning logLevel = "WARNING"
	LevelError   logLevel = "ERROR"
	LevelFatal   logLevel = "FATAL"
)

type logFormat string

const (
	FormatText logFormat = "text"
	FormatJSON logFormat = "json"
)

type LoggerConfig struct {
	LogLevel     logLevel  `mapstructure:"log_level"`
	Format       logFormat `mapstructure:"format"`
	OutputFile   string    `mapstructure:"output_file"`
	AppName      string    `mapstructure:"app_name"`
	LokiURL      string    `mapstructure:"loki_url"`
	LokiUser     string    `mapstructure:"loki_user"`
	LokiPassword string    `mapstructure:"loki_password"`
}

func (config LoggerConfig) validate() error {
	var errs []error

	switch config.LogLevel {
	case LevelInfo, LevelDebug, LevelWarning, LevelError, LevelFatal:
	default:
		errs = append(errs, fmt.Errorf("unknown log_level %q", config.LogLevel))
	}

	if config.Format != FormatText && config.Format != FormatJSON {
		errs = append(errs, fmt.Errorf("unknown format %q", config.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("multiple errors occurred: %w", errors.Join(errs...))
	}

	return nil
}

func (config LoggerConfig) bindEnvironmentVariables(v *viper.Viper) error {

	err := v.BindEnv("logger.output_file", "LOG_FILE")
	if err != nil {
		return err
	}

	err = v.BindEnv("logger.loki_url", "LOKI_URL")
	if err != nil {
		return err
	}

	err = v.BindEnv("logger.loki_user", "LOKI_USER")
	if err != nil {
		return err
	}

	err = v.BindEnv("logger.loki_password", "LOKI_PASSWORD")
	if err != nil {
		return err
	}

	err = v.BindEnv("logger.format", "LOG_FORMAT")
	if err != nil {
		return err
	}

	return v.BindEnv("logger.log_level", "LOG_LEVEL")
}
