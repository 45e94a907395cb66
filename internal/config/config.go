package config

import (
	"errors"
	"fmt"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
	"os"
)

type Config struct {
	Logger    LoggerConfig    `mapstructure:"logger"`
	DB        DBConfig        `mapstructure:"db"`
	Crawler   CrawlerConfig   `mapstructure:"crawler"`
	Filter    FilterConfig    `mapstructure:"filter"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Notifier  NotifierConfig  `mapstructure:"notifier"`
}

var configFile = "./configs/config.yaml"

var validate = validator.New()

func Get() (*Config, error) {

	file := configFile
	if value, ok := os.LookupEnv("CONFIG_PATH"); ok && value != "" {
		file = value
	}

	return loadConfig(file)
}

func loadConfig(file string) (*Config, error) {

	v := viper.New()
	v.SetConfigFile(file)
	setDefaults(v)

	if err := bindEnvironmentVariables(v); err != nil {
		return nil, err
	}

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", file, err)
	}

	config := Config{}
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logger.log_level", LevelInfo)
	v.SetDefault("logger.format", FormatText)
	v.SetDefault("logger.app_name", "jobminer")
	v.SetDefault("db.connection_string", "jobminer.db")
	v.SetDefault("scheduler.enabled", true)
	v.SetDefault("scheduler.cron", "0 10 * * *")
	v.SetDefault("metrics.address", ":8080")

	CrawlerConfig{}.setDefaults(v)
	FilterConfig{}.setDefaults(v)
}

func bindEnvironmentVariables(v *viper.Viper) error {
	var errs []error

	sections := map[string]interface{ bindEnvironmentVariables(*viper.Viper) error }{
		"LoggerConfig":    LoggerConfig{},
		"DBConfig":        DBConfig{},
		"CrawlerConfig":   CrawlerConfig{},
		"SchedulerConfig": SchedulerConfig{},
		"MetricsConfig":   MetricsConfig{},
		"NotifierConfig":  NotifierConfig{},
	}

	for name, section := range sections {
		if err := section.bindEnvironmentVariables(v); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("multiple errors occurred: %w", errors.Join(errs...))
	}

	return nil
}

func (config Config) validate() error {
	var errs []error

	if err := config.DB.validate(); err != nil {
		errs = append(errs, fmt.Errorf("DBConfig: %w", err))
	}

	if err := config.Logger.validate(); err != nil {
		errs = append(errs, fmt.Errorf("LoggerConfig: %w", err))
	}

	if err := config.Crawler.validate(); err != nil {
		errs = append(errs, fmt.Errorf("CrawlerConfig: %w", err))
	}

	if err := config.Filter.validate(); err != nil {
		errs = append(errs, fmt.Errorf("FilterConfig: %w", err))
	}

	if err := config.Scheduler.validate(); err != nil {
		errs = append(errs, fmt.Errorf("SchedulerConfig: %w", err))
	}

	if err := config.Notifier.validate(); err != nil {
		errs = append(errs, fmt.Errorf("NotifierConfig: %w", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("multiple errors occurred: %w", errors.Join(errs...))
	}

	return nil
}
