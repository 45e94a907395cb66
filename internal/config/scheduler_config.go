package config

import (
	"fmt"
	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"
)

type SchedulerConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	Cron       string `mapstructure:"cron"`
	RunOnStart bool   `mapstructure:"run_on_start"`
}

func (config SchedulerConfig) validate() error {
	if !config.Enabled {
		return nil
	}
	if _, err := cron.ParseStandard(config.Cron); err != nil {
		return fmt.Errorf("invalid cron spec %q: %w", config.Cron, err)
	}
	return nil
}

func (config SchedulerConfig) bindEnvironmentVariables(v *viper.Viper) error {
	if err := v.BindEnv("scheduler.enabled", "SCHEDULER_ENABLED"); err != nil {
		return err
	}
	return v.BindEnv("scheduler.cron", "SCHEDULER_CRON")
}
