package config

import (
	"fmt"
	"github.com/spf13/viper"
)

type NotifierConfig struct {
	TelegramToken  string `mapstructure:"telegram_token"`
	TelegramChatID int64  `mapstructure:"telegram_chat_id"`
}

func (config NotifierConfig) Enabled() bool {
	return config.TelegramToken != ""
}

func (config NotifierConfig) validate() error {
	if config.Enabled() && config.TelegramChatID == 0 {
		return fmt.Errorf("missing variable: telegram_chat_id is required when telegram_token is set")
	}
	return nil
}

func (config NotifierConfig) bindEnvironmentVariables(v *viper.Viper) error {
	if err := v.BindEnv("notifier.telegram_token", "TG_TOKEN"); err != nil {
		return err
	}
	return v.BindEnv("notifier.telegram_chat_id", "TG_CHAT_ID")
}
