package config

import (
	"fmt"
	"github.com/spf13/viper"
)

// FilterConfig holds the bounds for normalized monthly salaries. A posting whose max is at or
// above Ceiling, or whose min is at or below Floor, is dropped.
type FilterConfig struct {
	Ceiling int `mapstructure:"salary_ceiling" validate:"gt=0"`
	Floor   int `mapstructure:"salary_floor" validate:"gte=0"`
}

func (config FilterConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("filter.salary_ceiling", 100000)
	v.SetDefault("filter.salary_floor", 500)
}

func (config FilterConfig) validate() error {
	if err := validate.Struct(config); err != nil {
		return err
	}
	if config.Floor >= config.Ceiling {
		return fmt.Errorf("salary_floor (%d) must be less than salary_ceiling (%d)", config.Floor, config.Ceiling)
	}
	return nil
}
