package config

import (
	"fmt"
	"github.com/spf13/viper"
	"time"
)

type CrawlerConfig struct {
	SourceName        string        `mapstructure:"source_name" validate:"required,max=100"`
	SourceURL         string        `mapstructure:"source_url" validate:"omitempty,url"`
	BaseURL           string        `mapstructure:"base_url" validate:"required,url"`
	CityCode          string        `mapstructure:"city_code" validate:"required,numeric"`
	Keywords          []string      `mapstructure:"keywords" validate:"required,min=1,dive,required"`
	PagesPerKeyword   int           `mapstructure:"pages_per_keyword" validate:"gte=1"`
	MaxRetries        int           `mapstructure:"max_retries" validate:"gte=1"`
	BackoffBase       float64       `mapstructure:"backoff_base" validate:"gt=1"`
	Timeout           time.Duration `mapstructure:"timeout" validate:"gt=0"`
	JitterMin         time.Duration `mapstructure:"jitter_min" validate:"gte=0"`
	JitterMax         time.Duration `mapstructure:"jitter_max" validate:"gte=0"`
	RequestsPerSecond float32       `mapstructure:"requests_per_second" validate:"gte=0"`
	UserAgents        []string      `mapstructure:"user_agents"`
	Cookie            string        `mapstructure:"cookie"`
}

func (config CrawlerConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("crawler.source_name", "Boss直聘JSON")
	v.SetDefault("crawler.source_url", "https://www.zhipin.com")
	v.SetDefault("crawler.base_url", "https://www.zhipin.com/wapi/zpgeek/search/joblist.json")
	v.SetDefault("crawler.city_code", "100010000")
	v.SetDefault("crawler.pages_per_keyword", 2)
	v.SetDefault("crawler.max_retries", 3)
	v.SetDefault("crawler.backoff_base", 2.0)
	v.SetDefault("crawler.timeout", 10*time.Second)
	v.SetDefault("crawler.jitter_min", 1500*time.Millisecond)
	v.SetDefault("crawler.jitter_max", 3*time.Second)
}

func (config CrawlerConfig) validate() error {

	if err := validate.Struct(config); err != nil {
		return err
	}

	if config.JitterMax < config.JitterMin {
		return fmt.Errorf("jitter_max (%v) must not be less than jitter_min (%v)", config.JitterMax, config.JitterMin)
	}

	return nil
}

func (config CrawlerConfig) bindEnvironmentVariables(v *viper.Viper) error {
	bindings := map[string]string{
		"crawler.keywords":          "CRAWLER_KEYWORDS",
		"crawler.pages_per_keyword": "CRAWLER_PAGES",
		"crawler.max_retries":       "CRAWLER_MAX_RETRIES",
		"crawler.city_code":         "CRAWLER_CITY_CODE",
		"crawler.cookie":            "CRAWLER_COOKIE",
	}

	for key, env := range bindings {
		if err := v.BindEnv(key, env); err != nil {
			return err
		}
	}
	return nil
}
