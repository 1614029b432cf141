package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pyama86/YASE/domain/entity"
	"github.com/spf13/viper"
)

func NewConfigRepository(path string) (*Config, error) {
	viper.SetConfigFile(path)

	viper.AutomaticEnv()

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	viper.SetDefault("cooldown_hours", 24)
	viper.SetDefault("history_file", "escalation_history.json")

	err := viper.ReadInConfig()
	if err != nil {
		return nil, fmt.Errorf("read config error: %w", err)
	}

	var c Config
	err = viper.Unmarshal(&c)
	if err != nil {
		return nil, fmt.Errorf("unmarshal config error: %w", err)
	}
	valid := validator.New()
	if err = valid.Struct(c); err != nil {
		return nil, fmt.Errorf("validate config error: %w", err)
	}

	return &c, nil
}

type Config struct {
	RuleList      []entity.Rule `mapstructure:"rules" validate:"required,min=1,dive"`
	CooldownHours int           `mapstructure:"cooldown_hours" validate:"gte=0"`
	HistoryFile   string        `mapstructure:"history_file" validate:"required"`
}

func (c *Config) Rules(_ context.Context) ([]entity.Rule, error) {
	var rules []entity.Rule
	for _, rule := range c.RuleList {
		if rule.Disabled {
			continue
		}
		rules = append(rules, rule)
	}
	if len(rules) == 0 {
		return nil, fmt.Errorf("no enabled rules")
	}
	return rules, nil
}

func (c *Config) CooldownWindow(_ context.Context) time.Duration {
	return time.Duration(c.CooldownHours) * time.Hour
}

func (c *Config) HistoryFilePath() string {
	return c.HistoryFile
}
