package auth

import (
	"fmt"

	"github.com/spf13/viper"
)

type Config struct {
	Secret          string `mapstructure:"Secret"`
	TokenTTLMinutes int    `mapstructure:"TokenTTLMinutes"`
	CallbackSecret  string `mapstructure:"CallbackSecret"`
}

func NewConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.BindEnv("Secret", "AUTH_SECRET")
	v.BindEnv("TokenTTLMinutes", "AUTH_TOKEN_TTL_MINUTES")
	v.BindEnv("CallbackSecret", "AUTH_CALLBACK_SECRET")

	if err := v.ReadInConfig(); err != nil {
		fmt.Printf("Warning: using only environment variables: %v\n", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("cannot unmarshal config: %w", err)
	}

	if cfg.Secret == "" {
		cfg.Secret = v.GetString("AUTH_SECRET")
	}
	if cfg.Secret == "" {
		return nil, fmt.Errorf("auth secret is required")
	}
	if cfg.CallbackSecret == "" {
		cfg.CallbackSecret = v.GetString("AUTH_CALLBACK_SECRET")
	}
	if cfg.TokenTTLMinutes == 0 {
		cfg.TokenTTLMinutes = 60
	}

	return &cfg, nil
}
