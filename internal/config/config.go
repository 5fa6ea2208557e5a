package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type ServerCfg struct {
	Port                string `mapstructure:"port"`
	ReadTimeoutSeconds  int    `mapstructure:"read_timeout_seconds"`
	WriteTimeoutSeconds int    `mapstructure:"write_timeout_seconds"`
	Development         bool   `mapstructure:"development"`
}

type MongoCfg struct {
	URI      string `mapstructure:"uri"`
	Database string `mapstructure:"database"`
}

type RedisCfg struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

type JwtCfg struct {
	Secret      string `mapstructure:"secret"`
	ExpiryHours int    `mapstructure:"expiry_hours"`
}

type EmailCfg struct {
	APIKey      string `mapstructure:"api_key"`
	SenderEmail string `mapstructure:"sender_email"`
	SenderName  string `mapstructure:"sender_name"`
}

type LimitsCfg struct {
	OTPPerWindow  int `mapstructure:"otp_per_window"`
	WindowSeconds int `mapstructure:"window_seconds"`
}

type Config struct {
	Server ServerCfg `mapstructure:"server"`
	Mongo  MongoCfg  `mapstructure:"mongo"`
	Redis  RedisCfg  `mapstructure:"redis"`
	JWT    JwtCfg    `mapstructure:"jwt"`
	Email  EmailCfg  `mapstructure:"email"`
	Limits LimitsCfg `mapstructure:"limits"`
	// Derived
	ReadTimeout   time.Duration
	WriteTimeout  time.Duration
	SessionTTL    time.Duration
	StoryTTL      time.Duration
	SweepInterval time.Duration
	LimitWindow   time.Duration
}

func Load(path string) (*Config, error) {
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	}
	v.AutomaticEnv()
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("server.port", "5000")
	v.SetDefault("server.read_timeout_seconds", 15)
	v.SetDefault("server.write_timeout_seconds", 15)
	v.SetDefault("mongo.uri", "mongodb://localhost:27017")
	v.SetDefault("mongo.database", "social")
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.prefix", "social")
	v.SetDefault("jwt.expiry_hours", 720) // 30 days
	v.SetDefault("limits.otp_per_window", 5)
	v.SetDefault("limits.window_seconds", 60)

	if path != "" {
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	}
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	cfg.ReadTimeout = time.Duration(cfg.Server.ReadTimeoutSeconds) * time.Second
	cfg.WriteTimeout = time.Duration(cfg.Server.WriteTimeoutSeconds) * time.Second
	cfg.SessionTTL = time.Duration(cfg.JWT.ExpiryHours) * time.Hour
	cfg.StoryTTL = 24 * time.Hour
	cfg.SweepInterval = 15 * time.Minute
	cfg.LimitWindow = time.Duration(cfg.Limits.WindowSeconds) * time.Second
	return &cfg, nil
}
