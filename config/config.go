package config

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Config is the full application configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Email    EmailConfig    `mapstructure:"email"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port        string `mapstructure:"port"`
	Mode        string `mapstructure:"mode"`
	BaseURL     string `mapstructure:"base_url"`
	UploadDir   string `mapstructure:"upload_dir"`
	MaxUploadMB int64  `mapstructure:"max_upload_mb"`
}

// DatabaseConfig holds MySQL connection settings.
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	Charset  string `mapstructure:"charset"`
}

// JWTConfig holds token signing settings.
type JWTConfig struct {
	Secret      string        `mapstructure:"secret"`
	ExpireHours int           `mapstructure:"expire_hours"`
	ExpireTime  time.Duration `mapstructure:"-"`
}

// EmailConfig holds SMTP settings for contact-form notifications.
type EmailConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
	OwnerTo  string `mapstructure:"owner_to"` // recipient of contact-form notifications
}

// RedisConfig holds optional stats-cache settings.
type RedisConfig struct {
	Enabled         bool   `mapstructure:"enabled"`
	Addr            string `mapstructure:"addr"`
	Password        string `mapstructure:"password"`
	DB              int    `mapstructure:"db"`
	StatsTTLMinutes int    `mapstructure:"stats_ttl_minutes"`
}

// GlobalConfig is the process-wide configuration instance.
var GlobalConfig *Config

// LoadConfig loads configuration in layers: embedded defaults, then an
// optional external config file, then TRACKIFY_* environment variables.
// configPath may name an external file explicitly; otherwise the usual
// locations are searched.
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	// 1. Embedded default configuration.
	if err := v.ReadConfig(bytes.NewReader(DefaultConfigYAML)); err != nil {
		return nil, fmt.Errorf("read embedded config: %w", err)
	}

	// 2. Optional external config file merged on top.
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.MergeInConfig(); err != nil {
			logrus.Warnf("cannot read config file %s: %v", configPath, err)
		} else {
			logrus.Infof("merged external config file: %s", configPath)
		}
	} else {
		external := viper.New()
		external.SetConfigName("config")
		external.SetConfigType("yaml")
		external.AddConfigPath(".")
		external.AddConfigPath("./config")
		external.AddConfigPath("/etc/trackify")
		external.AddConfigPath("$HOME/.trackify")

		if err := external.ReadInConfig(); err == nil {
			if err := v.MergeConfigMap(external.AllSettings()); err != nil {
				logrus.Warnf("merge external config: %v", err)
			} else {
				logrus.Infof("merged external config file: %s", external.ConfigFileUsed())
			}
		}
	}

	// 3. Environment variable overrides, e.g. TRACKIFY_JWT_SECRET.
	v.SetEnvPrefix("TRACKIFY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	// Tokens are valid for 7 days unless configured otherwise.
	if cfg.JWT.ExpireHours <= 0 {
		cfg.JWT.ExpireHours = 168
	}
	cfg.JWT.ExpireTime = time.Duration(cfg.JWT.ExpireHours) * time.Hour

	if cfg.Server.UploadDir == "" {
		cfg.Server.UploadDir = "uploads"
	}
	if cfg.Server.MaxUploadMB <= 0 {
		cfg.Server.MaxUploadMB = 5
	}
	if cfg.Redis.StatsTTLMinutes <= 0 {
		cfg.Redis.StatsTTLMinutes = 5
	}

	GlobalConfig = &cfg
	return &cfg, nil
}

// MustLoadConfig loads configuration or panics.
func MustLoadConfig(configPath string) *Config {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		panic(fmt.Sprintf("load config: %v", err))
	}
	return cfg
}

// GetConfig returns the global configuration.
func GetConfig() *Config {
	if GlobalConfig == nil {
		panic("config not initialized, call LoadConfig first")
	}
	return GlobalConfig
}

// PrintConfig logs the active configuration, hiding credentials.
func PrintConfig() {
	if GlobalConfig == nil {
		return
	}
	logrus.Infof("server: %s (mode: %s)", GlobalConfig.Server.Port, GlobalConfig.Server.Mode)
	logrus.Infof("database: %s@%s:%s/%s",
		GlobalConfig.Database.Username,
		GlobalConfig.Database.Host,
		GlobalConfig.Database.Port,
		GlobalConfig.Database.DBName)
	logrus.Infof("email notifications: %v", GlobalConfig.Email.Enabled)
	logrus.Infof("redis stats cache: %v", GlobalConfig.Redis.Enabled)
}

// SafeErrorMessage returns the full error detail in debug mode and only the
// generic fallback in release mode, so internals never reach clients in
// production.
func SafeErrorMessage(err error, fallback string) string {
	if err == nil {
		return fallback
	}
	if GlobalConfig != nil && GlobalConfig.Server.Mode == "release" {
		return fallback
	}
	return err.Error()
}
