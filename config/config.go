// Package config loads storefront settings from an optional YAML file with
// environment overrides.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	DriverBadger = "badger"
	DriverRedis  = "redis"
	DriverMemory = "memory"
)

type Config struct {
	AppEnv     string           `yaml:"app_env"`
	LogLevel   string           `yaml:"log_level"`
	HTTP       HTTPConfig       `yaml:"http"`
	Database   DatabaseConfig   `yaml:"database"`
	LocalStore LocalStoreConfig `yaml:"local_store"`
	Session    SessionConfig    `yaml:"session"`
	WhatsApp   WhatsAppConfig   `yaml:"whatsapp"`
}

type HTTPConfig struct {
	Addr            string        `yaml:"addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type DatabaseConfig struct {
	URL string `yaml:"url"`
}

// LocalStoreConfig selects where per-session cart and comparison slots live.
type LocalStoreConfig struct {
	Driver    string        `yaml:"driver"`
	Path      string        `yaml:"path"`
	RedisAddr string        `yaml:"redis_addr"`
	RedisTTL  time.Duration `yaml:"redis_ttl"`
}

type SessionConfig struct {
	IdleTimeout   time.Duration `yaml:"idle_timeout"`
	SweepInterval time.Duration `yaml:"sweep_interval"`
}

type WhatsAppConfig struct {
	Phone    string `yaml:"phone"`
	Greeting string `yaml:"greeting"`
}

func Default() Config {
	return Config{
		AppEnv:   "dev",
		LogLevel: "info",
		HTTP: HTTPConfig{
			Addr:            ":8082",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    15 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		LocalStore: LocalStoreConfig{
			Driver:    DriverBadger,
			Path:      "./data/localstore",
			RedisAddr: "localhost:6379",
			RedisTTL:  30 * 24 * time.Hour,
		},
		Session: SessionConfig{
			IdleTimeout:   2 * time.Hour,
			SweepInterval: 5 * time.Minute,
		},
		WhatsApp: WhatsAppConfig{
			Greeting: "Hello!",
		},
	}
}

// Load reads path (skipped when empty), applies environment overrides and
// validates the result.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, errors.Wrapf(err, "read config %s", path)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, errors.Wrapf(err, "parse config %s", path)
		}
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		"STOREFRONT_HTTP_ADDR": &c.HTTP.Addr,
		"DATABASE_URL":         &c.Database.URL,
		"LOCALSTORE_DRIVER":    &c.LocalStore.Driver,
		"LOCALSTORE_PATH":      &c.LocalStore.Path,
		"REDIS_ADDR":           &c.LocalStore.RedisAddr,
		"LOG_LEVEL":            &c.LogLevel,
		"APP_ENV":              &c.AppEnv,
		"WHATSAPP_PHONE":       &c.WhatsApp.Phone,
		"WHATSAPP_GREETING":    &c.WhatsApp.Greeting,
	}
	for key, dst := range strs {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}

	durations := map[string]*time.Duration{
		"SESSION_IDLE_TIMEOUT": &c.Session.IdleTimeout,
		"REDIS_TTL":            &c.LocalStore.RedisTTL,
	}
	for key, dst := range durations {
		v, ok := lookup(key)
		if !ok || v == "" {
			continue
		}
		d, err := parseDuration(v)
		if err != nil {
			return errors.Wrapf(err, "%s", key)
		}
		*dst = d
	}
	return nil
}

// parseDuration accepts Go durations and bare seconds.
func parseDuration(v string) (time.Duration, error) {
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second, nil
	}
	return time.ParseDuration(v)
}

func (c Config) Validate() error {
	if c.HTTP.Addr == "" {
		return errors.New("http.addr is required")
	}
	switch c.LocalStore.Driver {
	case DriverBadger:
		if c.LocalStore.Path == "" {
			return errors.New("local_store.path is required for the badger driver")
		}
	case DriverRedis:
		if c.LocalStore.RedisAddr == "" {
			return errors.New("local_store.redis_addr is required for the redis driver")
		}
	case DriverMemory:
	default:
		return errors.Errorf("unknown local_store.driver %q", c.LocalStore.Driver)
	}
	if c.LocalStore.RedisTTL < 0 {
		return errors.New("local_store.redis_ttl must not be negative")
	}
	if c.Session.IdleTimeout <= 0 || c.Session.SweepInterval <= 0 {
		return errors.New("session timeouts must be positive")
	}
	return nil
}
