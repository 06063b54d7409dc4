package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	LogLevel    string  `yaml:"log-level" env:"SIEGE_LOG_LEVEL" env-default:"info"`
	HTTPAddr    string  `yaml:"http-addr" env:"SIEGE_HTTP_ADDR" env-default:":8080"`
	HistoryPath string  `yaml:"history-path" env:"SIEGE_HISTORY_PATH" env-default:""`
	Session     Session `yaml:"session"`
	Redis       Redis   `yaml:"redis"`
}

type Session struct {
	ID            string  `yaml:"id" env:"SIEGE_SESSION_ID" env-default:""`
	Size          int     `yaml:"size" env:"SIEGE_SIZE" env-default:"64"`
	Players       int     `yaml:"players" env:"SIEGE_PLAYERS" env-default:"4"`
	ZoneRadius    int     `yaml:"zone-radius" env:"SIEGE_ZONE_RADIUS" env-default:"3"`
	Density       float64 `yaml:"density" env:"SIEGE_DENSITY" env-default:"0.35"`
	Seed          int64   `yaml:"seed" env:"SIEGE_SEED" env-default:"42"`
	TPS           int     `yaml:"tps" env:"SIEGE_TPS" env-default:"10"`
	Workers       int     `yaml:"workers" env:"SIEGE_WORKERS" env-default:"1"`
	SnapshotEvery int     `yaml:"snapshot-every" env:"SIEGE_SNAPSHOT_EVERY" env-default:"100"`
}

type Redis struct {
	Enabled     bool          `yaml:"enabled" env:"SIEGE_REDIS_ENABLED" env-default:"false"`
	Host        string        `yaml:"host" env:"SIEGE_REDIS_HOST" env-default:"localhost"`
	Port        string        `yaml:"port" env:"SIEGE_REDIS_PORT" env-default:"6379"`
	SnapshotTTL time.Duration `yaml:"snapshot-ttl" env:"SIEGE_REDIS_SNAPSHOT_TTL" env-default:"24h"`
}

// MustLoad - load configuration from the yaml file at path, panics on failure.
func MustLoad(path string) *Config {
	conf, err := Load(path)
	if err != nil {
		panic(fmt.Errorf("unable to load config file: %w", err))
	}

	return conf
}

// Load reads path (yaml) with env overrides. An empty path reads env only.
func Load(path string) (*Config, error) {
	conf := &Config{}

	var err error
	if path == "" {
		err = cleanenv.ReadEnv(conf)
	} else {
		err = cleanenv.ReadConfig(path, conf)
	}
	if err != nil {
		return nil, err
	}

	if err = conf.Validate(); err != nil {
		return nil, err
	}

	return conf, nil
}

func (that *Config) Validate() error {
	switch that.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: log-level %q", ErrInvalidConfig, that.LogLevel)
	}
	if that.Session.Size <= 0 {
		return fmt.Errorf("%w: session size must be positive", ErrInvalidConfig)
	}
	if that.Session.TPS <= 0 {
		return fmt.Errorf("%w: session tps must be positive", ErrInvalidConfig)
	}
	if that.Session.SnapshotEvery < 0 {
		return fmt.Errorf("%w: snapshot-every must not be negative", ErrInvalidConfig)
	}
	return nil
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}
