package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	UsersDriverSQLite   = "sqlite"
	UsersDriverPostgres = "postgres"
)

type Config struct {
	LogLevel     string        `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	HTTPPort     string        `yaml:"http-port" env:"HTTP_PORT" env-default:"9090"`
	Redis        Redis         `yaml:"redis"`
	Users        Users         `yaml:"users"`
	NATS         NATS          `yaml:"nats"`
	JWTSecretKey string        `yaml:"jwt-secret-key" env:"JWT_SECRET_KEY" env-required:"true"`
	TokenTTL     time.Duration `yaml:"token-ttl" env:"TOKEN_TTL" env-default:"24h"`
}

type Redis struct {
	Host     string `yaml:"host" env:"REDIS_HOST" env-default:"localhost"`
	Port     string `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"REDIS_DB" env-default:"0"`
}

// Users selects the player directory backend.
type Users struct {
	Driver      string `yaml:"driver" env:"USERS_DRIVER" env-default:"sqlite"`
	SQLitePath  string `yaml:"sqlite-path" env:"USERS_SQLITE_PATH" env-default:"users.db"`
	PostgresDSN string `yaml:"postgres-dsn" env:"USERS_POSTGRES_DSN"`
}

// NATS is optional, an empty URL disables forwarding events to the broker.
type NATS struct {
	URL           string `yaml:"url" env:"NATS_URL"`
	SubjectPrefix string `yaml:"subject-prefix" env:"NATS_SUBJECT_PREFIX" env-default:"tictactoe"`
}

// MustLoad - load all configurations in config.yml file.
func MustLoad(path string) *Config {
	config, err := Load(path)
	if err != nil {
		panic(err)
	}

	return config
}

func Load(path string) (*Config, error) {
	config := &Config{}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		return nil, fmt.Errorf("unable to load config file: %w", err)
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (that *Config) validate() error {
	switch that.Users.Driver {
	case UsersDriverSQLite:
	case UsersDriverPostgres:
		if that.Users.PostgresDSN == "" {
			return fmt.Errorf("users.postgres-dsn is required for driver %q", UsersDriverPostgres)
		}
	default:
		return fmt.Errorf("unknown users.driver %q", that.Users.Driver)
	}

	return nil
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}
