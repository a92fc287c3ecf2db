package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
	"github.com/mcdev12/livequiz/go/internal/dbconfig"
)

const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"

	AnswersPostgres = "postgres"
	AnswersRedis    = "redis"

	AuthJWT    = "jwt"
	AuthHeader = "header"
)

// Config is the gateway configuration. AnswersBackend is ignored with
// STORE=memory unless it is redis.
type Config struct {
	HTTPPort            string        `yaml:"http-port" env:"GATEWAY_PORT" env-default:"8081"`
	LogLevel            string        `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	LogFormat           string        `yaml:"log-format" env:"LOG_FORMAT" env-default:"console"`
	Store               string        `yaml:"store" env:"STORE" env-default:"postgres"`
	AnswersBackend      string        `yaml:"answers-backend" env:"ANSWERS_BACKEND" env-default:"postgres"`
	FixturesPath        string        `yaml:"fixtures-path" env:"FIXTURES_PATH"`
	RequireRegistration bool          `yaml:"require-registration" env:"REQUIRE_REGISTRATION" env-default:"false"`
	TickInterval        time.Duration `yaml:"tick-interval" env:"TICK_INTERVAL" env-default:"1s"`
	TournamentCacheTTL  time.Duration `yaml:"tournament-cache-ttl" env:"TOURNAMENT_CACHE_TTL" env-default:"30s"`
	AnswersTimeout      time.Duration `yaml:"answers-timeout" env:"ANSWERS_TIMEOUT" env-default:"3s"`
	ShutdownTimeout     time.Duration `yaml:"shutdown-timeout" env:"SHUTDOWN_TIMEOUT" env-default:"10s"`
	CORSAllowedOrigins  []string      `yaml:"cors-allowed-origins" env:"CORS_ALLOWED_ORIGINS" env-separator:"," env-default:"*"`

	// Migrate applies the embedded schema migrations at startup.
	Migrate bool `yaml:"db-migrate" env:"DB_MIGRATE" env-default:"false"`

	Auth  Auth            `yaml:"auth"`
	DB    dbconfig.Config `yaml:"db"`
	Redis Redis           `yaml:"redis"`
	NATS  NATS            `yaml:"nats"`
}

type Auth struct {
	Mode      string `yaml:"mode" env:"AUTH_MODE" env-default:"jwt"`
	JWTSecret string `yaml:"jwt-secret" env:"JWT_SECRET"`
	JWTIssuer string `yaml:"jwt-issuer" env:"JWT_ISSUER"`
}

type Redis struct {
	Addr     string `yaml:"addr" env:"REDIS_ADDR" env-default:"localhost:6379"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"REDIS_DB" env-default:"0"`
}

// NATS lifecycle publishing is disabled when URL is empty.
type NATS struct {
	URL        string `yaml:"url" env:"NATS_URL"`
	StreamName string `yaml:"stream-name" env:"NATS_STREAM" env-default:"LIVEQUIZ_EVENTS"`
}

// Load reads .env, then the optional YAML file at path, then the environment.
// Environment variables win over the file.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := &Config{}
	var err error
	if path != "" {
		err = cleanenv.ReadConfig(path, cfg)
	} else {
		err = cleanenv.ReadEnv(cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("unable to load config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.Store {
	case StorePostgres, StoreMemory:
	default:
		return fmt.Errorf("invalid STORE %q", c.Store)
	}

	switch c.AnswersBackend {
	case AnswersPostgres, AnswersRedis:
	default:
		return fmt.Errorf("invalid ANSWERS_BACKEND %q", c.AnswersBackend)
	}

	switch c.Auth.Mode {
	case AuthJWT:
		if c.Auth.JWTSecret == "" {
			return errors.New("JWT_SECRET is required when AUTH_MODE=jwt")
		}
	case AuthHeader:
	default:
		return fmt.Errorf("invalid AUTH_MODE %q", c.Auth.Mode)
	}

	if c.TickInterval <= 0 {
		return fmt.Errorf("TICK_INTERVAL must be positive, got %s", c.TickInterval)
	}
	return nil
}
