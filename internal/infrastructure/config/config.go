package config

import (
	"context"
	"fmt"

	"github.com/sethvargo/go-envconfig"
)

// Gate modes for the admin surface. "lax" grants management access to any
// authenticated identity (the behavior the site has shipped with, relying on
// store-side policy for real enforcement); "strict" additionally requires
// the profile admin flag.
const (
	GateLax    = "lax"
	GateStrict = "strict"
)

type Config struct {
	Port      string `env:"PORT,       default=8080"`
	Env       string `env:"ENV,        default=development"`
	JWTSecret string `env:"JWT_SECRET"`
	LogLevel  string `env:"LOG_LEVEL,  default=info"`
	AdminGate string `env:"ADMIN_GATE, default=lax"`

	Mongo MongoConfig
	Redis RedisConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=portfolio"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,      default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,        default=0"`
	PoolSize int    `env:"REDIS_POOL_SIZE, default=0"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	if cfg.AdminGate != GateLax && cfg.AdminGate != GateStrict {
		panic(fmt.Sprintf("config: ADMIN_GATE must be %q or %q, got %q", GateLax, GateStrict, cfg.AdminGate))
	}
	return &cfg
}
