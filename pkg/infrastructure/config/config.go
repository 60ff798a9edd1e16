// Package config carrega a configuração do serviço a partir de variáveis de ambiente.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Drivers de persistência aceitos em SERVICI_STORE_DRIVER.
const (
	DriverMemory   = "memory"
	DriverRedis    = "redis"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	AppName        string        `env:"SERVICI_APP_NAME" envDefault:"servici"`
	HTTPAddr       string        `env:"SERVICI_HTTP_ADDR" envDefault:":8080"`
	RequestTimeout time.Duration `env:"SERVICI_REQUEST_TIMEOUT" envDefault:"10s"`
	EntityID       uint32        `env:"SERVICI_ENTITY_ID" envDefault:"1"`
	// InstanceID identifica a instância nos grupos de resposta de kafka e redis.
	InstanceID string `env:"SERVICI_INSTANCE_ID"`

	StoreDriver string `env:"SERVICI_STORE_DRIVER" envDefault:"memory"`
	PostgresDSN string `env:"SERVICI_POSTGRES_DSN" envDefault:"host=localhost user=servici password=servici dbname=servici port=5432 sslmode=disable TimeZone=UTC"`
	SQLitePath  string `env:"SERVICI_SQLITE_PATH" envDefault:"servici.db"`

	RedisAddr     string `env:"SERVICI_REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"SERVICI_REDIS_PASSWORD"`
	RedisDB       int    `env:"SERVICI_REDIS_DB" envDefault:"0"`

	KafkaBrokers       []string `env:"SERVICI_KAFKA_BROKERS" envSeparator:"," envDefault:"localhost:9092"`
	KafkaConsumerGroup string   `env:"SERVICI_KAFKA_CONSUMER_GROUP" envDefault:"servici"`
}

// ParseEnv preenche target a partir do ambiente.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load lê os arquivos .env informados (ausentes são ignorados) e depois o ambiente.
// Variáveis já definidas no processo têm precedência sobre o arquivo.
func Load(envFiles ...string) (Config, error) {
	for _, file := range envFiles {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", file, err)
		}
	}

	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Instance devolve InstanceID ou, se vazio, o hostname da máquina.
func (c Config) Instance() string {
	if c.InstanceID != "" {
		return c.InstanceID
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return "local"
}

func (c Config) Validate() error {
	switch c.StoreDriver {
	case DriverMemory, DriverRedis, DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("unknown store driver %q", c.StoreDriver)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be positive, got %s", c.RequestTimeout)
	}
	return nil
}
