package config

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is the prefix of environment variables overriding file values.
// HUB_DATABASE__HOST maps to database.host.
const EnvPrefix = "HUB_"

// Config holds all configuration for the restaurant hub
type Config struct {
	Restaurant RestaurantConfig `koanf:"restaurant"`
	HTTP       HTTPConfig       `koanf:"http"`
	Log        LogConfig        `koanf:"log"`
	Database   DatabaseConfig   `koanf:"database"`
	RabbitMQ   RabbitMQConfig   `koanf:"rabbitmq"`
	NATS       NATSConfig       `koanf:"nats"`
	Feed       FeedConfig       `koanf:"feed"`
}

// RestaurantConfig holds the floor layout and the seed/output file locations
type RestaurantConfig struct {
	Tables          int    `koanf:"tables"`
	IngredientsFile string `koanf:"ingredients_file"`
	MenuFile        string `koanf:"menu_file"`
	StaffFile       string `koanf:"staff_file"`
	RequestsFile    string `koanf:"requests_file"`
	AuditFile       string `koanf:"audit_file"`
}

type HTTPConfig struct {
	Port int `koanf:"port"`
}

type LogConfig struct {
	Level string `koanf:"level"`
}

// DatabaseConfig holds database connection configuration
type DatabaseConfig struct {
	Enabled        bool   `koanf:"enabled"`
	Host           string `koanf:"host"`
	Port           int    `koanf:"port"`
	User           string `koanf:"user"`
	Password       string `koanf:"password"`
	Database       string `koanf:"database"`
	MigrationsPath string `koanf:"migrations_path"`
}

// RabbitMQConfig holds RabbitMQ connection configuration
type RabbitMQConfig struct {
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	User     string `koanf:"user"`
	Password string `koanf:"password"`
}

type NATSConfig struct {
	URL string `koanf:"url"`
}

// FeedConfig selects where dispatched events are mirrored: none, amqp or nats.
type FeedConfig struct {
	Driver string `koanf:"driver"`
}

const (
	FeedNone = "none"
	FeedAMQP = "amqp"
	FeedNATS = "nats"
)

func defaults() map[string]interface{} {
	return map[string]interface{}{
		"restaurant.tables":           20,
		"restaurant.ingredients_file": "ingredients.txt",
		"restaurant.menu_file":        "menu.txt",
		"restaurant.staff_file":       "employees.txt",
		"restaurant.requests_file":    "requests.txt",
		"restaurant.audit_file":       "logs.txt",
		"http.port":                   3000,
		"log.level":                   "info",
		"database.enabled":            false,
		"database.host":               "localhost",
		"database.port":               5432,
		"database.migrations_path":    "migrations",
		"rabbitmq.host":               "localhost",
		"rabbitmq.port":               5672,
		"nats.url":                    "nats://localhost:4222",
		"feed.driver":                 FeedNone,
	}
}

// Load reads configuration from a YAML file layered over defaults and under
// HUB_-prefixed environment variables. An empty filename skips the file.
func Load(filename string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if filename != "" {
		if err := k.Load(file.Provider(filename), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		key := strings.TrimPrefix(s, EnvPrefix)
		return strings.ReplaceAll(strings.ToLower(key), "__", ".")
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	config := &Config{}
	if err := k.Unmarshal("", config); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks values that would otherwise fail deep inside start-up.
func (c *Config) Validate() error {
	if c.Restaurant.Tables < 1 {
		return fmt.Errorf("restaurant.tables must be positive, got %d", c.Restaurant.Tables)
	}
	switch c.Feed.Driver {
	case FeedNone, FeedAMQP, FeedNATS:
	default:
		return fmt.Errorf("unknown feed driver: %s", c.Feed.Driver)
	}
	return nil
}

// DatabaseURL returns a PostgreSQL connection URL
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.Database.User, c.Database.Password, c.Database.Host, c.Database.Port, c.Database.Database)
}

// RabbitMQURL returns an AMQP connection URL
func (c *Config) RabbitMQURL() string {
	return fmt.Sprintf("amqp://%s:%s@%s:%d/",
		c.RabbitMQ.User, c.RabbitMQ.Password, c.RabbitMQ.Host, c.RabbitMQ.Port)
}
