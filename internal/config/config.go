// Package config provides configuration management for the application.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	RabbitMQ RabbitMQConfig
	Auth     AuthConfig
	Storage  StorageConfig
	Groq     GroqConfig
	Arena    ArenaConfig
	Snapshot SnapshotConfig
	Logging  LoggingConfig
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	Port            int
	ShutdownTimeout time.Duration
	CORSOrigin      string
}

// DatabaseConfig contains database connection configuration.
type DatabaseConfig struct {
	Host           string
	Name           string
	User           string
	Password       string
	SSLMode        string
	Port           int
	MaxConnections int
	MinConnections int
	MaxIdleTime    time.Duration
	MaxLifetime    time.Duration
}

// RedisConfig contains the voted-set cache connection configuration.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// RabbitMQConfig contains the engagement event publisher configuration.
// An empty Host disables publishing.
type RabbitMQConfig struct {
	Host       string
	User       string
	Password   string
	Exchange   string
	RoutingKey string
	Port       int
}

// AuthConfig contains the auth collaborator configuration.
type AuthConfig struct {
	BaseURL   string
	AnonKey   string
	JWTSecret string
}

// StorageConfig contains the object storage collaborator configuration.
type StorageConfig struct {
	BaseURL      string
	VideoBucket  string
	AvatarBucket string
}

// GroqConfig contains the text-generation collaborator configuration.
// An empty APIKey disables AI topic generation; the engine falls back to
// the deterministic daily shuffle.
type GroqConfig struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// ArenaConfig contains arena session tuning.
type ArenaConfig struct {
	PointsPerUpvote int
	XPPerVote       int
}

// SnapshotConfig contains the topic snapshot persistence settings.
type SnapshotConfig struct {
	Path string
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level string
	File  string
}

// Load loads configuration from file and environment variables.
func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	setDefaults()

	viper.AutomaticEnv()
	viper.SetEnvPrefix("DOIT")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found, use defaults and env vars
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults() {
	// Server
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.shutdowntimeout", 30*time.Second)
	viper.SetDefault("server.corsorigin", "*")

	// Database
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.name", "doit_arena")
	viper.SetDefault("database.user", "postgres")
	viper.SetDefault("database.password", "postgres")
	viper.SetDefault("database.sslmode", "disable")
	viper.SetDefault("database.maxconnections", 10)
	viper.SetDefault("database.minconnections", 5)
	viper.SetDefault("database.maxidletime", 10*time.Minute)
	viper.SetDefault("database.maxlifetime", 1*time.Hour)

	// Redis
	viper.SetDefault("redis.addr", "localhost:6379")
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)

	// RabbitMQ (disabled unless host is set)
	viper.SetDefault("rabbitmq.host", "")
	viper.SetDefault("rabbitmq.port", 5672)
	viper.SetDefault("rabbitmq.user", "guest")
	viper.SetDefault("rabbitmq.password", "guest")
	viper.SetDefault("rabbitmq.exchange", "doit.engagement")
	viper.SetDefault("rabbitmq.routingkey", "engagement")

	// Auth collaborator
	viper.SetDefault("auth.baseurl", "http://localhost:9999")
	viper.SetDefault("auth.anonkey", "")
	viper.SetDefault("auth.jwtsecret", "")

	// Object storage collaborator
	viper.SetDefault("storage.baseurl", "http://localhost:9000")
	viper.SetDefault("storage.videobucket", "videos")
	viper.SetDefault("storage.avatarbucket", "avatars")

	// Groq text generation
	viper.SetDefault("groq.baseurl", "https://api.groq.com/openai/v1")
	viper.SetDefault("groq.apikey", "")
	viper.SetDefault("groq.model", "llama-3.1-8b-instant")
	viper.SetDefault("groq.timeout", 60*time.Second)

	// Arena
	viper.SetDefault("arena.pointsperupvote", 10)
	viper.SetDefault("arena.xppervote", 10)

	// Snapshot
	viper.SetDefault("snapshot.path", "data/topics.json")

	// Logging
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.file", "")
}
