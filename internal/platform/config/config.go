package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Server captures process level configuration.
type Server struct {
	Addr          string
	LogLevel      string
	JWTSigningKey string
	JWTIssuer     string
	JWTAudience   string
	DatabaseURL   string
	Redis         RedisConfig
	Kafka         KafkaConfig
	Registry      RegistryConfig
}

// RedisConfig configures the Redis fee ledger. An empty URL disables it.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig configures the audit sink. No brokers keeps audit in memory.
type KafkaConfig struct {
	Brokers    []string
	AuditTopic string
}

// RegistryConfig holds the bootstrap values applied at startup.
type RegistryConfig struct {
	// Authority, when set, is installed through the regular write-once path.
	Authority       string
	MaxProofs       *uint64
	VerificationFee *uint64
	BlockInterval   time.Duration
	GenesisTime     time.Time
}

// DefaultBlockInterval approximates one chain block.
const DefaultBlockInterval = 10 * time.Minute

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() (Server, error) {
	addr := os.Getenv("REGISTRY_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Use a default for development - should be overridden in production
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	cfg := Server{
		Addr:          addr,
		LogLevel:      envOr("LOG_LEVEL", "info"),
		JWTSigningKey: jwtSigningKey,
		JWTIssuer:     envOr("JWT_ISSUER", "proofregistry"),
		JWTAudience:   envOr("JWT_AUDIENCE", "proofregistry"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		Kafka: KafkaConfig{
			Brokers:    splitList(os.Getenv("KAFKA_BROKERS")),
			AuditTopic: envOr("AUDIT_TOPIC", "registry.audit"),
		},
		Registry: RegistryConfig{
			Authority: os.Getenv("REGISTRY_AUTHORITY"),
		},
	}

	var err error
	if cfg.Redis, err = redisFromEnv(); err != nil {
		return Server{}, err
	}
	if cfg.Registry.MaxProofs, err = optionalUint("REGISTRY_MAX_PROOFS"); err != nil {
		return Server{}, err
	}
	if cfg.Registry.VerificationFee, err = optionalUint("REGISTRY_VERIFICATION_FEE"); err != nil {
		return Server{}, err
	}
	if cfg.Registry.BlockInterval, err = duration("BLOCK_INTERVAL", DefaultBlockInterval); err != nil {
		return Server{}, err
	}
	if cfg.Registry.BlockInterval <= 0 {
		return Server{}, fmt.Errorf("BLOCK_INTERVAL must be positive")
	}
	if raw := os.Getenv("GENESIS_TIME"); raw != "" {
		if cfg.Registry.GenesisTime, err = time.Parse(time.RFC3339, raw); err != nil {
			return Server{}, fmt.Errorf("parse GENESIS_TIME: %w", err)
		}
	} else {
		cfg.Registry.GenesisTime = time.Now().UTC()
	}

	return cfg, nil
}

func redisFromEnv() (RedisConfig, error) {
	cfg := RedisConfig{URL: os.Getenv("REDIS_URL")}
	var err error
	if cfg.PoolSize, err = integer("REDIS_POOL_SIZE", 10); err != nil {
		return RedisConfig{}, err
	}
	if cfg.MinIdleConns, err = integer("REDIS_MIN_IDLE_CONNS", 2); err != nil {
		return RedisConfig{}, err
	}
	if cfg.DialTimeout, err = duration("REDIS_DIAL_TIMEOUT", 5*time.Second); err != nil {
		return RedisConfig{}, err
	}
	if cfg.ReadTimeout, err = duration("REDIS_READ_TIMEOUT", 3*time.Second); err != nil {
		return RedisConfig{}, err
	}
	if cfg.WriteTimeout, err = duration("REDIS_WRITE_TIMEOUT", 3*time.Second); err != nil {
		return RedisConfig{}, err
	}
	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func optionalUint(key string) (*uint64, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", key, err)
	}
	return &v, nil
}

func integer(key string, fallback int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return v, nil
}

func duration(key string, fallback time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return v, nil
}
