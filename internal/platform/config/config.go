// Copyright (c) 2026 Kinora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package config handles application-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct, providing early validation and default values. A local '.env' file
is loaded first when present, so development setups do not need exported vars.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Architecture:

  - Immutability: Once loaded, configuration is read-only.
  - DI-Friendly: Passed to core components (DB, Redis, NATS) via constructors.
  - Zero Hidden State: No global variables are used to store config.
*/
package config

import (
	"errors"
	"fmt"
	"net/netip"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/taibuivan/kinora/internal/platform/sec"
)

// Persistence backends.
const (
	PersistenceMemory   = "memory"
	PersistencePostgres = "postgres"
	PersistenceRedis    = "redis"
)

// Seed sources.
const (
	SeedBuiltin = "builtin"
	SeedHosted  = "hosted"
	SeedNone    = "none"
)

// # Configuration Schema

// Config holds all runtime configuration for the Kinora API server.
type Config struct {

	// Server settings
	ServerPort  string `env:"SERVER_PORT"  envDefault:"8080"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// Cross-Origin Resource Sharing
	AllowedOriginSuffix string `env:"ALLOWED_ORIGIN_SUFFIX" envDefault:".kinora.app"`

	// TrustedProxies lists the CIDRs or addresses whose X-Forwarded-For and
	// X-Real-IP headers are believed. Empty means every request is keyed on
	// its connection address.
	TrustedProxies []string `env:"TRUSTED_PROXIES" envSeparator:","`

	// Snapshot persistence
	Persistence       string `env:"PERSISTENCE"         envDefault:"memory"`
	PersistOnMutation bool   `env:"PERSIST_ON_MUTATION" envDefault:"true"`

	// Relational Database (PostgreSQL)
	DatabaseURL string `env:"DATABASE_URL"`

	// MigrationPath is the filesystem path to the SQL migrations directory.
	MigrationPath string `env:"MIGRATION_PATH" envDefault:"./data/migrations"`

	// Key-Value Store (Redis)
	RedisURL         string `env:"REDIS_URL"`
	RedisSnapshotKey string `env:"REDIS_SNAPSHOT_KEY" envDefault:"kinora:catalog:snapshot"`

	// Seed source used when persistence holds no catalog
	SeedSource string `env:"SEED_SOURCE" envDefault:"builtin"`

	// Hosted content backend (Sanity)
	SanityProjectID  string `env:"SANITY_PROJECT_ID"  envDefault:"dm7gnw8i"`
	SanityDataset    string `env:"SANITY_DATASET"     envDefault:"production"`
	SanityAPIVersion string `env:"SANITY_API_VERSION" envDefault:"2023-05-03"`
	SanityUseCDN     bool   `env:"SANITY_USE_CDN"     envDefault:"true"`
	SanityToken      string `env:"SANITY_TOKEN"`

	// Change events (NATS JetStream); empty disables publishing
	NatsURL string `env:"NATS_URL"`

	// Admin account
	AdminUsername     string `env:"ADMIN_USERNAME" envDefault:"admin"`
	AdminPasswordHash string `env:"ADMIN_PASSWORD_HASH"`

	// Cryptographic keys for token signing; empty paths use an ephemeral key pair
	JWTPrivKeyPath string        `env:"JWT_PRIVATE_KEY_PATH"`
	JWTPubKeyPath  string        `env:"JWT_PUBLIC_KEY_PATH"`
	AccessTokenTTL time.Duration `env:"ACCESS_TOKEN_TTL" envDefault:"1h"`
}

// # Configuration Loading

// Load parses environment variables into a [Config] struct.
func Load() (*Config, error) {

	// Pick up a local .env file; real environment variables take precedence.
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("config: failed to load .env: %w", err)
		}
	}

	return Parse()
}

// Parse maps the current process environment into a [Config] and validates it.
func Parse() (*Config, error) {

	// Initialize an empty config struct
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate enforces cross-field requirements that struct tags cannot express.
func (c *Config) Validate() error {
	var errs []error

	switch c.Persistence {
	case PersistenceMemory:
	case PersistencePostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required when PERSISTENCE=postgres"))
		}
	case PersistenceRedis:
		if c.RedisURL == "" {
			errs = append(errs, errors.New("REDIS_URL is required when PERSISTENCE=redis"))
		}
	default:
		errs = append(errs, fmt.Errorf("PERSISTENCE must be one of memory, postgres, redis (got %q)", c.Persistence))
	}

	switch c.SeedSource {
	case SeedBuiltin, SeedNone:
	case SeedHosted:
		if c.SanityProjectID == "" || c.SanityDataset == "" {
			errs = append(errs, errors.New("SANITY_PROJECT_ID and SANITY_DATASET are required when SEED_SOURCE=hosted"))
		}
	default:
		errs = append(errs, fmt.Errorf("SEED_SOURCE must be one of builtin, hosted, none (got %q)", c.SeedSource))
	}

	if (c.JWTPrivKeyPath == "") != (c.JWTPubKeyPath == "") {
		errs = append(errs, errors.New("JWT_PRIVATE_KEY_PATH and JWT_PUBLIC_KEY_PATH must be set together"))
	}

	if _, err := c.TrustedProxyPrefixes(); err != nil {
		errs = append(errs, err)
	}

	if c.AccessTokenTTL <= 0 {
		errs = append(errs, errors.New("ACCESS_TOKEN_TTL must be positive"))
	}

	switch {
	case c.AdminPasswordHash != "" && !sec.IsPasswordHash(c.AdminPasswordHash):
		errs = append(errs, errors.New("ADMIN_PASSWORD_HASH is not a bcrypt hash"))
	case c.IsProduction() && c.AdminPasswordHash == "":
		errs = append(errs, errors.New("ADMIN_PASSWORD_HASH is required in production"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}

// TrustedProxyPrefixes parses TrustedProxies. A bare address becomes a
// single-host prefix.
func (c *Config) TrustedProxyPrefixes() ([]netip.Prefix, error) {
	prefixes := make([]netip.Prefix, 0, len(c.TrustedProxies))
	for _, entry := range c.TrustedProxies {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		if addr, err := netip.ParseAddr(entry); err == nil {
			addr = addr.Unmap()
			prefixes = append(prefixes, netip.PrefixFrom(addr, addr.BitLen()))
			continue
		}
		prefix, err := netip.ParsePrefix(entry)
		if err != nil {
			return nil, fmt.Errorf("TRUSTED_PROXIES entry %q is not an address or CIDR", entry)
		}
		prefixes = append(prefixes, prefix.Masked())
	}
	return prefixes, nil
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the server is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
