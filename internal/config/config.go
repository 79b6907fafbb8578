package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ShardDecl names one regional database. The declaration order in
// Config.Shards() is the registry order every federated operation
// iterates in, so it must stay stable across restarts.
type ShardDecl struct {
	Name        string
	RegionID    int
	DatabaseURL string
}

type Config struct {
	Port                 string   `mapstructure:"PORT"`
	Env                  string   `mapstructure:"ENV"`
	DatabaseURLCentral   string   `mapstructure:"DATABASE_URL_CENTRAL"`
	DatabaseURLGuayaquil string   `mapstructure:"DATABASE_URL_GUAYAQUIL"`
	DatabaseURLCuenca    string   `mapstructure:"DATABASE_URL_CUENCA"`
	DBMaxConns           int32    `mapstructure:"DB_MAX_CONNS"`
	DBMinConns           int32    `mapstructure:"DB_MIN_CONNS"`
	ShardTimeoutMS       int      `mapstructure:"SHARD_TIMEOUT_MS"`
	HealthPollSeconds    int      `mapstructure:"HEALTH_POLL_SECONDS"`
	JWTSecret            string   `mapstructure:"JWT_SECRET"`
	CORSOrigins          []string `mapstructure:"CORS_ORIGINS"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("DB_MAX_CONNS", 10)
	v.SetDefault("DB_MIN_CONNS", 2)
	v.SetDefault("SHARD_TIMEOUT_MS", 3000)
	v.SetDefault("HEALTH_POLL_SECONDS", 30)
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("PORT")
	v.BindEnv("ENV")
	v.BindEnv("DATABASE_URL_CENTRAL")
	v.BindEnv("DATABASE_URL_GUAYAQUIL")
	v.BindEnv("DATABASE_URL_CUENCA")
	v.BindEnv("DB_MAX_CONNS")
	v.BindEnv("DB_MIN_CONNS")
	v.BindEnv("SHARD_TIMEOUT_MS")
	v.BindEnv("HEALTH_POLL_SECONDS")
	v.BindEnv("JWT_SECRET")
	v.BindEnv("CORS_ORIGINS")

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.CORSOrigins == nil {
		origins := v.GetString("CORS_ORIGINS")
		if origins != "" {
			cfg.CORSOrigins = strings.Split(origins, ",")
		}
	}

	if cfg.IsDev() {
		log.Println("WARNING: Server is running in DEVELOPMENT mode (ENV=development).")
		log.Println("WARNING: DevAuthMiddleware is active, all requests get admin access.")
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// ShardTimeout is the per-shard deadline applied to each query inside a
// federated operation, so one slow region cannot stall the whole request.
func (c *Config) ShardTimeout() time.Duration {
	return time.Duration(c.ShardTimeoutMS) * time.Millisecond
}

func (c *Config) HealthPollInterval() time.Duration {
	return time.Duration(c.HealthPollSeconds) * time.Second
}

// Shards returns the regional database declarations in registry order.
// Region ids are dense, starting at 1, one per declaration.
func (c *Config) Shards() []ShardDecl {
	return []ShardDecl{
		{Name: "central", RegionID: 1, DatabaseURL: c.DatabaseURLCentral},
		{Name: "guayaquil", RegionID: 2, DatabaseURL: c.DatabaseURLGuayaquil},
		{Name: "cuenca", RegionID: 3, DatabaseURL: c.DatabaseURLCuenca},
	}
}

// Validate checks that the configuration is safe to run. Every regional
// database must be configured; outside development a JWT secret is
// required so real authentication is enforced.
func (c *Config) Validate() error {
	for _, s := range c.Shards() {
		if s.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL_%s is required", strings.ToUpper(s.Name))
		}
	}
	if !c.IsDev() && c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required when ENV is not development")
	}
	if c.ShardTimeoutMS <= 0 {
		return fmt.Errorf("SHARD_TIMEOUT_MS must be positive, got %d", c.ShardTimeoutMS)
	}
	return nil
}
