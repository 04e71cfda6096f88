package config

import "time"

// CacheConfig defines settings for the per-user dashboard summary cache.
// When Enabled is false or no Redis client is configured, every lookup is
// a miss and nothing is stored.
type CacheConfig struct {
	Enabled bool          `env:"ENABLED" envDefault:"true"`
	TTL     time.Duration `env:"TTL" envDefault:"5m"`
	Prefix  string        `env:"PREFIX" envDefault:"cache"`
}
